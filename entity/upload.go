package entity

import "time"

// FileDescriptor is what the client declares about a file before sending any bytes.
type FileDescriptor struct {
	MimeType  string
	SizeBytes int64
	FileName  string
}

type UploadRequest struct {
	RouteName string
	Files     []FileDescriptor
	UserID    string
}

// WriteTarget is a storage-level write destination, e.g. a pre-signed PUT.
type WriteTarget struct {
	Method    string
	URL       string
	Headers   map[string]string
	ExpiresAt *time.Time
}

// UploadTarget tells the client where and how to write one accepted file.
// It lives only for the request/response cycle.
type UploadTarget struct {
	FileID    string
	FileName  string
	Method    string
	URL       string
	Headers   map[string]string
	FileURL   string
	ExpiresAt *time.Time
}

// UploadCompletion is the advisory notice that a write reached the backend.
type UploadCompletion struct {
	FileID    string
	FileURL   string
	RouteName string
	UserID    string
}
