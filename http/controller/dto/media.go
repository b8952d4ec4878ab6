package dto

import "time"

type FileDescriptorDTO struct {
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	FileName  string `json:"fileName"`
}

type UploadRequestDTO struct {
	Route string              `json:"route"`
	Files []FileDescriptorDTO `json:"files"`
}

type UploadTargetDTO struct {
	FileID    string            `json:"fileId"`
	FileName  string            `json:"fileName,omitempty"`
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	FileURL   string            `json:"fileUrl"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
}

type UploadResponseDTO struct {
	Targets []UploadTargetDTO `json:"targets"`
}

type DeleteImagesRequestDTO struct {
	URLs []string `json:"urls"`
}

type DeleteImagesResponseDTO struct {
	Success bool              `json:"success"`
	Results map[string]string `json:"results"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type UploadCompleteRequestDTO struct {
	FileID  string `json:"fileId" binding:"required"`
	FileURL string `json:"fileUrl" binding:"required"`
	Route   string `json:"route"`
}

type RoutePolicyDTO struct {
	Name             string   `json:"name"`
	AllowedTypes     []string `json:"allowedTypes"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes"`
	MaxFileSize      string   `json:"maxFileSize"`
	MaxFileCount     int      `json:"maxFileCount"`
}
