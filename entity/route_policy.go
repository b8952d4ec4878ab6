package entity

import (
	"fmt"
	"mime"
	"path"
	"strings"
)

// RoutePolicy is the validation contract for one category of uploads.
type RoutePolicy struct {
	Name             string   `json:"name"`
	AllowedTypes     []string `json:"allowed_types"`
	MaxFileSizeBytes int64    `json:"max_file_size_bytes"`
	MaxFileCount     int      `json:"max_file_count"`
}

func (p RoutePolicy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("route name cannot be empty")
	}
	if len(p.AllowedTypes) == 0 {
		return fmt.Errorf("route %s: at least one allowed type is required", p.Name)
	}
	for _, pattern := range p.AllowedTypes {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("route %s: invalid type pattern %q: %w", p.Name, pattern, err)
		}
	}
	if p.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("route %s: max file size must be positive", p.Name)
	}
	if p.MaxFileCount < 1 {
		return fmt.Errorf("route %s: max file count must be at least 1", p.Name)
	}
	return nil
}

// Allows reports whether mimeType matches one of the allowed patterns.
// Parameters such as "; charset=utf-8" are ignored; "*" matches everything.
func (p RoutePolicy) Allows(mimeType string) bool {
	mediaType := NormalizeMimeType(mimeType)
	if mediaType == "" {
		return false
	}

	for _, pattern := range p.AllowedTypes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "*" {
			return true
		}
		if ok, _ := path.Match(pattern, mediaType); ok {
			return true
		}
	}
	return false
}

// NormalizeMimeType lower-cases a MIME type and strips its parameters.
// It returns "" for values that are not type/subtype.
func NormalizeMimeType(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(mimeType))
	if err != nil {
		return ""
	}
	if !strings.Contains(mediaType, "/") {
		return ""
	}
	return mediaType
}
