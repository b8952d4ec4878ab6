package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// BuildUploadStringToSign constructs the canonical string to sign for a proxied upload target.
// Format: METHOD\nKEY\nCONTENT-TYPE\nMAX-SIZE\nEXPIRES
//
// Parameters:
//   - method: HTTP method in uppercase (PUT)
//   - key: storage key the target writes to
//   - contentType: MIME type the client committed to
//   - maxSize: upper bound on the body in bytes
//   - expires: Unix timestamp in seconds after which the target is void
//
// Returns the canonical string to be signed
func BuildUploadStringToSign(method, key, contentType string, maxSize, expires int64) string {
	return fmt.Sprintf("%s\n%s\n%s\n%d\n%d", method, key, contentType, maxSize, expires)
}

// ComputeHMACSHA256 computes HMAC-SHA256 signature and returns hex-encoded string.
//
// Returns hex-encoded signature (64 characters)
func ComputeHMACSHA256(secretKey, message string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// SecureCompare performs constant-time string comparison.
// This MUST be used when comparing signatures.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
