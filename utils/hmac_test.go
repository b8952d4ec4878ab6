package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUploadStringToSign(t *testing.T) {
	got := BuildUploadStringToSign("PUT", "imageUploader/a.png", "image/png", 4000000, 1700000000)
	assert.Equal(t, "PUT\nimageUploader/a.png\nimage/png\n4000000\n1700000000", got)
}

func TestComputeHMACSHA256(t *testing.T) {
	// RFC 4231 test case 2
	sig := ComputeHMACSHA256("Jefe", "what do ya want for nothing?")
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", sig)
	assert.Len(t, sig, 64)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("abc", "abc"))
	assert.False(t, SecureCompare("abc", "abd"))
	assert.False(t, SecureCompare("abc", "ab"))
}
