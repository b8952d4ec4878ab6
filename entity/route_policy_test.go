package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutePolicyAllows(t *testing.T) {
	images := RoutePolicy{Name: "imageUploader", AllowedTypes: []string{"image/*"}, MaxFileSizeBytes: 4_000_000, MaxFileCount: 4}
	exact := RoutePolicy{Name: "pdf", AllowedTypes: []string{"application/pdf"}, MaxFileSizeBytes: 1, MaxFileCount: 1}
	any := RoutePolicy{Name: "any", AllowedTypes: []string{"*"}, MaxFileSizeBytes: 1, MaxFileCount: 1}

	tests := []struct {
		name   string
		policy RoutePolicy
		mime   string
		want   bool
	}{
		{"glob match", images, "image/png", true},
		{"glob match upper case", images, "IMAGE/JPEG", true},
		{"glob with params", images, "image/svg+xml; charset=utf-8", true},
		{"glob mismatch", images, "video/mp4", false},
		{"empty mime", images, "", false},
		{"not a mime", images, "image", false},
		{"exact match", exact, "application/pdf", true},
		{"exact mismatch", exact, "application/zip", false},
		{"star matches all", any, "video/mp4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Allows(tt.mime))
		})
	}
}

func TestRoutePolicyValidate(t *testing.T) {
	valid := RoutePolicy{Name: "r", AllowedTypes: []string{"image/*"}, MaxFileSizeBytes: 10, MaxFileCount: 1}
	assert.NoError(t, valid.Validate())

	noTypes := valid
	noTypes.AllowedTypes = nil
	assert.Error(t, noTypes.Validate())

	badPattern := valid
	badPattern.AllowedTypes = []string{"image/["}
	assert.Error(t, badPattern.Validate())

	zeroSize := valid
	zeroSize.MaxFileSizeBytes = 0
	assert.Error(t, zeroSize.Validate())

	zeroCount := valid
	zeroCount.MaxFileCount = 0
	assert.Error(t, zeroCount.Validate())
}

func TestDeletionBatchResultResults(t *testing.T) {
	r := DeletionBatchResult{Items: []DeletionItem{
		{URL: "a", Outcome: DeletionDeleted},
		{URL: "b", Outcome: DeletionFailed, Reason: "malformed url"},
		{URL: "b", Outcome: DeletionDeleted},
	}}

	assert.Equal(t, map[string]DeletionOutcome{"a": DeletionDeleted, "b": DeletionFailed}, r.Results())
	assert.Equal(t, map[string]string{"b": "malformed url"}, r.Errors())
	assert.Equal(t, 2, r.Count(DeletionDeleted))
}
