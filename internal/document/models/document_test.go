package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "capture-gateway/pkg/domain-errors"
)

func TestNewDocumentVersion(t *testing.T) {
	payload := json.RawMessage(`{"invoiceHeader":{"vendorName":"Acme"}}`)
	exceptions := json.RawMessage(`{"invoiceHeader":{"vendorName":[{"message":"check","severity":"warning"}]}}`)

	v, err := NewDocumentVersion("din-1", "upl-1", payload, exceptions, SourceExtraction, "")
	require.NoError(t, err)
	assert.Equal(t, "din-1", v.DIN)
	assert.Equal(t, "upl-1", v.UploadID)
	assert.Zero(t, v.Version, "version is assigned by the store")
	assert.Equal(t, SourceExtraction, v.Source)
	assert.False(t, v.CreatedAt.IsZero())
}

func TestNewDocumentVersion_Validation(t *testing.T) {
	payload := json.RawMessage(`{}`)

	tests := []struct {
		name       string
		din        string
		payload    json.RawMessage
		exceptions json.RawMessage
		source     VersionSource
		wantCode   dErrors.Code
	}{
		{"missing din", "  ", payload, nil, SourceReviewer, dErrors.CodeInvalidInput},
		{"missing payload", "din-1", nil, nil, SourceReviewer, dErrors.CodeInvalidInput},
		{"malformed payload", "din-1", json.RawMessage(`{"x":`), nil, SourceReviewer, dErrors.CodeInvalidInput},
		{"malformed exceptions", "din-1", payload, json.RawMessage(`not json`), SourceReviewer, dErrors.CodeInvalidInput},
		{"invalid source", "din-1", payload, nil, VersionSource("ocr"), dErrors.CodeInvariantViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocumentVersion(tt.din, "", tt.payload, tt.exceptions, tt.source, "")
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.wantCode))
		})
	}
}

func TestVersionStatus(t *testing.T) {
	payload := json.RawMessage(`{}`)

	extracted, err := NewDocumentVersion("din-1", "", payload, nil, SourceExtraction, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, extracted.Status())

	reviewed, err := NewDocumentVersion("din-1", "", payload, nil, SourceReviewer, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, StatusInReview, reviewed.Status())
}

func TestDocumentStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusInReview.IsValid())
	assert.True(t, StatusCompleted.IsValid())
	assert.True(t, StatusRejected.IsValid())
	assert.False(t, DocumentStatus("archived").IsValid())
}
