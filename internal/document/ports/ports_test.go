package ports

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capture-gateway/pkg/platform/audit"
	auditmem "capture-gateway/pkg/platform/audit/memory"
	"capture-gateway/pkg/testutil"
)

func TestLogAudit_FillsRequestMetadata(t *testing.T) {
	publisher := auditmem.New()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	req := testutil.NewJSONRequest(t, http.MethodPost, "/documents/din-1/versions", nil)
	req = testutil.WithRequestID(req, "req-42")
	req = testutil.WithReviewer(req, "rev-1", "ui")

	LogAudit(req.Context(), logger, publisher, audit.EventVersionSaved, audit.Event{
		ActorID:    "rev-1",
		DocumentID: "din-1",
		Version:    2,
	})

	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "document_version_saved", events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "din-1", events[0].DocumentID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestLogAudit_NilPublisherLogsOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogAudit(t.Context(), logger, nil, audit.EventDocumentLoaded, audit.Event{
		DocumentID: "din-1",
	})

	assert.Contains(t, buf.String(), "document_loaded")
	assert.Contains(t, buf.String(), "din-1")
}
