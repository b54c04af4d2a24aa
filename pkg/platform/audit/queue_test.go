package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capture-gateway/pkg/platform/audit"
	auditmem "capture-gateway/pkg/platform/audit/memory"
)

func TestQueue_DeliversToSink(t *testing.T) {
	sink := auditmem.New()
	q := audit.NewQueue(sink, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = q.Run(ctx)
		close(done)
	}()

	require.NoError(t, q.Emit(context.Background(), audit.Event{Action: "document_loaded", DocumentID: "din-1"}))
	require.NoError(t, q.Emit(context.Background(), audit.Event{Action: "document_version_saved", DocumentID: "din-1"}))

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	events := sink.Events()
	assert.Equal(t, "document_loaded", events[0].Action)
	assert.Equal(t, "document_version_saved", events[1].Action)
}

func TestQueue_FlushesOnShutdown(t *testing.T) {
	sink := auditmem.New()
	q := audit.NewQueue(sink, 8, nil)

	// Enqueue before Run so the events are only in the buffer.
	require.NoError(t, q.Emit(context.Background(), audit.Event{Action: "reviewer_created"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, sink.Events(), 1)
}

func TestQueue_DropsWhenFull(t *testing.T) {
	sink := auditmem.New()
	q := audit.NewQueue(sink, 1, nil)

	require.NoError(t, q.Emit(context.Background(), audit.Event{Action: "a"}))
	require.NoError(t, q.Emit(context.Background(), audit.Event{Action: "b"}), "a full queue must not block or fail")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = q.Run(ctx)

	require.Len(t, sink.Events(), 1)
	assert.Equal(t, "a", sink.Events()[0].Action)
}
