package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, TapEvent{Kind: KindTapIn, RecordID: "rec-1"}))

	events, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case evt := <-events:
		require.Equal(t, KindTapIn, evt.Kind)
		require.Equal(t, "rec-1", evt.RecordID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestInMemoryPublishBlockedByCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewInMemory(1)
	require.NoError(t, q.Publish(ctx, TapEvent{Kind: KindTapIn, RecordID: "a"}))

	cancel()
	err := q.Publish(ctx, TapEvent{Kind: KindTapIn, RecordID: "b"})
	require.ErrorIs(t, err, context.Canceled)
}
