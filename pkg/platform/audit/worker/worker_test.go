package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "riskprofile/pkg/platform/audit"
	"riskprofile/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("broker unavailable")
}

func TestWorkerRun(t *testing.T) {
	t.Run("persists until inbox is closed", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		inbox := make(chan audit.Event, 3)
		inbox <- audit.Event{RequestID: "a"}
		inbox <- audit.Event{RequestID: "b"}
		close(inbox)

		err := NewWorker(store, inbox).Run(context.Background())
		require.NoError(t, err)

		events, err := store.ListAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("keeps running after store failures", func(t *testing.T) {
		inbox := make(chan audit.Event, 2)
		inbox <- audit.Event{RequestID: "a"}
		inbox <- audit.Event{RequestID: "b"}
		close(inbox)

		var failed []string
		w := NewWorker(failingStore{}, inbox, WithFailureHook(func(e audit.Event, _ error) {
			failed = append(failed, e.RequestID)
		}))
		require.NoError(t, w.Run(context.Background()))
		assert.Equal(t, []string{"a", "b"}, failed)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := NewWorker(memory.NewInMemoryStore(), make(chan audit.Event)).Run(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
