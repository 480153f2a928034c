package nexus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRecoverer struct {
	calls     atomic.Int32
	olderThan atomic.Int64
	err       error
}

func (c *countingRecoverer) RecoverStaleIntents(_ context.Context, olderThan time.Duration) (int, error) {
	c.calls.Add(1)
	c.olderThan.Store(int64(olderThan))
	return 1, c.err
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestIntentSweeper_RunsUntilCancelled(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "recovers"},
		{name: "keeps going after errors", err: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecoverer{err: tt.err}
			sweeper := NewIntentSweeper(rec, 10*time.Millisecond, newNoopLogger())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				sweeper.Run(ctx)
				close(done)
			}()

			assert.Eventually(t, func() bool { return rec.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("sweeper did not stop")
			}
			assert.Equal(t, int64(10*time.Millisecond), rec.olderThan.Load())
		})
	}
}

func TestIntentSweeper_DisabledWithoutTimeout(t *testing.T) {
	rec := &countingRecoverer{}
	NewIntentSweeper(rec, 0, newNoopLogger()).Run(context.Background())
	assert.Zero(t, rec.calls.Load())
}
