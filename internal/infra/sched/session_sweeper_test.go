//go:build !integration

package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"parallel-muhit-webapp/internal/infra/logging"
)

type countingStore struct{ calls int32 }

func (s *countingStore) Sweep() int {
	atomic.AddInt32(&s.calls, 1)
	return 2
}

func TestSessionSweeper(t *testing.T) {
	store := &countingStore{}
	w := NewSessionSweeper(5*time.Millisecond, store, logging.Nop())

	if n := w.sweepOnce(); n != 2 {
		t.Errorf("expected 2 swept, got %d", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if atomic.LoadInt32(&store.calls) < 3 {
		t.Errorf("expected several sweeps, got %d", store.calls)
	}
}
