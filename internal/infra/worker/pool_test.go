// File: internal/infra/worker/pool_test.go
package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPoolRunsSubmittedTasks(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(2, &log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	var ran atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		err := p.Submit(func(context.Context) error {
			if ran.Add(1) == 5 {
				close(done)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("only %d of 5 tasks ran", ran.Load())
	}
}

func TestPoolRejectsNilTask(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(1, &log)
	if err := p.Submit(nil); err == nil {
		t.Fatal("expected an error for a nil task")
	}
}

func TestPoolDropsWhenSaturated(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(1, &log)
	// Not started: the queue fills and Submit must fail fast instead of
	// blocking the caller.
	blocked := func(context.Context) error { return nil }
	var rejected bool
	for i := 0; i < 16; i++ {
		if err := p.Submit(blocked); err != nil {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Fatal("expected a full queue to reject tasks")
	}
}
