package clock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cxd309/abs-engine/internal/engine"
)

func TestRunTicksUntilCancelled(t *testing.T) {
	s, err := engine.NewSession(engine.DefaultInput())
	if err != nil {
		t.Fatal(err)
	}
	s.Start()

	seen := make(chan uint64, 100)
	c, err := New(s, time.Millisecond, func(snap engine.Snapshot) {
		select {
		case seen <- snap.Tick:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	var last uint64
	for i := 0; i < 3; i++ {
		select {
		case tick := <-seen:
			if tick <= last {
				t.Fatalf("tick %d after %d", tick, last)
			}
			last = tick
		case <-time.After(2 * time.Second):
			t.Fatal("no tick observed")
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
}

func TestStoppedSessionIsNotObserved(t *testing.T) {
	s, err := engine.NewSession(engine.DefaultInput())
	if err != nil {
		t.Fatal(err)
	}
	called := make(chan struct{}, 1)
	c, err := New(s, time.Millisecond, func(engine.Snapshot) {
		select {
		case called <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v", err)
	}
	select {
	case <-called:
		t.Fatal("observer called for a stopped session")
	default:
	}
	if p, _ := s.PositionOf("express"); p != 0 {
		t.Fatalf("stopped session moved to %v", p)
	}
}

func TestNewRejectsZeroInterval(t *testing.T) {
	if _, err := New(nil, 0, nil); err == nil {
		t.Fatal("zero interval accepted")
	}
}
