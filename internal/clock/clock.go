// Package clock drives a session's ticks at a fixed real-time period.
//
// The session itself owns no timer; the clock calls Tick on every period and
// hands the resulting snapshot to an observer. Ticks on a stopped session are
// no-ops, so the clock keeps running across pause and reset.
package clock

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cxd309/abs-engine/internal/engine"
)

// DefaultInterval is the real-time period between ticks.
const DefaultInterval = 35 * time.Millisecond

// Session is the part of engine.Session the clock drives.
type Session interface {
	Tick() bool
	Snapshot() (engine.Snapshot, error)
}

// Observer receives the snapshot after every applied tick.
type Observer func(engine.Snapshot)

// Clock ticks a Session every Interval.
type Clock struct {
	session  Session
	interval time.Duration
	observer Observer
}

// New creates a Clock. A nil observer is allowed.
func New(s Session, interval time.Duration, observer Observer) (*Clock, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("clock: interval must be positive, got %s", interval)
	}
	return &Clock{session: s, interval: interval, observer: observer}, nil
}

// Run ticks the session until ctx is done, then returns ctx.Err().
func (c *Clock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	zap.S().Infow("clock started", "interval", c.interval)
	defer zap.S().Infow("clock stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !c.session.Tick() {
				continue
			}
			if c.observer == nil {
				continue
			}
			snap, err := c.session.Snapshot()
			if err != nil {
				zap.S().Errorw("clock: snapshot", "error", err)
				continue
			}
			c.observer(snap)
		}
	}
}
