// Package headway gates the departure of a trailing train on a shared track
// until the train ahead of it has opened up a minimum gap.
package headway

import (
	"fmt"

	"github.com/cxd309/abs-engine/internal/train"
)

// DefaultBlocks is the headway, in blocks, a leader must cover before its
// follower is released.
const DefaultBlocks = 3

// State is the release state of one follower. Transitions are one-way:
// Waiting to Released, and back only through Reset.
type State string

const (
	Waiting  State = "WAITING"
	Released State = "RELEASED"
)

// Controller holds Follower until Leader reaches Threshold.
type Controller struct {
	Leader    train.TrainID `json:"leader"`
	Follower  train.TrainID `json:"follower"`
	Threshold float64       `json:"threshold"` // normalised leader position
	state     State
}

// New creates a Controller in the Waiting state.
func New(leader, follower train.TrainID, threshold float64) (*Controller, error) {
	if leader == follower {
		return nil, fmt.Errorf("headway: train %q cannot follow itself", leader)
	}
	if threshold < 0 || threshold > train.Terminal {
		return nil, fmt.Errorf("headway: threshold %v outside [0, %v]", threshold, train.Terminal)
	}
	return &Controller{
		Leader:    leader,
		Follower:  follower,
		Threshold: threshold,
		state:     Waiting,
	}, nil
}

// State returns the current release state.
func (c *Controller) State() State { return c.state }

// Evaluate checks the leader's position and returns true exactly once, on
// the call where the follower becomes released.
func (c *Controller) Evaluate(leaderPosition float64) bool {
	if c.state == Released {
		return false
	}
	if leaderPosition < c.Threshold {
		return false
	}
	c.state = Released
	return true
}

// Reset returns the controller to Waiting.
func (c *Controller) Reset() { c.state = Waiting }

// Log is a point-in-time snapshot of a Controller.
type Log struct {
	Leader   train.TrainID `json:"leader"`
	Follower train.TrainID `json:"follower"`
	State    State         `json:"state"`
}

// GetLog returns a point-in-time snapshot of the controller.
func (c *Controller) GetLog() Log {
	return Log{Leader: c.Leader, Follower: c.Follower, State: c.state}
}
