// Package train defines the train type used in the simulation, along with
// the SimTrain record that carries its live position.
package train

import (
	"fmt"

	"github.com/cxd309/abs-engine/internal/kinematics"
	"github.com/cxd309/abs-engine/internal/track"
)

// TrainID is a unique string identifier for a train.
type TrainID = string

// State describes where a train is in its run.
type State string

const (
	// StateHeld is a train not yet released onto its track.
	StateHeld State = "held"
	// StateRunning is an active train short of the terminal.
	StateRunning State = "running"
	// StateArrived is a train standing at the terminal. It never moves again.
	StateArrived State = "arrived"
)

// Terminal is the normalised position of the station at the end of every track.
const Terminal = 1.0

// Train is the static definition of a train.
type Train struct {
	ID    TrainID       `json:"train_id"`
	Label string        `json:"label,omitempty"`
	Track track.TrackID `json:"track_id"`
}

// Validate checks the static definition for construction errors.
func (t Train) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("train has no id")
	}
	if t.Track == "" {
		return fmt.Errorf("train %q has no track", t.ID)
	}
	return nil
}

// SimTrain is a Train enriched with live simulation state.
type SimTrain struct {
	Train
	Position float64 `json:"position"`
	Active   bool    `json:"active"`
	gated    bool
}

// NewSimTrain creates a SimTrain at the start of its track. A gated train is
// held until Release is called.
func NewSimTrain(t Train, gated bool) *SimTrain {
	return &SimTrain{
		Train:    t,
		Position: 0,
		Active:   !gated,
		gated:    gated,
	}
}

// State reports the train's derived state.
func (s *SimTrain) State() State {
	switch {
	case s.Arrived():
		return StateArrived
	case !s.Active:
		return StateHeld
	default:
		return StateRunning
	}
}

// Arrived reports whether the train has reached the terminal.
func (s *SimTrain) Arrived() bool { return s.Position >= Terminal }

// Advance moves an active train one tick under m. Returns true if the
// position changed. Positions never decrease and are clamped to Terminal.
func (s *SimTrain) Advance(m kinematics.MotionModel) bool {
	if !s.Active || s.Arrived() {
		return false
	}
	next := m.Step(s.Position)
	if next >= Terminal {
		next = Terminal
	}
	if next <= s.Position {
		return false
	}
	s.Position = next
	return true
}

// Release activates a held train.
func (s *SimTrain) Release() { s.Active = true }

// Reset puts the train back at the start of its track, held again if it
// was gated.
func (s *SimTrain) Reset() {
	s.Position = 0
	s.Active = !s.gated
}

// TrainLog is a point-in-time snapshot of a SimTrain's state.
type TrainLog struct {
	ID       TrainID       `json:"train_id"`
	Label    string        `json:"label,omitempty"`
	Track    track.TrackID `json:"track_id"`
	Position float64       `json:"position"`
	State    State         `json:"state"`
}

// GetLog returns a point-in-time snapshot of the train state.
func (s *SimTrain) GetLog() TrainLog {
	return TrainLog{
		ID:       s.ID,
		Label:    s.Label,
		Track:    s.Track,
		Position: s.Position,
		State:    s.State(),
	}
}
