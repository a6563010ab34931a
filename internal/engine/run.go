package engine

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/abs-engine/internal/kinematics"
	"github.com/cxd309/abs-engine/internal/track"
	"github.com/cxd309/abs-engine/internal/train"
)

// DefaultInput returns the demonstration layout: an express track carrying a
// single train, and a local track where a second train waits for the first
// to open a three-block gap.
func DefaultInput() SessionInput {
	motion, _ := json.Marshal(kinematics.NewFixedIncrement(kinematics.DefaultIncrement))
	return SessionInput{
		Meta: SimulationMeta{SimulationID: "automatic-signalling"},
		Tracks: []track.Track{
			{ID: "express", Name: "Express", Blocks: 6, Signalling: track.SignallingSolo},
			{ID: "local", Name: "Local", Blocks: 6, Signalling: track.SignallingShared},
		},
		Trains: []train.Train{
			{ID: "express", Label: "Express", Track: "express"},
			{ID: "local-1", Label: "Local 1", Track: "local"},
			{ID: "local-2", Label: "Local 2", Track: "local"},
		},
		Motion:        motion,
		HeadwayBlocks: 3,
	}
}

// Run starts the session and ticks it until every train has arrived or the
// tick limit is reached, logging a snapshot before the first tick and after
// each one.
func (s *Session) Run() (SimulationLog, error) {
	maxTicks := s.meta.MaxTicks
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}

	log := SimulationLog{Meta: s.meta}
	snap, err := s.Snapshot()
	if err != nil {
		return SimulationLog{}, err
	}
	log.Output = append(log.Output, snap)

	if !s.Start() {
		return log, nil
	}
	for i := 0; i < maxTicks && s.Tick(); i++ {
		snap, err := s.Snapshot()
		if err != nil {
			return SimulationLog{}, fmt.Errorf("at tick %d: %w", i+1, err)
		}
		log.Output = append(log.Output, snap)
	}
	s.Pause()
	return log, nil
}

// RunJSON is the entry point for the batch targets (CLI and WASM).
// It accepts a JSON-encoded SessionInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	var input SessionInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	session, err := NewSession(input)
	if err != nil {
		return "", err
	}

	simLog, err := session.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
