// Package engine implements the block-signalling simulation session.
//
// The session advances in discrete ticks. Each tick has two passes:
//
//  1. Motion pass - every active train advances by the motion model's step,
//     clamped at the terminal.
//
//  2. Headway pass - every held follower on a shared track is checked against
//     its leader's new position and released once the headway is open.
//
// Signal aspects are not part of the tick. They are derived from the
// positions on every read, so a reader always sees aspects consistent with
// the completed tick.
package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cxd309/abs-engine/internal/headway"
	"github.com/cxd309/abs-engine/internal/kinematics"
	"github.com/cxd309/abs-engine/internal/signal"
	"github.com/cxd309/abs-engine/internal/track"
	"github.com/cxd309/abs-engine/internal/train"
)

var (
	ErrUnknownTrain = errors.New("unknown train")
	ErrUnknownTrack = errors.New("unknown track")
	ErrNoTrains     = errors.New("session has no trains")
)

// NewSession constructs a Session from a SessionInput, building each track's
// topology and placing every train at the start of its track. On a shared
// track the first train listed departs first and each later train is held
// behind the one before it.
func NewSession(input SessionInput) (*Session, error) {
	if len(input.Trains) == 0 {
		return nil, ErrNoTrains
	}
	s := &Session{
		id:         uuid.New(),
		meta:       input.Meta,
		trackIndex: make(map[track.TrackID]*trackState, len(input.Tracks)),
		trainIndex: make(map[train.TrainID]*train.SimTrain, len(input.Trains)),
	}
	if s.meta.SimulationID == "" {
		s.meta.SimulationID = s.id.String()
	}

	motion, err := resolveMotion(input.Motion)
	if err != nil {
		return nil, fmt.Errorf("motion: %w", err)
	}
	s.motion = motion

	for _, tr := range input.Tracks {
		if err := tr.Validate(); err != nil {
			return nil, err
		}
		if _, exists := s.trackIndex[tr.ID]; exists {
			return nil, fmt.Errorf("track %q already exists", tr.ID)
		}
		topo, err := track.NewTopology(tr.Blocks)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", tr.ID, err)
		}
		ts := &trackState{def: tr, topo: topo}
		s.tracks = append(s.tracks, ts)
		s.trackIndex[tr.ID] = ts
	}

	for _, t := range input.Trains {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, exists := s.trainIndex[t.ID]; exists {
			return nil, fmt.Errorf("train %q already exists", t.ID)
		}
		ts, ok := s.trackIndex[t.Track]
		if !ok {
			return nil, fmt.Errorf("train %q: %w %q", t.ID, ErrUnknownTrack, t.Track)
		}
		simTrain := train.NewSimTrain(t, len(ts.trains) > 0)
		ts.trains = append(ts.trains, simTrain)
		s.trains = append(s.trains, simTrain)
		s.trainIndex[t.ID] = simTrain
	}

	headwayBlocks := input.HeadwayBlocks
	if headwayBlocks == 0 {
		headwayBlocks = headway.DefaultBlocks
	}
	if headwayBlocks < 0 {
		return nil, fmt.Errorf("headway_blocks must not be negative, got %d", headwayBlocks)
	}

	for _, ts := range s.tracks {
		if len(ts.trains) == 0 {
			return nil, fmt.Errorf("track %q has no trains", ts.def.ID)
		}
		ts.signalling = ts.def.ResolveSignalling(len(ts.trains))
		if ts.signalling == track.SignallingSolo && len(ts.trains) > 1 {
			return nil, fmt.Errorf("track %q: solo signalling carries one train, got %d", ts.def.ID, len(ts.trains))
		}
		threshold := ts.topo.HeadwayThreshold(headwayBlocks)
		for i := 1; i < len(ts.trains); i++ {
			c, err := headway.New(ts.trains[i-1].ID, ts.trains[i].ID, threshold)
			if err != nil {
				return nil, fmt.Errorf("track %q: %w", ts.def.ID, err)
			}
			ts.headways = append(ts.headways, c)
		}
	}

	return s, nil
}

func resolveMotion(raw []byte) (kinematics.MotionModel, error) {
	if len(raw) == 0 {
		return kinematics.NewFixedIncrement(kinematics.DefaultIncrement), nil
	}
	return kinematics.Parse(raw)
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Meta returns the session's metadata.
func (s *Session) Meta() SimulationMeta { return s.meta }

// Running reports whether the session is accepting ticks.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start sets the session running. It returns false, and does nothing, if the
// session is already running or every train has arrived.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.allArrived() {
		return false
	}
	s.running = true
	zap.S().Infow("session started", "session", s.meta.SimulationID, "tick", s.tick)
	return true
}

// Pause stops further ticks from applying. It returns false if the session
// was not running.
func (s *Session) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.running = false
	zap.S().Infow("session paused", "session", s.meta.SimulationID, "tick", s.tick)
	return true
}

// Reset stops the session and returns every train and headway controller to
// its initial state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.tick = 0
	for _, t := range s.trains {
		t.Reset()
	}
	for _, ts := range s.tracks {
		for _, c := range ts.headways {
			c.Reset()
		}
	}
	zap.S().Infow("session reset", "session", s.meta.SimulationID)
}

// Tick advances the session by one step. It returns false, and does nothing,
// when the session is not running. The session stops itself once every
// train has arrived.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.step()
	return true
}

// step runs one tick. s.mu must be held.
func (s *Session) step() {
	s.tick++

	// Pass 1: motion.
	for _, t := range s.trains {
		t.Advance(s.motion)
	}

	// Pass 2: headway, against the positions reached in pass 1.
	for _, ts := range s.tracks {
		for i, c := range ts.headways {
			leader, follower := ts.trains[i], ts.trains[i+1]
			if c.Evaluate(leader.Position) {
				follower.Release()
				zap.S().Infow("train released",
					"session", s.meta.SimulationID,
					"tick", s.tick,
					"track", ts.def.ID,
					"train", follower.ID,
					"leader", leader.ID,
					"leader_position", leader.Position,
				)
			}
		}
	}

	if s.allArrived() {
		s.running = false
		zap.S().Infow("all trains arrived", "session", s.meta.SimulationID, "tick", s.tick)
	}
}

// IsAllArrived reports whether every train stands at the terminal.
func (s *Session) IsAllArrived() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allArrived()
}

func (s *Session) allArrived() bool {
	for _, t := range s.trains {
		if !t.Arrived() {
			return false
		}
	}
	return true
}

// PositionOf returns a train's normalised position.
func (s *Session) PositionOf(id train.TrainID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trainIndex[id]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownTrain, id)
	}
	return t.Position, nil
}

// AspectOf returns the aspect of signal blockIndex on a track.
func (s *Session) AspectOf(id track.TrackID, blockIndex int) (signal.Aspect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.trackIndex[id]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownTrack, id)
	}
	occupants := ts.occupants()
	var (
		a   signal.Aspect
		err error
	)
	if ts.signalling == track.SignallingSolo {
		a, err = signal.Solo(ts.topo, occupants[0], blockIndex)
	} else {
		a, err = signal.Shared(ts.topo, occupants, blockIndex)
	}
	if err != nil {
		return "", fmt.Errorf("track %q: %w", id, err)
	}
	return a, nil
}

// Aspects returns every signal aspect on a track, indexed by boundary.
func (s *Session) Aspects(id track.TrackID) ([]signal.Aspect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.trackIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTrack, id)
	}
	return ts.aspects()
}

// HeadwayStates returns the state of each headway controller on a track, in
// departure order.
func (s *Session) HeadwayStates(id track.TrackID) ([]headway.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.trackIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTrack, id)
	}
	out := make([]headway.State, len(ts.headways))
	for i, c := range ts.headways {
		out[i] = c.State()
	}
	return out, nil
}

// Snapshot returns the full derived state of the session.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() (Snapshot, error) {
	snap := Snapshot{
		SessionID:  s.id,
		Tick:       s.tick,
		Running:    s.running,
		AllArrived: s.allArrived(),
		Trains:     make([]train.TrainLog, len(s.trains)),
		Tracks:     make([]TrackLog, len(s.tracks)),
	}
	for i, t := range s.trains {
		snap.Trains[i] = t.GetLog()
	}
	for i, ts := range s.tracks {
		aspects, err := ts.aspects()
		if err != nil {
			return Snapshot{}, fmt.Errorf("track %q: %w", ts.def.ID, err)
		}
		tl := TrackLog{
			ID:         ts.def.ID,
			Signalling: ts.signalling,
			Signals:    make([]SignalLog, len(aspects)),
		}
		for j, a := range aspects {
			tl.Signals[j] = SignalLog{
				Index:    j,
				Position: ts.topo.Boundary(j),
				Aspect:   a,
				Heads:    a.Heads(),
			}
		}
		for _, c := range ts.headways {
			tl.Headways = append(tl.Headways, c.GetLog())
		}
		snap.Tracks[i] = tl
	}
	return snap, nil
}

func (ts *trackState) occupants() []float64 {
	out := make([]float64, len(ts.trains))
	for i, t := range ts.trains {
		out[i] = t.Position
	}
	return out
}

func (ts *trackState) aspects() ([]signal.Aspect, error) {
	return signal.ForTrack(ts.topo, ts.signalling, ts.occupants())
}
