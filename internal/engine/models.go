package engine

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/cxd309/abs-engine/internal/headway"
	"github.com/cxd309/abs-engine/internal/kinematics"
	"github.com/cxd309/abs-engine/internal/signal"
	"github.com/cxd309/abs-engine/internal/track"
	"github.com/cxd309/abs-engine/internal/train"
)

// DefaultMaxTicks bounds a batch run when the input does not.
const DefaultMaxTicks = 100000

// SimulationMeta holds the identity and limits for a simulation run.
type SimulationMeta struct {
	SimulationID string `json:"simulation_id"`
	MaxTicks     int    `json:"max_ticks,omitempty"` // batch runs only
}

// SessionInput is the JSON-serialisable input to the engine.
// Motion holds a kinematics model object; if empty a fixed increment of
// kinematics.DefaultIncrement is used. HeadwayBlocks of 0 means
// headway.DefaultBlocks.
type SessionInput struct {
	Meta          SimulationMeta  `json:"simulation_meta"`
	Tracks        []track.Track   `json:"tracks"`
	Trains        []train.Train   `json:"trains"`
	Motion        json.RawMessage `json:"motion,omitempty"`
	HeadwayBlocks int             `json:"headway_blocks,omitempty"`
}

// SignalLog is the derived state of one signal.
type SignalLog struct {
	Index    int           `json:"index"`
	Position float64       `json:"position"` // boundary position, normalised
	Aspect   signal.Aspect `json:"aspect"`
	Heads    int           `json:"heads"`
}

// TrackLog is the derived state of every signal on a track plus its
// headway controllers.
type TrackLog struct {
	ID         track.TrackID    `json:"track_id"`
	Signalling track.Signalling `json:"signalling"`
	Signals    []SignalLog      `json:"signals"`
	Headways   []headway.Log    `json:"headways,omitempty"`
}

// Snapshot is the state of a session after a tick.
type Snapshot struct {
	SessionID  uuid.UUID        `json:"session_id"`
	Tick       uint64           `json:"tick"`
	Running    bool             `json:"running"`
	AllArrived bool             `json:"all_arrived"`
	Trains     []train.TrainLog `json:"trains"`
	Tracks     []TrackLog       `json:"tracks"`
}

// SimulationLog is the complete output of a batch run.
type SimulationLog struct {
	Meta   SimulationMeta `json:"simulation_meta"`
	Output []Snapshot     `json:"output"`
}

// trackState is a track with the trains running on it, in departure order.
type trackState struct {
	def        track.Track
	topo       *track.Topology
	signalling track.Signalling
	trains     []*train.SimTrain
	headways   []*headway.Controller
}

// Session is a running simulation. It owns every train; topologies are
// shared read-only and aspects are derived on read.
type Session struct {
	mu         sync.Mutex
	id         uuid.UUID
	meta       SimulationMeta
	motion     kinematics.MotionModel
	tracks     []*trackState
	trackIndex map[track.TrackID]*trackState
	trains     []*train.SimTrain
	trainIndex map[train.TrainID]*train.SimTrain
	running    bool
	tick       uint64
}
