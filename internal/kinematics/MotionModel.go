// Package kinematics defines the MotionModel interface that moves a train
// along a normalised track, along with built-in implementations.
//
// Adding a new model requires only implementing MotionModel and registering it
// in Parse; the session never needs to change.
package kinematics

import (
	"encoding/json"
	"fmt"
)

// MotionModel is the contract every motion implementation must satisfy.
// Positions are normalised to [0, 1] where 1 is the terminal station.
type MotionModel interface {
	// Step returns the position reached one tick after position.
	// The result must not be less than position. Callers clamp it to 1.
	Step(position float64) float64
}

// modelDisc is the minimum JSON structure needed to read the model discriminator.
type modelDisc struct {
	Model string `json:"model"`
}

// Parse resolves a JSON motion object into a MotionModel.
// The object must carry a "model" discriminator key that selects the concrete
// implementation; the rest of the object is forwarded to that implementation.
//
// Supported models:
//   - "fixed": a constant increment per tick.
func Parse(raw json.RawMessage) (MotionModel, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing motion model")
	}
	var disc modelDisc
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, fmt.Errorf("reading motion model discriminator: %w", err)
	}

	switch disc.Model {
	case FixedModelName:
		var m FixedIncrement
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parsing fixed motion: %w", err)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown motion model %q", disc.Model)
	}
}
