package kinematics

import "fmt"

// FixedModelName is the JSON discriminator string for the FixedIncrement model.
const FixedModelName = "fixed"

// DefaultIncrement is the distance covered per tick, as a fraction of the
// track length, when no motion model is configured.
const DefaultIncrement = 0.0016

// FixedIncrement implements MotionModel by moving a constant distance every
// tick. There is no acceleration or braking.
//
// JSON discriminator: "model": "fixed"
type FixedIncrement struct {
	Model     string  `json:"model"`
	Increment float64 `json:"increment"` // fraction of track length per tick
}

// NewFixedIncrement returns a FixedIncrement with its discriminator set.
func NewFixedIncrement(increment float64) FixedIncrement {
	return FixedIncrement{Model: FixedModelName, Increment: increment}
}

// Validate rejects increments that would stall or reverse a train.
func (f FixedIncrement) Validate() error {
	if !(f.Increment > 0) {
		return fmt.Errorf("fixed motion: increment must be positive, got %v", f.Increment)
	}
	return nil
}

func (f FixedIncrement) Step(position float64) float64 {
	return position + f.Increment
}
