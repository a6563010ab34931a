// Package signal derives the aspect displayed by each block signal from the
// positions of the trains on a track.
//
// Aspects are never stored. Every function here is pure: given a topology,
// the occupant positions and a signal index, it returns the same aspect.
//
// Signals are indexed by boundary, 0..N for a track of N blocks. Signal i
// guards block i; signal N stands at the end of the track and guards nothing
// beyond it.
package signal

import (
	"errors"
	"fmt"

	"github.com/cxd309/abs-engine/internal/track"
)

// Aspect is the displayed state of a signal.
type Aspect string

const (
	Red          Aspect = "RED"
	Yellow       Aspect = "YELLOW"
	DoubleYellow Aspect = "DOUBLE_YELLOW"
	Green        Aspect = "GREEN"
)

// Heads returns how many lamps a signal shows for the aspect.
func (a Aspect) Heads() int {
	if a == DoubleYellow {
		return 2
	}
	return 1
}

// ErrInvalidBlockIndex is returned when a signal index lies outside [0, N].
var ErrInvalidBlockIndex = errors.New("invalid block index")

func checkIndex(topo *track.Topology, blockIndex int) error {
	if blockIndex < 0 || blockIndex > topo.Blocks() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidBlockIndex, blockIndex, topo.Blocks())
	}
	return nil
}

// Solo returns the aspect of signal blockIndex on a track carrying a single
// train. Everything ahead of the train's block is GREEN and everything at or
// behind it is RED; with no following traffic there is nothing to warn.
func Solo(topo *track.Topology, trainPosition float64, blockIndex int) (Aspect, error) {
	if err := checkIndex(topo, blockIndex); err != nil {
		return "", err
	}
	if blockIndex >= topo.BlockOf(trainPosition)+1 {
		return Green, nil
	}
	return Red, nil
}

// Shared returns the aspect of signal blockIndex on a track carrying several
// trains. Positions of held trains count as occupants.
//
// Relative to the leading train's block:
//  1. Two or more blocks ahead: RED, not yet cleared.
//  2. The block immediately ahead: GREEN.
//  3. At or behind: the first of RED (block occupied), DOUBLE_YELLOW (next
//     block occupied), YELLOW (block after that occupied), GREEN.
func Shared(topo *track.Topology, occupants []float64, blockIndex int) (Aspect, error) {
	if err := checkIndex(topo, blockIndex); err != nil {
		return "", err
	}
	if len(occupants) == 0 {
		return Green, nil
	}

	lead := occupants[0]
	for _, p := range occupants[1:] {
		lead = max(lead, p)
	}
	currentBlock := topo.BlockOf(lead)

	switch {
	case blockIndex >= currentBlock+2:
		return Red, nil
	case blockIndex == currentBlock+1:
		return Green, nil
	case occupied(topo, occupants, blockIndex):
		return Red, nil
	case occupied(topo, occupants, blockIndex+1):
		return DoubleYellow, nil
	case occupied(topo, occupants, blockIndex+2):
		return Yellow, nil
	default:
		return Green, nil
	}
}

func occupied(topo *track.Topology, occupants []float64, block int) bool {
	for _, p := range occupants {
		if topo.Contains(block, p) {
			return true
		}
	}
	return false
}

// ForTrack returns the aspect of every signal on a track, indexed 0..N.
// A solo track uses the first occupant's position.
func ForTrack(topo *track.Topology, policy track.Signalling, occupants []float64) ([]Aspect, error) {
	out := make([]Aspect, topo.Signals())
	for i := range out {
		var (
			a   Aspect
			err error
		)
		switch policy {
		case track.SignallingSolo:
			if len(occupants) != 1 {
				return nil, fmt.Errorf("solo signalling needs exactly one train, got %d", len(occupants))
			}
			a, err = Solo(topo, occupants[0], i)
		case track.SignallingShared:
			a, err = Shared(topo, occupants, i)
		default:
			return nil, fmt.Errorf("unknown signalling %q", policy)
		}
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}
