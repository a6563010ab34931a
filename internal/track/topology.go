package track

import (
	"fmt"
	"sort"
)

// Topology is an immutable partition of the normalised track length [0, 1]
// into N evenly spaced blocks, described by N+1 boundaries.
type Topology struct {
	boundaries []float64
}

// NewTopology builds a Topology of the given block count.
// Boundary i sits at i/N.
func NewTopology(blocks int) (*Topology, error) {
	if blocks < 1 {
		return nil, fmt.Errorf("block count must be at least 1, got %d", blocks)
	}
	b := make([]float64, blocks+1)
	for i := range b {
		b[i] = float64(i) / float64(blocks)
	}
	// Guard against rounding leaving the last boundary short of the end.
	b[blocks] = 1
	return &Topology{boundaries: b}, nil
}

// Blocks returns N, the number of blocks.
func (t *Topology) Blocks() int { return len(t.boundaries) - 1 }

// Signals returns N+1, one signal per boundary.
func (t *Topology) Signals() int { return len(t.boundaries) }

// Boundary returns the position of boundary i, in [0, N].
func (t *Topology) Boundary(i int) float64 { return t.boundaries[i] }

// Boundaries returns a copy of all boundary positions.
func (t *Topology) Boundaries() []float64 {
	out := make([]float64, len(t.boundaries))
	copy(out, t.boundaries)
	return out
}

// BlockOf returns the index of the block containing position.
// Positions at or past the end belong to the last block, positions before
// the start to the first.
func (t *Topology) BlockOf(position float64) int {
	n := t.Blocks()
	// First block whose end lies beyond position.
	i := sort.Search(n, func(i int) bool { return t.boundaries[i+1] > position })
	if i >= n {
		return n - 1
	}
	return i
}

// BoundsOf returns the start and end of block, which must be in [0, N-1].
// The last block ends at 1.
func (t *Topology) BoundsOf(block int) (start, end float64) {
	return t.boundaries[block], t.boundaries[block+1]
}

// Contains reports whether position lies within block. Blocks are half-open
// except the last, which is closed at 1. Indices outside [0, N-1] contain
// nothing.
func (t *Topology) Contains(block int, position float64) bool {
	n := t.Blocks()
	if block < 0 || block >= n {
		return false
	}
	start, end := t.BoundsOf(block)
	if block == n-1 {
		return position >= start && position <= end
	}
	return position >= start && position < end
}

// HeadwayThreshold converts a headway in block units to a normalised
// position, clamped to the end of the track.
func (t *Topology) HeadwayThreshold(blocks int) float64 {
	if blocks <= 0 {
		return 0
	}
	if blocks >= t.Blocks() {
		return 1
	}
	return t.boundaries[blocks]
}
