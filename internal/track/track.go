// Package track provides the block topology of a signalled track: the
// ordered boundaries over a normalised length and lookups between positions
// and blocks.
package track

import (
	"fmt"
)

// TrackID is a string alias used as a track identifier.
type TrackID = string

// Signalling selects which aspect rule a track's signals follow.
type Signalling string

const (
	// SignallingSolo is for a track that only ever carries one train.
	SignallingSolo Signalling = "solo"
	// SignallingShared is for a track carrying several trains in sequence.
	SignallingShared Signalling = "shared"
)

// Track is the serialisable definition of a single track.
// Signalling may be left empty, in which case it is inferred from the number
// of trains placed on the track.
type Track struct {
	ID         TrackID    `json:"track_id"`
	Name       string     `json:"name,omitempty"`
	Blocks     int        `json:"blocks"`
	Signalling Signalling `json:"signalling,omitempty"`
}

// Validate checks the static definition for construction errors.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track has no id")
	}
	if t.Blocks < 1 {
		return fmt.Errorf("track %q: block count must be at least 1, got %d", t.ID, t.Blocks)
	}
	switch t.Signalling {
	case "", SignallingSolo, SignallingShared:
	default:
		return fmt.Errorf("track %q: unknown signalling %q", t.ID, t.Signalling)
	}
	return nil
}

// ResolveSignalling returns the track's signalling, inferring it from the
// number of trains when unset.
func (t Track) ResolveSignalling(trains int) Signalling {
	if t.Signalling != "" {
		return t.Signalling
	}
	if trains > 1 {
		return SignallingShared
	}
	return SignallingSolo
}
