package boojy

import (
	"errors"
	"fmt"
)

// Control-surface errors. Every control-plane operation returns one of
// these; the real-time path never reports through them, it degrades to
// silence or passthrough instead.

var (
	ErrDuplicateMasterTrack    = errors.New("a master track already exists")
	ErrCannotDeleteMasterTrack = errors.New("the master track cannot be deleted")
)

type TrackNotFoundError struct {
	ID TrackID
}

func (e TrackNotFoundError) Error() string {
	return fmt.Sprintf("track %d not found", e.ID)
}

type EffectNotFoundError struct {
	ID EffectID
}

func (e EffectNotFoundError) Error() string {
	return fmt.Sprintf("effect %d not found", e.ID)
}

// EffectNotInChainError is returned when an effect exists but is not part
// of the given track's FX chain.
type EffectNotInChainError struct {
	Track  TrackID
	Effect EffectID
}

func (e EffectNotInChainError) Error() string {
	return fmt.Sprintf("effect %d not found in track %d's FX chain", e.Effect, e.Track)
}

type ClipNotFoundError struct {
	ID ClipID
}

func (e ClipNotFoundError) Error() string {
	return fmt.Sprintf("clip %d not found", e.ID)
}

type InvalidTrackKindError struct {
	Kind string
}

func (e InvalidTrackKindError) Error() string {
	return fmt.Sprintf("unknown track kind: %q", e.Kind)
}

type InvalidEffectKindError struct {
	Kind string
}

func (e InvalidEffectKindError) Error() string {
	return fmt.Sprintf("unknown effect kind: %q", e.Kind)
}

// ChainOrderError is returned when a chain reorder does not name every
// effect of the track's FX chain exactly once.
type ChainOrderError struct {
	Track TrackID
	Want  int
	Got   int
}

func (e ChainOrderError) Error() string {
	return fmt.Sprintf("effect count mismatch on track %d: expected %d effects, got %d", e.Track, e.Want, e.Got)
}

// ParamNotFoundError is returned when an effect kind has no parameter with
// the given name.
type ParamNotFoundError struct {
	Kind  string
	Param string
}

func (e ParamNotFoundError) Error() string {
	return fmt.Sprintf("effect kind %q has no parameter %q", e.Kind, e.Param)
}
