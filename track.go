package boojy

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

type (
	// TrackID identifies a track within a session. IDs are assigned by the
	// mixer's track manager, strictly increase, and are never reused; the
	// master track is always ID 0.
	TrackID uint64

	// EffectID identifies an effect instance. Tracks hold effect IDs in
	// their FX chains; the instances themselves are owned by the mixer's
	// effect manager.
	EffectID uint64

	// ClipID identifies an audio or MIDI clip owned by the clip store.
	ClipID uint64

	TrackKind int

	// Track is one channel of the mixer: its fader state, its FX chain and
	// the clips placed on it. The zero value is not usable; use NewTrack.
	Track struct {
		ID   TrackID
		Kind TrackKind
		Name string

		// VolumeDB is the fader position in decibels. It is clamped to
		// [-96, +6] on every write; -96 dB is the silence floor and maps
		// to a linear gain of exactly zero.
		VolumeDB float32
		// Pan is the stereo position, -1 full left to +1 full right.
		Pan  float32
		Mute bool
		Solo bool

		// Armed and InputMonitoring belong to the recording path; the
		// mixing loop ignores them but they are part of the track state
		// the control surface exposes.
		Armed           bool
		InputMonitoring bool

		// FXChain is the ordered list of effect IDs applied to the track
		// signal, first entry first.
		FXChain []EffectID

		AudioClips []ClipPlacement
		MidiClips  []ClipPlacement

		// PeakL and PeakR are the most recent per-buffer peak meter
		// values, written by the audio goroutine.
		PeakL, PeakR float32
	}

	// ClipPlacement puts a clip on a track's timeline. The clip itself is
	// owned by the clip store; deleting a track drops only the placement.
	ClipPlacement struct {
		Clip      ClipID  `yaml:"clip"`
		StartTime float64 `yaml:"startTime"`
		GainDB    float32 `yaml:"gainDb,omitempty"`
	}
)

const (
	TrackAudio TrackKind = iota
	TrackMidi
	TrackReturn
	TrackGroup
	TrackMaster
)

// MasterTrackID is reserved at initialization for the single master track.
const MasterTrackID TrackID = 0

const (
	// MinVolumeDB is the fader silence floor; at or below it the track
	// gain is exactly zero rather than a denormal-range value.
	MinVolumeDB = -96.0
	MaxVolumeDB = 6.0

	// clipSilenceDB is the corresponding floor for per-clip gain.
	clipSilenceDB = -70.0
)

func NewTrack(id TrackID, kind TrackKind, name string) *Track {
	// audio and MIDI tracks start armed, ready to record
	armed := kind == TrackAudio || kind == TrackMidi
	return &Track{
		ID:              id,
		Kind:            kind,
		Name:            name,
		VolumeDB:        0,
		Pan:             0,
		Armed:           armed,
		InputMonitoring: armed,
	}
}

// SetVolumeDB stores the fader position, clamped to [MinVolumeDB, MaxVolumeDB].
func (t *Track) SetVolumeDB(db float32) {
	t.VolumeDB = clampf(db, MinVolumeDB, MaxVolumeDB)
}

// SetPan stores the pan position, clamped to [-1, 1].
func (t *Track) SetPan(pan float32) {
	t.Pan = clampf(pan, -1, 1)
}

// Gain converts the fader position to linear gain: 0 dB is unity, +6 dB is
// about 2x, and anything at or below the floor is exactly zero.
func (t *Track) Gain() float32 {
	return DBToGain(t.VolumeDB)
}

// PanGains returns the (left, right) gain factors for the current pan
// position using the equal-power law: pan maps linearly to an angle in
// [0, π/2], left = cos, right = sin. Center is ≈0.707/0.707 rather than
// 0.5/0.5 so perceived loudness stays constant across the field.
func (t *Track) PanGains() (left, right float32) {
	theta := (t.Pan + 1) * math32.Pi / 4
	return math32.Cos(theta), math32.Sin(theta)
}

// UpdatePeaks stores per-buffer meter values; called from the audio goroutine.
func (t *Track) UpdatePeaks(left, right float32) {
	t.PeakL = math32.Abs(left)
	t.PeakR = math32.Abs(right)
}

// PeakDB returns the meter values in decibels, with the silence floor
// standing in for -inf.
func (t *Track) PeakDB() (left, right float32) {
	return GainToDB(t.PeakL), GainToDB(t.PeakR)
}

// Gain converts the per-clip gain to linear, with a -70 dB silence floor.
func (c ClipPlacement) Gain() float32 {
	if c.GainDB <= clipSilenceDB {
		return 0
	}
	return math32.Pow(10, c.GainDB/20)
}

// DBToGain converts decibels to linear gain, forcing exact zero at or below
// the MinVolumeDB floor.
func DBToGain(db float32) float32 {
	if db <= MinVolumeDB {
		return 0
	}
	return math32.Pow(10, db/20)
}

// GainToDB converts linear gain to decibels, returning MinVolumeDB for
// non-positive gains.
func GainToDB(gain float32) float32 {
	if gain <= 0 {
		return MinVolumeDB
	}
	return 20 * math32.Log10(gain)
}

func (k TrackKind) String() string {
	switch k {
	case TrackAudio:
		return "Audio"
	case TrackMidi:
		return "MIDI"
	case TrackReturn:
		return "Return"
	case TrackGroup:
		return "Group"
	case TrackMaster:
		return "Master"
	}
	return fmt.Sprintf("TrackKind(%d)", int(k))
}

// ParseTrackKind parses the control-surface kind strings ("audio", "midi",
// "return", "group", "master"), case-insensitively.
func ParseTrackKind(s string) (TrackKind, error) {
	switch strings.ToLower(s) {
	case "audio":
		return TrackAudio, nil
	case "midi":
		return TrackMidi, nil
	case "return":
		return TrackReturn, nil
	case "group":
		return TrackGroup, nil
	case "master":
		return TrackMaster, nil
	}
	return 0, InvalidTrackKindError{Kind: s}
}

func (k TrackKind) MarshalYAML() (interface{}, error) {
	return strings.ToLower(k.String()), nil
}

func (k *TrackKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	kind, err := ParseTrackKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
