// Package dsp implements the built-in effects of the mixing engine: a
// 4-band parametric EQ, a compressor, a Freeverb-style reverb, a stereo
// delay, a brick-wall limiter and a chorus. Every effect transforms one
// stereo frame per call and keeps its transient state private, so the
// mixing loop can run them back to back without any coordination.
package dsp

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

type (
	// Effect is one entry of a track's FX chain.
	Effect interface {
		// ProcessFrame transforms one stereo frame. It must be real-time
		// safe: no allocation, no locking, no unbounded work. Stateful
		// algorithms advance their internal state by exactly one frame.
		ProcessFrame(left, right float32) (float32, float32)

		// Reset clears transient state (delay lines, envelopes, LFO
		// phase) without touching parameters, so re-enabling a bypassed
		// effect or seeking does not replay stale audio.
		Reset()

		// SetParameter sets a control parameter by name, clamped to its
		// legal range. The mixer applies these between buffers on the
		// audio goroutine.
		SetParameter(name string, value float32) error

		Kind() Kind
		Name() string
	}

	Kind int

	// ParamSpec documents one parameter an effect kind takes; the table
	// below drives control-surface validation, clamping, persistence and
	// instance defaults.
	ParamSpec struct {
		Name    string
		Min     float32
		Max     float32
		Default float32
	}
)

const (
	KindEQ Kind = iota
	KindCompressor
	KindReverb
	KindDelay
	KindLimiter
	KindChorus
)

// EffectParams documents all the available effect kinds and the parameters
// they take.
var EffectParams = map[Kind][]ParamSpec{
	KindEQ: {
		{Name: "low_freq", Min: 20, Max: 1000, Default: 100},
		{Name: "low_gain", Min: -24, Max: 24, Default: 0},
		{Name: "mid1_freq", Min: 100, Max: 8000, Default: 500},
		{Name: "mid1_gain", Min: -24, Max: 24, Default: 0},
		{Name: "mid1_q", Min: 0.1, Max: 10, Default: 1},
		{Name: "mid2_freq", Min: 100, Max: 16000, Default: 2000},
		{Name: "mid2_gain", Min: -24, Max: 24, Default: 0},
		{Name: "mid2_q", Min: 0.1, Max: 10, Default: 1},
		{Name: "high_freq", Min: 1000, Max: 20000, Default: 8000},
		{Name: "high_gain", Min: -24, Max: 24, Default: 0},
	},
	KindCompressor: {
		{Name: "threshold", Min: -60, Max: 0, Default: -20},
		{Name: "ratio", Min: 1, Max: 20, Default: 4},
		{Name: "attack", Min: 0.1, Max: 500, Default: 10},
		{Name: "release", Min: 1, Max: 2000, Default: 100},
		{Name: "makeup", Min: 0, Max: 24, Default: 0},
	},
	KindReverb: {
		{Name: "room_size", Min: 0, Max: 1, Default: 0.5},
		{Name: "damping", Min: 0, Max: 1, Default: 0.5},
		{Name: "wet_dry", Min: 0, Max: 1, Default: 0.3},
	},
	KindDelay: {
		{Name: "time", Min: 1, Max: maxDelayMs, Default: 500},
		{Name: "feedback", Min: 0, Max: 0.99, Default: 0.4},
		{Name: "wet_dry", Min: 0, Max: 1, Default: 0.3},
	},
	KindLimiter: {
		{Name: "threshold", Min: -24, Max: 0, Default: -0.1},
		{Name: "release", Min: 1, Max: 1000, Default: 50},
	},
	KindChorus: {
		{Name: "rate", Min: 0.01, Max: 10, Default: 1.5},
		{Name: "depth", Min: 0, Max: 1, Default: 0.5},
		{Name: "wet_dry", Min: 0, Max: 1, Default: 0.5},
	},
}

// New creates an effect instance of the given kind with default parameters.
func New(kind Kind, sampleRate int) (Effect, error) {
	switch kind {
	case KindEQ:
		return NewParametricEQ(sampleRate), nil
	case KindCompressor:
		return NewCompressor(sampleRate), nil
	case KindReverb:
		return NewReverb(sampleRate), nil
	case KindDelay:
		return NewDelay(sampleRate), nil
	case KindLimiter:
		return NewLimiter(sampleRate), nil
	case KindChorus:
		return NewChorus(sampleRate), nil
	}
	return nil, boojy.InvalidEffectKindError{Kind: fmt.Sprintf("Kind(%d)", int(kind))}
}

// ParseKind parses the control-surface kind tokens ("eq", "compressor",
// "reverb", "delay", "limiter", "chorus"), case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "eq":
		return KindEQ, nil
	case "compressor":
		return KindCompressor, nil
	case "reverb":
		return KindReverb, nil
	case "delay":
		return KindDelay, nil
	case "limiter":
		return KindLimiter, nil
	case "chorus":
		return KindChorus, nil
	}
	return 0, boojy.InvalidEffectKindError{Kind: s}
}

// String returns the persistence/control-surface token for the kind.
func (k Kind) String() string {
	switch k {
	case KindEQ:
		return "eq"
	case KindCompressor:
		return "compressor"
	case KindReverb:
		return "reverb"
	case KindDelay:
		return "delay"
	case KindLimiter:
		return "limiter"
	case KindChorus:
		return "chorus"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DisplayName returns the human-readable effect name.
func (k Kind) DisplayName() string {
	switch k {
	case KindEQ:
		return "Parametric EQ"
	case KindCompressor:
		return "Compressor"
	case KindReverb:
		return "Reverb"
	case KindDelay:
		return "Delay"
	case KindLimiter:
		return "Limiter"
	case KindChorus:
		return "Chorus"
	}
	return k.String()
}

// ClampParam validates a parameter name against the kind's table and
// returns the value clamped to its legal range. This is the single place
// any parameter write goes through, whether it comes from the control
// surface, a project load, or a test.
func ClampParam(kind Kind, name string, value float32) (float32, error) {
	for _, spec := range EffectParams[kind] {
		if spec.Name == name {
			if value < spec.Min {
				return spec.Min, nil
			}
			if value > spec.Max {
				return spec.Max, nil
			}
			return value, nil
		}
	}
	return 0, boojy.ParamNotFoundError{Kind: kind.String(), Param: name}
}

// DBToGain converts decibels to a linear gain factor.
func DBToGain(db float32) float32 {
	return math32.Pow(10, db/20)
}

// GainToDB converts a linear gain factor to decibels, flooring very small
// values so silence never turns into -Inf inside envelope math.
func GainToDB(gain float32) float32 {
	if gain < 1e-6 {
		return -120
	}
	return 20 * math32.Log10(gain)
}

// Defaults returns a fresh parameter map with the kind's default values.
func Defaults(kind Kind) map[string]float32 {
	params := make(map[string]float32, len(EffectParams[kind]))
	for _, spec := range EffectParams[kind] {
		params[spec.Name] = spec.Default
	}
	return params
}
