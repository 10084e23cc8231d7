package dsp

import (
	"errors"
	"math"
	"testing"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

const rate = 44100

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"eq", KindEQ, false},
		{"EQ", KindEQ, false},
		{"compressor", KindCompressor, false},
		{"Reverb", KindReverb, false},
		{"delay", KindDelay, false},
		{"limiter", KindLimiter, false},
		{"chorus", KindChorus, false},
		{"phaser", 0, true},
	}
	for _, test := range tests {
		kind, err := ParseKind(test.in)
		if test.err {
			var kindErr boojy.InvalidEffectKindError
			if !errors.As(err, &kindErr) {
				t.Errorf("ParseKind(%q): expected InvalidEffectKindError, got %v", test.in, err)
			}
			continue
		}
		if err != nil || kind != test.want {
			t.Errorf("ParseKind(%q): got (%v, %v), expected %v", test.in, kind, err, test.want)
		}
	}
}

func TestNewCoversAllKinds(t *testing.T) {
	for kind := range EffectParams {
		e, err := New(kind, rate)
		if err != nil {
			t.Fatalf("New(%v) failed: %v", kind, err)
		}
		if e.Kind() != kind {
			t.Errorf("New(%v) returned an effect of kind %v", kind, e.Kind())
		}
	}
}

func TestClampParam(t *testing.T) {
	v, err := ClampParam(KindDelay, "feedback", 5)
	if err != nil || v != 0.99 {
		t.Errorf("feedback should clamp to 0.99, got (%v, %v)", v, err)
	}
	v, err = ClampParam(KindCompressor, "threshold", -120)
	if err != nil || v != -60 {
		t.Errorf("threshold should clamp to -60, got (%v, %v)", v, err)
	}
	_, err = ClampParam(KindReverb, "sparkle", 1)
	var paramErr boojy.ParamNotFoundError
	if !errors.As(err, &paramErr) {
		t.Errorf("unknown parameter should fail with ParamNotFoundError, got %v", err)
	}
}

func TestDefaultsMatchTable(t *testing.T) {
	for kind, specs := range EffectParams {
		defaults := Defaults(kind)
		if len(defaults) != len(specs) {
			t.Errorf("%v: %d defaults for %d parameters", kind, len(defaults), len(specs))
		}
		for _, spec := range specs {
			if defaults[spec.Name] != spec.Default {
				t.Errorf("%v %s: default %v, expected %v", kind, spec.Name, defaults[spec.Name], spec.Default)
			}
		}
	}
}

func TestDBConversion(t *testing.T) {
	if g := DBToGain(0); math.Abs(float64(g)-1) > 1e-6 {
		t.Errorf("0 dB should be unity, got %v", g)
	}
	if g := DBToGain(-20); math.Abs(float64(g)-0.1) > 1e-6 {
		t.Errorf("-20 dB should be 0.1, got %v", g)
	}
	if db := GainToDB(2); math.Abs(float64(db)-6.0206) > 1e-3 {
		t.Errorf("gain 2 should be about +6 dB, got %v", db)
	}
	if db := GainToDB(0); db != -120 {
		t.Errorf("zero gain should floor at -120 dB, got %v", db)
	}
}
