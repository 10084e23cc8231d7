package dsp

import (
	"math"
	"testing"
)

// feed runs n frames of the given stereo sample through the effect and
// returns the last output frame.
func feed(e Effect, l, r float32, n int) (float32, float32) {
	var outL, outR float32
	for i := 0; i < n; i++ {
		outL, outR = e.ProcessFrame(l, r)
	}
	return outL, outR
}

func TestResetRestoresInitialOutput(t *testing.T) {
	for kind := range EffectParams {
		e, err := New(kind, rate)
		if err != nil {
			t.Fatalf("New(%v): %v", kind, err)
		}
		firstL, firstR := e.ProcessFrame(0.5, -0.5)
		feed(e, 0.3, 0.7, 1000)
		e.Reset()
		l, r := e.ProcessFrame(0.5, -0.5)
		if l != firstL || r != firstR {
			t.Errorf("%v: first frame after Reset (%v, %v), expected (%v, %v)", kind, l, r, firstL, firstR)
		}
	}
}

func TestEQUnityAtZeroGain(t *testing.T) {
	eq := NewParametricEQ(rate)
	for _, name := range []string{"low_gain", "mid1_gain", "mid2_gain", "high_gain"} {
		if err := eq.SetParameter(name, 0); err != nil {
			t.Fatalf("SetParameter(%s): %v", name, err)
		}
	}
	for i := 0; i < 256; i++ {
		in := float32(math.Sin(2 * math.Pi * 440 * float64(i) / rate))
		l, r := eq.ProcessFrame(in, in)
		if math.Abs(float64(l-in)) > 1e-4 || math.Abs(float64(r-in)) > 1e-4 {
			t.Fatalf("frame %d: zero-gain EQ altered the signal: in %v, out (%v, %v)", i, in, l, r)
		}
	}
}

func TestEQLowShelfBoostsBass(t *testing.T) {
	eq := NewParametricEQ(rate)
	if err := eq.SetParameter("low_gain", 12); err != nil {
		t.Fatal(err)
	}
	// 50 Hz sits well below the 100 Hz shelf corner, so a +12 dB shelf
	// should raise its level noticeably.
	var inPeak, outPeak float64
	for i := 0; i < rate; i++ {
		in := math.Sin(2 * math.Pi * 50 * float64(i) / rate)
		l, _ := eq.ProcessFrame(float32(in), float32(in))
		if i > rate/4 {
			inPeak = math.Max(inPeak, math.Abs(in))
			outPeak = math.Max(outPeak, math.Abs(float64(l)))
		}
	}
	gainDB := 20 * math.Log10(outPeak/inPeak)
	if gainDB < 9 {
		t.Errorf("+12 dB low shelf only gave %.2f dB at 50 Hz", gainDB)
	}
}

func TestCompressorAttenuatesAboveThreshold(t *testing.T) {
	c := NewCompressor(rate)
	mustSet(t, c, "threshold", -20)
	mustSet(t, c, "ratio", 4)
	mustSet(t, c, "attack", 1)
	mustSet(t, c, "release", 50)
	mustSet(t, c, "makeup", 0)
	// 0 dB input, 20 dB over threshold at 4:1 should settle around -15 dB
	// out, so well below unity.
	l, _ := feed(c, 1, 1, rate/2)
	if l > 0.5 {
		t.Errorf("loud signal not compressed: output %v", l)
	}
	if l < 0.05 {
		t.Errorf("compressor over-attenuated: output %v", l)
	}
}

func TestCompressorPassesQuietSignal(t *testing.T) {
	c := NewCompressor(rate)
	mustSet(t, c, "threshold", -20)
	mustSet(t, c, "makeup", 0)
	// -40 dB input sits under the threshold and should come out untouched.
	l, _ := feed(c, 0.01, 0.01, rate/2)
	if math.Abs(float64(l)-0.01) > 1e-4 {
		t.Errorf("quiet signal altered: output %v", l)
	}
}

func TestDelayImpulseTiming(t *testing.T) {
	d := NewDelay(rate)
	mustSet(t, d, "time", 100)
	mustSet(t, d, "feedback", 0)
	mustSet(t, d, "wet_dry", 1)
	delaySamps := rate / 10
	l, _ := d.ProcessFrame(1, 1)
	if l != 0 {
		t.Errorf("fully wet delay leaked the dry impulse: %v", l)
	}
	for i := 1; i < delaySamps; i++ {
		l, _ = d.ProcessFrame(0, 0)
		if l != 0 {
			t.Fatalf("echo arrived early at frame %d: %v", i, l)
		}
	}
	l, _ = d.ProcessFrame(0, 0)
	if l != 1 {
		t.Errorf("echo at %d frames was %v, expected 1", delaySamps, l)
	}
}

func TestLimiterHoldsCeiling(t *testing.T) {
	lim := NewLimiter(rate)
	mustSet(t, lim, "threshold", -6)
	// the release decay can let a sustained peak ride a hair over the
	// ceiling for one sample, so allow a small margin
	ceiling := float64(DBToGain(-6)) + 1e-3
	for i := 0; i < rate; i++ {
		l, r := lim.ProcessFrame(1, -1)
		if math.Abs(float64(l)) > ceiling || math.Abs(float64(r)) > ceiling {
			t.Fatalf("frame %d exceeded the -6 dB ceiling: (%v, %v)", i, l, r)
		}
	}
}

func TestLimiterPassesSignalUnderThreshold(t *testing.T) {
	lim := NewLimiter(rate)
	l, r := feed(lim, 0.25, 0.25, 100)
	if l != 0.25 || r != 0.25 {
		t.Errorf("signal under the ceiling was altered: (%v, %v)", l, r)
	}
}

func TestReverbProducesTail(t *testing.T) {
	rv := NewReverb(rate)
	mustSet(t, rv, "wet_dry", 1)
	rv.ProcessFrame(1, 1)
	var energy float64
	for i := 0; i < rate; i++ {
		l, r := rv.ProcessFrame(0, 0)
		energy += float64(l*l + r*r)
	}
	if energy == 0 {
		t.Error("impulse produced no reverb tail")
	}
}

func TestChorusDryPassthrough(t *testing.T) {
	ch := NewChorus(rate)
	mustSet(t, ch, "wet_dry", 0)
	for i := 0; i < 512; i++ {
		in := float32(math.Sin(2 * math.Pi * 220 * float64(i) / rate))
		l, _ := ch.ProcessFrame(in, in)
		if l != in {
			t.Fatalf("frame %d: dry chorus altered the signal: in %v, out %v", i, in, l)
		}
	}
}

func TestSetParameterRejectsUnknownName(t *testing.T) {
	for kind := range EffectParams {
		e, err := New(kind, rate)
		if err != nil {
			t.Fatalf("New(%v): %v", kind, err)
		}
		if err := e.SetParameter("no_such_param", 1); err == nil {
			t.Errorf("%v accepted an unknown parameter", kind)
		}
	}
}

func mustSet(t *testing.T, e Effect, name string, value float32) {
	t.Helper()
	if err := e.SetParameter(name, value); err != nil {
		t.Fatalf("SetParameter(%s, %v): %v", name, value, err)
	}
}
