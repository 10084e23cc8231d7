package dsp

// ParametricEQ is a 4-band equalizer: a low shelf, two peaking mids and a
// high shelf. Each channel runs its own copy of the filter cascade so the
// stereo image stays phase-coherent.
type ParametricEQ struct {
	sampleRate float32

	lowFreq, lowGain     float32
	mid1Freq, mid1Gain   float32
	mid1Q                float32
	mid2Freq, mid2Gain   float32
	mid2Q                float32
	highFreq, highGain   float32

	left  [4]biquad
	right [4]biquad
}

func NewParametricEQ(sampleRate int) *ParametricEQ {
	eq := &ParametricEQ{
		sampleRate: float32(sampleRate),
		lowFreq:    100,
		mid1Freq:   500,
		mid1Q:      1,
		mid2Freq:   2000,
		mid2Q:      1,
		highFreq:   8000,
	}
	eq.updateCoefficients()
	return eq
}

func (eq *ParametricEQ) ProcessFrame(left, right float32) (float32, float32) {
	for i := range eq.left {
		left = eq.left[i].process(left)
		right = eq.right[i].process(right)
	}
	return left, right
}

func (eq *ParametricEQ) Reset() {
	for i := range eq.left {
		eq.left[i].reset()
		eq.right[i].reset()
	}
}

func (eq *ParametricEQ) SetParameter(name string, value float32) error {
	value, err := ClampParam(KindEQ, name, value)
	if err != nil {
		return err
	}
	switch name {
	case "low_freq":
		eq.lowFreq = value
	case "low_gain":
		eq.lowGain = value
	case "mid1_freq":
		eq.mid1Freq = value
	case "mid1_gain":
		eq.mid1Gain = value
	case "mid1_q":
		eq.mid1Q = value
	case "mid2_freq":
		eq.mid2Freq = value
	case "mid2_gain":
		eq.mid2Gain = value
	case "mid2_q":
		eq.mid2Q = value
	case "high_freq":
		eq.highFreq = value
	case "high_gain":
		eq.highGain = value
	}
	eq.updateCoefficients()
	return nil
}

func (eq *ParametricEQ) Kind() Kind   { return KindEQ }
func (eq *ParametricEQ) Name() string { return KindEQ.DisplayName() }

// updateCoefficients recomputes all eight filters. Filter state is kept,
// only the coefficients change, so parameter sweeps stay click-free.
func (eq *ParametricEQ) updateCoefficients() {
	eq.left[0].lowShelf(eq.sampleRate, eq.lowFreq, eq.lowGain)
	eq.left[1].peaking(eq.sampleRate, eq.mid1Freq, eq.mid1Gain, eq.mid1Q)
	eq.left[2].peaking(eq.sampleRate, eq.mid2Freq, eq.mid2Gain, eq.mid2Q)
	eq.left[3].highShelf(eq.sampleRate, eq.highFreq, eq.highGain)
	for i := range eq.right {
		l, r := &eq.left[i], &eq.right[i]
		r.b0, r.b1, r.b2 = l.b0, l.b1, l.b2
		r.a1, r.a2 = l.a1, l.a2
	}
}
