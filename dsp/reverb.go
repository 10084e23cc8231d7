package dsp

// Reverb is a Freeverb-style reverberator: eight parallel damped comb
// filters per channel feeding four serial allpasses, with the right
// channel's delay lines lengthened by a fixed stereo spread. Input is
// summed to mono before the comb bank, which keeps the tail symmetric.
type Reverb struct {
	roomSize float32
	damping  float32
	wetDry   float32

	combL    [numCombs]comb
	combR    [numCombs]comb
	allpassL [numAllpasses]allpass
	allpassR [numAllpasses]allpass
}

const (
	numCombs     = 8
	numAllpasses = 4

	// Jezar's Freeverb tunings, in samples at 44.1 kHz. Scaled to the
	// actual sample rate at construction so decay times stay put.
	combSpread    = 23
	allpassSpread = 11

	allpassFeedback = 0.5
	wetScale        = 0.015
)

var (
	combTunings    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTunings = [numAllpasses]int{556, 441, 341, 225}
)

type comb struct {
	buf   []float32
	pos   int
	store float32
}

func (c *comb) process(in, roomSize, damping float32) float32 {
	out := c.buf[c.pos]
	c.store = c.store*(1-damping) + out*damping
	c.buf[c.pos] = in + c.store*roomSize
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

type allpass struct {
	buf []float32
	pos int
}

func (a *allpass) process(in float32) float32 {
	delayed := a.buf[a.pos]
	a.buf[a.pos] = in + delayed*allpassFeedback
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return delayed - in*allpassFeedback
}

func NewReverb(sampleRate int) *Reverb {
	r := &Reverb{
		roomSize: 0.5,
		damping:  0.5,
		wetDry:   0.3,
	}
	scale := func(samples int) int {
		n := samples * sampleRate / 44100
		if n < 1 {
			n = 1
		}
		return n
	}
	for i, tuning := range combTunings {
		r.combL[i].buf = make([]float32, scale(tuning))
		r.combR[i].buf = make([]float32, scale(tuning)+combSpread)
	}
	for i, tuning := range allpassTunings {
		r.allpassL[i].buf = make([]float32, scale(tuning))
		r.allpassR[i].buf = make([]float32, scale(tuning)+allpassSpread)
	}
	return r
}

func (r *Reverb) ProcessFrame(left, right float32) (float32, float32) {
	in := (left + right) * 0.5

	var wetL, wetR float32
	for i := range r.combL {
		wetL += r.combL[i].process(in, r.roomSize, r.damping)
		wetR += r.combR[i].process(in, r.roomSize, r.damping)
	}
	for i := range r.allpassL {
		wetL = r.allpassL[i].process(wetL)
		wetR = r.allpassR[i].process(wetR)
	}

	dry := 1 - r.wetDry
	wet := r.wetDry * wetScale
	return left*dry + wetL*wet, right*dry + wetR*wet
}

func (r *Reverb) Reset() {
	for i := range r.combL {
		zero(r.combL[i].buf)
		zero(r.combR[i].buf)
		r.combL[i].pos, r.combR[i].pos = 0, 0
		r.combL[i].store, r.combR[i].store = 0, 0
	}
	for i := range r.allpassL {
		zero(r.allpassL[i].buf)
		zero(r.allpassR[i].buf)
		r.allpassL[i].pos, r.allpassR[i].pos = 0, 0
	}
}

func (r *Reverb) SetParameter(name string, value float32) error {
	value, err := ClampParam(KindReverb, name, value)
	if err != nil {
		return err
	}
	switch name {
	case "room_size":
		r.roomSize = value
	case "damping":
		r.damping = value
	case "wet_dry":
		r.wetDry = value
	}
	return nil
}

func (r *Reverb) Kind() Kind   { return KindReverb }
func (r *Reverb) Name() string { return KindReverb.DisplayName() }

func zero(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}
