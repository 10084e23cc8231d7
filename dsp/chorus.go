package dsp

import "github.com/chewxy/math32"

// Chorus modulates a short delay line with a sine LFO. The delay swings
// around 15 ms by up to 10 ms of depth, which is enough detune to thicken
// a source without sounding like a discrete echo.
type Chorus struct {
	sampleRate float32

	rateHz float32
	depth  float32
	wetDry float32

	bufL, bufR []float32
	writePos   int
	lfoPhase   float32
}

const (
	chorusMaxDelaySec = 0.05
	chorusBaseMs      = 15.0
	chorusSwingMs     = 10.0
)

func NewChorus(sampleRate int) *Chorus {
	size := int(float32(sampleRate) * chorusMaxDelaySec)
	return &Chorus{
		sampleRate: float32(sampleRate),
		rateHz:     1.5,
		depth:      0.5,
		wetDry:     0.5,
		bufL:       make([]float32, size),
		bufR:       make([]float32, size),
	}
}

func (c *Chorus) ProcessFrame(left, right float32) (float32, float32) {
	size := len(c.bufL)

	lfo := math32.Sin(c.lfoPhase * 2 * math32.Pi)
	c.lfoPhase += c.rateHz / c.sampleRate
	if c.lfoPhase >= 1 {
		c.lfoPhase -= 1
	}

	delayMs := chorusBaseMs + lfo*chorusSwingMs*c.depth
	delaySamps := int(delayMs * 0.001 * c.sampleRate)
	if delaySamps > size-1 {
		delaySamps = size - 1
	}

	readPos := (c.writePos + size - delaySamps) % size
	wetL := c.bufL[readPos]
	wetR := c.bufR[readPos]

	c.bufL[c.writePos] = left
	c.bufR[c.writePos] = right
	c.writePos++
	if c.writePos >= size {
		c.writePos = 0
	}

	dry := 1 - c.wetDry
	return left*dry + wetL*c.wetDry, right*dry + wetR*c.wetDry
}

func (c *Chorus) Reset() {
	zero(c.bufL)
	zero(c.bufR)
	c.writePos = 0
	c.lfoPhase = 0
}

func (c *Chorus) SetParameter(name string, value float32) error {
	value, err := ClampParam(KindChorus, name, value)
	if err != nil {
		return err
	}
	switch name {
	case "rate":
		c.rateHz = value
	case "depth":
		c.depth = value
	case "wet_dry":
		c.wetDry = value
	}
	return nil
}

func (c *Chorus) Kind() Kind   { return KindChorus }
func (c *Chorus) Name() string { return KindChorus.DisplayName() }
