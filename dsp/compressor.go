package dsp

import "github.com/chewxy/math32"

// Compressor is a feed-forward RMS compressor. It derives one target gain
// from the stereo RMS level and smooths it with separate attack and
// release coefficients, so the gain reduction is linked across channels
// and the image does not wander when one channel peaks alone.
type Compressor struct {
	sampleRate float32

	thresholdDB float32
	ratio       float32
	attackMs    float32
	releaseMs   float32
	makeupDB    float32

	attackCoeff  float32
	releaseCoeff float32
	makeupGain   float32

	// envelope is the smoothed gain reduction, 1 meaning none.
	envelope float32
}

func NewCompressor(sampleRate int) *Compressor {
	c := &Compressor{
		sampleRate:  float32(sampleRate),
		thresholdDB: -20,
		ratio:       4,
		attackMs:    10,
		releaseMs:   100,
		envelope:    1,
	}
	c.updateCoefficients()
	return c
}

func (c *Compressor) ProcessFrame(left, right float32) (float32, float32) {
	level := math32.Sqrt((left*left + right*right) / 2)
	target := c.gainReduction(level)

	if target < c.envelope {
		c.envelope = c.attackCoeff*c.envelope + (1-c.attackCoeff)*target
	} else {
		c.envelope = c.releaseCoeff*c.envelope + (1-c.releaseCoeff)*target
	}

	gain := c.envelope * c.makeupGain
	return left * gain, right * gain
}

func (c *Compressor) Reset() {
	c.envelope = 1
}

func (c *Compressor) SetParameter(name string, value float32) error {
	value, err := ClampParam(KindCompressor, name, value)
	if err != nil {
		return err
	}
	switch name {
	case "threshold":
		c.thresholdDB = value
	case "ratio":
		c.ratio = value
	case "attack":
		c.attackMs = value
	case "release":
		c.releaseMs = value
	case "makeup":
		c.makeupDB = value
	}
	c.updateCoefficients()
	return nil
}

func (c *Compressor) Kind() Kind   { return KindCompressor }
func (c *Compressor) Name() string { return KindCompressor.DisplayName() }

// gainReduction returns the unsmoothed target gain for a linear input level.
func (c *Compressor) gainReduction(level float32) float32 {
	if level <= 0 {
		return 1
	}
	levelDB := 20 * math32.Log10(level)
	if levelDB < c.thresholdDB {
		return 1
	}
	overDB := levelDB - c.thresholdDB
	reductionDB := overDB * (1 - 1/c.ratio)
	return DBToGain(-reductionDB)
}

func (c *Compressor) updateCoefficients() {
	c.attackCoeff = envelopeCoeff(c.attackMs, c.sampleRate)
	c.releaseCoeff = envelopeCoeff(c.releaseMs, c.sampleRate)
	c.makeupGain = DBToGain(c.makeupDB)
}

// envelopeCoeff converts a time constant in milliseconds to a one-pole
// smoothing coefficient at the given sample rate.
func envelopeCoeff(ms, sampleRate float32) float32 {
	return math32.Exp(-1 / (ms * 0.001 * sampleRate))
}
