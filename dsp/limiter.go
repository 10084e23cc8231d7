package dsp

import "github.com/chewxy/math32"

// Limiter is a brick-wall peak limiter with instant attack and exponential
// release. It tracks each channel's peak envelope separately but applies
// the smaller of the two gains to both, keeping the stereo image linked.
// The master bus runs one of these unconditionally after its FX chain.
type Limiter struct {
	sampleRate float32

	thresholdDB float32
	releaseMs   float32

	thresholdLin float32
	releaseCoeff float32
	envL, envR   float32
}

func NewLimiter(sampleRate int) *Limiter {
	l := &Limiter{
		sampleRate:  float32(sampleRate),
		thresholdDB: -0.1,
		releaseMs:   50,
	}
	l.updateCoefficients()
	return l
}

func (l *Limiter) ProcessFrame(left, right float32) (float32, float32) {
	leftAbs := math32.Abs(left)
	rightAbs := math32.Abs(right)

	if leftAbs > l.envL {
		l.envL = leftAbs
	} else {
		l.envL *= l.releaseCoeff
	}
	if rightAbs > l.envR {
		l.envR = rightAbs
	} else {
		l.envR *= l.releaseCoeff
	}

	gain := float32(1)
	if l.envL > l.thresholdLin {
		gain = l.thresholdLin / l.envL
	}
	if l.envR > l.thresholdLin {
		if g := l.thresholdLin / l.envR; g < gain {
			gain = g
		}
	}
	return left * gain, right * gain
}

func (l *Limiter) Reset() {
	l.envL, l.envR = 0, 0
}

func (l *Limiter) SetParameter(name string, value float32) error {
	value, err := ClampParam(KindLimiter, name, value)
	if err != nil {
		return err
	}
	switch name {
	case "threshold":
		l.thresholdDB = value
	case "release":
		l.releaseMs = value
	}
	l.updateCoefficients()
	return nil
}

func (l *Limiter) Kind() Kind   { return KindLimiter }
func (l *Limiter) Name() string { return KindLimiter.DisplayName() }

func (l *Limiter) updateCoefficients() {
	l.thresholdLin = DBToGain(l.thresholdDB)
	l.releaseCoeff = envelopeCoeff(l.releaseMs, l.sampleRate)
}
