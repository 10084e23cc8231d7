package mixer

import (
	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

type (
	// MeterResult is one buffer's worth of level measurements, published
	// to the control plane over the broker.
	MeterResult struct {
		MasterPeakL float32
		MasterPeakR float32
		MasterRMS   float32
		Tracks      []TrackPeak
	}

	TrackPeak struct {
		Track boojy.TrackID
		PeakL float32
		PeakR float32
	}

	// meter measures buffers with reusable scratch so the audio goroutine
	// never allocates for metering.
	meter struct {
		left  []float32
		right []float32
		tmp   []float32
	}
)

// peaks returns the per-channel peak absolute values of a buffer.
func (m *meter) peaks(buf boojy.AudioBuffer) (peakL, peakR float32) {
	if len(buf) == 0 {
		return 0, 0
	}
	m.deinterleave(buf)
	vek32.Abs_Inplace(m.left)
	vek32.Abs_Inplace(m.right)
	return vek32.Max(m.left), vek32.Max(m.right)
}

// rms returns the buffer's stereo RMS level. Call after peaks; it reuses
// the rectified scratch channels.
func (m *meter) rms(buf boojy.AudioBuffer) float32 {
	if len(buf) == 0 {
		return 0
	}
	l := vek32.Mul_Into(m.tmp, m.left, m.left)
	power := vek32.Mean(l)
	r := vek32.Mul_Into(m.tmp, m.right, m.right)
	power = (power + vek32.Mean(r)) / 2
	return math32.Sqrt(power)
}

func (m *meter) deinterleave(buf boojy.AudioBuffer) {
	setSliceLength(&m.left, len(buf))
	setSliceLength(&m.right, len(buf))
	setSliceLength(&m.tmp, len(buf))
	for i, frame := range buf {
		m.left[i] = frame[0]
		m.right[i] = frame[1]
	}
}

func setSliceLength[S ~[]E, E any](slice *S, length int) {
	if cap(*slice) < length {
		*slice = make(S, length)
	}
	*slice = (*slice)[:length]
}
