package dsp

// maxDelayMs bounds the delay time and sizes the circular buffers.
const maxDelayMs = 2000

// Delay is a stereo feedback delay with independent circular buffers per
// channel and a shared write head.
type Delay struct {
	sampleRate float32

	timeMs   float32
	feedback float32
	wetDry   float32

	bufL, bufR []float32
	writePos   int
	delaySamps int
}

func NewDelay(sampleRate int) *Delay {
	size := sampleRate * maxDelayMs / 1000
	d := &Delay{
		sampleRate: float32(sampleRate),
		timeMs:     500,
		feedback:   0.4,
		wetDry:     0.3,
		bufL:       make([]float32, size),
		bufR:       make([]float32, size),
	}
	d.updateDelay()
	return d
}

func (d *Delay) ProcessFrame(left, right float32) (float32, float32) {
	readPos := d.writePos - d.delaySamps
	if readPos < 0 {
		readPos += len(d.bufL)
	}
	wetL := d.bufL[readPos]
	wetR := d.bufR[readPos]

	d.bufL[d.writePos] = left + wetL*d.feedback
	d.bufR[d.writePos] = right + wetR*d.feedback
	d.writePos++
	if d.writePos >= len(d.bufL) {
		d.writePos = 0
	}

	dry := 1 - d.wetDry
	return left*dry + wetL*d.wetDry, right*dry + wetR*d.wetDry
}

func (d *Delay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.writePos = 0
}

func (d *Delay) SetParameter(name string, value float32) error {
	value, err := ClampParam(KindDelay, name, value)
	if err != nil {
		return err
	}
	switch name {
	case "time":
		d.timeMs = value
		d.updateDelay()
	case "feedback":
		d.feedback = value
	case "wet_dry":
		d.wetDry = value
	}
	return nil
}

func (d *Delay) Kind() Kind   { return KindDelay }
func (d *Delay) Name() string { return KindDelay.DisplayName() }

func (d *Delay) updateDelay() {
	d.delaySamps = int(d.timeMs * 0.001 * d.sampleRate)
	if d.delaySamps >= len(d.bufL) {
		d.delaySamps = len(d.bufL) - 1
	}
	if d.delaySamps < 1 {
		d.delaySamps = 1
	}
}
