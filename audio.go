package boojy

type (
	// AudioBuffer is a buffer of stereo audio samples of the form
	// [][2]float32{{l1, r1}, {l2, r2}, ...}. All rendering in the engine
	// happens in these; they are interleaved only at the output boundary.
	AudioBuffer [][2]float32

	AudioSink interface {
		WriteAudio(buffer AudioBuffer) error
		Close() error
	}

	AudioContext interface {
		Output() AudioSink
		Close() error
	}
)

// SampleRate is the fixed engine sample rate. Clips are resampled to this
// rate on import, so the mixing loop never converts.
const SampleRate = 44100

// Zero fills the buffer with silence.
func (b AudioBuffer) Zero() {
	for i := range b {
		b[i] = [2]float32{}
	}
}

// Interleave appends the buffer to dst as interleaved samples (L R L R ...)
// and returns the resulting slice. Pass dst with enough capacity to avoid
// allocating on the audio path.
func (b AudioBuffer) Interleave(dst []float32) []float32 {
	for _, frame := range b {
		dst = append(dst, frame[0], frame[1])
	}
	return dst
}
