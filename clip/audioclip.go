package clip

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

// AudioClip holds decoded sample data, already converted to stereo float32
// at the engine rate, so the mixing loop can index frames directly.
type AudioClip struct {
	ID         boojy.ClipID
	Name       string
	SourceRate int
	Frames     boojy.AudioBuffer
}

// NumFrames returns the clip length in engine-rate frames.
func (c *AudioClip) NumFrames() int { return len(c.Frames) }

// Duration returns the clip length in seconds.
func (c *AudioClip) Duration() float64 {
	return float64(len(c.Frames)) / float64(boojy.SampleRate)
}

// Frame returns the sample pair at the given frame offset, or silence when
// the offset falls outside the clip.
func (c *AudioClip) Frame(offset int) (float32, float32) {
	if offset < 0 || offset >= len(c.Frames) {
		return 0, 0
	}
	return c.Frames[offset][0], c.Frames[offset][1]
}

// LoadWAV decodes a RIFF/WAVE file into an AudioClip. Mono files are
// duplicated to both channels, extra channels beyond the first two are
// dropped, and any source rate is linearly resampled to the engine rate.
func LoadWAV(path string) (*AudioClip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding %v: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("decoding %v: no channels", path)
	}
	clip := &AudioClip{
		Name:       path,
		SourceRate: buf.Format.SampleRate,
		Frames:     framesFromPCM(buf, int(dec.BitDepth)),
	}
	if clip.SourceRate != boojy.SampleRate {
		clip.Frames = resample(clip.Frames, clip.SourceRate, boojy.SampleRate)
	}
	return clip, nil
}

// framesFromPCM deinterleaves an int PCM buffer into normalized stereo
// frames.
func framesFromPCM(buf *audio.IntBuffer, bitDepth int) boojy.AudioBuffer {
	channels := buf.Format.NumChannels
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1 / float32(int(1)<<(bitDepth-1))

	numFrames := len(buf.Data) / channels
	frames := make(boojy.AudioBuffer, numFrames)
	for i := 0; i < numFrames; i++ {
		l := float32(buf.Data[i*channels]) * scale
		r := l
		if channels > 1 {
			r = float32(buf.Data[i*channels+1]) * scale
		}
		frames[i] = [2]float32{l, r}
	}
	return frames
}

// resample converts frames between rates with linear interpolation. Good
// enough for preview playback; offline render quality is the source rate's
// problem.
func resample(in boojy.AudioBuffer, from, to int) boojy.AudioBuffer {
	if from == to || len(in) == 0 {
		return in
	}
	ratio := float64(from) / float64(to)
	outLen := int(float64(len(in)) / ratio)
	out := make(boojy.AudioBuffer, outLen)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		frac := float32(pos - float64(j))
		k := j + 1
		if k >= len(in) {
			k = len(in) - 1
		}
		out[i][0] = in[j][0] + (in[k][0]-in[j][0])*frac
		out[i][1] = in[j][1] + (in[k][1]-in[j][1])*frac
	}
	return out
}
