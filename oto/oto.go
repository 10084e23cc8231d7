// Package oto wraps hajimehoshi/oto as the engine's audio output.
package oto

import (
	"fmt"

	"github.com/hajimehoshi/oto"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

type OtoContext oto.Context
type OtoOutput struct {
	player    *oto.Player
	tmpFloats []float32
	tmpBuffer []byte
}

func (c *OtoContext) Output() boojy.AudioSink {
	return &OtoOutput{player: (*oto.Context)(c).NewPlayer()}
}

const otoBufferSize = 8192

// NewContext creates an audio context playing 16-bit stereo at the engine
// sample rate.
func NewContext() (*OtoContext, error) {
	context, err := oto.NewContext(boojy.SampleRate, 2, 2, otoBufferSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	return (*OtoContext)(context), nil
}

func (c *OtoContext) Close() error {
	if err := (*oto.Context)(c).Close(); err != nil {
		return fmt.Errorf("cannot close oto context: %w", err)
	}
	return nil
}

// WriteAudio implements boojy.AudioSink. It blocks until the device has
// accepted the whole buffer, which is what paces the player goroutine.
func (o *OtoOutput) WriteAudio(buffer boojy.AudioBuffer) error {
	o.tmpFloats = buffer.Interleave(o.tmpFloats[:0])
	o.tmpBuffer = FloatBufferTo16BitLE(o.tmpFloats, o.tmpBuffer[:0])
	if _, err := o.player.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

// Close disposes of resources
func (o *OtoOutput) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
