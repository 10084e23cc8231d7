package mixer

import (
	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

// Player runs the audio graph on its own goroutine, pacing itself against
// a blocking AudioSink. Between buffers it drains the engine queue, so
// parameter updates and resets land at buffer boundaries and the render
// itself stays lock-free.
type Player struct {
	graph   *AudioGraph
	effects *EffectManager
	broker  *Broker

	bufferSize int
	playing    bool
}

// DefaultBufferSize is the render quantum in frames.
const DefaultBufferSize = 1024

func NewPlayer(graph *AudioGraph, effects *EffectManager, broker *Broker) *Player {
	return &Player{
		graph:      graph,
		effects:    effects,
		broker:     broker,
		bufferSize: DefaultBufferSize,
	}
}

// Run renders buffers into the sink until CloseEngine is signalled. The
// sink's WriteAudio is expected to block, which is what paces rendering
// to real time. Closes FinishedEngine on exit.
func (p *Player) Run(sink boojy.AudioSink) {
	defer close(p.broker.FinishedEngine)
	buf := make(boojy.AudioBuffer, p.bufferSize)
	for {
		select {
		case <-p.broker.CloseEngine:
			return
		default:
		}
		p.processMessages()
		if p.playing {
			p.graph.Process(buf)
		} else {
			buf.Zero()
		}
		if err := sink.WriteAudio(buf); err != nil {
			return
		}
	}
}

// Render renders a fixed number of frames offline, as fast as the CPU
// allows. Used by the export path.
func (p *Player) Render(frames int64) boojy.AudioBuffer {
	out := make(boojy.AudioBuffer, 0, frames)
	buf := make(boojy.AudioBuffer, p.bufferSize)
	for int64(len(out)) < frames {
		p.processMessages()
		n := frames - int64(len(out))
		if n > int64(p.bufferSize) {
			n = int64(p.bufferSize)
		}
		p.graph.Process(buf[:n])
		out = append(out, buf[:n]...)
	}
	return out
}

// processMessages drains the engine queue without blocking.
func (p *Player) processMessages() {
	for {
		select {
		case msg := <-p.broker.ToEngine:
			if msg.HasParamUpdate || msg.ResetEffect != 0 {
				p.effects.apply(msg)
			}
			switch m := msg.Data.(type) {
			case nil:
			case StartPlayMsg:
				p.playing = true
			case StopPlayMsg:
				p.playing = false
			case SeekMsg:
				p.graph.Seek(m.Frame)
			case func():
				m()
			}
		default:
			return
		}
	}
}

type (
	StartPlayMsg struct{}
	StopPlayMsg  struct{}
	SeekMsg      struct{ Frame int64 }
)
