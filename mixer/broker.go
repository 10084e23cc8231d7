package mixer

import (
	"sync"
	"time"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

type (
	// Broker carries messages between the control plane and the audio
	// goroutine. Communication is one channel per recipient: the engine
	// drains ToEngine between buffers, the control plane consumes meter
	// and alert traffic from ToControl at its leisure. Both directions
	// only ever use non-blocking sends, so neither side can stall the
	// other. The broker also pools audio buffers so meter publishing does
	// not allocate per buffer.
	Broker struct {
		ToEngine  chan MsgToEngine
		ToControl chan MsgToControl

		CloseEngine    chan struct{}
		FinishedEngine chan struct{}

		bufferPool sync.Pool
	}

	// MsgToEngine is applied by the audio goroutine between buffers. The
	// frequent message (a parameter update) is not boxed to avoid
	// allocations; rare messages travel boxed in Data.
	MsgToEngine struct {
		HasParamUpdate bool
		Effect         boojy.EffectID
		Param          string
		Value          float32

		ResetEffect boojy.EffectID // reset this instance's transient state, 0 = none

		Data any // e.g. func() to run on the audio goroutine
	}

	// MsgToControl carries meter results and engine incidents back to the
	// control plane.
	MsgToControl struct {
		HasMeters bool
		Meters    MeterResult

		Alert EngineAlert
	}

	// EngineAlert counts abnormal conditions the real-time path ran into
	// and could not report any other way.
	EngineAlert int
)

const (
	AlertNone EngineAlert = iota
	AlertDanglingEffect // a chain referenced an effect that left the arena
	AlertOutputClipped  // the limiter saw input above its ceiling
)

func NewBroker() *Broker {
	return &Broker{
		ToEngine:       make(chan MsgToEngine, 1024),
		ToControl:      make(chan MsgToControl, 1024),
		CloseEngine:    make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
		bufferPool:     sync.Pool{New: func() any { return &boojy.AudioBuffer{} }},
	}
}

// GetAudioBuffer returns an empty buffer from the pool. Return it with
// PutAudioBuffer when done.
func (b *Broker) GetAudioBuffer() *boojy.AudioBuffer {
	return b.bufferPool.Get().(*boojy.AudioBuffer)
}

// PutAudioBuffer returns a buffer to the pool, resetting its length but
// keeping its capacity.
func (b *Broker) PutAudioBuffer(buf *boojy.AudioBuffer) {
	if len(*buf) > 0 {
		*buf = (*buf)[:0]
	}
	b.bufferPool.Put(buf)
}

// TrySend sends a value to a channel unless it is full. It is guaranteed
// to be non-blocking; returns false if the value was dropped.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received or the timeout passes.
// ok is false on timeout or when the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
