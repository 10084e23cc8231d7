package mixer

import (
	boojy "github.com/tyrbujac/boojy-audio-sub006"
	"github.com/tyrbujac/boojy-audio-sub006/clip"
	"github.com/tyrbujac/boojy-audio-sub006/dsp"
)

type (
	// AudioGraph renders the mix one buffer at a time. Per buffer it takes
	// a brief structural snapshot under the managers' locks, then runs the
	// per-frame loop without any locking: source sum, gain, pan, FX chain,
	// master accumulation, master limiter. Render scratch is reused
	// between buffers, so the sample loop itself never allocates.
	//
	// Process must only ever be called from one goroutine.
	AudioGraph struct {
		tracks  *TrackManager
		effects *EffectManager
		clips   *clip.Store
		broker  *Broker

		// masterLimiter is the always-on safety limiter of the master
		// bus. It is not an arena effect and cannot be removed.
		masterLimiter *dsp.Limiter

		pos int64 // playhead in frames

		snap     []trackState
		acc      boojy.AudioBuffer
		trackBuf boojy.AudioBuffer
		meter    meter
		result   MeterResult
	}

	// trackState is the per-buffer snapshot of one track: plain values and
	// resolved pointers only, nothing shared with the control plane.
	trackState struct {
		id         boojy.TrackID
		gain       float32
		panL, panR float32
		mute, solo bool

		chainIDs   []boojy.EffectID
		chain      []dsp.Effect
		placements []boojy.ClipPlacement
		clips      []resolvedClip
	}

	resolvedClip struct {
		frames boojy.AudioBuffer
		start  int64
		gain   float32
	}
)

func NewAudioGraph(tracks *TrackManager, effects *EffectManager, clips *clip.Store, broker *Broker, sampleRate int) *AudioGraph {
	return &AudioGraph{
		tracks:        tracks,
		effects:       effects,
		clips:         clips,
		broker:        broker,
		masterLimiter: dsp.NewLimiter(sampleRate),
	}
}

// Position returns the playhead position in frames.
func (g *AudioGraph) Position() int64 { return g.pos }

// Seek moves the playhead and resets every effect's transient state, so
// playback from the new position does not replay stale delay lines.
func (g *AudioGraph) Seek(frame int64) {
	g.pos = frame
	g.effects.resetAll()
	g.masterLimiter.Reset()
}

// Process renders one buffer into out.
func (g *AudioGraph) Process(out boojy.AudioBuffer) {
	n := len(out)
	anySolo := g.snapshot()
	setSliceLength(&g.acc, n)
	setSliceLength(&g.trackBuf, n)
	g.acc.Zero()
	g.result.Tracks = g.result.Tracks[:0]

	dangling := 0
	var master *trackState
	for i := range g.snap {
		ts := &g.snap[i]
		if ts.id == boojy.MasterTrackID {
			master = ts
			continue
		}
		if ts.mute || (anySolo && !ts.solo) {
			continue
		}
		var d int
		ts.chain, d = g.effects.resolveChain(ts.chainIDs, ts.chain[:0])
		dangling += d

		for f := 0; f < n; f++ {
			l, r := sourceFrame(ts, g.pos+int64(f))
			// overlapping clips may sum past unity; the fader keeps its
			// headroom and overload is the master limiter's job
			l = l * ts.gain * ts.panL
			r = r * ts.gain * ts.panR
			for _, e := range ts.chain {
				l, r = e.ProcessFrame(l, r)
			}
			g.trackBuf[f] = [2]float32{l, r}
		}

		peakL, peakR := g.meter.peaks(g.trackBuf)
		g.result.Tracks = append(g.result.Tracks, TrackPeak{Track: ts.id, PeakL: peakL, PeakR: peakR})
		for f := range g.trackBuf {
			g.acc[f][0] += g.trackBuf[f][0]
			g.acc[f][1] += g.trackBuf[f][1]
		}
	}

	clipped := false
	var masterChain []dsp.Effect
	if master != nil && !master.mute {
		var d int
		master.chain, d = g.effects.resolveChain(master.chainIDs, master.chain[:0])
		dangling += d
		masterChain = master.chain
		for f := 0; f < n; f++ {
			l := g.acc[f][0] * master.gain * master.panL
			r := g.acc[f][1] * master.gain * master.panR
			for _, e := range masterChain {
				l, r = e.ProcessFrame(l, r)
			}
			if l > 1 || l < -1 || r > 1 || r < -1 {
				clipped = true
			}
			out[f][0], out[f][1] = g.masterLimiter.ProcessFrame(l, r)
		}
	} else {
		out.Zero()
	}
	g.pos += int64(n)

	peakL, peakR := g.meter.peaks(out)
	g.result.MasterPeakL = peakL
	g.result.MasterPeakR = peakR
	g.result.MasterRMS = g.meter.rms(out)
	g.publish(dangling, clipped)
}

// snapshot copies the structural state the render needs: track order and
// fader values under the track manager's lock, then clip resolution
// against the pool. Scratch entries are reused by index.
func (g *AudioGraph) snapshot() (anySolo bool) {
	g.tracks.mu.Lock()
	if cap(g.snap) < len(g.tracks.order) {
		g.snap = append(g.snap, make([]trackState, len(g.tracks.order)-len(g.snap))...)
	}
	g.snap = g.snap[:len(g.tracks.order)]
	for i, id := range g.tracks.order {
		t := g.tracks.tracks[id]
		ts := &g.snap[i]
		ts.id = id
		ts.gain = t.Gain()
		ts.panL, ts.panR = t.PanGains()
		ts.mute = t.Mute
		ts.solo = t.Solo
		ts.chainIDs = append(ts.chainIDs[:0], t.FXChain...)
		ts.placements = append(ts.placements[:0], t.AudioClips...)
		anySolo = anySolo || t.Solo
	}
	g.tracks.mu.Unlock()

	for i := range g.snap {
		ts := &g.snap[i]
		ts.clips = ts.clips[:0]
		for _, p := range ts.placements {
			c, ok := g.clips.Audio(p.Clip)
			if !ok {
				continue
			}
			ts.clips = append(ts.clips, resolvedClip{
				frames: c.Frames,
				start:  int64(p.StartTime * float64(boojy.SampleRate)),
				gain:   p.Gain(),
			})
		}
	}
	return anySolo
}

func (g *AudioGraph) publish(dangling int, clipped bool) {
	msg := MsgToControl{HasMeters: true, Meters: g.result}
	// the scratch slice is reused next buffer, the published copy is not
	msg.Meters.Tracks = append([]TrackPeak(nil), g.result.Tracks...)
	TrySend(g.broker.ToControl, msg)
	if dangling > 0 {
		TrySend(g.broker.ToControl, MsgToControl{Alert: AlertDanglingEffect})
	}
	if clipped {
		TrySend(g.broker.ToControl, MsgToControl{Alert: AlertOutputClipped})
	}
}

// sourceFrame sums every clip playing at the given timeline position.
func sourceFrame(ts *trackState, pos int64) (float32, float32) {
	var l, r float32
	for _, c := range ts.clips {
		off := pos - c.start
		if off < 0 || off >= int64(len(c.frames)) {
			continue
		}
		l += c.frames[off][0] * c.gain
		r += c.frames[off][1] * c.gain
	}
	return l, r
}
