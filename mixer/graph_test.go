package mixer_test

import (
	"math"
	"testing"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
	"github.com/tyrbujac/boojy-audio-sub006/clip"
	"github.com/tyrbujac/boojy-audio-sub006/dsp"
	"github.com/tyrbujac/boojy-audio-sub006/mixer"
)

// rig wires a graph with its managers but no audio device, rendering
// through Player.Render so queued parameter updates get applied exactly as
// they would in live playback.
type rig struct {
	broker  *mixer.Broker
	tracks  *mixer.TrackManager
	effects *mixer.EffectManager
	clips   *clip.Store
	graph   *mixer.AudioGraph
	player  *mixer.Player
}

func newRig() *rig {
	broker := mixer.NewBroker()
	tracks := mixer.NewTrackManager()
	effects := mixer.NewEffectManager(boojy.SampleRate, broker)
	clips := clip.NewStore()
	graph := mixer.NewAudioGraph(tracks, effects, clips, broker, boojy.SampleRate)
	return &rig{
		broker:  broker,
		tracks:  tracks,
		effects: effects,
		clips:   clips,
		graph:   graph,
		player:  mixer.NewPlayer(graph, effects, broker),
	}
}

// addClipTrack creates an audio track holding one clip of constant-valued
// frames placed at position zero.
func (r *rig) addClipTrack(t *testing.T, sample float32, frames int) boojy.TrackID {
	t.Helper()
	id, err := r.tracks.Create(boojy.TrackAudio, "clip track")
	if err != nil {
		t.Fatal(err)
	}
	c := &clip.AudioClip{Name: "tone", SourceRate: boojy.SampleRate, Frames: make(boojy.AudioBuffer, frames)}
	for i := range c.Frames {
		c.Frames[i] = [2]float32{sample, sample}
	}
	clipID := r.clips.AddAudio(c)
	placement, ok := r.clips.TakeFromTimeline(clipID)
	if !ok {
		t.Fatal("fresh clip missing from the timeline")
	}
	if err := r.tracks.PlaceAudioClip(id, placement); err != nil {
		t.Fatal(err)
	}
	return id
}

func (r *rig) alerts() map[mixer.EngineAlert]int {
	counts := make(map[mixer.EngineAlert]int)
	for {
		select {
		case msg := <-r.broker.ToControl:
			if msg.Alert != mixer.AlertNone {
				counts[msg.Alert]++
			}
		default:
			return counts
		}
	}
}

const center = 0.70711 // equal-power gain at pan 0

func TestGraphRendersClipThroughFaders(t *testing.T) {
	r := newRig()
	r.addClipTrack(t, 0.5, boojy.SampleRate)
	out := r.player.Render(256)
	if len(out) != 256 {
		t.Fatalf("rendered %d frames", len(out))
	}
	// 0 dB fader and centered pan on both the track and the master apply
	// the equal-power center gain twice: 0.5 * 0.70711^2 = 0.25.
	want := 0.5 * center * center
	if math.Abs(float64(out[0][0])-want) > 1e-3 || math.Abs(float64(out[0][1])-want) > 1e-3 {
		t.Errorf("output frame (%v, %v), expected about %v", out[0][0], out[0][1], want)
	}
}

func TestGraphFaderRecoversHotSourceSum(t *testing.T) {
	r := newRig()
	id := r.addClipTrack(t, 0.8, boojy.SampleRate)
	// a second overlapping clip pushes the raw track sum to 1.6; the
	// -6 dB fader must act on that, not on a pre-clamped 1.0
	c := &clip.AudioClip{Name: "tone2", SourceRate: boojy.SampleRate, Frames: make(boojy.AudioBuffer, boojy.SampleRate)}
	for i := range c.Frames {
		c.Frames[i] = [2]float32{0.8, 0.8}
	}
	clipID := r.clips.AddAudio(c)
	p, _ := r.clips.TakeFromTimeline(clipID)
	if err := r.tracks.PlaceAudioClip(id, p); err != nil {
		t.Fatal(err)
	}
	r.tracks.SetVolumeDB(id, -6)

	out := r.player.Render(256)
	gain := float64(boojy.DBToGain(-6))
	want := 1.6 * gain * center * center
	if math.Abs(float64(out[0][0])-want) > 1e-3 {
		t.Errorf("output frame %v, expected about %v", out[0][0], want)
	}
}

func TestGraphMuteSilencesTrack(t *testing.T) {
	r := newRig()
	id := r.addClipTrack(t, 0.5, boojy.SampleRate)
	r.tracks.SetMute(id, true)
	out := r.player.Render(256)
	for i := range out {
		if out[i][0] != 0 || out[i][1] != 0 {
			t.Fatalf("muted track leaked at frame %d: %v", i, out[i])
		}
	}
}

func TestGraphSoloSuppressesOthers(t *testing.T) {
	r := newRig()
	a := r.addClipTrack(t, 0.5, boojy.SampleRate)
	r.addClipTrack(t, 0.25, boojy.SampleRate)
	r.tracks.SetSolo(a, true)
	out := r.player.Render(256)
	// only the soloed 0.5 clip should be audible
	want := 0.5 * center * center
	if math.Abs(float64(out[0][0])-want) > 1e-3 {
		t.Errorf("solo mix frame %v, expected about %v", out[0][0], want)
	}
}

func TestGraphMasterMuteSilencesOutput(t *testing.T) {
	r := newRig()
	r.addClipTrack(t, 0.5, boojy.SampleRate)
	r.tracks.SetMute(boojy.MasterTrackID, true)
	out := r.player.Render(256)
	if out[0][0] != 0 || out[128][1] != 0 {
		t.Error("master mute did not silence the output")
	}
}

func TestGraphChainProcessesInOrder(t *testing.T) {
	r := newRig()
	id := r.addClipTrack(t, 1, boojy.SampleRate)
	fx, err := r.effects.Create(dsp.KindLimiter)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.effects.SetParameter(fx, "threshold", -20); err != nil {
		t.Fatal(err)
	}
	if err := r.tracks.AttachEffect(id, fx); err != nil {
		t.Fatal(err)
	}
	out := r.player.Render(256)
	// the track signal hits the chain at 1 * 0.70711 and the -20 dB
	// limiter pins it to 0.1 before the master fader
	want := 0.1 * center
	if math.Abs(float64(out[0][0])-want) > 1e-3 {
		t.Errorf("limited frame %v, expected about %v", out[0][0], want)
	}

	r.effects.SetBypass(fx, true)
	out = r.player.Render(256)
	want = 1 * center * center
	if math.Abs(float64(out[0][0])-want) > 1e-3 {
		t.Errorf("bypassed frame %v, expected about %v", out[0][0], want)
	}
}

func TestGraphChainOrderIsAudible(t *testing.T) {
	r := newRig()
	id := r.addClipTrack(t, 1, boojy.SampleRate)
	eq, _ := r.effects.Create(dsp.KindEQ)
	r.effects.SetParameter(eq, "low_gain", 12)
	lim, _ := r.effects.Create(dsp.KindLimiter)
	r.effects.SetParameter(lim, "threshold", -20)
	r.tracks.AttachEffect(id, eq)
	r.tracks.AttachEffect(id, lim)

	// boost-then-limit pins the signal at the limiter ceiling;
	// limit-then-boost lets the EQ raise it past the ceiling again
	out := r.player.Render(4096)
	boostFirst := out[4000][0]

	if err := r.tracks.SetChainOrder(id, []boojy.EffectID{lim, eq}); err != nil {
		t.Fatal(err)
	}
	r.graph.Seek(0)
	out = r.player.Render(4096)
	limitFirst := out[4000][0]

	if math.Abs(float64(limitFirst-boostFirst)) < 0.1 {
		t.Errorf("chain orders produced the same output: %v vs %v", boostFirst, limitFirst)
	}
	if limitFirst < boostFirst {
		t.Errorf("limit-then-boost (%v) should be louder than boost-then-limit (%v)", limitFirst, boostFirst)
	}
}

func TestGraphDanglingEffectAlert(t *testing.T) {
	r := newRig()
	id := r.addClipTrack(t, 0.5, boojy.SampleRate)
	r.tracks.AttachEffect(id, 99)
	out := r.player.Render(256)
	// the dangling ID renders passthrough
	want := 0.5 * center * center
	if math.Abs(float64(out[0][0])-want) > 1e-3 {
		t.Errorf("frame %v, expected passthrough %v", out[0][0], want)
	}
	if r.alerts()[mixer.AlertDanglingEffect] == 0 {
		t.Error("no dangling-effect alert published")
	}
}

func TestGraphMasterLimiterCeilingAndClipAlert(t *testing.T) {
	r := newRig()
	a := r.addClipTrack(t, 1, boojy.SampleRate)
	b := r.addClipTrack(t, 1, boojy.SampleRate)
	r.tracks.SetVolumeDB(a, 6)
	r.tracks.SetVolumeDB(b, 6)
	out := r.player.Render(1024)
	ceiling := float64(dsp.DBToGain(-0.1)) + 1e-3
	for i := range out {
		if math.Abs(float64(out[i][0])) > ceiling {
			t.Fatalf("frame %d exceeded the master ceiling: %v", i, out[i][0])
		}
	}
	if r.alerts()[mixer.AlertOutputClipped] == 0 {
		t.Error("no clip alert for a mix hot enough to hit the limiter")
	}
}

func TestGraphMeterPublication(t *testing.T) {
	r := newRig()
	id := r.addClipTrack(t, 0.5, boojy.SampleRate)
	r.player.Render(256)
	var meters mixer.MeterResult
	seen := false
	for {
		select {
		case msg := <-r.broker.ToControl:
			if msg.HasMeters {
				meters = msg.Meters
				seen = true
			}
			continue
		default:
		}
		break
	}
	if !seen {
		t.Fatal("no meter message published")
	}
	want := 0.5 * center * center
	if math.Abs(float64(meters.MasterPeakL)-want) > 1e-3 {
		t.Errorf("master peak %v, expected about %v", meters.MasterPeakL, want)
	}
	found := false
	for _, p := range meters.Tracks {
		if p.Track == id {
			found = true
			if math.Abs(float64(p.PeakL)-0.5*center) > 1e-3 {
				t.Errorf("track peak %v, expected about %v", p.PeakL, 0.5*center)
			}
		}
	}
	if !found {
		t.Errorf("no meter entry for track %d: %+v", id, meters.Tracks)
	}
}

func TestGraphSeekMovesPlayhead(t *testing.T) {
	r := newRig()
	r.addClipTrack(t, 0.5, 100)
	out := r.player.Render(256)
	if r.graph.Position() != 256 {
		t.Errorf("position %d after 256 frames", r.graph.Position())
	}
	if out[0][0] == 0 {
		t.Error("clip at position zero was silent")
	}
	if out[200][0] != 0 {
		t.Error("signal past the clip's end")
	}
	r.graph.Seek(0)
	if r.graph.Position() != 0 {
		t.Errorf("position %d after seek", r.graph.Position())
	}
	out = r.player.Render(64)
	if out[0][0] == 0 {
		t.Error("clip silent after seeking back to zero")
	}
}

func TestPlayerRenderLength(t *testing.T) {
	r := newRig()
	out := r.player.Render(2500)
	if len(out) != 2500 {
		t.Errorf("rendered %d frames, expected 2500", len(out))
	}
}
