package mixer

import (
	"fmt"
	"log"
	"sync"
	"time"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
	"github.com/tyrbujac/boojy-audio-sub006/clip"
	"github.com/tyrbujac/boojy-audio-sub006/dsp"
)

// Engine wires the whole mixer together: the managers, the clip pool, the
// graph and the player, all talking through one broker. It is the single
// object the control surface and the CLI hold on to.
type Engine struct {
	Broker  *Broker
	Tracks  *TrackManager
	Effects *EffectManager
	Clips   *clip.Store
	Graph   *AudioGraph
	Player  *Player

	alertsMu sync.Mutex
	alerts   map[EngineAlert]int
}

func NewEngine() *Engine {
	broker := NewBroker()
	tracks := NewTrackManager()
	effects := NewEffectManager(boojy.SampleRate, broker)
	clips := clip.NewStore()
	graph := NewAudioGraph(tracks, effects, clips, broker, boojy.SampleRate)
	return &Engine{
		Broker:  broker,
		Tracks:  tracks,
		Effects: effects,
		Clips:   clips,
		Graph:   graph,
		Player:  NewPlayer(graph, effects, broker),
		alerts:  make(map[EngineAlert]int),
	}
}

// Play starts transport from the current position.
func (e *Engine) Play() {
	TrySend(e.Broker.ToEngine, MsgToEngine{Data: StartPlayMsg{}})
}

// Stop pauses transport, keeping the position.
func (e *Engine) Stop() {
	TrySend(e.Broker.ToEngine, MsgToEngine{Data: StopPlayMsg{}})
}

// Seek moves the playhead to a position in seconds.
func (e *Engine) Seek(seconds float64) {
	frame := int64(seconds * float64(boojy.SampleRate))
	TrySend(e.Broker.ToEngine, MsgToEngine{Data: SeekMsg{Frame: frame}})
}

// Close asks the player goroutine to stop and waits for it, with a
// timeout so a wedged sink cannot hang shutdown.
func (e *Engine) Close() {
	TrySend(e.Broker.CloseEngine, struct{}{})
	select {
	case <-e.Broker.FinishedEngine:
	case <-time.After(3 * time.Second):
		log.Printf("mixer: player did not shut down in time")
	}
}

// PumpControl drains pending engine feedback: meter results are written
// back onto the tracks, alerts are counted. Call it from the control
// plane whenever fresh meters are wanted; concurrent callers are safe.
func (e *Engine) PumpControl() {
	for {
		select {
		case msg := <-e.Broker.ToControl:
			if msg.HasMeters {
				e.Tracks.UpdatePeaks(msg.Meters)
			}
			if msg.Alert != AlertNone {
				e.alertsMu.Lock()
				e.alerts[msg.Alert]++
				e.alertsMu.Unlock()
			}
		default:
			return
		}
	}
}

// AlertCount returns how many times the engine reported the given alert.
func (e *Engine) AlertCount(a EngineAlert) int {
	e.PumpControl()
	e.alertsMu.Lock()
	defer e.alertsMu.Unlock()
	return e.alerts[a]
}

// Apply replaces the engine's whole state with a loaded project: all
// non-master tracks are dropped, then the project's tracks and chains are
// rebuilt. The master track is always present; when the project carries
// no master entry it keeps defaults.
func (e *Engine) Apply(p *boojy.Project) error {
	e.Effects.Reclaim(e.Tracks.Clear())
	for i := range p.Tracks {
		ts := &p.Tracks[i]
		kind := ts.Kind
		var id boojy.TrackID
		var err error
		if kind == boojy.TrackMaster {
			id = boojy.MasterTrackID
			if ts.Name != "" {
				e.Tracks.Rename(id, ts.Name)
			}
		} else {
			if id, err = e.Tracks.Create(kind, ts.Name); err != nil {
				return fmt.Errorf("track %d: %w", i, err)
			}
		}
		e.Tracks.SetVolumeDB(id, ts.VolumeDB)
		e.Tracks.SetPan(id, ts.Pan)
		e.Tracks.SetMute(id, ts.Mute)
		e.Tracks.SetSolo(id, ts.Solo)
		for j := range ts.Effects {
			if err := e.applyEffect(id, &ts.Effects[j]); err != nil {
				return fmt.Errorf("track %d effect %d: %w", i, j, err)
			}
		}
		for _, cp := range ts.AudioClips {
			e.Tracks.PlaceAudioClip(id, cp)
		}
		for _, cp := range ts.MidiClips {
			e.Tracks.PlaceMidiClip(id, cp)
		}
	}
	return nil
}

func (e *Engine) applyEffect(track boojy.TrackID, es *boojy.EffectState) error {
	kind, err := dsp.ParseKind(es.Kind)
	if err != nil {
		return err
	}
	id, err := e.Effects.Create(kind)
	if err != nil {
		return err
	}
	for _, spec := range dsp.EffectParams[kind] {
		value, ok := es.Parameters[spec.Name]
		if !ok {
			continue
		}
		if err := e.Effects.SetParameter(id, spec.Name, value); err != nil {
			return err
		}
	}
	if es.Bypassed {
		e.Effects.SetBypass(id, true)
	}
	return e.Tracks.AttachEffect(track, id)
}

// Snapshot captures the engine state as a persistable project.
func (e *Engine) Snapshot(name string) (*boojy.Project, error) {
	p := &boojy.Project{Name: name}
	for _, id := range e.Tracks.IDs() {
		t, err := e.Tracks.Info(id)
		if err != nil {
			return nil, err
		}
		ts := boojy.TrackState{
			Kind:       t.Kind,
			Name:       t.Name,
			VolumeDB:   t.VolumeDB,
			Pan:        t.Pan,
			Mute:       t.Mute,
			Solo:       t.Solo,
			AudioClips: t.AudioClips,
			MidiClips:  t.MidiClips,
		}
		for _, fx := range t.FXChain {
			info, err := e.Effects.Info(fx)
			if err != nil {
				// dangling chain entry, nothing to persist
				continue
			}
			ts.Effects = append(ts.Effects, boojy.EffectState{
				Kind:       info.Kind.String(),
				Bypassed:   info.Bypassed,
				Parameters: info.Params,
			})
		}
		p.Tracks = append(p.Tracks, ts)
	}
	return p, nil
}
