// Package mixer implements the engine around the dsp effects: track and
// effect bookkeeping, the per-frame mixing graph, and the real-time player
// goroutine that pulls buffers through it.
package mixer

import (
	"sync"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

// TrackManager owns every track, including the master. The master track is
// created on construction with ID 0 and can never be deleted; all other
// IDs are assigned strictly increasing and never reused.
//
// All methods lock briefly. Nothing here is called per frame; the audio
// goroutine only takes one Snapshot per buffer.
type TrackManager struct {
	mu     sync.Mutex
	nextID boojy.TrackID
	tracks map[boojy.TrackID]*boojy.Track
	order  []boojy.TrackID // creation order, master first
}

func NewTrackManager() *TrackManager {
	m := &TrackManager{
		nextID: 1,
		tracks: make(map[boojy.TrackID]*boojy.Track),
	}
	master := boojy.NewTrack(boojy.MasterTrackID, boojy.TrackMaster, "Master")
	m.tracks[master.ID] = master
	m.order = append(m.order, master.ID)
	return m
}

// Create adds a track of the given kind. Master is rejected because the
// one master already exists.
func (m *TrackManager) Create(kind boojy.TrackKind, name string) (boojy.TrackID, error) {
	if kind == boojy.TrackMaster {
		return 0, boojy.ErrDuplicateMasterTrack
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := boojy.NewTrack(m.nextID, kind, name)
	m.nextID++
	m.tracks[t.ID] = t
	m.order = append(m.order, t.ID)
	return t.ID, nil
}

// Delete removes a track and returns the effect IDs its chain referenced,
// so the caller can reclaim the instances once no snapshot can see them.
// Clips referenced by the track are not destroyed; they stay in the pool.
func (m *TrackManager) Delete(id boojy.TrackID) ([]boojy.EffectID, error) {
	if id == boojy.MasterTrackID {
		return nil, boojy.ErrCannotDeleteMasterTrack
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return nil, boojy.TrackNotFoundError{ID: id}
	}
	detached := t.FXChain
	t.FXChain = nil
	t.AudioClips = nil
	t.MidiClips = nil
	delete(m.tracks, id)
	for i, tid := range m.order {
		if tid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return detached, nil
}

// Count returns the number of tracks, master included.
func (m *TrackManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tracks)
}

// IDs returns all track IDs in creation order, master first.
func (m *TrackManager) IDs() []boojy.TrackID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]boojy.TrackID, len(m.order))
	copy(ids, m.order)
	return ids
}

// Info returns a copy of the track's state. The FX chain and clip slices
// are copied too, so the caller can hold the result without racing the
// engine.
func (m *TrackManager) Info(id boojy.TrackID) (boojy.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return boojy.Track{}, boojy.TrackNotFoundError{ID: id}
	}
	cp := *t
	cp.FXChain = append([]boojy.EffectID(nil), t.FXChain...)
	cp.AudioClips = append([]boojy.ClipPlacement(nil), t.AudioClips...)
	cp.MidiClips = append([]boojy.ClipPlacement(nil), t.MidiClips...)
	return cp, nil
}

func (m *TrackManager) SetVolumeDB(id boojy.TrackID, db float32) error {
	return m.update(id, func(t *boojy.Track) { t.SetVolumeDB(db) })
}

func (m *TrackManager) SetPan(id boojy.TrackID, pan float32) error {
	return m.update(id, func(t *boojy.Track) { t.SetPan(pan) })
}

func (m *TrackManager) SetMute(id boojy.TrackID, mute bool) error {
	return m.update(id, func(t *boojy.Track) { t.Mute = mute })
}

func (m *TrackManager) SetSolo(id boojy.TrackID, solo bool) error {
	return m.update(id, func(t *boojy.Track) { t.Solo = solo })
}

func (m *TrackManager) SetArmed(id boojy.TrackID, armed bool) error {
	return m.update(id, func(t *boojy.Track) { t.Armed = armed })
}

func (m *TrackManager) SetInputMonitoring(id boojy.TrackID, on bool) error {
	return m.update(id, func(t *boojy.Track) { t.InputMonitoring = on })
}

func (m *TrackManager) Rename(id boojy.TrackID, name string) error {
	return m.update(id, func(t *boojy.Track) { t.Name = name })
}

// AnySoloActive reports whether at least one track has solo engaged, which
// flips the whole mix into solo-only monitoring.
func (m *TrackManager) AnySoloActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tracks {
		if t.Solo {
			return true
		}
	}
	return false
}

// AttachEffect appends an effect to the end of a track's FX chain.
func (m *TrackManager) AttachEffect(id boojy.TrackID, fx boojy.EffectID) error {
	return m.update(id, func(t *boojy.Track) { t.FXChain = append(t.FXChain, fx) })
}

// DetachEffect removes an effect from a track's chain, keeping the order
// of the remaining entries.
func (m *TrackManager) DetachEffect(id boojy.TrackID, fx boojy.EffectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return boojy.TrackNotFoundError{ID: id}
	}
	for i, e := range t.FXChain {
		if e == fx {
			t.FXChain = append(t.FXChain[:i], t.FXChain[i+1:]...)
			return nil
		}
	}
	return boojy.EffectNotInChainError{Track: id, Effect: fx}
}

// SetChainOrder replaces a track's FX chain with a permutation of itself.
// newOrder must name every chain entry exactly once; partial or repeated
// reorders are rejected rather than guessed at.
func (m *TrackManager) SetChainOrder(id boojy.TrackID, newOrder []boojy.EffectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return boojy.TrackNotFoundError{ID: id}
	}
	if len(newOrder) != len(t.FXChain) {
		return boojy.ChainOrderError{Track: id, Want: len(t.FXChain), Got: len(newOrder)}
	}
	// consume chain entries one by one so a duplicated ID in newOrder
	// cannot stand in for a distinct effect
	remaining := append([]boojy.EffectID(nil), t.FXChain...)
	for _, fx := range newOrder {
		found := false
		for i, e := range remaining {
			if e == fx {
				remaining[i] = remaining[len(remaining)-1]
				remaining = remaining[:len(remaining)-1]
				found = true
				break
			}
		}
		if !found {
			return boojy.EffectNotInChainError{Track: id, Effect: fx}
		}
	}
	t.FXChain = append(t.FXChain[:0], newOrder...)
	return nil
}

// Chain returns a copy of the track's FX chain.
func (m *TrackManager) Chain(id boojy.TrackID) ([]boojy.EffectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return nil, boojy.TrackNotFoundError{ID: id}
	}
	return append([]boojy.EffectID(nil), t.FXChain...), nil
}

// PlaceAudioClip appends an audio clip placement to a track.
func (m *TrackManager) PlaceAudioClip(id boojy.TrackID, p boojy.ClipPlacement) error {
	return m.update(id, func(t *boojy.Track) { t.AudioClips = append(t.AudioClips, p) })
}

// PlaceMidiClip appends a MIDI clip placement to a track.
func (m *TrackManager) PlaceMidiClip(id boojy.TrackID, p boojy.ClipPlacement) error {
	return m.update(id, func(t *boojy.Track) { t.MidiClips = append(t.MidiClips, p) })
}

// Clear deletes every track except the master and resets the master's
// mixer state to defaults. Returns all detached effect IDs for reclaim.
func (m *TrackManager) Clear() []boojy.EffectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var detached []boojy.EffectID
	for id, t := range m.tracks {
		if id == boojy.MasterTrackID {
			continue
		}
		detached = append(detached, t.FXChain...)
		delete(m.tracks, id)
	}
	master := m.tracks[boojy.MasterTrackID]
	detached = append(detached, master.FXChain...)
	reset := boojy.NewTrack(boojy.MasterTrackID, boojy.TrackMaster, master.Name)
	m.tracks[boojy.MasterTrackID] = reset
	m.order = m.order[:1]
	m.order[0] = boojy.MasterTrackID
	return detached
}

// UpdatePeaks stores meter results on the tracks for the control plane to
// read back through Info.
func (m *TrackManager) UpdatePeaks(res MeterResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range res.Tracks {
		if t, ok := m.tracks[p.Track]; ok {
			t.UpdatePeaks(p.PeakL, p.PeakR)
		}
	}
	if t, ok := m.tracks[boojy.MasterTrackID]; ok {
		t.UpdatePeaks(res.MasterPeakL, res.MasterPeakR)
	}
}

func (m *TrackManager) update(id boojy.TrackID, f func(*boojy.Track)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return boojy.TrackNotFoundError{ID: id}
	}
	f(t)
	return nil
}
