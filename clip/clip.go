// Package clip owns the audio and MIDI clip pool. Clips live in a Store
// independent of any track; tracks reference them by ID, and moving a clip
// onto a track is a bookkeeping operation that never copies sample data.
package clip

import (
	"sync"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

// Store is the clip pool. IDs are assigned on insert and never reused,
// matching track and effect ID discipline.
type Store struct {
	mu     sync.Mutex
	nextID boojy.ClipID
	audio  map[boojy.ClipID]*AudioClip
	midi   map[boojy.ClipID]*MidiClip

	// timeline holds the placement of clips not yet moved onto a track.
	// Moving a clip to a track takes the placement from here.
	timeline map[boojy.ClipID]boojy.ClipPlacement
}

func NewStore() *Store {
	return &Store{
		nextID:   1,
		audio:    make(map[boojy.ClipID]*AudioClip),
		midi:     make(map[boojy.ClipID]*MidiClip),
		timeline: make(map[boojy.ClipID]boojy.ClipPlacement),
	}
}

// AddAudio inserts an audio clip, assigns its ID and places it on the
// global timeline at position zero.
func (s *Store) AddAudio(c *AudioClip) boojy.ClipID {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	s.audio[c.ID] = c
	s.timeline[c.ID] = boojy.ClipPlacement{Clip: c.ID}
	return c.ID
}

// AddMidi inserts a MIDI clip, assigns its ID and places it on the global
// timeline at position zero.
func (s *Store) AddMidi(c *MidiClip) boojy.ClipID {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	s.midi[c.ID] = c
	s.timeline[c.ID] = boojy.ClipPlacement{Clip: c.ID}
	return c.ID
}

// SetTimelinePlacement updates the start time and gain of a clip still on
// the global timeline.
func (s *Store) SetTimelinePlacement(id boojy.ClipID, startTime float64, gainDB float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timeline[id]; !ok {
		return boojy.ClipNotFoundError{ID: id}
	}
	s.timeline[id] = boojy.ClipPlacement{Clip: id, StartTime: startTime, GainDB: gainDB}
	return nil
}

// TakeFromTimeline removes and returns a clip's global-timeline placement.
// The caller either hands the placement to a track or puts it back with
// ReturnToTimeline.
func (s *Store) TakeFromTimeline(id boojy.ClipID) (boojy.ClipPlacement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timeline[id]
	if ok {
		delete(s.timeline, id)
	}
	return p, ok
}

// ReturnToTimeline puts a placement back after a failed move.
func (s *Store) ReturnToTimeline(p boojy.ClipPlacement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline[p.Clip] = p
}

// Audio looks up an audio clip.
func (s *Store) Audio(id boojy.ClipID) (*AudioClip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.audio[id]
	return c, ok
}

// Midi looks up a MIDI clip.
func (s *Store) Midi(id boojy.ClipID) (*MidiClip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.midi[id]
	return c, ok
}

// Kind reports whether the ID names an audio clip, a MIDI clip, or nothing.
func (s *Store) Kind(id boojy.ClipID) (audio, midi bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, audio = s.audio[id]
	_, midi = s.midi[id]
	return audio, midi
}

// Remove drops a clip from the pool. Track placements referencing the ID
// simply render silence afterwards.
func (s *Store) Remove(id boojy.ClipID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.audio, id)
	delete(s.midi, id)
	delete(s.timeline, id)
}

// Len returns the number of clips in the pool.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audio) + len(s.midi)
}
