package clip

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

// Note is one note event of a MIDI clip, in seconds relative to the clip
// start.
type Note struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
	Start    float64
	Duration float64
}

// MidiClip holds an imported Standard MIDI File flattened to a single
// time-ordered note list.
type MidiClip struct {
	ID    boojy.ClipID
	Name  string
	Notes []Note
}

// Duration returns the clip length in seconds, the end of its last note.
func (c *MidiClip) Duration() float64 {
	var end float64
	for _, n := range c.Notes {
		if t := n.Start + n.Duration; t > end {
			end = t
		}
	}
	return end
}

// LoadSMF imports a Standard MIDI File. All tracks are merged; tempo
// changes in the file are honored when converting ticks to seconds.
func LoadSMF(path string) (*MidiClip, error) {
	data, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading midi file: %w", err)
	}
	ticks, ok := data.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("reading midi file %v: unsupported time format %v", path, data.TimeFormat)
	}

	clip := &MidiClip{Name: path}
	for _, track := range data.Tracks {
		tempo := 120.0
		elapsed := 0.0
		var open [16][128]int // index into clip.Notes, -1 when closed
		for ch := range open {
			for key := range open[ch] {
				open[ch][key] = -1
			}
		}
		for _, ev := range track {
			elapsed += ticks.Duration(tempo, ev.Delta).Seconds()

			var bpm float64
			var channel, key, velocity uint8
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				tempo = bpm
			case ev.Message.GetNoteStart(&channel, &key, &velocity):
				open[channel][key] = len(clip.Notes)
				clip.Notes = append(clip.Notes, Note{
					Channel:  channel,
					Key:      key,
					Velocity: velocity,
					Start:    elapsed,
				})
			case ev.Message.GetNoteEnd(&channel, &key):
				if idx := open[channel][key]; idx >= 0 {
					clip.Notes[idx].Duration = elapsed - clip.Notes[idx].Start
					open[channel][key] = -1
				}
			}
		}
	}
	sort.SliceStable(clip.Notes, func(i, j int) bool {
		return clip.Notes[i].Start < clip.Notes[j].Start
	})
	return clip, nil
}
