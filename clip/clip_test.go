package clip

import (
	"math"
	"testing"

	"github.com/go-audio/audio"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

func TestStoreAssignsIDs(t *testing.T) {
	s := NewStore()
	a := s.AddAudio(&AudioClip{Name: "a"})
	m := s.AddMidi(&MidiClip{Name: "m"})
	if a != 1 || m != 2 {
		t.Errorf("IDs (%d, %d), expected (1, 2)", a, m)
	}
	if s.Len() != 2 {
		t.Errorf("Len %d", s.Len())
	}
	isAudio, isMidi := s.Kind(a)
	if !isAudio || isMidi {
		t.Errorf("Kind(%d) = (%t, %t)", a, isAudio, isMidi)
	}
	isAudio, isMidi = s.Kind(m)
	if isAudio || !isMidi {
		t.Errorf("Kind(%d) = (%t, %t)", m, isAudio, isMidi)
	}
}

func TestStoreTimelineTakeAndReturn(t *testing.T) {
	s := NewStore()
	id := s.AddAudio(&AudioClip{Name: "a"})
	if err := s.SetTimelinePlacement(id, 2.5, -3); err != nil {
		t.Fatal(err)
	}
	p, ok := s.TakeFromTimeline(id)
	if !ok || p.Clip != id || p.StartTime != 2.5 || p.GainDB != -3 {
		t.Fatalf("taken placement %+v, ok=%t", p, ok)
	}
	if _, ok := s.TakeFromTimeline(id); ok {
		t.Error("placement taken twice")
	}
	s.ReturnToTimeline(p)
	if p2, ok := s.TakeFromTimeline(id); !ok || p2 != p {
		t.Errorf("returned placement came back as %+v, ok=%t", p2, ok)
	}
}

func TestStoreRemoveDropsTimelineEntry(t *testing.T) {
	s := NewStore()
	id := s.AddAudio(&AudioClip{Name: "a"})
	s.Remove(id)
	if s.Len() != 0 {
		t.Errorf("Len %d after remove", s.Len())
	}
	if _, ok := s.TakeFromTimeline(id); ok {
		t.Error("timeline entry survived removal")
	}
	if err := s.SetTimelinePlacement(id, 0, 0); err == nil {
		t.Error("placement update on a removed clip succeeded")
	}
}

func TestFramesFromPCMMonoDuplicates(t *testing.T) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: boojy.SampleRate},
		Data:   []int{16384, -16384},
	}
	frames := framesFromPCM(buf, 16)
	if len(frames) != 2 {
		t.Fatalf("%d frames", len(frames))
	}
	if frames[0][0] != 0.5 || frames[0][1] != 0.5 {
		t.Errorf("mono sample not duplicated: %v", frames[0])
	}
	if frames[1][0] != -0.5 {
		t.Errorf("negative sample scaled to %v", frames[1][0])
	}
}

func TestFramesFromPCMStereo(t *testing.T) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: boojy.SampleRate},
		Data:   []int{8192, -8192, 32767, 0},
	}
	frames := framesFromPCM(buf, 16)
	if len(frames) != 2 {
		t.Fatalf("%d frames", len(frames))
	}
	if frames[0][0] != 0.25 || frames[0][1] != -0.25 {
		t.Errorf("frame 0 %v", frames[0])
	}
	if frames[1][1] != 0 {
		t.Errorf("frame 1 %v", frames[1])
	}
}

func TestResampleLength(t *testing.T) {
	in := make(boojy.AudioBuffer, 48000)
	for i := range in {
		in[i] = [2]float32{1, 1}
	}
	out := resample(in, 48000, 44100)
	if len(out) != 44100 {
		t.Errorf("resampled to %d frames, expected 44100", len(out))
	}
	// a constant signal must stay constant through linear interpolation
	for i := range out {
		if math.Abs(float64(out[i][0])-1) > 1e-6 {
			t.Fatalf("frame %d drifted to %v", i, out[i][0])
		}
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	in := boojy.AudioBuffer{{0.1, 0.2}, {0.3, 0.4}}
	out := resample(in, boojy.SampleRate, boojy.SampleRate)
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("same-rate resample altered the buffer: %v", out)
	}
}

func TestAudioClipFrameBounds(t *testing.T) {
	c := &AudioClip{Frames: boojy.AudioBuffer{{0.5, -0.5}}}
	if l, r := c.Frame(0); l != 0.5 || r != -0.5 {
		t.Errorf("Frame(0) = (%v, %v)", l, r)
	}
	if l, r := c.Frame(-1); l != 0 || r != 0 {
		t.Errorf("Frame(-1) = (%v, %v)", l, r)
	}
	if l, r := c.Frame(1); l != 0 || r != 0 {
		t.Errorf("Frame(1) = (%v, %v)", l, r)
	}
	if c.NumFrames() != 1 {
		t.Errorf("NumFrames %d", c.NumFrames())
	}
}

func TestMidiClipDuration(t *testing.T) {
	c := &MidiClip{Notes: []Note{
		{Key: 60, Start: 0, Duration: 1},
		{Key: 64, Start: 0.5, Duration: 2},
	}}
	if c.Duration() != 2.5 {
		t.Errorf("Duration %v, expected 2.5", c.Duration())
	}
	if (&MidiClip{}).Duration() != 0 {
		t.Error("empty clip has nonzero duration")
	}
}
