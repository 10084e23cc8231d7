package boojy_test

import (
	"strings"
	"testing"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
)

func testProject() boojy.Project {
	return boojy.Project{
		Name: "demo",
		Tracks: []boojy.TrackState{
			{Kind: boojy.TrackMaster, Name: "Master", VolumeDB: -3},
			{
				Kind:     boojy.TrackAudio,
				Name:     "Drums",
				VolumeDB: -6,
				Pan:      -0.25,
				Mute:     true,
				Effects: []boojy.EffectState{
					{Kind: "compressor", Parameters: map[string]float32{"threshold": -18, "ratio": 4}},
					{Kind: "delay", Bypassed: true, Parameters: map[string]float32{"time": 250, "feedback": 0.5}},
				},
				AudioClips: []boojy.ClipPlacement{{Clip: 3, StartTime: 1.5, GainDB: -2}},
			},
		},
	}
}

func TestProjectYamlRoundTrip(t *testing.T) {
	p := testProject()
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := boojy.ParseProject(data)
	if err != nil {
		t.Fatalf("ParseProject failed: %v", err)
	}
	if len(got.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(got.Tracks))
	}
	drums := got.Tracks[1]
	if drums.Kind != boojy.TrackAudio || drums.Name != "Drums" || drums.VolumeDB != -6 || !drums.Mute {
		t.Errorf("track state did not survive the round trip: %+v", drums)
	}
	if len(drums.Effects) != 2 || drums.Effects[0].Kind != "compressor" || !drums.Effects[1].Bypassed {
		t.Errorf("FX chain did not survive the round trip: %+v", drums.Effects)
	}
	if drums.Effects[0].Parameters["threshold"] != -18 {
		t.Errorf("effect parameters did not survive: %v", drums.Effects[0].Parameters)
	}
	if len(drums.AudioClips) != 1 || drums.AudioClips[0].StartTime != 1.5 {
		t.Errorf("clip placements did not survive: %v", drums.AudioClips)
	}
}

func TestParseProjectJSON(t *testing.T) {
	data := []byte(`{"tracks": [{"kind": "audio", "name": "Lead", "volumeDb": -2}]}`)
	p, err := boojy.ParseProject(data)
	if err != nil {
		t.Fatalf("ParseProject failed: %v", err)
	}
	if len(p.Tracks) != 1 || p.Tracks[0].Name != "Lead" {
		t.Fatalf("unexpected project: %+v", p)
	}
}

func TestParseProjectRejectsCorruptValues(t *testing.T) {
	// parsing validates, so a corrupt file fails at load time instead of
	// being silently clamped later
	data := []byte(`{"tracks": [{"kind": "audio", "name": "Hot", "volumeDb": 40}]}`)
	if _, err := boojy.ParseProject(data); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("out-of-range volume parsed without error: %v", err)
	}
}

func TestProjectValidate(t *testing.T) {
	p := testProject()
	if err := p.Validate(); err != nil {
		t.Errorf("valid project rejected: %v", err)
	}

	bad := testProject()
	bad.Tracks[1].VolumeDB = 20
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("out-of-range volume should fail validation, got %v", err)
	}

	twoMasters := testProject()
	twoMasters.Tracks = append(twoMasters.Tracks, boojy.TrackState{Kind: boojy.TrackMaster, Name: "Master 2"})
	if err := twoMasters.Validate(); err != boojy.ErrDuplicateMasterTrack {
		t.Errorf("two masters should fail validation, got %v", err)
	}
}
