package boojy

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type (
	// Project is the persisted state of a session: the track list with
	// fader settings and FX chains. The master track is implicit; a
	// project without a master entry still loads with a default master.
	// Clips are owned by the clip store and referenced by ID only.
	Project struct {
		Name   string       `yaml:",omitempty"`
		Tracks []TrackState `yaml:",omitempty"`
	}

	TrackState struct {
		Kind       TrackKind
		Name       string
		VolumeDB   float32         `yaml:"volumeDb"`
		Pan        float32         `yaml:",omitempty"`
		Mute       bool            `yaml:",omitempty"`
		Solo       bool            `yaml:",omitempty"`
		Effects    []EffectState   `yaml:",omitempty"`
		AudioClips []ClipPlacement `yaml:"audioClips,omitempty"`
		MidiClips  []ClipPlacement `yaml:"midiClips,omitempty"`
	}

	// EffectState persists one FX chain entry as its kind plus a flat
	// parameter map, so projects survive effect implementation changes
	// that keep parameter names stable.
	EffectState struct {
		Kind       string
		Bypassed   bool               `yaml:",omitempty"`
		Parameters map[string]float32 `yaml:",flow,omitempty"`
	}
)

// ParseProject reads a project from yaml or json bytes and validates it.
// json is tried first so that .json project files keep working;
// everything else falls through to yaml.
func ParseProject(data []byte) (Project, error) {
	var p Project
	if errJSON := json.Unmarshal(data, &p); errJSON != nil {
		if errYaml := yaml.Unmarshal(data, &p); errYaml != nil {
			return Project{}, fmt.Errorf("parsing project: %v / %v", errYaml, errJSON)
		}
	}
	if err := p.Validate(); err != nil {
		return Project{}, fmt.Errorf("invalid project: %w", err)
	}
	return p, nil
}

// Marshal serializes the project as yaml.
func (p Project) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling project: %w", err)
	}
	return data, nil
}

// Validate checks the invariants a loadable project must satisfy: at most
// one master track and fader values inside their legal ranges. Out-of-range
// values are an error here rather than silently clamped, so a corrupt file
// is noticed at load time instead of sounding wrong.
func (p Project) Validate() error {
	masters := 0
	for i, t := range p.Tracks {
		if t.Kind == TrackMaster {
			masters++
		}
		if t.VolumeDB < MinVolumeDB || t.VolumeDB > MaxVolumeDB {
			return fmt.Errorf("track %d (%q): volume %.2f dB out of range", i, t.Name, t.VolumeDB)
		}
		if t.Pan < -1 || t.Pan > 1 {
			return fmt.Errorf("track %d (%q): pan %.2f out of range", i, t.Name, t.Pan)
		}
	}
	if masters > 1 {
		return ErrDuplicateMasterTrack
	}
	return nil
}
