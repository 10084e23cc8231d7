// Package api is the string-based control surface consumed by external
// front ends. Inputs arrive as kind strings and IDs, results go back as
// textual confirmations or CSV-shaped records; everything underneath is
// the typed engine. No call here ever touches the real-time path directly.
package api

import (
	"fmt"
	"strconv"
	"strings"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
	"github.com/tyrbujac/boojy-audio-sub006/clip"
	"github.com/tyrbujac/boojy-audio-sub006/dsp"
	"github.com/tyrbujac/boojy-audio-sub006/mixer"
)

// Surface exposes the control operations over one engine.
type Surface struct {
	engine *mixer.Engine
}

func NewSurface(engine *mixer.Engine) *Surface {
	return &Surface{engine: engine}
}

// CreateTrack makes a track of the given kind. The master kind is
// rejected; the one master track exists from engine initialization. An
// empty name defaults to "<Kind> <id>".
func (s *Surface) CreateTrack(kind, name string) (boojy.TrackID, error) {
	k, err := boojy.ParseTrackKind(kind)
	if err != nil {
		return 0, err
	}
	if k == boojy.TrackMaster {
		return 0, boojy.ErrDuplicateMasterTrack
	}
	id, err := s.engine.Tracks.Create(k, name)
	if err != nil {
		return 0, err
	}
	if name == "" {
		s.engine.Tracks.Rename(id, fmt.Sprintf("%s %d", k, id))
	}
	return id, nil
}

// DeleteTrack removes a track and reclaims its effect instances.
func (s *Surface) DeleteTrack(id boojy.TrackID) (string, error) {
	detached, err := s.engine.Tracks.Delete(id)
	if err != nil {
		return "", err
	}
	s.engine.Effects.Reclaim(detached)
	return fmt.Sprintf("Track %d deleted", id), nil
}

// TrackCount returns the number of tracks, master included; always >= 1.
func (s *Surface) TrackCount() int {
	return s.engine.Tracks.Count()
}

// AllTrackIDs returns every track ID as a comma-separated list, in
// creation order with the master first.
func (s *Surface) AllTrackIDs() string {
	ids := s.engine.Tracks.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// TrackInfo returns the CSV record
// "track_id,name,type,volume_db,pan,mute,solo".
func (s *Surface) TrackInfo(id boojy.TrackID) (string, error) {
	t, err := s.engine.Tracks.Info(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d,%s,%s,%.2f,%.2f,%d,%d",
		t.ID, t.Name, t.Kind, t.VolumeDB, t.Pan, boolBit(t.Mute), boolBit(t.Solo)), nil
}

// TrackPeakLevels returns "peak_left_db,peak_right_db" for a track.
func (s *Surface) TrackPeakLevels(id boojy.TrackID) (string, error) {
	s.engine.PumpControl()
	t, err := s.engine.Tracks.Info(id)
	if err != nil {
		return "", err
	}
	l, r := t.PeakDB()
	return fmt.Sprintf("%.2f,%.2f", l, r), nil
}

// SetTrackVolume sets the fader position in dB, clamped to the legal
// range; the stored value is echoed back in the confirmation.
func (s *Surface) SetTrackVolume(id boojy.TrackID, volumeDB float32) (string, error) {
	if err := s.engine.Tracks.SetVolumeDB(id, volumeDB); err != nil {
		return "", err
	}
	t, _ := s.engine.Tracks.Info(id)
	return fmt.Sprintf("Track %d volume set to %.2f dB", id, t.VolumeDB), nil
}

// SetTrackPan sets the pan position, clamped to [-1, 1].
func (s *Surface) SetTrackPan(id boojy.TrackID, pan float32) (string, error) {
	if err := s.engine.Tracks.SetPan(id, pan); err != nil {
		return "", err
	}
	t, _ := s.engine.Tracks.Info(id)
	return fmt.Sprintf("Track %d pan set to %.2f", id, t.Pan), nil
}

func (s *Surface) SetTrackMute(id boojy.TrackID, mute bool) (string, error) {
	if err := s.engine.Tracks.SetMute(id, mute); err != nil {
		return "", err
	}
	return fmt.Sprintf("Track %d mute: %t", id, mute), nil
}

func (s *Surface) SetTrackSolo(id boojy.TrackID, solo bool) (string, error) {
	if err := s.engine.Tracks.SetSolo(id, solo); err != nil {
		return "", err
	}
	return fmt.Sprintf("Track %d solo: %t", id, solo), nil
}

func (s *Surface) SetTrackArmed(id boojy.TrackID, armed bool) (string, error) {
	if err := s.engine.Tracks.SetArmed(id, armed); err != nil {
		return "", err
	}
	return fmt.Sprintf("Track %d armed: %t", id, armed), nil
}

func (s *Surface) SetTrackName(id boojy.TrackID, name string) (string, error) {
	if err := s.engine.Tracks.Rename(id, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Track %d renamed to %q", id, name), nil
}

// AddEffectToTrack instantiates an effect of the given kind and appends
// it to the track's FX chain, returning the new effect ID.
func (s *Surface) AddEffectToTrack(id boojy.TrackID, kind string) (boojy.EffectID, error) {
	k, err := dsp.ParseKind(kind)
	if err != nil {
		return 0, err
	}
	// validate the track first so a bad ID does not leak an instance
	if _, err := s.engine.Tracks.Info(id); err != nil {
		return 0, err
	}
	fx, err := s.engine.Effects.Create(k)
	if err != nil {
		return 0, err
	}
	if err := s.engine.Tracks.AttachEffect(id, fx); err != nil {
		s.engine.Effects.Remove(fx)
		return 0, err
	}
	return fx, nil
}

// RemoveEffectFromTrack detaches an effect from the chain and reclaims
// the instance.
func (s *Surface) RemoveEffectFromTrack(id boojy.TrackID, fx boojy.EffectID) (string, error) {
	if err := s.engine.Tracks.DetachEffect(id, fx); err != nil {
		return "", err
	}
	s.engine.Effects.Remove(fx)
	return fmt.Sprintf("Effect %d removed from track %d", fx, id), nil
}

// TrackEffects returns the track's FX chain as comma-separated effect
// IDs, in processing order.
func (s *Surface) TrackEffects(id boojy.TrackID) (string, error) {
	chain, err := s.engine.Tracks.Chain(id)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chain))
	for i, fx := range chain {
		parts[i] = strconv.FormatUint(uint64(fx), 10)
	}
	return strings.Join(parts, ","), nil
}

// EffectInfo returns "type:<kind>,bypassed:<0|1>,<param>:<value>,..."
// with the parameters in their declared order.
func (s *Surface) EffectInfo(fx boojy.EffectID) (string, error) {
	info, err := s.engine.Effects.Info(fx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "type:%s,bypassed:%d", info.Kind, boolBit(info.Bypassed))
	for _, spec := range dsp.EffectParams[info.Kind] {
		fmt.Fprintf(&b, ",%s:%v", spec.Name, info.Params[spec.Name])
	}
	return b.String(), nil
}

// SetEffectParameter validates, clamps and stores a parameter value. The
// live instance picks it up at the next buffer boundary.
func (s *Surface) SetEffectParameter(fx boojy.EffectID, param string, value float32) (string, error) {
	if err := s.engine.Effects.SetParameter(fx, param, value); err != nil {
		return "", err
	}
	info, _ := s.engine.Effects.Info(fx)
	return fmt.Sprintf("Effect %d parameter %s set to %v", fx, param, info.Params[param]), nil
}

// SetEffectBypass toggles an effect's bypass flag. Re-enabling resets the
// effect state so it does not replay a stale tail.
func (s *Surface) SetEffectBypass(fx boojy.EffectID, bypassed bool) (string, error) {
	if err := s.engine.Effects.SetBypass(fx, bypassed); err != nil {
		return "", err
	}
	state := "enabled"
	if bypassed {
		state = "bypassed"
	}
	return fmt.Sprintf("Effect %d %s", fx, state), nil
}

// DuplicateEffect copies an effect (kind and parameters) and appends the
// copy to the same track's chain.
func (s *Surface) DuplicateEffect(id boojy.TrackID, fx boojy.EffectID) (boojy.EffectID, error) {
	chain, err := s.engine.Tracks.Chain(id)
	if err != nil {
		return 0, err
	}
	inChain := false
	for _, e := range chain {
		if e == fx {
			inChain = true
			break
		}
	}
	if !inChain {
		return 0, boojy.EffectNotInChainError{Track: id, Effect: fx}
	}
	dup, err := s.engine.Effects.Duplicate(fx)
	if err != nil {
		return 0, err
	}
	if err := s.engine.Tracks.AttachEffect(id, dup); err != nil {
		s.engine.Effects.Remove(dup)
		return 0, err
	}
	return dup, nil
}

// ReorderTrackEffects replaces the chain order with the given
// comma-separated effect IDs, which must be a permutation of the current
// chain.
func (s *Surface) ReorderTrackEffects(id boojy.TrackID, effectIDsCSV string) (string, error) {
	var order []boojy.EffectID
	for _, part := range strings.Split(effectIDsCSV, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return "", fmt.Errorf("bad effect ID %q: %w", part, err)
		}
		order = append(order, boojy.EffectID(v))
	}
	if err := s.engine.Tracks.SetChainOrder(id, order); err != nil {
		return "", err
	}
	return fmt.Sprintf("Effects reordered on track %d", id), nil
}

// MoveClipToTrack relocates a clip from the global timeline onto a
// track's clip list. Audio clips go to audio or group tracks, MIDI clips
// to MIDI tracks; a rejected move leaves the clip on the timeline.
func (s *Surface) MoveClipToTrack(id boojy.TrackID, clipID boojy.ClipID) (string, error) {
	isAudio, isMidi := s.engine.Clips.Kind(clipID)
	if !isAudio && !isMidi {
		return "", boojy.ClipNotFoundError{ID: clipID}
	}
	t, err := s.engine.Tracks.Info(id)
	if err != nil {
		return "", err
	}
	p, ok := s.engine.Clips.TakeFromTimeline(clipID)
	if !ok {
		return "", boojy.ClipNotFoundError{ID: clipID}
	}
	switch {
	case isAudio && (t.Kind == boojy.TrackAudio || t.Kind == boojy.TrackGroup):
		err = s.engine.Tracks.PlaceAudioClip(id, p)
	case isMidi && t.Kind == boojy.TrackMidi:
		err = s.engine.Tracks.PlaceMidiClip(id, p)
	default:
		err = fmt.Errorf("track %d cannot hold this clip kind", id)
	}
	if err != nil {
		s.engine.Clips.ReturnToTimeline(p)
		return "", err
	}
	return fmt.Sprintf("Moved clip %d to track %d", clipID, id), nil
}

// LoadAudioClip imports a wav file into the clip pool and returns its ID.
func (s *Surface) LoadAudioClip(path string) (boojy.ClipID, error) {
	c, err := clip.LoadWAV(path)
	if err != nil {
		return 0, err
	}
	return s.engine.Clips.AddAudio(c), nil
}

// LoadMidiClip imports a Standard MIDI File into the clip pool and
// returns its ID.
func (s *Surface) LoadMidiClip(path string) (boojy.ClipID, error) {
	c, err := clip.LoadSMF(path)
	if err != nil {
		return 0, err
	}
	return s.engine.Clips.AddMidi(c), nil
}

// ClearAllTracks deletes every non-master track, resets the master, and
// reclaims all effect instances.
func (s *Surface) ClearAllTracks() string {
	s.engine.Effects.Reclaim(s.engine.Tracks.Clear())
	return "All tracks cleared"
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}
