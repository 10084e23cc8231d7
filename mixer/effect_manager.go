package mixer

import (
	"sort"
	"sync"

	boojy "github.com/tyrbujac/boojy-audio-sub006"
	"github.com/tyrbujac/boojy-audio-sub006/dsp"
)

type (
	// EffectManager is the effect arena. It owns every live effect
	// instance and a mirror of each instance's parameter values; the
	// mirror is what validation, persistence and get_effect_info read,
	// while the instance state itself is only ever touched by the audio
	// goroutine, which receives parameter updates through the broker.
	EffectManager struct {
		mu         sync.Mutex
		nextID     boojy.EffectID
		sampleRate int
		broker     *Broker
		effects    map[boojy.EffectID]*effectEntry
	}

	effectEntry struct {
		kind     dsp.Kind
		instance dsp.Effect
		bypassed bool
		params   map[string]float32
	}

	// EffectInfo is a control-plane snapshot of one arena entry.
	EffectInfo struct {
		ID       boojy.EffectID
		Kind     dsp.Kind
		Bypassed bool
		Params   map[string]float32
	}
)

func NewEffectManager(sampleRate int, broker *Broker) *EffectManager {
	return &EffectManager{
		nextID:     1,
		sampleRate: sampleRate,
		broker:     broker,
		effects:    make(map[boojy.EffectID]*effectEntry),
	}
}

// Create instantiates an effect of the given kind with default parameters
// and returns its arena ID.
func (m *EffectManager) Create(kind dsp.Kind) (boojy.EffectID, error) {
	inst, err := dsp.New(kind, m.sampleRate)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.effects[id] = &effectEntry{
		kind:     kind,
		instance: inst,
		params:   dsp.Defaults(kind),
	}
	return id, nil
}

// Remove drops an entry from the arena. Chains still naming the ID render
// passthrough from the next snapshot on; the instance itself is reclaimed
// by the garbage collector once the current buffer is done with it.
func (m *EffectManager) Remove(id boojy.EffectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.effects[id]; !ok {
		return boojy.EffectNotFoundError{ID: id}
	}
	delete(m.effects, id)
	return nil
}

// Reclaim removes a batch of entries, ignoring IDs already gone. Used
// after track deletion detaches a whole chain.
func (m *EffectManager) Reclaim(ids []boojy.EffectID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.effects, id)
	}
}

// SetParameter validates and clamps a parameter write, stores it in the
// mirror, and queues it for the audio goroutine to apply between buffers.
// The live instance is stale for at most one buffer.
func (m *EffectManager) SetParameter(id boojy.EffectID, name string, value float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.effects[id]
	if !ok {
		return boojy.EffectNotFoundError{ID: id}
	}
	clamped, err := dsp.ClampParam(e.kind, name, value)
	if err != nil {
		return err
	}
	e.params[name] = clamped
	TrySend(m.broker.ToEngine, MsgToEngine{
		HasParamUpdate: true,
		Effect:         id,
		Param:          name,
		Value:          clamped,
	})
	return nil
}

// SetBypass flags an entry as bypassed. Re-enabling queues a state reset
// so the effect does not replay stale delay lines or envelopes.
func (m *EffectManager) SetBypass(id boojy.EffectID, bypassed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.effects[id]
	if !ok {
		return boojy.EffectNotFoundError{ID: id}
	}
	if e.bypassed && !bypassed {
		TrySend(m.broker.ToEngine, MsgToEngine{ResetEffect: id})
	}
	e.bypassed = bypassed
	return nil
}

// Duplicate creates a new instance of the same kind with the same mirror
// parameters. The copy starts with quiescent state and is not bypassed.
func (m *EffectManager) Duplicate(id boojy.EffectID) (boojy.EffectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.effects[id]
	if !ok {
		return 0, boojy.EffectNotFoundError{ID: id}
	}
	inst, err := dsp.New(src.kind, m.sampleRate)
	if err != nil {
		return 0, err
	}
	params := make(map[string]float32, len(src.params))
	names := make([]string, 0, len(src.params))
	for name := range src.params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		params[name] = src.params[name]
		// not visible to the audio goroutine yet, safe to set directly
		if err := inst.SetParameter(name, src.params[name]); err != nil {
			return 0, err
		}
	}
	dup := m.nextID
	m.nextID++
	m.effects[dup] = &effectEntry{kind: src.kind, instance: inst, params: params}
	return dup, nil
}

// Info returns a control-plane snapshot of the entry, with the parameter
// map copied.
func (m *EffectManager) Info(id boojy.EffectID) (EffectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.effects[id]
	if !ok {
		return EffectInfo{}, boojy.EffectNotFoundError{ID: id}
	}
	params := make(map[string]float32, len(e.params))
	for k, v := range e.params {
		params[k] = v
	}
	return EffectInfo{ID: id, Kind: e.kind, Bypassed: e.bypassed, Params: params}, nil
}

// Exists reports whether the arena holds the ID.
func (m *EffectManager) Exists(id boojy.EffectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.effects[id]
	return ok
}

// Count returns the number of live instances.
func (m *EffectManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.effects)
}

// resolveChain resolves a chain's IDs into live instances for the audio
// goroutine's per-buffer snapshot, under one lock. Bypassed entries are
// skipped silently; dangling IDs are skipped too (passthrough) but
// counted, so the graph can raise an alert.
func (m *EffectManager) resolveChain(chain []boojy.EffectID, dst []dsp.Effect) ([]dsp.Effect, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dangling := 0
	for _, id := range chain {
		e, ok := m.effects[id]
		if !ok {
			dangling++
			continue
		}
		if e.bypassed {
			continue
		}
		dst = append(dst, e.instance)
	}
	return dst, dangling
}

// resetAll clears every instance's transient state. Called only from the
// audio goroutine, between buffers.
func (m *EffectManager) resetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.effects {
		e.instance.Reset()
	}
}

// apply runs a queued engine message against the live instances. Called
// only from the audio goroutine, between buffers.
func (m *EffectManager) apply(msg MsgToEngine) {
	m.mu.Lock()
	var target dsp.Effect
	var reset dsp.Effect
	if msg.HasParamUpdate {
		if e, ok := m.effects[msg.Effect]; ok {
			target = e.instance
		}
	}
	if msg.ResetEffect != 0 {
		if e, ok := m.effects[msg.ResetEffect]; ok {
			reset = e.instance
		}
	}
	m.mu.Unlock()
	if target != nil {
		// already clamped by SetParameter; an unknown name cannot reach here
		_ = target.SetParameter(msg.Param, msg.Value)
	}
	if reset != nil {
		reset.Reset()
	}
}
