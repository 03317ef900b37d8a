package content

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/thicket-engine/thicket/sim"
)

// Compile parses one mob type script and runs it through the FSM
// builder. The returned type is fully validated and ready to register.
func Compile(data []byte) (*sim.MobType, error) {
	var spec MobTypeSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("content: unmarshal: %w", err)
	}
	return compileSpec(&spec)
}

// CompileFile loads and compiles a script by file name.
func CompileFile(name string) (*sim.MobType, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("content: load %s: %w", name, err)
	}
	t, err := Compile(data)
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", name, err)
	}
	return t, nil
}

func compileSpec(spec *MobTypeSpec) (*sim.MobType, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("mob type must have a name")
	}

	t := &sim.MobType{
		Name:                spec.Name,
		Radius:              spec.Radius,
		Height:              spec.Height,
		RectDim:             cp.Vector{X: spec.RectWidth, Y: spec.RectHeight},
		MaxHealth:           spec.MaxHealth,
		MoveSpeed:           spec.MoveSpeed,
		RotationSpeed:       spec.RotationSpeed,
		Weight:              spec.Weight,
		MaxCarriers:         spec.MaxCarriers,
		Pushes:              spec.Pushes,
		Pushable:            spec.Pushable,
		PushesWithHitboxes:  spec.PushesWithHitboxes,
		PushesSoftly:        spec.PushesSoftly,
		Flying:              spec.Flying,
		Holdable:            spec.Holdable,
		TerritoryRadius:     spec.TerritoryRadius,
		Huntable:            spec.Huntable == nil || *spec.Huntable,
		Tangible:            spec.Tangible == nil || *spec.Tangible,
		Resistances:         map[string]bool{},
		StatesIgnoringDeath: map[string]bool{},
		DefaultVars:         spec.DefaultVars,
	}

	if spec.Category != "" {
		cat, ok := sim.ParseCategory(spec.Category)
		if !ok {
			return nil, fmt.Errorf("type %s: unknown category %q", spec.Name, spec.Category)
		}
		t.Category = cat
	}
	if spec.Team != "" {
		team, ok := sim.ParseTeam(spec.Team)
		if !ok {
			return nil, fmt.Errorf("type %s: unknown team %q", spec.Name, spec.Team)
		}
		t.Team = team
	}
	for _, hz := range spec.Resistances {
		t.Resistances[hz] = true
	}
	for _, st := range spec.StatesIgnoringDeath {
		t.StatesIgnoringDeath[st] = true
	}
	for _, flag := range spec.InactiveLogic {
		switch flag {
		case "ticks":
			t.TicksWhileInactive = true
		case "interactions":
			t.InteractsWhileInactive = true
		default:
			return nil, fmt.Errorf("type %s: unknown inactive_logic flag %q", spec.Name, flag)
		}
	}

	for _, r := range spec.Reaches {
		t.AddReach(sim.Reach{
			Name: r.Name, Radius1: r.Radius1, Angle1: r.Angle1,
			Radius2: r.Radius2, Angle2: r.Angle2,
		})
	}
	for _, sp := range spec.Sprites {
		sprite := sim.Sprite{Name: sp.Name}
		for _, h := range sp.Hitboxes {
			kind := sim.HitboxNormal
			if h.Kind != "" {
				k, ok := sim.ParseHitboxKind(h.Kind)
				if !ok {
					return nil, fmt.Errorf("type %s: sprite %s: unknown hitbox kind %q", spec.Name, sp.Name, h.Kind)
				}
				kind = k
			}
			sprite.Hitboxes = append(sprite.Hitboxes, sim.Hitbox{
				Name: h.Name, Kind: kind,
				Offset: cp.Vector{X: h.X, Y: h.Y},
				Z:      h.Z, Height: h.Height, Radius: h.Radius,
				Power: h.Power, Hazards: h.Hazards, Latchable: h.Latchable,
				Knockback: h.Knockback,
			})
		}
		t.AddSprite(sprite)
	}
	for _, a := range spec.Animations {
		anim := sim.Animation{
			Name: a.Name, Durations: a.Durations, Signals: a.Signals, Loop: a.Loop,
		}
		for _, frame := range a.Frames {
			idx := t.SpriteIndex(frame)
			if idx < 0 {
				return nil, fmt.Errorf("type %s: animation %s: unknown sprite %q", spec.Name, a.Name, frame)
			}
			anim.Frames = append(anim.Frames, idx)
		}
		t.AddAnimation(anim)
	}

	b := sim.NewFsmBuilder(t)
	for _, stateName := range sortedKeys(spec.States) {
		if err := b.NewState(stateName); err != nil {
			return nil, fmt.Errorf("type %s: %w", spec.Name, err)
		}
		handlers := spec.States[stateName]
		for _, evName := range sortedKeys(handlers) {
			ev, err := sim.ParseEventType(evName)
			if err != nil {
				return nil, fmt.Errorf("type %s: state %s: %w", spec.Name, stateName, err)
			}
			if err := b.NewEvent(ev); err != nil {
				return nil, fmt.Errorf("type %s: %w", spec.Name, err)
			}
			for i, entry := range handlers[evName] {
				if err := b.Add(entry.Name, entry.Args); err != nil {
					return nil, fmt.Errorf("type %s: state %s: %s entry %d: %w", spec.Name, stateName, evName, i, err)
				}
			}
		}
	}
	for _, evName := range sortedKeys(spec.Global) {
		ev, err := sim.ParseEventType(evName)
		if err != nil {
			return nil, fmt.Errorf("type %s: global: %w", spec.Name, err)
		}
		if err := b.NewGlobalEvent(ev); err != nil {
			return nil, fmt.Errorf("type %s: %w", spec.Name, err)
		}
		for i, entry := range spec.Global[evName] {
			if err := b.Add(entry.Name, entry.Args); err != nil {
				return nil, fmt.Errorf("type %s: global %s entry %d: %w", spec.Name, evName, i, err)
			}
		}
	}
	if err := b.Finish(spec.FirstState, spec.DeathState); err != nil {
		return nil, fmt.Errorf("type %s: %w", spec.Name, err)
	}
	return t, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadAll compiles every embedded script and cross-checks spawn
// references between the resulting types.
func LoadAll() (map[string]*sim.MobType, error) {
	names, err := ListScripts()
	if err != nil {
		return nil, fmt.Errorf("content: list scripts: %w", err)
	}
	types := map[string]*sim.MobType{}
	for _, name := range names {
		if name == "statuses.yaml" {
			continue
		}
		t, err := CompileFile(name)
		if err != nil {
			return nil, err
		}
		if _, dup := types[t.Name]; dup {
			return nil, fmt.Errorf("content: duplicate mob type %q", t.Name)
		}
		types[t.Name] = t
	}
	if err := Finalize(types); err != nil {
		return nil, err
	}
	return types, nil
}

// Finalize verifies every spawn action references a loaded type.
func Finalize(types map[string]*sim.MobType) error {
	for _, t := range types {
		for _, ref := range t.SpawnRefs() {
			if _, ok := types[ref]; !ok {
				return fmt.Errorf("content: type %s spawns unknown type %q", t.Name, ref)
			}
		}
	}
	return nil
}

// LoadStatuses reads statuses.yaml into status definitions.
func LoadStatuses() ([]*sim.StatusType, error) {
	data, err := Load("statuses.yaml")
	if err != nil {
		return nil, fmt.Errorf("content: load statuses.yaml: %w", err)
	}
	var file StatusFileSpec
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("content: unmarshal statuses.yaml: %w", err)
	}
	out := make([]*sim.StatusType, 0, len(file.Statuses))
	for _, s := range file.Statuses {
		out = append(out, &sim.StatusType{
			Name:             s.Name,
			Duration:         s.Duration,
			HealthDrainRatio: s.HealthDrainRatio,
			Invisible:        s.Invisible,
			DisablesAttack:   s.DisablesAttack,
			SpeedMultiplier:  s.SpeedMultiplier,
		})
	}
	return out, nil
}
