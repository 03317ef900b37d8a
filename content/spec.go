package content

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MobTypeSpec is the YAML shape of one mob type script.
type MobTypeSpec struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`

	Radius     float64 `yaml:"radius"`
	Height     float64 `yaml:"height"`
	RectWidth  float64 `yaml:"rect_width"`
	RectHeight float64 `yaml:"rect_height"`

	MaxHealth     float64 `yaml:"max_health"`
	MoveSpeed     float64 `yaml:"move_speed"`
	RotationSpeed float64 `yaml:"rotation_speed"`
	Weight        float64 `yaml:"weight"`
	MaxCarriers   int     `yaml:"max_carriers"`

	Team string `yaml:"team"`

	Pushes             bool `yaml:"pushes"`
	Pushable           bool `yaml:"pushable"`
	PushesWithHitboxes bool `yaml:"pushes_with_hitboxes"`
	PushesSoftly       bool `yaml:"pushes_softly"`

	Huntable *bool `yaml:"huntable"`
	Tangible *bool `yaml:"tangible"`
	Flying   bool  `yaml:"flying"`
	Holdable bool  `yaml:"holdable"`

	TerritoryRadius float64 `yaml:"territory_radius"`

	Resistances         []string          `yaml:"resistances"`
	StatesIgnoringDeath []string          `yaml:"states_ignoring_death"`
	InactiveLogic       []string          `yaml:"inactive_logic"`
	DefaultVars         map[string]string `yaml:"default_vars"`

	Reaches    []ReachSpec     `yaml:"reaches"`
	Sprites    []SpriteSpec    `yaml:"sprites"`
	Animations []AnimationSpec `yaml:"animations"`

	FirstState string `yaml:"first_state"`
	DeathState string `yaml:"death_state"`

	Global map[string][]ActionEntry            `yaml:"global"`
	States map[string]map[string][]ActionEntry `yaml:"states"`
}

type ReachSpec struct {
	Name    string  `yaml:"name"`
	Radius1 float64 `yaml:"radius_1"`
	Angle1  float64 `yaml:"angle_1"`
	Radius2 float64 `yaml:"radius_2"`
	Angle2  float64 `yaml:"angle_2"`
}

type SpriteSpec struct {
	Name     string       `yaml:"name"`
	Hitboxes []HitboxSpec `yaml:"hitboxes"`
}

type HitboxSpec struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	X         float64  `yaml:"x"`
	Y         float64  `yaml:"y"`
	Z         float64  `yaml:"z"`
	Height    float64  `yaml:"height"`
	Radius    float64  `yaml:"radius"`
	Power     float64  `yaml:"power"`
	Hazards   []string `yaml:"hazards"`
	Latchable bool     `yaml:"latchable"`
	Knockback float64  `yaml:"knockback"`
}

type AnimationSpec struct {
	Name      string    `yaml:"name"`
	Frames    []string  `yaml:"frames"`
	Durations []float64 `yaml:"durations"`
	Signals   []int     `yaml:"signals"`
	Loop      bool      `yaml:"loop"`
}

// ActionEntry is one line of a handler list: a bare action name, or a
// one-key map from the action name to a scalar or a list of arguments.
type ActionEntry struct {
	Name string
	Args []string
}

func (e *ActionEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		e.Name = node.Value
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: one action per entry", node.Line)
		}
		e.Name = node.Content[0].Value
		val := node.Content[1]
		switch val.Kind {
		case yaml.ScalarNode:
			e.Args = []string{val.Value}
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: action %s: arguments must be scalars", item.Line, e.Name)
				}
				e.Args = append(e.Args, item.Value)
			}
		default:
			return fmt.Errorf("line %d: action %s: bad argument form", val.Line, e.Name)
		}
		return nil
	}
	return fmt.Errorf("line %d: bad action entry", node.Line)
}

// StatusSpec is the YAML shape of one status effect definition.
type StatusSpec struct {
	Name             string  `yaml:"name"`
	Duration         float64 `yaml:"duration"`
	HealthDrainRatio float64 `yaml:"health_drain_ratio"`
	Invisible        bool    `yaml:"invisible"`
	DisablesAttack   bool    `yaml:"disables_attack"`
	SpeedMultiplier  float64 `yaml:"speed_multiplier"`
}

// StatusFileSpec is the top-level shape of statuses.yaml.
type StatusFileSpec struct {
	Statuses []StatusSpec `yaml:"statuses"`
}
