package content

import (
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/thicket-engine/thicket/sim"
)

func TestActionEntryUnmarshalForms(t *testing.T) {
	var list []ActionEntry
	src := `
- stop
- {set_timer: 0.5}
- {calculate: [x, $x, sum, 1]}
`
	if err := yaml.Unmarshal([]byte(src), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []ActionEntry{
		{Name: "stop"},
		{Name: "set_timer", Args: []string{"0.5"}},
		{Name: "calculate", Args: []string{"x", "$x", "sum", "1"}},
	}
	if len(list) != len(want) {
		t.Fatalf("got %d entries, want %d", len(list), len(want))
	}
	for i, e := range list {
		if e.Name != want[i].Name || strings.Join(e.Args, ",") != strings.Join(want[i].Args, ",") {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestActionEntryUnmarshalRejects(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"two_actions_in_one_map", `- {stop: [], delete: []}`},
		{"nested_argument", `- {set_timer: {duration: 1}}`},
		{"non_scalar_list_item", `- {calculate: [x, [1, 2]]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var list []ActionEntry
			if err := yaml.Unmarshal([]byte(c.src), &list); err == nil {
				t.Fatalf("expected unmarshal error")
			}
		})
	}
}

func TestCompileRejectsBadScripts(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"missing_name", `radius: 5`, "must have a name"},
		{"unknown_category", "name: x\ncategory: vegetable", "unknown category"},
		{"unknown_team", "name: x\nteam: chaos", "unknown team"},
		{"unknown_inactive_flag", "name: x\ninactive_logic: [dreams]", "unknown inactive_logic"},
		{"unknown_hitbox_kind", `
name: x
sprites:
  - name: s
    hitboxes:
      - {name: h, kind: spiky}
`, "unknown hitbox kind"},
		{"animation_unknown_sprite", `
name: x
animations:
  - {name: a, frames: [ghost], durations: [0.1]}
`, "unknown sprite"},
		{"unknown_event", `
name: x
first_state: idle
states:
  idle:
    on_eclipse: [stop]
`, "unknown event"},
		{"bad_action_args", `
name: x
first_state: idle
states:
  idle:
    on_enter:
      - {set_timer: soon}
`, "not a number"},
		{"missing_first_state", `
name: x
states:
  idle:
    on_enter: [stop]
`, "first state"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Compile([]byte(c.src))
			if err == nil {
				t.Fatalf("expected error containing %q", c.wantErr)
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("error %q does not mention %q", err, c.wantErr)
			}
		})
	}
}

func TestCompileDefaultsAndFieldMapping(t *testing.T) {
	src := `
name: boulder
category: obstacle
radius: 30
team: obstacle
huntable: false
resistances: [fire, crush]
states_ignoring_death: [rolling]
inactive_logic: [ticks, interactions]
first_state: resting
states:
  resting: {}
  rolling: {}
`
	typ, err := Compile([]byte(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if typ.Huntable {
		t.Errorf("huntable: false should stick")
	}
	if !typ.Tangible {
		t.Errorf("tangible defaults to true when omitted")
	}
	if !typ.Resistances["fire"] || !typ.Resistances["crush"] {
		t.Errorf("resistances not mapped: %v", typ.Resistances)
	}
	if !typ.StatesIgnoringDeath["rolling"] {
		t.Errorf("states_ignoring_death not mapped")
	}
	if !typ.TicksWhileInactive || !typ.InteractsWhileInactive {
		t.Errorf("inactive_logic flags not mapped")
	}
	if typ.Category != sim.CategoryObstacle {
		t.Errorf("category = %v", typ.Category)
	}
}

func TestLoadAllCompilesEveryEmbeddedScript(t *testing.T) {
	types, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for _, name := range []string{"flukeweed", "red_snapper", "pellet", "fire_geyser"} {
		if types[name] == nil {
			t.Errorf("embedded script %s did not load", name)
		}
	}
}

func TestLoadStatuses(t *testing.T) {
	statuses, err := LoadStatuses()
	if err != nil {
		t.Fatalf("LoadStatuses: %v", err)
	}
	byName := map[string]*sim.StatusType{}
	for _, s := range statuses {
		byName[s.Name] = s
	}
	if byName["poison"] == nil || byName["poison"].HealthDrainRatio <= 0 {
		t.Fatalf("poison should drain health: %+v", byName["poison"])
	}
}

func TestFinalizeCatchesDanglingSpawnRefs(t *testing.T) {
	src := `
name: nest
first_state: idle
states:
  idle:
    on_timer:
      - {spawn: [hatchling, 0, 0, 0]}
`
	typ, err := Compile([]byte(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	err = Finalize(map[string]*sim.MobType{"nest": typ})
	if err == nil || !strings.Contains(err.Error(), "hatchling") {
		t.Fatalf("Finalize should flag the missing spawn target, got %v", err)
	}
}

func spawnFlukeweed(t *testing.T) (*sim.Sim, *sim.Mob) {
	t.Helper()
	typ, err := CompileFile("flukeweed.yaml")
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	bounds := sim.Box{Min: cp.Vector{X: -512, Y: -512}, Max: cp.Vector{X: 512, Y: 512}}
	s := sim.New(sim.Options{Bounds: bounds, Camera: bounds, Seed: 1, Logger: zerolog.Nop()})
	if err := s.RegisterType(typ); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	m, err := s.Spawn("flukeweed", cp.Vector{}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return s, m
}

// Drives a compiled script through a live world: buried weed surfaces,
// gets pulled until its health drains out, and despawns through its
// death state.
func TestFlukeweedLifecycle(t *testing.T) {
	s, m := spawnFlukeweed(t)
	if m.StateName() != "capturing" {
		t.Fatalf("first state = %q", m.StateName())
	}
	if m.Var("capturing") != "true" {
		t.Fatalf("buried weed should report capturing, got %q", m.Var("capturing"))
	}

	// 1/16 divides the script timers without float drift.
	const dt = 1.0 / 16
	s.Tick(dt)
	s.Tick(dt)
	if m.StateName() != "idling" {
		t.Fatalf("after the capture timer the weed should sway, state = %q", m.StateName())
	}
	if m.Var("capturing") != "false" {
		t.Fatalf("a surfaced weed is no longer capturing, got %q", m.Var("capturing"))
	}

	s.SendMessage(nil, m, "goal_reached")
	if m.StateName() != "pulled" {
		t.Fatalf("goal message should start the pull, state = %q", m.StateName())
	}

	// Power 0 drains 20 HP every 1.5s; five pulses empty it out, then
	// the half-second death timer despawns it.
	for i := 0; i < 5*24; i++ {
		s.Tick(dt)
	}
	if m.StateName() != "dying" {
		t.Fatalf("a drained weed should be dying, state = %q, health = %v", m.StateName(), m.Health)
	}
	for i := 0; i < 8; i++ {
		s.Tick(dt)
	}
	if s.MobByID(m.ID) != nil {
		t.Fatalf("the dying timer should have deleted the mob")
	}
}

func TestFlukeweedPullCadence(t *testing.T) {
	cases := []struct {
		name       string
		power      string
		pulseTicks int
	}{
		{"low_power", "3", 24},  // 1.5s
		{"mid_power", "4", 20},  // 1.25s
		{"high_power", "5", 16}, // 1.0s
	}
	const dt = 1.0 / 16
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, m := spawnFlukeweed(t)
			s.Tick(dt)
			s.Tick(dt)
			if m.StateName() != "idling" {
				t.Fatalf("state = %q", m.StateName())
			}

			m.SetVar("power", c.power)
			s.SendMessage(nil, m, "goal_reached")

			for i := 0; i < c.pulseTicks-1; i++ {
				s.Tick(dt)
			}
			if m.Health != 100 {
				t.Fatalf("drain pulsed early; health = %v", m.Health)
			}
			s.Tick(dt)
			if m.Health != 80 {
				t.Fatalf("pulse should drain 20 HP; health = %v", m.Health)
			}

			// The interval holds for the next pulse too.
			for i := 0; i < c.pulseTicks-1; i++ {
				s.Tick(dt)
			}
			if m.Health != 80 {
				t.Fatalf("second pulse came early; health = %v", m.Health)
			}
			s.Tick(dt)
			if m.Health != 60 {
				t.Fatalf("second pulse should drain again; health = %v", m.Health)
			}
		})
	}
}
