package sim

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"
)

func newTestSim(t *testing.T) *Sim {
	t.Helper()
	bounds := Box{Min: cp.Vector{X: -1000, Y: -1000}, Max: cp.Vector{X: 1000, Y: 1000}}
	return New(Options{Bounds: bounds, Camera: bounds, Seed: 7, Logger: zerolog.Nop()})
}

// act is one scripted instruction: name plus arguments.
func act(name string, args ...string) []string {
	return append([]string{name}, args...)
}

type stateDecl struct {
	name     string
	handlers map[EventType][][]string
}

// buildType assembles a mob type through the FSM builder the way the
// content compiler does, failing the test on any script error.
func buildType(t *testing.T, name string, states []stateDecl, first, death string, mut func(*MobType)) *MobType {
	t.Helper()
	typ := &MobType{
		Name:                name,
		Radius:              10,
		Height:              20,
		MaxHealth:           100,
		MoveSpeed:           50,
		RotationSpeed:       10,
		Huntable:            true,
		Tangible:            true,
		Resistances:         map[string]bool{},
		StatesIgnoringDeath: map[string]bool{},
	}
	if mut != nil {
		mut(typ)
	}
	b := NewFsmBuilder(typ)
	for _, st := range states {
		if err := b.NewState(st.name); err != nil {
			t.Fatalf("NewState(%s): %v", st.name, err)
		}
		for ev, actions := range st.handlers {
			if err := b.NewEvent(ev); err != nil {
				t.Fatalf("NewEvent(%s): %v", ev, err)
			}
			for _, a := range actions {
				if err := b.Add(a[0], a[1:]); err != nil {
					t.Fatalf("Add(%s): %v", a[0], err)
				}
			}
		}
	}
	if err := b.Finish(first, death); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return typ
}

func mustSpawn(t *testing.T, s *Sim, typ *MobType, pos cp.Vector) *Mob {
	t.Helper()
	if err := s.RegisterType(typ); err != nil {
		t.Fatalf("RegisterType(%s): %v", typ.Name, err)
	}
	m, err := s.Spawn(typ.Name, pos, 0)
	if err != nil {
		t.Fatalf("Spawn(%s): %v", typ.Name, err)
	}
	return m
}
