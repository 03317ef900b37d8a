package sim

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func TestHealthClampAndDeathPath(t *testing.T) {
	typ := buildType(t, "mortal", []stateDecl{
		{name: "alive"},
		{name: "dying", handlers: map[EventType][][]string{
			EventOnEnter: {act("set_var", "dying", "yes")},
		}},
	}, "alive", "dying", func(mt *MobType) {
		mt.MaxHealth = 100
	})

	s := newTestSim(t)
	m := mustSpawn(t, s, typ, cp.Vector{})

	m.SetHealth(250)
	if m.Health != 100 {
		t.Fatalf("health must clamp to max; got %v", m.Health)
	}
	m.AddHealth(-30)
	if m.Health != 70 {
		t.Fatalf("AddHealth: got %v, want 70", m.Health)
	}

	m.AddHealth(-500)
	if m.Health != 0 {
		t.Fatalf("health must clamp at zero; got %v", m.Health)
	}
	if !m.Dead() {
		t.Fatalf("zero crossing must run the death path")
	}
	if m.StateName() != "dying" {
		t.Fatalf("death path should enter the death state, got %q", m.StateName())
	}
	if m.Var("dying") != "yes" {
		t.Fatalf("death state on_enter should run")
	}
}

func TestDeathRunsOnce(t *testing.T) {
	typ := buildType(t, "once", []stateDecl{
		{name: "alive"},
		{name: "gone", handlers: map[EventType][][]string{
			EventOnEnter: {act("calculate", "deaths", "$deaths", "sum", "1")},
		}},
	}, "alive", "gone", nil)

	s := newTestSim(t)
	m := mustSpawn(t, s, typ, cp.Vector{})
	m.SetVar("deaths", "0")

	m.SetHealth(0)
	m.SetHealth(0)
	m.StartDying()

	if got := m.Var("deaths"); got != "1" {
		t.Fatalf("death path must run exactly once; deaths = %q", got)
	}
}

func TestDeathWithoutDeathStateDeletes(t *testing.T) {
	typ := buildType(t, "fragile", []stateDecl{{name: "alive"}}, "alive", "", nil)

	s := newTestSim(t)
	m := mustSpawn(t, s, typ, cp.Vector{})
	m.SetHealth(0)
	if !m.ToDelete() {
		t.Fatalf("types without a death state delete on death")
	}
}

func TestStatesIgnoringDeathDeferTheDeathPath(t *testing.T) {
	typ := buildType(t, "stubborn", []stateDecl{
		{name: "shielded"},
		{name: "open"},
		{name: "gone"},
	}, "shielded", "gone", func(mt *MobType) {
		mt.StatesIgnoringDeath["shielded"] = true
	})

	s := newTestSim(t)
	m := mustSpawn(t, s, typ, cp.Vector{})

	m.SetHealth(0)
	if m.Dead() {
		t.Fatalf("death must not fire while in an ignoring state")
	}

	s.SetState(m, typ.StateIndex("open"))
	m.SetHealth(0)
	if !m.Dead() {
		t.Fatalf("death should fire once out of the ignoring state")
	}
}

func TestScriptTimerFiresOnce(t *testing.T) {
	typ := buildType(t, "clock", []stateDecl{
		{name: "waiting", handlers: map[EventType][][]string{
			EventOnEnter: {act("set_timer", "0.25")},
			EventOnTimer: {act("calculate", "fired", "$fired", "sum", "1")},
		}},
	}, "waiting", "", nil)

	s := newTestSim(t)
	m := mustSpawn(t, s, typ, cp.Vector{})
	m.SetVar("fired", "0")

	for i := 0; i < 10; i++ {
		s.Tick(0.1)
	}
	if got := m.Var("fired"); got != "1" {
		t.Fatalf("disarmed timer must not refire; fired = %q", got)
	}
}

func TestChaseReachesDestination(t *testing.T) {
	typ := buildType(t, "walker", []stateDecl{
		{name: "moving", handlers: map[EventType][][]string{
			EventOnEnter:              {act("move_to_absolute", "100", "0")},
			EventOnReachedDestination: {act("set_var", "arrived", "yes")},
		}},
	}, "moving", "", func(mt *MobType) {
		mt.MoveSpeed = 100
	})

	s := newTestSim(t)
	m := mustSpawn(t, s, typ, cp.Vector{})

	for i := 0; i < 70; i++ {
		s.Tick(1.0 / 60)
	}
	if m.Var("arrived") != "yes" {
		t.Fatalf("mob should reach its destination; pos = %v", m.Pos)
	}
	if m.Chasing() {
		t.Fatalf("arrival must stop the chase")
	}
}

func TestStatusDrainAndExpiry(t *testing.T) {
	typ := buildType(t, "poisoned", []stateDecl{{name: "idle"}}, "idle", "", func(mt *MobType) {
		mt.MaxHealth = 100
	})

	s := newTestSim(t)
	s.RegisterStatusType(&StatusType{Name: "venom", Duration: 1, HealthDrainRatio: 0.1})
	m := mustSpawn(t, s, typ, cp.Vector{})

	m.ApplyStatus(s.StatusType("venom"))
	if !m.HasStatus("venom") {
		t.Fatalf("status should be active after apply")
	}

	for i := 0; i < 10; i++ {
		s.Tick(0.1)
	}
	if m.HasStatus("venom") {
		t.Fatalf("status should expire after its duration")
	}
	if m.Health >= 100 {
		t.Fatalf("drain should have cost health; health = %v", m.Health)
	}
	if m.Health < 85 {
		t.Fatalf("drain overshot; health = %v", m.Health)
	}
}

func TestHoldAndRelease(t *testing.T) {
	holderType := buildType(t, "gripper", []stateDecl{{name: "idle"}}, "idle", "", nil)
	heldType := buildType(t, "grippee", []stateDecl{
		{name: "idle", handlers: map[EventType][][]string{
			EventOnHeld:     {act("set_var", "held", "yes")},
			EventOnReleased: {act("set_var", "held", "no")},
		}},
	}, "idle", "", func(mt *MobType) {
		mt.Holdable = true
	})

	s := newTestSim(t)
	holder := mustSpawn(t, s, holderType, cp.Vector{})
	held := mustSpawn(t, s, heldType, cp.Vector{X: 5})

	holder.Hold(held, "hand")
	if held.Var("held") != "yes" {
		t.Fatalf("on_held should fire on grab")
	}
	if held.HeldBy().ID != holder.ID {
		t.Fatalf("holder not recorded")
	}

	held.OrderRelease()
	if held.Var("held") != "no" {
		t.Fatalf("on_released should fire on release")
	}
	if held.HeldBy().ID != 0 {
		t.Fatalf("holder should be cleared")
	}
}

func TestSweepSeversCrossReferences(t *testing.T) {
	typ := buildType(t, "plain", []stateDecl{{name: "idle"}}, "idle", "", nil)

	s := newTestSim(t)
	a := mustSpawn(t, s, typ, cp.Vector{})
	b := mustSpawn(t, s, typ, cp.Vector{X: 20})

	a.Focus(b.ID)
	a.SaveFocusMemory()
	a.Link(b.ID)

	b.Delete()
	s.Tick(1.0 / 60)

	if s.MobByID(b.ID) != nil {
		t.Fatalf("swept mob still resolvable")
	}
	if a.FocusID != 0 {
		t.Fatalf("focus on a swept mob must clear")
	}
	if a.focusMemory != 0 {
		t.Fatalf("focus memory on a swept mob must clear")
	}
	if len(a.LinkIDs) != 0 {
		t.Fatalf("links to a swept mob must clear")
	}
}
