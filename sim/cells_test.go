package sim

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"
)

// newCornerCamSim parks the camera in the far corner of the play area so
// that only leaders decide who is active.
func newCornerCamSim(t *testing.T) *Sim {
	t.Helper()
	bounds := Box{Min: cp.Vector{X: -1000, Y: -1000}, Max: cp.Vector{X: 1000, Y: 1000}}
	camera := Box{Min: cp.Vector{X: -1000, Y: -1000}, Max: cp.Vector{X: -990, Y: -990}}
	return New(Options{Bounds: bounds, Camera: camera, Seed: 7, Logger: zerolog.Nop()})
}

func plainType(t *testing.T, name string, mut func(*MobType)) *MobType {
	t.Helper()
	return buildType(t, name, []stateDecl{{name: "idle"}}, "idle", "", mut)
}

func TestLeaderActivatesNeighborhood(t *testing.T) {
	s := newCornerCamSim(t)
	leader := plainType(t, "captain", func(mt *MobType) { mt.Category = CategoryLeader })
	bystander := plainType(t, "bystander", nil)

	mustSpawn(t, s, leader, cp.Vector{})
	near := mustSpawn(t, s, bystander, cp.Vector{X: 100})
	far, err := s.Spawn("bystander", cp.Vector{X: 600}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	s.Tick(1.0 / 60)

	if !near.Active() {
		t.Fatalf("mob one cell from a leader should be active")
	}
	if far.Active() {
		t.Fatalf("mob far from every leader and the camera should be inactive")
	}
}

func TestFollowerMarksItsOwnNeighborhood(t *testing.T) {
	s := newCornerCamSim(t)
	leader := plainType(t, "captain", func(mt *MobType) { mt.Category = CategoryLeader })
	minion := plainType(t, "grunt", nil)

	l := mustSpawn(t, s, leader, cp.Vector{})
	follower := mustSpawn(t, s, minion, cp.Vector{X: 600})
	follower.LeaderID = l.ID
	tag := mustSpawn(t, s, plainType(t, "tagalong", nil), cp.Vector{X: 650})

	s.Tick(1.0 / 60)

	if !follower.Active() {
		t.Fatalf("a mob following a leader is always in a marked cell")
	}
	if !tag.Active() {
		t.Fatalf("followers mark their neighborhood for others too")
	}
}

func TestCameraBoxWithMarginActivates(t *testing.T) {
	bounds := Box{Min: cp.Vector{X: -1000, Y: -1000}, Max: cp.Vector{X: 1000, Y: 1000}}
	s := New(Options{
		Bounds: bounds,
		Camera: Box{Min: cp.Vector{X: -64, Y: -64}, Max: cp.Vector{X: 64, Y: 64}},
		Seed:   7,
		Logger: zerolog.Nop(),
	})
	typ := plainType(t, "prop", nil)

	inside := mustSpawn(t, s, typ, cp.Vector{})
	margin, err := s.Spawn("prop", cp.Vector{X: 150}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	outside, err := s.Spawn("prop", cp.Vector{X: 700}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	s.Tick(1.0 / 60)

	if !inside.Active() {
		t.Fatalf("mob inside the camera box should be active")
	}
	if !margin.Active() {
		t.Fatalf("mob inside the camera margin should be active")
	}
	if outside.Active() {
		t.Fatalf("mob well past the margin should be inactive")
	}
}

func TestOutOfBoundsIsNeverActive(t *testing.T) {
	s := newCornerCamSim(t)
	leader := plainType(t, "captain", func(mt *MobType) { mt.Category = CategoryLeader })
	typ := plainType(t, "stray", nil)

	mustSpawn(t, s, leader, cp.Vector{X: 990})
	stray := mustSpawn(t, s, typ, cp.Vector{X: 1500})

	s.Tick(1.0 / 60)

	if stray.Active() {
		t.Fatalf("out-of-bounds mobs never sit in a marked cell")
	}
}

func TestParentChildActivityChain(t *testing.T) {
	s := newCornerCamSim(t)
	leader := plainType(t, "captain", func(mt *MobType) { mt.Category = CategoryLeader })
	segment := plainType(t, "segment", nil)

	mustSpawn(t, s, leader, cp.Vector{})
	head := mustSpawn(t, s, segment, cp.Vector{X: 50})
	mid, err := s.Spawn("segment", cp.Vector{X: 600}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	tail, err := s.Spawn("segment", cp.Vector{X: 900}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	// head <- mid <- tail, only head near the leader.
	mid.ParentID = head.ID
	head.ChildIDs = append(head.ChildIDs, mid.ID)
	tail.ParentID = mid.ID
	mid.ChildIDs = append(mid.ChildIDs, tail.ID)

	s.Tick(1.0 / 60)

	if !head.Active() || !mid.Active() || !tail.Active() {
		t.Fatalf("activity should propagate along the whole chain: head=%v mid=%v tail=%v",
			head.Active(), mid.Active(), tail.Active())
	}
}

func TestInactiveMobsSkipTicking(t *testing.T) {
	counter := []stateDecl{{name: "idle", handlers: map[EventType][][]string{
		EventOnTick: {act("calculate", "ticks", "$ticks", "sum", "1")},
	}}}

	s := newCornerCamSim(t)
	sleeper := buildType(t, "sleeper", counter, "idle", "", nil)
	waker := buildType(t, "waker", counter, "idle", "", func(mt *MobType) {
		mt.TicksWhileInactive = true
	})

	a := mustSpawn(t, s, sleeper, cp.Vector{})
	b := mustSpawn(t, s, waker, cp.Vector{X: 300})
	// Past the spawn grace window, where newborns tick unconditionally.
	a.TimeAlive = 1
	b.TimeAlive = 1
	a.SetVar("ticks", "0")
	b.SetVar("ticks", "0")

	s.Tick(1.0 / 60)
	s.Tick(1.0 / 60)

	if got := a.Var("ticks"); got != "0" {
		t.Fatalf("inactive mob must not tick, ticks = %q", got)
	}
	if got := b.Var("ticks"); got != "2" {
		t.Fatalf("ticks_while_inactive opts back in, ticks = %q", got)
	}
}
