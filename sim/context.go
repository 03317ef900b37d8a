package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"

	"github.com/thicket-engine/thicket/common"
)

// SoundPlayer is the audio collaborator used by the play_sound action.
type SoundPlayer interface {
	Play(name string) int
	Stop(handle int)
}

// FloorQuery answers ground height lookups for get_floor_z.
type FloorQuery interface {
	FloorZ(x, y float64) float64
}

// Box is an axis-aligned world-space rectangle.
type Box struct {
	Min, Max cp.Vector
}

// Contains tests a point, inclusive.
func (b Box) Contains(p cp.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Expand grows the box by a margin on every side.
func (b Box) Expand(margin float64) Box {
	m := cp.Vector{X: margin, Y: margin}
	return Box{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Options configures a new Sim.
type Options struct {
	// Bounds is the playable area; mobs outside it are never active.
	Bounds Box
	// Camera marks the visible region for activity partitioning. Update
	// via SetCamera as the view moves.
	Camera Box
	Seed   uint64
	Logger zerolog.Logger

	Sound  SoundPlayer
	Floor  FloorQuery
	Pather Pather
}

// Sim owns every live mob and drives the per-tick pipeline: activity
// partition, per-mob ticks, interaction resolution, deletion sweep.
// Never a singleton; tests build as many as they like.
type Sim struct {
	mobs    []*Mob
	byID    map[MobID]*Mob
	nextID  MobID
	pending []*Mob

	types       map[string]*MobType
	statusTypes map[string]*StatusType

	// storedOwner maps a stored-away mob to its container.
	storedOwner map[MobID]MobID

	cells  *activityGrid
	camera Box

	// DayMinutes is the in-game clock surfaced to scripts.
	DayMinutes float64

	rng *rand.Rand
	log zerolog.Logger

	Sound  SoundPlayer
	Floor  FloorQuery
	Pather Pather

	resolver interactionResolver

	eventDepth  int
	depthWarned bool

	spawnWarned map[string]bool
}

// New builds an empty simulation.
func New(opts Options) *Sim {
	pather := opts.Pather
	if pather == nil {
		pather = StraightLinePather{}
	}
	s := &Sim{
		byID:        map[MobID]*Mob{},
		types:       map[string]*MobType{},
		statusTypes: map[string]*StatusType{},
		storedOwner: map[MobID]MobID{},
		cells:       newActivityGrid(opts.Bounds),
		camera:      opts.Camera,
		rng:         rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		log:         opts.Logger,
		Sound:       opts.Sound,
		Floor:       opts.Floor,
		Pather:      pather,
		spawnWarned: map[string]bool{},
	}
	return s
}

// SetCamera moves the visible region used for activity marking.
func (s *Sim) SetCamera(b Box) { s.camera = b }

// RegisterType adds or replaces a compiled mob type. Replacement only
// affects mobs spawned afterwards.
func (s *Sim) RegisterType(t *MobType) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("mob type must be named")
	}
	if t.FirstStateIdx < 0 {
		return fmt.Errorf("mob type %q has no first state; did Finish run?", t.Name)
	}
	s.types[t.Name] = t
	return nil
}

// TypeByName resolves a registered type, nil on unknown.
func (s *Sim) TypeByName(name string) *MobType { return s.types[name] }

// RegisterStatusType adds a status effect definition.
func (s *Sim) RegisterStatusType(t *StatusType) {
	if t != nil && t.Name != "" {
		s.statusTypes[t.Name] = t
	}
}

// StatusType resolves a status definition, nil on unknown.
func (s *Sim) StatusType(name string) *StatusType { return s.statusTypes[name] }

// Spawn creates a mob of a registered type and enters its first state.
// The mob joins the tick walk next tick but is reachable by id at once.
func (s *Sim) Spawn(typeName string, pos cp.Vector, angle float64) (*Mob, error) {
	t := s.types[typeName]
	if t == nil {
		return nil, fmt.Errorf("unknown mob type %q", typeName)
	}
	s.nextID++
	m := newMob(s, s.nextID, t, pos, common.NormalizeAngle(angle))
	s.byID[m.ID] = m
	s.pending = append(s.pending, m)
	s.SetState(m, t.FirstStateIdx)
	return m, nil
}

// SpawnChild spawns at the parent's position and wires the parent/child
// links. Unknown types log once per name and no-op.
func (s *Sim) SpawnChild(parent *Mob, typeName string) *Mob {
	child, err := s.Spawn(typeName, parent.Pos, parent.Angle)
	if err != nil {
		if !s.spawnWarned[typeName] {
			s.spawnWarned[typeName] = true
			s.log.Warn().Str("type", parent.Type.Name).Str("child", typeName).
				Msg("spawn action references unknown type")
		}
		return nil
	}
	child.ParentID = parent.ID
	parent.ChildIDs = append(parent.ChildIDs, child.ID)
	return child
}

// MobByID resolves a live mob, nil when the id is unknown or swept.
func (s *Sim) MobByID(id MobID) *Mob {
	if id == 0 {
		return nil
	}
	return s.byID[id]
}

// Mobs is the current walk order, excluding this tick's fresh spawns.
func (s *Sim) Mobs() []*Mob { return s.mobs }

// FieldMinionCount counts live minion-category mobs.
func (s *Sim) FieldMinionCount() int {
	n := 0
	for _, m := range s.mobs {
		if m.Type.Category == CategoryMinion && !m.ToDelete() {
			n++
		}
	}
	return n
}

// SendMessage dispatches on_receive_message with the sender and text as
// payloads.
func (s *Sim) SendMessage(from, to *Mob, msg string) {
	s.RunEvent(to, EventOnReceiveMessage, from, msg)
}

// Tick advances the world one fixed step.
func (s *Sim) Tick(dt float64) {
	if len(s.pending) > 0 {
		s.mobs = append(s.mobs, s.pending...)
		s.pending = s.pending[:0]
	}

	s.DayMinutes += dt / 60

	s.cells.rebuild(s)

	for _, m := range s.mobs {
		if m.ToDelete() {
			continue
		}
		// Freshly spawned mobs always tick; activity gating kicks in
		// once the spawn grace window passes.
		if !m.Active() && !m.Type.TicksWhileInactive && m.TimeAlive > spawnGrace {
			continue
		}
		s.RunEvent(m, EventOnTick, nil, nil)
		if !m.ToDelete() {
			m.tick(dt)
		}
	}

	s.resolver.process(s, dt)

	s.sweep()
}

// sweep removes every to_delete mob and severs its cross-references.
func (s *Sim) sweep() {
	n := 0
	for _, m := range s.mobs {
		if !m.ToDelete() {
			s.mobs[n] = m
			n++
			continue
		}
		s.detach(m)
		delete(s.byID, m.ID)
	}
	for i := n; i < len(s.mobs); i++ {
		s.mobs[i] = nil
	}
	s.mobs = s.mobs[:n]
}

func (s *Sim) detach(m *Mob) {
	m.StopChomping()
	m.ReleaseAll()
	m.ReleaseStoredMobs()
	if owner := s.MobByID(m.holder.ID); owner != nil {
		owner.releaseOne(m.ID)
	}
	delete(s.storedOwner, m.ID)
	if p := s.MobByID(m.ParentID); p != nil {
		for i, id := range p.ChildIDs {
			if id == m.ID {
				p.ChildIDs = append(p.ChildIDs[:i], p.ChildIDs[i+1:]...)
				break
			}
		}
	}
	for _, id := range m.ChildIDs {
		if c := s.MobByID(id); c != nil {
			c.ParentID = 0
		}
	}
	for _, other := range s.mobs {
		if other == m {
			continue
		}
		if other.FocusID == m.ID {
			other.Unfocus()
		}
		if other.focusMemory == m.ID {
			other.focusMemory = 0
		}
		if other.Carry != nil {
			other.Carry.Drop(m.ID)
		}
		if other.GroupTask != nil {
			other.GroupTask.Drop(m.ID, 1)
		}
		if other.ReservedBy == m.ID {
			other.ReservedBy = 0
		}
		if other.LeaderID == m.ID {
			other.LeaderID = 0
		}
		for i := 0; i < len(other.LinkIDs); i++ {
			if other.LinkIDs[i] == m.ID {
				other.LinkIDs = append(other.LinkIDs[:i], other.LinkIDs[i+1:]...)
				i--
			}
		}
	}
}

func (s *Sim) startPath(m *Mob, goal cp.Vector) {
	res := s.Pather.FindPath(PathRequest{From: m.Pos, To: goal, Radius: m.Radius})
	if res.Blocked != PathOK {
		s.RunEvent(m, EventOnPathBlocked, int(res.Blocked), nil)
		return
	}
	if len(res.Stops) == 0 {
		res.Stops = []cp.Vector{goal}
	}
	m.path = &pathFollow{stops: res.Stops}
	m.chase = chaseInfo{active: true, target: res.Stops[0], speed: m.Type.MoveSpeed}
	m.Face(common.Angle(m.Pos, res.Stops[0]))
}
