package sim

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/thicket-engine/thicket/common"
)

// MobID identifies a live mob. Zero is never assigned.
type MobID uint64

type mobFlags uint16

const (
	flagTangible mobFlags = 1 << iota
	flagHuntable
	flagHiding
	flagFlying
	flagHoldable
	flagDead
	flagToDelete
	flagActive
	flagChomping
)

const (
	// Newly spawned mobs interact with nothing for this long.
	spawnGrace = 0.1
	// Previous state names remembered per mob.
	prevStateCap = 5
)

// Mob is one live entity. All mutable per-entity simulation state lives
// here; the immutable description is on Type.
type Mob struct {
	ID   MobID
	Type *MobType
	sim  *Sim

	Pos   cp.Vector
	Z     float64
	Angle float64
	Home  cp.Vector

	// Radius/Height start from the type and may be changed by script.
	Radius float64
	Height float64
	Team   Team

	Health    float64
	TimeAlive float64

	flags mobFlags

	Vars map[string]string

	// StateIdx indexes Type.States; prevStates is a newest-first ring of
	// the last state names.
	StateIdx   int
	prevStates []string

	// ScriptTimer counts down to an on_timer dispatch.
	ScriptTimer  float64
	timerRunning bool

	intendedAngle float64

	chase   chaseInfo
	path    *pathFollow
	pushAmt float64
	pushAng float64

	SpriteIdx int
	AnimIdx   int
	animFrame int
	animTime  float64

	NearReachIdx int
	FarReachIdx  int

	FocusID     MobID
	focusMemory MobID
	LinkIDs     []MobID
	ParentID    MobID
	ChildIDs    []MobID

	holder  Holder
	holding []heldRef
	stored  []MobID

	chompingIDs []MobID
	chompCap    int
	chompParts  []string

	Carry     *CarryInfo
	GroupTask *GroupTaskInfo
	// LeaderID is set while this mob follows a leader's group.
	LeaderID MobID
	// ReservedBy marks a tool claimed by a minion.
	ReservedBy MobID

	statuses []statusInstance
}

type chaseInfo struct {
	active    bool
	targetMob MobID
	target    cp.Vector
	away      bool
	speed     float64
}

type heldRef struct {
	id     MobID
	hitbox string
}

// Holder records who is holding this mob and by which hitbox index.
type Holder struct {
	ID     MobID
	Hitbox int
}

func newMob(s *Sim, id MobID, t *MobType, pos cp.Vector, angle float64) *Mob {
	m := &Mob{
		ID:           id,
		Type:         t,
		sim:          s,
		Pos:          pos,
		Z:            0,
		Angle:        angle,
		Home:         pos,
		Radius:       t.Radius,
		Height:       t.Height,
		Team:         t.Team,
		Health:       t.MaxHealth,
		Vars:         map[string]string{},
		StateIdx:     -1,
		NearReachIdx: -1,
		FarReachIdx:  -1,
		chompCap:     0,
	}
	for k, v := range t.DefaultVars {
		m.Vars[k] = v
	}
	m.flags = flagTangible
	if t.Huntable {
		m.flags |= flagHuntable
	}
	if t.Flying {
		m.flags |= flagFlying
	}
	if t.Holdable {
		m.flags |= flagHoldable
	}
	if !t.Tangible {
		m.flags &^= flagTangible
	}
	if t.Category == CategoryCarriable {
		m.Carry = NewCarryInfo(m, t.MaxCarriers)
	}
	if t.Category == CategoryGroupTask {
		m.GroupTask = NewGroupTaskInfo(m, t.MaxCarriers)
	}
	return m
}

func (m *Mob) has(f mobFlags) bool { return m.flags&f != 0 }
func (m *Mob) set(f mobFlags, on bool) {
	if on {
		m.flags |= f
	} else {
		m.flags &^= f
	}
}

// ToDelete reports whether the mob is queued for the end-of-tick sweep.
func (m *Mob) ToDelete() bool { return m.has(flagToDelete) }

// Dead reports whether the death path has run.
func (m *Mob) Dead() bool { return m.has(flagDead) }

// Tangible, Huntable, Hiding, Flying, Holdable read the script-settable
// body flags.
func (m *Mob) Tangible() bool { return m.has(flagTangible) }
func (m *Mob) Huntable() bool { return m.has(flagHuntable) }
func (m *Mob) Hiding() bool   { return m.has(flagHiding) }
func (m *Mob) Flying() bool   { return m.has(flagFlying) }
func (m *Mob) Holdable() bool { return m.has(flagHoldable) }

// Active reports whether the mob sits in a marked activity cell this
// tick.
func (m *Mob) Active() bool { return m.has(flagActive) }

// StateName is the current state's name, empty before the first state.
func (m *Mob) StateName() string {
	if m.StateIdx < 0 || m.StateIdx >= len(m.Type.States) {
		return ""
	}
	return m.Type.States[m.StateIdx].Name
}

// PrevStateName returns the n-th most recent previous state name, newest
// first. Empty when the ring does not go back that far.
func (m *Mob) PrevStateName(n int) string {
	if n < 0 || n >= len(m.prevStates) {
		return ""
	}
	return m.prevStates[n]
}

func (m *Mob) pushPrevState(name string) {
	m.prevStates = append([]string{name}, m.prevStates...)
	if len(m.prevStates) > prevStateCap {
		m.prevStates = m.prevStates[:prevStateCap]
	}
}

// Var reads a script variable, empty string when unset.
func (m *Mob) Var(name string) string { return m.Vars[name] }

// SetVar writes a script variable.
func (m *Mob) SetVar(name, value string) { m.Vars[name] = value }

// SetTimer arms the script timer. Zero or negative disarms it.
func (m *Mob) SetTimer(seconds float64) {
	m.ScriptTimer = seconds
	m.timerRunning = seconds > 0
}

// Focus points the mob at another mob.
func (m *Mob) Focus(id MobID) { m.FocusID = id }

// Unfocus clears the focused mob.
func (m *Mob) Unfocus() { m.FocusID = 0 }

// FocusedMob resolves the focus, nil when unset or despawned.
func (m *Mob) FocusedMob() *Mob { return m.sim.MobByID(m.FocusID) }

// SaveFocusMemory stores the current focus for a later load.
func (m *Mob) SaveFocusMemory() { m.focusMemory = m.FocusID }

// LoadFocusMemory restores the remembered focus.
func (m *Mob) LoadFocusMemory() { m.FocusID = m.focusMemory }

// AddHealth applies a delta, clamps, and runs the death path on a
// downward zero crossing.
func (m *Mob) AddHealth(amount float64) {
	m.SetHealth(m.Health + amount)
}

// SetHealth clamps to [0, max] and triggers death on reaching zero.
func (m *Mob) SetHealth(amount float64) {
	m.Health = common.Clamp(amount, 0, m.Type.MaxHealth)
	if m.Health <= 0 {
		m.maybeDie()
	}
}

func (m *Mob) maybeDie() {
	if m.has(flagDead) || m.ToDelete() {
		return
	}
	if m.Type.StatesIgnoringDeath[m.StateName()] {
		return
	}
	m.StartDying()
}

// StartDying runs the death path once: health zeroed, on_death raised,
// then the death state if the type declares one, else deletion.
func (m *Mob) StartDying() {
	if m.has(flagDead) {
		return
	}
	m.set(flagDead, true)
	m.Health = 0
	m.StopChase()
	m.sim.RunEvent(m, EventOnDeath, nil, nil)
	if m.Type.DeathStateIdx >= 0 {
		m.sim.SetState(m, m.Type.DeathStateIdx)
	} else {
		m.Delete()
	}
}

// FinishDying releases everything the mob still has a grip on.
func (m *Mob) FinishDying() {
	m.StopChomping()
	m.ReleaseAll()
	m.ReleaseStoredMobs()
}

// Delete queues the mob for the end-of-tick sweep.
func (m *Mob) Delete() { m.set(flagToDelete, true) }

// Face turns the mob toward an absolute angle over time.
func (m *Mob) Face(angle float64) { m.intendedAngle = common.NormalizeAngle(angle) }

// ChaseTo moves toward a fixed point.
func (m *Mob) ChaseTo(target cp.Vector) {
	m.chase = chaseInfo{active: true, target: target, speed: m.Type.MoveSpeed}
	m.Face(common.Angle(m.Pos, target))
}

// ChaseMob tracks a moving mob, optionally fleeing it.
func (m *Mob) ChaseMob(id MobID, away bool) {
	m.chase = chaseInfo{active: true, targetMob: id, away: away, speed: m.Type.MoveSpeed}
}

// StopChase halts movement and abandons any path.
func (m *Mob) StopChase() {
	m.chase = chaseInfo{}
	m.path = nil
}

// Chasing reports whether the mob is moving toward (or away from) a
// target.
func (m *Mob) Chasing() bool { return m.chase.active }

// Teleport moves the mob instantly, canceling any chase.
func (m *Mob) Teleport(pos cp.Vector, z float64) {
	m.Pos = pos
	m.Z = z
	m.StopChase()
}

// accumulatePush merges one push contribution, keeping the strongest.
func (m *Mob) accumulatePush(amount, angle float64) {
	if amount > m.pushAmt {
		m.pushAmt = amount
		m.pushAng = angle
	}
}

// Hold grips another mob by the named body part.
func (m *Mob) Hold(target *Mob, hitbox string) {
	if target == nil || !target.Holdable() {
		return
	}
	idx := 0
	if s := m.currentSprite(); s != nil {
		for i := range s.Hitboxes {
			if s.Hitboxes[i].Name == hitbox {
				idx = i
				break
			}
		}
	}
	target.holder = Holder{ID: m.ID, Hitbox: idx}
	m.holding = append(m.holding, heldRef{id: target.ID, hitbox: hitbox})
	target.StopChase()
	m.sim.RunEvent(target, EventOnHeld, m, nil)
}

// HeldBy reports the holder, zero Holder when free.
func (m *Mob) HeldBy() Holder { return m.holder }

// ReleaseAll lets go of every held mob.
func (m *Mob) ReleaseAll() {
	for _, ref := range m.holding {
		if held := m.sim.MobByID(ref.id); held != nil {
			held.holder = Holder{}
			m.sim.RunEvent(held, EventOnReleased, m, nil)
		}
	}
	m.holding = m.holding[:0]
}

// OrderRelease tells the mob's own holder to let go.
func (m *Mob) OrderRelease() {
	if holder := m.sim.MobByID(m.holder.ID); holder != nil {
		holder.releaseOne(m.ID)
	}
}

func (m *Mob) releaseOne(id MobID) {
	for i, ref := range m.holding {
		if ref.id == id {
			m.holding = append(m.holding[:i], m.holding[i+1:]...)
			break
		}
	}
	if held := m.sim.MobByID(id); held != nil {
		held.holder = Holder{}
		m.sim.RunEvent(held, EventOnReleased, m, nil)
	}
}

// StoreInside tucks a mob away: it stops interacting until released.
func (m *Mob) StoreInside(target *Mob) {
	if target == nil {
		return
	}
	target.StopChase()
	m.stored = append(m.stored, target.ID)
	m.sim.storedOwner[target.ID] = m.ID
}

// StoredBySomeone reports whether any mob has this one stored.
func (m *Mob) StoredBySomeone() bool {
	return m.sim.storedOwner[m.ID] != 0
}

// ReleaseStoredMobs pops every stored mob back out at this mob's
// position.
func (m *Mob) ReleaseStoredMobs() {
	for _, id := range m.stored {
		if s := m.sim.MobByID(id); s != nil {
			s.Pos = m.Pos
			delete(m.sim.storedOwner, id)
		}
	}
	m.stored = m.stored[:0]
}

// StartChomping opens the mouth: up to victimMax mobs can be caught on
// the named body parts.
func (m *Mob) StartChomping(victimMax int, parts []string) {
	m.set(flagChomping, true)
	m.chompCap = victimMax
	m.chompParts = append(m.chompParts[:0], parts...)
}

// StopChomping closes the mouth and frees uneaten victims.
func (m *Mob) StopChomping() {
	m.set(flagChomping, false)
	for _, id := range m.chompingIDs {
		if v := m.sim.MobByID(id); v != nil {
			v.holder = Holder{}
			m.sim.RunEvent(v, EventOnReleased, m, nil)
		}
	}
	m.chompingIDs = m.chompingIDs[:0]
}

// Chomping reports whether the mouth is open with capacity left.
func (m *Mob) Chomping() bool {
	return m.has(flagChomping) && len(m.chompingIDs) < m.chompCap
}

// ChompPart reports whether the named body part catches victims.
func (m *Mob) ChompPart(name string) bool {
	for _, p := range m.chompParts {
		if p == name {
			return true
		}
	}
	return false
}

// GetChomped puts the mob into a chomper's mouth.
func (m *Mob) GetChomped(chomper *Mob) {
	if chomper == nil {
		return
	}
	m.StopChase()
	m.holder = Holder{ID: chomper.ID}
	chomper.chompingIDs = append(chomper.chompingIDs, m.ID)
}

// SwallowAll kills and deletes every chomped victim.
func (m *Mob) SwallowAll() {
	for _, id := range m.chompingIDs {
		if v := m.sim.MobByID(id); v != nil {
			v.SetHealth(0)
			v.Delete()
		}
	}
	m.chompingIDs = m.chompingIDs[:0]
}

// ChompedCount is how many victims sit in the mouth.
func (m *Mob) ChompedCount() int { return len(m.chompingIDs) }

// LatchedCount is how many minions are latched onto this mob's hitboxes.
func (m *Mob) LatchedCount() int {
	n := 0
	for _, ref := range m.holding {
		if held := m.sim.MobByID(ref.id); held != nil && held.Type.Category == CategoryMinion {
			n++
		}
	}
	return n
}

// Link records a one-way scripted link to another mob.
func (m *Mob) Link(id MobID) {
	for _, l := range m.LinkIDs {
		if l == id {
			return
		}
	}
	m.LinkIDs = append(m.LinkIDs, id)
}

// CanHunt reports whether m may treat prey as an opponent to pursue.
func (m *Mob) CanHunt(prey *Mob) bool {
	if prey == m || prey.Health <= 0 || !prey.Huntable() || prey.Hiding() {
		return false
	}
	return HostileTo(m.Team, prey.Team)
}

// CanHurt reports whether m's attacks connect with the victim.
func (m *Mob) CanHurt(victim *Mob) bool {
	if victim == m || victim.Health <= 0 {
		return false
	}
	return HostileTo(m.Team, victim.Team)
}

// Invisible reports whether a status hides the mob from opponents.
func (m *Mob) Invisible() bool {
	for i := range m.statuses {
		if m.statuses[i].typ.Invisible {
			return true
		}
	}
	return false
}

// AttackDisabled reports whether a status suppresses outgoing attacks.
func (m *Mob) AttackDisabled() bool {
	for i := range m.statuses {
		if m.statuses[i].typ.DisablesAttack {
			return true
		}
	}
	return false
}

func (m *Mob) currentSprite() *Sprite {
	if m.SpriteIdx < 0 || m.SpriteIdx >= len(m.Type.Sprites) {
		return nil
	}
	return &m.Type.Sprites[m.SpriteIdx]
}

// SetAnimation switches animations. With noRestart, an already-playing
// animation keeps its frame position.
func (m *Mob) SetAnimation(idx int, noRestart bool) {
	if idx < 0 || idx >= len(m.Type.Animations) {
		return
	}
	if noRestart && idx == m.AnimIdx {
		return
	}
	m.AnimIdx = idx
	m.animFrame = 0
	m.animTime = 0
	if a := &m.Type.Animations[idx]; len(a.Frames) > 0 {
		m.SpriteIdx = a.Frames[0]
	}
}

// tick advances per-mob simulation by dt and raises timer, animation,
// destination and reach events.
func (m *Mob) tick(dt float64) {
	m.TimeAlive += dt

	m.tickStatuses(dt)
	if m.ToDelete() {
		return
	}

	if m.timerRunning {
		m.ScriptTimer -= dt
		if m.ScriptTimer <= 0 {
			m.ScriptTimer = 0
			m.timerRunning = false
			m.sim.RunEvent(m, EventOnTimer, nil, nil)
		}
	}

	m.tickAnimation(dt)
	m.tickRotation(dt)
	m.tickChase(dt)

	// Accumulated pushes from last tick's interactions.
	if m.pushAmt > 0 {
		m.Pos = m.Pos.Add(common.AngleToCoordinates(m.pushAng, m.pushAmt*dt))
		m.pushAmt = 0
	}

	m.checkFarReach()

	if m.Health <= 0 && !m.has(flagDead) {
		m.maybeDie()
	}
}

func (m *Mob) tickStatuses(dt float64) {
	keep := m.statuses[:0]
	for i := range m.statuses {
		st := &m.statuses[i]
		if st.typ.HealthDrainRatio > 0 {
			m.AddHealth(-st.typ.HealthDrainRatio * m.Type.MaxHealth * dt)
		}
		if st.timeLeft > 0 {
			st.timeLeft -= dt
			if st.timeLeft <= 0 {
				continue
			}
		}
		keep = append(keep, *st)
	}
	m.statuses = keep
}

func (m *Mob) tickAnimation(dt float64) {
	if m.AnimIdx < 0 || m.AnimIdx >= len(m.Type.Animations) {
		return
	}
	a := &m.Type.Animations[m.AnimIdx]
	if len(a.Frames) == 0 || m.animFrame >= len(a.Durations) {
		return
	}
	m.animTime += dt
	for m.animFrame < len(a.Durations) && m.animTime >= a.Durations[m.animFrame] {
		m.animTime -= a.Durations[m.animFrame]
		if m.animFrame < len(a.Signals) && a.Signals[m.animFrame] != 0 {
			m.sim.RunEvent(m, EventOnAnimationEnd, nil, a.Signals[m.animFrame])
		}
		m.animFrame++
		if m.animFrame >= len(a.Frames) {
			if a.Loop {
				m.animFrame = 0
			} else {
				m.animFrame = len(a.Frames) - 1
				m.sim.RunEvent(m, EventOnAnimationEnd, nil, nil)
				return
			}
		}
		m.SpriteIdx = a.Frames[m.animFrame]
	}
}

func (m *Mob) tickRotation(dt float64) {
	diff := common.NormalizeAngle(m.intendedAngle - m.Angle)
	if diff > math.Pi {
		diff -= common.Tau
	}
	step := m.Type.RotationSpeed * dt
	if m.Type.RotationSpeed <= 0 || math.Abs(diff) <= step {
		m.Angle = m.intendedAngle
		return
	}
	if diff > 0 {
		m.Angle = common.NormalizeAngle(m.Angle + step)
	} else {
		m.Angle = common.NormalizeAngle(m.Angle - step)
	}
}

const arriveThreshold = 2.0

func (m *Mob) tickChase(dt float64) {
	if !m.chase.active || m.holder.ID != 0 {
		return
	}
	target := m.chase.target
	if m.chase.targetMob != 0 {
		t := m.sim.MobByID(m.chase.targetMob)
		if t == nil {
			m.StopChase()
			return
		}
		target = t.Pos
	}
	if m.chase.away {
		angle := common.Angle(target, m.Pos)
		m.Face(angle)
		m.Pos = m.Pos.Add(common.AngleToCoordinates(angle, m.chase.speed*dt))
		return
	}
	d := common.DistBetween(m.Pos, target)
	if d.LessOrEqual(arriveThreshold) {
		m.Pos = target
		if m.path != nil && m.path.advance() {
			m.chase.target = m.path.current()
			m.Face(common.Angle(m.Pos, m.chase.target))
			return
		}
		m.StopChase()
		m.sim.RunEvent(m, EventOnReachedDestination, nil, nil)
		return
	}
	angle := common.Angle(m.Pos, target)
	m.Face(angle)
	step := m.chase.speed * dt
	if df := d.Float(); step > df {
		step = df
	}
	m.Pos = m.Pos.Add(common.AngleToCoordinates(angle, step))
}

func (m *Mob) checkFarReach() {
	if m.FarReachIdx < 0 || m.FarReachIdx >= len(m.Type.Reaches) {
		return
	}
	f := m.FocusedMob()
	if f == nil {
		return
	}
	reach := &m.Type.Reaches[m.FarReachIdx]
	d := common.DistBetween(m.Pos, f.Pos)
	angDiff := common.AngleSmallestDiff(m.Angle, common.Angle(m.Pos, f.Pos))
	if !reach.Contains(d.Float(), angDiff) {
		m.sim.RunEvent(m, EventOnFocusOffReach, nil, nil)
	}
}

// IsIdle reports whether the mob is standing still, for the reduced
// same-category push.
func (m *Mob) IsIdle() bool { return !m.chase.active && m.holder.ID == 0 }
