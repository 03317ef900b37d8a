package sim

import (
	"github.com/jakecoffman/cp"
)

// Team decides hostility between mobs.
type Team uint8

const (
	TeamNone Team = iota
	TeamPlayer
	TeamEnemy1
	TeamEnemy2
	TeamEnemy3
	TeamObstacle
	TeamOther
	teamCount
)

var teamsByName = map[string]int{
	"none": int(TeamNone), "player": int(TeamPlayer),
	"enemy_1": int(TeamEnemy1), "enemy_2": int(TeamEnemy2),
	"enemy_3": int(TeamEnemy3),
	"obstacle": int(TeamObstacle), "other": int(TeamOther),
}

var teamNames = [teamCount]string{
	"none", "player", "enemy_1", "enemy_2", "enemy_3", "obstacle", "other",
}

func (t Team) String() string {
	if int(t) < len(teamNames) {
		return teamNames[t]
	}
	return "invalid"
}

// ParseTeam resolves a team name, false on unknown.
func ParseTeam(name string) (Team, bool) {
	v, ok := teamsByName[name]
	return Team(v), ok
}

func isEnemyTeam(t Team) bool {
	return t == TeamEnemy1 || t == TeamEnemy2 || t == TeamEnemy3
}

// HostileTo reports whether members of team a treat members of team b as
// opponents. TeamNone is hostile to everyone.
func HostileTo(a, b Team) bool {
	if a == TeamNone || b == TeamNone {
		return true
	}
	if a == TeamPlayer && isEnemyTeam(b) || b == TeamPlayer && isEnemyTeam(a) {
		return true
	}
	if isEnemyTeam(a) && isEnemyTeam(b) && a != b {
		return true
	}
	return false
}

// Category is a mob's coarse role, used by same-category push damping and
// the mob_category info getter.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryMinion
	CategoryLeader
	CategoryEnemy
	CategoryCarriable
	CategoryTool
	CategoryGroupTask
	CategoryObstacle
	CategoryDecoration
	categoryCount
)

var categoriesByName = map[string]Category{
	"none": CategoryNone, "minion": CategoryMinion, "leader": CategoryLeader,
	"enemy": CategoryEnemy, "carriable": CategoryCarriable, "tool": CategoryTool,
	"group_task": CategoryGroupTask, "obstacle": CategoryObstacle,
	"decoration": CategoryDecoration,
}

var categoryNames = [categoryCount]string{
	"none", "minion", "leader", "enemy", "carriable", "tool",
	"group_task", "obstacle", "decoration",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "invalid"
}

// ParseCategory resolves a category name, false on unknown.
func ParseCategory(name string) (Category, bool) {
	c, ok := categoriesByName[name]
	return c, ok
}

// Reach is a pair of detection cones around a mob's facing angle. A point
// is inside if it fits either cone: within Radius1 and half of Angle1 off
// the facing, or within Radius2 and half of Angle2.
type Reach struct {
	Name    string
	Radius1 float64
	Angle1  float64
	Radius2 float64
	Angle2  float64
}

// Contains checks a candidate at the given distance and absolute angular
// offset from the owner's facing.
func (r *Reach) Contains(dist, angDiff float64) bool {
	if dist <= r.Radius1 && angDiff <= r.Angle1/2 {
		return true
	}
	return dist <= r.Radius2 && angDiff <= r.Angle2/2
}

// HitboxKind splits hitboxes into bodies that take hits and zones that
// deal them.
type HitboxKind uint8

const (
	HitboxNormal HitboxKind = iota
	HitboxAttack
	HitboxDisabled
)

var hitboxKindsByName = map[string]HitboxKind{
	"normal": HitboxNormal, "attack": HitboxAttack, "disabled": HitboxDisabled,
}

// Hitbox is one collision sphere of a sprite, offset from the mob center
// in unrotated local space.
type Hitbox struct {
	Name   string
	Kind   HitboxKind
	Offset cp.Vector
	Z      float64
	Height float64
	Radius float64
	// Power scales damage dealt by attack hitboxes.
	Power float64
	// Hazards names the hazards this hitbox carries.
	Hazards []string
	// Latchable marks a normal hitbox minions may latch onto.
	Latchable bool
	// Knockback applied to mobs hit by this attack hitbox.
	Knockback        float64
	KnockbackOutward bool
	KnockbackAngle   float64
}

// Position returns the hitbox center in world space for a mob at pos
// facing angle.
func (h *Hitbox) Position(pos cp.Vector, angle float64) cp.Vector {
	return pos.Add(h.Offset.Rotate(cp.ForAngle(angle)))
}

// ZOverlaps reports whether the hitbox's vertical span, based at mobZ,
// intersects [otherZ, otherZ+otherHeight]. A zero height on either side
// is an infinite column and matches at any altitude.
func (h *Hitbox) ZOverlaps(mobZ, otherZ, otherHeight float64) bool {
	if h.Height == 0 || otherHeight == 0 {
		return true
	}
	base := mobZ + h.Z
	return base+h.Height >= otherZ && base <= otherZ+otherHeight
}

// Sprite is one animation frame's hitbox table.
type Sprite struct {
	Name     string
	Hitboxes []Hitbox
}

// Animation is an ordered list of sprite frames with per-frame durations
// and optional signals surfaced to scripts via frame_signal.
type Animation struct {
	Name      string
	Frames    []int
	Durations []float64
	Signals   []int
	Loop      bool
}

// MobType is the immutable, compiled description of one mob kind: its
// body, reaches, sprites, and full state machine. Mobs share their type.
type MobType struct {
	Name     string
	Category Category

	Radius float64
	Height float64
	// RectDim, when nonzero, makes the footprint a rotated rectangle of
	// these dimensions instead of a circle.
	RectDim cp.Vector

	MaxHealth     float64
	MoveSpeed     float64
	RotationSpeed float64
	Weight        float64
	MaxCarriers   int

	Team Team

	Pushes             bool
	Pushable           bool
	PushesWithHitboxes bool
	PushesSoftly       bool

	Huntable bool
	Tangible bool
	Flying   bool
	Holdable bool

	// Resistances holds hazard names this type shrugs off.
	Resistances map[string]bool

	Reaches      []Reach
	reachIndexes map[string]int

	Sprites       []Sprite
	spriteIndexes map[string]int
	Animations    []Animation
	animIndexes   map[string]int

	States        []*MobState
	stateIndexes  map[string]int
	FirstStateIdx int
	DeathStateIdx int

	// Global handlers run when the current state has no handler for an
	// event.
	Globals [eventCount]*ActionList

	// StatesIgnoringDeath keeps the death path from firing while the mob
	// is in one of these states.
	StatesIgnoringDeath map[string]bool

	// TerritoryRadius bounds follow_path_randomly wandering from home.
	TerritoryRadius float64

	// TicksWhileInactive / InteractsWhileInactive opt this type out of
	// activity culling.
	TicksWhileInactive     bool
	InteractsWhileInactive bool

	// DefaultVars seed each new mob's variable map.
	DefaultVars map[string]string

	// interactionSpan is the largest radius any sprite hitbox or reach
	// extends, cached after compile.
	interactionSpan float64

	pendingReachRefs []*ActionCall
	pendingSpawnRefs []*ActionCall
}

// ParseHitboxKind resolves a hitbox kind name, false on unknown.
func ParseHitboxKind(name string) (HitboxKind, bool) {
	k, ok := hitboxKindsByName[name]
	return k, ok
}

// AddReach declares a reach on the type, keeping the name index current.
func (t *MobType) AddReach(r Reach) {
	if t.reachIndexes == nil {
		t.reachIndexes = map[string]int{}
	}
	t.reachIndexes[r.Name] = len(t.Reaches)
	t.Reaches = append(t.Reaches, r)
}

// AddSprite declares a sprite frame on the type.
func (t *MobType) AddSprite(s Sprite) {
	if t.spriteIndexes == nil {
		t.spriteIndexes = map[string]int{}
	}
	t.spriteIndexes[s.Name] = len(t.Sprites)
	t.Sprites = append(t.Sprites, s)
}

// AddAnimation declares an animation on the type.
func (t *MobType) AddAnimation(a Animation) {
	if t.animIndexes == nil {
		t.animIndexes = map[string]int{}
	}
	t.animIndexes[a.Name] = len(t.Animations)
	t.Animations = append(t.Animations, a)
}

// ReachIndex resolves a reach name to its index, -1 on unknown.
func (t *MobType) ReachIndex(name string) int {
	if i, ok := t.reachIndexes[name]; ok {
		return i
	}
	return -1
}

// SpriteIndex resolves a sprite name to its index, -1 on unknown.
func (t *MobType) SpriteIndex(name string) int {
	if i, ok := t.spriteIndexes[name]; ok {
		return i
	}
	return -1
}

// AnimationIndex resolves an animation name to its index, -1 on unknown.
func (t *MobType) AnimationIndex(name string) int {
	if i, ok := t.animIndexes[name]; ok {
		return i
	}
	return -1
}

// StateIndex resolves a state name to its index, -1 on unknown.
func (t *MobType) StateIndex(name string) int {
	if idx, ok := t.stateIndexes[name]; ok {
		return idx
	}
	return -1
}

// PhysicalSpan is the furthest the body extends from center.
func (t *MobType) PhysicalSpan() float64 {
	if t.RectDim.X != 0 || t.RectDim.Y != 0 {
		return t.RectDim.Length() / 2
	}
	return t.Radius
}

// InteractionSpan is the furthest any hitbox or reach cone extends.
func (t *MobType) InteractionSpan() float64 {
	return t.interactionSpan
}

// SpawnRefs lists the child type names the type's spawn actions
// reference, for cross-type validation once every type is loaded.
func (t *MobType) SpawnRefs() []string {
	out := make([]string, 0, len(t.pendingSpawnRefs))
	for _, call := range t.pendingSpawnRefs {
		out = append(out, call.Args[0])
	}
	return out
}

// Resistant reports hazard immunity.
func (t *MobType) Resistant(hazard string) bool {
	return t.Resistances[hazard]
}

// ResistantToAll reports whether every listed hazard is resisted. An
// empty list resists nothing.
func (t *MobType) ResistantToAll(hazards []string) bool {
	if len(hazards) == 0 {
		return false
	}
	for _, hz := range hazards {
		if !t.Resistances[hz] {
			return false
		}
	}
	return true
}

func (t *MobType) recomputeSpans() {
	span := t.PhysicalSpan()
	for si := range t.Sprites {
		for hi := range t.Sprites[si].Hitboxes {
			h := &t.Sprites[si].Hitboxes[hi]
			if d := h.Offset.Length() + h.Radius; d > span {
				span = d
			}
		}
	}
	for i := range t.Reaches {
		r := &t.Reaches[i]
		if r.Radius1 > span {
			span = r.Radius1
		}
		if r.Radius2 > span {
			span = r.Radius2
		}
	}
	t.interactionSpan = span
}
