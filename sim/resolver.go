package sim

import (
	"math"
	"sort"

	"github.com/thicket-engine/thicket/common"
)

// HitboxInteraction is the payload of hitbox-level events: the other mob
// and the two hitboxes that met. H1 belongs to the mob receiving the
// event, H2 to the other.
type HitboxInteraction struct {
	Other *Mob
	H1    *Hitbox
	H2    *Hitbox
}

const (
	// Soft pushers never push faster than this.
	pushSoftlyAmount = 60.0
	// Pushes ramp up over a mob's first second of life.
	pushThrottleTimeout = 1.0
	pushThrottleFactor  = 0.1
	// Two idle mobs of the same category barely nudge each other.
	idlePushAmount = 0.1
	// How close a mob must get to a carriable/tool/task to notice it.
	taskRange = 10.0
)

// pendingEvent is a queued non-synchronous interaction event, dispatched
// after the mob's full scan in ascending edge-distance order.
type pendingEvent struct {
	ev       EventType
	p1, p2   any
	edgeDist float64
}

// interactionResolver runs the per-tick pairwise interaction pass.
type interactionResolver struct {
	pending []pendingEvent
}

func (r *interactionResolver) process(s *Sim, dt float64) {
	mobs := s.mobs
	for _, m := range mobs {
		if m.ToDelete() || m.StoredBySomeone() {
			continue
		}
		// Inactive mobs still get a pass during the spawn grace window.
		if !m.Active() && !m.Type.TicksWhileInactive && m.TimeAlive > spawnGrace {
			continue
		}

		r.pending = r.pending[:0]
		stateBefore := m.StateIdx

		for _, m2 := range mobs {
			if m2 == m || m2.ToDelete() || m2.StoredBySomeone() {
				continue
			}
			// While m is freshly spawned its checks extend to inactive
			// candidates too.
			if !m2.Active() && !m2.Type.InteractsWhileInactive && m.TimeAlive > spawnGrace {
				continue
			}
			d := common.DistBetween(m.Pos, m2.Pos)
			if d.MoreThan(m.Type.InteractionSpan() + m2.Type.PhysicalSpan()) {
				continue
			}

			r.processTouch(s, m, m2, d.Float(), dt)
			if m.ToDelete() {
				break
			}
			r.processReach(s, m, m2, d.Float())
			r.processMisc(s, m, m2, d.Float())
			r.processHitboxes(s, m, m2)
			if m.ToDelete() {
				break
			}
		}

		// Queued events fire closest first. A state change aborts the
		// rest of the batch: the new state gets a fresh look next tick.
		sort.Slice(r.pending, func(i, j int) bool {
			return r.pending[i].edgeDist < r.pending[j].edgeDist
		})
		for i := range r.pending {
			if m.ToDelete() || m.StateIdx != stateBefore {
				break
			}
			pe := &r.pending[i]
			s.RunEvent(m, pe.ev, pe.p1, pe.p2)
		}
	}
}

func handlerExists(m *Mob, ev EventType) bool {
	if m.StateIdx >= 0 && m.StateIdx < len(m.Type.States) &&
		m.Type.States[m.StateIdx].HandlesEvent(ev) {
		return true
	}
	return m.Type.Globals[ev] != nil
}

func (r *interactionResolver) queue(m *Mob, ev EventType, p1, p2 any, edgeDist float64) {
	if !handlerExists(m, ev) {
		return
	}
	r.pending = append(r.pending, pendingEvent{ev: ev, p1: p1, p2: p2, edgeDist: edgeDist})
}

// zSpansOverlap tests two vertical ranges; a zero height is an infinite
// column matching at any altitude.
func zSpansOverlap(z1, h1, z2, h2 float64) bool {
	if h1 == 0 || h2 == 0 {
		return true
	}
	return z2 <= z1+h1 && z2+h2 >= z1
}

// processTouch resolves push physics and fires touch events
// synchronously. Touch fires every tick while overlapping.
func (r *interactionResolver) processTouch(s *Sim, m, m2 *Mob, d float64, dt float64) {
	bothIdle := m.Type.Category == m2.Type.Category && m.IsIdle() && m2.IsIdle()

	okToPush := m.Tangible() && m2.Tangible() && m.Type.Pushable
	carryJam := m.Carry != nil && m.Carry.Moving &&
		m2.Carry != nil && m2.Carry.Moving && m.ID < m2.ID

	if okToPush && (m2.Type.Pushes || bothIdle) && !carryJam &&
		zSpansOverlap(m.Z, m.Height, m2.Z, m2.Height) && dt > 0 {
		collided, overlap, pushAngle := bodyPush(m, m2)
		if collided {
			amount := math.Abs(overlap / dt)
			if m2.Type.PushesSoftly && amount > pushSoftlyAmount {
				amount = pushSoftlyAmount
			}
			if bothIdle {
				amount = idlePushAmount
				if m.ID > m2.ID {
					pushAngle += 0.1
				}
			} else if youngest := math.Min(m.TimeAlive, m2.TimeAlive); youngest < pushThrottleTimeout {
				// Ramp up so spawn piles un-stack gently.
				amount *= youngest / pushThrottleTimeout * pushThrottleFactor
			}
			if amount > 0 {
				m.accumulatePush(amount, pushAngle)
			}
		}
	}

	// Touch events use the body footprints only, never hitboxes. The
	// object event fires for every contact; the opponent event fires on
	// top of it for huntable contacts.
	if !m2.Tangible() {
		return
	}
	if !zSpansOverlap(m.Z, m.Height, m2.Z, m2.Height) {
		return
	}
	if !bodiesTouch(m, m2, d) {
		return
	}
	s.RunEvent(m, EventOnTouchObject, m2, nil)
	if m.ToDelete() {
		return
	}
	if m.CanHunt(m2) {
		s.RunEvent(m, EventOnTouchOpponent, m2, nil)
	}
}

// bodiesTouch intersects the two body footprints in the XY plane.
func bodiesTouch(m, m2 *Mob, d float64) bool {
	mRect := m.Type.RectDim.X != 0 || m.Type.RectDim.Y != 0
	m2Rect := m2.Type.RectDim.X != 0 || m2.Type.RectDim.Y != 0
	switch {
	case !mRect && !m2Rect:
		return d <= m.Radius+m2.Radius
	case !mRect && m2Rect:
		hit, _, _ := common.CircleIntersectsRectangle(m.Pos, m.Radius, m2.Pos, m2.Type.RectDim, m2.Angle)
		return hit
	case mRect && !m2Rect:
		hit, _, _ := common.CircleIntersectsRectangle(m2.Pos, m2.Radius, m.Pos, m.Type.RectDim, m.Angle)
		return hit
	default:
		hit, _, _ := common.RectanglesIntersect(m.Pos, m.Type.RectDim, m.Angle, m2.Pos, m2.Type.RectDim, m2.Angle)
		return hit
	}
}

// bodyPush computes how far and in what direction m must move to escape
// m2, using m2's hitboxes when its type pushes with them and the body
// footprints otherwise.
func bodyPush(m, m2 *Mob) (bool, float64, float64) {
	if m2.Type.PushesWithHitboxes {
		best := false
		bestOverlap, bestAngle := 0.0, 0.0
		if sp := m2.currentSprite(); sp != nil {
			for i := range sp.Hitboxes {
				h := &sp.Hitboxes[i]
				if h.Kind == HitboxDisabled {
					continue
				}
				hp := h.Position(m2.Pos, m2.Angle)
				hit, overlap, angle := common.CircleIntersectsCircle(m.Pos, m.Radius, hp, h.Radius)
				if hit && overlap > bestOverlap {
					best, bestOverlap, bestAngle = true, overlap, angle
				}
			}
		}
		return best, bestOverlap, bestAngle
	}

	mRect := m.Type.RectDim.X != 0 || m.Type.RectDim.Y != 0
	m2Rect := m2.Type.RectDim.X != 0 || m2.Type.RectDim.Y != 0
	switch {
	case !mRect && !m2Rect:
		return common.CircleIntersectsCircle(m.Pos, m.Radius, m2.Pos, m2.Radius)
	case !mRect && m2Rect:
		return common.CircleIntersectsRectangle(m.Pos, m.Radius, m2.Pos, m2.Type.RectDim, m2.Angle)
	case mRect && !m2Rect:
		hit, overlap, angle := common.CircleIntersectsRectangle(m2.Pos, m2.Radius, m.Pos, m.Type.RectDim, m.Angle)
		return hit, overlap, angle + math.Pi
	default:
		return common.RectanglesIntersect(m.Pos, m.Type.RectDim, m.Angle, m2.Pos, m2.Type.RectDim, m2.Angle)
	}
}

// processReach queues in-reach events when m2 falls inside m's near
// reach cone. The object event always goes in; the opponent event joins
// it for huntable candidates.
func (r *interactionResolver) processReach(s *Sim, m, m2 *Mob, d float64) {
	if m.NearReachIdx < 0 || m.NearReachIdx >= len(m.Type.Reaches) {
		return
	}
	if m2.Health <= 0 || m2.Invisible() {
		return
	}
	reach := &m.Type.Reaches[m.NearReachIdx]
	angDiff := common.AngleSmallestDiff(m.Angle, common.Angle(m.Pos, m2.Pos))
	if !reach.Contains(d, angDiff) {
		return
	}
	edge := d - (m.Radius + m2.Radius)
	r.queue(m, EventOnObjectInReach, m2, nil, edge)
	if m.CanHunt(m2) {
		r.queue(m, EventOnOpponentInReach, m2, nil, edge)
	}
}

// processMisc queues the proximity conveniences: carriables with free
// spots, available tools, group tasks with room, and bumping an active
// leader.
func (r *interactionResolver) processMisc(s *Sim, m, m2 *Mob, d float64) {
	edge := d - (m.Radius + m2.Radius)

	if m2.Carry != nil && !m2.Dead() && m2.Carry.FreeSpots() > 0 && edge <= taskRange {
		r.queue(m, EventOnNearCarriable, m2, nil, edge)
	}
	if m2.Type.Category == CategoryTool && edge <= taskRange &&
		(m2.ReservedBy == 0 || m2.ReservedBy == m.ID) {
		r.queue(m, EventOnNearTool, m2, nil, edge)
	}
	if m2.GroupTask != nil && !m2.Dead() && m2.GroupTask.FreeSpots() > 0 && edge <= taskRange {
		r.queue(m, EventOnNearGroupTask, m2, nil, edge)
	}
	if m2.Type.Category == CategoryLeader && m2.Active() && edge <= 0 {
		r.queue(m, EventOnTouchedActiveLeader, m2, nil, edge)
	}
}

// processHitboxes walks every hitbox pair of the two current sprites and
// fires attack, eat and hazard events synchronously. Each event category
// is raised at most once per pair per tick; handlers resolve against the
// state the mob is in at each dispatch.
func (r *interactionResolver) processHitboxes(s *Sim, m, m2 *Mob) {
	s1, s2 := m.currentSprite(), m2.currentSprite()
	if s1 == nil || s2 == nil || len(s1.Hitboxes) == 0 || len(s2.Hitboxes) == 0 {
		return
	}

	var anDone, nnDone, eatDone, hazDone, naDone bool

	for i := range s1.Hitboxes {
		h1 := &s1.Hitboxes[i]
		if h1.Kind == HitboxDisabled {
			continue
		}
		p1 := h1.Position(m.Pos, m.Angle)
		for j := range s2.Hitboxes {
			h2 := &s2.Hitboxes[j]
			if h2.Kind == HitboxDisabled {
				continue
			}

			// A mob held by a hitbox is in contact with that hitbox by
			// definition; the geometric test would jitter.
			collided := (m.holder.ID == m2.ID && m.holder.Hitbox == j) ||
				(m2.holder.ID == m.ID && m2.holder.Hitbox == i)
			if !collided {
				p2 := h2.Position(m2.Pos, m2.Angle)
				if hit, _, _ := common.CircleIntersectsCircle(p1, h1.Radius, p2, h2.Radius); hit &&
					h1.ZOverlaps(m.Z, m2.Z+h2.Z, h2.Height) {
					collided = true
				}
			}
			if !collided {
				continue
			}

			hi := &HitboxInteraction{Other: m2, H1: h1, H2: h2}

			if !anDone && h1.Kind == HitboxAttack && h2.Kind == HitboxNormal {
				s.RunEvent(m, EventOnHitboxTouchAN, hi, nil)
				anDone = true
				if m.ToDelete() {
					return
				}
			}
			if !nnDone && h1.Kind == HitboxNormal && h2.Kind == HitboxNormal {
				s.RunEvent(m, EventOnHitboxTouchNN, hi, nil)
				nnDone = true
				if m.ToDelete() {
					return
				}
			}

			if h1.Kind == HitboxNormal && h2.Kind == HitboxAttack {
				// Confirmed damage contact: resistance to every carried
				// hazard, or a hostility mismatch, voids the whole pair.
				if m.Type.ResistantToAll(h2.Hazards) {
					continue
				}
				if !m2.CanHurt(m) {
					continue
				}
			}

			attackDisabled := m2.AttackDisabled()

			if !eatDone && !attackDisabled && h1.Kind == HitboxNormal &&
				m2.Chomping() && m2.ChompPart(h2.Name) {
				s.RunEvent(m, EventOnHitboxTouchEat, hi, nil)
				eatDone = true
				if m.ToDelete() {
					return
				}
			}

			if !hazDone && !attackDisabled && h1.Kind == HitboxNormal &&
				h2.Kind == HitboxAttack && len(h2.Hazards) > 0 {
				for _, hz := range h2.Hazards {
					s.RunEvent(m, EventOnTouchedHazard, hz, hi)
					if m.ToDelete() {
						return
					}
				}
				hazDone = true
			}

			if !naDone && !attackDisabled && h1.Kind == HitboxNormal &&
				h2.Kind == HitboxAttack {
				if h2.Power > 0 {
					m.AddHealth(-h2.Power)
				}
				s.RunEvent(m, EventOnHitboxTouchNA, hi, nil)
				naDone = true
				if m.ToDelete() {
					return
				}
				s.RunEvent(m, EventOnDamage, hi, nil)
				if m.ToDelete() {
					return
				}
			}
		}
	}
}
