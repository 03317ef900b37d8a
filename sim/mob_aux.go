package sim

import (
	"github.com/jakecoffman/cp"

	"github.com/thicket-engine/thicket/common"
)

// CarryInfo tracks the carrier spots around a carriable mob. Spots sit
// evenly on the body's circumference; membership and spot assignment
// always change together.
type CarryInfo struct {
	owner *Mob
	spots []MobID
	// Moving is set once enough weight is on to haul the object.
	Moving bool
}

func NewCarryInfo(owner *Mob, spots int) *CarryInfo {
	if spots <= 0 {
		spots = 1
	}
	return &CarryInfo{owner: owner, spots: make([]MobID, spots)}
}

// FreeSpots counts unclaimed carrier positions.
func (c *CarryInfo) FreeSpots() int {
	n := 0
	for _, id := range c.spots {
		if id == 0 {
			n++
		}
	}
	return n
}

// Carriers counts claimed positions.
func (c *CarryInfo) Carriers() int { return len(c.spots) - c.FreeSpots() }

// SpotPos is the world position of spot i on the circumference.
func (c *CarryInfo) SpotPos(i int) cp.Vector {
	angle := common.Tau * float64(i) / float64(len(c.spots))
	return c.owner.Pos.Add(common.AngleToCoordinates(angle, c.owner.Radius))
}

// Claim takes the first free spot for a carrier. Returns the spot index,
// -1 when full.
func (c *CarryInfo) Claim(carrier MobID) int {
	for i, id := range c.spots {
		if id == carrier {
			return i
		}
	}
	for i, id := range c.spots {
		if id == 0 {
			c.spots[i] = carrier
			c.recompute()
			return i
		}
	}
	return -1
}

// Drop releases a carrier's spot.
func (c *CarryInfo) Drop(carrier MobID) {
	for i, id := range c.spots {
		if id == carrier {
			c.spots[i] = 0
			c.recompute()
			return
		}
	}
}

func (c *CarryInfo) recompute() {
	strength := 0.0
	for _, id := range c.spots {
		if c.owner.sim.MobByID(id) != nil {
			strength++
		}
	}
	c.Moving = strength > 0 && strength >= c.owner.Type.Weight
}

// GroupTaskInfo tracks worker spots on a group task mob and the combined
// power they contribute.
type GroupTaskInfo struct {
	owner *Mob
	spots []MobID
	// Power is the summed contribution of all workers.
	Power float64
}

func NewGroupTaskInfo(owner *Mob, spots int) *GroupTaskInfo {
	if spots <= 0 {
		spots = 1
	}
	return &GroupTaskInfo{owner: owner, spots: make([]MobID, spots)}
}

// FreeSpots counts unclaimed worker positions.
func (g *GroupTaskInfo) FreeSpots() int {
	n := 0
	for _, id := range g.spots {
		if id == 0 {
			n++
		}
	}
	return n
}

// Claim assigns a worker to the first free spot, -1 when full.
func (g *GroupTaskInfo) Claim(worker MobID, power float64) int {
	for i, id := range g.spots {
		if id == worker {
			return i
		}
	}
	for i, id := range g.spots {
		if id == 0 {
			g.spots[i] = worker
			g.Power += power
			return i
		}
	}
	return -1
}

// Drop removes a worker and its power contribution.
func (g *GroupTaskInfo) Drop(worker MobID, power float64) {
	for i, id := range g.spots {
		if id == worker {
			g.spots[i] = 0
			g.Power -= power
			if g.Power < 0 {
				g.Power = 0
			}
			return
		}
	}
}

// StatusType describes one applicable status effect.
type StatusType struct {
	Name string
	// Duration in seconds; zero means until removed.
	Duration float64
	// HealthDrainRatio is max-health fraction lost per second.
	HealthDrainRatio float64
	Invisible        bool
	DisablesAttack   bool
	SpeedMultiplier  float64
}

type statusInstance struct {
	typ      *StatusType
	timeLeft float64
}

// ApplyStatus adds a status by type; reapplying refreshes the duration.
func (m *Mob) ApplyStatus(t *StatusType) {
	if t == nil {
		return
	}
	for i := range m.statuses {
		if m.statuses[i].typ == t {
			m.statuses[i].timeLeft = t.Duration
			return
		}
	}
	m.statuses = append(m.statuses, statusInstance{typ: t, timeLeft: t.Duration})
}

// RemoveStatus drops a status by name.
func (m *Mob) RemoveStatus(name string) {
	for i := range m.statuses {
		if m.statuses[i].typ.Name == name {
			m.statuses = append(m.statuses[:i], m.statuses[i+1:]...)
			return
		}
	}
}

// HasStatus reports whether the named status is active.
func (m *Mob) HasStatus(name string) bool {
	for i := range m.statuses {
		if m.statuses[i].typ.Name == name {
			return true
		}
	}
	return false
}
