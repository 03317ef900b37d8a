package sim

// MobSnapshot is a read-only copy of one mob's observable state, for
// debug overlays and the inspector.
type MobSnapshot struct {
	ID         uint64            `json:"id"`
	Type       string            `json:"type"`
	Category   string            `json:"category"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Z          float64           `json:"z"`
	Angle      float64           `json:"angle"`
	Radius     float64           `json:"radius"`
	Health     float64           `json:"health"`
	State      string            `json:"state"`
	PrevStates []string          `json:"prev_states,omitempty"`
	Timer      float64           `json:"timer,omitempty"`
	Vars       map[string]string `json:"vars,omitempty"`
	FocusID    uint64            `json:"focus_id,omitempty"`
	Active     bool              `json:"active"`
	Dead       bool              `json:"dead,omitempty"`
}

// Snapshot copies every live mob. Safe to hand to other goroutines.
func (s *Sim) Snapshot() []MobSnapshot {
	out := make([]MobSnapshot, 0, len(s.mobs))
	for _, m := range s.mobs {
		if m.ToDelete() {
			continue
		}
		snap := MobSnapshot{
			ID:       uint64(m.ID),
			Type:     m.Type.Name,
			Category: m.Type.Category.String(),
			X:        m.Pos.X,
			Y:        m.Pos.Y,
			Z:        m.Z,
			Angle:    m.Angle,
			Radius:   m.Radius,
			Health:   m.Health,
			State:    m.StateName(),
			Timer:    m.ScriptTimer,
			FocusID:  uint64(m.FocusID),
			Active:   m.Active(),
			Dead:     m.Dead(),
		}
		if len(m.prevStates) > 0 {
			snap.PrevStates = append([]string(nil), m.prevStates...)
		}
		if len(m.Vars) > 0 {
			vars := make(map[string]string, len(m.Vars))
			for k, v := range m.Vars {
				vars[k] = v
			}
			snap.Vars = vars
		}
		out = append(out, snap)
	}
	return out
}
