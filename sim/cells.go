package sim

import "github.com/jakecoffman/cp"

// Cell edge length in world units.
const cellSize = 128.0

// Extra visible margin marked around the camera box.
const cameraMargin = cellSize

// activityGrid partitions the play area into square cells and decides,
// per tick, which mobs get full logic. Cells are cleared and re-marked
// from scratch every tick.
type activityGrid struct {
	bounds Box
	w, h   int
	marked []bool
}

func newActivityGrid(bounds Box) *activityGrid {
	w := int((bounds.Max.X-bounds.Min.X)/cellSize) + 1
	h := int((bounds.Max.Y-bounds.Min.Y)/cellSize) + 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &activityGrid{bounds: bounds, w: w, h: h, marked: make([]bool, w*h)}
}

func (g *activityGrid) cellAt(p cp.Vector) (cx, cy int, ok bool) {
	if !g.bounds.Contains(p) {
		return 0, 0, false
	}
	cx = int((p.X - g.bounds.Min.X) / cellSize)
	cy = int((p.Y - g.bounds.Min.Y) / cellSize)
	if cx >= g.w {
		cx = g.w - 1
	}
	if cy >= g.h {
		cy = g.h - 1
	}
	return cx, cy, true
}

func (g *activityGrid) markCell(cx, cy int) {
	if cx < 0 || cy < 0 || cx >= g.w || cy >= g.h {
		return
	}
	g.marked[cy*g.w+cx] = true
}

// mark3x3 marks the cell under p and its eight neighbors.
func (g *activityGrid) mark3x3(p cp.Vector) {
	cx, cy, ok := g.cellAt(p)
	if !ok {
		return
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			g.markCell(cx+dx, cy+dy)
		}
	}
}

// markBox marks every cell the box overlaps.
func (g *activityGrid) markBox(b Box) {
	x0 := int((b.Min.X - g.bounds.Min.X) / cellSize)
	y0 := int((b.Min.Y - g.bounds.Min.Y) / cellSize)
	x1 := int((b.Max.X - g.bounds.Min.X) / cellSize)
	y1 := int((b.Max.Y - g.bounds.Min.Y) / cellSize)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			g.markCell(cx, cy)
		}
	}
}

// markedAt reports whether p sits in a marked cell; out-of-bounds points
// are never marked.
func (g *activityGrid) markedAt(p cp.Vector) bool {
	cx, cy, ok := g.cellAt(p)
	return ok && g.marked[cy*g.w+cx]
}

// rebuild runs the per-tick marking pass and sets each mob's active
// flag: clear, 3×3 around leaders and their followers, the camera box
// plus margin, then bidirectional parent/child propagation.
func (g *activityGrid) rebuild(s *Sim) {
	for i := range g.marked {
		g.marked[i] = false
	}

	for _, m := range s.mobs {
		if m.ToDelete() {
			continue
		}
		if m.Type.Category == CategoryLeader || m.LeaderID != 0 {
			g.mark3x3(m.Pos)
		}
	}
	g.markBox(s.camera.Expand(cameraMargin))

	for _, m := range s.mobs {
		m.set(flagActive, !m.ToDelete() && g.markedAt(m.Pos))
	}

	// A mob whose parent or child is active is active too; iterate to a
	// fixed point since chains can be longer than one hop.
	for changed := true; changed; {
		changed = false
		for _, m := range s.mobs {
			if m.Active() || m.ToDelete() {
				continue
			}
			if p := s.MobByID(m.ParentID); p != nil && p.Active() {
				m.set(flagActive, true)
				changed = true
				continue
			}
			for _, id := range m.ChildIDs {
				if c := s.MobByID(id); c != nil && c.Active() {
					m.set(flagActive, true)
					changed = true
					break
				}
			}
		}
	}
}
