package common

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestCircleIntersectsCircle(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		hit, overlap, angle := CircleIntersectsCircle(cp.Vector{}, 5, cp.Vector{X: 8}, 5)
		if !hit {
			t.Fatalf("circles 8 apart with radii 5+5 must overlap")
		}
		if !almostEqual(overlap, 2) {
			t.Fatalf("overlap = %v, want 2", overlap)
		}
		// The first circle separates by moving away from the second.
		if !almostEqual(AngleSmallestDiff(angle, math.Pi), 0) {
			t.Fatalf("push angle = %v, want pi", angle)
		}
	})
	t.Run("separate", func(t *testing.T) {
		if hit, _, _ := CircleIntersectsCircle(cp.Vector{}, 5, cp.Vector{X: 11}, 5); hit {
			t.Fatalf("circles 11 apart with radii 5+5 must not overlap")
		}
	})
	t.Run("touching_counts", func(t *testing.T) {
		hit, overlap, _ := CircleIntersectsCircle(cp.Vector{}, 5, cp.Vector{X: 10}, 5)
		if !hit || !almostEqual(overlap, 0) {
			t.Fatalf("tangent circles count as contact with zero overlap")
		}
	})
}

func TestCircleIntersectsRectangle(t *testing.T) {
	dim := cp.Vector{X: 20, Y: 10}

	t.Run("from_outside", func(t *testing.T) {
		hit, overlap, angle := CircleIntersectsRectangle(cp.Vector{X: 13}, 5, cp.Vector{}, dim, 0)
		if !hit {
			t.Fatalf("circle 3 into the right edge must hit")
		}
		if !almostEqual(overlap, 2) {
			t.Fatalf("overlap = %v, want 2", overlap)
		}
		if !almostEqual(AngleSmallestDiff(angle, 0), 0) {
			t.Fatalf("push should point out the right edge, got %v", angle)
		}
	})
	t.Run("center_inside", func(t *testing.T) {
		hit, overlap, angle := CircleIntersectsRectangle(cp.Vector{X: 8}, 3, cp.Vector{}, dim, 0)
		if !hit {
			t.Fatalf("circle centered inside must hit")
		}
		// 2 to the right edge plus the radius.
		if !almostEqual(overlap, 5) {
			t.Fatalf("overlap = %v, want 5", overlap)
		}
		if !almostEqual(AngleSmallestDiff(angle, 0), 0) {
			t.Fatalf("nearest edge is the right one, got angle %v", angle)
		}
	})
	t.Run("rotated_rectangle", func(t *testing.T) {
		// Quarter turn swaps the half-extents: the long side now runs
		// along Y, so x=8 is well outside.
		hit, _, _ := CircleIntersectsRectangle(cp.Vector{X: 8}, 2, cp.Vector{}, dim, math.Pi/2)
		if hit {
			t.Fatalf("rotated rectangle no longer reaches x=8")
		}
		hit, _, angle := CircleIntersectsRectangle(cp.Vector{X: 6}, 2, cp.Vector{}, dim, math.Pi/2)
		if !hit {
			t.Fatalf("x=6 is one unit inside the rotated right edge")
		}
		if AngleSmallestDiff(angle, 0) > 0.01 {
			t.Fatalf("push should still point along +X, got %v", angle)
		}
	})
	t.Run("clear_miss", func(t *testing.T) {
		if hit, _, _ := CircleIntersectsRectangle(cp.Vector{X: 30}, 5, cp.Vector{}, dim, 0); hit {
			t.Fatalf("circle far past the edge must miss")
		}
	})
}

func TestRectanglesIntersect(t *testing.T) {
	dim := cp.Vector{X: 10, Y: 10}

	t.Run("axis_aligned_overlap", func(t *testing.T) {
		hit, overlap, angle := RectanglesIntersect(cp.Vector{}, dim, 0, cp.Vector{X: 8}, dim, 0)
		if !hit {
			t.Fatalf("rectangles 8 apart with width 10 overlap by 2")
		}
		if !almostEqual(overlap, 2) {
			t.Fatalf("overlap = %v, want 2", overlap)
		}
		if !almostEqual(AngleSmallestDiff(angle, math.Pi), 0) {
			t.Fatalf("first rectangle pushes away along -X, got %v", angle)
		}
	})
	t.Run("separated", func(t *testing.T) {
		if hit, _, _ := RectanglesIntersect(cp.Vector{}, dim, 0, cp.Vector{X: 11}, dim, 0); hit {
			t.Fatalf("rectangles with a gap must not intersect")
		}
	})
	t.Run("rotated_diamond_gap", func(t *testing.T) {
		// A 45-degree diamond only reaches sqrt(50) ~ 7.07 along X, so a
		// square starting at x=8 clears it even though axis-aligned
		// boxes of the same size would collide.
		hit, _, _ := RectanglesIntersect(cp.Vector{}, dim, math.Pi/4, cp.Vector{X: 12.5}, dim, 0)
		if hit {
			t.Fatalf("diamond corner stops short of the square")
		}
		hit, _, _ = RectanglesIntersect(cp.Vector{}, dim, math.Pi/4, cp.Vector{X: 11.5}, dim, 0)
		if !hit {
			t.Fatalf("square edge at x=6.5 is inside the diamond's reach")
		}
	})
}
