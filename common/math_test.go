package common

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{Tau, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{3 * Tau, 0},
		{Tau + 1, 1},
		{-Tau - 1, Tau - 1},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); !almostEqual(got, c.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAngleSmallestDiff(t *testing.T) {
	cases := []struct {
		a1, a2, want float64
	}{
		{0, 0, 0},
		{0, math.Pi / 2, math.Pi / 2},
		{0.1, Tau - 0.1, 0.2},
		{-0.1, 0.1, 0.2},
		{math.Pi, 0, math.Pi},
	}
	for _, c := range cases {
		if got := AngleSmallestDiff(c.a1, c.a2); !almostEqual(got, c.want) {
			t.Errorf("AngleSmallestDiff(%v, %v) = %v, want %v", c.a1, c.a2, got, c.want)
		}
	}
}

func TestAngleAndCoordinatesRoundTrip(t *testing.T) {
	from := cp.Vector{X: 3, Y: 4}
	to := cp.Vector{X: 6, Y: 8}
	angle := Angle(from, to)
	offset := AngleToCoordinates(angle, 5)
	if !almostEqual(from.X+offset.X, to.X) || !almostEqual(from.Y+offset.Y, to.Y) {
		t.Fatalf("round trip landed at %v, want %v", from.Add(offset), to)
	}
}

func TestDistComparesWithoutSqrt(t *testing.T) {
	d := DistBetween(cp.Vector{}, cp.Vector{X: 3, Y: 4})
	if !almostEqual(d.Squared(), 25) {
		t.Fatalf("Squared = %v, want 25", d.Squared())
	}
	if !d.LessThan(5.01) || d.LessThan(5) {
		t.Fatalf("LessThan is not strict at the boundary")
	}
	if !d.LessOrEqual(5) || d.LessOrEqual(4.99) {
		t.Fatalf("LessOrEqual boundary wrong")
	}
	if !d.MoreThan(4.99) || d.MoreThan(5) {
		t.Fatalf("MoreThan boundary wrong")
	}
	// Negative thresholds: every distance exceeds them.
	if d.LessThan(-1) || !d.MoreThan(-1) {
		t.Fatalf("negative thresholds should never bound a distance")
	}
	if got := d.Float(); !almostEqual(got, 5) {
		t.Fatalf("Float = %v, want 5", got)
	}
}

func TestClampAndLerp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp high = %v", got)
	}
	if got := Clamp(-2, 0, 3); got != 0 {
		t.Errorf("Clamp low = %v", got)
	}
	if got := Lerp(10, 20, 0.25); !almostEqual(got, 12.5) {
		t.Errorf("Lerp = %v", got)
	}
}
