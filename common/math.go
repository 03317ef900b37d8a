package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Tau is a full turn in radians.
const Tau = 2 * math.Pi

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(n, lo, hi float64) float64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Angle returns the angle of the vector from a to b.
func Angle(a, b cp.Vector) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// NormalizeAngle wraps an angle into [0, Tau).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, Tau)
	if a < 0 {
		a += Tau
	}
	return a
}

// AngleSmallestDiff returns the smallest absolute difference between
// two angles, in [0, Pi].
func AngleSmallestDiff(a1, a2 float64) float64 {
	d := math.Abs(NormalizeAngle(a1) - NormalizeAngle(a2))
	if d > math.Pi {
		d = Tau - d
	}
	return d
}

// AngleToCoordinates returns the point at the given angle and magnitude
// from the origin.
func AngleToCoordinates(angle, magnitude float64) cp.Vector {
	return cp.Vector{X: math.Cos(angle) * magnitude, Y: math.Sin(angle) * magnitude}
}

// Dist is a distance that stays squared until someone needs the real
// value. Broad-phase rejection compares squared distances only.
type Dist struct {
	sq       float64
	val      float64
	resolved bool
}

func DistBetween(a, b cp.Vector) Dist {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return Dist{sq: dx*dx + dy*dy}
}

// DistFromFloat wraps an already-resolved distance value.
func DistFromFloat(v float64) Dist {
	return Dist{sq: v * v, val: v, resolved: true}
}

func (d Dist) Squared() float64 {
	return d.sq
}

func (d *Dist) Float() float64 {
	if !d.resolved {
		d.val = math.Sqrt(d.sq)
		d.resolved = true
	}
	return d.val
}

func (d Dist) LessThan(v float64) bool {
	return v >= 0 && d.sq < v*v
}

func (d Dist) LessOrEqual(v float64) bool {
	return v >= 0 && d.sq <= v*v
}

func (d Dist) MoreThan(v float64) bool {
	return v < 0 || d.sq > v*v
}
