package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// CircleIntersectsCircle reports whether two circles overlap and, if so,
// how far and in what direction the first circle must move to separate.
func CircleIntersectsCircle(c1 cp.Vector, r1 float64, c2 cp.Vector, r2 float64) (bool, float64, float64) {
	d := DistBetween(c2, c1)
	if !d.LessOrEqual(r1 + r2) {
		return false, 0, 0
	}
	overlap := math.Abs(d.Float() - r1 - r2)
	return true, overlap, Angle(c2, c1)
}

// CircleIntersectsRectangle tests a circle against a rotated rectangle.
// The returned push is the amount and angle the circle must move to
// leave the rectangle.
func CircleIntersectsRectangle(
	circle cp.Vector, radius float64,
	rectCenter, rectDim cp.Vector, rectAngle float64,
) (bool, float64, float64) {
	// Work in the rectangle's local space.
	local := rotatePoint(circle.Sub(rectCenter), -rectAngle)
	halfW := rectDim.X / 2
	halfH := rectDim.Y / 2

	nearest := cp.Vector{
		X: Clamp(local.X, -halfW, halfW),
		Y: Clamp(local.Y, -halfH, halfH),
	}

	inside := local.X > -halfW && local.X < halfW && local.Y > -halfH && local.Y < halfH
	if inside {
		// Center inside the rectangle: push out through the nearest edge.
		dxLeft := local.X + halfW
		dxRight := halfW - local.X
		dyTop := local.Y + halfH
		dyBottom := halfH - local.Y
		minPen := math.Min(math.Min(dxLeft, dxRight), math.Min(dyTop, dyBottom))
		var localAngle float64
		switch minPen {
		case dxRight:
			localAngle = 0
		case dyBottom:
			localAngle = math.Pi / 2
		case dxLeft:
			localAngle = math.Pi
		default:
			localAngle = -math.Pi / 2
		}
		return true, minPen + radius, NormalizeAngle(localAngle + rectAngle)
	}

	gap := DistBetween(nearest, local)
	if !gap.LessOrEqual(radius) {
		return false, 0, 0
	}
	pushAngle := Angle(nearest, local)
	return true, radius - gap.Float(), NormalizeAngle(pushAngle + rectAngle)
}

// RectanglesIntersect tests two rotated rectangles with a separating-axis
// sweep over both rectangles' edge normals. The push moves the first
// rectangle along the axis of least penetration.
func RectanglesIntersect(
	center1, dim1 cp.Vector, angle1 float64,
	center2, dim2 cp.Vector, angle2 float64,
) (bool, float64, float64) {
	c1 := rectCorners(center1, dim1, angle1)
	c2 := rectCorners(center2, dim2, angle2)

	minOverlap := math.MaxFloat64
	var pushAxis cp.Vector

	for _, axis := range append(rectAxes(angle1), rectAxes(angle2)...) {
		min1, max1 := projectOntoAxis(c1, axis)
		min2, max2 := projectOntoAxis(c2, axis)
		if max1 < min2 || max2 < min1 {
			return false, 0, 0
		}
		overlap := math.Min(max1, max2) - math.Max(min1, min2)
		if overlap < minOverlap {
			minOverlap = overlap
			pushAxis = axis
			// Push away from the other rectangle's center.
			if center1.Sub(center2).Dot(axis) < 0 {
				pushAxis = axis.Neg()
			}
		}
	}

	return true, minOverlap, NormalizeAngle(math.Atan2(pushAxis.Y, pushAxis.X))
}

func rotatePoint(p cp.Vector, angle float64) cp.Vector {
	s, c := math.Sincos(angle)
	return cp.Vector{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

func rectCorners(center, dim cp.Vector, angle float64) [4]cp.Vector {
	hw := dim.X / 2
	hh := dim.Y / 2
	local := [4]cp.Vector{
		{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh},
	}
	var out [4]cp.Vector
	for i, p := range local {
		out[i] = rotatePoint(p, angle).Add(center)
	}
	return out
}

func rectAxes(angle float64) []cp.Vector {
	s, c := math.Sincos(angle)
	return []cp.Vector{{X: c, Y: s}, {X: -s, Y: c}}
}

func projectOntoAxis(corners [4]cp.Vector, axis cp.Vector) (float64, float64) {
	lo := corners[0].Dot(axis)
	hi := lo
	for _, p := range corners[1:] {
		v := p.Dot(axis)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
