package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cross2D returns the z component of the cross product of two 2D vectors
func Cross2D(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// Perpendicular returns v rotated by 90° counter-clockwise
func Perpendicular(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v.Y(), v.X()}
}

// Rotate returns v rotated by the given angle in radians
func Rotate(v mgl64.Vec2, angle float64) mgl64.Vec2 {
	sin, cos := math.Sincos(angle)
	return mgl64.Vec2{
		v.X()*cos - v.Y()*sin,
		v.X()*sin + v.Y()*cos,
	}
}

// Clamp limits v to the range [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClosestPointOnSegment returns the point on segment [a, b] closest to p,
// and the projection parameter t in [0, 1] (0 at a, 1 at b).
// A zero-length segment returns a with t=0.
func ClosestPointOnSegment(p, a, b mgl64.Vec2) (mgl64.Vec2, float64) {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < 1e-12 {
		return a, 0
	}

	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)

	return a.Add(ab.Mul(t)), t
}

// orientation classifies the turn p→q→r:
// 0 = collinear, 1 = clockwise, 2 = counter-clockwise
func orientation(p, q, r mgl64.Vec2) int {
	cross := Cross2D(q.Sub(p), r.Sub(q))
	if math.Abs(cross) < 1e-12 {
		return 0
	}
	if cross < 0 {
		return 1
	}
	return 2
}

// onSegment reports whether the collinear point q lies on segment [p, r]
func onSegment(p, q, r mgl64.Vec2) bool {
	return q.X() <= math.Max(p.X(), r.X()) && q.X() >= math.Min(p.X(), r.X()) &&
		q.Y() <= math.Max(p.Y(), r.Y()) && q.Y() >= math.Min(p.Y(), r.Y())
}

// SegmentsIntersect reports whether segments [p1, p2] and [q1, q2] intersect,
// including collinear overlap and shared endpoints.
func SegmentsIntersect(p1, p2, q1, q2 mgl64.Vec2) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear special cases
	if o1 == 0 && onSegment(p1, q1, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, p2) {
		return true
	}
	if o3 == 0 && onSegment(q1, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(q1, p2, q2) {
		return true
	}

	return false
}

// SideOfSegment returns the sign of the side of the line through [a, b]
// on which p lies: +1, -1, or 0 when p is on the line.
func SideOfSegment(p, a, b mgl64.Vec2) float64 {
	cross := Cross2D(b.Sub(a), p.Sub(a))
	if cross > 0 {
		return 1
	}
	if cross < 0 {
		return -1
	}
	return 0
}
