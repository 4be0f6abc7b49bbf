package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box in 2D
type AABB struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// FromCircle builds the AABB of a circle
func FromCircle(center mgl64.Vec2, radius float64) AABB {
	return AABB{
		Min: mgl64.Vec2{center.X() - radius, center.Y() - radius},
		Max: mgl64.Vec2{center.X() + radius, center.Y() + radius},
	}
}

// FromSegment builds the AABB of a segment, inflated by pad on every side
func FromSegment(a, b mgl64.Vec2, pad float64) AABB {
	return AABB{
		Min: mgl64.Vec2{math.Min(a.X(), b.X()) - pad, math.Min(a.Y(), b.Y()) - pad},
		Max: mgl64.Vec2{math.Max(a.X(), b.X()) + pad, math.Max(a.Y(), b.Y()) + pad},
	}
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec2) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y()
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on both axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y()
}
