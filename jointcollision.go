package granule

import (
	"math"

	"github.com/akmonengine/granule/constraint"
	"github.com/akmonengine/granule/geo"
	"github.com/akmonengine/granule/particle"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Distances below this count as on the segment; keeps the normal
	// computation away from zero-length vectors
	segmentEpsilon = 1e-6

	// Extra clearance applied when correcting a particle off a static segment
	staticSegmentPadding = 1.1

	// minSeparation is the floor on the emergency separation distance in the
	// general response, minOutwardSpeed the floor on the post-impulse
	// outward velocity
	minSeparation   = 0.01
	minOutwardSpeed = 0.1
)

// applyJointCollisions resolves collisions between the particle and nearby
// joint segments it is not structurally part of
func (w *World) applyJointCollisions(p *particle.Particle) {
	travel := p.Position.Sub(p.PrePhysicsPosition).Len()

	for _, j := range w.Grid.JointsNear(p.Position, p.Size+travel) {
		if j.Has(p.Id) || !j.Validate(w.Arena) {
			continue
		}
		if w.Joints.SameRigidBody(p.Id, j.A) || w.Joints.SameRigidBody(p.Id, j.B) {
			continue
		}

		w.resolveJointCollision(p, j)
	}
}

// resolveJointCollision tests one particle against one joint segment,
// discretely and, for fast particles, with a swept test, then dispatches to
// the three response branches
func (w *World) resolveJointCollision(p *particle.Particle, j *constraint.Joint) {
	a := w.Arena.Get(j.A)
	b := w.Arena.Get(j.B)

	closest, t := geo.ClosestPointOnSegment(p.Position, a.Position, b.Position)
	delta := p.Position.Sub(closest)
	distance := delta.Len()

	collided := distance < p.Size
	tunneled := false

	// Fast particles can step across the segment in one frame; compare the
	// side of the previous and current position, and test the travel path
	// against the segment itself
	if !collided && p.Speed() > p.Size {
		prevSide := geo.SideOfSegment(p.PrePhysicsPosition, a.Position, b.Position)
		currSide := geo.SideOfSegment(p.Position, a.Position, b.Position)

		if prevSide != 0 && currSide != 0 && prevSide != currSide && t > 0 && t < 1 {
			tunneled = true
		} else if geo.SegmentsIntersect(p.PrePhysicsPosition, p.Position, a.Position, b.Position) {
			tunneled = true
		}
	}

	if !collided && !tunneled {
		return
	}

	var normal mgl64.Vec2
	switch {
	case tunneled:
		// Point back toward the side the particle came from
		normal = w.segmentNormal(a.Position, b.Position,
			geo.SideOfSegment(p.PrePhysicsPosition, a.Position, b.Position))
		distance = 0
	case distance > segmentEpsilon:
		normal = delta.Mul(1 / distance)
	default:
		normal = w.segmentNormal(a.Position, b.Position,
			geo.SideOfSegment(p.Velocity.Mul(-1).Add(p.Position), a.Position, b.Position))
		distance = 0
	}

	weightA := 1 - t
	weightB := t

	switch {
	case !a.Movable() && !b.Movable():
		w.bounceOffStaticSegment(p, closest, normal)
	case p.Grabbed:
		w.pushJointEndpoints(p, a, b, normal, distance, weightA, weightB)
	default:
		w.resolveJointImpulse(p, a, b, normal, distance, weightA, weightB)
	}
}

// segmentNormal returns the unit normal of [a, b] facing the given side;
// degenerate segments get a random direction
func (w *World) segmentNormal(a, b mgl64.Vec2, side float64) mgl64.Vec2 {
	direction := b.Sub(a)
	if direction.Len() < 1e-9 {
		return geo.Rotate(mgl64.Vec2{1, 0}, w.Rng.Float64()*2*math.Pi)
	}
	if side == 0 {
		side = 1
	}
	return geo.Perpendicular(direction).Mul(side / direction.Len())
}

// bounceOffStaticSegment reflects the particle off a segment whose endpoints
// are all pinned or grabbed: restitution along the normal, friction along
// the tangent, position pushed clear with padding
func (w *World) bounceOffStaticSegment(p *particle.Particle, closest, normal mgl64.Vec2) {
	if !p.Movable() {
		return
	}

	vn := p.Velocity.Dot(normal)
	tangent := geo.Perpendicular(normal)
	vt := p.Velocity.Dot(tangent)

	if vn < 0 {
		vn = -vn * w.Tuning.Restitution
	}
	vt *= 1 - w.Tuning.Friction

	p.Velocity = normal.Mul(vn).Add(tangent.Mul(vt))
	p.Position = closest.Add(normal.Mul(p.Size * staticSegmentPadding))
}

// pushJointEndpoints lets a grabbed particle shove the joint out of its way,
// each endpoint weighted by its proximity to the impact point. No velocity
// response comes back on the particle.
func (w *World) pushJointEndpoints(p, a, b *particle.Particle, normal mgl64.Vec2, distance, weightA, weightB float64) {
	overlap := p.Size - distance
	push := normal.Mul(-overlap)

	if a.Movable() {
		a.Position = a.Position.Add(push.Mul(weightA))
	}
	if b.Movable() {
		b.Position = b.Position.Add(push.Mul(weightB))
	}
}

// resolveJointImpulse is the general branch: emergency position separation
// proportional to relative mobility, then a single restitution impulse split
// between the particle and the joint endpoints by the impact weights
func (w *World) resolveJointImpulse(p, a, b *particle.Particle, normal mgl64.Vec2, distance, weightA, weightB float64) {
	jointMass := effectiveJointMass(a, b, weightA, weightB)
	if jointMass <= 0 {
		w.bounceOffStaticSegment(p, p.Position.Sub(normal.Mul(distance)), normal)
		return
	}

	particleMass := p.Mass
	total := particleMass + jointMass

	// Phase 1: positional separation, mobility-weighted, floored
	overlap := math.Max(p.Size-distance, minSeparation)
	if p.Movable() {
		p.Position = p.Position.Add(normal.Mul(overlap * jointMass / total))
	}
	jointShare := overlap * particleMass / total
	if a.Movable() {
		a.Position = a.Position.Sub(normal.Mul(jointShare * weightA))
	}
	if b.Movable() {
		b.Position = b.Position.Sub(normal.Mul(jointShare * weightB))
	}

	// Phase 2: recompute the normal after separation, then one impulse
	closest, t := geo.ClosestPointOnSegment(p.Position, a.Position, b.Position)
	post := p.Position.Sub(closest)
	if post.Len() > segmentEpsilon {
		normal = post.Mul(1 / post.Len())
		weightA = 1 - t
		weightB = t
	}

	jointVelocity := a.Velocity.Mul(weightA).Add(b.Velocity.Mul(weightB))
	relative := p.Velocity.Sub(jointVelocity).Dot(normal)

	if relative < 0 {
		impulse := -(1 + w.Tuning.Restitution) * relative * particleMass * jointMass / total

		if p.Movable() {
			p.Velocity = p.Velocity.Add(normal.Mul(impulse / particleMass))
		}
		if a.Movable() {
			a.Velocity = a.Velocity.Sub(normal.Mul(impulse * weightA / a.Mass))
		}
		if b.Movable() {
			b.Velocity = b.Velocity.Sub(normal.Mul(impulse * weightB / b.Mass))
		}

		// Tangential friction on the particle
		tangent := geo.Perpendicular(normal)
		vt := p.Velocity.Dot(tangent)
		p.Velocity = p.Velocity.Sub(tangent.Mul(vt * w.Tuning.Friction))
	}

	// Velocity validation: force a minimum outward bounce if the particle is
	// still numerically moving into the segment
	if p.Movable() {
		vn := p.Velocity.Sub(jointVelocity).Dot(normal)
		if vn < minOutwardSpeed {
			p.Velocity = p.Velocity.Add(normal.Mul(minOutwardSpeed - vn))
		}
	}
}

// effectiveJointMass is the mass the joint presents at an impact point:
// each movable endpoint contributes its mass scaled by the impact weight,
// pinned and grabbed endpoints contribute nothing
func effectiveJointMass(a, b *particle.Particle, weightA, weightB float64) float64 {
	var mass float64
	if a.Movable() {
		mass += a.Mass * weightA
	}
	if b.Movable() {
		mass += b.Mass * weightB
	}
	return mass
}
