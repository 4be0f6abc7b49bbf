package granule

import (
	"math"

	"github.com/akmonengine/granule/geo"
	"github.com/akmonengine/granule/particle"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// grabbedPushBuffer inflates the push a grabbed particle applies,
	// grabbedVelocityScale converts that push into a velocity kick
	grabbedPushBuffer    = 0.05
	grabbedVelocityScale = 5.0

	// degenerateSplit is each side's share of the combined radius when two
	// particles occupy the exact same point
	degenerateSplit = 0.51

	// Normals closer than this to a pure axis get a random rotation,
	// bounded to ±18°, so stacks do not lock into straight lines
	axisAlignmentThreshold = 0.05
	maxSymmetryBreakAngle  = math.Pi / 10

	symmetryNudge = 0.5
)

// ApplyCollisions detects and resolves overlaps between the particle and its
// spatial neighbors. Called once per particle per step; each unordered pair
// is resolved from the lower-id side only.
func (w *World) ApplyCollisions(p *particle.Particle) {
	if !p.Alive() {
		return
	}

	for _, other := range w.Grid.Neighbors(p.Position, p.Size*2) {
		if other.Id <= p.Id || !other.Alive() {
			continue
		}

		distance := other.Position.Sub(p.Position).Len()
		if distance >= p.Size+other.Size {
			continue
		}

		// Rigid members never collide with each other
		if w.Joints.SameRigidBody(p.Id, other.Id) {
			continue
		}

		// Observers see the contact even when response is off
		w.Events.emitCollision(p, other, w.Tuning.CollisionResponse)
		if !w.Tuning.CollisionResponse {
			continue
		}

		w.resolvePair(p, other, distance)
	}

	w.applyJointCollisions(p)
}

// resolvePair applies the full particle-particle response to one
// overlapping pair
func (w *World) resolvePair(p1, p2 *particle.Particle, distance float64) {
	combinedRadius := p1.Size + p2.Size

	// Grabbed particles push, they are never pushed
	if p1.Grabbed || p2.Grabbed {
		w.resolveGrabbed(p1, p2, distance)
		return
	}

	if distance == 0 {
		w.resolveDegenerate(p1, p2, combinedRadius)
		return
	}

	normal := p2.Position.Sub(p1.Position).Mul(1 / distance)
	normal = w.breakSymmetry(p1, p2, normal)

	overlap := combinedRadius - distance

	// Position correction split by inverse-mass ratio; a pinned particle
	// absorbs nothing and the other side takes the full overlap
	switch {
	case p1.Pinned && p2.Pinned:
		// Neither can move
	case p1.Pinned:
		p2.Position = p2.Position.Add(normal.Mul(overlap))
	case p2.Pinned:
		p1.Position = p1.Position.Sub(normal.Mul(overlap))
	default:
		total := p1.Mass + p2.Mass
		if total > 0 {
			p1.Position = p1.Position.Sub(normal.Mul(overlap * p2.Mass / total))
			p2.Position = p2.Position.Add(normal.Mul(overlap * p1.Mass / total))
		}
	}

	if w.Tuning.EatEnabled && !p1.Pinned && !p2.Pinned {
		if w.resolveEating(p1, p2) {
			return
		}
	}

	w.resolveVelocity(p1, p2, normal)
}

// resolveGrabbed handles pairs with at least one grabbed particle:
// the grabbed side pushes the other directly, with no momentum exchange
func (w *World) resolveGrabbed(p1, p2 *particle.Particle, distance float64) {
	if p1.Grabbed && p2.Grabbed {
		return
	}

	grabbed, other := p1, p2
	if p2.Grabbed {
		grabbed, other = p2, p1
	}
	if other.Pinned {
		return
	}

	var direction mgl64.Vec2
	if distance > 0 {
		direction = other.Position.Sub(grabbed.Position).Mul(1 / distance)
	} else {
		direction = geo.Rotate(mgl64.Vec2{1, 0}, w.Rng.Float64()*2*math.Pi)
	}

	overlap := grabbed.Size + other.Size - distance
	push := direction.Mul(overlap * (1 + grabbedPushBuffer))

	other.Position = other.Position.Add(push)
	other.Velocity = other.Velocity.Add(push.Mul(grabbedVelocityScale))
}

// resolveDegenerate separates two particles occupying the exact same point
// along a random direction
func (w *World) resolveDegenerate(p1, p2 *particle.Particle, combinedRadius float64) {
	if p1.Pinned && p2.Pinned {
		return
	}

	direction := geo.Rotate(mgl64.Vec2{1, 0}, w.Rng.Float64()*2*math.Pi)

	switch {
	case p1.Pinned:
		p2.Position = p2.Position.Add(direction.Mul(combinedRadius))
	case p2.Pinned:
		p1.Position = p1.Position.Sub(direction.Mul(combinedRadius))
	default:
		p1.Position = p1.Position.Sub(direction.Mul(degenerateSplit * combinedRadius))
		p2.Position = p2.Position.Add(direction.Mul(degenerateSplit * combinedRadius))
	}
}

// breakSymmetry rotates near-axis-aligned collision normals by a small random
// angle and nudges the movable positions, so particle columns do not stack
// into unstable straight lines
func (w *World) breakSymmetry(p1, p2 *particle.Particle, normal mgl64.Vec2) mgl64.Vec2 {
	nx := math.Abs(normal.X())
	ny := math.Abs(normal.Y())
	if nx > axisAlignmentThreshold && ny > axisAlignmentThreshold {
		return normal
	}

	angle := (w.Rng.Float64()*2 - 1) * maxSymmetryBreakAngle
	normal = geo.Rotate(normal, angle)

	if !p1.Pinned {
		p1.Position = p1.Position.Add(w.randomNudge())
	}
	if !p2.Pinned {
		p2.Position = p2.Position.Add(w.randomNudge())
	}

	return normal
}

func (w *World) randomNudge() mgl64.Vec2 {
	return mgl64.Vec2{
		(w.Rng.Float64()*2 - 1) * symmetryNudge,
		(w.Rng.Float64()*2 - 1) * symmetryNudge,
	}
}

// resolveEating zeroes the lighter particle of the pair. Equal masses fall
// through to the normal velocity response, reported by the false return.
func (w *World) resolveEating(p1, p2 *particle.Particle) bool {
	switch {
	case p1.Mass < p2.Mass:
		p1.Kill()
		w.Events.emitParticleEaten(p2, p1)
		return true
	case p2.Mass < p1.Mass:
		p2.Kill()
		w.Events.emitParticleEaten(p1, p2)
		return true
	}
	return false
}

// resolveVelocity applies the 1D restitution response along the collision
// normal, leaving the tangential components untouched
func (w *World) resolveVelocity(p1, p2 *particle.Particle, normal mgl64.Vec2) {
	// Pinned vs dynamic: reflect the dynamic particle away from the pinned
	// one at its own speed
	if p1.Pinned || p2.Pinned {
		pinned, dynamic := p1, p2
		if p2.Pinned {
			pinned, dynamic = p2, p1
		}
		if dynamic.Pinned {
			return
		}

		away := dynamic.Position.Sub(pinned.Position)
		if away.Len() < 1e-9 {
			return
		}
		dynamic.Velocity = away.Mul(dynamic.Speed() / away.Len())
		return
	}

	e := w.Tuning.Restitution
	m1 := p1.Mass
	m2 := p2.Mass
	total := m1 + m2
	if total <= 0 {
		return
	}

	tangent := geo.Perpendicular(normal)

	v1n := p1.Velocity.Dot(normal)
	v2n := p2.Velocity.Dot(normal)
	v1t := p1.Velocity.Dot(tangent)
	v2t := p2.Velocity.Dot(tangent)

	newV1n := (v1n*(m1-e*m2) + (1+e)*m2*v2n) / total
	newV2n := (v2n*(m2-e*m1) + (1+e)*m1*v1n) / total

	p1.Velocity = normal.Mul(newV1n).Add(tangent.Mul(v1t))
	p2.Velocity = normal.Mul(newV2n).Add(tangent.Mul(v2t))
}
