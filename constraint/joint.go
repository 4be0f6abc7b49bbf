package constraint

import (
	"math"
	"math/rand"

	"github.com/akmonengine/granule/geo"
	"github.com/akmonengine/granule/particle"
	"github.com/go-gl/mathgl/mgl64"
)

// Distance deviations below this are considered satisfied
const SettleEpsilon = 1e-3

// ParticleSource resolves particle ids to live particles.
// *particle.Arena satisfies it.
type ParticleSource interface {
	Get(id int) *particle.Particle
}

// JointState is the lifecycle state of a joint
type JointState uint8

const (
	// StateActive joints constrain their endpoints every step
	StateActive JointState = iota

	// StateBroken is permanent: a joint broken by stress never reactivates,
	// no matter how its endpoints move afterwards
	StateBroken
)

// Joint is a distance constraint between two particles.
// Endpoints are referenced by id, never by pointer.
type Joint struct {
	Id int
	A  int // particle id
	B  int // particle id

	// Target distance between the endpoints
	RestLength float64

	// Tolerance is how much normalized stress the joint survives.
	// 1 never breaks, 0 breaks at the first deviation from rest.
	Tolerance float64

	State JointState
}

// Break permanently disables the joint. One-way transition.
func (j *Joint) Break() {
	j.State = StateBroken
}

// Broken reports whether the joint was permanently broken by stress
func (j *Joint) Broken() bool {
	return j.State == StateBroken
}

// Validate reports whether the joint still constrains anything:
// not broken, and both endpoints resolve to particles with mass
func (j *Joint) Validate(src ParticleSource) bool {
	if j.State == StateBroken {
		return false
	}

	a := src.Get(j.A)
	b := src.Get(j.B)

	return a != nil && b != nil && a.Alive() && b.Alive()
}

// Has reports whether the given particle is one of the joint's endpoints
func (j *Joint) Has(particleId int) bool {
	return j.A == particleId || j.B == particleId
}

// Length returns the current distance between the endpoints
func (j *Joint) Length(src ParticleSource) float64 {
	a := src.Get(j.A)
	b := src.Get(j.B)
	if a == nil || b == nil {
		return 0
	}
	return b.Position.Sub(a.Position).Len()
}

// StressRatio returns the normalized length deviation, clamped to [-1, 1].
// Positive under tension, negative under compression.
func (j *Joint) StressRatio(src ParticleSource) float64 {
	displacement := j.Length(src) - j.RestLength

	denom := 0.5 * j.RestLength
	if denom < 1e-9 {
		// Zero rest length: any deviation is full stress
		if displacement > 0 {
			return 1
		}
		return 0
	}

	return geo.Clamp(displacement/denom, -1, 1)
}

// ApplyConstraint corrects the endpoint positions toward the rest length.
// If the stress exceeds the tolerance the joint breaks instead of correcting.
// Returns true when a correction larger than SettleEpsilon was applied.
func (j *Joint) ApplyConstraint(src ParticleSource, rng *rand.Rand) bool {
	if !j.Validate(src) {
		return false
	}

	if stress := j.StressRatio(src); stress > j.Tolerance || stress < -j.Tolerance {
		j.Break()
		return false
	}

	a := src.Get(j.A)
	b := src.Get(j.B)

	movableA := a.Movable()
	movableB := b.Movable()
	if !movableA && !movableB {
		return false
	}

	delta := b.Position.Sub(a.Position)
	distance := delta.Len()

	displacement := distance - j.RestLength
	if displacement > -SettleEpsilon && displacement < SettleEpsilon {
		return false
	}

	var dir mgl64.Vec2
	if distance > 1e-9 {
		dir = delta.Mul(1 / distance)
	} else {
		// Coincident endpoints, separate along a random direction
		dir = geo.Rotate(mgl64.Vec2{1, 0}, rng.Float64()*2*math.Pi)
	}

	switch {
	case movableA && movableB:
		correction := dir.Mul(displacement / 2)
		a.Position = a.Position.Add(correction)
		b.Position = b.Position.Sub(correction)
	case movableA:
		// Snap the single movable endpoint to exactly restLength
		a.Position = b.Position.Sub(dir.Mul(j.RestLength))
	default:
		b.Position = a.Position.Add(dir.Mul(j.RestLength))
	}

	return true
}
