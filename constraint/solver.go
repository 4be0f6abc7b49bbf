package constraint

import (
	"math"
	"math/rand"

	"github.com/akmonengine/granule/geo"
	"github.com/akmonengine/granule/particle"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations bounds the exhaustive solve loop per step
	DefaultMaxIterations = 10
	// DefaultMaxCrossingAttempts bounds the per-pair crossing resolution
	DefaultMaxCrossingAttempts = 5

	// Per-particle mass is clamped to this range when computing group masses
	// for crossing impulses. Very light or very heavy structural members
	// otherwise destabilize the broadcast velocities.
	crossingMassMin = 2.0
	crossingMassMax = 5.0

	// Positional nudge applied while two segments keep intersecting,
	// bounded per frame
	maxCrossingNudge = 3.0

	// Strength of the last-resort centroid push between colliding groups
	emergencySeparationStrength = 2.0
)

// JointIndex is the broad-phase view of the spatial index the solver needs:
// joints whose bounds are near a given joint. ReindexJoints re-registers all
// current joints, it must be called whenever endpoint positions moved.
type JointIndex interface {
	ReindexJoints()
	NearbyJoints(j *Joint) []*Joint
}

// crossing is a pair of joint segments from different rigid bodies
// intersecting in space
type crossing struct {
	a *Joint
	b *Joint
}

// Solver runs the system-wide exhaustive constraint solve:
// per-joint distance corrections, joint-vs-joint crossing resolution,
// and the emergency separation fallback.
type Solver struct {
	Set *Set

	// Restitution used for crossing impulses between rigid bodies
	Restitution float64

	MaxIterations       int
	MaxCrossingAttempts int

	// OnBreak, when set, is called for every joint broken by stress
	OnBreak func(*Joint)

	Rng *rand.Rand

	src ParticleSource
}

// NewSolver creates a solver over the given joint set
func NewSolver(set *Set, src ParticleSource, rng *rand.Rand) *Solver {
	return &Solver{
		Set:                 set,
		Restitution:         0.5,
		MaxIterations:       DefaultMaxIterations,
		MaxCrossingAttempts: DefaultMaxCrossingAttempts,
		Rng:                 rng,
		src:                 src,
	}
}

// Solve runs constraint iterations until every joint settles and no crossing
// remains, or the iteration cap is reached. On the final iteration surviving
// crossings get emergency separation, so the loop always terminates with
// bounded work.
func (s *Solver) Solve(index JointIndex) {
	for iteration := 0; iteration < s.MaxIterations; iteration++ {
		violated := false
		for _, j := range s.Set.Joints() {
			wasBroken := j.Broken()
			if j.ApplyConstraint(s.src, s.Rng) {
				violated = true
			}
			if !wasBroken && j.Broken() {
				s.Set.Touch()
				if s.OnBreak != nil {
					s.OnBreak(j)
				}
			}
		}

		index.ReindexJoints()
		crossings := s.findCrossings(index)

		if !violated && len(crossings) == 0 {
			return
		}

		for _, c := range crossings {
			s.resolveCrossing(c)
		}

		if iteration == s.MaxIterations-1 {
			s.emergencySeparation(crossings)
		}
	}
}

// findCrossings queries the index for nearby joint pairs and keeps the pairs
// that actually intersect, do not share a particle, and belong to different
// rigid bodies
func (s *Solver) findCrossings(index JointIndex) []crossing {
	var crossings []crossing

	for _, j := range s.Set.Joints() {
		if !j.Validate(s.src) {
			continue
		}

		for _, other := range index.NearbyJoints(j) {
			if other.Id <= j.Id || !other.Validate(s.src) {
				continue
			}
			if other.Has(j.A) || other.Has(j.B) {
				continue
			}
			if s.Set.SameRigidBody(j.A, other.A) {
				continue
			}

			a1, a2 := s.endpoints(j)
			b1, b2 := s.endpoints(other)
			if geo.SegmentsIntersect(a1.Position, a2.Position, b1.Position, b2.Position) {
				crossings = append(crossings, crossing{a: j, b: other})
			}
		}
	}

	return crossings
}

// resolveCrossing separates two intersecting joint segments by exchanging a
// restitution impulse between their rigid-body groups, then nudging positions
// while the segments keep intersecting
func (s *Solver) resolveCrossing(c crossing) {
	groupA := s.Set.Group(c.a.A)
	groupB := s.Set.Group(c.b.A)

	for attempt := 0; attempt < s.MaxCrossingAttempts; attempt++ {
		a1, a2 := s.endpoints(c.a)
		b1, b2 := s.endpoints(c.b)

		if !geo.SegmentsIntersect(a1.Position, a2.Position, b1.Position, b2.Position) {
			return
		}

		midA := a1.Position.Add(a2.Position).Mul(0.5)
		midB := b1.Position.Add(b2.Position).Mul(0.5)

		normal := midB.Sub(midA)
		if normal.Len() > 1e-9 {
			normal = normal.Mul(1 / normal.Len())
		} else {
			// Coincident midpoints, separate along a random direction
			normal = geo.Rotate(mgl64.Vec2{1, 0}, s.Rng.Float64()*2*math.Pi)
		}

		massA, velocityA := s.groupMassAndVelocity(groupA)
		massB, velocityB := s.groupMassAndVelocity(groupB)
		if massA <= 0 && massB <= 0 {
			return
		}

		// Restitution applied to the two group velocities along the normal,
		// broadcast to every movable member
		vA := velocityA.Dot(normal)
		vB := velocityB.Dot(normal)

		e := s.Restitution
		total := massA + massB
		newVA := (vA*(massA-e*massB) + (1+e)*massB*vB) / total
		newVB := (vB*(massB-e*massA) + (1+e)*massA*vA) / total

		s.broadcastVelocity(groupA, normal.Mul(newVA-vA))
		s.broadcastVelocity(groupB, normal.Mul(newVB-vB))

		// Positional nudge, growing per attempt, bounded per frame
		nudge := math.Min(maxCrossingNudge, 0.5*float64(attempt+1))
		s.shiftGroup(groupA, normal.Mul(-nudge*massB/total))
		s.shiftGroup(groupB, normal.Mul(nudge*massA/total))
	}
}

// emergencySeparation pushes the rigid bodies of still-intersecting pairs
// apart along their centroid axis. Last resort against infinite oscillation.
func (s *Solver) emergencySeparation(crossings []crossing) {
	for _, c := range crossings {
		a1, a2 := s.endpoints(c.a)
		b1, b2 := s.endpoints(c.b)
		if !geo.SegmentsIntersect(a1.Position, a2.Position, b1.Position, b2.Position) {
			continue
		}

		groupA := s.Set.Group(c.a.A)
		groupB := s.Set.Group(c.b.A)

		direction := s.centroid(groupB).Sub(s.centroid(groupA))
		if direction.Len() > 1e-9 {
			direction = direction.Mul(1 / direction.Len())
		} else {
			direction = geo.Rotate(mgl64.Vec2{1, 0}, s.Rng.Float64()*2*math.Pi)
		}

		massA, _ := s.groupMassAndVelocity(groupA)
		massB, _ := s.groupMassAndVelocity(groupB)
		total := massA + massB
		if total <= 0 {
			continue
		}

		s.shiftGroup(groupA, direction.Mul(-emergencySeparationStrength*massB/total))
		s.shiftGroup(groupB, direction.Mul(emergencySeparationStrength*massA/total))
	}
}

func (s *Solver) endpoints(j *Joint) (*particle.Particle, *particle.Particle) {
	return s.src.Get(j.A), s.src.Get(j.B)
}

// groupMassAndVelocity returns the clamped group mass and the mass-weighted
// average velocity of a rigid body
func (s *Solver) groupMassAndVelocity(group map[int]bool) (float64, mgl64.Vec2) {
	var mass float64
	var momentum mgl64.Vec2

	for id := range group {
		p := s.src.Get(id)
		if p == nil || !p.Alive() {
			continue
		}
		m := geo.Clamp(p.Mass, crossingMassMin, crossingMassMax)
		mass += m
		momentum = momentum.Add(p.Velocity.Mul(m))
	}

	if mass <= 0 {
		return 0, mgl64.Vec2{}
	}
	return mass, momentum.Mul(1 / mass)
}

// broadcastVelocity adds a velocity delta to every movable member of a group
func (s *Solver) broadcastVelocity(group map[int]bool, delta mgl64.Vec2) {
	for id := range group {
		if p := s.src.Get(id); p != nil && p.Movable() {
			p.Velocity = p.Velocity.Add(delta)
		}
	}
}

// shiftGroup displaces every movable member of a group
func (s *Solver) shiftGroup(group map[int]bool, delta mgl64.Vec2) {
	for id := range group {
		if p := s.src.Get(id); p != nil && p.Movable() {
			p.Position = p.Position.Add(delta)
		}
	}
}

// centroid returns the average position of the living members of a group
func (s *Solver) centroid(group map[int]bool) mgl64.Vec2 {
	var sum mgl64.Vec2
	count := 0

	for id := range group {
		if p := s.src.Get(id); p != nil && p.Alive() {
			sum = sum.Add(p.Position)
			count++
		}
	}

	if count == 0 {
		return mgl64.Vec2{}
	}
	return sum.Mul(1 / float64(count))
}
