package granule

import (
	"math/rand"

	"github.com/akmonengine/granule/constraint"
	"github.com/akmonengine/granule/particle"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// Tuning collects the runtime knobs of the engine
type Tuning struct {
	// Gravity acceleration applied to every movable particle
	Gravity mgl64.Vec2
	// Restitution for particle and segment collisions, 0 = inelastic, 1 = elastic
	Restitution float64
	// Tangential friction applied in segment collisions, 0..1
	Friction float64
	// CollisionResponse toggles the physical response; contacts are still
	// reported to observers when it is off
	CollisionResponse bool
	// EatEnabled lets the heavier particle of a colliding pair absorb the lighter
	EatEnabled bool
	// MomentumFactor blends jointed particle velocities toward their actual
	// per-step displacement, 0 = integrator velocity, 1 = pure displacement
	MomentumFactor float64
}

// DefaultTuning returns the stock engine tuning
func DefaultTuning() Tuning {
	return Tuning{
		Restitution:       0.9,
		Friction:          0.1,
		CollisionResponse: true,
		MomentumFactor:    0.8,
	}
}

// World holds the particles, joints and solver state of one simulation
type World struct {
	Arena  *particle.Arena
	Joints *constraint.Set
	Solver *constraint.Solver
	Grid   *SpatialGrid

	Tuning  Tuning
	Workers int
	Rng     *rand.Rand

	Events Events
}

// NewWorld creates a world with the given spatial grid dimensions.
// The seed drives every randomized fallback, fix it for reproducible runs.
func NewWorld(cellSize float64, numCells int, seed int64) *World {
	arena := particle.NewArena()
	joints := constraint.NewSet(arena)
	rng := rand.New(rand.NewSource(seed))

	w := &World{
		Arena:  arena,
		Joints: joints,
		Solver: constraint.NewSolver(joints, arena, rng),
		Grid:   NewSpatialGrid(cellSize, numCells, arena),
		Tuning: DefaultTuning(),
		Rng:    rng,
		Events: NewEvents(),
	}
	w.Grid.JointSource = joints.Joints
	w.Solver.OnBreak = func(j *constraint.Joint) {
		w.Events.emitJointBreak(j)
	}

	return w
}

// AddParticle creates a particle in the arena
func (w *World) AddParticle(position mgl64.Vec2, mass, size float64) *particle.Particle {
	return w.Arena.Add(position, mass, size)
}

// CreateJoint joints two particles at their current distance
func (w *World) CreateJoint(a, b int) *constraint.Joint {
	return w.Joints.Create(a, b)
}

// RemoveJoint removes a joint by id
func (w *World) RemoveJoint(id int) {
	w.Joints.Remove(id)
}

// GetRigidBodyGroup returns the ids of the particles rigidly connected to the
// given particle, itself included
func (w *World) GetRigidBodyGroup(particleId int) map[int]bool {
	return w.Joints.Group(particleId)
}

// AreInSameRigidBody reports whether two particles share a rigid body
func (w *World) AreInSameRigidBody(a, b int) bool {
	return w.Joints.SameRigidBody(a, b)
}

// Grab marks a particle as user-controlled: it pushes others, is never pushed
func (w *World) Grab(particleId int) {
	if p := w.Arena.Get(particleId); p != nil {
		p.Grabbed = true
	}
}

// Release undoes Grab
func (w *World) Release(particleId int) {
	if p := w.Arena.Get(particleId); p != nil {
		p.Grabbed = false
	}
}

// KineticEnergy returns the total kinetic energy of the living particles
func (w *World) KineticEnergy() float64 {
	var energy float64
	for _, p := range w.Arena.All() {
		if p.Alive() {
			v := p.Speed()
			energy += 0.5 * p.Mass * v * v
		}
	}
	return energy
}

// Step advances the simulation by dt seconds
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	// Phase 0: maintenance - prune invalid joints and dead particles
	w.Joints.Prune()
	w.Arena.Compact()

	w.BeforeStep(dt)

	// Phase 1: integration
	w.integrate(dt)

	// Phase 2: broad phase registration
	w.Grid.Rebuild()

	// Phase 3: particle collisions (sequential: pairs write both sides)
	for _, p := range w.Arena.All() {
		w.ApplyCollisions(p)
	}

	// Phase 4: exhaustive joint constraint + crossing solve
	w.SolveConstraints()

	// Phase 5: momentum reconciliation
	w.AfterStep(dt)

	w.Events.flush()
}

// BeforeStep snapshots every particle position, the reference for the swept
// collision tests and the momentum reconciliation
func (w *World) BeforeStep(dt float64) {
	task(w.Workers, w.Arena.All(), func(p *particle.Particle) {
		p.PrePhysicsPosition = p.Position
	})
}

// integrate advances velocities and positions (semi-implicit Euler) and
// clears the per-step acceleration
func (w *World) integrate(dt float64) {
	task(w.Workers, w.Arena.All(), func(p *particle.Particle) {
		if !p.Movable() {
			p.Acceleration = mgl64.Vec2{}
			return
		}

		p.Velocity = p.Velocity.Add(p.Acceleration.Add(w.Tuning.Gravity).Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
		p.Acceleration = mgl64.Vec2{}
	})
}

// SolveConstraints runs the exhaustive joint solve against the spatial grid
func (w *World) SolveConstraints() {
	w.Solver.Restitution = w.Tuning.Restitution
	w.Solver.Solve(w.Grid)
}

// AfterStep reconciles the velocity of every jointed particle with the
// displacement the constraints actually produced, so velocity reflects what
// happened rather than only the unconstrained integration
func (w *World) AfterStep(dt float64) {
	factor := w.Tuning.MomentumFactor
	if factor <= 0 || dt <= 0 {
		return
	}

	// Sequential: HasJoint rebuilds the adjacency list lazily
	for _, p := range w.Arena.All() {
		if p.Pinned || !p.Alive() || !w.Joints.HasJoint(p.Id) {
			continue
		}

		actual := p.Position.Sub(p.PrePhysicsPosition).Mul(1 / dt)
		p.Velocity = p.Velocity.Mul(1 - factor).Add(actual.Mul(factor))
	}
}
