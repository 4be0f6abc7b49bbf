package granule

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// createTestWorld builds a world with a fixed seed so the randomized
// fallbacks are reproducible
func createTestWorld() *World {
	return NewWorld(10.0, 256, 42)
}

func TestResolvePairSeparates(t *testing.T) {
	w := createTestWorld()

	p1 := w.AddParticle(mgl64.Vec2{0, 1}, 1, 10)
	p2 := w.AddParticle(mgl64.Vec2{12, 7}, 1, 10)

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)

	distance := p2.Position.Sub(p1.Position).Len()
	if distance < p1.Size+p2.Size-1e-6 {
		t.Errorf("post-resolution distance = %v, want >= %v", distance, p1.Size+p2.Size)
	}
}

func TestResolvePairMomentumConserved(t *testing.T) {
	w := createTestWorld()
	w.Tuning.Restitution = 1.0

	p1 := w.AddParticle(mgl64.Vec2{0, 1}, 2, 10)
	p2 := w.AddParticle(mgl64.Vec2{15, 4}, 3, 10)
	p1.Velocity = mgl64.Vec2{20, 0}
	p2.Velocity = mgl64.Vec2{-10, 0}

	before := p1.Velocity.Mul(p1.Mass).Add(p2.Velocity.Mul(p2.Mass))

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)

	after := p1.Velocity.Mul(p1.Mass).Add(p2.Velocity.Mul(p2.Mass))

	if after.Sub(before).Len() > 1e-6 {
		t.Errorf("momentum changed: before %v, after %v", before, after)
	}
}

func TestHeadOnCollisionScenario(t *testing.T) {
	// Two particles size 10, 15 apart, approaching head-on at speed 50,
	// restitution 0.95. The approach axis is diagonal so the response is
	// not perturbed by the axis-alignment jitter.
	w := createTestWorld()
	w.Tuning.Restitution = 0.95

	axis := mgl64.Vec2{1, 1}.Normalize()

	p1 := w.AddParticle(mgl64.Vec2{0, 0}, 1, 10)
	p2 := w.AddParticle(axis.Mul(15), 1, 10)
	p1.Velocity = axis.Mul(50)
	p2.Velocity = axis.Mul(-50)

	w.Step(1.0 / 60.0)

	distance := p2.Position.Sub(p1.Position).Len()
	if distance < 20-1e-6 {
		t.Errorf("post-step distance = %v, want >= 20", distance)
	}
	if p1.Velocity.Dot(axis) >= 0 {
		t.Errorf("p1 velocity did not reverse along the approach axis: %v", p1.Velocity)
	}
	if p2.Velocity.Dot(axis) <= 0 {
		t.Errorf("p2 velocity did not reverse along the approach axis: %v", p2.Velocity)
	}
}

func TestCollisionNotificationWithResponseDisabled(t *testing.T) {
	w := createTestWorld()
	w.Tuning.CollisionResponse = false

	p1 := w.AddParticle(mgl64.Vec2{0, 1}, 1, 10)
	p2 := w.AddParticle(mgl64.Vec2{12, 3}, 1, 10)
	p1Before := p1.Position

	var seen []CollisionEvent
	w.Events.Subscribe(COLLISION, func(event Event) {
		seen = append(seen, event.(CollisionEvent))
	})

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)
	w.Events.flush()

	if len(seen) != 1 {
		t.Fatalf("got %d collision events, want 1", len(seen))
	}
	if seen[0].ResponseEnabled {
		t.Error("event reports response enabled")
	}
	// No response: nothing moved
	if p1.Position != p1Before {
		t.Error("particle moved with collision response disabled")
	}
	if p2.Position.Sub(p1.Position).Len() >= p1.Size+p2.Size {
		t.Error("overlap resolved with collision response disabled")
	}
}

func TestPinnedAbsorbsNoCorrection(t *testing.T) {
	w := createTestWorld()

	pinned := w.AddParticle(mgl64.Vec2{0, 1}, 1, 10)
	pinned.Pinned = true
	free := w.AddParticle(mgl64.Vec2{12, 4}, 1, 10)
	free.Velocity = mgl64.Vec2{-5, 0}

	pinnedBefore := pinned.Position

	w.Grid.Rebuild()
	w.ApplyCollisions(pinned)

	if pinned.Position != pinnedBefore {
		t.Error("pinned particle was displaced")
	}
	distance := free.Position.Sub(pinned.Position).Len()
	if distance < 20-1e-6 {
		t.Errorf("free particle not pushed the full overlap, distance = %v", distance)
	}
	// Reflected away from the pinned particle at its own speed
	away := free.Position.Sub(pinned.Position)
	if free.Velocity.Dot(away) <= 0 {
		t.Errorf("free particle still moving toward the pinned one: %v", free.Velocity)
	}
	if math.Abs(free.Velocity.Len()-5) > 1e-6 {
		t.Errorf("reflected speed = %v, want 5", free.Velocity.Len())
	}
}

func TestDegenerateDistanceRandomSeparation(t *testing.T) {
	w := createTestWorld()

	p1 := w.AddParticle(mgl64.Vec2{5, 5}, 1, 10)
	p2 := w.AddParticle(mgl64.Vec2{5, 5}, 1, 10)

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)

	distance := p2.Position.Sub(p1.Position).Len()
	// Each side moves 0.51 × combinedRadius
	expected := 2 * 0.51 * 20
	if math.Abs(distance-expected) > 1e-6 {
		t.Errorf("separation = %v, want %v", distance, expected)
	}
}

func TestDegenerateBothPinned(t *testing.T) {
	w := createTestWorld()

	p1 := w.AddParticle(mgl64.Vec2{5, 5}, 1, 10)
	p2 := w.AddParticle(mgl64.Vec2{5, 5}, 1, 10)
	p1.Pinned = true
	p2.Pinned = true

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)

	if p1.Position != p2.Position {
		t.Error("pinned coincident particles were moved")
	}
}

func TestGrabbedPushesOther(t *testing.T) {
	w := createTestWorld()

	grabbed := w.AddParticle(mgl64.Vec2{0, 1}, 1, 10)
	grabbed.Grabbed = true
	other := w.AddParticle(mgl64.Vec2{12, 3}, 1, 10)

	grabbedBefore := grabbed.Position

	w.Grid.Rebuild()
	w.ApplyCollisions(grabbed)

	if grabbed.Position != grabbedBefore {
		t.Error("grabbed particle was pushed back")
	}
	if other.Position.Sub(grabbed.Position).Len() < 20 {
		t.Errorf("other particle not pushed clear: %v", other.Position)
	}
	// Velocity kick in the push direction
	if other.Velocity.Dot(other.Position.Sub(grabbed.Position)) <= 0 {
		t.Error("pushed particle has no outward velocity")
	}
}

func TestBothGrabbedNoResponse(t *testing.T) {
	w := createTestWorld()

	p1 := w.AddParticle(mgl64.Vec2{0, 1}, 1, 10)
	p2 := w.AddParticle(mgl64.Vec2{12, 3}, 1, 10)
	p1.Grabbed = true
	p2.Grabbed = true
	before1, before2 := p1.Position, p2.Position

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)

	if p1.Position != before1 || p2.Position != before2 {
		t.Error("grabbed pair was displaced")
	}
}

func TestEatingLighterParticle(t *testing.T) {
	w := createTestWorld()
	w.Tuning.EatEnabled = true

	light := w.AddParticle(mgl64.Vec2{0, 1}, 1, 10)
	heavy := w.AddParticle(mgl64.Vec2{12, 3}, 5, 10)

	var eaten []ParticleEatenEvent
	w.Events.Subscribe(PARTICLE_EATEN, func(event Event) {
		eaten = append(eaten, event.(ParticleEatenEvent))
	})

	w.Grid.Rebuild()
	w.ApplyCollisions(light)
	w.Events.flush()

	if light.Alive() {
		t.Error("lighter particle survived")
	}
	if !heavy.Alive() {
		t.Error("heavier particle died")
	}
	if len(eaten) != 1 || eaten[0].Eaten != light || eaten[0].Eater != heavy {
		t.Errorf("unexpected eaten events: %v", eaten)
	}
}

func TestEatingEqualMassesFallsThrough(t *testing.T) {
	w := createTestWorld()
	w.Tuning.EatEnabled = true

	p1 := w.AddParticle(mgl64.Vec2{0, 1}, 2, 10)
	p2 := w.AddParticle(mgl64.Vec2{12, 3}, 2, 10)

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)

	if !p1.Alive() || !p2.Alive() {
		t.Error("equal-mass pair should not eat each other")
	}
	if p2.Position.Sub(p1.Position).Len() < 20-1e-6 {
		t.Error("equal-mass pair not separated by the normal response")
	}
}

func TestRigidMembersNeverCollide(t *testing.T) {
	w := createTestWorld()

	p1 := w.AddParticle(mgl64.Vec2{0, 1}, 1, 10)
	p2 := w.AddParticle(mgl64.Vec2{12, 3}, 1, 10)
	w.CreateJoint(p1.Id, p2.Id)

	var seen int
	w.Events.Subscribe(COLLISION, func(Event) { seen++ })

	before1, before2 := p1.Velocity, p2.Velocity
	w.Grid.Rebuild()
	w.ApplyCollisions(p1)
	w.Events.flush()

	if seen != 0 {
		t.Error("collision notification emitted for rigid body members")
	}
	if p1.Velocity != before1 || p2.Velocity != before2 {
		t.Error("rigid body members exchanged impulses")
	}
}

func TestSymmetryBreakingOnAxisAlignedStack(t *testing.T) {
	w := createTestWorld()

	// Perfect vertical alignment: the normal must be jittered and the
	// particles nudged so the stack cannot stay in a straight line
	p1 := w.AddParticle(mgl64.Vec2{5, 0}, 1, 10)
	p2 := w.AddParticle(mgl64.Vec2{5, 15}, 1, 10)

	w.Grid.Rebuild()
	w.ApplyCollisions(p1)

	if p1.Position.X() == 5 && p2.Position.X() == 5 {
		t.Error("still perfectly axis aligned after resolution")
	}
	if p2.Position.Sub(p1.Position).Len() < 20-3 {
		t.Errorf("stack not separated: distance %v", p2.Position.Sub(p1.Position).Len())
	}
}
