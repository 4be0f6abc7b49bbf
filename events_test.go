package granule

import (
	"testing"

	"github.com/akmonengine/granule/particle"
	"github.com/go-gl/mathgl/mgl64"
)

func TestEventsBufferedUntilFlush(t *testing.T) {
	events := NewEvents()
	a := &particle.Particle{Id: 1, Position: mgl64.Vec2{0, 0}}
	b := &particle.Particle{Id: 2, Position: mgl64.Vec2{1, 0}}

	var received []Event
	events.Subscribe(COLLISION, func(event Event) {
		received = append(received, event)
	})

	events.emitCollision(a, b, true)
	events.emitCollision(b, a, false)

	if len(received) != 0 {
		t.Fatal("events delivered before flush")
	}

	events.flush()

	if len(received) != 2 {
		t.Fatalf("got %d events after flush, want 2", len(received))
	}
	first := received[0].(CollisionEvent)
	if first.A != a || first.B != b || !first.ResponseEnabled {
		t.Error("first collision event fields do not match the emit")
	}
	second := received[1].(CollisionEvent)
	if second.ResponseEnabled {
		t.Error("second collision event should carry ResponseEnabled=false")
	}
}

func TestEventsFilteredByType(t *testing.T) {
	events := NewEvents()
	a := &particle.Particle{Id: 1}
	b := &particle.Particle{Id: 2}

	var collisions, eats int
	events.Subscribe(COLLISION, func(event Event) { collisions++ })
	events.Subscribe(PARTICLE_EATEN, func(event Event) { eats++ })

	events.emitCollision(a, b, true)
	events.emitParticleEaten(a, b)
	events.flush()

	if collisions != 1 || eats != 1 {
		t.Errorf("collisions = %d, eats = %d, want 1 and 1", collisions, eats)
	}
}

func TestEventsBufferClearedByFlush(t *testing.T) {
	events := NewEvents()
	a := &particle.Particle{Id: 1}
	b := &particle.Particle{Id: 2}

	var count int
	events.Subscribe(COLLISION, func(event Event) { count++ })

	events.emitCollision(a, b, true)
	events.flush()
	events.flush()

	if count != 1 {
		t.Errorf("second flush re-delivered events, count = %d", count)
	}
}

func TestEventsMultipleListeners(t *testing.T) {
	events := NewEvents()

	var first, second bool
	events.Subscribe(JOINT_BREAK, func(event Event) { first = true })
	events.Subscribe(JOINT_BREAK, func(event Event) { second = true })

	events.emitJointBreak(nil)
	events.flush()

	if !first || !second {
		t.Error("not every subscribed listener was called")
	}
}
