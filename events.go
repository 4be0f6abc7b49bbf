package granule

import (
	"github.com/akmonengine/granule/constraint"
	"github.com/akmonengine/granule/particle"
)

const (
	COLLISION EventType = iota
	JOINT_BREAK
	PARTICLE_EATEN
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollisionEvent is emitted for every overlapping particle pair, whether or
// not collision response is enabled, so observers (audio, scoring) always
// see the contact
type CollisionEvent struct {
	A *particle.Particle
	B *particle.Particle

	ResponseEnabled bool
}

func (e CollisionEvent) Type() EventType { return COLLISION }

// JointBreakEvent is emitted when a joint breaks under stress
type JointBreakEvent struct {
	Joint *constraint.Joint
}

func (e JointBreakEvent) Type() EventType { return JOINT_BREAK }

// ParticleEatenEvent is emitted in eat mode when the heavier of a colliding
// pair absorbs the lighter one
type ParticleEatenEvent struct {
	Eater *particle.Particle
	Eaten *particle.Particle
}

func (e ParticleEatenEvent) Type() EventType { return PARTICLE_EATEN }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// emitCollision records a contact between two particles
func (e *Events) emitCollision(a, b *particle.Particle, responseEnabled bool) {
	e.buffer = append(e.buffer, CollisionEvent{A: a, B: b, ResponseEnabled: responseEnabled})
}

// emitJointBreak records a stress break
func (e *Events) emitJointBreak(j *constraint.Joint) {
	e.buffer = append(e.buffer, JointBreakEvent{Joint: j})
}

// emitParticleEaten records an eat-mode absorption
func (e *Events) emitParticleEaten(eater, eaten *particle.Particle) {
	e.buffer = append(e.buffer, ParticleEatenEvent{Eater: eater, Eaten: eaten})
}

// flush delivers the buffered events to the subscribed listeners.
// Called at the end of every step.
func (e *Events) flush() {
	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
