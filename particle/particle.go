package particle

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Particle represents a point mass in the simulation
type Particle struct {
	// Stable identity, assigned by the Arena
	Id int

	// Spatial state
	PrePhysicsPosition mgl64.Vec2
	Position           mgl64.Vec2
	Velocity           mgl64.Vec2 // (units/s)
	Acceleration       mgl64.Vec2 // reset each step by the force pass

	// Physical properties
	Mass float64 // 0 means dead/eaten
	Size float64 // collision radius

	// Pinned particles never move but still collide.
	// Grabbed particles are user-controlled: they push others, never get pushed.
	Pinned  bool
	Grabbed bool
}

// Alive reports whether the particle still participates in the simulation
func (p *Particle) Alive() bool {
	return p.Mass > 0
}

// Movable reports whether the solver is allowed to displace the particle
func (p *Particle) Movable() bool {
	return p.Alive() && !p.Pinned && !p.Grabbed
}

// Speed returns the magnitude of the velocity
func (p *Particle) Speed() float64 {
	return p.Velocity.Len()
}

// Kill marks the particle dead; the arena prunes it on the next maintenance pass
func (p *Particle) Kill() {
	p.Mass = 0
	p.Size = 0
	p.Velocity = mgl64.Vec2{}
}
