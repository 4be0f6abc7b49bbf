package particle

import "github.com/go-gl/mathgl/mgl64"

// Arena owns all particles and maps stable ids to live entries.
// Joints and caches reference particles by id, never by pointer, so removing
// a particle cannot leave a dangling reference.
type Arena struct {
	particles []*Particle
	index     map[int]int // id -> position in particles
	nextId    int
}

// NewArena creates an empty particle arena
func NewArena() *Arena {
	return &Arena{
		particles: make([]*Particle, 0, 64),
		index:     make(map[int]int),
	}
}

// Add creates a particle at the given position and returns it
func (a *Arena) Add(position mgl64.Vec2, mass, size float64) *Particle {
	p := &Particle{
		Id:                 a.nextId,
		Position:           position,
		PrePhysicsPosition: position,
		Mass:               mass,
		Size:               size,
	}
	a.nextId++

	a.index[p.Id] = len(a.particles)
	a.particles = append(a.particles, p)

	return p
}

// Get returns the particle with the given id, or nil if it does not exist
func (a *Arena) Get(id int) *Particle {
	i, ok := a.index[id]
	if !ok {
		return nil
	}
	return a.particles[i]
}

// Remove deletes the particle with the given id.
// The last entry is swapped into the freed slot, order is not preserved.
func (a *Arena) Remove(id int) {
	i, ok := a.index[id]
	if !ok {
		return
	}

	last := len(a.particles) - 1
	a.particles[i] = a.particles[last]
	a.index[a.particles[i].Id] = i
	a.particles = a.particles[:last]
	delete(a.index, id)
}

// Compact removes every dead particle and returns how many were pruned
func (a *Arena) Compact() int {
	removed := 0
	for i := 0; i < len(a.particles); {
		if a.particles[i].Alive() {
			i++
			continue
		}
		a.Remove(a.particles[i].Id)
		removed++
	}
	return removed
}

// All returns the live particle slice. Callers must not append to it.
func (a *Arena) All() []*Particle {
	return a.particles
}

// Len returns the number of particles in the arena
func (a *Arena) Len() int {
	return len(a.particles)
}
