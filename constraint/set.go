package constraint

// Set owns the active joints and the rigid-body grouping built on top of them
type Set struct {
	src ParticleSource

	joints []*Joint
	byId   map[int]*Joint
	nextId int

	// version increments on every topology change (create/remove/break);
	// cached groups and the adjacency list are stale when their version lags
	version uint64

	adjacency        map[int][]*Joint
	adjacencyVersion uint64

	groups map[int]*group
}

type group struct {
	version uint64
	members map[int]bool
}

// NewSet creates an empty joint set backed by the given particle source
func NewSet(src ParticleSource) *Set {
	return &Set{
		src:              src,
		byId:             make(map[int]*Joint),
		adjacency:        make(map[int][]*Joint),
		adjacencyVersion: ^uint64(0),
		groups:           make(map[int]*group),
	}
}

// Create adds a joint between two particles.
// RestLength defaults to the current distance, Tolerance to 1 (unbreakable).
func (s *Set) Create(a, b int) *Joint {
	j := &Joint{
		Id:        s.nextId,
		A:         a,
		B:         b,
		Tolerance: 1,
	}
	s.nextId++
	j.RestLength = j.Length(s.src)

	s.joints = append(s.joints, j)
	s.byId[j.Id] = j
	s.Touch()

	return j
}

// Remove deletes the joint with the given id
func (s *Set) Remove(id int) {
	j, ok := s.byId[id]
	if !ok {
		return
	}

	for i, candidate := range s.joints {
		if candidate == j {
			s.joints = append(s.joints[:i], s.joints[i+1:]...)
			break
		}
	}
	delete(s.byId, id)
	s.Touch()
}

// Get returns the joint with the given id, or nil
func (s *Set) Get(id int) *Joint {
	return s.byId[id]
}

// Joints returns the active joint slice. Callers must not append to it.
func (s *Set) Joints() []*Joint {
	return s.joints
}

// HasJoint reports whether any active valid joint references the particle
func (s *Set) HasJoint(particleId int) bool {
	for _, j := range s.adjacentJoints(particleId) {
		if j.Validate(s.src) {
			return true
		}
	}
	return false
}

// Touch bumps the topology version, invalidating cached groups.
// Called internally on create/remove; the solver calls it when a joint breaks.
func (s *Set) Touch() {
	s.version++
}

// Prune removes every invalid joint (broken or with a dead endpoint)
// and returns the removed joints
func (s *Set) Prune() []*Joint {
	var removed []*Joint

	n := 0
	for _, j := range s.joints {
		if j.Validate(s.src) {
			s.joints[n] = j
			n++
			continue
		}
		delete(s.byId, j.Id)
		removed = append(removed, j)
	}
	s.joints = s.joints[:n]

	if len(removed) > 0 {
		s.Touch()
	}

	return removed
}

// adjacentJoints returns the joints referencing a particle,
// rebuilding the adjacency list when the topology changed
func (s *Set) adjacentJoints(particleId int) []*Joint {
	if s.adjacencyVersion != s.version {
		clear(s.adjacency)
		for _, j := range s.joints {
			s.adjacency[j.A] = append(s.adjacency[j.A], j)
			s.adjacency[j.B] = append(s.adjacency[j.B], j)
		}
		s.adjacencyVersion = s.version
	}

	return s.adjacency[particleId]
}

// Group returns the set of particle ids transitively connected to the given
// particle through valid joints, the particle itself included.
//
// The computed set object is cached and shared by every member, so a
// follow-up lookup for any member of the same rigid body is O(1).
func (s *Set) Group(particleId int) map[int]bool {
	if cached, ok := s.groups[particleId]; ok && cached.version == s.version {
		return cached.members
	}

	// Breadth-first traversal over valid joints
	members := map[int]bool{particleId: true}
	queue := []int{particleId}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, j := range s.adjacentJoints(current) {
			if !j.Validate(s.src) {
				continue
			}

			next := j.A
			if next == current {
				next = j.B
			}
			if members[next] {
				continue
			}

			members[next] = true
			queue = append(queue, next)
		}
	}

	entry := &group{version: s.version, members: members}
	for id := range members {
		s.groups[id] = entry
	}

	return members
}

// SameRigidBody reports whether two particles belong to the same rigid body:
// directly jointed, or mutually reachable in the valid-joint graph
func (s *Set) SameRigidBody(a, b int) bool {
	for _, j := range s.adjacentJoints(a) {
		if j.Has(b) && j.Validate(s.src) {
			return true
		}
	}

	return s.Group(a)[b]
}
