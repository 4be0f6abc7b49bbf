package granule

import (
	"math"

	"github.com/akmonengine/granule/constraint"
	"github.com/akmonengine/granule/geo"
	"github.com/akmonengine/granule/particle"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - Coordinates of a cell in 2D space
type CellKey struct {
	X, Y int
}

// cell holds the particles and joints whose bounds cover it
type cell struct {
	particles []*particle.Particle
	joints    []*constraint.Joint
}

// SpatialGrid - Uniform hashed grid used as the broad phase for both
// particle neighborhood queries and joint segment queries
type SpatialGrid struct {
	cellSize float64
	cells    []cell
	cellMask int

	// jointBounds caches the inflated AABB each joint was registered with
	jointBounds map[int]geo.AABB

	// JointSource provides the current joints for ReindexJoints.
	// Wired by the World.
	JointSource func() []*constraint.Joint

	src *particle.Arena
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid creates a new spatial grid over the given arena
func NewSpatialGrid(cellSize float64, numCells int, src *particle.Arena) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	return &SpatialGrid{
		cellSize:    cellSize,
		cells:       make([]cell, numCells),
		cellMask:    numCells - 1,
		jointBounds: make(map[int]geo.AABB),
		src:         src,
	}
}

// nextPowerOfTwo rounds up to the next power of 2
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Clear empties both layers of the grid
func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].particles = sg.cells[i].particles[:0]
		sg.cells[i].joints = sg.cells[i].joints[:0]
	}
	clear(sg.jointBounds)
}

// InsertParticle registers a particle in every cell its bounds cover
func (sg *SpatialGrid) InsertParticle(p *particle.Particle) {
	aabb := geo.FromCircle(p.Position, p.Size)
	sg.eachCell(aabb, func(c *cell) {
		c.particles = append(c.particles, p)
	})
}

// InsertJoint registers a joint segment in every cell its bounds cover
func (sg *SpatialGrid) InsertJoint(j *constraint.Joint) {
	a := sg.src.Get(j.A)
	b := sg.src.Get(j.B)
	if a == nil || b == nil {
		return
	}

	aabb := geo.FromSegment(a.Position, b.Position, math.Max(a.Size, b.Size))
	sg.jointBounds[j.Id] = aabb
	sg.eachCell(aabb, func(c *cell) {
		c.joints = append(c.joints, j)
	})
}

// Rebuild clears the grid and reinserts every particle and joint
func (sg *SpatialGrid) Rebuild() {
	sg.Clear()
	for _, p := range sg.src.All() {
		if p.Alive() {
			sg.InsertParticle(p)
		}
	}
	sg.ReindexJoints()
}

// ReindexJoints re-registers all current joints at their current endpoint
// positions. Must run before crossing queries, the joint layer is rebuilt
// per step, never maintained incrementally.
func (sg *SpatialGrid) ReindexJoints() {
	for i := range sg.cells {
		sg.cells[i].joints = sg.cells[i].joints[:0]
	}
	clear(sg.jointBounds)

	if sg.JointSource == nil {
		return
	}
	for _, j := range sg.JointSource() {
		sg.InsertJoint(j)
	}
}

// Neighbors returns the particles whose bounds are within radius of the point
func (sg *SpatialGrid) Neighbors(point mgl64.Vec2, radius float64) []*particle.Particle {
	query := geo.FromCircle(point, radius)

	var result []*particle.Particle
	seen := map[int]bool{}

	sg.eachCell(query, func(c *cell) {
		for _, p := range c.particles {
			if seen[p.Id] {
				continue
			}
			seen[p.Id] = true

			if p.Position.Sub(point).Len() <= radius+p.Size {
				result = append(result, p)
			}
		}
	})

	return result
}

// JointsNear returns the joints whose registered bounds overlap the circle
func (sg *SpatialGrid) JointsNear(point mgl64.Vec2, radius float64) []*constraint.Joint {
	query := geo.FromCircle(point, radius)

	var result []*constraint.Joint
	seen := map[int]bool{}

	sg.eachCell(query, func(c *cell) {
		for _, j := range c.joints {
			if seen[j.Id] {
				continue
			}
			seen[j.Id] = true

			if sg.jointBounds[j.Id].Overlaps(query) {
				result = append(result, j)
			}
		}
	})

	return result
}

// NearbyJoints returns the joints whose bounds overlap the given joint's
// bounds. Part of the constraint.JointIndex contract.
func (sg *SpatialGrid) NearbyJoints(j *constraint.Joint) []*constraint.Joint {
	bounds, ok := sg.jointBounds[j.Id]
	if !ok {
		return nil
	}

	var result []*constraint.Joint
	seen := map[int]bool{j.Id: true}

	sg.eachCell(bounds, func(c *cell) {
		for _, other := range c.joints {
			if seen[other.Id] {
				continue
			}
			seen[other.Id] = true

			if sg.jointBounds[other.Id].Overlaps(bounds) {
				result = append(result, other)
			}
		}
	})

	return result
}

// eachCell visits every cell covered by the AABB exactly once
func (sg *SpatialGrid) eachCell(aabb geo.AABB, fn func(c *cell)) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	visited := map[int]bool{}
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			idx := sg.hashCell(CellKey{x, y})
			if visited[idx] {
				continue
			}
			visited[idx] = true
			fn(&sg.cells[idx])
		}
	}
}

// worldToCell converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
	}
}

// hashCell hashes a cell to an index in the array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663)
	return h & sg.cellMask
}
