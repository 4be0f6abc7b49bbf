package particle

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestArenaAddGet(t *testing.T) {
	arena := NewArena()

	p1 := arena.Add(mgl64.Vec2{1, 2}, 5.0, 10.0)
	p2 := arena.Add(mgl64.Vec2{3, 4}, 2.0, 8.0)

	if p1.Id == p2.Id {
		t.Errorf("ids must be unique, both are %d", p1.Id)
	}
	if arena.Len() != 2 {
		t.Errorf("Len() = %d, want 2", arena.Len())
	}
	if got := arena.Get(p1.Id); got != p1 {
		t.Errorf("Get(%d) = %v, want %v", p1.Id, got, p1)
	}
	if got := arena.Get(9999); got != nil {
		t.Errorf("Get(unknown) = %v, want nil", got)
	}
}

func TestArenaRemove(t *testing.T) {
	arena := NewArena()

	p1 := arena.Add(mgl64.Vec2{0, 0}, 1, 1)
	p2 := arena.Add(mgl64.Vec2{1, 0}, 1, 1)
	p3 := arena.Add(mgl64.Vec2{2, 0}, 1, 1)

	arena.Remove(p2.Id)

	if arena.Len() != 2 {
		t.Errorf("Len() = %d, want 2", arena.Len())
	}
	if arena.Get(p2.Id) != nil {
		t.Error("removed particle still resolvable")
	}
	// Survivors stay resolvable after the swap-remove
	if arena.Get(p1.Id) != p1 || arena.Get(p3.Id) != p3 {
		t.Error("surviving particles no longer resolvable")
	}

	// Removing twice is a no-op
	arena.Remove(p2.Id)
	if arena.Len() != 2 {
		t.Errorf("Len() after double remove = %d, want 2", arena.Len())
	}
}

func TestArenaCompact(t *testing.T) {
	arena := NewArena()

	alive := arena.Add(mgl64.Vec2{0, 0}, 1, 1)
	dead1 := arena.Add(mgl64.Vec2{1, 0}, 1, 1)
	dead2 := arena.Add(mgl64.Vec2{2, 0}, 1, 1)

	dead1.Kill()
	dead2.Kill()

	removed := arena.Compact()

	if removed != 2 {
		t.Errorf("Compact() = %d, want 2", removed)
	}
	if arena.Len() != 1 {
		t.Errorf("Len() = %d, want 1", arena.Len())
	}
	if arena.Get(alive.Id) != alive {
		t.Error("living particle lost during compaction")
	}
}

func TestMovable(t *testing.T) {
	tests := []struct {
		name     string
		mass     float64
		pinned   bool
		grabbed  bool
		expected bool
	}{
		{"free particle", 1.0, false, false, true},
		{"pinned", 1.0, true, false, false},
		{"grabbed", 1.0, false, true, false},
		{"dead", 0.0, false, false, false},
		{"pinned and grabbed", 1.0, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Particle{Mass: tt.mass, Pinned: tt.pinned, Grabbed: tt.grabbed}
			if got := p.Movable(); got != tt.expected {
				t.Errorf("Movable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKill(t *testing.T) {
	p := &Particle{Mass: 3, Size: 7, Velocity: mgl64.Vec2{5, 5}}
	p.Kill()

	if p.Alive() {
		t.Error("particle still alive after Kill()")
	}
	if p.Size != 0 {
		t.Errorf("Size = %v, want 0", p.Size)
	}
	if p.Velocity.Len() != 0 {
		t.Errorf("Velocity = %v, want zero", p.Velocity)
	}
}
