// Package atmosphere answers air density queries against a registry of
// atmosphere-bearing bodies.
package atmosphere

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Body is a sphere of influence with its own density function.
type Body interface {
	Center() mgl64.Vec3
	AtmosphereRadius() float64
	DensityAt(p mgl64.Vec3) float64
	// Closed reports that the body has been removed from the world. Closed
	// bodies are dropped from the registry on the next query.
	Closed() bool
}

// Registry is shared by every vehicle of a world. Bodies are kept in
// registration order and overlapping atmospheres resolve to the first match.
type Registry struct {
	mu     sync.Mutex
	bodies []Body
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(b Body) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, b)
}

// OnEntityAdd registers entity if it is a Body and reports whether it was.
func (r *Registry) OnEntityAdd(entity any) bool {
	b, ok := entity.(Body)
	if !ok {
		return false
	}
	r.Add(b)
	return true
}

// DensityAt returns the density of the first registered body whose
// atmosphere contains p, or 0 when p is in vacuum.
func (r *Registry) DensityAt(p mgl64.Vec3) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.bodies[:0]
	var (
		found  Body
		pruned bool
	)
	for _, b := range r.bodies {
		if b.Closed() {
			pruned = true
			continue
		}
		live = append(live, b)
		if found != nil {
			continue
		}
		radius := b.AtmosphereRadius()
		d := p.Sub(b.Center())
		if d.Dot(d) <= radius*radius {
			found = b
		}
	}
	if pruned {
		clear(r.bodies[len(live):])
	}
	r.bodies = live

	if found == nil {
		return 0
	}
	d := found.DensityAt(p)
	if d < 0 {
		return 0
	}
	return d
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}
