package aero

import (
	"cmp"
	"slices"

	"github.com/san-kum/planefx/internal/capability"
)

// Surface is an aerodynamic part with its cached profile.
type Surface struct {
	Part    Part
	Profile Profile
}

// Emitter is a propulsion part that may trail a contrail.
type Emitter struct {
	Part Part
}

// Releaser hard-stops any effect owned by a part.
type Releaser interface {
	Release(key PartID) int
}

// Membership tracks which parts of a vehicle take part in the simulation.
type Membership struct {
	profiles *ProfileCache
	caps     capability.Lookup
	release  Releaser

	surfaces map[PartID]*Surface
	emitters map[PartID]*Emitter

	surfaceOrder []*Surface
	emitterOrder []*Emitter
	dirty        bool
}

func NewMembership(profiles *ProfileCache, caps capability.Lookup, release Releaser) *Membership {
	return &Membership{
		profiles: profiles,
		caps:     caps,
		release:  release,
		surfaces: make(map[PartID]*Surface),
		emitters: make(map[PartID]*Emitter),
	}
}

// Attach classifies part and registers it. Returns false for parts that are
// neither aerodynamic nor propulsion, or that are already registered.
func (m *Membership) Attach(part Part) bool {
	if part == nil {
		return false
	}
	id := part.ID()
	added := false

	if m.caps.IsPropulsionPart(part) {
		if _, ok := m.emitters[id]; !ok {
			m.emitters[id] = &Emitter{Part: part}
			added = true
		}
	}
	if m.caps.HasAerodynamicSurfaceBehavior(part) {
		if _, ok := m.surfaces[id]; !ok {
			m.surfaces[id] = &Surface{Part: part, Profile: m.profiles.ProfileOf(part)}
			added = true
		}
	}
	if added {
		m.dirty = true
	}
	return added
}

// Detach removes part from every set and stops its effects.
func (m *Membership) Detach(part Part) bool {
	if part == nil {
		return false
	}
	id := part.ID()
	_, isSurface := m.surfaces[id]
	_, isEmitter := m.emitters[id]
	if !isSurface && !isEmitter {
		return false
	}
	delete(m.surfaces, id)
	delete(m.emitters, id)
	if m.release != nil {
		m.release.Release(id)
	}
	m.dirty = true
	return true
}

// Surfaces returns the registered surfaces ordered by part id. The slice is
// shared until the next membership change; callers must not modify it.
func (m *Membership) Surfaces() []*Surface {
	m.refresh()
	return m.surfaceOrder
}

// Emitters returns the registered emitters ordered by part id.
func (m *Membership) Emitters() []*Emitter {
	m.refresh()
	return m.emitterOrder
}

func (m *Membership) Surface(id PartID) (*Surface, bool) {
	s, ok := m.surfaces[id]
	return s, ok
}

func (m *Membership) SurfaceCount() int { return len(m.surfaces) }
func (m *Membership) EmitterCount() int { return len(m.emitters) }

func (m *Membership) refresh() {
	if !m.dirty {
		return
	}
	m.surfaceOrder = make([]*Surface, 0, len(m.surfaces))
	for _, s := range m.surfaces {
		m.surfaceOrder = append(m.surfaceOrder, s)
	}
	slices.SortFunc(m.surfaceOrder, func(a, b *Surface) int {
		return cmp.Compare(a.Part.ID(), b.Part.ID())
	})

	m.emitterOrder = make([]*Emitter, 0, len(m.emitters))
	for _, e := range m.emitters {
		m.emitterOrder = append(m.emitterOrder, e)
	}
	slices.SortFunc(m.emitterOrder, func(a, b *Emitter) int {
		return cmp.Compare(a.Part.ID(), b.Part.ID())
	})
	m.dirty = false
}
