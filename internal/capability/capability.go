// Package capability resolves which behaviours a part definition carries.
// Answers are declared up front or resolved once per definition and cached.
package capability

import "sync"

type Behavior uint8

const (
	Aerodynamic Behavior = 1 << iota
	Propulsion
)

func (b Behavior) Has(flag Behavior) bool { return b&flag != 0 }

func (b Behavior) String() string {
	switch b {
	case 0:
		return "none"
	case Aerodynamic:
		return "aerodynamic"
	case Propulsion:
		return "propulsion"
	case Aerodynamic | Propulsion:
		return "aerodynamic+propulsion"
	default:
		return "unknown"
	}
}

// Part is the minimum a capability lookup needs from a vehicle part.
type Part interface {
	DefinitionID() string
}

// Lookup is the interface the aero core classifies parts through.
type Lookup interface {
	HasAerodynamicSurfaceBehavior(p Part) bool
	IsPropulsionPart(p Part) bool
}

// Resolver computes the behaviour of a definition that was never declared.
type Resolver func(definitionID string) Behavior

type Registry struct {
	mu       sync.RWMutex
	declared map[string]Behavior
	resolved map[string]Behavior
	resolver Resolver
}

// NewRegistry creates a registry. resolver may be nil, in which case
// undeclared definitions have no behaviour.
func NewRegistry(resolver Resolver) *Registry {
	return &Registry{
		declared: make(map[string]Behavior),
		resolved: make(map[string]Behavior),
		resolver: resolver,
	}
}

// Declare records the behaviour of a definition, replacing any cached answer.
func (r *Registry) Declare(definitionID string, b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.declared[definitionID] = b
	delete(r.resolved, definitionID)
}

func (r *Registry) Resolve(definitionID string) Behavior {
	r.mu.RLock()
	if b, ok := r.declared[definitionID]; ok {
		r.mu.RUnlock()
		return b
	}
	if b, ok := r.resolved[definitionID]; ok {
		r.mu.RUnlock()
		return b
	}
	r.mu.RUnlock()

	var b Behavior
	if r.resolver != nil {
		b = r.resolver(definitionID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.resolved[definitionID]; ok {
		return existing
	}
	r.resolved[definitionID] = b
	return b
}

func (r *Registry) HasAerodynamicSurfaceBehavior(p Part) bool {
	return r.Resolve(p.DefinitionID()).Has(Aerodynamic)
}

func (r *Registry) IsPropulsionPart(p Part) bool {
	return r.Resolve(p.DefinitionID()).Has(Propulsion)
}

// Resolved returns how many undeclared definitions have been cached.
func (r *Registry) Resolved() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resolved)
}
