// Package effects owns the visual effect handles attached to one vehicle.
//
// A [Manager] maps every part to at most one live [Handle], tracks the
// vehicle-wide transonic handle, and parks soft-stopped handles in a
// [DeferredQueue] until their fade window has elapsed:
//
//	m := effects.NewManager(factory, effects.Config{StopDelay: 1800})
//	m.AssignOrUpdate(key, target, effects.Directive{Intensity: 0.4, Scale: 1.2})
//	m.Flush(tick)
//
// # Thread Safety
//
// A Manager is owned by a single vehicle core and is NOT thread-safe.
package effects

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrCreateFailed is returned when the render subsystem refuses a new effect.
// It is transient: callers skip the effect this tick and retry on the next.
var ErrCreateFailed = errors.New("effects: effect creation failed")

var errNoHandle = errors.New("no handle returned")

// Key is the stable identity of the part owning a handle.
type Key uint64

// RenderID addresses the render object an effect is attached to.
type RenderID uint64

// Handle is one live emitter instance. Implementations must be comparable
// (pointer types) since handles are tracked in maps.
type Handle interface {
	SetScale(scale float64)
	SetVelocity(v mgl64.Vec3)
	// StopEmitting stops spawning new particles and lets existing ones fade.
	StopEmitting()
	// Stop releases the emitter immediately.
	Stop()
}

type Factory interface {
	CreateEffect(name string, anchor mgl64.Mat4, target RenderID) (Handle, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(name string, anchor mgl64.Mat4, target RenderID) (Handle, error)

func (f FactoryFunc) CreateEffect(name string, anchor mgl64.Mat4, target RenderID) (Handle, error) {
	return f(name, anchor, target)
}

// Kind labels what an effect is used for.
type Kind string

const (
	KindSurface   Kind = "surface"
	KindTransonic Kind = "transonic"
	KindContrail  Kind = "contrail"
)

// Directive is the per-tick request for one surface's vapor effect.
// Intensity at or below zero means no visible vapor.
type Directive struct {
	Intensity float64
	Scale     float64
	Velocity  mgl64.Vec3
}
