// Package render provides an in-memory effect subsystem that records every
// call made against it. Offline scenario runs and tests use it in place of a
// real particle renderer.
package render

import (
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/planefx/internal/effects"
)

var ErrRefused = errors.New("render: effect refused")

// Effect is one recorded emitter instance.
type Effect struct {
	ID       int
	Name     string
	Anchor   mgl64.Mat4
	Target   effects.RenderID
	Scale    float64
	Velocity mgl64.Vec3
	Emitting bool
	Stopped  bool

	rec *Recorder
}

func (e *Effect) SetScale(scale float64) {
	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	e.Scale = scale
	e.rec.stats.ScaleUpdates++
}

func (e *Effect) SetVelocity(v mgl64.Vec3) {
	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	e.Velocity = v
}

func (e *Effect) StopEmitting() {
	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	if !e.Emitting {
		return
	}
	e.Emitting = false
	e.rec.stats.SoftStops++
}

func (e *Effect) Stop() {
	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	if e.Stopped {
		e.rec.stats.DoubleStops++
		return
	}
	e.Emitting = false
	e.Stopped = true
	e.rec.stats.HardStops++
}

// Stats counts calls made against a Recorder.
type Stats struct {
	Created      int `json:"created"`
	Refused      int `json:"refused"`
	HardStops    int `json:"hard_stops"`
	SoftStops    int `json:"soft_stops"`
	DoubleStops  int `json:"double_stops"`
	ScaleUpdates int `json:"scale_updates"`
}

// Recorder implements effects.Factory.
type Recorder struct {
	mu      sync.Mutex
	effects []*Effect
	stats   Stats
	refuse  func(name string) bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// RefuseWhen makes CreateEffect fail whenever fn returns true.
func (r *Recorder) RefuseWhen(fn func(name string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refuse = fn
}

func (r *Recorder) CreateEffect(name string, anchor mgl64.Mat4, target effects.RenderID) (effects.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refuse != nil && r.refuse(name) {
		r.stats.Refused++
		return nil, ErrRefused
	}
	e := &Effect{
		ID:       len(r.effects),
		Name:     name,
		Anchor:   anchor,
		Target:   target,
		Emitting: true,
		rec:      r,
	}
	r.effects = append(r.effects, e)
	r.stats.Created++
	return e, nil
}

func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Effects returns every effect ever created, in creation order.
func (r *Recorder) Effects() []*Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Effect, len(r.effects))
	copy(out, r.effects)
	return out
}

// Active returns effects that have not been hard-stopped.
func (r *Recorder) Active() []*Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Effect
	for _, e := range r.effects {
		if !e.Stopped {
			out = append(out, e)
		}
	}
	return out
}

// Named returns the effects created under name.
func (r *Recorder) Named(name string) []*Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Effect
	for _, e := range r.effects {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
