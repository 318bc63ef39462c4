// Package world owns the services shared by every simulated vehicle and
// drives their aero cores once per frame.
package world

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/san-kum/planefx/internal/aero"
	"github.com/san-kum/planefx/internal/atmosphere"
	"github.com/san-kum/planefx/internal/capability"
	"github.com/san-kum/planefx/internal/config"
	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/telemetry"
)

var (
	ErrDuplicateVehicle = errors.New("world: vehicle already registered")
	ErrUnknownVehicle   = errors.New("world: vehicle not registered")
	ErrClosed           = errors.New("world: closed")
)

// Notifier delivers a short message to whoever is piloting a vehicle.
// Implementations must not block the tick.
type Notifier interface {
	Notify(vehicle, msg string)
}

type NotifierFunc func(vehicle, msg string)

func (f NotifierFunc) Notify(vehicle, msg string) { f(vehicle, msg) }

type Options struct {
	Tuning       config.Tuning
	Factory      effects.Factory
	Capabilities *capability.Registry
	Logger       zerolog.Logger
	Telemetry    *telemetry.Instruments
	Notifier     Notifier
}

// VehicleReport is the outcome of one vehicle's tick.
type VehicleReport struct {
	Name   string
	Report aero.TickReport
	Err    error
}

type entry struct {
	name string
	core *aero.Core
}

// World is a simulation session. Vehicles are ticked sequentially in
// registration order; the atmosphere registry and profile cache are shared.
type World struct {
	mu       sync.Mutex
	opts     Options
	air      *atmosphere.Registry
	profiles *aero.ProfileCache
	caps     *capability.Registry
	log      zerolog.Logger

	vehicles []*entry
	byName   map[string]*entry
	closed   bool
}

func New(opts Options) (*World, error) {
	if opts.Factory == nil {
		return nil, errors.New("world: effect factory is required")
	}
	if opts.Tuning == (config.Tuning{}) {
		opts.Tuning = config.DefaultTuning()
	}
	if err := opts.Tuning.Validate(); err != nil {
		return nil, err
	}
	if opts.Capabilities == nil {
		opts.Capabilities = capability.NewRegistry(nil)
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.Default()
	}

	return &World{
		opts:     opts,
		air:      atmosphere.NewRegistry(),
		profiles: aero.NewProfileCache(),
		caps:     opts.Capabilities,
		log:      opts.Logger.With().Str("component", "world").Logger(),
		byName:   make(map[string]*entry),
	}, nil
}

func (w *World) Atmosphere() *atmosphere.Registry   { return w.air }
func (w *World) Profiles() *aero.ProfileCache       { return w.profiles }
func (w *World) Capabilities() *capability.Registry { return w.caps }

// OnEntityAdd is the host's entity creation hook. Atmosphere bodies are
// registered; everything else is ignored.
func (w *World) OnEntityAdd(entity any) bool {
	if w.air.OnEntityAdd(entity) {
		w.log.Debug().Int("bodies", w.air.Len()).Msg("atmosphere body registered")
		return true
	}
	return false
}

// AddVehicle creates an aero core for v under name.
func (w *World) AddVehicle(name string, v aero.Vehicle) (*aero.Core, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	if _, ok := w.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVehicle, name)
	}

	core := aero.NewCore(v, aero.Options{
		Atmosphere:   w.air,
		Profiles:     w.profiles,
		Capabilities: w.caps,
		Factory:      w.opts.Factory,
		Tuning:       w.opts.Tuning,
		Logger:       w.opts.Logger.With().Str("component", "aero").Str("vehicle", name).Logger(),
		Telemetry:    w.opts.Telemetry,
	})
	e := &entry{name: name, core: core}
	w.vehicles = append(w.vehicles, e)
	w.byName[name] = e

	w.log.Info().Str("vehicle", name).Int("vehicles", len(w.vehicles)).Msg("vehicle registered")
	return core, nil
}

// RemoveVehicle stops every effect of the named vehicle and forgets it.
func (w *World) RemoveVehicle(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVehicle, name)
	}
	delete(w.byName, name)
	for i, v := range w.vehicles {
		if v == e {
			w.vehicles = append(w.vehicles[:i], w.vehicles[i+1:]...)
			break
		}
	}
	stopped := e.core.Close()
	w.log.Info().Str("vehicle", name).Int("stopped", stopped).Msg("vehicle unregistered")
	return nil
}

func (w *World) Vehicle(name string) (*aero.Core, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byName[name]
	if !ok {
		return nil, false
	}
	return e.core, true
}

func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.vehicles)
}

// Tick advances every vehicle by one frame. A vehicle whose tick fails is
// logged, counted and its pilot notified; the others still run. The
// returned error is non-nil only when ctx is done.
func (w *World) Tick(ctx context.Context) ([]VehicleReport, error) {
	w.mu.Lock()
	vehicles := make([]*entry, len(w.vehicles))
	copy(vehicles, w.vehicles)
	w.mu.Unlock()

	reports := make([]VehicleReport, 0, len(vehicles))
	for _, e := range vehicles {
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}

		r, err := e.core.Tick()
		if err != nil {
			w.fail(e.name, err)
		}
		reports = append(reports, VehicleReport{Name: e.name, Report: r, Err: err})
	}
	return reports, nil
}

func (w *World) fail(name string, err error) {
	ev := w.log.Error().Err(err).Str("vehicle", name)
	var te *aero.TickError
	if errors.As(err, &te) {
		ev = ev.Uint64("tick", te.Tick).Str("stage", string(te.Stage))
	}
	ev.Msg("vehicle tick failed")

	w.opts.Telemetry.TickFailed(name)
	if w.opts.Notifier != nil {
		w.opts.Notifier.Notify(name, "Aerodynamics update failed: "+err.Error())
	}
}

// Close tears down every vehicle. Further AddVehicle calls fail.
func (w *World) Close() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, e := range w.vehicles {
		n += e.core.Close()
	}
	w.vehicles = nil
	w.byName = make(map[string]*entry)
	w.closed = true
	return n
}
