package aero

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/planefx/internal/capability"
	"github.com/san-kum/planefx/internal/config"
	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/telemetry"
	"github.com/san-kum/planefx/internal/vmath"
)

// SkipReason tells why a tick stopped before the lift and contrail stages.
type SkipReason uint8

const (
	SkipNone SkipReason = iota
	SkipNoSurfaces
	SkipStatic
	SkipSlow
	SkipThinAir
)

func (s SkipReason) String() string {
	switch s {
	case SkipNone:
		return "none"
	case SkipNoSurfaces:
		return "no-surfaces"
	case SkipStatic:
		return "static"
	case SkipSlow:
		return "slow"
	case SkipThinAir:
		return "thin-air"
	default:
		return "unknown"
	}
}

// SurfaceSample is the lift computed for one planar surface in a tick.
type SurfaceSample struct {
	ID              PartID
	AngleOfAttack   float64
	LiftCoefficient float64
	LiftForce       float64
	Intensity       float64
	Effect          bool
}

// TickReport describes what one tick computed and did. MaxIntensity is the
// strongest positive lift intensity, or zero.
type TickReport struct {
	Tick           uint64
	Skip           SkipReason
	Speed          float64
	Density        float64
	SpeedOfSound   float64
	Transonic      bool
	TransonicScale float64
	Contrails      bool
	Surfaces       []SurfaceSample
	MaxIntensity   float64
	Cleared        int
	CreateFailures int
	Flushed        int
}

// Mach is Speed over SpeedOfSound, zero when no speed of sound was computed.
func (r TickReport) Mach() float64 {
	if r.SpeedOfSound == 0 {
		return 0
	}
	return r.Speed / r.SpeedOfSound
}

// Options wires a Core to its shared services.
type Options struct {
	Atmosphere   DensitySource
	Profiles     *ProfileCache
	Capabilities capability.Lookup
	Factory      effects.Factory
	Tuning       config.Tuning
	Logger       zerolog.Logger
	Telemetry    *telemetry.Instruments
}

// Core is the per-vehicle simulation engine.
type Core struct {
	vehicle Vehicle
	air     DensitySource
	effects *effects.Manager
	members *Membership
	tuning  config.Tuning
	log     zerolog.Logger
}

type vacuum struct{}

func (vacuum) DensityAt(mgl64.Vec3) float64 { return 0 }

// NewCore builds a core for v. Unset options fall back to defaults; a nil
// Atmosphere means vacuum.
func NewCore(v Vehicle, opts Options) *Core {
	if opts.Atmosphere == nil {
		opts.Atmosphere = vacuum{}
	}
	if opts.Profiles == nil {
		opts.Profiles = NewProfileCache()
	}
	if opts.Capabilities == nil {
		opts.Capabilities = capability.NewRegistry(nil)
	}
	if opts.Tuning == (config.Tuning{}) {
		opts.Tuning = config.DefaultTuning()
	}

	mgr := effects.NewManager(opts.Factory, effects.Config{
		Names: effects.Names{
			Vapor:     opts.Tuning.Effects.Vapor,
			Transonic: opts.Tuning.Effects.Transonic,
			Contrail:  opts.Tuning.Effects.Contrail,
		},
		StopDelay: opts.Tuning.DeferredStopDelayTicks,
		Logger:    opts.Logger,
		Telemetry: opts.Telemetry,
	})

	return &Core{
		vehicle: v,
		air:     opts.Atmosphere,
		effects: mgr,
		members: NewMembership(opts.Profiles, opts.Capabilities, mgr),
		tuning:  opts.Tuning,
		log:     opts.Logger,
	}
}

func (c *Core) Vehicle() Vehicle          { return c.vehicle }
func (c *Core) Effects() *effects.Manager { return c.effects }
func (c *Core) Membership() *Membership   { return c.members }

// Attach registers a newly added part. Non-aerodynamic, non-propulsion parts
// are ignored.
func (c *Core) Attach(part Part) bool {
	return c.logMembership("attached", part, c.members.Attach(part))
}

// Detach unregisters a removed part and hard-stops its effects.
func (c *Core) Detach(part Part) bool {
	return c.logMembership("detached", part, c.members.Detach(part))
}

// Close stops every effect owned by the vehicle, including fading ones.
func (c *Core) Close() int {
	return c.effects.Close()
}

func (c *Core) logMembership(action string, part Part, changed bool) bool {
	if changed {
		c.log.Debug().
			Uint64("part", uint64(part.ID())).
			Str("definition", part.DefinitionID()).
			Int("surfaces", c.members.SurfaceCount()).
			Int("emitters", c.members.EmitterCount()).
			Msg("part " + action)
	}
	return changed
}

// Tick advances the vehicle's effects by one frame. A runtime failure
// abandons the tick and is returned as a *TickError; handle bookkeeping is
// only ever changed through the effect manager, so it stays consistent.
func (c *Core) Tick() (report TickReport, err error) {
	var tick uint64
	stage := StageSetup
	defer func() {
		if r := recover(); r != nil {
			err = &TickError{Tick: tick, Stage: stage, Wrapped: fmt.Errorf("%w: %v", ErrTickPanic, r)}
		}
	}()

	tick = c.vehicle.Tick()
	report.Tick = tick
	report.Skip = c.simulate(tick, &report, &stage)

	stage = StageCleanup
	report.Flushed = c.effects.Flush(tick)
	return report, nil
}

func (c *Core) simulate(tick uint64, r *TickReport, stage *Stage) SkipReason {
	t := c.tuning
	if c.members.SurfaceCount() == 0 {
		return SkipNoSurfaces
	}
	if c.vehicle.IsStatic() {
		return SkipStatic
	}

	*stage = StageAirflow
	world := c.vehicle.WorldMatrix()
	position := vmath.Translation(world)
	velocity := c.vehicle.LinearVelocity()
	local := vmath.WorldToLocal(velocity.Add(position), world)
	speed := local.Len()
	r.Speed = speed
	if speed < t.MinAirspeed {
		return SkipSlow
	}
	drag := local.Mul(-1 / speed)

	*stage = StageDensity
	density := c.air.DensityAt(position)
	r.Density = density
	if density <= t.AtmosphereClearThreshold {
		r.Cleared = c.effects.ClearAll(tick)
		return SkipThinAir
	}
	r.SpeedOfSound = SpeedOfSound(density, t.MinSpeedOfSound)

	*stage = StageTransonic
	c.updateTransonic(r, speed)

	*stage = StageLift
	c.updateLift(r, world, velocity, drag, speed, density)

	*stage = StageContrail
	c.updateContrails(r, tick, density, speed)
	return SkipNone
}

func (c *Core) updateTransonic(r *TickReport, speed float64) {
	t := c.tuning
	if !InTransonicBand(speed, r.SpeedOfSound, t.TransonicRangeFraction) {
		c.effects.StopTransonic()
		return
	}

	lo, hi := c.vehicle.Bounds()
	size := TransonicSizeTerm(lo, hi, c.vehicle.CellSize(), t.TransonicSizeDivisor)
	scale := TransonicScale(speed, r.SpeedOfSound, t.TransonicRangeFraction, size)

	com := c.vehicle.CenterOfMassLocal()
	anchor := mgl64.Translate3D(com[0], com[1], com[2])
	if _, err := c.effects.EnsureTransonic(anchor, c.vehicle.RenderID(), scale); err != nil {
		r.CreateFailures++
		return
	}
	r.Transonic = true
	r.TransonicScale = scale
}

func (c *Core) updateLift(r *TickReport, world mgl64.Mat4, velocity, drag mgl64.Vec3, speed, density float64) {
	t := c.tuning
	pressure := DynamicPressure(speed, density)

	for _, s := range c.members.Surfaces() {
		if !s.Profile.Planar() {
			continue
		}
		localM := s.Part.LocalMatrix()
		lift := vmath.LocalToWorld(s.Profile.Normal, localM).Sub(vmath.Translation(localM))

		aoa := AngleOfAttack(drag, lift)
		cl := LiftCoefficient(aoa)
		force := cl * pressure
		intensity := LiftIntensity(force, t.MinLiftForceForEffect, t.LiftForceEffectScalar)

		d := effects.Directive{Intensity: intensity}
		if intensity > 0 {
			partWorld := world.Mul4(localM)
			d.Scale = intensity * s.Profile.Volume / t.WingVolumeDivisor
			d.Velocity = vmath.WorldToLocal(velocity.Add(vmath.Translation(partWorld)), partWorld).Mul(-1)
			if intensity > r.MaxIntensity {
				r.MaxIntensity = intensity
			}
		}

		h, err := c.effects.AssignOrUpdate(s.Part.ID(), s.Part.RenderID(), d)
		if err != nil {
			r.CreateFailures++
		}
		r.Surfaces = append(r.Surfaces, SurfaceSample{
			ID:              s.Part.ID(),
			AngleOfAttack:   aoa,
			LiftCoefficient: cl,
			LiftForce:       force,
			Intensity:       intensity,
			Effect:          h != nil,
		})
	}
}

func (c *Core) updateContrails(r *TickReport, tick uint64, density, speed float64) {
	t := c.tuning
	r.Contrails = density < t.ContrailDensityThreshold && speed > t.ContrailMinSpeed

	for _, e := range c.members.Emitters() {
		id := e.Part.ID()
		if !r.Contrails {
			c.effects.SoftStopContrail(id, tick)
			continue
		}
		if _, err := c.effects.EnsureContrail(id, e.Part.RenderID()); err != nil {
			r.CreateFailures++
		}
	}
}
