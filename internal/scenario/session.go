package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/planefx/internal/aero"
	"github.com/san-kum/planefx/internal/atmosphere"
	"github.com/san-kum/planefx/internal/capability"
	"github.com/san-kum/planefx/internal/config"
	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/metrics"
	"github.com/san-kum/planefx/internal/render"
	"github.com/san-kum/planefx/internal/telemetry"
	"github.com/san-kum/planefx/internal/vmath"
	"github.com/san-kum/planefx/internal/world"
)

// ErrFinished is returned by Step once every segment has been flown.
var ErrFinished = errors.New("scenario: finished")

const craftRenderID effects.RenderID = 1

// Options configures a session. A nil Factory defaults to a fresh
// render.Recorder and nil Metrics to metrics.Default().
type Options struct {
	Tuning    config.Tuning
	Factory   effects.Factory
	Logger    zerolog.Logger
	Telemetry *telemetry.Instruments
	Notifier  world.Notifier
	Metrics   []metrics.Metric
}

// Sample is the observable state after one tick.
type Sample struct {
	Tick           uint64  `json:"tick"`
	Segment        string  `json:"segment"`
	Altitude       float64 `json:"altitude"`
	Speed          float64 `json:"speed"`
	Density        float64 `json:"density"`
	SpeedOfSound   float64 `json:"speed_of_sound"`
	Mach           float64 `json:"mach"`
	Transonic      bool    `json:"transonic"`
	TransonicScale float64 `json:"transonic_scale"`
	Contrails      bool    `json:"contrails"`
	Vapor          int     `json:"vapor"`
	LiftIntensity  float64 `json:"lift_intensity"`
	LiveEffects    int     `json:"live_effects"`
	Pending        int     `json:"pending"`
	Skip           string  `json:"skip"`
	Err            string  `json:"error,omitempty"`
}

type Trace struct {
	Scenario string             `json:"scenario"`
	Vehicle  string             `json:"vehicle"`
	Ticks    int                `json:"ticks"`
	Elapsed  time.Duration      `json:"elapsed"`
	Samples  []Sample           `json:"-"`
	Metrics  map[string]float64 `json:"metrics"`
	Effects  render.Stats       `json:"effects"`
}

// Session flies one scenario tick by tick.
type Session struct {
	sc       *Scenario
	world    *world.World
	craft    *Craft
	core     *aero.Core
	blocks   map[uint64]*Block
	origin   mgl64.Vec3
	recorder *render.Recorder
	metrics  []metrics.Metric
	log      zerolog.Logger

	seg     int
	segTick int
	from    Flight
	current Flight
	tick    uint64
	reports []aero.TickReport
}

func NewSession(sc *Scenario, opts Options) (*Session, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger.With().Str("component", "scenario").Str("scenario", sc.Name).Logger()
	if opts.Factory == nil {
		opts.Factory = render.NewRecorder()
	}
	rec, _ := opts.Factory.(*render.Recorder)
	if opts.Metrics == nil {
		opts.Metrics = metrics.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = world.NotifierFunc(func(vehicle, msg string) {
			log.Warn().Str("vehicle", vehicle).Msg(msg)
		})
	}

	caps := capability.NewRegistry(nil)
	for _, p := range sc.Vehicle.Parts {
		b, err := p.behavior()
		if err != nil {
			return nil, err
		}
		caps.Declare(p.Definition, b)
	}

	w, err := world.New(world.Options{
		Tuning:       opts.Tuning,
		Factory:      opts.Factory,
		Capabilities: caps,
		Logger:       opts.Logger,
		Telemetry:    opts.Telemetry,
		Notifier:     opts.Notifier,
	})
	if err != nil {
		return nil, err
	}

	var origin mgl64.Vec3
	for i, p := range sc.Planets {
		planet := atmosphere.NewPlanet(p.Name, mgl64.Vec3(p.Center), p.SurfaceRadius, p.AtmosphereRadius, p.SurfaceDensity)
		w.OnEntityAdd(planet)
		if i == 0 {
			origin = planet.Position.Add(vmath.Up.Mul(p.SurfaceRadius))
		}
	}

	name := sc.Vehicle.Name
	if name == "" {
		name = sc.Name
	}
	craft := newCraft(sc.Vehicle, craftRenderID)
	core, err := w.AddVehicle(name, craft)
	if err != nil {
		return nil, err
	}

	s := &Session{
		sc:       sc,
		world:    w,
		craft:    craft,
		core:     core,
		blocks:   make(map[uint64]*Block, len(sc.Vehicle.Parts)),
		origin:   origin,
		recorder: rec,
		metrics:  opts.Metrics,
		log:      log,
		from:     sc.Start,
		current:  sc.Start,
		reports:  make([]aero.TickReport, 0, sc.Ticks()),
	}
	for _, p := range sc.Vehicle.Parts {
		b := newBlock(p, effects.RenderID(100+p.ID))
		s.blocks[p.ID] = b
		core.Attach(b)
	}

	log.Debug().
		Int("parts", len(sc.Vehicle.Parts)).
		Int("surfaces", core.Membership().SurfaceCount()).
		Int("emitters", core.Membership().EmitterCount()).
		Int("ticks", sc.Ticks()).
		Msg("session ready")
	return s, nil
}

func (s *Session) Scenario() *Scenario        { return s.sc }
func (s *Session) Core() *aero.Core           { return s.core }
func (s *Session) Recorder() *render.Recorder { return s.recorder }
func (s *Session) Flight() Flight             { return s.current }
func (s *Session) Done() bool                 { return s.seg >= len(s.sc.Segments) }

// Progress is the fraction of scenario ticks already flown.
func (s *Session) Progress() float64 {
	total := s.sc.Ticks()
	if total == 0 {
		return 1
	}
	return float64(s.tick) / float64(total)
}

func (s *Session) Reports() []aero.TickReport { return s.reports }

// Step flies one tick.
func (s *Session) Step(ctx context.Context) (Sample, error) {
	if s.Done() {
		return Sample{}, ErrFinished
	}
	seg := s.sc.Segments[s.seg]
	if s.segTick == 0 {
		s.detach(seg.Detach)
	}

	t := float64(s.segTick+1) / float64(seg.Ticks)
	s.current = lerpFlight(s.from, seg.To, t)
	s.craft.static = seg.Static
	s.craft.place(
		s.origin.Add(vmath.Up.Mul(s.current.Altitude)),
		s.current.Speed,
		mgl64.DegToRad(s.current.AngleOfAttack),
	)
	s.tick++
	s.craft.tick = s.tick

	reports, err := s.world.Tick(ctx)
	if err != nil {
		return Sample{}, err
	}
	var vr world.VehicleReport
	if len(reports) > 0 {
		vr = reports[0]
	}
	s.reports = append(s.reports, vr.Report)
	sample := s.sample(seg.Name, vr)

	s.segTick++
	if s.segTick == seg.Ticks {
		s.log.Debug().Str("segment", seg.Name).Uint64("tick", s.tick).Msg("segment complete")
		s.from = seg.To
		s.seg++
		s.segTick = 0
	}
	return sample, nil
}

func (s *Session) detach(ids []uint64) {
	for _, id := range ids {
		b, ok := s.blocks[id]
		if !ok {
			s.log.Warn().Uint64("part", id).Msg("detach of unknown part")
			continue
		}
		s.core.Detach(b)
		delete(s.blocks, id)
	}
}

func (s *Session) sample(segment string, vr world.VehicleReport) Sample {
	r := vr.Report
	vapor := 0
	for _, ss := range r.Surfaces {
		if ss.Effect {
			vapor++
		}
	}
	out := Sample{
		Tick:           s.tick,
		Segment:        segment,
		Altitude:       s.current.Altitude,
		Speed:          r.Speed,
		Density:        r.Density,
		SpeedOfSound:   r.SpeedOfSound,
		Mach:           r.Mach(),
		Transonic:      r.Transonic,
		TransonicScale: r.TransonicScale,
		Contrails:      r.Contrails,
		Vapor:          vapor,
		LiftIntensity:  r.MaxIntensity,
		LiveEffects:    s.core.Effects().Live(),
		Pending:        s.core.Effects().Pending(),
		Skip:           r.Skip.String(),
	}
	if vr.Err != nil {
		out.Err = vr.Err.Error()
	}
	return out
}

// Metrics evaluates the configured metrics over every tick flown so far.
func (s *Session) Metrics() map[string]float64 {
	return metrics.Collect(s.metrics, s.reports)
}

// Close stops every effect the vehicle still owns.
func (s *Session) Close() int {
	return s.world.Close()
}

// Run flies sc to completion and returns its trace.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Trace, error) {
	s, err := NewSession(sc, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	start := time.Now()
	trace := &Trace{
		Scenario: sc.Name,
		Vehicle:  sc.Vehicle.Name,
		Samples:  make([]Sample, 0, sc.Ticks()),
	}
	for {
		sample, err := s.Step(ctx)
		if errors.Is(err, ErrFinished) {
			break
		}
		if err != nil {
			return trace, err
		}
		trace.Samples = append(trace.Samples, sample)
	}

	trace.Ticks = len(trace.Samples)
	trace.Elapsed = time.Since(start)
	trace.Metrics = s.Metrics()
	if s.recorder != nil {
		trace.Effects = s.recorder.Stats()
	}

	s.log.Info().
		Int("ticks", trace.Ticks).
		Dur("elapsed", trace.Elapsed).
		Float64("peak_mach", trace.Metrics["peak_mach"]).
		Msg("scenario complete")
	return trace, nil
}

func lerpFlight(a, b Flight, t float64) Flight {
	return Flight{
		Speed:         lerp(a.Speed, b.Speed, t),
		Altitude:      lerp(a.Altitude, b.Altitude, t),
		AngleOfAttack: lerp(a.AngleOfAttack, b.AngleOfAttack, t),
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
