package scenario

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/planefx/internal/config"
	"github.com/san-kum/planefx/internal/render"
)

const minimal = `
name: hop
planets:
  - name: home
    surface_radius: 1000
    atmosphere_radius: 11000
    surface_density: 1
vehicle:
  name: kite
  cell_size: 2.5
  min: [-2, 0, -2]
  max: [2, 0, 2]
  parts:
    - {id: 1, definition: panel, kind: wing, max: [3, 0, 3]}
    - {id: 2, definition: jet, kind: engine, max: [0, 0, 1], position: [0, -1, 4]}
start: {speed: 60, altitude: 5000}
segments:
  - {name: level, ticks: 10, to: {speed: 60, altitude: 5000}}
  - {name: climb, ticks: 10, to: {speed: 60, altitude: 9000, angle_of_attack: 5}}
`

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, "hop", sc.Name)
	assert.Equal(t, 20, sc.Ticks())
	require.Len(t, sc.Vehicle.Parts, 2)
	assert.Equal(t, [3]float64{0, -1, 4}, sc.Vehicle.Parts[1].Position)
	assert.Equal(t, 5.0, sc.Segments[1].To.AngleOfAttack)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"no name", func(s *Scenario) { s.Name = "" }},
		{"no segments", func(s *Scenario) { s.Segments = nil }},
		{"empty segment", func(s *Scenario) { s.Segments[0].Ticks = 0 }},
		{"zero cell size", func(s *Scenario) { s.Vehicle.CellSize = 0 }},
		{"inverted planet", func(s *Scenario) { s.Planets[0].AtmosphereRadius = 10 }},
		{"duplicate part", func(s *Scenario) { s.Vehicle.Parts[1].ID = 1 }},
		{"unknown kind", func(s *Scenario) { s.Vehicle.Parts[0].Kind = "rotor" }},
		{"conflicting kinds", func(s *Scenario) { s.Vehicle.Parts[1].Definition = "panel" }},
		{"off-grid yaw", func(s *Scenario) { s.Vehicle.Parts[0].Yaw = 40 }},
		{"off-grid roll", func(s *Scenario) { s.Vehicle.Parts[0].Roll = -135 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(minimal))
			require.NoError(t, err)
			tt.mutate(sc)
			assert.ErrorIs(t, sc.Validate(), ErrInvalidScenario)
		})
	}
}

func TestValidateAcceptsQuarterTurns(t *testing.T) {
	sc, err := Parse([]byte(minimal))
	require.NoError(t, err)
	sc.Vehicle.Parts[0].Yaw = -90
	sc.Vehicle.Parts[0].Roll = 180
	assert.NoError(t, sc.Validate())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("segments: [1, 2"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sc, err := GetPreset("space")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "space.yaml")
	require.NoError(t, Save(path, sc))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sc, back)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"climbout", "cruise", "space", "transonic"}, ListPresets())

	for _, name := range ListPresets() {
		sc, err := GetPreset(name)
		require.NoError(t, err, name)
		assert.NoError(t, sc.Validate(), name)
	}

	_, err := GetPreset("hover")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestGetPresetReturnsCopy(t *testing.T) {
	a, _ := GetPreset("cruise")
	a.Segments[0].Ticks = 1
	a.Vehicle.Parts[0].ID = 99

	b, _ := GetPreset("cruise")
	assert.Equal(t, 600, b.Segments[0].Ticks)
	assert.Equal(t, uint64(1), b.Vehicle.Parts[0].ID)
}

func TestResolve(t *testing.T) {
	sc, err := Resolve("transonic")
	require.NoError(t, err)
	assert.Equal(t, "transonic", sc.Name)

	path := filepath.Join(t.TempDir(), "hop.yaml")
	hop, err := Parse([]byte(minimal))
	require.NoError(t, err)
	require.NoError(t, Save(path, hop))
	sc, err = Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "hop", sc.Name)

	_, err = Resolve("nowhere")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func flyAll(t *testing.T, s *Session) []Sample {
	t.Helper()
	var out []Sample
	for {
		sample, err := s.Step(context.Background())
		if errors.Is(err, ErrFinished) {
			return out
		}
		require.NoError(t, err)
		out = append(out, sample)
	}
}

func TestSessionInterpolatesSegments(t *testing.T) {
	sc, err := Parse([]byte(minimal))
	require.NoError(t, err)
	s, err := NewSession(sc, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer s.Close()

	samples := flyAll(t, s)
	require.Len(t, samples, 20)
	assert.True(t, s.Done())
	assert.Equal(t, 1.0, s.Progress())

	assert.Equal(t, "level", samples[9].Segment)
	assert.Equal(t, 5000.0, samples[9].Altitude)
	assert.Equal(t, "climb", samples[10].Segment)
	assert.InDelta(t, 5400, samples[10].Altitude, 1e-9)
	assert.InDelta(t, 9000, samples[19].Altitude, 1e-9)
	assert.InDelta(t, 60, samples[0].Speed, 1e-9)

	// 5 km up a 10 km atmosphere is density 0.5: trails run.
	assert.InDelta(t, 0.5, samples[0].Density, 1e-9)
	assert.True(t, samples[0].Contrails)
	// 9 km is density 0.1: everything cleared, the trail fading.
	assert.Equal(t, "thin-air", samples[19].Skip)
	assert.Equal(t, 1, samples[19].Pending)

	_, err = s.Step(context.Background())
	assert.ErrorIs(t, err, ErrFinished)
}

func TestCruiseFadesTrails(t *testing.T) {
	sc, _ := GetPreset("cruise")
	s, err := NewSession(sc, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer s.Close()

	samples := flyAll(t, s)
	require.Len(t, samples, sc.Ticks())
	assert.True(t, samples[0].Contrails)

	trails := s.Recorder().Named(config.DefaultContrailEffect)
	require.Len(t, trails, 2)
	for _, e := range trails {
		assert.True(t, e.Stopped, "faded trail hard-stopped before the loiter ends")
	}
	assert.Zero(t, samples[len(samples)-1].Pending)
	assert.Zero(t, s.Recorder().Stats().DoubleStops)
}

func TestRunTransonic(t *testing.T) {
	sc, _ := GetPreset("transonic")
	trace, err := Run(context.Background(), sc, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Equal(t, sc.Ticks(), trace.Ticks)
	assert.Greater(t, trace.Metrics["peak_mach"], 1.1)
	assert.Greater(t, trace.Metrics["transonic_dwell"], 0.0)
	assert.Greater(t, trace.Metrics["peak_transonic_scale"], 0.0)
	assert.Greater(t, trace.Metrics["vapor_coverage"], 0.0)
	assert.Equal(t, 1, countTransonicWindows(trace.Samples))

	last := trace.Samples[len(trace.Samples)-1]
	assert.False(t, last.Transonic, "cone stops past the band")
	assert.Positive(t, last.Vapor)
}

func countTransonicWindows(samples []Sample) int {
	n := 0
	prev := false
	for _, s := range samples {
		if s.Transonic && !prev {
			n++
		}
		prev = s.Transonic
	}
	return n
}

func TestRunClimbout(t *testing.T) {
	sc, _ := GetPreset("climbout")
	trace, err := Run(context.Background(), sc, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Greater(t, trace.Metrics["peak_lift_intensity"], 0.0)
	assert.Greater(t, trace.Metrics["contrail_dwell"], 0.0)
	assert.Equal(t, "thin-air", trace.Samples[len(trace.Samples)-1].Skip)
	assert.Positive(t, trace.Effects.Created)
}

func TestSpaceDetachesAndClears(t *testing.T) {
	sc, _ := GetPreset("space")
	s, err := NewSession(sc, Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, 3, s.Core().Membership().SurfaceCount())
	samples := flyAll(t, s)
	assert.Equal(t, 2, s.Core().Membership().SurfaceCount())

	last := samples[len(samples)-1]
	assert.Equal(t, "thin-air", last.Skip)
	assert.Zero(t, last.LiveEffects)
	assert.Zero(t, last.Pending)
	assert.Empty(t, s.Recorder().Active())
}

func TestRunUsesGivenFactory(t *testing.T) {
	sc, err := Parse([]byte(minimal))
	require.NoError(t, err)
	rec := render.NewRecorder()
	rec.RefuseWhen(func(string) bool { return true })

	trace, err := Run(context.Background(), sc, Options{Factory: rec, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Positive(t, trace.Metrics["create_failures"])
	assert.Zero(t, trace.Effects.Created)
	assert.Positive(t, trace.Effects.Refused)
}

func TestRunCancelled(t *testing.T) {
	sc, _ := GetPreset("cruise")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, sc, Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloneIsDeep(t *testing.T) {
	sc, _ := GetPreset("space")
	c := sc.Clone()
	c.Segments[1].Detach[0] = 9
	c.Vehicle.Parts[0].Kind = KindWing
	c.Planets[0].SurfaceDensity = 2

	assert.Equal(t, uint64(2), sc.Segments[1].Detach[0])
	assert.Equal(t, KindStructure, sc.Vehicle.Parts[0].Kind)
	assert.Equal(t, 1.0, sc.Planets[0].SurfaceDensity)
}

func TestVary(t *testing.T) {
	sc, _ := GetPreset("transonic")
	v := sc.Vary(Variant{Name: "low", SpeedScale: 0.5, AltitudeOffset: 100})

	assert.Equal(t, "transonic/low", v.Name)
	assert.Equal(t, 140.0, v.Start.Speed)
	assert.Equal(t, 2500.0, v.Start.Altitude)
	assert.Equal(t, 190.0, v.Segments[0].To.Speed)
	assert.Equal(t, 280.0, sc.Start.Speed, "source untouched")

	same := sc.Vary(Variant{Name: "id"})
	assert.Equal(t, sc.Segments, same.Segments)
}

func TestSweep(t *testing.T) {
	sc, _ := GetPreset("transonic")
	traces, err := Sweep(context.Background(), sc, SpeedVariants(0.7, 1.0), Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Len(t, traces, 2)

	assert.Equal(t, "transonic/x0.70", traces[0].Scenario)
	assert.Zero(t, traces[0].Metrics["transonic_dwell"], "never reaches the band")
	assert.Positive(t, traces[1].Metrics["transonic_dwell"])
	assert.Greater(t, traces[1].Metrics["peak_mach"], traces[0].Metrics["peak_mach"])
}

func TestSweepCancelled(t *testing.T) {
	sc, _ := GetPreset("cruise")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, sc, SpeedVariants(1), Options{Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, context.Canceled)
}
