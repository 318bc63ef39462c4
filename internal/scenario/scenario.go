// Package scenario scripts vehicle flights against an in-memory host so the
// aero core can be exercised offline. A scenario names a planet, a vehicle
// built from parts, and a list of flight segments that ramp speed,
// altitude and angle of attack.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/planefx/internal/capability"
)

var (
	ErrInvalidScenario = errors.New("scenario: invalid")
	ErrUnknownPreset   = errors.New("scenario: unknown preset")
)

// Part kinds map onto capability behaviours.
const (
	KindWing      = "wing"
	KindEngine    = "engine"
	KindDuctedFan = "ducted_fan"
	KindStructure = "structure"
)

func (p PartSpec) behavior() (capability.Behavior, error) {
	switch p.Kind {
	case KindWing:
		return capability.Aerodynamic, nil
	case KindEngine:
		return capability.Propulsion, nil
	case KindDuctedFan:
		return capability.Aerodynamic | capability.Propulsion, nil
	case KindStructure, "":
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: part %d has unknown kind %q", ErrInvalidScenario, p.ID, p.Kind)
	}
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Planets     []PlanetSpec `yaml:"planets"`
	Vehicle     VehicleSpec  `yaml:"vehicle"`
	Start       Flight       `yaml:"start"`
	Segments    []Segment    `yaml:"segments"`
}

type PlanetSpec struct {
	Name             string     `yaml:"name"`
	Center           [3]float64 `yaml:"center"`
	SurfaceRadius    float64    `yaml:"surface_radius"`
	AtmosphereRadius float64    `yaml:"atmosphere_radius"`
	SurfaceDensity   float64    `yaml:"surface_density"`
}

type VehicleSpec struct {
	Name         string     `yaml:"name"`
	CellSize     float64    `yaml:"cell_size"`
	Min          [3]int     `yaml:"min"`
	Max          [3]int     `yaml:"max"`
	CenterOfMass [3]float64 `yaml:"center_of_mass"`
	Parts        []PartSpec `yaml:"parts"`
}

// PartSpec places one block. Angles are in degrees, in 90 degree steps.
type PartSpec struct {
	ID         uint64     `yaml:"id"`
	Definition string     `yaml:"definition"`
	Kind       string     `yaml:"kind"`
	Min        [3]int     `yaml:"min"`
	Max        [3]int     `yaml:"max"`
	Position   [3]float64 `yaml:"position"`
	Pitch      float64    `yaml:"pitch,omitempty"`
	Yaw        float64    `yaml:"yaw,omitempty"`
	Roll       float64    `yaml:"roll,omitempty"`
}

// Flight is the commanded state at a segment boundary. AngleOfAttack is the
// nose-up pitch in degrees relative to the horizontal flight path.
type Flight struct {
	Speed         float64 `yaml:"speed"`
	Altitude      float64 `yaml:"altitude"`
	AngleOfAttack float64 `yaml:"angle_of_attack"`
}

// Segment ramps linearly from the previous boundary to To over Ticks.
type Segment struct {
	Name   string   `yaml:"name"`
	Ticks  int      `yaml:"ticks"`
	To     Flight   `yaml:"to"`
	Static bool     `yaml:"static,omitempty"`
	Detach []uint64 `yaml:"detach,omitempty"`
}

// Ticks is the total length of the scenario.
func (s *Scenario) Ticks() int {
	n := 0
	for _, seg := range s.Segments {
		n += seg.Ticks
	}
	return n
}

func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if len(s.Segments) == 0 {
		return fmt.Errorf("%w: at least one segment is required", ErrInvalidScenario)
	}
	for i, seg := range s.Segments {
		if seg.Ticks <= 0 {
			return fmt.Errorf("%w: segment %d must last at least one tick", ErrInvalidScenario, i)
		}
	}
	for _, p := range s.Planets {
		if p.SurfaceRadius < 0 || p.AtmosphereRadius <= p.SurfaceRadius {
			return fmt.Errorf("%w: planet %q needs 0 <= surface_radius < atmosphere_radius", ErrInvalidScenario, p.Name)
		}
	}

	v := s.Vehicle
	if v.CellSize <= 0 {
		return fmt.Errorf("%w: cell_size must be positive, got %f", ErrInvalidScenario, v.CellSize)
	}
	ids := make(map[uint64]bool, len(v.Parts))
	kinds := make(map[string]string, len(v.Parts))
	for _, p := range v.Parts {
		if ids[p.ID] {
			return fmt.Errorf("%w: duplicate part id %d", ErrInvalidScenario, p.ID)
		}
		ids[p.ID] = true
		if _, err := p.behavior(); err != nil {
			return err
		}
		for _, a := range []float64{p.Pitch, p.Yaw, p.Roll} {
			if math.Mod(a, 90) != 0 {
				return fmt.Errorf("%w: part %d orientation must be in 90 degree steps, got %v", ErrInvalidScenario, p.ID, a)
			}
		}
		if k, ok := kinds[p.Definition]; ok && k != p.Kind {
			return fmt.Errorf("%w: definition %q used with kinds %q and %q", ErrInvalidScenario, p.Definition, k, p.Kind)
		}
		kinds[p.Definition] = p.Kind
	}
	return nil
}

func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve returns the preset called ref, or loads ref as a file.
func Resolve(ref string) (*Scenario, error) {
	if s, err := GetPreset(ref); err == nil {
		return s, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, ref, ListPresets())
	}
	return Load(ref)
}
