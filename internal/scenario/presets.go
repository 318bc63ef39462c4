package scenario

import (
	"fmt"
	"sort"
)

// Kerbin-like planet: density 1 at the surface falling linearly to 0 at
// 12 km, so density = 1 - altitude/12000.
func homeworld() []PlanetSpec {
	return []PlanetSpec{{
		Name:             "home",
		SurfaceRadius:    600000,
		AtmosphereRadius: 612000,
		SurfaceDensity:   1,
	}}
}

// jet is a small airframe: two 6x1x4 wing panels, a tail fin, a fuselage
// and two engines.
func jet() VehicleSpec {
	return VehicleSpec{
		Name:         "jet",
		CellSize:     2.5,
		Min:          [3]int{-6, -1, -5},
		Max:          [3]int{6, 2, 5},
		CenterOfMass: [3]float64{0, 0, -1},
		Parts: []PartSpec{
			{ID: 1, Definition: "fuselage", Kind: KindStructure, Min: [3]int{0, 0, -5}, Max: [3]int{0, 0, 5}},
			{ID: 2, Definition: "wing_panel", Kind: KindWing, Min: [3]int{0, 0, 0}, Max: [3]int{5, 0, 3}, Position: [3]float64{-15, 0, 0}},
			{ID: 3, Definition: "wing_panel", Kind: KindWing, Min: [3]int{0, 0, 0}, Max: [3]int{5, 0, 3}, Position: [3]float64{2.5, 0, 0}},
			{ID: 4, Definition: "tail_fin", Kind: KindWing, Min: [3]int{0, 0, 0}, Max: [3]int{0, 2, 1}, Position: [3]float64{0, 2.5, 10}},
			{ID: 5, Definition: "turbofan", Kind: KindEngine, Min: [3]int{0, 0, 0}, Max: [3]int{0, 0, 1}, Position: [3]float64{-5, -2.5, 7.5}},
			{ID: 6, Definition: "turbofan", Kind: KindEngine, Min: [3]int{0, 0, 0}, Max: [3]int{0, 0, 1}, Position: [3]float64{5, -2.5, 7.5}},
		},
	}
}

var Presets = map[string]func() *Scenario{
	"cruise": func() *Scenario {
		return &Scenario{
			Name:        "cruise",
			Description: "level flight in the contrail band, then a slowdown that fades the trails",
			Planets:     homeworld(),
			Vehicle:     jet(),
			Start:       Flight{Speed: 120, Altitude: 6000, AngleOfAttack: 2},
			Segments: []Segment{
				{Name: "cruise", Ticks: 600, To: Flight{Speed: 120, Altitude: 6000, AngleOfAttack: 2}},
				{Name: "slow", Ticks: 120, To: Flight{Speed: 40, Altitude: 6000, AngleOfAttack: 6}},
				{Name: "loiter", Ticks: 1900, To: Flight{Speed: 40, Altitude: 6000, AngleOfAttack: 6}},
			},
		}
	},
	"transonic": func() *Scenario {
		return &Scenario{
			Name:        "transonic",
			Description: "accelerate through the sound barrier at 2.4 km",
			Planets:     homeworld(),
			Vehicle:     jet(),
			Start:       Flight{Speed: 280, Altitude: 2400, AngleOfAttack: 3},
			Segments: []Segment{
				{Name: "accelerate", Ticks: 1200, To: Flight{Speed: 380, Altitude: 2400, AngleOfAttack: 3}},
				{Name: "pull", Ticks: 240, To: Flight{Speed: 380, Altitude: 2400, AngleOfAttack: 8}},
			},
		}
	},
	"climbout": func() *Scenario {
		return &Scenario{
			Name:        "climbout",
			Description: "steep climb from the runway up through the contrail band into thin air",
			Planets:     homeworld(),
			Vehicle:     jet(),
			Start:       Flight{Speed: 90, Altitude: 20, AngleOfAttack: 14},
			Segments: []Segment{
				{Name: "rotate", Ticks: 300, To: Flight{Speed: 170, Altitude: 600, AngleOfAttack: 12}},
				{Name: "climb", Ticks: 2400, To: Flight{Speed: 220, Altitude: 9000, AngleOfAttack: 6}},
			},
		}
	},
	"space": func() *Scenario {
		return &Scenario{
			Name:        "space",
			Description: "leave the atmosphere with trails running, shedding a wing on the way",
			Planets:     homeworld(),
			Vehicle:     jet(),
			Start:       Flight{Speed: 200, Altitude: 6500, AngleOfAttack: 4},
			Segments: []Segment{
				{Name: "trail", Ticks: 300, To: Flight{Speed: 220, Altitude: 6500, AngleOfAttack: 4}},
				{Name: "ascend", Ticks: 900, To: Flight{Speed: 600, Altitude: 20000, AngleOfAttack: 4}, Detach: []uint64{2}},
				{Name: "coast", Ticks: 1900, To: Flight{Speed: 600, Altitude: 20000, AngleOfAttack: 0}},
			},
		}
	},
}

// GetPreset returns a fresh copy of the named preset.
func GetPreset(name string) (*Scenario, error) {
	build, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return build(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
