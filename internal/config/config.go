package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMinLiftForceForEffect    = 10000.0
	DefaultLiftForceEffectScalar    = 30000.0
	DefaultTransonicRangeFraction   = 0.05
	DefaultMinSpeedOfSound          = 295.1
	DefaultDeferredStopDelayTicks   = 1800
	DefaultAtmosphereClearThreshold = 0.35
	DefaultContrailDensityThreshold = 0.6
	DefaultContrailMinSpeed         = 50.0
	DefaultWingVolumeDivisor        = 25.0
	DefaultTransonicSizeDivisor     = 4.0
	DefaultMinAirspeed              = 1.0

	DefaultVaporEffect     = "WingCloud"
	DefaultTransonicEffect = "TransonicCone"
	DefaultContrailEffect  = "EngineContrail"
)

var ErrInvalidTuning = errors.New("config: invalid tuning")

// Tuning is the full set of knobs the aero core reads every tick.
type Tuning struct {
	MinLiftForceForEffect    float64 `yaml:"min_lift_force_for_effect"`
	LiftForceEffectScalar    float64 `yaml:"lift_force_effect_scalar"`
	TransonicRangeFraction   float64 `yaml:"transonic_range_fraction"`
	MinSpeedOfSound          float64 `yaml:"min_speed_of_sound"`
	DeferredStopDelayTicks   uint64  `yaml:"deferred_stop_delay_ticks"`
	AtmosphereClearThreshold float64 `yaml:"atmosphere_clear_threshold"`
	ContrailDensityThreshold float64 `yaml:"contrail_density_threshold"`
	ContrailMinSpeed         float64 `yaml:"contrail_min_speed"`
	WingVolumeDivisor        float64 `yaml:"wing_volume_divisor"`
	TransonicSizeDivisor     float64 `yaml:"transonic_size_divisor"`
	MinAirspeed              float64 `yaml:"min_airspeed"`
	Effects                  Effects `yaml:"effects"`
}

type Effects struct {
	Vapor     string `yaml:"vapor"`
	Transonic string `yaml:"transonic"`
	Contrail  string `yaml:"contrail"`
}

func DefaultTuning() Tuning {
	return Tuning{
		MinLiftForceForEffect:    DefaultMinLiftForceForEffect,
		LiftForceEffectScalar:    DefaultLiftForceEffectScalar,
		TransonicRangeFraction:   DefaultTransonicRangeFraction,
		MinSpeedOfSound:          DefaultMinSpeedOfSound,
		DeferredStopDelayTicks:   DefaultDeferredStopDelayTicks,
		AtmosphereClearThreshold: DefaultAtmosphereClearThreshold,
		ContrailDensityThreshold: DefaultContrailDensityThreshold,
		ContrailMinSpeed:         DefaultContrailMinSpeed,
		WingVolumeDivisor:        DefaultWingVolumeDivisor,
		TransonicSizeDivisor:     DefaultTransonicSizeDivisor,
		MinAirspeed:              DefaultMinAirspeed,
		Effects: Effects{
			Vapor:     DefaultVaporEffect,
			Transonic: DefaultTransonicEffect,
			Contrail:  DefaultContrailEffect,
		},
	}
}

// Validate rejects values that would divide by zero or invert a band.
func (t Tuning) Validate() error {
	switch {
	case t.LiftForceEffectScalar <= 0:
		return fmt.Errorf("%w: lift_force_effect_scalar must be positive, got %f", ErrInvalidTuning, t.LiftForceEffectScalar)
	case t.TransonicRangeFraction <= 0 || t.TransonicRangeFraction >= 1:
		return fmt.Errorf("%w: transonic_range_fraction must be in (0,1), got %f", ErrInvalidTuning, t.TransonicRangeFraction)
	case t.MinSpeedOfSound <= 0:
		return fmt.Errorf("%w: min_speed_of_sound must be positive, got %f", ErrInvalidTuning, t.MinSpeedOfSound)
	case t.WingVolumeDivisor <= 0:
		return fmt.Errorf("%w: wing_volume_divisor must be positive, got %f", ErrInvalidTuning, t.WingVolumeDivisor)
	case t.TransonicSizeDivisor <= 0:
		return fmt.Errorf("%w: transonic_size_divisor must be positive, got %f", ErrInvalidTuning, t.TransonicSizeDivisor)
	case t.Effects.Vapor == "" || t.Effects.Transonic == "" || t.Effects.Contrail == "":
		return fmt.Errorf("%w: effect names must not be empty", ErrInvalidTuning)
	}
	return nil
}

func Load(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, err
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

func Save(path string, t Tuning) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
