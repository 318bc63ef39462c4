package scenario

import (
	"context"
	"fmt"
	"sync"
)

// Variant perturbs every commanded flight state of a scenario.
type Variant struct {
	Name           string
	SpeedScale     float64
	AltitudeOffset float64
}

// SpeedVariants returns one variant per speed scale factor.
func SpeedVariants(scales ...float64) []Variant {
	out := make([]Variant, len(scales))
	for i, k := range scales {
		out[i] = Variant{Name: fmt.Sprintf("x%.2f", k), SpeedScale: k}
	}
	return out
}

func (v Variant) apply(f Flight) Flight {
	scale := v.SpeedScale
	if scale == 0 {
		scale = 1
	}
	f.Speed *= scale
	f.Altitude += v.AltitudeOffset
	return f
}

// Clone returns a deep copy of s.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Planets = append([]PlanetSpec(nil), s.Planets...)
	c.Vehicle.Parts = append([]PartSpec(nil), s.Vehicle.Parts...)
	c.Segments = make([]Segment, len(s.Segments))
	for i, seg := range s.Segments {
		seg.Detach = append([]uint64(nil), seg.Detach...)
		c.Segments[i] = seg
	}
	return &c
}

// Vary returns a copy of s with v applied to the start and every segment.
func (s *Scenario) Vary(v Variant) *Scenario {
	c := s.Clone()
	c.Name = s.Name + "/" + v.Name
	c.Start = v.apply(c.Start)
	for i := range c.Segments {
		c.Segments[i].To = v.apply(c.Segments[i].To)
	}
	return c
}

// Sweep flies every variant of sc concurrently, each against its own world.
// Every run gets a fresh recorder and metric set; opts.Factory and
// opts.Metrics are ignored.
func Sweep(ctx context.Context, sc *Scenario, variants []Variant, opts Options) ([]*Trace, error) {
	traces := make([]*Trace, len(variants))
	errs := make([]error, len(variants))

	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(idx int, v Variant) {
			defer wg.Done()

			o := opts
			o.Factory = nil
			o.Metrics = nil
			traces[idx], errs[idx] = Run(ctx, sc.Vary(v), o)
		}(i, v)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", variants[i].Name, err)
		}
	}
	return traces, nil
}
