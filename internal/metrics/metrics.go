// Package metrics summarises a run from the tick reports of one vehicle.
package metrics

import (
	"math"

	"github.com/san-kum/planefx/internal/aero"
)

type Metric interface {
	Name() string
	Observe(r aero.TickReport)
	Value() float64
	Reset()
}

// Default returns the metric set attached to every scenario run.
func Default() []Metric {
	return []Metric{
		NewPeakMach(),
		NewPeakTransonicScale(),
		NewTransonicDwell(),
		NewContrailDwell(),
		NewVaporCoverage(),
		NewPeakIntensity(),
		NewCreateFailures(),
	}
}

// Collect runs every metric over reports and returns their values by name.
func Collect(ms []Metric, reports []aero.TickReport) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for _, r := range reports {
		for _, m := range ms {
			m.Observe(r)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

type PeakMach struct {
	name string
	peak float64
}

func NewPeakMach() *PeakMach { return &PeakMach{name: "peak_mach"} }

func (p *PeakMach) Name() string { return p.name }

func (p *PeakMach) Observe(r aero.TickReport) {
	p.peak = math.Max(p.peak, r.Mach())
}

func (p *PeakMach) Value() float64 { return p.peak }
func (p *PeakMach) Reset()         { p.peak = 0 }

type PeakTransonicScale struct {
	name string
	peak float64
}

func NewPeakTransonicScale() *PeakTransonicScale {
	return &PeakTransonicScale{name: "peak_transonic_scale"}
}

func (p *PeakTransonicScale) Name() string { return p.name }

func (p *PeakTransonicScale) Observe(r aero.TickReport) {
	if r.Transonic {
		p.peak = math.Max(p.peak, r.TransonicScale)
	}
}

func (p *PeakTransonicScale) Value() float64 { return p.peak }
func (p *PeakTransonicScale) Reset()         { p.peak = 0 }

// Dwell is the fraction of observed ticks for which a condition held.
type Dwell struct {
	name    string
	cond    func(aero.TickReport) bool
	hits    int
	samples int
}

func NewDwell(name string, cond func(aero.TickReport) bool) *Dwell {
	return &Dwell{name: name, cond: cond}
}

func NewTransonicDwell() *Dwell {
	return NewDwell("transonic_dwell", func(r aero.TickReport) bool { return r.Transonic })
}

func NewContrailDwell() *Dwell {
	return NewDwell("contrail_dwell", func(r aero.TickReport) bool { return r.Contrails })
}

func (d *Dwell) Name() string { return d.name }

func (d *Dwell) Observe(r aero.TickReport) {
	d.samples++
	if d.cond(r) {
		d.hits++
	}
}

func (d *Dwell) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.hits) / float64(d.samples)
}

func (d *Dwell) Reset() {
	d.hits = 0
	d.samples = 0
}

// VaporCoverage is the mean fraction of evaluated surfaces carrying a vapor
// effect, over ticks that reached the lift stage.
type VaporCoverage struct {
	name    string
	sum     float64
	samples int
}

func NewVaporCoverage() *VaporCoverage { return &VaporCoverage{name: "vapor_coverage"} }

func (v *VaporCoverage) Name() string { return v.name }

func (v *VaporCoverage) Observe(r aero.TickReport) {
	if r.Skip != aero.SkipNone || len(r.Surfaces) == 0 {
		return
	}
	on := 0
	for _, s := range r.Surfaces {
		if s.Effect {
			on++
		}
	}
	v.sum += float64(on) / float64(len(r.Surfaces))
	v.samples++
}

func (v *VaporCoverage) Value() float64 {
	if v.samples == 0 {
		return 0
	}
	return v.sum / float64(v.samples)
}

func (v *VaporCoverage) Reset() {
	v.sum = 0
	v.samples = 0
}

type PeakIntensity struct {
	name string
	peak float64
}

func NewPeakIntensity() *PeakIntensity { return &PeakIntensity{name: "peak_lift_intensity"} }

func (p *PeakIntensity) Name() string { return p.name }

func (p *PeakIntensity) Observe(r aero.TickReport) {
	p.peak = math.Max(p.peak, r.MaxIntensity)
}

func (p *PeakIntensity) Value() float64 { return p.peak }
func (p *PeakIntensity) Reset()         { p.peak = 0 }

// CreateFailures counts effect creations that the render side refused.
type CreateFailures struct {
	name  string
	count int
}

func NewCreateFailures() *CreateFailures { return &CreateFailures{name: "create_failures"} }

func (f *CreateFailures) Name() string              { return f.name }
func (f *CreateFailures) Observe(r aero.TickReport) { f.count += r.CreateFailures }
func (f *CreateFailures) Value() float64            { return float64(f.count) }
func (f *CreateFailures) Reset()                    { f.count = 0 }
