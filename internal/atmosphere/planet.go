package atmosphere

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/planefx/internal/vmath"
)

// Planet is a spherical body whose air thins linearly from SurfaceDensity at
// SurfaceRadius to nothing at the edge of its atmosphere.
type Planet struct {
	Name           string
	Position       mgl64.Vec3
	SurfaceRadius  float64
	AtmosphereEdge float64
	SurfaceDensity float64

	closed atomic.Bool
}

func NewPlanet(name string, center mgl64.Vec3, surfaceRadius, atmosphereRadius, surfaceDensity float64) *Planet {
	return &Planet{
		Name:           name,
		Position:       center,
		SurfaceRadius:  surfaceRadius,
		AtmosphereEdge: atmosphereRadius,
		SurfaceDensity: surfaceDensity,
	}
}

func (p *Planet) Center() mgl64.Vec3        { return p.Position }
func (p *Planet) AtmosphereRadius() float64 { return p.AtmosphereEdge }
func (p *Planet) Closed() bool              { return p.closed.Load() }

// Close marks the planet as removed from the world.
func (p *Planet) Close() { p.closed.Store(true) }

func (p *Planet) DensityAt(pos mgl64.Vec3) float64 {
	depth := p.AtmosphereEdge - p.SurfaceRadius
	if depth <= 0 {
		return 0
	}
	altitude := pos.Sub(p.Position).Len() - p.SurfaceRadius
	d := p.SurfaceDensity * (1 - altitude/depth)
	return vmath.Clamp(d, 0, p.SurfaceDensity)
}

// AltitudeFor returns the altitude above the surface at which the planet's
// density equals density.
func (p *Planet) AltitudeFor(density float64) float64 {
	if p.SurfaceDensity <= 0 {
		return 0
	}
	return (1 - density/p.SurfaceDensity) * (p.AtmosphereEdge - p.SurfaceRadius)
}
