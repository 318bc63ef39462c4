package atmosphere

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

type fakeBody struct {
	center  mgl64.Vec3
	radius  float64
	density float64
	closed  bool
	queries int
}

func (b *fakeBody) Center() mgl64.Vec3        { return b.center }
func (b *fakeBody) AtmosphereRadius() float64 { return b.radius }
func (b *fakeBody) Closed() bool              { return b.closed }
func (b *fakeBody) DensityAt(mgl64.Vec3) float64 {
	b.queries++
	return b.density
}

func TestDensityAt_Vacuum(t *testing.T) {
	r := NewRegistry()
	assert.Zero(t, r.DensityAt(mgl64.Vec3{}))

	r.Add(&fakeBody{center: mgl64.Vec3{0, 0, 0}, radius: 100, density: 1})
	r.Add(&fakeBody{center: mgl64.Vec3{1000, 0, 0}, radius: 100, density: 0.5})

	assert.Zero(t, r.DensityAt(mgl64.Vec3{500, 0, 0}))
	assert.Zero(t, r.DensityAt(mgl64.Vec3{0, 100.001, 0}))
}

func TestDensityAt_BoundaryInclusive(t *testing.T) {
	r := NewRegistry()
	r.Add(&fakeBody{radius: 100, density: 0.7})
	assert.Equal(t, 0.7, r.DensityAt(mgl64.Vec3{0, 100, 0}))
}

func TestDensityAt_FirstRegisteredWins(t *testing.T) {
	r := NewRegistry()
	first := &fakeBody{center: mgl64.Vec3{0, 0, 0}, radius: 500, density: 0.9}
	second := &fakeBody{center: mgl64.Vec3{100, 0, 0}, radius: 500, density: 0.4}
	r.Add(first)
	r.Add(second)

	assert.Equal(t, 0.9, r.DensityAt(mgl64.Vec3{50, 0, 0}))
	assert.Zero(t, second.queries)
}

func TestDensityAt_LazyRemoval(t *testing.T) {
	r := NewRegistry()
	closed := &fakeBody{radius: 500, density: 0.9, closed: true}
	open := &fakeBody{radius: 500, density: 0.4}
	r.Add(closed)
	r.Add(open)
	assert.Equal(t, 2, r.Len())

	assert.Equal(t, 0.4, r.DensityAt(mgl64.Vec3{}))
	assert.Equal(t, 1, r.Len())
	assert.Zero(t, closed.queries)
}

func TestDensityAt_NegativeClamped(t *testing.T) {
	r := NewRegistry()
	r.Add(&fakeBody{radius: 10, density: -3})
	assert.Zero(t, r.DensityAt(mgl64.Vec3{}))
}

func TestOnEntityAdd(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.OnEntityAdd("not a body"))
	assert.True(t, r.OnEntityAdd(NewPlanet("p", mgl64.Vec3{}, 10, 20, 1)))
	assert.Equal(t, 1, r.Len())
}

func TestPlanet_Density(t *testing.T) {
	p := NewPlanet("earthlike", mgl64.Vec3{0, 0, 0}, 60000, 70000, 1.0)

	tests := []struct {
		name     string
		altitude float64
		want     float64
	}{
		{"below surface", -50, 1.0},
		{"surface", 0, 1.0},
		{"halfway", 5000, 0.5},
		{"edge", 10000, 0},
		{"space", 20000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mgl64.Vec3{0, 60000 + tt.altitude, 0}
			assert.InDelta(t, tt.want, p.DensityAt(pos), 1e-9)
		})
	}

	assert.InDelta(t, 5000, p.AltitudeFor(0.5), 1e-9)
}

func TestPlanet_Close(t *testing.T) {
	r := NewRegistry()
	p := NewPlanet("p", mgl64.Vec3{}, 100, 200, 1)
	r.Add(p)

	assert.Equal(t, 1.0, r.DensityAt(mgl64.Vec3{0, 100, 0}))
	p.Close()
	assert.Zero(t, r.DensityAt(mgl64.Vec3{0, 100, 0}))
	assert.Zero(t, r.Len())
}
