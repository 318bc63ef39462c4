package aero

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/planefx/internal/capability"
	"github.com/san-kum/planefx/internal/config"
	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/render"
	"github.com/san-kum/planefx/internal/vmath"
)

type fakeVehicle struct {
	world    mgl64.Mat4
	velocity mgl64.Vec3
	lo, hi   vmath.Vec3i
	com      mgl64.Vec3
	static   bool
	cellSize float64
	tick     uint64
	explode  bool
}

func newFakeVehicle() *fakeVehicle {
	return &fakeVehicle{
		world:    mgl64.Translate3D(100, 2000, -50),
		lo:       vmath.Vec3i{-2, -1, -3},
		hi:       vmath.Vec3i{2, 1, 3},
		com:      mgl64.Vec3{0.5, 0, -1},
		cellSize: 2.5,
	}
}

func (v *fakeVehicle) WorldMatrix() mgl64.Mat4 {
	if v.explode {
		panic("physics body disposed")
	}
	return v.world
}
func (v *fakeVehicle) LinearVelocity() mgl64.Vec3         { return v.velocity }
func (v *fakeVehicle) Bounds() (vmath.Vec3i, vmath.Vec3i) { return v.lo, v.hi }
func (v *fakeVehicle) CenterOfMassLocal() mgl64.Vec3      { return v.com }
func (v *fakeVehicle) IsStatic() bool                     { return v.static }
func (v *fakeVehicle) CellSize() float64                  { return v.cellSize }
func (v *fakeVehicle) RenderID() effects.RenderID         { return 1 }
func (v *fakeVehicle) Tick() uint64                       { return v.tick }

// forward sets the velocity to speed along the vehicle's forward axis,
// pitched so the airflow meets horizontal surfaces at aoa radians.
func (v *fakeVehicle) forward(speed, aoa float64) {
	v.velocity = mgl64.Vec3{0, -speed * math.Sin(aoa), -speed * math.Cos(aoa)}
}

type fakePart struct {
	id     PartID
	def    string
	local  mgl64.Mat4
	lo, hi vmath.Vec3i
}

func (p *fakePart) ID() PartID                         { return p.id }
func (p *fakePart) DefinitionID() string               { return p.def }
func (p *fakePart) LocalMatrix() mgl64.Mat4            { return p.local }
func (p *fakePart) Bounds() (vmath.Vec3i, vmath.Vec3i) { return p.lo, p.hi }
func (p *fakePart) RenderID() effects.RenderID         { return effects.RenderID(100 + p.id) }

// wing is a 4x1x4 horizontal panel, normal Up.
func wing(id PartID) *fakePart {
	return &fakePart{id: id, def: "wing", local: mgl64.Translate3D(0, 0, 2), hi: vmath.Vec3i{3, 0, 3}}
}

func thruster(id PartID) *fakePart {
	return &fakePart{id: id, def: "thruster", local: mgl64.Translate3D(0, 0, 5), hi: vmath.Vec3i{0, 0, 1}}
}

type fakeAir struct{ density float64 }

func (a *fakeAir) DensityAt(mgl64.Vec3) float64 { return a.density }

func testCapabilities() *capability.Registry {
	r := capability.NewRegistry(nil)
	r.Declare("wing", capability.Aerodynamic)
	r.Declare("thruster", capability.Propulsion)
	return r
}

func newTestCore(t *testing.T, v *fakeVehicle, air *fakeAir) (*Core, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder()
	core := NewCore(v, Options{
		Atmosphere:   air,
		Profiles:     NewProfileCache(),
		Capabilities: testCapabilities(),
		Factory:      rec,
		Tuning:       config.DefaultTuning(),
		Logger:       zerolog.Nop(),
	})
	return core, rec
}
