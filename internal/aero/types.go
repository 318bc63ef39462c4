package aero

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/vmath"
)

// PartID is the stable identity of a part on its vehicle.
type PartID = effects.Key

// Vehicle is what the host physics layer exposes about one rigid grid.
type Vehicle interface {
	WorldMatrix() mgl64.Mat4
	LinearVelocity() mgl64.Vec3
	// Bounds are the inclusive min/max grid cells occupied by the vehicle.
	Bounds() (lo, hi vmath.Vec3i)
	CenterOfMassLocal() mgl64.Vec3
	IsStatic() bool
	CellSize() float64
	RenderID() effects.RenderID
	// Tick increases monotonically with every simulation frame.
	Tick() uint64
}

// Part is one block attached to a vehicle.
type Part interface {
	ID() PartID
	DefinitionID() string
	// LocalMatrix places the part in the vehicle's frame.
	LocalMatrix() mgl64.Mat4
	Bounds() (lo, hi vmath.Vec3i)
	RenderID() effects.RenderID
}

// DensitySource answers air density at a world position.
type DensitySource interface {
	DensityAt(p mgl64.Vec3) float64
}
