package scenario

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/planefx/internal/aero"
	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/vmath"
)

// Craft is a scripted rigid body. The session moves it; the aero core reads it.
type Craft struct {
	world    mgl64.Mat4
	velocity mgl64.Vec3
	lo, hi   vmath.Vec3i
	com      mgl64.Vec3
	cellSize float64
	static   bool
	tick     uint64
	renderID effects.RenderID
}

func newCraft(spec VehicleSpec, renderID effects.RenderID) *Craft {
	return &Craft{
		world:    mgl64.Ident4(),
		lo:       vmath.Vec3i(spec.Min),
		hi:       vmath.Vec3i(spec.Max),
		com:      mgl64.Vec3(spec.CenterOfMass),
		cellSize: spec.CellSize,
		renderID: renderID,
	}
}

func (c *Craft) WorldMatrix() mgl64.Mat4            { return c.world }
func (c *Craft) LinearVelocity() mgl64.Vec3         { return c.velocity }
func (c *Craft) Bounds() (vmath.Vec3i, vmath.Vec3i) { return c.lo, c.hi }
func (c *Craft) CenterOfMassLocal() mgl64.Vec3      { return c.com }
func (c *Craft) IsStatic() bool                     { return c.static }
func (c *Craft) CellSize() float64                  { return c.cellSize }
func (c *Craft) RenderID() effects.RenderID         { return c.renderID }
func (c *Craft) Tick() uint64                       { return c.tick }

// place puts the craft at position flying level along world forward at
// speed, with its nose pitched up by pitch radians.
func (c *Craft) place(position mgl64.Vec3, speed, pitch float64) {
	c.world = mgl64.Translate3D(position[0], position[1], position[2]).Mul4(mgl64.HomogRotate3DX(pitch))
	c.velocity = vmath.Forward.Mul(speed)
}

// Block is a part of a Craft.
type Block struct {
	spec     PartSpec
	local    mgl64.Mat4
	renderID effects.RenderID
}

func newBlock(spec PartSpec, renderID effects.RenderID) *Block {
	rot := mgl64.AnglesToQuat(
		mgl64.DegToRad(spec.Yaw),
		mgl64.DegToRad(spec.Pitch),
		mgl64.DegToRad(spec.Roll),
		mgl64.YXZ,
	).Mat4()
	pos := spec.Position
	return &Block{
		spec:     spec,
		local:    mgl64.Translate3D(pos[0], pos[1], pos[2]).Mul4(rot),
		renderID: renderID,
	}
}

func (b *Block) ID() aero.PartID         { return aero.PartID(b.spec.ID) }
func (b *Block) DefinitionID() string    { return b.spec.Definition }
func (b *Block) LocalMatrix() mgl64.Mat4 { return b.local }

func (b *Block) Bounds() (vmath.Vec3i, vmath.Vec3i) {
	return vmath.Vec3i(b.spec.Min), vmath.Vec3i(b.spec.Max)
}

func (b *Block) RenderID() effects.RenderID { return b.renderID }
