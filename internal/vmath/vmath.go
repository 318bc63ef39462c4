// Package vmath holds the small amount of grid math shared by the aero
// packages on top of mgl64.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Principal body axes. Forward points down -Z.
var (
	Right   = mgl64.Vec3{1, 0, 0}
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, -1}
	Zero    = mgl64.Vec3{}
)

// Vec3i is an integer grid coordinate or extent.
type Vec3i [3]int

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3i) Sub(o Vec3i) Vec3i { return Vec3i{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

func (v Vec3i) Abs() Vec3i {
	return Vec3i{absInt(v[0]), absInt(v[1]), absInt(v[2])}
}

func (v Vec3i) Product() int { return v[0] * v[1] * v[2] }

func (v Vec3i) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Len is the euclidean length of the vector.
func (v Vec3i) Len() float64 { return v.Vec3().Len() }

// RoundVec rounds each component to the nearest integer.
func RoundVec(v mgl64.Vec3) Vec3i {
	return Vec3i{int(math.Round(v[0])), int(math.Round(v[1])), int(math.Round(v[2]))}
}

// Translation returns the translation column of m.
func Translation(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}

// Rotate applies only the rotation/scale part of m to v.
func Rotate(v mgl64.Vec3, m mgl64.Mat4) mgl64.Vec3 {
	return m.Mat3().Mul3x1(v)
}

// WorldToLocal expresses a world position in the frame described by parent.
func WorldToLocal(pos mgl64.Vec3, parent mgl64.Mat4) mgl64.Vec3 {
	return Rotate(pos.Sub(Translation(parent)), parent.Inv())
}

// LocalToWorld is the inverse of WorldToLocal.
func LocalToWorld(pos mgl64.Vec3, parent mgl64.Mat4) mgl64.Vec3 {
	return Rotate(pos, parent).Add(Translation(parent))
}

// IsZero reports whether every component of v is exactly zero.
func IsZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
