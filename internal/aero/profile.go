package aero

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/planefx/internal/vmath"
)

// Profile is the aerodynamic summary of one part shape. A zero Normal marks
// a shape with no single dominant plane; such parts produce no lift.
type Profile struct {
	Normal mgl64.Vec3
	Size   vmath.Vec3i
	Volume float64
}

// Planar reports whether the profile has a usable normal.
func (p Profile) Planar() bool { return !vmath.IsZero(p.Normal) }

// DeriveProfile classifies a part from its inclusive cell bounds and
// orientation. A shape that is exactly one cell thick along one axis and
// thicker along the other two gets that axis as its normal.
func DeriveProfile(lo, hi vmath.Vec3i, orientation mgl64.Mat3) Profile {
	extent := hi.Sub(lo).Add(vmath.Vec3i{1, 1, 1}).Abs()
	size := vmath.RoundVec(orientation.Mul3x1(extent.Vec3())).Abs()

	p := Profile{
		Size:   size,
		Volume: float64(size.Product()),
	}

	for axis, normal := range []mgl64.Vec3{vmath.Right, vmath.Up, vmath.Forward} {
		if size[axis] == 1 && size[(axis+1)%3] > 1 && size[(axis+2)%3] > 1 {
			p.Normal = normal
			break
		}
	}
	return p
}

// ProfileKey identifies a shape: its definition plus its orientation
// snapped to the 90 degree grid.
type ProfileKey struct {
	Definition  string
	Orientation [9]int8
}

func NewProfileKey(definition string, orientation mgl64.Mat3) ProfileKey {
	k := ProfileKey{Definition: definition}
	for i, v := range orientation {
		k.Orientation[i] = int8(math.Round(v))
	}
	return k
}

// ProfileCache memoizes profiles per shape so identical parts share one
// derivation. Safe for concurrent use.
type ProfileCache struct {
	mu       sync.RWMutex
	profiles map[ProfileKey]Profile
	hits     int
	misses   int
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{profiles: make(map[ProfileKey]Profile)}
}

func (c *ProfileCache) Get(key ProfileKey, derive func() Profile) Profile {
	c.mu.RLock()
	p, ok := c.profiles[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.profiles[key]; ok {
		c.hits++
		return p
	}
	p = derive()
	c.profiles[key] = p
	c.misses++
	return p
}

// ProfileOf returns the cached profile of part, deriving it on first use.
func (c *ProfileCache) ProfileOf(part Part) Profile {
	orientation := part.LocalMatrix().Mat3()
	key := NewProfileKey(part.DefinitionID(), orientation)
	return c.Get(key, func() Profile {
		lo, hi := part.Bounds()
		return DeriveProfile(lo, hi, orientation)
	})
}

func (c *ProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.profiles)
}

// Stats returns cache hits and misses.
func (c *ProfileCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
