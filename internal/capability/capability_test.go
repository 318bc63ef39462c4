package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type def string

func (d def) DefinitionID() string { return string(d) }

func TestRegistry_Declared(t *testing.T) {
	r := NewRegistry(nil)
	r.Declare("LargeWing", Aerodynamic)
	r.Declare("AtmoThruster", Propulsion)

	assert.True(t, r.HasAerodynamicSurfaceBehavior(def("LargeWing")))
	assert.False(t, r.IsPropulsionPart(def("LargeWing")))
	assert.True(t, r.IsPropulsionPart(def("AtmoThruster")))
	assert.False(t, r.HasAerodynamicSurfaceBehavior(def("Armor")))
}

func TestRegistry_ResolvesOnce(t *testing.T) {
	calls := 0
	r := NewRegistry(func(id string) Behavior {
		calls++
		if id == "Canard" {
			return Aerodynamic
		}
		return 0
	})

	for i := 0; i < 5; i++ {
		assert.True(t, r.HasAerodynamicSurfaceBehavior(def("Canard")))
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, r.Resolved())
}

func TestRegistry_DeclareOverridesCache(t *testing.T) {
	r := NewRegistry(func(string) Behavior { return 0 })
	assert.False(t, r.IsPropulsionPart(def("Ion")))

	r.Declare("Ion", Propulsion)
	assert.True(t, r.IsPropulsionPart(def("Ion")))
	assert.Zero(t, r.Resolved())
}

func TestBehavior_String(t *testing.T) {
	assert.Equal(t, "none", Behavior(0).String())
	assert.Equal(t, "aerodynamic", Aerodynamic.String())
	assert.Equal(t, "aerodynamic+propulsion", (Aerodynamic | Propulsion).String())
}
