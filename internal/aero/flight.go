package aero

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/planefx/internal/vmath"
)

// Curve fit of speed of sound against air density, valid down to roughly
// 22.68 kPa equivalent. Outside that range it is still applied but only the
// floor keeps it sane.
const (
	soundDensityGain  = 8947200.0
	soundDensityShift = 899699.0
	soundExponent     = 1 / 3.42938
	soundOffset       = 236.712
)

// Symmetric airfoil lift curve approximation.
const (
	liftCurvePeak = 1.35
	liftCurveRate = 5.75
)

// SpeedOfSound approximates the speed of sound in m/s at the given density,
// never returning less than floor.
func SpeedOfSound(density, floor float64) float64 {
	a := math.Pow(soundDensityGain*density-soundDensityShift, soundExponent) + soundOffset
	if math.IsNaN(a) || a < floor {
		return floor
	}
	return a
}

// InTransonicBand reports whether speed lies strictly inside
// speedOfSound·(1±fraction).
func InTransonicBand(speed, speedOfSound, fraction float64) bool {
	return speed > speedOfSound*(1-fraction) && speed < speedOfSound*(1+fraction)
}

// TransonicScale is a triangular falloff peaking at exactly sonic speed and
// reaching zero at the band edges, multiplied by sizeTerm.
func TransonicScale(speed, speedOfSound, fraction, sizeTerm float64) float64 {
	falloff := 1 - math.Abs(speed-speedOfSound)/(speedOfSound*fraction)
	if falloff < 0 {
		return 0
	}
	return falloff * sizeTerm
}

// TransonicSizeTerm scales the cone with the vehicle's bounding diagonal.
func TransonicSizeTerm(lo, hi vmath.Vec3i, cellSize, divisor float64) float64 {
	return (hi.Sub(lo).Len() + 1) * cellSize / divisor
}

// AngleOfAttack is the angle between the airflow and the surface plane,
// given the drag direction and the surface normal.
func AngleOfAttack(drag, normal mgl64.Vec3) float64 {
	return math.Asin(vmath.Clamp(drag.Dot(normal), -1, 1))
}

func LiftCoefficient(angleOfAttack float64) float64 {
	return liftCurvePeak * math.Sin(liftCurveRate*angleOfAttack)
}

func DynamicPressure(speed, density float64) float64 {
	return 0.5 * speed * speed * density
}

// LiftIntensity maps a lift force to an effect intensity: zero at the
// threshold, one at threshold+scalar, negative below the threshold.
func LiftIntensity(liftForce, threshold, scalar float64) float64 {
	return (math.Abs(liftForce) - threshold) / scalar
}
