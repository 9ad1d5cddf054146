package camera

import "github.com/go-gl/mathgl/mgl64"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*orbitControllerImpl)

// WithRotation sets the initial azimuth and inclination, which Reset returns to.
//
// Parameters:
//   - azimuth, inclination: angles in radians
//
// Returns:
//   - OrbitControllerOption: functional option to set the rotation
func WithRotation(azimuth, inclination float64) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		oc.rotation = mgl64.Vec2{azimuth, inclination}
	}
}

// WithSensitivity scales how far a drag turns the view. 1 turns by pi per shorter window side.
//
// Parameters:
//   - s: the positive multiplier
//
// Returns:
//   - OrbitControllerOption: functional option to set the sensitivity
func WithSensitivity(s float64) OrbitControllerOption {
	return func(oc *orbitControllerImpl) {
		if s > 0 {
			oc.sensitivity = s
		}
	}
}
