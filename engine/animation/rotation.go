package animation

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// zeroAngle is the angle below which an axis-angle rotation is treated as the identity
	// and its axis is arbitrary.
	zeroAngle = 1e-7

	// averageConvergence stops the rotation average once an update is this small.
	averageConvergence = 1e-5

	// averageMaxIterations bounds the rotation average on inputs that never settle.
	averageMaxIterations = 64

	// minWeightSum is the smallest weight total accepted by AverageRotation.
	minWeightSum = 1e-8
)

// RotationMatrix converts an axis-angle rotation (axis scaled by radians) into a 4x4 matrix.
// A rotation whose angle is effectively zero yields the identity.
//
// Parameters:
//   - r: the axis-angle rotation
//
// Returns:
//   - mgl64.Mat4: the homogeneous rotation matrix
func RotationMatrix(r mgl64.Vec3) mgl64.Mat4 {
	angle := r.Len()
	if angle <= zeroAngle {
		return mgl64.HomogRotate3D(angle, mgl64.Vec3{0, 0, 1})
	}
	return mgl64.HomogRotate3D(angle, r.Mul(1/angle))
}

// RotationFromMatrix extracts the axis-angle rotation of the upper-left 3x3 block of m.
// The returned angle lies in [0, pi].
//
// Parameters:
//   - m: a matrix whose upper-left block is a pure rotation
//
// Returns:
//   - mgl64.Vec3: the axis scaled by the rotation angle in radians
func RotationFromMatrix(m mgl64.Mat4) mgl64.Vec3 {
	q := mgl64.Mat4ToQuat(m)
	if q.W < 0 {
		q.W = -q.W
		q.V = q.V.Mul(-1)
	}
	s := q.V.Len()
	if s < 1e-12 {
		// sin(angle/2) ~ angle/2 for tiny angles.
		return q.V.Mul(2)
	}
	angle := 2 * math.Atan2(s, q.W)
	return q.V.Mul(angle / s)
}

// InverseRotation returns the rotation that undoes r.
//
// Parameters:
//   - r: the axis-angle rotation
//
// Returns:
//   - mgl64.Vec3: the inverse rotation
func InverseRotation(r mgl64.Vec3) mgl64.Vec3 {
	return r.Mul(-1)
}

// ComposeRotations returns the single rotation equivalent to applying first and then second,
// computed through the matrix representation.
//
// Parameters:
//   - second: the rotation applied last
//   - first: the rotation applied first
//
// Returns:
//   - mgl64.Vec3: the composed axis-angle rotation (second ∘ first)
func ComposeRotations(second, first mgl64.Vec3) mgl64.Vec3 {
	return RotationFromMatrix(RotationMatrix(second).Mul4(RotationMatrix(first)))
}

// Slerp interpolates between rotations a and b by walking t of the way along the tangent
// direction from a to b: compose(t * compose(b, inverse(a)), a).
//
// Parameters:
//   - a: the rotation at t = 0
//   - b: the rotation at t = 1
//   - t: the interpolation parameter
//
// Returns:
//   - mgl64.Vec3: the interpolated rotation
func Slerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	delta := ComposeRotations(b, InverseRotation(a))
	return ComposeRotations(delta.Mul(t), a)
}

// AverageRotation computes the weighted Fréchet mean of a set of rotations. Starting from
// rotations[0], it repeatedly averages every rotation's offset from the current estimate in
// the tangent space and composes that update onto the estimate, stopping once the update's
// magnitude drops below 1e-5.
//
// Parameters:
//   - rotations: the axis-angle rotations to average
//   - weights: one weight per rotation
//
// Returns:
//   - mgl64.Vec3: the mean rotation
//   - error: an error if the slices are empty, differ in length, or the weights sum to ~0
func AverageRotation(rotations []mgl64.Vec3, weights []float64) (mgl64.Vec3, error) {
	if len(rotations) == 0 {
		return mgl64.Vec3{}, errors.New("average rotation: no rotations")
	}
	if len(rotations) != len(weights) {
		return mgl64.Vec3{}, errors.New("average rotation: rotations and weights differ in length")
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if math.Abs(total) < minWeightSum {
		return mgl64.Vec3{}, errors.New("average rotation: weights sum to zero")
	}

	mean := rotations[0]
	for iter := 0; iter < averageMaxIterations; iter++ {
		inv := InverseRotation(mean)
		var update mgl64.Vec3
		for i, r := range rotations {
			update = update.Add(ComposeRotations(r, inv).Mul(weights[i]))
		}
		update = update.Mul(1 / total)
		if update.Len() < averageConvergence {
			break
		}
		mean = ComposeRotations(update, mean)
	}
	return mean, nil
}
