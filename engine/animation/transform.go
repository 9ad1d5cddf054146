package animation

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultDecomposeTolerance bounds how far a basis column's length may stray from 1
// before DecomposeTRS rejects a matrix as scaled.
const DefaultDecomposeTolerance = 1e-5

// TRS is a decomposed local transform used for sampling and interpolation.
type TRS struct {
	// Translation is the position offset.
	Translation mgl64.Vec3

	// Rotation is an axis scaled by an angle in radians. The zero vector is the identity.
	Rotation mgl64.Vec3

	// Scale is the scale factor along each axis.
	Scale mgl64.Vec3
}

// Identity returns the identity transform (zero translation and rotation, unit scale).
//
// Returns:
//   - TRS: the identity transform
func Identity() TRS {
	return TRS{Scale: mgl64.Vec3{1, 1, 1}}
}

// Matrix composes the transform into a 4x4 matrix as translate * rotate * scale, so a point
// is scaled first and translated last.
//
// Returns:
//   - mgl64.Mat4: the composed matrix
func (t TRS) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(RotationMatrix(t.Rotation)).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// DecomposeTRS splits a rigid matrix back into translation and axis-angle rotation.
// The scale is assumed to be exactly one on every axis; a basis column whose length differs
// from 1 by more than tol is rejected.
//
// Parameters:
//   - m: the matrix to decompose
//   - tol: the allowed deviation of each basis column length from 1
//
// Returns:
//   - TRS: the decomposed transform, with Scale (1, 1, 1)
//   - error: an error if the matrix carries scale or shear beyond tol
func DecomposeTRS(m mgl64.Mat4, tol float64) (TRS, error) {
	for c := 0; c < 3; c++ {
		l := m.Col(c).Vec3().Len()
		if math.Abs(l-1) > tol {
			return TRS{}, fmt.Errorf("basis column %d has length %g, want 1 within %g", c, l, tol)
		}
	}
	return TRS{
		Translation: m.Col(3).Vec3(),
		Rotation:    RotationFromMatrix(m),
		Scale:       mgl64.Vec3{1, 1, 1},
	}, nil
}

// Pose is one decomposed bone-to-parent transform per skeleton bone, indexed like the skeleton.
type Pose []TRS

// Clone returns an independent copy of the pose.
//
// Returns:
//   - Pose: the copy
func (p Pose) Clone() Pose {
	if p == nil {
		return nil
	}
	out := make(Pose, len(p))
	copy(out, p)
	return out
}

// Matrices converts every transform of the pose into its matrix form.
//
// Returns:
//   - MatrixPose: one matrix per bone
func (p Pose) Matrices() MatrixPose {
	out := make(MatrixPose, len(p))
	for i, t := range p {
		out[i] = t.Matrix()
	}
	return out
}

// MatrixPose is one 4x4 transform per skeleton bone. It holds either bone-to-parent (local)
// or bone-to-world transforms; kinematics converts the former into the latter.
type MatrixPose []mgl64.Mat4

// IdentityPose returns a matrix pose of n identity transforms.
//
// Parameters:
//   - n: the number of bones
//
// Returns:
//   - MatrixPose: n identity matrices
func IdentityPose(n int) MatrixPose {
	out := make(MatrixPose, n)
	for i := range out {
		out[i] = mgl64.Ident4()
	}
	return out
}
