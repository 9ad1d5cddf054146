// Package kinematics turns per-bone local transforms into world-space transforms and derives
// the geometry used to draw and skin a skeleton.
package kinematics

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
)

// Evaluate runs forward kinematics: it converts a bone-to-parent pose into a bone-to-world pose.
//
// Bones are visited in ascending index order. Because every parent precedes its children in
// the skeleton, each parent's world transform is final before a child reads it, so a single
// pass suffices: world[i] = world[parent(i)] * local[i], or local[i] for roots.
//
// Parameters:
//   - skeleton: a topologically ordered skeleton
//   - local: one bone-to-parent transform per bone
//
// Returns:
//   - animation.MatrixPose: one bone-to-world transform per bone
//   - error: an error if the pose length does not match or the skeleton order is broken
func Evaluate(skeleton *animation.Skeleton, local animation.MatrixPose) (animation.MatrixPose, error) {
	if skeleton.Len() != len(local) {
		return nil, fmt.Errorf("forward kinematics: pose has %d transforms, skeleton has %d bones", len(local), skeleton.Len())
	}
	if err := skeleton.Validate(); err != nil {
		return nil, fmt.Errorf("forward kinematics: %w", err)
	}

	world := make(animation.MatrixPose, len(local))
	for i, bone := range skeleton.Bones {
		if bone.IsRoot() {
			world[i] = local[i]
			continue
		}
		world[i] = world[bone.ParentIndex].Mul4(local[i])
	}
	return world, nil
}

// EvaluateTRS is Evaluate for a decomposed local pose.
//
// Parameters:
//   - skeleton: a topologically ordered skeleton
//   - local: one decomposed bone-to-parent transform per bone
//
// Returns:
//   - animation.MatrixPose: one bone-to-world transform per bone
//   - error: an error if the pose length does not match or the skeleton order is broken
func EvaluateTRS(skeleton *animation.Skeleton, local animation.Pose) (animation.MatrixPose, error) {
	return Evaluate(skeleton, local.Matrices())
}
