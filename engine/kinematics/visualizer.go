package kinematics

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateBone is returned when a non-root bone has a zero-length rest segment.
var ErrDegenerateBone = errors.New("degenerate bone segment")

// minSegmentLength is the shortest rest segment that can be oriented.
const minSegmentLength = 1e-9

// Segment is a drawable line segment for one non-root bone.
type Segment struct {
	// Bone is the index of the bone the segment belongs to.
	Bone int

	// Start is the world-space position of the parent joint.
	Start mgl64.Vec3

	// End is the world-space position of the bone's own joint.
	End mgl64.Vec3
}

// ObjectToBone builds, for every bone, the matrix that maps a unit-length bone model lying
// along +Z from the origin onto the bone's rest segment (parent.End to End). Roots have
// nothing to draw and receive the identity so the result indexes like the skeleton.
//
// Parameters:
//   - skeleton: the skeleton to visualize
//
// Returns:
//   - []mgl64.Mat4: one object-to-bone matrix per bone
//   - error: an error wrapping ErrDegenerateBone if a non-root segment has zero length
func ObjectToBone(skeleton *animation.Skeleton) ([]mgl64.Mat4, error) {
	out := make([]mgl64.Mat4, skeleton.Len())
	for i, bone := range skeleton.Bones {
		if bone.IsRoot() {
			out[i] = mgl64.Ident4()
			continue
		}
		start := skeleton.Bones[bone.ParentIndex].End
		dir := bone.End.Sub(start)
		length := dir.Len()
		if length < minSegmentLength {
			return nil, fmt.Errorf("bone %d (%q): %w", i, bone.Name, ErrDegenerateBone)
		}
		dir = dir.Mul(1 / length)

		z := mgl64.Vec3{0, 0, 1}
		cosTheta := z.Dot(dir)
		// Parallel or anti-parallel: the cross product vanishes, so pick an axis
		// perpendicular to Z.
		axis := mgl64.Vec3{1, 0, 0}
		if math.Abs(math.Abs(cosTheta)-1) > 1e-5 {
			axis = z.Cross(dir).Normalize()
		}
		angle := math.Acos(mgl64.Clamp(cosTheta, -1, 1))

		out[i] = mgl64.Translate3D(start[0], start[1], start[2]).
			Mul4(mgl64.HomogRotate3D(angle, axis)).
			Mul4(mgl64.Scale3D(length, length, length))
	}
	return out, nil
}

// DrawBoneIndices returns the indices of every bone that has a segment to draw (non-roots).
//
// Parameters:
//   - skeleton: the skeleton to visualize
//
// Returns:
//   - []int: non-root bone indices in ascending order
func DrawBoneIndices(skeleton *animation.Skeleton) []int {
	out := make([]int, 0, skeleton.Len())
	for i, bone := range skeleton.Bones {
		if !bone.IsRoot() {
			out = append(out, i)
		}
	}
	return out
}

// Segments returns the world-space segment of every non-root bone, running from the parent
// joint's origin to the bone's own joint origin.
//
// Parameters:
//   - skeleton: the skeleton the pose belongs to
//   - world: the bone-to-world pose from Evaluate
//
// Returns:
//   - []Segment: one segment per non-root bone
func Segments(skeleton *animation.Skeleton, world animation.MatrixPose) []Segment {
	out := make([]Segment, 0, skeleton.Len())
	for i, bone := range skeleton.Bones {
		if bone.IsRoot() || i >= len(world) {
			continue
		}
		out = append(out, Segment{
			Bone:  i,
			Start: world[bone.ParentIndex].Col(3).Vec3(),
			End:   world[i].Col(3).Vec3(),
		})
	}
	return out
}

// RestSegments returns the rest-pose segment of every non-root bone from the bones' End points.
//
// Parameters:
//   - skeleton: the skeleton
//
// Returns:
//   - []Segment: one segment per non-root bone
func RestSegments(skeleton *animation.Skeleton) []Segment {
	out := make([]Segment, 0, skeleton.Len())
	for i, bone := range skeleton.Bones {
		if bone.IsRoot() {
			continue
		}
		out = append(out, Segment{Bone: i, Start: skeleton.Bones[bone.ParentIndex].End, End: bone.End})
	}
	return out
}
