// Package animation holds the skeletal animation data model (bones, skeletons, decomposed
// transforms, poses and clips) together with the pose sampler and the axis-angle rotation
// primitives used for interpolation.
package animation

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrTopology is returned when a skeleton's bones are not stored parents-first.
var ErrTopology = errors.New("skeleton is not topologically ordered")

// Bone represents a single rigid segment in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier as declared in the source file.
	Name string

	// ParentIndex is the index of the parent bone (-1 for root bones).
	// For every non-root bone it is strictly smaller than the bone's own index.
	ParentIndex int

	// End is the absolute rest-pose end point of the bone. The segment drawn for a
	// non-root bone runs from its parent's End to its own End.
	End mgl64.Vec3

	// Offset is the rest displacement from the parent's frame, as declared in the file.
	// For a root bone it equals End.
	Offset mgl64.Vec3
}

// IsRoot reports whether the bone has no parent.
func (b Bone) IsRoot() bool {
	return b.ParentIndex < 0
}

// Skeleton is an ordered, parents-first sequence of bones.
// It is immutable once built; a reload replaces it wholesale.
type Skeleton struct {
	// Bones is the array of all bones in the skeleton, parents before children.
	Bones []Bone
}

// Len returns the number of bones in the skeleton. A nil skeleton has zero bones.
//
// Returns:
//   - int: the bone count
func (s *Skeleton) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bones)
}

// Empty reports whether the skeleton has no bones.
//
// Returns:
//   - bool: true if the skeleton is nil or has no bones
func (s *Skeleton) Empty() bool {
	return s.Len() == 0
}

// Validate checks the parents-first invariant: every bone's ParentIndex is -1 or smaller
// than its own index.
//
// Returns:
//   - error: an error wrapping ErrTopology naming the first offending bone, or nil
func (s *Skeleton) Validate() error {
	if s == nil {
		return nil
	}
	for i, b := range s.Bones {
		if b.ParentIndex < -1 || b.ParentIndex >= i {
			return fmt.Errorf("bone %d (%q) has parent %d: %w", i, b.Name, b.ParentIndex, ErrTopology)
		}
	}
	return nil
}

// Roots returns the indices of all bones without a parent, in ascending order.
//
// Returns:
//   - []int: root bone indices
func (s *Skeleton) Roots() []int {
	var roots []int
	for i, b := range s.Bones {
		if b.IsRoot() {
			roots = append(roots, i)
		}
	}
	return roots
}

// IndexOf looks up a bone by name.
//
// Parameters:
//   - name: the bone name to look up
//
// Returns:
//   - int: the bone index, or -1 if no bone has that name
func (s *Skeleton) IndexOf(name string) int {
	for i, b := range s.Bones {
		if b.Name == name {
			return i
		}
	}
	return -1
}
