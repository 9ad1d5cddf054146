package animation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// samplerImpl is the implementation of the Sampler interface.
type samplerImpl struct {
	inPlace bool
}

// Sampler maps an elapsed time onto a local pose of a looping clip.
//
// Sampling picks the nearest frame; there is no blending between neighbouring frames.
// The rotation primitives in this package (Slerp, AverageRotation) exist for callers that
// want to blend themselves.
type Sampler interface {
	// Sample returns the local pose of clip at time t (seconds), looping over the clip duration.
	// The returned pose is a copy and may be modified freely.
	//
	// Parameters:
	//   - clip: the clip to sample
	//   - t: elapsed time in seconds
	//
	// Returns:
	//   - Pose: the sampled local pose, or nil when the clip is empty
	Sample(clip *Clip, t float64) Pose

	// FrameIndex returns the index of the frame Sample would return for time t.
	//
	// Parameters:
	//   - clip: the clip to sample
	//   - t: elapsed time in seconds
	//
	// Returns:
	//   - int: the frame index, or -1 when the clip is empty
	FrameIndex(clip *Clip, t float64) int

	// InPlace reports whether SampleFor resets root translations to the roots' rest Offset.
	//
	// Returns:
	//   - bool: true if the sampler keeps the animation in place
	InPlace() bool
}

var _ Sampler = &samplerImpl{}

// NewSampler creates a nearest-frame Sampler with the given options applied.
//
// Parameters:
//   - options: a variadic list of SamplerBuilderOption functions
//
// Returns:
//   - Sampler: the configured sampler
func NewSampler(options ...SamplerBuilderOption) Sampler {
	s := &samplerImpl{}
	for _, option := range options {
		option(s)
	}
	return s
}

// Sample is the package-level nearest-frame sampler with default options.
//
// Parameters:
//   - clip: the clip to sample
//   - t: elapsed time in seconds
//
// Returns:
//   - Pose: the sampled local pose, or nil when the clip is empty
func Sample(clip *Clip, t float64) Pose {
	return defaultSampler.Sample(clip, t)
}

var defaultSampler = &samplerImpl{}

func (s *samplerImpl) Sample(clip *Clip, t float64) Pose {
	idx := s.FrameIndex(clip, t)
	if idx < 0 {
		return nil
	}
	return clip.Frames[idx].Clone()
}

func (s *samplerImpl) FrameIndex(clip *Clip, t float64) int {
	if clip.Empty() || clip.SecondsPerFrame <= 0 {
		return -1
	}
	n := len(clip.Frames)
	u := math.Mod(t/clip.Duration(), 1.0)
	if u < 0 {
		u += 1
	}
	if u >= 1 || math.IsNaN(u) {
		u = 0
	}
	idx := int(math.Round(u * float64(n-1)))
	return max(0, min(n-1, idx))
}

func (s *samplerImpl) InPlace() bool {
	return s.inPlace
}

// SampleFor is Sample followed by the sampler's post-processing against a skeleton:
// with in-place playback enabled, every root bone's translation is reset to its rest offset.
//
// Parameters:
//   - sampler: the sampler to use
//   - skeleton: the skeleton the clip animates
//   - clip: the clip to sample
//   - t: elapsed time in seconds
//
// Returns:
//   - Pose: the sampled local pose, or nil when the clip is empty
func SampleFor(sampler Sampler, skeleton *Skeleton, clip *Clip, t float64) Pose {
	pose := sampler.Sample(clip, t)
	if pose == nil || !sampler.InPlace() || skeleton == nil {
		return pose
	}
	for i := range pose {
		if i < len(skeleton.Bones) && skeleton.Bones[i].IsRoot() {
			pose[i].Translation = skeleton.Bones[i].Offset
		}
	}
	return pose
}

// RestPose returns the skeleton's rest pose: each bone translated by its offset with no rotation.
//
// Parameters:
//   - skeleton: the skeleton
//
// Returns:
//   - Pose: one transform per bone
func RestPose(skeleton *Skeleton) Pose {
	out := make(Pose, skeleton.Len())
	for i, b := range skeleton.Bones {
		out[i] = TRS{Translation: b.Offset, Scale: mgl64.Vec3{1, 1, 1}}
	}
	return out
}
