package kinematics

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain() *animation.Skeleton {
	return &animation.Skeleton{Bones: []animation.Bone{
		{Name: "root", ParentIndex: -1},
		{Name: "mid", ParentIndex: 0, Offset: mgl64.Vec3{0, 1, 0}, End: mgl64.Vec3{0, 1, 0}},
		{Name: "tip", ParentIndex: 1, Offset: mgl64.Vec3{0, 1, 0}, End: mgl64.Vec3{0, 2, 0}},
		{Name: "side", ParentIndex: 0, Offset: mgl64.Vec3{1, 0, 0}, End: mgl64.Vec3{1, 0, 0}},
	}}
}

func TestEvaluateIdentityPose(t *testing.T) {
	skel := chain()
	world, err := Evaluate(skel, animation.IdentityPose(skel.Len()))
	require.NoError(t, err)
	for _, m := range world {
		assert.Equal(t, mgl64.Ident4(), m)
	}
}

func TestEvaluateTwoBoneComposition(t *testing.T) {
	skel := &animation.Skeleton{Bones: []animation.Bone{
		{Name: "a", ParentIndex: -1},
		{Name: "b", ParentIndex: 0},
	}}
	l0 := mgl64.Translate3D(1, 2, 3).Mul4(mgl64.HomogRotate3DY(0.4))
	l1 := mgl64.Translate3D(0, -1, 0).Mul4(mgl64.HomogRotate3DX(0.7))

	world, err := Evaluate(skel, animation.MatrixPose{l0, l1})
	require.NoError(t, err)
	assert.Equal(t, l0, world[0])
	assert.True(t, l0.Mul4(l1).ApproxEqualThreshold(world[1], 1e-12))
}

func TestEvaluateChain(t *testing.T) {
	skel := chain()
	pose := animation.RestPose(skel)
	pose[0].Rotation = mgl64.Vec3{0, 0, math.Pi / 2}

	world, err := EvaluateTRS(skel, pose)
	require.NoError(t, err)

	tip := world[2].Col(3).Vec3()
	assert.True(t, tip.ApproxEqualThreshold(mgl64.Vec3{-2, 0, 0}, 1e-9), "tip at %v", tip)
	side := world[3].Col(3).Vec3()
	assert.True(t, side.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9), "side at %v", side)
}

func TestEvaluatePreconditions(t *testing.T) {
	skel := chain()
	_, err := Evaluate(skel, animation.IdentityPose(2))
	assert.Error(t, err)

	bad := &animation.Skeleton{Bones: []animation.Bone{{ParentIndex: 1}, {ParentIndex: -1}}}
	_, err = Evaluate(bad, animation.IdentityPose(2))
	assert.ErrorIs(t, err, animation.ErrTopology)
}

func TestObjectToBoneMapsUnitZOntoSegment(t *testing.T) {
	skel := chain()
	mats, err := ObjectToBone(skel)
	require.NoError(t, err)
	require.Len(t, mats, skel.Len())
	assert.Equal(t, mgl64.Ident4(), mats[0])

	for _, i := range DrawBoneIndices(skel) {
		bone := skel.Bones[i]
		start := skel.Bones[bone.ParentIndex].End
		gotStart := mats[i].Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
		gotEnd := mats[i].Mul4x1(mgl64.Vec4{0, 0, 1, 1}).Vec3()
		assert.True(t, start.ApproxEqualThreshold(gotStart, 1e-9), "bone %d start %v", i, gotStart)
		assert.True(t, bone.End.ApproxEqualThreshold(gotEnd, 1e-9), "bone %d end %v", i, gotEnd)
	}
}

func TestObjectToBoneAntiParallel(t *testing.T) {
	skel := &animation.Skeleton{Bones: []animation.Bone{
		{Name: "r", ParentIndex: -1},
		{Name: "down", ParentIndex: 0, End: mgl64.Vec3{0, 0, -2}},
	}}
	mats, err := ObjectToBone(skel)
	require.NoError(t, err)
	end := mats[1].Mul4x1(mgl64.Vec4{0, 0, 1, 1}).Vec3()
	assert.True(t, end.ApproxEqualThreshold(mgl64.Vec3{0, 0, -2}, 1e-9), "end %v", end)
}

func TestObjectToBoneDegenerate(t *testing.T) {
	skel := &animation.Skeleton{Bones: []animation.Bone{
		{Name: "r", ParentIndex: -1},
		{Name: "zero", ParentIndex: 0},
	}}
	_, err := ObjectToBone(skel)
	assert.ErrorIs(t, err, ErrDegenerateBone)
}

func TestSegmentsFollowWorldPose(t *testing.T) {
	skel := chain()
	world, err := EvaluateTRS(skel, animation.RestPose(skel))
	require.NoError(t, err)

	segs := Segments(skel, world)
	require.Len(t, segs, 3)
	assert.Equal(t, 2, segs[1].Bone)
	assert.True(t, segs[1].Start.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-12))
	assert.True(t, segs[1].End.ApproxEqualThreshold(mgl64.Vec3{0, 2, 0}, 1e-12))

	// The rest pose reproduces the rest segments.
	assert.Equal(t, len(RestSegments(skel)), len(segs))
}

func TestPointSegmentDistance(t *testing.T) {
	a, b := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0}
	assert.InDelta(t, 1.0, PointSegmentDistance(mgl64.Vec3{1, 1, 0}, a, b), 1e-12)
	assert.InDelta(t, 1.0, PointSegmentDistance(mgl64.Vec3{0, 3, 0}, a, b), 1e-12)
	assert.InDelta(t, 1.0, PointSegmentDistance(mgl64.Vec3{0, -1, 0}, a, a), 1e-12)
}

func TestComputeWeights(t *testing.T) {
	skel := chain()
	positions := []mgl64.Vec3{
		{0.1, 0.5, 0},
		{0, 1.5, 0},
		{0.5, 0, 0},
		{3, 3, 3},
	}

	weights, err := ComputeWeights(skel, positions, 2)
	require.NoError(t, err)
	require.Len(t, weights, len(positions))

	// Closest to root->mid, then mid->tip: driven by root and mid.
	assert.Equal(t, [MaxInfluences]int32{0, 1, -1, -1}, weights[0].Bones)
	// On the mid->tip segment: bound to mid alone.
	assert.Equal(t, int32(1), weights[1].Bones[0])
	assert.Equal(t, float32(1), weights[1].Weights[0])
	// root->side and root->mid share the root, which is listed once.
	assert.Equal(t, int32(0), weights[2].Bones[0])
	assert.Equal(t, [MaxInfluences]int32{1, 0, -1, -1}, weights[3].Bones)

	for _, w := range weights {
		sum := float32(0)
		for _, v := range w.Weights {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestComputeWeightsRejectsBadK(t *testing.T) {
	_, err := ComputeWeights(chain(), nil, 0)
	assert.Error(t, err)
	_, err = ComputeWeights(chain(), nil, MaxInfluences+1)
	assert.Error(t, err)

	_, err = ComputeWeights(&animation.Skeleton{Bones: []animation.Bone{{ParentIndex: -1}}}, nil, 1)
	assert.Error(t, err)
}

func leg() *animation.Skeleton {
	return &animation.Skeleton{Bones: []animation.Bone{
		{Name: "Hip", ParentIndex: -1},
		{Name: "Knee", ParentIndex: 0, Offset: mgl64.Vec3{0, -1, 0}, End: mgl64.Vec3{0, -1, 0}},
		{Name: "Ankle", ParentIndex: 1, Offset: mgl64.Vec3{0, -1, 0}, End: mgl64.Vec3{0, -2, 0}},
	}}
}

// skin applies linear blend skinning to v with the rest-to-posed matrices world·rest⁻¹.
func skin(t *testing.T, skel *animation.Skeleton, pose animation.Pose, v mgl64.Vec3, w VertexWeights) mgl64.Vec3 {
	t.Helper()
	rest, err := EvaluateTRS(skel, animation.RestPose(skel))
	require.NoError(t, err)
	world, err := EvaluateTRS(skel, pose)
	require.NoError(t, err)

	var out mgl64.Vec3
	for i, b := range w.Bones {
		if b < 0 {
			continue
		}
		m := world[b].Mul4(rest[b].Inv())
		out = out.Add(mgl64.TransformCoordinate(v, m).Mul(float64(w.Weights[i])))
	}
	return out
}

func TestSkinFollowsDrawnSegments(t *testing.T) {
	skel := leg()
	thigh := mgl64.Vec3{0.01, -0.5, 0}
	shin := mgl64.Vec3{0.01, -1.5, 0}
	weights, err := ComputeWeights(skel, []mgl64.Vec3{thigh, shin}, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), weights[0].Bones[0])
	assert.Equal(t, int32(1), weights[1].Bones[0])

	pose := animation.RestPose(skel)
	pose[1].Rotation = mgl64.Vec3{math.Pi / 2, 0, 0}
	world, err := EvaluateTRS(skel, pose)
	require.NoError(t, err)
	segs := Segments(skel, world)
	require.Len(t, segs, 2)

	// Bending the knee leaves the thigh where it was.
	assert.True(t, skin(t, skel, pose, thigh, weights[0]).ApproxEqualThreshold(thigh, 1e-9))

	// The shin vertex stays beside the drawn shin segment.
	movedShin := skin(t, skel, pose, shin, weights[1])
	d := PointSegmentDistance(movedShin, segs[1].Start, segs[1].End)
	assert.InDelta(t, 0.01, d, 1e-9)
	assert.Greater(t, movedShin.Sub(shin).Len(), 0.1)
}
