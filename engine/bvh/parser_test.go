package bvh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hipKnee = `HIERARCHY
ROOT Hip
{
	OFFSET 0 0 0
	CHANNELS 3 Xposition Yposition Zposition
	JOINT Knee
	{
		OFFSET 0 -1 0
		CHANNELS 1 Xrotation
	}
}
MOTION
Frames: 1
Frame Time: 0.0167
0 0 0 30
`

const walker = `HIERARCHY
ROOT Hips
{
  OFFSET 1 2 3
  CHANNELS 6 Xposition Yposition Zposition Zrotation Xrotation Yrotation
  JOINT LeftUpLeg
  {
    OFFSET 0.5 0 0
    CHANNELS 3 Zrotation Xrotation Yrotation
    JOINT LeftLeg
    {
      OFFSET 0 -2 0
      CHANNELS 3 Zrotation Xrotation Yrotation
      End Site
      {
        OFFSET 0 -2 0
      }
    }
  }
  JOINT RightUpLeg
  {
    OFFSET -0.5 0 0
    CHANNELS 3 Zrotation Xrotation Yrotation
    End Site
    {
      OFFSET 0 -4 0
    }
  }
}
MOTION
Frames: 3
Frame Time: 0.5
0 0 0 0 0 0 0 0 0 0 0 0 0 0 0
1 0 0 90 0 0 0 10 0 0 0 0 0 0 0
2 0 0 0 45 0 0 0 0 0 0 20 0 0 0
`

func parse(t *testing.T, src string) (*animation.Skeleton, *animation.Clip, error) {
	t.Helper()
	return NewParser(WithSourceName("test.bvh")).Parse(strings.NewReader(src))
}

func TestParseHipKneeScenario(t *testing.T) {
	skel, clip, err := parse(t, hipKnee)
	require.NoError(t, err)
	require.Equal(t, 2, skel.Len())
	require.Equal(t, 1, clip.FrameCount())
	assert.InDelta(t, 0.0167, clip.SecondsPerFrame, 1e-12)

	pose := clip.Frames[0]
	assert.True(t, pose[0].Translation.ApproxEqualThreshold(mgl64.Vec3{}, 1e-12))
	assert.True(t, pose[0].Rotation.ApproxEqualThreshold(mgl64.Vec3{}, 1e-12))
	assert.True(t, pose[1].Rotation.ApproxEqualThreshold(mgl64.Vec3{mgl64.DegToRad(30), 0, 0}, 1e-9), "knee rotation %v", pose[1].Rotation)
	assert.True(t, pose[1].Translation.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-12))

	world, err := kinematics.EvaluateTRS(skel, pose)
	require.NoError(t, err)
	want := mgl64.Translate3D(0, -1, 0).Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(30)))
	assert.True(t, want.ApproxEqualThreshold(world[1], 1e-9), "knee world %v", world[1])
}

func TestParseBuildsTopologicalSkeleton(t *testing.T) {
	skel, clip, err := parse(t, walker)
	require.NoError(t, err)

	// Six opened blocks: Hips, LeftUpLeg, LeftLeg, its End Site, RightUpLeg, its End Site.
	require.Equal(t, 6, skel.Len())
	for i, b := range skel.Bones {
		assert.True(t, b.ParentIndex == -1 || b.ParentIndex < i, "bone %d parent %d", i, b.ParentIndex)
	}
	names := make([]string, skel.Len())
	for i, b := range skel.Bones {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"Hips", "LeftUpLeg", "LeftLeg", "LeftLeg_End", "RightUpLeg", "RightUpLeg_End"}, names)
	assert.Equal(t, []int{-1, 0, 1, 2, 0, 4}, []int{
		skel.Bones[0].ParentIndex, skel.Bones[1].ParentIndex, skel.Bones[2].ParentIndex,
		skel.Bones[3].ParentIndex, skel.Bones[4].ParentIndex, skel.Bones[5].ParentIndex,
	})

	// Absolute rest positions accumulate offsets.
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, skel.Bones[0].End)
	assert.Equal(t, mgl64.Vec3{1.5, 2, 3}, skel.Bones[1].End)
	assert.Equal(t, mgl64.Vec3{1.5, -2, 3}, skel.Bones[3].End)
	assert.Equal(t, mgl64.Vec3{0.5, -2, 3}, skel.Bones[5].End)

	assert.Equal(t, 3, clip.FrameCount())
	assert.InDelta(t, 1.5, clip.Duration(), 1e-12)
}

func TestParseChannelsInDeclarationOrder(t *testing.T) {
	_, channels, err := NewParser().ParseHierarchy(strings.NewReader(walker))
	require.NoError(t, err)
	require.Len(t, channels, 15)
	assert.Equal(t, animation.Channel{BoneIndex: 0, Kind: animation.TranslateX}, channels[0])
	assert.Equal(t, animation.Channel{BoneIndex: 0, Kind: animation.RotateZ}, channels[3])
	assert.Equal(t, animation.Channel{BoneIndex: 1, Kind: animation.RotateZ}, channels[6])
	assert.Equal(t, animation.Channel{BoneIndex: 4, Kind: animation.RotateY}, channels[14])
}

func TestDecodeChannelOrderRightMultiplies(t *testing.T) {
	_, clip, err := parse(t, walker)
	require.NoError(t, err)

	// Frame 1, root: translate offset, then X position 1, then Z rotation 90 degrees.
	root := clip.Frames[1][0]
	assert.True(t, root.Translation.ApproxEqualThreshold(mgl64.Vec3{2, 2, 3}, 1e-9), "root translation %v", root.Translation)
	assert.True(t, root.Rotation.ApproxEqualThreshold(mgl64.Vec3{0, 0, mgl64.DegToRad(90)}, 1e-9), "root rotation %v", root.Rotation)

	// Frame 2, root: Z then X rotation compose as Rz * Rx.
	want := mgl64.HomogRotate3DZ(0).Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(45)))
	got := animation.RotationMatrix(clip.Frames[2][0].Rotation)
	assert.True(t, want.ApproxEqualThreshold(got, 1e-9))

	// Bones without channels keep their rest offset.
	end := clip.Frames[2][3]
	assert.Equal(t, mgl64.Vec3{0, -2, 0}, end.Translation)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, end.Scale)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind error
	}{
		{"missing header", "ROOT a { OFFSET 0 0 0 }\nMOTION\nFrames: 0\nFrame Time: 1\n", ErrGrammar},
		{"joint at top level", "HIERARCHY\nJOINT a { OFFSET 0 0 0 }\n", ErrGrammar},
		{"two roots", "HIERARCHY\nROOT a { OFFSET 0 0 0 }\nROOT b { OFFSET 0 0 0 }\nMOTION\nFrames: 0\nFrame Time: 1\n", ErrGrammar},
		{"close before root", "HIERARCHY\n}\n", ErrGrammar},
		{"unbalanced", "HIERARCHY\nROOT a {\nOFFSET 0 0 0\nJOINT b {\nOFFSET 0 1 0\n}\n", ErrGrammar},
		{"extra closing brace", "HIERARCHY\nROOT a { OFFSET 0 0 0 } }\nMOTION\nFrames: 0\nFrame Time: 1\n", ErrGrammar},
		{"offset not first", "HIERARCHY\nROOT a {\nCHANNELS 1 Xrotation\nOFFSET 0 0 0\n}\n", ErrGrammar},
		{"bad channel", "HIERARCHY\nROOT a {\nOFFSET 0 0 0\nCHANNELS 1 Wrotation\n}\n", ErrChannel},
		{"bad number", "HIERARCHY\nROOT a {\nOFFSET 0 x 0\n}\n", ErrGrammar},
		{"no motion", "HIERARCHY\nROOT a {\nOFFSET 0 0 0\n}\n", ErrGrammar},
		{"short frame", "HIERARCHY\nROOT a {\nOFFSET 0 0 0\nCHANNELS 2 Xrotation Yrotation\n}\nMOTION\nFrames: 1\nFrame Time: 0.1\n5\n", ErrArity},
		{"missing frames", "HIERARCHY\nROOT a {\nOFFSET 0 0 0\nCHANNELS 1 Xrotation\n}\nMOTION\nFrames: 2\nFrame Time: 0.1\n5\n", ErrArity},
		{"extra frames", "HIERARCHY\nROOT a {\nOFFSET 0 0 0\nCHANNELS 1 Xrotation\n}\nMOTION\nFrames: 1\nFrame Time: 0.1\n5\n6\n", ErrArity},
		{"zero frame time", "HIERARCHY\nROOT a {\nOFFSET 0 0 0\n}\nMOTION\nFrames: 0\nFrame Time: 0\n", ErrGrammar},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			skel, clip, err := parse(t, tc.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Nil(t, skel)
			assert.Nil(t, clip)
		})
	}
}

func TestParseErrorCarriesLocation(t *testing.T) {
	src := "HIERARCHY\nROOT a {\nOFFSET 0 0 0\nCHANNELS 1 Qrotation\n}\n"
	_, _, err := parse(t, src)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "test.bvh", pe.Path)
	assert.Equal(t, 4, pe.Line)
	assert.Equal(t, "Qrotation", pe.Token)
	assert.Contains(t, err.Error(), "test.bvh:4")
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk.bvh")
	require.NoError(t, os.WriteFile(path, []byte(walker), 0o644))

	skel, clip, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 6, skel.Len())
	assert.Equal(t, 3, clip.FrameCount())

	_, _, err = LoadFile(filepath.Join(dir, "missing.bvh"))
	assert.Error(t, err)
}

func TestDecodeFramesRejectsScale(t *testing.T) {
	skel := &animation.Skeleton{Bones: []animation.Bone{{Name: "a", ParentIndex: -1}}}
	channels := []animation.Channel{{BoneIndex: 0, Kind: animation.RotateX}}

	clip, err := DecodeFrames(skel, channels, 0.1, [][]float64{{10}, {20}}, animation.DefaultDecomposeTolerance)
	require.NoError(t, err)
	assert.Equal(t, 2, clip.FrameCount())

	_, err = DecodeFrames(skel, channels, 0.1, [][]float64{{}}, animation.DefaultDecomposeTolerance)
	assert.ErrorIs(t, err, ErrArity)

	bad := []animation.Channel{{BoneIndex: 3, Kind: animation.RotateX}}
	_, err = DecodeFrames(skel, bad, 0.1, [][]float64{{1}}, animation.DefaultDecomposeTolerance)
	assert.ErrorIs(t, err, ErrInvariant)
}
