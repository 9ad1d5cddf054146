package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

const armBVH = `HIERARCHY
ROOT Shoulder
{
	OFFSET 0 0 0
	CHANNELS 6 Xposition Yposition Zposition Zrotation Xrotation Yrotation
	JOINT Elbow
	{
		OFFSET 1 0 0
		CHANNELS 3 Zrotation Xrotation Yrotation
		End Site
		{
			OFFSET 1 0 0
		}
	}
}
MOTION
Frames: 3
Frame Time: 0.1
0 0 0 0 0 0 0 0 0
0 0 0 0 0 0 45 0 0
0 0 0 0 0 0 90 0 0
`

func TestOutputName(t *testing.T) {
	assert.Equal(t, "pose.webp", outputName("pose.webp", 0, 1))
	assert.Equal(t, filepath.Join("out", "pose_007.webp"), outputName(filepath.Join("out", "pose.webp"), 7, 12))
	assert.Equal(t, "pose_002", outputName("pose", 2, 3))
}

func TestRenderWritesEveryFrame(t *testing.T) {
	dir := t.TempDir()
	motion := filepath.Join(dir, "arm.bvh")
	require.NoError(t, os.WriteFile(motion, []byte(armBVH), 0o644))

	v, err := config.Load("")
	require.NoError(t, err)
	v.Set("preview.output", filepath.Join(dir, "arm.webp"))
	v.Set("preview.frames", 3)
	v.Set("preview.width", 32)
	v.Set("preview.height", 32)
	cfg := config.FromViper(v)

	require.NoError(t, render(motion, cfg, mgl64.Ident4()))
	for i := range 3 {
		f, err := os.Open(outputName(cfg.Preview.Output, i, 3))
		require.NoError(t, err)
		img, err := webp.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 32, img.Bounds().Dx())
	}
}

func TestRenderReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	motion := filepath.Join(dir, "broken.bvh")
	require.NoError(t, os.WriteFile(motion, []byte("HIERARCHY\nROOT"), 0o644))

	v, err := config.Load("")
	require.NoError(t, err)
	v.Set("preview.output", filepath.Join(dir, "broken.webp"))
	assert.Error(t, render(motion, config.FromViper(v), mgl64.Ident4()))
	_, err = os.Stat(filepath.Join(dir, "broken.webp"))
	assert.True(t, os.IsNotExist(err))
}
