package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// stripe returns a w x h image whose top row is red and the rest blue.
func stripe(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := blue
			if y == 0 {
				c = red
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestDecodeFlip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stripe(1, 2)))

	img, format, err := Decode(bytes.NewReader(buf.Bytes()), false)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, img.Pixels)

	img, _, err = Decode(bytes.NewReader(buf.Bytes()), true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255, 255, 255, 0, 0, 255}, img.Pixels)
	assert.Equal(t, uint32(4), img.BytesPerRow())
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, stripe(3, 2)))
	img, format, err := Decode(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, uint32(3), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Len(t, img.Pixels, 3*2*4)
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")), false)
	assert.Error(t, err)
}

func TestLoad2D(t *testing.T) {
	path := writePNG(t, t.TempDir(), "bricks.png", stripe(4, 2))
	tex, err := NewLoader().Load("bricks", []string{path})
	require.NoError(t, err)
	assert.Equal(t, Kind2D, tex.Kind)
	assert.Equal(t, wgpu.TextureViewDimension2D, tex.ViewDimension())
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, tex.Format())
	assert.Equal(t, wgpu.Extent3D{Width: 4, Height: 2, DepthOrArrayLayers: 1}, tex.Extent())
	// Flipped by default: the red top row ends up last.
	assert.Equal(t, byte(255), tex.Faces[0].Pixels[len(tex.Faces[0].Pixels)-4])

	tex, err = NewLoader(WithFlipY(false)).Load("bricks", []string{path})
	require.NoError(t, err)
	assert.Equal(t, byte(255), tex.Faces[0].Pixels[0])
}

func TestLoadCube(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, face := range []string{"px", "nx", "py", "ny", "pz", "nz"} {
		paths = append(paths, writePNG(t, dir, face+".png", stripe(2, 2)))
	}
	tex, err := NewLoader().Load("sky", paths)
	require.NoError(t, err)
	assert.Equal(t, KindCube, tex.Kind)
	assert.Equal(t, "cube", tex.Kind.String())
	assert.Equal(t, wgpu.TextureViewDimensionCube, tex.ViewDimension())
	assert.Equal(t, uint32(6), tex.Extent().DepthOrArrayLayers)
	// Cube faces keep their row order.
	assert.Equal(t, byte(255), tex.Faces[3].Pixels[0])

	paths[4] = writePNG(t, dir, "big.png", stripe(4, 4))
	_, err = NewLoader().Load("sky", paths)
	assert.ErrorContains(t, err, "want 2x2")

	rect := writePNG(t, dir, "rect.png", stripe(2, 1))
	_, err = NewLoader().Load("sky", []string{rect, rect, rect, rect, rect, rect})
	assert.ErrorContains(t, err, "square")
}

func TestLoadPathCount(t *testing.T) {
	_, err := NewLoader().Load("x", []string{"a", "b"})
	assert.ErrorContains(t, err, "want 1 or 6 paths")
	_, err = NewLoader().Load("x", nil)
	assert.Error(t, err)
}

func TestLoadAllOnPool(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png", stripe(2, 2))
	var cube []string
	for i := 0; i < CubeFaces; i++ {
		cube = append(cube, good)
	}

	pool := worker.NewDynamicWorkerPool(3, 256, time.Second)
	defer pool.Stop()

	textures, failures := NewLoader(WithWorkerPool(pool)).LoadAll(map[string][]string{
		"diffuse": {good},
		"sky":     cube,
		"missing": {filepath.Join(dir, "nope.png")},
		"bad":     {good, good},
	})
	require.Len(t, textures, 2)
	assert.Equal(t, Kind2D, textures["diffuse"].Kind)
	assert.Equal(t, KindCube, textures["sky"].Kind)
	for _, f := range textures["sky"].Faces {
		assert.Len(t, f.Pixels, 16)
	}
	require.Len(t, failures, 2)
	assert.ErrorContains(t, failures["missing"], "nope.png")
	assert.ErrorContains(t, failures["bad"], "paths")
}

func TestLoadAllWithDecodeFunc(t *testing.T) {
	var calls []string
	fake := func(path string, flipY bool) (Image, error) {
		calls = append(calls, path)
		assert.True(t, flipY)
		return Image{Pixels: make([]byte, 4), Width: 1, Height: 1}, nil
	}
	textures, failures := NewLoader(WithDecodeFunc(fake)).LoadAll(map[string][]string{
		"b": {"b.tga"},
		"a": {"a.tga"},
	})
	assert.Empty(t, failures)
	assert.Len(t, textures, 2)
	assert.Equal(t, []string{"a.tga", "b.tga"}, calls)
}
