package preview

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

var (
	bg    = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	bone  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	joint = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
)

func legSegments() []kinematics.Segment {
	return []kinematics.Segment{
		{Bone: 1, Start: mgl64.Vec3{0, 0, 0}, End: mgl64.Vec3{0, -1, 0}},
		{Bone: 2, Start: mgl64.Vec3{0, -1, 0}, End: mgl64.Vec3{0, -2, 0}},
	}
}

func TestRenderFitsSegments(t *testing.T) {
	r := NewRenderer(WithSize(64, 64), WithSupersample(1), WithColors(bg, bone, joint))
	img := r.Render(legSegments(), mgl64.Ident4())

	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 64, img.Bounds().Dy())

	// A vertical chain centered on the image: the center column is drawn, corners are not.
	assert.NotEqual(t, bg, img.NRGBAAt(32, 32))
	assert.Equal(t, bg, img.NRGBAAt(0, 0))
	assert.Equal(t, bg, img.NRGBAAt(63, 63))
	assert.Equal(t, bg, img.NRGBAAt(5, 32))

	// The top joint sits at the margin, one tenth of the way down.
	assert.Equal(t, joint, img.NRGBAAt(32, 6))
}

func TestRenderViewRotatesPose(t *testing.T) {
	r := NewRenderer(WithSize(64, 64), WithSupersample(1), WithColors(bg, bone, joint))
	// Looking down the chain collapses it onto the x axis after a quarter turn about z.
	img := r.Render(legSegments(), mgl64.HomogRotate3DZ(mgl64.DegToRad(90)))

	assert.NotEqual(t, bg, img.NRGBAAt(32, 32))
	assert.Equal(t, bg, img.NRGBAAt(32, 6))
	assert.Equal(t, joint, img.NRGBAAt(6, 32))
}

func TestRenderEmpty(t *testing.T) {
	r := NewRenderer(WithSize(16, 8), WithSupersample(1), WithColors(bg, bone, joint))
	img := r.Render(nil, mgl64.Ident4())
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	assert.Equal(t, bg, img.NRGBAAt(8, 4))
}

func TestEncodeProducesDecodableWebP(t *testing.T) {
	r := NewRenderer(WithSize(48, 32))
	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf, legSegments(), mgl64.Ident4()))

	img, err := webp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	w, h := r.Size()
	assert.Equal(t, 48, w)
	assert.Equal(t, 32, h)
}
