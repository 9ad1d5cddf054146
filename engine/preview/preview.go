// Package preview rasterizes a skeleton pose on the CPU and encodes it as WebP.
//
// Bone segments are drawn on a supersampled canvas which is then filtered down to the
// requested size, so lines come out antialiased without a GPU.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"
)

// Renderer draws bone segments into images.
type Renderer interface {
	// Render draws the segments viewed through view, fitted to the image.
	//
	// Parameters:
	//   - segments: world-space bone segments, as returned by kinematics.Segments
	//   - view: the world-to-camera matrix; x and y of camera space map to the image
	//
	// Returns:
	//   - *image.NRGBA: an opaque image of the configured size
	Render(segments []kinematics.Segment, view mgl64.Mat4) *image.NRGBA

	// Encode renders the segments and writes them to w as lossless WebP.
	//
	// Parameters:
	//   - w: the destination
	//   - segments: world-space bone segments
	//   - view: the world-to-camera matrix
	//
	// Returns:
	//   - error: an error if encoding fails
	Encode(w io.Writer, segments []kinematics.Segment, view mgl64.Mat4) error

	// Size returns the output width and height in pixels.
	Size() (int, int)
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	width       int
	height      int
	supersample int
	margin      float64
	lineWidth   float64
	background  color.NRGBA
	boneColor   color.NRGBA
	jointColor  color.NRGBA
}

var _ Renderer = &renderer{}

// NewRenderer creates a preview renderer. The default output is 256x256, drawn at 4x and
// filtered down.
//
// Parameters:
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		width:       256,
		height:      256,
		supersample: 4,
		margin:      0.1,
		lineWidth:   2,
		background:  color.NRGBA{R: 24, G: 24, B: 28, A: 255},
		boneColor:   color.NRGBA{R: 230, G: 200, B: 80, A: 255},
		jointColor:  color.NRGBA{R: 240, G: 90, B: 60, A: 255},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *renderer) Encode(w io.Writer, segments []kinematics.Segment, view mgl64.Mat4) error {
	if err := nativewebp.Encode(w, r.Render(segments, view), nil); err != nil {
		return fmt.Errorf("preview: encode webp: %w", err)
	}
	return nil
}

func (r *renderer) Render(segments []kinematics.Segment, view mgl64.Mat4) *image.NRGBA {
	ss := r.supersample
	canvas := newCanvas(r.width*ss, r.height*ss, r.background)

	project := r.fit(segments, view, float64(ss))
	radius := r.lineWidth * float64(ss) / 2
	for _, s := range segments {
		a, b := project(s.Start), project(s.End)
		canvas.line(a, b, radius, r.boneColor)
	}
	for _, s := range segments {
		canvas.disc(project(s.End), radius*2, r.jointColor)
		canvas.disc(project(s.Start), radius*2, r.jointColor)
	}

	out := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	if ss == 1 {
		draw.Draw(out, out.Bounds(), canvas.img, image.Point{}, draw.Src)
		return out
	}
	draw.CatmullRom.Scale(out, out.Bounds(), canvas.img, canvas.img.Bounds(), draw.Src, nil)
	return out
}

// fit returns a projection from world space to canvas pixels that frames every segment
// endpoint with the configured margin, preserving aspect ratio. Image y grows downward.
func (r *renderer) fit(segments []kinematics.Segment, view mgl64.Mat4, scale float64) func(mgl64.Vec3) mgl64.Vec2 {
	w, h := float64(r.width)*scale, float64(r.height)*scale
	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, s := range segments {
		for _, p := range []mgl64.Vec3{s.Start, s.End} {
			q := mgl64.TransformCoordinate(p, view)
			lo = mgl64.Vec2{math.Min(lo[0], q[0]), math.Min(lo[1], q[1])}
			hi = mgl64.Vec2{math.Max(hi[0], q[0]), math.Max(hi[1], q[1])}
		}
	}
	if len(segments) == 0 {
		lo, hi = mgl64.Vec2{-1, -1}, mgl64.Vec2{1, 1}
	}
	center := lo.Add(hi).Mul(0.5)
	extent := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if extent < 1e-9 {
		extent = 1
	}
	usable := math.Min(w, h) * (1 - 2*r.margin)
	k := usable / extent

	return func(p mgl64.Vec3) mgl64.Vec2 {
		q := mgl64.TransformCoordinate(p, view)
		return mgl64.Vec2{
			w/2 + (q[0]-center[0])*k,
			h/2 - (q[1]-center[1])*k,
		}
	}
}
