package preview

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// canvas is an opaque RGBA raster with hard-edged primitives; smoothing comes from the
// downsample.
type canvas struct {
	img *image.RGBA
}

func newCanvas(w, h int, bg color.NRGBA) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, 255
	}
	return &canvas{img: img}
}

func (c *canvas) set(x, y int, col color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return
	}
	i := c.img.PixOffset(x, y)
	c.img.Pix[i], c.img.Pix[i+1], c.img.Pix[i+2], c.img.Pix[i+3] = col.R, col.G, col.B, 255
}

// disc fills every pixel whose center lies within radius of p.
func (c *canvas) disc(p mgl64.Vec2, radius float64, col color.NRGBA) {
	x0, x1 := int(math.Floor(p[0]-radius)), int(math.Ceil(p[0]+radius))
	y0, y1 := int(math.Floor(p[1]-radius)), int(math.Ceil(p[1]+radius))
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)+0.5-p[0], float64(y)+0.5-p[1]
			if dx*dx+dy*dy <= r2 {
				c.set(x, y, col)
			}
		}
	}
}

// line fills every pixel whose center lies within radius of the segment ab.
func (c *canvas) line(a, b mgl64.Vec2, radius float64, col color.NRGBA) {
	x0 := int(math.Floor(math.Min(a[0], b[0]) - radius))
	x1 := int(math.Ceil(math.Max(a[0], b[0]) + radius))
	y0 := int(math.Floor(math.Min(a[1], b[1]) - radius))
	y1 := int(math.Ceil(math.Max(a[1], b[1]) + radius))
	x0, y0 = max(x0, c.img.Rect.Min.X), max(y0, c.img.Rect.Min.Y)
	x1, y1 = min(x1, c.img.Rect.Max.X-1), min(y1, c.img.Rect.Max.Y-1)

	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	r2 := radius * radius
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p := mgl64.Vec2{float64(x) + 0.5, float64(y) + 0.5}
			t := 0.0
			if lenSq > 0 {
				t = mgl64.Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
			}
			d := p.Sub(a.Add(ab.Mul(t)))
			if d.Dot(d) <= r2 {
				c.set(x, y, col)
			}
		}
	}
}
