// Package texture decodes scene textures into RGBA8 staging data ready for GPU upload.
// A texture is either a single 2D image or a cube map of six equally sized square faces.
package texture

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// CubeFaces is the number of faces of a cube map, in +X, -X, +Y, -Y, +Z, -Z order.
const CubeFaces = 6

// Kind tags the variant held by a Texture.
type Kind int

const (
	Kind2D Kind = iota
	KindCube
)

// String returns the kind name used in log output.
func (k Kind) String() string {
	if k == KindCube {
		return "cube"
	}
	return "2d"
}

// Image is one decoded RGBA8 image with straight (non-premultiplied) alpha.
type Image struct {
	// Pixels holds Width*Height*4 bytes, row-major, top row first.
	Pixels []byte

	Width  uint32
	Height uint32
}

// BytesPerRow returns the row pitch of the pixel data.
func (i Image) BytesPerRow() uint32 {
	return i.Width * 4
}

// Texture is a decoded texture pending upload.
type Texture struct {
	// Name is the texture's key in the scene descriptor.
	Name string

	Kind Kind

	// Faces holds one image for Kind2D and CubeFaces images for KindCube.
	Faces []Image

	// Paths are the source files in face order.
	Paths []string
}

// ViewDimension returns the view dimension a shader binding must declare to sample t.
func (t *Texture) ViewDimension() wgpu.TextureViewDimension {
	if t.Kind == KindCube {
		return wgpu.TextureViewDimensionCube
	}
	return wgpu.TextureViewDimension2D
}

// Format returns the GPU texture format of the staged pixels.
func (t *Texture) Format() wgpu.TextureFormat {
	return wgpu.TextureFormatRGBA8Unorm
}

// Extent returns the texture size with one array layer per face.
func (t *Texture) Extent() wgpu.Extent3D {
	if len(t.Faces) == 0 {
		return wgpu.Extent3D{}
	}
	return wgpu.Extent3D{
		Width:              t.Faces[0].Width,
		Height:             t.Faces[0].Height,
		DepthOrArrayLayers: uint32(len(t.Faces)),
	}
}
