package texture

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads one image in any registered format (PNG, JPEG, GIF, TGA, BMP, TIFF, WebP)
// and converts it to RGBA8.
//
// Parameters:
//   - r: the encoded image
//   - flipY: whether to mirror the rows so the bottom row comes first
//
// Returns:
//   - Image: the decoded pixels
//   - string: the detected format name
//   - error: error if the data is not a supported image
func Decode(r io.Reader, flipY bool) (Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return Image{}, "", err
	}
	var nrgba *image.NRGBA
	if flipY {
		nrgba = imaging.FlipV(img)
	} else {
		nrgba = imaging.Clone(img)
	}
	b := nrgba.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return Image{}, format, fmt.Errorf("image has zero size")
	}
	return Image{Pixels: nrgba.Pix, Width: uint32(b.Dx()), Height: uint32(b.Dy())}, format, nil
}

// DecodeFile opens and decodes the image at path.
//
// Parameters:
//   - path: the image file
//   - flipY: whether to mirror the rows so the bottom row comes first
//
// Returns:
//   - Image: the decoded pixels
//   - error: error if the file cannot be read or decoded
func DecodeFile(path string, flipY bool) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := Decode(f, flipY)
	if err != nil {
		return Image{}, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return img, nil
}
