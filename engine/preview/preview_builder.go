package preview

import "image/color"

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(r *renderer)

// WithSize sets the output size in pixels. Non-positive values are ignored.
//
// Parameters:
//   - width: the output width
//   - height: the output height
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithSupersample sets the canvas scale factor used before filtering down. 1 disables it.
func WithSupersample(factor int) RendererBuilderOption {
	return func(r *renderer) {
		r.supersample = max(factor, 1)
	}
}

// WithMargin sets the fraction of the shorter image side left empty on each edge.
func WithMargin(fraction float64) RendererBuilderOption {
	return func(r *renderer) {
		if fraction >= 0 && fraction < 0.5 {
			r.margin = fraction
		}
	}
}

// WithLineWidth sets the bone line width in output pixels.
func WithLineWidth(px float64) RendererBuilderOption {
	return func(r *renderer) {
		if px > 0 {
			r.lineWidth = px
		}
	}
}

// WithColors sets the background, bone and joint colors. Alpha is ignored; previews are opaque.
//
// Parameters:
//   - background: the clear color
//   - bone: the segment color
//   - joint: the joint marker color
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithColors(background, bone, joint color.NRGBA) RendererBuilderOption {
	return func(r *renderer) {
		r.background, r.boneColor, r.jointColor = background, bone, joint
	}
}
