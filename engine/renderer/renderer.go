// Package renderer draws a drawable and the skeleton overlay with WebGPU.
//
// It is the GPU side of the reload pipeline: it compiles assembled programs into render
// pipelines, uploads vertex data and textures, and binds uniforms to shader resources by
// variable name each frame.
package renderer

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/drawable"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
)

// BonesBinding is the storage buffer variable that receives Frame.Bones.
const BonesBinding = "uBones"

// Frame is everything drawn in one redraw.
type Frame struct {
	// Drawable is the scene's current drawable; nothing but the overlay is drawn when it
	// is not ready.
	Drawable *drawable.Drawable

	// Uniforms holds per-frame values; they take precedence over the drawable's own.
	Uniforms *uniform.Set

	// Bones are the per-bone skinning matrices for the BonesBinding storage buffer.
	Bones [][16]float32

	// Skeleton holds world-space line segment endpoints, two per bone. Empty hides the overlay.
	Skeleton []mgl64.Vec3

	// ViewProjection maps Skeleton points to clip space.
	ViewProjection mgl64.Mat4

	ClearColor mgl64.Vec4
}

// Renderer compiles, uploads and draws.
type Renderer interface {
	shader.Compiler
	drawable.Uploader

	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	Resize(width, height int)

	// Draw renders and presents one frame.
	//
	// Parameters:
	//   - frame: what to draw
	//
	// Returns:
	//   - error: an error if the surface texture cannot be acquired or a bind group is invalid
	Draw(frame Frame) error

	// Release frees every GPU object the renderer owns.
	Release()
}
