// Package drawable combines a compiled program, its uploaded vertex data, bound textures and
// uniform values into the single handle the renderer draws each frame.
package drawable

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/texture"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
)

// MeshHandle is an opaque uploaded vertex buffer owned by the Uploader that produced it.
type MeshHandle any

// TextureHandle is an opaque uploaded texture owned by the Uploader that produced it.
type TextureHandle any

// Uploader moves CPU-side resources to the GPU.
type Uploader interface {
	// UploadMesh uploads interleaved vertex data.
	//
	// Parameters:
	//   - data: the vertex buffer and its layout
	//
	// Returns:
	//   - MeshHandle: the uploaded buffer
	//   - error: error if the upload fails
	UploadMesh(data *VertexData) (MeshHandle, error)

	// UploadTexture uploads a decoded 2D or cube texture.
	//
	// Parameters:
	//   - t: the decoded texture
	//
	// Returns:
	//   - TextureHandle: the uploaded texture
	//   - error: error if the upload fails
	UploadTexture(t *texture.Texture) (TextureHandle, error)
}

// TextureBinding attaches an uploaded texture to a sampler uniform.
type TextureBinding struct {
	// Uniform is the sampler uniform's name.
	Uniform string

	// Texture is the descriptor texture name the uniform refers to.
	Texture string

	// Unit is the bind order of the sampler, counting from zero.
	Unit int

	Kind   texture.Kind
	Handle TextureHandle
}

// Drawable is everything needed to issue one draw call. A Drawable is never mutated after
// it is built; a reload produces a new one.
type Drawable struct {
	Program *shader.Program
	Handle  shader.Handle

	Mesh     MeshHandle
	Vertices *VertexData

	Textures []TextureBinding
	Uniforms *uniform.Set
}

// Ready reports whether d has a compiled program and uploaded vertex data.
func (d *Drawable) Ready() bool {
	return d != nil && d.Handle != nil && d.Mesh != nil && d.Vertices != nil
}

// VertexCount returns the number of vertices to draw.
func (d *Drawable) VertexCount() uint32 {
	if d == nil || d.Vertices == nil {
		return 0
	}
	return d.Vertices.VertexCount
}

// Texture returns the binding for a sampler uniform.
func (d *Drawable) Texture(uniformName string) (TextureBinding, bool) {
	if d == nil {
		return TextureBinding{}, false
	}
	for _, b := range d.Textures {
		if b.Uniform == uniformName {
			return b, true
		}
	}
	return TextureBinding{}, false
}

// UploadedTexture is a decoded texture together with its GPU handle.
type UploadedTexture struct {
	Texture *texture.Texture
	Handle  TextureHandle
}

// BindTextures assigns texture units to the sampler uniforms of set, in the set's sorted
// name order. Samplers naming a texture that is not loaded are returned in missing.
//
// Parameters:
//   - set: the uniform values
//   - textures: the uploaded textures by descriptor name
//
// Returns:
//   - []TextureBinding: one binding per resolved sampler
//   - []string: sampler uniforms whose texture is not loaded
func BindTextures(set *uniform.Set, textures map[string]UploadedTexture) ([]TextureBinding, []string) {
	var bindings []TextureBinding
	var missing []string
	unit := 0
	set.Each(func(name string, v uniform.Value) {
		if v.Kind != uniform.KindTexture {
			return
		}
		t, ok := textures[v.Texture]
		if !ok {
			missing = append(missing, name)
			return
		}
		bindings = append(bindings, TextureBinding{
			Uniform: name,
			Texture: v.Texture,
			Unit:    unit,
			Kind:    t.Texture.Kind,
			Handle:  t.Handle,
		})
		unit++
	})
	return bindings, missing
}
