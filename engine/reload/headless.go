package reload

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/drawable"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/texture"
)

// headlessCompiler accepts every program and uses it as its own handle.
type headlessCompiler struct{}

func (headlessCompiler) Compile(p *shader.Program) (shader.Handle, error) {
	return p, nil
}

// headlessUploader keeps resources on the CPU and uses them as their own handles.
type headlessUploader struct{}

func (headlessUploader) UploadMesh(data *drawable.VertexData) (drawable.MeshHandle, error) {
	return data, nil
}

func (headlessUploader) UploadTexture(t *texture.Texture) (drawable.TextureHandle, error) {
	return t, nil
}
