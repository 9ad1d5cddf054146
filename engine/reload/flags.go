package reload

import "strings"

// Flags is a set of dirty resource categories.
type Flags uint8

const (
	// FlagDescriptor reparses the scene descriptor.
	FlagDescriptor Flags = 1 << iota

	// FlagShader reassembles and recompiles the shader program.
	FlagShader

	// FlagMesh reloads, flattens and uploads the mesh.
	FlagMesh

	// FlagUniforms reparses the uniform values.
	FlagUniforms

	// FlagTextures decodes and uploads the sampled textures.
	FlagTextures

	// FlagAnimation reparses the motion file and rebinds the skin.
	FlagAnimation
)

// FlagsDerived is every category the descriptor step invalidates.
const FlagsDerived = FlagShader | FlagMesh | FlagUniforms | FlagTextures | FlagAnimation

// flagOrder lists single flags in processing order.
var flagOrder = []struct {
	flag Flags
	name string
}{
	{FlagDescriptor, "descriptor"},
	{FlagShader, "shader"},
	{FlagMesh, "mesh"},
	{FlagUniforms, "uniforms"},
	{FlagTextures, "textures"},
	{FlagAnimation, "animation"},
}

// Has reports whether every flag in f is set.
func (s Flags) Has(f Flags) bool {
	return s&f == f && f != 0
}

// Any reports whether any flag in f is set.
func (s Flags) Any(f Flags) bool {
	return s&f != 0
}

// String lists the set flags in processing order, joined by "|".
func (s Flags) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for _, f := range flagOrder {
		if s&f.flag != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, "|")
}
