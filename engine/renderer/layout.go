package renderer

import (
	"encoding/binary"
	"math"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformAlign is the size granularity of every uniform buffer.
const uniformAlign = 16

// defaultUniformSize backs uniform variables of types the size table does not know.
const defaultUniformSize = 256

// bindingKey identifies a resource slot.
type bindingKey struct {
	group   int
	binding int
}

// mergeBindings collects the bindings of every stage of p. A slot declared in several
// stages appears once with the union of their visibilities.
func mergeBindings(p *shader.Program) []shader.Binding {
	merged := map[bindingKey]shader.Binding{}
	for _, s := range shader.Stages {
		code := p.Stage(s)
		if code == nil {
			continue
		}
		for _, b := range code.Bindings {
			k := bindingKey{b.Group, b.Binding}
			if existing, ok := merged[k]; ok {
				existing.Entry.Visibility |= b.Entry.Visibility
				merged[k] = existing
				continue
			}
			merged[k] = b
		}
	}

	out := make([]shader.Binding, 0, len(merged))
	for _, b := range merged {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Binding < out[j].Binding
	})
	return out
}

// groupLayouts returns one layout descriptor per group index up to the highest used,
// with empty descriptors for unused indices.
func groupLayouts(label string, bindings []shader.Binding) []wgpu.BindGroupLayoutDescriptor {
	maxGroup := -1
	for _, b := range bindings {
		maxGroup = max(maxGroup, b.Group)
	}
	out := make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1)
	for g := range out {
		out[g].Label = label
	}
	for _, b := range bindings {
		out[b.Group].Entries = append(out[b.Group].Entries, b.Entry)
	}
	return out
}

// uniformSize returns the buffer size for a uniform variable of the given WGSL type.
func uniformSize(typeName string) uint64 {
	base, _, _ := strings.Cut(typeName, "<")
	var size uint64
	switch base {
	case "f32", "i32", "u32":
		size = 4
	case "vec2f", "vec2i", "vec2u", "vec2":
		size = 8
	case "vec3f", "vec3i", "vec3u", "vec3", "vec4f", "vec4i", "vec4u", "vec4":
		size = 16
	case "mat3x3f", "mat3x3":
		size = 48
	case "mat4x4f", "mat4x4":
		size = 64
	default:
		size = defaultUniformSize
	}
	return alignUp(size, uniformAlign)
}

// packUniform lays v out as WGSL expects it in a uniform buffer: mat3 columns are padded
// to 16 bytes and the result is padded to the buffer granularity.
func packUniform(v uniform.Value) []byte {
	var data []byte
	switch {
	case v.Kind == uniform.KindTexture:
		return nil
	case v.Kind == uniform.KindMat3:
		data = make([]byte, 48)
		for col := 0; col < 3; col++ {
			for row := 0; row < 3; row++ {
				bits := math.Float32bits(v.Floats[col*3+row])
				binary.LittleEndian.PutUint32(data[col*16+row*4:], bits)
			}
		}
	default:
		data = append(data, v.Bytes()...)
	}
	if pad := int(alignUp(uint64(len(data)), uniformAlign)) - len(data); pad > 0 {
		data = append(data, make([]byte, pad)...)
	}
	return data
}

// packMatrices flattens matrices for a storage buffer. An empty list packs one identity
// matrix, since zero-sized bindings are invalid.
func packMatrices(ms [][16]float32) []byte {
	if len(ms) == 0 {
		ms = [][16]float32{{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}}
	}
	data := make([]byte, 0, len(ms)*64)
	for _, m := range ms {
		for _, f := range m {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}
	return data
}

func alignUp(n, a uint64) uint64 {
	if n == 0 {
		return a
	}
	return (n + a - 1) / a * a
}
