package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litShader = `
@group(0) @binding(0) var<uniform> uProjectionMatrix: mat4x4f;
@group(0) @binding(1) var<uniform> uTime: f32;
@group(2) @binding(0) var uDiffuse: texture_2d<f32>;
@group(2) @binding(1) var uSampler: sampler;

@vertex
fn vs_main(@location(0) vPos: vec3f) -> @builtin(position) vec4f {
    return uProjectionMatrix * vec4f(vPos, uTime);
}

@fragment
fn fs_main() -> @location(0) vec4f {
    return textureSample(uDiffuse, uSampler, vec2f(0.5, 0.5));
}
`

func loadProgram(t *testing.T, src string) *shader.Program {
	t.Helper()
	p, _, err := shader.NewLoader(shader.WithLabel("test")).Load(map[shader.Stage]shader.StageSource{
		shader.StageVertex:   {Inline: src},
		shader.StageFragment: {Inline: src},
	})
	require.NoError(t, err)
	return p
}

func floatAt(data []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
}

func TestMergeBindings(t *testing.T) {
	bindings := mergeBindings(loadProgram(t, litShader))
	require.Len(t, bindings, 4)

	names := []string{}
	for _, b := range bindings {
		names = append(names, b.Name)
		assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, b.Entry.Visibility, b.Name)
	}
	assert.Equal(t, []string{"uProjectionMatrix", "uTime", "uDiffuse", "uSampler"}, names)
}

func TestGroupLayoutsFillGaps(t *testing.T) {
	layouts := groupLayouts("test", mergeBindings(loadProgram(t, litShader)))
	require.Len(t, layouts, 3)
	assert.Len(t, layouts[0].Entries, 2)
	assert.Empty(t, layouts[1].Entries)
	assert.Len(t, layouts[2].Entries, 2)
	assert.Equal(t, "test", layouts[1].Label)

	assert.Empty(t, groupLayouts("none", nil))
}

func TestUniformSize(t *testing.T) {
	cases := map[string]uint64{
		"f32":         16,
		"vec2<f32>":   16,
		"vec3f":       16,
		"vec4<f32>":   16,
		"mat3x3f":     48,
		"mat4x4<f32>": 64,
		"Lights":      defaultUniformSize,
	}
	for typeName, want := range cases {
		assert.Equal(t, want, uniformSize(typeName), typeName)
	}
}

func TestPackUniform(t *testing.T) {
	t.Run("scalar is padded", func(t *testing.T) {
		data := packUniform(uniform.Float(2.5))
		require.Len(t, data, 16)
		assert.Equal(t, float32(2.5), floatAt(data, 0))
		assert.Equal(t, float32(0), floatAt(data, 3))
	})

	t.Run("mat3 columns are padded", func(t *testing.T) {
		m := mgl64.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
		data := packUniform(uniform.Mat3(m))
		require.Len(t, data, 48)
		for col := 0; col < 3; col++ {
			for row := 0; row < 3; row++ {
				assert.Equal(t, float32(m[col*3+row]), floatAt(data, col*4+row))
			}
			assert.Equal(t, float32(0), floatAt(data, col*4+3))
		}
	})

	t.Run("mat4 is column major", func(t *testing.T) {
		data := packUniform(uniform.Mat4(mgl64.Translate3D(1, 2, 3)))
		require.Len(t, data, 64)
		assert.Equal(t, float32(1), floatAt(data, 12))
		assert.Equal(t, float32(2), floatAt(data, 13))
		assert.Equal(t, float32(3), floatAt(data, 14))
	})

	t.Run("textures pack nothing", func(t *testing.T) {
		assert.Nil(t, packUniform(uniform.Sampler("diffuse")))
	})
}

func TestPackMatrices(t *testing.T) {
	empty := packMatrices(nil)
	require.Len(t, empty, 64)
	assert.Equal(t, float32(1), floatAt(empty, 0))
	assert.Equal(t, float32(1), floatAt(empty, 15))
	assert.Equal(t, float32(0), floatAt(empty, 1))

	two := packMatrices([][16]float32{{0: 2}, {15: 3}})
	require.Len(t, two, 128)
	assert.Equal(t, float32(2), floatAt(two, 0))
	assert.Equal(t, float32(3), floatAt(two, 31))
}

func TestSamplerDescriptorDefaults(t *testing.T) {
	d := samplerDescriptor(common.SamplerOptions{})
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, d.MinFilter)
	assert.Equal(t, float32(32), d.LodMaxClamp)
	assert.Equal(t, uint16(1), d.MaxAnisotropy)

	d = samplerDescriptor(common.SamplerOptions{AddressModeV: wgpu.AddressModeClampToEdge, MaxAnisotropy: 8})
	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeV)
	assert.Equal(t, wgpu.AddressModeRepeat, d.AddressModeW)
	assert.Equal(t, uint16(8), d.MaxAnisotropy)
}
