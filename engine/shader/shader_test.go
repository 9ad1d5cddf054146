package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structVertex = `
struct VertexInput {
    @location(0) vPos: vec3f,
    @location(2) vTexCoord: vec2<f32>,
    @location(1) vNormal: vec3f,
};

struct VertexOutput {
    @builtin(position) clip: vec4f,
    @location(0) normal: vec3f,
};

@group(0) @binding(0) var<uniform> uViewMatrix: mat4x4f;

@vertex
fn vs_main(in: VertexInput, @builtin(vertex_index) vi: u32) -> VertexOutput {
    var out: VertexOutput;
    out.clip = uViewMatrix * vec4f(in.vPos, 1.0);
    out.normal = in.vNormal;
    return out;
}
`

const paramVertex = `
// @location(5) commented: vec3f
@vertex fn main(@location(0) vPos: vec3f, @location(3) vBoneWeights: vec4f) -> @builtin(position) vec4f {
    return vec4f(vPos, 1.0);
}
`

const fragment = `
@group(1) @binding(1) var uDiffuse: texture_2d<f32>;
@group(1) @binding(0) var uSampler: sampler;
@group(1) @binding(2) var uEnvironment: texture_cube<f32>;

@fragment
fn fs_main() -> @location(0) vec4f {
    return textureSample(uDiffuse, uSampler, vec2f(0.0));
}
`

func memFS(files map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		s, ok := files[filepath.ToSlash(path)]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(s), nil
	}
}

func TestVertexInputsFromStruct(t *testing.T) {
	inputs := parseVertexInputs(structVertex)
	require.Len(t, inputs, 3)
	assert.Equal(t, "vPos", inputs[0].Name)
	assert.Equal(t, "vNormal", inputs[1].Name)
	assert.Equal(t, "vTexCoord", inputs[2].Name)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, inputs[2].Format)
	assert.Equal(t, uint32(2), inputs[2].Location)
}

func TestVertexInputsFromParameters(t *testing.T) {
	inputs := parseVertexInputs(paramVertex)
	require.Len(t, inputs, 2)
	assert.Equal(t, "vPos", inputs[0].Name)
	assert.Equal(t, "vBoneWeights", inputs[1].Name)
	assert.Equal(t, uint64(16), inputs[1].Size)
}

func TestEntryPoints(t *testing.T) {
	assert.Equal(t, "vs_main", parseEntryPoint(structVertex, StageVertex))
	assert.Equal(t, "fs_main", parseEntryPoint(fragment, StageFragment))
	assert.Equal(t, "", parseEntryPoint(fragment, StageCompute))
	assert.Equal(t, "", parseEntryPoint(fragment, StageGeometry))
}

func TestBindings(t *testing.T) {
	bs := parseBindings(fragment, wgpu.ShaderStageFragment)
	require.Len(t, bs, 3)
	assert.Equal(t, "uSampler", bs[0].Name)
	assert.Equal(t, "uDiffuse", bs[1].Name)
	assert.True(t, bs[1].IsTexture())
	assert.Equal(t, wgpu.TextureViewDimension2D, bs[1].Entry.Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureViewDimensionCube, bs[2].Entry.Texture.ViewDimension)
	assert.False(t, bs[0].IsTexture())

	vb := parseBindings(structVertex, wgpu.ShaderStageVertex)
	require.Len(t, vb, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, vb[0].Entry.Buffer.Type)
}

func TestLoadInlineAndPieces(t *testing.T) {
	fs := memFS(map[string]string{
		"shaders/common.wgsl": "struct VertexInput {\n @location(0) vPos: vec3f,\n};\n",
		"shaders/main.wgsl":   "// @oxy:include \"common.wgsl\"\n@vertex fn vs(in: VertexInput) -> @builtin(position) vec4f { return vec4f(in.vPos, 1.0); }\n",
	})
	l := NewLoader(WithReadFunc(fs), WithLabel("scene"))

	prog, paths, err := l.Load(map[Stage]StageSource{
		StageVertex:   {Paths: []string{"shaders/main.wgsl"}},
		StageFragment: {Inline: fragment},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"shaders/main.wgsl", "shaders/common.wgsl"}, toSlash(paths))
	assert.Equal(t, []string{"vPos"}, prog.VertexInputNames())
	assert.Equal(t, "fs_main", prog.Stage(StageFragment).EntryPoint)
	assert.Equal(t, "scene.vertex", prog.Stage(StageVertex).Module.Label)

	b, ok := prog.Binding("uEnvironment")
	require.True(t, ok)
	assert.Equal(t, 2, b.Binding)

	layout := prog.VertexBufferLayout()
	assert.Equal(t, uint64(12), layout.ArrayStride)
	require.Len(t, layout.Attributes, 1)
}

func TestLoadReportsPathsOnFailure(t *testing.T) {
	fs := memFS(map[string]string{"a.wgsl": "@vertex fn v() -> @builtin(position) vec4f { return vec4f(); }"})
	l := NewLoader(WithReadFunc(fs))

	prog, paths, err := l.Load(map[Stage]StageSource{
		StageVertex: {Paths: []string{"a.wgsl", "missing.wgsl"}},
	})
	assert.Error(t, err)
	assert.Nil(t, prog)
	assert.Equal(t, []string{"a.wgsl", "missing.wgsl"}, paths)
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(WithReadFunc(memFS(map[string]string{
		"loop.wgsl": "// @oxy:include \"loop.wgsl\"\n",
	})))

	_, _, err := l.Load(nil)
	assert.Error(t, err)

	_, _, err = l.Load(map[Stage]StageSource{StageFragment: {Inline: "fn nothing() {}"}})
	assert.ErrorContains(t, err, "entry point")

	_, _, err = l.Load(map[Stage]StageSource{StageVertex: {Paths: []string{"loop.wgsl"}}})
	assert.ErrorContains(t, err, "cycle")
}

func TestSameVertexInputs(t *testing.T) {
	a := &Program{VertexInputs: []VertexInput{{Name: "vPos"}, {Name: "vNormal"}}}
	b := &Program{VertexInputs: []VertexInput{{Name: "vNormal"}, {Name: "vPos"}}}
	c := &Program{VertexInputs: []VertexInput{{Name: "vPos"}}}
	assert.True(t, SameVertexInputs(a, b))
	assert.False(t, SameVertexInputs(a, c))
	assert.False(t, SameVertexInputs(nil, c))
	assert.True(t, SameVertexInputs(nil, &Program{}))
}

func TestParseStage(t *testing.T) {
	for _, s := range Stages {
		got, ok := ParseStage(s.String())
		require.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := ParseStage("hull")
	assert.False(t, ok)
}

func toSlash(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return out
}
