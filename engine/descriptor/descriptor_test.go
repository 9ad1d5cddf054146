package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scene = `{
  "shaders": {
    "vertex": ["shaders/common.wgsl", "/abs/skin.wgsl"],
    "fragment": "@fragment fn fs() -> @location(0) vec4f { return vec4f(1.0); }"
  },
  "mesh": "meshes/cube.obj",
  "uniforms": { "uColor": { "type": "3f", "value": [1, 0, 0] } },
  "textures": {
    "diffuse": "tex/bricks.png",
    "sky": ["px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"],
    "broken": ["only", "two"]
  },
  "animation": "walk.bvh",
  "ClearColor": [0.1, 0.2, 0.3, 1],
  "TimerMilliseconds": 16,
  "SomethingElse": true
}`

func TestParseResolvesPaths(t *testing.T) {
	d, err := Parse(filepath.FromSlash("/scenes/demo/scene.json"), []byte(scene))
	require.NoError(t, err)

	dir := filepath.FromSlash("/scenes/demo")
	assert.Equal(t, dir, d.Dir)
	assert.Equal(t, filepath.Join(dir, "meshes", "cube.obj"), d.Mesh)
	assert.Equal(t, filepath.Join(dir, "walk.bvh"), d.Animation)

	require.Len(t, d.Shaders, 2)
	v := d.Shaders[shader.StageVertex]
	assert.False(t, v.IsInline())
	assert.Equal(t, []string{filepath.Join(dir, "shaders", "common.wgsl"), "/abs/skin.wgsl"}, v.Paths)
	assert.True(t, d.Shaders[shader.StageFragment].IsInline())

	require.NotNil(t, d.Uniforms)
	assert.False(t, d.Uniforms.IsFile())
	assert.Contains(t, string(d.Uniforms.Inline), "uColor")

	assert.Equal(t, []string{"diffuse", "sky"}, d.TextureNames())
	assert.False(t, d.Textures["diffuse"].IsCube())
	assert.True(t, d.Textures["sky"].IsCube())
	assert.Equal(t, filepath.Join(dir, "nz.png"), d.Textures["sky"].Paths[5])

	require.NotNil(t, d.ClearColor)
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1}, *d.ClearColor)
	require.NotNil(t, d.TimerMilliseconds)
	assert.Equal(t, 16.0, *d.TimerMilliseconds)

	require.Len(t, d.Problems, 1)
	assert.Contains(t, d.Problems[0].Error(), "broken")
}

func TestParseUniformsFile(t *testing.T) {
	d, err := Parse("scene.json", []byte(`{"uniforms": "uniforms.json"}`))
	require.NoError(t, err)
	require.NotNil(t, d.Uniforms)
	assert.True(t, d.Uniforms.IsFile())
	assert.Equal(t, "uniforms.json", d.Uniforms.Path)
}

func TestParseMalformedEntriesAreSkipped(t *testing.T) {
	d, err := Parse("scene.json", []byte(`{
		"shaders": {"hull": "x", "vertex": 3},
		"mesh": 5,
		"ClearColor": [1, 2],
		"TimerMilliseconds": "soon"
	}`))
	require.NoError(t, err)
	assert.Nil(t, d.Shaders)
	assert.Empty(t, d.Mesh)
	assert.Nil(t, d.ClearColor)
	assert.Nil(t, d.TimerMilliseconds)
	assert.Len(t, d.Problems, 5)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse("scene.json", []byte("{\n  \"mesh\": \n}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	_, err = Parse("scene.json", []byte("null"))
	assert.Error(t, err)

	_, err = Parse("scene.json", []byte("[1, 2]"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mesh": "m.obj"}`), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "m.obj"), d.Mesh)

	_, err = Load(filepath.Join(dir, "nope.json"))
	assert.Error(t, err)
}
