package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
o ignored
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func vecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-9), "want %v, got %v", want, got)
}

func TestReadOBJQuad(t *testing.T) {
	m, stats, err := ReadOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Triangulated)
	assert.Equal(t, []Triangle{{0, 1, 2}, {0, 2, 3}}, m.FacePositions)
	assert.Equal(t, []Triangle{{0, 1, 2}, {0, 2, 3}}, m.FaceTexCoords)
	assert.Equal(t, []Triangle{{0, 0, 0}, {0, 0, 0}}, m.FaceNormals)
	assert.True(t, m.HasNormals())
	assert.True(t, m.HasTexCoords())
}

func TestReadOBJNegativeIndicesAndDegenerateFaces(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2\nf -3 -2 -1\n"
	m, stats, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SkippedFaces)
	assert.Equal(t, []Triangle{{0, 1, 2}}, m.FacePositions)
	assert.False(t, m.HasNormals())
	assert.False(t, m.HasTexCoords())
}

func TestReadOBJErrors(t *testing.T) {
	cases := map[string]string{
		"zero index":    "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"out of range":  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"bad number":    "v 0 zero 0\n",
		"short vertex":  "v 0 0\n",
		"mixed corners": "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2 3\n",
		"mixed faces":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\nf 1 2 3\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadOBJ(strings.NewReader(src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line ")
		})
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))
	m, _, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Len(t, m.Positions, 4)

	_, _, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}

func TestComputeNormals(t *testing.T) {
	m, _, err := ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nv 0 0 1\nf 1 2 3\nf 1 3 4\n"))
	require.NoError(t, err)

	m.ComputeNormals(NormalsUnweighted)
	require.True(t, m.HasNormals())
	vecNear(t, mgl64.Vec3{0, 0, 1}, m.Normals[1])
	vecNear(t, mgl64.Vec3{1, 0, 0}, m.Normals[3])
	// Shared corner averages the two face normals.
	vecNear(t, mgl64.Vec3{1, 0, 1}.Normalize(), m.Normals[0])
	assert.Equal(t, m.FacePositions, m.FaceNormals)

	m.ComputeNormals(NormalsAngleWeighted)
	vecNear(t, mgl64.Vec3{1, 0, 1}.Normalize(), m.Normals[0])
}

func TestComputeTangentBitangent(t *testing.T) {
	m, _, err := ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/1 2/2 3/3\n"))
	require.NoError(t, err)
	m.ComputeTangentBitangent()
	require.True(t, m.HasTangents())
	for i := range m.Positions {
		vecNear(t, mgl64.Vec3{1, 0, 0}, m.Tangents[i])
		vecNear(t, mgl64.Vec3{0, 1, 0}, m.Bitangents[i])
	}

	bare := &Mesh{Positions: m.Positions, FacePositions: m.FacePositions}
	bare.ComputeTangentBitangent()
	assert.False(t, bare.HasTangents())
}

func TestNormalizingTransform(t *testing.T) {
	m := &Mesh{Positions: []mgl64.Vec3{{0, 0, 0}, {4, 2, 0}, {0, 0, 2}}}
	tr := m.NormalizingTransform()
	vecNear(t, mgl64.Vec3{1, 0.5, -0.5}, mgl64.TransformCoordinate(mgl64.Vec3{4, 2, 0}, tr))

	m.ApplyTransform(tr)
	lo, hi := m.Bounds()
	vecNear(t, mgl64.Vec3{-1, -0.5, -0.5}, lo)
	vecNear(t, mgl64.Vec3{1, 0.5, 0.5}, hi)

	assert.Equal(t, mgl64.Ident4(), (&Mesh{}).NormalizingTransform())
	point := &Mesh{Positions: []mgl64.Vec3{{3, 3, 3}}}
	vecNear(t, mgl64.Vec3{}, mgl64.TransformCoordinate(mgl64.Vec3{3, 3, 3}, point.NormalizingTransform()))
}

func TestApplyTransformNormals(t *testing.T) {
	m := &Mesh{
		Positions: []mgl64.Vec3{{1, 1, 1}},
		Normals:   []mgl64.Vec3{mgl64.Vec3{1, 1, 0}.Normalize()},
	}
	m.ApplyTransform(mgl64.Scale3D(2, 1, 1))
	vecNear(t, mgl64.Vec3{2, 1, 1}, m.Positions[0])
	vecNear(t, mgl64.Vec3{0.5, 1, 0}.Normalize(), m.Normals[0])
	assert.InDelta(t, 1, m.Normals[0].Len(), 1e-12)
}

func TestFlatten(t *testing.T) {
	vals := []string{"a", "b", "c", "d"}
	got := Flatten([]Triangle{{0, 1, 2}, {0, 2, 3}}, vals)
	assert.Equal(t, []string{"a", "b", "c", "a", "c", "d"}, got)
	assert.Empty(t, Flatten[int](nil, nil))
}
