// Package mesh holds triangle meshes with separately indexed positions, normals and
// texture coordinates, as read from Wavefront OBJ files.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Triangle indexes three entries of an attribute array.
type Triangle [3]int

// NormalStrategy selects how face normals are averaged into vertex normals.
type NormalStrategy int

const (
	// NormalsUnweighted averages adjacent face normals equally.
	NormalsUnweighted NormalStrategy = iota

	// NormalsAngleWeighted weights each face normal by the face's corner angle at the vertex.
	NormalsAngleWeighted
)

// Mesh is a triangle mesh. Each attribute has its own index triangles; FaceNormals and
// FaceTexCoords are either empty or the same length as FacePositions.
type Mesh struct {
	Positions     []mgl64.Vec3
	FacePositions []Triangle

	Normals     []mgl64.Vec3
	FaceNormals []Triangle

	TexCoords     []mgl64.Vec2
	FaceTexCoords []Triangle

	// Tangents and Bitangents are per position, indexed by FacePositions.
	Tangents   []mgl64.Vec3
	Bitangents []mgl64.Vec3
}

// HasNormals reports whether the mesh has indexed normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.FaceNormals) == len(m.FacePositions)
}

// HasTexCoords reports whether the mesh has indexed texture coordinates.
func (m *Mesh) HasTexCoords() bool {
	return len(m.TexCoords) > 0 && len(m.FaceTexCoords) == len(m.FacePositions)
}

// HasTangents reports whether tangent frames have been computed.
func (m *Mesh) HasTangents() bool {
	return len(m.Tangents) == len(m.Positions) && len(m.Tangents) > 0
}

// ComputeNormals replaces the normals with per-position averages of adjacent face normals.
//
// Parameters:
//   - strategy: how adjacent face normals are weighted
func (m *Mesh) ComputeNormals(strategy NormalStrategy) {
	normals := make([]mgl64.Vec3, len(m.Positions))
	for _, f := range m.FacePositions {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() == 0 {
			continue
		}
		n = n.Normalize()
		if strategy == NormalsUnweighted {
			for _, vi := range f {
				normals[vi] = normals[vi].Add(n)
			}
			continue
		}
		corners := [3][3]mgl64.Vec3{{a, b, c}, {b, c, a}, {c, a, b}}
		for i, vi := range f {
			normals[vi] = normals[vi].Add(n.Mul(cornerAngle(corners[i][0], corners[i][1], corners[i][2])))
		}
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	m.Normals = normals
	m.FaceNormals = append([]Triangle(nil), m.FacePositions...)
}

// cornerAngle is the angle at p between the edges to q and r.
func cornerAngle(p, q, r mgl64.Vec3) float64 {
	u, v := q.Sub(p), r.Sub(p)
	lu, lv := u.Len(), v.Len()
	if lu == 0 || lv == 0 {
		return 0
	}
	return math.Acos(mgl64.Clamp(u.Dot(v)/(lu*lv), -1, 1))
}

// ComputeTangentBitangent derives per-position tangent and bitangent vectors from the
// texture coordinate parameterization. It does nothing without texture coordinates.
func (m *Mesh) ComputeTangentBitangent() {
	if !m.HasTexCoords() {
		return
	}
	tangents := make([]mgl64.Vec3, len(m.Positions))
	bitangents := make([]mgl64.Vec3, len(m.Positions))
	for fi, f := range m.FacePositions {
		t := m.FaceTexCoords[fi]
		p0, p1, p2 := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		uv0, uv1, uv2 := m.TexCoords[t[0]], m.TexCoords[t[1]], m.TexCoords[t[2]]

		e1, e2 := p1.Sub(p0), p2.Sub(p0)
		d1, d2 := uv1.Sub(uv0), uv2.Sub(uv0)
		det := d1[0]*d2[1] - d2[0]*d1[1]
		if math.Abs(det) < 1e-12 {
			continue
		}
		r := 1 / det
		tan := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
		bit := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)
		for _, vi := range f {
			tangents[vi] = tangents[vi].Add(tan)
			bitangents[vi] = bitangents[vi].Add(bit)
		}
	}
	for i := range tangents {
		if tangents[i].Len() > 0 {
			tangents[i] = tangents[i].Normalize()
		}
		if bitangents[i].Len() > 0 {
			bitangents[i] = bitangents[i].Normalize()
		}
	}
	m.Tangents = tangents
	m.Bitangents = bitangents
}

// Bounds returns the axis-aligned bounding box of the positions.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi
}

// NormalizingTransform returns the matrix that translates and uniformly scales the mesh to
// fit tightly in the cube [-1,1]^3 centered at the origin. Empty or single-point meshes
// get the identity scale.
func (m *Mesh) NormalizingTransform() mgl64.Mat4 {
	if len(m.Positions) == 0 {
		return mgl64.Ident4()
	}
	lo, hi := m.Bounds()
	center := lo.Add(hi).Mul(0.5)
	extent := hi.Sub(lo)
	longest := math.Max(extent[0], math.Max(extent[1], extent[2]))
	scale := 1.0
	if longest > 0 {
		scale = 2 / longest
	}
	return mgl64.Scale3D(scale, scale, scale).Mul4(mgl64.Translate3D(-center[0], -center[1], -center[2]))
}

// ApplyTransform transforms positions by t, and normals, tangents and bitangents by the
// inverse transpose of t's linear part.
func (m *Mesh) ApplyTransform(t mgl64.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = mgl64.TransformCoordinate(p, t)
	}
	normalMat := t.Mat3().Inv().Transpose()
	apply := func(vs []mgl64.Vec3) {
		for i, v := range vs {
			n := normalMat.Mul3x1(v)
			if n.Len() > 0 {
				n = n.Normalize()
			}
			vs[i] = n
		}
	}
	apply(m.Normals)
	linear := t.Mat3()
	for _, vs := range [][]mgl64.Vec3{m.Tangents, m.Bitangents} {
		for i, v := range vs {
			n := linear.Mul3x1(v)
			if n.Len() > 0 {
				n = n.Normalize()
			}
			vs[i] = n
		}
	}
}

// Flatten expands an indexed attribute into one value per face corner.
//
// Parameters:
//   - faces: index triangles into values
//   - values: the attribute array
//
// Returns:
//   - []T: 3*len(faces) values in face order
func Flatten[T any](faces []Triangle, values []T) []T {
	out := make([]T, 0, 3*len(faces))
	for _, f := range faces {
		out = append(out, values[f[0]], values[f[1]], values[f[2]])
	}
	return out
}
