package drawable

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex input names a program may declare to receive mesh attributes.
const (
	AttrPosition    = "vPos"
	AttrNormal      = "vNormal"
	AttrTexCoord    = "vTexCoord"
	AttrTangent     = "vTangent"
	AttrBitangent   = "vBitangent"
	AttrBoneIndices = "vBoneIndices"
	AttrBoneWeights = "vBoneWeights"
)

// VertexData is a mesh flattened into one interleaved, non-indexed vertex buffer laid out for
// a specific program.
type VertexData struct {
	Layout      wgpu.VertexBufferLayout
	Data        []byte
	VertexCount uint32

	// Missing lists program inputs the mesh could not supply. They are zero filled, except
	// bone weights, which default to (1,0,0,0) so an unskinned mesh follows bone 0.
	Missing []string
}

// attribute is one flattened source stream: comps values per corner, stored as 32-bit words.
type attribute struct {
	comps int
	words []uint32
}

// BuildVertexData flattens m's face-indexed attributes into per-corner vertices matching the
// program's vertex inputs. Inputs with no matching mesh attribute are reported in Missing
// and zero filled, except bone weights, which default to (1,0,0,0). Skin may be nil.
//
// Parameters:
//   - m: the mesh to flatten
//   - program: the program whose vertex inputs define the layout
//   - skin: per-position bone weights, or nil
//
// Returns:
//   - *VertexData: the interleaved vertex buffer
//   - error: error if the program declares no usable vertex inputs or skin does not match m
func BuildVertexData(m *mesh.Mesh, program *shader.Program, skin []kinematics.VertexWeights) (*VertexData, error) {
	layout := program.VertexBufferLayout()
	if layout.ArrayStride == 0 {
		return nil, fmt.Errorf("drawable: program has no vertex inputs with a known format")
	}
	if skin != nil && len(skin) != len(m.Positions) {
		return nil, fmt.Errorf("drawable: %d skin weights for %d positions", len(skin), len(m.Positions))
	}

	corners := 3 * len(m.FacePositions)
	stride := int(layout.ArrayStride / 4)
	words := make([]uint32, corners*stride)
	vd := &VertexData{Layout: layout, VertexCount: uint32(corners)}

	offset := 0
	for _, in := range program.VertexInputs {
		if in.Size == 0 {
			continue
		}
		width := int(in.Size / 4)
		src, ok := attributeFor(in.Name, m, skin)
		if !ok {
			vd.Missing = append(vd.Missing, in.Name)
		}
		for c := 0; c < corners; c++ {
			base := c*stride + offset
			for k := 0; k < width; k++ {
				switch {
				case ok && k < src.comps:
					words[base+k] = src.words[c*src.comps+k]
				case ok && in.Name == AttrPosition && k == 3:
					words[base+k] = math.Float32bits(1)
				case !ok && in.Name == AttrBoneWeights && k == 0:
					words[base+k] = math.Float32bits(1)
				}
			}
		}
		offset += width
	}
	vd.Data = common.SliceToBytes(words)
	return vd, nil
}

func attributeFor(name string, m *mesh.Mesh, skin []kinematics.VertexWeights) (attribute, bool) {
	switch name {
	case AttrPosition:
		return floatAttribute(3, common.Vec3sToFloat32(mesh.Flatten(m.FacePositions, m.Positions))), true
	case AttrNormal:
		if !m.HasNormals() {
			return attribute{}, false
		}
		return floatAttribute(3, common.Vec3sToFloat32(mesh.Flatten(m.FaceNormals, m.Normals))), true
	case AttrTexCoord:
		if !m.HasTexCoords() {
			return attribute{}, false
		}
		return floatAttribute(2, common.Vec2sToFloat32(mesh.Flatten(m.FaceTexCoords, m.TexCoords))), true
	case AttrTangent, AttrBitangent:
		if !m.HasTangents() {
			return attribute{}, false
		}
		vs := m.Tangents
		if name == AttrBitangent {
			vs = m.Bitangents
		}
		return floatAttribute(3, common.Vec3sToFloat32(mesh.Flatten(m.FacePositions, vs))), true
	case AttrBoneIndices, AttrBoneWeights:
		if skin == nil {
			return attribute{}, false
		}
		flat := mesh.Flatten(m.FacePositions, skin)
		a := attribute{comps: kinematics.MaxInfluences, words: make([]uint32, 0, len(flat)*kinematics.MaxInfluences)}
		for _, vw := range flat {
			for i := 0; i < kinematics.MaxInfluences; i++ {
				if name == AttrBoneIndices {
					a.words = append(a.words, uint32(max(vw.Bones[i], 0)))
				} else {
					a.words = append(a.words, math.Float32bits(vw.Weights[i]))
				}
			}
		}
		return a, true
	}
	return attribute{}, false
}

func floatAttribute(comps int, fs []float32) attribute {
	a := attribute{comps: comps, words: make([]uint32, len(fs))}
	for i, f := range fs {
		a.words[i] = math.Float32bits(f)
	}
	return a
}
