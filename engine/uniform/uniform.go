// Package uniform holds named shader parameters: scalar, vector and matrix values plus
// texture sampler bindings, parsed from the scene's uniforms JSON or stored at runtime.
package uniform

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags the variant a Value holds.
type Kind int

const (
	KindTexture Kind = iota
	KindFloat1
	KindInt1
	KindFloat2
	KindInt2
	KindFloat3
	KindInt3
	KindFloat4
	KindInt4
	KindMat3
	KindMat4
)

var kindNames = map[Kind]string{
	KindTexture: "texture",
	KindFloat1:  "1f",
	KindInt1:    "1i",
	KindFloat2:  "2f",
	KindInt2:    "2i",
	KindFloat3:  "3f",
	KindInt3:    "3i",
	KindFloat4:  "4f",
	KindInt4:    "4i",
	KindMat3:    "mat3",
	KindMat4:    "mat4",
}

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a JSON type name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Components is the number of scalar components of the kind; 0 for textures.
func (k Kind) Components() int {
	switch k {
	case KindFloat1, KindInt1:
		return 1
	case KindFloat2, KindInt2:
		return 2
	case KindFloat3, KindInt3:
		return 3
	case KindFloat4, KindInt4:
		return 4
	case KindMat3:
		return 9
	case KindMat4:
		return 16
	}
	return 0
}

// IsInt reports whether the kind holds integer components.
func (k Kind) IsInt() bool {
	return k == KindInt1 || k == KindInt2 || k == KindInt3 || k == KindInt4
}

// Value is one uniform. Floats holds float and matrix components (matrices column-major),
// Ints holds integer components, Texture names the sampled texture.
type Value struct {
	Kind    Kind
	Floats  []float32
	Ints    []int32
	Texture string
}

// Float returns a 1f value.
func Float(v float32) Value { return Value{Kind: KindFloat1, Floats: []float32{v}} }

// Int returns a 1i value.
func Int(v int32) Value { return Value{Kind: KindInt1, Ints: []int32{v}} }

// Vec3 returns a 3f value.
func Vec3(v mgl64.Vec3) Value {
	return Value{Kind: KindFloat3, Floats: []float32{float32(v[0]), float32(v[1]), float32(v[2])}}
}

// Vec4 returns a 4f value.
func Vec4(v mgl64.Vec4) Value {
	return Value{Kind: KindFloat4, Floats: []float32{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}}
}

// Mat3 returns a mat3 value.
func Mat3(m mgl64.Mat3) Value {
	f := make([]float32, 9)
	for i, x := range m {
		f[i] = float32(x)
	}
	return Value{Kind: KindMat3, Floats: f}
}

// Mat4 returns a mat4 value.
func Mat4(m mgl64.Mat4) Value {
	f := common.Mat4ToFloat32(m)
	return Value{Kind: KindMat4, Floats: f[:]}
}

// Sampler returns a texture value bound to the named texture.
func Sampler(texture string) Value { return Value{Kind: KindTexture, Texture: texture} }

// Bytes returns the value's components as raw bytes for a GPU buffer write. Textures have
// no buffer representation and return nil.
func (v Value) Bytes() []byte {
	if v.Kind.IsInt() {
		return common.SliceToBytes(v.Ints)
	}
	return common.SliceToBytes(v.Floats)
}

// Set is a collection of named uniforms iterated in name order.
type Set struct {
	values map[string]Value
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{values: make(map[string]Value)}
}

// Store sets or replaces the named uniform.
func (s *Set) Store(name string, v Value) {
	s.values[name] = v
}

// Get returns the named uniform.
func (s *Set) Get(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Delete removes the named uniform.
func (s *Set) Delete(name string) {
	delete(s.values, name)
}

// Len returns the number of uniforms.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Names returns the uniform names in sorted order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.values))
	for n := range s.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Each calls fn for every uniform in name order.
func (s *Set) Each(fn func(name string, v Value)) {
	for _, n := range s.Names() {
		fn(n, s.values[n])
	}
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	out := NewSet()
	if s == nil {
		return out
	}
	for n, v := range s.values {
		out.values[n] = v
	}
	return out
}
