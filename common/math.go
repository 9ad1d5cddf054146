package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl64"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mat4ToFloat32 narrows a double precision matrix for GPU upload.
// Both sides are column-major, so element order is preserved.
//
// Parameters:
//   - m: the matrix to convert
//
// Returns:
//   - [16]float32: the column-major single precision matrix
func Mat4ToFloat32(m mgl64.Mat4) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// MatricesToFloat32 narrows a list of matrices, e.g. a world-space pose, for GPU upload.
//
// Parameters:
//   - ms: the matrices to convert
//
// Returns:
//   - [][16]float32: one column-major single precision matrix per input
func MatricesToFloat32(ms []mgl64.Mat4) [][16]float32 {
	out := make([][16]float32, len(ms))
	for i, m := range ms {
		out[i] = Mat4ToFloat32(m)
	}
	return out
}

// Vec3sToFloat32 flattens vectors into a tightly packed xyz float slice.
//
// Parameters:
//   - vs: the vectors to flatten
//
// Returns:
//   - []float32: 3*len(vs) components
func Vec3sToFloat32(vs []mgl64.Vec3) []float32 {
	out := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		out = append(out, float32(v[0]), float32(v[1]), float32(v[2]))
	}
	return out
}

// Vec2sToFloat32 flattens 2D vectors into a tightly packed xy float slice.
//
// Parameters:
//   - vs: the vectors to flatten
//
// Returns:
//   - []float32: 2*len(vs) components
func Vec2sToFloat32(vs []mgl64.Vec2) []float32 {
	out := make([]float32, 0, 2*len(vs))
	for _, v := range vs {
		out = append(out, float32(v[0]), float32(v[1]))
	}
	return out
}

// Perspective builds a right-handed perspective projection that maps view depth onto
// [0, 1], the clip volume WebGPU uses.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near, far: positive clipping plane distances
//
// Returns:
//   - mgl64.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float64) mgl64.Mat4 {
	f := 1.0 / math.Tan(fovY/2)
	return mgl64.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far / (near - far), -1,
		0, 0, (near * far) / (near - far), 0,
	}
}
