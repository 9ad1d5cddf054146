// Package common holds small value types, key codes and math helpers shared across the engine.
package common

import "github.com/cogentcore/webgpu/wgpu"

// SamplerOptions configures the sampler shared by every texture binding. Zero fields take
// the renderer's defaults.
type SamplerOptions struct {
	// AddressModeU, AddressModeV and AddressModeW handle coordinates outside [0, 1].
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode

	MagFilter, MinFilter wgpu.FilterMode
	MipmapFilter         wgpu.MipmapFilterMode

	LodMinClamp, LodMaxClamp float32
	MaxAnisotropy            uint16
}
