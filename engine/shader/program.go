// Package shader assembles multi-stage WGSL programs from inline source or file pieces and
// extracts what the rest of the pipeline needs from them: entry points, vertex inputs and
// resource bindings. Compiling a Program into a GPU object is left to a Compiler.
package shader

import (
	"slices"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// StageSource is where one stage's code comes from: inline source, or an ordered list of
// files whose contents are concatenated.
type StageSource struct {
	Inline string
	Paths  []string
}

// IsInline reports whether the stage code is given inline.
func (s StageSource) IsInline() bool {
	return len(s.Paths) == 0
}

// VertexInput is one @location input of the vertex entry point.
type VertexInput struct {
	Name     string
	Location uint32
	Type     string

	// Format and Size are zero when Type has no vertex format.
	Format wgpu.VertexFormat
	Size   uint64
}

// Binding is one @group/@binding resource declaration.
type Binding struct {
	Group        int
	Binding      int
	Name         string
	Type         string
	AddressSpace string
	Entry        wgpu.BindGroupLayoutEntry
}

// IsTexture reports whether the binding is a sampled texture.
func (b Binding) IsTexture() bool {
	return b.Entry.Texture.ViewDimension != wgpu.TextureViewDimensionUndefined
}

// StageCode is the assembled code of one stage.
type StageCode struct {
	Stage      Stage
	Source     string
	EntryPoint string
	Module     *wgpu.ShaderModuleDescriptor
	Bindings   []Binding
}

// Program is an assembled, not yet compiled, set of stages.
type Program struct {
	Label        string
	Stages       map[Stage]*StageCode
	VertexInputs []VertexInput
}

// Handle is an opaque compiled program owned by the Compiler that produced it.
type Handle any

// Compiler turns an assembled Program into a GPU program.
type Compiler interface {
	// Compile compiles and links p.
	//
	// Parameters:
	//   - p: the assembled program
	//
	// Returns:
	//   - Handle: the compiled program
	//   - error: compile or link diagnostics
	Compile(p *Program) (Handle, error)
}

// Stage returns the code for s, or nil if the program has no such stage.
func (p *Program) Stage(s Stage) *StageCode {
	if p == nil {
		return nil
	}
	return p.Stages[s]
}

// VertexInputNames returns the sorted set of vertex input names.
// A nil program has no inputs.
func (p *Program) VertexInputNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.VertexInputs))
	for _, in := range p.VertexInputs {
		names = append(names, in.Name)
	}
	sort.Strings(names)
	return slices.Compact(names)
}

// VertexInput looks up an input by name.
func (p *Program) VertexInput(name string) (VertexInput, bool) {
	if p == nil {
		return VertexInput{}, false
	}
	for _, in := range p.VertexInputs {
		if in.Name == name {
			return in, true
		}
	}
	return VertexInput{}, false
}

// VertexBufferLayout packs every input with a known format into a single interleaved
// buffer, in location order.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout, with zero stride when the program has no inputs
func (p *Program) VertexBufferLayout() wgpu.VertexBufferLayout {
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	if p == nil {
		return layout
	}
	var offset uint64
	for _, in := range p.VertexInputs {
		if in.Size == 0 {
			continue
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         in.Format,
			Offset:         offset,
			ShaderLocation: in.Location,
		})
		offset += in.Size
	}
	layout.ArrayStride = offset
	return layout
}

// Binding finds a binding by variable name across all stages.
func (p *Program) Binding(name string) (Binding, bool) {
	if p == nil {
		return Binding{}, false
	}
	for _, s := range Stages {
		code := p.Stages[s]
		if code == nil {
			continue
		}
		for _, b := range code.Bindings {
			if b.Name == name {
				return b, true
			}
		}
	}
	return Binding{}, false
}

// SameVertexInputs reports whether a and b declare the same set of vertex input names.
func SameVertexInputs(a, b *Program) bool {
	return slices.Equal(a.VertexInputNames(), b.VertexInputNames())
}
