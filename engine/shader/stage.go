package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Stage identifies one programmable pipeline stage of a Program.
type Stage int

const (
	// StageVertex processes each vertex of the drawn mesh.
	StageVertex Stage = iota

	// StageFragment shades rasterized fragments.
	StageFragment

	// StageGeometry, StageTessControl and StageTessEvaluation are accepted so descriptors
	// written for other backends still load. Compilers that do not support them reject the program.
	StageGeometry
	StageTessControl
	StageTessEvaluation

	// StageCompute is a standalone compute entry point.
	StageCompute
)

// Stages lists every stage in the order a Program assembles them.
var Stages = []Stage{StageVertex, StageFragment, StageGeometry, StageTessControl, StageTessEvaluation, StageCompute}

var stageNames = map[Stage]string{
	StageVertex:         "vertex",
	StageFragment:       "fragment",
	StageGeometry:       "geometry",
	StageTessControl:    "tess_control",
	StageTessEvaluation: "tess_evaluation",
	StageCompute:        "compute",
}

// String returns the descriptor key of the stage.
func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ParseStage maps a descriptor key to its Stage.
//
// Parameters:
//   - name: the descriptor key, e.g. "vertex" or "tess_control"
//
// Returns:
//   - Stage: the stage
//   - bool: false if name is not a known stage
func ParseStage(name string) (Stage, bool) {
	for s, n := range stageNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Visibility returns the wgpu stage flag for bindings declared in this stage.
// Stages without a WebGPU equivalent report wgpu.ShaderStageNone.
func (s Stage) Visibility() wgpu.ShaderStage {
	switch s {
	case StageVertex:
		return wgpu.ShaderStageVertex
	case StageFragment:
		return wgpu.ShaderStageFragment
	case StageCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}
