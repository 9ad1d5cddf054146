package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// loader is the implementation of the Loader interface.
type loader struct {
	read    func(path string) ([]byte, error)
	baseDir string
	label   string
}

// Loader reads stage sources and assembles them into a Program.
type Loader interface {
	// Load assembles a program from per-stage sources. Stage file pieces are read in
	// order and concatenated; `// @oxy:include "file"` lines are spliced in.
	//
	// Every path Load attempts to read is returned, including on failure, so callers can
	// watch the files needed to fix the error.
	//
	// Parameters:
	//   - sources: the code source for each stage present
	//
	// Returns:
	//   - *Program: the assembled program, nil on error
	//   - []string: every file read or attempted, in first-read order
	//   - error: an error if a file cannot be read, an include is malformed, or a
	//     vertex, fragment or compute stage lacks its entry point
	Load(sources map[Stage]StageSource) (*Program, []string, error)
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the given options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{read: os.ReadFile, label: "program"}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(sources map[Stage]StageSource) (*Program, []string, error) {
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("shader: %s has no stages", l.label)
	}

	pp := newPreProcessor(l.read)
	prog := &Program{Label: l.label, Stages: make(map[Stage]*StageCode, len(sources))}

	for _, stage := range Stages {
		src, ok := sources[stage]
		if !ok {
			continue
		}
		code, err := l.assemble(pp, stage, src)
		if err != nil {
			return nil, pp.paths, fmt.Errorf("shader: %s stage: %w", stage, err)
		}
		prog.Stages[stage] = code
	}
	for stage := range sources {
		if _, ok := prog.Stages[stage]; !ok {
			return nil, pp.paths, fmt.Errorf("shader: unknown stage %v", stage)
		}
	}

	if v := prog.Stages[StageVertex]; v != nil {
		prog.VertexInputs = parseVertexInputs(v.Source)
	}
	return prog, pp.paths, nil
}

func (l *loader) assemble(pp *preProcessor, stage Stage, src StageSource) (*StageCode, error) {
	var source string
	if src.IsInline() {
		expanded, err := pp.process(src.Inline, l.baseDir, nil)
		if err != nil {
			return nil, err
		}
		source = expanded
	} else {
		pieces := make([]string, 0, len(src.Paths))
		for _, path := range src.Paths {
			text, err := pp.readFile(path)
			if err != nil {
				return nil, err
			}
			expanded, err := pp.process(text, filepath.Dir(path), []string{path})
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, expanded)
		}
		source = strings.Join(pieces, "\n")
	}

	code := &StageCode{
		Stage:      stage,
		Source:     source,
		EntryPoint: parseEntryPoint(source, stage),
		Bindings:   parseBindings(source, stage.Visibility()),
	}
	if _, hasEntry := entryRegexes[stage]; hasEntry && code.EntryPoint == "" {
		return nil, fmt.Errorf("no @%s entry point", stage)
	}
	code.Module = &wgpu.ShaderModuleDescriptor{
		Label: l.label + "." + stage.String(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	}
	return code, nil
}
