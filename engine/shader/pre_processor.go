package shader

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// includeRegex matches an `// @oxy:include "path"` directive on its own line.
var includeRegex = regexp.MustCompile(`^\s*//\s*@oxy:include\s+"([^"]+)"\s*$`)

// maxIncludeDepth bounds nested includes.
const maxIncludeDepth = 16

// preProcessor splices included files into stage source and records every file it reads.
type preProcessor struct {
	read  func(path string) ([]byte, error)
	paths []string
	seen  map[string]bool
}

func newPreProcessor(read func(path string) ([]byte, error)) *preProcessor {
	return &preProcessor{read: read, seen: make(map[string]bool)}
}

// readFile reads path and records it, even when the read fails, so the caller can watch
// a file that does not exist yet.
func (p *preProcessor) readFile(path string) (string, error) {
	if !p.seen[path] {
		p.seen[path] = true
		p.paths = append(p.paths, path)
	}
	data, err := p.read(path)
	if err != nil {
		return "", fmt.Errorf("shader: read %s: %w", path, err)
	}
	return string(data), nil
}

// process replaces include directives in source. Relative include paths resolve against
// dir, the directory of the file holding the directive.
func (p *preProcessor) process(source, dir string, stack []string) (string, error) {
	if len(stack) > maxIncludeDepth {
		return "", fmt.Errorf("shader: includes nested deeper than %d: %s", maxIncludeDepth, strings.Join(stack, " -> "))
	}

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		path := m[1]
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		for _, s := range stack {
			if s == path {
				return "", fmt.Errorf("shader: line %d: include cycle through %s", i+1, path)
			}
		}

		text, err := p.readFile(path)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", i+1, err)
		}
		expanded, err := p.process(text, filepath.Dir(path), append(stack, path))
		if err != nil {
			return "", err
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}
