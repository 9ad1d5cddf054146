// Package bvh reads hierarchical motion-capture files: a HIERARCHY section of nested
// ROOT/JOINT/End blocks describing the skeleton and its animated channels, followed by a
// MOTION section holding one row of channel values per frame.
//
// Format reference: https://research.cs.wisc.edu/graphics/Courses/cs-838-1999/Jeff/BVH.html
package bvh

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
)

// parser is the implementation of the Parser interface.
type parser struct {
	tolerance  float64
	sourceName string
}

// Parser parses motion-capture files into a skeleton and a clip.
//
// On failure every method returns nil outputs together with the error; callers must not
// use partial results and should keep whatever skeleton and clip they held before.
type Parser interface {
	// Parse reads a complete file (HIERARCHY and MOTION) from r.
	//
	// Parameters:
	//   - r: the reader providing the file contents
	//
	// Returns:
	//   - *animation.Skeleton: the parsed skeleton
	//   - *animation.Clip: the decoded clip
	//   - error: a *ParseError (or an I/O error) on failure
	Parse(r io.Reader) (*animation.Skeleton, *animation.Clip, error)

	// ParseFile opens path and parses it. Errors carry the path.
	//
	// Parameters:
	//   - path: the file to parse
	//
	// Returns:
	//   - *animation.Skeleton: the parsed skeleton
	//   - *animation.Clip: the decoded clip
	//   - error: an I/O error or *ParseError on failure
	ParseFile(path string) (*animation.Skeleton, *animation.Clip, error)

	// ParseHierarchy reads only the HIERARCHY section from r. Any MOTION section is ignored.
	//
	// Parameters:
	//   - r: the reader providing the file contents
	//
	// Returns:
	//   - *animation.Skeleton: the parsed skeleton
	//   - []animation.Channel: the channels in declaration order
	//   - error: a *ParseError on failure
	ParseHierarchy(r io.Reader) (*animation.Skeleton, []animation.Channel, error)
}

var _ Parser = &parser{}

// NewParser creates a Parser with the given options applied.
//
// Parameters:
//   - options: a variadic list of ParserBuilderOption functions
//
// Returns:
//   - Parser: the configured parser
func NewParser(options ...ParserBuilderOption) Parser {
	p := &parser{tolerance: animation.DefaultDecomposeTolerance}
	for _, option := range options {
		option(p)
	}
	return p
}

// LoadFile parses path with a default Parser.
//
// Parameters:
//   - path: the file to parse
//
// Returns:
//   - *animation.Skeleton: the parsed skeleton
//   - *animation.Clip: the decoded clip
//   - error: an I/O error or *ParseError on failure
func LoadFile(path string) (*animation.Skeleton, *animation.Clip, error) {
	return NewParser().ParseFile(path)
}

func (p *parser) Parse(r io.Reader) (*animation.Skeleton, *animation.Clip, error) {
	return p.parse(p.sourceName, r)
}

func (p *parser) ParseFile(path string) (*animation.Skeleton, *animation.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("bvh: open %s: %w", path, err)
	}
	defer f.Close()
	return p.parse(path, f)
}

func (p *parser) ParseHierarchy(r io.Reader) (*animation.Skeleton, []animation.Channel, error) {
	s, err := newScanner(p.sourceName, r)
	if err != nil {
		return nil, nil, err
	}
	return parseHierarchy(s)
}

func (p *parser) parse(path string, r io.Reader) (*animation.Skeleton, *animation.Clip, error) {
	s, err := newScanner(path, r)
	if err != nil {
		return nil, nil, err
	}

	skeleton, channels, err := parseHierarchy(s)
	if err != nil {
		return nil, nil, err
	}
	header, err := parseMotionHeader(s)
	if err != nil {
		return nil, nil, err
	}
	rows, err := readFrameRows(s, header.frames, len(channels))
	if err != nil {
		return nil, nil, err
	}
	clip, err := DecodeFrames(skeleton, channels, header.secondsPerFrame, rows, p.tolerance)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, nil, err
	}
	return skeleton, clip, nil
}
