package bvh

import (
	"errors"
	"fmt"
)

var (
	// ErrGrammar marks malformed syntax: a wrong keyword, a keyword out of order, unbalanced
	// braces or a token that is not a number where one is required.
	ErrGrammar = errors.New("grammar error")

	// ErrChannel marks a CHANNELS entry naming an unknown channel kind.
	ErrChannel = errors.New("unrecognized channel")

	// ErrArity marks motion data whose size disagrees with the declared frame or channel count.
	ErrArity = errors.New("arity error")

	// ErrInvariant marks data that parses but violates a structural invariant, such as a
	// frame transform that carries scale.
	ErrInvariant = errors.New("invariant violation")
)

// ParseError locates a parse failure in its source.
type ParseError struct {
	// Path is the file the error occurred in, or empty for reader input.
	Path string

	// Line is the 1-based source line, or 0 when unknown.
	Line int

	// Token is the offending token, if any.
	Token string

	// Msg describes the problem.
	Msg string

	// Kind is one of the sentinel errors of this package.
	Kind error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<input>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Token != "" {
		return fmt.Sprintf("%s: %v: %s (at %q)", loc, e.Kind, e.Msg, e.Token)
	}
	return fmt.Sprintf("%s: %v: %s", loc, e.Kind, e.Msg)
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Kind
}
