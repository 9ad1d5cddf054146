package bvh

// ParserBuilderOption is a functional option for configuring a Parser.
type ParserBuilderOption func(p *parser)

// WithDecomposeTolerance sets how far a decoded frame's basis column lengths may stray
// from 1 before the frame is rejected as scaled.
//
// Parameters:
//   - tol: the tolerance (values <= 0 are ignored)
//
// Returns:
//   - ParserBuilderOption: option function to apply
func WithDecomposeTolerance(tol float64) ParserBuilderOption {
	return func(p *parser) {
		if tol > 0 {
			p.tolerance = tol
		}
	}
}

// WithSourceName sets the name reported in errors from Parse and ParseHierarchy.
// ParseFile always reports its path.
//
// Parameters:
//   - name: the source name
//
// Returns:
//   - ParserBuilderOption: option function to apply
func WithSourceName(name string) ParserBuilderOption {
	return func(p *parser) {
		p.sourceName = name
	}
}
