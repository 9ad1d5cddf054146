package texture

import "github.com/Carmen-Shannon/automation/tools/worker"

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(l *loader)

// WithWorkerPool decodes files concurrently on pool. LoadAll still waits for every file.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) LoaderBuilderOption {
	return func(l *loader) {
		l.pool = pool
	}
}

// WithFlipY sets whether 2D textures are flipped vertically on decode.
//
// Parameters:
//   - flip: true to flip 2D textures
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithFlipY(flip bool) LoaderBuilderOption {
	return func(l *loader) {
		l.flipY = flip
	}
}

// WithDecodeFunc replaces the file decoder.
func WithDecodeFunc(fn func(path string, flipY bool) (Image, error)) LoaderBuilderOption {
	return func(l *loader) {
		if fn != nil {
			l.open = fn
		}
	}
}
