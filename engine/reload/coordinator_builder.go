package reload

import (
	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-playground/engine/bvh"
	"github.com/Carmen-Shannon/oxy-playground/engine/drawable"
	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/texture"
	"github.com/Carmen-Shannon/oxy-playground/engine/watcher"
	"go.uber.org/zap"
)

// CoordinatorBuilderOption is a functional option for configuring a Coordinator.
type CoordinatorBuilderOption func(c *coordinator)

// WithTracker sets the file tracker. By default a polling tracker over os.Stat is used.
//
// Parameters:
//   - t: the tracker; the coordinator takes over all of its registrations
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithTracker(t watcher.Tracker) CoordinatorBuilderOption {
	return func(c *coordinator) {
		c.tracker = t
	}
}

// WithCompiler sets the GPU program compiler.
//
// Parameters:
//   - compiler: the compiler
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithCompiler(compiler shader.Compiler) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if compiler != nil {
			c.compiler = compiler
		}
	}
}

// WithUploader sets the GPU resource uploader.
//
// Parameters:
//   - uploader: the uploader
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithUploader(uploader drawable.Uploader) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if uploader != nil {
			c.uploader = uploader
		}
	}
}

// WithTextureLoader sets the texture decoder.
func WithTextureLoader(l texture.Loader) CoordinatorBuilderOption {
	return func(c *coordinator) {
		c.textures = l
	}
}

// WithParser sets the motion file parser.
func WithParser(p bvh.Parser) CoordinatorBuilderOption {
	return func(c *coordinator) {
		c.parser = p
	}
}

// WithWorkerPool fans texture decoding and skin weighting out over pool. Each step still
// waits for all of its tasks before the next step starts.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) CoordinatorBuilderOption {
	return func(c *coordinator) {
		c.pool = pool
	}
}

// WithLogger sets the logger for reload diagnostics.
func WithLogger(log *zap.Logger) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithReadFunc replaces os.ReadFile for shader sources and uniform files.
func WithReadFunc(read func(path string) ([]byte, error)) CoordinatorBuilderOption {
	return func(c *coordinator) {
		if read != nil {
			c.readFile = read
		}
	}
}

// WithSkinInfluences sets how many bones may influence each vertex.
//
// Parameters:
//   - k: the influence count, clamped to [1, kinematics.MaxInfluences]
//
// Returns:
//   - CoordinatorBuilderOption: option function to apply
func WithSkinInfluences(k int) CoordinatorBuilderOption {
	return func(c *coordinator) {
		c.influences = min(max(k, 1), kinematics.MaxInfluences)
	}
}
