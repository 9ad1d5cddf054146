package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/preview"
	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithWindow sets the window whose event loop Run drives.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer each frame is drawn with. Without one, frames are
// computed but not drawn.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera replaces the default orbit camera.
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		if c != nil {
			e.camera = c
		}
	}
}

// WithProfiler replaces the default profiler, which logs nowhere.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithPreview sets the pose preview renderer and the file the preview key writes to.
//
// Parameters:
//   - r: the preview renderer
//   - path: the output file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPreview(r preview.Renderer, path string) EngineBuilderOption {
	return func(e *engine) {
		if r != nil {
			e.preview = r
		}
		if path != "" {
			e.previewPath = path
		}
	}
}

// WithAnimation applies the playback settings.
//
// Parameters:
//   - cfg: in-place playback, skeleton overlay and playback speed
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAnimation(cfg config.AnimationConfig) EngineBuilderOption {
	return func(e *engine) {
		e.inPlace = cfg.InPlace
		e.skeleton = cfg.ShowSkeleton
		if cfg.Speed > 0 {
			e.speed = cfg.Speed
		}
	}
}

// WithIdleInterval sets how often frames run while the descriptor sets no
// TimerMilliseconds, so file changes are picked up without input. Negative waits for input.
func WithIdleInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.idle = d
	}
}

// WithClock replaces time.Now as the playback clock.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger for frame diagnostics.
func WithLogger(log *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if log != nil {
			e.log = log
		}
	}
}
