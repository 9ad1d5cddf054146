package renderer

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(r *wgpuRenderer, forceFallbackAdapter *bool)

// WithVSync selects FIFO presentation when true and immediate presentation otherwise.
//
// Parameters:
//   - vsync: whether to wait for vertical blank
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithVSync(vsync bool) RendererBuilderOption {
	return func(r *wgpuRenderer, _ *bool) {
		r.presentMode = wgpu.PresentModeImmediate
		if vsync {
			r.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithFallbackAdapter forces the software adapter.
func WithFallbackAdapter() RendererBuilderOption {
	return func(_ *wgpuRenderer, force *bool) {
		*force = true
	}
}

// WithLogger sets the logger for draw diagnostics.
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *wgpuRenderer, _ *bool) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSampler overrides the filtering and addressing of the shared texture sampler.
//
// Parameters:
//   - opts: sampler settings; zero fields keep the linear, repeating defaults
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithSampler(opts common.SamplerOptions) RendererBuilderOption {
	return func(r *wgpuRenderer, _ *bool) {
		r.samplerOptions = opts
	}
}
