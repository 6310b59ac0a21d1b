package engine

import (
	"time"

	"github.com/handsonicv4/Chocolate-3D/engine/camera"
	"github.com/handsonicv4/Chocolate-3D/engine/config"
	"github.com/handsonicv4/Chocolate-3D/engine/profiler"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"
	"github.com/handsonicv4/Chocolate-3D/engine/window"
	log "github.com/sirupsen/logrus"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the sizing constants and resolution.
//
// Parameters:
//   - cfg: the engine configuration, usually from config.Load
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithCamera sets the camera frames are rendered from.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithRegistry supplies a resource registry instead of creating one over the engine's device.
// The registry must wrap the same device.
//
// Parameters:
//   - r: the resource registry
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRegistry(r resource.Registry) EngineBuilderOption {
	return func(e *engine) {
		e.resources = r
	}
}

// WithLogger sets the logger for frame diagnostics.
//
// Parameters:
//   - logger: the logrus logger or entry
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger log.FieldLogger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets a custom profiler, for example one with a shorter reporting interval.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the host window. Run polls it each frame and its resize events update the resolution.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
