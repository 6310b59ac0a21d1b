package device

import (
	log "github.com/sirupsen/logrus"
)

type wgpuConfig struct {
	vsync                bool
	forceFallbackAdapter bool
	logger               log.FieldLogger
}

// WGPUBuilderOption is a functional option applied to a WebGPU device during construction via NewWGPU.
type WGPUBuilderOption func(*wgpuConfig)

// WithVSync presents on vertical blank instead of immediately.
//
// Parameters:
//   - enabled: true to cap presentation at the display refresh rate
//
// Returns:
//   - WGPUBuilderOption: a function that applies the vsync option
func WithVSync(enabled bool) WGPUBuilderOption {
	return func(c *wgpuConfig) {
		c.vsync = enabled
	}
}

// WithFallbackAdapter forces the software fallback adapter.
func WithFallbackAdapter(force bool) WGPUBuilderOption {
	return func(c *wgpuConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithDeviceLogger sets the logger for device traces.
func WithDeviceLogger(logger log.FieldLogger) WGPUBuilderOption {
	return func(c *wgpuConfig) {
		c.logger = logger
	}
}
