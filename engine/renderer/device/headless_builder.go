package device

// HeadlessBuilderOption is a functional option applied to a headless device during construction via NewHeadless.
type HeadlessBuilderOption func(*Headless)

// WithViewport sets the initial surface size of the headless device.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - HeadlessBuilderOption: a function that applies the viewport option
func WithViewport(width, height int) HeadlessBuilderOption {
	return func(h *Headless) {
		if width > 0 && height > 0 {
			h.width, h.height = width, height
		}
	}
}

// WithMemoryLimit caps the size of a single allocation. Larger requests fail like an out-of-memory device would.
//
// Parameters:
//   - bytes: the per-resource limit
//
// Returns:
//   - HeadlessBuilderOption: a function that applies the limit option
func WithMemoryLimit(bytes uint64) HeadlessBuilderOption {
	return func(h *Headless) {
		h.maxBytes = bytes
	}
}
