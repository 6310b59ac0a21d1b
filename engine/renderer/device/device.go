package device

import (
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/descriptor"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

// Resource is a GPU object owned by a Device.
type Resource interface {
	// Release frees the GPU object. Releasing twice is a no-op.
	Release()

	// Size returns the capacity in bytes; pipeline-state objects report 0.
	Size() uint64
}

// ClearFlag selects which planes of a depth-stencil view are cleared.
type ClearFlag uint32

const (
	ClearDepth   ClearFlag = 0x1
	ClearStencil ClearFlag = 0x2
)

// BufferDesc describes a linear GPU buffer.
type BufferDesc struct {
	Label       string
	BindFlag    enums.BindFlag
	CPUWritable bool
	Size        uint64

	// Stride is the structure stride for structured shader views, 0 for raw buffers.
	Stride uint32
}

// TextureDesc describes a 1D, 2D or 3D texture.
type TextureDesc struct {
	Label        string
	Type         enums.ResourceType
	BindFlag     enums.BindFlag
	Format       enums.Format
	CPUWritable  bool
	GenerateMips bool
	Width        uint32
	Height       uint32
	Depth        uint32
}

// Extent returns the dimensions with unused axes clamped to 1.
func (d TextureDesc) Extent() (uint32, uint32, uint32) {
	return max(d.Width, 1), max(d.Height, 1), max(d.Depth, 1)
}

// MipLevels returns the mip count: the full chain when GenerateMips is set, otherwise 1.
func (d TextureDesc) MipLevels() uint32 {
	if !d.GenerateMips {
		return 1
	}
	w, h, z := d.Extent()
	largest := max(w, h, z)
	levels := uint32(1)
	for largest > 1 {
		largest >>= 1
		levels++
	}
	return levels
}

// ByteSize returns the size of the top mip level.
func (d TextureDesc) ByteSize() uint64 {
	w, h, z := d.Extent()
	return uint64(w) * uint64(h) * uint64(z) * uint64(d.Format.BytesPerPixel())
}

// StateKind identifies which fixed-function state a StateDesc carries.
type StateKind int

const (
	StateDepthStencil StateKind = iota + 1
	StateBlend
	StateRasterizer
	StateSampler
)

func (k StateKind) String() string {
	switch k {
	case StateDepthStencil:
		return "depth_stencil"
	case StateBlend:
		return "blend"
	case StateRasterizer:
		return "rasterizer"
	case StateSampler:
		return "sampler"
	}
	return "unknown"
}

// StateDesc wraps one compiled pipeline-state descriptor. Only the field matching Kind is read.
type StateDesc struct {
	Kind         StateKind
	Label        string
	DepthStencil descriptor.DepthStencilDesc
	Blend        descriptor.BlendDesc
	Rasterizer   descriptor.RasterizerDesc
	Sampler      descriptor.SamplerDesc
}

// Device is the graphics device the resource registry and frame orchestrator drive.
type Device interface {
	// CreateBuffer allocates a buffer and optionally fills it.
	//
	// Parameters:
	//   - desc: the buffer description
	//   - initial: initial contents, may be nil or shorter than desc.Size
	//
	// Returns:
	//   - Resource: the new buffer
	//   - error: an error if the device refused the allocation
	CreateBuffer(desc BufferDesc, initial []byte) (Resource, error)

	// CreateTexture allocates a texture and optionally uploads its top mip level.
	//
	// Parameters:
	//   - desc: the texture description
	//   - initial: tightly packed texel rows, may be nil
	//
	// Returns:
	//   - Resource: the new texture
	//   - error: an error for a bad size or unsupported format
	CreateTexture(desc TextureDesc, initial []byte) (Resource, error)

	// CreateState builds a depth-stencil, blend, rasterizer or sampler state object.
	CreateState(desc StateDesc) (Resource, error)

	// Update overwrites the start of a buffer or texture. len(data) must not exceed r.Size().
	Update(r Resource, data []byte) error

	// Bind attaches r to a slot of a pipeline stage. A nil Resource unbinds the slot.
	Bind(stage enums.PipelineStage, flag enums.BindFlag, slot uint32, r Resource)

	// ClearRenderTarget fills a render target with a color.
	ClearRenderTarget(r Resource, color [4]float32) error

	// ClearDepthStencil resets the selected planes of a depth-stencil target.
	ClearDepthStencil(r Resource, flags ClearFlag, depth float32, stencil uint8) error

	// Dispatch issues a compute dispatch with the currently bound compute state.
	Dispatch(x, y, z uint32)

	// DrawIndexedInstanced issues an indexed, instanced draw with the currently bound state.
	DrawIndexedInstanced(indexCount, instanceCount uint32)

	// Present submits the frame and flips the swap chain.
	Present() error

	// BackBuffer returns the render target of the current swap-chain image.
	BackBuffer() Resource

	// Viewport returns the size of the presentation surface in pixels.
	Viewport() (int, int)

	// Resize reconfigures the presentation surface.
	Resize(width, height int)

	// Release frees the device and everything it still owns.
	Release()
}
