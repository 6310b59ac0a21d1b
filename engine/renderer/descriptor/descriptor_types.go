package descriptor

import (
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

// Kind names a descriptor file type. The values double as the "kind" strings of a library manifest.
type Kind string

const (
	KindResource     Kind = "resource"
	KindDepthStencil Kind = "depth_stencil"
	KindBlend        Kind = "blend"
	KindRasterizer   Kind = "rasterizer"
	KindSampler      Kind = "sampler"
)

// MaxRenderTargets is the number of simultaneously bound render targets a blend descriptor can describe.
const MaxRenderTargets = 8

// MaxSizeComponents is the number of dimensions a resource size vector carries.
const MaxSizeComponents = 3

// MaskMax is the largest value accepted for 8-bit mask fields.
const MaskMax = 0xff

// ResourceDesc declares a buffer or texture.
// Buffers populate ElementStride; textures populate Format and MipLevel. The other pair stays zero.
type ResourceDesc struct {
	Type     enums.ResourceType
	Access   enums.AccessType
	BindFlag enums.BindFlag
	Name     string

	// ElementStride is the structure stride in bytes for buffers.
	ElementStride uint32

	// Format and MipLevel are set for texture types only.
	Format   enums.Format
	MipLevel uint32

	// Size holds width, height (or array size) and depth. Components not present in the file are zero.
	Size [MaxSizeComponents]uint32
}

// StencilOpDesc is the stencil behaviour for one triangle facing.
type StencilOpDesc struct {
	StencilFailOp      enums.StencilOp
	StencilDepthFailOp enums.StencilOp
	StencilPassOp      enums.StencilOp
	StencilFunc        enums.ComparisonFunc
}

// DepthStencilDesc configures the depth and stencil tests of the output merger.
// Fields gated by a disabled flag are left zero.
type DepthStencilDesc struct {
	DepthEnable    bool
	DepthWriteMask enums.DepthWriteMask
	DepthFunc      enums.ComparisonFunc

	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        StencilOpDesc
	BackFace         StencilOpDesc
}

// RenderTargetBlendDesc is the blend state of a single render target.
type RenderTargetBlendDesc struct {
	BlendEnable           bool
	SrcBlend              enums.Blend
	DestBlend             enums.Blend
	BlendOp               enums.BlendOp
	SrcBlendAlpha         enums.Blend
	DestBlendAlpha        enums.Blend
	BlendOpAlpha          enums.BlendOp
	RenderTargetWriteMask uint8
}

// BlendDesc configures output-merger blending.
// RenderTargetCount records how many entries the file supplied (capped at MaxRenderTargets).
type BlendDesc struct {
	AlphaToCoverageEnable  bool
	IndependentBlendEnable bool
	RenderTarget           [MaxRenderTargets]RenderTargetBlendDesc
	RenderTargetCount      int
}

// RasterizerDesc configures triangle setup and rasterization.
type RasterizerDesc struct {
	FillMode              enums.FillMode
	CullMode              enums.CullMode
	FrontCounterClockwise bool
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       bool
	ScissorEnable         bool
	MultisampleEnable     bool
	AntialiasedLineEnable bool
}

// SamplerDesc configures texture sampling.
type SamplerDesc struct {
	Filter         enums.Filter
	AddressU       enums.TextureAddressMode
	AddressV       enums.TextureAddressMode
	AddressW       enums.TextureAddressMode
	ComparisonFunc enums.ComparisonFunc
	MaxAnisotropy  int32
	BorderColor    [4]float32
	MipLODBias     float32
	MinLOD         float32
	MaxLOD         float32
}
