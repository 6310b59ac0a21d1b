// package enums holds the strongly-typed hardware enumerations referenced by pipeline-state descriptors,
// along with the token Registry that maps their lowercase snake_case names onto values.
// Numeric values follow the Direct3D 11 / DXGI definitions so compiled descriptors can be handed to any
// device implementation that understands that vocabulary.
package enums

import (
	"sort"
	"strings"
)

// Family identifies a group of tokens that resolve to one enum type.
// Tokens never overlap within a family, but may repeat across families (e.g. "stream_out").
type Family string

const (
	FamilyResourceType   Family = "resource_type"
	FamilyAccess         Family = "access"
	FamilyBindFlag       Family = "bind_flag"
	FamilyPipelineStage  Family = "pipeline_stage"
	FamilyFormat         Family = "format"
	FamilyComparisonFunc Family = "comparison_func"
	FamilyStencilOp      Family = "stencil_op"
	FamilyBlend          Family = "blend"
	FamilyBlendOp        Family = "blend_op"
	FamilyFillMode       Family = "fill_mode"
	FamilyCullMode       Family = "cull_mode"
	FamilyFilter         Family = "filter"
	FamilyAddressMode    Family = "address_mode"
	FamilyTopology       Family = "topology"
)

// ResourceType is the kind of GPU resource a resource descriptor declares.
type ResourceType uint32

const (
	ResourceBuffer ResourceType = iota
	ResourceTexture1D
	ResourceTexture2D
	ResourceTexture3D
)

// IsTexture reports whether the resource type is one of the texture kinds.
//
// Returns:
//   - bool: true for texture1d, texture2d and texture3d
func (t ResourceType) IsTexture() bool {
	return t == ResourceTexture1D || t == ResourceTexture2D || t == ResourceTexture3D
}

func (t ResourceType) String() string { return nameOf(FamilyResourceType, uint32(t)) }

// AccessType controls how the CPU and GPU may read and write a resource.
type AccessType uint32

const (
	AccessDefault AccessType = iota
	AccessImmutable
	AccessDynamic
	AccessStaging
)

// CPUWritable reports whether resources created with this access mode accept CPU-side updates.
//
// Returns:
//   - bool: true for dynamic and staging access
func (a AccessType) CPUWritable() bool {
	return a == AccessDynamic || a == AccessStaging
}

func (a AccessType) String() string { return nameOf(FamilyAccess, uint32(a)) }

// BindFlag is a bitmask of the pipeline usages a resource may be bound to.
type BindFlag uint32

const (
	BindVertexBuffer    BindFlag = 0x1
	BindIndexBuffer     BindFlag = 0x2
	BindConstantBuffer  BindFlag = 0x4
	BindShaderResource  BindFlag = 0x8
	BindStreamOut       BindFlag = 0x10
	BindRenderTarget    BindFlag = 0x20
	BindDepthStencil    BindFlag = 0x40
	BindUnorderedAccess BindFlag = 0x80
	BindDecoder         BindFlag = 0x200
	BindVideoEncoder    BindFlag = 0x400
)

// Has reports whether every bit of other is set in f.
//
// Parameters:
//   - other: the flag (or flag set) to test for
//
// Returns:
//   - bool: true if all bits of other are present
func (f BindFlag) Has(other BindFlag) bool {
	return other != 0 && f&other == other
}

// String renders the set bits as their tokens joined by '|', in ascending bit order.
func (f BindFlag) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for bit := BindFlag(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}
		if name, ok := tokenNames[FamilyBindFlag][uint32(bit)]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, "0x"+hex(uint32(bit)))
		}
	}
	return strings.Join(parts, "|")
}

// PipelineStage is a stage of the graphics or compute pipeline that resources can be bound to.
type PipelineStage uint32

const (
	StageInputAssembler PipelineStage = iota
	StageVertexShader
	StageHullShader
	StageDomainShader
	StageGeometryShader
	StageStreamOut
	StageRasterizer
	StagePixelShader
	StageOutputMerge
	StageComputeShader
)

func (s PipelineStage) String() string { return nameOf(FamilyPipelineStage, uint32(s)) }

// Format is a DXGI pixel/element format.
// Only the formats the engine refers to directly are named here; every DXGI format is reachable by token.
type Format uint32

const (
	FormatUnknown           Format = 0
	FormatR32G32B32A32Float Format = 2
	FormatR32G32B32Float    Format = 6
	FormatR16G16B16A16Float Format = 10
	FormatR32G32Float       Format = 16
	FormatD32FloatS8X24Uint Format = 20
	FormatR10G10B10A2Unorm  Format = 24
	FormatR8G8B8A8Unorm     Format = 28
	FormatR8G8B8A8UnormSRGB Format = 29
	FormatR8G8B8A8Uint      Format = 30
	FormatR16G16Float       Format = 34
	FormatD32Float          Format = 40
	FormatR32Float          Format = 41
	FormatR32Uint           Format = 42
	FormatD24UnormS8Uint    Format = 45
	FormatR8G8Unorm         Format = 49
	FormatR16Float          Format = 54
	FormatD16Unorm          Format = 55
	FormatR8Unorm           Format = 61
	FormatB8G8R8A8Unorm     Format = 87
	FormatB8G8R8A8UnormSRGB Format = 91
	FormatForceUint         Format = 0xffffffff
)

// BytesPerPixel returns the texel size for uncompressed formats.
//
// Returns:
//   - uint32: the size of one texel in bytes, or 0 if the format is block-compressed, planar or unknown
func (f Format) BytesPerPixel() uint32 {
	return texelSizes[f]
}

// IsDepth reports whether the format is a depth or depth-stencil format.
//
// Returns:
//   - bool: true for d16_unorm, d24_unorm_s8_uint, d32_float and d32_float_s8x24_uint
func (f Format) IsDepth() bool {
	return f == FormatD16Unorm || f == FormatD24UnormS8Uint || f == FormatD32Float || f == FormatD32FloatS8X24Uint
}

func (f Format) String() string { return nameOf(FamilyFormat, uint32(f)) }

// ComparisonFunc is the comparison used by depth, stencil and comparison-sampler tests.
type ComparisonFunc uint32

const (
	ComparisonNever ComparisonFunc = iota + 1
	ComparisonLess
	ComparisonEqual
	ComparisonLessEqual
	ComparisonGreater
	ComparisonNotEqual
	ComparisonGreaterEqual
	ComparisonAlways
)

func (c ComparisonFunc) String() string { return nameOf(FamilyComparisonFunc, uint32(c)) }

// StencilOp is the action applied to the stencil buffer when a stencil test resolves.
type StencilOp uint32

const (
	StencilOpKeep StencilOp = iota + 1
	StencilOpZero
	StencilOpReplace
	StencilOpIncrSat
	StencilOpDecrSat
	StencilOpInvert
	StencilOpIncr
	StencilOpDecr
)

func (s StencilOp) String() string { return nameOf(FamilyStencilOp, uint32(s)) }

// Blend is a blend factor applied to the source or destination color/alpha.
type Blend uint32

const (
	BlendZero           Blend = 1
	BlendOne            Blend = 2
	BlendSrcColor       Blend = 3
	BlendInvSrcColor    Blend = 4
	BlendSrcAlpha       Blend = 5
	BlendInvSrcAlpha    Blend = 6
	BlendDestAlpha      Blend = 7
	BlendInvDestAlpha   Blend = 8
	BlendDestColor      Blend = 9
	BlendInvDestColor   Blend = 10
	BlendSrcAlphaSat    Blend = 11
	BlendBlendFactor    Blend = 14
	BlendInvBlendFactor Blend = 15
	BlendSrc1Color      Blend = 16
	BlendInvSrc1Color   Blend = 17
	BlendSrc1Alpha      Blend = 18
	BlendInvSrc1Alpha   Blend = 19
)

func (b Blend) String() string { return nameOf(FamilyBlend, uint32(b)) }

// BlendOp combines the weighted source and destination terms.
type BlendOp uint32

const (
	BlendOpAdd BlendOp = iota + 1
	BlendOpSubtract
	BlendOpRevSubtract
	BlendOpMin
	BlendOpMax
)

func (b BlendOp) String() string { return nameOf(FamilyBlendOp, uint32(b)) }

// FillMode selects solid or wireframe rasterization.
type FillMode uint32

const (
	FillWireframe FillMode = 2
	FillSolid     FillMode = 3
)

func (f FillMode) String() string { return nameOf(FamilyFillMode, uint32(f)) }

// CullMode selects which triangle facing is discarded.
type CullMode uint32

const (
	CullNone CullMode = iota + 1
	CullFront
	CullBack
)

func (c CullMode) String() string { return nameOf(FamilyCullMode, uint32(c)) }

// Filter is a sampler filtering mode. The value encodes min/mag/mip linearity in separate bits,
// with the reduction type (comparison, minimum, maximum) in the high bits.
type Filter uint32

const (
	FilterMinMagMipPoint             Filter = 0x0
	FilterMinMagPointMipLinear       Filter = 0x1
	FilterMinPointMagLinearMipPoint  Filter = 0x4
	FilterMinPointMagMipLinear       Filter = 0x5
	FilterMinLinearMagMipPoint       Filter = 0x10
	FilterMinLinearMagPointMipLinear Filter = 0x11
	FilterMinMagLinearMipPoint       Filter = 0x14
	FilterMinMagMipLinear            Filter = 0x15
	FilterAnisotropic                Filter = 0x55

	FilterReductionComparison Filter = 0x80
	FilterReductionMinimum    Filter = 0x100
	FilterReductionMaximum    Filter = 0x180
	filterReductionMask       Filter = 0x180
)

// MinLinear reports whether minification uses linear filtering.
func (f Filter) MinLinear() bool { return f&0x10 != 0 }

// MagLinear reports whether magnification uses linear filtering.
func (f Filter) MagLinear() bool { return f&0x4 != 0 }

// MipLinear reports whether mip selection interpolates between levels.
func (f Filter) MipLinear() bool { return f&0x1 != 0 }

// Anisotropic reports whether the filter is one of the anisotropic variants.
func (f Filter) Anisotropic() bool { return f&^filterReductionMask == FilterAnisotropic }

// Reduction returns the reduction bits (0 for a standard filter).
func (f Filter) Reduction() Filter { return f & filterReductionMask }

func (f Filter) String() string { return nameOf(FamilyFilter, uint32(f)) }

// TextureAddressMode resolves texture coordinates outside [0, 1].
type TextureAddressMode uint32

const (
	AddressWrap TextureAddressMode = iota + 1
	AddressMirror
	AddressClamp
	AddressBorder
	AddressMirrorOnce
)

func (a TextureAddressMode) String() string { return nameOf(FamilyAddressMode, uint32(a)) }

// PrimitiveTopology describes how the input assembler interprets the index stream.
type PrimitiveTopology uint32

const (
	TopologyUndefined        PrimitiveTopology = 0
	TopologyPointList        PrimitiveTopology = 1
	TopologyLineList         PrimitiveTopology = 2
	TopologyLineStrip        PrimitiveTopology = 3
	TopologyTriangleList     PrimitiveTopology = 4
	TopologyTriangleStrip    PrimitiveTopology = 5
	TopologyLineListAdj      PrimitiveTopology = 10
	TopologyLineStripAdj     PrimitiveTopology = 11
	TopologyTriangleListAdj  PrimitiveTopology = 12
	TopologyTriangleStripAdj PrimitiveTopology = 13

	// TopologyControlPointPatchList is the value of the 1-control-point patch list; the N-point list is this plus N-1.
	TopologyControlPointPatchList PrimitiveTopology = 33
)

func (p PrimitiveTopology) String() string { return nameOf(FamilyTopology, uint32(p)) }

// DepthWriteMask enables or disables writes to the depth buffer. It is derived from the boolean depth_write
// key rather than resolved from a token.
type DepthWriteMask uint32

const (
	DepthWriteZero DepthWriteMask = 0
	DepthWriteAll  DepthWriteMask = 1
)

func (d DepthWriteMask) String() string {
	if d == DepthWriteAll {
		return "all"
	}
	return "zero"
}

// nameOf returns the token for a value in a family, falling back to the hex value when unknown.
func nameOf(f Family, v uint32) string {
	if name, ok := tokenNames[f][v]; ok {
		return name
	}
	return "0x" + hex(v)
}

func hex(v uint32) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// invert builds the value-to-token table for a family. When two tokens share a value the
// lexically smaller one wins so String output is stable.
func invert(tokens map[string]uint32) map[uint32]string {
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[uint32]string, len(tokens))
	for _, k := range keys {
		if _, ok := out[tokens[k]]; !ok {
			out[tokens[k]] = k
		}
	}
	return out
}
