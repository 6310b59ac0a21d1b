package device

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/handsonicv4/Chocolate-3D/common"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/descriptor"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

// maxAnisotropy is the highest anisotropy WebGPU accepts.
const maxAnisotropy = 16

// maxLOD is the LOD clamp used when a descriptor asks for more than WebGPU can express.
const maxLOD = 32.0

var textureFormats = map[enums.Format]wgpu.TextureFormat{
	enums.FormatR32G32B32A32Float: wgpu.TextureFormatRGBA32Float,
	enums.FormatR16G16B16A16Float: wgpu.TextureFormatRGBA16Float,
	enums.FormatR32G32Float:       wgpu.TextureFormatRG32Float,
	enums.FormatR8G8B8A8Unorm:     wgpu.TextureFormatRGBA8Unorm,
	enums.FormatR8G8B8A8UnormSRGB: wgpu.TextureFormatRGBA8UnormSrgb,
	enums.FormatR8G8B8A8Uint:      wgpu.TextureFormatRGBA8Uint,
	enums.FormatR32Float:          wgpu.TextureFormatR32Float,
	enums.FormatR32Uint:           wgpu.TextureFormatR32Uint,
	enums.FormatB8G8R8A8Unorm:     wgpu.TextureFormatBGRA8Unorm,
	enums.FormatD32Float:          wgpu.TextureFormatDepth32Float,
	enums.FormatD24UnormS8Uint:    wgpu.TextureFormatDepth24PlusStencil8,
}

// textureFormat maps a DXGI-style format onto the closest WebGPU texture format.
//
// Parameters:
//   - f: the engine format
//
// Returns:
//   - wgpu.TextureFormat: the WebGPU format
//   - bool: false if WebGPU has no equivalent
func textureFormat(f enums.Format) (wgpu.TextureFormat, bool) {
	tf, ok := textureFormats[f]
	return tf, ok
}

func bufferUsage(flag enums.BindFlag, cpuWritable bool) wgpu.BufferUsage {
	usage := wgpu.BufferUsageCopyDst
	if flag.Has(enums.BindVertexBuffer) {
		usage |= wgpu.BufferUsageVertex
	}
	if flag.Has(enums.BindIndexBuffer) {
		usage |= wgpu.BufferUsageIndex
	}
	if flag.Has(enums.BindConstantBuffer) {
		usage |= wgpu.BufferUsageUniform
	}
	if flag.Has(enums.BindShaderResource) || flag.Has(enums.BindUnorderedAccess) || flag.Has(enums.BindStreamOut) {
		usage |= wgpu.BufferUsageStorage
	}
	if !cpuWritable {
		usage |= wgpu.BufferUsageCopySrc
	}
	return usage
}

func textureUsage(flag enums.BindFlag) wgpu.TextureUsage {
	usage := wgpu.TextureUsageCopyDst
	if flag.Has(enums.BindShaderResource) {
		usage |= wgpu.TextureUsageTextureBinding
	}
	if flag.Has(enums.BindRenderTarget) || flag.Has(enums.BindDepthStencil) {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	if flag.Has(enums.BindUnorderedAccess) {
		usage |= wgpu.TextureUsageStorageBinding
	}
	return usage
}

func textureDimension(t enums.ResourceType) wgpu.TextureDimension {
	switch t {
	case enums.ResourceTexture1D:
		return wgpu.TextureDimension1D
	case enums.ResourceTexture3D:
		return wgpu.TextureDimension3D
	}
	return wgpu.TextureDimension2D
}

// addressMode maps a texture address mode. WebGPU has no border or mirror-once modes, so they fall back to
// clamp and mirror.
func addressMode(a enums.TextureAddressMode) wgpu.AddressMode {
	switch a {
	case enums.AddressMirror, enums.AddressMirrorOnce:
		return wgpu.AddressModeMirrorRepeat
	case enums.AddressClamp, enums.AddressBorder:
		return wgpu.AddressModeClampToEdge
	}
	return wgpu.AddressModeRepeat
}

func compareFunction(c enums.ComparisonFunc) wgpu.CompareFunction {
	switch c {
	case enums.ComparisonNever:
		return wgpu.CompareFunctionNever
	case enums.ComparisonLess:
		return wgpu.CompareFunctionLess
	case enums.ComparisonEqual:
		return wgpu.CompareFunctionEqual
	case enums.ComparisonLessEqual:
		return wgpu.CompareFunctionLessEqual
	case enums.ComparisonGreater:
		return wgpu.CompareFunctionGreater
	case enums.ComparisonNotEqual:
		return wgpu.CompareFunctionNotEqual
	case enums.ComparisonGreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	}
	return wgpu.CompareFunctionAlways
}

func filterMode(linear bool) wgpu.FilterMode {
	if linear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func mipmapFilterMode(linear bool) wgpu.MipmapFilterMode {
	if linear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

// samplerStagingData converts a compiled sampler descriptor into staging data for sampler creation.
// Comparison filters set the compare function; other reductions have no WebGPU equivalent and sample normally.
//
// Parameters:
//   - d: the compiled sampler descriptor
//
// Returns:
//   - common.SamplerStagingData: the WebGPU sampler parameters
func samplerStagingData(d descriptor.SamplerDesc) common.SamplerStagingData {
	s := common.SamplerStagingData{
		AddressModeU:  addressMode(d.AddressU),
		AddressModeV:  addressMode(d.AddressV),
		AddressModeW:  addressMode(d.AddressW),
		MagFilter:     filterMode(d.Filter.MagLinear()),
		MinFilter:     filterMode(d.Filter.MinLinear()),
		MipmapFilter:  mipmapFilterMode(d.Filter.MipLinear()),
		LodMinClamp:   max(d.MinLOD, 0),
		LodMaxClamp:   min(d.MaxLOD, maxLOD),
		MaxAnisotropy: 1,
	}
	if d.Filter.Anisotropic() {
		s.MaxAnisotropy = uint16(min(max(d.MaxAnisotropy, 1), maxAnisotropy))
	}
	if d.Filter.Reduction() == enums.FilterReductionComparison {
		s.Compare = compareFunction(d.ComparisonFunc)
	}
	return s
}

func samplerDescriptor(label string, s common.SamplerStagingData) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     s.MagFilter,
		MinFilter:     s.MinFilter,
		MipmapFilter:  s.MipmapFilter,
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   s.LodMaxClamp,
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
		Compare:       s.Compare,
	}
}
