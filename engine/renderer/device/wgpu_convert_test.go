package device

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/descriptor"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

func TestBufferUsage(t *testing.T) {
	got := bufferUsage(enums.BindVertexBuffer|enums.BindShaderResource, true)
	if got&wgpu.BufferUsageVertex == 0 || got&wgpu.BufferUsageStorage == 0 || got&wgpu.BufferUsageCopyDst == 0 {
		t.Errorf("missing usage bits: %v", got)
	}
	if got&wgpu.BufferUsageUniform != 0 {
		t.Errorf("unexpected uniform usage: %v", got)
	}
	if cb := bufferUsage(enums.BindConstantBuffer, false); cb&wgpu.BufferUsageUniform == 0 {
		t.Errorf("constant buffer must be uniform: %v", cb)
	}
}

func TestTextureFormatMapping(t *testing.T) {
	if f, ok := textureFormat(enums.FormatD24UnormS8Uint); !ok || f != wgpu.TextureFormatDepth24PlusStencil8 {
		t.Errorf("unexpected depth format %v %v", f, ok)
	}
	if _, ok := textureFormat(enums.FormatUnknown); ok {
		t.Error("unknown format must not map")
	}
}

func TestSamplerStagingData(t *testing.T) {
	s := samplerStagingData(descriptor.SamplerDesc{
		Filter:         enums.FilterAnisotropic | enums.FilterReductionComparison,
		AddressU:       enums.AddressWrap,
		AddressV:       enums.AddressBorder,
		AddressW:       enums.AddressMirror,
		ComparisonFunc: enums.ComparisonLessEqual,
		MaxAnisotropy:  64,
		MinLOD:         -1,
		MaxLOD:         1000,
	})
	if s.MaxAnisotropy != maxAnisotropy {
		t.Errorf("anisotropy not clamped: %d", s.MaxAnisotropy)
	}
	if s.Compare != wgpu.CompareFunctionLessEqual {
		t.Errorf("comparison filter must set compare: %v", s.Compare)
	}
	if s.AddressModeU != wgpu.AddressModeRepeat || s.AddressModeV != wgpu.AddressModeClampToEdge || s.AddressModeW != wgpu.AddressModeMirrorRepeat {
		t.Errorf("unexpected address modes %+v", s)
	}
	if s.LodMinClamp != 0 || s.LodMaxClamp != maxLOD {
		t.Errorf("unexpected lod clamps %v %v", s.LodMinClamp, s.LodMaxClamp)
	}
	if s.MinFilter != wgpu.FilterModeLinear || s.MipmapFilter != wgpu.MipmapFilterModeLinear {
		t.Errorf("anisotropic filter must be linear")
	}

	point := samplerStagingData(descriptor.SamplerDesc{Filter: enums.FilterMinMagMipPoint, MaxAnisotropy: 8, MaxLOD: 4})
	if point.MaxAnisotropy != 1 || point.MagFilter != wgpu.FilterModeNearest {
		t.Errorf("unexpected point sampler %+v", point)
	}
}
