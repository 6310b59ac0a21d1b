package enums

import "strconv"

var resourceTypeTokens = map[string]uint32{
	"buffer":    uint32(ResourceBuffer),
	"texture1d": uint32(ResourceTexture1D),
	"texture2d": uint32(ResourceTexture2D),
	"texture3d": uint32(ResourceTexture3D),
}

var accessTokens = map[string]uint32{
	"default":   uint32(AccessDefault),
	"immutable": uint32(AccessImmutable),
	"dynamic":   uint32(AccessDynamic),
	"staging":   uint32(AccessStaging),
}

var bindFlagTokens = map[string]uint32{
	"vertex_buffer":    uint32(BindVertexBuffer),
	"index_buffer":     uint32(BindIndexBuffer),
	"constant_buffer":  uint32(BindConstantBuffer),
	"shader_resource":  uint32(BindShaderResource),
	"stream_out":       uint32(BindStreamOut),
	"render_target":    uint32(BindRenderTarget),
	"depth_stencil":    uint32(BindDepthStencil),
	"unordered_access": uint32(BindUnorderedAccess),
	"decoder":          uint32(BindDecoder),
	"encoder":          uint32(BindVideoEncoder),
}

var pipelineStageTokens = map[string]uint32{
	"input_assembler": uint32(StageInputAssembler),
	"vertex_shader":   uint32(StageVertexShader),
	"hull_shader":     uint32(StageHullShader),
	"domain_shader":   uint32(StageDomainShader),
	"geometry_shader": uint32(StageGeometryShader),
	"stream_out":      uint32(StageStreamOut),
	"rasterizer":      uint32(StageRasterizer),
	"pixel_shader":    uint32(StagePixelShader),
	"output_merge":    uint32(StageOutputMerge),
	"compute_shader":  uint32(StageComputeShader),
}

var comparisonTokens = map[string]uint32{
	"never":         uint32(ComparisonNever),
	"less":          uint32(ComparisonLess),
	"equal":         uint32(ComparisonEqual),
	"less_equal":    uint32(ComparisonLessEqual),
	"greater":       uint32(ComparisonGreater),
	"not_equal":     uint32(ComparisonNotEqual),
	"greater_equal": uint32(ComparisonGreaterEqual),
	"always":        uint32(ComparisonAlways),
}

var stencilOpTokens = map[string]uint32{
	"op_keep":     uint32(StencilOpKeep),
	"op_zero":     uint32(StencilOpZero),
	"op_replace":  uint32(StencilOpReplace),
	"op_incr_sat": uint32(StencilOpIncrSat),
	"op_decr_sat": uint32(StencilOpDecrSat),
	"op_invert":   uint32(StencilOpInvert),
	"op_incr":     uint32(StencilOpIncr),
	"op_decr":     uint32(StencilOpDecr),
}

var blendTokens = map[string]uint32{
	"zero":             uint32(BlendZero),
	"one":              uint32(BlendOne),
	"src_color":        uint32(BlendSrcColor),
	"inv_src_color":    uint32(BlendInvSrcColor),
	"src_alpha":        uint32(BlendSrcAlpha),
	"inv_src_alpha":    uint32(BlendInvSrcAlpha),
	"dest_alpha":       uint32(BlendDestAlpha),
	"inv_dest_alpha":   uint32(BlendInvDestAlpha),
	"dest_color":       uint32(BlendDestColor),
	"inv_dest_color":   uint32(BlendInvDestColor),
	"src_alpha_sat":    uint32(BlendSrcAlphaSat),
	"blend_factor":     uint32(BlendBlendFactor),
	"inv_blend_factor": uint32(BlendInvBlendFactor),
	"src1_color":       uint32(BlendSrc1Color),
	"inv_src1_color":   uint32(BlendInvSrc1Color),
	"src1_alpha":       uint32(BlendSrc1Alpha),
	"inv_src1_alpha":   uint32(BlendInvSrc1Alpha),
}

var blendOpTokens = map[string]uint32{
	"add":          uint32(BlendOpAdd),
	"subtract":     uint32(BlendOpSubtract),
	"rev_subtract": uint32(BlendOpRevSubtract),
	"min":          uint32(BlendOpMin),
	"max":          uint32(BlendOpMax),
}

var fillModeTokens = map[string]uint32{
	"wireframe": uint32(FillWireframe),
	"solid":     uint32(FillSolid),
}

var cullModeTokens = map[string]uint32{
	"none":  uint32(CullNone),
	"front": uint32(CullFront),
	"back":  uint32(CullBack),
}

var addressModeTokens = map[string]uint32{
	"wrap":        uint32(AddressWrap),
	"mirror":      uint32(AddressMirror),
	"clamp":       uint32(AddressClamp),
	"border":      uint32(AddressBorder),
	"mirror_once": uint32(AddressMirrorOnce),
}

// baseFilters are the standard filters; each also exists with a comparison_, minimum_ and maximum_ prefix.
var baseFilters = []struct {
	token string
	value Filter
}{
	{"min_mag_mip_point", FilterMinMagMipPoint},
	{"min_mag_point_mip_linear", FilterMinMagPointMipLinear},
	{"min_point_mag_linear_mip_point", FilterMinPointMagLinearMipPoint},
	{"min_point_mag_mip_linear", FilterMinPointMagMipLinear},
	{"min_linear_mag_mip_point", FilterMinLinearMagMipPoint},
	{"min_linear_mag_point_mip_linear", FilterMinLinearMagPointMipLinear},
	{"min_mag_linear_mip_point", FilterMinMagLinearMipPoint},
	{"min_mag_mip_linear", FilterMinMagMipLinear},
	{"anisotropic", FilterAnisotropic},
}

var filterTokens = func() map[string]uint32 {
	prefixes := []struct {
		prefix    string
		reduction Filter
	}{
		{"", 0},
		{"comparison_", FilterReductionComparison},
		{"minimum_", FilterReductionMinimum},
		{"maximum_", FilterReductionMaximum},
	}
	out := make(map[string]uint32, len(baseFilters)*len(prefixes))
	for _, p := range prefixes {
		for _, f := range baseFilters {
			out[p.prefix+f.token] = uint32(f.value | p.reduction)
		}
	}
	return out
}()

// maxControlPoints is the largest patch list size accepted by the tessellator.
const maxControlPoints = 32

var topologyTokens = func() map[string]uint32 {
	out := map[string]uint32{
		"undefined":         uint32(TopologyUndefined),
		"pointlist":         uint32(TopologyPointList),
		"linelist":          uint32(TopologyLineList),
		"linestrip":         uint32(TopologyLineStrip),
		"trianglelist":      uint32(TopologyTriangleList),
		"trianglestrip":     uint32(TopologyTriangleStrip),
		"linelist_adj":      uint32(TopologyLineListAdj),
		"linestrip_adj":     uint32(TopologyLineStripAdj),
		"trianglelist_adj":  uint32(TopologyTriangleListAdj),
		"trianglestrip_adj": uint32(TopologyTriangleStripAdj),
	}
	for n := 1; n <= maxControlPoints; n++ {
		out[strconv.Itoa(n)+"_control_point_patchlist"] = uint32(TopologyControlPointPatchList) + uint32(n-1)
	}
	return out
}()

var formatTokens = map[string]uint32{
	"unknown":                    0,
	"r32g32b32a32_typeless":      1,
	"r32g32b32a32_float":         2,
	"r32g32b32a32_uint":          3,
	"r32g32b32a32_sint":          4,
	"r32g32b32_typeless":         5,
	"r32g32b32_float":            6,
	"r32g32b32_uint":             7,
	"r32g32b32_sint":             8,
	"r16g16b16a16_typeless":      9,
	"r16g16b16a16_float":         10,
	"r16g16b16a16_unorm":         11,
	"r16g16b16a16_uint":          12,
	"r16g16b16a16_snorm":         13,
	"r16g16b16a16_sint":          14,
	"r32g32_typeless":            15,
	"r32g32_float":               16,
	"r32g32_uint":                17,
	"r32g32_sint":                18,
	"r32g8x24_typeless":          19,
	"d32_float_s8x24_uint":       20,
	"r32_float_x8x24_typeless":   21,
	"x32_typeless_g8x24_uint":    22,
	"r10g10b10a2_typeless":       23,
	"r10g10b10a2_unorm":          24,
	"r10g10b10a2_uint":           25,
	"r11g11b10_float":            26,
	"r8g8b8a8_typeless":          27,
	"r8g8b8a8_unorm":             28,
	"r8g8b8a8_unorm_srgb":        29,
	"r8g8b8a8_uint":              30,
	"r8g8b8a8_snorm":             31,
	"r8g8b8a8_sint":              32,
	"r16g16_typeless":            33,
	"r16g16_float":               34,
	"r16g16_unorm":               35,
	"r16g16_uint":                36,
	"r16g16_snorm":               37,
	"r16g16_sint":                38,
	"r32_typeless":               39,
	"d32_float":                  40,
	"r32_float":                  41,
	"r32_uint":                   42,
	"r32_sint":                   43,
	"r24g8_typeless":             44,
	"d24_unorm_s8_uint":          45,
	"r24_unorm_x8_typeless":      46,
	"x24_typeless_g8_uint":       47,
	"r8g8_typeless":              48,
	"r8g8_unorm":                 49,
	"r8g8_uint":                  50,
	"r8g8_snorm":                 51,
	"r8g8_sint":                  52,
	"r16_typeless":               53,
	"r16_float":                  54,
	"d16_unorm":                  55,
	"r16_unorm":                  56,
	"r16_uint":                   57,
	"r16_snorm":                  58,
	"r16_sint":                   59,
	"r8_typeless":                60,
	"r8_unorm":                   61,
	"r8_uint":                    62,
	"r8_snorm":                   63,
	"r8_sint":                    64,
	"a8_unorm":                   65,
	"r1_unorm":                   66,
	"r9g9b9e5_sharedexp":         67,
	"r8g8_b8g8_unorm":            68,
	"g8r8_g8b8_unorm":            69,
	"bc1_typeless":               70,
	"bc1_unorm":                  71,
	"bc1_unorm_srgb":             72,
	"bc2_typeless":               73,
	"bc2_unorm":                  74,
	"bc2_unorm_srgb":             75,
	"bc3_typeless":               76,
	"bc3_unorm":                  77,
	"bc3_unorm_srgb":             78,
	"bc4_typeless":               79,
	"bc4_unorm":                  80,
	"bc4_snorm":                  81,
	"bc5_typeless":               82,
	"bc5_unorm":                  83,
	"bc5_snorm":                  84,
	"b5g6r5_unorm":               85,
	"b5g5r5a1_unorm":             86,
	"b8g8r8a8_unorm":             87,
	"b8g8r8x8_unorm":             88,
	"r10g10b10_xr_bias_a2_unorm": 89,
	"b8g8r8a8_typeless":          90,
	"b8g8r8a8_unorm_srgb":        91,
	"b8g8r8x8_typeless":          92,
	"b8g8r8x8_unorm_srgb":        93,
	"bc6h_typeless":              94,
	"bc6h_uf16":                  95,
	"bc6h_sf16":                  96,
	"bc7_typeless":               97,
	"bc7_unorm":                  98,
	"bc7_unorm_srgb":             99,
	"ayuv":                       100,
	"y410":                       101,
	"y416":                       102,
	"nv12":                       103,
	"p010":                       104,
	"p016":                       105,
	"420_opaque":                 106,
	"yuy2":                       107,
	"y210":                       108,
	"y216":                       109,
	"nv11":                       110,
	"ai44":                       111,
	"ia44":                       112,
	"p8":                         113,
	"a8p8":                       114,
	"b4g4r4a4_unorm":             115,
	"p208":                       130,
	"v208":                       131,
	"v408":                       132,
	"force_uint":                 0xffffffff,
}

var texelSizesByToken = map[uint32][]string{
	16: {"r32g32b32a32_typeless", "r32g32b32a32_float", "r32g32b32a32_uint", "r32g32b32a32_sint"},
	12: {"r32g32b32_typeless", "r32g32b32_float", "r32g32b32_uint", "r32g32b32_sint"},
	8: {"r16g16b16a16_typeless", "r16g16b16a16_float", "r16g16b16a16_unorm", "r16g16b16a16_uint", "r16g16b16a16_snorm", "r16g16b16a16_sint", "r32g32_typeless", "r32g32_float", "r32g32_uint", "r32g32_sint", "r32g8x24_typeless", "d32_float_s8x24_uint", "r32_float_x8x24_typeless", "x32_typeless_g8x24_uint"},
	4: {"r10g10b10a2_typeless", "r10g10b10a2_unorm", "r10g10b10a2_uint", "r11g11b10_float", "r8g8b8a8_typeless", "r8g8b8a8_unorm", "r8g8b8a8_unorm_srgb", "r8g8b8a8_uint", "r8g8b8a8_snorm", "r8g8b8a8_sint", "r16g16_typeless", "r16g16_float", "r16g16_unorm", "r16g16_uint", "r16g16_snorm", "r16g16_sint", "r32_typeless", "d32_float", "r32_float", "r32_uint", "r32_sint", "r24g8_typeless", "d24_unorm_s8_uint", "r24_unorm_x8_typeless", "x24_typeless_g8_uint", "r9g9b9e5_sharedexp", "b8g8r8a8_unorm", "b8g8r8x8_unorm", "r10g10b10_xr_bias_a2_unorm", "b8g8r8a8_typeless", "b8g8r8a8_unorm_srgb", "b8g8r8x8_typeless", "b8g8r8x8_unorm_srgb"},
	2: {"r8g8_typeless", "r8g8_unorm", "r8g8_uint", "r8g8_snorm", "r8g8_sint", "r16_typeless", "r16_float", "d16_unorm", "r16_unorm", "r16_uint", "r16_snorm", "r16_sint", "b5g6r5_unorm", "b5g5r5a1_unorm", "b4g4r4a4_unorm"},
	1: {"r8_typeless", "r8_unorm", "r8_uint", "r8_snorm", "r8_sint", "a8_unorm"},
}

var texelSizes = func() map[Format]uint32 {
	out := make(map[Format]uint32)
	for size, names := range texelSizesByToken {
		for _, name := range names {
			out[Format(formatTokens[name])] = size
		}
	}
	return out
}()

// familyTokens is the source every Registry is built from. It is never mutated after package init.
var familyTokens = map[Family]map[string]uint32{
	FamilyResourceType:   resourceTypeTokens,
	FamilyAccess:         accessTokens,
	FamilyBindFlag:       bindFlagTokens,
	FamilyPipelineStage:  pipelineStageTokens,
	FamilyFormat:         formatTokens,
	FamilyComparisonFunc: comparisonTokens,
	FamilyStencilOp:      stencilOpTokens,
	FamilyBlend:          blendTokens,
	FamilyBlendOp:        blendOpTokens,
	FamilyFillMode:       fillModeTokens,
	FamilyCullMode:       cullModeTokens,
	FamilyFilter:         filterTokens,
	FamilyAddressMode:    addressModeTokens,
	FamilyTopology:       topologyTokens,
}

var tokenNames = func() map[Family]map[uint32]string {
	out := make(map[Family]map[uint32]string, len(familyTokens))
	for f, tokens := range familyTokens {
		out[f] = invert(tokens)
	}
	return out
}()
