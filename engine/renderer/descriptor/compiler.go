package descriptor

import (
	"fmt"
	"io/fs"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

// Compiler turns commented-JSON descriptor files into validated pipeline-state records.
// Every call reads the file afresh; a Compiler holds no per-file state and is safe for concurrent use.
type Compiler interface {
	// CompileResource compiles a buffer or texture declaration.
	//
	// Parameters:
	//   - path: the descriptor file
	//
	// Returns:
	//   - ResourceDesc: the compiled descriptor, zero on failure
	//   - error: an *Error describing the first problem found
	CompileResource(path string) (ResourceDesc, error)

	// CompileDepthStencil compiles a depth-stencil state file.
	CompileDepthStencil(path string) (DepthStencilDesc, error)

	// CompileBlend compiles a blend state file.
	CompileBlend(path string) (BlendDesc, error)

	// CompileRasterizer compiles a rasterizer state file.
	CompileRasterizer(path string) (RasterizerDesc, error)

	// CompileSampler compiles a sampler state file.
	CompileSampler(path string) (SamplerDesc, error)

	// Compile dispatches on kind and returns the matching descriptor value (not a pointer).
	//
	// Parameters:
	//   - kind: one of the Kind constants
	//   - path: the descriptor file
	//
	// Returns:
	//   - any: a ResourceDesc, DepthStencilDesc, BlendDesc, RasterizerDesc or SamplerDesc
	//   - error: an *Error, or a plain error for an unknown kind
	Compile(kind Kind, path string) (any, error)

	// Registry returns the enumeration registry used for token resolution.
	Registry() *enums.Registry
}

type compiler struct {
	registry *enums.Registry
	fsys     fs.FS
}

var _ Compiler = &compiler{}

// NewCompiler creates a new Compiler with the provided options.
// Without options it reads from the OS filesystem and builds a fresh registry.
//
// Parameters:
//   - options: variadic list of CompilerBuilderOption functions
//
// Returns:
//   - Compiler: the constructed compiler
func NewCompiler(options ...CompilerBuilderOption) Compiler {
	c := &compiler{}
	for _, opt := range options {
		opt(c)
	}
	if c.registry == nil {
		c.registry = enums.NewRegistry()
	}
	return c
}

func (c *compiler) Registry() *enums.Registry {
	return c.registry
}

func (c *compiler) load(path string) (object, error) {
	m, err := readDocument(c.fsys, path)
	if err != nil {
		return object{}, err
	}
	return object{m: m, registry: c.registry}, nil
}

func (c *compiler) Compile(kind Kind, path string) (any, error) {
	switch kind {
	case KindResource:
		return c.CompileResource(path)
	case KindDepthStencil:
		return c.CompileDepthStencil(path)
	case KindBlend:
		return c.CompileBlend(path)
	case KindRasterizer:
		return c.CompileRasterizer(path)
	case KindSampler:
		return c.CompileSampler(path)
	}
	return nil, fmt.Errorf("unknown descriptor kind %q", kind)
}

func (c *compiler) CompileResource(path string) (ResourceDesc, error) {
	root, err := c.load(path)
	if err != nil {
		return ResourceDesc{}, err
	}
	desc, err := parseResource(root)
	if err != nil {
		return ResourceDesc{}, schemaError(path, err)
	}
	return desc, nil
}

func (c *compiler) CompileDepthStencil(path string) (DepthStencilDesc, error) {
	root, err := c.load(path)
	if err != nil {
		return DepthStencilDesc{}, err
	}
	desc, err := parseDepthStencil(root)
	if err != nil {
		return DepthStencilDesc{}, schemaError(path, err)
	}
	return desc, nil
}

func (c *compiler) CompileBlend(path string) (BlendDesc, error) {
	root, err := c.load(path)
	if err != nil {
		return BlendDesc{}, err
	}
	desc, err := parseBlend(root)
	if err != nil {
		return BlendDesc{}, schemaError(path, err)
	}
	return desc, nil
}

func (c *compiler) CompileRasterizer(path string) (RasterizerDesc, error) {
	root, err := c.load(path)
	if err != nil {
		return RasterizerDesc{}, err
	}
	desc, err := parseRasterizer(root)
	if err != nil {
		return RasterizerDesc{}, schemaError(path, err)
	}
	return desc, nil
}

func (c *compiler) CompileSampler(path string) (SamplerDesc, error) {
	root, err := c.load(path)
	if err != nil {
		return SamplerDesc{}, err
	}
	desc, err := parseSampler(root)
	if err != nil {
		return SamplerDesc{}, schemaError(path, err)
	}
	return desc, nil
}

func parseResource(root object) (ResourceDesc, error) {
	var d ResourceDesc

	typ, err := root.token("type", enums.FamilyResourceType)
	if err != nil {
		return d, err
	}
	d.Type = enums.ResourceType(typ)

	access, err := root.token("access", enums.FamilyAccess)
	if err != nil {
		return d, err
	}
	d.Access = enums.AccessType(access)

	flags, err := root.array("bind_flag")
	if err != nil {
		return d, err
	}
	for i, f := range flags {
		field := fmt.Sprintf("bind_flag[%d]", i)
		s, ok := f.(string)
		if !ok {
			return d, &fieldError{field: field, err: errNotString}
		}
		v, ok := root.registry.Resolve(enums.FamilyBindFlag, s)
		if !ok {
			return d, &fieldError{field: field, err: fmt.Errorf("%w %q for %s", errUnknownEnum, s, enums.FamilyBindFlag)}
		}
		d.BindFlag |= enums.BindFlag(v)
	}

	d.Name = root.optionalStr("name")

	if d.Type == enums.ResourceBuffer {
		if d.ElementStride, err = root.uint32("element_stride"); err != nil {
			return d, err
		}
	} else {
		format, err := root.token("format", enums.FamilyFormat)
		if err != nil {
			return d, err
		}
		d.Format = enums.Format(format)
		if d.MipLevel, err = root.uint32("mip_level"); err != nil {
			return d, err
		}
	}

	size, err := root.array("size")
	if err != nil {
		return d, err
	}
	if len(size) == 0 {
		return d, root.fail("size", errEmptyArray)
	}
	for i := 0; i < len(size) && i < MaxSizeComponents; i++ {
		field := fmt.Sprintf("size[%d]", i)
		n, ok := size[i].(float64)
		if !ok {
			return d, &fieldError{field: field, err: errNotNumber}
		}
		v, err := toUint32(n, func(e error) error { return &fieldError{field: field, err: e} })
		if err != nil {
			return d, err
		}
		d.Size[i] = v
	}
	return d, nil
}

func parseDepthStencil(root object) (DepthStencilDesc, error) {
	var (
		d   DepthStencilDesc
		err error
	)

	if d.DepthEnable, err = root.boolean("depth_enable"); err != nil {
		return d, err
	}
	if d.DepthEnable {
		write, err := root.boolean("depth_write")
		if err != nil {
			return d, err
		}
		if write {
			d.DepthWriteMask = enums.DepthWriteAll
		}
		fn, err := root.token("depth_func", enums.FamilyComparisonFunc)
		if err != nil {
			return d, err
		}
		d.DepthFunc = enums.ComparisonFunc(fn)
	}

	if d.StencilEnable, err = root.boolean("stencil_enable"); err != nil {
		return d, err
	}
	if !d.StencilEnable {
		return d, nil
	}
	if d.StencilReadMask, err = root.mask("stencil_read_mask"); err != nil {
		return d, err
	}
	if d.StencilWriteMask, err = root.mask("stencil_write_mask"); err != nil {
		return d, err
	}
	if d.FrontFace, err = parseStencilFace(root, "front_face"); err != nil {
		return d, err
	}
	if d.BackFace, err = parseStencilFace(root, "back_face"); err != nil {
		return d, err
	}
	return d, nil
}

func parseStencilFace(root object, key string) (StencilOpDesc, error) {
	var d StencilOpDesc
	face, err := root.object(key)
	if err != nil {
		return d, err
	}
	ops := []struct {
		key string
		dst *enums.StencilOp
	}{
		{"stencil_fail_op", &d.StencilFailOp},
		{"stencil_depth_fail_op", &d.StencilDepthFailOp},
		{"stencil_pass_op", &d.StencilPassOp},
	}
	for _, op := range ops {
		v, err := face.token(op.key, enums.FamilyStencilOp)
		if err != nil {
			return StencilOpDesc{}, err
		}
		*op.dst = enums.StencilOp(v)
	}
	fn, err := face.token("stencil_func", enums.FamilyComparisonFunc)
	if err != nil {
		return StencilOpDesc{}, err
	}
	d.StencilFunc = enums.ComparisonFunc(fn)
	return d, nil
}

func parseBlend(root object) (BlendDesc, error) {
	var (
		d   BlendDesc
		err error
	)
	if d.AlphaToCoverageEnable, err = root.boolean("alpha_to_coverage"); err != nil {
		return d, err
	}
	if d.IndependentBlendEnable, err = root.boolean("independent_blend"); err != nil {
		return d, err
	}
	targets, err := root.array("render_target")
	if err != nil {
		return d, err
	}
	for i := 0; i < len(targets) && i < MaxRenderTargets; i++ {
		rt, err := root.element("render_target", i, targets[i])
		if err != nil {
			return d, err
		}
		if d.RenderTarget[i], err = parseRenderTargetBlend(rt); err != nil {
			return d, err
		}
		d.RenderTargetCount++
	}
	return d, nil
}

func parseRenderTargetBlend(rt object) (RenderTargetBlendDesc, error) {
	var (
		d   RenderTargetBlendDesc
		err error
	)
	if d.BlendEnable, err = rt.boolean("blend_enable"); err != nil {
		return d, err
	}
	factors := []struct {
		key string
		dst *enums.Blend
	}{
		{"src_blend", &d.SrcBlend},
		{"dest_blend", &d.DestBlend},
	}
	alphaFactors := []struct {
		key string
		dst *enums.Blend
	}{
		{"src_blend_alpha", &d.SrcBlendAlpha},
		{"dest_blend_alpha", &d.DestBlendAlpha},
	}

	for _, f := range factors {
		v, err := rt.token(f.key, enums.FamilyBlend)
		if err != nil {
			return RenderTargetBlendDesc{}, err
		}
		*f.dst = enums.Blend(v)
	}
	op, err := rt.token("blend_op", enums.FamilyBlendOp)
	if err != nil {
		return RenderTargetBlendDesc{}, err
	}
	d.BlendOp = enums.BlendOp(op)

	for _, f := range alphaFactors {
		v, err := rt.token(f.key, enums.FamilyBlend)
		if err != nil {
			return RenderTargetBlendDesc{}, err
		}
		*f.dst = enums.Blend(v)
	}
	op, err = rt.token("blend_op_alpha", enums.FamilyBlendOp)
	if err != nil {
		return RenderTargetBlendDesc{}, err
	}
	d.BlendOpAlpha = enums.BlendOp(op)

	if d.RenderTargetWriteMask, err = rt.mask("write_mask"); err != nil {
		return RenderTargetBlendDesc{}, err
	}
	return d, nil
}

func parseRasterizer(root object) (RasterizerDesc, error) {
	var d RasterizerDesc

	fill, err := root.token("fill_mode", enums.FamilyFillMode)
	if err != nil {
		return d, err
	}
	d.FillMode = enums.FillMode(fill)

	cull, err := root.token("cull_mode", enums.FamilyCullMode)
	if err != nil {
		return d, err
	}
	d.CullMode = enums.CullMode(cull)

	if d.FrontCounterClockwise, err = root.boolean("front_counter_clockwise"); err != nil {
		return d, err
	}
	if d.DepthBias, err = root.int32("depth_bias"); err != nil {
		return d, err
	}
	if d.DepthBiasClamp, err = root.float32("depth_bias_clamp"); err != nil {
		return d, err
	}
	if d.SlopeScaledDepthBias, err = root.float32("slope_scaled_depth_bias"); err != nil {
		return d, err
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"depth_clip_enable", &d.DepthClipEnable},
		{"scissor_enable", &d.ScissorEnable},
		{"multisample_enable", &d.MultisampleEnable},
		{"antialiased_line_enable", &d.AntialiasedLineEnable},
	}
	for _, f := range flags {
		if *f.dst, err = root.boolean(f.key); err != nil {
			return RasterizerDesc{}, err
		}
	}
	return d, nil
}

func parseSampler(root object) (SamplerDesc, error) {
	var d SamplerDesc

	filter, err := root.token("filter", enums.FamilyFilter)
	if err != nil {
		return d, err
	}
	d.Filter = enums.Filter(filter)

	addresses := []struct {
		key string
		dst *enums.TextureAddressMode
	}{
		{"address_u", &d.AddressU},
		{"address_v", &d.AddressV},
		{"address_w", &d.AddressW},
	}
	for _, a := range addresses {
		v, err := root.token(a.key, enums.FamilyAddressMode)
		if err != nil {
			return SamplerDesc{}, err
		}
		*a.dst = enums.TextureAddressMode(v)
	}

	fn, err := root.token("comparison_func", enums.FamilyComparisonFunc)
	if err != nil {
		return SamplerDesc{}, err
	}
	d.ComparisonFunc = enums.ComparisonFunc(fn)

	if d.MaxAnisotropy, err = root.int32("max_anisotropy"); err != nil {
		return SamplerDesc{}, err
	}

	border, err := root.array("border_color")
	if err != nil {
		return SamplerDesc{}, err
	}
	if len(border) != len(d.BorderColor) {
		return SamplerDesc{}, root.fail("border_color", fmt.Errorf("expected %d components, got %d", len(d.BorderColor), len(border)))
	}
	for i, c := range border {
		n, ok := c.(float64)
		if !ok {
			return SamplerDesc{}, &fieldError{field: fmt.Sprintf("border_color[%d]", i), err: errNotNumber}
		}
		d.BorderColor[i] = float32(n)
	}

	lods := []struct {
		key string
		dst *float32
	}{
		{"mip_lod_bias", &d.MipLODBias},
		{"min_lod", &d.MinLOD},
		{"max_lod", &d.MaxLOD},
	}
	for _, l := range lods {
		if *l.dst, err = root.float32(l.key); err != nil {
			return SamplerDesc{}, err
		}
	}
	return d, nil
}
