package descriptor

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

func newTestCompiler(files map[string]string) Compiler {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return NewCompiler(WithFS(fsys))
}

func requireKind(t *testing.T, err error, kind ErrorKind, field string) {
	t.Helper()
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if de.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, de.Kind, err)
	}
	if field != "" && de.Field != field {
		t.Fatalf("expected field %q, got %q (%v)", field, de.Field, err)
	}
}

func TestCompileResourceBuffer(t *testing.T) {
	c := newTestCompiler(map[string]string{
		"cb.json": `{"type":"buffer","access":"dynamic","bind_flag":["constant_buffer"],"size":[256],"element_stride":256}`,
	})

	got, err := c.CompileResource("cb.json")
	if err != nil {
		t.Fatalf("CompileResource failed: %v", err)
	}
	want := ResourceDesc{
		Type:          enums.ResourceBuffer,
		Access:        enums.AccessDynamic,
		BindFlag:      enums.BindConstantBuffer,
		ElementStride: 256,
		Size:          [3]uint32{256, 0, 0},
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCompileResourceTextureWithComments(t *testing.T) {
	c := newTestCompiler(map[string]string{
		"tex.json": `{
			// albedo target
			"type": "texture2d",
			"access": "default",
			"name": "albedo",
			"bind_flag": ["render_target", "shader_resource"], /* both */
			"format": "r8g8b8a8_unorm",
			"mip_level": 1,
			"size": [1280, 720, 1, 9, 9],
		}`,
	})

	got, err := c.CompileResource("tex.json")
	if err != nil {
		t.Fatalf("CompileResource failed: %v", err)
	}
	if got.Type != enums.ResourceTexture2D || got.Format != enums.FormatR8G8B8A8Unorm || got.MipLevel != 1 {
		t.Errorf("unexpected texture fields: %+v", got)
	}
	if got.Name != "albedo" {
		t.Errorf("expected name albedo, got %q", got.Name)
	}
	if got.BindFlag != enums.BindRenderTarget|enums.BindShaderResource {
		t.Errorf("unexpected bind flag %s", got.BindFlag)
	}
	if got.Size != [3]uint32{1280, 720, 1} {
		t.Errorf("size not truncated to 3 components: %v", got.Size)
	}
	if got.ElementStride != 0 {
		t.Errorf("texture must not carry a stride, got %d", got.ElementStride)
	}
}

func TestCompileResourceSchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing type", `{"access":"default","bind_flag":[],"size":[1],"element_stride":4}`, "type"},
		{"unknown type", `{"type":"texture4d","access":"default","bind_flag":[],"size":[1]}`, "type"},
		{"bad bind flag", `{"type":"buffer","access":"default","bind_flag":["vertex_buffer","nope"],"size":[1],"element_stride":4}`, "bind_flag[1]"},
		{"bind flag not array", `{"type":"buffer","access":"default","bind_flag":"vertex_buffer","size":[1],"element_stride":4}`, "bind_flag"},
		{"buffer without stride", `{"type":"buffer","access":"default","bind_flag":[],"size":[1]}`, "element_stride"},
		{"texture without format", `{"type":"texture1d","access":"default","bind_flag":[],"size":[1],"mip_level":1}`, "format"},
		{"texture without mip", `{"type":"texture1d","access":"default","bind_flag":[],"size":[1],"format":"r32_float"}`, "mip_level"},
		{"empty size", `{"type":"buffer","access":"default","bind_flag":[],"size":[],"element_stride":4}`, "size"},
		{"negative size", `{"type":"buffer","access":"default","bind_flag":[],"size":[-4],"element_stride":4}`, "size[0]"},
		{"string size", `{"type":"buffer","access":"default","bind_flag":[],"size":["4"],"element_stride":4}`, "size[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(map[string]string{"r.json": tt.body})
			got, err := c.CompileResource("r.json")
			requireKind(t, err, ErrorKindSchema, tt.field)
			if got != (ResourceDesc{}) {
				t.Errorf("expected zero descriptor on failure, got %+v", got)
			}
		})
	}
}

func TestCompileResourceTruncatesNumbers(t *testing.T) {
	c := newTestCompiler(map[string]string{
		"r.json": `{"type":"buffer","access":"staging","bind_flag":[],"size":[10.9],"element_stride":3.7}`,
	})
	got, err := c.CompileResource("r.json")
	if err != nil {
		t.Fatal(err)
	}
	if got.Size[0] != 10 || got.ElementStride != 3 {
		t.Errorf("expected truncation toward zero, got size %d stride %d", got.Size[0], got.ElementStride)
	}
}

func TestCompileDepthStencilConditionalFields(t *testing.T) {
	c := newTestCompiler(map[string]string{
		"off.json":     `{"depth_enable": false, "depth_func": "sometimes", "stencil_enable": false}`,
		"missing.json": `{"depth_enable": false, "stencil_enable": false}`,
		"bad.json":     `{"depth_enable": true, "depth_write": true, "depth_func": "sometimes", "stencil_enable": false}`,
		"on.json":      `{"depth_enable": true, "depth_write": true, "depth_func": "less_equal", "stencil_enable": false}`,
	})

	for _, name := range []string{"off.json", "missing.json"} {
		got, err := c.CompileDepthStencil(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != (DepthStencilDesc{}) {
			t.Errorf("%s: disabled blocks must stay zero, got %+v", name, got)
		}
	}

	_, err := c.CompileDepthStencil("bad.json")
	requireKind(t, err, ErrorKindSchema, "depth_func")

	got, err := c.CompileDepthStencil("on.json")
	if err != nil {
		t.Fatal(err)
	}
	if !got.DepthEnable || got.DepthWriteMask != enums.DepthWriteAll || got.DepthFunc != enums.ComparisonLessEqual {
		t.Errorf("unexpected depth fields: %+v", got)
	}
}

func stencilBody(readMask string) string {
	return `{
		"depth_enable": false,
		"stencil_enable": true,
		"stencil_read_mask": ` + readMask + `,
		"stencil_write_mask": 15,
		"front_face": {"stencil_fail_op":"op_keep","stencil_depth_fail_op":"op_incr","stencil_pass_op":"op_replace","stencil_func":"always"},
		"back_face": {"stencil_fail_op":"op_zero","stencil_depth_fail_op":"op_decr","stencil_pass_op":"op_invert","stencil_func":"never"}
	}`
}

func TestCompileDepthStencilMaskRange(t *testing.T) {
	c := newTestCompiler(map[string]string{
		"255.json": stencilBody("255"),
		"256.json": stencilBody("256"),
		"neg.json": stencilBody("-1"),
	})

	got, err := c.CompileDepthStencil("255.json")
	if err != nil {
		t.Fatalf("255 must be accepted: %v", err)
	}
	if got.StencilReadMask != 255 || got.StencilWriteMask != 15 {
		t.Errorf("unexpected masks %d %d", got.StencilReadMask, got.StencilWriteMask)
	}
	if got.FrontFace.StencilPassOp != enums.StencilOpReplace || got.BackFace.StencilFunc != enums.ComparisonNever {
		t.Errorf("unexpected faces %+v %+v", got.FrontFace, got.BackFace)
	}

	for _, name := range []string{"256.json", "neg.json"} {
		_, err := c.CompileDepthStencil(name)
		requireKind(t, err, ErrorKindSchema, "stencil_read_mask")
	}
}

func TestCompileDepthStencilNestedField(t *testing.T) {
	body := `{
		"depth_enable": false,
		"stencil_enable": true,
		"stencil_read_mask": 1,
		"stencil_write_mask": 1,
		"front_face": {"stencil_fail_op":"op_keep","stencil_depth_fail_op":"op_keep","stencil_pass_op":"op_keep","stencil_func":"whenever"},
		"back_face": {}
	}`
	c := newTestCompiler(map[string]string{"ds.json": body})
	_, err := c.CompileDepthStencil("ds.json")
	requireKind(t, err, ErrorKindSchema, "front_face.stencil_func")
}

func blendTarget(mask string) string {
	return `{"blend_enable":true,"src_blend":"src_alpha","dest_blend":"inv_src_alpha","blend_op":"add",` +
		`"src_blend_alpha":"one","dest_blend_alpha":"zero","blend_op_alpha":"add","write_mask":` + mask + `}`
}

func TestCompileBlend(t *testing.T) {
	targets := ""
	for i := 0; i < 10; i++ {
		if i > 0 {
			targets += ","
		}
		targets += blendTarget("15")
	}
	c := newTestCompiler(map[string]string{
		"ten.json": `{"alpha_to_coverage":false,"independent_blend":true,"render_target":[` + targets + `]}`,
		"bad.json": `{"alpha_to_coverage":false,"independent_blend":true,"render_target":[` +
			blendTarget("15") + "," + blendTarget("15") + "," + blendTarget("300") + `]}`,
	})

	got, err := c.CompileBlend("ten.json")
	if err != nil {
		t.Fatal(err)
	}
	if got.RenderTargetCount != MaxRenderTargets {
		t.Errorf("expected %d targets, got %d", MaxRenderTargets, got.RenderTargetCount)
	}
	rt := got.RenderTarget[7]
	if !rt.BlendEnable || rt.SrcBlend != enums.BlendSrcAlpha || rt.DestBlend != enums.BlendInvSrcAlpha ||
		rt.BlendOp != enums.BlendOpAdd || rt.RenderTargetWriteMask != 15 {
		t.Errorf("unexpected target %+v", rt)
	}

	_, err = c.CompileBlend("bad.json")
	requireKind(t, err, ErrorKindSchema, "render_target[2].write_mask")
}

func TestCompileRasterizer(t *testing.T) {
	body := `{
		"fill_mode": "solid", "cull_mode": "back", "front_counter_clockwise": false,
		"depth_bias": -2.9, "depth_bias_clamp": 0.5, "slope_scaled_depth_bias": 1.25,
		"depth_clip_enable": true, "scissor_enable": false,
		"multisample_enable": true, "antialiased_line_enable": false
	}`
	c := newTestCompiler(map[string]string{
		"r.json":   body,
		"bad.json": `{"fill_mode": "solid", "cull_mode": "sideways"}`,
	})

	got, err := c.CompileRasterizer("r.json")
	if err != nil {
		t.Fatal(err)
	}
	want := RasterizerDesc{
		FillMode:             enums.FillSolid,
		CullMode:             enums.CullBack,
		DepthBias:            -2,
		DepthBiasClamp:       0.5,
		SlopeScaledDepthBias: 1.25,
		DepthClipEnable:      true,
		MultisampleEnable:    true,
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	_, err = c.CompileRasterizer("bad.json")
	requireKind(t, err, ErrorKindSchema, "cull_mode")
}

func samplerBody(border string) string {
	return `{
		"filter": "min_mag_mip_linear",
		"address_u": "wrap", "address_v": "clamp", "address_w": "border",
		"comparison_func": "never", "max_anisotropy": 16,
		"border_color": ` + border + `,
		"mip_lod_bias": 0, "min_lod": 0, "max_lod": 1000
	}`
}

func TestCompileSampler(t *testing.T) {
	c := newTestCompiler(map[string]string{
		"s.json":     samplerBody("[0, 0.5, 1, 1]"),
		"three.json": samplerBody("[0, 0, 0]"),
		"five.json":  samplerBody("[0, 0, 0, 0, 0]"),
	})

	got, err := c.CompileSampler("s.json")
	if err != nil {
		t.Fatal(err)
	}
	if got.AddressU != enums.AddressWrap || got.AddressV != enums.AddressClamp || got.AddressW != enums.AddressBorder {
		t.Errorf("unexpected address modes %+v", got)
	}
	if got.BorderColor != [4]float32{0, 0.5, 1, 1} || got.MaxAnisotropy != 16 || got.MaxLOD != 1000 {
		t.Errorf("unexpected sampler %+v", got)
	}

	for _, name := range []string{"three.json", "five.json"} {
		_, err := c.CompileSampler(name)
		requireKind(t, err, ErrorKindSchema, "border_color")
	}
}

func TestCompileIOAndFormatErrors(t *testing.T) {
	c := newTestCompiler(map[string]string{
		"broken.json": `{"type": "buffer",,}`,
		"array.json":  `[1, 2, 3]`,
	})

	_, err := c.CompileResource("absent.json")
	requireKind(t, err, ErrorKindIO, "")

	_, err = c.CompileSampler("broken.json")
	requireKind(t, err, ErrorKindFormat, "")

	_, err = c.CompileBlend("array.json")
	requireKind(t, err, ErrorKindFormat, "")
}

func TestCompileFromOSFilesystem(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ds.json")
	if err := os.WriteFile(p, []byte(`{"depth_enable": false, "stencil_enable": false}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCompiler()
	if _, err := c.CompileDepthStencil(p); err != nil {
		t.Fatalf("CompileDepthStencil failed: %v", err)
	}

	_, err := c.CompileDepthStencil(filepath.Join(dir, "missing.json"))
	var de *Error
	if !errors.As(err, &de) || de.File != filepath.Join(dir, "missing.json") {
		t.Fatalf("expected IO error naming the file, got %v", err)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	c := newTestCompiler(map[string]string{"s.json": samplerBody("[1, 1, 1, 1]")})

	first, err := c.Compile(KindSampler, "s.json")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compile(KindSampler, "s.json")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("compiles differ: %+v vs %+v", first, second)
	}
	if _, ok := first.(SamplerDesc); !ok {
		t.Errorf("Compile returned %T, want SamplerDesc", first)
	}
	if _, err := c.Compile(Kind("shader"), "s.json"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: ErrorKindSchema, File: "a.json", Field: "size"}
	if got := err.Error(); got != `cannot find or recognize "size" in file: a.json` {
		t.Errorf("unexpected message %q", got)
	}
}
