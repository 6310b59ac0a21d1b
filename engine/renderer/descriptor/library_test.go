package descriptor

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

func libraryFS() fstest.MapFS {
	return fstest.MapFS{
		"pipeline/manifest.json": {Data: []byte(`{
			// descriptors shipped with the default pipeline
			"descriptors": [
				{"name": "frame_cb", "kind": "resource", "path": "resource/frame.json"},
				{"name": "opaque", "kind": "blend", "path": "state/opaque.json"},
				{"name": "depth_less", "kind": "depth_stencil", "path": "state/depth.json"},
				{"name": "solid", "kind": "rasterizer", "path": "state/solid.json"},
				{"name": "linear", "kind": "sampler", "path": "state/linear.json"},
			],
		}`)},
		"pipeline/resource/frame.json": {Data: []byte(`{"type":"buffer","access":"dynamic","bind_flag":["constant_buffer"],"size":[256],"element_stride":256}`)},
		"pipeline/state/opaque.json":   {Data: []byte(`{"alpha_to_coverage":false,"independent_blend":false,"render_target":[` + blendTarget("15") + `]}`)},
		"pipeline/state/depth.json":    {Data: []byte(`{"depth_enable":true,"depth_write":true,"depth_func":"less","stencil_enable":false}`)},
		"pipeline/state/solid.json": {Data: []byte(`{"fill_mode":"solid","cull_mode":"back","front_counter_clockwise":false,
			"depth_bias":0,"depth_bias_clamp":0,"slope_scaled_depth_bias":0,"depth_clip_enable":true,
			"scissor_enable":false,"multisample_enable":false,"antialiased_line_enable":false}`)},
		"pipeline/state/linear.json": {Data: []byte(samplerBody("[0, 0, 0, 0]"))},
	}
}

func TestLoadLibrary(t *testing.T) {
	lib, err := LoadLibrary(context.Background(), "pipeline/manifest.json", WithLibraryFS(libraryFS()), WithWorkers(3))
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}

	want := []string{"frame_cb", "opaque", "depth_less", "solid", "linear"}
	if got := lib.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	cb, ok := lib.Resource("frame_cb")
	if !ok || cb.BindFlag != enums.BindConstantBuffer || cb.Size[0] != 256 {
		t.Errorf("unexpected frame_cb %+v (found %v)", cb, ok)
	}
	if ds, ok := lib.DepthStencil("depth_less"); !ok || ds.DepthFunc != enums.ComparisonLess {
		t.Errorf("unexpected depth_less %+v", ds)
	}
	if b, ok := lib.Blend("opaque"); !ok || b.RenderTargetCount != 1 {
		t.Errorf("unexpected opaque %+v", b)
	}
	if r, ok := lib.Rasterizer("solid"); !ok || r.CullMode != enums.CullBack {
		t.Errorf("unexpected solid %+v", r)
	}
	if _, ok := lib.Sampler("linear"); !ok {
		t.Error("linear sampler missing")
	}
	if _, ok := lib.Sampler("frame_cb"); ok {
		t.Error("lookups must be scoped by kind")
	}
}

func TestLoadLibraryIsDeterministic(t *testing.T) {
	fsys := libraryFS()
	first, err := LoadLibrary(context.Background(), "pipeline/manifest.json", WithLibraryFS(fsys))
	if err != nil {
		t.Fatal(err)
	}
	second, err := LoadLibrary(context.Background(), "pipeline/manifest.json", WithLibraryFS(fsys), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("libraries compiled from the same manifest differ")
	}
}

func TestLoadLibraryJoinsEntryErrors(t *testing.T) {
	fsys := libraryFS()
	fsys["pipeline/state/solid.json"] = &fstest.MapFile{Data: []byte(`{"fill_mode":"dotted"}`)}
	delete(fsys, "pipeline/state/linear.json")

	lib, err := LoadLibrary(context.Background(), "pipeline/manifest.json", WithLibraryFS(fsys))
	if lib != nil {
		t.Error("expected nil library on failure")
	}
	if err == nil {
		t.Fatal("expected error")
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected joined error, got %T", err)
	}
	errs := joined.Unwrap()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), err)
	}
	requireKind(t, errs[0], ErrorKindSchema, "fill_mode")
	requireKind(t, errs[1], ErrorKindIO, "")
}

func TestLoadLibraryManifestErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		kind     ErrorKind
		field    string
	}{
		{"not json", `{"descriptors": [`, ErrorKindFormat, ""},
		{"no list", `{}`, ErrorKindSchema, "descriptors"},
		{"unknown kind", `{"descriptors": [{"name":"a","kind":"shader","path":"a.json"}]}`, ErrorKindSchema, "descriptors[0].kind"},
		{"duplicate", `{"descriptors": [{"name":"a","kind":"blend","path":"a.json"},{"name":"a","kind":"blend","path":"b.json"}]}`, ErrorKindSchema, "descriptors[1].name"},
		{"missing path", `{"descriptors": [{"name":"a","kind":"blend"}]}`, ErrorKindSchema, "descriptors[0].path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"m.json": {Data: []byte(tt.manifest)}}
			_, err := LoadLibrary(context.Background(), "m.json", WithLibraryFS(fsys))
			requireKind(t, err, tt.kind, tt.field)
		})
	}
}

func TestLoadLibraryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadLibrary(ctx, "pipeline/manifest.json", WithLibraryFS(libraryFS()))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
