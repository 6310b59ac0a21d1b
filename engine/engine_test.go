package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/engine/config"
	"github.com/handsonicv4/Chocolate-3D/engine/light"
	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/device"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, *device.Headless, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	dev := device.NewHeadless()
	e := NewEngine(dev, append([]EngineBuilderOption{WithLogger(logger)}, options...)...)
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(e.Shutdown)
	return e, dev, hook
}

func triangleModel(animated bool) *model.Model {
	mesh := model.Mesh{
		Name:      "tri",
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		TexCoords: []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Indices:   []uint32{0, 1, 2},
	}
	if animated {
		mesh.BoneIndices = [][4]uint32{{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}}
		mesh.BoneWeights = [][4]float32{{0.5, 0.5, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}
		mesh.Bones = []model.Bone{{Name: "root", Offset: mgl32.Ident4()}, {Name: "tip", Offset: mgl32.Translate3D(0, 1, 0)}}
	}
	diffuse := &model.Texture{Name: "checker", Width: 2, Height: 2, Pixels: make([]byte, 16)}
	return model.NewModel(
		model.WithName("tri"),
		model.WithMeshes(mesh),
		model.WithMaterials(model.Material{Name: "mat", Diffuse: diffuse}),
		model.WithAnimated(animated),
	)
}

func TestInitBindsSharedBuffers(t *testing.T) {
	e, dev, _ := newTestEngine(t)

	if got := dev.Live(); got != 6 {
		t.Errorf("live resources after init = %d, want 6", got)
	}
	if ds := dev.Bound(enums.StageOutputMerge, enums.BindDepthStencil, 0); ds == nil || ds.Texture() == nil || ds.Texture().Format != enums.FormatD24UnormS8Uint {
		t.Errorf("depth stencil not bound in d24_unorm_s8_uint: %+v", ds)
	}
	for _, stage := range []enums.PipelineStage{enums.StageVertexShader, enums.StagePixelShader, enums.StageComputeShader} {
		frame := dev.Bound(stage, enums.BindConstantBuffer, SlotCBufferFrame)
		obj := dev.Bound(stage, enums.BindConstantBuffer, SlotCBufferObject)
		if frame == nil || obj == nil || frame == obj {
			t.Errorf("%s: frame and object constant buffers not bound", stage)
		}
	}
	cfg := e.Config()
	if b := dev.Bound(enums.StageVertexShader, enums.BindShaderResource, SlotTextureInstance); b == nil || b.Size() != uint64(cfg.MaxInstances*model.InstanceDataSize) {
		t.Errorf("instance buffer not bound at full size: %+v", b)
	}
	if b := dev.Bound(enums.StageVertexShader, enums.BindShaderResource, SlotTextureAnimMatrix); b == nil || b.Size() != uint64(cfg.NumBonePerBatch*64) {
		t.Errorf("anim matrix buffer not bound at full size: %+v", b)
	}
	if b := dev.Bound(enums.StagePixelShader, enums.BindShaderResource, SlotTextureLight); b == nil || b.Size() != uint64(cfg.MaxLightNumber*light.GPULightSize) {
		t.Errorf("light buffer not bound at full size: %+v", b)
	}
}

func TestInitFailureNamesBuffer(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dev := device.NewHeadless()
	dev.FailNext(device.OpCreateBuffer)

	err := NewEngine(dev, WithLogger(logger)).Init()
	if !errors.Is(err, ErrResourceCreation) {
		t.Fatalf("Init error = %v, want ErrResourceCreation", err)
	}
	if !strings.Contains(err.Error(), "frame buffer") {
		t.Errorf("error %q does not name the frame buffer", err)
	}
	if dev.Live() != 0 {
		t.Errorf("%d resources leaked after failed init", dev.Live())
	}
}

func TestUpdateInstanceBufferSkipsInvisible(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	m := triangleModel(true)
	for range 3 {
		m.NewInstance()
	}
	hidden, _ := m.Instance(1)
	hidden.Visible = false

	dev.ResetJournal()
	packed, matrices := e.UpdateInstanceBuffer(m, 0)

	if len(packed) != 2 {
		t.Fatalf("packed %d instances, want 2", len(packed))
	}
	for i, d := range packed {
		if want := uint32(i * 2); d.BindMatrixOffset != want {
			t.Errorf("instance %d bind matrix offset = %d, want %d", i, d.BindMatrixOffset, want)
		}
	}
	if matrices != 4 {
		t.Errorf("uploaded %d skinning matrices, want 4", matrices)
	}

	cam := e.Camera()
	want := cam.Projection().Mul4(cam.View())
	if !packed[0].WVP.ApproxEqual(want) {
		t.Errorf("WVP of identity instance = %v, want %v", packed[0].WVP, want)
	}

	updates := dev.CommandsOf(device.OpUpdate)
	if len(updates) != 2 || updates[0].Size != 2*model.InstanceDataSize || updates[1].Size != 4*64 {
		t.Errorf("unexpected uploads %+v", updates)
	}
}

func TestUpdateInstanceBufferCapsInstances(t *testing.T) {
	cfg := config.Default()
	cfg.MaxInstances = 2
	e, _, hook := newTestEngine(t, WithConfig(cfg))

	m := triangleModel(false)
	for range 3 {
		m.NewInstance()
	}
	packed, matrices := e.UpdateInstanceBuffer(m, 0)
	if len(packed) != 2 || matrices != 0 {
		t.Errorf("got %d instances and %d matrices, want 2 and 0", len(packed), matrices)
	}

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.WarnLevel && entry.Message == "instances over capacity" {
			warned = true
		}
	}
	if !warned {
		t.Error("dropped instances were not logged")
	}
}

func TestUpdateInstanceBufferNoVisibleInstances(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	m := triangleModel(true)
	_, inst := m.NewInstance()
	inst.Visible = false
	if _, err := e.LoadModel(m); err != nil {
		t.Fatalf("load: %v", err)
	}

	dev.ResetJournal()
	packed, matrices := e.UpdateInstanceBuffer(m, 0)
	if len(packed) != 0 || matrices != 0 {
		t.Errorf("got %d instances and %d matrices, want none", len(packed), matrices)
	}
	if updates := dev.CommandsOf(device.OpUpdate); len(updates) != 0 {
		t.Errorf("empty batches must not upload, got %+v", updates)
	}

	stats := e.Frame()
	if stats.Draws != 1 || stats.Instances != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if len(dev.CommandsOf(device.OpPresent)) != 1 {
		t.Error("frame did not present")
	}
}

func TestUpdateInstanceBufferCapsSkinningMatrices(t *testing.T) {
	cfg := config.Default()
	cfg.NumBonePerBatch = 3
	e, _, hook := newTestEngine(t, WithConfig(cfg))

	m := triangleModel(true)
	for range 3 {
		m.NewInstance()
	}
	packed, matrices := e.UpdateInstanceBuffer(m, 0)
	if len(packed) != 1 || matrices != 2 {
		t.Fatalf("got %d instances and %d matrices, want 1 and 2", len(packed), matrices)
	}
	for _, d := range packed {
		if end := int(d.BindMatrixOffset) + 2; end > matrices {
			t.Errorf("bind matrix range ends at %d past the %d uploaded matrices", end, matrices)
		}
	}

	warned := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.WarnLevel && entry.Message == "skinning matrices over capacity" {
			warned = entry.Data["dropped"] == 2
		}
	}
	if !warned {
		t.Error("instances dropped for skinning capacity were not logged")
	}
}

func TestFrameTilingGate(t *testing.T) {
	e, dev, _ := newTestEngine(t)

	first := e.Frame()
	if !first.Tiled {
		t.Fatal("first frame must tile")
	}
	if first.Grid != (light.Grid{TilesX: 80, TilesY: 45, BatchesX: 5, BatchesY: 3}) {
		t.Errorf("unexpected grid %+v", first.Grid)
	}
	if e.Frame().Tiled {
		t.Error("second frame re-tiled with unchanged inputs")
	}

	e.SetResolution(1920, 1080)
	third := e.Frame()
	if !third.Tiled || third.Grid.BatchesX != 8 || third.Grid.BatchesY != 5 {
		t.Errorf("resolution change did not re-tile: %+v", third)
	}

	e.Camera().SetFov(mgl32.DegToRad(60))
	if !e.Frame().Tiled {
		t.Error("projection change did not re-tile")
	}

	dispatches := dev.CommandsOf(device.OpDispatch)
	if len(dispatches) != 3 || dispatches[0].Args != [3]uint32{5, 3, 1} {
		t.Errorf("unexpected dispatches %+v", dispatches)
	}
}

func TestFrameCommandOrder(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	m := triangleModel(false)
	m.NewInstance()
	if _, err := e.LoadModel(m); err != nil {
		t.Fatalf("load: %v", err)
	}

	dev.ResetJournal()
	stats := e.Frame()

	var ops []device.Op
	for _, c := range dev.Commands() {
		if c.Op != device.OpBind {
			ops = append(ops, c.Op)
		}
	}
	want := []device.Op{
		device.OpUpdate, // frame constants
		device.OpDispatch,
		device.OpClearRTV,
		device.OpClearDSV,
		device.OpUpdate, // object constants
		device.OpUpdate, // instances
		device.OpDraw,
		device.OpPresent,
	}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", ops, want)
		}
	}

	rtv := dev.CommandsOf(device.OpClearRTV)[0]
	if rtv.Color != [4]float32{0, 0, 0.5, 0} {
		t.Errorf("clear color = %v", rtv.Color)
	}
	dsv := dev.CommandsOf(device.OpClearDSV)[0]
	if dsv.ClearFlags != device.ClearDepth || dsv.Depth != 1 || dsv.Stencil != 0 {
		t.Errorf("unexpected depth clear %+v", dsv)
	}
	draw := dev.CommandsOf(device.OpDraw)[0]
	if draw.Args[0] != 3 || draw.Args[1] != 1 {
		t.Errorf("draw args = %v, want 3 indices and 1 instance", draw.Args)
	}
	if len(draw.Missing) != 0 {
		t.Errorf("draw issued without %v", draw.Missing)
	}
	if d := dev.CommandsOf(device.OpDispatch)[0]; len(d.Missing) != 0 {
		t.Errorf("dispatch issued without %v", d.Missing)
	}
	if stats.Draws != 1 || stats.Instances != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if dev.Bound(enums.StagePixelShader, enums.BindShaderResource, SlotTextureDiffuse) == nil {
		t.Error("diffuse map not bound for the draw")
	}
	if dev.Bound(enums.StageInputAssembler, enums.BindVertexBuffer, SlotInputTangent) != nil {
		t.Error("absent tangent stream left bound")
	}
}

func TestFrameUploadsLights(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.UpdateLight([]light.Light{
		light.NewLight(light.LightTypePoint),
		light.NewLight(light.LightTypeDirectional),
	})

	dev.ResetJournal()
	e.Frame()

	lightBuf := dev.Bound(enums.StagePixelShader, enums.BindShaderResource, SlotTextureLight)
	found := false
	for _, c := range dev.CommandsOf(device.OpUpdate) {
		if c.Resource == lightBuf {
			found = c.Size == 2*light.GPULightSize
		}
	}
	if !found {
		t.Error("light list not uploaded")
	}
}

func TestFrameLightCountMatchesTruncatedUpload(t *testing.T) {
	cfg := config.Default()
	cfg.MaxLightNumber = 2
	e, dev, hook := newTestEngine(t, WithConfig(cfg))
	e.UpdateLight([]light.Light{
		light.NewLight(light.LightTypePoint),
		light.NewLight(light.LightTypePoint),
		light.NewLight(light.LightTypeDirectional),
	})

	dev.ResetJournal()
	e.Frame()

	frameBuf := dev.Bound(enums.StageVertexShader, enums.BindConstantBuffer, SlotCBufferFrame)
	if n := binary.LittleEndian.Uint32(frameBuf.Bytes()[140:]); n != 2 {
		t.Errorf("frame buffer reports %d lights, want 2", n)
	}
	lightBuf := dev.Bound(enums.StagePixelShader, enums.BindShaderResource, SlotTextureLight)
	for _, c := range dev.CommandsOf(device.OpUpdate) {
		if c.Resource == lightBuf && c.Size != 2*light.GPULightSize {
			t.Errorf("light upload of %d bytes, want %d", c.Size, 2*light.GPULightSize)
		}
	}

	truncated := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.WarnLevel && entry.Message == "light list truncated" {
			truncated = true
		}
	}
	if !truncated {
		t.Error("truncation was not logged")
	}
}

func TestFrameContinuesAfterUploadFailure(t *testing.T) {
	e, dev, hook := newTestEngine(t)
	dev.FailNext(device.OpUpdate)

	dev.ResetJournal()
	e.Frame()

	if len(dev.CommandsOf(device.OpPresent)) != 1 {
		t.Error("frame did not present after the upload failure")
	}
	var failed *log.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.ErrorLevel && entry.Message == "upload failed" {
			failed = entry
		}
	}
	if failed == nil {
		t.Fatal("upload failure was not logged")
	}
	if failed.Data["buffer"] != "frame" || failed.Data["frame"] != uint64(1) {
		t.Errorf("unexpected log fields %v", failed.Data)
	}
}

func TestLoadUnloadModel(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	baseline := dev.Live()

	id, err := e.LoadModel(triangleModel(true))
	if err != nil || id != 1 {
		t.Fatalf("LoadModel = %d, %v; want 1", id, err)
	}
	// position, normal, texcoord, bone index, bone weight, index, diffuse
	if got := dev.Live() - baseline; got != 7 {
		t.Errorf("model created %d resources, want 7", got)
	}
	mr, ok := e.Model(id)
	if !ok || mr.Meshes[0].IndexCount != 3 || !mr.HasAnimation {
		t.Fatalf("unexpected model record %+v", mr)
	}

	var owned []resource.Handle
	for i := range mr.Meshes {
		owned = append(owned, mr.Meshes[i].Handles()...)
	}
	for i := range mr.Materials {
		owned = append(owned, mr.Materials[i].Handles()...)
	}

	second, _ := e.LoadModel(triangleModel(false))
	if second != 2 {
		t.Errorf("second id = %d, want 2", second)
	}
	if err := e.UnloadModel(id); err != nil {
		t.Fatalf("unload: %v", err)
	}
	released := 0
	for _, h := range owned {
		if h == resource.InvalidHandle {
			continue
		}
		released++
		if e.Resources().IsValid(h) {
			t.Errorf("handle %v still valid after unload", h)
		}
	}
	if released != 7 {
		t.Errorf("model owned %d handles, want 7", released)
	}
	if again, _ := e.LoadModel(triangleModel(false)); again != 1 {
		t.Errorf("freed id not reused, got %d", again)
	}
	if ids := e.ModelIDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("ModelIDs = %v", ids)
	}

	for _, id := range e.ModelIDs() {
		if err := e.UnloadModel(id); err != nil {
			t.Fatalf("unload %d: %v", id, err)
		}
	}
	if dev.Live() != baseline {
		t.Errorf("live resources = %d after unloading everything, want %d", dev.Live(), baseline)
	}
	if err := e.UnloadModel(99); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("unknown id: got %v, want ErrModelNotFound", err)
	}
}

func TestLoadModelIDsExhausted(t *testing.T) {
	cfg := config.Default()
	cfg.MaxModels = 1
	e, _, _ := newTestEngine(t, WithConfig(cfg))

	if _, err := e.LoadModel(triangleModel(false)); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, err := e.LoadModel(triangleModel(false)); !errors.Is(err, ErrModelIDsExhausted) {
		t.Errorf("got %v, want ErrModelIDsExhausted", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	frames := 0
	e.SetTickCallback(func(float32) {
		frames++
		if frames == 3 {
			cancel()
		}
	})
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if got := len(dev.CommandsOf(device.OpPresent)); got != 3 {
		t.Errorf("presented %d frames, want 3", got)
	}
}

func TestRunAppliesSettingsChangedByTick(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	e.SetTickCallback(func(float32) {
		e.SetRenderFrameLimit(1000)
		e.EnableProfiler()
		e.SetTickCallback(func(float32) {
			e.DisableProfiler()
			cancel()
		})
	})
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if got := len(dev.CommandsOf(device.OpPresent)); got != 2 {
		t.Errorf("presented %d frames, want 2", got)
	}
}
