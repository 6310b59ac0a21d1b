package device

import (
	"bytes"
	"errors"
	"testing"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

func TestHeadlessBufferLifecycle(t *testing.T) {
	h := NewHeadless()

	r, err := h.CreateBuffer(BufferDesc{Label: "cb", BindFlag: enums.BindConstantBuffer, Size: 16}, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	if r.Size() != 16 {
		t.Errorf("expected size 16, got %d", r.Size())
	}
	m := r.(*MemoryResource)
	if !bytes.Equal(m.Bytes()[:4], []byte{1, 2, 3, 0}) {
		t.Errorf("initial data not copied: %v", m.Bytes()[:4])
	}

	if err := h.Update(r, []byte{9, 9}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !bytes.Equal(m.Bytes()[:3], []byte{9, 9, 3}) {
		t.Errorf("partial update not applied: %v", m.Bytes()[:3])
	}
	if err := h.Update(r, make([]byte, 17)); err == nil {
		t.Error("expected over-capacity update to fail")
	}

	if h.Live() != 1 {
		t.Errorf("expected 1 live resource, got %d", h.Live())
	}
	r.Release()
	r.Release()
	if h.Live() != 0 || !m.Released() {
		t.Errorf("release not tracked: live=%d released=%v", h.Live(), m.Released())
	}
	if err := h.Update(r, []byte{1}); err == nil {
		t.Error("expected update of released resource to fail")
	}
	if got := len(h.CommandsOf(OpRelease)); got != 1 {
		t.Errorf("expected one release command, got %d", got)
	}
}

func TestHeadlessRejectsBadResources(t *testing.T) {
	h := NewHeadless(WithMemoryLimit(1024))

	if _, err := h.CreateBuffer(BufferDesc{Size: 0}, nil); err == nil {
		t.Error("zero-size buffer must fail")
	}
	if _, err := h.CreateBuffer(BufferDesc{Size: 2048}, nil); err == nil {
		t.Error("buffer above memory limit must fail")
	}
	if _, err := h.CreateTexture(TextureDesc{Type: enums.ResourceTexture2D, Format: enums.FormatUnknown, Width: 4, Height: 4}, nil); err == nil {
		t.Error("unknown format must fail")
	}
	if _, err := h.CreateTexture(TextureDesc{Type: enums.ResourceBuffer, Format: enums.FormatR8G8B8A8Unorm, Width: 4}, nil); err == nil {
		t.Error("buffer type must not create a texture")
	}

	tex, err := h.CreateTexture(TextureDesc{Type: enums.ResourceTexture2D, Format: enums.FormatR8G8B8A8Unorm, Width: 4, Height: 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Size() != 32 {
		t.Errorf("expected 32 texture bytes, got %d", tex.Size())
	}
}

func TestHeadlessFailNext(t *testing.T) {
	h := NewHeadless()
	h.FailNext(OpCreateBuffer)

	_, err := h.CreateBuffer(BufferDesc{Size: 4}, nil)
	if !errors.Is(err, ErrInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := h.CreateBuffer(BufferDesc{Size: 4}, nil); err != nil {
		t.Fatalf("failure must only apply once: %v", err)
	}
}

func TestHeadlessBindAndJournal(t *testing.T) {
	h := NewHeadless(WithViewport(640, 480))
	r, err := h.CreateBuffer(BufferDesc{Size: 64, BindFlag: enums.BindShaderResource}, nil)
	if err != nil {
		t.Fatal(err)
	}
	h.ResetJournal()

	h.Bind(enums.StageVertexShader, enums.BindShaderResource, 5, r)
	if h.Bound(enums.StageVertexShader, enums.BindShaderResource, 5) != r {
		t.Error("binding not recorded")
	}
	h.Bind(enums.StageVertexShader, enums.BindShaderResource, 5, nil)
	if h.Bound(enums.StageVertexShader, enums.BindShaderResource, 5) != nil {
		t.Error("nil must unbind")
	}

	if err := h.ClearRenderTarget(h.BackBuffer(), [4]float32{0, 0, 0.5, 0}); err != nil {
		t.Fatal(err)
	}
	h.Dispatch(2, 1, 1)
	h.DrawIndexedInstanced(36, 3)
	if err := h.Present(); err != nil {
		t.Fatal(err)
	}

	want := []Op{OpBind, OpBind, OpClearRTV, OpDispatch, OpDraw, OpPresent}
	got := h.Commands()
	if len(got) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(got))
	}
	for i, c := range got {
		if c.Op != want[i] {
			t.Errorf("command %d: got %s, want %s", i, c.Op, want[i])
		}
	}
	if got[4].Args != [3]uint32{36, 3, 0} {
		t.Errorf("unexpected draw args %v", got[4].Args)
	}
	if w, hgt := h.Viewport(); w != 640 || hgt != 480 {
		t.Errorf("unexpected viewport %dx%d", w, hgt)
	}
}

func TestHeadlessRecordsMissingBindState(t *testing.T) {
	h := NewHeadless()
	h.Dispatch(1, 1, 1)
	h.DrawIndexedInstanced(3, 1)

	if got := h.CommandsOf(OpDispatch)[0].Missing; len(got) != 1 || got[0] != "compute constant buffer" {
		t.Errorf("dispatch missing = %v", got)
	}
	if got := h.CommandsOf(OpDraw)[0].Missing; len(got) != 2 || got[0] != "index buffer" || got[1] != "vertex buffer" {
		t.Errorf("draw missing = %v", got)
	}

	cb, _ := h.CreateBuffer(BufferDesc{Size: 16, BindFlag: enums.BindConstantBuffer}, nil)
	vb, _ := h.CreateBuffer(BufferDesc{Size: 36, BindFlag: enums.BindVertexBuffer}, nil)
	ib, _ := h.CreateBuffer(BufferDesc{Size: 12, BindFlag: enums.BindIndexBuffer}, nil)
	h.Bind(enums.StageComputeShader, enums.BindConstantBuffer, 0, cb)
	h.Bind(enums.StageInputAssembler, enums.BindVertexBuffer, 4, vb)
	h.Bind(enums.StageInputAssembler, enums.BindIndexBuffer, 0, ib)
	h.ResetJournal()

	h.Dispatch(1, 1, 1)
	h.DrawIndexedInstanced(3, 1)
	for _, c := range h.Commands() {
		if len(c.Missing) != 0 {
			t.Errorf("%s missing %v with everything bound", c.Op, c.Missing)
		}
	}

	h.Bind(enums.StageInputAssembler, enums.BindIndexBuffer, 0, nil)
	h.DrawIndexedInstanced(3, 1)
	if got := h.CommandsOf(OpDraw)[1].Missing; len(got) != 1 || got[0] != "index buffer" {
		t.Errorf("draw after unbinding the index buffer missing = %v", got)
	}
}

func TestHeadlessClearDepthStencilNeedsDepthFormat(t *testing.T) {
	h := NewHeadless()
	color, _ := h.CreateTexture(TextureDesc{Type: enums.ResourceTexture2D, Format: enums.FormatR8G8B8A8Unorm, Width: 2, Height: 2}, nil)
	depth, _ := h.CreateTexture(TextureDesc{Type: enums.ResourceTexture2D, Format: enums.FormatD24UnormS8Uint, Width: 2, Height: 2}, nil)

	if err := h.ClearDepthStencil(color, ClearDepth, 1, 0); err == nil {
		t.Error("clearing a color texture as depth must fail")
	}
	if err := h.ClearDepthStencil(depth, ClearDepth|ClearStencil, 1, 0); err != nil {
		t.Fatal(err)
	}
	c := h.CommandsOf(OpClearDSV)
	if len(c) != 1 || c[0].Depth != 1 || c[0].ClearFlags != ClearDepth|ClearStencil {
		t.Errorf("unexpected clear commands %+v", c)
	}
}

func TestTextureDescMipLevels(t *testing.T) {
	tests := []struct {
		desc TextureDesc
		want uint32
	}{
		{TextureDesc{Width: 256, Height: 256}, 1},
		{TextureDesc{Width: 256, Height: 256, GenerateMips: true}, 9},
		{TextureDesc{Width: 300, Height: 20, GenerateMips: true}, 9},
		{TextureDesc{Width: 1, GenerateMips: true}, 1},
	}
	for _, tt := range tests {
		if got := tt.desc.MipLevels(); got != tt.want {
			t.Errorf("MipLevels(%dx%d) = %d, want %d", tt.desc.Width, tt.desc.Height, got, tt.want)
		}
	}
}
