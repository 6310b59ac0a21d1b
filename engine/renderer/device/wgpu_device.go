package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/handsonicv4/Chocolate-3D/common"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	log "github.com/sirupsen/logrus"
)

// defaultClearColor is used when the frame has not cleared its render target explicitly.
var defaultClearColor = [4]float32{0, 0, 0.5, 0}

type wgpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
	mu   *sync.Mutex
}

func (b *wgpuBuffer) Size() uint64 { return b.size }

func (b *wgpuBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type wgpuTexture struct {
	tex    *wgpu.Texture
	view   *wgpu.TextureView
	desc   TextureDesc
	format wgpu.TextureFormat
	size   uint64
	mu     *sync.Mutex
}

func (t *wgpuTexture) Size() uint64 { return t.size }

func (t *wgpuTexture) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// wgpuState holds a fixed-function state. WebGPU bakes depth, blend and raster state into render pipelines,
// so those are kept as descriptions; samplers are real GPU objects.
type wgpuState struct {
	desc    StateDesc
	sampler *wgpu.Sampler
	mu      *sync.Mutex
}

func (s *wgpuState) Size() uint64 { return 0 }

func (s *wgpuState) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}

// wgpuSurfaceTarget stands in for the swap-chain image, which is only acquired during Present.
type wgpuSurfaceTarget struct{}

func (wgpuSurfaceTarget) Size() uint64 { return 0 }
func (wgpuSurfaceTarget) Release()     {}

type wgpuDevice struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width         int
	height        int

	back     wgpuSurfaceTarget
	bindings map[bindKey]Resource

	// Clears requested since the last Present, folded into the render pass load ops.
	clearColor   [4]float32
	depthTarget  *wgpuTexture
	clearDepth   float32
	clearStencil uint32

	draws      uint64
	dispatches uint64
	logger     log.FieldLogger
}

var _ Device = &wgpuDevice{}

// NewWGPU creates a WebGPU device presenting to the given surface.
// It must be called from the thread that owns the window; the OS thread is locked for the lifetime of the device.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually from wgpuglfw.GetSurfaceDescriptor
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: variadic list of WGPUBuilderOption functions
//
// Returns:
//   - Device: the device
//   - error: an error if no adapter or device could be obtained
func NewWGPU(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUBuilderOption) (Device, error) {
	runtime.LockOSThread()
	d := &wgpuDevice{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		bindings:    make(map[bindKey]Resource),
		clearColor:  defaultClearColor,
		clearDepth:  1.0,
		logger:      log.StandardLogger(),
	}
	cfg := wgpuConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.logger != nil {
		d.logger = cfg.logger
	}
	if cfg.vsync {
		d.presentMode = wgpu.PresentModeFifo
	}

	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Chocolate Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.Resize(width, height)
	return d, nil
}

func (d *wgpuDevice) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	d.width, d.height = width, height
}

func (d *wgpuDevice) Viewport() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *wgpuDevice) BackBuffer() Resource {
	return d.back
}

func (d *wgpuDevice) CreateBuffer(desc BufferDesc, initial []byte) (Resource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Size == 0 {
		return nil, fmt.Errorf("create buffer %q: zero size", desc.Label)
	}
	if uint64(len(initial)) > desc.Size {
		return nil, fmt.Errorf("create buffer %q: initial data %d exceeds size %d", desc.Label, len(initial), desc.Size)
	}

	// WebGPU requires buffer sizes and writes to be 4-byte aligned.
	size := align4(desc.Size)
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             size,
		Usage:            bufferUsage(desc.BindFlag, desc.CPUWritable),
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", desc.Label, err)
	}
	if len(initial) > 0 {
		d.queue.WriteBuffer(buf, 0, padded(initial))
	}
	return &wgpuBuffer{buf: buf, size: desc.Size, mu: &sync.Mutex{}}, nil
}

func (d *wgpuDevice) CreateTexture(desc TextureDesc, initial []byte) (Resource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	format, ok := textureFormat(desc.Format)
	if !ok {
		return nil, fmt.Errorf("create texture %q: unsupported format %s", desc.Label, desc.Format)
	}
	if !desc.Type.IsTexture() || desc.Width == 0 {
		return nil, fmt.Errorf("create texture %q: invalid type or size", desc.Label)
	}
	w, h, z := desc.Extent()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     textureUsage(desc.BindFlag),
		Dimension: textureDimension(desc.Type),
		Size: wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: z,
		},
		Format:        format,
		MipLevelCount: desc.MipLevels(),
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}

	t := &wgpuTexture{tex: tex, desc: desc, format: format, size: desc.ByteSize(), mu: &sync.Mutex{}}
	if len(initial) > 0 {
		if err := d.writeTexture(t, initial); err != nil {
			tex.Release()
			return nil, err
		}
	}

	t.view, err = tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create texture view %q: %w", desc.Label, err)
	}
	return t, nil
}

func (d *wgpuDevice) writeTexture(t *wgpuTexture, data []byte) error {
	if uint64(len(data)) > t.size {
		return fmt.Errorf("write texture %q: %d bytes exceeds capacity %d", t.desc.Label, len(data), t.size)
	}
	w, h, z := t.desc.Extent()
	staging := common.TextureStagingData{Pixels: data, Width: w, Height: h}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * t.desc.Format.BytesPerPixel(),
			RowsPerImage: staging.Height,
		},
		&wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: z,
		},
	)
	return nil
}

func (d *wgpuDevice) CreateState(desc StateDesc) (Resource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := &wgpuState{desc: desc, mu: &sync.Mutex{}}
	switch desc.Kind {
	case StateDepthStencil, StateBlend, StateRasterizer:
	case StateSampler:
		samp, err := d.device.CreateSampler(samplerDescriptor(desc.Label, samplerStagingData(desc.Sampler)))
		if err != nil {
			return nil, fmt.Errorf("create sampler %q: %w", desc.Label, err)
		}
		s.sampler = samp
	default:
		return nil, fmt.Errorf("create state %q: unknown kind %d", desc.Label, desc.Kind)
	}
	return s, nil
}

func (d *wgpuDevice) Update(r Resource, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch v := r.(type) {
	case *wgpuBuffer:
		if v.buf == nil {
			return errors.New("update: buffer released")
		}
		if uint64(len(data)) > v.size {
			return fmt.Errorf("update: %d bytes exceeds capacity %d", len(data), v.size)
		}
		d.queue.WriteBuffer(v.buf, 0, padded(data))
		return nil
	case *wgpuTexture:
		if v.tex == nil {
			return errors.New("update: texture released")
		}
		return d.writeTexture(v, data)
	}
	return fmt.Errorf("update: resource %T cannot be written", r)
}

func (d *wgpuDevice) Bind(stage enums.PipelineStage, flag enums.BindFlag, slot uint32, r Resource) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := bindKey{stage, flag, slot}
	if r == nil {
		delete(d.bindings, key)
		return
	}
	d.bindings[key] = r
	if t, ok := r.(*wgpuTexture); ok && flag == enums.BindDepthStencil {
		d.depthTarget = t
	}
}

func (d *wgpuDevice) ClearRenderTarget(r Resource, color [4]float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r == nil {
		return errors.New("clear render target: nil resource")
	}
	d.clearColor = color
	return nil
}

func (d *wgpuDevice) ClearDepthStencil(r Resource, flags ClearFlag, depth float32, stencil uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := r.(*wgpuTexture)
	if !ok || !t.desc.Format.IsDepth() {
		return errors.New("clear depth stencil: not a depth texture")
	}
	d.depthTarget = t
	if flags&ClearDepth != 0 {
		d.clearDepth = depth
	}
	if flags&ClearStencil != 0 {
		d.clearStencil = uint32(stencil)
	}
	return nil
}

func (d *wgpuDevice) Dispatch(x, y, z uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if missing := dispatchStateMissing(d.bindings); len(missing) > 0 {
		d.logger.WithField("missing", missing).Warn("dispatch skipped")
		return
	}
	d.dispatches++
	d.logger.WithFields(log.Fields{"x": x, "y": y, "z": z}).Trace("compute dispatch")
}

func (d *wgpuDevice) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if missing := drawStateMissing(d.bindings); len(missing) > 0 {
		d.logger.WithField("missing", missing).Warn("draw skipped")
		return
	}
	d.draws++
	d.logger.WithFields(log.Fields{"indices": indexCount, "instances": instanceCount}).Trace("draw")
}

// Present acquires the swap-chain image, runs one render pass whose load ops apply the pending clears, and
// presents it.
func (d *wgpuDevice) Present() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create surface view: %w", err)
	}
	defer view.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	c := d.clearColor
	passDesc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
			},
		},
	}
	if d.depthTarget != nil && d.depthTarget.view != nil {
		att := &wgpu.RenderPassDepthStencilAttachment{
			View:            d.depthTarget.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: d.clearDepth,
		}
		if d.depthTarget.format == wgpu.TextureFormatDepth24PlusStencil8 {
			att.StencilLoadOp = wgpu.LoadOpClear
			att.StencilStoreOp = wgpu.StoreOpStore
			att.StencilClearValue = d.clearStencil
		}
		passDesc.DepthStencilAttachment = att
	}

	pass := encoder.BeginRenderPass(passDesc)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command encoder: %w", err)
	}
	defer commandBuffer.Release()

	d.queue.Submit(commandBuffer)
	d.surface.Present()

	d.logger.WithFields(log.Fields{"draws": d.draws, "dispatches": d.dispatches}).Trace("frame presented")
	d.draws, d.dispatches = 0, 0
	d.clearColor = defaultClearColor
	return nil
}

func (d *wgpuDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bindings = make(map[bindKey]Resource)
	d.depthTarget = nil
	if d.queue != nil {
		d.queue.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
	runtime.UnlockOSThread()
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// padded returns data extended with zeros to a multiple of 4 bytes.
func padded(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	out := make([]byte, align4(uint64(len(data))))
	copy(out, data)
	return out
}
