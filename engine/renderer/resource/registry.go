package resource

import (
	"fmt"
	"sync"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/descriptor"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/device"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	log "github.com/sirupsen/logrus"
)

// Registry owns every GPU resource and pipeline-state object of a device and hands out handles to them.
// It also mirrors the device binding table so that releasing a resource can unbind it.
type Registry interface {
	// CreateBuffer allocates a buffer.
	//
	// Parameters:
	//   - bind: the bind flags the buffer will be used with
	//   - cpuWritable: true if the CPU updates the buffer every frame
	//   - byteSize: the capacity in bytes, must be non-zero
	//   - initial: initial contents, may be nil
	//   - stride: structure stride for structured shader views, 0 for raw buffers
	//
	// Returns:
	//   - Handle: the new handle, or InvalidHandle on failure
	CreateBuffer(bind enums.BindFlag, cpuWritable bool, byteSize uint32, initial []byte, stride uint32) Handle

	// CreateTexture1D allocates a one-dimensional texture.
	CreateTexture1D(bind enums.BindFlag, format enums.Format, generateMips, cpuWritable bool, width uint32, initial []byte) Handle

	// CreateTexture2D allocates a two-dimensional texture.
	//
	// Parameters:
	//   - bind: the bind flags
	//   - format: the texel format
	//   - generateMips: true to allocate a full mip chain
	//   - cpuWritable: true if the CPU updates the texture
	//   - width, height: the dimensions in texels
	//   - initial: tightly packed texel rows of the top level, may be nil
	//
	// Returns:
	//   - Handle: the new handle, or InvalidHandle on failure
	CreateTexture2D(bind enums.BindFlag, format enums.Format, generateMips, cpuWritable bool, width, height uint32, initial []byte) Handle

	// CreateTexture3D allocates a volume texture.
	CreateTexture3D(bind enums.BindFlag, format enums.Format, generateMips, cpuWritable bool, width, height, depth uint32, initial []byte) Handle

	// CreateFromDescriptor creates the buffer or texture declared by a compiled resource descriptor.
	CreateFromDescriptor(desc descriptor.ResourceDesc, initial []byte) Handle

	// CreateDepthStencilState builds a depth-stencil state object.
	CreateDepthStencilState(desc descriptor.DepthStencilDesc) Handle

	// CreateBlendState builds a blend state object.
	CreateBlendState(desc descriptor.BlendDesc) Handle

	// CreateRasterizerState builds a rasterizer state object.
	CreateRasterizerState(desc descriptor.RasterizerDesc) Handle

	// CreateSamplerState builds a sampler.
	CreateSamplerState(desc descriptor.SamplerDesc) Handle

	// Register adopts a device-owned resource such as the back buffer. Clear forgets it without releasing it.
	Register(label string, r device.Resource) Handle

	// UpdateResourceData overwrites the start of a resource. Empty data is a no-op.
	//
	// Parameters:
	//   - h: the resource handle
	//   - data: the new contents, at most the resource capacity
	//
	// Returns:
	//   - error: ErrInvalidHandle, ErrCapacityExceeded or a wrapped device error
	UpdateResourceData(h Handle, data []byte) error

	// SetBinding records a binding and forwards it to the device. Any handle is accepted; InvalidHandle unbinds.
	SetBinding(stage enums.PipelineStage, kind enums.BindFlag, slot uint32, h Handle)

	// Binding returns the handle recorded for a slot, or InvalidHandle.
	Binding(stage enums.PipelineStage, kind enums.BindFlag, slot uint32) Handle

	// ApplyBindSet applies every row of a bind table in order.
	ApplyBindSet(set BindSet)

	// Clear releases a resource and resets every binding that referred to it. Clearing InvalidHandle or a stale
	// handle is a no-op.
	Clear(h Handle)

	// IsValid reports whether h refers to a live resource.
	IsValid(h Handle) bool

	// Info describes a live resource.
	Info(h Handle) (Info, bool)

	// Len returns the number of live resources.
	Len() int

	// ResetRTV clears a render target to a color.
	ResetRTV(h Handle, color [4]float32) error

	// ResetDSV clears the selected planes of a depth-stencil target.
	ResetDSV(h Handle, flags device.ClearFlag, depth float32, stencil uint8) error

	// Device returns the device the registry allocates from.
	Device() device.Device
}

type slot struct {
	generation uint32
	live       bool
	res        device.Resource
	info       Info
}

type bindKey struct {
	stage enums.PipelineStage
	kind  enums.BindFlag
	slot  uint32
}

type registry struct {
	mu       *sync.Mutex
	dev      device.Device
	slots    []slot
	free     []uint32
	live     int
	bindings map[bindKey]Handle
	logger   log.FieldLogger
}

var _ Registry = &registry{}

// NewRegistry creates a new Registry allocating from dev with the provided options.
//
// Parameters:
//   - dev: the device resources are created on
//   - options: variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the constructed registry
func NewRegistry(dev device.Device, options ...RegistryBuilderOption) Registry {
	r := &registry{
		mu:       &sync.Mutex{},
		dev:      dev,
		bindings: make(map[bindKey]Handle),
		logger:   log.StandardLogger(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) Device() device.Device {
	return r.dev
}

// insert stores a resource in a free slot. Callers hold r.mu.
func (r *registry) insert(res device.Resource, info Info) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	s := &r.slots[idx]
	s.live = true
	s.res = res
	s.info = info
	r.live++
	return makeHandle(idx, s.generation)
}

// lookup returns the live slot for h. Callers hold r.mu.
func (r *registry) lookup(h Handle) (*slot, bool) {
	if h < 0 {
		return nil, false
	}
	idx := h.index()
	if int(idx) >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[idx]
	if !s.live || s.generation != h.generation() {
		return nil, false
	}
	return s, true
}

func (r *registry) createBuffer(desc device.BufferDesc, initial []byte) Handle {
	if desc.Size == 0 {
		r.logger.WithField("label", desc.Label).Error("create buffer: zero size")
		return InvalidHandle
	}
	res, err := r.dev.CreateBuffer(desc, initial)
	if err != nil {
		r.logger.WithError(err).WithFields(log.Fields{"label": desc.Label, "size": desc.Size}).Error("create buffer failed")
		return InvalidHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(res, Info{
		Kind:     KindBuffer,
		Label:    desc.Label,
		Size:     res.Size(),
		BindFlag: desc.BindFlag,
		Type:     enums.ResourceBuffer,
		Stride:   desc.Stride,
	})
}

func (r *registry) createTexture(desc device.TextureDesc, initial []byte) Handle {
	res, err := r.dev.CreateTexture(desc, initial)
	if err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"label":  desc.Label,
			"format": desc.Format,
			"width":  desc.Width,
			"height": desc.Height,
		}).Error("create texture failed")
		return InvalidHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(res, Info{
		Kind:     KindTexture,
		Label:    desc.Label,
		Size:     res.Size(),
		BindFlag: desc.BindFlag,
		Type:     desc.Type,
		Format:   desc.Format,
	})
}

func (r *registry) createState(desc device.StateDesc) Handle {
	res, err := r.dev.CreateState(desc)
	if err != nil {
		r.logger.WithError(err).WithField("state", desc.Kind).Error("create state failed")
		return InvalidHandle
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(res, Info{Kind: KindState, Label: desc.Label})
}

func (r *registry) CreateBuffer(bind enums.BindFlag, cpuWritable bool, byteSize uint32, initial []byte, stride uint32) Handle {
	return r.createBuffer(device.BufferDesc{
		Label:       fmt.Sprintf("buffer[%s]", bind),
		BindFlag:    bind,
		CPUWritable: cpuWritable,
		Size:        uint64(byteSize),
		Stride:      stride,
	}, initial)
}

func (r *registry) CreateTexture1D(bind enums.BindFlag, format enums.Format, generateMips, cpuWritable bool, width uint32, initial []byte) Handle {
	return r.createTexture(device.TextureDesc{
		Label:        fmt.Sprintf("texture1d[%s]", format),
		Type:         enums.ResourceTexture1D,
		BindFlag:     bind,
		Format:       format,
		CPUWritable:  cpuWritable,
		GenerateMips: generateMips,
		Width:        width,
	}, initial)
}

func (r *registry) CreateTexture2D(bind enums.BindFlag, format enums.Format, generateMips, cpuWritable bool, width, height uint32, initial []byte) Handle {
	return r.createTexture(device.TextureDesc{
		Label:        fmt.Sprintf("texture2d[%s]", format),
		Type:         enums.ResourceTexture2D,
		BindFlag:     bind,
		Format:       format,
		CPUWritable:  cpuWritable,
		GenerateMips: generateMips,
		Width:        width,
		Height:       height,
	}, initial)
}

func (r *registry) CreateTexture3D(bind enums.BindFlag, format enums.Format, generateMips, cpuWritable bool, width, height, depth uint32, initial []byte) Handle {
	return r.createTexture(device.TextureDesc{
		Label:        fmt.Sprintf("texture3d[%s]", format),
		Type:         enums.ResourceTexture3D,
		BindFlag:     bind,
		Format:       format,
		CPUWritable:  cpuWritable,
		GenerateMips: generateMips,
		Width:        width,
		Height:       height,
		Depth:        depth,
	}, initial)
}

func (r *registry) CreateFromDescriptor(desc descriptor.ResourceDesc, initial []byte) Handle {
	label := desc.Name
	if label == "" {
		label = desc.Type.String()
	}
	cpuWritable := desc.Access.CPUWritable()

	if desc.Type == enums.ResourceBuffer {
		return r.createBuffer(device.BufferDesc{
			Label:       label,
			BindFlag:    desc.BindFlag,
			CPUWritable: cpuWritable,
			Size:        uint64(desc.Size[0]),
			Stride:      desc.ElementStride,
		}, initial)
	}

	td := device.TextureDesc{
		Label:        label,
		Type:         desc.Type,
		BindFlag:     desc.BindFlag,
		Format:       desc.Format,
		CPUWritable:  cpuWritable,
		GenerateMips: desc.MipLevel != 1,
		Width:        desc.Size[0],
	}
	switch desc.Type {
	case enums.ResourceTexture2D:
		td.Height = desc.Size[1]
	case enums.ResourceTexture3D:
		td.Height = desc.Size[1]
		td.Depth = desc.Size[2]
	}
	return r.createTexture(td, initial)
}

func (r *registry) CreateDepthStencilState(desc descriptor.DepthStencilDesc) Handle {
	return r.createState(device.StateDesc{Kind: device.StateDepthStencil, Label: "depth_stencil", DepthStencil: desc})
}

func (r *registry) CreateBlendState(desc descriptor.BlendDesc) Handle {
	return r.createState(device.StateDesc{Kind: device.StateBlend, Label: "blend", Blend: desc})
}

func (r *registry) CreateRasterizerState(desc descriptor.RasterizerDesc) Handle {
	return r.createState(device.StateDesc{Kind: device.StateRasterizer, Label: "rasterizer", Rasterizer: desc})
}

func (r *registry) CreateSamplerState(desc descriptor.SamplerDesc) Handle {
	return r.createState(device.StateDesc{Kind: device.StateSampler, Label: "sampler", Sampler: desc})
}

func (r *registry) Register(label string, res device.Resource) Handle {
	if res == nil {
		return InvalidHandle
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(res, Info{Kind: KindExternal, Label: label, Size: res.Size()})
}

func (r *registry) UpdateResourceData(h Handle, data []byte) error {
	r.mu.Lock()
	s, ok := r.lookup(h)
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("update %s: %w", h, ErrInvalidHandle)
	}
	res, info := s.res, s.info
	r.mu.Unlock()

	if len(data) == 0 {
		return nil
	}
	if uint64(len(data)) > info.Size {
		return fmt.Errorf("update %q: %d > %d bytes: %w", info.Label, len(data), info.Size, ErrCapacityExceeded)
	}
	if err := r.dev.Update(res, data); err != nil {
		return fmt.Errorf("update %q: %w", info.Label, err)
	}
	return nil
}

func (r *registry) SetBinding(stage enums.PipelineStage, kind enums.BindFlag, slotIndex uint32, h Handle) {
	r.mu.Lock()
	key := bindKey{stage, kind, slotIndex}
	var res device.Resource
	if s, ok := r.lookup(h); ok {
		res = s.res
	}
	if h < 0 {
		delete(r.bindings, key)
	} else {
		r.bindings[key] = h
	}
	r.mu.Unlock()

	r.dev.Bind(stage, kind, slotIndex, res)
}

func (r *registry) Binding(stage enums.PipelineStage, kind enums.BindFlag, slotIndex uint32) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.bindings[bindKey{stage, kind, slotIndex}]
	if !ok {
		return InvalidHandle
	}
	return h
}

func (r *registry) ApplyBindSet(set BindSet) {
	for _, b := range set {
		r.SetBinding(b.Stage, b.Kind, b.Slot, b.Handle)
	}
}

func (r *registry) Clear(h Handle) {
	r.mu.Lock()
	s, ok := r.lookup(h)
	if !ok {
		r.mu.Unlock()
		return
	}
	res, kind := s.res, s.info.Kind
	s.live = false
	s.res = nil
	s.info = Info{}
	s.generation = (s.generation + 1) & generationMask
	r.free = append(r.free, h.index())
	r.live--

	var unbound []bindKey
	for key, bound := range r.bindings {
		if bound == h {
			unbound = append(unbound, key)
			delete(r.bindings, key)
		}
	}
	r.mu.Unlock()

	for _, key := range unbound {
		r.dev.Bind(key.stage, key.kind, key.slot, nil)
	}
	if kind != KindExternal {
		res.Release()
	}
}

func (r *registry) IsValid(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.lookup(h)
	return ok
}

func (r *registry) Info(h Handle) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.lookup(h)
	if !ok {
		return Info{}, false
	}
	return s.info, true
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

func (r *registry) resource(h Handle) (device.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.lookup(h)
	if !ok {
		return nil, fmt.Errorf("%s: %w", h, ErrInvalidHandle)
	}
	return s.res, nil
}

func (r *registry) ResetRTV(h Handle, color [4]float32) error {
	res, err := r.resource(h)
	if err != nil {
		return fmt.Errorf("reset render target: %w", err)
	}
	return r.dev.ClearRenderTarget(res, color)
}

func (r *registry) ResetDSV(h Handle, flags device.ClearFlag, depth float32, stencil uint8) error {
	res, err := r.resource(h)
	if err != nil {
		return fmt.Errorf("reset depth stencil: %w", err)
	}
	return r.dev.ClearDepthStencil(res, flags, depth, stencil)
}
