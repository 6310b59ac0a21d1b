package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/engine/camera"
	"github.com/handsonicv4/Chocolate-3D/engine/config"
	"github.com/handsonicv4/Chocolate-3D/engine/light"
	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/handsonicv4/Chocolate-3D/engine/profiler"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/device"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"
	"github.com/handsonicv4/Chocolate-3D/engine/window"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrModelNotFound is returned when a model ID is not loaded.
	ErrModelNotFound = errors.New("model not found")
	// ErrModelIDsExhausted is returned by LoadModel when every model ID is in use.
	ErrModelIDsExhausted = errors.New("model ids exhausted")
	// ErrResourceCreation is returned by Init when a frame resource cannot be created.
	ErrResourceCreation = errors.New("resource creation failed")
)

// engine implements the Engine interface.
// It owns the frame resources and the loaded models and drives one frame per Frame call.
type engine struct {
	mu *sync.Mutex

	cfg       config.Config
	dev       device.Device
	resources resource.Registry
	camera    camera.Camera
	window    window.Window
	logger    log.FieldLogger

	profiler         *profiler.Profiler
	profilingEnabled bool
	renderFrameLimit time.Duration
	tickCallback     func(deltaTime float32)

	width, height int
	lights        []light.Light
	frameData     FrameData
	frame         uint64

	// Values the last tiling dispatch was computed for.
	oldWidth, oldHeight uint32
	oldProjection       mgl32.Mat4

	backBuffer     resource.Handle
	depthStencil   resource.Handle
	frameBuffer    resource.Handle
	objBuffer      resource.Handle
	animBuffer     resource.Handle
	instanceBuffer resource.Handle
	lightBuffer    resource.Handle
	initialized    bool

	models map[int]*model.ModelResource
}

// Engine orchestrates a frame: it uploads the per-frame constants and lights, re-tiles the
// light grid when the resolution or projection changes, clears the targets, draws every
// loaded model in ascending ID order and presents.
type Engine interface {
	// Init creates the depth-stencil target and the shared constant and structured buffers,
	// then applies the initial bind set.
	//
	// Returns:
	//   - error: wraps ErrResourceCreation and names the buffer that could not be created
	Init() error

	// Shutdown unloads every model and releases the frame resources.
	Shutdown()

	// Config returns the sizing constants the engine was built with.
	Config() config.Config

	// Resources returns the resource registry backing the engine.
	Resources() resource.Registry

	// Camera returns the active camera.
	Camera() camera.Camera

	// SetCamera replaces the active camera.
	SetCamera(c camera.Camera)

	// Window returns the host window, or nil when running headless.
	Window() window.Window

	// SetResolution changes the render resolution. The depth-stencil target is recreated
	// and the next frame re-tiles.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	SetResolution(width, height int)

	// Resolution returns the render resolution.
	Resolution() (int, int)

	// UpdateLight replaces the light list uploaded each frame.
	//
	// Parameters:
	//   - lights: the lights in upload order
	UpdateLight(lights []light.Light)

	// Frame renders one frame.
	//
	// Returns:
	//   - FrameStats: whether tiling ran and how many draws were issued
	Frame() FrameStats

	// UpdateInstanceBuffer packs and uploads the visible instances of a model for one of its meshes.
	//
	// Parameters:
	//   - m: the model whose instances are packed
	//   - meshIndex: the mesh the skinning matrices are taken from
	//
	// Returns:
	//   - []model.InstanceData: the packed instance records
	//   - int: the number of skinning matrices uploaded
	UpdateInstanceBuffer(m *model.Model, meshIndex int) ([]model.InstanceData, int)

	// LoadModel uploads a model's meshes and materials and assigns it the lowest free ID.
	//
	// Parameters:
	//   - m: the model to upload
	//
	// Returns:
	//   - int: the model ID, at least 1
	//   - error: ErrModelIDsExhausted when no ID is free
	LoadModel(m *model.Model) (int, error)

	// UnloadModel releases a model's GPU resources.
	//
	// Parameters:
	//   - id: the model ID returned by LoadModel
	//
	// Returns:
	//   - error: ErrModelNotFound for an unknown ID
	UnloadModel(id int) error

	// Model returns the GPU record of a loaded model.
	Model(id int) (*model.ModelResource, bool)

	// ModelIDs lists the loaded model IDs in ascending order.
	ModelIDs() []int

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called before each frame, receiving the delta time in seconds.
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	SetRenderFrameLimit(fps float64)

	// Run renders frames until the window closes or ctx is done.
	// Without a window it runs until ctx is done.
	//
	// Parameters:
	//   - ctx: cancels the loop between frames
	//
	// Returns:
	//   - error: ctx.Err() when cancelled, nil when the window closed
	Run(ctx context.Context) error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine drawing through dev.
// Sizing defaults come from config.Default and the camera aspect follows the configured resolution.
//
// Parameters:
//   - dev: the device frames are recorded on
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine, not yet initialized
func NewEngine(dev device.Device, options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:             &sync.Mutex{},
		cfg:            config.Default(),
		dev:            dev,
		logger:         log.StandardLogger(),
		models:         make(map[int]*model.ModelResource),
		backBuffer:     resource.InvalidHandle,
		depthStencil:   resource.InvalidHandle,
		frameBuffer:    resource.InvalidHandle,
		objBuffer:      resource.InvalidHandle,
		animBuffer:     resource.InvalidHandle,
		instanceBuffer: resource.InvalidHandle,
		lightBuffer:    resource.InvalidHandle,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.resources == nil {
		e.resources = resource.NewRegistry(dev, resource.WithLogger(e.logger))
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	e.width, e.height = e.cfg.Width, e.cfg.Height
	if e.height > 0 {
		e.camera.SetAspect(float32(e.width) / float32(e.height))
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.SetResolution(width, height)
		})
	}
	return e
}

func (e *engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initBuffers()
}

// initBuffers creates the frame resources. Handles created before a failure are released.
func (e *engine) initBuffers() error {
	if e.initialized {
		return nil
	}

	type target struct {
		name   string
		handle *resource.Handle
		create func() resource.Handle
	}
	targets := []target{
		{"depth stencil", &e.depthStencil, func() resource.Handle {
			return e.createDepthStencil()
		}},
		{"frame buffer", &e.frameBuffer, func() resource.Handle {
			return e.resources.CreateBuffer(enums.BindConstantBuffer, true, FrameDataSize, nil, 0)
		}},
		{"object buffer", &e.objBuffer, func() resource.Handle {
			return e.resources.CreateBuffer(enums.BindConstantBuffer, true, model.ObjectDataSize, nil, 0)
		}},
		{"anim matrix buffer", &e.animBuffer, func() resource.Handle {
			return e.resources.CreateBuffer(enums.BindShaderResource, true,
				uint32(e.cfg.NumBonePerBatch*64), nil, 64)
		}},
		{"instance buffer", &e.instanceBuffer, func() resource.Handle {
			return e.resources.CreateBuffer(enums.BindShaderResource, true,
				uint32(e.cfg.MaxInstances*model.InstanceDataSize), nil, model.InstanceDataSize)
		}},
		{"light buffer", &e.lightBuffer, func() resource.Handle {
			return e.resources.CreateBuffer(enums.BindShaderResource, true,
				uint32(e.cfg.MaxLightNumber*light.GPULightSize), nil, light.GPULightSize)
		}},
	}

	for i, t := range targets {
		h := t.create()
		if h == resource.InvalidHandle {
			for _, created := range targets[:i] {
				e.resources.Clear(*created.handle)
				*created.handle = resource.InvalidHandle
			}
			return fmt.Errorf("create %s: %w", t.name, ErrResourceCreation)
		}
		*t.handle = h
	}
	e.backBuffer = e.resources.Register("back buffer", e.dev.BackBuffer())

	e.resources.ApplyBindSet(e.initialBindSet())
	e.initialized = true
	e.logger.WithFields(log.Fields{
		"width":     e.width,
		"height":    e.height,
		"resources": e.resources.Len(),
	}).Info("engine initialized")
	return nil
}

func (e *engine) createDepthStencil() resource.Handle {
	return e.resources.CreateTexture2D(enums.BindDepthStencil, e.cfg.DepthFormat, false, false,
		uint32(e.width), uint32(e.height), nil)
}

// initialBindSet binds the shared buffers to the stages that read them.
func (e *engine) initialBindSet() resource.BindSet {
	set := resource.BindSet{
		{Stage: enums.StageOutputMerge, Kind: enums.BindDepthStencil, Slot: 0, Handle: e.depthStencil},
	}
	for _, stage := range []enums.PipelineStage{enums.StageVertexShader, enums.StagePixelShader, enums.StageComputeShader} {
		set = append(set, resource.Binding{Stage: stage, Kind: enums.BindConstantBuffer, Slot: SlotCBufferFrame, Handle: e.frameBuffer})
	}
	for _, stage := range []enums.PipelineStage{enums.StageVertexShader, enums.StagePixelShader, enums.StageComputeShader} {
		set = append(set, resource.Binding{Stage: stage, Kind: enums.BindConstantBuffer, Slot: SlotCBufferObject, Handle: e.objBuffer})
	}
	return append(set,
		resource.Binding{Stage: enums.StageVertexShader, Kind: enums.BindShaderResource, Slot: SlotTextureAnimMatrix, Handle: e.animBuffer},
		resource.Binding{Stage: enums.StageVertexShader, Kind: enums.BindShaderResource, Slot: SlotTextureInstance, Handle: e.instanceBuffer},
		resource.Binding{Stage: enums.StagePixelShader, Kind: enums.BindShaderResource, Slot: SlotTextureLight, Handle: e.lightBuffer},
	)
}

func (e *engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.sortedModelIDs() {
		e.unloadModel(id)
	}
	for _, h := range []*resource.Handle{
		&e.depthStencil, &e.frameBuffer, &e.objBuffer, &e.animBuffer,
		&e.instanceBuffer, &e.lightBuffer, &e.backBuffer,
	} {
		e.resources.Clear(*h)
		*h = resource.InvalidHandle
	}
	e.initialized = false
}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) Resources() resource.Registry {
	return e.resources
}

func (e *engine) Camera() camera.Camera {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera
}

func (e *engine) SetCamera(c camera.Camera) {
	if c == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.camera = c
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if width == e.width && height == e.height {
		return
	}
	e.width, e.height = width, height
	e.camera.SetAspect(float32(width) / float32(height))
	e.dev.Resize(width, height)

	if !e.initialized {
		return
	}
	e.resources.Clear(e.depthStencil)
	e.depthStencil = e.createDepthStencil()
	if e.depthStencil == resource.InvalidHandle {
		e.logger.WithFields(log.Fields{"width": width, "height": height}).Error("depth stencil recreation failed")
		return
	}
	e.resources.SetBinding(enums.StageOutputMerge, enums.BindDepthStencil, 0, e.depthStencil)
	e.resources.Clear(e.backBuffer)
	e.backBuffer = e.resources.Register("back buffer", e.dev.BackBuffer())
}

func (e *engine) Resolution() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

func (e *engine) UpdateLight(lights []light.Light) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lights = append([]light.Light(nil), lights...)
	e.frameData.NumLights = uint32(min(len(e.lights), e.cfg.MaxLightNumber))
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run(ctx context.Context) error {
	if err := e.Init(); err != nil {
		return err
	}

	lastFrame := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if e.window != nil && !e.window.PollEvents() {
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now
		tick, profiling, limit := e.loopSettings()
		if tick != nil {
			tick(dt)
		}

		stats := e.Frame()
		if profiling {
			e.profiler.Tick(stats.Tiled)
		}

		if limit > 0 {
			if remaining := limit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// loopSettings reads the settings Run consults each iteration. The tick callback runs without e.mu held.
func (e *engine) loopSettings() (func(deltaTime float32), bool, time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickCallback, e.profilingEnabled, e.renderFrameLimit
}

// sortedModelIDs returns the loaded IDs in ascending order. Callers hold e.mu.
func (e *engine) sortedModelIDs() []int {
	ids := make([]int, 0, len(e.models))
	for id := range e.models {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
