package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

// Op names a device call recorded in the headless journal.
type Op string

const (
	OpCreateBuffer  Op = "create_buffer"
	OpCreateTexture Op = "create_texture"
	OpCreateState   Op = "create_state"
	OpUpdate        Op = "update"
	OpBind          Op = "bind"
	OpClearRTV      Op = "clear_rtv"
	OpClearDSV      Op = "clear_dsv"
	OpDispatch      Op = "dispatch"
	OpDraw          Op = "draw"
	OpPresent       Op = "present"
	OpRelease       Op = "release"
)

// ErrInjected is returned by a call that was armed with FailNext.
var ErrInjected = errors.New("injected device failure")

// Command is one journal entry. Only the fields relevant to Op are set.
type Command struct {
	Op       Op
	Resource *MemoryResource
	Label    string

	Stage enums.PipelineStage
	Flag  enums.BindFlag
	Slot  uint32

	// Args holds dispatch groups, or index and instance counts for draws.
	Args [3]uint32
	// Missing names the bindings a draw or dispatch needed that were not bound.
	Missing []string
	// Size is the byte count of an update.
	Size int

	Color      [4]float32
	ClearFlags ClearFlag
	Depth      float32
	Stencil    uint8
}

// MemoryResource is the Resource implementation of the headless device.
type MemoryResource struct {
	id       int
	label    string
	data     []byte
	buffer   *BufferDesc
	texture  *TextureDesc
	state    *StateDesc
	released bool
	dev      *Headless
}

var _ Resource = &MemoryResource{}

// ID returns the creation order number of the resource, starting at 1.
func (m *MemoryResource) ID() int {
	return m.id
}

// Label returns the debug label the resource was created with.
func (m *MemoryResource) Label() string {
	return m.label
}

// Bytes returns a copy of the current contents.
func (m *MemoryResource) Bytes() []byte {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Buffer returns the buffer description, or nil if the resource is not a buffer.
func (m *MemoryResource) Buffer() *BufferDesc { return m.buffer }

// Texture returns the texture description, or nil if the resource is not a texture.
func (m *MemoryResource) Texture() *TextureDesc { return m.texture }

// State returns the state description, or nil if the resource is not a state object.
func (m *MemoryResource) State() *StateDesc { return m.state }

// Released reports whether Release has been called.
func (m *MemoryResource) Released() bool {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	return m.released
}

func (m *MemoryResource) Size() uint64 {
	return uint64(len(m.data))
}

func (m *MemoryResource) Release() {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	if m.released {
		return
	}
	m.released = true
	m.data = nil
	m.dev.live--
	m.dev.record(Command{Op: OpRelease, Resource: m, Label: m.label})
}

type bindKey struct {
	stage enums.PipelineStage
	flag  enums.BindFlag
	slot  uint32
}

// Headless is an in-memory Device. It keeps resource contents in byte slices and journals every call,
// which makes it suitable for tests and for dry runs without a GPU.
type Headless struct {
	mu       *sync.Mutex
	nextID   int
	live     int
	journal  []Command
	fail     map[Op]int
	bindings map[bindKey]*MemoryResource
	width    int
	height   int
	back     *MemoryResource
	maxBytes uint64
}

var _ Device = &Headless{}

// NewHeadless creates a new headless device with the provided options.
//
// Parameters:
//   - options: variadic list of HeadlessBuilderOption functions
//
// Returns:
//   - *Headless: the device
func NewHeadless(options ...HeadlessBuilderOption) *Headless {
	h := &Headless{
		mu:       &sync.Mutex{},
		fail:     make(map[Op]int),
		bindings: make(map[bindKey]*MemoryResource),
		width:    1280,
		height:   720,
		maxBytes: 1 << 30,
	}
	for _, opt := range options {
		opt(h)
	}
	h.back = h.newResource("back buffer", uint64(h.width*h.height*4))
	h.back.texture = &TextureDesc{
		Label:    "back buffer",
		Type:     enums.ResourceTexture2D,
		BindFlag: enums.BindRenderTarget,
		Format:   enums.FormatR8G8B8A8Unorm,
		Width:    uint32(h.width),
		Height:   uint32(h.height),
	}
	return h
}

// FailNext arms the next call of op to fail with ErrInjected. Arming repeatedly queues more failures.
func (h *Headless) FailNext(op Op) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fail[op]++
}

// Commands returns a copy of the journal.
func (h *Headless) Commands() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Command, len(h.journal))
	copy(out, h.journal)
	return out
}

// CommandsOf returns the journal entries with the given op.
func (h *Headless) CommandsOf(op Op) []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Command
	for _, c := range h.journal {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetJournal discards recorded commands. Resources and bindings are unaffected.
func (h *Headless) ResetJournal() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.journal = nil
}

// Live returns the number of created resources not yet released, excluding the back buffer.
func (h *Headless) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

// Bound returns the resource attached to a slot, or nil.
func (h *Headless) Bound(stage enums.PipelineStage, flag enums.BindFlag, slot uint32) *MemoryResource {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bindings[bindKey{stage, flag, slot}]
}

func (h *Headless) record(c Command) {
	h.journal = append(h.journal, c)
}

// injected consumes one armed failure for op.
func (h *Headless) injected(op Op) error {
	if h.fail[op] == 0 {
		return nil
	}
	h.fail[op]--
	return fmt.Errorf("%s: %w", op, ErrInjected)
}

func (h *Headless) newResource(label string, size uint64) *MemoryResource {
	h.nextID++
	return &MemoryResource{
		id:    h.nextID,
		label: label,
		data:  make([]byte, size),
		dev:   h,
	}
}

func (h *Headless) CreateBuffer(desc BufferDesc, initial []byte) (Resource, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.injected(OpCreateBuffer); err != nil {
		return nil, err
	}
	if desc.Size == 0 || desc.Size > h.maxBytes {
		return nil, fmt.Errorf("create buffer %q: invalid size %d", desc.Label, desc.Size)
	}
	if uint64(len(initial)) > desc.Size {
		return nil, fmt.Errorf("create buffer %q: initial data %d exceeds size %d", desc.Label, len(initial), desc.Size)
	}

	r := h.newResource(desc.Label, desc.Size)
	copy(r.data, initial)
	d := desc
	r.buffer = &d
	h.live++
	h.record(Command{Op: OpCreateBuffer, Resource: r, Label: desc.Label, Flag: desc.BindFlag, Size: int(desc.Size)})
	return r, nil
}

func (h *Headless) CreateTexture(desc TextureDesc, initial []byte) (Resource, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.injected(OpCreateTexture); err != nil {
		return nil, err
	}
	if !desc.Type.IsTexture() {
		return nil, fmt.Errorf("create texture %q: %s is not a texture type", desc.Label, desc.Type)
	}
	if desc.Format.BytesPerPixel() == 0 {
		return nil, fmt.Errorf("create texture %q: unsupported format %s", desc.Label, desc.Format)
	}
	if desc.Width == 0 {
		return nil, fmt.Errorf("create texture %q: zero width", desc.Label)
	}
	size := desc.ByteSize()
	if size > h.maxBytes {
		return nil, fmt.Errorf("create texture %q: %d bytes exceeds device limit", desc.Label, size)
	}
	if uint64(len(initial)) > size {
		return nil, fmt.Errorf("create texture %q: initial data %d exceeds size %d", desc.Label, len(initial), size)
	}

	r := h.newResource(desc.Label, size)
	copy(r.data, initial)
	d := desc
	r.texture = &d
	h.live++
	h.record(Command{Op: OpCreateTexture, Resource: r, Label: desc.Label, Flag: desc.BindFlag, Size: int(size)})
	return r, nil
}

func (h *Headless) CreateState(desc StateDesc) (Resource, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.injected(OpCreateState); err != nil {
		return nil, err
	}
	if desc.Kind < StateDepthStencil || desc.Kind > StateSampler {
		return nil, fmt.Errorf("create state %q: unknown kind %d", desc.Label, desc.Kind)
	}
	r := h.newResource(desc.Label, 0)
	d := desc
	r.state = &d
	h.live++
	h.record(Command{Op: OpCreateState, Resource: r, Label: desc.Label})
	return r, nil
}

func (h *Headless) Update(r Resource, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.injected(OpUpdate); err != nil {
		return err
	}
	m, ok := r.(*MemoryResource)
	if !ok || m == nil || m.dev != h {
		return errors.New("update: resource does not belong to this device")
	}
	if m.released {
		return fmt.Errorf("update %q: resource released", m.label)
	}
	if uint64(len(data)) > uint64(len(m.data)) {
		return fmt.Errorf("update %q: %d bytes exceeds capacity %d", m.label, len(data), len(m.data))
	}
	copy(m.data, data)
	h.record(Command{Op: OpUpdate, Resource: m, Label: m.label, Size: len(data)})
	return nil
}

func (h *Headless) Bind(stage enums.PipelineStage, flag enums.BindFlag, slot uint32, r Resource) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := bindKey{stage, flag, slot}
	m, _ := r.(*MemoryResource)
	if m == nil {
		delete(h.bindings, key)
	} else {
		h.bindings[key] = m
	}
	h.record(Command{Op: OpBind, Resource: m, Stage: stage, Flag: flag, Slot: slot})
}

func (h *Headless) ClearRenderTarget(r Resource, color [4]float32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.injected(OpClearRTV); err != nil {
		return err
	}
	m, ok := r.(*MemoryResource)
	if !ok || m == nil {
		return errors.New("clear render target: not a headless resource")
	}
	h.record(Command{Op: OpClearRTV, Resource: m, Label: m.label, Color: color})
	return nil
}

func (h *Headless) ClearDepthStencil(r Resource, flags ClearFlag, depth float32, stencil uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.injected(OpClearDSV); err != nil {
		return err
	}
	m, ok := r.(*MemoryResource)
	if !ok || m == nil {
		return errors.New("clear depth stencil: not a headless resource")
	}
	if m.texture != nil && !m.texture.Format.IsDepth() {
		return fmt.Errorf("clear depth stencil %q: format %s has no depth plane", m.label, m.texture.Format)
	}
	h.record(Command{Op: OpClearDSV, Resource: m, Label: m.label, ClearFlags: flags, Depth: depth, Stencil: stencil})
	return nil
}

func (h *Headless) Dispatch(x, y, z uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpDispatch, Args: [3]uint32{x, y, z}, Missing: dispatchStateMissing(h.bindings)})
}

func (h *Headless) DrawIndexedInstanced(indexCount, instanceCount uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Command{Op: OpDraw, Args: [3]uint32{indexCount, instanceCount, 0}, Missing: drawStateMissing(h.bindings)})
}

func (h *Headless) Present() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.injected(OpPresent); err != nil {
		return err
	}
	h.record(Command{Op: OpPresent})
	return nil
}

func (h *Headless) BackBuffer() Resource {
	return h.back
}

func (h *Headless) Viewport() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Headless) Resize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	h.back.data = make([]byte, width*height*4)
	h.back.texture.Width = uint32(width)
	h.back.texture.Height = uint32(height)
}

func (h *Headless) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bindings = make(map[bindKey]*MemoryResource)
}
