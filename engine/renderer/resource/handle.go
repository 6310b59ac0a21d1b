package resource

import (
	"errors"
	"fmt"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

var (
	// ErrInvalidHandle is returned when a handle is -1, stale or was never issued.
	ErrInvalidHandle = errors.New("invalid resource handle")

	// ErrCapacityExceeded is returned when an update is larger than the resource.
	ErrCapacityExceeded = errors.New("update exceeds resource capacity")
)

// Handle identifies a resource held by a Registry. The low 32 bits are the slot index and the next 31 bits the
// slot generation, so a handle is never negative unless it is InvalidHandle.
type Handle int64

// InvalidHandle denotes an absent or failed resource.
const InvalidHandle Handle = -1

const generationMask = 0x7fffffff

func makeHandle(index, generation uint32) Handle {
	return Handle(int64(generation&generationMask)<<32 | int64(index))
}

func (h Handle) index() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(h>>32) & generationMask
}

func (h Handle) String() string {
	if h < 0 {
		return "invalid"
	}
	return fmt.Sprintf("%d@%d", h.index(), h.generation())
}

// Kind classifies the object behind a handle.
type Kind int

const (
	KindBuffer Kind = iota + 1
	KindTexture
	KindState
	// KindExternal marks a device-owned resource, such as the back buffer, that the registry never releases.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindState:
		return "state"
	case KindExternal:
		return "external"
	}
	return "unknown"
}

// Info describes a live resource.
type Info struct {
	Kind     Kind
	Label    string
	Size     uint64
	BindFlag enums.BindFlag
	Type     enums.ResourceType
	Format   enums.Format
	Stride   uint32
}

// Binding is one row of a declarative bind table.
type Binding struct {
	Stage  enums.PipelineStage
	Kind   enums.BindFlag
	Slot   uint32
	Handle Handle
}

// BindSet is an ordered table of bindings applied in one call.
type BindSet []Binding
