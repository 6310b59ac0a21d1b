package model

import (
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Instance is one placement of a model in the world.
type Instance struct {
	Visible   bool
	Color     mgl32.Vec4
	Transform mgl32.Mat4

	// BindMatrices holds the current skinning matrices of each mesh, indexed by mesh then bone.
	BindMatrices [][]mgl32.Mat4
}

// BindMatrix returns the skinning matrices of a mesh, or nil when none were set.
//
// Parameters:
//   - mesh: the mesh index
//
// Returns:
//   - []mgl32.Mat4: one matrix per bone of the mesh
func (i *Instance) BindMatrix(mesh int) []mgl32.Mat4 {
	if mesh < 0 || mesh >= len(i.BindMatrices) {
		return nil
	}
	return i.BindMatrices[mesh]
}

// Model is imported geometry, its materials and the instances placed in the world.
// Instance keys are assigned by AddInstance and iterated in ascending order.
type Model struct {
	Name       string
	Meshes     []Mesh
	Materials  []Material
	Animations []AnimationClip

	// HasAnimation marks a skinned model whose instances upload bind matrices.
	HasAnimation bool

	mu        *sync.Mutex
	instances map[int]*Instance
	nextKey   int
}

// NewModel creates an empty Model with the provided options.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions
//
// Returns:
//   - *Model: the constructed model
func NewModel(options ...ModelBuilderOption) *Model {
	m := &Model{
		mu:        &sync.Mutex{},
		instances: make(map[int]*Instance),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// AddInstance places an instance and returns its key.
//
// Parameters:
//   - inst: the instance, retained by the model
//
// Returns:
//   - int: the instance key, increasing with every call
func (m *Model) AddInstance(inst *Instance) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.nextKey
	m.nextKey++
	m.instances[key] = inst
	return key
}

// NewInstance places a visible white instance with the identity transform and the bind pose of every mesh as
// its skinning matrices.
//
// Returns:
//   - int: the instance key
//   - *Instance: the new instance
func (m *Model) NewInstance() (int, *Instance) {
	inst := &Instance{
		Visible:   true,
		Color:     mgl32.Vec4{1, 1, 1, 1},
		Transform: mgl32.Ident4(),
	}
	if m.HasAnimation {
		inst.BindMatrices = make([][]mgl32.Mat4, len(m.Meshes))
		for i, mesh := range m.Meshes {
			mats := make([]mgl32.Mat4, len(mesh.Bones))
			for j, b := range mesh.Bones {
				mats[j] = b.Offset
			}
			inst.BindMatrices[i] = mats
		}
	}
	return m.AddInstance(inst), inst
}

// Instance returns the instance stored under key.
func (m *Model) Instance(key int) (*Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[key]
	return inst, ok
}

// RemoveInstance deletes an instance. Unknown keys are ignored.
func (m *Model) RemoveInstance(key int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, key)
}

// InstanceKeys returns every instance key in ascending order.
func (m *Model) InstanceKeys() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]int, 0, len(m.instances))
	for k := range m.instances {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Instances returns every instance in ascending key order.
func (m *Model) Instances() []*Instance {
	keys := m.InstanceKeys()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Instance, 0, len(keys))
	for _, k := range keys {
		if inst, ok := m.instances[k]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// VisibleInstances counts the instances marked visible.
func (m *Model) VisibleInstances() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, inst := range m.instances {
		if inst.Visible {
			n++
		}
	}
	return n
}
