package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"
)

func TestInstancesIterateInKeyOrder(t *testing.T) {
	m := NewModel(WithName("crate"))
	for range 3 {
		m.NewInstance()
	}
	m.RemoveInstance(1)
	key, inst := m.NewInstance()
	inst.Visible = false

	if got := m.InstanceKeys(); len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != key {
		t.Errorf("unexpected keys %v", got)
	}
	if got := m.VisibleInstances(); got != 2 {
		t.Errorf("visible = %d, want 2", got)
	}
	if got := m.Instances(); got[2] != inst {
		t.Error("instances must follow key order")
	}
}

func TestNewInstanceUsesBindPose(t *testing.T) {
	offset := mgl32.Translate3D(1, 2, 3)
	m := NewModel(
		WithAnimated(true),
		WithMeshes(Mesh{Bones: []Bone{{Name: "root", Offset: offset}, {Name: "arm", Offset: mgl32.Ident4()}}}),
	)
	_, inst := m.NewInstance()
	mats := inst.BindMatrix(0)
	if len(mats) != 2 || mats[0] != offset {
		t.Fatalf("unexpected bind matrices %v", mats)
	}
	if inst.BindMatrix(1) != nil || inst.BindMatrix(-1) != nil {
		t.Error("out of range mesh must return nil")
	}
}

func TestMarshalInstances(t *testing.T) {
	if MarshalInstances(nil) != nil {
		t.Fatal("empty list must marshal to nil")
	}
	data := []InstanceData{
		{Color: mgl32.Vec4{1, 0, 0, 1}, World: mgl32.Ident4(), WVP: mgl32.Ident4(), BindMatrixOffset: 0},
		{Color: mgl32.Vec4{0, 1, 0, 1}, World: mgl32.Translate3D(5, 0, 0), WVP: mgl32.Ident4(), BindMatrixOffset: 7},
	}
	buf := MarshalInstances(data)
	if len(buf) != 2*InstanceDataSize {
		t.Fatalf("expected %d bytes, got %d", 2*InstanceDataSize, len(buf))
	}
	second := buf[InstanceDataSize:]
	if got := math.Float32frombits(binary.LittleEndian.Uint32(second[4:])); got != 1 {
		t.Errorf("green = %v, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(second[16+12*4:])); got != 5 {
		t.Errorf("world translation x = %v, want 5", got)
	}
	if got := binary.LittleEndian.Uint32(second[144:]); got != 7 {
		t.Errorf("bind matrix offset = %d, want 7", got)
	}
}

func TestMaterialFlags(t *testing.T) {
	mesh := NewMeshResource()
	mat := NewMaterialResource()
	mat.Diffuse = 3
	mat.Normal = 4

	flags := mat.Flags(&mesh, true)
	if !flags.HasAnimation || !flags.HasDiffuseMap || flags.HasAmbientMap || flags.HasSpecularMap {
		t.Errorf("unexpected flags %+v", flags)
	}
	if flags.HasNormalMap {
		t.Error("normal mapping needs tangent and bitangent")
	}

	mesh.Tangent, mesh.Bitangent = 5, 6
	if !mat.Flags(&mesh, false).HasNormalMap {
		t.Error("normal mapping expected once the tangent frame is present")
	}

	buf := mat.Flags(&mesh, false).Marshal()
	if len(buf) != ObjectDataSize || binary.LittleEndian.Uint32(buf[0:]) != 0 || binary.LittleEndian.Uint32(buf[16:]) != 1 {
		t.Errorf("unexpected object buffer %v", buf)
	}
}

func TestResourceDefaultsAreAbsent(t *testing.T) {
	mesh := NewMeshResource()
	for _, h := range mesh.Handles() {
		if h != resource.InvalidHandle {
			t.Fatalf("mesh handle %s must start absent", h)
		}
	}
	r := ModelResource{}
	if got := r.Material(&mesh); got.Diffuse != resource.InvalidHandle {
		t.Error("missing material must have no maps")
	}
}

func TestStreamBytes(t *testing.T) {
	if got := len(Vec3Bytes([]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}})); got != 2*StrideVec3 {
		t.Errorf("vec3 bytes = %d", got)
	}
	if got := len(Vec2Bytes([]mgl32.Vec2{{1, 2}})); got != StrideVec2 {
		t.Errorf("vec2 bytes = %d", got)
	}
	if got := BoneIndexBytes([][4]uint32{{1, 2, 3, 4}}); len(got) != StrideBoneIndex || binary.LittleEndian.Uint32(got[12:]) != 4 {
		t.Errorf("bone index bytes = %v", got)
	}
	if IndexBytes(nil) != nil || Vec4Bytes(nil) != nil {
		t.Error("empty streams must be nil")
	}
}
