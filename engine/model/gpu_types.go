package model

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/common"
)

// Vertex stream strides in bytes.
const (
	StrideVec3      = 12
	StrideVec2      = 8
	StrideVec4      = 16
	StrideBoneIndex = 16 // 4 × uint32
	StrideBoneWt    = 16 // 4 × float32
	StrideIndex     = 4
)

// InstanceDataSize is the byte stride of one InstanceData element.
const InstanceDataSize = 160

// InstanceData is the per-instance record read by the vertex shader.
// Size: 160 bytes (16-byte aligned HLSL structured buffer element).
type InstanceData struct {
	Color            mgl32.Vec4 // offset   0: instance tint
	World            mgl32.Mat4 // offset  16: model-to-world transform
	WVP              mgl32.Mat4 // offset  80: projection × view × world
	BindMatrixOffset uint32     // offset 144: first skinning matrix of this instance
	_pad             [3]uint32  // offset 148: padding to 160 bytes
}

// MarshalTo writes the record into buf, which must hold at least InstanceDataSize bytes.
func (d *InstanceData) MarshalTo(buf []byte) {
	common.PutVec4(buf[0:], d.Color)
	common.PutMat4(buf[16:], d.World)
	common.PutMat4(buf[80:], d.WVP)
	binary.LittleEndian.PutUint32(buf[144:], d.BindMatrixOffset)
	clear(buf[148:InstanceDataSize])
}

// MarshalInstances packs instance records back to back.
//
// Parameters:
//   - data: the records to pack
//
// Returns:
//   - []byte: len(data) * InstanceDataSize bytes, or nil for an empty list
func MarshalInstances(data []InstanceData) []byte {
	if len(data) == 0 {
		return nil
	}
	buf := make([]byte, len(data)*InstanceDataSize)
	for i := range data {
		data[i].MarshalTo(buf[i*InstanceDataSize:])
	}
	return buf
}

// ObjectDataSize is the byte size of the per-object constant buffer.
const ObjectDataSize = 32

// ObjectData is the per-object constant buffer describing which material maps a draw samples.
// Size: 32 bytes (constant buffers are sized in 16-byte registers).
type ObjectData struct {
	HasAnimation   bool // offset  0
	HasAmbientMap  bool // offset  4
	HasDiffuseMap  bool // offset  8
	HasSpecularMap bool // offset 12
	HasNormalMap   bool // offset 16
}

// Marshal serializes the flags as 32-bit booleans.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (o ObjectData) Marshal() []byte {
	buf := make([]byte, ObjectDataSize)
	for i, f := range []bool{o.HasAnimation, o.HasAmbientMap, o.HasDiffuseMap, o.HasSpecularMap, o.HasNormalMap} {
		if f {
			binary.LittleEndian.PutUint32(buf[i*4:], 1)
		}
	}
	return buf
}

// Vec3Bytes packs a vec3 stream as little-endian float32 triples.
func Vec3Bytes(v []mgl32.Vec3) []byte {
	return floatBytes(len(v)*3, func(i int) float32 { return v[i/3][i%3] })
}

// Vec2Bytes packs a vec2 stream as little-endian float32 pairs.
func Vec2Bytes(v []mgl32.Vec2) []byte {
	return floatBytes(len(v)*2, func(i int) float32 { return v[i/2][i%2] })
}

// Vec4Bytes packs a vec4 stream as little-endian float32 quadruples.
func Vec4Bytes(v []mgl32.Vec4) []byte {
	return floatBytes(len(v)*4, func(i int) float32 { return v[i/4][i%4] })
}

// WeightBytes packs bone weights as little-endian float32 quadruples.
func WeightBytes(v [][4]float32) []byte {
	return floatBytes(len(v)*4, func(i int) float32 { return v[i/4][i%4] })
}

// BoneIndexBytes packs bone indices as little-endian uint32 quadruples.
func BoneIndexBytes(v [][4]uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*StrideBoneIndex)
	for i, q := range v {
		for j, idx := range q {
			binary.LittleEndian.PutUint32(buf[i*16+j*4:], idx)
		}
	}
	return buf
}

// IndexBytes packs a 32-bit index list.
func IndexBytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*StrideIndex)
	for i, idx := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func floatBytes(n int, at func(int) float32) []byte {
	if n == 0 {
		return nil
	}
	buf := make([]byte, n*4)
	for i := range n {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(at(i)))
	}
	return buf
}
