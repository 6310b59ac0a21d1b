package light

import (
	"encoding/binary"
	"math"
)

// GPULightSize is the byte stride of one light in the light structured buffer.
const GPULightSize = 64

// GPULight is the GPU-aligned representation of a single light source.
// Size: 64 bytes (16-byte aligned HLSL structured buffer element).
type GPULight struct {
	Position   [3]float32 // offset  0: world-space position (point/spot) or unused (directional)
	LightType  uint32     // offset 12: 0 = directional, 1 = point, 2 = spot
	Color      [3]float32 // offset 16: RGB color
	Intensity  float32    // offset 28: scalar multiplier
	Direction  [3]float32 // offset 32: normalized direction (directional/spot) or unused (point)
	LightRange float32    // offset 44: attenuation cutoff distance
	InnerCone  float32    // offset 48: cos(inner half-angle) for spot
	OuterCone  float32    // offset 52: cos(outer half-angle) for spot
	_pad       [2]uint32  // offset 56: padding to 64-byte alignment
}

// ToGPU converts a Light to its buffer representation.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - GPULight: the GPU-aligned record
func ToGPU(l Light) GPULight {
	return GPULight{
		Position:   l.Position(),
		LightType:  uint32(l.Type()),
		Color:      l.Color(),
		Intensity:  l.Intensity(),
		Direction:  l.Direction(),
		LightRange: l.Range(),
		InnerCone:  l.InnerCone(),
		OuterCone:  l.OuterCone(),
	}
}

// MarshalTo writes the light into buf, which must hold at least GPULightSize bytes.
func (g *GPULight) MarshalTo(buf []byte) {
	putVec3(buf[0:], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:], g.Color)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.Intensity))
	putVec3(buf[32:], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], math.Float32bits(g.LightRange))
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.InnerCone))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.OuterCone))
	binary.LittleEndian.PutUint64(buf[56:64], 0) // padding
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	g.MarshalTo(buf)
	return buf
}

// MarshalLights packs a light list back to back in list order.
//
// Parameters:
//   - lights: the lights to pack
//
// Returns:
//   - []byte: len(lights) * GPULightSize bytes, or nil for an empty list
func MarshalLights(lights []Light) []byte {
	if len(lights) == 0 {
		return nil
	}
	buf := make([]byte, len(lights)*GPULightSize)
	for i, l := range lights {
		g := ToGPU(l)
		g.MarshalTo(buf[i*GPULightSize:])
	}
	return buf
}

func putVec3(buf []byte, v [3]float32) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
}
