package engine

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/common"
	"github.com/handsonicv4/Chocolate-3D/engine/light"
)

// Vertex input slots on the input assembler.
const (
	SlotInputPosition     uint32 = 0
	SlotInputNormal       uint32 = 1
	SlotInputTangent      uint32 = 2
	SlotInputBinormal     uint32 = 3
	SlotInputTexCoord     uint32 = 4
	SlotInputBlendIndices uint32 = 5
	SlotInputBlendWeight  uint32 = 6
	SlotInputColor        uint32 = 7
)

// Shader resource slots. Textures are bound to the pixel shader, the anim matrix and
// instance buffers to the vertex shader and the light buffer to the pixel shader.
const (
	SlotTextureDiffuse    uint32 = 0
	SlotTextureNormal     uint32 = 1
	SlotTextureAmbient    uint32 = 2
	SlotTextureSpecular   uint32 = 3
	SlotTextureAnimMatrix uint32 = 4
	SlotTextureInstance   uint32 = 5
	SlotTextureLight      uint32 = 6
)

// Constant buffer slots shared by the vertex, pixel and compute stages.
const (
	SlotCBufferFrame  uint32 = 0
	SlotCBufferObject uint32 = 1
)

// FrameDataSize is the byte size of the per-frame constant buffer.
const FrameDataSize = 160

// FrameData is the per-frame constant buffer payload.
//
// Layout (160 bytes):
//
//	offset   0: projection matrix
//	offset  64: inverse projection matrix
//	offset 128: camera position (vec3)
//	offset 140: number of lights
//	offset 144: screen width, screen height (uint32)
//	offset 152: padding
type FrameData struct {
	Projection       mgl32.Mat4
	ProjectionInv    mgl32.Mat4
	CameraPos        mgl32.Vec3
	NumLights        uint32
	ScreenDimensions [2]uint32
}

// Marshal encodes the frame data little-endian.
func (f *FrameData) Marshal() []byte {
	buf := make([]byte, FrameDataSize)
	common.PutMat4(buf[0:], f.Projection)
	common.PutMat4(buf[64:], f.ProjectionInv)
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(f.CameraPos[i]))
	}
	binary.LittleEndian.PutUint32(buf[140:], f.NumLights)
	binary.LittleEndian.PutUint32(buf[144:], f.ScreenDimensions[0])
	binary.LittleEndian.PutUint32(buf[148:], f.ScreenDimensions[1])
	return buf
}

// FrameStats summarizes one call to Frame. Grid is set when Tiled reports that the
// light tiling dispatch ran. Instances totals the instance count across all draws.
type FrameStats struct {
	Tiled     bool
	Grid      light.Grid
	Draws     int
	Instances int
}
