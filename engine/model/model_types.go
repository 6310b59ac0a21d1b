package model

import "github.com/go-gl/mathgl/mgl32"

// Bone is one joint influencing a mesh.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// Offset transforms from mesh space to bone space at bind pose (the inverse bind matrix).
	Offset mgl32.Mat4
}

// AnimationClip names an animation bundled with a model.
type AnimationClip struct {
	Name string

	// Duration is the total length of the animation in seconds.
	Duration float32

	// Channels is the number of animated node properties.
	Channels int
}

// Texture is decoded RGBA8 image data, 4 bytes per texel in row-major order.
type Texture struct {
	Name   string
	Width  uint32
	Height uint32
	Pixels []byte
}

// Material holds the surface maps of one material. A nil map is absent.
type Material struct {
	Name      string
	BaseColor mgl32.Vec4

	Diffuse  *Texture
	Normal   *Texture
	Ambient  *Texture
	Specular *Texture
}

// Mesh is the vertex streams of one draw. Absent streams are empty slices.
type Mesh struct {
	Name string

	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3
	TexCoords  []mgl32.Vec2
	Colors     []mgl32.Vec4

	// BoneIndices and BoneWeights hold four influences per vertex.
	BoneIndices [][4]uint32
	BoneWeights [][4]float32

	Indices []uint32

	// MaterialIndex references Model.Materials.
	MaterialIndex int

	// Bones are the joints this mesh is skinned to, in skinning-matrix order.
	Bones []Bone
}

// HasTangentFrame reports whether both tangent and bitangent streams are present.
func (m *Mesh) HasTangentFrame() bool {
	return len(m.Tangents) > 0 && len(m.Bitangents) > 0
}

// HasSkin reports whether bone influence streams are present.
func (m *Mesh) HasSkin() bool {
	return len(m.BoneIndices) > 0 && len(m.BoneWeights) > 0
}
