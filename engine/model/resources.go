package model

import "github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"

// MeshResource holds the GPU buffers of one uploaded mesh. Absent streams are resource.InvalidHandle.
type MeshResource struct {
	Position   resource.Handle
	Normal     resource.Handle
	Tangent    resource.Handle
	Bitangent  resource.Handle
	TexCoord   resource.Handle
	Color      resource.Handle
	BoneIndex  resource.Handle
	BoneWeight resource.Handle
	Index      resource.Handle

	IndexCount uint32
	MaterialID int
}

// NewMeshResource returns a MeshResource with every handle absent.
func NewMeshResource() MeshResource {
	return MeshResource{
		Position:   resource.InvalidHandle,
		Normal:     resource.InvalidHandle,
		Tangent:    resource.InvalidHandle,
		Bitangent:  resource.InvalidHandle,
		TexCoord:   resource.InvalidHandle,
		Color:      resource.InvalidHandle,
		BoneIndex:  resource.InvalidHandle,
		BoneWeight: resource.InvalidHandle,
		Index:      resource.InvalidHandle,
	}
}

// Handles lists every buffer handle of the mesh, including absent ones.
func (m *MeshResource) Handles() []resource.Handle {
	return []resource.Handle{
		m.Position, m.Normal, m.Color, m.TexCoord, m.Index,
		m.Tangent, m.Bitangent, m.BoneIndex, m.BoneWeight,
	}
}

// MaterialResource holds the texture handles of one uploaded material. Absent maps are resource.InvalidHandle.
type MaterialResource struct {
	Diffuse  resource.Handle
	Normal   resource.Handle
	Ambient  resource.Handle
	Specular resource.Handle
}

// NewMaterialResource returns a MaterialResource with every map absent.
func NewMaterialResource() MaterialResource {
	return MaterialResource{
		Diffuse:  resource.InvalidHandle,
		Normal:   resource.InvalidHandle,
		Ambient:  resource.InvalidHandle,
		Specular: resource.InvalidHandle,
	}
}

// Handles lists every texture handle of the material, including absent ones.
func (m *MaterialResource) Handles() []resource.Handle {
	return []resource.Handle{m.Ambient, m.Diffuse, m.Normal, m.Specular}
}

// Flags derives the per-object constant buffer flags for drawing mesh with this material.
// Normal mapping requires the normal map and both tangent streams.
//
// Parameters:
//   - mesh: the mesh drawn with the material
//   - animated: the owning model's animation flag
//
// Returns:
//   - ObjectData: the flags to upload
func (m *MaterialResource) Flags(mesh *MeshResource, animated bool) ObjectData {
	return ObjectData{
		HasAnimation:   animated,
		HasAmbientMap:  m.Ambient != resource.InvalidHandle,
		HasDiffuseMap:  m.Diffuse != resource.InvalidHandle,
		HasSpecularMap: m.Specular != resource.InvalidHandle,
		HasNormalMap: m.Normal != resource.InvalidHandle &&
			mesh.Tangent != resource.InvalidHandle &&
			mesh.Bitangent != resource.InvalidHandle,
	}
}

// ModelResource is the GPU-side record of a loaded model.
type ModelResource struct {
	Model          *Model
	HasAnimation   bool
	AnimationCount int
	Meshes         []MeshResource
	Materials      []MaterialResource
}

// Material returns the material drawn with a mesh. An out-of-range index yields a material with no maps.
func (r *ModelResource) Material(mesh *MeshResource) MaterialResource {
	if mesh.MaterialID < 0 || mesh.MaterialID >= len(r.Materials) {
		return NewMaterialResource()
	}
	return r.Materials[mesh.MaterialID]
}
