package engine

import (
	"fmt"

	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"
	log "github.com/sirupsen/logrus"
)

// textureBind is the bind flag set of material textures.
const textureBind = enums.BindShaderResource | enums.BindRenderTarget

func (e *engine) LoadModel(m *model.Model) (int, error) {
	if m == nil {
		return 0, fmt.Errorf("load model: nil model")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	id := 0
	for candidate := 1; candidate <= e.cfg.MaxModels; candidate++ {
		if _, used := e.models[candidate]; !used {
			id = candidate
			break
		}
	}
	if id == 0 {
		return 0, fmt.Errorf("load model %q: %w", m.Name, ErrModelIDsExhausted)
	}

	mr := &model.ModelResource{
		Model:          m,
		HasAnimation:   m.HasAnimation,
		AnimationCount: len(m.Animations),
		Meshes:         make([]model.MeshResource, 0, len(m.Meshes)),
		Materials:      make([]model.MaterialResource, 0, len(m.Materials)),
	}
	logger := e.logger.WithFields(log.Fields{"model": m.Name, "id": id})

	for i := range m.Meshes {
		mr.Meshes = append(mr.Meshes, e.uploadMesh(logger.WithField("mesh", i), &m.Meshes[i], m.HasAnimation))
	}
	for i := range m.Materials {
		mr.Materials = append(mr.Materials, e.uploadMaterial(logger.WithField("material", i), &m.Materials[i]))
	}

	e.models[id] = mr
	logger.WithFields(log.Fields{"meshes": len(mr.Meshes), "materials": len(mr.Materials)}).Info("model loaded")
	return id, nil
}

// uploadMesh creates the vertex and index buffers of one mesh.
// Streams that fail to upload stay absent and are logged.
func (e *engine) uploadMesh(logger log.FieldLogger, mesh *model.Mesh, animated bool) model.MeshResource {
	res := model.NewMeshResource()
	stream := func(name string, bind enums.BindFlag, data []byte, stride uint32) resource.Handle {
		if len(data) == 0 {
			return resource.InvalidHandle
		}
		h := e.resources.CreateBuffer(bind, false, uint32(len(data)), data, stride)
		if h == resource.InvalidHandle {
			logger.WithField("stream", name).Warn("vertex stream upload failed")
		}
		return h
	}

	res.Position = stream("position", enums.BindVertexBuffer, model.Vec3Bytes(mesh.Positions), model.StrideVec3)
	res.Normal = stream("normal", enums.BindVertexBuffer, model.Vec3Bytes(mesh.Normals), model.StrideVec3)
	if mesh.HasTangentFrame() {
		res.Tangent = stream("tangent", enums.BindVertexBuffer, model.Vec3Bytes(mesh.Tangents), model.StrideVec3)
		res.Bitangent = stream("bitangent", enums.BindVertexBuffer, model.Vec3Bytes(mesh.Bitangents), model.StrideVec3)
	}
	res.TexCoord = stream("texcoord", enums.BindVertexBuffer, model.Vec2Bytes(mesh.TexCoords), model.StrideVec2)
	res.Color = stream("color", enums.BindVertexBuffer, model.Vec4Bytes(mesh.Colors), model.StrideVec4)
	if animated && mesh.HasSkin() {
		res.BoneIndex = stream("bone index", enums.BindVertexBuffer, model.BoneIndexBytes(mesh.BoneIndices), model.StrideBoneIndex)
		res.BoneWeight = stream("bone weight", enums.BindVertexBuffer, model.WeightBytes(mesh.BoneWeights), model.StrideBoneWt)
	}
	res.Index = stream("index", enums.BindIndexBuffer, model.IndexBytes(mesh.Indices), model.StrideIndex)
	if res.Index != resource.InvalidHandle {
		res.IndexCount = uint32(len(mesh.Indices))
	}
	res.MaterialID = mesh.MaterialIndex
	return res
}

// uploadMaterial creates the textures of one material. Absent or failed maps stay invalid.
func (e *engine) uploadMaterial(logger log.FieldLogger, mat *model.Material) model.MaterialResource {
	res := model.NewMaterialResource()
	texture := func(name string, tex *model.Texture) resource.Handle {
		if tex == nil || tex.Width == 0 || tex.Height == 0 {
			return resource.InvalidHandle
		}
		h := e.resources.CreateTexture2D(textureBind, enums.FormatR8G8B8A8Unorm, false, true, tex.Width, tex.Height, tex.Pixels)
		if h == resource.InvalidHandle {
			logger.WithFields(log.Fields{"map": name, "texture": tex.Name}).Warn("texture upload failed")
		}
		return h
	}

	res.Diffuse = texture("diffuse", mat.Diffuse)
	res.Normal = texture("normal", mat.Normal)
	res.Ambient = texture("ambient", mat.Ambient)
	res.Specular = texture("specular", mat.Specular)
	return res
}

func (e *engine) UnloadModel(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.unloadModel(id) {
		return fmt.Errorf("unload model %d: %w", id, ErrModelNotFound)
	}
	return nil
}

// unloadModel releases mesh handles, then material handles, then drops the record. Callers hold e.mu.
func (e *engine) unloadModel(id int) bool {
	mr, ok := e.models[id]
	if !ok {
		return false
	}
	for i := range mr.Meshes {
		for _, h := range mr.Meshes[i].Handles() {
			if h != resource.InvalidHandle {
				e.resources.Clear(h)
			}
		}
	}
	for i := range mr.Materials {
		for _, h := range mr.Materials[i].Handles() {
			if h != resource.InvalidHandle {
				e.resources.Clear(h)
			}
		}
	}
	delete(e.models, id)
	e.logger.WithField("id", id).Info("model unloaded")
	return true
}

func (e *engine) Model(id int) (*model.ModelResource, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mr, ok := e.models[id]
	return mr, ok
}

func (e *engine) ModelIDs() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortedModelIDs()
}
