package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/common"
	"github.com/handsonicv4/Chocolate-3D/engine/light"
	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/device"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/resource"
	log "github.com/sirupsen/logrus"
)

// clearColor is the back buffer clear color.
var clearColor = [4]float32{0, 0, 0.5, 0}

func (e *engine) Frame() FrameStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.frame++
	var stats FrameStats

	e.updateFrameBuffer()
	e.updateLightBuffer()

	if e.needsTiling() {
		stats.Grid = e.tiling()
		stats.Tiled = true
		e.oldWidth = e.frameData.ScreenDimensions[0]
		e.oldHeight = e.frameData.ScreenDimensions[1]
		e.oldProjection = e.frameData.Projection
	}

	if err := e.resources.ResetRTV(e.backBuffer, clearColor); err != nil {
		e.logger.WithFields(log.Fields{"buffer": "back buffer", "frame": e.frame}).WithError(err).Error("clear failed")
	}
	if err := e.resources.ResetDSV(e.depthStencil, device.ClearDepth, 1.0, 0); err != nil {
		e.logger.WithFields(log.Fields{"buffer": "depth stencil", "frame": e.frame}).WithError(err).Error("clear failed")
	}

	for _, id := range e.sortedModelIDs() {
		draws, instances := e.renderModel(e.models[id])
		stats.Draws += draws
		stats.Instances += instances
	}

	if err := e.dev.Present(); err != nil {
		e.logger.WithFields(log.Fields{"frame": e.frame}).WithError(err).Error("present failed")
	}
	return stats
}

// upload writes data to a frame resource and logs a failure without aborting the frame.
func (e *engine) upload(name string, h resource.Handle, data []byte) {
	if err := e.resources.UpdateResourceData(h, data); err != nil {
		e.logger.WithFields(log.Fields{"buffer": name, "frame": e.frame}).WithError(err).Error("upload failed")
	}
}

func (e *engine) updateFrameBuffer() {
	projection := e.camera.Projection()
	e.frameData.Projection = projection
	e.frameData.ProjectionInv = projection.Inv()
	e.frameData.CameraPos = e.camera.Position()
	e.frameData.NumLights = uint32(min(len(e.lights), e.cfg.MaxLightNumber))
	e.frameData.ScreenDimensions = [2]uint32{uint32(e.width), uint32(e.height)}
	e.upload("frame", e.frameBuffer, e.frameData.Marshal())
}

func (e *engine) updateLightBuffer() {
	if len(e.lights) == 0 {
		return
	}
	lights := e.lights
	if len(lights) > e.cfg.MaxLightNumber {
		e.logger.WithFields(log.Fields{"lights": len(lights), "max": e.cfg.MaxLightNumber}).Warn("light list truncated")
		lights = lights[:e.cfg.MaxLightNumber]
	}
	e.upload("light", e.lightBuffer, light.MarshalLights(lights))
}

// needsTiling reports whether the resolution or projection changed since the last dispatch.
func (e *engine) needsTiling() bool {
	return e.oldWidth != e.frameData.ScreenDimensions[0] ||
		e.oldHeight != e.frameData.ScreenDimensions[1] ||
		e.oldProjection != e.frameData.Projection
}

// tiling dispatches the light culling compute pass, one group per tile batch.
func (e *engine) tiling() light.Grid {
	grid := light.TileGrid(e.width, e.height, e.cfg.TileSize, e.cfg.TileBatchSize)
	e.dev.Dispatch(grid.BatchesX, grid.BatchesY, 1)
	e.logger.WithFields(log.Fields{
		"tiles_x":   grid.TilesX,
		"tiles_y":   grid.TilesY,
		"batches_x": grid.BatchesX,
		"batches_y": grid.BatchesY,
	}).Debug("light tiling")
	return grid
}

// meshBindSet binds a mesh's vertex streams and index buffer. Absent streams unbind their slot.
func meshBindSet(m *model.MeshResource) resource.BindSet {
	vb := func(slot uint32, h resource.Handle) resource.Binding {
		return resource.Binding{Stage: enums.StageInputAssembler, Kind: enums.BindVertexBuffer, Slot: slot, Handle: h}
	}
	return resource.BindSet{
		vb(SlotInputPosition, m.Position),
		vb(SlotInputNormal, m.Normal),
		vb(SlotInputTangent, m.Tangent),
		vb(SlotInputBinormal, m.Bitangent),
		vb(SlotInputTexCoord, m.TexCoord),
		vb(SlotInputBlendIndices, m.BoneIndex),
		vb(SlotInputBlendWeight, m.BoneWeight),
		vb(SlotInputColor, m.Color),
		{Stage: enums.StageInputAssembler, Kind: enums.BindIndexBuffer, Slot: 0, Handle: m.Index},
	}
}

// materialBindSet binds a material's maps to the pixel shader.
func materialBindSet(m *model.MaterialResource) resource.BindSet {
	srv := func(slot uint32, h resource.Handle) resource.Binding {
		return resource.Binding{Stage: enums.StagePixelShader, Kind: enums.BindShaderResource, Slot: slot, Handle: h}
	}
	return resource.BindSet{
		srv(SlotTextureDiffuse, m.Diffuse),
		srv(SlotTextureNormal, m.Normal),
		srv(SlotTextureAmbient, m.Ambient),
		srv(SlotTextureSpecular, m.Specular),
	}
}

// renderModel draws every mesh of a model once, instanced over its visible instances.
func (e *engine) renderModel(mr *model.ModelResource) (int, int) {
	draws, instances := 0, 0
	for i := range mr.Meshes {
		mesh := &mr.Meshes[i]
		material := mr.Material(mesh)

		e.resources.ApplyBindSet(meshBindSet(mesh))
		e.resources.ApplyBindSet(materialBindSet(&material))

		obj := material.Flags(mesh, mr.HasAnimation)
		e.upload("object", e.objBuffer, obj.Marshal())

		packed, _ := e.updateInstanceBuffer(mr.Model, i)
		e.dev.DrawIndexedInstanced(mesh.IndexCount, uint32(len(packed)))
		draws++
		instances += len(packed)
	}
	return draws, instances
}

func (e *engine) UpdateInstanceBuffer(m *model.Model, meshIndex int) ([]model.InstanceData, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updateInstanceBuffer(m, meshIndex)
}

func (e *engine) updateInstanceBuffer(m *model.Model, meshIndex int) ([]model.InstanceData, int) {
	if m == nil || meshIndex < 0 || meshIndex >= len(m.Meshes) {
		return nil, 0
	}
	stride := len(m.Meshes[meshIndex].Bones)
	viewProjection := e.camera.Projection().Mul4(e.camera.View())

	var (
		packed      []model.InstanceData
		skin        []mgl32.Mat4
		dropped     int
		skinDropped int
	)
	for _, inst := range m.Instances() {
		if !inst.Visible {
			continue
		}
		if len(packed) >= e.cfg.MaxInstances {
			dropped++
			continue
		}
		if m.HasAnimation && (len(packed)+1)*stride > e.cfg.NumBonePerBatch {
			skinDropped++
			continue
		}
		packed = append(packed, model.InstanceData{
			Color:            inst.Color,
			World:            inst.Transform,
			WVP:              viewProjection.Mul4(inst.Transform),
			BindMatrixOffset: uint32(len(packed) * stride),
		})
		if m.HasAnimation {
			skin = append(skin, fitBones(inst.BindMatrix(meshIndex), stride)...)
		}
	}
	if dropped > 0 {
		e.logger.WithFields(log.Fields{"model": m.Name, "dropped": dropped, "max": e.cfg.MaxInstances}).Warn("instances over capacity")
	}
	if skinDropped > 0 {
		e.logger.WithFields(log.Fields{"model": m.Name, "dropped": skinDropped, "max": e.cfg.NumBonePerBatch}).Warn("skinning matrices over capacity")
	}

	e.upload("instance", e.instanceBuffer, model.MarshalInstances(packed))
	if m.HasAnimation {
		e.upload("anim matrix", e.animBuffer, common.Mat4Bytes(skin))
	}
	return packed, len(skin)
}

// fitBones returns exactly n skinning matrices, padding missing bones with identity.
func fitBones(mats []mgl32.Mat4, n int) []mgl32.Mat4 {
	if len(mats) == n {
		return mats
	}
	out := make([]mgl32.Mat4, n)
	for i := range out {
		if i < len(mats) {
			out[i] = mats[i]
		} else {
			out[i] = mgl32.Ident4()
		}
	}
	return out
}
