package device

import "github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"

// drawStateMissing names the input-assembler bindings an indexed draw needs that are not bound.
// Unbinding deletes a key, so presence in the map means bound.
func drawStateMissing[R any](bindings map[bindKey]R) []string {
	var missing []string
	if _, ok := bindings[bindKey{enums.StageInputAssembler, enums.BindIndexBuffer, 0}]; !ok {
		missing = append(missing, "index buffer")
	}
	if !anyBound(bindings, enums.StageInputAssembler, enums.BindVertexBuffer) {
		missing = append(missing, "vertex buffer")
	}
	return missing
}

// dispatchStateMissing names the compute bindings a dispatch needs that are not bound.
func dispatchStateMissing[R any](bindings map[bindKey]R) []string {
	if !anyBound(bindings, enums.StageComputeShader, enums.BindConstantBuffer) {
		return []string{"compute constant buffer"}
	}
	return nil
}

func anyBound[R any](bindings map[bindKey]R, stage enums.PipelineStage, flag enums.BindFlag) bool {
	for k := range bindings {
		if k.stage == stage && k.flag == flag {
			return true
		}
	}
	return false
}
