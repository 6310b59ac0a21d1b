package model

// ModelBuilderOption is a function that configures a Model during construction.
type ModelBuilderOption func(*Model)

// WithName sets the model identifier.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a Model
func WithName(name string) ModelBuilderOption {
	return func(m *Model) {
		m.Name = name
	}
}

// WithMeshes sets the model meshes.
//
// Parameters:
//   - meshes: the meshes in draw order
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a Model
func WithMeshes(meshes ...Mesh) ModelBuilderOption {
	return func(m *Model) {
		m.Meshes = meshes
	}
}

// WithMaterials sets the materials referenced by Mesh.MaterialIndex.
func WithMaterials(materials ...Material) ModelBuilderOption {
	return func(m *Model) {
		m.Materials = materials
	}
}

// WithAnimations sets the animation clips and marks the model animated when any are present.
func WithAnimations(clips ...AnimationClip) ModelBuilderOption {
	return func(m *Model) {
		m.Animations = clips
		if len(clips) > 0 {
			m.HasAnimation = true
		}
	}
}

// WithAnimated marks the model as skinned.
//
// Parameters:
//   - animated: true if instances upload skinning matrices
//
// Returns:
//   - ModelBuilderOption: a function that applies the flag to a Model
func WithAnimated(animated bool) ModelBuilderOption {
	return func(m *Model) {
		m.HasAnimation = animated
	}
}
