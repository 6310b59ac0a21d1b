package loader

import "github.com/handsonicv4/Chocolate-3D/engine/model"

// loaderBackend defines the interface for importing one model file format.
// Concrete implementations (e.g., gltfLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Load performs a full model import from the given file path.
	// This extracts meshes, bones, animations, and materials.
	//
	// Parameters:
	//   - path: the file to import
	//
	// Returns:
	//   - *model.Model: the imported model
	//   - error: error if the file cannot be read or decoded
	Load(path string) (*model.Model, error)
}
