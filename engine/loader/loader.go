package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/handsonicv4/Chocolate-3D/engine/model"
	log "github.com/sirupsen/logrus"
)

// ErrUnsupportedFormat is returned for a file extension no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.RWMutex

	modelCache map[string]*model.Model
	backends   map[string]loaderBackend
	logger     log.FieldLogger
}

// Loader imports model files into model.Model values ready for the frame orchestrator and caches them by path.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.Model: the loaded and cached model
	//   - error: ErrUnsupportedFormat or a wrapped backend error
	Load(path string) (*model.Model, error)

	// Get retrieves a cached model by path. Returns nil if not found.
	//
	// Parameters:
	//   - path: the cache key to look up
	//
	// Returns:
	//   - *model.Model: the cached model or nil
	Get(path string) *model.Model

	// Evict drops a cached model so the next Load re-imports it.
	Evict(path string)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF backend registered for .gltf and .glb files.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         &sync.RWMutex{},
		modelCache: make(map[string]*model.Model),
		backends:   make(map[string]loaderBackend),
		logger:     log.StandardLogger(),
	}
	for _, option := range options {
		option(l)
	}
	gltfBackend := newGLTFLoaderBackend(l.logger)
	l.backends[".gltf"] = gltfBackend
	l.backends[".glb"] = gltfBackend
	return l
}

// LoadGLTF imports a glTF or GLB file without caching.
//
// Parameters:
//   - path: the .gltf or .glb file
//
// Returns:
//   - *model.Model: the imported model
//   - error: error if the file cannot be opened or decoded
func LoadGLTF(path string) (*model.Model, error) {
	m, err := newGLTFLoaderBackend(log.StandardLogger()).Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

func (l *loader) Load(path string) (*model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	m, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	l.logger.WithFields(log.Fields{
		"path":      path,
		"meshes":    len(m.Meshes),
		"materials": len(m.Materials),
		"animated":  m.HasAnimation,
	}).Debug("model imported")

	l.mu.Lock()
	l.modelCache[path] = m
	l.mu.Unlock()
	return m, nil
}

func (l *loader) Get(path string) *model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[path]
}

func (l *loader) Evict(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.modelCache, path)
}

// resolveBackend selects the backend by file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if b, ok := l.backends[ext]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
}
