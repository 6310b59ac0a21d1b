package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/qmuntal/gltf"
	log "github.com/sirupsen/logrus"
)

// gltfLoaderBackendImpl imports glTF 2.0 and GLB files through github.com/qmuntal/gltf.
type gltfLoaderBackendImpl struct {
	logger log.FieldLogger
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend(logger log.FieldLogger) loaderBackend {
	return &gltfLoaderBackendImpl{logger: logger}
}

// Load opens a .gltf or .glb file and converts every mesh primitive into a model.Mesh.
// Textures that fail to load are logged and left absent.
func (b *gltfLoaderBackendImpl) Load(path string) (*model.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return b.convert(doc, filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func (b *gltfLoaderBackendImpl) convert(doc *gltf.Document, dir, name string) (*model.Model, error) {
	textures := newGLTFMaterialExtractor(doc, dir, b.logger)
	materials := textures.ExtractAllMaterials()

	skeletons := newGLTFSkeletonExtractor(doc)
	meshes := newGLTFMeshExtractor(doc)

	var out []model.Mesh
	animated := false
	for mi := range doc.Meshes {
		prims, err := meshes.ExtractMesh(mi)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", mi, err)
		}
		bones, err := skeletons.BonesForMesh(mi)
		if err != nil {
			return nil, fmt.Errorf("mesh %d skin: %w", mi, err)
		}
		for i := range prims {
			if len(bones) > 0 && prims[i].HasSkin() {
				prims[i].Bones = bones
				animated = true
			}
			if prims[i].MaterialIndex >= len(materials) {
				prims[i].MaterialIndex = 0
			}
		}
		out = append(out, prims...)
	}
	if len(materials) == 0 {
		materials = []model.Material{defaultMaterial()}
	}

	return model.NewModel(
		model.WithName(name),
		model.WithMeshes(out...),
		model.WithMaterials(materials...),
		model.WithAnimations(newGLTFAnimationExtractor(doc).ExtractAllAnimations()...),
		model.WithAnimated(animated),
	), nil
}
