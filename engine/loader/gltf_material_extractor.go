package loader

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/common"
	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	log "github.com/sirupsen/logrus"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	doc    *gltf.Document
	dir    string
	logger log.FieldLogger

	// images caches decoded images by image index so materials share textures.
	images map[int]*model.Texture
}

// gltfMaterialExtractor maps glTF PBR materials onto the four surface maps the renderer binds.
//
// The mapping is base color → diffuse, normal → normal, occlusion → ambient and
// metallic-roughness → specular.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, decoding any referenced texture data.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - model.Material: the extracted material
	//   - error: error if the index is out of range
	ExtractMaterial(materialIndex int) (model.Material, error)

	// ExtractAllMaterials extracts all materials from the document in index order.
	//
	// Returns:
	//   - []model.Material: all extracted materials
	ExtractAllMaterials() []model.Material
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(doc *gltf.Document, dir string, logger log.FieldLogger) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{
		doc:    doc,
		dir:    dir,
		logger: logger,
		images: make(map[int]*model.Texture),
	}
}

func defaultMaterial() model.Material {
	return model.Material{Name: "default", BaseColor: mgl32.Vec4{1, 1, 1, 1}}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (model.Material, error) {
	if materialIndex < 0 || materialIndex >= len(e.doc.Materials) {
		return model.Material{}, fmt.Errorf("material index %d out of range", materialIndex)
	}
	mat := e.doc.Materials[materialIndex]

	result := defaultMaterial()
	result.Name = mat.Name

	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		result.BaseColor = mgl32.Vec4{float32(cf[0]), float32(cf[1]), float32(cf[2]), float32(cf[3])}
		if pbr.BaseColorTexture != nil {
			result.Diffuse = e.texture(pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			result.Specular = e.texture(pbr.MetallicRoughnessTexture.Index)
		}
	}
	if mat.NormalTexture != nil && mat.NormalTexture.Index != nil {
		result.Normal = e.texture(*mat.NormalTexture.Index)
	}
	if mat.OcclusionTexture != nil && mat.OcclusionTexture.Index != nil {
		result.Ambient = e.texture(*mat.OcclusionTexture.Index)
	}
	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() []model.Material {
	out := make([]model.Material, 0, len(e.doc.Materials))
	for i := range e.doc.Materials {
		m, err := e.ExtractMaterial(i)
		if err != nil {
			m = defaultMaterial()
		}
		out = append(out, m)
	}
	return out
}

// texture resolves a texture index to decoded pixels. Failures are logged and yield nil.
func (e *gltfMaterialExtractorImpl) texture(textureIndex int) *model.Texture {
	if textureIndex < 0 || textureIndex >= len(e.doc.Textures) {
		return nil
	}
	src := e.doc.Textures[textureIndex].Source
	if src == nil || *src < 0 || *src >= len(e.doc.Images) {
		return nil
	}
	if tex, ok := e.images[*src]; ok {
		return tex
	}

	tex, err := e.decodeImage(*src)
	if err != nil {
		e.logger.WithFields(log.Fields{"image": *src}).WithError(err).Warn("texture skipped")
	}
	e.images[*src] = tex
	return tex
}

func (e *gltfMaterialExtractorImpl) decodeImage(imageIndex int) (*model.Texture, error) {
	img := e.doc.Images[imageIndex]
	imported := common.ImportedTexture{Name: img.Name, MimeType: img.MimeType}
	if imported.Name == "" {
		imported.Name = fmt.Sprintf("image_%d", imageIndex)
	}

	switch {
	case img.BufferView != nil:
		if *img.BufferView >= len(e.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		raw, err := modeler.ReadBufferView(e.doc, e.doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, fmt.Errorf("read buffer view: %w", err)
		}
		imported.Data = raw
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("decode data uri: %w", err)
		}
		imported.Data = raw
	case img.URI != "":
		imported.Path = filepath.Join(e.dir, filepath.FromSlash(img.URI))
	default:
		return nil, fmt.Errorf("image has no source")
	}

	staged, err := imported.Decode()
	if err != nil {
		return nil, err
	}
	return &model.Texture{
		Name:   imported.Name,
		Width:  staged.Width,
		Height: staged.Height,
		Pixels: staged.Pixels,
	}, nil
}
