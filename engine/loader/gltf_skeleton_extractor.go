package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	doc *gltf.Document
}

// gltfSkeletonExtractor resolves the bones a mesh is skinned to.
type gltfSkeletonExtractor interface {
	// ExtractBones reads the joints of one skin in joint order.
	// Joints without an inverse bind matrix get the identity.
	//
	// Parameters:
	//   - skinIndex: the index of the skin in the document
	//
	// Returns:
	//   - []model.Bone: the bones in skinning-matrix order
	//   - error: error if the skin or its matrices cannot be read
	ExtractBones(skinIndex int) ([]model.Bone, error)

	// FindSkinForMesh returns the skin of the first node instancing the mesh, or -1.
	FindSkinForMesh(meshIndex int) int

	// BonesForMesh combines FindSkinForMesh and ExtractBones. Unskinned meshes yield nil.
	BonesForMesh(meshIndex int) ([]model.Bone, error)
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

func newGLTFSkeletonExtractor(doc *gltf.Document) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{doc: doc}
}

func (e *gltfSkeletonExtractorImpl) FindSkinForMesh(meshIndex int) int {
	for _, node := range e.doc.Nodes {
		if node.Mesh != nil && *node.Mesh == meshIndex && node.Skin != nil {
			return *node.Skin
		}
	}
	return -1
}

func (e *gltfSkeletonExtractorImpl) BonesForMesh(meshIndex int) ([]model.Bone, error) {
	skin := e.FindSkinForMesh(meshIndex)
	if skin < 0 {
		return nil, nil
	}
	return e.ExtractBones(skin)
}

func (e *gltfSkeletonExtractorImpl) ExtractBones(skinIndex int) ([]model.Bone, error) {
	if skinIndex < 0 || skinIndex >= len(e.doc.Skins) {
		return nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := e.doc.Skins[skinIndex]

	var inverseBind [][4][4]float32
	if skin.InverseBindMatrices != nil && *skin.InverseBindMatrices < len(e.doc.Accessors) {
		data, err := modeler.ReadAccessor(e.doc, e.doc.Accessors[*skin.InverseBindMatrices], nil)
		if err != nil {
			return nil, fmt.Errorf("read inverse bind matrices: %w", err)
		}
		mats, ok := data.([][4][4]float32)
		if !ok {
			return nil, fmt.Errorf("inverse bind matrices: unexpected accessor type %T", data)
		}
		inverseBind = mats
	}

	bones := make([]model.Bone, len(skin.Joints))
	for i, joint := range skin.Joints {
		if joint < 0 || joint >= len(e.doc.Nodes) {
			return nil, fmt.Errorf("joint %d: invalid node index %d", i, joint)
		}
		bones[i].Name = e.doc.Nodes[joint].Name
		if bones[i].Name == "" {
			bones[i].Name = fmt.Sprintf("bone_%d", i)
		}
		bones[i].Offset = mgl32.Ident4()
		if i < len(inverseBind) {
			bones[i].Offset = columnsToMat4(inverseBind[i])
		}
	}
	return bones, nil
}

// columnsToMat4 converts a glTF MAT4 accessor element (four columns) to an mgl32 matrix.
func columnsToMat4(cols [4][4]float32) mgl32.Mat4 {
	var m mgl32.Mat4
	for c := range 4 {
		for r := range 4 {
			m[c*4+r] = cols[c][r]
		}
	}
	return m
}
