package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	doc *gltf.Document
}

// gltfMeshExtractor converts glTF mesh primitives into model.Mesh vertex streams.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index.
	// Returns one model.Mesh per primitive (glTF meshes can have multiple primitives).
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []model.Mesh: one Mesh per primitive
	//   - error: error if an accessor cannot be read
	ExtractMesh(meshIndex int) ([]model.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(doc *gltf.Document) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{doc: doc}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) ([]model.Mesh, error) {
	if meshIndex < 0 || meshIndex >= len(e.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	mesh := e.doc.Meshes[meshIndex]

	var result []model.Mesh
	for primIdx, prim := range mesh.Primitives {
		m, err := e.extractPrimitive(prim, mesh.Name, primIdx)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", primIdx, err)
		}
		result = append(result, m)
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) accessor(prim *gltf.Primitive, attr string) (*gltf.Accessor, bool) {
	idx, ok := prim.Attributes[attr]
	if !ok || idx < 0 || idx >= len(e.doc.Accessors) {
		return nil, false
	}
	return e.doc.Accessors[idx], true
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltf.Primitive, meshName string, primIndex int) (model.Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return model.Mesh{}, fmt.Errorf("unsupported primitive mode %v (only triangles supported)", prim.Mode)
	}

	name := meshName
	if name == "" {
		name = fmt.Sprintf("mesh_%d", primIndex)
	} else if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}
	out := model.Mesh{Name: name}
	if prim.Material != nil {
		out.MaterialIndex = *prim.Material
	}

	acr, ok := e.accessor(prim, gltf.POSITION)
	if !ok {
		return model.Mesh{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(e.doc, acr, nil)
	if err != nil {
		return model.Mesh{}, fmt.Errorf("read positions: %w", err)
	}
	out.Positions = toVec3(positions)
	vertexCount := len(positions)

	if acr, ok := e.accessor(prim, gltf.NORMAL); ok {
		normals, err := modeler.ReadNormal(e.doc, acr, nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read normals: %w", err)
		}
		out.Normals = toVec3(normals)
	}

	if acr, ok := e.accessor(prim, gltf.TEXCOORD_0); ok {
		uvs, err := modeler.ReadTextureCoord(e.doc, acr, nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read texcoords: %w", err)
		}
		out.TexCoords = make([]mgl32.Vec2, len(uvs))
		for i, uv := range uvs {
			out.TexCoords[i] = uv
		}
	}

	if acr, ok := e.accessor(prim, gltf.COLOR_0); ok {
		colors, err := modeler.ReadColor(e.doc, acr, nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read colors: %w", err)
		}
		out.Colors = make([]mgl32.Vec4, len(colors))
		for i, c := range colors {
			out.Colors[i] = mgl32.Vec4{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255}
		}
	}

	// glTF TANGENT is VEC4: xyz = tangent direction, w = handedness (±1).
	var tangents [][4]float32
	if acr, ok := e.accessor(prim, gltf.TANGENT); ok {
		tangents, err = modeler.ReadTangent(e.doc, acr, nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read tangents: %w", err)
		}
	}

	if acr, ok := e.accessor(prim, gltf.JOINTS_0); ok {
		joints, err := modeler.ReadJoints(e.doc, acr, nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read joints: %w", err)
		}
		out.BoneIndices = make([][4]uint32, len(joints))
		for i, j := range joints {
			out.BoneIndices[i] = [4]uint32{uint32(j[0]), uint32(j[1]), uint32(j[2]), uint32(j[3])}
		}
	}

	if acr, ok := e.accessor(prim, gltf.WEIGHTS_0); ok {
		out.BoneWeights, err = modeler.ReadWeights(e.doc, acr, nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read weights: %w", err)
		}
	}

	if prim.Indices != nil && *prim.Indices < len(e.doc.Accessors) {
		out.Indices, err = modeler.ReadIndices(e.doc, e.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("read indices: %w", err)
		}
	} else {
		out.Indices = make([]uint32, vertexCount)
		for i := range out.Indices {
			out.Indices[i] = uint32(i)
		}
	}

	// Normals must exist before tangents are orthonormalized against them.
	if len(out.Normals) != vertexCount && len(out.Indices) >= 3 {
		out.Normals = generateNormals(out.Positions, out.Indices)
	}
	if len(tangents) != vertexCount && len(out.TexCoords) == vertexCount && len(out.Indices) >= 3 {
		tangents = generateTangents(out.Positions, out.Normals, out.TexCoords, out.Indices)
	}
	if len(tangents) == vertexCount && len(out.Normals) == vertexCount {
		out.Tangents, out.Bitangents = splitTangentFrame(out.Normals, tangents)
	}

	return out, nil
}

func toVec3(in [][3]float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// splitTangentFrame derives the bitangent stream as cross(N, T) scaled by the handedness sign.
func splitTangentFrame(normals []mgl32.Vec3, tangents [][4]float32) ([]mgl32.Vec3, []mgl32.Vec3) {
	tan := make([]mgl32.Vec3, len(tangents))
	bitan := make([]mgl32.Vec3, len(tangents))
	for i, t := range tangents {
		tan[i] = mgl32.Vec3{t[0], t[1], t[2]}
		bitan[i] = normals[i].Cross(tan[i]).Mul(t[3])
	}
	return tan, bitan
}

// generateNormals computes smooth vertex normals by accumulating area-weighted face
// normals onto every vertex of each triangle. Degenerate vertices point up.
//
// Parameters:
//   - positions: the vertex positions
//   - indices: the triangle index buffer (must be a multiple of 3)
//
// Returns:
//   - []mgl32.Vec3: one unit normal per vertex
func generateNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	n := len(positions)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		p0 := positions[i0]
		face := positions[i1].Sub(p0).Cross(positions[i2].Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	for i := range accum {
		if accum[i].Len() < 1e-6 {
			accum[i] = mgl32.Vec3{0, 1, 0}
			continue
		}
		accum[i] = accum[i].Normalize()
	}
	return accum
}

// generateTangents computes per-vertex tangents from triangle UV gradients,
// orthonormalized against the vertex normal. The W component stores handedness (±1).
//
// Parameters:
//   - positions: the vertex positions
//   - normals: the unit vertex normals
//   - uvs: the vertex texture coordinates
//   - indices: the triangle index buffer (must be a multiple of 3)
//
// Returns:
//   - [][4]float32: one tangent per vertex
func generateTangents(positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) [][4]float32 {
	n := len(positions)
	tan := make([]mgl32.Vec3, n)
	btan := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		edge1 := positions[i1].Sub(positions[i0])
		edge2 := positions[i2].Sub(positions[i0])
		duv1 := uvs[i1].Sub(uvs[i0])
		duv2 := uvs[i2].Sub(uvs[i0])

		det := duv1[0]*duv2[1] - duv1[1]*duv2[0]
		if det == 0 {
			continue
		}
		invDet := 1.0 / det

		t := edge1.Mul(duv2[1]).Sub(edge2.Mul(duv1[1])).Mul(invDet)
		b := edge2.Mul(duv1[0]).Sub(edge1.Mul(duv2[0])).Mul(invDet)
		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	}

	out := make([][4]float32, n)
	for i := range out {
		normal := normals[i]
		// Gram-Schmidt: T' = normalize(T - N * dot(N, T))
		ortho := tan[i].Sub(normal.Mul(normal.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			out[i] = [4]float32{1, 0, 0, 1}
			continue
		}
		ortho = ortho.Normalize()

		w := float32(1)
		if normal.Cross(ortho).Dot(btan[i]) < 0 {
			w = -1
		}
		out[i] = [4]float32{ortho[0], ortho[1], ortho[2], w}
	}
	return out
}
