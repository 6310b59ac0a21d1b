package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4Size is the byte size of a column-major 4x4 float32 matrix.
const Mat4Size = 64

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PutMat4 writes m into buf in column-major little-endian order.
//
// Parameters:
//   - buf: destination, at least Mat4Size bytes
//   - m: the matrix to encode
func PutMat4(buf []byte, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

// PutVec4 writes v into buf as four little-endian float32 values.
func PutVec4(buf []byte, v [4]float32) {
	for i, c := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
}

// Mat4Bytes encodes a list of matrices back to back, as expected by structured matrix buffers.
//
// Parameters:
//   - ms: the matrices to encode
//
// Returns:
//   - []byte: len(ms) * Mat4Size bytes, or nil for an empty list
func Mat4Bytes(ms []mgl32.Mat4) []byte {
	if len(ms) == 0 {
		return nil
	}
	out := make([]byte, len(ms)*Mat4Size)
	for i, m := range ms {
		PutMat4(out[i*Mat4Size:], m)
	}
	return out
}

// Perspective creates a left-handed perspective projection mapping depth to the [0, 1] clip range used by
// Direct3D-style and WebGPU pipelines.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (far - near)
	out[11] = 1.0
	out[14] = -(near * far) / (far - near)
	return out
}

// LookAt creates a left-handed view matrix that positions and orients the camera.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector, typically (0, 1, 0)
//
// Returns:
//   - mgl32.Mat4: the view matrix
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	z := center.Sub(eye)
	if z.Len() == 0 {
		z = mgl32.Vec3{0, 0, 1}
	}
	z = z.Normalize()
	x := up.Cross(z)
	if x.Len() == 0 {
		x = mgl32.Vec3{1, 0, 0}
	}
	x = x.Normalize()
	y := z.Cross(x)

	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// CeilDiv returns ceil(n / d) for positive d.
func CeilDiv(n, d int) int {
	if d <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
