// Package common contains plain data types and helpers shared by the engine packages.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// The WebGPU device stages texture uploads through it before writing the GPU texture.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// The WebGPU device resolves compiled sampler descriptors into it before creating the GPU sampler.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers, used in shadow mapping and similar techniques.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering, which can improve texture quality at oblique viewing angles.
	MaxAnisotropy uint16
}

// ImportedTexture is an image referenced by a model file, either embedded (Data) or external (Path).
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "diffuse", "normal").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains the encoded image bytes of an embedded texture.
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string
}

// Decode decodes the texture to tightly packed RGBA pixels.
// Embedded Data takes precedence over Path.
//
// Returns:
//   - TextureStagingData: the decoded pixels and dimensions
//   - error: error if the texture is empty, the file cannot be opened or decoding fails
func (t *ImportedTexture) Decode() (TextureStagingData, error) {
	if t == nil {
		return TextureStagingData{}, fmt.Errorf("texture is nil")
	}
	if len(t.Data) > 0 {
		out, err := DecodeImage(bytes.NewReader(t.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("decode embedded texture %q: %w", t.Name, err)
		}
		return out, nil
	}
	if t.Path == "" {
		return TextureStagingData{}, fmt.Errorf("texture %q has neither data nor path", t.Name)
	}

	file, err := os.Open(t.Path)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("open texture file %s: %w", t.Path, err)
	}
	defer file.Close()

	out, err := DecodeImage(file)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("decode texture file %s: %w", t.Path, err)
	}
	return out, nil
}

// DecodeImage decodes a PNG, JPEG, BMP, TIFF or WebP stream into RGBA8 pixels.
//
// Parameters:
//   - r: the encoded image
//
// Returns:
//   - TextureStagingData: 4 bytes per pixel in row-major order
//   - error: the decoder error, if any
func DecodeImage(r io.Reader) (TextureStagingData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return TextureStagingData{}, err
	}
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
