// Package config holds the engine constants and the environment overrides applied on top of them.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable read by Load.
const Prefix = "CHOC_"

// Config carries the sizing constants of the renderer.
type Config struct {
	// TileSize is the tile edge in pixels of the tiled light culling grid.
	TileSize int
	// TileBatchSize is the number of tiles per compute group along each axis.
	TileBatchSize int
	// NumBonePerBatch is the capacity of the skinning matrix buffer.
	NumBonePerBatch int
	// NumBonePerVertex is the number of bone influences per vertex.
	NumBonePerVertex int
	// MaxInstances is the capacity of the instance buffer.
	MaxInstances int
	// MaxLightNumber is the capacity of the light buffer.
	MaxLightNumber int
	// MaxModels bounds the model ID search.
	MaxModels int

	Width  int
	Height int

	// DepthFormat is the format of the depth-stencil target.
	DepthFormat enums.Format

	VSync      bool
	Fullscreen bool
}

// Default returns the engine defaults.
//
// Returns:
//   - Config: a 1280x720 configuration with 16 pixel tiles
func Default() Config {
	return Config{
		TileSize:         16,
		TileBatchSize:    16,
		NumBonePerBatch:  1024,
		NumBonePerVertex: 4,
		MaxInstances:     256,
		MaxLightNumber:   1024,
		MaxModels:        math.MaxInt32,
		Width:            1280,
		Height:           720,
		DepthFormat:      enums.FormatD24UnormS8Uint,
	}
}

// Load returns Default overridden by CHOC_* environment variables.
// The given .env files are loaded first; files that do not exist are skipped.
// Variables already present in the environment take precedence over the files.
//
// Recognized variables: CHOC_TILE_SIZE, CHOC_TILE_BATCH_SIZE, CHOC_BONES_PER_BATCH, CHOC_BONES_PER_VERTEX,
// CHOC_MAX_INSTANCES, CHOC_MAX_LIGHTS, CHOC_MAX_MODELS, CHOC_WIDTH, CHOC_HEIGHT, CHOC_DEPTH_FORMAT, CHOC_VSYNC,
// CHOC_FULLSCREEN.
//
// Parameters:
//   - envFiles: optional .env files
//
// Returns:
//   - Config: the resolved configuration
//   - error: an error naming the variable when a value does not parse
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("env file %s: %w", f, err)
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("env file %s: %w", f, err)
		}
	}
	envy.Reload()

	c := Default()
	ints := []struct {
		key string
		dst *int
	}{
		{"TILE_SIZE", &c.TileSize},
		{"TILE_BATCH_SIZE", &c.TileBatchSize},
		{"BONES_PER_BATCH", &c.NumBonePerBatch},
		{"BONES_PER_VERTEX", &c.NumBonePerVertex},
		{"MAX_INSTANCES", &c.MaxInstances},
		{"MAX_LIGHTS", &c.MaxLightNumber},
		{"MAX_MODELS", &c.MaxModels},
		{"WIDTH", &c.Width},
		{"HEIGHT", &c.Height},
	}
	for _, v := range ints {
		if err := readInt(v.key, v.dst); err != nil {
			return Config{}, err
		}
	}
	for key, dst := range map[string]*bool{"VSYNC": &c.VSync, "FULLSCREEN": &c.Fullscreen} {
		if err := readBool(key, dst); err != nil {
			return Config{}, err
		}
	}
	if token := envy.Get(Prefix+"DEPTH_FORMAT", ""); token != "" {
		f, ok := enums.NewRegistry().Format(token)
		if !ok || !f.IsDepth() {
			return Config{}, fmt.Errorf("%sDEPTH_FORMAT: %q is not a depth format", Prefix, token)
		}
		c.DepthFormat = f
	}
	return c, c.Validate()
}

// Validate reports a sizing constant that is not positive.
func (c Config) Validate() error {
	for name, v := range map[string]int{
		"tile size":        c.TileSize,
		"tile batch size":  c.TileBatchSize,
		"bones per batch":  c.NumBonePerBatch,
		"bones per vertex": c.NumBonePerVertex,
		"max instances":    c.MaxInstances,
		"max lights":       c.MaxLightNumber,
		"max models":       c.MaxModels,
		"width":            c.Width,
		"height":           c.Height,
	} {
		if v <= 0 {
			return fmt.Errorf("config: %s must be positive, got %d", name, v)
		}
	}
	return nil
}

func readInt(key string, dst *int) error {
	raw := envy.Get(Prefix+key, "")
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s%s: %w", Prefix, key, err)
	}
	*dst = v
	return nil
}

func readBool(key string, dst *bool) error {
	raw := envy.Get(Prefix+key, "")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s%s: %w", Prefix, key, err)
	}
	*dst = v
	return nil
}
