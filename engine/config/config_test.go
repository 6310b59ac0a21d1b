package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handsonicv4/Chocolate-3D/engine/renderer/enums"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.TileSize != 16 || c.TileBatchSize != 16 {
		t.Errorf("unexpected tiling defaults %d/%d", c.TileSize, c.TileBatchSize)
	}
	if c.NumBonePerBatch != 1024 || c.NumBonePerVertex != 4 || c.MaxInstances != 256 || c.MaxLightNumber != 1024 {
		t.Errorf("unexpected capacity defaults %+v", c)
	}
	if c.Width != 1280 || c.Height != 720 || c.DepthFormat != enums.FormatD24UnormS8Uint {
		t.Errorf("unexpected target defaults %+v", c)
	}
	if c.MaxModels != math.MaxInt32 || c.VSync || c.Fullscreen {
		t.Errorf("unexpected flags %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHOC_WIDTH", "1920")
	t.Setenv("CHOC_MAX_INSTANCES", "64")
	t.Setenv("CHOC_VSYNC", "true")
	t.Setenv("CHOC_DEPTH_FORMAT", "d32_float")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Width != 1920 || c.Height != 720 || c.MaxInstances != 64 || !c.VSync {
		t.Errorf("overrides not applied: %+v", c)
	}
	if c.DepthFormat != enums.FormatD32Float {
		t.Errorf("depth format = %s, want d32_float", c.DepthFormat)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CHOC_TILE_BATCH_SIZE=8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CHOC_TILE_BATCH_SIZE") })

	c, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if c.TileBatchSize != 8 {
		t.Errorf("tile batch size = %d, want 8", c.TileBatchSize)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"CHOC_HEIGHT", "tall", "CHOC_HEIGHT"},
		{"CHOC_FULLSCREEN", "maybe", "CHOC_FULLSCREEN"},
		{"CHOC_DEPTH_FORMAT", "r8g8b8a8_unorm", "CHOC_DEPTH_FORMAT"},
		{"CHOC_TILE_SIZE", "0", "tile size"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("%s=%s must fail", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not name %q", err, tt.want)
			}
		})
	}
}
