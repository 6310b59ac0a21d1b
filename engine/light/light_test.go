package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          Grid
	}{
		{"720p", 1280, 720, Grid{TilesX: 80, TilesY: 45, BatchesX: 5, BatchesY: 3}},
		{"1080p", 1920, 1080, Grid{TilesX: 120, TilesY: 68, BatchesX: 8, BatchesY: 5}},
		{"exact", 256, 256, Grid{TilesX: 16, TilesY: 16, BatchesX: 1, BatchesY: 1}},
		{"one pixel over", 257, 1, Grid{TilesX: 17, TilesY: 1, BatchesX: 2, BatchesY: 1}},
		{"empty", 0, 0, Grid{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TileGrid(tt.width, tt.height, 16, 16); got != tt.want {
				t.Errorf("TileGrid(%d, %d) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestMarshalLights(t *testing.T) {
	if MarshalLights(nil) != nil {
		t.Fatal("empty list must marshal to nil")
	}

	lights := []Light{
		NewLight(LightTypePoint, WithPosition(mgl32.Vec3{1, 2, 3}), WithIntensity(4)),
		NewLight(LightTypeSpot, WithDirection(mgl32.Vec3{0, 0, 10}), WithRange(25)),
	}
	buf := MarshalLights(lights)
	if len(buf) != 2*GPULightSize {
		t.Fatalf("expected %d bytes, got %d", 2*GPULightSize, len(buf))
	}

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	if f(0) != 1 || f(4) != 2 || f(8) != 3 {
		t.Errorf("position not packed: %v %v %v", f(0), f(4), f(8))
	}
	if got := binary.LittleEndian.Uint32(buf[12:]); got != uint32(LightTypePoint) {
		t.Errorf("type = %d, want %d", got, LightTypePoint)
	}
	if f(28) != 4 {
		t.Errorf("intensity = %v, want 4", f(28))
	}

	second := buf[GPULightSize:]
	if got := binary.LittleEndian.Uint32(second[12:]); got != uint32(LightTypeSpot) {
		t.Errorf("second type = %d, want spot", got)
	}
	if z := math.Float32frombits(binary.LittleEndian.Uint32(second[40:])); z != 1 {
		t.Errorf("direction must be normalized, z = %v", z)
	}
	if r := math.Float32frombits(binary.LittleEndian.Uint32(second[44:])); r != 25 {
		t.Errorf("range = %v, want 25", r)
	}
}

func TestSetters(t *testing.T) {
	l := NewLight(LightTypeDirectional)
	l.SetDirection(mgl32.Vec3{})
	if l.Direction() != (mgl32.Vec3{}) {
		t.Errorf("zero direction must stay zero, got %v", l.Direction())
	}
	l.SetSpotCone(0, 90)
	if l.InnerCone() != 1 || math.Abs(float64(l.OuterCone())) > 1e-6 {
		t.Errorf("unexpected cone %v/%v", l.InnerCone(), l.OuterCone())
	}
}
