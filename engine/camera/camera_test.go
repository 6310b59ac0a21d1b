package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestViewMapsTargetOntoForwardAxis(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, -5}), WithTarget(mgl32.Vec3{}))

	p := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !mgl32.FloatEqual(p[0], 0) || !mgl32.FloatEqual(p[1], 0) || !mgl32.FloatEqual(p[2], 5) {
		t.Errorf("target in view space = %v, want (0, 0, 5)", p)
	}
	if c.Position() != (mgl32.Vec3{0, 0, -5}) {
		t.Errorf("unexpected position %v", c.Position())
	}
}

func TestProjectionDepthRange(t *testing.T) {
	c := NewCamera(WithClip(1, 100), WithAspect(1))
	proj := c.Projection()

	near := proj.Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, 100, 1})
	if !mgl32.FloatEqual(near[2]/near[3], 0) {
		t.Errorf("near plane depth = %v, want 0", near[2]/near[3])
	}
	if !mgl32.FloatEqualThreshold(far[2]/far[3], 1, 1e-5) {
		t.Errorf("far plane depth = %v, want 1", far[2]/far[3])
	}
}

func TestSetAspectChangesProjection(t *testing.T) {
	c := NewCamera()
	before := c.Projection()

	c.SetAspect(0)
	if c.Projection() != before {
		t.Error("non-positive aspect must be ignored")
	}
	c.SetAspect(2)
	if c.Projection() == before {
		t.Error("projection must change with aspect")
	}
	if c.Aspect() != 2 {
		t.Errorf("aspect = %v, want 2", c.Aspect())
	}
}
