package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/handsonicv4/Chocolate-3D/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

// Camera holds the perspective settings and eye placement the frame orchestrator reads every frame.
type Camera interface {
	// Projection returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the left-handed projection matrix with [0, 1] depth
	Projection() mgl32.Mat4

	// View returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the world-to-view matrix
	View() mgl32.Mat4

	// Position returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio and recomputes the projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio, ignored when not positive
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view in radians and recomputes the projection.
	SetFov(fov float32)

	// SetClip sets the near and far plane distances and recomputes the projection.
	//
	// Parameters:
	//   - near: near plane distance (must be > 0)
	//   - far: far plane distance (must be > near)
	SetClip(near, far float32)

	// LookAt places the camera at eye looking at target and recomputes the view.
	//
	// Parameters:
	//   - eye: the new eye position
	//   - target: the point to look at
	LookAt(eye, target mgl32.Vec3)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at (0, 0, -5) looking at the origin with a 45 degree vertical field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, -5},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      45.0 * (math.Pi / 180.0),
		aspect:   16.0 / 9.0,
		near:     0.1,
		far:      1000.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateView()
	c.updateProjection()
	return c
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) SetClip(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) LookAt(eye, target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = eye
	c.target = target
	c.updateView()
}

// updateView recalculates the view matrix. Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	c.view = common.LookAt(c.position, c.target, c.up)
}

// updateProjection recalculates the projection matrix. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	c.projection = common.Perspective(c.fov, c.aspect, c.near, c.far)
}
