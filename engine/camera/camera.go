// Package camera computes the view and projection matrices for a scene normalized into
// the unit cube and viewed from an orbit around the origin.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
)

// Uniform names written by StoreUniforms.
const (
	UniformProjection = "uProjectionMatrix"
	UniformView       = "uViewMatrix"
	UniformNormal     = "uNormalMatrix"
)

// DefaultEyeDistance is the distance from the eye to the origin. It must exceed sqrt(3)
// so the whole unit cube stays in front of the near plane.
const DefaultEyeDistance = 3.0

// padding enlarges the bounding sphere of the unit cube so it never touches the frame.
const padding = 1.01

type cameraImpl struct {
	mu *sync.Mutex

	eyeDistance float64
	width       int
	height      int

	viewMatrix       mgl64.Mat4
	projectionMatrix mgl64.Mat4

	controller OrbitController
}

// Camera frames the cube [-1,1]^3 from an eye orbiting the origin.
type Camera interface {
	// EyeDistance returns the distance from the eye to the origin.
	EyeDistance() float64

	// Viewport returns the framebuffer size the projection is built for.
	//
	// Returns:
	//   - width, height: framebuffer size in pixels
	Viewport() (width, height int)

	// SetViewport sets the framebuffer size and recomputes the projection. Non-positive
	// sizes are ignored, as reported by minimized windows.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	SetViewport(width, height int)

	// Controller returns the orbit controller driving the view.
	Controller() OrbitController

	// Update reads the controller's rotation and recomputes the view matrix.
	// Call once per frame before reading matrices.
	Update()

	// ViewMatrix returns the world-to-camera matrix.
	ViewMatrix() mgl64.Mat4

	// ProjectionMatrix returns the camera-to-clip matrix.
	ProjectionMatrix() mgl64.Mat4

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix.
	ViewProjectionMatrix() mgl64.Mat4

	// NormalMatrix returns the matrix for transforming normals into camera space. The view
	// is a rigid motion, so this is its rotation block.
	NormalMatrix() mgl64.Mat3

	// StoreUniforms writes the projection, view and normal matrices into set.
	//
	// Parameters:
	//   - set: the uniform set to update
	StoreUniforms(set *uniform.Set)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with an 800x600 viewport and a fresh orbit controller.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		eyeDistance: DefaultEyeDistance,
		width:       800,
		height:      600,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewOrbitController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) EyeDistance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eyeDistance
}

func (c *cameraImpl) Viewport() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.updateMatrices()
}

func (c *cameraImpl) Controller() OrbitController {
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix.Mul4(c.viewMatrix)
}

func (c *cameraImpl) NormalMatrix() mgl64.Mat3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix.Mat3()
}

func (c *cameraImpl) StoreUniforms(set *uniform.Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set.Store(UniformProjection, uniform.Mat4(c.projectionMatrix))
	set.Store(UniformView, uniform.Mat4(c.viewMatrix))
	set.Store(UniformNormal, uniform.Mat3(c.viewMatrix.Mat3()))
}

// updateMatrices recalculates both matrices. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	r := c.controller.Rotation()
	c.viewMatrix = OrbitingWorldToCamera(c.eyeDistance, r[0], r[1])
	c.projectionMatrix = PerspectiveForUnitCube(c.width, c.height, c.eyeDistance)
}

// OrbitingWorldToCamera returns the view of an eye on the +Z axis at eyeDistance looking at
// the origin, after the world is turned by azimuth about Y and then by inclination about X.
//
// Parameters:
//   - eyeDistance: distance from the eye to the origin
//   - azimuth: rotation about the world Y axis in radians
//   - inclination: rotation about the X axis in radians, applied after azimuth
//
// Returns:
//   - mgl64.Mat4: the world-to-camera matrix
func OrbitingWorldToCamera(eyeDistance, azimuth, inclination float64) mgl64.Mat4 {
	lookAt := mgl64.LookAtV(mgl64.Vec3{0, 0, eyeDistance}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	return lookAt.Mul4(mgl64.HomogRotate3DX(inclination)).Mul4(mgl64.HomogRotate3DY(azimuth))
}

// PerspectiveForUnitCube returns a projection whose frustum just contains the bounding
// sphere of [-1,1]^3 seen from eyeDistance, with one percent of padding. When the
// viewport is taller than wide the horizontal extent is what must fit.
//
// Parameters:
//   - width, height: viewport size in pixels
//   - eyeDistance: distance from the eye to the origin, greater than sqrt(3)
//
// Returns:
//   - mgl64.Mat4: the camera-to-clip matrix with depth in [0, 1]
func PerspectiveForUnitCube(width, height int, eyeDistance float64) mgl64.Mat4 {
	radius := math.Sqrt(3) * padding
	aspect := float64(width) / float64(height)

	opposite := radius
	if width < height {
		opposite /= aspect
	}
	fovY := 2 * math.Atan(opposite/eyeDistance)
	near := eyeDistance - radius
	far := eyeDistance + 2*radius
	return common.Perspective(fovY, aspect, near, far)
}
