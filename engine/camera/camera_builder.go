package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithEyeDistance sets the distance from the eye to the origin. Values that would put the
// unit cube through the near plane are ignored.
//
// Parameters:
//   - d: the eye distance, greater than sqrt(3)
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye distance
func WithEyeDistance(d float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		if d > 1.7320508075688772*padding {
			c.eyeDistance = d
		}
	}
}

// WithViewport sets the initial framebuffer size.
//
// Parameters:
//   - width, height: framebuffer size in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithController attaches an existing orbit controller.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: a function that sets the controller
func WithController(ctrl OrbitController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
