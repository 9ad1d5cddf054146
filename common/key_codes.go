package common

// Virtual key codes for the playground's keyboard commands.
// These values match GLFW key codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR     = 82  // R: reload the scene descriptor
	KeyK     = 75  // K: toggle the skeleton overlay
	KeyP     = 80  // P: toggle in-place playback
	KeyS     = 83  // S: write a pose preview
	KeySpace = 32  // Space: pause or resume the clip
	KeyEsc   = 256 // Escape (GLFW)
	KeyHome  = 268 // Home: reset the camera (GLFW)
)
