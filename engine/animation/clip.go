package animation

// DefaultSecondsPerFrame is the frame spacing used when a clip does not declare one (60 fps).
const DefaultSecondsPerFrame = 1.0 / 60.0

// Clip is a sequence of local poses sampled at a fixed frame rate.
// A clip is built once per successful parse and replaced wholesale on reload.
type Clip struct {
	// Frames holds one local pose per frame, in playback order.
	Frames []Pose

	// SecondsPerFrame is the spacing between frames. Always positive for a parsed clip.
	SecondsPerFrame float64
}

// Empty reports whether the clip has no frames.
//
// Returns:
//   - bool: true if the clip is nil or has no frames
func (c *Clip) Empty() bool {
	return c == nil || len(c.Frames) == 0
}

// FrameCount returns the number of frames in the clip.
//
// Returns:
//   - int: the frame count
func (c *Clip) FrameCount() int {
	if c == nil {
		return 0
	}
	return len(c.Frames)
}

// Duration returns the total length of the clip in seconds (frame count * seconds per frame).
//
// Returns:
//   - float64: the clip duration in seconds
func (c *Clip) Duration() float64 {
	if c == nil {
		return 0
	}
	return float64(len(c.Frames)) * c.SecondsPerFrame
}
