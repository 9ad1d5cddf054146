package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// OrbitController turns mouse drags into an azimuth/inclination pair.
// Dragging across the shorter window side turns the view by pi.
type OrbitController interface {
	// Rotation returns the azimuth (x) and inclination (y) in radians.
	Rotation() mgl64.Vec2

	// SetRotation sets both angles; inclination is clamped to [-pi/2, pi/2].
	//
	// Parameters:
	//   - r: azimuth and inclination in radians
	SetRotation(r mgl64.Vec2)

	// Press starts a drag at the given cursor position.
	//
	// Parameters:
	//   - x, y: cursor position in pixels
	Press(x, y float64)

	// Drag moves an active drag to the given cursor position and rotates by the
	// difference. Without a preceding Press it does nothing.
	//
	// Parameters:
	//   - x, y: cursor position in pixels
	//   - width, height: window size in pixels
	Drag(x, y float64, width, height int)

	// Release ends the active drag.
	Release()

	// Dragging reports whether a drag is active.
	Dragging() bool

	// Reset returns both angles to their initial values.
	Reset()
}

type orbitControllerImpl struct {
	mu *sync.Mutex

	rotation mgl64.Vec2
	initial  mgl64.Vec2

	dragging bool
	last     mgl64.Vec2

	sensitivity float64
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates a controller looking straight down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the new controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitControllerImpl{
		mu:          &sync.Mutex{},
		sensitivity: 1,
	}
	for _, option := range options {
		option(oc)
	}
	oc.rotation = clampInclination(oc.rotation)
	oc.initial = oc.rotation
	return oc
}

func (oc *orbitControllerImpl) Rotation() mgl64.Vec2 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.rotation
}

func (oc *orbitControllerImpl) SetRotation(r mgl64.Vec2) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.rotation = clampInclination(r)
}

func (oc *orbitControllerImpl) Press(x, y float64) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dragging = true
	oc.last = mgl64.Vec2{x, y}
}

func (oc *orbitControllerImpl) Drag(x, y float64, width, height int) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.dragging {
		return
	}
	pos := mgl64.Vec2{x, y}
	side := min(width, height)
	if side > 0 {
		diff := pos.Sub(oc.last).Mul(oc.sensitivity * math.Pi / float64(side))
		// Past a pole the view turns upside down and horizontal drags reverse.
		oc.rotation = clampInclination(oc.rotation.Add(diff))
	}
	oc.last = pos
}

func (oc *orbitControllerImpl) Release() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dragging = false
}

func (oc *orbitControllerImpl) Dragging() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.dragging
}

func (oc *orbitControllerImpl) Reset() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.rotation = oc.initial
}

func clampInclination(r mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{r[0], mgl64.Clamp(r[1], -math.Pi/2, math.Pi/2)}
}
