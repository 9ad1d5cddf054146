// Package engine runs the playground: it ticks one reload coordinator per frame, plays the
// scene's clip, and hands the result to a renderer.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/Carmen-Shannon/oxy-playground/engine/preview"
	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/reload"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// UniformTime is the per-frame uniform holding the playback time in seconds.
const UniformTime = "uTime"

// engine implements the Engine interface.
type engine struct {
	coordinator reload.Coordinator
	renderer    renderer.Renderer
	window      window.Window
	camera      camera.Camera
	profiler    *profiler.Profiler
	preview     preview.Renderer
	previewPath string
	log         *zap.Logger

	now      func() time.Time
	last     time.Time
	elapsed  float64
	speed    float64
	paused   bool
	skeleton bool
	inPlace  bool
	sampler  animation.Sampler

	redraw float64

	// idle is the redraw interval while the descriptor requests none.
	idle time.Duration

	// restInverse caches inverse rest-pose world transforms for restFor.
	restFor     *animation.Skeleton
	restInverse []mgl64.Mat4

	lastFrame renderer.Frame
}

// Engine drives the playground frame by frame. It is single-threaded: every method must
// be called from the goroutine that owns the window.
type Engine interface {
	// Frame runs one frame: reloads changed files, advances playback, and draws.
	//
	// Returns:
	//   - error: the renderer's draw error, if any
	Frame() error

	// LastFrame returns what the most recent Frame handed to the renderer.
	LastFrame() renderer.Frame

	// HandleKey applies a key binding from common.Key*.
	//
	// Parameters:
	//   - keyCode: the key that went down
	HandleKey(keyCode uint32)

	// HandleMouseDown, HandleMouseUp and HandleMouseMove drive the orbit camera with the
	// left button.
	HandleMouseDown(button window.MouseButton, x, y float64)
	HandleMouseUp(button window.MouseButton, x, y float64)
	HandleMouseMove(x, y float64)

	// Resize updates the camera viewport and the renderer's surface.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	Resize(width, height int)

	// WritePreview rasterizes the current pose as WebP.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - error: an error if no skeleton is loaded or encoding fails
	WritePreview(w io.Writer) error

	// Elapsed returns the playback time in seconds.
	Elapsed() float64

	// Paused, ShowSkeleton and InPlace report the playback toggles.
	Paused() bool
	ShowSkeleton() bool
	InPlace() bool

	// Camera returns the orbit camera.
	Camera() camera.Camera

	// Coordinator returns the reload coordinator that owns the scene.
	Coordinator() reload.Coordinator

	// Run installs the window callbacks and blocks until the window closes.
	//
	// Returns:
	//   - error: an error if the engine has no window
	Run() error

	// Quit closes the window, which ends Run.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an engine around coordinator.
//
// Parameters:
//   - coordinator: the coordinator owning the scene
//   - options: functional options for the engine
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(coordinator reload.Coordinator, options ...EngineBuilderOption) Engine {
	e := &engine{
		coordinator: coordinator,
		camera:      camera.NewCamera(),
		profiler:    profiler.NewProfiler(),
		preview:     preview.NewRenderer(),
		previewPath: "pose.webp",
		log:         zap.NewNop(),
		now:         time.Now,
		speed:       1,
		skeleton:    true,
		redraw:      -1,
		idle:        -1,
	}
	for _, opt := range options {
		opt(e)
	}
	e.sampler = animation.NewSampler(animation.WithInPlace(e.inPlace))
	e.last = e.now()
	if e.window != nil {
		e.camera.SetViewport(e.window.Width(), e.window.Height())
	}
	return e
}

func (e *engine) Frame() error {
	now := e.now()
	dt := now.Sub(e.last).Seconds()
	e.last = now
	if !e.paused {
		e.elapsed += dt * e.speed
	}

	if _, rebuilt := e.coordinator.Tick(); rebuilt {
		e.profiler.RecordReload()
		e.applyHints()
	}

	e.camera.Update()
	frameUniforms := uniform.NewSet()
	e.camera.StoreUniforms(frameUniforms)
	frameUniforms.Store(UniformTime, uniform.Float(float32(e.elapsed)))

	frame := renderer.Frame{
		Drawable:       e.coordinator.Drawable(),
		Uniforms:       frameUniforms,
		ViewProjection: e.camera.ViewProjectionMatrix(),
		ClearColor:     e.coordinator.Hints().ClearColor,
	}
	if world := e.worldPose(); world != nil {
		frame.Bones = e.boneMatrices(world)
		if e.skeleton {
			frame.Skeleton = e.skeletonLines(world)
		}
	}
	e.lastFrame = frame
	e.profiler.Tick()

	if e.renderer == nil {
		return nil
	}
	if err := e.renderer.Draw(frame); err != nil {
		return fmt.Errorf("engine: draw: %w", err)
	}
	return nil
}

func (e *engine) LastFrame() renderer.Frame {
	return e.lastFrame
}

// applyHints pushes the descriptor's redraw interval to the window.
func (e *engine) applyHints() {
	ms := e.coordinator.Hints().TimerMilliseconds
	if ms == e.redraw || e.window == nil {
		return
	}
	e.redraw = ms
	interval := e.idle
	if ms >= 0 {
		interval = time.Duration(ms * float64(time.Millisecond))
	}
	e.window.SetRedrawInterval(interval)
	e.log.Debug("redraw interval changed", zap.Float64("ms", ms))
}

// worldPose samples the clip at the current time and runs forward kinematics. It returns
// nil without a skeleton.
func (e *engine) worldPose() animation.MatrixPose {
	skeleton, clip := e.coordinator.Skeleton(), e.coordinator.Clip()
	if skeleton == nil || skeleton.Empty() {
		return nil
	}
	local := animation.SampleFor(e.sampler, skeleton, clip, e.elapsed)
	if local == nil {
		local = animation.RestPose(skeleton)
	}
	world, err := kinematics.EvaluateTRS(skeleton, local)
	if err != nil {
		e.log.Error("pose not evaluated", zap.Error(err))
		return nil
	}
	return world
}

// boneMatrices returns, per bone, the transform taking a mesh vertex from the rest pose
// to the current pose. The mesh was normalized after binding, so each matrix is
// conjugated by the mesh transform.
func (e *engine) boneMatrices(world animation.MatrixPose) [][16]float32 {
	skeleton := e.coordinator.Skeleton()
	if e.restFor != skeleton {
		rest, err := kinematics.EvaluateTRS(skeleton, animation.RestPose(skeleton))
		if err != nil {
			return nil
		}
		e.restInverse = make([]mgl64.Mat4, len(rest))
		for i, m := range rest {
			e.restInverse[i] = m.Inv()
		}
		e.restFor = skeleton
	}

	mt := e.coordinator.MeshTransform()
	mtInv := mt.Inv()
	out := make([]mgl64.Mat4, len(world))
	for i, m := range world {
		out[i] = mt.Mul4(m).Mul4(e.restInverse[i]).Mul4(mtInv)
	}
	return common.MatricesToFloat32(out)
}

// skeletonLines returns one point pair per bone segment, mapped into mesh space.
func (e *engine) skeletonLines(world animation.MatrixPose) []mgl64.Vec3 {
	mt := e.coordinator.MeshTransform()
	segments := kinematics.Segments(e.coordinator.Skeleton(), world)
	out := make([]mgl64.Vec3, 0, 2*len(segments))
	for _, s := range segments {
		out = append(out, mgl64.TransformCoordinate(s.Start, mt), mgl64.TransformCoordinate(s.End, mt))
	}
	return out
}

func (e *engine) HandleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyR:
		e.log.Info("reload requested")
		e.coordinator.MarkDirty(reload.FlagDescriptor)
	case common.KeyK:
		e.skeleton = !e.skeleton
	case common.KeyP:
		e.inPlace = !e.inPlace
		e.sampler = animation.NewSampler(animation.WithInPlace(e.inPlace))
	case common.KeySpace:
		e.paused = !e.paused
	case common.KeyHome:
		e.camera.Controller().Reset()
	case common.KeyS:
		if err := e.savePreview(); err != nil {
			e.log.Error("preview not written", zap.String("path", e.previewPath), zap.Error(err))
		}
	case common.KeyEsc:
		e.Quit()
	}
}

func (e *engine) savePreview() error {
	f, err := os.Create(e.previewPath)
	if err != nil {
		return err
	}
	if err := e.WritePreview(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	e.log.Info("preview written", zap.String("path", e.previewPath))
	return nil
}

func (e *engine) WritePreview(w io.Writer) error {
	world := e.worldPose()
	if world == nil {
		return errors.New("engine: no skeleton loaded")
	}
	segments := kinematics.Segments(e.coordinator.Skeleton(), world)
	return e.preview.Encode(w, segments, e.camera.ViewMatrix())
}

func (e *engine) HandleMouseDown(button window.MouseButton, x, y float64) {
	if button == window.MouseLeft {
		e.camera.Controller().Press(x, y)
	}
}

func (e *engine) HandleMouseUp(button window.MouseButton, _, _ float64) {
	if button == window.MouseLeft {
		e.camera.Controller().Release()
	}
}

func (e *engine) HandleMouseMove(x, y float64) {
	w, h := e.camera.Viewport()
	e.camera.Controller().Drag(x, y, w, h)
}

func (e *engine) Resize(width, height int) {
	e.camera.SetViewport(width, height)
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
}

func (e *engine) Elapsed() float64 {
	return e.elapsed
}

func (e *engine) Paused() bool {
	return e.paused
}

func (e *engine) ShowSkeleton() bool {
	return e.skeleton
}

func (e *engine) InPlace() bool {
	return e.inPlace
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Coordinator() reload.Coordinator {
	return e.coordinator
}

func (e *engine) Run() error {
	if e.window == nil {
		return errors.New("engine: no window")
	}
	e.window.SetResizeCallback(e.Resize)
	e.window.SetKeyDownCallback(e.HandleKey)
	e.window.SetMouseDownCallback(e.HandleMouseDown)
	e.window.SetMouseUpCallback(e.HandleMouseUp)
	e.window.SetMouseMoveCallback(e.HandleMouseMove)
	e.window.SetFrameCallback(func() {
		if err := e.Frame(); err != nil {
			e.log.Error("frame failed", zap.Error(err))
		}
	})
	e.window.Run()
	return nil
}

func (e *engine) Quit() {
	if e.window == nil {
		return
	}
	if err := e.window.Close(); err != nil {
		e.log.Warn("window not closed", zap.Error(err))
	}
}
