// Package reload keeps a scene's derived resources in step with the files they come from.
//
// A Coordinator owns six dirty flags, one per resource category. File watch callbacks only
// enqueue PathChanged events; once per Tick the coordinator polls the tracker, folds the
// events into its flags and rebuilds the dirty categories in dependency order:
// descriptor, shader, mesh, uniforms, textures, animation.
package reload

import (
	"os"
	"slices"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/Carmen-Shannon/oxy-playground/engine/bvh"
	"github.com/Carmen-Shannon/oxy-playground/engine/descriptor"
	"github.com/Carmen-Shannon/oxy-playground/engine/drawable"
	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/texture"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/Carmen-Shannon/oxy-playground/engine/watcher"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// DefaultClearColor is used while the descriptor sets no ClearColor.
var DefaultClearColor = mgl64.Vec4{1, 0, 0, 1}

// Hints are the descriptor's presentation settings.
type Hints struct {
	ClearColor mgl64.Vec4

	// TimerMilliseconds is the requested redraw interval, negative when unset.
	TimerMilliseconds float64
}

// Coordinator rebuilds a scene's resources when their source files change.
//
// A Coordinator is not safe for concurrent use and must not be called from its own
// tracker callbacks.
type Coordinator interface {
	// Tick polls for file changes and rebuilds every dirty category in order.
	//
	// Returns:
	//   - *drawable.Drawable: a new drawable if anything was rebuilt, else the previous one
	//   - bool: whether any category was processed
	Tick() (*drawable.Drawable, bool)

	// Poll polls the tracker and folds file changes into the dirty flags without
	// rebuilding anything. Tick calls it first.
	//
	// Returns:
	//   - Flags: the pending dirty flags
	Poll() Flags

	// MarkDirty requests a descriptor reload on the next Tick. Other flags in f are
	// ignored; only the descriptor step may invalidate the derived categories.
	//
	// Parameters:
	//   - f: the flags to set
	MarkDirty(f Flags)

	// Flags returns the pending dirty flags.
	Flags() Flags

	// Drawable returns the most recently built drawable, nil before the first Tick.
	Drawable() *drawable.Drawable

	// Scene returns the last successfully parsed descriptor.
	Scene() *descriptor.Descriptor

	// Hints returns the descriptor's presentation settings.
	Hints() Hints

	// Skeleton and Clip return the current animation, nil when none is loaded.
	Skeleton() *animation.Skeleton
	Clip() *animation.Clip

	// Skin returns per-position bone weights for the current mesh, nil without both a
	// mesh and a skeleton.
	Skin() []kinematics.VertexWeights

	// MeshTransform returns the transform that normalized the current mesh into [-1,1]^3.
	// It maps the skeleton's space onto the drawn mesh.
	MeshTransform() mgl64.Mat4

	// TextureNames returns the sampler texture names in bind order.
	TextureNames() []string

	// WatchedPaths returns the tracker's registrations in registration order.
	WatchedPaths() []string
}

// coordinator is the implementation of the Coordinator interface.
type coordinator struct {
	scenePath  string
	tracker    watcher.Tracker
	events     *watcher.EventQueue[Flags]
	compiler   shader.Compiler
	uploader   drawable.Uploader
	textures   texture.Loader
	parser     bvh.Parser
	pool       worker.DynamicWorkerPool
	log        *zap.Logger
	readFile   func(path string) ([]byte, error)
	influences int

	flags Flags
	scene *descriptor.Descriptor
	hints Hints

	program     *shader.Program
	handle      shader.Handle
	shaderPaths []string

	mesh          *mesh.Mesh
	restPositions []mgl64.Vec3
	meshTransform mgl64.Mat4
	vertices      *drawable.VertexData
	meshHandle    drawable.MeshHandle

	uniforms     *uniform.Set
	textureNames []string
	texturePaths []string
	loaded       map[string]drawable.UploadedTexture

	skeleton *animation.Skeleton
	clip     *animation.Clip
	skin     []kinematics.VertexWeights

	current *drawable.Drawable
}

var _ Coordinator = &coordinator{}

// NewCoordinator creates a coordinator for the descriptor at scenePath. Nothing is read
// until the first Tick, which loads the whole scene.
//
// Parameters:
//   - scenePath: the scene descriptor
//   - options: a variadic list of CoordinatorBuilderOption functions
//
// Returns:
//   - Coordinator: the new coordinator
func NewCoordinator(scenePath string, options ...CoordinatorBuilderOption) Coordinator {
	c := &coordinator{
		scenePath:     scenePath,
		events:        watcher.NewEventQueue[Flags](),
		compiler:      headlessCompiler{},
		uploader:      headlessUploader{},
		log:           zap.NewNop(),
		readFile:      os.ReadFile,
		influences:    kinematics.MaxInfluences,
		flags:         FlagDescriptor,
		hints:         Hints{ClearColor: DefaultClearColor, TimerMilliseconds: -1},
		meshTransform: mgl64.Ident4(),
		uniforms:      uniform.NewSet(),
		textureNames:  []string{},
		loaded:        map[string]drawable.UploadedTexture{},
	}
	for _, option := range options {
		option(c)
	}
	if c.tracker == nil {
		c.tracker = watcher.NewTracker(watcher.WithLogger(c.log))
	}
	if c.textures == nil {
		c.textures = texture.NewLoader(texture.WithWorkerPool(c.pool))
	}
	if c.parser == nil {
		c.parser = bvh.NewParser()
	}
	return c
}

func (c *coordinator) Poll() Flags {
	c.tracker.Poll()
	for _, ev := range c.events.Drain() {
		c.log.Debug("file changed", zap.String("path", ev.Path), zap.Stringer("flag", ev.Flag))
		c.flags |= ev.Flag
	}
	return c.flags
}

func (c *coordinator) Tick() (*drawable.Drawable, bool) {
	if c.Poll() == 0 {
		return c.current, false
	}
	processed := c.flags

	steps := []struct {
		flag Flags
		run  func()
	}{
		{FlagDescriptor, c.loadDescriptor},
		{FlagShader, c.loadShader},
		{FlagMesh, c.loadMesh},
		{FlagUniforms, c.loadUniforms},
		{FlagTextures, c.loadTextures},
		{FlagAnimation, c.loadAnimation},
	}
	for _, s := range steps {
		if !c.flags.Has(s.flag) {
			continue
		}
		// Cleared before running so a step that fails is not retried every tick.
		c.flags &^= s.flag
		processed |= s.flag
		s.run()
	}

	c.log.Info("scene reloaded", zap.Stringer("flags", processed), zap.String("path", c.scenePath))
	c.current = c.assemble()
	return c.current, true
}

func (c *coordinator) MarkDirty(f Flags) {
	if f&^FlagDescriptor != 0 {
		c.log.Warn("only the descriptor may be marked dirty", zap.Stringer("ignored", f&^FlagDescriptor))
	}
	c.flags |= f & FlagDescriptor
}

func (c *coordinator) Flags() Flags {
	return c.flags
}

func (c *coordinator) Drawable() *drawable.Drawable {
	return c.current
}

func (c *coordinator) Scene() *descriptor.Descriptor {
	return c.scene
}

func (c *coordinator) Hints() Hints {
	return c.hints
}

func (c *coordinator) Skeleton() *animation.Skeleton {
	return c.skeleton
}

func (c *coordinator) Clip() *animation.Clip {
	return c.clip
}

func (c *coordinator) Skin() []kinematics.VertexWeights {
	return c.skin
}

func (c *coordinator) MeshTransform() mgl64.Mat4 {
	return c.meshTransform
}

func (c *coordinator) TextureNames() []string {
	return append([]string(nil), c.textureNames...)
}

func (c *coordinator) WatchedPaths() []string {
	return c.tracker.Paths()
}

// assemble builds a new drawable from the current resources.
func (c *coordinator) assemble() *drawable.Drawable {
	bindings, missing := drawable.BindTextures(c.uniforms, c.loaded)
	for _, name := range missing {
		c.log.Warn("sampler uniform has no loaded texture", zap.String("uniform", name))
	}
	return &drawable.Drawable{
		Program:  c.program,
		Handle:   c.handle,
		Mesh:     c.meshHandle,
		Vertices: c.vertices,
		Textures: bindings,
		Uniforms: c.uniforms.Clone(),
	}
}

// watch registers path with a callback that enqueues flag.
func (c *coordinator) watch(path string, flag Flags) {
	if err := c.tracker.Watch(path, c.events.Notify(flag)); err != nil {
		c.log.Warn("cannot watch file", zap.String("path", path), zap.Stringer("flag", flag), zap.Error(err))
	}
}

// rewatch watches every path in next and unwatches those in prev that next no longer holds.
func (c *coordinator) rewatch(prev, next []string, flag Flags) []string {
	for _, p := range prev {
		if !slices.Contains(next, p) {
			c.tracker.Unwatch(p)
		}
	}
	for _, p := range next {
		c.watch(p, flag)
	}
	return next
}
