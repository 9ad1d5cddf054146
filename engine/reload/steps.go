package reload

import (
	"errors"
	"path/filepath"
	"reflect"
	"slices"

	"github.com/Carmen-Shannon/oxy-playground/engine/bvh"
	"github.com/Carmen-Shannon/oxy-playground/engine/descriptor"
	"github.com/Carmen-Shannon/oxy-playground/engine/drawable"
	"github.com/Carmen-Shannon/oxy-playground/engine/kinematics"
	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// loadDescriptor reparses the scene. On success every watch is replaced by the descriptor
// alone and all derived categories are marked dirty; on failure nothing derived changes.
func (c *coordinator) loadDescriptor() {
	scene, err := descriptor.Load(c.scenePath)
	if err != nil {
		c.log.Error("scene descriptor not loaded", zap.String("path", c.scenePath), zap.Error(err))
		if !slices.Contains(c.tracker.Paths(), c.scenePath) {
			c.watch(c.scenePath, FlagDescriptor)
		}
		return
	}

	c.tracker.UnwatchAll()
	c.shaderPaths, c.texturePaths = nil, nil
	c.watch(c.scenePath, FlagDescriptor)
	c.scene = scene
	c.flags |= FlagsDerived

	for _, p := range scene.Problems {
		c.log.Warn("scene descriptor entry skipped", zap.String("path", c.scenePath), zap.Error(p))
	}

	c.hints = Hints{ClearColor: DefaultClearColor, TimerMilliseconds: -1}
	if scene.ClearColor != nil {
		c.hints.ClearColor = mgl64.Vec4(*scene.ClearColor)
	}
	if scene.TimerMilliseconds != nil {
		c.hints.TimerMilliseconds = *scene.TimerMilliseconds
		if c.hints.TimerMilliseconds < 0 {
			c.log.Warn("TimerMilliseconds is negative; redraws happen only on input", zap.Float64("ms", c.hints.TimerMilliseconds))
		}
	}
}

// loadShader assembles and compiles the program. A changed vertex interface marks the
// mesh dirty so its attributes are flattened again.
func (c *coordinator) loadShader() {
	if c.scene.Shaders == nil {
		c.log.Error("scene has no shaders", zap.String("path", c.scenePath))
		return
	}
	loader := shader.NewLoader(
		shader.WithReadFunc(c.readFile),
		shader.WithBaseDir(c.scene.Dir),
		shader.WithLabel(filepath.Base(c.scenePath)),
	)
	program, paths, err := loader.Load(c.scene.Shaders)
	if err != nil {
		// Keep watching the previous sources too; any of them may hold the fix.
		for _, p := range paths {
			c.watch(p, FlagShader)
			if !slices.Contains(c.shaderPaths, p) {
				c.shaderPaths = append(c.shaderPaths, p)
			}
		}
		c.log.Error("shader not assembled", zap.Strings("paths", paths), zap.Error(err))
		return
	}
	c.shaderPaths = c.rewatch(c.shaderPaths, paths, FlagShader)
	handle, err := c.compiler.Compile(program)
	if err != nil {
		c.log.Error("shader not compiled", zap.Strings("paths", paths), zap.Error(err))
		return
	}

	if !shader.SameVertexInputs(c.program, program) ||
		!reflect.DeepEqual(c.program.VertexBufferLayout(), program.VertexBufferLayout()) {
		c.flags |= FlagMesh
	}
	c.program, c.handle = program, handle
	c.log.Debug("shader compiled", zap.Strings("inputs", program.VertexInputNames()))
}

// loadMesh reads the OBJ, fills in normals and tangents, normalizes it into [-1,1]^3 and
// uploads it. A new mesh invalidates the skin weights.
func (c *coordinator) loadMesh() {
	if c.scene.Mesh == "" {
		c.log.Error("scene has no mesh", zap.String("path", c.scenePath))
		c.mesh, c.restPositions, c.vertices, c.meshHandle = nil, nil, nil, nil
		c.meshTransform = mgl64.Ident4()
		return
	}
	path := c.scene.Mesh
	c.watch(path, FlagMesh)

	m, stats, err := mesh.LoadOBJ(path)
	if err != nil {
		c.log.Error("mesh not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if stats.SkippedFaces > 0 {
		c.log.Warn("mesh faces with fewer than 3 vertices skipped", zap.String("path", path), zap.Int("faces", stats.SkippedFaces))
	}
	if !m.HasNormals() {
		m.ComputeNormals(mesh.NormalsUnweighted)
	}
	m.ComputeTangentBitangent()
	rest := slices.Clone(m.Positions)
	transform := m.NormalizingTransform()
	m.ApplyTransform(transform)

	c.mesh, c.restPositions, c.meshTransform = m, rest, transform
	c.skin = nil
	c.flags |= FlagAnimation
	c.uploadVertices()
}

// uploadVertices flattens the current mesh for the current program and uploads it.
func (c *coordinator) uploadVertices() {
	if c.mesh == nil {
		return
	}
	if c.program == nil {
		c.log.Warn("mesh waits for a compiled shader", zap.String("path", c.scene.Mesh))
		return
	}
	vd, err := drawable.BuildVertexData(c.mesh, c.program, c.skin)
	if err != nil {
		c.log.Error("mesh not flattened", zap.String("path", c.scene.Mesh), zap.Error(err))
		return
	}
	if len(vd.Missing) > 0 {
		c.log.Warn("shader inputs without mesh data", zap.Strings("inputs", vd.Missing))
	}
	handle, err := c.uploader.UploadMesh(vd)
	if err != nil {
		c.log.Error("mesh not uploaded", zap.String("path", c.scene.Mesh), zap.Error(err))
		return
	}
	c.vertices, c.meshHandle = vd, handle
}

// loadUniforms parses the inline or referenced uniforms. A changed sampler texture list
// marks the textures dirty.
func (c *coordinator) loadUniforms() {
	src := c.scene.Uniforms
	if src == nil {
		c.log.Warn("scene has no uniforms", zap.String("path", c.scenePath))
		c.setUniforms(uniform.NewSet(), []string{})
		return
	}

	data := []byte(src.Inline)
	if src.IsFile() {
		c.watch(src.Path, FlagUniforms)
		var err error
		if data, err = c.readFile(src.Path); err != nil {
			c.log.Error("uniforms not loaded", zap.String("path", src.Path), zap.Error(err))
			return
		}
	}
	set, textures, problems, err := uniform.Parse(data)
	origin := c.scenePath
	if src.IsFile() {
		origin = src.Path
	}
	if err != nil {
		c.log.Error("uniforms not parsed", zap.String("path", origin), zap.Error(err))
		return
	}
	for _, p := range problems {
		c.log.Warn("uniform skipped", zap.String("path", origin), zap.Error(p))
	}
	c.setUniforms(set, textures)
}

func (c *coordinator) setUniforms(set *uniform.Set, textures []string) {
	c.uniforms = set
	if !slices.Equal(c.textureNames, textures) {
		c.flags |= FlagTextures
	}
	c.textureNames = textures
}

// loadTextures decodes and uploads the textures the sampler uniforms name. Textures no
// longer named are dropped; a texture that fails keeps its previous upload.
func (c *coordinator) loadTextures() {
	sources := make(map[string][]string, len(c.textureNames))
	var paths []string
	for _, name := range c.textureNames {
		src, ok := c.scene.Textures[name]
		if !ok {
			c.log.Error("uniform references a texture that is not declared", zap.String("texture", name), zap.String("path", c.scenePath))
			continue
		}
		sources[name] = src.Paths
		for _, p := range src.Paths {
			if !slices.Contains(paths, p) {
				paths = append(paths, p)
			}
		}
	}
	c.texturePaths = c.rewatch(c.texturePaths, paths, FlagTextures)

	decoded, failures := c.textures.LoadAll(sources)
	loaded := make(map[string]drawable.UploadedTexture, len(sources))
	for name, err := range failures {
		c.log.Error("texture not loaded", zap.String("texture", name), zap.Strings("paths", sources[name]), zap.Error(err))
		if prev, ok := c.loaded[name]; ok {
			loaded[name] = prev
		}
	}
	for name, t := range decoded {
		handle, err := c.uploader.UploadTexture(t)
		if err != nil {
			c.log.Error("texture not uploaded", zap.String("texture", name), zap.Error(err))
			if prev, ok := c.loaded[name]; ok {
				loaded[name] = prev
			}
			continue
		}
		loaded[name] = drawable.UploadedTexture{Texture: t, Handle: handle}
	}
	c.loaded = loaded
}

// loadAnimation parses the motion file and binds the mesh to the skeleton.
func (c *coordinator) loadAnimation() {
	if c.scene.Animation == "" {
		c.skeleton, c.clip = nil, nil
		c.setSkin(nil)
		return
	}
	path := c.scene.Animation
	c.watch(path, FlagAnimation)

	skeleton, clip, err := c.parser.ParseFile(path)
	if err != nil {
		fields := []zap.Field{zap.String("path", path), zap.Error(err)}
		var pe *bvh.ParseError
		if errors.As(err, &pe) && pe.Line > 0 {
			fields = append(fields, zap.Int("line", pe.Line), zap.String("token", pe.Token))
		}
		c.log.Error("animation not loaded", fields...)
		if c.skeleton != nil && c.skin == nil {
			// A new mesh dropped the weights; bind it to the skeleton kept.
			c.bindSkin(path)
		}
		return
	}
	c.skeleton, c.clip = skeleton, clip
	c.log.Info("animation loaded",
		zap.String("path", path),
		zap.Int("bones", skeleton.Len()),
		zap.Int("frames", clip.FrameCount()),
		zap.Float64("seconds", clip.Duration()),
	)

	c.bindSkin(path)
}

// bindSkin computes skin weights of the current mesh against the current skeleton.
func (c *coordinator) bindSkin(path string) {
	if c.mesh == nil {
		c.setSkin(nil)
		return
	}
	options := []kinematics.WeightsOption{}
	if c.pool != nil {
		options = append(options, kinematics.WithWorkerPool(c.pool))
	}
	skin, err := kinematics.ComputeWeights(c.skeleton, c.restPositions, c.influences, options...)
	if err != nil {
		c.log.Error("skin weights not computed", zap.String("path", path), zap.Error(err))
		skin = nil
	}
	c.setSkin(skin)
}

// setSkin replaces the skin weights and re-uploads the mesh when the program reads them.
func (c *coordinator) setSkin(skin []kinematics.VertexWeights) {
	hadSkin := c.skin != nil
	c.skin = skin
	if !hadSkin && skin == nil {
		return
	}
	_, indices := c.program.VertexInput(drawable.AttrBoneIndices)
	_, weights := c.program.VertexInput(drawable.AttrBoneWeights)
	if indices || weights {
		c.uploadVertices()
	}
}
