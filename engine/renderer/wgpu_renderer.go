package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/drawable"
	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/texture"
	"github.com/Carmen-Shannon/oxy-playground/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

const overlayWGSL = `
@group(0) @binding(0) var<uniform> viewProjection: mat4x4f;

@vertex
fn vs_main(@location(0) pos: vec3f) -> @builtin(position) vec4f {
    return viewProjection * vec4f(pos, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4f {
    return vec4f(1.0, 0.85, 0.2, 1.0);
}
`

// compiledProgram is the Handle returned by Compile.
type compiledProgram struct {
	label    string
	pipeline *wgpu.RenderPipeline
	layouts  []*wgpu.BindGroupLayout
	bindings []shader.Binding

	// buffers back uniform and storage bindings and persist across frames.
	buffers map[bindingKey]*sizedBuffer
}

type sizedBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// gpuMesh is the MeshHandle returned by UploadMesh.
type gpuMesh struct {
	buffer      *wgpu.Buffer
	vertexCount uint32
}

// gpuTexture is the TextureHandle returned by UploadTexture.
type gpuTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	dimension wgpu.TextureViewDimension
}

type wgpuRenderer struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView
	width         int
	height        int

	sampler        *wgpu.Sampler
	samplerOptions common.SamplerOptions
	fallback2D     *gpuTexture
	fallbackCube   *gpuTexture
	overlay        *compiledProgram
	overlayBuffer  *wgpu.Buffer
	overlaySize    uint64

	log *zap.Logger
}

var _ Renderer = &wgpuRenderer{}

// NewRenderer creates a device for the window surface and configures it at the given size.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, from window.Window.SurfaceDescriptor
//   - width, height: the initial framebuffer size
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter or device is available
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("renderer: nil surface descriptor")
	}
	runtime.LockOSThread()

	r := &wgpuRenderer{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		log:         zap.NewNop(),
	}
	fallbackAdapter := false
	for _, option := range options {
		option(r, &fallbackAdapter)
	}

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(surfaceDescriptor)
	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: fallbackAdapter,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "playground device"})
	if err != nil {
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	r.device = device
	r.queue = device.GetQueue()

	if err := r.initShared(); err != nil {
		return nil, err
	}
	r.Resize(width, height)
	return r, nil
}

// samplerDescriptor fills the unset fields of opts with linear, repeating defaults.
func samplerDescriptor(opts common.SamplerOptions) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         "playground sampler",
		AddressModeU:  common.Coalesce(opts.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(opts.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(opts.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(opts.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(opts.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(opts.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   opts.LodMinClamp,
		LodMaxClamp:   common.Coalesce(opts.LodMaxClamp, 32),
		MaxAnisotropy: common.Coalesce(opts.MaxAnisotropy, 1),
	}
}

// initShared creates the sampler, fallback textures and overlay pipeline.
func (r *wgpuRenderer) initShared() error {
	var err error
	r.sampler, err = r.device.CreateSampler(samplerDescriptor(r.samplerOptions))
	if err != nil {
		return fmt.Errorf("renderer: create sampler: %w", err)
	}

	white := texture.Image{Pixels: []byte{255, 255, 255, 255}, Width: 1, Height: 1}
	if r.fallback2D, err = r.createTexture(&texture.Texture{Name: "fallback", Kind: texture.Kind2D, Faces: []texture.Image{white}}); err != nil {
		return err
	}
	cube := &texture.Texture{Name: "fallback cube", Kind: texture.KindCube}
	for range texture.CubeFaces {
		cube.Faces = append(cube.Faces, white)
	}
	if r.fallbackCube, err = r.createTexture(cube); err != nil {
		return err
	}
	return nil
}

func (r *wgpuRenderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	capabilities := r.surface.GetCapabilities(r.adapter)
	format := capabilities.Formats[0]
	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	r.width, r.height = width, height

	depth, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "depth",
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		r.log.Error("depth texture not created", zap.Error(err))
		return
	}
	r.releaseDepth()
	r.depthTexture = depth
	if r.depthView, err = depth.CreateView(nil); err != nil {
		r.log.Error("depth view not created", zap.Error(err))
	}

	// Pipelines target the surface format, so the overlay is rebuilt if it changed.
	if r.overlay == nil || format != r.surfaceFormat {
		r.surfaceFormat = format
		overlay, err := r.compileOverlay()
		if err != nil {
			r.log.Error("skeleton overlay not compiled", zap.Error(err))
			return
		}
		r.overlay = overlay
	}
}

func (r *wgpuRenderer) Compile(p *shader.Program) (shader.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp, err := r.compile(p, wgpu.PrimitiveTopologyTriangleList, wgpu.CompareFunctionLess, true)
	if err != nil {
		return nil, err
	}
	return cp, nil
}

func (r *wgpuRenderer) compileOverlay() (*compiledProgram, error) {
	loader := shader.NewLoader(shader.WithLabel("skeleton overlay"))
	p, _, err := loader.Load(map[shader.Stage]shader.StageSource{
		shader.StageVertex:   {Inline: overlayWGSL},
		shader.StageFragment: {Inline: overlayWGSL},
	})
	if err != nil {
		return nil, err
	}
	return r.compile(p, wgpu.PrimitiveTopologyLineList, wgpu.CompareFunctionAlways, false)
}

// compile builds a render pipeline for p. Caller must hold the mutex.
func (r *wgpuRenderer) compile(p *shader.Program, topology wgpu.PrimitiveTopology, depthCompare wgpu.CompareFunction, depthWrite bool) (*compiledProgram, error) {
	vertex, fragment := p.Stage(shader.StageVertex), p.Stage(shader.StageFragment)
	if vertex == nil || fragment == nil {
		return nil, errors.New("renderer: a render pipeline needs vertex and fragment stages")
	}
	for _, s := range []shader.Stage{shader.StageGeometry, shader.StageTessControl, shader.StageTessEvaluation} {
		if p.Stage(s) != nil {
			return nil, fmt.Errorf("renderer: WebGPU has no %s stage", s)
		}
	}

	vs, err := r.device.CreateShaderModule(vertex.Module)
	if err != nil {
		return nil, fmt.Errorf("renderer: vertex module: %w", err)
	}
	defer vs.Release()
	fs, err := r.device.CreateShaderModule(fragment.Module)
	if err != nil {
		return nil, fmt.Errorf("renderer: fragment module: %w", err)
	}
	defer fs.Release()

	cp := &compiledProgram{
		label:    p.Label,
		bindings: mergeBindings(p),
		buffers:  map[bindingKey]*sizedBuffer{},
	}
	for g, desc := range groupLayouts(p.Label, cp.bindings) {
		layout, err := r.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("renderer: bind group layout %d: %w", g, err)
		}
		cp.layouts = append(cp.layouts, layout)
	}
	pipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Label,
		BindGroupLayouts: cp.layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	var buffers []wgpu.VertexBufferLayout
	if layout := p.VertexBufferLayout(); layout.ArrayStride > 0 {
		buffers = append(buffers, layout)
	}
	cp.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertex.EntryPoint,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragment.EntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    r.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: depthWrite,
			DepthCompare:      depthCompare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: render pipeline: %w", err)
	}
	return cp, nil
}

func (r *wgpuRenderer) UploadMesh(data *drawable.VertexData) (drawable.MeshHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(data.Data) == 0 {
		return nil, errors.New("renderer: empty vertex data")
	}
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "mesh vertices",
		Size:  alignUp(uint64(len(data.Data)), 4),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: vertex buffer: %w", err)
	}
	r.queue.WriteBuffer(buf, 0, data.Data)
	return &gpuMesh{buffer: buf, vertexCount: data.VertexCount}, nil
}

func (r *wgpuRenderer) UploadTexture(t *texture.Texture) (drawable.TextureHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tex, err := r.createTexture(t)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

// createTexture uploads every face of t as one array layer.
func (r *wgpuRenderer) createTexture(t *texture.Texture) (*gpuTexture, error) {
	extent := t.Extent()
	if extent.DepthOrArrayLayers == 0 {
		return nil, fmt.Errorf("renderer: texture %q has no faces", t.Name)
	}
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         t.Name,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          extent,
		Format:        t.Format(),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: texture %q: %w", t.Name, err)
	}
	for layer, face := range t.Faces {
		r.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture: tex,
				Origin:  wgpu.Origin3D{Z: uint32(layer)},
				Aspect:  wgpu.TextureAspectAll,
			},
			face.Pixels,
			&wgpu.TextureDataLayout{BytesPerRow: face.BytesPerRow(), RowsPerImage: face.Height},
			&wgpu.Extent3D{Width: face.Width, Height: face.Height, DepthOrArrayLayers: 1},
		)
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           t.Name,
		Format:          t.Format(),
		Dimension:       t.ViewDimension(),
		MipLevelCount:   1,
		ArrayLayerCount: extent.DepthOrArrayLayers,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("renderer: texture view %q: %w", t.Name, err)
	}
	return &gpuTexture{texture: tex, view: view, dimension: t.ViewDimension()}, nil
}

func (r *wgpuRenderer) Draw(frame Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depthView == nil {
		return errors.New("renderer: surface not configured")
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("renderer: acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("renderer: surface view: %w", err)
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("renderer: command encoder: %w", err)
	}
	defer encoder.Release()

	c := frame.ClearColor
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1,
		},
	})

	var groups []*wgpu.BindGroup
	defer func() {
		for _, g := range groups {
			g.Release()
		}
	}()

	drawErr := func() error {
		d := frame.Drawable
		if !d.Ready() {
			return nil
		}
		cp, ok := d.Handle.(*compiledProgram)
		mesh, meshOK := d.Mesh.(*gpuMesh)
		if !ok || !meshOK {
			return errors.New("renderer: drawable was not built by this renderer")
		}
		bound, err := r.bindGroups(cp, d, frame)
		groups = append(groups, bound...)
		if err != nil {
			return err
		}
		pass.SetPipeline(cp.pipeline)
		for i, g := range bound {
			pass.SetBindGroup(uint32(i), g, nil)
		}
		pass.SetVertexBuffer(0, mesh.buffer, 0, wgpu.WholeSize)
		pass.Draw(mesh.vertexCount, 1, 0, 0)
		return nil
	}()

	if len(frame.Skeleton) >= 2 && r.overlay != nil {
		if g, err := r.drawOverlay(pass, frame); err != nil {
			r.log.Warn("skeleton overlay not drawn", zap.Error(err))
		} else {
			groups = append(groups, g)
		}
	}

	pass.End()
	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("renderer: finish frame: %w", err)
	}
	r.queue.Submit(commands)
	commands.Release()
	r.surface.Present()
	return drawErr
}

// bindGroups writes the frame's uniforms into cp's buffers and builds one bind group per
// layout. Uniform variables are matched by name, frame values first.
func (r *wgpuRenderer) bindGroups(cp *compiledProgram, d *drawable.Drawable, frame Frame) ([]*wgpu.BindGroup, error) {
	entries := make([][]wgpu.BindGroupEntry, len(cp.layouts))
	for _, b := range cp.bindings {
		entry := wgpu.BindGroupEntry{Binding: uint32(b.Binding)}
		switch {
		case b.Entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			entry.Sampler = r.sampler
		case b.IsTexture():
			entry.TextureView = r.textureFor(b, d).view
		default:
			buf, err := r.writeBuffer(cp, b, d, frame)
			if err != nil {
				return nil, err
			}
			entry.Buffer, entry.Size = buf, wgpu.WholeSize
		}
		entries[b.Group] = append(entries[b.Group], entry)
	}

	out := make([]*wgpu.BindGroup, 0, len(cp.layouts))
	for g, layout := range cp.layouts {
		group, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   cp.label,
			Layout:  layout,
			Entries: entries[g],
		})
		if err != nil {
			return out, fmt.Errorf("renderer: bind group %d: %w", g, err)
		}
		out = append(out, group)
	}
	return out, nil
}

// textureFor returns the texture bound to the sampler uniform named like b, or a white
// fallback of the dimension b declares.
func (r *wgpuRenderer) textureFor(b shader.Binding, d *drawable.Drawable) *gpuTexture {
	want := b.Entry.Texture.ViewDimension
	if tb, ok := d.Texture(b.Name); ok {
		if t, ok := tb.Handle.(*gpuTexture); ok && t.dimension == want {
			return t
		}
		r.log.Warn("texture does not match its binding", zap.String("binding", b.Name), zap.String("texture", tb.Texture))
	}
	if want == wgpu.TextureViewDimensionCube {
		return r.fallbackCube
	}
	return r.fallback2D
}

// writeBuffer uploads the value for a buffer binding, growing its buffer when needed.
func (r *wgpuRenderer) writeBuffer(cp *compiledProgram, b shader.Binding, d *drawable.Drawable, frame Frame) (*wgpu.Buffer, error) {
	usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	var data []byte
	if b.Entry.Buffer.Type == wgpu.BufferBindingTypeUniform {
		v, ok := frame.Uniforms.Get(b.Name)
		if !ok {
			v, ok = d.Uniforms.Get(b.Name)
		}
		if ok {
			data = packUniform(v)
		}
		if size := uniformSize(b.Type); uint64(len(data)) < size {
			data = append(data, make([]byte, size-uint64(len(data)))...)
		}
	} else {
		usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
		var bones [][16]float32
		if b.Name == BonesBinding {
			bones = frame.Bones
		}
		data = packMatrices(bones)
	}

	key := bindingKey{b.Group, b.Binding}
	sb := cp.buffers[key]
	if sb == nil || sb.size < uint64(len(data)) {
		if sb != nil {
			sb.buffer.Release()
		}
		buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: cp.label + " " + b.Name,
			Size:  uint64(len(data)),
			Usage: usage,
		})
		if err != nil {
			return nil, fmt.Errorf("renderer: buffer %s: %w", b.Name, err)
		}
		sb = &sizedBuffer{buffer: buf, size: uint64(len(data))}
		cp.buffers[key] = sb
	}
	r.queue.WriteBuffer(sb.buffer, 0, data)
	return sb.buffer, nil
}

// drawOverlay draws the skeleton as lines on top of the scene.
func (r *wgpuRenderer) drawOverlay(pass *wgpu.RenderPassEncoder, frame Frame) (*wgpu.BindGroup, error) {
	points := common.Vec3sToFloat32(frame.Skeleton)
	data := common.SliceToBytes(points)
	if r.overlayBuffer == nil || r.overlaySize < uint64(len(data)) {
		if r.overlayBuffer != nil {
			r.overlayBuffer.Release()
		}
		buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "skeleton overlay",
			Size:  uint64(len(data)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		r.overlayBuffer, r.overlaySize = buf, uint64(len(data))
	}
	r.queue.WriteBuffer(r.overlayBuffer, 0, data)

	frameUniforms := uniform.NewSet()
	frameUniforms.Store("viewProjection", uniform.Mat4(frame.ViewProjection))
	groups, err := r.bindGroups(r.overlay, &drawable.Drawable{}, Frame{Uniforms: frameUniforms})
	if err != nil {
		return nil, err
	}
	pass.SetPipeline(r.overlay.pipeline)
	pass.SetBindGroup(0, groups[0], nil)
	pass.SetVertexBuffer(0, r.overlayBuffer, 0, uint64(len(data)))
	pass.Draw(uint32(len(frame.Skeleton)), 1, 0, 0)
	return groups[0], nil
}

func (r *wgpuRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range []*gpuTexture{r.fallback2D, r.fallbackCube} {
		if t != nil {
			t.view.Release()
			t.texture.Release()
		}
	}
	if r.overlayBuffer != nil {
		r.overlayBuffer.Release()
	}
	r.releaseDepth()
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	if r.surface != nil {
		r.surface.Release()
	}
	if r.adapter != nil {
		r.adapter.Release()
	}
	if r.instance != nil {
		r.instance.Release()
	}
}

func (r *wgpuRenderer) releaseDepth() {
	if r.depthView != nil {
		r.depthView.Release()
		r.depthView = nil
	}
	if r.depthTexture != nil {
		r.depthTexture.Release()
		r.depthTexture = nil
	}
}
