package texture

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Loader decodes named textures from their source files.
type Loader interface {
	// Load decodes one texture. One path yields a 2D texture and CubeFaces paths a cube map.
	//
	// Parameters:
	//   - name: the texture's descriptor key
	//   - paths: the source files in face order
	//
	// Returns:
	//   - *Texture: the decoded texture
	//   - error: error if the path count is wrong or any face fails to decode
	Load(name string, paths []string) (*Texture, error)

	// LoadAll decodes every texture, fanning individual files out over the worker pool when
	// one is configured. It returns once every file has been decoded.
	//
	// Parameters:
	//   - sources: texture name to source paths
	//
	// Returns:
	//   - map[string]*Texture: the textures that decoded successfully
	//   - map[string]error: the failure of each texture that did not
	LoadAll(sources map[string][]string) (map[string]*Texture, map[string]error)
}

type loader struct {
	pool  worker.DynamicWorkerPool
	flipY bool
	open  func(path string, flipY bool) (Image, error)
}

var _ Loader = &loader{}

// NewLoader creates a texture loader. 2D textures are flipped vertically by default so the
// first row is the bottom of the image, matching OBJ texture coordinates; cube faces never are.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		flipY: true,
		open:  DecodeFile,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(name string, paths []string) (*Texture, error) {
	t, err := newTexture(name, paths)
	if err != nil {
		return nil, err
	}
	for i, p := range paths {
		img, err := l.open(p, l.flipY && t.Kind == Kind2D)
		if err != nil {
			return nil, fmt.Errorf("texture %q: %w", name, err)
		}
		t.Faces[i] = img
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (l *loader) LoadAll(sources map[string][]string) (map[string]*Texture, map[string]error) {
	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	sort.Strings(names)

	textures := make(map[string]*Texture, len(names))
	failures := map[string]error{}
	faceErrs := make(map[string][]error, len(names))

	var wg sync.WaitGroup
	taskID := 0
	for _, name := range names {
		t, err := newTexture(name, sources[name])
		if err != nil {
			failures[name] = err
			continue
		}
		textures[name] = t
		errs := make([]error, len(t.Paths))
		faceErrs[name] = errs
		flip := l.flipY && t.Kind == Kind2D

		for i, p := range t.Paths {
			decode := func() {
				img, err := l.open(p, flip)
				if err != nil {
					errs[i] = err
					return
				}
				t.Faces[i] = img
			}
			if l.pool == nil {
				decode()
				continue
			}
			wg.Add(1)
			id := taskID
			taskID++
			l.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					decode()
					return nil, nil
				},
			})
		}
	}
	wg.Wait()

	for name, errs := range faceErrs {
		var err error
		for _, e := range errs {
			if e != nil {
				err = fmt.Errorf("texture %q: %w", name, e)
				break
			}
		}
		if err == nil {
			err = textures[name].validate()
		}
		if err != nil {
			failures[name] = err
			delete(textures, name)
		}
	}
	return textures, failures
}

func newTexture(name string, paths []string) (*Texture, error) {
	kind := Kind2D
	switch len(paths) {
	case 1:
	case CubeFaces:
		kind = KindCube
	default:
		return nil, fmt.Errorf("texture %q: want 1 or %d paths, got %d", name, CubeFaces, len(paths))
	}
	return &Texture{
		Name:  name,
		Kind:  kind,
		Faces: make([]Image, len(paths)),
		Paths: append([]string(nil), paths...),
	}, nil
}

// validate checks that cube faces are square and equally sized.
func (t *Texture) validate() error {
	if t.Kind != KindCube {
		return nil
	}
	w, h := t.Faces[0].Width, t.Faces[0].Height
	if w != h {
		return fmt.Errorf("texture %q: cube face %s is %dx%d, faces must be square", t.Name, t.Paths[0], w, h)
	}
	for i, f := range t.Faces[1:] {
		if f.Width != w || f.Height != h {
			return fmt.Errorf("texture %q: cube face %s is %dx%d, want %dx%d", t.Name, t.Paths[i+1], f.Width, f.Height, w, h)
		}
	}
	return nil
}
