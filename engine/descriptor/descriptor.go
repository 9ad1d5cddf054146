// Package descriptor reads the scene descriptor: the JSON document naming the shader
// stages, mesh, uniforms, textures and motion clip a scene is built from.
//
// Every relative path in the document is resolved against the descriptor's own directory.
// Unknown keys are ignored. A malformed optional entry is recorded in Problems and treated
// as absent; only unreadable or syntactically invalid JSON fails the whole parse.
package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Carmen-Shannon/oxy-playground/engine/shader"
)

// Keys of the descriptor document.
const (
	KeyShaders           = "shaders"
	KeyMesh              = "mesh"
	KeyUniforms          = "uniforms"
	KeyTextures          = "textures"
	KeyAnimation         = "animation"
	KeyClearColor        = "ClearColor"
	KeyTimerMilliseconds = "TimerMilliseconds"
)

// CubeFaces is the number of paths a cube texture entry lists.
const CubeFaces = 6

// UniformsSource is either an inline JSON object or a path to a JSON file holding one.
type UniformsSource struct {
	Inline json.RawMessage
	Path   string
}

// IsFile reports whether uniforms live in a separate file.
func (u UniformsSource) IsFile() bool {
	return u.Path != ""
}

// TextureSource is one named texture: a single path for a 2D texture, or six face paths
// for a cube texture.
type TextureSource struct {
	Paths []string
}

// IsCube reports whether the texture is a cube map.
func (t TextureSource) IsCube() bool {
	return len(t.Paths) == CubeFaces
}

// Descriptor is a parsed scene document.
type Descriptor struct {
	// Path is the descriptor's own path; Dir is its directory.
	Path string
	Dir  string

	// Shaders is nil when the document has no usable shaders entry.
	Shaders map[shader.Stage]shader.StageSource

	// Mesh and Animation are resolved paths, empty when absent.
	Mesh      string
	Animation string

	// Uniforms is nil when absent.
	Uniforms *UniformsSource

	Textures map[string]TextureSource

	// ClearColor and TimerMilliseconds are nil when absent or malformed.
	ClearColor        *[4]float64
	TimerMilliseconds *float64

	// Problems lists malformed entries that were skipped.
	Problems []error
}

// Load reads and parses the descriptor at path.
//
// Parameters:
//   - path: the descriptor file
//
// Returns:
//   - *Descriptor: the parsed descriptor
//   - error: an error if the file cannot be read or is not a JSON object
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses descriptor JSON that was read from path.
//
// Parameters:
//   - path: the descriptor's path, used to resolve relative paths
//   - data: the document
//
// Returns:
//   - *Descriptor: the parsed descriptor
//   - error: an error if data is not a JSON object
func Parse(path string, data []byte) (*Descriptor, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("descriptor: %s: %w", path, syntaxContext(data, err))
	}
	if doc == nil {
		return nil, fmt.Errorf("descriptor: %s: document is not an object", path)
	}

	d := &Descriptor{Path: path, Dir: filepath.Dir(path)}
	if raw, ok := doc[KeyShaders]; ok {
		d.parseShaders(raw)
	}
	if raw, ok := doc[KeyMesh]; ok {
		d.Mesh = d.parsePath(KeyMesh, raw)
	}
	if raw, ok := doc[KeyAnimation]; ok {
		d.Animation = d.parsePath(KeyAnimation, raw)
	}
	if raw, ok := doc[KeyUniforms]; ok {
		d.parseUniforms(raw)
	}
	if raw, ok := doc[KeyTextures]; ok {
		d.parseTextures(raw)
	}
	if raw, ok := doc[KeyClearColor]; ok {
		var c []float64
		if err := json.Unmarshal(raw, &c); err != nil || len(c) != 4 {
			d.problem(KeyClearColor, "want an array of 4 numbers")
		} else {
			d.ClearColor = &[4]float64{c[0], c[1], c[2], c[3]}
		}
	}
	if raw, ok := doc[KeyTimerMilliseconds]; ok {
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			d.problem(KeyTimerMilliseconds, "want a number")
		} else {
			d.TimerMilliseconds = &ms
		}
	}
	return d, nil
}

// Resolve returns p unchanged when absolute, otherwise joined onto the descriptor's directory.
func (d *Descriptor) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Dir, p)
}

// TextureNames lists the names of every well-formed texture entry in sorted order.
func (d *Descriptor) TextureNames() []string {
	names := make([]string, 0, len(d.Textures))
	for n := range d.Textures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d *Descriptor) problem(key, format string, args ...any) {
	d.Problems = append(d.Problems, fmt.Errorf("descriptor: %s: %s: %s", d.Path, key, fmt.Sprintf(format, args...)))
}

func (d *Descriptor) parsePath(key string, raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		d.problem(key, "want a non-empty path string")
		return ""
	}
	return d.Resolve(s)
}

// parseShaders reads `{stage: "inline source" | ["piece", ...]}`.
func (d *Descriptor) parseShaders(raw json.RawMessage) {
	var stages map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stages); err != nil || stages == nil {
		d.problem(KeyShaders, "want an object of stages")
		return
	}

	out := make(map[shader.Stage]shader.StageSource, len(stages))
	for name, value := range stages {
		stage, ok := shader.ParseStage(name)
		if !ok {
			d.problem(KeyShaders, "unknown stage %q", name)
			continue
		}
		var inline string
		if err := json.Unmarshal(value, &inline); err == nil {
			out[stage] = shader.StageSource{Inline: inline}
			continue
		}
		var pieces []string
		if err := json.Unmarshal(value, &pieces); err != nil || len(pieces) == 0 {
			d.problem(KeyShaders, "stage %q wants a source string or a non-empty array of paths", name)
			continue
		}
		for i, p := range pieces {
			pieces[i] = d.Resolve(p)
		}
		out[stage] = shader.StageSource{Paths: pieces}
	}
	if len(out) > 0 {
		d.Shaders = out
	}
}

func (d *Descriptor) parseUniforms(raw json.RawMessage) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		d.Uniforms = &UniformsSource{Inline: raw}
		return
	}
	var path string
	if err := json.Unmarshal(raw, &path); err != nil || path == "" {
		d.problem(KeyUniforms, "want an object or a path string")
		return
	}
	d.Uniforms = &UniformsSource{Path: d.Resolve(path)}
}

// parseTextures reads `{name: "path" | [6 face paths]}`.
func (d *Descriptor) parseTextures(raw json.RawMessage) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		d.problem(KeyTextures, "want an object of named textures")
		return
	}

	d.Textures = make(map[string]TextureSource, len(entries))
	for name, value := range entries {
		var single string
		if err := json.Unmarshal(value, &single); err == nil && single != "" {
			d.Textures[name] = TextureSource{Paths: []string{d.Resolve(single)}}
			continue
		}
		var faces []string
		if err := json.Unmarshal(value, &faces); err != nil || len(faces) != CubeFaces {
			d.problem(KeyTextures, "texture %q wants a path or an array of %d face paths", name, CubeFaces)
			continue
		}
		for i, p := range faces {
			faces[i] = d.Resolve(p)
		}
		d.Textures[name] = TextureSource{Paths: faces}
	}
}

// syntaxContext adds a line number to JSON syntax errors.
func syntaxContext(data []byte, err error) error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		line := 1 + bytes.Count(data[:min(int(se.Offset), len(data))], []byte("\n"))
		return fmt.Errorf("line %d: %w", line, err)
	}
	return err
}
