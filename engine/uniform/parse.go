package uniform

import (
	"encoding/json"
	"fmt"
	"sort"
)

// entry is one `{"type": ..., "value": ...}` object of the uniforms document.
type entry struct {
	Type  *string         `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Parse reads a uniforms document of the form `{name: {"type": T, "value": V}}`.
//
// Entries are processed in sorted name order, so sampler bind order is deterministic.
// A texture entry's value names a texture from the scene descriptor; those names are
// returned in bind order. Malformed entries are skipped and reported in problems.
//
// Parameters:
//   - data: the JSON document
//
// Returns:
//   - *Set: the parsed uniforms
//   - []string: texture names in bind order
//   - []error: one error per skipped entry
//   - error: an error if data is not a JSON object
func Parse(data []byte) (*Set, []string, []error, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, nil, fmt.Errorf("uniform: %w", err)
	}
	if doc == nil {
		return nil, nil, nil, fmt.Errorf("uniform: document is not an object")
	}

	names := make([]string, 0, len(doc))
	for n := range doc {
		names = append(names, n)
	}
	sort.Strings(names)

	set := NewSet()
	textures := []string{}
	var problems []error
	for _, name := range names {
		v, err := parseEntry(doc[name])
		if err != nil {
			problems = append(problems, fmt.Errorf("uniform %q: %w", name, err))
			continue
		}
		set.Store(name, v)
		if v.Kind == KindTexture {
			textures = append(textures, v.Texture)
		}
	}
	return set, textures, problems, nil
}

func parseEntry(raw json.RawMessage) (Value, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Value{}, fmt.Errorf("want an object with type and value")
	}
	if e.Type == nil {
		return Value{}, fmt.Errorf("has no type")
	}
	if len(e.Value) == 0 {
		return Value{}, fmt.Errorf("has no value")
	}
	kind, ok := ParseKind(*e.Type)
	if !ok {
		return Value{}, fmt.Errorf("unsupported type %q", *e.Type)
	}

	if kind == KindTexture {
		var name string
		if err := json.Unmarshal(e.Value, &name); err != nil {
			return Value{}, fmt.Errorf("texture value is not a string")
		}
		return Sampler(name), nil
	}

	n := kind.Components()
	nums, err := numbers(e.Value, n)
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: kind}
	if kind.IsInt() {
		v.Ints = make([]int32, n)
		for i, x := range nums {
			v.Ints[i] = int32(x)
		}
	} else {
		v.Floats = make([]float32, n)
		for i, x := range nums {
			v.Floats[i] = float32(x)
		}
	}
	return v, nil
}

// numbers decodes a single number (n == 1) or an array of exactly n numbers.
func numbers(raw json.RawMessage, n int) ([]float64, error) {
	if n == 1 {
		var x float64
		if err := json.Unmarshal(raw, &x); err != nil {
			return nil, fmt.Errorf("value is not a number")
		}
		return []float64{x}, nil
	}
	var xs []float64
	if err := json.Unmarshal(raw, &xs); err != nil {
		return nil, fmt.Errorf("value is not an array of numbers")
	}
	if len(xs) != n {
		return nil, fmt.Errorf("value array has length %d, want %d", len(xs), n)
	}
	return xs, nil
}
