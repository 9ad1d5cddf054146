package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// OBJStats reports what a load had to fix up.
type OBJStats struct {
	// Triangulated counts polygons with more than three corners that were fanned.
	Triangulated int

	// SkippedFaces counts faces with fewer than three corners.
	SkippedFaces int
}

// LoadOBJ reads the Wavefront OBJ file at path.
//
// Parameters:
//   - path: the OBJ file
//
// Returns:
//   - *Mesh: the loaded mesh
//   - OBJStats: fix-up counts
//   - error: an I/O or syntax error with its line number
func LoadOBJ(path string) (*Mesh, OBJStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, OBJStats{}, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()
	m, stats, err := ReadOBJ(f)
	if err != nil {
		return nil, stats, fmt.Errorf("mesh: %s: %w", path, err)
	}
	return m, stats, nil
}

// ReadOBJ parses OBJ `v`, `vt`, `vn` and `f` statements; other statements are ignored.
// Indices are 1-based, negative indices count back from the end of the attribute list
// read so far, and polygons are fan-triangulated around their first corner.
//
// Parameters:
//   - r: the OBJ text
//
// Returns:
//   - *Mesh: the parsed mesh
//   - OBJStats: fix-up counts
//   - error: a syntax error with its line number
func ReadOBJ(r io.Reader) (*Mesh, OBJStats, error) {
	m := &Mesh{}
	var stats OBJStats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var v []float64
			if v, err = floats(fields[1:], 3); err == nil {
				m.Positions = append(m.Positions, mgl64.Vec3{v[0], v[1], v[2]})
			}
		case "vn":
			var v []float64
			if v, err = floats(fields[1:], 3); err == nil {
				m.Normals = append(m.Normals, mgl64.Vec3{v[0], v[1], v[2]})
			}
		case "vt":
			var v []float64
			if v, err = floats(fields[1:], 2); err == nil {
				m.TexCoords = append(m.TexCoords, mgl64.Vec2{v[0], v[1]})
			}
		case "f":
			err = m.addFace(fields[1:], &stats)
		}
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, stats, err
	}
	if len(m.FaceNormals) != len(m.FacePositions) {
		m.FaceNormals = nil
	}
	if len(m.FaceTexCoords) != len(m.FacePositions) {
		m.FaceTexCoords = nil
	}
	return m, stats, nil
}

// corner is one `v/vt/vn` face entry converted to 0-based indices; -1 marks absent.
type corner struct {
	v, vt, vn int
}

func (m *Mesh) addFace(fields []string, stats *OBJStats) error {
	if len(fields) < 3 {
		stats.SkippedFaces++
		return nil
	}
	corners := make([]corner, len(fields))
	for i, f := range fields {
		c, err := m.parseCorner(f)
		if err != nil {
			return err
		}
		if i > 0 && ((c.vt < 0) != (corners[0].vt < 0) || (c.vn < 0) != (corners[0].vn < 0)) {
			return fmt.Errorf("face corners %q disagree on which attributes they index", strings.Join(fields, " "))
		}
		corners[i] = c
	}
	if len(corners) > 3 {
		stats.Triangulated++
	}

	// All faces must agree on whether they carry normals and texcoords.
	if len(m.FacePositions) > 0 {
		if (corners[0].vn >= 0) != (len(m.FaceNormals) > 0) || (corners[0].vt >= 0) != (len(m.FaceTexCoords) > 0) {
			return fmt.Errorf("face attributes differ from earlier faces")
		}
	}

	for i := 2; i < len(corners); i++ {
		a, b, c := corners[0], corners[i-1], corners[i]
		m.FacePositions = append(m.FacePositions, Triangle{a.v, b.v, c.v})
		if a.vn >= 0 {
			m.FaceNormals = append(m.FaceNormals, Triangle{a.vn, b.vn, c.vn})
		}
		if a.vt >= 0 {
			m.FaceTexCoords = append(m.FaceTexCoords, Triangle{a.vt, b.vt, c.vt})
		}
	}
	return nil
}

func (m *Mesh) parseCorner(s string) (corner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return corner{}, fmt.Errorf("bad face corner %q", s)
	}
	c := corner{v: -1, vt: -1, vn: -1}
	lengths := [3]int{len(m.Positions), len(m.TexCoords), len(m.Normals)}
	targets := [3]*int{&c.v, &c.vt, &c.vn}
	for i, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n == 0 {
			return corner{}, fmt.Errorf("bad index %q in face corner %q", p, s)
		}
		idx := n - 1
		if n < 0 {
			idx = lengths[i] + n
		}
		if idx < 0 || idx >= lengths[i] {
			return corner{}, fmt.Errorf("index %d out of range in face corner %q", n, s)
		}
		*targets[i] = idx
	}
	if c.v < 0 {
		return corner{}, fmt.Errorf("face corner %q has no position", s)
	}
	return c, nil
}

func floats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = v
	}
	return out, nil
}
