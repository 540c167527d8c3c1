// Package formats provides parsers for Wavefront OBJ geometry and MTL material files.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrUnsupportedExtension = errors.New("unsupported model extension: expected .obj")
	ErrInvalidFace          = errors.New("invalid OBJ face")
	ErrInvalidIndex         = errors.New("OBJ index out of range")
	ErrInvalidNumber        = errors.New("invalid OBJ number")
	ErrNoGeometry           = errors.New("OBJ contains no faces")
)

// OBJVertex is a fully resolved face corner.
type OBJVertex struct {
	Position    [3]float32
	TexCoord    [2]float32
	Normal      [3]float32
	HasTexCoord bool
	HasNormal   bool
}

// OBJTriangle is one triangle produced by fan triangulation of a face.
type OBJTriangle [3]OBJVertex

// OBJGroup is a run of triangles sharing an object name and material.
type OBJGroup struct {
	Name      string
	Material  string
	Triangles []OBJTriangle
}

// OBJ is a parsed Wavefront OBJ file.
type OBJ struct {
	Groups       []OBJGroup
	MaterialLibs []string

	// Raw attribute counts, for diagnostics.
	PositionCount int
	TexCoordCount int
	NormalCount   int
}

// TriangleCount returns the total number of triangles in all groups.
func (o *OBJ) TriangleCount() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Triangles)
	}
	return n
}

type objParser struct {
	positions [][3]float32
	texcoords [][2]float32
	normals   [][3]float32

	obj     *OBJ
	name    string
	mtl     string
	current *OBJGroup
}

// ParseOBJ parses OBJ text. Faces with more than three corners are fan triangulated.
func ParseOBJ(data []byte) (*OBJ, error) {
	p := &objParser{obj: &OBJ{}, name: "default"}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	p.flush()
	p.obj.PositionCount = len(p.positions)
	p.obj.TexCoordCount = len(p.texcoords)
	p.obj.NormalCount = len(p.normals)

	if len(p.obj.Groups) == 0 {
		return nil, ErrNoGeometry
	}
	return p.obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	if !strings.EqualFold(filepath.Ext(path), ".obj") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

func (p *objParser) parseLine(raw string) error {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, [2]float32{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(fields[1:])
	case "o", "g":
		p.flush()
		if len(fields) > 1 {
			p.name = strings.Join(fields[1:], " ")
		}
	case "usemtl":
		p.flush()
		if len(fields) > 1 {
			p.mtl = strings.Join(fields[1:], " ")
		}
	case "mtllib":
		p.obj.MaterialLibs = append(p.obj.MaterialLibs, fields[1:]...)
	}
	// s, l, p and unknown statements are ignored.
	return nil
}

func (p *objParser) parseFace(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("%w: %d corners", ErrInvalidFace, len(corners))
	}

	verts := make([]OBJVertex, len(corners))
	for i, c := range corners {
		v, err := p.parseCorner(c)
		if err != nil {
			return err
		}
		verts[i] = v
	}

	if p.current == nil {
		p.current = &OBJGroup{Name: p.name, Material: p.mtl}
	}
	for i := 1; i+1 < len(verts); i++ {
		p.current.Triangles = append(p.current.Triangles, OBJTriangle{verts[0], verts[i], verts[i+1]})
	}
	return nil
}

// parseCorner resolves one of v, v/vt, v//vn, v/vt/vn.
func (p *objParser) parseCorner(s string) (OBJVertex, error) {
	var v OBJVertex
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return v, fmt.Errorf("%w: %q", ErrInvalidFace, s)
	}

	pi, err := resolveIndex(parts[0], len(p.positions))
	if err != nil {
		return v, err
	}
	v.Position = p.positions[pi]

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(p.texcoords))
		if err != nil {
			return v, err
		}
		v.TexCoord = p.texcoords[ti]
		v.HasTexCoord = true
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(p.normals))
		if err != nil {
			return v, err
		}
		v.Normal = p.normals[ni]
		v.HasNormal = true
	}
	return v, nil
}

func (p *objParser) flush() {
	if p.current != nil && len(p.current.Triangles) > 0 {
		p.obj.Groups = append(p.obj.Groups, *p.current)
	}
	p.current = nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to a slice index.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFace, s)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, i, n)
}

// parseFloats reads at least want values; extra components (e.g. w) are dropped.
func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("%w: expected %d components, got %d", ErrInvalidNumber, want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
