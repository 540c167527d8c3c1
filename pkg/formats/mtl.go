package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MTL format errors.
var (
	ErrMaterialOutsideBlock = errors.New("MTL statement before newmtl")
)

// Material is one newmtl block of an MTL library.
type Material struct {
	Name string

	Ambient  [3]float32 // Ka
	Diffuse  [3]float32 // Kd
	Specular [3]float32 // Ks

	Shininess      float32 // Ns
	OpticalDensity float32 // Ni
	Dissolve       float32 // d, or 1-Tr
	Illum          int

	AmbientMap   string // map_Ka
	DiffuseMap   string // map_Kd
	SpecularMap  string // map_Ks
	HighlightMap string // map_Ns
	AlphaMap     string // map_d
	BumpMap      string // map_bump / bump
}

// DefaultMaterial returns the values used for statements a block omits.
func DefaultMaterial(name string) Material {
	return Material{
		Name:           name,
		Diffuse:        [3]float32{1, 1, 1},
		OpticalDensity: 1,
		Dissolve:       1,
	}
}

// ParseMTL parses MTL text into materials keyed by name.
// A repeated newmtl replaces the earlier block.
func ParseMTL(data []byte) (map[string]Material, error) {
	out := make(map[string]Material)
	var cur *Material

	commit := func() {
		if cur != nil {
			out[cur.Name] = *cur
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}

		key := fields[0]
		if key == "newmtl" {
			commit()
			m := DefaultMaterial(strings.Join(fields[1:], " "))
			cur = &m
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrMaterialOutsideBlock, key)
		}
		if err := cur.apply(key, fields[1:]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading MTL: %w", err)
	}
	commit()
	return out, nil
}

// ParseMTLFile parses an MTL file from disk.
func ParseMTLFile(path string) (map[string]Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MTL file: %w", err)
	}
	return ParseMTL(data)
}

func (m *Material) apply(key string, args []string) error {
	switch key {
	case "Ka":
		return parseColor(args, &m.Ambient)
	case "Kd":
		return parseColor(args, &m.Diffuse)
	case "Ks":
		return parseColor(args, &m.Specular)
	case "Ns":
		return parseScalar(args, &m.Shininess)
	case "Ni":
		return parseScalar(args, &m.OpticalDensity)
	case "d":
		return parseScalar(args, &m.Dissolve)
	case "Tr":
		var tr float32
		if err := parseScalar(args, &tr); err != nil {
			return err
		}
		m.Dissolve = 1 - tr
	case "illum":
		if len(args) == 0 {
			return fmt.Errorf("%w: illum", ErrInvalidNumber)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: illum %q", ErrInvalidNumber, args[0])
		}
		m.Illum = n
	case "map_Ka":
		m.AmbientMap = mapPath(args)
	case "map_Kd":
		m.DiffuseMap = mapPath(args)
	case "map_Ks":
		m.SpecularMap = mapPath(args)
	case "map_Ns":
		m.HighlightMap = mapPath(args)
	case "map_d":
		m.AlphaMap = mapPath(args)
	case "map_bump", "map_Bump", "bump":
		m.BumpMap = mapPath(args)
	}
	return nil
}

// mapPath drops map options (-s 1 1 1, -clamp on, ...) and keeps the file name.
func mapPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}

func parseColor(args []string, dst *[3]float32) error {
	// "Kd 0.5" is shorthand for a grey.
	if len(args) == 1 {
		var v float32
		if err := parseScalar(args, &v); err != nil {
			return err
		}
		*dst = [3]float32{v, v, v}
		return nil
	}
	v, err := parseFloats(args, 3)
	if err != nil {
		return err
	}
	*dst = [3]float32{v[0], v[1], v[2]}
	return nil
}

func parseScalar(args []string, dst *float32) error {
	v, err := parseFloats(args, 1)
	if err != nil {
		return err
	}
	*dst = v[0]
	return nil
}
