package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseMTL(t *testing.T) {
	data := `# two materials
newmtl red
Ka 0.1 0.1 0.1
Kd 1 0 0
Ks 0.5
Ns 32
Ni 1.45
d 0.75
illum 2
map_Kd -s 1 1 1 bricks.png

newmtl glass
Tr 0.9
map_bump normal.png
`
	mats, err := ParseMTL([]byte(data))
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(mats) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(mats))
	}

	red := mats["red"]
	if red.Diffuse != [3]float32{1, 0, 0} {
		t.Errorf("Kd = %v", red.Diffuse)
	}
	if red.Specular != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("expected grey shorthand for Ks, got %v", red.Specular)
	}
	if red.Shininess != 32 || red.Illum != 2 || red.Dissolve != 0.75 {
		t.Errorf("unexpected scalars: Ns=%v illum=%d d=%v", red.Shininess, red.Illum, red.Dissolve)
	}
	if red.DiffuseMap != "bricks.png" {
		t.Errorf("expected map options stripped, got %q", red.DiffuseMap)
	}

	glass := mats["glass"]
	if diff := glass.Dissolve - 0.1; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected dissolve 1-Tr = 0.1, got %v", glass.Dissolve)
	}
	if glass.Diffuse != [3]float32{1, 1, 1} {
		t.Errorf("expected default white diffuse, got %v", glass.Diffuse)
	}
	if glass.BumpMap != "normal.png" {
		t.Errorf("expected bump map, got %q", glass.BumpMap)
	}
}

func TestParseMTL_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"statement before newmtl", "Kd 1 1 1\n", ErrMaterialOutsideBlock},
		{"bad color", "newmtl a\nKd 1 x 1\n", ErrInvalidNumber},
		{"bad illum", "newmtl a\nillum two\n", ErrInvalidNumber},
		{"missing shininess", "newmtl a\nNs\n", ErrInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMTL([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseMTLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.mtl")
	if err := os.WriteFile(path, []byte("newmtl one\nKd 0 1 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mats, err := ParseMTLFile(path)
	if err != nil {
		t.Fatalf("ParseMTLFile failed: %v", err)
	}
	if mats["one"].Diffuse != [3]float32{0, 1, 0} {
		t.Errorf("unexpected diffuse: %v", mats["one"].Diffuse)
	}
}
