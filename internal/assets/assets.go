// Package assets resolves model and texture files across search roots and
// turns them into meshes, materials and textures.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/engine/mesh"
	"github.com/Faultbox/softrender/internal/engine/scene"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/internal/logger"
	"github.com/Faultbox/softrender/pkg/encoding"
	"github.com/Faultbox/softrender/pkg/formats"
	"github.com/Faultbox/softrender/pkg/math"
)

// ErrNotFound is returned when no search root holds a file.
var ErrNotFound = errors.New("asset not found")

// Options configures a Manager.
type Options struct {
	SearchPaths    []string
	TextEncoding   string // encoding of OBJ and MTL text, empty for UTF-8
	TextureFilter  texture.Filter
	MaxTextureSize int // 0 keeps textures at full size
	Build          mesh.BuildOptions
}

// Manager loads assets from the filesystem.
type Manager struct {
	opts  Options
	roots []string
	cache *Cache
	log   *zap.Logger
	mu    sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager(opts Options) (*Manager, error) {
	if _, err := encoding.Lookup(opts.TextEncoding); err != nil {
		return nil, err
	}
	m := &Manager{
		opts:  opts,
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
	for _, dir := range opts.SearchPaths {
		m.AddRoot(dir)
	}
	return m, nil
}

// AddRoot adds a search directory.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) {
	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()
}

// Resolve finds path on disk. Absolute paths and paths that exist relative
// to the working directory are used as-is; otherwise the roots are searched.
func (m *Manager) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return path, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.roots[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Load reads a file, caching by resolved path.
func (m *Manager) Load(path string) ([]byte, error) {
	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	return m.read(resolved)
}

func (m *Manager) read(resolved string) ([]byte, error) {
	if data, ok := m.cache.Get(resolved); ok {
		return data, nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resolved, err)
	}
	m.cache.Set(resolved, data)
	return data, nil
}

// LoadTexture decodes an image file into a texture.
func (m *Manager) LoadTexture(path string) (*texture.Texture, error) {
	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	return m.loadTexture(resolved)
}

func (m *Manager) loadTexture(resolved string) (*texture.Texture, error) {
	data, err := m.read(resolved)
	if err != nil {
		return nil, err
	}
	img, err := texture.Decode(resolved, data)
	if err != nil {
		return nil, err
	}
	img = texture.Downscale(img, m.opts.MaxTextureSize)

	tex := texture.New(filepath.Base(resolved), img)
	tex.Filter = m.opts.TextureFilter
	w, h := tex.Size()
	m.log.Debug("texture loaded", zap.String("path", resolved), zap.Int("width", w), zap.Int("height", h))
	return tex, nil
}

// LoadModel implements scene.Loader. It parses a Wavefront OBJ file and the
// first material its faces use. Missing material libraries and textures are
// logged and the defaults kept.
func (m *Manager) LoadModel(path string) (*mesh.Mesh, scene.Material, error) {
	return m.LoadModelWith(path, m.opts.Build)
}

// LoadModelWith is LoadModel with explicit mesh build options.
func (m *Manager) LoadModelWith(path string, build mesh.BuildOptions) (*mesh.Mesh, scene.Material, error) {
	mat := scene.DefaultMaterial()
	if !strings.EqualFold(filepath.Ext(path), ".obj") {
		return nil, mat, fmt.Errorf("%w: %s", formats.ErrUnsupportedExtension, filepath.Ext(path))
	}

	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, mat, err
	}
	obj, err := parseText(m, resolved, formats.ParseOBJ)
	if err != nil {
		return nil, mat, err
	}

	name := strings.TrimSuffix(filepath.Base(resolved), filepath.Ext(resolved))
	msh := mesh.FromOBJ(name, obj, build)
	if msh == nil {
		return nil, mat, fmt.Errorf("%s: %w", resolved, scene.ErrEmptyMesh)
	}

	if def, dir, ok := m.findMaterial(resolved, obj, msh.Material()); ok {
		mat = m.applyMaterial(mat, def, dir)
	}

	m.log.Info("model loaded",
		zap.String("path", resolved),
		zap.Int("triangles", msh.TriangleCount()),
		zap.Int("groups", len(msh.Groups)))
	return msh, mat, nil
}

// parseText decodes a text asset to UTF-8 and hands it to parse.
func parseText[T any](m *Manager, resolved string, parse func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := m.read(resolved)
	if err != nil {
		return zero, err
	}
	text, err := encoding.Decode(data, m.opts.TextEncoding)
	if err != nil {
		return zero, err
	}
	v, err := parse(text)
	if err != nil {
		return zero, fmt.Errorf("parsing %s: %w", resolved, err)
	}
	return v, nil
}

// findMaterial searches the OBJ's material libraries for name. It returns
// the definition and the library's directory for resolving texture maps.
func (m *Manager) findMaterial(objPath string, obj *formats.OBJ, name string) (formats.Material, string, bool) {
	if name == "" {
		return formats.Material{}, "", false
	}
	for _, lib := range obj.MaterialLibs {
		libPath, ok := m.resolveSibling(filepath.Dir(objPath), lib)
		if !ok {
			m.log.Warn("material library not found", zap.String("obj", objPath), zap.String("mtllib", lib))
			continue
		}
		mats, err := parseText(m, libPath, formats.ParseMTL)
		if err != nil {
			m.log.Warn("material library rejected", zap.String("mtllib", libPath), zap.Error(err))
			continue
		}
		if def, ok := mats[name]; ok {
			return def, filepath.Dir(libPath), true
		}
	}
	return formats.Material{}, "", false
}

// applyMaterial copies an MTL definition onto mat. A diffuse map that loads
// switches the material to textured mode.
func (m *Manager) applyMaterial(mat scene.Material, def formats.Material, dir string) scene.Material {
	mat.Color = math.Vec3{X: def.Diffuse[0], Y: def.Diffuse[1], Z: def.Diffuse[2]}
	mat.Specular = def.Shininess
	mat.Opacity = def.Dissolve
	mat.Refractive = def.OpticalDensity

	if def.DiffuseMap == "" {
		return mat
	}
	texPath, ok := m.resolveSibling(dir, def.DiffuseMap)
	if !ok {
		m.log.Warn("texture not found", zap.String("material", def.Name), zap.String("map", def.DiffuseMap))
		return mat
	}
	tex, err := m.loadTexture(texPath)
	if err != nil {
		m.log.Warn("texture rejected", zap.String("path", texPath), zap.Error(err))
		return mat
	}
	mat.Texture = tex
	mat.Textured = true
	return mat
}

// resolveSibling resolves ref inside dir, trying the path as written and
// then normalized, before falling back to the search roots.
func (m *Manager) resolveSibling(dir, ref string) (string, bool) {
	for _, p := range []string{ref, encoding.NormalizePath(ref)} {
		candidate := filepath.Join(dir, filepath.FromSlash(p))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	if resolved, err := m.Resolve(filepath.FromSlash(strings.ReplaceAll(ref, "\\", "/"))); err == nil {
		return resolved, true
	}
	return "", false
}

// Loader returns a scene.Loader that builds meshes with opts.
func (m *Manager) Loader(opts mesh.BuildOptions) scene.Loader {
	return buildLoader{m: m, opts: opts}
}

type buildLoader struct {
	m    *Manager
	opts mesh.BuildOptions
}

func (l buildLoader) LoadModel(path string) (*mesh.Mesh, scene.Material, error) {
	return l.m.LoadModelWith(path, l.opts)
}

// Close clears the cache.
func (m *Manager) Close() {
	m.cache.Clear()
}

// CacheStats returns cache hits and misses.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.cache.Stats()
}
