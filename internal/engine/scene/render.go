package scene

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/softrender/internal/engine/raster"
	"github.com/Faultbox/softrender/internal/engine/shader"
)

// FrameStats describes one rendered frame.
type FrameStats struct {
	raster.Stats

	Models   int // models that reached the pipeline
	Tiles    int // tiles rasterized, 1 for a sequential frame
	Workers  int
	Duration time.Duration
}

// Stats returns the statistics of the last rendered frame.
func (s *Scene) Stats() FrameStats {
	return s.stats
}

// Render draws one full frame and hands it to the presenter: clear both
// buffers, gather the lights, run every drawable model through the pipeline,
// rasterize, then present. With Workers > 0 the frame is split into tiles
// rasterized concurrently; presentation waits for all of them.
func (s *Scene) Render() (FrameStats, error) {
	start := time.Now()
	st := FrameStats{Workers: s.opts.Workers}

	s.fb.Clear(s.opts.ClearColor)

	cam := s.Camera()
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	s.lights.Clear()
	for _, id := range s.order {
		if m := s.models[id]; m.Kind.IsLight() {
			s.lights.Add(m.Light())
		}
	}

	var tris []raster.Triangle
	for _, id := range s.order {
		m := s.models[id]
		if !m.Drawable() {
			continue
		}
		st.Models++
		u := shader.NewUniforms(m.Transform.Matrix(), view, proj, cam.Position)
		tris = s.pipeline.Assemble(m.Mesh.Faces, u, s.pixelShader(m, u), tris, &st.Stats)
	}

	if s.opts.Workers > 0 {
		if err := s.drawTiles(tris, &st); err != nil {
			return st, err
		}
	} else {
		r := s.rasterizer()
		r.DrawAll(tris, s.fb.Bounds())
		st.Add(r.Stats)
		st.Tiles = 1
	}

	st.Duration = time.Since(start)
	s.stats = st
	s.log.Debug("frame rendered",
		zap.Int("models", st.Models),
		zap.Int("submitted", st.Submitted),
		zap.Int("culled", st.Culled),
		zap.Int("clipped", st.Clipped),
		zap.Int("drawn", st.Drawn),
		zap.Int("shaded", st.Shaded),
		zap.Int("workers", st.Workers),
		zap.Duration("duration", st.Duration))

	if s.presenter != nil {
		if err := s.presenter.Present(s.fb); err != nil {
			return st, err
		}
	}
	return st, nil
}

// drawTiles rasterizes tris over disjoint tiles, one rasterizer per tile, and
// returns once every tile is done. Tiles never overlap, so each pixel has a
// single writer.
func (s *Scene) drawTiles(tris []raster.Triangle, st *FrameStats) error {
	w, h := s.fb.Size()
	tiles := raster.Tiles(w, h, s.opts.TileSize)
	perTile := make([]raster.Stats, len(tiles))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, tile := range tiles {
		i, tile := i, tile
		g.Go(func() error {
			r := s.rasterizer()
			r.DrawAll(tris, tile)
			perTile[i] = r.Stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, ts := range perTile {
		st.Add(ts)
	}
	st.Tiles = len(tiles)
	return nil
}

func (s *Scene) rasterizer() *raster.Rasterizer {
	r := raster.New(s.fb)
	r.BarycentricEpsilon = s.opts.BarycentricEpsilon
	r.DepthEpsilon = s.opts.DepthEpsilon
	return r
}

// pixelShader picks the shader for one draw. Light gizmos are flat and unlit
// in the light's color; meshes are textured when a texture is bound and
// enabled, flat otherwise.
func (s *Scene) pixelShader(m *Model, u *shader.Uniforms) shader.PixelShader {
	if m.Kind.IsLight() {
		return &shader.Flat{Color: m.LightColor}
	}

	lit := shader.Lighting{
		Model:     s.opts.Lighting,
		Lights:    s.lights,
		Eye:       u.Eye,
		Shininess: m.Material.Specular,
	}
	if m.Material.Textured && m.Material.Texture != nil {
		return &shader.Textured{Texture: m.Material.Texture, Tint: m.Material.Color, Lighting: lit}
	}
	return &shader.Flat{Color: m.Material.Color, Lighting: lit}
}
