// Package procgen builds and animates terrain meshes from Perlin
// noise. It is the main producer of section geometry in the viewer:
// a static ground grid on an interleaved layout and a deforming patch
// exercising the split position buffer.
package procgen

import (
	gomath "math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshforge/runtimemesh/pkg/mesh"
)

// Params controls terrain dimensions and noise shape.
type Params struct {
	TilesX    int
	TilesZ    int
	TileSize  float32
	Amplitude float32
	Frequency float64
	Seed      int64
}

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// Generator produces terrain geometry from a seeded noise field.
type Generator struct {
	params Params
	noise  *perlin.Perlin
}

// NewGenerator creates a generator for the given parameters.
func NewGenerator(p Params) *Generator {
	return &Generator{
		params: p,
		noise:  perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, p.Seed),
	}
}

// Height samples the terrain height at a world-space point.
func (g *Generator) Height(x, z float32) float32 {
	n := g.noise.Noise2D(float64(x)*g.params.Frequency, float64(z)*g.params.Frequency)
	return g.params.Amplitude * float32(n)
}

// heightAt is Height with a phase offset, used to animate deformation.
func (g *Generator) heightAt(x, z, phase float32) float32 {
	n := g.noise.Noise2D(
		float64(x)*g.params.Frequency+float64(phase),
		float64(z)*g.params.Frequency,
	)
	return g.params.Amplitude * float32(n)
}

// gridIndices builds the triangle list for a (tilesX x tilesZ) grid
// with CCW winding seen from above.
func gridIndices(tilesX, tilesZ int) []uint32 {
	w := uint32(tilesX + 1)
	indices := make([]uint32, 0, tilesX*tilesZ*6)
	for z := 0; z < tilesZ; z++ {
		for x := 0; x < tilesX; x++ {
			i := uint32(z)*w + uint32(x)
			indices = append(indices,
				i, i+w, i+1,
				i+1, i+w, i+w+1,
			)
		}
	}
	return indices
}

// BuildStatic builds the ground terrain as a section on the full
// interleaved layout, with generated normals and tangents.
func (g *Generator) BuildStatic() (*mesh.Section, error) {
	p := g.params
	layout := mesh.LayoutFor(mesh.LayoutPosNormTanUV)

	vertsX := p.TilesX + 1
	vertsZ := p.TilesZ + 1
	verts := make([]float32, vertsX*vertsZ*layout.Stride)

	spanX := float32(p.TilesX) * p.TileSize
	spanZ := float32(p.TilesZ) * p.TileSize

	for z := 0; z < vertsZ; z++ {
		for x := 0; x < vertsX; x++ {
			i := z*vertsX + x
			wx := float32(x) * p.TileSize
			wz := float32(z) * p.TileSize
			layout.SetPosition(verts, i, mgl32.Vec3{wx, g.Height(wx, wz), wz})
			layout.SetUV(verts, i, mgl32.Vec2{wx / spanX, wz / spanZ})
		}
	}

	s := mesh.NewSection(mesh.LayoutPosNormTanUV, mesh.FrequencyInfrequent)
	if _, err := s.UpdateGeometry(mesh.GeometryUpdate{
		Vertices: verts,
		Indices:  gridIndices(p.TilesX, p.TilesZ),
		Move:     true,
	}); err != nil {
		return nil, err
	}
	if err := s.GenerateNormalsAndTangents(); err != nil {
		return nil, err
	}
	s.SetCollisionEnabled(true)
	return s, nil
}

// BuildDeformable builds a patch on the split-position layout, sized
// like the static terrain but meant to be re-deformed every frame.
func (g *Generator) BuildDeformable() (*mesh.Section, error) {
	p := g.params
	layout := mesh.LayoutFor(mesh.LayoutNormTanUV)

	vertsX := p.TilesX + 1
	vertsZ := p.TilesZ + 1
	count := vertsX * vertsZ

	positions := make([]mgl32.Vec3, count)
	attrs := make([]float32, count*layout.Stride)

	spanX := float32(p.TilesX) * p.TileSize
	spanZ := float32(p.TilesZ) * p.TileSize

	for z := 0; z < vertsZ; z++ {
		for x := 0; x < vertsX; x++ {
			i := z*vertsX + x
			wx := float32(x) * p.TileSize
			wz := float32(z) * p.TileSize
			positions[i] = mgl32.Vec3{wx, g.Height(wx, wz), wz}
			layout.SetUV(attrs, i, mgl32.Vec2{wx / spanX, wz / spanZ})
		}
	}

	s := mesh.NewSection(mesh.LayoutNormTanUV, mesh.FrequencyFrequent)
	if _, err := s.UpdateGeometry(mesh.GeometryUpdate{
		Positions: positions,
		Vertices:  attrs,
		Indices:   gridIndices(p.TilesX, p.TilesZ),
		Move:      true,
	}); err != nil {
		return nil, err
	}
	if err := s.GenerateNormalsAndTangents(); err != nil {
		return nil, err
	}
	s.SetCollisionEnabled(true)
	return s, nil
}

// Deform re-samples the patch heights with a phase offset and a wave
// term, replacing only the position buffer. Reports whether the
// section bounds changed. Normals and tangents go stale here; callers
// regenerate them at their own cadence.
func (g *Generator) Deform(s *mesh.Section, phase float32) (bool, error) {
	p := g.params
	vertsX := p.TilesX + 1
	vertsZ := p.TilesZ + 1

	positions := make([]mgl32.Vec3, vertsX*vertsZ)
	for z := 0; z < vertsZ; z++ {
		for x := 0; x < vertsX; x++ {
			i := z*vertsX + x
			wx := float32(x) * p.TileSize
			wz := float32(z) * p.TileSize
			wave := 0.25 * p.Amplitude * float32(gomath.Sin(float64(phase+wx*0.5)))
			positions[i] = mgl32.Vec3{wx, g.heightAt(wx, wz, phase) + wave, wz}
		}
	}

	return s.UpdateGeometry(mesh.GeometryUpdate{
		Positions: positions,
		Move:      true,
	})
}
