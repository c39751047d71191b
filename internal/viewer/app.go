// Package viewer owns the interactive application: window, renderer,
// terrain sections, collision world, and the main loop.
package viewer

import (
	gomath "math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/meshforge/runtimemesh/internal/collision"
	"github.com/meshforge/runtimemesh/internal/config"
	"github.com/meshforge/runtimemesh/internal/logger"
	"github.com/meshforge/runtimemesh/internal/procgen"
	"github.com/meshforge/runtimemesh/internal/render"
	"github.com/meshforge/runtimemesh/internal/window"
	"github.com/meshforge/runtimemesh/pkg/mesh"
)

// Section ids used by the viewer.
const (
	sectionGround = iota
	sectionPatch
)

// Normals on the deforming patch are regenerated every few frames
// rather than every frame; between regenerations the stale normals are
// visually close enough.
const normalRefreshInterval = 8

const savePath = "terrain.rms"

// App wires the subsystems together and runs the main loop.
type App struct {
	cfg      *config.Config
	win      *window.Window
	renderer *render.Renderer
	world    *collision.World
	gen      *procgen.Generator

	ground *mesh.Section
	patch  *mesh.Section

	phase    float32
	frame    uint64
	yaw      float32
	distance float32
}

// New creates the viewer: window, GL renderer, and the two terrain
// sections (a static ground grid and a per-frame deforming patch).
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:      cfg,
		world:    collision.NewWorld(),
		distance: 1.6,
	}

	var err error
	a.win, err = window.New(window.Config{
		Title:      "meshview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, err
	}

	a.renderer, err = render.New(render.Config{
		Width:     cfg.Graphics.Width,
		Height:    cfg.Graphics.Height,
		Wireframe: cfg.Graphics.Wireframe,
	})
	if err != nil {
		a.win.Close()
		return nil, err
	}

	a.gen = procgen.NewGenerator(procgen.Params{
		TilesX:    cfg.Terrain.TilesX,
		TilesZ:    cfg.Terrain.TilesZ,
		TileSize:  cfg.Terrain.TileSize,
		Amplitude: float32(cfg.Terrain.Amplitude),
		Frequency: cfg.Terrain.Frequency,
		Seed:      cfg.Terrain.Seed,
	})

	if err := a.buildSections(); err != nil {
		a.renderer.Close()
		a.win.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) buildSections() error {
	var err error
	a.ground, err = a.gen.BuildStatic()
	if err != nil {
		return err
	}
	a.renderer.CreateSection(sectionGround, a.ground.SnapshotForCreation())
	a.world.Add(sectionGround, a.ground)

	a.patch, err = a.gen.BuildDeformable()
	if err != nil {
		return err
	}
	a.renderer.CreateSection(sectionPatch, a.patch.SnapshotForCreation())
	a.world.Add(sectionPatch, a.patch)

	logger.Info("sections built",
		zap.Int("ground_vertices", a.ground.VertexCount()),
		zap.Int("patch_vertices", a.patch.VertexCount()),
	)
	return nil
}

// Close tears down the renderer and window.
func (a *App) Close() {
	a.renderer.Close()
	a.win.Close()
}

// Run executes the main loop until quit.
func (a *App) Run() error {
	last := sdl.GetTicks64()

	for {
		now := sdl.GetTicks64()
		dt := float32(now-last) / 1000.0
		last = now

		if quit := a.handleEvents(); quit {
			return nil
		}

		a.update(dt)
		a.draw()
		a.win.SwapBuffers()
	}
}

func (a *App) handleEvents() (quit bool) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			switch e.Keysym.Sym {
			case sdl.K_ESCAPE:
				return true
			case sdl.K_F1:
				a.renderer.ToggleWireframe()
			case sdl.K_s:
				a.saveGround()
			case sdl.K_c:
				a.toggleCollision()
			}

		case *sdl.MouseButtonEvent:
			if e.Type == sdl.MOUSEBUTTONDOWN && e.Button == sdl.BUTTON_LEFT {
				a.pick(float32(e.X), float32(e.Y))
			}

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				a.renderer.Resize(int(e.Data1), int(e.Data2))
			}
		}
	}
	return false
}

func (a *App) update(dt float32) {
	a.frame++
	a.yaw += dt * 0.15
	a.phase += dt * float32(a.cfg.Terrain.DeformSpeed)

	if _, err := a.gen.Deform(a.patch, a.phase); err != nil {
		logger.Error("deform failed", zap.Error(err))
		return
	}

	// Cheap frames ship positions only; normals catch up periodically.
	if a.frame%normalRefreshInterval == 0 {
		if err := a.patch.GenerateNormalsAndTangents(); err != nil {
			logger.Error("normal regeneration failed", zap.Error(err))
			return
		}
		a.renderer.UpdateSection(sectionPatch, a.patch.SnapshotForUpdate(true, true, false))
	} else {
		a.renderer.UpdateSection(sectionPatch, a.patch.SnapshotPositionsOnly())
	}
}

func (a *App) draw() {
	a.renderer.Begin()
	a.renderer.Render(a.viewProj())
}

// viewProj builds an orbiting camera around the terrain center.
func (a *App) viewProj() mgl32.Mat4 {
	spanX := float32(a.cfg.Terrain.TilesX) * a.cfg.Terrain.TileSize
	spanZ := float32(a.cfg.Terrain.TilesZ) * a.cfg.Terrain.TileSize
	center := mgl32.Vec3{spanX / 2, 0, spanZ / 2}

	radius := a.distance * float32(gomath.Max(float64(spanX), float64(spanZ)))
	eye := center.Add(mgl32.Vec3{
		radius * float32(gomath.Cos(float64(a.yaw))),
		radius * 0.6,
		radius * float32(gomath.Sin(float64(a.yaw))),
	})

	w, h := a.win.Size()
	proj := mgl32.Perspective(mgl32.DegToRad(55), float32(w)/float32(h), 0.1, radius*4)
	view := mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// pick casts a ray from the clicked pixel into the collision world.
func (a *App) pick(screenX, screenY float32) {
	w, h := a.win.Size()
	ray := collision.ScreenToRay(screenX, screenY, float32(w), float32(h), a.viewProj().Inv())

	hit, ok := a.world.Raycast(ray)
	if !ok {
		logger.Debug("pick missed")
		return
	}
	logger.Info("picked",
		zap.Int("section", hit.Section),
		zap.Int("triangle", hit.Triangle),
		zap.Float32("distance", hit.Distance),
		zap.Any("point", hit.Point),
	)
}

// saveGround persists the ground section to disk.
func (a *App) saveGround() {
	f, err := os.Create(savePath)
	if err != nil {
		logger.Error("failed to create save file", zap.Error(err))
		return
	}
	defer f.Close()

	if err := mesh.WriteSection(f, a.ground); err != nil {
		logger.Error("failed to save section", zap.Error(err))
		return
	}
	logger.Info("ground section saved", zap.String("path", savePath))
}

func (a *App) toggleCollision() {
	enabled := !a.ground.CollisionEnabled()
	a.ground.SetCollisionEnabled(enabled)
	a.patch.SetCollisionEnabled(enabled)
	logger.Info("collision toggled", zap.Bool("enabled", enabled))
}
