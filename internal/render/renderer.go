// Package render is the renderer integration layer: it consumes update
// packets produced by mesh sections and owns the GPU-side buffer
// lifecycle. Hand-off is one-directional; nothing here reaches back
// into section state.
package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/meshforge/runtimemesh/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// Renderer draws mesh sections uploaded from update packets.
type Renderer struct {
	config Config

	program     uint32
	locViewProj int32
	locLightDir int32
	locBaseCol  int32
	locHasNorm  int32
	locHasColor int32

	sections map[int]*sectionResources
}

// New creates a renderer. Must be called after the OpenGL context exists.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		sections: make(map[int]*sectionResources),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.08, 0.09, 0.12, 1.0)

	var err error
	r.program, err = r.createShaderProgram()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.locViewProj = gl.GetUniformLocation(r.program, gl.Str("uViewProj\x00"))
	r.locLightDir = gl.GetUniformLocation(r.program, gl.Str("uLightDir\x00"))
	r.locBaseCol = gl.GetUniformLocation(r.program, gl.Str("uBaseColor\x00"))
	r.locHasNorm = gl.GetUniformLocation(r.program, gl.Str("uHasNormal\x00"))
	r.locHasColor = gl.GetUniformLocation(r.program, gl.Str("uHasColor\x00"))

	return r, nil
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for id := range r.sections {
		r.RemoveSection(id)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ShouldUseAdjacency reports whether this renderer wants sections to
// snapshot adjacency index buffers. The forward pipeline here has no
// tessellation stage, so it never does; a tessellation-capable backend
// would answer from its material requirements instead.
func (r *Renderer) ShouldUseAdjacency() bool {
	return false
}

// ToggleWireframe flips wireframe rendering.
func (r *Renderer) ToggleWireframe() {
	r.config.Wireframe = !r.config.Wireframe
	logger.Info("wireframe toggled", zap.Bool("on", r.config.Wireframe))
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Render draws every visible section.
func (r *Renderer) Render(viewProj mgl32.Mat4) {
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locViewProj, 1, false, &viewProj[0])
	gl.Uniform3f(r.locLightDir, 0.45, 0.8, 0.35)

	for id, res := range r.sections {
		if !res.visible || res.indexCount == 0 {
			continue
		}
		if res.adjacency {
			// Adjacency-expanded indices need a tessellation pipeline;
			// nothing to draw with plain triangles.
			logger.Debug("skipping adjacency-indexed section", zap.Int("section", id))
			continue
		}

		gl.Uniform3f(r.locBaseCol, 0.55, 0.6, 0.65)
		gl.Uniform1i(r.locHasNorm, boolInt(res.layout.NormalOff >= 0))
		gl.Uniform1i(r.locHasColor, boolInt(res.layout.ColorOff >= 0))

		gl.BindVertexArray(res.vao)
		gl.DrawElements(gl.TRIANGLES, res.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) createShaderProgram() (uint32, error) {
	vertexShaderSource := `
		#version 410 core

		layout (location = 0) in vec3 aPos;
		layout (location = 1) in vec3 aNormal;
		layout (location = 2) in vec4 aTangent;
		layout (location = 3) in vec2 aUV;
		layout (location = 4) in vec4 aColor;

		uniform mat4 uViewProj;

		out vec3 vNormal;
		out vec4 vColor;

		void main() {
			gl_Position = uViewProj * vec4(aPos, 1.0);
			vNormal = aNormal;
			vColor = aColor;
		}
	` + "\x00"

	fragmentShaderSource := `
		#version 410 core

		in vec3 vNormal;
		in vec4 vColor;

		uniform vec3 uLightDir;
		uniform vec3 uBaseColor;
		uniform int uHasNormal;
		uniform int uHasColor;

		out vec4 FragColor;

		void main() {
			vec3 color = uBaseColor;
			if (uHasColor == 1) {
				color = vColor.rgb;
			}
			float light = 1.0;
			if (uHasNormal == 1) {
				light = 0.25 + 0.75 * max(dot(normalize(vNormal), normalize(uLightDir)), 0.0);
			}
			FragColor = vec4(color * light, 1.0);
		}
	` + "\x00"

	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %s", log)
	}

	logger.Debug("shader program created", zap.Uint32("program", program))
	return program, nil
}

// compileShader compiles a shader from source.
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %s", log)
	}

	return shader, nil
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
