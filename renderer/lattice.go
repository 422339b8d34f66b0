package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cells/camera"
)

// MinLatticeZoom is the cell size in pixels below which the lattice is hidden.
const MinLatticeZoom = 6

const latticeFS = `#version 330
out vec4 finalColor;

uniform vec2 resolution;
uniform vec2 cameraPos;
uniform float cameraZoom;
uniform vec2 worldSize;
uniform vec4 lineColor;

void main() {
    vec2 screen = vec2(gl_FragCoord.x, resolution.y - gl_FragCoord.y);
    vec2 world = (screen - resolution * 0.5) / cameraZoom + cameraPos;
    if (world.x < 0.0 || world.y < 0.0 || world.x > worldSize.x || world.y > worldSize.y) {
        discard;
    }
    vec2 f = fract(world);
    vec2 d = min(f, 1.0 - f) * cameraZoom;
    float line = 1.0 - smoothstep(0.0, 1.0, min(d.x, d.y));
    finalColor = vec4(lineColor.rgb, lineColor.a * line);
}
`

// LatticeRenderer draws the cell boundaries of the grid with a fragment
// shader once cells are large enough on screen.
type LatticeRenderer struct {
	shader        rl.Shader
	resolutionLoc int32
	cameraPosLoc  int32
	cameraZoomLoc int32
	worldSizeLoc  int32
	lineColorLoc  int32

	Color   rl.Color
	Enabled bool

	initialized bool
}

// NewLatticeRenderer creates a new lattice renderer.
func NewLatticeRenderer() *LatticeRenderer {
	return &LatticeRenderer{
		Color:   rl.NewColor(255, 255, 255, 40),
		Enabled: true,
	}
}

// Init compiles the shader (must be called after raylib window is created).
func (l *LatticeRenderer) Init() {
	if l.initialized {
		return
	}

	l.shader = rl.LoadShaderFromMemory("", latticeFS)
	l.resolutionLoc = rl.GetShaderLocation(l.shader, "resolution")
	l.cameraPosLoc = rl.GetShaderLocation(l.shader, "cameraPos")
	l.cameraZoomLoc = rl.GetShaderLocation(l.shader, "cameraZoom")
	l.worldSizeLoc = rl.GetShaderLocation(l.shader, "worldSize")
	l.lineColorLoc = rl.GetShaderLocation(l.shader, "lineColor")

	l.initialized = true
}

// Visible reports whether Draw would render anything at the camera's zoom.
func (l *LatticeRenderer) Visible(cam *camera.Camera) bool {
	return l.Enabled && cam.Zoom >= MinLatticeZoom
}

// Draw overlays the lattice over the grid area.
func (l *LatticeRenderer) Draw(cam *camera.Camera) {
	if !l.Visible(cam) {
		return
	}
	if !l.initialized {
		l.Init()
	}

	color := []float32{
		float32(l.Color.R) / 255,
		float32(l.Color.G) / 255,
		float32(l.Color.B) / 255,
		float32(l.Color.A) / 255,
	}

	rl.BeginShaderMode(l.shader)
	rl.SetShaderValue(l.shader, l.resolutionLoc, []float32{cam.ViewportW, cam.ViewportH}, rl.ShaderUniformVec2)
	rl.SetShaderValue(l.shader, l.cameraPosLoc, []float32{cam.X, cam.Y}, rl.ShaderUniformVec2)
	rl.SetShaderValue(l.shader, l.cameraZoomLoc, []float32{cam.Zoom}, rl.ShaderUniformFloat)
	rl.SetShaderValue(l.shader, l.worldSizeLoc, []float32{cam.WorldW, cam.WorldH}, rl.ShaderUniformVec2)
	rl.SetShaderValue(l.shader, l.lineColorLoc, color, rl.ShaderUniformVec4)

	rl.DrawRectangle(0, 0, int32(cam.ViewportW), int32(cam.ViewportH), rl.White)

	rl.EndShaderMode()
}

// Unload frees resources.
func (l *LatticeRenderer) Unload() {
	if l.initialized {
		rl.UnloadShader(l.shader)
		l.initialized = false
	}
}
