// Package viewer runs the interactive raylib front end: it applies the
// control panel to the world between tick batches and draws the grid, HUD
// and panels each frame.
package viewer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cells/camera"
	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/game"
	"github.com/pthm-cable/cells/renderer"
	"github.com/pthm-cable/cells/ui"
)

// MaxSpeed caps the ticks-per-frame slider.
const MaxSpeed = 50

const (
	panelWidth = 240
	title      = "Cells"
	legend     = "[Space] pause  [N] step  [,/.] speed  [F] view  [G] grid  [Tab] controls  [I] info  [Click] select  [Home] reset view"
)

// Viewer owns everything that only exists in graphical mode.
type Viewer struct {
	game *game.Game

	camera    *camera.Camera
	cells     *renderer.CellRenderer
	lattice   *renderer.LatticeRenderer
	hud       *ui.HUD
	controls  *ui.ControlPanel
	info      *ui.InfoPanel
	cellPanel *ui.CellPanel

	ctl      ui.Controls
	showInfo bool

	selected   bool
	selX, selY int

	screenWidth, screenHeight float32
}

// New creates a viewer for g. The raylib window must already be open.
func New(g *game.Game, filter components.Trait) *Viewer {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	world := g.World()

	v := &Viewer{
		game:      g,
		camera:    camera.New(w, h, float32(world.Width()), float32(world.Height())),
		cells:     renderer.NewCellRenderer(filter),
		lattice:   renderer.NewLatticeRenderer(),
		hud:       ui.NewHUD(),
		controls:  ui.NewControlPanel(10, ui.HUDBottom, panelWidth),
		info:      ui.NewInfoPanel(int32(w)-panelWidth-10, 10, panelWidth),
		cellPanel: ui.NewCellPanel(int32(w)-panelWidth-10, 320, panelWidth),
		ctl: ui.Controls{
			Nutrient: world.NutrientLevel,
			Speed:    world.Speed,
			MaxSpeed: MaxSpeed,
			Filter:   filter,
		},
		showInfo:     true,
		screenWidth:  w,
		screenHeight: h,
	}
	if v.ctl.Speed > MaxSpeed {
		v.ctl.MaxSpeed = v.ctl.Speed
	}
	return v
}

// Run loops until the window is closed or maxTicks ticks have run
// (0 = unlimited).
func (v *Viewer) Run(maxTicks int) {
	defer v.lattice.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && int(v.game.Tick()) >= maxTicks {
			break
		}
	}
}

// Update handles input and advances the simulation by one frame.
func (v *Viewer) Update() {
	v.game.RecordFrame()
	v.handleInput()

	// Control edits reach the world only here, between tick batches
	world := v.game.World()
	world.NutrientLevel = v.ctl.Nutrient
	world.Speed = v.ctl.Speed
	v.cells.Filter = v.ctl.Filter

	switch {
	case !v.ctl.Paused:
		v.game.Update()
	case v.ctl.Step:
		v.game.Step()
	}
	v.ctl.Step = false
}

// Draw renders the frame.
func (v *Viewer) Draw() {
	stats := v.game.Stats()
	world := v.game.World()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.cells.DrawBackground(v.camera)
	v.cells.Draw(v.camera, world.Cells(), &stats)
	v.lattice.Draw(v.camera)

	var selected *game.CellView
	if v.selected {
		if i, ok := world.At(v.selX, v.selY); ok {
			view := world.View(i)
			selected = &view
			v.cells.DrawHighlight(v.camera, v.selX, v.selY, rl.Yellow)
		}
	}

	v.hud.Draw(ui.HUDData{
		Title:      title,
		Tick:       v.game.Tick(),
		Population: world.Len(),
		Lineages:   world.Lineages(),
		Speed:      v.ctl.Speed,
		FPS:        rl.GetFPS(),
		Paused:     v.ctl.Paused,
		Filter:     v.ctl.Filter,
		TickTime:   v.game.Perf().AvgTickDuration,
		Bookmark:   v.game.LastBookmark(),
	})

	v.controls.Draw(&v.ctl)

	if v.showInfo {
		v.info.Draw(&stats, v.game.LastWindow())
	}
	if selected != nil {
		v.cellPanel.Draw(selected)
	} else if v.selected {
		rl.DrawText(fmt.Sprintf("(%d, %d) empty", v.selX, v.selY), int32(v.screenWidth)-panelWidth-10, 320, 14, rl.Gray)
	}

	v.hud.DrawControls(int32(v.screenHeight), legend)

	rl.EndDrawing()
}
