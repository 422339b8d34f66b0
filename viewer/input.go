package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cells/components"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.ctl.Paused = !v.ctl.Paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.ctl.Step = true
	}

	// Ticks per frame with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.ctl.Speed > 1 {
		v.ctl.Speed--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.ctl.Speed < v.ctl.MaxSpeed {
		v.ctl.Speed++
	}

	// Cycle through the views
	if rl.IsKeyPressed(rl.KeyF) {
		v.ctl.Filter = (v.ctl.Filter + 1) % components.NumTraits
	}

	if rl.IsKeyPressed(rl.KeyG) {
		v.lattice.Enabled = !v.lattice.Enabled
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyI) {
		v.showInfo = !v.showInfo
	}

	v.handleCameraInput()
	v.handleSelection()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.info.SetPosition(int32(w)-panelWidth-10, 10)
	v.cellPanel.SetPosition(int32(w)-panelWidth-10, 320)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	panSpeed := float32(8)

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	// Drag with the right mouse button
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.camera.Pan(-d.X, -d.Y)
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		v.camera.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleSelection selects the grid slot under a left click. Clicks on the
// control panel belong to raygui.
func (v *Viewer) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mouse := rl.GetMousePosition()
	if v.controls.Contains(mouse.X, mouse.Y) {
		return
	}
	if rl.IsKeyDown(rl.KeyLeftShift) {
		v.selected = false
		return
	}
	v.selX, v.selY, v.selected = v.camera.CellAt(mouse.X, mouse.Y)
}
