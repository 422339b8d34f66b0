package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cells/components"
)

// Nutrient slider bounds.
const (
	MinNutrient = 0
	MaxNutrient = 10
)

// Controls is the state the control panel edits. The viewer copies it into
// the world between tick batches.
type Controls struct {
	Nutrient float64
	Speed    int
	MaxSpeed int
	Filter   components.Trait
	Paused   bool
	Step     bool // run one tick while paused
}

// ControlPanel renders the raygui sliders and the filter selector.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlPanel creates a new control panel.
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks there
// do not select cells.
func (c *ControlPanel) Contains(px, py float32) bool {
	if !c.visible {
		return false
	}
	return px >= float32(c.x) && px < float32(c.x+c.width) &&
		py >= float32(c.y) && py < float32(c.y+c.height())
}

func (c *ControlPanel) height() int32 {
	t := c.renderer.Theme
	rows := int32(components.NumTraits)
	return t.Padding*2 + t.LineHeight + 4 + // title
		2*(t.LineHeight+30) + // sliders
		34 + // pause/step
		t.LineHeight + rows*26
}

// Draw renders the panel and applies user edits to ctl. Returns the Y
// coordinate below the panel.
func (c *ControlPanel) Draw(ctl *Controls) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := c.y + padding
	y = r.DrawTitle(c.x+padding, y, "Controls")

	// Nutrient level
	rl.DrawText(fmt.Sprintf("Nutrient level: %.2f", ctl.Nutrient), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	nutrient := gui.SliderBar(
		rl.Rectangle{X: x + 12, Y: float32(y), Width: inner - 36, Height: 16},
		"0", "10",
		float32(ctl.Nutrient), MinNutrient, MaxNutrient,
	)
	if nutrient != float32(ctl.Nutrient) {
		ctl.Nutrient = float64(nutrient)
	}
	y += 30

	// Ticks per frame
	rl.DrawText(fmt.Sprintf("Speed: %d ticks/frame", ctl.Speed), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	speed := gui.SliderBar(
		rl.Rectangle{X: x + 12, Y: float32(y), Width: inner - 36, Height: 16},
		"1", fmt.Sprint(ctl.MaxSpeed),
		float32(ctl.Speed), 1, float32(ctl.MaxSpeed),
	)
	if int(speed) != ctl.Speed && int(speed) >= 1 {
		ctl.Speed = int(speed)
	}
	y += 30

	half := (inner - 6) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 26}, toggleText(ctl.Paused, "Resume", "Pause")) {
		ctl.Paused = !ctl.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: float32(y), Width: half, Height: 26}, "Step") {
		ctl.Step = true
	}
	y += 34

	// Filter selector, one button per view
	y = r.DrawSectionHeader(int32(x), y, "View")
	for t := components.TraitNone; t < components.NumTraits; t++ {
		label := t.Name()
		if t == ctl.Filter {
			label = "> " + label
		}
		if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 22}, label) {
			ctl.Filter = t
		}
		y += 26
	}

	return c.y + c.height()
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
