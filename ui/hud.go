package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/game"
	"github.com/pthm-cable/cells/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Tick       int32
	Population int
	Lineages   int
	Speed      int
	FPS        int32
	Paused     bool
	Filter     components.Trait
	TickTime   time.Duration

	// Most recent bookmark, nil if none yet
	Bookmark *telemetry.Bookmark
}

// HUD text rows, top to bottom.
const (
	hudStatusY   = 75
	hudBookmarkY = 95
	hudSmallFont = 14
)

// HUDBottom is the first screen row below the HUD, bookmark line included.
const HUDBottom = hudBookmarkY + hudSmallFont + 8

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Cells: %d | Lineages: %d", data.Population, data.Lineages),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Tick: %s", data.Tick, data.Speed, data.FPS, data.TickTime.Round(time.Microsecond)),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	if data.Population == 0 {
		status = "EXTINCT"
	}
	rl.DrawText(fmt.Sprintf("%s | View: %s", status, data.Filter.Name()), 10, hudStatusY, 16, rl.Yellow)

	if b := data.Bookmark; b != nil {
		rl.DrawText(fmt.Sprintf("[%d] %s", b.Tick, b.Description), 10, hudBookmarkY, hudSmallFont, rl.SkyBlue)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// InfoPanel shows the population averages of every tracked trait.
type InfoPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInfoPanel creates a new info panel.
func NewInfoPanel(x, y, width int32) *InfoPanel {
	return &InfoPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *InfoPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the averages. Missing averages (empty world) show as n/a.
func (p *InfoPanel) Draw(stats *telemetry.Statistics, window *telemetry.WindowStats) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	rows := int32(len(components.TrackedTraits)) + 2
	if window != nil {
		rows += 4
	}
	height := padding*2 + lineHeight + 4 + rows*lineHeight + lineHeight
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := r.DrawTitle(x, p.y+padding, "Info")

	y = r.DrawLabelValue(x, y, "Population", fmt.Sprint(stats.Population))
	y = r.DrawSectionHeader(x, y, "Averages")
	for _, t := range components.TrackedTraits {
		y = r.DrawFloat(x, y, t.Name(), stats.Average(t))
	}

	if window != nil {
		y = r.DrawSectionHeader(x, y, fmt.Sprintf("Window to %d", window.WindowEndTick))
		y = r.DrawLabelValue(x, y, "Births", fmt.Sprintf("%d (%d mutated)", window.Births, window.Mutations))
		y = r.DrawLabelValue(x, y, "Deaths", fmt.Sprintf("%d age, %d starved", window.DeathsAge, window.DeathsStarved))
		y = r.DrawLabelValue(x, y, "Attacks", fmt.Sprintf("%d (%d hit)", window.Attacks, window.AttackHits))
	}
	return y
}

// CellPanel shows the selected cell.
type CellPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewCellPanel creates a new cell panel.
func NewCellPanel(x, y, width int32) *CellPanel {
	return &CellPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *CellPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

var directionNames = [components.NumDirections]string{"north", "east", "south", "west"}

// Draw renders the cell's state and traits.
func (p *CellPanel) Draw(c *game.CellView) {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	rows := int32(6 + len(components.TrackedTraits))
	height := padding*2 + lineHeight + 4 + rows*lineHeight + lineHeight
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := r.DrawTitle(x, p.y+padding, fmt.Sprintf("Cell (%d, %d)", c.X, c.Y))

	cr, cg, cb, ca := c.Color.RGBA()
	y = r.DrawColorSwatch(x, y, "Lineage", rl.Color{R: cr, G: cg, B: cb, A: ca})
	y = r.DrawLabelValue(x, y, "Species", fmt.Sprintf("%x", uint64(c.Species)))
	y = r.DrawLabelValue(x, y, "Facing", directionNames[c.Direction])
	y = r.DrawLabelValue(x, y, "Age", fmt.Sprintf("%d / %.0f", c.Age, c.Traits[components.TraitMaxAge]))
	y = r.DrawEnergyBar(x, y, "Energy", c.Energy, c.Traits[components.TraitMaxEnergy], p.width-padding*2)

	y = r.DrawSectionHeader(x, y, "Traits")
	for _, t := range components.TrackedTraits {
		y = r.DrawFloat(x, y, t.Name(), c.Traits[t])
	}
}
