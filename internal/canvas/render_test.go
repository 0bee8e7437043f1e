package canvas

import (
	"testing"

	"github.com/plotterm/plotterm/internal/plot"
	"github.com/plotterm/plotterm/internal/term"
	"github.com/plotterm/plotterm/internal/term/backend"
)

func newTestSurface(t *testing.T) *backend.Null {
	t.Helper()
	b := backend.NewNull(40, 12)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return b
}

// drawSettled draws until the async pass has finished and its output is
// composited.
func drawSettled(c *Canvas, b *backend.Null) {
	c.Draw(b)
	c.Wait()
	c.Draw(b)
}

func countPlotted(b *backend.Null) int {
	n := 0
	for row := 0; row < 12; row++ {
		for col := 0; col < 40; col++ {
			cell := b.Cell(col, row)
			if cell.Rune >= 0x2800 && cell.Rune <= 0x28FF {
				n++
			}
		}
	}
	return n
}

func TestDrawRendersPrimitives(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)
	c.AddLine(0, 0, 10, 10, c.ColorFor("alpha"), plot.NoRow)

	drawSettled(c, b)

	if countPlotted(b) == 0 {
		t.Fatal("plotted line should produce braille cells")
	}
}

func TestDrawWithoutRefreshKeepsGrid(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)
	attr := c.ColorFor("alpha")
	c.AddLine(0, 0, 10, 10, attr, plot.NoRow)
	drawSettled(c, b)
	before := countPlotted(b)

	// New primitive without Refresh: the clean canvas must not
	// re-render.
	c.AddLine(0, 10, 10, 0, attr, plot.NoRow)
	c.Draw(b)

	if got := countPlotted(b); got != before {
		t.Errorf("cell count changed %d -> %d without a refresh", before, got)
	}

	c.Refresh()
	drawSettled(c, b)
	if got := countPlotted(b); got <= before {
		t.Errorf("refresh should render the added line: %d -> %d", before, got)
	}
}

func TestRestartedRenderReflectsOnlyNewest(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)

	// First load plots in the left half of canvas space.
	attr := c.ColorFor("alpha")
	for i := 0; i < 50; i++ {
		c.AddLine(0, float64(i), 40, float64(i), attr, plot.NoRow)
	}
	c.Refresh()
	c.Draw(b) // starts the first pass

	// Supersede it immediately with a disjoint load.
	c.Reset()
	attr = c.ColorFor("beta")
	c.AddPoint(60, 25, attr, plot.NoRow)
	c.ResetView()
	drawSettled(c, b)

	// Only the single point's cell may be plotted; any cell from the
	// canceled first pass would make the count larger.
	if got := countPlotted(b); got != 1 {
		t.Errorf("got %d plotted cells, want exactly 1 from the newest render", got)
	}
}

func TestResizeTriggersRerender(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)
	c.AddLine(0, 0, 10, 10, c.ColorFor("alpha"), plot.NoRow)
	drawSettled(c, b)

	b.Resize(30, 10)
	c.Resize(30, 10)
	if !c.Dirty() {
		t.Fatal("resize should mark the canvas dirty")
	}
	c.Draw(b)
	c.Wait()
	c.Draw(b)

	n := 0
	for row := 0; row < 10; row++ {
		for col := 0; col < 30; col++ {
			r := b.Cell(col, row).Rune
			if r >= 0x2800 && r <= 0x28FF {
				n++
			}
		}
	}
	if n == 0 {
		t.Error("grid should be repopulated at the new size")
	}
}

func TestLegendDrawnWithLabels(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)
	c.AddPoint(1, 1, c.ColorFor("alpha"), plot.NoRow)

	drawSettled(c, b)

	// Legend entry "1.alpha" is drawn near the right edge of row 0.
	col := (40*2 - 30) / 2
	if got := b.Cell(col, 0); got.Rune != '1' {
		t.Errorf("legend cell = %q, want '1'", got.Rune)
	}
}

func TestLegendHiddenWhenLabelsOff(t *testing.T) {
	c := New(Options{Palette: testPalette(3), ShowLabels: false}, nil)
	c.Resize(40, 12)
	b := newTestSurface(t)
	c.AddPoint(1, 1, c.ColorFor("alpha"), plot.NoRow)

	drawSettled(c, b)

	col := (40*2 - 30) / 2
	if got := b.Cell(col, 0); got.Rune == '1' {
		t.Error("legend should not draw when labels are off")
	}
}

func TestCanvasLabelsTransformed(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)
	attr := c.ColorFor("alpha")
	c.AddLine(0, 0, 10, 10, attr, plot.NoRow)
	c.AddLabel(5, 5, "mid", attr, plot.NoRow)

	drawSettled(c, b)

	found := false
	for row := 0; row < 12 && !found; row++ {
		for col := 0; col < 40 && !found; col++ {
			if b.Cell(col, row).Rune == 'm' {
				found = true
			}
		}
	}
	if !found {
		t.Error("canvas-unit label should be drawn after transform")
	}
}

func TestCursorOverlayInDraw(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)
	c.AddLine(0, 0, 10, 10, c.ColorFor("alpha"), plot.NoRow)

	drawSettled(c, b)

	found := false
	for row := 0; row < 12 && !found; row++ {
		for col := 0; col < 40 && !found; col++ {
			if b.Cell(col, row).Style.Attributes.Has(term.AttrReverse) {
				found = true
			}
		}
	}
	if !found {
		t.Error("cursor should be visible as a reverse-video region")
	}
}

func TestRowsVisibleOnScreen(t *testing.T) {
	c := newTestCanvas(3)
	b := newTestSurface(t)
	attr := c.ColorFor("alpha")
	c.AddPoint(2, 2, attr, 1)
	c.AddPoint(8, 8, attr, 2)

	drawSettled(c, b)

	rows := c.Plotter().RowsInBox(c.PixelVisible())
	if len(rows) != 2 {
		t.Errorf("got rows %v, want both plotted rows visible", rows)
	}
}
