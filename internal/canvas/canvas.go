// Package canvas implements the zoomable, scrollable virtual canvas of
// the plotting engine. Plotted primitives live in arbitrary continuous
// "canvas units"; the canvas owns the mapping onto the pixel grid, the
// pan/zoom/cursor state, the legend, and the asynchronous render pass
// that repopulates the pixel grid from the primitives.
package canvas

import (
	"fmt"
	"sync"

	"github.com/plotterm/plotterm/internal/geom"
	"github.com/plotterm/plotterm/internal/plot"
	"github.com/plotterm/plotterm/internal/term"
)

// Margins reserved around the plot view for axes and legend, in pixels.
const (
	leftMarginPixels   = 10 * 2
	rightMarginPixels  = 6 * 2
	topMarginPixels    = 0
	bottomMarginPixels = 2 * 4 // reserve the bottom lines for the x axis
)

// legendXOffset is how far from the right pixel edge legend entries are
// drawn.
const legendXOffset = 30

// otherLegend labels the shared overflow bucket once the palette runs
// out of distinct entries.
const otherLegend = "[other]"

// Line is a plotted segment in canvas units. A point is stored as a
// zero-length line. Lines are immutable once added.
type Line struct {
	X1, Y1, X2, Y2 float64
	Attr           plot.Attr
	Row            plot.RowID
}

// Label is a plotted annotation in canvas units.
type Label struct {
	X, Y float64
	Text string
	Attr plot.Attr
	Row  plot.RowID
}

// LegendEntry is one ordered legend slot. The slot index doubles as the
// numeric toggle key for its attribute.
type LegendEntry struct {
	Label string
	Attr  plot.Attr
}

// Options configures a Canvas.
type Options struct {
	// Palette is the ordered list of styles assigned to grouping keys.
	Palette []term.Style
	// AspectRatio, when nonzero, locks the x/y scalers together so
	// shapes are not distorted; the value multiplies the x scaler.
	AspectRatio float64
	// ShowLabels controls whether labels and the legend are drawn.
	ShowLabels bool
	// Policy selects the pixel attribute resolution policy.
	Policy plot.Policy
}

// Canvas is a virtual plotting surface. Load primitives with the Add
// methods, then Draw it onto a backend; pan/zoom/cursor operations
// mark it dirty and the next Draw re-renders.
type Canvas struct {
	plotter *plot.Plotter
	source  plot.RowSource

	cols, rows int
	plotview   geom.Box // pixel-space rectangle inside the margins

	lines  []Line
	labels []Label

	// nil until first bounds computation
	canvasBox  *geom.Box
	visibleBox *geom.Box
	cursorBox  *geom.Box

	zoom        float64
	aspectRatio float64
	showLabels  bool

	legend    []LegendEntry
	attrByKey map[string]plot.Attr
	unused    []plot.Attr
	palette   []term.Style

	// render pipeline state, guarded by renderMu
	renderMu sync.Mutex
	pass     *renderPass
	dirty    bool
}

// New creates a canvas plotting onto a fresh pixel grid. The source may
// be nil when selection highlighting is not wanted.
func New(opts Options, source plot.RowSource) *Canvas {
	c := &Canvas{
		plotter:     plot.New(opts.Palette, source),
		source:      source,
		zoom:        1.0,
		aspectRatio: opts.AspectRatio,
		showLabels:  opts.ShowLabels,
		palette:     opts.Palette,
		attrByKey:   make(map[string]plot.Attr),
	}
	c.plotter.SetPolicy(opts.Policy)
	c.resetColorPool()
	return c
}

// Plotter exposes the underlying pixel grid, for attribute toggling and
// row collection.
func (c *Canvas) Plotter() *plot.Plotter {
	return c.plotter
}

// Resize records the terminal dimensions and recomputes the plot view.
// Must be called before the first Draw and on every terminal resize.
func (c *Canvas) Resize(cols, rows int) {
	c.cols = cols
	c.rows = rows
	c.plotter.Resize(cols, rows)
	c.resetPlotview()
	c.Refresh()
}

// resetPlotview recomputes the pixel-space plot rectangle from the
// current grid size minus the axis/legend margins.
func (c *Canvas) resetPlotview() {
	w, h := c.plotter.Size()
	c.plotview = geom.BoundingBox(
		leftMarginPixels, topMarginPixels,
		float64(w)-rightMarginPixels, float64(h)-bottomMarginPixels,
	)
}

// AddPoint plots a single point.
func (c *Canvas) AddPoint(x, y float64, attr plot.Attr, row plot.RowID) {
	c.lines = append(c.lines, Line{X1: x, Y1: y, X2: x, Y2: y, Attr: attr, Row: row})
}

// AddLine plots a segment.
func (c *Canvas) AddLine(x1, y1, x2, y2 float64, attr plot.Attr, row plot.RowID) {
	c.lines = append(c.lines, Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Attr: attr, Row: row})
}

// AddPolyline plots segments between consecutive vertices.
func (c *Canvas) AddPolyline(vertices []geom.Point, attr plot.Attr, row plot.RowID) {
	for i := 1; i < len(vertices); i++ {
		c.AddLine(vertices[i-1].X, vertices[i-1].Y, vertices[i].X, vertices[i].Y, attr, row)
	}
}

// AddPolygon plots a closed polyline, including the last-to-first edge.
func (c *Canvas) AddPolygon(vertices []geom.Point, attr plot.Attr, row plot.RowID) {
	if len(vertices) == 0 {
		return
	}
	prev := vertices[len(vertices)-1]
	for _, v := range vertices {
		c.AddLine(prev.X, prev.Y, v.X, v.Y, attr, row)
		prev = v
	}
}

// AddLabel plots a text annotation at a canvas-unit position.
func (c *Canvas) AddLabel(x, y float64, text string, attr plot.Attr, row plot.RowID) {
	c.labels = append(c.labels, Label{X: x, Y: y, Text: text, Attr: attr, Row: row})
}

// Len returns the number of plotted segments.
func (c *Canvas) Len() int {
	return len(c.lines)
}

// Reset clears all primitives, labels, legend entries, and color
// assignments in preparation for a fresh load.
func (c *Canvas) Reset() {
	c.lines = nil
	c.labels = nil
	c.legend = nil
	c.attrByKey = make(map[string]plot.Attr)
	c.resetColorPool()
}

func (c *Canvas) resetColorPool() {
	c.unused = c.unused[:0]
	for i := range c.palette {
		c.unused = append(c.unused, plot.Attr(i))
	}
}

// ColorFor returns the stable attribute assigned to a grouping key,
// assigning a fresh palette entry and legend slot to each new key until
// the palette is down to its last entry; every later key shares that
// entry under the "[other]" legend.
func (c *Canvas) ColorFor(key string) plot.Attr {
	if attr, ok := c.attrByKey[key]; ok {
		return attr
	}
	if len(c.unused) == 0 {
		return plot.NoAttr
	}

	attr := c.unused[0]
	label := key
	if len(c.unused) > 1 {
		c.unused = c.unused[1:]
	} else {
		label = otherLegend
	}
	c.attrByKey[key] = attr

	if !c.hasLegend(label) {
		c.legend = append(c.legend, LegendEntry{Label: label, Attr: attr})
	}
	c.plotLegends()
	return attr
}

func (c *Canvas) hasLegend(label string) bool {
	for _, e := range c.legend {
		if e.Label == label {
			return true
		}
	}
	return false
}

// Legend returns the ordered legend entries.
func (c *Canvas) Legend() []LegendEntry {
	return c.legend
}

// ToggleLegend flips the enabled state of the attribute at the given
// zero-based legend index and repaints.
func (c *Canvas) ToggleLegend(i int) {
	if i < 0 || i >= len(c.legend) {
		return
	}
	c.plotter.ToggleAttr(c.legend[i].Attr)
	c.Refresh()
}

// ToggleLabels flips label/legend display.
func (c *Canvas) ToggleLabels() {
	c.showLabels = !c.showLabels
	c.Refresh()
}

// plotLegends queues the legend labels onto the pixel grid, numbering
// each entry with its toggle key and dimming disabled attributes.
func (c *Canvas) plotLegends() {
	w, _ := c.plotter.Size()
	for i, e := range c.legend {
		style := c.plotter.StyleFor(e.Attr)
		if c.plotter.AttrDisabled(e.Attr) {
			style = style.Dim()
		}
		c.plotter.PlotLabel(w-legendXOffset, i*4, fmt.Sprintf("%d.%s", i+1, e.Label), style)
	}
}

// Status summarizes the canvas state for a status line.
func (c *Canvas) Status() string {
	return fmt.Sprintf("canvas %s visible %s cursor %s zoom %.2f",
		fmtBox(c.canvasBox), fmtBox(c.visibleBox), fmtBox(c.cursorBox), c.zoom)
}

func fmtBox(b *geom.Box) string {
	if b == nil {
		return "unset"
	}
	return fmt.Sprintf("(%.2f,%.2f)+(%.2f,%.2f)", b.XMin, b.YMin, b.W, b.H)
}
