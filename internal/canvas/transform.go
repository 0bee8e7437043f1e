package canvas

import (
	"math"

	"github.com/plotterm/plotterm/internal/geom"
)

// xScaler returns pixels per canvas unit horizontally. With an aspect
// ratio configured both scalers derive from the smaller ratio so shapes
// keep their proportions.
func (c *Canvas) xScaler() float64 {
	xratio := c.plotview.W / (c.canvasBox.W * c.zoom)
	if c.aspectRatio != 0 {
		yratio := c.plotview.H / (c.canvasBox.H * c.zoom)
		return c.aspectRatio * math.Min(xratio, yratio)
	}
	return xratio
}

// yScaler returns pixels per canvas unit vertically.
func (c *Canvas) yScaler() float64 {
	yratio := c.plotview.H / (c.canvasBox.H * c.zoom)
	if c.aspectRatio != 0 {
		xratio := c.plotview.W / (c.canvasBox.W * c.zoom)
		return math.Min(xratio, yratio)
	}
	return yratio
}

// ScaleX maps a canvas x coordinate to a pixel column.
func (c *Canvas) ScaleX(x float64) int {
	return int(math.Round(c.plotview.XMin + (x-c.visibleBox.XMin)*c.xScaler()))
}

// ScaleY maps a canvas y coordinate to a pixel row.
func (c *Canvas) ScaleY(y float64) int {
	return int(math.Round(c.plotview.YMin + (y-c.visibleBox.YMin)*c.yScaler()))
}

// CanvasW converts a pixel-space width to canvas units.
func (c *Canvas) CanvasW(pixelWidth float64) float64 {
	return pixelWidth / c.xScaler()
}

// CanvasH converts a pixel-space height to canvas units.
func (c *Canvas) CanvasH(pixelHeight float64) float64 {
	return pixelHeight / c.yScaler()
}

// CharWidth returns the width in canvas units of one terminal character.
func (c *Canvas) CharWidth() float64 {
	return c.visibleBox.W * 2 / c.plotview.W
}

// CharHeight returns the height in canvas units of one terminal
// character.
func (c *Canvas) CharHeight() float64 {
	return c.visibleBox.H * 4 / c.plotview.H
}

// Plotview returns the pixel-space rectangle available for plotting.
func (c *Canvas) Plotview() geom.Box {
	return c.plotview
}

// Zoom returns the current zoom level.
func (c *Canvas) Zoom() float64 {
	return c.zoom
}

// VisibleBox returns the current viewport in canvas units, or a zero
// box before the first bounds computation.
func (c *Canvas) VisibleBox() geom.Box {
	if c.visibleBox == nil {
		return geom.Box{}
	}
	return *c.visibleBox
}

// Cursor returns the cursor region in canvas units, or a zero box
// before the first bounds computation.
func (c *Canvas) Cursor() geom.Box {
	if c.cursorBox == nil {
		return geom.Box{}
	}
	return *c.cursorBox
}

// SetCursor replaces the cursor region.
func (c *Canvas) SetCursor(b geom.Box) {
	c.cursorBox = &b
}

// PixelCursor returns the cursor region mapped to pixel coordinates.
func (c *Canvas) PixelCursor() geom.Box {
	if c.cursorBox == nil || c.visibleBox == nil {
		return geom.Box{}
	}
	return geom.BoundingBox(
		float64(c.ScaleX(c.cursorBox.XMin)), float64(c.ScaleY(c.cursorBox.YMin)),
		float64(c.ScaleX(c.cursorBox.XMax())), float64(c.ScaleY(c.cursorBox.YMax())),
	)
}

// PixelVisible returns the viewport mapped to pixel coordinates.
func (c *Canvas) PixelVisible() geom.Box {
	if c.visibleBox == nil {
		return geom.Box{}
	}
	return geom.BoundingBox(
		float64(c.ScaleX(c.visibleBox.XMin)), float64(c.ScaleY(c.visibleBox.YMin)),
		float64(c.ScaleX(c.visibleBox.XMax())), float64(c.ScaleY(c.visibleBox.YMax())),
	)
}

// CanvasMouse maps a terminal mouse position to canvas units.
func (c *Canvas) CanvasMouse(col, row int) geom.Point {
	if c.visibleBox == nil {
		return geom.Point{}
	}
	px := float64(col * 2)
	py := float64(row * 4)
	return geom.Point{
		X: c.visibleBox.XMin + (px-c.plotview.XMin)/c.xScaler(),
		Y: c.visibleBox.YMin + (py-c.plotview.YMin)/c.yScaler(),
	}
}

// SetCursorSize redefines the cursor as the bounding box between its
// current min corner and the given diagonal corner, clamped to at least
// one character in each dimension.
func (c *Canvas) SetCursorSize(p geom.Point) {
	if c.cursorBox == nil {
		return
	}
	box := geom.BoundingBox(c.cursorBox.XMin, c.cursorBox.YMin, p.X, p.Y)
	box.W = math.Max(box.W, c.CharWidth())
	box.H = math.Max(box.H, c.CharHeight())
	c.cursorBox = &box
}

// MoveCursor shifts the cursor's min corner by (dx, dy) canvas units.
func (c *Canvas) MoveCursor(dx, dy float64) {
	if c.cursorBox == nil {
		return
	}
	c.cursorBox.XMin += dx
	c.cursorBox.YMin += dy
}

// GrowCursor multiplies the cursor size by (wfactor, hfactor).
func (c *Canvas) GrowCursor(wfactor, hfactor float64) {
	if c.cursorBox == nil {
		return
	}
	c.cursorBox.W *= wfactor
	c.cursorBox.H *= hfactor
}

// ResizeCursor adds (dw, dh) canvas units to the cursor size.
func (c *Canvas) ResizeCursor(dw, dh float64) {
	if c.cursorBox == nil {
		return
	}
	c.cursorBox.W += dw
	c.cursorBox.H += dh
}

// FixPoint adjusts the viewport's min corner so that canvasPt maps
// exactly to the pixel position (pixelX, pixelY) under the current
// scaler, then marks the canvas dirty. It is the universal zoom/pan
// pivot.
func (c *Canvas) FixPoint(pixelX, pixelY float64, canvasPt geom.Point) {
	if c.visibleBox == nil {
		return
	}
	c.visibleBox.XMin = canvasPt.X - c.CanvasW(pixelX-c.plotview.XMin)
	c.visibleBox.YMin = canvasPt.Y - c.CanvasH(pixelY-c.plotview.YMin)
	c.Refresh()
}

// ZoomTo pans so box's min corner lands at the plot view's min corner
// and zooms until box is fully contained in the view.
func (c *Canvas) ZoomTo(box geom.Box) {
	c.FixPoint(c.plotview.XMin, c.plotview.YMin, box.Min())
	c.zoom = math.Max(box.W/c.canvasBox.W, box.H/c.canvasBox.H)
}

// SetZoomLevel overwrites the zoom level and recomputes bounds. A zero
// level keeps the current zoom.
func (c *Canvas) SetZoomLevel(level float64) {
	if level != 0 {
		c.zoom = level
	}
	c.resetBounds()
	c.plotLegends()
}

// ResetView discards the canvas and viewport bounds so the next render
// fits the full extent at the given zoom.
func (c *Canvas) ResetView() {
	c.canvasBox = nil
	c.visibleBox = nil
	c.zoom = 1.0
	c.Refresh()
}

// resetBounds lazily initializes the canvas, viewport, and cursor
// boxes. The viewport's size is always rederived from the plot view and
// the current scaler; only its min corner persists across calls.
func (c *Canvas) resetBounds() {
	if c.canvasBox == nil {
		c.canvasBox = c.extentBox()
	}

	if c.visibleBox == nil {
		// Width/height must be set before the min corner so the
		// viewport centers on the canvas.
		vb := geom.NewBox(0, 0, c.plotview.W/c.xScaler(), c.plotview.H/c.yScaler())
		vb.XMin = c.canvasBox.XCenter() - vb.W/2
		vb.YMin = c.canvasBox.YCenter() - vb.H/2
		c.visibleBox = &vb
	} else {
		c.visibleBox.W = c.plotview.W / c.xScaler()
		c.visibleBox.H = c.plotview.H / c.yScaler()
	}

	if c.cursorBox == nil {
		cb := geom.NewBox(c.visibleBox.XMin, c.visibleBox.YMin, c.CharWidth(), c.CharHeight())
		c.cursorBox = &cb
	}
}

// extentBox computes the bounding box of all plotted primitives. An
// empty canvas falls back to a unit box, and degenerate extents are
// widened to keep the scalers finite.
func (c *Canvas) extentBox() *geom.Box {
	if len(c.lines) == 0 {
		b := geom.NewBox(0, 0, 1.0, 1.0)
		return &b
	}

	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	for _, l := range c.lines {
		xmin = math.Min(xmin, math.Min(l.X1, l.X2))
		xmax = math.Max(xmax, math.Max(l.X1, l.X2))
		ymin = math.Min(ymin, math.Min(l.Y1, l.Y2))
		ymax = math.Max(ymax, math.Max(l.Y1, l.Y2))
	}

	b := geom.BoundingBox(xmin, ymin, xmax, ymax)
	if b.W == 0 {
		b.W = 1.0
	}
	if b.H == 0 {
		b.H = 1.0
	}
	return &b
}
