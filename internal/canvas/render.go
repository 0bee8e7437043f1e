package canvas

import (
	"context"

	"github.com/google/uuid"

	"github.com/plotterm/plotterm/internal/geom"
	"github.com/plotterm/plotterm/internal/plot"
)

// renderPass is one in-flight background render, identified by a
// unique id so a superseded pass can never be mistaken for the
// current one.
type renderPass struct {
	id     uuid.UUID
	cancel context.CancelFunc
	done   chan struct{}
}

// frame is the coordinate transform snapshot a render pass works from.
// Snapshotting it keeps the pass independent of pan/zoom mutations that
// land while it runs; those mark the canvas dirty and trigger a new
// pass instead.
type frame struct {
	visible      geom.Box
	xf, yf       float64
	pxmin, pymin float64
}

func (f frame) scaleX(x float64) float64 {
	return f.pxmin + (x-f.visible.XMin)*f.xf
}

func (f frame) scaleY(y float64) float64 {
	return f.pymin + (y-f.visible.YMin)*f.yf
}

// Refresh marks the canvas dirty so the next Draw re-renders.
func (c *Canvas) Refresh() {
	c.renderMu.Lock()
	c.dirty = true
	c.renderMu.Unlock()
}

// Dirty reports whether a re-render is pending.
func (c *Canvas) Dirty() bool {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	return c.dirty
}

// Draw paints the canvas onto the surface. A dirty canvas first tears
// down the pixel grid and spawns a fresh render pass; otherwise the
// existing grid is composited as-is.
func (c *Canvas) Draw(s plot.Surface) {
	c.renderMu.Lock()
	dirty := c.dirty
	c.dirty = false
	c.renderMu.Unlock()

	if dirty {
		c.startRender()
	}
	c.plotter.Render(s, c.PixelCursor(), c.showLabels)
}

// startRender cancels any in-flight pass, waits for it to observe the
// cancellation, rebuilds the empty grid and bounds, and spawns the next
// pass. Clear-then-repopulate is atomic with respect to the draw cycle
// because the previous pass has fully stopped before the grid is
// cleared.
func (c *Canvas) startRender() {
	c.renderMu.Lock()
	prev := c.pass
	c.renderMu.Unlock()
	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	c.plotter.Resize(c.cols, c.rows)
	c.resetPlotview()
	c.SetZoomLevel(0)

	f := frame{
		visible: *c.visibleBox,
		xf:      c.xScaler(),
		yf:      c.yScaler(),
		pxmin:   c.plotview.XMin,
		pymin:   c.plotview.YMin,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pass := &renderPass{id: uuid.New(), cancel: cancel, done: make(chan struct{})}

	c.renderMu.Lock()
	c.pass = pass
	c.renderMu.Unlock()

	// Primitives are append-only, so slicing here snapshots them.
	go c.renderAsync(ctx, pass, c.lines, c.labels, f)
}

// renderAsync clips, transforms, and plots every primitive onto the
// pixel grid. It checks for cancellation between primitives; an
// interrupted pass leaves partial output that the superseding pass
// clears before it starts.
func (c *Canvas) renderAsync(ctx context.Context, pass *renderPass, lines []Line, labels []Label, f frame) {
	defer close(pass.done)

	for _, l := range lines {
		if ctx.Err() != nil {
			return
		}
		seg, ok := geom.ClipLine(l.X1, l.Y1, l.X2, l.Y2, f.visible)
		if !ok {
			continue
		}
		if seg.IsPoint() {
			c.plotter.PlotPixel(round(f.scaleX(seg.X1)), round(f.scaleY(seg.Y1)), l.Attr, l.Row)
		} else {
			c.plotter.PlotLine(f.scaleX(seg.X1), f.scaleY(seg.Y1), f.scaleX(seg.X2), f.scaleY(seg.Y2), l.Attr, l.Row)
		}
	}

	for _, l := range labels {
		if ctx.Err() != nil {
			return
		}
		c.plotter.PlotLabel(round(f.scaleX(l.X)), round(f.scaleY(l.Y)), l.Text, c.plotter.StyleFor(l.Attr))
	}

	c.renderMu.Lock()
	if c.pass != nil && c.pass.id == pass.id {
		c.pass = nil
	}
	c.renderMu.Unlock()
}

// Wait blocks until the in-flight render pass, if any, has finished.
func (c *Canvas) Wait() {
	c.renderMu.Lock()
	pass := c.pass
	c.renderMu.Unlock()

	if pass != nil {
		<-pass.done
	}
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
