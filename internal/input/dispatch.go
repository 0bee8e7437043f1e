// Package input translates terminal key and mouse events into canvas
// commands: cursor movement, zooming, panning, legend toggles, and row
// selection.
package input

import (
	"github.com/plotterm/plotterm/internal/canvas"
	"github.com/plotterm/plotterm/internal/data"
	"github.com/plotterm/plotterm/internal/geom"
	"github.com/plotterm/plotterm/internal/plot"
	"github.com/plotterm/plotterm/internal/term/backend"
)

// Dispatcher routes events to a canvas and its row source. Two-key
// sequences (z-prefixed character steps, g-prefixed whole-screen
// selection) are tracked between calls, so a dispatcher belongs to one
// event loop.
type Dispatcher struct {
	canvas   *canvas.Canvas
	source   *data.Source
	zoomIncr float64

	// OnSnapshot, when set, receives a copy of the rows under the
	// cursor when Enter is pressed.
	OnSnapshot func([]data.Row)

	pending rune

	dragAnchor  *geom.Point
	leftPressed bool
}

// NewDispatcher creates a dispatcher. zoomIncr is the zoom factor per
// keystroke or wheel notch and must be greater than 1.
func NewDispatcher(c *canvas.Canvas, s *data.Source, zoomIncr float64) *Dispatcher {
	if zoomIncr <= 1 {
		zoomIncr = 2.0
	}
	return &Dispatcher{canvas: c, source: s, zoomIncr: zoomIncr}
}

// Dispatch routes a single event. It returns true when the event was
// consumed.
func (d *Dispatcher) Dispatch(ev backend.Event) bool {
	switch ev.Type {
	case backend.EventKey:
		return d.dispatchKey(ev)
	case backend.EventMouse:
		return d.dispatchMouse(ev)
	}
	return false
}

func (d *Dispatcher) dispatchKey(ev backend.Event) bool {
	if d.pending != 0 {
		prefix := d.pending
		d.pending = 0
		if ev.Key == backend.KeyRune {
			return d.dispatchSequence(prefix, ev.Rune)
		}
		return false
	}

	switch ev.Key {
	case backend.KeyLeft:
		return d.dispatchRune('h')
	case backend.KeyDown:
		return d.dispatchRune('j')
	case backend.KeyUp:
		return d.dispatchRune('k')
	case backend.KeyRight:
		return d.dispatchRune('l')
	case backend.KeyCtrlL:
		d.canvas.Refresh()
		return true
	case backend.KeyEnter:
		d.snapshot(d.canvas.PixelCursor())
		return true
	case backend.KeyEscape:
		return true
	case backend.KeyRune:
		return d.dispatchRune(ev.Rune)
	}
	return false
}

func (d *Dispatcher) dispatchRune(r rune) bool {
	c := d.canvas
	switch r {
	case 'z', 'g':
		d.pending = r
		return true

	case 'h':
		c.MoveCursor(-c.Cursor().W, 0)
	case 'l':
		c.MoveCursor(c.Cursor().W, 0)
	case 'j':
		c.MoveCursor(0, c.Cursor().H)
	case 'k':
		c.MoveCursor(0, -c.Cursor().H)

	case 'H':
		c.GrowCursor(0.5, 1)
	case 'L':
		c.GrowCursor(2, 1)
	case 'J':
		c.GrowCursor(1, 2)
	case 'K':
		c.GrowCursor(1, 0.5)

	case '+':
		d.zoomAboutCursor(1 / d.zoomIncr)
	case '-':
		d.zoomAboutCursor(d.zoomIncr)
	case '_':
		c.ResetView()

	case 'w':
		c.ToggleLabels()

	case 's':
		d.source.Select(d.rowsIn(c.PixelCursor()))
	case 't':
		d.source.ToggleSelect(d.rowsIn(c.PixelCursor()))
	case 'u':
		d.source.Unselect(d.rowsIn(c.PixelCursor()))

	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		c.ToggleLegend(int(r - '1'))

	default:
		return false
	}
	return true
}

// dispatchSequence handles the second key of a two-key command.
func (d *Dispatcher) dispatchSequence(prefix, r rune) bool {
	c := d.canvas
	switch prefix {
	case 'z':
		switch r {
		case 'h':
			c.MoveCursor(-c.CharWidth(), 0)
		case 'l':
			c.MoveCursor(c.CharWidth(), 0)
		case 'j':
			c.MoveCursor(0, c.CharHeight())
		case 'k':
			c.MoveCursor(0, -c.CharHeight())
		case 'H':
			c.ResizeCursor(-c.CharWidth(), 0)
		case 'L':
			c.ResizeCursor(c.CharWidth(), 0)
		case 'J':
			c.ResizeCursor(0, c.CharHeight())
		case 'K':
			c.ResizeCursor(0, -c.CharHeight())
		case 'z':
			c.ZoomTo(c.Cursor())
		default:
			return false
		}
		return true

	case 'g':
		switch r {
		case 's':
			d.source.Select(d.rowsIn(c.PixelVisible()))
		case 't':
			d.source.ToggleSelect(d.rowsIn(c.PixelVisible()))
		case 'u':
			d.source.Unselect(d.rowsIn(c.PixelVisible()))
		default:
			return false
		}
		return true
	}
	return false
}

func (d *Dispatcher) dispatchMouse(ev backend.Event) bool {
	c := d.canvas
	pos := c.CanvasMouse(ev.MouseX, ev.MouseY)

	switch ev.MouseButton {
	case backend.MouseLeft:
		if !d.leftPressed {
			d.leftPressed = true
			c.SetCursor(geom.NewBox(pos.X, pos.Y, c.CharWidth(), c.CharHeight()))
		} else {
			c.SetCursorSize(pos)
		}
		return true

	case backend.MouseRight:
		if d.dragAnchor == nil {
			anchor := pos
			d.dragAnchor = &anchor
		} else {
			c.FixPoint(float64(ev.MouseX*2), float64(ev.MouseY*4), *d.dragAnchor)
		}
		return true

	case backend.MouseRelease:
		if d.leftPressed {
			d.leftPressed = false
			c.SetCursorSize(pos)
		}
		d.dragAnchor = nil
		return true

	case backend.MouseWheelUp:
		d.zoomAboutPointer(1/d.zoomIncr, ev.MouseX, ev.MouseY, pos)
		return true
	case backend.MouseWheelDown:
		d.zoomAboutPointer(d.zoomIncr, ev.MouseX, ev.MouseY, pos)
		return true
	}
	return false
}

// zoomAboutCursor rescales while keeping the cursor center at the
// center of the plot view.
func (d *Dispatcher) zoomAboutCursor(factor float64) {
	c := d.canvas
	cursor := c.Cursor()
	center := geom.Pt(cursor.XCenter(), cursor.YCenter())
	pv := c.Plotview()
	c.SetZoomLevel(c.Zoom() * factor)
	c.FixPoint(pv.XCenter(), pv.YCenter(), center)
}

// zoomAboutPointer rescales while keeping the canvas point under the
// mouse fixed at the pointer position.
func (d *Dispatcher) zoomAboutPointer(factor float64, col, row int, at geom.Point) {
	c := d.canvas
	c.SetZoomLevel(c.Zoom() * factor)
	c.FixPoint(float64(col*2), float64(row*4), at)
}

func (d *Dispatcher) rowsIn(pixelBox geom.Box) []plot.RowID {
	return d.canvas.Plotter().RowsInBox(pixelBox)
}

func (d *Dispatcher) snapshot(pixelBox geom.Box) {
	if d.OnSnapshot == nil {
		return
	}
	d.OnSnapshot(d.source.Snapshot(d.rowsIn(pixelBox)))
}
