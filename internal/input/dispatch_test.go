package input

import (
	"math"
	"testing"

	"github.com/plotterm/plotterm/internal/canvas"
	"github.com/plotterm/plotterm/internal/data"
	"github.com/plotterm/plotterm/internal/term"
	"github.com/plotterm/plotterm/internal/term/backend"
)

type nopSurface struct{}

func (nopSurface) Clear()                      {}
func (nopSurface) SetCell(int, int, term.Cell) {}

// newTestDispatcher builds a dispatcher over a canvas with a few
// plotted rows and settled view bounds.
func newTestDispatcher(t *testing.T) (*Dispatcher, *canvas.Canvas, *data.Source) {
	t.Helper()

	src := data.NewSource()
	c := canvas.New(canvas.Options{
		Palette: []term.Style{
			{Foreground: term.ColorFromIndex(1)},
			{Foreground: term.ColorFromIndex(2)},
			{Foreground: term.ColorFromIndex(3)},
		},
	}, src)
	c.Resize(40, 12)

	for i := 0; i < 4; i++ {
		row := src.Add("pts", nil)
		c.AddPoint(float64(i*10), float64(i*10), c.ColorFor("pts"), row)
	}

	c.Draw(nopSurface{})
	c.Wait()

	return NewDispatcher(c, src, 2.0), c, src
}

func key(r rune) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: r}
}

func TestCursorMoves(t *testing.T) {
	tests := []struct {
		name   string
		r      rune
		dx, dy float64 // in cursor-size units
	}{
		{"left", 'h', -1, 0},
		{"right", 'l', 1, 0},
		{"down", 'j', 0, 1},
		{"up", 'k', 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, c, _ := newTestDispatcher(t)
			before := c.Cursor()

			if !d.Dispatch(key(tt.r)) {
				t.Fatalf("Dispatch(%q) = false, want true", tt.r)
			}

			after := c.Cursor()
			wantX := before.XMin + tt.dx*before.W
			wantY := before.YMin + tt.dy*before.H
			if after.XMin != wantX || after.YMin != wantY {
				t.Errorf("cursor min = (%v, %v), want (%v, %v)", after.XMin, after.YMin, wantX, wantY)
			}
		})
	}
}

func TestArrowKeysMoveCursor(t *testing.T) {
	d, c, _ := newTestDispatcher(t)
	before := c.Cursor()

	d.Dispatch(backend.Event{Type: backend.EventKey, Key: backend.KeyRight})

	if got := c.Cursor().XMin; got != before.XMin+before.W {
		t.Errorf("cursor XMin = %v, want %v", got, before.XMin+before.W)
	}
}

func TestCharStepSequence(t *testing.T) {
	d, c, _ := newTestDispatcher(t)
	before := c.Cursor()

	d.Dispatch(key('z'))
	d.Dispatch(key('l'))

	want := before.XMin + c.CharWidth()
	if got := c.Cursor().XMin; got != want {
		t.Errorf("cursor XMin after zl = %v, want %v", got, want)
	}
}

func TestPendingPrefixCleared(t *testing.T) {
	d, c, _ := newTestDispatcher(t)
	before := c.Cursor()

	d.Dispatch(key('z'))
	d.Dispatch(backend.Event{Type: backend.EventKey, Key: backend.KeyEscape})
	d.Dispatch(key('z'))
	d.Dispatch(key('x')) // not a sequence
	d.Dispatch(key('l'))

	// The lone l after the failed sequence moves by a full cursor width.
	want := before.XMin + before.W
	if got := c.Cursor().XMin; got != want {
		t.Errorf("cursor XMin = %v, want %v", got, want)
	}
}

func TestCursorResize(t *testing.T) {
	d, c, _ := newTestDispatcher(t)
	before := c.Cursor()

	d.Dispatch(key('L'))
	if got := c.Cursor().W; got != before.W*2 {
		t.Errorf("cursor W after L = %v, want %v", got, before.W*2)
	}
	d.Dispatch(key('H'))
	if got := c.Cursor().W; got != before.W {
		t.Errorf("cursor W after H = %v, want %v", got, before.W)
	}
	d.Dispatch(key('J'))
	if got := c.Cursor().H; got != before.H*2 {
		t.Errorf("cursor H after J = %v, want %v", got, before.H*2)
	}
}

func TestZoomKeys(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	d.Dispatch(key('+'))
	if got := c.Zoom(); got != 0.5 {
		t.Errorf("Zoom() after + = %v, want 0.5", got)
	}
	d.Dispatch(key('-'))
	d.Dispatch(key('-'))
	if got := c.Zoom(); got != 2.0 {
		t.Errorf("Zoom() after two - = %v, want 2.0", got)
	}
}

func TestZoomKeepsCursorCenter(t *testing.T) {
	d, c, _ := newTestDispatcher(t)
	cursor := c.Cursor()
	cx, cy := cursor.XCenter(), cursor.YCenter()

	d.Dispatch(key('+'))
	c.Draw(nopSurface{})
	c.Wait()

	vis := c.VisibleBox()
	if math.Abs(vis.XCenter()-cx) > c.CharWidth() {
		t.Errorf("viewport XCenter = %v, want near %v", vis.XCenter(), cx)
	}
	if math.Abs(vis.YCenter()-cy) > c.CharHeight() {
		t.Errorf("viewport YCenter = %v, want near %v", vis.YCenter(), cy)
	}
}

func TestResetViewKey(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	d.Dispatch(key('+'))
	d.Dispatch(key('_'))

	if got := c.Zoom(); got != 1.0 {
		t.Errorf("Zoom() after _ = %v, want 1.0", got)
	}
}

func TestZoomToCursor(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	d.Dispatch(key('z'))
	d.Dispatch(key('z'))
	c.Draw(nopSurface{})
	c.Wait()

	cursor := c.Cursor()
	vis := c.VisibleBox()
	if !vis.Contains(cursor) {
		t.Errorf("visible box %+v does not contain cursor %+v", vis, cursor)
	}
}

func TestSelectionKeys(t *testing.T) {
	d, c, src := newTestDispatcher(t)

	// Grow the cursor over the whole viewport so every row is under it.
	vis := c.VisibleBox()
	c.SetCursor(vis)

	d.Dispatch(key('s'))
	if got := src.SelectedCount(); got != 4 {
		t.Fatalf("SelectedCount() after s = %d, want 4", got)
	}
	d.Dispatch(key('u'))
	if got := src.SelectedCount(); got != 0 {
		t.Errorf("SelectedCount() after u = %d, want 0", got)
	}
	d.Dispatch(key('t'))
	if got := src.SelectedCount(); got != 4 {
		t.Errorf("SelectedCount() after t = %d, want 4", got)
	}
}

func TestScreenSelectionSequence(t *testing.T) {
	d, _, src := newTestDispatcher(t)

	d.Dispatch(key('g'))
	d.Dispatch(key('s'))
	if got := src.SelectedCount(); got != 4 {
		t.Errorf("SelectedCount() after gs = %d, want 4", got)
	}

	d.Dispatch(key('g'))
	d.Dispatch(key('u'))
	if got := src.SelectedCount(); got != 0 {
		t.Errorf("SelectedCount() after gu = %d, want 0", got)
	}
}

func TestLegendToggleKey(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	legend := c.Legend()
	if len(legend) != 1 {
		t.Fatalf("len(Legend()) = %d, want 1", len(legend))
	}

	d.Dispatch(key('1'))
	if !c.Plotter().AttrDisabled(legend[0].Attr) {
		t.Error("attr not disabled after 1")
	}
	d.Dispatch(key('1'))
	if c.Plotter().AttrDisabled(legend[0].Attr) {
		t.Error("attr still disabled after second toggle")
	}
}

func TestLabelToggleKey(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	d.Dispatch(key('w'))
	if !c.Dirty() {
		t.Error("canvas not dirty after label toggle")
	}
}

func TestRefreshKey(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	d.Dispatch(backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlL})
	if !c.Dirty() {
		t.Error("canvas not dirty after Ctrl-L")
	}
}

func TestSnapshotOnEnter(t *testing.T) {
	d, c, src := newTestDispatcher(t)
	c.SetCursor(c.VisibleBox())

	var got []data.Row
	d.OnSnapshot = func(rows []data.Row) { got = rows }

	d.Dispatch(backend.Event{Type: backend.EventKey, Key: backend.KeyEnter})
	if len(got) != 4 {
		t.Errorf("snapshot rows = %d, want 4", len(got))
	}
	_ = src
}

func TestMouseDragSetsCursor(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	press := backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseLeft, MouseX: 12, MouseY: 2}
	release := backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseRelease, MouseX: 20, MouseY: 6}
	d.Dispatch(press)
	d.Dispatch(release)

	start := c.CanvasMouse(12, 2)
	end := c.CanvasMouse(20, 6)
	cursor := c.Cursor()
	if math.Abs(cursor.XMin-start.X) > 1e-9 {
		t.Errorf("cursor XMin = %v, want %v", cursor.XMin, start.X)
	}
	if math.Abs(cursor.XMax()-end.X) > 1e-9 {
		t.Errorf("cursor XMax = %v, want %v", cursor.XMax(), end.X)
	}
}

func TestRightDragPans(t *testing.T) {
	d, c, _ := newTestDispatcher(t)
	anchor := c.CanvasMouse(15, 5)

	d.Dispatch(backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseRight, MouseX: 15, MouseY: 5})
	d.Dispatch(backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseRight, MouseX: 18, MouseY: 5})
	d.Dispatch(backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseRelease, MouseX: 18, MouseY: 5})

	// The anchor point now maps to the pointer's new position.
	got := c.CanvasMouse(18, 5)
	if math.Abs(got.X-anchor.X) > 1e-9 || math.Abs(got.Y-anchor.Y) > 1e-9 {
		t.Errorf("point under pointer = %+v, want anchor %+v", got, anchor)
	}
}

func TestWheelZooms(t *testing.T) {
	d, c, _ := newTestDispatcher(t)

	d.Dispatch(backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseWheelUp, MouseX: 10, MouseY: 4})
	if got := c.Zoom(); got != 0.5 {
		t.Errorf("Zoom() after wheel up = %v, want 0.5", got)
	}
	d.Dispatch(backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseWheelDown, MouseX: 10, MouseY: 4})
	if got := c.Zoom(); got != 1.0 {
		t.Errorf("Zoom() after wheel down = %v, want 1.0", got)
	}
}

func TestUnboundKeyIgnored(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	if d.Dispatch(key('Q')) {
		t.Error("Dispatch('Q') = true, want false")
	}
}
