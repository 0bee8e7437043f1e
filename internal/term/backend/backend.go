// Package backend provides the terminal display surface abstraction for
// the plotting engine.
package backend

import "github.com/plotterm/plotterm/internal/term"

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
)

// Key represents a keyboard key.
type Key int

// Key constants for the special keys the plotter responds to. Printable
// keys arrive as KeyRune with the Rune field set.
const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlL
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton represents mouse button state.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseRight
	MouseRelease
	MouseWheelUp
	MouseWheelDown
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse event fields
	MouseX, MouseY int
	MouseButton    MouseButton

	// Resize event fields
	Width, Height int
}

// Backend is the display surface the pixel grid draws onto.
// Implementations handle actual drawing to the terminal or, for tests,
// an in-memory cell buffer.
type Backend interface {
	// Init initializes the backend. Must be called before any other
	// method.
	Init() error

	// Fini releases backend resources and restores the terminal.
	Fini()

	// Size returns the current terminal dimensions in character cells.
	Size() (cols, rows int)

	// SetCell sets a single cell. Positions outside the terminal are
	// silently ignored.
	SetCell(col, row int, cell term.Cell)

	// Clear erases the whole surface to the default style.
	Clear()

	// Show flushes buffered changes to the display.
	Show()

	// PollEvent blocks until the next terminal event.
	PollEvent() Event

	// PostEvent queues a synthetic event.
	PostEvent(ev Event)
}

// Null is an in-memory backend for tests. Cells are retained so tests
// can assert on what was drawn.
type Null struct {
	cols, rows int
	cells      [][]term.Cell
	events     chan Event
}

// NewNull creates a null backend with the given dimensions.
func NewNull(cols, rows int) *Null {
	return &Null{
		cols:   cols,
		rows:   rows,
		cells:  blankCells(cols, rows),
		events: make(chan Event, 64),
	}
}

func (n *Null) Init() error {
	n.cells = blankCells(n.cols, n.rows)
	return nil
}

func (n *Null) Fini() {}

func (n *Null) Size() (int, int) {
	return n.cols, n.rows
}

func (n *Null) SetCell(col, row int, cell term.Cell) {
	if col >= 0 && col < n.cols && row >= 0 && row < n.rows {
		n.cells[row][col] = cell
	}
}

func (n *Null) Clear() {
	n.cells = blankCells(n.cols, n.rows)
}

func (n *Null) Show() {}

func (n *Null) PollEvent() Event {
	return <-n.events
}

func (n *Null) PostEvent(ev Event) {
	select {
	case n.events <- ev:
	default:
		// queue full, drop
	}
}

// Cell returns the cell at the given position for test assertions.
func (n *Null) Cell(col, row int) term.Cell {
	if col >= 0 && col < n.cols && row >= 0 && row < n.rows {
		return n.cells[row][col]
	}
	return term.EmptyCell()
}

// Resize changes the backend dimensions and posts a resize event.
func (n *Null) Resize(cols, rows int) {
	n.cols = cols
	n.rows = rows
	n.cells = blankCells(cols, rows)
	n.PostEvent(Event{Type: EventResize, Width: cols, Height: rows})
}

func blankCells(cols, rows int) [][]term.Cell {
	cells := make([][]term.Cell, rows)
	for i := range cells {
		cells[i] = make([]term.Cell, cols)
		for j := range cells[i] {
			cells[i][j] = term.EmptyCell()
		}
	}
	return cells
}
