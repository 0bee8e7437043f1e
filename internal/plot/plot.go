// Package plot implements the pixel-addressable raster layer of the
// plotting engine. The grid is quantized to sub-character pixels, two
// wide and four tall per terminal cell, and every pixel aggregates the
// (attribute, row) pairs plotted onto it. Compositing the aggregate
// into braille glyphs happens at draw time in render.go.
package plot

import (
	"math/rand"
	"sync"

	"github.com/plotterm/plotterm/internal/geom"
	"github.com/plotterm/plotterm/internal/term"
)

// RowID is a stable handle to a row in the backing data source.
type RowID int64

// NoRow marks a plotted entity with no associated source row.
const NoRow RowID = -1

// Attr identifies one palette entry. Valid attrs are non-negative;
// NoAttr is the explicit "no eligible attribute" sentinel and never
// collides with a palette index.
type Attr int16

// NoAttr is returned when no eligible attribute exists at a pixel.
const NoAttr Attr = -1

// Valid reports whether the attr refers to a palette entry.
func (a Attr) Valid() bool { return a >= 0 }

// Policy selects how overlapping attributes at one pixel are resolved
// into a single display attribute.
type Policy int

const (
	// PickMostCommon picks the attr with the most plotted rows,
	// breaking ties toward the lowest attr id, and highlights the
	// result when any of its rows is selected on the source.
	PickMostCommon Policy = iota
	// PickRandom samples uniformly from the eligible (attr, row)
	// entries, so dense overlaps are not dominated by one group.
	PickRandom
)

// RowSource is the external data collaborator consulted for selection
// state.
type RowSource interface {
	IsSelected(row RowID) bool
}

// entry is one plotted (attr, row) pair at a pixel.
type entry struct {
	attr Attr
	row  RowID
}

// inlineEntries is the per-pixel capacity before spilling to the heap.
// Most pixels hold at most a couple of entries even in dense plots.
const inlineEntries = 4

// cell aggregates the entries plotted onto one pixel. Storage is a
// fixed inline array plus an overflow slice, keeping the common case
// free of per-pixel allocations.
type cell struct {
	n      int
	inline [inlineEntries]entry
	spill  []entry
}

func (c *cell) add(e entry) {
	if c.n < inlineEntries {
		c.inline[c.n] = e
	} else {
		c.spill = append(c.spill, e)
	}
	c.n++
}

// each calls fn for every entry until fn returns false.
func (c *cell) each(fn func(entry) bool) {
	for i := 0; i < c.n && i < inlineEntries; i++ {
		if !fn(c.inline[i]) {
			return
		}
	}
	for _, e := range c.spill {
		if !fn(e) {
			return
		}
	}
}

// label is a queued screen-space annotation, in pixel coordinates.
type label struct {
	x, y  int
	text  string
	style term.Style
}

// Plotter owns the raster buffer for the whole terminal. It must be
// Resized before first use and on every terminal resize; plotting
// outside the buffer is silently dropped.
//
// The buffer is written by the canvas render pass and read at draw
// time; mu keeps the two from observing each other mid-operation.
type Plotter struct {
	mu sync.RWMutex

	width  int // pixels, cols*2
	height int // pixels, (rows-1)*4; the last row is reserved for status
	cols   int
	rows   int

	cells  []cell
	labels []label

	disabled map[Attr]struct{}
	palette  []term.Style
	source   RowSource
	policy   Policy

	rng *rand.Rand
}

// New creates a Plotter drawing with the given palette. The source may
// be nil when selection highlighting is not wanted.
func New(palette []term.Style, source RowSource) *Plotter {
	return &Plotter{
		disabled: make(map[Attr]struct{}),
		palette:  palette,
		source:   source,
		rng:      rand.New(rand.NewSource(1)),
	}
}

// SetPolicy selects the pixel attribute resolution policy.
func (p *Plotter) SetPolicy(policy Policy) {
	p.policy = policy
}

// SetSeed reseeds the random policy's generator. Tests use this for
// deterministic sampling.
func (p *Plotter) SetSeed(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
}

// Resize recomputes the pixel dimensions from the terminal size and
// reallocates the buffer, discarding all plotted pixels and labels.
func (p *Plotter) Resize(cols, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cols = cols
	p.rows = rows
	p.width = cols * 2
	p.height = (rows - 1) * 4
	if p.width < 0 {
		p.width = 0
	}
	if p.height < 0 {
		p.height = 0
	}
	p.cells = make([]cell, p.width*p.height)
	p.labels = nil
}

// Size returns the pixel dimensions of the grid.
func (p *Plotter) Size() (width, height int) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.width, p.height
}

// PlotPixel records attr (and optionally a source row) at pixel (x, y).
// Out-of-range coordinates are dropped; they indicate the caller's
// scaling clamped wrong, not a plottable pixel.
func (p *Plotter) PlotPixel(x, y int, attr Attr, row RowID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.plotPixel(x, y, attr, row)
}

func (p *Plotter) plotPixel(x, y int, attr Attr, row RowID) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height || !attr.Valid() {
		return
	}
	p.cells[y*p.width+x].add(entry{attr: attr, row: row})
}

// PlotLine rasterizes the segment between two pixel-space endpoints and
// plots every rounded sample.
func (p *Plotter) PlotLine(x1, y1, x2, y2 float64, attr Attr, row RowID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	geom.Rasterize(x1, y1, x2, y2, func(x, y float64) {
		p.plotPixel(roundPixel(x), roundPixel(y), attr, row)
	})
}

// PlotLabel queues a text annotation at the given pixel position. It is
// drawn after the grid, at character resolution.
func (p *Plotter) PlotLabel(x, y int, text string, style term.Style) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.labels = append(p.labels, label{x: x, y: y, text: text, style: style})
}

// StyleFor returns the base display style for a palette attr.
func (p *Plotter) StyleFor(attr Attr) term.Style {
	return p.style(pick{attr: attr})
}

// ToggleAttr flips the disabled state of attr. Disabled attrs are
// excluded from attribute picking and from row collection.
func (p *Plotter) ToggleAttr(attr Attr) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.disabled[attr]; ok {
		delete(p.disabled, attr)
	} else {
		p.disabled[attr] = struct{}{}
	}
}

// AttrDisabled reports whether attr is currently disabled.
func (p *Plotter) AttrDisabled(attr Attr) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.attrDisabled(attr)
}

func (p *Plotter) attrDisabled(attr Attr) bool {
	_, ok := p.disabled[attr]
	return ok
}

// pick is one resolved pixel sample.
type pick struct {
	attr Attr
	bold bool
}

// attrAt resolves the attribute at pixel (x, y) under the configured
// policy. It returns NoAttr when nothing eligible was plotted there.
func (p *Plotter) attrAt(x, y int) pick {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return pick{attr: NoAttr}
	}
	c := &p.cells[y*p.width+x]
	if p.policy == PickRandom {
		return p.pickRandom(c)
	}
	return p.pickMost(c)
}

// pickMost returns the attr with the most associated entries, breaking
// ties toward the lowest attr id. The result is bolded when any of the
// winning attr's rows is selected on the source.
func (p *Plotter) pickMost(c *cell) pick {
	counts := make(map[Attr]int)
	c.each(func(e entry) bool {
		if !p.attrDisabled(e.attr) {
			counts[e.attr]++
		}
		return true
	})
	if len(counts) == 0 {
		return pick{attr: NoAttr}
	}

	best := NoAttr
	bestCount := 0
	for attr, n := range counts {
		if n > bestCount || (n == bestCount && attr < best) {
			best = attr
			bestCount = n
		}
	}

	bold := false
	if p.source != nil {
		c.each(func(e entry) bool {
			if e.attr == best && e.row != NoRow && p.source.IsSelected(e.row) {
				bold = true
				return false
			}
			return true
		})
	}
	return pick{attr: best, bold: bold}
}

// pickRandom samples uniformly among the eligible entries.
func (p *Plotter) pickRandom(c *cell) pick {
	var eligible []Attr
	c.each(func(e entry) bool {
		if !p.attrDisabled(e.attr) {
			eligible = append(eligible, e.attr)
		}
		return true
	})
	if len(eligible) == 0 {
		return pick{attr: NoAttr}
	}
	return pick{attr: eligible[p.rng.Intn(len(eligible))]}
}

// RowsInBox returns the deduplicated rows associated with enabled attrs
// across every pixel within box, bounds inclusive. Order is unspecified.
func (p *Plotter) RowsInBox(box geom.Box) []RowID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	seen := make(map[RowID]struct{})
	var rows []RowID

	ymin, ymax := clampRange(int(box.YMin), int(box.YMax()), p.height)
	xmin, xmax := clampRange(int(box.XMin), int(box.XMax()), p.width)
	for y := ymin; y <= ymax; y++ {
		for x := xmin; x <= xmax; x++ {
			p.cells[y*p.width+x].each(func(e entry) bool {
				if e.row == NoRow || p.attrDisabled(e.attr) {
					return true
				}
				if _, ok := seen[e.row]; !ok {
					seen[e.row] = struct{}{}
					rows = append(rows, e.row)
				}
				return true
			})
		}
	}
	return rows
}

// style returns the display style for a resolved pick.
func (p *Plotter) style(pk pick) term.Style {
	if !pk.attr.Valid() || int(pk.attr) >= len(p.palette) {
		return term.DefaultStyle()
	}
	s := p.palette[pk.attr]
	if pk.bold {
		s = s.Bold()
	}
	return s
}

func roundPixel(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

func clampRange(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}
