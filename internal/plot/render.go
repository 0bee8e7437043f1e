package plot

import (
	"github.com/plotterm/plotterm/internal/geom"
	"github.com/plotterm/plotterm/internal/term"
)

// Surface is the subset of the display backend the plotter draws to.
type Surface interface {
	Clear()
	SetCell(col, row int, cell term.Cell)
}

// brailleBase is the first codepoint of the braille pattern block; the
// low 8 bits of the glyph select which of the 2x4 dots are raised.
const brailleBase = 0x2800

// sampleOffsets lists the 8 sub-pixel positions of one terminal cell in
// braille dot order, so bit i of the glyph mask corresponds to offset i.
var sampleOffsets = [8][2]int{
	{0, 0}, {0, 1}, {0, 2},
	{1, 0}, {1, 1}, {1, 2},
	{0, 3}, {1, 3},
}

// Render composites the pixel grid into braille glyphs on the surface.
// cursor is the cursor region in pixel coordinates; cells it covers are
// drawn with a reverse-video highlight even when empty. Labels are
// drawn last when showLabels is set.
func (p *Plotter) Render(s Surface, cursor geom.Box, showLabels bool) {
	s.Clear()

	p.mu.RLock()
	defer p.mu.RUnlock()

	for row := 0; row < p.rows-1; row++ {
		for col := 0; col < p.cols; col++ {
			p.renderCell(s, col, row, cursor)
		}
	}

	if showLabels {
		for _, l := range p.labels {
			p.renderLabel(s, l)
		}
	}
}

// renderCell resolves the 8 sub-pixels of one terminal cell and draws
// the resulting glyph, if any.
func (p *Plotter) renderCell(s Surface, col, row int, cursor geom.Box) {
	px, py := col*2, row*4

	var samples [8]pick
	mask := 0
	for i, off := range sampleOffsets {
		samples[i] = p.attrAt(px+off[0], py+off[1])
		if samples[i].attr.Valid() {
			mask |= 1 << i
		}
	}

	best := pick{attr: NoAttr}
	if mask != 0 {
		best = mostFrequent(samples[:])
	}

	// The cursor box highlights a cell when it covers the cell's
	// top-left or bottom-right sample, which also makes the cursor
	// visible over unplotted regions.
	highlight := cursor.Within(float64(px), float64(py)) ||
		cursor.Within(float64(px+1), float64(py+3))

	if mask == 0 && !highlight {
		return
	}

	style := p.style(best)
	if highlight {
		style = style.Reverse()
	}
	s.SetCell(col, row, term.NewCell(rune(brailleBase+mask), style))
}

// mostFrequent returns the most common valid pick among the samples,
// ties broken toward the lowest attr id with bold variants ranked after
// their base attr.
func mostFrequent(samples []pick) pick {
	counts := make(map[pick]int, len(samples))
	for _, s := range samples {
		if s.attr.Valid() {
			counts[s]++
		}
	}
	var best pick
	bestCount := 0
	for pk, n := range counts {
		if n > bestCount || (n == bestCount && lessPick(pk, best)) {
			best = pk
			bestCount = n
		}
	}
	return best
}

func lessPick(a, b pick) bool {
	if a.attr != b.attr {
		return a.attr < b.attr
	}
	return !a.bold && b.bold
}

// renderLabel draws one queued annotation at character resolution,
// clipped to the surface width.
func (p *Plotter) renderLabel(s Surface, l label) {
	row := l.y / 4
	col := l.x / 2
	for i, r := range l.text {
		if col+i >= p.cols {
			break
		}
		s.SetCell(col+i, row, term.NewCell(r, l.style))
	}
}
