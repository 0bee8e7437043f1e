// Package data provides the tabular row source behind a plot: stable
// row handles, per-row grouping keys, and the selection state the
// plotter consults for highlighting.
package data

import (
	"sync"

	"github.com/plotterm/plotterm/internal/plot"
)

// Row is one record in the source. Key is the grouping key used for
// color assignment; Fields carries the display values.
type Row struct {
	ID     plot.RowID
	Key    string
	Fields map[string]string
}

// Source holds rows and their selection state. It implements
// plot.RowSource. All methods are safe for concurrent use; the render
// pass reads selection state while input handling mutates it.
type Source struct {
	mu       sync.RWMutex
	rows     []Row
	byID     map[plot.RowID]int
	selected map[plot.RowID]struct{}
	nextID   plot.RowID
}

// NewSource creates an empty row source.
func NewSource() *Source {
	return &Source{
		byID:     make(map[plot.RowID]int),
		selected: make(map[plot.RowID]struct{}),
	}
}

// Add appends a row and returns its stable handle.
func (s *Source) Add(key string, fields map[string]string) plot.RowID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.byID[id] = len(s.rows)
	s.rows = append(s.rows, Row{ID: id, Key: key, Fields: fields})
	return id
}

// Len returns the number of rows.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rows)
}

// Row returns the row for a handle.
func (s *Source) Row(id plot.RowID) (Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return Row{}, false
	}
	return s.rows[idx], true
}

// IsSelected reports whether the row is selected.
func (s *Source) IsSelected(id plot.RowID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.selected[id]
	return ok
}

// Select marks the given rows selected.
func (s *Source) Select(ids []plot.RowID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			s.selected[id] = struct{}{}
		}
	}
}

// Unselect clears selection for the given rows.
func (s *Source) Unselect(ids []plot.RowID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.selected, id)
	}
}

// ToggleSelect flips selection for the given rows.
func (s *Source) ToggleSelect(ids []plot.RowID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.selected[id]; ok {
			delete(s.selected, id)
		} else if _, known := s.byID[id]; known {
			s.selected[id] = struct{}{}
		}
	}
}

// SelectedCount returns the number of selected rows.
func (s *Source) SelectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.selected)
}

// Snapshot returns copies of the rows for the given handles, in input
// order, skipping unknown handles. Callers use this to open a subset
// of the source as a new view.
func (s *Source) Snapshot(ids []plot.RowID) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		if idx, ok := s.byID[id]; ok {
			rows = append(rows, s.rows[idx])
		}
	}
	return rows
}
