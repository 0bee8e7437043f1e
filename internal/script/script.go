// Package script loads plot definitions written in Lua. A plot script
// declares points, lines, polygons, and labels in canvas units; the
// loader registers their rows with the data source and feeds the
// primitives to the canvas, with colors assigned per grouping key.
package script

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/plotterm/plotterm/internal/canvas"
	"github.com/plotterm/plotterm/internal/data"
	"github.com/plotterm/plotterm/internal/geom"
	"github.com/plotterm/plotterm/internal/plot"
)

// DefaultTimeout bounds one script execution.
const DefaultTimeout = 10 * time.Second

// Loader executes plot scripts against a canvas and row source.
type Loader struct {
	canvas  *canvas.Canvas
	source  *data.Source
	timeout time.Duration
}

// NewLoader creates a loader targeting the given canvas and source.
func NewLoader(c *canvas.Canvas, s *data.Source) *Loader {
	return &Loader{canvas: c, source: s, timeout: DefaultTimeout}
}

// LoadFile executes the script at path.
func (l *Loader) LoadFile(path string) error {
	return l.run(func(L *lua.LState) error {
		if err := L.DoFile(path); err != nil {
			return fmt.Errorf("plot script %s: %w", path, err)
		}
		return nil
	})
}

// LoadString executes script source directly. Tests use this.
func (l *Loader) LoadString(src string) error {
	return l.run(func(L *lua.LState) error {
		if err := L.DoString(src); err != nil {
			return fmt.Errorf("plot script: %w", err)
		}
		return nil
	})
}

func (l *Loader) run(exec func(*lua.LState) error) error {
	L := lua.NewState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	L.SetContext(ctx)

	l.register(L)
	return exec(L)
}

// register installs the plotting API into the Lua state.
func (l *Loader) register(L *lua.LState) {
	L.SetGlobal("point", L.NewFunction(l.luaPoint))
	L.SetGlobal("line", L.NewFunction(l.luaLine))
	L.SetGlobal("polyline", L.NewFunction(l.luaPolyline))
	L.SetGlobal("polygon", L.NewFunction(l.luaPolygon))
	L.SetGlobal("label", L.NewFunction(l.luaLabel))
}

// point(x, y, key [, fields]) registers a row under key and plots it.
func (l *Loader) luaPoint(L *lua.LState) int {
	x := float64(L.CheckNumber(1))
	y := float64(L.CheckNumber(2))
	key := L.CheckString(3)

	var fields map[string]string
	if L.GetTop() >= 4 {
		fields = tableToFields(L, L.CheckTable(4))
	}

	row := l.source.Add(key, fields)
	l.canvas.AddPoint(x, y, l.canvas.ColorFor(key), row)
	return 0
}

// line(x1, y1, x2, y2, key) plots a segment.
func (l *Loader) luaLine(L *lua.LState) int {
	x1 := float64(L.CheckNumber(1))
	y1 := float64(L.CheckNumber(2))
	x2 := float64(L.CheckNumber(3))
	y2 := float64(L.CheckNumber(4))
	key := L.CheckString(5)

	l.canvas.AddLine(x1, y1, x2, y2, l.canvas.ColorFor(key), plot.NoRow)
	return 0
}

// polyline(vertices, key) plots open segments between vertices.
func (l *Loader) luaPolyline(L *lua.LState) int {
	vertices, err := tableToVertices(L.CheckTable(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	key := L.CheckString(2)

	l.canvas.AddPolyline(vertices, l.canvas.ColorFor(key), plot.NoRow)
	return 0
}

// polygon(vertices, key) plots a closed outline.
func (l *Loader) luaPolygon(L *lua.LState) int {
	vertices, err := tableToVertices(L.CheckTable(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	key := L.CheckString(2)

	l.canvas.AddPolygon(vertices, l.canvas.ColorFor(key), plot.NoRow)
	return 0
}

// label(x, y, text, key) plots a text annotation.
func (l *Loader) luaLabel(L *lua.LState) int {
	x := float64(L.CheckNumber(1))
	y := float64(L.CheckNumber(2))
	text := L.CheckString(3)
	key := L.CheckString(4)

	l.canvas.AddLabel(x, y, text, l.canvas.ColorFor(key), plot.NoRow)
	return 0
}

// tableToVertices converts {{x, y}, ...} into points.
func tableToVertices(t *lua.LTable) ([]geom.Point, error) {
	var vertices []geom.Point
	var convErr error

	t.ForEach(func(_, v lua.LValue) {
		if convErr != nil {
			return
		}
		pair, ok := v.(*lua.LTable)
		if !ok || pair.Len() < 2 {
			convErr = fmt.Errorf("vertex %d: want {x, y}", len(vertices)+1)
			return
		}
		x, xok := pair.RawGetInt(1).(lua.LNumber)
		y, yok := pair.RawGetInt(2).(lua.LNumber)
		if !xok || !yok {
			convErr = fmt.Errorf("vertex %d: coordinates must be numbers", len(vertices)+1)
			return
		}
		vertices = append(vertices, geom.Pt(float64(x), float64(y)))
	})
	return vertices, convErr
}

// tableToFields flattens a string-keyed Lua table.
func tableToFields(L *lua.LState, t *lua.LTable) map[string]string {
	fields := make(map[string]string)
	t.ForEach(func(k, v lua.LValue) {
		fields[lua.LVAsString(k)] = lua.LVAsString(L.ToStringMeta(v))
	})
	return fields
}
