// Package geom provides the geometric primitives used by the plotting
// engine: points, axis-aligned boxes, segment clipping, and line
// rasterization. All functions are pure; coordinates may be in canvas
// units or pixel units depending on the caller.
package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Pt creates a point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Box is an axis-aligned rectangle stored as min corner plus size.
type Box struct {
	XMin, YMin float64
	W, H       float64
}

// NewBox creates a box from its min corner and size.
func NewBox(xmin, ymin, w, h float64) Box {
	return Box{XMin: xmin, YMin: ymin, W: w, H: h}
}

// BoundingBox normalizes two arbitrary corner points into a min-corner box.
func BoundingBox(x1, y1, x2, y2 float64) Box {
	return Box{
		XMin: math.Min(x1, x2),
		YMin: math.Min(y1, y2),
		W:    math.Abs(x2 - x1),
		H:    math.Abs(y2 - y1),
	}
}

// XMax returns the exclusive right edge.
func (b Box) XMax() float64 { return b.XMin + b.W }

// YMax returns the exclusive bottom edge.
func (b Box) YMax() float64 { return b.YMin + b.H }

// Min returns the min corner.
func (b Box) Min() Point { return Point{X: b.XMin, Y: b.YMin} }

// Center returns the center point.
func (b Box) Center() Point {
	return Point{X: b.XCenter(), Y: b.YCenter()}
}

// XCenter returns the horizontal center.
func (b Box) XCenter() float64 { return b.XMin + b.W/2 }

// YCenter returns the vertical center.
func (b Box) YCenter() float64 { return b.YMin + b.H/2 }

// Within reports whether (x, y) falls inside the box. The upper bounds
// are exclusive: Within(XMax, y) is false.
func (b Box) Within(x, y float64) bool {
	return x >= b.XMin && x < b.XMax() && y >= b.YMin && y < b.YMax()
}

// Contains reports whether other lies entirely inside b (edges may touch).
func (b Box) Contains(other Box) bool {
	return other.XMin >= b.XMin && other.XMax() <= b.XMax() &&
		other.YMin >= b.YMin && other.YMax() <= b.YMax()
}

// Segment is a directed line segment.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// IsPoint reports whether the segment has zero length.
func (s Segment) IsPoint() bool {
	return s.X1 == s.X2 && s.Y1 == s.Y2
}

// ClipLine clips the segment (x1,y1)-(x2,y2) against box using the
// Liang-Barsky algorithm. It returns the clipped segment and true, or a
// zero segment and false when the segment lies entirely outside the box.
// A zero-length segment is treated as a point and tested for containment.
func ClipLine(x1, y1, x2, y2 float64, box Box) (Segment, bool) {
	dx := x2 - x1
	dy := y2 - y1

	if dx == 0 && dy == 0 {
		// Inclusive on all edges, matching the sloped-segment path.
		if x1 >= box.XMin && x1 <= box.XMax() && y1 >= box.YMin && y1 <= box.YMax() {
			return Segment{X1: x1, Y1: y1, X2: x2, Y2: y2}, true
		}
		return Segment{}, false
	}

	// Entry/exit parameters along the segment, one (p, q) pair per
	// boundary plane: left, right, bottom, top.
	u1, u2 := 0.0, 1.0
	pq := [4][2]float64{
		{-dx, x1 - box.XMin},
		{dx, box.XMax() - x1},
		{-dy, y1 - box.YMin},
		{dy, box.YMax() - y1},
	}

	for _, t := range pq {
		p, q := t[0], t[1]
		switch {
		case p < 0: // outside to inside
			u1 = math.Max(u1, q/p)
		case p > 0: // inside to outside
			u2 = math.Min(u2, q/p)
		default: // parallel to this boundary
			if q < 0 {
				return Segment{}, false
			}
		}
	}

	if u1 > u2 {
		return Segment{}, false
	}

	return Segment{
		X1: x1 + dx*u1,
		Y1: y1 + dy*u1,
		X2: x1 + dx*u2,
		Y2: y1 + dy*u2,
	}, true
}

// Rasterize samples the segment (x1,y1)-(x2,y2) into max(|dx|,|dy|)
// steps, calling visit for each sample. A zero-length segment yields
// exactly one sample. Samples are floating-point; callers round to the
// nearest integer pixel.
func Rasterize(x1, y1, x2, y2 float64, visit func(x, y float64)) {
	xdiff := math.Abs(x2 - x1)
	ydiff := math.Abs(y2 - y1)
	xdir := 1.0
	if x1 > x2 {
		xdir = -1.0
	}
	ydir := 1.0
	if y1 > y2 {
		ydir = -1.0
	}

	r := math.Round(math.Max(xdiff, ydiff))
	if r == 0 {
		visit(x1, y1)
		return
	}

	x, y := x1, y1
	for i := 0.0; i <= r; i++ {
		visit(x, y)
		x += xdir * xdiff / r
		y += ydir * ydiff / r
	}
}
