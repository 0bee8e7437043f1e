package geom

import (
	"math"
	"testing"
)

func TestBoxDerived(t *testing.T) {
	b := NewBox(1, 2, 4, 6)

	if b.XMax() != 5 {
		t.Errorf("XMax() = %v, want 5", b.XMax())
	}
	if b.YMax() != 8 {
		t.Errorf("YMax() = %v, want 8", b.YMax())
	}
	if c := b.Center(); c.X != 3 || c.Y != 5 {
		t.Errorf("Center() = %v, want (3,5)", c)
	}
}

func TestBoxWithin(t *testing.T) {
	b := NewBox(1, 1, 4, 4)

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"min corner", 1, 1, true},
		{"interior", 3, 3, true},
		{"xmax edge excluded", 5, 1, false},
		{"ymax edge excluded", 1, 5, false},
		{"left of box", 0, 1, false},
		{"above box", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Within(tt.x, tt.y); got != tt.want {
				t.Errorf("Within(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestBoundingBoxNormalizes(t *testing.T) {
	b := BoundingBox(8, 9, 2, 3)

	if b.XMin != 2 || b.YMin != 3 {
		t.Errorf("min corner = (%v,%v), want (2,3)", b.XMin, b.YMin)
	}
	if b.W != 6 || b.H != 6 {
		t.Errorf("size = (%v,%v), want (6,6)", b.W, b.H)
	}
}

func TestBoxContains(t *testing.T) {
	outer := NewBox(0, 0, 10, 10)

	if !outer.Contains(NewBox(2, 2, 4, 4)) {
		t.Error("inner box should be contained")
	}
	if !outer.Contains(outer) {
		t.Error("box should contain itself")
	}
	if outer.Contains(NewBox(8, 8, 4, 4)) {
		t.Error("overhanging box should not be contained")
	}
}

func TestClipLineInside(t *testing.T) {
	box := NewBox(2, 2, 6, 6) // (2,2)-(8,8)

	seg, ok := ClipLine(0, 0, 10, 10, box)
	if !ok {
		t.Fatal("diagonal through box should intersect")
	}
	for _, pt := range [][2]float64{{seg.X1, seg.Y1}, {seg.X2, seg.Y2}} {
		if pt[0] < 2 || pt[0] > 8 || pt[1] < 2 || pt[1] > 8 {
			t.Errorf("clipped endpoint (%v,%v) outside box", pt[0], pt[1])
		}
	}
}

func TestClipLineOutside(t *testing.T) {
	box := NewBox(2, 2, 6, 6)

	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
	}{
		{"above, parallel", 0, 0, 10, 0},
		{"left, parallel", 0, 0, 0, 10},
		{"misses corner", 0, 12, 12, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ClipLine(tt.x1, tt.y1, tt.x2, tt.y2, box); ok {
				t.Error("segment outside box should not intersect")
			}
		})
	}
}

func TestClipLinePoint(t *testing.T) {
	box := NewBox(2, 2, 6, 6)

	seg, ok := ClipLine(4, 4, 4, 4, box)
	if !ok {
		t.Fatal("point inside box should be kept")
	}
	if !seg.IsPoint() {
		t.Error("clipped point should stay a point")
	}
	if _, ok := ClipLine(0, 0, 0, 0, box); ok {
		t.Error("point outside box should be rejected")
	}
	if _, ok := ClipLine(8, 8, 8, 8, box); !ok {
		t.Error("point on the max corner should be kept")
	}
}

func TestRasterizeHorizontal(t *testing.T) {
	var pts [][2]float64
	Rasterize(0, 0, 4, 0, func(x, y float64) {
		pts = append(pts, [2]float64{math.Round(x), math.Round(y)})
	})

	want := [][2]float64{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	if len(pts) != len(want) {
		t.Fatalf("got %d samples, want %d: %v", len(pts), len(want), pts)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, pts[i], want[i])
		}
	}
}

func TestRasterizePoint(t *testing.T) {
	var pts [][2]float64
	Rasterize(0, 0, 0, 0, func(x, y float64) {
		pts = append(pts, [2]float64{x, y})
	})

	if len(pts) != 1 || pts[0] != [2]float64{0, 0} {
		t.Fatalf("got %v, want exactly [(0,0)]", pts)
	}
}

func TestRasterizeDirection(t *testing.T) {
	var xs []float64
	Rasterize(4, 0, 0, 0, func(x, y float64) {
		xs = append(xs, math.Round(x))
	})

	if len(xs) != 5 {
		t.Fatalf("got %d samples, want 5", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] >= xs[i-1] {
			t.Errorf("samples should decrease: %v", xs)
		}
	}
}

func TestRasterizeDiagonalEndpoints(t *testing.T) {
	var first, last [2]float64
	n := 0
	Rasterize(1, 1, 7, 4, func(x, y float64) {
		if n == 0 {
			first = [2]float64{x, y}
		}
		last = [2]float64{math.Round(x), math.Round(y)}
		n++
	})

	if first != [2]float64{1, 1} {
		t.Errorf("first sample = %v, want (1,1)", first)
	}
	if last != [2]float64{7, 4} {
		t.Errorf("last sample = %v, want (7,4)", last)
	}
}
