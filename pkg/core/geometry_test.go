package core

import "testing"

func TestMapperToPage(t *testing.T) {
	surface := Rect{X: 100, Y: 50, W: 800, H: 1000}

	var m Mapper
	p := m.ToPage(500, 550, surface)
	if p.X != 50 || p.Y != 50 {
		t.Errorf("expected (50,50), got (%v,%v)", p.X, p.Y)
	}

	p = m.ToPage(100, 50, surface)
	if p.X != 0 || p.Y != 0 {
		t.Errorf("expected (0,0) at the surface origin, got (%v,%v)", p.X, p.Y)
	}
}

func TestMapperDegenerateSurface(t *testing.T) {
	var m Mapper
	m.ToPage(500, 550, Rect{X: 100, Y: 50, W: 800, H: 1000})

	// Zero-size rect must not divide by zero; the last known point wins.
	p := m.ToPage(999, 999, Rect{})
	if p.X != 50 || p.Y != 50 {
		t.Errorf("expected last known point (50,50), got (%v,%v)", p.X, p.Y)
	}

	// A fresh mapper with no history returns the zero point.
	var fresh Mapper
	p = fresh.ToPage(999, 999, Rect{W: 0, H: 100})
	if p != (Point{}) {
		t.Errorf("expected zero point, got %+v", p)
	}
}

func TestRectNormalized(t *testing.T) {
	r := Rect{X: 40, Y: 30, W: -30, H: -20}.Normalized()
	want := Rect{X: 10, Y: 10, W: 30, H: 20}
	if r != want {
		t.Errorf("expected %+v, got %+v", want, r)
	}

	already := Rect{X: 5, Y: 5, W: 10, H: 10}
	if got := already.Normalized(); got != already {
		t.Errorf("normalizing a positive rect changed it: %+v", got)
	}
}

func TestBounds(t *testing.T) {
	pts := []Point{{X: 10, Y: 20}, {X: 40, Y: 5}, {X: 25, Y: 30}}
	b := Bounds(pts)
	want := Rect{X: 10, Y: 5, W: 30, H: 25}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}

	if Bounds(nil) != (Rect{}) {
		t.Error("expected zero rect for empty point list")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want float64 }{
		{-5, 0, 100, 0},
		{105, 0, 100, 100},
		{42, 0, 100, 42},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%v): expected %v, got %v", c.v, c.want, got)
		}
	}
}
