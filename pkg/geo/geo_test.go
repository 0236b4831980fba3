// pkg/geo/geo_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{-3 * math.Pi, math.Pi},
		{math.Pi / 2, math.Pi / 2},
	}
	for _, c := range cases {
		got := NormalizeAngle(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v out of (-pi,pi]", c.in, got)
		}
	}
}

func TestHeadingTo(t *testing.T) {
	p := Point{0, 0}
	if h := p.HeadingTo(Point{1, 0}); math.Abs(h) > 1e-9 {
		t.Errorf("east heading = %v, want 0", h)
	}
	if h := p.HeadingTo(Point{0, 1}); math.Abs(h-math.Pi/2) > 1e-9 {
		t.Errorf("north heading = %v, want pi/2", h)
	}
}

func TestPointSegmentDistance(t *testing.T) {
	// Closest point is an interior projection.
	d := PointSegmentDistance(Point{0, 1}, Point{-1, 0}, Point{1, 0})
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("got %v, want 1", d)
	}
	// Closest point is the segment endpoint.
	d = PointSegmentDistance(Point{2, 0}, Point{-1, 0}, Point{1, 0})
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("got %v, want 1", d)
	}
}

func TestCircleCircleIntersect(t *testing.T) {
	// Two unit circles centered 1 apart overlap in two points.
	pts := CircleCircleIntersect(Point{0, 0}, 1, Point{1, 0}, 1)
	if len(pts) != 2 {
		t.Fatalf("got %d intersections, want 2", len(pts))
	}

	// Circles too far apart: no intersection.
	pts = CircleCircleIntersect(Point{0, 0}, 1, Point{10, 0}, 1)
	if len(pts) != 0 {
		t.Fatalf("got %d intersections, want 0", len(pts))
	}

	// Same center and radius: degenerate, no well-defined finite set.
	pts = CircleCircleIntersect(Point{0, 0}, 1, Point{0, 0}, 1)
	if len(pts) != 0 {
		t.Fatalf("got %d intersections for coincident circles, want 0", len(pts))
	}
}

func TestSegmentCircleIntersect(t *testing.T) {
	pts := SegmentCircleIntersect(Point{-2, 0}, Point{2, 0}, Point{0, 0}, 1)
	if len(pts) != 2 {
		t.Fatalf("got %d intersections, want 2", len(pts))
	}
	for _, p := range pts {
		if math.Abs(math.Hypot(p.X, p.Y)-1) > 1e-9 {
			t.Errorf("intersection point %v not on unit circle", p)
		}
	}
}

func TestExtent2D(t *testing.T) {
	e := Extent2DFromPoints([]Point{{1, 2}, {-1, 5}, {3, -2}})
	if e.P0 != (Point{-1, -2}) || e.P1 != (Point{3, 5}) {
		t.Errorf("got %+v", e)
	}
	if !e.Inside(Point{0, 0}) {
		t.Error("origin should be inside")
	}
	if e.Inside(Point{10, 10}) {
		t.Error("(10,10) should be outside")
	}
}

func TestClampLerp(t *testing.T) {
	if Clamp(5, 0, 10) != 5 || Clamp(-1, 0, 10) != 0 || Clamp(11, 0, 10) != 10 {
		t.Error("Clamp failed")
	}
	if Lerp(0.5, 0, 10) != 5 {
		t.Error("Lerp failed")
	}
}
