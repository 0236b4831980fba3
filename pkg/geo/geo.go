// pkg/geo/geo.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo provides the 2D geometry primitives the rest of the planner
// is built on: points, oriented poses, angle normalization, and the
// intersection/distance routines used to keep loiters and transitions
// clear of obstacles. Everything works in float64 meters over a local
// planning frame: origin at the south-west corner of the map, x east,
// y north.
package geo

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Point is a location in the planning frame: meters, origin at the
// south-west corner of the map, x east, y north.
type Point struct {
	X, Y float64
}

// Pose is a Point plus a heading in radians, normalized to (-pi, pi].
type Pose struct {
	Point
	Heading float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DistanceSqr returns the squared Euclidean distance between p and q,
// useful for comparisons that don't need the sqrt.
func (p Point) DistanceSqr(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// HeadingTo returns the heading in radians, normalized to (-pi, pi], from
// p to q: atan2(qy-py, qx-px).
func (p Point) HeadingTo(q Point) float64 {
	return NormalizeAngle(math.Atan2(q.Y-p.Y, q.X-p.X))
}

// Rotated returns p rotated by angle radians about center.
func (p Point) Rotated(center Point, angle float64) Point {
	s, c := math.Sincos(angle)
	d := p.Sub(center)
	return Point{
		X: center.X + d.X*c - d.Y*s,
		Y: center.Y + d.X*s + d.Y*c,
	}
}

// NormalizeAngle reduces an angle in radians to (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Clamp restricts x to the range [low, high].
func Clamp[T constraints.Ordered](x, low, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Lerp performs linear interpolation between a and b using factor x in [0,1].
func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D is an axis-aligned bounding box with corners P0 (min) and P1 (max).
type Extent2D struct {
	P0, P1 Point
}

// EmptyExtent2D returns a degenerate bounding box suitable as the seed for
// repeated Union calls.
func EmptyExtent2D() Extent2D {
	inf := math.Inf(1)
	return Extent2D{P0: Point{inf, inf}, P1: Point{-inf, -inf}}
}

// Extent2DFromPoints returns the smallest Extent2D bounding all of pts.
func Extent2DFromPoints(pts []Point) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		e = Union(e, p)
	}
	return e
}

func Union(e Extent2D, p Point) Extent2D {
	e.P0.X = math.Min(e.P0.X, p.X)
	e.P0.Y = math.Min(e.P0.Y, p.Y)
	e.P1.X = math.Max(e.P1.X, p.X)
	e.P1.Y = math.Max(e.P1.Y, p.Y)
	return e
}

func (e Extent2D) Width() float64  { return e.P1.X - e.P0.X }
func (e Extent2D) Height() float64 { return e.P1.Y - e.P0.Y }

// Expand grows the extent by d in every direction.
func (e Extent2D) Expand(d float64) Extent2D {
	return Extent2D{
		P0: Point{e.P0.X - d, e.P0.Y - d},
		P1: Point{e.P1.X + d, e.P1.Y + d},
	}
}

func (e Extent2D) Inside(p Point) bool {
	return p.X >= e.P0.X && p.X <= e.P1.X && p.Y >= e.P0.Y && p.Y <= e.P1.Y
}

///////////////////////////////////////////////////////////////////////////
// Intersections and distances

// LineLineIntersect returns the intersection point of the infinite lines
// through (p1,p2) and (p3,p4), and whether a valid intersection exists
// (false for parallel or near-parallel lines).
func LineLineIntersect(p1, p2, p3, p4 Point) (Point, bool) {
	d12 := p1.Sub(p2)
	d34 := p3.Sub(p4)
	denom := d12.X*d34.Y - d12.Y*d34.X
	if math.Abs(denom) < 1e-9 {
		return Point{}, false
	}
	numx := (p1.X*p2.Y-p1.Y*p2.X)*(p3.X-p4.X) - (p1.X-p2.X)*(p3.X*p4.Y-p3.Y*p4.X)
	numy := (p1.X*p2.Y-p1.Y*p2.X)*(p3.Y-p4.Y) - (p1.Y-p2.Y)*(p3.X*p4.Y-p3.Y*p4.X)
	return Point{numx / denom, numy / denom}, true
}

// SegmentSegmentIntersect returns the intersection point of segments
// (p1,p2) and (p3,p4), and whether it falls within both segments.
func SegmentSegmentIntersect(p1, p2, p3, p4 Point) (Point, bool) {
	p, ok := LineLineIntersect(p1, p2, p3, p4)
	if !ok {
		return Point{}, false
	}
	b0 := Extent2DFromPoints([]Point{p1, p2})
	b1 := Extent2DFromPoints([]Point{p3, p4})
	return p, b0.Inside(p) && b1.Inside(p)
}

// SignedPointLineDistance returns the signed distance from p to the
// infinite line through (p0,p1); points to the right of the line
// (traveling p0->p1) have positive distance, points to the left negative.
func SignedPointLineDistance(p, p0, p1 Point) float64 {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	sq := dx*dx + dy*dy
	if sq == 0 {
		return math.Inf(1)
	}
	return (dx*(p0.Y-p.Y) - dy*(p0.X-p.X)) / math.Sqrt(sq)
}

// PointLineDistance returns the minimum distance from p to the infinite
// line through (p0,p1).
func PointLineDistance(p, p0, p1 Point) float64 {
	return math.Abs(SignedPointLineDistance(p, p0, p1))
}

// PointSegmentDistance returns the minimum distance from p to the segment (v,w).
func PointSegmentDistance(p, v, w Point) float64 {
	l2 := v.DistanceSqr(w)
	if l2 == 0 {
		return p.Distance(v)
	}
	wv := w.Sub(v)
	t := Clamp(((p.X-v.X)*wv.X+(p.Y-v.Y)*wv.Y)/l2, 0, 1)
	proj := v.Add(wv.Scale(t))
	return p.Distance(proj)
}

// PointInCircle reports whether p lies within (or on) the circle of the
// given center and radius.
func PointInCircle(p, center Point, radius float64) bool {
	return p.DistanceSqr(center) <= radius*radius
}

// CircleCircleIntersect returns the 0, 1, or 2 intersection points of two
// circles.
func CircleCircleIntersect(c0 Point, r0 float64, c1 Point, r1 float64) []Point {
	d := c0.Distance(c1)
	if d > r0+r1 || d < math.Abs(r0-r1) || d == 0 {
		return nil
	}

	a := (r0*r0 - r1*r1 + d*d) / (2 * d)
	h2 := r0*r0 - a*a
	if h2 < 0 {
		return nil
	}
	h := math.Sqrt(h2)

	mid := Point{
		X: c0.X + a*(c1.X-c0.X)/d,
		Y: c0.Y + a*(c1.Y-c0.Y)/d,
	}

	if h == 0 {
		return []Point{mid}
	}

	rx, ry := -(c1.Y-c0.Y)*(h/d), (c1.X-c0.X)*(h/d)
	return []Point{
		{mid.X + rx, mid.Y + ry},
		{mid.X - rx, mid.Y - ry},
	}
}

// SegmentCircleIntersect returns the 0, 1, or 2 points where the segment
// (a,b) crosses the circle of the given center and radius.
func SegmentCircleIntersect(a, b, center Point, radius float64) []Point {
	d := b.Sub(a)
	f := a.Sub(center)

	aa := d.X*d.X + d.Y*d.Y
	bb := 2 * (f.X*d.X + f.Y*d.Y)
	cc := f.X*f.X + f.Y*f.Y - radius*radius

	disc := bb*bb - 4*aa*cc
	if disc < 0 || aa == 0 {
		return nil
	}
	disc = math.Sqrt(disc)

	var pts []Point
	for _, t := range []float64{(-bb - disc) / (2 * aa), (-bb + disc) / (2 * aa)} {
		if t >= 0 && t <= 1 {
			pts = append(pts, a.Add(d.Scale(t)))
		}
	}
	return pts
}
