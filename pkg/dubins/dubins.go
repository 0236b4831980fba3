// pkg/dubins/dubins.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package dubins computes the shortest path between two oriented poses
// for a forward-only vehicle with a minimum turn radius, and samples
// that path into a waypoint polyline. It evaluates all six CSC/CCC
// families (LSL, LSR, RSL, RSR, RLR, LRL) with the closed-form
// Shkel/Lumelsky equations in normalized units and keeps the shortest
// feasible candidate.
package dubins

import (
	"errors"
	"math"

	"github.com/windrose/uasplanner/pkg/geo"
)

// Family identifies which of the six canonical Dubins path types a Path
// represents.
type Family int

const (
	LSL Family = iota
	LSR
	RSL
	RSR
	RLR
	LRL
)

func (f Family) String() string {
	switch f {
	case LSL:
		return "LSL"
	case LSR:
		return "LSR"
	case RSL:
		return "RSL"
	case RSR:
		return "RSR"
	case RLR:
		return "RLR"
	case LRL:
		return "LRL"
	default:
		return "UNKNOWN"
	}
}

// segKind is a single leg of a Dubins path: a left turn, straight run,
// or right turn.
type segKind int

const (
	segL segKind = iota
	segS
	segR
)

var familySegs = map[Family][3]segKind{
	LSL: {segL, segS, segL},
	LSR: {segL, segS, segR},
	RSL: {segR, segS, segL},
	RSR: {segR, segS, segR},
	RLR: {segR, segL, segR},
	LRL: {segL, segR, segL},
}

// ErrNoPath is returned when every one of the six families is
// numerically infeasible for the given pose pair and radius. In
// practice this only happens for pathological inputs, since any pose
// pair with d > 0 has at least one valid CSC family.
var ErrNoPath = errors.New("dubins: no feasible path for any family")

// Path is a computed Dubins path: three normalized segment lengths
// (radians for turn segments, units of Radius for the straight segment)
// bound to a family, start/end pose, and turn radius.
type Path struct {
	Family     Family
	T, P, Q    float64
	Radius     float64
	Start, End geo.Pose
}

// Length returns the path's total flown distance.
func (p Path) Length() float64 {
	return (p.T + p.P + p.Q) * p.Radius
}

// mod2pi reduces a to [0, 2*pi).
func mod2pi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

type candidate struct {
	family  Family
	t, p, q float64
	ok      bool
}

// Shortest computes the minimum-length Dubins path from start to end
// with the given turn radius, evaluating all six families and returning
// the shortest feasible one. ok is false only if every family is
// numerically infeasible (ErrNoPath territory).
func Shortest(start, end geo.Pose, radius float64) (Path, bool) {
	if radius <= 0 {
		return Path{}, false
	}

	dx, dy := (end.X-start.X)/radius, (end.Y-start.Y)/radius
	d := math.Hypot(dx, dy)
	theta := math.Atan2(dy, dx)
	alpha := mod2pi(start.Heading - theta)
	beta := mod2pi(end.Heading - theta)

	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)
	cAB := math.Cos(alpha - beta)

	candidates := []candidate{
		lsl(d, alpha, beta, sa, ca, sb, cb, cAB),
		rsr(d, alpha, beta, sa, ca, sb, cb, cAB),
		lsr(d, alpha, beta, sa, ca, sb, cb, cAB),
		rsl(d, alpha, beta, sa, ca, sb, cb, cAB),
		rlr(d, alpha, beta, sa, ca, sb, cb, cAB),
		lrl(d, alpha, beta, sa, ca, sb, cb, cAB),
	}

	best := -1
	bestLen := math.Inf(1)
	for i, c := range candidates {
		if !c.ok {
			continue
		}
		total := c.t + c.p + c.q
		if total < bestLen {
			bestLen = total
			best = i
		}
	}
	if best < 0 {
		return Path{}, false
	}

	c := candidates[best]
	return Path{
		Family: c.family,
		T:      c.t,
		P:      c.p,
		Q:      c.q,
		Radius: radius,
		Start:  start,
		End:    end,
	}, true
}

func lsl(d, alpha, beta, sa, ca, sb, cb, cAB float64) candidate {
	pSq := 2 + d*d - 2*cAB + 2*d*(sa-sb)
	if pSq < 0 {
		return candidate{}
	}
	tmp := math.Atan2(cb-ca, d+sa-sb)
	return candidate{
		family: LSL,
		t:      mod2pi(-alpha + tmp),
		p:      math.Sqrt(pSq),
		q:      mod2pi(beta - tmp),
		ok:     true,
	}
}

func rsr(d, alpha, beta, sa, ca, sb, cb, cAB float64) candidate {
	pSq := 2 + d*d - 2*cAB + 2*d*(sb-sa)
	if pSq < 0 {
		return candidate{}
	}
	tmp := math.Atan2(ca-cb, d-sa+sb)
	return candidate{
		family: RSR,
		t:      mod2pi(alpha - tmp),
		p:      math.Sqrt(pSq),
		q:      mod2pi(-beta + tmp),
		ok:     true,
	}
}

func lsr(d, alpha, beta, sa, ca, sb, cb, cAB float64) candidate {
	pSq := -2 + d*d + 2*cAB + 2*d*(sa+sb)
	if pSq < 0 {
		return candidate{}
	}
	p := math.Sqrt(pSq)
	tmp := math.Atan2(-ca-cb, d+sa+sb) - math.Atan2(-2, p)
	return candidate{
		family: LSR,
		t:      mod2pi(-alpha + tmp),
		p:      p,
		q:      mod2pi(-mod2pi(beta) + tmp),
		ok:     true,
	}
}

func rsl(d, alpha, beta, sa, ca, sb, cb, cAB float64) candidate {
	pSq := d*d - 2 + 2*cAB - 2*d*(sa+sb)
	if pSq < 0 {
		return candidate{}
	}
	p := math.Sqrt(pSq)
	tmp := math.Atan2(ca+cb, d-sa-sb) - math.Atan2(2, p)
	return candidate{
		family: RSL,
		t:      mod2pi(alpha - tmp),
		p:      p,
		q:      mod2pi(beta - tmp),
		ok:     true,
	}
}

func rlr(d, alpha, beta, sa, ca, sb, cb, cAB float64) candidate {
	tmp := (6 - d*d + 2*cAB + 2*d*(sa-sb)) / 8
	if math.Abs(tmp) > 1 {
		return candidate{}
	}
	p := mod2pi(2*math.Pi - math.Acos(tmp))
	t := mod2pi(alpha - math.Atan2(ca-cb, d-sa+sb) + p/2)
	q := mod2pi(alpha - beta - t + p)
	return candidate{family: RLR, t: t, p: p, q: q, ok: true}
}

func lrl(d, alpha, beta, sa, ca, sb, cb, cAB float64) candidate {
	tmp := (6 - d*d + 2*cAB + 2*d*(sb-sa)) / 8
	if math.Abs(tmp) > 1 {
		return candidate{}
	}
	p := mod2pi(2*math.Pi - math.Acos(tmp))
	t := mod2pi(-alpha - math.Atan2(ca-cb, d+sa-sb) + p/2)
	q := mod2pi(mod2pi(beta) - alpha - t + p)
	return candidate{family: LRL, t: t, p: p, q: q, ok: true}
}

// Waypoints forward-simulates p's canonical segment pattern, sampling
// approximately every step meters of arc/straight length, and returns
// the resulting polyline including both endpoints.
func Waypoints(p Path, step float64) []geo.Point {
	if step <= 0 {
		step = p.Radius / 10
	}
	segs := familySegs[p.Family]
	lengths := [3]float64{p.T, p.P, p.Q}

	pts := []geo.Point{p.Start.Point}
	pose := p.Start

	for i, kind := range segs {
		length := lengths[i]
		switch kind {
		case segS:
			dist := length * p.Radius
			pts, pose = straightSegment(pts, pose, dist, step)
		case segL:
			pts, pose = arcSegment(pts, pose, length, p.Radius, step, 1)
		case segR:
			pts, pose = arcSegment(pts, pose, length, p.Radius, step, -1)
		}
	}
	return pts
}

func straightSegment(pts []geo.Point, pose geo.Pose, dist, step float64) ([]geo.Point, geo.Pose) {
	if dist <= 0 {
		return pts, pose
	}
	n := int(math.Ceil(dist / step))
	if n < 1 {
		n = 1
	}
	dirX, dirY := math.Cos(pose.Heading), math.Sin(pose.Heading)
	for j := 1; j <= n; j++ {
		d := math.Min(float64(j)*step, dist)
		pts = append(pts, geo.Point{X: pose.X + dirX*d, Y: pose.Y + dirY*d})
	}
	pose.Point = geo.Point{X: pose.X + dirX*dist, Y: pose.Y + dirY*dist}
	return pts, pose
}

// arcSegment orbits the turn center (perpendicular offset from the
// current pose by radius, left for sign=1 / right for sign=-1) through
// the given angle (radians), sampling every step meters of arc length.
func arcSegment(pts []geo.Point, pose geo.Pose, angle, radius, step float64, sign float64) ([]geo.Point, geo.Pose) {
	if angle <= 0 {
		return pts, pose
	}
	perp := pose.Heading + sign*math.Pi/2
	center := geo.Point{X: pose.X + radius*math.Cos(perp), Y: pose.Y + radius*math.Sin(perp)}

	arcLen := angle * radius
	n := int(math.Ceil(arcLen / step))
	if n < 1 {
		n = 1
	}
	for j := 1; j <= n; j++ {
		frac := math.Min(float64(j)/float64(n), 1)
		a := sign * angle * frac
		pts = append(pts, pose.Point.Rotated(center, a))
	}
	pose.Point = pose.Point.Rotated(center, sign*angle)
	pose.Heading = geo.NormalizeAngle(pose.Heading + sign*angle)
	return pts, pose
}
