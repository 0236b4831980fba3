// pkg/fixture/fixture.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package fixture generates deterministic, seed-reproducible obstacle
// fields for planning runs and demos. It is an external collaborator,
// not part of the core planner, but it is the thing that makes
// seeded demo scenarios reproducible: every draw comes from a single
// pkg/rand.Rand seeded once at the top.
package fixture

import (
	"fmt"
	"math"

	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
	"github.com/windrose/uasplanner/pkg/rand"
)

// RandomFieldParams configure a randomly generated obstacle field.
type RandomFieldParams struct {
	Width, Height float64
	Seed          uint64
	Count         int
	MinRadius     float64
	MaxRadius     float64
	NoFlyFraction float64   // [0,1], fraction of obstacles that are hard no-fly zones
	Exclude       geo.Point // kept clear, e.g. the home point
	ExcludeRadius float64
}

// RandomField draws Count circular obstacles at uniformly sampled
// positions and radii, redrawing a center that falls inside the disk
// around Exclude up to 100 times; after 100 rejected draws the last draw
// is kept, so an obstacle can still land in that disk. Identical seed and params always produce
// an identical obstacle list, since reproducible demo scenarios depend
// on it.
func RandomField(p RandomFieldParams) ([]gridmap.Circle, error) {
	if p.Count < 0 {
		return nil, fmt.Errorf("fixture: count must be non-negative, got %v", p.Count)
	}
	if p.MinRadius <= 0 || p.MaxRadius < p.MinRadius {
		return nil, fmt.Errorf("fixture: invalid radius range [%v,%v]", p.MinRadius, p.MaxRadius)
	}

	r := rand.NewSeeded(p.Seed)
	obstacles := make([]gridmap.Circle, 0, p.Count)

	for i := 0; i < p.Count; i++ {
		var center geo.Point
		for attempt := 0; attempt < 100; attempt++ {
			center = geo.Point{X: float64(r.Float32()) * p.Width, Y: float64(r.Float32()) * p.Height}
			if p.ExcludeRadius <= 0 || center.Distance(p.Exclude) >= p.ExcludeRadius {
				break
			}
		}

		span := p.MaxRadius - p.MinRadius
		radius := p.MinRadius + float64(r.Float32())*span

		noFly := false
		if p.NoFlyFraction > 0 {
			noFly = r.Float32() < float32(p.NoFlyFraction)
		}

		obstacles = append(obstacles, gridmap.Circle{
			Center: center,
			Radius: radius,
			Name:   fmt.Sprintf("obstacle-%02d", i+1),
			NoFly:  noFly,
		})
	}

	return obstacles, nil
}

// LACSector is a named, fixed-position obstacle, used by the "lac"
// fixed map type (as opposed to "random") in the mission document's
// map.type field.
type LACSector struct {
	Name   string
	Center geo.Point
	Radius float64
	NoFly  bool
}

// LACField converts a fixed sector layout into the obstacle list the
// grid consumes, for a repeatable non-random scenario type distinct
// from RandomField.
func LACField(sectors []LACSector) []gridmap.Circle {
	out := make([]gridmap.Circle, len(sectors))
	for i, s := range sectors {
		out[i] = gridmap.Circle{Center: s.Center, Radius: s.Radius, Name: s.Name, NoFly: s.NoFly}
	}
	return out
}

// DefaultLACRing builds a ring of n evenly spaced sectors around the
// map center at the given radius from center, each with the same
// obstacle radius.
func DefaultLACRing(width, height float64, n int, ringRadius, obstacleRadius float64) []gridmap.Circle {
	center := geo.Point{X: width / 2, Y: height / 2}
	out := make([]gridmap.Circle, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		c := geo.Point{
			X: center.X + ringRadius*math.Cos(angle),
			Y: center.Y + ringRadius*math.Sin(angle),
		}
		out[i] = gridmap.Circle{
			Center: c,
			Radius: obstacleRadius,
			Name:   fmt.Sprintf("lac-sector-%02d", i+1),
			NoFly:  true,
		}
	}
	return out
}
