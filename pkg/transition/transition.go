// pkg/transition/transition.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package transition connects consecutive loiters: a Dubins path first,
// retried over a small heading sweep if the straight computation clips
// an obstacle, falling back to an A*-computed poly-line. It also
// provides the nearest-neighbor tour sequencer that orders a loiter set
// before transitions are computed. Repeated Dubins pose-pair queries
// during the heading-retry sweep are memoized in a bounded LRU cache;
// Dubins results are a deterministic function of their inputs, so the
// cache needs no invalidation.
package transition

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/windrose/uasplanner/pkg/astar"
	"github.com/windrose/uasplanner/pkg/dubins"
	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
	"github.com/windrose/uasplanner/pkg/loiter"
	"github.com/windrose/uasplanner/pkg/util"
)

// headingRetrySweep are the entry-heading offsets tried, in order, when
// the direct Dubins path clips an obstacle.
var headingRetrySweep = []float64{
	math.Pi / 4, -math.Pi / 4, math.Pi / 2, -math.Pi / 2,
}

// Kind distinguishes how a Transition was produced.
type Kind int

const (
	DubinsKind Kind = iota
	AStarKind
)

func (k Kind) String() string {
	if k == DubinsKind {
		return "dubins"
	}
	return "astar"
}

// Transition is a computed connection between two poses.
type Transition struct {
	Kind       Kind
	Waypoints  []geo.Point
	DubinsPath *dubins.Path // non-nil only when Kind == DubinsKind
	Length     float64
}

// Config bounds how a Connector computes transitions.
type Config struct {
	TurnRadius    float64
	WaypointStep  float64
	DilationCells int
	cacheSize     int
}

func (c Config) waypointStep() float64 {
	if c.WaypointStep <= 0 {
		return c.TurnRadius / 10
	}
	return c.WaypointStep
}

func (c Config) cacheCapacity() int {
	if c.cacheSize <= 0 {
		return 256
	}
	return c.cacheSize
}

// dubinsKey is the cache key for a memoized Dubins query.
type dubinsKey struct {
	start, end geo.Pose
	radius     float64
}

type dubinsEntry struct {
	path dubins.Path
	ok   bool
}

// Connector computes and caches pairwise transitions against a single
// grid and A* pathfinder.
type Connector struct {
	grid  *gridmap.SurveillanceMap
	pf    *astar.Pathfinder
	cfg   Config
	cache *lru.Cache[dubinsKey, dubinsEntry]
}

// NewConnector builds a Connector over grid, constructing an A*
// pathfinder with the given dilation for the fallback path.
func NewConnector(grid *gridmap.SurveillanceMap, cfg Config) (*Connector, error) {
	cache, err := lru.New[dubinsKey, dubinsEntry](cfg.cacheCapacity())
	if err != nil {
		return nil, fmt.Errorf("transition: building dubins cache: %w", err)
	}
	return &Connector{
		grid:  grid,
		pf:    astar.New(grid, cfg.DilationCells),
		cfg:   cfg,
		cache: cache,
	}, nil
}

func (c *Connector) shortestCached(start, end geo.Pose, radius float64) (dubins.Path, bool) {
	key := dubinsKey{start: start, end: end, radius: radius}
	if v, ok := c.cache.Get(key); ok {
		return v.path, v.ok
	}
	path, ok := dubins.Shortest(start, end, radius)
	c.cache.Add(key, dubinsEntry{path: path, ok: ok})
	return path, ok
}

// Connect computes the transition from one loiter's exit pose to
// another's entry pose.
func (c *Connector) Connect(from, to loiter.Loiter) Transition {
	start := from.ExitPose()
	end := to.EntryPose()

	if t, ok := c.tryDubins(start, end); ok {
		return t
	}

	for _, offset := range headingRetrySweep {
		shifted := end
		shifted.Heading = geo.NormalizeAngle(end.Heading + offset)
		if t, ok := c.tryDubins(start, shifted); ok {
			return t
		}
	}

	return c.fallbackAStar(start, end)
}

func (c *Connector) tryDubins(start, end geo.Pose) (Transition, bool) {
	path, ok := c.shortestCached(start, end, c.cfg.TurnRadius)
	if !ok {
		return Transition{}, false
	}
	pts := dubins.Waypoints(path, c.cfg.waypointStep())
	if !c.pointsSafe(pts) {
		return Transition{}, false
	}
	return Transition{Kind: DubinsKind, Waypoints: pts, DubinsPath: &path, Length: path.Length()}, true
}

func (c *Connector) pointsSafe(pts []geo.Point) bool {
	for _, p := range pts {
		if !c.grid.IsPointSafe(p, false) {
			return false
		}
	}
	return true
}

func (c *Connector) fallbackAStar(start, end geo.Pose) Transition {
	pts, _ := c.pf.FindPath(start.Point, end.Point)
	length := 0.0
	for i := 1; i < len(pts); i++ {
		length += pts[i-1].Distance(pts[i])
	}
	return Transition{Kind: AStarKind, Waypoints: pts, Length: length}
}

// Sequence runs a nearest-neighbor tour starting from loiters[0]: at
// each step it picks the unvisited loiter whose center is closest
// (Euclidean) to the last exit point, breaking ties by input order. It
// returns the reordered loiter slice and the sum of straight-line
// surrogate distances (a heuristic target, not the authoritative cost).
func Sequence(loiters []loiter.Loiter) ([]loiter.Loiter, float64) {
	if len(loiters) <= 1 {
		return util.DuplicateSlice(loiters), 0
	}

	visited := make([]bool, len(loiters))
	order := make([]loiter.Loiter, 0, len(loiters))

	order = append(order, loiters[0])
	visited[0] = true
	lastExit := loiters[0].Exit

	surrogate := 0.0
	for len(order) < len(loiters) {
		best := -1
		bestDist := 0.0
		for i, l := range loiters {
			if visited[i] {
				continue
			}
			d := lastExit.Distance(l.Center)
			if best < 0 || d < bestDist {
				best = i
				bestDist = d
			}
		}
		visited[best] = true
		order = append(order, loiters[best])
		surrogate += bestDist
		lastExit = loiters[best].Exit
	}

	return order, surrogate
}
