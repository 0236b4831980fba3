// pkg/gridmap/gridmap.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package gridmap implements the surveillance area model: a rasterized
// occupancy/coverage grid over a rectangular area of interest containing
// circular obstacles and no-fly zones. It is the one mutable entity in a
// planning run (the coverage grid changes as loiters are selected); every
// other value produced by the planner is immutable once built.
package gridmap

import (
	"fmt"
	"math"

	"github.com/brunoga/deep"

	"github.com/windrose/uasplanner/pkg/geo"
)

// Kind is a cell's occupancy classification. NO_FLY > OBSTACLE >
// SOFT_NO_FLY > FREE is the precedence order used when rasterizing: a
// cell's kind never downgrades once a harder obstacle has claimed it.
type Kind int

const (
	Free Kind = iota
	SoftNoFly
	Obstacle
	NoFly
	Start
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "FREE"
	case SoftNoFly:
		return "SOFT_NO_FLY"
	case Obstacle:
		return "OBSTACLE"
	case NoFly:
		return "NO_FLY"
	case Start:
		return "START"
	default:
		return "UNKNOWN"
	}
}

// precedence returns the relative hardness of a kind for the "never
// downgrade" rasterization rule; higher wins.
func (k Kind) precedence() int {
	switch k {
	case NoFly:
		return 3
	case Obstacle:
		return 2
	case SoftNoFly:
		return 1
	default:
		return 0
	}
}

// Circle is an immutable circular obstacle or no-fly zone.
type Circle struct {
	Center Point
	Radius float64
	Name   string
	NoFly  bool // hard keep-out
	Soft   bool // discouraged, not forbidden
}

// Point is a local alias kept distinct from geo.Point at the package
// boundary so callers don't need to import geo just to build an obstacle
// list; the two are structurally identical.
type Point = geo.Point

// SurveillanceMap is the rasterized area of interest. It is built once
// from an immutable obstacle list and a home point; afterward, only the
// coverage grid is mutated (by MarkCovered), never the kind grid or the
// obstacle list.
type SurveillanceMap struct {
	Width, Height  float64
	Resolution     float64
	ObstacleMargin float64
	NoFlyMargin    float64
	Home           Point

	obstacles []Circle // defensive deep copy of the caller's list; read-only after New
	kind      [][]Kind
	coverage  [][]float64
	cols      int
	rows      int
	freeCells int
}

// New builds a SurveillanceMap of size width x height at the given cell
// resolution, rasterizing every obstacle with its corresponding margin
// and marking the home cell as Start. The obstacle slice is deep-copied
// so the caller's slice remains theirs to mutate: once handed to the
// planner, the obstacle list is read-only (I/O boundary, not an
// in-place alias).
func New(width, height, resolution float64, obstacles []Circle, home Point, obstacleMargin, noFlyMargin float64) (*SurveillanceMap, error) {
	if width <= 0 || height <= 0 || resolution <= 0 {
		return nil, fmt.Errorf("gridmap: width, height, and resolution must be positive")
	}

	cols := int(math.Ceil(width / resolution))
	rows := int(math.Ceil(height / resolution))

	obsCopy, err := deep.Copy(obstacles)
	if err != nil {
		return nil, fmt.Errorf("gridmap: copying obstacle list: %w", err)
	}

	m := &SurveillanceMap{
		Width:          width,
		Height:         height,
		Resolution:     resolution,
		ObstacleMargin: obstacleMargin,
		NoFlyMargin:    noFlyMargin,
		Home:           home,
		obstacles:      obsCopy,
		cols:           cols,
		rows:           rows,
	}

	m.kind = make([][]Kind, rows)
	m.coverage = make([][]float64, rows)
	for r := 0; r < rows; r++ {
		m.kind[r] = make([]Kind, cols)
		m.coverage[r] = make([]float64, cols)
	}

	for _, o := range m.obstacles {
		m.rasterize(o)
	}

	hc, hr := m.cellIndex(home)
	if m.inBounds(hc, hr) {
		m.kind[hr][hc] = Start // the home cell is never overwritten after this
	}

	m.freeCells = 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if m.kind[r][c] == Free {
				m.freeCells++
			}
		}
	}

	return m, nil
}

// Obstacles returns a read-only view of the map's obstacle list.
func (m *SurveillanceMap) Obstacles() []Circle {
	return m.obstacles
}

func (m *SurveillanceMap) cellIndex(p Point) (col, row int) {
	col = int(math.Floor(p.X / m.Resolution))
	row = int(math.Floor(p.Y / m.Resolution))
	return
}

func (m *SurveillanceMap) cellCenter(col, row int) Point {
	return Point{
		X: (float64(col) + 0.5) * m.Resolution,
		Y: (float64(row) + 0.5) * m.Resolution,
	}
}

func (m *SurveillanceMap) inBounds(col, row int) bool {
	return col >= 0 && col < m.cols && row >= 0 && row < m.rows
}

// Cols and Rows expose the grid's dimensions for callers (e.g. the A*
// pathfinder) that need to walk it directly.
func (m *SurveillanceMap) Cols() int { return m.cols }
func (m *SurveillanceMap) Rows() int { return m.rows }

// CellIndex converts a point in map coordinates to grid column/row,
// exposed for callers (the A* pathfinder) that need to walk the grid
// directly rather than query by point.
func (m *SurveillanceMap) CellIndex(p Point) (col, row int) { return m.cellIndex(p) }

// CellCenter returns the center point of the cell at the given indices.
func (m *SurveillanceMap) CellCenter(col, row int) Point { return m.cellCenter(col, row) }

// InBounds reports whether the given cell indices lie within the grid.
func (m *SurveillanceMap) InBounds(col, row int) bool { return m.inBounds(col, row) }

// HardAt reports whether the cell at (col,row) is a hard obstruction
// (OBSTACLE or NO_FLY); SOFT_NO_FLY and FREE are not hard.
func (m *SurveillanceMap) HardAt(col, row int) bool {
	k := m.KindAtCell(col, row)
	return k == Obstacle || k == NoFly
}

// SoftAt reports whether the cell at (col,row) is SOFT_NO_FLY.
func (m *SurveillanceMap) SoftAt(col, row int) bool {
	return m.KindAtCell(col, row) == SoftNoFly
}

// KindAt returns the kind of the cell containing p, or Free if p is
// out of bounds (callers are expected to bounds-check separately when
// that distinction matters).
func (m *SurveillanceMap) KindAt(p Point) Kind {
	c, r := m.cellIndex(p)
	if !m.inBounds(c, r) {
		return Free
	}
	return m.kind[r][c]
}

// KindAtCell returns the kind of the cell at the given grid indices.
func (m *SurveillanceMap) KindAtCell(col, row int) Kind {
	if !m.inBounds(col, row) {
		return NoFly
	}
	return m.kind[row][col]
}

// rasterize inflates a circular obstacle by its margin into the kind
// grid: cells strictly inside the original radius take the hard kind;
// cells in the annulus [r, r+margin] take SoftNoFly unless already
// harder.
func (m *SurveillanceMap) rasterize(o Circle) {
	margin := m.ObstacleMargin
	hardKind := Obstacle
	if o.NoFly {
		margin = m.NoFlyMargin
		hardKind = NoFly
	}

	outer := o.Radius + margin
	minC, minR := m.cellIndex(Point{X: o.Center.X - outer, Y: o.Center.Y - outer})
	maxC, maxR := m.cellIndex(Point{X: o.Center.X + outer, Y: o.Center.Y + outer})

	for r := minR; r <= maxR; r++ {
		for c := minC; c <= maxC; c++ {
			if !m.inBounds(c, r) {
				continue
			}
			d := m.cellCenter(c, r).Distance(o.Center)

			var k Kind
			switch {
			case d <= o.Radius:
				k = hardKind
			case d <= outer:
				k = SoftNoFly
			default:
				continue
			}

			if k.precedence() > m.kind[r][c].precedence() {
				m.kind[r][c] = k
			}
		}
	}
}

// IsPointSafe reports whether p may be flown over: false if its cell is
// hard (OBSTACLE or NO_FLY); if includeSoft is true, SOFT_NO_FLY is also
// treated as unsafe. The START cell is always queryable as safe.
func (m *SurveillanceMap) IsPointSafe(p Point, includeSoft bool) bool {
	k := m.KindAt(p)
	switch k {
	case NoFly, Obstacle:
		return false
	case SoftNoFly:
		return !includeSoft
	default:
		return true
	}
}

// IsSegmentSafe samples the segment (a,b) every step meters (default
// Resolution/2) and reports whether every sample is safe, short-circuiting
// on the first unsafe sample.
func (m *SurveillanceMap) IsSegmentSafe(a, b Point, step float64) bool {
	if step <= 0 {
		step = m.Resolution / 2
	}
	d := a.Distance(b)
	if d == 0 {
		return m.IsPointSafe(a, false)
	}

	n := int(math.Ceil(d / step))
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		p := Point{X: geo.Lerp(t, a.X, b.X), Y: geo.Lerp(t, a.Y, b.Y)}
		if !m.IsPointSafe(p, false) {
			return false
		}
	}
	return true
}

// MarkCovered sets coverage = max(coverage, v) on every FREE cell
// within radius of center, and returns the count of cells that crossed
// the 0.5 threshold as a result of this call.
func (m *SurveillanceMap) MarkCovered(center Point, radius float64, v float64) int {
	minC, minR := m.cellIndex(Point{X: center.X - radius, Y: center.Y - radius})
	maxC, maxR := m.cellIndex(Point{X: center.X + radius, Y: center.Y + radius})

	newlyCovered := 0
	for r := minR; r <= maxR; r++ {
		for c := minC; c <= maxC; c++ {
			if !m.inBounds(c, r) || m.kind[r][c] != Free {
				continue
			}
			cell := m.cellCenter(c, r)
			if cell.Distance(center) > radius {
				continue
			}

			before := m.coverage[r][c]
			if v > before {
				m.coverage[r][c] = v
			}
			if before < 0.5 && m.coverage[r][c] >= 0.5 {
				newlyCovered++
			}
		}
	}
	return newlyCovered
}

// CoveragePercentage returns the ratio (as a percentage) of FREE cells
// with coverage >= 0.5 to total FREE cells; 100 if there are no FREE
// cells.
func (m *SurveillanceMap) CoveragePercentage() float64 {
	if m.freeCells == 0 {
		return 100
	}
	return 100 * float64(m.CoveredCellCount()) / float64(m.freeCells)
}

// FreeCellCount returns the total number of FREE cells in the grid.
func (m *SurveillanceMap) FreeCellCount() int {
	return m.freeCells
}

// CoveredCellCount returns the number of FREE cells currently at or
// above the 0.5 coverage threshold.
func (m *SurveillanceMap) CoveredCellCount() int {
	covered := 0
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if m.kind[r][c] == Free && m.coverage[r][c] >= 0.5 {
				covered++
			}
		}
	}
	return covered
}

// UncoveredFreeCells returns the center points of every FREE cell still
// below the 0.5 coverage threshold, in row-major (deterministic) order.
// This backs both the coverage planner's bounding-box sampling and its
// targeted sampling over the uncovered set.
func (m *SurveillanceMap) UncoveredFreeCells() []Point {
	var pts []Point
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if m.kind[r][c] == Free && m.coverage[r][c] < 0.5 {
				pts = append(pts, m.cellCenter(c, r))
			}
		}
	}
	return pts
}

// InBoundsPoint reports whether p lies within the map's rectangle.
func (m *SurveillanceMap) InBoundsPoint(p Point) bool {
	return p.X >= 0 && p.X <= m.Width && p.Y >= 0 && p.Y <= m.Height
}
