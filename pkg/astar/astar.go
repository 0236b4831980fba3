// pkg/astar/astar.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package astar implements 8-connected A* search over a dilated
// obstacle mask, used when a straight-line or Dubins transition between
// two points is not obstacle-safe. The open set is a binary heap via
// container/heap; the graph is implicit in the grid, so neighbors are
// enumerated from offsets rather than an adjacency list.
package astar

import (
	"container/heap"
	"math"

	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
)

// MaxIterations caps the number of cells popped from the open set
// before giving up and degrading to a straight pair.
const MaxIterations = 50000

// cellKey identifies a grid cell by its column/row indices.
type cellKey struct{ col, row int }

// Pathfinder holds a dilated blocked mask built once from a
// SurveillanceMap and a dilation radius in cells.
type Pathfinder struct {
	grid     *gridmap.SurveillanceMap
	dilation int
	blocked  [][]bool
	cols     int
	rows     int
}

// New builds a Pathfinder over m, inflating every hard or soft cell by
// dilationCells using 8-neighbor dilation to produce the blocked mask.
// dilationCells is deliberately a per-call parameter rather than a
// package default: different call sites (a tight transition retry vs. a
// long-range reroute) legitimately want different safety margins.
func New(m *gridmap.SurveillanceMap, dilationCells int) *Pathfinder {
	cols, rows := m.Cols(), m.Rows()
	pf := &Pathfinder{grid: m, dilation: dilationCells, cols: cols, rows: rows}

	hard := make([][]bool, rows)
	for r := 0; r < rows; r++ {
		hard[r] = make([]bool, cols)
		for c := 0; c < cols; c++ {
			hard[r][c] = m.HardAt(c, r) || m.SoftAt(c, r)
		}
	}

	pf.blocked = make([][]bool, rows)
	for r := 0; r < rows; r++ {
		pf.blocked[r] = make([]bool, cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !hard[r][c] {
				continue
			}
			for dr := -dilationCells; dr <= dilationCells; dr++ {
				for dc := -dilationCells; dc <= dilationCells; dc++ {
					nr, nc := r+dr, c+dc
					if nr >= 0 && nr < rows && nc >= 0 && nc < cols {
						pf.blocked[nr][nc] = true
					}
				}
			}
		}
	}

	return pf
}

// IsBlocked reports whether the cell at (col,row) is blocked in the
// dilated mask.
func (pf *Pathfinder) IsBlocked(col, row int) bool {
	if col < 0 || col >= pf.cols || row < 0 || row >= pf.rows {
		return true
	}
	return pf.blocked[row][col]
}

// FindPath searches for a safe 8-connected path from start to goal and
// returns it as a shortcut-reduced polyline of points (in map
// coordinates), plus whether the search completed (as opposed to
// degrading to the straight-pair fallback).
func (pf *Pathfinder) FindPath(start, goal geo.Point) ([]geo.Point, bool) {
	sc, sr := pf.grid.CellIndex(start)
	gc, gr := pf.grid.CellIndex(goal)

	if pf.IsBlocked(sc, sr) {
		if nc, nr, ok := pf.nearestUnblocked(sc, sr); ok {
			sc, sr = nc, nr
		}
	}
	if pf.IsBlocked(gc, gr) {
		if nc, nr, ok := pf.nearestUnblocked(gc, gr); ok {
			gc, gr = nc, nr
		}
	}

	path, ok := pf.search(cellKey{sc, sr}, cellKey{gc, gr})
	if !ok {
		return []geo.Point{start, goal}, false
	}

	pts := make([]geo.Point, len(path))
	for i, k := range path {
		pts[i] = pf.grid.CellCenter(k.col, k.row)
	}
	return pf.shortcut(pts), true
}

// nearestUnblocked performs a breadth-first search outward from (col,row)
// for the nearest unblocked cell, substituting it when the start or goal
// itself lands in the dilated mask.
func (pf *Pathfinder) nearestUnblocked(col, row int) (int, int, bool) {
	type qitem struct{ col, row int }
	visited := map[cellKey]bool{{col, row}: true}
	queue := []qitem{{col, row}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !pf.IsBlocked(cur.col, cur.row) {
			return cur.col, cur.row, true
		}
		for _, d := range neighborOffsets {
			nc, nr := cur.col+d.dc, cur.row+d.dr
			if nc < 0 || nc >= pf.cols || nr < 0 || nr >= pf.rows {
				continue
			}
			k := cellKey{nc, nr}
			if visited[k] {
				continue
			}
			visited[k] = true
			queue = append(queue, qitem{nc, nr})
		}
	}
	return 0, 0, false
}

type offset struct {
	dc, dr int
	cost   float64
}

var neighborOffsets = []offset{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

// openItem is one entry in the A* priority queue.
type openItem struct {
	key   cellKey
	g, f  float64
	index int
}

type openQueue []*openItem

func (q openQueue) Len() int           { return len(q) }
func (q openQueue) Less(i, j int) bool { return q[i].f < q[j].f }
func (q openQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *openQueue) Push(x any) {
	item := x.(*openItem)
	item.index = len(*q)
	*q = append(*q, item)
}
func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func heuristic(a, b cellKey) float64 {
	dx, dy := float64(a.col-b.col), float64(a.row-b.row)
	return math.Hypot(dx, dy)
}

// search runs 8-connected A* from start to goal over the dilated mask.
// Returns the cell path (inclusive of both ends) and true on success; on
// iteration-cap exhaustion, returns false.
func (pf *Pathfinder) search(start, goal cellKey) ([]cellKey, bool) {
	if pf.IsBlocked(start.col, start.row) || pf.IsBlocked(goal.col, goal.row) {
		return nil, false
	}
	if start == goal {
		return []cellKey{start}, true
	}

	gScore := map[cellKey]float64{start: 0}
	cameFrom := map[cellKey]cellKey{}

	open := &openQueue{}
	heap.Push(open, &openItem{key: start, g: 0, f: heuristic(start, goal)})

	closed := map[cellKey]bool{}

	iterations := 0
	for open.Len() > 0 {
		iterations++
		if iterations > MaxIterations {
			return nil, false
		}

		cur := heap.Pop(open).(*openItem)
		if closed[cur.key] {
			continue
		}
		closed[cur.key] = true

		if cur.key == goal {
			return reconstructPath(cameFrom, cur.key), true
		}

		for _, d := range neighborOffsets {
			nk := cellKey{cur.key.col + d.dc, cur.key.row + d.dr}
			if pf.IsBlocked(nk.col, nk.row) || closed[nk] {
				continue
			}
			tentative := gScore[cur.key] + d.cost
			if g, seen := gScore[nk]; seen && tentative >= g {
				continue
			}
			gScore[nk] = tentative
			cameFrom[nk] = cur.key
			heap.Push(open, &openItem{key: nk, g: tentative, f: tentative + heuristic(nk, goal)})
		}
	}

	return nil, false
}

func reconstructPath(cameFrom map[cellKey]cellKey, goal cellKey) []cellKey {
	path := []cellKey{goal}
	cur := goal
	for {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse into start->goal order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// shortcut repeatedly advances from the current anchor to the farthest
// point whose straight-line sweep remains unblocked, emitting only those
// corners.
func (pf *Pathfinder) shortcut(pts []geo.Point) []geo.Point {
	if len(pts) <= 2 {
		return pts
	}

	out := []geo.Point{pts[0]}
	anchor := 0
	for anchor < len(pts)-1 {
		farthest := anchor + 1
		for j := anchor + 2; j < len(pts); j++ {
			if pf.segmentClear(pts[anchor], pts[j]) {
				farthest = j
			}
		}
		out = append(out, pts[farthest])
		anchor = farthest
	}
	return out
}

// segmentClear walks the cell sweep between a and b at roughly
// half-resolution steps and reports whether every sampled cell is
// unblocked.
func (pf *Pathfinder) segmentClear(a, b geo.Point) bool {
	d := a.Distance(b)
	if d == 0 {
		c, r := pf.grid.CellIndex(a)
		return !pf.IsBlocked(c, r)
	}
	step := pf.grid.Resolution / 2
	n := int(math.Ceil(d / step))
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		p := geo.Point{X: geo.Lerp(t, a.X, b.X), Y: geo.Lerp(t, a.Y, b.Y)}
		c, r := pf.grid.CellIndex(p)
		if pf.IsBlocked(c, r) {
			return false
		}
	}
	return true
}
