// pkg/astar/astar_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package astar

import (
	"testing"

	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
)

func TestFindPathAroundObstacle(t *testing.T) {
	obs := []gridmap.Circle{{Center: geo.Point{X: 50, Y: 50}, Radius: 20, NoFly: true}}
	m, err := gridmap.New(100, 100, 2, obs, geo.Point{X: 5, Y: 5}, 5, 5)
	if err != nil {
		t.Fatalf("gridmap.New: %v", err)
	}

	pf := New(m, 2)
	start := geo.Point{X: 10, Y: 50}
	goal := geo.Point{X: 90, Y: 50}
	path, ok := pf.FindPath(start, goal)
	if !ok {
		t.Fatal("expected a completed search, got degraded fallback")
	}
	if len(path) < 2 {
		t.Fatalf("path too short: %v", path)
	}

	// Property 8: every consecutive pair has a clear straight segment.
	for i := 1; i < len(path); i++ {
		if !pf.segmentClear(path[i-1], path[i]) {
			t.Errorf("segment %v -> %v is not clear", path[i-1], path[i])
		}
	}
}

func TestFindPathOpenField(t *testing.T) {
	m, err := gridmap.New(100, 100, 2, nil, geo.Point{X: 0, Y: 0}, 0, 0)
	if err != nil {
		t.Fatalf("gridmap.New: %v", err)
	}
	pf := New(m, 2)
	path, ok := pf.FindPath(geo.Point{X: 5, Y: 5}, geo.Point{X: 95, Y: 95})
	if !ok {
		t.Fatal("expected a completed search")
	}
	if len(path) != 2 {
		t.Errorf("open field path should shortcut to a direct pair, got %d points", len(path))
	}
}

func TestFindPathBlockedStartSubstitutesNearest(t *testing.T) {
	obs := []gridmap.Circle{{Center: geo.Point{X: 20, Y: 20}, Radius: 15, NoFly: true}}
	m, err := gridmap.New(100, 100, 2, obs, geo.Point{X: 0, Y: 0}, 3, 3)
	if err != nil {
		t.Fatalf("gridmap.New: %v", err)
	}
	pf := New(m, 2)
	// Start sits inside the blocked mask; FindPath should still produce a path.
	path, ok := pf.FindPath(geo.Point{X: 20, Y: 20}, geo.Point{X: 90, Y: 90})
	if !ok {
		t.Fatal("expected a completed search after start substitution")
	}
	if len(path) < 1 {
		t.Error("expected a non-empty path")
	}
}

func TestIsBlockedOutOfBounds(t *testing.T) {
	m, err := gridmap.New(20, 20, 2, nil, geo.Point{X: 0, Y: 0}, 0, 0)
	if err != nil {
		t.Fatalf("gridmap.New: %v", err)
	}
	pf := New(m, 1)
	if !pf.IsBlocked(-1, 0) || !pf.IsBlocked(0, -1) || !pf.IsBlocked(1000, 1000) {
		t.Error("out-of-bounds cells should be blocked")
	}
}
