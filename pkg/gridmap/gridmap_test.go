// pkg/gridmap/gridmap_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gridmap

import "testing"

func TestRasterizationPrecedence(t *testing.T) {
	obs := []Circle{
		{Center: Point{X: 50, Y: 50}, Radius: 10, NoFly: false},
		{Center: Point{X: 50, Y: 50}, Radius: 5, NoFly: true}, // overlapping, harder kind must win
	}
	m, err := New(100, 100, 2, obs, Point{X: 0, Y: 0}, 3, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if k := m.KindAt(Point{X: 50, Y: 50}); k != NoFly {
		t.Errorf("center kind = %v, want NO_FLY", k)
	}
}

func TestStartCellNeverOverwritten(t *testing.T) {
	home := Point{X: 10, Y: 10}
	obs := []Circle{{Center: home, Radius: 50, NoFly: true}}
	m, err := New(100, 100, 2, obs, home, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if k := m.KindAt(home); k != Start {
		t.Errorf("home kind = %v, want START", k)
	}
}

func TestIsPointSafe(t *testing.T) {
	obs := []Circle{
		{Center: Point{X: 50, Y: 50}, Radius: 10, NoFly: true},
	}
	m, err := New(100, 100, 2, obs, Point{X: 0, Y: 0}, 5, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.IsPointSafe(Point{X: 50, Y: 50}, false) {
		t.Error("center of no-fly should be unsafe")
	}
	if !m.IsPointSafe(Point{X: 99, Y: 99}, false) {
		t.Error("far corner should be safe")
	}
	// Annulus cell should be SOFT_NO_FLY: safe unless includeSoft requested.
	edge := Point{X: 62, Y: 50}
	if !m.IsPointSafe(edge, false) {
		t.Error("soft no-fly cell should be safe when includeSoft=false")
	}
}

func TestIsSegmentSafe(t *testing.T) {
	obs := []Circle{{Center: Point{X: 50, Y: 50}, Radius: 15, NoFly: true}}
	m, err := New(100, 100, 1, obs, Point{X: 0, Y: 0}, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.IsSegmentSafe(Point{X: 0, Y: 50}, Point{X: 100, Y: 50}, 1) {
		t.Error("segment through obstacle center should be unsafe")
	}
	if !m.IsSegmentSafe(Point{X: 0, Y: 0}, Point{X: 0, Y: 99}, 1) {
		t.Error("segment far from obstacle should be safe")
	}
}

func TestMarkCoveredMonotone(t *testing.T) {
	m, err := New(40, 40, 2, nil, Point{X: 0, Y: 0}, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	center := Point{X: 20, Y: 20}
	m.MarkCovered(center, 10, 0.3)
	if m.CoveragePercentage() != 0 {
		t.Errorf("coverage at 0.3 should not cross the 0.5 threshold, got %v", m.CoveragePercentage())
	}
	before := m.CoveragePercentage()
	m.MarkCovered(center, 10, 0.9)
	after := m.CoveragePercentage()
	if after <= before {
		t.Errorf("coverage should increase after a higher-value mark: before=%v after=%v", before, after)
	}
	// A lower-value re-mark must never decrease coverage (max-combine).
	m.MarkCovered(center, 10, 0.1)
	if m.CoveragePercentage() != after {
		t.Errorf("coverage decreased after a lower mark: was %v now %v", after, m.CoveragePercentage())
	}
}

func TestCoveragePercentageNoFreeCells(t *testing.T) {
	obs := []Circle{{Center: Point{X: 10, Y: 10}, Radius: 100, NoFly: true}}
	m, err := New(20, 20, 2, obs, Point{X: 10, Y: 10}, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p := m.CoveragePercentage(); p != 100 {
		t.Errorf("coverage with no free cells = %v, want 100", p)
	}
}

func TestUncoveredFreeCellsExcludesObstaclesAndCovered(t *testing.T) {
	obs := []Circle{{Center: Point{X: 5, Y: 5}, Radius: 3, NoFly: true}}
	m, err := New(20, 20, 2, obs, Point{X: 0, Y: 0}, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	total := len(m.UncoveredFreeCells())
	m.MarkCovered(Point{X: 15, Y: 15}, 20, 1.0)
	remaining := len(m.UncoveredFreeCells())
	if remaining >= total {
		t.Errorf("marking coverage should shrink the uncovered set: before=%d after=%d", total, remaining)
	}
}

func TestObstacleListIsDefensiveCopy(t *testing.T) {
	obs := []Circle{{Center: Point{X: 1, Y: 1}, Radius: 1}}
	m, err := New(10, 10, 1, obs, Point{X: 0, Y: 0}, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	obs[0].Radius = 99
	if m.Obstacles()[0].Radius == 99 {
		t.Error("mutating the caller's slice after New should not affect the map")
	}
}
