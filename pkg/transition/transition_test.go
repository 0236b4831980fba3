// pkg/transition/transition_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package transition

import (
	"math"
	"testing"

	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
	"github.com/windrose/uasplanner/pkg/loiter"
)

func mustLoiter(t *testing.T, center geo.Point, heading float64) loiter.Loiter {
	t.Helper()
	l, err := loiter.New(loiter.Params{
		Center: center, Radius: 30, Type: loiter.Standard,
		EntryHeading: heading, Revolutions: 1, Sense: loiter.CounterClockwise,
	})
	if err != nil {
		t.Fatalf("loiter.New: %v", err)
	}
	return l
}

func TestConnectDirectDubinsInOpenField(t *testing.T) {
	m, err := gridmap.New(500, 500, 5, nil, geo.Point{X: 0, Y: 0}, 0, 0)
	if err != nil {
		t.Fatalf("gridmap.New: %v", err)
	}
	c, err := NewConnector(m, Config{TurnRadius: 40, DilationCells: 2})
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}

	a := mustLoiter(t, geo.Point{X: 100, Y: 100}, 0)
	b := mustLoiter(t, geo.Point{X: 300, Y: 100}, 0)

	tr := c.Connect(a, b)
	if tr.Kind != DubinsKind {
		t.Errorf("kind = %v, want dubins in an open field", tr.Kind)
	}
	if len(tr.Waypoints) < 2 {
		t.Error("expected a multi-point waypoint list")
	}
}

func TestConnectFallsBackToAStarAroundObstacle(t *testing.T) {
	obs := []gridmap.Circle{{Center: geo.Point{X: 200, Y: 100}, Radius: 60, NoFly: true}}
	m, err := gridmap.New(500, 500, 5, obs, geo.Point{X: 0, Y: 0}, 5, 10)
	if err != nil {
		t.Fatalf("gridmap.New: %v", err)
	}
	c, err := NewConnector(m, Config{TurnRadius: 20, DilationCells: 2})
	if err != nil {
		t.Fatalf("NewConnector: %v", err)
	}

	// A straight path between these two would pass through the obstacle's
	// no-fly disk, so the connector must not return an unsafe dubins path.
	a := mustLoiter(t, geo.Point{X: 100, Y: 100}, 0)
	b := mustLoiter(t, geo.Point{X: 300, Y: 100}, math.Pi)

	tr := c.Connect(a, b)
	for _, p := range tr.Waypoints {
		if !m.IsPointSafe(p, false) {
			t.Errorf("transition waypoint %v is unsafe", p)
		}
	}
	if tr.Kind != AStarKind {
		t.Errorf("transition kind = %v, want %v", tr.Kind, AStarKind)
	}
}

func TestSequenceNearestNeighbor(t *testing.T) {
	a := mustLoiter(t, geo.Point{X: 0, Y: 0}, 0)
	b := mustLoiter(t, geo.Point{X: 100, Y: 0}, 0)
	c := mustLoiter(t, geo.Point{X: 10, Y: 0}, 0)

	order, surrogate := Sequence([]loiter.Loiter{a, b, c})
	if order[0].Center != a.Center {
		t.Errorf("expected tour to start at the fixed first loiter, got %v", order[0].Center)
	}
	// c is much closer to a's exit than b is, so it should come next.
	if order[1].Center != c.Center {
		t.Errorf("expected c before b, got order %v", []geo.Point{order[0].Center, order[1].Center, order[2].Center})
	}
	if surrogate <= 0 {
		t.Error("expected a positive surrogate distance")
	}
}

func TestSequenceSingleLoiter(t *testing.T) {
	a := mustLoiter(t, geo.Point{X: 0, Y: 0}, 0)
	order, surrogate := Sequence([]loiter.Loiter{a})
	if len(order) != 1 || surrogate != 0 {
		t.Errorf("single-loiter sequence should be a no-op, got %v %v", order, surrogate)
	}
}
