// pkg/loiter/loiter_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package loiter

import (
	"math"
	"testing"

	"github.com/windrose/uasplanner/pkg/geo"
)

func TestNewComputesGeometry(t *testing.T) {
	l, err := New(Params{
		Center:       geo.Point{X: 100, Y: 100},
		Radius:       80,
		Type:         Standard,
		EntryHeading: 0,
		Revolutions:  1,
		Sense:        CounterClockwise,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wantEntry := geo.Point{X: 180, Y: 100}
	if math.Abs(l.Entry.X-wantEntry.X) > 1e-9 || math.Abs(l.Entry.Y-wantEntry.Y) > 1e-9 {
		t.Errorf("entry = %v, want %v", l.Entry, wantEntry)
	}

	wantCirc := 2 * math.Pi * 80
	if math.Abs(l.Circumference-wantCirc) > 1e-9 {
		t.Errorf("circumference = %v, want %v", l.Circumference, wantCirc)
	}

	wantArea := math.Pi * 80 * 80
	if math.Abs(l.CoverageArea-wantArea) > 1e-6 {
		t.Errorf("coverage area = %v, want %v", l.CoverageArea, wantArea)
	}

	wantEnergy := wantCirc * 1.0 * 1.0
	if math.Abs(l.EnergyCostWh-wantEnergy) > 1e-6 {
		t.Errorf("energy cost = %v, want %v", l.EnergyCostWh, wantEnergy)
	}
}

func TestEnergyMultipliers(t *testing.T) {
	cases := []struct {
		typ  Type
		mult float64
	}{
		{Tight, 1.3},
		{Standard, 1.0},
		{Wide, 0.8},
		{Racetrack, 0.9},
	}
	for _, c := range cases {
		l, err := New(Params{Center: geo.Point{X: 0, Y: 0}, Radius: 10, Type: c.typ, Revolutions: 1, Sense: Clockwise})
		if err != nil {
			t.Fatalf("New(%v): %v", c.typ, err)
		}
		want := l.Circumference * c.mult
		if math.Abs(l.EnergyCostWh-want) > 1e-9 {
			t.Errorf("%v energy cost = %v, want %v", c.typ, l.EnergyCostWh, want)
		}
	}
}

func TestRacetrackAddsLengthToCircumferenceAndArea(t *testing.T) {
	l, err := New(Params{
		Center: geo.Point{X: 0, Y: 0}, Radius: 50, Type: Racetrack,
		Revolutions: 1, Sense: Clockwise, RacetrackLength: 100,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	base := 2 * math.Pi * 50
	if math.Abs(l.Circumference-(base+200)) > 1e-9 {
		t.Errorf("circumference = %v, want %v", l.Circumference, base+200)
	}
	wantArea := math.Pi*50*50 + 2*50*100
	if math.Abs(l.CoverageArea-wantArea) > 1e-6 {
		t.Errorf("coverage area = %v, want %v", l.CoverageArea, wantArea)
	}
}

func TestInvalidParams(t *testing.T) {
	if _, err := New(Params{Radius: -1, Revolutions: 1}); err == nil {
		t.Error("expected error for negative radius")
	}
	if _, err := New(Params{Radius: 10, Revolutions: 0}); err == nil {
		t.Error("expected error for zero revolutions")
	}
}

func TestEntryExitPoseHeadingUnrotated(t *testing.T) {
	l, err := New(Params{
		Center:       geo.Point{X: 0, Y: 0},
		Radius:       10,
		EntryHeading: 0.4,
		Revolutions:  0.75,
		Sense:        CounterClockwise,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := l.EntryPose().Heading; math.Abs(got-l.EntryHeading) > 1e-12 {
		t.Errorf("EntryPose().Heading = %v, want EntryHeading %v unrotated", got, l.EntryHeading)
	}
	if got := l.ExitPose().Heading; math.Abs(got-l.ExitHeading) > 1e-12 {
		t.Errorf("ExitPose().Heading = %v, want ExitHeading %v unrotated", got, l.ExitHeading)
	}
}

func TestExitHeadingSignFollowsSense(t *testing.T) {
	cw, err := New(Params{Center: geo.Point{X: 0, Y: 0}, Radius: 10, Revolutions: 0.5, Sense: Clockwise})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ccw, err := New(Params{Center: geo.Point{X: 0, Y: 0}, Radius: 10, Revolutions: 0.5, Sense: CounterClockwise})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Half a revolution lands both at the same point (+/- pi), but the
	// traversal directions differ, so the two loiters must not be
	// identical as a whole.
	if cw.Sense == ccw.Sense {
		t.Error("expected differing senses")
	}

	// A quarter revolution separates the two: counter-clockwise advances
	// the exit angle by +pi/2, clockwise by -pi/2.
	cwQ, err := New(Params{Center: geo.Point{X: 0, Y: 0}, Radius: 10, Revolutions: 0.25, Sense: Clockwise})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ccwQ, err := New(Params{Center: geo.Point{X: 0, Y: 0}, Radius: 10, Revolutions: 0.25, Sense: CounterClockwise})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if math.Abs(math.Sin(ccwQ.ExitHeading)-1) > 1e-9 || math.Abs(math.Sin(cwQ.ExitHeading)+1) > 1e-9 {
		t.Errorf("exit headings = ccw %v, cw %v; want +pi/2 and -pi/2", ccwQ.ExitHeading, cwQ.ExitHeading)
	}
}
