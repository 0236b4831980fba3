// pkg/fixture/cache_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package fixture

import (
	"path/filepath"
	"testing"

	"github.com/windrose/uasplanner/pkg/geo"
)

func TestRandomFieldCachedRoundTrip(t *testing.T) {
	p := RandomFieldParams{
		Width: 1000, Height: 700, Seed: 42, Count: 10,
		MinRadius: 20, MaxRadius: 60, NoFlyFraction: 0.5,
		Exclude: geo.Point{X: 80, Y: 350}, ExcludeRadius: 50,
	}
	path := filepath.Join(t.TempDir(), "field.msgpack")

	first, err := RandomFieldCached(path, p)
	if err != nil {
		t.Fatalf("RandomFieldCached (miss): %v", err)
	}

	second, err := RandomFieldCached(path, p)
	if err != nil {
		t.Fatalf("RandomFieldCached (hit): %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("cached field length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("obstacle %d differs between generated and cached: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRandomFieldCachedMissOnParamChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.msgpack")
	p := RandomFieldParams{Width: 500, Height: 500, Seed: 1, Count: 5, MinRadius: 10, MaxRadius: 20}
	if _, err := RandomFieldCached(path, p); err != nil {
		t.Fatalf("RandomFieldCached: %v", err)
	}

	changed := p
	changed.Seed = 2
	if _, ok, err := LoadCache(path, changed); err != nil {
		t.Fatalf("LoadCache: %v", err)
	} else if ok {
		t.Error("expected cache miss after param change, got a hit")
	}
}
