// pkg/kmz/kmz_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package kmz

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/windrose/uasplanner/pkg/atmosphere"
	"github.com/windrose/uasplanner/pkg/fixture"
	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/loiter"
	"github.com/windrose/uasplanner/pkg/mission"
)

func testMission(t *testing.T) *mission.Mission {
	t.Helper()
	home := geo.Point{X: 80, Y: 350}
	obstacles, err := fixture.RandomField(fixture.RandomFieldParams{
		Width: 1000, Height: 700, Seed: 42, Count: 6,
		MinRadius: 20, MaxRadius: 50,
		Exclude: home, ExcludeRadius: 50,
	})
	if err != nil {
		t.Fatalf("fixture.RandomField: %v", err)
	}

	m, err := mission.Plan(mission.Config{
		Map: mission.MapConfig{
			Width: 1000, Height: 700, Resolution: 10,
			Obstacles: obstacles, Home: home,
			ObstacleMargin: 5, NoFlyMargin: 10,
		},
		AltitudeM:         120,
		Baseline:          atmosphere.DefaultBaseline(),
		LoiterType:        loiter.Standard,
		LoiterRadius:      80,
		OverlapFactor:     0.2,
		CoverageThreshold: 90,
		MaxLoiters:        20,
		DilationCells:     2,

		DescentWaypointsPerLoop: 24,
	})
	if err != nil {
		t.Fatalf("mission.Plan: %v", err)
	}
	return m
}

func TestWriteProducesValidZipWithKML(t *testing.T) {
	m := testMission(t)

	var buf bytes.Buffer
	origin := Origin{LatDeg: 37.0, LonDeg: -122.0}
	if err := Write(&buf, m, origin); err != nil {
		t.Fatalf("Write: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("resulting archive is not a valid zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "doc.kml" {
		t.Fatalf("expected a single doc.kml entry, got %v", zr.File)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("opening doc.kml: %v", err)
	}
	defer rc.Close()
	var kmlBuf bytes.Buffer
	kmlBuf.ReadFrom(rc)
	kml := kmlBuf.String()

	if !strings.Contains(kml, "<kml") || !strings.Contains(kml, "</kml>") {
		t.Error("doc.kml does not look like a KML document")
	}
	if !strings.Contains(kml, "Home") {
		t.Error("doc.kml is missing the Home placemark")
	}
	if strings.Count(kml, "<Placemark>") == 0 {
		t.Error("doc.kml has no placemarks")
	}
}

func TestWritePlacemarkEscapesName(t *testing.T) {
	var b bytes.Buffer
	writePlacemark(&b, `Ridge & Saddle <north>`, Origin{LatDeg: 37, LonDeg: -122}, []geo.Point{{X: 0, Y: 0}})
	kml := b.String()
	if strings.Contains(kml, "Ridge & Saddle <north>") {
		t.Error("placemark name was not escaped")
	}
	if !strings.Contains(kml, "Ridge &amp; Saddle &lt;north&gt;") {
		t.Errorf("expected escaped name in output, got %q", kml)
	}
}

func TestOriginToLatLon(t *testing.T) {
	origin := Origin{LatDeg: 0, LonDeg: 0, MetersPerDegree: 111000}
	lat, lon := origin.ToLatLon(geo.Point{X: 0, Y: 0})
	if lat != 0 || lon != 0 {
		t.Errorf("origin should map to (0,0), got (%v,%v)", lat, lon)
	}

	lat, lon = origin.ToLatLon(geo.Point{X: 111000, Y: 111000})
	if diff := lat - 1; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("expected lat ~1, got %v", lat)
	}
	if diff := lon - 1; diff < -1e-9 || diff > 1e-9 {
		t.Errorf("expected lon ~1 at equator, got %v", lon)
	}
}
