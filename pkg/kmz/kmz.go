// pkg/kmz/kmz.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package kmz packages a planned Mission as a KMZ file (a zipped KML
// document) for viewing in Google Earth or similar tools. It is an
// external collaborator, not part of the core planner: it consumes a
// finished mission.Mission and a caller-supplied geographic origin, and
// does no planning of its own. The local-to-geo projection — an
// equirectangular approximation valid over the planner's small
// (sub-10km) area of interest — lives entirely here; the core planner
// never knows about lat/lon.
package kmz

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/windrose/uasplanner/pkg/descent"
	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/mission"
	"github.com/windrose/uasplanner/pkg/util"
)

// DefaultMetersPerDegree is the default equirectangular scale factor.
// It's accurate for latitude only near the equator; ToLatLon corrects
// the longitude axis for the origin's latitude.
const DefaultMetersPerDegree = 111000.0

// Origin anchors the planner's local meter frame (south-west corner,
// x east / y north) to a geographic point, so the exporter can convert
// every Point in a Mission to lat/lon.
type Origin struct {
	LatDeg, LonDeg  float64
	MetersPerDegree float64 // 0 defaults to DefaultMetersPerDegree
}

func (o Origin) metersPerDegree() float64 {
	if o.MetersPerDegree > 0 {
		return o.MetersPerDegree
	}
	return DefaultMetersPerDegree
}

// ToLatLon converts a local planner Point to (lat, lon) degrees,
// treating the origin's meters-per-degree as constant for latitude and
// scaling longitude by cos(latitude) for the origin's latitude band.
func (o Origin) ToLatLon(p geo.Point) (lat, lon float64) {
	mpd := o.metersPerDegree()
	lat = o.LatDeg + p.Y/mpd
	lonScale := mpd * math.Cos(o.LatDeg*math.Pi/180)
	if lonScale == 0 {
		lonScale = mpd
	}
	lon = o.LonDeg + p.X/lonScale
	return lat, lon
}

// Write renders m as a KML document anchored at origin and packages it
// into a KMZ (zip) archive written to w. archive/zip is used directly
// rather than through a third-party wrapper: KMZ's container format is
// a plain, DEFLATE-compressed zip per the OGC KML spec, so there is no
// ecosystem substitute to reach for here — the compression concern
// worth a library is the fixture cache's (pkg/fixture, zstd), not this
// one, fixed-format container.
func Write(w io.Writer, m *mission.Mission, origin Origin) error {
	kml := buildKML(m, origin)

	zw := zip.NewWriter(w)
	f, err := zw.Create("doc.kml")
	if err != nil {
		return fmt.Errorf("kmz: create doc.kml entry: %w", err)
	}
	if _, err := f.Write([]byte(kml)); err != nil {
		return fmt.Errorf("kmz: write doc.kml: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("kmz: finalize archive: %w", err)
	}
	return nil
}

// WriteFile is a convenience wrapper around Write that creates path.
func WriteFile(path string, m *mission.Mission, origin Origin) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kmz: create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, m, origin)
}

func buildKML(m *mission.Mission, origin Origin) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<kml xmlns="http://www.opengis.net/kml/2.2"><Document>` + "\n")
	fmt.Fprintf(&b, "<name>UAS Mission %s</name>\n", m.RunID)

	writePlacemark(&b, "Home", origin, []geo.Point{m.Map.Home})

	for i, o := range m.Obstacles() {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("obstacle-%d", i+1)
		}
		writeCirclePlacemark(&b, name, origin, geo.Point{X: o.Center.X, Y: o.Center.Y}, o.Radius)
	}

	for i, l := range m.Loiters {
		name := fmt.Sprintf("Loiter %d (%s)", i+1, l.Type.String())
		writeCirclePlacemark(&b, name, origin, l.Center, l.Radius)
	}

	for i, t := range m.Transitions {
		name := fmt.Sprintf("Transition %d-%d (%s)", i+1, i+2, t.Kind.String())
		writePlacemark(&b, name, origin, t.Waypoints)
	}

	if m.Descent != nil {
		pts := util.MapSlice(m.Descent.Waypoints, func(w descent.Waypoint) geo.Point { return w.Point })
		writePlacemark(&b, "Descent", origin, pts)
	}

	b.WriteString("</Document></kml>\n")
	return b.String()
}

func writePlacemark(b *bytes.Buffer, name string, origin Origin, pts []geo.Point) {
	if len(pts) == 0 {
		return
	}
	fmt.Fprintf(b, "<Placemark><name>%s</name>", escapeXML(name))
	if len(pts) == 1 {
		lat, lon := origin.ToLatLon(pts[0])
		fmt.Fprintf(b, "<Point><coordinates>%f,%f,0</coordinates></Point>", lon, lat)
	} else {
		b.WriteString("<LineString><coordinates>")
		for _, p := range pts {
			lat, lon := origin.ToLatLon(p)
			fmt.Fprintf(b, "%f,%f,0 ", lon, lat)
		}
		b.WriteString("</coordinates></LineString>")
	}
	b.WriteString("</Placemark>\n")
}

// escapeXML escapes a free-text field (an obstacle or loiter name
// supplied by a library caller, not just this package's own generated
// names) for safe embedding in KML element text.
func escapeXML(s string) string {
	var b bytes.Buffer
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}

// writeCirclePlacemark approximates a circle as a 36-point closed
// polygon outline in the caller's local frame before projecting.
func writeCirclePlacemark(b *bytes.Buffer, name string, origin Origin, center geo.Point, radius float64) {
	const segments = 36
	pts := make([]geo.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float64(i) / segments
		pts = append(pts, geo.Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		})
	}
	writePlacemark(b, name, origin, pts)
}
