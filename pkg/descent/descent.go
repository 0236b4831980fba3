// pkg/descent/descent.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package descent implements the loiter-to-land pattern: a spiral of
// decreasing-altitude rings around the final loiter circle, followed by
// a straight approach, a flare, and a touchdown. Each phase is a pure
// function of the aircraft's state at phase entry.
package descent

import (
	"math"

	"github.com/windrose/uasplanner/pkg/atmosphere"
	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/util"
)

// ApproachAltitude is the AGL altitude at which the spiral hands off to
// the straight approach.
const ApproachAltitude = 15.0

// maxSpiralLoops is the hard safety cap on spiral rings.
const maxSpiralLoops = 50

// Phase tags a DescentWaypoint's segment of the pattern.
type Phase int

const (
	Spiral Phase = iota
	Approach
	Flare
	Touchdown
)

func (p Phase) String() string {
	switch p {
	case Spiral:
		return "spiral"
	case Approach:
		return "approach"
	case Flare:
		return "flare"
	case Touchdown:
		return "touchdown"
	default:
		return "unknown"
	}
}

// Waypoint is one point of the descent pattern.
type Waypoint struct {
	Point    geo.Point
	Altitude float64 // AGL meters
	Speed    float64 // m/s
	Bank     float64 // radians
	Phase    Phase
	Loop     int
}

// Params configure a descent plan.
type Params struct {
	Center            geo.Point
	LoiterRadius      float64
	StartAltitudeAGL  float64
	TerrainElevationM float64 // AMSL, used to derive performance
	TerrainSlopeDeg   float64 // default 0
	WaypointsPerLoop  int     // default 24
	EntryAngle        float64 // starting angle on the loiter circle, radians
	CounterClockwise  bool
	Baseline          atmosphere.Baseline
}

// Plan is the computed descent pattern with accumulated totals.
type Plan struct {
	Center           geo.Point
	Radius           float64
	StartAltitude    float64
	TerrainElevation float64
	NLoops           int
	TotalDistance    float64
	TotalDuration    float64 // seconds
	EnergyWh         float64
	Waypoints        []Waypoint
}

// Build computes the full descent plan for p. The approach heading is
// taken from the final spiral waypoint's tangent; terrain slope scales
// the descent rate but its orientation is not considered when choosing
// the approach direction.
func Build(p Params) Plan {
	waypointsPerLoop := p.WaypointsPerLoop
	if waypointsPerLoop <= 0 {
		waypointsPerLoop = 24
	}

	perf := atmosphere.Derive(p.TerrainElevationM, p.Baseline)
	approachSpeed := perf.StallSpeed * 1.3
	descentRate := perf.DescentPerLoop
	if p.TerrainSlopeDeg > 8 {
		descentRate *= 0.6
	}

	sense := util.Select(p.CounterClockwise, 1.0, -1.0)

	bank35 := 35 * math.Pi / 180

	var waypoints []Waypoint
	alt := p.StartAltitudeAGL
	loop := 0
	var lastHeading float64
	var lastPoint geo.Point

	for alt > ApproachAltitude && loop < maxSpiralLoops {
		nextAlt := alt - descentRate
		for i := 0; i < waypointsPerLoop; i++ {
			frac := float64(i) / float64(waypointsPerLoop)
			a := p.EntryAngle + sense*2*math.Pi*frac
			pt := geo.Point{
				X: p.Center.X + p.LoiterRadius*math.Cos(a),
				Y: p.Center.Y + p.LoiterRadius*math.Sin(a),
			}
			wpAlt := geo.Lerp(frac, alt, nextAlt)
			waypoints = append(waypoints, Waypoint{
				Point: pt, Altitude: wpAlt, Speed: approachSpeed,
				Bank: bank35, Phase: Spiral, Loop: loop,
			})
			lastHeading = geo.NormalizeAngle(a + sense*math.Pi/2)
			lastPoint = pt
		}
		alt = nextAlt
		loop++
	}
	// NLoops is ceil(start_altitude/descent_rate), the same formula
	// pkg/energy.Loops uses for the budget ledger, with the same
	// slope-adjusted rate the waypoint loop above used. The waypoint
	// while-loop's own counter would understate it: that loop hands off
	// to the approach at ApproachAltitude rather than descending to zero.
	nLoops := int(math.Ceil(p.StartAltitudeAGL / descentRate))
	if nLoops > maxSpiralLoops {
		nLoops = maxSpiralLoops
	}

	// APPROACH: 12 points along the final spiral heading, 0.8r horizontal.
	approachDist := 0.8 * p.LoiterRadius
	dirX, dirY := math.Cos(lastHeading), math.Sin(lastHeading)
	const approachPoints = 12
	for i := 1; i <= approachPoints; i++ {
		frac := float64(i) / approachPoints
		d := approachDist * frac
		pt := geo.Point{X: lastPoint.X + dirX*d, Y: lastPoint.Y + dirY*d}
		wpAlt := geo.Lerp(frac, ApproachAltitude, 3)
		speed := geo.Lerp(frac, approachSpeed, 0.85*approachSpeed)
		waypoints = append(waypoints, Waypoint{Point: pt, Altitude: wpAlt, Speed: speed, Bank: 0, Phase: Approach})
	}
	approachEnd := geo.Point{X: lastPoint.X + dirX*approachDist, Y: lastPoint.Y + dirY*approachDist}

	// FLARE: 6 points, 0.3r horizontal, altitude 3 -> 0, fixed speed.
	flareDist := 0.3 * p.LoiterRadius
	const flarePoints = 6
	flareSpeed := 0.75 * approachSpeed
	for i := 1; i <= flarePoints; i++ {
		frac := float64(i) / flarePoints
		d := flareDist * frac
		pt := geo.Point{X: approachEnd.X + dirX*d, Y: approachEnd.Y + dirY*d}
		wpAlt := geo.Lerp(frac, 3, 0)
		waypoints = append(waypoints, Waypoint{Point: pt, Altitude: wpAlt, Speed: flareSpeed, Bank: 0, Phase: Flare})
	}
	flareEnd := geo.Point{X: approachEnd.X + dirX*flareDist, Y: approachEnd.Y + dirY*flareDist}

	// TOUCHDOWN: single point.
	waypoints = append(waypoints, Waypoint{Point: flareEnd, Altitude: 0, Speed: 0, Bank: 0, Phase: Touchdown})

	totalDistance := 0.0
	duration := 0.0
	for i := 1; i < len(waypoints); i++ {
		leg := waypoints[i-1].Point.Distance(waypoints[i].Point)
		totalDistance += leg

		speed := waypoints[i].Speed
		if speed <= 0 {
			speed = perf.CruiseSpeed
		}
		duration += leg / speed
	}
	energy := 0.6 * perf.Power * duration / 3600

	return Plan{
		Center: p.Center, Radius: p.LoiterRadius, StartAltitude: p.StartAltitudeAGL,
		TerrainElevation: p.TerrainElevationM, NLoops: nLoops,
		TotalDistance: totalDistance, TotalDuration: duration, EnergyWh: energy,
		Waypoints: waypoints,
	}
}
