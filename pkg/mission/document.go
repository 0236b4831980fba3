// pkg/mission/document.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"github.com/iancoleman/orderedmap"

	"github.com/windrose/uasplanner/pkg/descent"
	"github.com/windrose/uasplanner/pkg/energy"
	"github.com/windrose/uasplanner/pkg/geo"
)

// Document is the serialized mission document: an ordered-map tree
// whose top-level and nested keys are emitted in a fixed, stable order
// regardless of Go's unordered map iteration. MarshalJSON is promoted
// from the embedded orderedmap.OrderedMap.
type Document struct {
	*orderedmap.OrderedMap
}

// ToDocument renders m as the normative mission document.
func (m *Mission) ToDocument() Document {
	doc := orderedmap.New()

	doc.Set("map", mapSection(m))
	doc.Set("home", pointMap(m.Map.Home))
	doc.Set("altitude_m", m.AltitudeM)
	doc.Set("performance", performanceSection(m))
	doc.Set("obstacles", obstaclesSection(m))
	doc.Set("loiters", loitersSection(m))
	doc.Set("waypoints", waypointsSection(m))
	doc.Set("energy", energySection(m))
	if m.Descent != nil {
		doc.Set("descent", descentSection(m.Descent))
	}
	doc.Set("stats", statsSection(m))

	return Document{doc}
}

func pointMap(p geo.Point) *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.Set("x", p.X)
	m.Set("y", p.Y)
	return m
}

func mapSection(m *Mission) *orderedmap.OrderedMap {
	s := orderedmap.New()
	s.Set("width", m.Map.Width)
	s.Set("height", m.Map.Height)
	s.Set("resolution", m.Map.Resolution)
	s.Set("type", m.Map.Type.String())
	return s
}

func performanceSection(m *Mission) *orderedmap.OrderedMap {
	p := m.Performance
	s := orderedmap.New()
	s.Set("cruise_speed_ms", p.CruiseSpeed)
	s.Set("power_draw_w", p.Power)
	s.Set("loiter_radius_m", loiterRadiusOrZero(m))
	s.Set("stall_speed_ms", p.StallSpeed)
	s.Set("air_density", p.State.Density)
	s.Set("density_ratio", p.State.DensityRatio)
	return s
}

func loiterRadiusOrZero(m *Mission) float64 {
	if len(m.Loiters) == 0 {
		return 0
	}
	return m.Loiters[0].Radius
}

func obstaclesSection(m *Mission) []*orderedmap.OrderedMap {
	obs := m.Obstacles()
	out := make([]*orderedmap.OrderedMap, len(obs))
	for i, o := range obs {
		s := orderedmap.New()
		s.Set("x", o.Center.X)
		s.Set("y", o.Center.Y)
		s.Set("radius", o.Radius)
		s.Set("name", o.Name)
		s.Set("is_no_fly", o.NoFly)
		out[i] = s
	}
	return out
}

func loitersSection(m *Mission) []*orderedmap.OrderedMap {
	out := make([]*orderedmap.OrderedMap, len(m.Loiters))
	for i, l := range m.Loiters {
		s := orderedmap.New()
		s.Set("x", l.Center.X)
		s.Set("y", l.Center.Y)
		s.Set("radius", l.Radius)
		s.Set("type", l.Type.String())
		s.Set("index", i+1)
		out[i] = s
	}
	return out
}

// waypointKind tags the three flavors of point in the flattened
// waypoints[] array: the launch/RTB point, a loiter center, and the
// final return leg.
const (
	waypointHome   = "home"
	waypointLoiter = "loiter"
	waypointReturn = "return"
)

func waypointsSection(m *Mission) []*orderedmap.OrderedMap {
	var out []*orderedmap.OrderedMap

	home := orderedmap.New()
	home.Set("x", m.Map.Home.X)
	home.Set("y", m.Map.Home.Y)
	home.Set("type", waypointHome)
	out = append(out, home)

	for i, l := range m.Loiters {
		s := orderedmap.New()
		s.Set("x", l.Center.X)
		s.Set("y", l.Center.Y)
		s.Set("type", waypointLoiter)
		s.Set("radius", l.Radius)
		s.Set("index", i+1)
		out = append(out, s)
	}

	if len(m.Loiters) > 0 {
		ret := orderedmap.New()
		ret.Set("x", m.Map.Home.X)
		ret.Set("y", m.Map.Home.Y)
		ret.Set("type", waypointReturn)
		out = append(out, ret)
	}

	return out
}

func energySection(m *Mission) *orderedmap.OrderedMap {
	b := m.Energy
	s := orderedmap.New()
	s.Set("battery_capacity_wh", b.CapacityWh)
	s.Set("reserve_wh", b.Reserve())
	s.Set("usable_wh", b.CapacityWh-b.Reserve())
	s.Set("total_energy_wh", b.TotalEnergyWh())
	s.Set("remaining_wh", b.Battery())
	s.Set("remaining_pct", 100*b.Battery()/b.CapacityWh)
	s.Set("total_distance_m", b.TotalDistance())
	s.Set("total_duration_min", b.TotalDuration()/60)

	byType := orderedmap.New()
	byKind := b.EnergyByKind()
	byType.Set("climb", byKind[energy.Climb])
	byType.Set("transit", byKind[energy.Transit])
	byType.Set("loiter", byKind[energy.Loiter])
	byType.Set("descent", byKind[energy.Descent])
	byType.Set("rtb", byKind[energy.RTB])
	s.Set("energy_by_type", byType)

	phases := make([]*orderedmap.OrderedMap, len(b.Phases()))
	for i, p := range b.Phases() {
		ps := orderedmap.New()
		ps.Set("kind", p.Kind.String())
		ps.Set("distance_m", p.Distance)
		ps.Set("duration_s", p.Duration)
		ps.Set("wh", p.Wh)
		ps.Set("battery_before_wh", p.BatteryBefore)
		ps.Set("battery_after_wh", p.BatteryAfter)
		phases[i] = ps
	}
	s.Set("phases", phases)

	return s
}

func descentSection(d *descent.Plan) *orderedmap.OrderedMap {
	s := orderedmap.New()
	s.Set("center", pointMap(d.Center))
	s.Set("radius_m", d.Radius)
	s.Set("start_altitude_m", d.StartAltitude)
	s.Set("terrain_elevation_m", d.TerrainElevation)
	s.Set("n_loops", d.NLoops)
	s.Set("total_distance_m", d.TotalDistance)
	s.Set("total_duration_s", d.TotalDuration)
	s.Set("energy_wh", d.EnergyWh)

	wps := make([]*orderedmap.OrderedMap, len(d.Waypoints))
	for i, w := range d.Waypoints {
		ws := orderedmap.New()
		ws.Set("x", w.Point.X)
		ws.Set("y", w.Point.Y)
		ws.Set("alt", w.Altitude)
		ws.Set("speed", w.Speed)
		ws.Set("bank", w.Bank)
		ws.Set("phase", w.Phase.String())
		ws.Set("loop", w.Loop)
		wps[i] = ws
	}
	s.Set("waypoints", wps)

	return s
}

func statsSection(m *Mission) *orderedmap.OrderedMap {
	s := orderedmap.New()
	s.Set("total_loiters", len(m.Loiters))
	s.Set("total_distance", m.Energy.TotalDistance())
	s.Set("total_energy_wh", m.Energy.TotalEnergyWh())
	s.Set("duration_min", m.Energy.TotalDuration()/60)
	s.Set("num_obstacles", len(m.Grid.Obstacles()))
	s.Set("coverage_pct", m.Status.AchievedCoveragePct)
	return s
}
