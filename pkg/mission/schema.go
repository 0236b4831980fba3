// pkg/mission/schema.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"github.com/windrose/uasplanner/pkg/util"
)

// The schema types below mirror the serialized mission document's key
// layout so an externally produced document can be typechecked against
// it before a consumer (KMZ packager, report tooling) trusts its shape.
// Fields absent from a document are not errors; keys the schema doesn't
// know are.

type documentSchema struct {
	Map         mapSchema         `json:"map"`
	Home        pointSchema       `json:"home"`
	AltitudeM   float64           `json:"altitude_m"`
	Performance performanceSchema `json:"performance"`
	Obstacles   []obstacleSchema  `json:"obstacles"`
	Loiters     []loiterSchema    `json:"loiters"`
	Waypoints   []waypointSchema  `json:"waypoints"`
	Energy      energySchema      `json:"energy"`
	Descent     descentSchema     `json:"descent"`
	Stats       statsSchema       `json:"stats"`
}

type mapSchema struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Resolution float64 `json:"resolution"`
	Type       string  `json:"type"`
}

type pointSchema struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type performanceSchema struct {
	CruiseSpeedMS float64 `json:"cruise_speed_ms"`
	PowerDrawW    float64 `json:"power_draw_w"`
	LoiterRadiusM float64 `json:"loiter_radius_m"`
	StallSpeedMS  float64 `json:"stall_speed_ms"`
	AirDensity    float64 `json:"air_density"`
	DensityRatio  float64 `json:"density_ratio"`
}

type obstacleSchema struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Name    string  `json:"name"`
	IsNoFly bool    `json:"is_no_fly"`
}

type loiterSchema struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Type   string  `json:"type"`
	Index  int     `json:"index"`
}

type waypointSchema struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Type   string  `json:"type"`
	Radius float64 `json:"radius"`
	Index  int     `json:"index"`
}

type energySchema struct {
	BatteryCapacityWh float64            `json:"battery_capacity_wh"`
	ReserveWh         float64            `json:"reserve_wh"`
	UsableWh          float64            `json:"usable_wh"`
	TotalEnergyWh     float64            `json:"total_energy_wh"`
	RemainingWh       float64            `json:"remaining_wh"`
	RemainingPct      float64            `json:"remaining_pct"`
	TotalDistanceM    float64            `json:"total_distance_m"`
	TotalDurationMin  float64            `json:"total_duration_min"`
	EnergyByType      energyByTypeSchema `json:"energy_by_type"`
	Phases            []phaseSchema      `json:"phases"`
}

type energyByTypeSchema struct {
	Climb   float64 `json:"climb"`
	Transit float64 `json:"transit"`
	Loiter  float64 `json:"loiter"`
	Descent float64 `json:"descent"`
	RTB     float64 `json:"rtb"`
}

type phaseSchema struct {
	Kind            string  `json:"kind"`
	DistanceM       float64 `json:"distance_m"`
	DurationS       float64 `json:"duration_s"`
	Wh              float64 `json:"wh"`
	BatteryBeforeWh float64 `json:"battery_before_wh"`
	BatteryAfterWh  float64 `json:"battery_after_wh"`
}

type descentSchema struct {
	Center            pointSchema             `json:"center"`
	RadiusM           float64                 `json:"radius_m"`
	StartAltitudeM    float64                 `json:"start_altitude_m"`
	TerrainElevationM float64                 `json:"terrain_elevation_m"`
	NLoops            int                     `json:"n_loops"`
	TotalDistanceM    float64                 `json:"total_distance_m"`
	TotalDurationS    float64                 `json:"total_duration_s"`
	EnergyWh          float64                 `json:"energy_wh"`
	Waypoints         []descentWaypointSchema `json:"waypoints"`
}

type descentWaypointSchema struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Alt   float64 `json:"alt"`
	Speed float64 `json:"speed"`
	Bank  float64 `json:"bank"`
	Phase string  `json:"phase"`
	Loop  int     `json:"loop"`
}

type statsSchema struct {
	TotalLoiters  int     `json:"total_loiters"`
	TotalDistance float64 `json:"total_distance"`
	TotalEnergyWh float64 `json:"total_energy_wh"`
	DurationMin   float64 `json:"duration_min"`
	NumObstacles  int     `json:"num_obstacles"`
	CoveragePct   float64 `json:"coverage_pct"`
}

// CheckDocument validates that contents is syntactically valid JSON and
// typechecks it against the mission document schema, accumulating every
// violation on e.
func CheckDocument(contents []byte, e *util.ErrorLogger) {
	util.CheckJSON[documentSchema](contents, e)
}
