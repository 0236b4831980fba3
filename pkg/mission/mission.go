// pkg/mission/mission.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package mission is the top-level orchestration: it derives
// performance from an altitude (pkg/atmosphere), builds a surveillance
// grid (pkg/gridmap), selects and sequences loiters (pkg/coverage,
// pkg/transition), sums energy per phase (pkg/energy), appends a
// descent (pkg/descent), and returns a structured Mission.
// Configuration is validated up front, sub-objects are assembled in a
// fixed order, and non-fatal problems surface as status fields rather
// than aborting the run.
package mission

import (
	"errors"
	"fmt"
	"math"

	"github.com/brunoga/deep"
	"github.com/google/uuid"

	"github.com/windrose/uasplanner/pkg/atmosphere"
	"github.com/windrose/uasplanner/pkg/coverage"
	"github.com/windrose/uasplanner/pkg/descent"
	"github.com/windrose/uasplanner/pkg/energy"
	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
	"github.com/windrose/uasplanner/pkg/loiter"
	"github.com/windrose/uasplanner/pkg/transition"
	"github.com/windrose/uasplanner/pkg/util"
)

// Error taxonomy. InvalidConfiguration is surfaced immediately
// as a returned error; UnreachableGeometry, CoverageNotMet, and
// BudgetExceeded are non-fatal and recorded on the Mission's Status
// instead. Numeric is treated as a logic bug: Plan returns it wrapped
// rather than panicking, since a library should never crash its caller,
// but it indicates an arithmetic bug upstream, not a recoverable
// condition.
var (
	ErrInvalidConfiguration = errors.New("mission: invalid configuration")
	ErrNumeric              = errors.New("mission: NaN or overflow in geometric arithmetic")
)

// MapType distinguishes the serialized map.type field.
type MapType int

const (
	RandomMap MapType = iota
	LACMap
)

func (t MapType) String() string {
	if t == LACMap {
		return "lac"
	}
	return "random"
}

// MapConfig describes the area of interest and its obstacle field.
type MapConfig struct {
	Width, Height, Resolution   float64
	Type                        MapType
	Obstacles                   []gridmap.Circle
	Home                        geo.Point
	ObstacleMargin, NoFlyMargin float64
}

// Config is the full set of inputs to a planning run.
type Config struct {
	Map                   MapConfig
	AltitudeM             float64
	Baseline              atmosphere.Baseline
	LoiterType            loiter.Type
	LoiterRadius          float64
	MinTurnRadiusOverride float64
	OverlapFactor         float64
	CoverageThreshold     float64
	MaxLoiters            int
	DilationCells         int
	WaypointStep          float64
	BatteryCapacityWh     float64

	DescentTerrainElevationM float64
	DescentTerrainSlopeDeg   float64
	DescentWaypointsPerLoop  int
}

// validate accumulates every configuration violation via
// pkg/util.ErrorLogger before returning, rather than stopping at the
// first one, so a caller sees every field to fix in a single pass.
func (c Config) validate() error {
	var e util.ErrorLogger
	e.Push("Config")
	defer e.Pop()
	if c.Map.Width <= 0 || c.Map.Height <= 0 || c.Map.Resolution <= 0 {
		e.ErrorString("map dimensions and resolution must be positive")
	}
	if c.LoiterRadius <= 0 {
		e.ErrorString("loiter radius must be positive, got %v", c.LoiterRadius)
	}
	if c.CoverageThreshold < 0 || c.CoverageThreshold > 100 {
		e.ErrorString("coverage threshold must be in [0,100], got %v", c.CoverageThreshold)
	}
	if c.OverlapFactor < 0 || c.OverlapFactor >= 1 {
		e.ErrorString("overlap factor must be in [0,1), got %v", c.OverlapFactor)
	}
	if c.AltitudeM < 0 || c.AltitudeM > atmosphere.TropopauseAlt {
		e.ErrorString("altitude must be in [0,%v], got %v", atmosphere.TropopauseAlt, c.AltitudeM)
	}
	if c.MaxLoiters <= 0 {
		e.ErrorString("max loiters must be positive, got %v", c.MaxLoiters)
	}
	if e.HaveErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, e.String())
	}
	return nil
}

func (c Config) batteryCapacity() float64 {
	if c.BatteryCapacityWh > 0 {
		return c.BatteryCapacityWh
	}
	return c.Baseline.BatteryWh
}

// Status carries the planner's non-fatal findings: conditions
// that don't abort the run but that a caller needs to know about.
type Status struct {
	CoverageMet         bool
	AchievedCoveragePct float64
	WithinBudget        bool
	FallbackTransitions int // transitions that could not use a safe direct Dubins path
}

// Mission is the complete output of a planning run.
type Mission struct {
	RunID       uuid.UUID // log/cache correlation id, not part of the serialized document schema
	Map         MapConfig
	AltitudeM   float64
	Performance atmosphere.Performance
	Grid        *gridmap.SurveillanceMap
	Loiters     []loiter.Loiter
	Transitions []transition.Transition
	Energy      *energy.Budget
	Descent     *descent.Plan
	Status      Status
}

// Obstacles returns a defensive deep copy of the mission's obstacle
// list: every value handed out of a finished Mission is immutable from
// the caller's point of view, even though the grid keeps its own
// working copy internally.
func (m *Mission) Obstacles() []gridmap.Circle {
	cp, err := deep.Copy(m.Grid.Obstacles())
	if err != nil {
		// deep.Copy only fails on unsupported types; Circle is a plain
		// value struct, so this would indicate a logic bug, not bad input.
		return m.Grid.Obstacles()
	}
	return cp
}

// Plan runs the full pipeline: derive performance, build the grid,
// select and sequence loiters, connect them, sum energy, and append a
// descent from the final loiter.
func Plan(cfg Config) (*Mission, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	perf := atmosphere.Derive(cfg.AltitudeM, cfg.Baseline)
	if isBadFloat(perf.CruiseSpeed) || isBadFloat(perf.Power) || isBadFloat(perf.MinTurnRadius) {
		return nil, fmt.Errorf("%w: performance derivation produced a non-finite value", ErrNumeric)
	}

	grid, err := gridmap.New(cfg.Map.Width, cfg.Map.Height, cfg.Map.Resolution, cfg.Map.Obstacles, cfg.Map.Home, cfg.Map.ObstacleMargin, cfg.Map.NoFlyMargin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	turnRadius := math.Max(perf.MinTurnRadius, cfg.MinTurnRadiusOverride)

	covResult, err := coverage.Plan(grid, cfg.Map.Home, coverage.Config{
		LoiterType:        cfg.LoiterType,
		LoiterRadius:      cfg.LoiterRadius,
		Revolutions:       1,
		Sense:             loiter.CounterClockwise,
		OverlapFactor:     cfg.OverlapFactor,
		CoverageThreshold: cfg.CoverageThreshold,
		MaxLoiters:        cfg.MaxLoiters,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	sequenced, _ := transition.Sequence(covResult.Loiters)

	connector, err := transition.NewConnector(grid, transition.Config{
		TurnRadius:    turnRadius,
		WaypointStep:  cfg.WaypointStep,
		DilationCells: cfg.DilationCells,
	})
	if err != nil {
		return nil, fmt.Errorf("mission: %v", err)
	}

	var transitions []transition.Transition
	for i := 1; i < len(sequenced); i++ {
		transitions = append(transitions, connector.Connect(sequenced[i-1], sequenced[i]))
	}
	fallbacks := len(util.FilterSlice(transitions, func(t transition.Transition) bool {
		return t.Kind == transition.AStarKind
	}))

	budget := energy.NewBudget(cfg.batteryCapacity())
	budget.AppendClimb(perf, cfg.AltitudeM)
	for i, l := range sequenced {
		if i > 0 {
			budget.AppendTransit(perf, transitions[i-1].Length)
		}
		budget.AppendLoiter(perf, l.Radius, l.Revolutions)
	}
	if len(sequenced) > 0 {
		last := sequenced[len(sequenced)-1]
		rtbDistance := last.Exit.Distance(cfg.Map.Home)
		budget.AppendRTB(perf, rtbDistance)
	}

	var descentPlan *descent.Plan
	if len(sequenced) > 0 {
		last := sequenced[len(sequenced)-1]
		dp := descent.Build(descent.Params{
			Center:            last.Center,
			LoiterRadius:      last.Radius,
			StartAltitudeAGL:  cfg.AltitudeM,
			TerrainElevationM: cfg.DescentTerrainElevationM,
			TerrainSlopeDeg:   cfg.DescentTerrainSlopeDeg,
			WaypointsPerLoop:  cfg.DescentWaypointsPerLoop,
			EntryAngle:        last.ExitHeading,
			CounterClockwise:  last.Sense == loiter.CounterClockwise,
			Baseline:          cfg.Baseline,
		})
		descentEnergy := energy.NewBudget(budget.Battery())
		descentPhase := descentEnergy.AppendDescent(atmosphere.Derive(cfg.DescentTerrainElevationM, cfg.Baseline), last.Radius, dp.NLoops)
		budget.AppendPrecomputed(descentPhase)
		descentPlan = &dp
	}

	if isBadFloat(budget.TotalEnergyWh()) {
		return nil, fmt.Errorf("%w: total energy is not finite", ErrNumeric)
	}

	return &Mission{
		RunID:       uuid.New(),
		Map:         cfg.Map,
		AltitudeM:   cfg.AltitudeM,
		Performance: perf,
		Grid:        grid,
		Loiters:     sequenced,
		Transitions: transitions,
		Energy:      budget,
		Descent:     descentPlan,
		Status: Status{
			CoverageMet:         covResult.MetThreshold,
			AchievedCoveragePct: covResult.AchievedPct,
			WithinBudget:        budget.WithinBudget(),
			FallbackTransitions: fallbacks,
		},
	}, nil
}

func isBadFloat(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
