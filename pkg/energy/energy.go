// pkg/energy/energy.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package energy implements the phase-by-phase Wh budget: climb,
// transit, loiter, descent, and return-to-base legs each draw power at
// a phase-specific fraction of cruise power, decrementing a running
// battery level that must not dip below a reserve fraction of capacity.
// The ledger is append-only and its entries are immutable once written.
package energy

import (
	"math"

	"github.com/windrose/uasplanner/pkg/atmosphere"
	"github.com/windrose/uasplanner/pkg/util"
)

// Reserve fraction and related budget constants.
const (
	ReserveFraction  = 0.22
	ClimbPowerFactor = 1.8
	ClimbRate        = 3.0 // m/s
	loiterPowerFrac  = 0.92
	descentPowerFrac = 0.60
	descentSpeedFrac = 0.85
)

// PhaseKind tags a PhaseEnergy entry's mission segment.
type PhaseKind int

const (
	Climb PhaseKind = iota
	Transit
	Loiter
	Descent
	RTB
)

func (k PhaseKind) String() string {
	switch k {
	case Climb:
		return "CLIMB"
	case Transit:
		return "TRANSIT"
	case Loiter:
		return "LOITER"
	case Descent:
		return "DESCENT"
	case RTB:
		return "RTB"
	default:
		return "UNKNOWN"
	}
}

// PhaseEnergy is one immutable, append-only ledger entry.
type PhaseEnergy struct {
	Kind                        PhaseKind
	Distance, Duration, Wh      float64
	BatteryBefore, BatteryAfter float64
}

// Budget is a running energy ledger. Battery level is monotonically
// non-increasing; every appended phase has Wh >= 0.
type Budget struct {
	CapacityWh float64
	battery    float64
	phases     []PhaseEnergy
}

// NewBudget starts a budget at full capacity.
func NewBudget(capacityWh float64) *Budget {
	return &Budget{CapacityWh: capacityWh, battery: capacityWh}
}

// Battery returns the current remaining battery level in Wh.
func (b *Budget) Battery() float64 { return b.battery }

// Reserve returns the capacity*ReserveFraction floor.
func (b *Budget) Reserve() float64 { return b.CapacityWh * ReserveFraction }

// Phases returns the ledger entries appended so far, in order.
func (b *Budget) Phases() []PhaseEnergy { return b.phases }

// WithinBudget reports whether the remaining battery still honors the
// reserve floor: battery_wh >= capacity * RESERVE_FRACTION.
func (b *Budget) WithinBudget() bool {
	return b.battery >= b.Reserve()
}

func (b *Budget) append(kind PhaseKind, distance, duration, power float64) PhaseEnergy {
	wh := power * duration / 3600
	if wh < 0 {
		wh = 0
	}
	before := b.battery
	b.battery -= wh
	p := PhaseEnergy{
		Kind:          kind,
		Distance:      distance,
		Duration:      duration,
		Wh:            wh,
		BatteryBefore: before,
		BatteryAfter:  b.battery,
	}
	b.phases = append(b.phases, p)
	return p
}

// AppendClimb appends a CLIMB phase to targetAltitude at perf's cruise
// speed and climb rate.
func (b *Budget) AppendClimb(perf atmosphere.Performance, targetAltitude float64) PhaseEnergy {
	duration := targetAltitude / ClimbRate
	distance := perf.CruiseSpeed * duration
	power := perf.Power * ClimbPowerFactor
	return b.append(Climb, distance, duration, power)
}

// AppendTransit appends a TRANSIT phase covering distance at perf's
// cruise speed and power.
func (b *Budget) AppendTransit(perf atmosphere.Performance, distance float64) PhaseEnergy {
	duration := distance / perf.CruiseSpeed
	return b.append(Transit, distance, duration, perf.Power)
}

// AppendLoiter appends a LOITER phase flying N revolutions of a circle
// of the given radius.
func (b *Budget) AppendLoiter(perf atmosphere.Performance, radius, revolutions float64) PhaseEnergy {
	distance := 2 * math.Pi * radius * revolutions
	duration := distance / perf.CruiseSpeed
	power := loiterPowerFrac * perf.Power
	return b.append(Loiter, distance, duration, power)
}

// Loops returns ceil(h / descent_per_loop), the number of spiral loops
// the descent planner will fly from the given altitude.
func Loops(altitude float64, perf atmosphere.Performance) int {
	if perf.DescentPerLoop <= 0 {
		return 0
	}
	return int(math.Ceil(altitude / perf.DescentPerLoop))
}

// AppendDescent appends a DESCENT phase of the given number of spiral
// loops around a circle of the given radius.
func (b *Budget) AppendDescent(perf atmosphere.Performance, radius float64, loops int) PhaseEnergy {
	distance := 2 * math.Pi * radius * float64(loops)
	duration := distance / (descentSpeedFrac * perf.CruiseSpeed)
	power := descentPowerFrac * perf.Power
	return b.append(Descent, distance, duration, power)
}

// AppendRTB appends an RTB phase covering distance at perf's cruise
// speed and power.
func (b *Budget) AppendRTB(perf atmosphere.Performance, distance float64) PhaseEnergy {
	duration := distance / perf.CruiseSpeed
	return b.append(RTB, distance, duration, perf.Power)
}

// CanAffordLoiter is a forward check: it reports whether appending one
// more loiter of the given radius and revolutions (at perf) would leave
// the battery at or above reserve, without mutating the budget.
func (b *Budget) CanAffordLoiter(perf atmosphere.Performance, radius, revolutions float64) bool {
	distance := 2 * math.Pi * radius * revolutions
	duration := distance / perf.CruiseSpeed
	power := loiterPowerFrac * perf.Power
	wh := power * duration / 3600
	return b.battery-wh >= b.Reserve()
}

// AppendPrecomputed appends a phase already computed against a
// different performance envelope (the descent planner derives
// performance at terrain elevation, not cruise altitude), decrementing
// this budget's battery by the phase's Wh and rewriting its
// before/after battery fields to this ledger's running level.
func (b *Budget) AppendPrecomputed(p PhaseEnergy) PhaseEnergy {
	before := b.battery
	b.battery -= p.Wh
	p.BatteryBefore = before
	p.BatteryAfter = b.battery
	b.phases = append(b.phases, p)
	return p
}

// TotalEnergyWh returns the sum of Wh across every appended phase.
func (b *Budget) TotalEnergyWh() float64 {
	return util.ReduceSlice(b.phases, func(p PhaseEnergy, s float64) float64 { return s + p.Wh }, 0)
}

// TotalDistance returns the sum of distance across every appended phase.
func (b *Budget) TotalDistance() float64 {
	return util.ReduceSlice(b.phases, func(p PhaseEnergy, s float64) float64 { return s + p.Distance }, 0)
}

// TotalDuration returns the sum of duration (seconds) across every
// appended phase.
func (b *Budget) TotalDuration() float64 {
	return util.ReduceSlice(b.phases, func(p PhaseEnergy, s float64) float64 { return s + p.Duration }, 0)
}

// EnergyByKind sums Wh per PhaseKind, for the serialized mission
// document's energy_by_type breakdown.
func (b *Budget) EnergyByKind() map[PhaseKind]float64 {
	m := map[PhaseKind]float64{}
	for _, p := range b.phases {
		m[p.Kind] += p.Wh
	}
	return m
}
