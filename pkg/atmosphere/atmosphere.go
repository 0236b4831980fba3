// pkg/atmosphere/atmosphere.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package atmosphere implements the International Standard Atmosphere
// troposphere model and derives the aircraft's performance envelope
// (cruise speed, stall speed, power draw, minimum turn radius) from it.
// Performance is a pure function of altitude over a set of baseline
// sea-level constants; there is no hidden state to invalidate between
// queries.
package atmosphere

import "math"

// ISA troposphere constants (SI units), valid for altitudes in [0, 11000] m.
const (
	T0    = 288.15  // K, sea-level standard temperature
	P0    = 101325  // Pa, sea-level standard pressure
	Lapse = 0.0065  // K/m, temperature lapse rate
	RGas  = 287.058 // J/(kg*K), specific gas constant for dry air
	G     = 9.80665 // m/s^2, standard gravity

	TropopauseAlt = 11000 // m, upper bound of validity for this model
)

// Rho0 is the sea-level standard density, derived from the ideal gas law
// rather than hardcoded, so DensityRatio is exactly 1.0 at h=0.
var Rho0 = P0 / (RGas * T0) // kg/m^3

// Baseline performance at sea level. Performance at altitude scales off
// of these per the sqrt(sigma) relations below.
type Baseline struct {
	CruiseSpeed float64 // m/s
	Power       float64 // W
	StallSpeed  float64 // m/s
	BankAngle   float64 // radians
	BatteryWh   float64 // Wh
}

// DefaultBaseline is the reference aircraft's sea-level performance:
// 19 m/s cruise, 133 W power draw, 12 m/s stall, 35 degrees bank,
// 370 Wh battery.
func DefaultBaseline() Baseline {
	return Baseline{
		CruiseSpeed: 19,
		Power:       133,
		StallSpeed:  12,
		BankAngle:   35 * math.Pi / 180,
		BatteryWh:   370,
	}
}

// State is the ISA troposphere state at a given altitude.
type State struct {
	Altitude     float64 // m, clamped to [0, TropopauseAlt]
	Temperature  float64 // K
	Pressure     float64 // Pa
	Density      float64 // kg/m^3
	DensityRatio float64 // sigma = rho/rho0
}

// ComputeState evaluates the closed-form ISA troposphere model at the
// given altitude, clamped to [0, TropopauseAlt].
func ComputeState(altitudeM float64) State {
	h := altitudeM
	if h < 0 {
		h = 0
	} else if h > TropopauseAlt {
		h = TropopauseAlt
	}

	temp := T0 - Lapse*h
	pressure := P0 * math.Pow(temp/T0, G/(Lapse*RGas))
	density := pressure / (RGas * temp)
	sigma := density / Rho0

	return State{
		Altitude:     h,
		Temperature:  temp,
		Pressure:     pressure,
		Density:      density,
		DensityRatio: sigma,
	}
}

// Performance is the derived flight envelope at a given altitude: a pure
// function of altitude and the baseline, with no hidden state.
type Performance struct {
	Altitude       float64
	State          State
	CruiseSpeed    float64 // m/s
	StallSpeed     float64 // m/s
	Power          float64 // W
	MinTurnRadius  float64 // m
	DescentPerLoop float64 // m of altitude lost per descent spiral loop
}

// Derive computes the performance envelope at altitudeM given baseline b.
//
//	cruise(h) = cruise0 / sqrt(sigma)
//	stall(h)  = stall0  / sqrt(sigma)
//	power(h)  = power0  / sqrt(sigma)     (P is proportional to rho*V^3)
//	min_radius(h) = cruise(h)^2 / (g * tan(bank))
//	descent_per_loop(h) = 3.0 + h/2000
func Derive(altitudeM float64, b Baseline) Performance {
	st := ComputeState(altitudeM)
	invSqrtSigma := 1 / math.Sqrt(st.DensityRatio)

	cruise := b.CruiseSpeed * invSqrtSigma
	stall := b.StallSpeed * invSqrtSigma
	power := b.Power * invSqrtSigma
	minRadius := (cruise * cruise) / (G * math.Tan(b.BankAngle))
	descentPerLoop := 3.0 + altitudeM/2000

	return Performance{
		Altitude:       altitudeM,
		State:          st,
		CruiseSpeed:    cruise,
		StallSpeed:     stall,
		Power:          power,
		MinTurnRadius:  minRadius,
		DescentPerLoop: descentPerLoop,
	}
}
