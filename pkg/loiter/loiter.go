// pkg/loiter/loiter.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package loiter models a station where the aircraft flies a closed
// curve for observation: a circle (TIGHT/STANDARD/WIDE) or a racetrack.
// Loiters are immutable value objects, constructed once with every
// derived quantity computed at construction time rather than lazily
// cached and mutated in place.
package loiter

import (
	"fmt"
	"math"

	"github.com/windrose/uasplanner/pkg/geo"
)

// Type is the loiter's station shape.
type Type int

const (
	Tight Type = iota
	Standard
	Wide
	Racetrack
)

func (t Type) String() string {
	switch t {
	case Tight:
		return "TIGHT"
	case Standard:
		return "STANDARD"
	case Wide:
		return "WIDE"
	case Racetrack:
		return "RACETRACK"
	default:
		return "UNKNOWN"
	}
}

// energyMultiplier scales a loiter's circumference-based energy cost by
// station type.
func (t Type) energyMultiplier() float64 {
	switch t {
	case Tight:
		return 1.3
	case Standard:
		return 1.0
	case Wide:
		return 0.8
	case Racetrack:
		return 0.9
	default:
		return 1.0
	}
}

// Sense is the loiter's rotation direction.
type Sense int

const (
	Clockwise Sense = iota
	CounterClockwise
)

func (s Sense) signed() float64 {
	if s == Clockwise {
		return -1
	}
	return 1
}

// Params are the inputs needed to construct a Loiter.
type Params struct {
	Center       geo.Point
	Radius       float64
	Type         Type
	EntryHeading float64 // radians
	Revolutions  float64 // default range 0.5-1.0
	Sense        Sense
	AltitudeAGL  float64
	// RacetrackLength and RacetrackOrientation apply only when Type == Racetrack.
	RacetrackLength      float64
	RacetrackOrientation float64
}

// Loiter is an immutable station with every derived quantity computed
// once at construction.
type Loiter struct {
	Center       geo.Point
	Radius       float64
	Type         Type
	EntryHeading float64
	ExitHeading  float64
	Revolutions  float64
	Sense        Sense
	AltitudeAGL  float64

	RacetrackLength      float64
	RacetrackOrientation float64

	Entry         geo.Point
	Exit          geo.Point
	Circumference float64
	CoverageArea  float64
	EnergyCostWh  float64
}

// New builds a Loiter from p, validating radius and revolutions and
// computing entry/exit geometry and cost figures once.
func New(p Params) (Loiter, error) {
	if p.Radius <= 0 {
		return Loiter{}, fmt.Errorf("loiter: radius must be positive, got %v", p.Radius)
	}
	if p.Revolutions <= 0 {
		return Loiter{}, fmt.Errorf("loiter: revolutions must be positive, got %v", p.Revolutions)
	}

	exitHeading := geo.NormalizeAngle(p.EntryHeading + p.Sense.signed()*2*math.Pi*p.Revolutions)

	entry := geo.Point{
		X: p.Center.X + p.Radius*math.Cos(p.EntryHeading),
		Y: p.Center.Y + p.Radius*math.Sin(p.EntryHeading),
	}
	exit := geo.Point{
		X: p.Center.X + p.Radius*math.Cos(exitHeading),
		Y: p.Center.Y + p.Radius*math.Sin(exitHeading),
	}

	circumference := 2 * math.Pi * p.Radius
	coverageArea := math.Pi * p.Radius * p.Radius
	if p.Type == Racetrack {
		circumference += 2 * p.RacetrackLength
		coverageArea += 2 * p.Radius * p.RacetrackLength
	}

	energyCost := circumference * p.Revolutions * p.Type.energyMultiplier()

	return Loiter{
		Center:               p.Center,
		Radius:               p.Radius,
		Type:                 p.Type,
		EntryHeading:         p.EntryHeading,
		ExitHeading:          exitHeading,
		Revolutions:          p.Revolutions,
		Sense:                p.Sense,
		AltitudeAGL:          p.AltitudeAGL,
		RacetrackLength:      p.RacetrackLength,
		RacetrackOrientation: p.RacetrackOrientation,
		Entry:                entry,
		Exit:                 exit,
		Circumference:        circumference,
		CoverageArea:         coverageArea,
		EnergyCostWh:         energyCost,
	}, nil
}

// EntryPose and ExitPose return the loiter's entry/exit points paired
// with EntryHeading/ExitHeading as the pose heading, unrotated. The
// stored heading scalar is handed to the Dubins connector as-is, with
// no additional tangent offset.
func (l Loiter) EntryPose() geo.Pose {
	return geo.Pose{Point: l.Entry, Heading: l.EntryHeading}
}

func (l Loiter) ExitPose() geo.Pose {
	return geo.Pose{Point: l.Exit, Heading: l.ExitHeading}
}
