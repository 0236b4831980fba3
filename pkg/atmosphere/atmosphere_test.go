// pkg/atmosphere/atmosphere_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package atmosphere

import (
	"math"
	"testing"
)

func TestISAConsistencySeaLevel(t *testing.T) {
	st := ComputeState(0)
	if math.Abs(st.DensityRatio-1.0) > 1e-6 {
		t.Errorf("sigma at sea level = %v, want 1.0 +/- 1e-6", st.DensityRatio)
	}
}

func TestISAConsistency4000m(t *testing.T) {
	st := ComputeState(4000)
	if math.Abs(st.DensityRatio-0.669) > 1e-3 {
		t.Errorf("sigma at 4000m = %v, want 0.669 +/- 1e-3", st.DensityRatio)
	}
}

// ISA troposphere state and derived performance at 4000m.
func TestPerformanceAt4000m(t *testing.T) {
	p := Derive(4000, DefaultBaseline())

	if math.Abs(p.State.Density-0.819) > 0.01 {
		t.Errorf("density = %v, want ~0.819", p.State.Density)
	}
	if math.Abs(p.CruiseSpeed-23.2) > 0.2 {
		t.Errorf("cruise speed = %v, want ~23.2", p.CruiseSpeed)
	}
	if math.Abs(p.Power-162.4) > 2 {
		t.Errorf("power = %v, want ~162.4", p.Power)
	}
	if math.Abs(p.MinTurnRadius-78.4) > 1 {
		t.Errorf("min radius = %v, want ~78.4", p.MinTurnRadius)
	}
}

func TestAltitudeClamped(t *testing.T) {
	below := ComputeState(-500)
	atZero := ComputeState(0)
	if below != atZero {
		t.Errorf("negative altitude should clamp to 0")
	}

	above := ComputeState(20000)
	atTropopause := ComputeState(TropopauseAlt)
	if above.Temperature != atTropopause.Temperature {
		t.Errorf("altitude above tropopause should clamp to %v", TropopauseAlt)
	}
}

func TestPerformanceIsPure(t *testing.T) {
	b := DefaultBaseline()
	a := Derive(2000, b)
	c := Derive(2000, b)
	if a != c {
		t.Errorf("Derive should be a pure function of its inputs")
	}
}
