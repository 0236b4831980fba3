// cmd/planmission/main.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// planmission is a thin batch CLI: it wires pkg/fixture's obstacle
// generators into pkg/mission.Plan and writes the resulting mission
// document as JSON, optionally alongside a KMZ export.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/windrose/uasplanner/pkg/atmosphere"
	"github.com/windrose/uasplanner/pkg/fixture"
	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
	"github.com/windrose/uasplanner/pkg/kmz"
	applog "github.com/windrose/uasplanner/pkg/log"
	"github.com/windrose/uasplanner/pkg/loiter"
	"github.com/windrose/uasplanner/pkg/mission"
	"github.com/windrose/uasplanner/pkg/util"
)

var (
	width             = flag.Float64("width", 1000, "map width in meters")
	height            = flag.Float64("height", 700, "map height in meters")
	resolution        = flag.Float64("resolution", 10, "grid cell size in meters")
	homeX             = flag.Float64("home-x", 80, "home point x in meters")
	homeY             = flag.Float64("home-y", 350, "home point y in meters")
	altitude          = flag.Float64("altitude", 120, "cruise altitude AGL in meters")
	loiterRadius      = flag.Float64("loiter-radius", 80, "nominal loiter radius in meters")
	overlap           = flag.Float64("overlap", 0.3, "candidate grid overlap factor, [0,1)")
	coverageThreshold = flag.Float64("coverage-threshold", 95, "target coverage percentage, [0,100]")
	maxLoiters        = flag.Int("max-loiters", 30, "maximum number of loiters to select")
	mapType           = flag.String("map-type", "random", "obstacle field type: random or lac")
	obstacleCount     = flag.Int("obstacles", 10, "number of randomly generated obstacles")
	seed              = flag.Uint64("seed", 42, "random obstacle field seed")
	cachePath         = flag.String("cache", "", "optional path to cache/replay the generated obstacle field (msgpack+zstd)")
	checkPath         = flag.String("check", "", "validate an existing mission document against the schema and exit")
	outputJSON        = flag.String("out", "mission.json", "output path for the mission document")
	outputKMZ         = flag.String("kmz", "", "optional output path for a KMZ geographic export")
	originLat         = flag.Float64("origin-lat", 37.0, "KMZ export origin latitude, degrees")
	originLon         = flag.Float64("origin-lon", -122.0, "KMZ export origin longitude, degrees")
)

func main() {
	flag.Parse()
	lg := applog.New("info", "")

	if *checkPath != "" {
		contents, err := os.ReadFile(*checkPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "planmission: %v\n", err)
			os.Exit(1)
		}
		var e util.ErrorLogger
		mission.CheckDocument(contents, &e)
		if e.HaveErrors() {
			e.PrintErrors(lg)
			os.Exit(1)
		}
		fmt.Printf("%s: ok\n", *checkPath)
		return
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		lg.Warnf("unable to read host memory stats: %v", err)
	} else {
		lg.Infof("host memory: %d MB total, %d MB available before allocating surveillance grid",
			vm.Total/(1024*1024), vm.Available/(1024*1024))
	}

	home := geo.Point{X: *homeX, Y: *homeY}

	var obstacles []gridmap.Circle
	missionMapType := mission.RandomMap
	switch *mapType {
	case "lac":
		missionMapType = mission.LACMap
		obstacles = fixture.DefaultLACRing(*width, *height, *obstacleCount, min(*width, *height)/3, 50)
	case "random":
		fieldParams := fixture.RandomFieldParams{
			Width: *width, Height: *height, Seed: *seed, Count: *obstacleCount,
			MinRadius: 20, MaxRadius: 60, NoFlyFraction: 0.3,
			Exclude: home, ExcludeRadius: *loiterRadius,
		}
		var err error
		if *cachePath != "" {
			obstacles, err = fixture.RandomFieldCached(*cachePath, fieldParams)
		} else {
			obstacles, err = fixture.RandomField(fieldParams)
		}
		if err != nil {
			lg.Errorf("generating obstacle field: %v", err)
			fmt.Fprintf(os.Stderr, "planmission: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "planmission: unknown map type %q\n", *mapType)
		os.Exit(1)
	}

	cfg := mission.Config{
		Map: mission.MapConfig{
			Width: *width, Height: *height, Resolution: *resolution,
			Type:      missionMapType,
			Obstacles: obstacles, Home: home,
			ObstacleMargin: 5, NoFlyMargin: 10,
		},
		AltitudeM:               *altitude,
		Baseline:                atmosphere.DefaultBaseline(),
		LoiterType:              loiter.Standard,
		LoiterRadius:            *loiterRadius,
		OverlapFactor:           *overlap,
		CoverageThreshold:       *coverageThreshold,
		MaxLoiters:              *maxLoiters,
		DilationCells:           2,
		DescentWaypointsPerLoop: 24,
	}

	m, err := mission.Plan(cfg)
	if err != nil {
		lg.Errorf("planning mission: %v", err)
		fmt.Fprintf(os.Stderr, "planmission: %v\n", err)
		os.Exit(1)
	}

	if !m.Status.CoverageMet {
		lg.Warnf("coverage threshold not met: achieved %.1f%%", m.Status.AchievedCoveragePct)
	}
	if !m.Status.WithinBudget {
		lg.Warnf("mission exceeds the energy reserve budget")
	}

	doc, err := json.MarshalIndent(m.ToDocument(), "", "  ")
	if err != nil {
		lg.Errorf("encoding mission document: %v", err)
		fmt.Fprintf(os.Stderr, "planmission: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputJSON, doc, 0o644); err != nil {
		lg.Errorf("writing %s: %v", *outputJSON, err)
		fmt.Fprintf(os.Stderr, "planmission: %v\n", err)
		os.Exit(1)
	}
	lg.Infof("wrote mission document to %s (%d loiters, %.1f%% coverage)", *outputJSON, len(m.Loiters), m.Status.AchievedCoveragePct)

	if *outputKMZ != "" {
		origin := kmz.Origin{LatDeg: *originLat, LonDeg: *originLon}
		if err := kmz.WriteFile(*outputKMZ, m, origin); err != nil {
			lg.Errorf("writing KMZ: %v", err)
			fmt.Fprintf(os.Stderr, "planmission: %v\n", err)
			os.Exit(1)
		}
		lg.Infof("wrote KMZ export to %s", *outputKMZ)
	}
}
