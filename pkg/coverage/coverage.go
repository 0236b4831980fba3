// pkg/coverage/coverage.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package coverage implements the greedy weighted set-cover loiter
// selector: the algorithmic heart of the planner. Each iteration
// generates candidate loiter centers, scores them concurrently, and
// picks the highest-scoring one deterministically. The concurrent
// scoring pass is bounded to GOMAXPROCS workers and reduced into an
// index-ordered slice before the sequential argmax walk, so identical
// inputs give identical outputs regardless of scheduling.
package coverage

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/windrose/uasplanner/pkg/geo"
	"github.com/windrose/uasplanner/pkg/gridmap"
	"github.com/windrose/uasplanner/pkg/loiter"
	"github.com/windrose/uasplanner/pkg/rand"
)

// targetedSampleThreshold and maxTargetedCandidates bound the targeted
// sampling strategy: it only kicks in once the uncovered set
// is small, and draws at most this many candidates directly from it.
const (
	targetedSampleThreshold = 1000
	maxTargetedCandidates   = 50
)

// Config holds the planner parameters an external caller supplies.
type Config struct {
	LoiterType        loiter.Type
	LoiterRadius      float64
	Revolutions       float64 // default 1.0
	Sense             loiter.Sense
	OverlapFactor     float64 // [0,1)
	CoverageThreshold float64 // [0,100]
	MaxLoiters        int
}

func (c Config) validate() error {
	if c.LoiterRadius <= 0 {
		return fmt.Errorf("coverage: loiter radius must be positive, got %v", c.LoiterRadius)
	}
	if c.OverlapFactor < 0 || c.OverlapFactor >= 1 {
		return fmt.Errorf("coverage: overlap factor must be in [0,1), got %v", c.OverlapFactor)
	}
	if c.CoverageThreshold < 0 || c.CoverageThreshold > 100 {
		return fmt.Errorf("coverage: coverage threshold must be in [0,100], got %v", c.CoverageThreshold)
	}
	if c.MaxLoiters <= 0 {
		return fmt.Errorf("coverage: max loiters must be positive, got %v", c.MaxLoiters)
	}
	return nil
}

func (c Config) revolutions() float64 {
	if c.Revolutions <= 0 {
		return 1.0
	}
	return c.Revolutions
}

// Result is the planner's output: the chosen loiter sequence (in
// selection order, not yet NN-resequenced — that is pkg/transition's
// job) and the coverage achieved.
type Result struct {
	Loiters      []loiter.Loiter
	AchievedPct  float64
	MetThreshold bool
}

// candidateResult is one candidate's validation and scoring outcome,
// stored at a fixed slice index so the reduction step is independent of
// goroutine completion order, so identical inputs give identical outputs.
type candidateResult struct {
	valid                      bool
	center                     geo.Point
	coverage                   int
	transitionCost, loiterCost float64
	score                      float64
	trial                      loiter.Loiter
}

// Plan runs the greedy set-cover loop against m, starting from home with
// heading 0, until max loiters is reached, the coverage threshold is
// met, or no candidate scores positively.
func Plan(m *gridmap.SurveillanceMap, home geo.Point, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	currentPose := geo.Pose{Point: home, Heading: 0}
	var chosen []loiter.Loiter

	for len(chosen) < cfg.MaxLoiters && m.CoveragePercentage() < cfg.CoverageThreshold {
		uncovered := m.UncoveredFreeCells()
		if len(uncovered) == 0 {
			break
		}

		candidates := generateCandidates(uncovered, cfg)
		if len(candidates) == 0 {
			break
		}

		results, err := scoreCandidates(candidates, uncovered, currentPose, m, cfg)
		if err != nil {
			return Result{}, err
		}

		bestIdx := selectBest(results)
		if bestIdx < 0 {
			break
		}

		best := results[bestIdx]
		chosen = append(chosen, best.trial)
		m.MarkCovered(best.trial.Center, best.trial.Radius, 1.0)
		currentPose = best.trial.ExitPose()
	}

	pct := m.CoveragePercentage()
	return Result{
		Loiters:      chosen,
		AchievedPct:  pct,
		MetThreshold: pct >= cfg.CoverageThreshold,
	}, nil
}

// generateCandidates combines regular-grid sampling over the uncovered
// set's bounding box with targeted sampling directly from the uncovered
// cell set when it is small, in a fixed, deterministic order. The grid
// is recomputed from the uncovered cells each iteration, starting half
// a loiter radius inside their bounding box, so it tracks the shrinking
// frontier as coverage accumulates.
func generateCandidates(uncovered []geo.Point, cfg Config) []geo.Point {
	step := cfg.LoiterRadius * (2 - cfg.OverlapFactor)
	if step <= 0 {
		step = cfg.LoiterRadius
	}

	var candidates []geo.Point
	box := geo.Extent2DFromPoints(uncovered)
	for y := box.P0.Y + cfg.LoiterRadius/2; y <= box.P1.Y; y += step {
		for x := box.P0.X + cfg.LoiterRadius/2; x <= box.P1.X; x += step {
			candidates = append(candidates, geo.Point{X: x, Y: y})
		}
	}

	// Targeted sampling: once the uncovered set is small, draw candidates
	// directly from it so isolated pockets the regular grid straddles
	// still get a centered candidate. The draw is a deterministic
	// permutation (fixed hash seed), spreading samples across the set
	// instead of clustering in the first rows while keeping runs
	// reproducible.
	if len(uncovered) < targetedSampleThreshold {
		n := min(len(uncovered), maxTargetedCandidates)
		taken := 0
		for _, p := range rand.PermuteSlice(uncovered, 0x9e3779b9) {
			if taken >= n {
				break
			}
			candidates = append(candidates, p)
			taken++
		}
	}

	return candidates
}

// scoreCandidates validates and scores every candidate concurrently,
// bounded to GOMAXPROCS workers, writing each result to its candidate's
// own index so the result order never depends on scheduling.
func scoreCandidates(candidates, uncovered []geo.Point, currentPose geo.Pose, m *gridmap.SurveillanceMap, cfg Config) ([]candidateResult, error) {
	results := make([]candidateResult, len(candidates))
	sem := make(chan struct{}, max(1, runtime.GOMAXPROCS(0)))

	var g errgroup.Group
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = evaluateCandidate(c, uncovered, currentPose, m, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func evaluateCandidate(center geo.Point, uncovered []geo.Point, currentPose geo.Pose, m *gridmap.SurveillanceMap, cfg Config) candidateResult {
	if !m.InBoundsPoint(center) {
		return candidateResult{center: center}
	}
	for _, o := range m.Obstacles() {
		margin := m.ObstacleMargin
		if o.NoFly {
			margin = m.NoFlyMargin
		}
		if center.Distance(o.Center) < o.Radius+cfg.LoiterRadius+margin {
			return candidateResult{center: center}
		}
	}

	covered := 0
	for _, p := range uncovered {
		if p.Distance(center) <= cfg.LoiterRadius {
			covered++
		}
	}
	if covered == 0 {
		return candidateResult{center: center, valid: true}
	}

	heading := currentPose.HeadingTo(center)
	trial, err := loiter.New(loiter.Params{
		Center:       center,
		Radius:       cfg.LoiterRadius,
		Type:         cfg.LoiterType,
		EntryHeading: heading,
		Revolutions:  cfg.revolutions(),
		Sense:        cfg.Sense,
	})
	if err != nil {
		return candidateResult{center: center}
	}

	transitionCost := currentPose.Point.Distance(center)
	loiterCost := trial.EnergyCostWh
	denom := transitionCost + loiterCost
	score := 0.0
	if denom > 0 {
		score = float64(covered) / denom
	}

	return candidateResult{
		valid:          true,
		center:         center,
		coverage:       covered,
		transitionCost: transitionCost,
		loiterCost:     loiterCost,
		score:          score,
		trial:          trial,
	}
}

// selectBest walks results in index order (the fixed candidate
// enumeration order) and returns the index of the highest-scoring
// positive candidate, breaking ties by lower total cost then
// lexicographic center. Returns -1 if no candidate scores positively.
func selectBest(results []candidateResult) int {
	best := -1
	for i, r := range results {
		if !r.valid || r.coverage == 0 || r.score <= 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		cur := results[best]
		switch {
		case r.score > cur.score:
			best = i
		case r.score == cur.score:
			rCost := r.transitionCost + r.loiterCost
			curCost := cur.transitionCost + cur.loiterCost
			if rCost < curCost || (rCost == curCost && lexLess(r.center, cur.center)) {
				best = i
			}
		}
	}
	return best
}

func lexLess(a, b geo.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
