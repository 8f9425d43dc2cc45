// Package goalscore selects the next exploration goal from a set of
// candidate frontier clusters: a chain of rejection filters followed by a
// weighted multi-criterion score over the survivors.
package goalscore

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/xs426426/Indoor-Drone-Ground-Station/occupancy"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// Weights are the scoring coefficients, each expected in [0,1].
type Weights struct {
	InfoGain    float64
	Distance    float64
	Consistency float64
	Density     float64
	History     float64
}

// Candidate is a frontier cluster centroid under consideration.
type Candidate struct {
	X, Y float64
	Size int
}

// UnreachablePoint is a blacklisted (x,y).
type UnreachablePoint struct{ X, Y float64 }

// VisitedGoal is a previously-arrived-at (x,y).
type VisitedGoal struct{ X, Y float64 }

// Params bundles everything the scorer needs beyond the candidate list
// itself.
type Params struct {
	Grid              *occupancy.Grid
	Current           spatial.Vec3
	ROI               *spatial.ROI
	UseROI            bool
	Unreachable       []UnreachablePoint
	Visited           []VisitedGoal
	ExploredArea      float64
	SceneBounds       occupancy.SceneBounds
	BoundaryMin       *spatial.Vec3
	BoundaryMax       *spatial.Vec3
	MinHeight         float64
	MaxHeight         float64
	EnableZExploration bool
	ExplorationHeight float64
	LastGoalDirection *spatial.Vec3
	Weights           Weights
}

// Goal is the scorer's output.
type Goal struct {
	X, Y, Z   float64
	Density   float64
	PathClear bool
	Score     float64
}

const (
	blacklistRadius       = 2.0
	windowTrapArea        = 50.0
	windowTrapRadius      = 1.5
	minCandidateDistance  = 0.5
	maxCandidateDistance  = 15.0
	historyRadius         = 2.0
	historyRejectRadius   = 0.3
	densityRadius         = 2.0
	heightStep            = 0.5
)

// Best filters candidates and returns the highest-scoring survivor, or
// false if none survive.
func Best(candidates []Candidate, p Params) (Goal, bool) {
	var (
		best      Goal
		bestScore = math.Inf(-1)
		found     bool
	)

	for _, c := range candidates {
		if !passesFilters(c, p) {
			continue
		}

		z := selectHeight(c, p)
		if !boundaryOK(c.X, c.Y, z, p) {
			continue
		}

		density := localDensity(p.Grid, c.X, c.Y, densityRadius)
		historyPenalty, rejected := historyPenalty(c, p.Visited)
		if rejected {
			continue
		}

		d := spatial.Hypot(spatial.NewVec3(c.X, c.Y, 0), p.Current)
		distanceCost := 1 / (1 + d)
		infoGain := math.Min(float64(c.Size)/50, 1)
		directionBonus := directionBonus(c, p)

		weights := []float64{p.Weights.Distance, p.Weights.InfoGain, -p.Weights.History, -p.Weights.Density}
		features := []float64{distanceCost, infoGain, historyPenalty, density}
		score := floats.Dot(weights, features) + directionBonus

		if score > bestScore {
			bestScore = score
			best = Goal{X: c.X, Y: c.Y, Z: z, Density: density, PathClear: true, Score: score}
			found = true
		}
	}

	return best, found
}

func passesFilters(c Candidate, p Params) bool {
	if p.UseROI && p.ROI != nil && !p.ROI.Contains(c.X, c.Y) {
		return false
	}
	for _, u := range p.Unreachable {
		if spatial.Hypot(spatial.NewVec3(u.X, u.Y, 0), spatial.NewVec3(c.X, c.Y, 0)) < blacklistRadius {
			return false
		}
	}
	if !pathClear(p.Grid, p.Current, c) {
		return false
	}
	if p.ExploredArea > windowTrapArea && !hasNearbyOccupied(p.Grid, c.X, c.Y, windowTrapRadius) {
		return false
	}
	gx, gy := p.Grid.WorldToGrid(c.X, c.Y)
	if p.Grid.Get(gx, gy) == occupancy.Occupied {
		return false
	}
	d := spatial.Hypot(spatial.NewVec3(c.X, c.Y, 0), p.Current)
	if d < minCandidateDistance || d > maxCandidateDistance {
		return false
	}
	return true
}

func pathClear(grid *occupancy.Grid, from spatial.Vec3, c Candidate) bool {
	gx0, gy0 := grid.WorldToGrid(from.X, from.Y)
	gx1, gy1 := grid.WorldToGrid(c.X, c.Y)
	stepCap := grid.Width
	if grid.Height > stepCap {
		stepCap = grid.Height
	}
	for _, cell := range spatial.Bresenham(gx0, gy0, gx1, gy1, stepCap*2) {
		if grid.GetInflated(cell.X, cell.Y) != occupancy.Free {
			return false
		}
	}
	return true
}

func hasNearbyOccupied(grid *occupancy.Grid, x, y, radius float64) bool {
	cx, cy := grid.WorldToGrid(x, y)
	cells := int(math.Ceil(radius / grid.Res))
	for dy := -cells; dy <= cells; dy++ {
		for dx := -cells; dx <= cells; dx++ {
			gx, gy := cx+dx, cy+dy
			wx, wy := grid.GridToWorld(gx, gy)
			if math.Hypot(wx-x, wy-y) > radius {
				continue
			}
			if grid.Get(gx, gy) == occupancy.Occupied {
				return true
			}
		}
	}
	return false
}

func boundaryOK(x, y, z float64, p Params) bool {
	if !p.SceneBounds.Contains(x, y, z) {
		return false
	}
	if p.BoundaryMin != nil && (x < p.BoundaryMin.X || y < p.BoundaryMin.Y || z < p.BoundaryMin.Z) {
		return false
	}
	if p.BoundaryMax != nil && (x > p.BoundaryMax.X || y > p.BoundaryMax.Y || z > p.BoundaryMax.Z) {
		return false
	}
	return true
}

func selectHeight(c Candidate, p Params) float64 {
	if !p.EnableZExploration {
		return clampHeight(p.ExplorationHeight, p)
	}
	levels := heightLevels(p.MinHeight, p.MaxHeight)
	if len(levels) == 0 {
		return clampHeight(p.ExplorationHeight, p)
	}
	h := fnv.New32a()
	key := int64(math.Floor(c.X*10)) + int64(math.Floor(c.Y*10))
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(key))
	h.Write(buf) //nolint:errcheck
	idx := int(h.Sum32()) % len(levels)
	if idx < 0 {
		idx += len(levels)
	}
	return clampHeight(levels[idx], p)
}

func heightLevels(min, max float64) []float64 {
	if max < min {
		return nil
	}
	var levels []float64
	for h := min; h <= max+1e-9; h += heightStep {
		levels = append(levels, h)
	}
	return levels
}

func clampHeight(z float64, p Params) float64 {
	if z < p.MinHeight {
		return p.MinHeight
	}
	if z > p.MaxHeight {
		return p.MaxHeight
	}
	return z
}

// historyPenalty returns the sum of proximity penalties from visited goals
// within historyRadius, and whether c must be rejected outright because a
// visited goal lies within historyRejectRadius.
func historyPenalty(c Candidate, visited []VisitedGoal) (float64, bool) {
	penalty := 0.0
	for _, v := range visited {
		d := spatial.Hypot(spatial.NewVec3(v.X, v.Y, 0), spatial.NewVec3(c.X, c.Y, 0))
		if d < historyRejectRadius {
			return 0, true
		}
		if d < historyRadius {
			penalty += 0.5 * (1 - d/historyRadius)
		}
	}
	return penalty, false
}

// localDensity is occupied/total + 0.3*unknown/total over a disk, clamped
// to [0,1].
func localDensity(grid *occupancy.Grid, x, y, radius float64) float64 {
	cx, cy := grid.WorldToGrid(x, y)
	cells := int(math.Ceil(radius / grid.Res))
	var occupied, unknownCount, total int
	for dy := -cells; dy <= cells; dy++ {
		for dx := -cells; dx <= cells; dx++ {
			gx, gy := cx+dx, cy+dy
			wx, wy := grid.GridToWorld(gx, gy)
			if math.Hypot(wx-x, wy-y) > radius {
				continue
			}
			total++
			switch grid.Get(gx, gy) {
			case occupancy.Occupied:
				occupied++
			case occupancy.Unknown:
				unknownCount++
			}
		}
	}
	if total == 0 {
		return 0
	}
	d := float64(occupied)/float64(total) + 0.3*float64(unknownCount)/float64(total)
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

func directionBonus(c Candidate, p Params) float64 {
	if p.LastGoalDirection == nil {
		return 0
	}
	dx := c.X - p.Current.X
	dy := c.Y - p.Current.Y
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return 0
	}
	ux, uy := dx/norm, dy/norm
	dot := ux*p.LastGoalDirection.X + uy*p.LastGoalDirection.Y
	if dot < 0 {
		dot = 0
	}
	return dot * p.Weights.Consistency
}
