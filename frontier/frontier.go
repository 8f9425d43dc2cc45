// Package frontier detects and clusters frontier cells — free cells
// adjacent to unknown space — within a bounded window of the occupancy
// grid around the vehicle.
package frontier

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/xs426426/Indoor-Drone-Ground-Station/occupancy"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// Frontier is a cluster of raw frontier cells: its centroid in world
// coordinates and its member count.
type Frontier struct {
	X, Y float64
	Size int
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

type rawPoint struct {
	gx, gy int
	wx, wy float64
}

// Detect scans a square window centered on vehicle's grid cell, half-side
// ceil(maxDistance/resolution) clipped to [1, W-2]x[1, H-2], collects every
// free cell with at least one unknown 8-neighbor, clusters those cells by
// greedy single-linkage at clusterRadius meters (discovery order, so the
// result is deterministic for a fixed grid and vehicle position), and
// discards clusters smaller than minClusterSize.
func Detect(grid *occupancy.Grid, vehicle spatial.Vec3, maxDistance, clusterRadius float64, minClusterSize int) []Frontier {
	raw := collectRawFrontierCells(grid, vehicle, maxDistance)
	clusters := clusterRawPoints(raw, clusterRadius)

	out := make([]Frontier, 0, len(clusters))
	for _, cluster := range clusters {
		if len(cluster) < minClusterSize {
			continue
		}
		xs := make([]float64, len(cluster))
		ys := make([]float64, len(cluster))
		for i, p := range cluster {
			xs[i] = p.wx
			ys[i] = p.wy
		}
		out = append(out, Frontier{
			X:    stat.Mean(xs, nil),
			Y:    stat.Mean(ys, nil),
			Size: len(cluster),
		})
	}
	return out
}

func collectRawFrontierCells(grid *occupancy.Grid, vehicle spatial.Vec3, maxDistance float64) []rawPoint {
	vgx, vgy := grid.WorldToGrid(vehicle.X, vehicle.Y)
	halfSide := int(math.Ceil(maxDistance / grid.Res))

	minX, maxX := clip(vgx-halfSide, 1, grid.Width-2), clip(vgx+halfSide, 1, grid.Width-2)
	minY, maxY := clip(vgy-halfSide, 1, grid.Height-2), clip(vgy+halfSide, 1, grid.Height-2)

	var points []rawPoint
	for gy := minY; gy <= maxY; gy++ {
		for gx := minX; gx <= maxX; gx++ {
			if grid.Get(gx, gy) != occupancy.Free {
				continue
			}
			if !hasUnknownNeighbor(grid, gx, gy) {
				continue
			}
			wx, wy := grid.GridToWorld(gx, gy)
			points = append(points, rawPoint{gx: gx, gy: gy, wx: wx, wy: wy})
		}
	}
	return points
}

func hasUnknownNeighbor(grid *occupancy.Grid, gx, gy int) bool {
	for _, off := range neighborOffsets {
		if grid.Get(gx+off[0], gy+off[1]) == occupancy.Unknown {
			return true
		}
	}
	return false
}

func clip(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clusterRawPoints performs greedy single-linkage clustering in discovery
// order: for each unvisited point it opens a cluster and absorbs every
// later unvisited point within radius meters of it. O(n^2) in the raw point
// count, which is acceptable for a bounded window.
func clusterRawPoints(points []rawPoint, radius float64) [][]rawPoint {
	visited := make([]bool, len(points))
	var clusters [][]rawPoint

	for i := range points {
		if visited[i] {
			continue
		}
		visited[i] = true
		cluster := []rawPoint{points[i]}
		for j := i + 1; j < len(points); j++ {
			if visited[j] {
				continue
			}
			if withinRadius(points[i], points[j], radius) {
				visited[j] = true
				cluster = append(cluster, points[j])
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

func withinRadius(a, b rawPoint, radius float64) bool {
	dx := a.wx - b.wx
	dy := a.wy - b.wy
	return math.Hypot(dx, dy) <= radius
}
