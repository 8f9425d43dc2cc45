// Package spatial provides the small set of geometric primitives the
// exploration engine shares across the occupancy grid, frontier detector,
// and goal scorer: world-frame vectors, integer grid coordinates, Bresenham
// line enumeration, polygon containment/area, and Euclidean distance.
package spatial

import (
	"math"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
)

// Vec3 is a point or vector in the world frame, meters, z-up.
type Vec3 = r3.Vector

// NewVec3 builds a Vec3 from components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// GridCoord is an integer occupancy-grid cell address.
type GridCoord struct {
	X, Y int
}

// Hypot returns the planar (xy) Euclidean distance between two points.
func Hypot(a, b Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Hypot(dx, dy)
}

// Bresenham enumerates every grid cell on the line from (x0,y0) to (x1,y1)
// inclusive of both endpoints, using the standard integer Bresenham
// algorithm. A step cap bounds the walk so a pathological pair of endpoints
// (e.g. outside the grid) cannot run away.
func Bresenham(x0, y0, x1, y1, stepCap int) []GridCoord {
	if stepCap <= 0 {
		stepCap = 1
	}
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	cells := make([]GridCoord, 0, dx-dy+1)
	x, y := x0, y0
	for steps := 0; steps <= stepCap; steps++ {
		cells = append(cells, GridCoord{X: x, Y: y})
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return cells
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ROI is a closed polygon boundary planning is restricted to. It wraps
// golang-geo's Polygon, whose Contains implementation is a standard
// ray-casting parity test.
type ROI struct {
	polygon *geo.Polygon
}

// NewROI builds an ROI from a sequence of (x, y) world-frame vertices. The
// polygon may be convex or concave and is treated as closed (the first and
// last vertex are implicitly connected).
func NewROI(vertices [][2]float64) *ROI {
	if len(vertices) < 3 {
		return nil
	}
	points := make([]*geo.Point, len(vertices))
	for i, v := range vertices {
		// golang-geo's Point is (lat, lng); we borrow the type purely for its
		// polygon math and store planar (x, y) in that slot.
		points[i] = geo.NewPoint(v[0], v[1])
	}
	return &ROI{polygon: geo.NewPolygon(points)}
}

// Contains reports whether (x, y) lies inside the ROI polygon.
func (r *ROI) Contains(x, y float64) bool {
	if r == nil || r.polygon == nil {
		return true
	}
	return r.polygon.Contains(geo.NewPoint(x, y))
}

// PolygonArea returns the area of a simple polygon given as (x,y) vertices,
// via the shoelace formula.
func PolygonArea(vertices [][2]float64) float64 {
	n := len(vertices)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += vertices[i][0]*vertices[j][1] - vertices[j][0]*vertices[i][1]
	}
	return math.Abs(sum) / 2
}
