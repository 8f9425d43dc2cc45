package occupancy

import (
	"math"

	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// CloudPoint is one sample of a point-cloud event, as delivered by the bus
// adapter.
type CloudPoint struct {
	X, Y, Z   float64
	Intensity float64
}

// DefaultCloudStride down-samples incoming clouds to every Nth point.
const DefaultCloudStride = 10

// UpdateFromCloud folds a point cloud into the grid: it down-samples by
// stride, discards points whose z is more than heightWindow away from the
// vehicle's own z (so only near-planar returns are projected), raytraces
// from the vehicle's grid cell to each surviving sample and marks the
// sample's own cell occupied. It always finishes by recomputing the
// inflated grid.
func (g *Grid) UpdateFromCloud(points []CloudPoint, vehicle spatial.Vec3, stride int, heightWindow float64) {
	if stride <= 0 {
		stride = DefaultCloudStride
	}
	gx0, gy0 := g.WorldToGrid(vehicle.X, vehicle.Y)

	for i := 0; i < len(points); i += stride {
		p := points[i]
		if math.Abs(p.Z-vehicle.Z) > heightWindow {
			continue
		}
		gxi, gyi := g.WorldToGrid(p.X, p.Y)
		if !g.InMap(gxi, gyi) {
			continue
		}
		wx0, wy0 := g.GridToWorld(gx0, gy0)
		wxi, wyi := g.GridToWorld(gxi, gyi)
		g.Raytrace(wx0, wy0, wxi, wyi)
		g.Set(gxi, gyi, Occupied)
	}

	g.InflateObstacles()
}

// SceneBounds is the derived exploration boundary box.
type SceneBounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
	Valid      bool
}

// DeriveSceneBounds computes a SceneBounds from a cloud's min/max extent,
// shrinking the xy box inward by margin and clamping z into
// [max(zFloor, minZ+zPad), min(zCeil, maxZ-zPad)]. Per spec this is only
// meaningful once a cloud carries at least minPoints samples.
func DeriveSceneBounds(points []CloudPoint, minPoints int, margin, zFloor, zCeil, zPad float64) SceneBounds {
	if len(points) < minPoints {
		return SceneBounds{}
	}
	b := SceneBounds{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
		MinZ: math.Inf(1), MaxZ: math.Inf(-1),
	}
	for _, p := range points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
		b.MinZ = math.Min(b.MinZ, p.Z)
		b.MaxZ = math.Max(b.MaxZ, p.Z)
	}
	b.MinX += margin
	b.MaxX -= margin
	b.MinY += margin
	b.MaxY -= margin
	b.MinZ = math.Max(zFloor, b.MinZ+zPad)
	b.MaxZ = math.Min(zCeil, b.MaxZ-zPad)
	b.Valid = true
	return b
}

// Contains reports whether (x,y,z) lies within the bounds. An invalid
// (never-derived) SceneBounds contains everything, so planning is
// unconstrained until enough of the world has been observed.
func (b SceneBounds) Contains(x, y, z float64) bool {
	if !b.Valid {
		return true
	}
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY && z >= b.MinZ && z <= b.MaxZ
}
