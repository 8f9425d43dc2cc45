// Package occupancy implements the 2D occupancy grid the exploration engine
// builds up from streamed point clouds: a raw ternary raster plus an
// obstacle-inflated companion raster used only for traversability tests.
package occupancy

import (
	"math"

	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// Cell states, following spec: unknown=0, free=+1, occupied=-1.
const (
	Unknown  = 0
	Free     = 1
	Occupied = -1
)

// Stats is the running (unknown, free, occupied) cell-count triple.
type Stats struct {
	Unknown, Free, Occupied int
}

// Grid is a W x H raster of cells at resolution Res meters/cell, centered
// on the world origin.
type Grid struct {
	Width, Height int
	Res           float64
	OriginX       float64
	OriginY       float64
	RobotRadius   float64

	raw      []int8
	inflated []int8
	stats    Stats
}

// New builds a grid of the given cell dimensions and resolution, with an
// inflation radius derived from robotRadius. Origin is placed so the grid is
// centered at world (0,0).
func New(width, height int, resolution, robotRadius float64) *Grid {
	g := &Grid{
		Width:       width,
		Height:      height,
		Res:         resolution,
		OriginX:     -float64(width) * resolution / 2,
		OriginY:     -float64(height) * resolution / 2,
		RobotRadius: robotRadius,
		raw:         make([]int8, width*height),
		inflated:    make([]int8, width*height),
	}
	g.stats = Stats{Unknown: width * height}
	return g
}

func (g *Grid) index(gx, gy int) int {
	return gy*g.Width + gx
}

// WorldToGrid converts a world (x,y) into the grid cell containing it,
// using floor toward -inf as spec requires.
func (g *Grid) WorldToGrid(x, y float64) (int, int) {
	gx := int(math.Floor((x - g.OriginX) / g.Res))
	gy := int(math.Floor((y - g.OriginY) / g.Res))
	return gx, gy
}

// GridToWorld returns the world-frame center of grid cell (gx,gy).
func (g *Grid) GridToWorld(gx, gy int) (float64, float64) {
	x := (float64(gx)+0.5)*g.Res + g.OriginX
	y := (float64(gy)+0.5)*g.Res + g.OriginY
	return x, y
}

// InMap reports whether (gx,gy) addresses a cell within the grid bounds.
func (g *Grid) InMap(gx, gy int) bool {
	return gx >= 0 && gx < g.Width && gy >= 0 && gy < g.Height
}

// Get returns the raw occupancy state of (gx,gy), or Occupied if the
// coordinate falls outside the map (conservative default per spec).
func (g *Grid) Get(gx, gy int) int8 {
	if !g.InMap(gx, gy) {
		return Occupied
	}
	return g.raw[g.index(gx, gy)]
}

// GetInflated returns the inflated occupancy state of (gx,gy), or Occupied
// if outside the map.
func (g *Grid) GetInflated(gx, gy int) int8 {
	if !g.InMap(gx, gy) {
		return Occupied
	}
	return g.inflated[g.index(gx, gy)]
}

// Set writes the raw occupancy of (gx,gy) and maintains the running stats
// triple. Out-of-map writes are ignored.
func (g *Grid) Set(gx, gy int, value int8) {
	if !g.InMap(gx, gy) {
		return
	}
	i := g.index(gx, gy)
	prev := g.raw[i]
	if prev == value {
		return
	}
	g.decrementStat(prev)
	g.incrementStat(value)
	g.raw[i] = value
}

func (g *Grid) decrementStat(v int8) {
	switch v {
	case Unknown:
		g.stats.Unknown--
	case Free:
		g.stats.Free--
	case Occupied:
		g.stats.Occupied--
	}
}

func (g *Grid) incrementStat(v int8) {
	switch v {
	case Unknown:
		g.stats.Unknown++
	case Free:
		g.stats.Free++
	case Occupied:
		g.stats.Occupied++
	}
}

// Stats returns a copy of the current (unknown, free, occupied) counts.
func (g *Grid) Stats() Stats {
	return g.stats
}

// Raytrace runs Bresenham from (x0,y0) to (x1,y1) in world coordinates,
// marking every traversed cell free unless it is already occupied. The
// endpoint's own occupancy is left to the caller (typically set to
// Occupied for a lidar return).
func (g *Grid) Raytrace(x0, y0, x1, y1 float64) {
	gx0, gy0 := g.WorldToGrid(x0, y0)
	gx1, gy1 := g.WorldToGrid(x1, y1)
	stepCap := g.Width
	if g.Height > stepCap {
		stepCap = g.Height
	}
	cells := spatial.Bresenham(gx0, gy0, gx1, gy1, stepCap*2)
	for _, c := range cells {
		if !g.InMap(c.X, c.Y) {
			continue
		}
		if g.Get(c.X, c.Y) == Occupied {
			continue
		}
		g.Set(c.X, c.Y, Free)
	}
}

// SeedFreeDisk marks every cell within radiusCells of the world point (x,y)
// as free, used to seed the map around the vehicle's starting position so
// the frontier detector has something to find on the very first tick.
func (g *Grid) SeedFreeDisk(x, y float64, radiusCells int) {
	cx, cy := g.WorldToGrid(x, y)
	r2 := radiusCells * radiusCells
	for dy := -radiusCells; dy <= radiusCells; dy++ {
		for dx := -radiusCells; dx <= radiusCells; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			gx, gy := cx+dx, cy+dy
			if g.InMap(gx, gy) {
				g.Set(gx, gy, Free)
			}
		}
	}
}

// InflateObstacles recomputes the inflated grid from raw: every raw cell
// within the inflation radius of a raw-occupied cell becomes inflated
// Occupied. Raw-occupied cells are always inflated-occupied and are never
// downgraded.
func (g *Grid) InflateObstacles() {
	inflationRadius := int(math.Ceil(g.RobotRadius / g.Res))
	copy(g.inflated, g.raw)

	if inflationRadius <= 0 {
		return
	}

	for gy := 0; gy < g.Height; gy++ {
		for gx := 0; gx < g.Width; gx++ {
			if g.raw[g.index(gx, gy)] != Occupied {
				continue
			}
			for dy := -inflationRadius; dy <= inflationRadius; dy++ {
				for dx := -inflationRadius; dx <= inflationRadius; dx++ {
					if dx*dx+dy*dy > inflationRadius*inflationRadius {
						continue
					}
					nx, ny := gx+dx, gy+dy
					if !g.InMap(nx, ny) {
						continue
					}
					g.inflated[g.index(nx, ny)] = Occupied
				}
			}
		}
	}
}

// ExploredArea returns the area, in square meters, of every cell that is
// not unknown.
func (g *Grid) ExploredArea() float64 {
	return float64(g.stats.Free+g.stats.Occupied) * g.Res * g.Res
}

// ExploredPercentage returns ExploredArea as a fraction of the total grid
// area.
func (g *Grid) ExploredPercentage() float64 {
	total := float64(g.Width*g.Height) * g.Res * g.Res
	if total == 0 {
		return 0
	}
	return g.ExploredArea() / total
}

// Reset zeros both rasters and the running stats.
func (g *Grid) Reset() {
	for i := range g.raw {
		g.raw[i] = Unknown
		g.inflated[i] = Unknown
	}
	g.stats = Stats{Unknown: g.Width * g.Height}
}

// Export is a serializable snapshot of the grid suitable for a UI's
// getMapData() call.
type Export struct {
	Width, Height int
	Resolution    float64
	OriginX       float64
	OriginY       float64
	Raw           []int8
	Stats         Stats
}

// Export returns a copy of the grid's raw cells and metadata.
func (g *Grid) Export() Export {
	raw := make([]int8, len(g.raw))
	copy(raw, g.raw)
	return Export{
		Width:      g.Width,
		Height:     g.Height,
		Resolution: g.Res,
		OriginX:    g.OriginX,
		OriginY:    g.OriginY,
		Raw:        raw,
		Stats:      g.stats,
	}
}
