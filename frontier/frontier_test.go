package frontier

import (
	"testing"

	"go.viam.com/test"

	"github.com/xs426426/Indoor-Drone-Ground-Station/occupancy"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// rowGrid builds a 100x100 grid with a single free row at gy=50, gx in
// [40,60], otherwise left Unknown. Every cell in that row is a frontier
// cell since its upper/lower neighbors remain Unknown.
func rowGrid(t *testing.T) *occupancy.Grid {
	t.Helper()
	g := occupancy.New(100, 100, 0.2, 0.3)
	for gx := 40; gx <= 60; gx++ {
		g.Set(gx, 50, occupancy.Free)
	}
	return g
}

func TestDetectPartitionsAllFrontierCells(t *testing.T) {
	g := rowGrid(t)
	vx, vy := g.GridToWorld(50, 50)
	vehicle := spatial.NewVec3(vx, vy, 1)

	frontiers := Detect(g, vehicle, 20, 1.0, 1)

	total := 0
	for _, f := range frontiers {
		total += f.Size
	}
	test.That(t, total, test.ShouldEqual, 21)
}

func TestDetectDiscardsSmallClusters(t *testing.T) {
	g := rowGrid(t)
	vx, vy := g.GridToWorld(50, 50)
	vehicle := spatial.NewVec3(vx, vy, 1)

	frontiers := Detect(g, vehicle, 20, 1.0, 25)
	test.That(t, len(frontiers), test.ShouldEqual, 0)
}

func TestDetectIsDeterministic(t *testing.T) {
	g := rowGrid(t)
	vx, vy := g.GridToWorld(50, 50)
	vehicle := spatial.NewVec3(vx, vy, 1)

	a := Detect(g, vehicle, 20, 1.0, 1)
	b := Detect(g, vehicle, 20, 1.0, 1)
	test.That(t, a, test.ShouldResemble, b)
}

func TestDetectEmptyGridHasNoFrontiers(t *testing.T) {
	g := occupancy.New(100, 100, 0.2, 0.3)
	vx, vy := g.GridToWorld(50, 50)
	vehicle := spatial.NewVec3(vx, vy, 1)

	frontiers := Detect(g, vehicle, 20, 1.0, 1)
	test.That(t, len(frontiers), test.ShouldEqual, 0)
}
