package exploration

import (
	"fmt"

	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// buildMission linearly interpolates waypoints from `from` to `goal` every
// stepMeters along the xy distance, with at least two waypoints, and tags
// the envelope with a monotonic-clock-derived id.
func buildMission(idPrefix string, from, goal spatial.Vec3, stepMeters float64, nowMS int64) Mission {
	dist := spatial.Hypot(from, goal)
	steps := 2
	if stepMeters > 0 {
		n := int(dist/stepMeters) + 1
		if n > steps {
			steps = n
		}
	}

	tasks := make([]Waypoint, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		wp := spatial.NewVec3(
			from.X+(goal.X-from.X)*t,
			from.Y+(goal.Y-from.Y)*t,
			from.Z+(goal.Z-from.Z)*t,
		)
		tasks = append(tasks, Waypoint{Position: wp, Yaw: 0})
	}

	return Mission{
		ID:    fmt.Sprintf("%s_%d", idPrefix, nowMS),
		Tasks: tasks,
	}
}

func buildExplorationMission(from, goal spatial.Vec3, stepMeters float64, nowMS int64) Mission {
	return buildMission("exploration", from, goal, stepMeters, nowMS)
}

// buildReturnHomeMission is a single-waypoint mission back to start.
func buildReturnHomeMission(home spatial.Vec3, nowMS int64) Mission {
	return Mission{
		ID:    fmt.Sprintf("return_home_%d", nowMS),
		Tasks: []Waypoint{{Position: home, Yaw: 0}},
	}
}
