package exploration

import (
	"math"
	"time"

	"github.com/xs426426/Indoor-Drone-Ground-Station/frontier"
	"github.com/xs426426/Indoor-Drone-Ground-Station/goalscore"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// planningTickLocked runs one iteration of the receding-horizon planner. The
// caller must hold c.mu.
func (c *Controller) planningTickLocked() {
	if !c.isExploring || c.isPaused || (c.isWaitingForArrival && !c.isPreparingNextGoal) {
		return
	}

	elapsed := c.clock.Now().Sub(c.startTime)
	if c.cfg.MaxDuration > 0 && elapsed.Seconds() > c.cfg.MaxDuration {
		c.stopExplorationLocked("timeout")
		return
	}

	if c.haveStartPos && spatial.Hypot(c.currentPos, c.startPos) > c.cfg.MaxDistance {
		c.stopExplorationLocked("max_distance")
		return
	}

	frontiers := frontier.Detect(c.grid, c.currentPos, c.cfg.MaxDistance, c.cfg.ClusterRadius, c.cfg.MinClusterSize)
	c.lastFrontierCount = len(frontiers)
	if len(frontiers) == 0 {
		c.stopExplorationLocked("complete")
		return
	}

	candidates := make([]goalscore.Candidate, len(frontiers))
	for i, f := range frontiers {
		candidates[i] = goalscore.Candidate{X: f.X, Y: f.Y, Size: f.Size}
	}

	goal, ok := goalscore.Best(candidates, c.scorerParamsLocked())
	if !ok {
		c.stopExplorationLocked("no_valid_frontier")
		return
	}

	c.currentGoal = &goal
	c.isWaitingForArrival = true
	c.isPreparingNextGoal = false
	c.missionStartTime = c.clock.Now()
	c.lastGoalDirection = directionTo(c.currentPos, goal)

	c.publishExplorationMissionLocked(goal)
	c.emitStatusLocked("tick")
}

func directionTo(from spatial.Vec3, goal goalscore.Goal) *spatial.Vec3 {
	dx := goal.X - from.X
	dy := goal.Y - from.Y
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return nil
	}
	dir := spatial.NewVec3(dx/norm, dy/norm, 0)
	return &dir
}

func (c *Controller) scorerParamsLocked() goalscore.Params {
	return goalscore.Params{
		Grid:               c.grid,
		Current:            c.currentPos,
		ROI:                c.roi,
		UseROI:             c.cfg.UseROI,
		Unreachable:        c.unreachable,
		Visited:            c.visited,
		ExploredArea:       c.grid.ExploredArea(),
		SceneBounds:        c.sceneBounds,
		BoundaryMin:        c.cfg.BoundaryMin,
		BoundaryMax:        c.cfg.BoundaryMax,
		MinHeight:          c.cfg.MinHeight,
		MaxHeight:          c.cfg.MaxHeight,
		EnableZExploration: c.cfg.EnableZExploration,
		ExplorationHeight:  c.cfg.ExplorationHeight,
		LastGoalDirection:  c.lastGoalDirection,
		Weights:            c.cfg.Weights,
	}
}

func (c *Controller) publishExplorationMissionLocked(goal goalscore.Goal) {
	goalPos := spatial.NewVec3(goal.X, goal.Y, goal.Z)
	mission := buildExplorationMission(c.currentPos, goalPos, c.cfg.MissionWaypointStep, c.clock.Now().UnixMilli())
	c.currentMissionID = mission.ID

	if c.bus == nil {
		return
	}
	if err := c.bus.PublishMission(mission); err != nil {
		c.logger.Errorw("failed to publish exploration mission", "error", err, "missionId", mission.ID)
		return
	}
	c.schedulePublishExecutionLocked(mission.ID, ExecStart)
}

// schedulePublishExecutionLocked publishes an execution command for
// missionID after the configured delay, guaranteeing the START command is
// ordered strictly after the mission envelope.
func (c *Controller) schedulePublishExecutionLocked(missionID string, action ExecutionAction) {
	delay := time.Duration(c.cfg.StartupMissionDelayMS) * time.Millisecond
	c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.bus == nil {
			return
		}
		if err := c.bus.PublishExecution(ExecutionCommand{ID: missionID, Action: action}); err != nil {
			c.logger.Errorw("failed to publish execution command", "error", err, "missionId", missionID)
		}
	})
}
