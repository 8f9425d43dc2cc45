package exploration

import (
	"time"

	"github.com/xs426426/Indoor-Drone-Ground-Station/occupancy"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// StartExploration transitions Idle -> Exploring: it validates a known
// position, merges the caller's overrides into the live config, resets the
// map, seeds a free-space disk around the start point, and schedules the
// first planning tick.
func (c *Controller) StartExploration(opts StartOptions) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isExploring {
		return Result{Success: false, Message: ErrAlreadyExploring.Error()}
	}

	if opts.StartPosition != nil {
		c.currentPos = *opts.StartPosition
		c.havePos = true
	}
	if !c.havePos {
		return Result{Success: false, Message: ErrNoKnownPosition.Error()}
	}

	c.applyStartOverridesLocked(opts)

	c.grid.Reset()
	c.startPos = c.currentPos
	c.haveStartPos = true
	c.grid.SeedFreeDisk(c.startPos.X, c.startPos.Y, c.cfg.SeedDiskRadiusCells)
	c.grid.InflateObstacles()

	c.sessionID = newSessionID()
	c.isExploring = true
	c.isPaused = false
	c.isReturningHome = false
	c.isWaitingForArrival = false
	c.isPreparingNextGoal = false
	c.currentGoal = nil
	c.currentMissionID = ""
	c.startTime = c.clock.Now()
	c.lastUpdateTime = time.Time{}
	c.lastGoalDirection = nil
	c.lastVelocityCheck = nil
	c.stuckStartTime = nil
	c.goalAttempts = make(map[goalKey]int)
	c.unreachable = nil
	c.visited = nil
	c.sceneBounds = occupancy.SceneBounds{}

	c.emit(Event{Type: EventStarted})
	c.startBackgroundWorkersLocked()

	delay := time.Duration(c.cfg.StartupMissionDelayMS) * time.Millisecond
	c.clock.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.planningTickLocked()
	})

	return Result{Success: true, Message: "exploration started"}
}

func (c *Controller) applyStartOverridesLocked(opts StartOptions) {
	if opts.MaxDistance > 0 {
		c.cfg.MaxDistance = opts.MaxDistance
	}
	if opts.MaxDuration > 0 {
		c.cfg.MaxDuration = opts.MaxDuration
	}
	if opts.ExplorationHeight != 0 {
		c.cfg.ExplorationHeight = opts.ExplorationHeight
	}
	c.cfg.EnableZExploration = opts.EnableZExploration
	if opts.MinHeight != 0 {
		c.cfg.MinHeight = opts.MinHeight
	}
	if opts.MaxHeight != 0 {
		c.cfg.MaxHeight = opts.MaxHeight
	}
	if opts.BoundaryMin != nil {
		c.cfg.BoundaryMin = opts.BoundaryMin
	}
	if opts.BoundaryMax != nil {
		c.cfg.BoundaryMax = opts.BoundaryMax
	}
}

// PauseExploration transitions Exploring -> Exploring/Paused.
func (c *Controller) PauseExploration() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isExploring {
		return Result{Success: false, Message: "not exploring"}
	}
	c.isPaused = true
	c.emit(Event{Type: EventPaused})
	return Result{Success: true, Message: "paused"}
}

// ResumeExploration transitions Exploring/Paused -> Exploring and kicks a
// tick.
func (c *Controller) ResumeExploration() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isExploring {
		return Result{Success: false, Message: "not exploring"}
	}
	c.isPaused = false
	c.emit(Event{Type: EventResumed})
	if !c.isWaitingForArrival {
		c.planningTickLocked()
	}
	return Result{Success: true, Message: "resumed"}
}

// StopExploration stops the current run. If the vehicle is meaningfully far
// from the start point, it dispatches a return-home mission instead of
// emitting stopped, and a returned event follows once the vehicle gets back
// within ReturnHomeRadius; otherwise it emits stopped immediately.
func (c *Controller) StopExploration(reason string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopExplorationLocked(reason)
	return Result{Success: true, Message: "stopping: " + reason}
}

func (c *Controller) stopExplorationLocked(reason string) {
	wasExploring := c.isExploring
	c.isExploring = false
	c.isPaused = false
	c.isWaitingForArrival = false
	c.isPreparingNextGoal = false

	if !wasExploring && !c.isReturningHome {
		return
	}

	dist := 0.0
	if c.haveStartPos && c.havePos {
		dist = spatial.Hypot(c.currentPos, c.startPos)
	}

	if c.haveStartPos && dist > 1.0 {
		c.isReturningHome = true
		mission := buildReturnHomeMission(c.startPos, c.clock.Now().UnixMilli())
		c.currentMissionID = mission.ID
		if c.bus != nil {
			if err := c.bus.PublishMission(mission); err != nil {
				c.logger.Errorw("failed to publish return-home mission", "error", err)
			}
			c.schedulePublishExecutionLocked(mission.ID, ExecStart)
		}
		return
	}

	c.emit(Event{Type: EventStopped, Reason: reason})
	c.stopBackgroundWorkersLocked()
}

// Reset drives the controller back to Idle: stop, then clear the map,
// frontiers, visited history, and counters.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopExplorationLocked("reset")
	c.isReturningHome = false
	c.grid.Reset()
	c.currentGoal = nil
	c.currentMissionID = ""
	c.goalAttempts = make(map[goalKey]int)
	c.unreachable = nil
	c.visited = nil
	c.lastFrontierCount = 0
	c.sceneBounds = occupancy.SceneBounds{}
	c.lastGoalDirection = nil
	c.lastVelocityCheck = nil
	c.stuckStartTime = nil
	c.stopBackgroundWorkersLocked()
}

func (c *Controller) startBackgroundWorkersLocked() {
	c.stopBackgroundWorkersLocked()
	interval := time.Duration(c.cfg.StatusIntervalSec * float64(time.Second))
	if interval <= 0 {
		interval = 2 * time.Second
	}
	c.workers = newStatusTicker(c, interval)
}

func (c *Controller) stopBackgroundWorkersLocked() {
	if c.workers != nil {
		c.workers.Stop()
		c.workers = nil
	}
}
