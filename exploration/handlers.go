package exploration

import (
	"time"

	"github.com/xs426426/Indoor-Drone-Ground-Station/goalscore"
	"github.com/xs426426/Indoor-Drone-Ground-Station/occupancy"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// HandlePointCloud folds a cloud event into the occupancy grid, derives
// scene bounds on the first sufficiently large cloud, opportunistically
// runs a planning tick on the update-interval throttle, and detects an
// arrival timeout for the currently in-flight goal. Clouds that arrive
// before any position is known are dropped; an empty cloud leaves the map
// unchanged but still drives the timeout check and the planning throttle.
// Nothing is raised.
func (c *Controller) HandlePointCloud(cloud PointCloud) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.havePos {
		return
	}

	points := make([]occupancy.CloudPoint, len(cloud.Points))
	for i, p := range cloud.Points {
		points[i] = occupancy.CloudPoint{X: p.X, Y: p.Y, Z: p.Z, Intensity: p.Intensity}
	}
	c.grid.UpdateFromCloud(points, c.currentPos, c.cfg.CloudStride, c.cfg.CloudHeightWindow)

	if !c.sceneBounds.Valid {
		occPoints := make([]occupancy.CloudPoint, len(points))
		copy(occPoints, points)
		c.sceneBounds = occupancy.DeriveSceneBounds(
			occPoints, c.cfg.SceneBoundsMinPoints, c.cfg.SceneBoundsMargin, 0.5, 2.5, 0.3)
	}

	if !c.isExploring {
		return
	}

	now := c.clock.Now()

	if c.isWaitingForArrival && now.Sub(c.missionStartTime).Seconds() > c.cfg.ArrivalTimeoutSec {
		c.recordFailedAttemptLocked()
	}

	interval := time.Duration(c.cfg.UpdateIntervalMS) * time.Millisecond
	canTick := !c.isPaused && (!c.isWaitingForArrival || c.isPreparingNextGoal)
	if canTick && now.Sub(c.lastUpdateTime) > interval {
		c.lastUpdateTime = now
		c.planningTickLocked()
	}
}

// HandleOdometry updates the vehicle's known position, drives arrival,
// stuck, and return-home detection, and arms the receding-horizon replan
// flag as the vehicle nears its current goal.
func (c *Controller) HandleOdometry(odom Odometry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentPos = odom.Position
	c.havePos = true

	if c.isReturningHome {
		if c.haveStartPos && spatial.Hypot(c.currentPos, c.startPos) < c.cfg.ReturnHomeRadius {
			c.isReturningHome = false
			c.emit(Event{Type: EventReturned})
			c.stopBackgroundWorkersLocked()
		}
		return
	}

	if !c.isWaitingForArrival || c.currentGoal == nil {
		return
	}

	now := c.clock.Now()
	c.checkStuckLocked(now)

	goalPos := spatial.NewVec3(c.currentGoal.X, c.currentGoal.Y, c.currentGoal.Z)
	dist := spatial.Hypot(c.currentPos, goalPos)

	if dist < c.cfg.ArrivalRadius {
		c.visited = append(c.visited, goalscore.VisitedGoal{X: c.currentGoal.X, Y: c.currentGoal.Y})
		delete(c.goalAttempts, keyFor(c.currentGoal.X, c.currentGoal.Y))
		c.isWaitingForArrival = false
		c.isPreparingNextGoal = false
		c.stuckStartTime = nil
		c.lastVelocityCheck = nil
		return
	}

	if dist < c.cfg.ReceHorizonThreshold {
		c.isPreparingNextGoal = true
	}
}

// checkStuckLocked implements velocity-based stuck detection: it tracks
// velocity between consecutive pose samples while awaiting arrival, and
// treats a sustained low-velocity window identically to an arrival
// timeout.
func (c *Controller) checkStuckLocked(now time.Time) {
	if c.lastVelocityCheck != nil {
		dt := now.Sub(c.lastVelocityCheck.at).Seconds()
		if dt > 0 {
			v := spatial.Hypot(c.currentPos, c.lastVelocityCheck.pos) / dt
			if v < c.cfg.StuckVelocityMPS {
				if c.stuckStartTime == nil {
					t := c.lastVelocityCheck.at
					c.stuckStartTime = &t
				}
				if now.Sub(*c.stuckStartTime).Seconds() >= c.cfg.StuckDurationSec {
					c.recordFailedAttemptLocked()
					c.lastVelocityCheck = &velocitySample{pos: c.currentPos, at: now}
					return
				}
			} else {
				c.stuckStartTime = nil
			}
		}
	}
	c.lastVelocityCheck = &velocitySample{pos: c.currentPos, at: now}
}

// recordFailedAttemptLocked increments the attempt counter for the current
// goal, blacklists it once maxAttempts is reached, and clears waiting
// state. Used identically for arrival timeouts and stuck detection.
func (c *Controller) recordFailedAttemptLocked() {
	if c.currentGoal == nil {
		c.isWaitingForArrival = false
		c.isPreparingNextGoal = false
		return
	}
	k := keyFor(c.currentGoal.X, c.currentGoal.Y)
	c.goalAttempts[k]++
	if c.goalAttempts[k] >= c.cfg.MaxAttempts {
		c.unreachable = append(c.unreachable, goalscore.UnreachablePoint{X: c.currentGoal.X, Y: c.currentGoal.Y})
	}
	c.isWaitingForArrival = false
	c.isPreparingNextGoal = false
	c.stuckStartTime = nil
	c.lastVelocityCheck = nil
}

// HandleMissionReceipt is accepted for surrounding systems' benefit; the
// engine's correctness does not depend on it.
func (c *Controller) HandleMissionReceipt(receipt MissionReceipt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Debugw("mission receipt", "missionId", receipt.MissionID, "accepted", receipt.Accepted)
}
