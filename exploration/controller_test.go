package exploration

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// fakeBus records every mission and execution command published by a
// Controller under test.
type fakeBus struct {
	mu         sync.Mutex
	missions   []Mission
	executions []ExecutionCommand
}

func (b *fakeBus) PublishMission(m Mission) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.missions = append(b.missions, m)
	return nil
}

func (b *fakeBus) PublishExecution(cmd ExecutionCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.executions = append(b.executions, cmd)
	return nil
}

func (b *fakeBus) missionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.missions)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Weights = Weights{InfoGain: 1, Distance: 1, Consistency: 0.5, Density: 0.5, History: 1}
	return cfg
}

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeBus, *clock.Mock) {
	t.Helper()
	bus := &fakeBus{}
	mockClock := clock.NewMock()
	c, err := New(cfg, bus, mockClock, nil)
	test.That(t, err, test.ShouldBeNil)
	return c, bus, mockClock
}

// TestStartExplorationSeedsFreeDisk covers S1: starting exploration seeds a
// free disk of SeedDiskRadiusCells around the start position, so explored
// area is immediately approximately pi*(radiusCells*resolution)^2.
func TestStartExplorationSeedsFreeDisk(t *testing.T) {
	cfg := testConfig()
	c, _, _ := newTestController(t, cfg)

	start := spatial.NewVec3(0, 0, 1)
	res := c.StartExploration(StartOptions{StartPosition: &start})
	test.That(t, res.Success, test.ShouldBeTrue)

	status := c.GetStatus()
	expected := math.Pi * math.Pow(float64(cfg.SeedDiskRadiusCells)*cfg.Resolution, 2)
	test.That(t, math.Abs(status.ExploredArea-expected) < expected*0.1, test.ShouldBeTrue)
}

// TestStartExplorationRequiresKnownPosition covers the guard that rejects a
// start with no known vehicle position.
func TestStartExplorationRequiresKnownPosition(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())
	res := c.StartExploration(StartOptions{})
	test.That(t, res.Success, test.ShouldBeFalse)
}

// TestStartExplorationRejectsDoubleStart covers the already-exploring guard.
func TestStartExplorationRejectsDoubleStart(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())
	start := spatial.NewVec3(0, 0, 1)
	test.That(t, c.StartExploration(StartOptions{StartPosition: &start}).Success, test.ShouldBeTrue)
	res := c.StartExploration(StartOptions{StartPosition: &start})
	test.That(t, res.Success, test.ShouldBeFalse)
}

// driveFirstTick advances the mock clock past the startup mission delay so
// the scheduled first planning tick fires, and returns the resulting
// status.
func driveFirstTick(c *Controller, mockClock *clock.Mock, cfg Config) Status {
	mockClock.Add(time.Duration(cfg.StartupMissionDelayMS+10) * time.Millisecond)
	return c.GetStatus()
}

// TestFirstPlanningTickPublishesAMission covers the first planning tick: once
// the free disk is seeded, its boundary is immediately a frontier, and the
// first scheduled tick should find a valid goal and publish a mission.
func TestFirstPlanningTickPublishesAMission(t *testing.T) {
	cfg := testConfig()
	c, bus, mockClock := newTestController(t, cfg)

	start := spatial.NewVec3(0, 0, 1)
	test.That(t, c.StartExploration(StartOptions{StartPosition: &start}).Success, test.ShouldBeTrue)

	status := driveFirstTick(c, mockClock, cfg)
	test.That(t, status.CurrentGoal != nil, test.ShouldBeTrue)
	test.That(t, bus.missionCount() > 0, test.ShouldBeTrue)
}

// TestArrivalClearsWaitingState covers S3: once the vehicle's odometry
// reports a position within arrivalRadius of the current goal, the
// controller records the arrival (clearing any attempt count on that goal)
// and actually drops isWaitingForArrival, which is checked here by its real
// effect: a subsequent cloud event is now free to replan and publish a new
// mission instead of staying parked waiting for the old goal.
func TestArrivalClearsWaitingState(t *testing.T) {
	cfg := testConfig()
	c, bus, mockClock := newTestController(t, cfg)

	start := spatial.NewVec3(0, 0, 1)
	test.That(t, c.StartExploration(StartOptions{StartPosition: &start}).Success, test.ShouldBeTrue)
	status := driveFirstTick(c, mockClock, cfg)
	test.That(t, status.CurrentGoal != nil, test.ShouldBeTrue)
	goal := status.CurrentGoal
	missionsAtGoal := bus.missionCount()

	// Seed a prior failed attempt directly on the bookkeeping map so arrival
	// has something concrete to clear.
	key := keyFor(goal.X, goal.Y)
	c.mu.Lock()
	c.goalAttempts[key] = 2
	c.mu.Unlock()

	// Before arrival, advancing past the update interval alone must not
	// trigger a replan: the controller is still waiting on the outstanding
	// goal and not within the receding-horizon threshold.
	mockClock.Add(time.Duration(cfg.UpdateIntervalMS+10) * time.Millisecond)
	c.HandlePointCloud(PointCloud{})
	test.That(t, bus.missionCount(), test.ShouldEqual, missionsAtGoal)
	c.mu.Lock()
	test.That(t, c.isWaitingForArrival, test.ShouldBeTrue)
	c.mu.Unlock()

	c.HandleOdometry(Odometry{Position: spatial.NewVec3(goal.X, goal.Y, goal.Z)})

	c.mu.Lock()
	test.That(t, c.isWaitingForArrival, test.ShouldBeFalse)
	_, stillTracked := c.goalAttempts[key]
	c.mu.Unlock()
	test.That(t, stillTracked, test.ShouldBeFalse)

	// isWaitingForArrival is now false, so the next cloud event (once the
	// interval has elapsed again) is free to replan and publish a fresh
	// mission for a new goal.
	mockClock.Add(time.Duration(cfg.UpdateIntervalMS+10) * time.Millisecond)
	c.HandlePointCloud(PointCloud{})
	test.That(t, bus.missionCount() > missionsAtGoal, test.ShouldBeTrue)
}

// TestArrivalTimeoutEventuallyBlacklistsGoal covers S4: repeated arrival
// timeouts on the same goal accumulate attempts until the goal is
// blacklisted.
func TestArrivalTimeoutEventuallyBlacklistsGoal(t *testing.T) {
	cfg := testConfig()
	c, _, mockClock := newTestController(t, cfg)

	start := spatial.NewVec3(0, 0, 1)
	test.That(t, c.StartExploration(StartOptions{StartPosition: &start}).Success, test.ShouldBeTrue)
	status := driveFirstTick(c, mockClock, cfg)
	test.That(t, status.CurrentGoal != nil, test.ShouldBeTrue)

	maxAttemptsSeen := 0
	for i := 0; i < cfg.MaxAttempts+1; i++ {
		mockClock.Add(time.Duration(cfg.ArrivalTimeoutSec*float64(time.Second)) + time.Second)
		c.HandlePointCloud(PointCloud{})
		st := c.GetStatus()
		for _, attempts := range st.GoalAttempts {
			if attempts > maxAttemptsSeen {
				maxAttemptsSeen = attempts
			}
		}
	}
	test.That(t, maxAttemptsSeen >= cfg.MaxAttempts, test.ShouldBeTrue)
}

// TestStuckDetectionRecordsFailedAttempt covers S5: a vehicle reporting the
// same position repeatedly while awaiting arrival is treated as stuck after
// stuckDurationSec and counted as a failed attempt.
func TestStuckDetectionRecordsFailedAttempt(t *testing.T) {
	cfg := testConfig()
	c, _, mockClock := newTestController(t, cfg)

	start := spatial.NewVec3(0, 0, 1)
	test.That(t, c.StartExploration(StartOptions{StartPosition: &start}).Success, test.ShouldBeTrue)
	status := driveFirstTick(c, mockClock, cfg)
	test.That(t, status.CurrentGoal != nil, test.ShouldBeTrue)

	stuckPos := spatial.NewVec3(0, 0, 1)
	c.HandleOdometry(Odometry{Position: stuckPos})
	mockClock.Add(time.Duration(cfg.StuckDurationSec*float64(time.Second)) + time.Second)
	c.HandleOdometry(Odometry{Position: stuckPos})

	st := c.GetStatus()
	total := 0
	for _, attempts := range st.GoalAttempts {
		total += attempts
	}
	test.That(t, total >= 1, test.ShouldBeTrue)
}

// TestROIFiltersOutAllFrontiersStopsExploration covers S6: an ROI that
// contains none of the seeded free disk leaves no valid frontier, and the
// controller stops itself rather than hang waiting for a goal.
func TestROIFiltersOutAllFrontiersStopsExploration(t *testing.T) {
	cfg := testConfig()
	cfg.UseROI = true
	cfg.ROIPolygon = [][2]float64{{40, 40}, {41, 40}, {41, 41}, {40, 41}}
	c, _, mockClock := newTestController(t, cfg)

	start := spatial.NewVec3(0, 0, 1)
	test.That(t, c.StartExploration(StartOptions{StartPosition: &start}).Success, test.ShouldBeTrue)

	_ = driveFirstTick(c, mockClock, cfg)
	st := c.GetStatus()
	test.That(t, st.IsExploring, test.ShouldBeFalse)
}

// TestStopExplorationFarFromStartTriggersReturnHome covers S7: stopping
// while meaningfully far from the start position dispatches a return-home
// mission, and reaching the start clears the returning-home state.
func TestStopExplorationFarFromStartTriggersReturnHome(t *testing.T) {
	cfg := testConfig()
	c, bus, _ := newTestController(t, cfg)

	start := spatial.NewVec3(0, 0, 1)
	test.That(t, c.StartExploration(StartOptions{StartPosition: &start}).Success, test.ShouldBeTrue)

	c.HandleOdometry(Odometry{Position: spatial.NewVec3(5, 5, 1)})
	c.StopExploration("user_requested")

	st := c.GetStatus()
	test.That(t, st.IsReturningHome, test.ShouldBeTrue)
	test.That(t, bus.missionCount() > 0, test.ShouldBeTrue)

	c.HandleOdometry(Odometry{Position: start})
	st = c.GetStatus()
	test.That(t, st.IsReturningHome, test.ShouldBeFalse)
}

// TestEventsChannelReceivesStarted confirms the Started event is emitted
// synchronously on StartExploration.
func TestEventsChannelReceivesStarted(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())
	start := spatial.NewVec3(0, 0, 1)
	c.StartExploration(StartOptions{StartPosition: &start})

	select {
	case evt := <-c.Events():
		test.That(t, evt.Type, test.ShouldEqual, EventStarted)
	default:
		t.Fatal("expected a buffered Started event")
	}
}

// TestSetScoringWeightsValidates confirms out-of-range weights are rejected.
func TestSetScoringWeightsValidates(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())
	err := c.SetScoringWeights(Weights{InfoGain: 2})
	test.That(t, err, test.ShouldNotBeNil)
}
