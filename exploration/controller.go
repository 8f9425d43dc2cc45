// Package exploration implements the autonomous exploration engine: the
// state machine that drives a continuous frontier-planning loop against a
// streaming occupancy grid, publishes waypoint missions over a BusAdapter,
// and guarantees progress through stuck detection, unreachable-goal
// blacklisting, and an autonomous return-to-home.
package exploration

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/xs426426/Indoor-Drone-Ground-Station/goalscore"
	"github.com/xs426426/Indoor-Drone-Ground-Station/occupancy"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// Errors the engine recognizes; all are recovered locally and
// never returned out of an event handler.
var (
	ErrAlreadyExploring   = errors.New("exploration already in progress")
	ErrNoKnownPosition    = errors.New("no known vehicle position")
	ErrGoalUnreachable    = errors.New("goal exceeded attempt budget")
	ErrStuckDetected      = errors.New("vehicle stuck while awaiting arrival")
	ErrNoFrontiers        = errors.New("no frontiers remain")
	ErrNoValidFrontier    = errors.New("no candidate frontier survived filtering")
	ErrBudgetExceeded     = errors.New("exploration budget exceeded")
)

type goalKey struct{ X, Y int }

func keyFor(x, y float64) goalKey {
	return goalKey{X: int(math.Round(x * 10)), Y: int(math.Round(y * 10))}
}

func (k goalKey) String() string {
	return fmt.Sprintf("%.1f,%.1f", float64(k.X)/10, float64(k.Y)/10)
}

// velocitySample is lastVelocityCheck: a position/time pair.
type velocitySample struct {
	pos spatial.Vec3
	at  time.Time
}

// Controller is the exploration state machine. It uniquely owns the
// occupancy grid and all bookkeeping; the BusAdapter is a referenced
// collaborator, never owned.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	grid   *occupancy.Grid
	bus    BusAdapter
	clock  clock.Clock
	logger golog.Logger

	events  chan Event
	workers *goutils.StoppableWorkers

	sessionID string

	isExploring         bool
	isPaused            bool
	isReturningHome     bool
	isWaitingForArrival bool
	isPreparingNextGoal bool

	startPos         spatial.Vec3
	haveStartPos     bool
	currentPos       spatial.Vec3
	havePos          bool
	currentGoal      *goalscore.Goal
	currentMissionID string

	startTime        time.Time
	missionStartTime time.Time
	lastUpdateTime   time.Time

	lastGoalDirection *spatial.Vec3
	lastVelocityCheck *velocitySample
	stuckStartTime    *time.Time

	goalAttempts      map[goalKey]int
	unreachable       []goalscore.UnreachablePoint
	visited           []goalscore.VisitedGoal
	sceneBounds       occupancy.SceneBounds
	roi               *spatial.ROI
	lastFrontierCount int
}

// New builds an idle Controller. The clock is injectable so tests can drive
// timeouts and stuck detection deterministically with clock.NewMock().
func New(cfg Config, bus BusAdapter, clk clock.Clock, logger golog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid exploration config")
	}
	if logger == nil {
		logger = golog.NewDevelopmentLogger("exploration")
	}
	if clk == nil {
		clk = clock.New()
	}
	c := &Controller{
		cfg:          cfg,
		bus:          bus,
		clock:        clk,
		logger:       logger,
		events:       make(chan Event, 32),
		goalAttempts: make(map[goalKey]int),
	}
	c.grid = occupancy.New(cfg.GridWidth, cfg.GridHeight, cfg.Resolution, cfg.RobotRadius)
	if cfg.UseROI && len(cfg.ROIPolygon) >= 3 {
		c.roi = spatial.NewROI(cfg.ROIPolygon)
	}
	return c, nil
}

// Events returns the controller's output sink. Consume it continuously;
// it is buffered but not unbounded.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// GetExplorationSessionID returns the id stamped on every event emitted
// since the last startExploration, for external correlation.
func (c *Controller) GetExplorationSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Controller) emit(evt Event) {
	evt.SessionID = c.sessionID
	evt.Timestamp = c.clock.Now()
	select {
	case c.events <- evt:
	default:
		c.logger.Warnw("event channel full, dropping event", "type", evt.Type)
	}
}

func (c *Controller) emitStatusLocked(reason string) {
	c.emit(Event{Type: EventStatus, Reason: reason, Status: c.statusLocked()})
}

func (c *Controller) statusLocked() Status {
	var goal *Goal
	if c.currentGoal != nil {
		goal = &Goal{X: c.currentGoal.X, Y: c.currentGoal.Y, Z: c.currentGoal.Z, Density: c.currentGoal.Density, PathClear: c.currentGoal.PathClear}
	}

	elapsed := time.Duration(0)
	if !c.startTime.IsZero() {
		elapsed = c.clock.Now().Sub(c.startTime)
	}

	dist := 0.0
	if c.haveStartPos && c.havePos {
		dist = spatial.Hypot(c.currentPos, c.startPos)
	}

	attempts := make(map[string]int, len(c.goalAttempts))
	for k, v := range c.goalAttempts {
		attempts[k.String()] = v
	}

	return Status{
		IsExploring:        c.isExploring,
		IsPaused:           c.isPaused,
		IsReturningHome:    c.isReturningHome,
		FrontiersCount:     c.lastFrontierCount,
		ExploredArea:       c.grid.ExploredArea(),
		ExploredPercentage: c.grid.ExploredPercentage(),
		ElapsedTime:        elapsed,
		DistanceFromStart:  dist,
		CurrentGoal:        goal,
		MapStats:           c.grid.Stats(),
		GoalAttempts:       attempts,
	}
}

// GetStatus returns a telemetry snapshot for the control surface.
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// GetMapData returns an exported snapshot of the occupancy grid.
func (c *Controller) GetMapData() occupancy.Export {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Export()
}

// SetROI installs a new region-of-interest polygon and enables ROI
// filtering.
func (c *Controller) SetROI(vertices [][2]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	roi := spatial.NewROI(vertices)
	if roi == nil {
		return errors.New("roi polygon needs at least 3 vertices")
	}
	c.roi = roi
	c.cfg.ROIPolygon = append([][2]float64(nil), vertices...)
	c.cfg.UseROI = true
	return nil
}

// ClearROI disables ROI filtering.
func (c *Controller) ClearROI() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roi = nil
	c.cfg.UseROI = false
	c.cfg.ROIPolygon = nil
}

// SetScoringWeights validates and installs new scoring weights.
func (c *Controller) SetScoringWeights(w Weights) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := validateWeights(w); err != nil {
		return err
	}
	c.cfg.Weights = w
	return nil
}

// GetScoringWeights returns the active scoring weights.
func (c *Controller) GetScoringWeights() Weights {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Weights
}

// newSessionID is split out so tests can observe id generation without
// depending on wall-clock/random ordering elsewhere.
func newSessionID() string {
	return uuid.NewString()
}
