package exploration

import (
	"time"

	"github.com/xs426426/Indoor-Drone-Ground-Station/occupancy"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// EventType tags the payload carried by an Event, replacing the ad-hoc
// publish/subscribe the source system used for outward signals with an
// explicit, typed channel.
type EventType string

// The set of signals the controller emits.
const (
	EventStarted  EventType = "started"
	EventPaused   EventType = "paused"
	EventResumed  EventType = "resumed"
	EventStopped  EventType = "stopped"
	EventReturned EventType = "returned"
	EventStatus   EventType = "status"
)

// Event is the tagged union emitted on the controller's output sink.
type Event struct {
	Type      EventType
	SessionID string
	Timestamp time.Time
	Reason    string
	Status    Status
}

// Status is the telemetry snapshot the control surface's getStatus()
// exposes, and what an emitted EventStatus carries.
type Status struct {
	IsExploring       bool
	IsPaused          bool
	IsReturningHome   bool
	FrontiersCount    int
	ExploredArea      float64
	ExploredPercentage float64
	ElapsedTime       time.Duration
	DistanceFromStart float64
	CurrentGoal       *Goal
	MapStats          occupancy.Stats
	GoalAttempts      map[string]int
}

// Goal mirrors goalscore.Goal at the public boundary.
type Goal struct {
	X, Y, Z   float64
	Density   float64
	PathClear bool
}

// StartOptions are the caller-supplied overrides for startExploration.
type StartOptions struct {
	StartPosition      *spatial.Vec3
	MaxDistance        float64
	MaxDuration        float64
	ExplorationHeight  float64
	EnableZExploration bool
	MinHeight          float64
	MaxHeight          float64
	BoundaryMin        *spatial.Vec3
	BoundaryMax        *spatial.Vec3
}

// Result is the {success, message} shape every control-surface call
// returns.
type Result struct {
	Success bool
	Message string
}
