package exploration

import (
	"github.com/pkg/errors"

	"github.com/xs426426/Indoor-Drone-Ground-Station/goalscore"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

// Config bundles every tunable of the exploration engine into a single
// strongly typed value with a Validate method, mirroring the component
// configs elsewhere in this codebase.
type Config struct {
	Resolution     float64 `json:"resolution"`
	GridWidth      int     `json:"grid_width"`
	GridHeight     int     `json:"grid_height"`
	RobotRadius    float64 `json:"robot_radius"`
	MaxDistance    float64 `json:"max_distance"`
	MaxDuration    float64 `json:"max_duration_sec"`
	ClusterRadius  float64 `json:"cluster_radius"`
	MinClusterSize int     `json:"min_cluster_size"`

	ExplorationHeight  float64 `json:"exploration_height"`
	EnableZExploration bool    `json:"enable_z_exploration"`
	MinHeight          float64 `json:"min_height"`
	MaxHeight          float64 `json:"max_height"`

	UpdateIntervalMS int `json:"update_interval_ms"`

	BoundaryMin *spatial.Vec3 `json:"boundary_min,omitempty"`
	BoundaryMax *spatial.Vec3 `json:"boundary_max,omitempty"`

	UseROI     bool             `json:"use_roi"`
	ROIPolygon [][2]float64     `json:"roi_polygon,omitempty"`
	Weights    goalscore.Weights `json:"scoring_weights"`

	MaxAttempts          int     `json:"max_attempts"`
	ArrivalTimeoutSec    float64 `json:"arrival_timeout_sec"`
	ArrivalRadius        float64 `json:"arrival_radius"`
	ReturnHomeRadius     float64 `json:"return_home_radius"`
	ReceHorizonThreshold float64 `json:"receding_horizon_threshold"`
	StuckVelocityMPS     float64 `json:"stuck_velocity_mps"`
	StuckDurationSec     float64 `json:"stuck_duration_sec"`
	MissionWaypointStep  float64 `json:"mission_waypoint_step"`
	StartupMissionDelayMS int    `json:"startup_mission_delay_ms"`
	StatusIntervalSec    float64 `json:"status_interval_sec"`
	SeedDiskRadiusCells  int     `json:"seed_disk_radius_cells"`
	CloudStride          int     `json:"cloud_stride"`
	CloudHeightWindow    float64 `json:"cloud_height_window"`
	SceneBoundsMinPoints int     `json:"scene_bounds_min_points"`
	SceneBoundsMargin    float64 `json:"scene_bounds_margin"`
}

// DefaultConfig returns the engine's default tuning, an indoor-platform
// baseline the caller may override via StartOptions or setters.
func DefaultConfig() Config {
	return Config{
		Resolution:            0.2,
		GridWidth:             100,
		GridHeight:            100,
		RobotRadius:           0.3,
		MaxDistance:           20,
		MaxDuration:           600,
		ClusterRadius:         0.6,
		MinClusterSize:        3,
		ExplorationHeight:     1.0,
		EnableZExploration:    false,
		MinHeight:             0.5,
		MaxHeight:             2.0,
		UpdateIntervalMS:      1000,
		UseROI:                false,
		Weights:               Weights{},
		MaxAttempts:           5,
		ArrivalTimeoutSec:     8,
		ArrivalRadius:         0.3,
		ReturnHomeRadius:      0.5,
		ReceHorizonThreshold:  1.5,
		StuckVelocityMPS:      0.1,
		StuckDurationSec:      3,
		MissionWaypointStep:   2.0,
		StartupMissionDelayMS: 500,
		StatusIntervalSec:     2,
		SeedDiskRadiusCells:   15,
		CloudStride:           10,
		CloudHeightWindow:     1.0,
		SceneBoundsMinPoints:  100,
		SceneBoundsMargin:     1.5,
	}
}

// Weights is an alias so callers of this package don't need to also import
// goalscore for the common case of setting scoring weights.
type Weights = goalscore.Weights

// Validate range-checks the configuration, in particular the scoring
// weights, which must stay within [0,1].
func (c *Config) Validate() error {
	if c.Resolution <= 0 {
		return errors.New("resolution must be positive")
	}
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return errors.New("grid dimensions must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("max_attempts must be positive")
	}
	if c.MinHeight > c.MaxHeight {
		return errors.New("min_height must not exceed max_height")
	}
	return validateWeights(c.Weights)
}

func validateWeights(w Weights) error {
	for _, v := range []float64{w.InfoGain, w.Distance, w.Consistency, w.Density, w.History} {
		if v < 0 || v > 1 {
			return errors.New("scoring weights must lie within [0,1]")
		}
	}
	return nil
}

// Clone returns a defensive copy so a caller mutating a Config they still
// hold a reference to cannot reach into engine-owned state.
func (c Config) Clone() Config {
	clone := c
	if c.BoundaryMin != nil {
		v := *c.BoundaryMin
		clone.BoundaryMin = &v
	}
	if c.BoundaryMax != nil {
		v := *c.BoundaryMax
		clone.BoundaryMax = &v
	}
	if c.ROIPolygon != nil {
		clone.ROIPolygon = append([][2]float64(nil), c.ROIPolygon...)
	}
	return clone
}
