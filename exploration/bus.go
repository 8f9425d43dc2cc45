package exploration

import "github.com/xs426426/Indoor-Drone-Ground-Station/spatial"

// ExecutionAction is the action carried by an execution command.
type ExecutionAction int

// The set of execution actions the controller may issue.
const (
	ExecStart ExecutionAction = iota
	ExecPause
	ExecResume
	ExecStop
	ExecClear
)

// Waypoint is one leg of a mission.
type Waypoint struct {
	Position spatial.Vec3
	Yaw      float64
}

// Mission is the envelope the controller publishes to move the vehicle.
type Mission struct {
	ID    string
	Tasks []Waypoint
}

// ExecutionCommand binds an action to a mission id.
type ExecutionCommand struct {
	ID     string
	Action ExecutionAction
}

// Odometry is a pose sample, accepted either flattened or nested under a
// Pose field by the adapter boundary; the controller only ever
// sees the canonical Position.
type Odometry struct {
	Position spatial.Vec3
	Velocity *spatial.Vec3
}

// PointCloud is a lazy sequence of 3D samples in the vehicle's current
// frame.
type PointCloud struct {
	Points []CloudPoint
}

// CloudPoint mirrors occupancy.CloudPoint at the adapter boundary so
// callers of this package don't need to import occupancy directly.
type CloudPoint struct {
	X, Y, Z   float64
	Intensity float64
}

// MissionReceipt is delivered by surrounding systems; the engine does not
// require it for correctness but a BusAdapter may still
// forward it for status/telemetry purposes.
type MissionReceipt struct {
	MissionID string
	Accepted  bool
}

// BusAdapter is the boundary object through which the controller talks to
// the message-bus transport and the vehicle. It is a collaborator the
// controller references, never owns; the transport itself (MQTT, binary
// envelope encoding) lives outside this module.
type BusAdapter interface {
	PublishMission(mission Mission) error
	PublishExecution(cmd ExecutionCommand) error
}
