// Package main runs a standalone demo of the exploration engine against a
// synthetic pose/cloud replay and a logging-only bus adapter, useful for
// exercising the state machine without a live vehicle or message bus.
package main

import (
	"context"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	goutils "go.viam.com/utils"

	"github.com/xs426426/Indoor-Drone-Ground-Station/exploration"
	"github.com/xs426426/Indoor-Drone-Ground-Station/spatial"
)

var logger = golog.NewDevelopmentLogger("groundstation")

// Arguments for the command.
type Arguments struct {
	TicksTotal int `flag:"ticks,default=40,usage=number of replay ticks to run"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := mainWithArgs(ctx, os.Args[1:]); err != nil {
		logger.Fatal(err)
	}
}

func mainWithArgs(ctx context.Context, args []string) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.TicksTotal <= 0 {
		argsParsed.TicksTotal = 40
	}

	bus := &loggingBus{logger: logger}
	cfg := exploration.DefaultConfig()
	cfg.Weights = exploration.Weights{InfoGain: 1, Distance: 1, Consistency: 0.4, Density: 0.6, History: 1}

	controller, err := exploration.New(cfg, bus, clock.New(), logger)
	if err != nil {
		return err
	}

	workers := goutils.NewStoppableWorkers(context.Background())
	workers.Add(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-controller.Events():
				logger.Infow("event", "type", evt.Type, "reason", evt.Reason)
			}
		}
	})
	defer workers.Stop()

	start := spatial.NewVec3(0, 0, 1)
	res := controller.StartExploration(exploration.StartOptions{StartPosition: &start})
	if !res.Success {
		logger.Errorw("failed to start exploration", "message", res.Message)
		return nil
	}

	replaySyntheticFlight(ctx, controller, argsParsed.TicksTotal)

	status := controller.GetStatus()
	logger.Infow("final status",
		"exploredArea", status.ExploredArea,
		"exploredPercentage", status.ExploredPercentage,
		"frontiersCount", status.FrontiersCount,
	)
	return nil
}

// replaySyntheticFlight drives the controller with a spiral pose trajectory
// and a lidar-style point cloud sampled along an expanding circle, standing
// in for a real vehicle and sensor feed.
func replaySyntheticFlight(ctx context.Context, controller *exploration.Controller, ticks int) {
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		angle := float64(i) * 0.3
		radius := 1.0 + float64(i)*0.1
		pos := spatial.NewVec3(radius*math.Cos(angle), radius*math.Sin(angle), 1)
		controller.HandleOdometry(exploration.Odometry{Position: pos})
		controller.HandlePointCloud(exploration.PointCloud{Points: syntheticScan(pos, radius+2)})

		time.Sleep(20 * time.Millisecond)
	}
}

func syntheticScan(center spatial.Vec3, ringRadius float64) []exploration.CloudPoint {
	const samples = 36
	points := make([]exploration.CloudPoint, 0, samples)
	for i := 0; i < samples; i++ {
		a := 2 * math.Pi * float64(i) / samples
		points = append(points, exploration.CloudPoint{
			X: center.X + ringRadius*math.Cos(a),
			Y: center.Y + ringRadius*math.Sin(a),
			Z: center.Z,
		})
	}
	return points
}

// loggingBus publishes missions and execution commands to the log only, in
// lieu of a real bus transport.
type loggingBus struct {
	logger golog.Logger
}

func (b *loggingBus) PublishMission(m exploration.Mission) error {
	b.logger.Infow("publish mission", "id", m.ID, "waypoints", len(m.Tasks))
	return nil
}

func (b *loggingBus) PublishExecution(cmd exploration.ExecutionCommand) error {
	b.logger.Infow("publish execution", "id", cmd.ID, "action", cmd.Action)
	return nil
}
