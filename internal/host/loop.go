// Package host drives a world from a fixed-step loop with pluggable
// behaviours, the way a game engine's update loop would.
package host

import (
	"context"
	"time"

	"VoxelStrata/internal/logger"
	"VoxelStrata/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Ticker is the world as seen by the loop.
type Ticker interface {
	Tick(elapsed time.Duration, viewer mgl32.Vec3) world.TickReport
}

// Viewer supplies the position used for level of detail.
type Viewer interface {
	Position() mgl32.Vec3
}

type Loop struct {
	world      Ticker
	viewer     Viewer
	step       time.Duration
	Behaviours *BehaviourManager
	// OnTick, when set, receives every tick report.
	OnTick func(world.TickReport)

	frames uint64
}

// NewLoop builds a loop stepping tickRate times per second.
func NewLoop(w Ticker, viewer Viewer, tickRate int) *Loop {
	if tickRate < 1 {
		tickRate = 1
	}
	return &Loop{
		world:      w,
		viewer:     viewer,
		step:       time.Second / time.Duration(tickRate),
		Behaviours: NewBehaviourManager(),
	}
}

func (l *Loop) StepDuration() time.Duration { return l.step }

func (l *Loop) Frames() uint64 { return l.frames }

// Step runs one fixed step: behaviours first, then the world tick.
func (l *Loop) Step() world.TickReport {
	l.Behaviours.UpdateAll(l.step)
	r := l.world.Tick(l.step, l.viewer.Position())
	l.frames++
	if l.OnTick != nil {
		l.OnTick(r)
	}
	return r
}

// Run steps the loop in real time until ctx is done. Late wakeups are not
// caught up; the world always advances by one fixed step per iteration.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.step)
	defer ticker.Stop()

	logger.Log.Info("Host loop started", zap.Duration("step", l.step))
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Host loop stopped", zap.Uint64("frames", l.frames))
			return nil
		case <-ticker.C:
			l.Step()
		}
	}
}
