// Command voxelworld runs the layered voxel world headless: a scripted
// viewer walks the top layer, periodic beams carve tunnels, and chunk
// activity is logged and exported as Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VoxelStrata/internal/config"
	"VoxelStrata/internal/host"
	"VoxelStrata/internal/logger"
	"VoxelStrata/internal/metrics"
	"VoxelStrata/internal/world"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the YAML config (default: $VOXEL_CONFIG or built-in defaults)")
		exportDir  = flag.String("export", "", "directory to write every updated chunk mesh to (empty to disable)")
		duration   = flag.Duration("duration", 0, "stop after this long (overrides host.duration)")
	)
	flag.Parse()

	if err := run(*configPath, *exportDir, *duration); err != nil {
		fmt.Fprintln(os.Stderr, "voxelworld:", err)
		os.Exit(1)
	}
}

func run(configPath, exportDir string, duration time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.InitWithLevel(cfg.Log.Level)
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.Metrics.Enabled {
		srv := metrics.Serve(cfg.Metrics.Addr, reg)
		defer srv.Close()
	}

	device := cfg.Compute.NewDevice()
	defer device.Close()

	settings := cfg.WorldSettings()
	w, err := world.New(settings, device, world.WithMetrics(m), world.WithLogger(logger.Log.Named("world")))
	if err != nil {
		return fmt.Errorf("create world: %w", err)
	}
	defer w.Close()

	top := w.Layers()[0]
	viewer := newWalker(top, cfg.Host.ViewerSpeed)
	loop := host.NewLoop(w, viewer, cfg.Host.TickRate)
	loop.Behaviours.Add(viewer)
	loop.Behaviours.Add(newBeamShooter(w, viewer, cfg.Host.BeamEvery, settings.VoxelScale))

	stats := newStatsReporter(cfg.Host.StatsEvery)
	var exporter *meshExporter
	if exportDir != "" {
		if exporter, err = newMeshExporter(exportDir); err != nil {
			return err
		}
	}
	loop.OnTick = func(r world.TickReport) {
		stats.observe(r, loop.StepDuration())
		if exporter != nil {
			exporter.write(r.MeshUpdates)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration == 0 {
		duration = cfg.Host.Duration
	}
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	logger.Log.Info("Voxel world running",
		zap.Int64("seed", settings.Seed),
		zap.Int("layers", len(w.Layers())),
		zap.String("backend", cfg.Compute.Backend),
		zap.Int("tick_rate", cfg.Host.TickRate))
	return loop.Run(ctx)
}
