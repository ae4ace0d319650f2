// Package config loads the YAML settings of the voxel world host.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"VoxelStrata/internal/compute"
	"VoxelStrata/internal/generator"
	"VoxelStrata/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "VOXEL_CONFIG"
	EnvSeed       = "VOXEL_SEED"
	EnvWorkers    = "VOXEL_WORKERS"
	EnvLogLevel   = "VOXEL_LOG_LEVEL"

	BackendPool = "pool"
	BackendSync = "sync"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	World   WorldConfig   `yaml:"world"`
	Compute ComputeConfig `yaml:"compute"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Host    HostConfig    `yaml:"host"`
}

type WorldConfig struct {
	Seed          int64         `yaml:"seed"`
	VoxelsPerAxis int           `yaml:"voxels_per_axis"`
	VoxelScale    float32       `yaml:"voxel_scale"`
	Origin        [3]float32    `yaml:"origin"`
	AreaX         float32       `yaml:"area_x"`
	AreaZ         float32       `yaml:"area_z"`
	LayerMargin   float32       `yaml:"layer_margin"`
	Interpolate   bool          `yaml:"interpolate"`
	LOD           world.LOD     `yaml:"lod"`
	Layers        []LayerConfig `yaml:"layers"`
}

type LayerConfig struct {
	Name      string           `yaml:"name"`
	Generator string           `yaml:"generator"`
	Depth     float32          `yaml:"depth"`
	Params    generator.Params `yaml:"params"`
}

type ComputeConfig struct {
	// Backend is "pool" for the worker pool device or "sync" to run kernels
	// inline.
	Backend string `yaml:"backend"`
	Workers int    `yaml:"workers"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type HostConfig struct {
	TickRate int `yaml:"tick_rate"`
	// Duration bounds the run; zero runs until interrupted.
	Duration    time.Duration `yaml:"duration"`
	StatsEvery  time.Duration `yaml:"stats_every"`
	BeamEvery   time.Duration `yaml:"beam_every"`
	ViewerSpeed float32       `yaml:"viewer_speed"`
}

// Default mirrors world.DefaultSettings with a pooled device.
func Default() *Config {
	s := world.DefaultSettings()
	cfg := &Config{
		World: WorldConfig{
			Seed:          s.Seed,
			VoxelsPerAxis: s.VoxelsPerAxis,
			VoxelScale:    s.VoxelScale,
			Origin:        s.Origin,
			AreaX:         s.AreaX,
			AreaZ:         s.AreaZ,
			LayerMargin:   s.LayerMargin,
			Interpolate:   s.Interpolate,
			LOD:           s.LOD,
		},
		Compute: ComputeConfig{Backend: BackendPool, Workers: 4},
		Metrics: MetricsConfig{Enabled: false, Addr: ":2112"},
		Log:     LogConfig{Level: "info"},
		Host: HostConfig{
			TickRate:    30,
			StatsEvery:  time.Second,
			BeamEvery:   2 * time.Second,
			ViewerSpeed: 6,
		},
	}
	for _, l := range s.Layers {
		cfg.World.Layers = append(cfg.World.Layers, LayerConfig{
			Name:      l.Name,
			Generator: l.Generator,
			Depth:     l.Depth,
			Params:    l.Params,
		})
	}
	return cfg
}

// Load reads the YAML file at path over the defaults. An empty path falls
// back to $VOXEL_CONFIG; if that is unset too the defaults are used.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvSeed, v)
		}
		c.World.Seed = seed
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvWorkers, v)
		}
		c.Compute.Workers = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Compute.Backend {
	case BackendPool:
		if c.Compute.Workers < 1 {
			return fmt.Errorf("%w: compute.workers must be >= 1", ErrInvalidConfig)
		}
	case BackendSync:
	default:
		return fmt.Errorf("%w: unknown compute backend %q", ErrInvalidConfig, c.Compute.Backend)
	}
	if c.Host.TickRate < 1 {
		return fmt.Errorf("%w: host.tick_rate must be >= 1", ErrInvalidConfig)
	}
	return c.WorldSettings().Validate()
}

// WorldSettings converts the world section for world.New.
func (c *Config) WorldSettings() world.Settings {
	w := c.World
	s := world.Settings{
		Seed:          w.Seed,
		VoxelsPerAxis: w.VoxelsPerAxis,
		VoxelScale:    w.VoxelScale,
		Origin:        mgl32.Vec3(w.Origin),
		AreaX:         w.AreaX,
		AreaZ:         w.AreaZ,
		LayerMargin:   w.LayerMargin,
		LOD:           w.LOD,
		Interpolate:   w.Interpolate,
	}
	for _, l := range w.Layers {
		s.Layers = append(s.Layers, world.LayerSettings{
			Name:      l.Name,
			Generator: l.Generator,
			Depth:     l.Depth,
			Params:    l.Params,
		})
	}
	return s
}

// NewDevice builds the configured compute backend.
func (c ComputeConfig) NewDevice() compute.Device {
	if c.Backend == BackendSync {
		return compute.NewSyncDevice()
	}
	return compute.NewPoolDevice(c.Workers)
}
