// Package generator turns layer parameters and a seed into a density
// function. Variants register themselves by name; layers pick one from
// settings and never depend on a concrete type.
package generator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrUnknownGenerator = errors.New("generator: unknown generator")

// Generator produces a density for a world position. Positive is solid.
// Implementations must be safe for concurrent use once constructed.
type Generator interface {
	Name() string
	Density(pos mgl32.Vec3) float32
}

// Constructor does the one-time setup for a layer. It must be deterministic
// in seed.
type Constructor func(seed int64, p Params) (Generator, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

func Register(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = constructor
}

// Available lists registered generator names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named generator after validating p.
func New(name string, seed int64, p Params) (Generator, error) {
	registryMu.RLock()
	constructor, exists := registry[name]
	registryMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, name)
	}

	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return constructor(seed, p)
}

func init() {
	Register(LayeredGroundName, NewLayeredGround)
	Register(DestructibleZoneName, NewDestructibleZone)
	Register(StarterCavernName, NewStarterCavern)
}
