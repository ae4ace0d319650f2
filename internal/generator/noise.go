package generator

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// ImprovedPerlinNoise implements the improved Perlin noise from GPU Gems Chapter 5
// Based on Ken Perlin's 2002 improvements: better interpolation and gradient distribution
type ImprovedPerlinNoise struct {
	perm [512]int // Permutation table (doubled for wrapping)
}

// The 12 cube edge-center gradients from GPU Gems Chapter 5
var gradients = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// NewImprovedPerlinNoise creates a new improved Perlin noise generator.
// The permutation depends only on seed.
func NewImprovedPerlinNoise(seed int64) *ImprovedPerlinNoise {
	noise := &ImprovedPerlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	for i := 0; i < 256; i++ {
		noise.perm[i] = i
	}

	// Fisher-Yates
	for i := 255; i > 0; i-- {
		j := rng.Intn(i + 1)
		noise.perm[i], noise.perm[j] = noise.perm[j], noise.perm[i]
	}

	for i := 0; i < 256; i++ {
		noise.perm[256+i] = noise.perm[i]
	}

	return noise
}

// fade is 6t^5 - 15t^4 + 10t^3 (removes second-derivative discontinuities)
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash int, x, y, z float64) float64 {
	g := gradients[hash%12]
	return g[0]*x + g[1]*y + g[2]*z
}

// Noise3D generates 3D Perlin noise in roughly [-1, 1].
func (noise *ImprovedPerlinNoise) Noise3D(x, y, z float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)

	u := fade(x)
	v := fade(y)
	w := fade(z)

	p := &noise.perm
	A := p[X] + Y
	AA := p[A] + Z
	AB := p[A+1] + Z
	B := p[X+1] + Y
	BA := p[B] + Z
	BB := p[B+1] + Z

	return lerp(w,
		lerp(v,
			lerp(u, grad(p[AA], x, y, z), grad(p[BA], x-1, y, z)),
			lerp(u, grad(p[AB], x, y-1, z), grad(p[BB], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p[AA+1], x, y, z-1), grad(p[BA+1], x-1, y, z-1)),
			lerp(u, grad(p[AB+1], x, y-1, z-1), grad(p[BB+1], x-1, y-1, z-1))))
}

// Fractal sums octaves of Noise3D and normalizes the result to [-1, 1].
func (noise *ImprovedPerlinNoise) Fractal(x, y, z float64, octaves int, persistence, lacunarity float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	value := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxValue := 0.0

	for i := 0; i < octaves; i++ {
		value += noise.Noise3D(x*frequency, y*frequency, z*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	return value / maxValue
}

// surfaceNoise wraps go-perlin for the 2D height and placement fields.
type surfaceNoise struct {
	p *perlin.Perlin
}

func newSurfaceNoise(seed int64, p Params) surfaceNoise {
	alpha := 1 / p.Persistence // go-perlin divides amplitude by alpha per octave
	beta := p.Lacunarity
	return surfaceNoise{p: perlin.NewPerlin(alpha, beta, int32(p.Octaves), seed)}
}

// At returns 2D noise in roughly [-1, 1].
func (s surfaceNoise) At(x, z float64) float64 {
	return s.p.Noise2D(x, z)
}

func clampUnit(v float64) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return float32(v)
}

// splitMix64 derives independent sub-seeds from one seed.
func splitMix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// SubSeed mixes a salt into seed deterministically.
func SubSeed(seed int64, salt uint64) int64 {
	return int64(splitMix64(uint64(seed) ^ splitMix64(salt)))
}
