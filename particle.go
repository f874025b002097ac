package points

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/gogpu/points/internal/parallel"
)

// ParticleStride is the packed size of one particle in bytes.
// Must match the Particle struct in update.wgsl: two vec2<f32>.
const ParticleStride = 16

// Particle is one simulated point sprite: a clip-space position and a
// velocity in clip units per second. The field layout matches the GPU
// storage buffer, so a []Particle packs directly into the vertex/storage
// buffer with stride ParticleStride.
type Particle struct {
	Pos Vec2
	Vel Vec2
}

// DefaultCount is the particle count used when NewField is given a
// non-positive count.
const DefaultCount = 10000

// stepParallelThreshold is the field size above which Step uses the worker
// pool. Below it the per-span dispatch overhead exceeds the integration work.
const stepParallelThreshold = 4096

// Field is a set of particles bouncing inside the clip-space square [-1, 1].
//
// Particles never interact: each one integrates independently, so steps may
// run across the worker pool in any span order with identical results. A
// Field is not safe for concurrent mutation; callers serialize Step against
// renders that read the same field.
type Field struct {
	particles []Particle
	pool      *parallel.WorkerPool
	workers   int
}

// NewField creates a particle field.
//
// Each particle starts at a position uniform in [-1, 1] on both axes with a
// velocity uniform in [-0.1, 0.1], from a deterministic seed (see WithSeed).
// A non-positive count means DefaultCount. Call Close when done to release
// the worker pool.
func NewField(count int, opts ...FieldOption) *Field {
	if count <= 0 {
		count = DefaultCount
	}

	o := defaultFieldOptions()
	for _, opt := range opts {
		opt(&o)
	}

	f := &Field{workers: o.workers}

	if o.particles != nil {
		f.particles = make([]Particle, len(o.particles))
		copy(f.particles, o.particles)
	} else {
		rng := rand.New(rand.NewSource(o.seed))
		f.particles = make([]Particle, count)
		for i := range f.particles {
			f.particles[i] = Particle{
				Pos: Vec2{
					X: rng.Float32()*2 - 1,
					Y: rng.Float32()*2 - 1,
				},
				Vel: Vec2{
					X: (rng.Float32()*2 - 1) * 0.1,
					Y: (rng.Float32()*2 - 1) * 0.1,
				},
			}
		}
	}

	return f
}

// Count returns the number of particles in the field.
func (f *Field) Count() int { return len(f.particles) }

// Particles returns the live particle slice. The slice aliases the field's
// state: renderers read it, Step mutates it.
func (f *Field) Particles() []Particle { return f.particles }

// Positions returns a snapshot of the particle positions, the input records
// of the vertex transform.
func (f *Field) Positions() []Vec2 {
	ps := make([]Vec2, len(f.particles))
	for i := range f.particles {
		ps[i] = f.particles[i].Pos
	}
	return ps
}

// Step advances the simulation by dt seconds: each particle moves by
// vel*dt and reflects off the edges of the [-1, 1] square (position folded
// back inside, velocity component negated).
//
// Fields above stepParallelThreshold particles integrate in parallel spans;
// span boundaries never change the outcome because particles are
// independent.
func (f *Field) Step(dt float32) {
	n := len(f.particles)
	if n == 0 {
		return
	}

	if n >= stepParallelThreshold && f.workers != 1 {
		f.ensurePool()
		f.pool.ForSpans(n, func(start, end int) {
			stepSpan(f.particles[start:end], dt)
		})
		return
	}

	stepSpan(f.particles, dt)
}

// stepSpan integrates one contiguous span of particles.
// Must match the integration in update.wgsl.
func stepSpan(ps []Particle, dt float32) {
	for i := range ps {
		p := &ps[i]
		p.Pos.X += p.Vel.X * dt
		p.Pos.Y += p.Vel.Y * dt

		if p.Pos.X > 1 {
			p.Pos.X = 2 - p.Pos.X
			p.Vel.X = -p.Vel.X
		} else if p.Pos.X < -1 {
			p.Pos.X = -2 - p.Pos.X
			p.Vel.X = -p.Vel.X
		}
		if p.Pos.Y > 1 {
			p.Pos.Y = 2 - p.Pos.Y
			p.Vel.Y = -p.Vel.Y
		} else if p.Pos.Y < -1 {
			p.Pos.Y = -2 - p.Pos.Y
			p.Vel.Y = -p.Vel.Y
		}
	}
}

// ensurePool lazily creates the worker pool for parallel stepping.
func (f *Field) ensurePool() {
	if f.pool == nil {
		f.pool = parallel.NewWorkerPool(f.workers)
	}
}

// Close releases the worker pool. Safe to call multiple times and on fields
// that never stepped in parallel.
func (f *Field) Close() {
	if f.pool != nil {
		f.pool.Close()
		f.pool = nil
	}
}

// Pack serializes the particles into the GPU buffer layout: little-endian
// float32 pos.x, pos.y, vel.x, vel.y per particle, stride ParticleStride.
func (f *Field) Pack() []byte {
	return PackParticles(f.particles)
}

// Unpack replaces the field state from a packed buffer, the inverse of Pack.
// Used to absorb GPU-updated particle state after a compute step.
func (f *Field) Unpack(data []byte) error {
	if len(data) != len(f.particles)*ParticleStride {
		return fmt.Errorf("points: unpack %d bytes into %d particles (want %d bytes)",
			len(data), len(f.particles), len(f.particles)*ParticleStride)
	}
	for i := range f.particles {
		off := i * ParticleStride
		f.particles[i] = Particle{
			Pos: Vec2{
				X: math.Float32frombits(binary.LittleEndian.Uint32(data[off+0 : off+4])),
				Y: math.Float32frombits(binary.LittleEndian.Uint32(data[off+4 : off+8])),
			},
			Vel: Vec2{
				X: math.Float32frombits(binary.LittleEndian.Uint32(data[off+8 : off+12])),
				Y: math.Float32frombits(binary.LittleEndian.Uint32(data[off+12 : off+16])),
			},
		}
	}
	return nil
}

// PackParticles serializes a particle slice into the GPU buffer layout.
func PackParticles(ps []Particle) []byte {
	data := make([]byte, len(ps)*ParticleStride)
	for i, p := range ps {
		off := i * ParticleStride
		binary.LittleEndian.PutUint32(data[off+0:], math.Float32bits(p.Pos.X))
		binary.LittleEndian.PutUint32(data[off+4:], math.Float32bits(p.Pos.Y))
		binary.LittleEndian.PutUint32(data[off+8:], math.Float32bits(p.Vel.X))
		binary.LittleEndian.PutUint32(data[off+12:], math.Float32bits(p.Vel.Y))
	}
	return data
}
