package points

// FieldOption configures a Field during creation.
// Use functional options to customize Field behavior.
//
// Example:
//
//	// Default field: 10000 particles, seed 1
//	f := points.NewField(0)
//
//	// Reproducible field with a fixed seed
//	f := points.NewField(5000, points.WithSeed(42))
type FieldOption func(*fieldOptions)

// fieldOptions holds optional configuration for Field creation.
type fieldOptions struct {
	seed      int64
	workers   int
	particles []Particle
}

// defaultFieldOptions returns the default field options.
func defaultFieldOptions() fieldOptions {
	return fieldOptions{
		seed:    1,
		workers: 0, // GOMAXPROCS when the pool is created
	}
}

// WithSeed sets the seed for the deterministic particle initialization.
// Two fields created with the same count and seed start identical.
//
// Example:
//
//	a := points.NewField(1000, points.WithSeed(7))
//	b := points.NewField(1000, points.WithSeed(7))
//	// a and b hold the same particles
func WithSeed(seed int64) FieldOption {
	return func(o *fieldOptions) {
		o.seed = seed
	}
}

// WithWorkers sets the worker count for parallel stepping.
// Zero or negative means GOMAXPROCS. One disables parallel stepping
// entirely; the field then never creates a pool.
func WithWorkers(n int) FieldOption {
	return func(o *fieldOptions) {
		o.workers = n
	}
}

// WithParticles seeds the field with an explicit particle slice instead of
// random initialization. The slice is copied; the count argument of NewField
// is ignored.
//
// Example:
//
//	// A field with one particle at the origin, at rest
//	f := points.NewField(0, points.WithParticles([]points.Particle{{}}))
func WithParticles(ps []Particle) FieldOption {
	return func(o *fieldOptions) {
		o.particles = ps
	}
}
