package points

// Constants produced by the vertex transform. Every invocation writes exactly
// these values for point size and color, independent of the input position.
const (
	// PointSize is the screen-space sprite size in pixels. The rasterizer
	// honors it only when the host pipeline runs point-primitive topology
	// with size-override active; otherwise it is silently ignored.
	PointSize float32 = 2.0
)

// SpriteColor is the constant color interpolant emitted at output slot 0,
// consumed by the fragment stage.
var SpriteColor = [3]float32{1, 1, 1}

// Vertex is the full output record of the vertex transform for one
// invocation: the homogeneous clip-space position, the point-sprite size
// control value, and the color interpolant.
type Vertex struct {
	// Clip is the clip-space position (x, y, z, w). The transform always
	// produces z = 0 and w = 1.
	Clip [4]float32

	// Size is the point-sprite size control value, always PointSize.
	Size float32

	// Color is the interpolant at output slot 0, always SpriteColor.
	Color [3]float32
}

// TransformVertex is the vertex stage of the point-sprite pipeline.
//
// It maps a 2D position to the clip-space position (p.X, p.Y, 0, 1), the
// constant point size and the constant white color. The function is pure and
// total: no branches, no state, one execution path for every input including
// non-finite positions (NaN and Inf pass through to the clip x/y components
// per IEEE-754; size and color stay exact constants).
//
// The wgsl rendition of this function lives in internal/gpu/shaders and must
// stay in agreement; vertex_test.go pins both to the same scenarios.
func TransformVertex(p Vec2) Vertex {
	return Vertex{
		Clip:  [4]float32{p.X, p.Y, 0, 1},
		Size:  PointSize,
		Color: SpriteColor,
	}
}

// TransformBatch applies the vertex transform to every position in ps and
// returns the outputs in input order.
//
// Invocations are independent: no output depends on any position other than
// its own, so the batch may be evaluated in any order or concurrently with
// identical results. A nil or empty batch returns an empty slice.
func TransformBatch(ps []Vec2) []Vertex {
	out := make([]Vertex, len(ps))
	for i, p := range ps {
		out[i] = TransformVertex(p)
	}
	return out
}
