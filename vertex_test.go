package points

import (
	"math"
	"math/rand"
	"testing"
)

func TestTransformVertexClipPosition(t *testing.T) {
	tests := []struct {
		name string
		in   Vec2
		want [4]float32
	}{
		{"scenario A", V2(0.5, -0.5), [4]float32{0.5, -0.5, 0, 1}},
		{"scenario B origin", V2(0, 0), [4]float32{0, 0, 0, 1}},
		{"unit x", V2(1, 0), [4]float32{1, 0, 0, 1}},
		{"unit y", V2(0, 1), [4]float32{0, 1, 0, 1}},
		{"outside clip volume", V2(3.5, -7.25), [4]float32{3.5, -7.25, 0, 1}},
		{"tiny", V2(1e-30, -1e-30), [4]float32{1e-30, -1e-30, 0, 1}},
		{"huge", V2(1e30, -1e30), [4]float32{1e30, -1e30, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformVertex(tt.in)
			if got.Clip != tt.want {
				t.Errorf("clip = %v, want %v", got.Clip, tt.want)
			}
		})
	}
}

func TestTransformVertexConstantOutputs(t *testing.T) {
	// Size and color are exact constants regardless of input.
	inputs := []Vec2{
		V2(0, 0),
		V2(0.5, -0.5),
		V2(-1, 1),
		V2(12345, -67890),
		V2(float32(math.Inf(1)), float32(math.Inf(-1))),
		V2(float32(math.NaN()), 0),
	}

	for _, in := range inputs {
		v := TransformVertex(in)
		if v.Size != 2.0 {
			t.Errorf("TransformVertex(%v).Size = %v, want exactly 2.0", in, v.Size)
		}
		if v.Color != [3]float32{1, 1, 1} {
			t.Errorf("TransformVertex(%v).Color = %v, want (1,1,1)", in, v.Color)
		}
	}
}

func TestTransformVertexDepthAndWeight(t *testing.T) {
	// Third clip component is always 0, fourth always 1.
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		in := V2(rng.Float32()*200-100, rng.Float32()*200-100)
		v := TransformVertex(in)
		if v.Clip[2] != 0 {
			t.Fatalf("TransformVertex(%v).Clip[2] = %v, want 0", in, v.Clip[2])
		}
		if v.Clip[3] != 1 {
			t.Fatalf("TransformVertex(%v).Clip[3] = %v, want 1", in, v.Clip[3])
		}
	}
}

func TestTransformVertexNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	v := TransformVertex(V2(nan, inf))

	// NaN and Inf pass through to clip x/y untouched.
	if !math.IsNaN(float64(v.Clip[0])) {
		t.Errorf("clip x = %v, want NaN", v.Clip[0])
	}
	if !math.IsInf(float64(v.Clip[1]), 1) {
		t.Errorf("clip y = %v, want +Inf", v.Clip[1])
	}

	// Depth, weight, size and color are still exact.
	if v.Clip[2] != 0 || v.Clip[3] != 1 {
		t.Errorf("clip z/w = %v/%v, want 0/1", v.Clip[2], v.Clip[3])
	}
	if v.Size != 2.0 {
		t.Errorf("size = %v, want 2.0", v.Size)
	}
	if v.Color != [3]float32{1, 1, 1} {
		t.Errorf("color = %v, want (1,1,1)", v.Color)
	}
}

func TestTransformVertexIdempotent(t *testing.T) {
	// Two invocations with the same input are bit-identical.
	inputs := []Vec2{
		V2(0.5, -0.5),
		V2(0.1+0.2, -0.3), // value with no exact binary representation
		V2(-0.0, 0.0),     // negative zero must round-trip
	}

	for _, in := range inputs {
		a := TransformVertex(in)
		b := TransformVertex(in)
		for i := range a.Clip {
			if math.Float32bits(a.Clip[i]) != math.Float32bits(b.Clip[i]) {
				t.Errorf("clip[%d] bits differ for %v: %#x vs %#x",
					i, in, math.Float32bits(a.Clip[i]), math.Float32bits(b.Clip[i]))
			}
		}
		if math.Float32bits(a.Size) != math.Float32bits(b.Size) {
			t.Errorf("size bits differ for %v", in)
		}
	}
}

func TestTransformVertexNegativeZero(t *testing.T) {
	// -0.0 is a valid finite input; it passes through preserving its sign bit.
	negZero := float32(math.Copysign(0, -1))
	v := TransformVertex(V2(negZero, 0))
	if math.Float32bits(v.Clip[0]) != math.Float32bits(negZero) {
		t.Errorf("clip x bits = %#x, want %#x (negative zero preserved)",
			math.Float32bits(v.Clip[0]), math.Float32bits(negZero))
	}
}

func TestTransformBatchThreeVertices(t *testing.T) {
	// Scenario C: a batch of 3 vertices produces 3 independent outputs.
	batch := []Vec2{V2(0, 0), V2(1, 0), V2(0, 1)}

	out := TransformBatch(batch)
	if len(out) != 3 {
		t.Fatalf("batch produced %d outputs, want 3", len(out))
	}

	wantClips := [][4]float32{
		{0, 0, 0, 1},
		{1, 0, 0, 1},
		{0, 1, 0, 1},
	}
	for i, v := range out {
		if v.Clip != wantClips[i] {
			t.Errorf("out[%d].Clip = %v, want %v", i, v.Clip, wantClips[i])
		}
		if v.Size != 2.0 || v.Color != [3]float32{1, 1, 1} {
			t.Errorf("out[%d] constants = (%v, %v), want (2.0, (1,1,1))", i, v.Size, v.Color)
		}
	}

	// Each batch element equals the same vertex transformed in isolation:
	// no cross-vertex interaction, no shared accumulator.
	for i, p := range batch {
		if out[i] != TransformVertex(p) {
			t.Errorf("out[%d] differs from isolated invocation", i)
		}
	}
}

func TestTransformBatchOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	batch := make([]Vec2, 256)
	for i := range batch {
		batch[i] = V2(rng.Float32()*2-1, rng.Float32()*2-1)
	}

	forward := TransformBatch(batch)

	// Evaluate in reverse order; each result must still match its own input.
	reversed := make([]Vec2, len(batch))
	for i, p := range batch {
		reversed[len(batch)-1-i] = p
	}
	backward := TransformBatch(reversed)

	for i := range batch {
		if forward[i] != backward[len(batch)-1-i] {
			t.Fatalf("vertex %d result depends on evaluation order", i)
		}
	}
}

func TestTransformBatchEmpty(t *testing.T) {
	if out := TransformBatch(nil); len(out) != 0 {
		t.Errorf("nil batch produced %d outputs, want 0", len(out))
	}
	if out := TransformBatch([]Vec2{}); len(out) != 0 {
		t.Errorf("empty batch produced %d outputs, want 0", len(out))
	}
}

func TestTransformBatchConcurrent(t *testing.T) {
	// Concurrent invocations over the same inputs observe no shared state.
	batch := make([]Vec2, 1024)
	rng := rand.New(rand.NewSource(99))
	for i := range batch {
		batch[i] = V2(rng.Float32()*2-1, rng.Float32()*2-1)
	}
	want := TransformBatch(batch)

	done := make(chan []Vertex, 8)
	for g := 0; g < 8; g++ {
		go func() {
			done <- TransformBatch(batch)
		}()
	}
	for g := 0; g < 8; g++ {
		got := <-done
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("goroutine result differs at vertex %d", i)
			}
		}
	}
}

func BenchmarkTransformVertex(b *testing.B) {
	p := V2(0.5, -0.5)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = TransformVertex(p)
	}
}

func BenchmarkTransformBatch10k(b *testing.B) {
	batch := make([]Vec2, 10000)
	rng := rand.New(rand.NewSource(1))
	for i := range batch {
		batch[i] = V2(rng.Float32()*2-1, rng.Float32()*2-1)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = TransformBatch(batch)
	}
}
