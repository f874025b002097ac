package points

import (
	"math"
	"testing"
)

func TestVec2Creation(t *testing.T) {
	tests := []struct {
		name string
		x, y float32
	}{
		{"zero", 0, 0},
		{"positive", 3, 4},
		{"negative", -1, -2},
		{"mixed", -5, 10},
		{"fractional", 1.5, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := V2(tt.x, tt.y)
			if v.X != tt.x || v.Y != tt.y {
				t.Errorf("V2(%v, %v) = %v", tt.x, tt.y, v)
			}
		})
	}
}

func TestVec2Arithmetic(t *testing.T) {
	v := V2(3, 4)
	w := V2(1, -2)

	if got := v.Add(w); got != V2(4, 2) {
		t.Errorf("Add = %v, want (4, 2)", got)
	}
	if got := v.Sub(w); got != V2(2, 6) {
		t.Errorf("Sub = %v, want (2, 6)", got)
	}
	if got := v.Mul(2); got != V2(6, 8) {
		t.Errorf("Mul = %v, want (6, 8)", got)
	}
	if got := v.Neg(); got != V2(-3, -4) {
		t.Errorf("Neg = %v, want (-3, -4)", got)
	}
}

func TestVec2Dot(t *testing.T) {
	v := V2(3, 4)
	w := V2(1, -2)
	if got := v.Dot(w); got != -5 {
		t.Errorf("Dot = %v, want -5", got)
	}
	// Perpendicular vectors have zero dot product.
	if got := V2(1, 0).Dot(V2(0, 1)); got != 0 {
		t.Errorf("perpendicular Dot = %v, want 0", got)
	}
}

func TestVec2Length(t *testing.T) {
	v := V2(3, 4)
	if got := v.Length(); got != 5 {
		t.Errorf("Length = %v, want 5", got)
	}
	if got := v.LengthSq(); got != 25 {
		t.Errorf("LengthSq = %v, want 25", got)
	}
	if got := V2(0, 0).Length(); got != 0 {
		t.Errorf("zero Length = %v, want 0", got)
	}
}

func TestVec2LengthSmallValues(t *testing.T) {
	// Length computes through float64, so denormal-range inputs keep
	// precision instead of underflowing at the square.
	v := V2(1e-20, 0)
	if got := v.Length(); math.Abs(float64(got)-1e-20) > 1e-26 {
		t.Errorf("Length = %v, want 1e-20", got)
	}
}
