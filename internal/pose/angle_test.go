package pose

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

const angleTolerance = 1e-9

func TestAngle(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2, p3 Point2D
		want       float64
	}{
		{
			name: "right angle",
			p1:   Point2D{X: 1, Y: 0},
			p2:   Point2D{X: 0, Y: 0},
			p3:   Point2D{X: 0, Y: 1},
			want: 90,
		},
		{
			name: "straight line",
			p1:   Point2D{X: 0, Y: 0},
			p2:   Point2D{X: 0, Y: 1},
			p3:   Point2D{X: 0, Y: 2},
			want: 180,
		},
		{
			name: "folded back onto itself",
			p1:   Point2D{X: 1, Y: 1},
			p2:   Point2D{X: 0, Y: 0},
			p3:   Point2D{X: 2, Y: 2},
			want: 0,
		},
		{
			name: "reflex result is reflected below 180",
			p1:   Point2D{X: 1, Y: -0.5},
			p2:   Point2D{X: 0, Y: 0},
			p3:   Point2D{X: -1, Y: 0.1},
			want: 159.14554196042164,
		},
		{
			name: "forty five degrees",
			p1:   Point2D{X: 0.5, Y: 0.5},
			p2:   Point2D{X: 0.5, Y: 0.7},
			p3:   Point2D{X: 0.7, Y: 0.5},
			want: 45,
		},
		{
			name: "all points coincide",
			p1:   Point2D{X: 0.3, Y: 0.3},
			p2:   Point2D{X: 0.3, Y: 0.3},
			p3:   Point2D{X: 0.3, Y: 0.3},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Angle(tt.p1, tt.p2, tt.p3), 1e-6)
		})
	}
}

func TestAngle_RangeAndSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	point := func() Point2D { return Point2D{X: rng.Float64(), Y: rng.Float64()} }

	for i := 0; i < 10000; i++ {
		p1, p2, p3 := point(), point(), point()

		a := Angle(p1, p2, p3)
		if a < 0 || a > 180 {
			t.Fatalf("Angle(%v, %v, %v) = %f, outside [0, 180]", p1, p2, p3, a)
		}

		b := Angle(p3, p2, p1)
		if !assert.InDelta(t, a, b, angleTolerance, "swapping outer points changed the angle") {
			return
		}
	}
}

func TestAngle_Deterministic(t *testing.T) {
	p1, p2, p3 := Point2D{X: 0.1, Y: 0.9}, Point2D{X: 0.4, Y: 0.4}, Point2D{X: 0.8, Y: 0.7}
	assert.Equal(t, Angle(p1, p2, p3), Angle(p1, p2, p3))
}
