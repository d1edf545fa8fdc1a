package diffusion

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestObserve_Validation(t *testing.T) {
	pred := Predicted{R: 0.7, M: 0.5, V: 0.03}
	src := rand.NewPCG(1, 1)

	tests := []struct {
		name   string
		pred   Predicted
		n      int
		src    rand.Source
		wantIs error
	}{
		{"nil source", pred, 10, nil, ErrNilSource},
		{"n of one", pred, 1, src, ErrSampleSize},
		{"n of zero", pred, 0, src, ErrSampleSize},
		{"negative n", pred, -5, src, ErrSampleSize},
		{"accuracy above one", Predicted{R: 1.2, M: 0.5, V: 0.03}, 10, src, ErrInvalidPrediction},
		{"accuracy NaN", Predicted{R: math.NaN(), M: 0.5, V: 0.03}, 10, src, ErrInvalidPrediction},
		{"zero variance", Predicted{R: 0.7, M: 0.5, V: 0}, 10, src, ErrInvalidPrediction},
		{"negative variance", Predicted{R: 0.7, M: 0.5, V: -1}, 10, src, ErrInvalidPrediction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Observe(tt.pred, tt.n, tt.src)
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("Observe error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}

func TestObserve_Shape(t *testing.T) {
	pred, err := Predict(Parameters{A: 1.2, V: 0.9, T: 0.25})
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	src := rand.NewPCG(42, 7)

	for _, n := range []int{2, 10, 40, 4000} {
		for i := 0; i < 200; i++ {
			o, err := Observe(pred, n, src)
			if err != nil {
				t.Fatalf("Observe(n=%d) error: %v", n, err)
			}
			if o.N != n {
				t.Errorf("N = %d, want %d", o.N, n)
			}
			if o.T < 0 || o.T > n {
				t.Errorf("T = %d, want in [0, %d]", o.T, n)
			}
			if o.R != float64(o.T)/float64(n) {
				t.Errorf("R = %v, want T/N = %v", o.R, float64(o.T)/float64(n))
			}
			if !(o.V > 0) {
				t.Errorf("V = %v, want > 0", o.V)
			}
		}
	}
}

func TestObserve_Moments(t *testing.T) {
	pred := Predicted{R: 0.7, M: 0.5, V: 0.03}
	src := rand.NewPCG(2024, 10)

	const draws = 4000
	const n = 100
	var sumR, sumM, sumV float64
	for i := 0; i < draws; i++ {
		o, err := Observe(pred, n, src)
		if err != nil {
			t.Fatalf("Observe error: %v", err)
		}
		sumR += o.R
		sumM += o.M
		sumV += o.V
	}

	if got := sumR / draws; !approxEqual(got, pred.R, 0.005) {
		t.Errorf("mean R = %v, want ~%v", got, pred.R)
	}
	if got := sumM / draws; !approxEqual(got, pred.M, 0.002) {
		t.Errorf("mean M = %v, want ~%v", got, pred.M)
	}
	if got := sumV / draws; !approxEqual(got, pred.V, 0.001) {
		t.Errorf("mean V = %v, want ~%v", got, pred.V)
	}
}

func TestObserve_SeededReproducible(t *testing.T) {
	pred := Predicted{R: 0.8, M: 0.6, V: 0.05}

	first, err := Observe(pred, 40, rand.NewPCG(9, 9))
	if err != nil {
		t.Fatalf("Observe error: %v", err)
	}
	second, err := Observe(pred, 40, rand.NewPCG(9, 9))
	if err != nil {
		t.Fatalf("Observe error: %v", err)
	}
	if first != second {
		t.Errorf("same seed produced %+v and %+v", first, second)
	}
}

func TestNoiseless(t *testing.T) {
	pred := Predicted{R: 0.731, M: 0.53, V: 0.034}
	o := Noiseless(pred, 1000)
	if o.T != 731 {
		t.Errorf("T = %d, want 731", o.T)
	}
	if o.R != pred.R || o.M != pred.M || o.V != pred.V {
		t.Errorf("Noiseless(%+v) = %+v, statistics should pass through", pred, o)
	}
}
