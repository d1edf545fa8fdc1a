package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nvandessel/ezdiff/internal/diffusion"
)

func TestDrawParameters_WithinRange(t *testing.T) {
	src := NewSource(5)
	for i := 0; i < 1000; i++ {
		p := DrawParameters(src)
		if err := p.Validate(); err != nil {
			t.Fatalf("DrawParameters produced invalid %+v: %v", p, err)
		}
	}
}

func TestDrawParameters_Seeded(t *testing.T) {
	if DrawParameters(NewSource(3)) != DrawParameters(NewSource(3)) {
		t.Error("same seed should draw the same parameters")
	}
	if DrawParameters(NewSource(3)) == DrawParameters(NewSource(4)) {
		t.Error("different seeds should draw different parameters")
	}
}

func TestSweep(t *testing.T) {
	p := diffusion.Parameters{A: 1, V: 1, T: 0.3}
	sizes := []int{10, 40, 400}

	var seen []int
	report, err := Sweep(context.Background(), p, sizes, NewSource(1), func(r Result) {
		seen = append(seen, r.N)
	})
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if report.Params != p {
		t.Errorf("Params = %+v, want %+v", report.Params, p)
	}
	if len(report.Results) != len(sizes) {
		t.Fatalf("got %d results, want %d", len(report.Results), len(sizes))
	}
	for i, n := range sizes {
		if report.Results[i].N != n {
			t.Errorf("Results[%d].N = %d, want %d", i, report.Results[i].N, n)
		}
		if seen[i] != n {
			t.Errorf("callback %d saw N=%d, want %d", i, seen[i], n)
		}
	}
}

func TestSweep_Errors(t *testing.T) {
	p := diffusion.Parameters{A: 1, V: 1, T: 0.3}

	t.Run("no sizes", func(t *testing.T) {
		if _, err := Sweep(context.Background(), p, nil, NewSource(1), nil); err == nil {
			t.Error("expected error for empty sizes")
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		bad := diffusion.Parameters{A: 1, V: 1, T: 0.9}
		_, err := Sweep(context.Background(), bad, []int{10}, NewSource(1), nil)
		if !errors.Is(err, diffusion.ErrOutOfRange) {
			t.Errorf("error = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("bad sample size keeps earlier results", func(t *testing.T) {
		report, err := Sweep(context.Background(), p, []int{10, 1}, NewSource(1), nil)
		if !errors.Is(err, diffusion.ErrSampleSize) {
			t.Errorf("error = %v, want ErrSampleSize", err)
		}
		if len(report.Results) != 1 {
			t.Errorf("got %d partial results, want 1", len(report.Results))
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Sweep(ctx, p, []int{10}, NewSource(1), nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want string
	}{
		{"negative bias", Result{N: 10, Bias: -0.25, BiasSquared: 0.0625}, "When N is 10, b = -0.25, b^2 = 0.0625"},
		{"zero bias", Result{N: 4000, Bias: 0, BiasSquared: 0}, "When N is 4000, b = 0, b^2 = 0"},
		{"NaN bias", Result{N: 40, Bias: math.NaN(), BiasSquared: math.NaN()}, "When N is 40, b = NaN, b^2 = NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResult(tt.r); got != tt.want {
				t.Errorf("FormatResult = %q, want %q", got, tt.want)
			}
		})
	}
}
