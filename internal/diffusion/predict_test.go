package diffusion

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPredict_KnownValues(t *testing.T) {
	tests := []struct {
		name  string
		p     Parameters
		wantR float64
		wantM float64
		wantV float64
	}{
		{"unit a and v", Parameters{A: 1, V: 1, T: 0.3}, 0.7310585786300049, 0.5310585786300048, 0.03444664538852302},
		{"wide boundary slow drift", Parameters{A: 2, V: 0.5, T: 0.1}, 0.7310585786300049, 1.0242343145200195, 0.5511463262163683},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Predict(tt.p)
			if err != nil {
				t.Fatalf("Predict(%+v) error: %v", tt.p, err)
			}
			if !approxEqual(got.R, tt.wantR, 1e-9) {
				t.Errorf("R = %.12f, want %.12f", got.R, tt.wantR)
			}
			if !approxEqual(got.M, tt.wantM, 1e-9) {
				t.Errorf("M = %.12f, want %.12f", got.M, tt.wantM)
			}
			if !approxEqual(got.V, tt.wantV, 1e-9) {
				t.Errorf("V = %.12f, want %.12f", got.V, tt.wantV)
			}
		})
	}
}

func TestPredict_RangeProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5000; i++ {
		p := Parameters{
			A: 0.5 + 1.5*rng.Float64(),
			V: 0.5 + 1.5*rng.Float64(),
			T: 0.1 + 0.4*rng.Float64(),
		}
		got, err := Predict(p)
		if err != nil {
			t.Fatalf("Predict(%+v) error: %v", p, err)
		}
		if !(got.R > 0 && got.R < 1) {
			t.Errorf("Predict(%+v).R = %v, want in (0, 1)", p, got.R)
		}
		if !(got.M > p.T) {
			t.Errorf("Predict(%+v).M = %v, want > t", p, got.M)
		}
		if !(got.V > 0) {
			t.Errorf("Predict(%+v).V = %v, want > 0", p, got.V)
		}
	}
}

func TestPredict_Idempotent(t *testing.T) {
	p := Parameters{A: 1.37, V: 0.83, T: 0.21}
	first, err := Predict(p)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	second, err := Predict(p)
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if math.Float64bits(first.R) != math.Float64bits(second.R) ||
		math.Float64bits(first.M) != math.Float64bits(second.M) ||
		math.Float64bits(first.V) != math.Float64bits(second.V) {
		t.Errorf("Predict not bit-identical: %+v vs %+v", first, second)
	}
}

func TestPredict_Boundaries(t *testing.T) {
	accepted := []Parameters{
		{A: 0.5, V: 1, T: 0.3},
		{A: 2, V: 1, T: 0.3},
		{A: 1, V: 0.5, T: 0.3},
		{A: 1, V: 2, T: 0.3},
		{A: 1, V: 1, T: 0.1},
		{A: 1, V: 1, T: 0.5},
		{A: 0.5, V: 0.5, T: 0.1},
		{A: 2, V: 2, T: 0.5},
	}
	for _, p := range accepted {
		if _, err := Predict(p); err != nil {
			t.Errorf("Predict(%+v) unexpected error: %v", p, err)
		}
	}
}

func TestPredict_DomainErrors(t *testing.T) {
	tests := []struct {
		name      string
		p         Parameters
		wantParam string
		wantKind  Kind
		wantIs    error
	}{
		{"a below range", Parameters{A: 0.49, V: 1, T: 0.3}, "a", KindRange, ErrOutOfRange},
		{"a above range", Parameters{A: 2.01, V: 1, T: 0.3}, "a", KindRange, ErrOutOfRange},
		{"v below range", Parameters{A: 1, V: 0.4, T: 0.3}, "v", KindRange, ErrOutOfRange},
		{"v above range", Parameters{A: 1, V: 2.5, T: 0.3}, "v", KindRange, ErrOutOfRange},
		{"t below range", Parameters{A: 1, V: 1, T: 0.05}, "t", KindRange, ErrOutOfRange},
		{"t above range", Parameters{A: 1, V: 1, T: 0.51}, "t", KindRange, ErrOutOfRange},
		{"a is NaN", Parameters{A: math.NaN(), V: 1, T: 0.3}, "a", KindType, ErrNotNumeric},
		{"v is +Inf", Parameters{A: 1, V: math.Inf(1), T: 0.3}, "v", KindType, ErrNotNumeric},
		{"t is -Inf", Parameters{A: 1, V: 1, T: math.Inf(-1)}, "t", KindType, ErrNotNumeric},
		{"a reported before v", Parameters{A: 3, V: 3, T: 0.3}, "a", KindRange, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Predict(tt.p)
			if err == nil {
				t.Fatalf("Predict(%+v) expected error", tt.p)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
			var de *DomainError
			if !errors.As(err, &de) {
				t.Fatalf("error %v is not a *DomainError", err)
			}
			if de.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", de.Param, tt.wantParam)
			}
			if de.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", de.Kind, tt.wantKind)
			}
			if de.Min >= de.Max {
				t.Errorf("range [%v, %v] is empty", de.Min, de.Max)
			}
		})
	}
}

func TestDomainError_Message(t *testing.T) {
	_, err := Predict(Parameters{A: 2.01, V: 1, T: 0.3})
	want := "Boundary separation 'a' must be a number between 0.5 and 2, got 2.01"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}
