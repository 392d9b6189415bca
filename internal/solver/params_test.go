package solver

import (
	"errors"
	"math"
	"testing"
)

func TestStabilityRatioBound(t *testing.T) {
	alphas := []float64{1e-6, 1e-3, 0.01, 0.1, 0.2, 1, 7.5, 100, 1e4}
	dxs := []float64{1e-5, 1e-3, 0.01, 0.1, 0.5, 1, 3, 250}
	for _, alpha := range alphas {
		for _, dx := range dxs {
			p := Params{Size: 10, Steps: 1, Alpha: alpha, Dx: dx}
			if r := p.StabilityRatio(); r > StabilityLimit {
				t.Errorf("alpha=%g dx=%g: ratio %g > %g", alpha, dx, r, StabilityLimit)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("alpha=%g dx=%g: %v", alpha, dx, err)
			}
		}
	}
}

func TestDt(t *testing.T) {
	p := Params{Size: 5, Steps: 1, Alpha: 0.1, Dx: 1.0}
	if math.Abs(p.Dt()-2.4) > 1e-12 {
		t.Fatalf("dt = %v, want 2.4", p.Dt())
	}
	if math.Abs(p.StabilityRatio()-0.24) > 1e-12 {
		t.Fatalf("ratio = %v, want 0.24", p.StabilityRatio())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		ok   bool
	}{
		{"valid", Params{Size: 100, Steps: 200, Alpha: 0.2, Dx: 0.01}, true},
		{"zero steps", Params{Size: 3, Steps: 0, Alpha: 0.2, Dx: 0.01}, true},
		{"size one", Params{Size: 1, Steps: 5, Alpha: 0.2, Dx: 0.01}, true},
		{"zero size", Params{Size: 0, Steps: 5, Alpha: 0.2, Dx: 0.01}, false},
		{"negative size", Params{Size: -4, Steps: 5, Alpha: 0.2, Dx: 0.01}, false},
		{"negative steps", Params{Size: 5, Steps: -1, Alpha: 0.2, Dx: 0.01}, false},
		{"zero alpha", Params{Size: 5, Steps: 1, Alpha: 0, Dx: 0.01}, false},
		{"negative alpha", Params{Size: 5, Steps: 1, Alpha: -0.2, Dx: 0.01}, false},
		{"nan alpha", Params{Size: 5, Steps: 1, Alpha: math.NaN(), Dx: 0.01}, false},
		{"inf alpha", Params{Size: 5, Steps: 1, Alpha: math.Inf(1), Dx: 0.01}, false},
		{"zero dx", Params{Size: 5, Steps: 1, Alpha: 0.2, Dx: 0}, false},
		{"negative dx", Params{Size: 5, Steps: 1, Alpha: 0.2, Dx: -1}, false},
		{"nan dx", Params{Size: 5, Steps: 1, Alpha: 0.2, Dx: math.NaN()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestNewRejectsBeforeAllocating(t *testing.T) {
	_, err := New(Params{Size: 1 << 20, Steps: 1, Alpha: -1, Dx: 1}, Options{})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}

	_, err = New(Params{Size: 8, Steps: 1, Alpha: 1, Dx: 1}, Options{
		Schedule: Blocked,
		Blocking: Blocking{RowBlock: 0, ColBlock: 4, TimeBlock: 1},
	})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("zero row block: err = %v", err)
	}

	_, err = New(Params{Size: 8, Steps: 1, Alpha: 1, Dx: 1}, Options{Schedule: Schedule(9)})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("unknown schedule: err = %v", err)
	}
}

func TestParseSchedule(t *testing.T) {
	for in, want := range map[string]Schedule{
		"direct":   Direct,
		"Blocked":  Blocked,
		"tiled":    Blocked,
		"parallel": Parallel,
	} {
		got, err := ParseSchedule(in)
		if err != nil || got != want {
			t.Errorf("ParseSchedule(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSchedule("wavefront"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown schedule err = %v", err)
	}
}
