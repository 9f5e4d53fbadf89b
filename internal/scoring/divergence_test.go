package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestDivergenceIdentity(t *testing.T) {
	tests := []struct {
		name string
		dist []float64
	}{
		{"simple", []float64{1, 2, 3, 4}},
		{"normalized", []float64{0.25, 0.25, 0.25, 0.25}},
		{"with zero bin", []float64{1, 0, 1}},
		{"single bin", []float64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Divergence(tt.dist, tt.dist)
			if err != nil {
				t.Fatalf("Divergence failed: %v", err)
			}
			if d != 0 {
				t.Errorf("expected 0 for identical distributions, got %v", d)
			}
		})
	}
}

func TestDivergenceScaleInvariance(t *testing.T) {
	pred := []float64{1, 2, 3, 4}
	truth := []float64{4, 3, 2, 1}

	base, err := Divergence(pred, truth)
	if err != nil {
		t.Fatalf("Divergence failed: %v", err)
	}

	for _, k := range []float64{0.5, 2, 100, 1e-3} {
		scaled := make([]float64, len(pred))
		for i, v := range pred {
			scaled[i] = k * v
		}
		d, err := Divergence(scaled, truth)
		if err != nil {
			t.Fatalf("Divergence(k=%v) failed: %v", k, err)
		}
		if math.Abs(d-base) > 1e-9 {
			t.Errorf("k=%v: got %v, want %v (scaling must not change the score)", k, d, base)
		}
	}
}

func TestDivergenceZeroTruthBinSkipped(t *testing.T) {
	// Truth has no mass in bin 1; the prediction's mass there must not
	// contribute.
	d, err := Divergence([]float64{1, 1, 1}, []float64{1, 0, 1})
	if err != nil {
		t.Fatalf("Divergence failed: %v", err)
	}
	if math.IsInf(d, 1) {
		t.Fatal("expected finite score")
	}
	if d <= 0 {
		t.Errorf("expected positive score, got %v", d)
	}
	// q = [1/2, 0, 1/2] vs p = [1/3, 1/3, 1/3] → ln(3/2)
	want := math.Log(1.5)
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("got %v, want %v", d, want)
	}
}

func TestDivergenceInfinitePenalty(t *testing.T) {
	// The prediction rules out bin 0, which the truth says occurred.
	d, err := Divergence([]float64{0, 1, 1}, []float64{1, 1, 1})
	if err != nil {
		t.Fatalf("Divergence failed: %v", err)
	}
	if !math.IsInf(d, 1) {
		t.Errorf("expected +Inf, got %v", d)
	}
}

func TestDivergenceUniformFallback(t *testing.T) {
	// An all-zero vector normalizes to uniform rather than erroring.
	t.Run("zero prediction", func(t *testing.T) {
		d, err := Divergence([]float64{0, 0, 0}, []float64{1, 2, 3})
		if err != nil {
			t.Fatalf("Divergence failed: %v", err)
		}
		if math.IsInf(d, 1) || d < 0 {
			t.Errorf("expected finite non-negative score, got %v", d)
		}
	})

	t.Run("zero truth", func(t *testing.T) {
		d, err := Divergence([]float64{1, 2, 3}, []float64{0, 0, 0})
		if err != nil {
			t.Fatalf("Divergence failed: %v", err)
		}
		if math.IsInf(d, 1) || d < 0 {
			t.Errorf("expected finite non-negative score, got %v", d)
		}
	})

	t.Run("both zero", func(t *testing.T) {
		d, err := Divergence([]float64{0, 0}, []float64{0, 0})
		if err != nil {
			t.Fatalf("Divergence failed: %v", err)
		}
		if d != 0 {
			t.Errorf("uniform vs uniform should be 0, got %v", d)
		}
	})
}

func TestDivergenceNonNegative(t *testing.T) {
	tests := []struct {
		name  string
		pred  []float64
		truth []float64
	}{
		{"close shapes", []float64{0.24, 0.26, 0.25, 0.25}, []float64{0.25, 0.25, 0.25, 0.25}},
		{"skewed", []float64{10, 1, 1, 1}, []float64{1, 1, 1, 10}},
		{"tiny values", []float64{1e-6, 2e-6}, []float64{2e-6, 1e-6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Divergence(tt.pred, tt.truth)
			if err != nil {
				t.Fatalf("Divergence failed: %v", err)
			}
			if d < 0 {
				t.Errorf("negative score %v", d)
			}
		})
	}
}

func TestDivergenceValidation(t *testing.T) {
	t.Run("shape mismatch", func(t *testing.T) {
		_, err := Divergence([]float64{1, 2}, []float64{1, 2, 3})
		if err == nil {
			t.Fatal("expected error for mismatched lengths")
		}
		if !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("expected ErrShapeMismatch, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Divergence([]float64{}, []float64{}); err == nil {
			t.Error("expected error for empty distributions")
		}
	})

	t.Run("NaN entry", func(t *testing.T) {
		if _, err := Divergence([]float64{1, math.NaN()}, []float64{1, 1}); err == nil {
			t.Error("expected error for NaN entry")
		}
	})

	t.Run("Inf entry", func(t *testing.T) {
		if _, err := Divergence([]float64{1, 1}, []float64{math.Inf(1), 1}); err == nil {
			t.Error("expected error for Inf entry")
		}
	})

	t.Run("negative entry", func(t *testing.T) {
		if _, err := Divergence([]float64{1, -0.5}, []float64{1, 1}); err == nil {
			t.Error("expected error for negative entry")
		}
	})

	t.Run("negative noise tolerated", func(t *testing.T) {
		// Sub-tolerance negatives are floating noise, not contract violations.
		if _, err := Divergence([]float64{1, -1e-13}, []float64{1, 1}); err != nil {
			t.Errorf("expected tolerance for tiny negative, got %v", err)
		}
	})
}
