package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance is the single slack applied to every boundary check in the
// engine: near-zero vector sums, near-zero and near-one masses, and
// negative floating noise on individual bins.
const Tolerance = 1e-9

// tieEpsilon is the score-difference threshold below which two finite
// scores are considered a tie.
const tieEpsilon = 1e-10

// ErrShapeMismatch is returned when two distributions being compared do not
// have the same number of bins. Callers can distinguish it from the scorers'
// own zero/infinity outputs with errors.Is.
var ErrShapeMismatch = errors.New("shape mismatch")

// ValidateDistribution checks the numeric contract for a single vector:
// non-empty, all entries finite and no more negative than the tolerance
// allows. Scorers run the same checks; this lets callers validate at intake
// time, before a vector is stored or compared.
func ValidateDistribution(v []float64) error {
	return validateVector("distribution", v)
}

// ValidateMassPercent checks that an explicit mass percentage is finite and
// within [0, 100] up to the tolerance.
func ValidateMassPercent(pct float64) error {
	_, err := massFraction("explicit", pct)
	return err
}

// validateVector rejects empty vectors, non-finite entries, and entries more
// negative than the tolerance allows. name identifies the offending side in
// the error message.
func validateVector(name string, v []float64) error {
	if len(v) == 0 {
		return fmt.Errorf("%s: empty distribution", name)
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%s[%d]: non-finite value %v", name, i, x)
		}
		if x < -Tolerance {
			return fmt.Errorf("%s[%d]: negative probability mass %v", name, i, x)
		}
	}
	return nil
}

func validatePair(prediction, truth []float64) error {
	if len(prediction) != len(truth) {
		return fmt.Errorf("%w: prediction has %d bins, truth has %d", ErrShapeMismatch, len(prediction), len(truth))
	}
	if err := validateVector("prediction", prediction); err != nil {
		return err
	}
	return validateVector("truth", truth)
}

// massFraction converts an explicit mass percentage to a fraction in [0,1].
// side identifies the offending input in the error message.
func massFraction(side string, pct float64) (float64, error) {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, fmt.Errorf("%s mass: non-finite value %v", side, pct)
	}
	m := pct / 100
	if m < -Tolerance || m > 1+Tolerance {
		return 0, fmt.Errorf("%s mass %v%% outside [0, 100]", side, pct)
	}
	if m < 0 {
		m = 0
	}
	if m > 1 {
		m = 1
	}
	return m, nil
}

// positiveSum sums the vector, treating sub-tolerance negative noise as zero.
func positiveSum(v []float64) float64 {
	var sum float64
	for _, x := range v {
		if x > 0 {
			sum += x
		}
	}
	return sum
}

// normalize scales v to sum to 1. A vector whose sum is within tolerance of
// zero normalizes to the uniform distribution instead of dividing by zero.
func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	sum := positiveSum(v)
	if sum <= Tolerance {
		u := 1 / float64(len(v))
		for i := range out {
			out[i] = u
		}
		return out
	}
	for i, x := range v {
		if x > 0 {
			out[i] = x / sum
		}
	}
	return out
}
