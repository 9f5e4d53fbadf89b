package scoring

import "math"

// Divergence quantifies how well an unnormalized prediction P matches an
// unnormalized truth Q as the relative KL divergence between their normalized
// shapes:
//
//	D(Q‖P) = Σ_i q_i · log(q_i / p_i)
//
// summed only over bins where the truth has mass. Bins where the truth is
// zero contribute nothing (0·log convention). A bin where the truth has mass
// but the prediction has none returns +Inf: the prediction ruled out an event
// that occurred. A vector summing to ~zero is treated as uniform.
//
// The result is ≥ 0 or +Inf, and 0 iff the normalized shapes agree wherever
// the truth has mass.
func Divergence(prediction, truth []float64) (float64, error) {
	if err := validatePair(prediction, truth); err != nil {
		return 0, err
	}
	return relativeEntropy(normalize(truth), normalize(prediction)), nil
}

// relativeEntropy computes D(q‖p) over already-normalized vectors.
func relativeEntropy(q, p []float64) float64 {
	var d float64
	for i := range q {
		if q[i] <= 0 {
			continue
		}
		if p[i] <= 0 {
			return math.Inf(1)
		}
		d += q[i] * math.Log(q[i]/p[i])
	}
	// Rounding noise can leave a tiny negative on near-identical shapes.
	if d < 0 {
		d = 0
	}
	return d
}
