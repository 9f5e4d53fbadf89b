package scoring

import "math"

// LogScore scores a sub-probability prediction against a sub-probability
// truth. Both vectors carry only relative shape; the explicit masses, given
// as percentages in [0,100], state how much total probability each side
// assigns to the modeled bins, with the remainder on the complement event
// (the modeled thing never happening).
//
// The score is the KL divergence over the combined event space — the modeled
// bins scaled by the truth's mass, plus the complement as one extra outcome:
//
//	score = m_q·D(Q‖P) + m_q·log(m_q/m_p) + (1−m_q)·log((1−m_q)/(1−m_p))
//
// Lower is better; a prediction matching both shape and mass scores exactly
// 0 and the result is never negative. When m_q = m_p = 1 this degenerates to
// the plain Divergence.
//
// Two extreme-but-legal inputs return +Inf rather than an error: a ~zero
// prediction mass when the truth has mass (bet nothing on an event that
// occurred), and a ~full prediction mass when the truth has a complement
// (bet everything on an occurrence that might not happen). Terms whose
// coefficient is ~0 are dropped rather than evaluated, so 0·log(0) never
// produces a NaN.
func LogScore(prediction []float64, predMassPct float64, truth []float64, truthMassPct float64) (float64, error) {
	if err := validatePair(prediction, truth); err != nil {
		return 0, err
	}
	mp, err := massFraction("prediction", predMassPct)
	if err != nil {
		return 0, err
	}
	mq, err := massFraction("truth", truthMassPct)
	if err != nil {
		return 0, err
	}

	// Bet nothing on an event that occurred.
	if mp <= Tolerance && mq > Tolerance {
		return math.Inf(1), nil
	}
	// Bet everything on an event that might not occur.
	if mp >= 1-Tolerance && mq < 1-Tolerance {
		return math.Inf(1), nil
	}

	var score float64
	if mq > Tolerance {
		d := relativeEntropy(normalize(truth), normalize(prediction))
		if math.IsInf(d, 1) {
			return d, nil
		}
		// mp > Tolerance here, per the first gate above.
		score += mq * d
		score += mq * math.Log(mq/mp)
	}
	if mq < 1-Tolerance {
		// mp < 1−Tolerance here, per the second gate above.
		score += (1 - mq) * math.Log((1-mq)/(1-mp))
	}
	if score < 0 {
		score = 0
	}
	return score, nil
}

// RelativeLogScore scores an unnormalized prediction against an unnormalized
// truth with each side's total mass taken from its vector sum rather than
// supplied explicitly. The shape penalty is the plain divergence; the mass
// term penalizes claiming a different total than the truth, symmetrically in
// either direction:
//
//	score = D(Q‖P) + |log(Σp / Σq)|
//
// A shape-perfect prediction claiming twice the truth's total scores log 2.
// A side summing to ~zero falls back to the uniform shape with no mass term,
// except that a ~zero prediction against a positive truth is +Inf.
func RelativeLogScore(prediction, truth []float64) (float64, error) {
	if err := validatePair(prediction, truth); err != nil {
		return 0, err
	}
	sp := positiveSum(prediction)
	sq := positiveSum(truth)
	if sp <= Tolerance && sq > Tolerance {
		return math.Inf(1), nil
	}
	d := relativeEntropy(normalize(truth), normalize(prediction))
	if math.IsInf(d, 1) {
		return d, nil
	}
	if sp > Tolerance && sq > Tolerance {
		d += math.Abs(math.Log(sp / sq))
	}
	return d, nil
}
