package scoring

import (
	"encoding/json"
	"math"
)

// Metric selects which scorer a comparison runs.
type Metric string

const (
	MetricDivergence Metric = "divergence"
	MetricLogScore   Metric = "logscore"
)

// Winner labels for Comparison.Winning.
const (
	WinnerPrediction1 = "prediction1"
	WinnerPrediction2 = "prediction2"
	WinnerTie         = "tie"
)

// Comparison captures the outcome of scoring two candidates against one
// truth. Lower score wins. Gap and Factor are only present when both scores
// are finite: Gap = Score2 − Score1 (positive means candidate 1 is better),
// and Factor is a Bayes-factor-like ratio in favor of the winning side —
// exp(−gap) under the log-score metric, exp(+gap) under plain divergence.
type Comparison struct {
	Metric  Metric   `json:"metric"`
	Winning string   `json:"winning"`
	Score1  float64  `json:"score1"`
	Score2  float64  `json:"score2"`
	Gap     *float64 `json:"gap,omitempty"`
	Factor  *float64 `json:"factor,omitempty"`
}

// MarshalJSON renders infinite scores as the string "inf". An infinitely bad
// prediction is a meaningful outcome, not a failure, and plain JSON has no
// encoding for +Inf.
func (c *Comparison) MarshalJSON() ([]byte, error) {
	type wire struct {
		Metric  Metric      `json:"metric"`
		Winning string      `json:"winning"`
		Score1  interface{} `json:"score1"`
		Score2  interface{} `json:"score2"`
		Gap     *float64    `json:"gap,omitempty"`
		Factor  *float64    `json:"factor,omitempty"`
	}
	return json.Marshal(wire{
		Metric:  c.Metric,
		Winning: c.Winning,
		Score1:  ScoreJSON(c.Score1),
		Score2:  ScoreJSON(c.Score2),
		Gap:     c.Gap,
		Factor:  c.Factor,
	})
}

// ScoreJSON returns a JSON-encodable value for a score: the float itself, or
// the string "inf" when the score is infinite.
func ScoreJSON(v float64) interface{} {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return v
}

// Compare ranks two unnormalized candidates against one truth under the
// divergence metric.
func Compare(pred1, pred2, truth []float64) (*Comparison, error) {
	score1, err := Divergence(pred1, truth)
	if err != nil {
		return nil, err
	}
	score2, err := Divergence(pred2, truth)
	if err != nil {
		return nil, err
	}
	return newComparison(MetricDivergence, score1, score2), nil
}

// CompareLogScores ranks two sub-probability candidates against one truth
// under the log-score metric. Masses are percentages in [0,100].
func CompareLogScores(pred1 []float64, mass1 float64, pred2 []float64, mass2 float64, truth []float64, truthMass float64) (*Comparison, error) {
	score1, err := LogScore(pred1, mass1, truth, truthMass)
	if err != nil {
		return nil, err
	}
	score2, err := LogScore(pred2, mass2, truth, truthMass)
	if err != nil {
		return nil, err
	}
	return newComparison(MetricLogScore, score1, score2), nil
}

func newComparison(metric Metric, score1, score2 float64) *Comparison {
	c := &Comparison{Metric: metric, Score1: score1, Score2: score2}

	inf1 := math.IsInf(score1, 1)
	inf2 := math.IsInf(score2, 1)
	switch {
	case inf1 && inf2:
		c.Winning = WinnerTie
	case inf1:
		c.Winning = WinnerPrediction2
	case inf2:
		c.Winning = WinnerPrediction1
	default:
		gap := score2 - score1
		switch {
		case math.Abs(gap) <= tieEpsilon:
			c.Winning = WinnerTie
		case gap > 0:
			c.Winning = WinnerPrediction1
		default:
			c.Winning = WinnerPrediction2
		}
		factor := math.Exp(-gap)
		if metric == MetricDivergence {
			factor = math.Exp(gap)
		}
		c.Gap = &gap
		c.Factor = &factor
	}
	return c
}
