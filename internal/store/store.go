package store

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Forecast is a stored discrete distribution over a fixed set of ordered
// bins. Bins carry relative shape; MassPct, when present, is the explicit
// total probability the forecast assigns to the modeled window, as a
// percentage in [0,100]. A forecast with IsTruth set serves as ground truth
// for comparisons and resolutions.
type Forecast struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Author  string    `json:"author,omitempty"`
	Bins    []float64 `json:"bins"`
	MassPct *float64  `json:"mass_pct,omitempty"`
	IsTruth bool      `json:"is_truth"`

	// Resolution — set once a truth forecast has been scored against.
	TruthID  *uuid.UUID `json:"truth_id,omitempty"`
	Score    *float64   `json:"score,omitempty"`
	ScoredAt *time.Time `json:"scored_at,omitempty"`

	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// MarshalJSON renders an infinite resolution score as the string "inf";
// plain JSON has no encoding for +Inf.
func (f *Forecast) MarshalJSON() ([]byte, error) {
	type alias Forecast
	out := struct {
		*alias
		Score interface{} `json:"score,omitempty"`
	}{alias: (*alias)(f)}
	if f.Score != nil {
		out.Score = renderScore(*f.Score)
	}
	return json.Marshal(out)
}

type ForecastFilter struct {
	Author  string
	IsTruth *bool
	Limit   int
	Offset  int
}

// ComparisonRecord persists one two-candidate comparison. Scores may be
// +Inf; Postgres float8 carries infinity natively. Gap and Factor are null
// when either score is infinite.
type ComparisonRecord struct {
	ID          uuid.UUID  `json:"id"`
	Metric      string     `json:"metric"`
	Forecast1ID *uuid.UUID `json:"forecast1_id,omitempty"`
	Forecast2ID *uuid.UUID `json:"forecast2_id,omitempty"`
	TruthID     *uuid.UUID `json:"truth_id,omitempty"`
	Winning     string     `json:"winning"`
	Score1      float64    `json:"-"`
	Score2      float64    `json:"-"`
	Gap         *float64   `json:"gap,omitempty"`
	Factor      *float64   `json:"factor,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MarshalJSON re-adds the scores the struct tags hide, rendering infinities
// as the string "inf".
func (c *ComparisonRecord) MarshalJSON() ([]byte, error) {
	type alias ComparisonRecord
	return json.Marshal(struct {
		*alias
		Score1 interface{} `json:"score1"`
		Score2 interface{} `json:"score2"`
	}{(*alias)(c), renderScore(c.Score1), renderScore(c.Score2)})
}

func renderScore(v float64) interface{} {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return v
}

type ComparisonFilter struct {
	Metric      string
	Winning     string
	RequestedBy string
	Limit       int
	Offset      int
}

type Stats struct {
	TotalForecasts      int     `json:"total_forecasts"`
	TotalTruths         int     `json:"total_truths"`
	TotalComparisons    int     `json:"total_comparisons"`
	InfiniteComparisons int     `json:"infinite_comparisons"`
	AvgFiniteGap        float64 `json:"avg_finite_gap"`
}

type Store interface {
	CreateForecast(ctx context.Context, f *Forecast) error
	GetForecast(ctx context.Context, id uuid.UUID) (*Forecast, error)
	ListForecasts(ctx context.Context, filter ForecastFilter) ([]*Forecast, error)
	UpdateForecast(ctx context.Context, f *Forecast) error
	DeleteForecast(ctx context.Context, id uuid.UUID) error

	CreateComparison(ctx context.Context, c *ComparisonRecord) error
	GetComparison(ctx context.Context, id uuid.UUID) (*ComparisonRecord, error)
	ListComparisons(ctx context.Context, filter ComparisonFilter) ([]*ComparisonRecord, error)
	PruneComparisons(ctx context.Context, before time.Time) (int64, error)

	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}
