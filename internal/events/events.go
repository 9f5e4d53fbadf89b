package events

type ForecastCreatedEvent struct {
	ForecastID string `json:"forecast_id"`
	Name       string `json:"name"`
	Author     string `json:"author,omitempty"`
	Bins       int    `json:"bins"`
	IsTruth    bool   `json:"is_truth"`
}

type ForecastResolvedEvent struct {
	ForecastID string `json:"forecast_id"`
	TruthID    string `json:"truth_id"`
	Metric     string `json:"metric"`
	// Score is formatted with strconv.FormatFloat so that "+Inf" survives
	// JSON transport.
	Score string `json:"score"`
}

type ForecastDeletedEvent struct {
	ForecastID string `json:"forecast_id"`
}

type ComparisonScoredEvent struct {
	ComparisonID string   `json:"comparison_id"`
	Metric       string   `json:"metric"`
	Winning      string   `json:"winning"`
	Gap          *float64 `json:"gap,omitempty"`
	Factor       *float64 `json:"factor,omitempty"`
	RequestedBy  string   `json:"requested_by,omitempty"`
}

// ComparisonRequestedEvent asks the service to run a comparison off the bus
// instead of over HTTP. Masses default to 100 when omitted.
type ComparisonRequestedEvent struct {
	Metric      string    `json:"metric,omitempty"`
	Prediction1 []float64 `json:"prediction1"`
	Mass1       *float64  `json:"mass1,omitempty"`
	Prediction2 []float64 `json:"prediction2"`
	Mass2       *float64  `json:"mass2,omitempty"`
	Truth       []float64 `json:"truth"`
	TruthMass   *float64  `json:"truth_mass,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
}
