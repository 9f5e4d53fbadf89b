package events

const (
	StreamName   = "FORECAST_EVENTS"
	StreamMaxAge = "720h" // 30 days

	SubjectComparisonRequested = "comparison.requested"
)

func SubjectForecastCreated(forecastID string) string  { return "forecast." + forecastID + ".created" }
func SubjectForecastResolved(forecastID string) string { return "forecast." + forecastID + ".resolved" }
func SubjectForecastDeleted(forecastID string) string  { return "forecast." + forecastID + ".deleted" }

func SubjectComparisonScored(comparisonID string) string {
	return "comparison." + comparisonID + ".scored"
}
