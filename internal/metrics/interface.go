package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncTranscriptParses(engine string)
	IncParseFailures(engine string)
	IncMatchesRecorded()
	IncMatchesProcessed()
	ObserveProcessingDuration(duration float64)
	IncLeaderboardRequests()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore defines the interface for durable usage counters backed by the
// database, which survive restarts unlike the in-process Prometheus state.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
