package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	transcriptParses    map[string]int
	parseFailures       map[string]int
	matchesRecorded     int
	matchesProcessed    int
	processingDurations []float64
	leaderboardRequests int
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		transcriptParses:    make(map[string]int),
		parseFailures:       make(map[string]int),
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncTranscriptParses(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcriptParses[engine]++
}

func (m *Mock) IncParseFailures(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parseFailures[engine]++
}

func (m *Mock) IncMatchesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesRecorded++
}

func (m *Mock) IncMatchesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesProcessed++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) IncLeaderboardRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardRequests++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// TranscriptParses returns the number of parse attempts recorded for an engine.
func (m *Mock) TranscriptParses(engine string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcriptParses[engine]
}

// ParseFailures returns the number of parse failures recorded for an engine.
func (m *Mock) ParseFailures(engine string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parseFailures[engine]
}

// MatchesRecorded returns the number of times IncMatchesRecorded was called.
func (m *Mock) MatchesRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesRecorded
}

// MatchesProcessed returns the number of times IncMatchesProcessed was called.
func (m *Mock) MatchesProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesProcessed
}

// LeaderboardRequests returns the number of times IncLeaderboardRequests was called.
func (m *Mock) LeaderboardRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardRequests
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
