package notifier

import (
	"sync"

	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/leaderboard"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendResultNotificationCalls []struct{ Match *club.Match }
	SendLeaderboardCalls        [][]leaderboard.PlayerStat

	// Spies for format functions
	FormatLeaderboardResponseFunc func(stats []leaderboard.PlayerStat) (any, error)

	// Spies for send functions
	SendResultNotificationFunc func(match *club.Match, dryRun bool) error
	SendLeaderboardFunc        func(stats []leaderboard.PlayerStat, dryRun bool) error

	// Call records for format functions
	LastLeaderboardResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
}

func (m *Mock) SendResultNotification(match *club.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct{ Match *club.Match }{match})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(stats []leaderboard.PlayerStat, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, stats)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(stats, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(stats []leaderboard.PlayerStat) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(stats)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}
