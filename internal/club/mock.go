package club

import (
	"sync"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc               func(playerID, name string)
	UpsertPlayersFunc           func(players []Player) error
	IsKnownPlayerFunc           func(playerID string) bool
	GetRosterFunc               func() ([]Player, error)
	RecordMatchFunc             func(match *Match) error
	GetAllMatchesFunc           func() ([]*Match, error)
	GetMatchesSinceFunc         func(date string) ([]*Match, error)
	GetMatchesForProcessingFunc func() ([]*Match, error)
	UpdateProcessingStatusFunc  func(matchID string, status ProcessingStatus) error
	ClearFunc                   func()
	ClearMatchFunc              func(matchID string)

	// Call records
	AddPlayerCalls []struct {
		PlayerID string
		Name     string
	}
	UpsertPlayersCalls          [][]Player
	RecordMatchCalls            []*Match
	GetMatchesSinceCalls        []string
	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  ProcessingStatus
	}
	ClearMatchCalls []string
	ClearCalls      int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = nil
	m.UpsertPlayersCalls = nil
	m.RecordMatchCalls = nil
	m.GetMatchesSinceCalls = nil
	m.UpdateProcessingStatusCalls = nil
	m.ClearMatchCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) AddPlayer(playerID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, struct {
		PlayerID string
		Name     string
	}{playerID, name})
	if m.AddPlayerFunc != nil {
		m.AddPlayerFunc(playerID, name)
	}
}

func (m *MockStore) UpsertPlayers(players []Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) GetRoster() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRosterFunc != nil {
		return m.GetRosterFunc()
	}
	return []Player{}, nil
}

func (m *MockStore) RecordMatch(match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordMatchCalls = append(m.RecordMatchCalls, match)
	if m.RecordMatchFunc != nil {
		return m.RecordMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetAllMatches() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return []*Match{}, nil
}

func (m *MockStore) GetMatchesSince(date string) ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetMatchesSinceCalls = append(m.GetMatchesSinceCalls, date)
	if m.GetMatchesSinceFunc != nil {
		return m.GetMatchesSinceFunc(date)
	}
	return []*Match{}, nil
}

func (m *MockStore) GetMatchesForProcessing() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchesForProcessingFunc != nil {
		return m.GetMatchesForProcessingFunc()
	}
	return []*Match{}, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  ProcessingStatus
	}{matchID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}

func (m *MockStore) ClearMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearMatchCalls = append(m.ClearMatchCalls, matchID)
	if m.ClearMatchFunc != nil {
		m.ClearMatchFunc(matchID)
	}
}
