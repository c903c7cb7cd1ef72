package genai

import (
	"context"
	"sync"

	"github.com/mknudsen/courtside/internal/club"
)

// MockClient is a mock implementation of the Client interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	ParseTranscriptFunc func(ctx context.Context, transcript string, roster []club.Player, authorID string) (*club.Match, error)

	// Call records
	ParseTranscriptCalls []string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ParseTranscriptCalls = nil
}

func (m *MockClient) ParseTranscript(ctx context.Context, transcript string, roster []club.Player, authorID string) (*club.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ParseTranscriptCalls = append(m.ParseTranscriptCalls, transcript)
	if m.ParseTranscriptFunc != nil {
		return m.ParseTranscriptFunc(ctx, transcript, roster, authorID)
	}
	return nil, nil
}
