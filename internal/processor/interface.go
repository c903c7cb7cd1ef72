package processor

import (
	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetMatchesForProcessing() ([]*club.Match, error)
	UpdateProcessingStatus(matchID string, status club.ProcessingStatus) error
	UpsertPlayers(players []club.Player) error
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
