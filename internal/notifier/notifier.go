package notifier

import (
	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/leaderboard"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For recorded matches
	SendResultNotification(match *club.Match, dryRun bool) error
	// For slash commands
	SendLeaderboard(stats []leaderboard.PlayerStat, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(stats []leaderboard.PlayerStat) (any, error)
}
