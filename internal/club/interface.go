package club

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	AddPlayer(playerID, name string)
	UpsertPlayers(players []Player) error
	IsKnownPlayer(playerID string) bool
	GetRoster() ([]Player, error)
	RecordMatch(match *Match) error
	GetAllMatches() ([]*Match, error)
	GetMatchesSince(date string) ([]*Match, error)
	GetMatchesForProcessing() ([]*Match, error)
	UpdateProcessingStatus(matchID string, status ProcessingStatus) error
	Clear()
	ClearMatch(matchID string)
}
