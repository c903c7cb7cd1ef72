package club

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player is a club member. The core only ever reads ID and Name; the rest is
// opaque metadata owned by whoever manages the roster.
type Player struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// Match is a single recorded badminton match, singles or doubles.
// Team1Scores and Team2Scores hold one entry per set, index-aligned.
type Match struct {
	ID          string   `json:"id"`
	Team1       []Player `json:"team1"`
	Team2       []Player `json:"team2"`
	Team1Scores []int    `json:"team1_scores"`
	Team2Scores []int    `json:"team2_scores"`
	// Winner: 0 = tie/undetermined, 1 = team1, 2 = team2.
	Winner           int              `json:"winner"`
	MatchDate        string           `json:"match_date"` // YYYY-MM-DD
	CreatedTs        int64            `json:"created_ts"` // unix seconds
	CreatedBy        string           `json:"created_by"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}

// ProcessingStatus defines the internal post-recording state of a match.
type ProcessingStatus string

const (
	StatusNew            ProcessingStatus = "NEW"
	StatusResultNotified ProcessingStatus = "RESULT_NOTIFIED"
	StatusCompleted      ProcessingStatus = "COMPLETED"
)
