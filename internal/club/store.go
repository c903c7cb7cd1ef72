package club

import (
	"database/sql"
	"encoding/json"

	"github.com/charmbracelet/log"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// RecordMatch inserts a new match or replaces an existing one. Edits are a
// full replacement; the processing status of an existing row is left alone.
func (s *store) RecordMatch(match *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	team1JSON, err := json.Marshal(match.Team1)
	if err != nil {
		tx.Rollback()
		return err
	}
	team2JSON, err := json.Marshal(match.Team2)
	if err != nil {
		tx.Rollback()
		return err
	}
	team1ScoresJSON, err := json.Marshal(match.Team1Scores)
	if err != nil {
		tx.Rollback()
		return err
	}
	team2ScoresJSON, err := json.Marshal(match.Team2Scores)
	if err != nil {
		tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO matches (id, team1_json, team2_json, team1_scores_json, team2_scores_json, winner, match_date, created_ts, created_by, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			team1_json = excluded.team1_json,
			team2_json = excluded.team2_json,
			team1_scores_json = excluded.team1_scores_json,
			team2_scores_json = excluded.team2_scores_json,
			winner = excluded.winner,
			match_date = excluded.match_date,
			created_ts = excluded.created_ts,
			created_by = excluded.created_by;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(match.ID, team1JSON, team2JSON, team1ScoresJSON, team2ScoresJSON, match.Winner, match.MatchDate, match.CreatedTs, match.CreatedBy, StatusNew)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// UpdateProcessingStatus transitions a match to a new state.
func (s *store) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE matches SET processing_status = ? WHERE id = ?", status, matchID)
	return err
}

const matchColumns = "id, team1_json, team2_json, team1_scores_json, team2_scores_json, winner, match_date, created_ts, created_by, processing_status"

// scanMatch is a helper function to scan a single match row.
func (s *store) scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var match Match
	var team1JSON, team2JSON, team1ScoresJSON, team2ScoresJSON sql.NullString

	err := scanner.Scan(
		&match.ID, &team1JSON, &team2JSON, &team1ScoresJSON, &team2ScoresJSON,
		&match.Winner, &match.MatchDate, &match.CreatedTs, &match.CreatedBy, &match.ProcessingStatus,
	)
	if err != nil {
		return nil, err
	}

	match.Team1 = []Player{}
	match.Team2 = []Player{}
	if team1JSON.Valid && team1JSON.String != "" {
		if err := json.Unmarshal([]byte(team1JSON.String), &match.Team1); err != nil {
			log.Error("Failed to unmarshal team1_json", "error", err, "matchID", match.ID)
		}
	}
	if team2JSON.Valid && team2JSON.String != "" {
		if err := json.Unmarshal([]byte(team2JSON.String), &match.Team2); err != nil {
			log.Error("Failed to unmarshal team2_json", "error", err, "matchID", match.ID)
		}
	}
	if team1ScoresJSON.Valid && team1ScoresJSON.String != "" {
		if err := json.Unmarshal([]byte(team1ScoresJSON.String), &match.Team1Scores); err != nil {
			log.Error("Failed to unmarshal team1_scores_json", "error", err, "matchID", match.ID)
		}
	}
	if team2ScoresJSON.Valid && team2ScoresJSON.String != "" {
		if err := json.Unmarshal([]byte(team2ScoresJSON.String), &match.Team2Scores); err != nil {
			log.Error("Failed to unmarshal team2_scores_json", "error", err, "matchID", match.ID)
		}
	}

	return &match, nil
}

func (s *store) queryMatches(query string, args ...any) ([]*Match, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		match, err := s.scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// GetAllMatches retrieves every recorded match, newest first.
func (s *store) GetAllMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches("SELECT " + matchColumns + " FROM matches ORDER BY match_date DESC, created_ts DESC")
}

// GetMatchesSince retrieves matches played on or after the given YYYY-MM-DD
// date. This is the data contract the external date-range selector consumes.
func (s *store) GetMatchesSince(date string) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches("SELECT "+matchColumns+" FROM matches WHERE match_date >= ? ORDER BY match_date DESC, created_ts DESC", date)
}

// GetMatchesForProcessing retrieves all matches that are not yet in a completed state.
func (s *store) GetMatchesForProcessing() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches("SELECT "+matchColumns+" FROM matches WHERE processing_status != ?", StatusCompleted)
}

func (s *store) AddPlayer(playerID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return
	}

	if !exists {
		_, err := s.db.Exec("INSERT INTO players (id, name) VALUES (?, ?)", playerID, name)
		if err != nil {
			log.Error("Failed to add player", "error", err, "playerID", playerID)
		} else {
			log.Info("Added new player to the roster", "playerID", playerID, "name", name)
		}
	} else {
		_, err := s.db.Exec("UPDATE players SET name = ? WHERE id = ?", name, playerID)
		if err != nil {
			log.Error("Failed to update player", "error", err, "playerID", playerID)
		}
	}
}

// UpsertPlayers inserts or updates a batch of players in one transaction.
func (s *store) UpsertPlayers(players []Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, email)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(p.ID, p.Name, p.Email); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

// GetRoster retrieves all players, ordered by name.
func (s *store) GetRoster() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, email FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query roster", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		var name sql.NullString
		var email sql.NullString
		if err := rows.Scan(&p.ID, &name, &email); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String // handle NULL name from db
		if email.Valid {
			p.Email = &email.String
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	if _, err := tx.Exec("DELETE FROM matches"); err != nil {
		log.Error("Failed to clear matches table", "error", err)
		tx.Rollback()
		return
	}

	if _, err := tx.Exec("DELETE FROM players"); err != nil {
		log.Error("Failed to clear players table", "error", err)
		tx.Rollback()
		return
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID)
	if err != nil {
		log.Error("Failed to clear match", "error", err, "matchID", matchID)
	}
}
