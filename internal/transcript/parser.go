// Package transcript converts loosely structured spoken match results into
// structured match records.
//
// The pipeline is a fixed sequence of pure extraction steps: normalize, pull
// out the date, pull out the set scores, then try team-extraction strategies
// in priority order with first-success-wins semantics. Every failure mode
// degrades to "produced nothing usable"; Parse never panics outward.
package transcript

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mknudsen/courtside/internal/club"
)

// maxSetScore caps every parsed score; badminton sets never exceed 30.
const maxSetScore = 30

var (
	reDate          = regexp.MustCompile(`\b(today|yesterday|\d{4}-\d{2}-\d{2})\b`)
	reScorePair     = regexp.MustCompile(`\b(\d+)\s*(?:-|space)\s*(\d+)\b|\b(\d+)\s+(\d+)\b`)
	reTrailingPair  = regexp.MustCompile(`\b(\d+)\s+(\d+)\s*$`)
	reWhitespaceRun = regexp.MustCompile(`\s+`)
)

// Parser turns transcripts into candidate matches. The clock is injectable so
// "today"/"yesterday" resolution is testable against a fixed reference date.
type Parser struct {
	now func() time.Time
}

// NewParser creates a Parser using the wall clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock creates a Parser with a fixed clock, for tests.
func NewParserWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse extracts a candidate match from a transcript. It returns nil when
// nothing usable could be extracted; malformed input is never an error. The
// result is a candidate for external confirmation, not a validated match.
func (p *Parser) Parse(transcript string, players []club.Player, authorID string) *club.Match {
	normalized := strings.ToLower(strings.TrimSpace(transcript))
	if normalized == "" {
		return nil
	}

	matchDate, remainder := p.extractDate(normalized)
	team1Scores, team2Scores, remainder := extractScores(remainder)
	ext := extractTeams(remainder, players)

	// Require at least one usable piece of information.
	if len(ext.team1) == 0 && len(ext.team2) == 0 && len(team1Scores) == 0 {
		log.Debug("No match data could be extracted from transcript", "transcript", transcript)
		return nil
	}

	winner := 0
	if ext.explicitWinner {
		winner = 1
	} else {
		winner = DeriveWinner(team1Scores, team2Scores)
	}

	return &club.Match{
		ID:          uuid.NewString(),
		Team1:       ext.team1,
		Team2:       ext.team2,
		Team1Scores: team1Scores,
		Team2Scores: team2Scores,
		Winner:      winner,
		MatchDate:   matchDate,
		CreatedTs:   p.now().Unix(),
		CreatedBy:   authorID,
	}
}

// DeriveWinner applies the single authoritative winner rule: the team winning
// the majority of sets wins the match; equal set counts (or no sets) is a tie.
func DeriveWinner(team1Scores, team2Scores []int) int {
	sets := len(team1Scores)
	if len(team2Scores) < sets {
		sets = len(team2Scores)
	}
	var team1Sets, team2Sets int
	for i := 0; i < sets; i++ {
		if team1Scores[i] > team2Scores[i] {
			team1Sets++
		} else if team2Scores[i] > team1Scores[i] {
			team2Sets++
		}
	}
	if team1Sets > team2Sets {
		return 1
	}
	if team2Sets > team1Sets {
		return 2
	}
	return 0
}

// extractDate finds a "today"/"yesterday"/ISO token. It returns the resolved
// YYYY-MM-DD date (defaulting to today) and the text with the token removed,
// so a literal date can never be misread as set scores downstream.
func (p *Parser) extractDate(text string) (string, string) {
	date := p.now().Format("2006-01-02")
	loc := reDate.FindStringIndex(text)
	if loc == nil {
		return date, text
	}
	token := text[loc[0]:loc[1]]
	switch token {
	case "today":
		// default already is today
	case "yesterday":
		date = p.now().AddDate(0, 0, -1).Format("2006-01-02")
	default:
		if _, err := time.Parse("2006-01-02", token); err == nil {
			date = token
		} else {
			log.Debug("Ignoring malformed date token", "token", token)
		}
	}
	return date, text[:loc[0]] + " " + text[loc[1]:]
}

// extractScores scans for score pairs ("21-18", "21 18", "21 space 18"), one
// pair per set in order of appearance, each value capped at 30. When no pair
// is found it falls back to two trailing digit tokens. The matched spans are
// stripped from the returned text so team extraction never sees them.
func extractScores(text string) ([]int, []int, string) {
	var team1Scores, team2Scores []int

	matches := reScorePair.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		for _, m := range matches {
			a, b := m[1], m[2]
			if a == "" {
				a, b = m[3], m[4]
			}
			team1Scores = append(team1Scores, capScore(a))
			team2Scores = append(team2Scores, capScore(b))
		}
		return team1Scores, team2Scores, reScorePair.ReplaceAllString(text, " ")
	}

	if m := reTrailingPair.FindStringSubmatch(text); m != nil {
		team1Scores = append(team1Scores, capScore(m[1]))
		team2Scores = append(team2Scores, capScore(m[2]))
		return team1Scores, team2Scores, reTrailingPair.ReplaceAllString(text, " ")
	}

	return nil, nil, text
}

func capScore(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	if n > maxSetScore {
		return maxSetScore
	}
	return n
}

func fields(text string) []string {
	return strings.Fields(reWhitespaceRun.ReplaceAllString(text, " "))
}
