package transcript_test

import (
	"testing"
	"time"

	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoster = []club.Player{
	{ID: "1", Name: "John Doe"},
	{ID: "2", Name: "Jane Smith"},
	{ID: "3", Name: "Bob Johnson"},
	{ID: "4", Name: "Alice Williams"},
}

// fixedClock pins the reference date to 2024-03-15.
func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
}

func TestParse_FullDoublesResult(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	match := p.Parse("John and Jane beat Bob and Alice 21-18 15-21 21-19", testRoster, "u1")
	require.NotNil(t, match)

	require.Len(t, match.Team1, 2)
	assert.Equal(t, "1", match.Team1[0].ID)
	assert.Equal(t, "2", match.Team1[1].ID)
	require.Len(t, match.Team2, 2)
	assert.Equal(t, "3", match.Team2[0].ID)
	assert.Equal(t, "4", match.Team2[1].ID)

	assert.Equal(t, []int{21, 15, 21}, match.Team1Scores)
	assert.Equal(t, []int{18, 21, 19}, match.Team2Scores)
	assert.Equal(t, "2024-03-15", match.MatchDate)
	assert.Equal(t, 1, match.Winner, "the side named before 'beat' is the winner")
	assert.Equal(t, "u1", match.CreatedBy)
}

func TestParse_IsPure(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)
	in := "John and Jane beat Bob and Alice 21-18 15-21 21-19"

	first := p.Parse(in, testRoster, "u1")
	second := p.Parse(in, testRoster, "u1")
	require.NotNil(t, first)
	require.NotNil(t, second)

	// Everything except the generated id must be identical.
	second.ID = first.ID
	assert.Equal(t, first, second)
}

func TestParse_VersusPattern(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	match := p.Parse("john jane vs bob alice", testRoster, "u1")
	require.NotNil(t, match)
	require.Len(t, match.Team1, 2)
	require.Len(t, match.Team2, 2)
	assert.Empty(t, match.Team1Scores)
	assert.Empty(t, match.Team2Scores)
	assert.Equal(t, 0, match.Winner, "no sets parsed leaves the winner undetermined")
}

func TestParse_SinglesWithScores(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	match := p.Parse("john 21 18", testRoster, "u1")
	require.NotNil(t, match)
	require.Len(t, match.Team1, 1)
	assert.Equal(t, "1", match.Team1[0].ID)
	assert.Empty(t, match.Team2)
	assert.Equal(t, []int{21}, match.Team1Scores)
	assert.Equal(t, []int{18}, match.Team2Scores)
	assert.Equal(t, 1, match.Winner)
}

func TestParse_SpokenScoreSeparator(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	match := p.Parse("john beat bob 21 space 18", testRoster, "u1")
	require.NotNil(t, match)
	assert.Equal(t, []int{21}, match.Team1Scores)
	assert.Equal(t, []int{18}, match.Team2Scores)
}

func TestParse_ScoresAreCapped(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	match := p.Parse("john beat bob 99-12", testRoster, "u1")
	require.NotNil(t, match)
	assert.Equal(t, []int{30}, match.Team1Scores)
	assert.Equal(t, []int{12}, match.Team2Scores)
}

func TestParse_DateKeywords(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	t.Run("yesterday", func(t *testing.T) {
		match := p.Parse("yesterday john beat bob 21-15", testRoster, "u1")
		require.NotNil(t, match)
		assert.Equal(t, "2024-03-14", match.MatchDate)
	})

	t.Run("today", func(t *testing.T) {
		match := p.Parse("today john beat bob 21-15", testRoster, "u1")
		require.NotNil(t, match)
		assert.Equal(t, "2024-03-15", match.MatchDate)
	})

	t.Run("explicit ISO date", func(t *testing.T) {
		match := p.Parse("john beat bob 21-15 2024-01-02", testRoster, "u1")
		require.NotNil(t, match)
		assert.Equal(t, "2024-01-02", match.MatchDate)
	})

	t.Run("ISO date is not misread as scores", func(t *testing.T) {
		match := p.Parse("2024-01-02 john vs bob", testRoster, "u1")
		require.NotNil(t, match)
		assert.Equal(t, "2024-01-02", match.MatchDate)
		assert.Empty(t, match.Team1Scores)
	})

	t.Run("defaults to today", func(t *testing.T) {
		match := p.Parse("john beat bob 21-15", testRoster, "u1")
		require.NotNil(t, match)
		assert.Equal(t, "2024-03-15", match.MatchDate)
	})
}

func TestParse_NothingUsable(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	assert.Nil(t, p.Parse("hello there", nil, "u1"))
	assert.Nil(t, p.Parse("", testRoster, "u1"))
	assert.Nil(t, p.Parse("   ", testRoster, "u1"))
	assert.Nil(t, p.Parse("complete gibberish with no roster hit", nil, "u1"))
}

func TestParse_ScoresOnlyStillBuildsCandidate(t *testing.T) {
	p := transcript.NewParserWithClock(fixedClock)

	match := p.Parse("21-18 15-21 21-19", testRoster, "u1")
	require.NotNil(t, match)
	assert.Empty(t, match.Team1)
	assert.Empty(t, match.Team2)
	assert.Equal(t, []int{21, 15, 21}, match.Team1Scores)
}

// TestDeriveWinnerPinned pins the authoritative winner rule: majority of sets
// won. [21,15,21] vs [18,21,19] is two sets to one for team1.
func TestDeriveWinnerPinned(t *testing.T) {
	assert.Equal(t, 1, transcript.DeriveWinner([]int{21, 15, 21}, []int{18, 21, 19}))
	assert.Equal(t, 2, transcript.DeriveWinner([]int{18, 21, 19}, []int{21, 15, 21}))
	assert.Equal(t, 0, transcript.DeriveWinner([]int{21, 15}, []int{18, 21}))
	assert.Equal(t, 0, transcript.DeriveWinner(nil, nil))
	assert.Equal(t, 0, transcript.DeriveWinner([]int{21, 21}, []int{21, 21}))
}
