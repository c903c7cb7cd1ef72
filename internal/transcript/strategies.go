package transcript

import (
	"regexp"

	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/roster"
)

// extraction is the outcome of one team-extraction strategy.
type extraction struct {
	team1, team2 []club.Player
	// explicitWinner is set when the phrasing itself names team1 as the
	// winner ("X beat Y", "X won against Y").
	explicitWinner bool
}

// strategy is a pure (text) -> extraction attempt. Strategies are evaluated
// in priority order; the first one that resolves at least one player for
// either team wins.
type strategy func(text string, players []club.Player) (extraction, bool)

var strategies = []strategy{
	extractVersus,
	extractBeat,
	extractNameList,
}

var (
	reVersus = regexp.MustCompile(`^(.*?)\b(?:vs\.?|versus)\b(.*)$`)
	reBeat   = regexp.MustCompile(`^(.*?)\b(?:beat|defeated|won(?:\s+against)?)\b(.*)$`)
)

// extractTeams runs the strategy chain over text that has already had date
// and score spans stripped, which is why the bare name list can serve as the
// last resort for every score-embedded phrasing.
func extractTeams(text string, players []club.Player) extraction {
	for _, s := range strategies {
		if ext, ok := s(text, players); ok {
			return ext
		}
	}
	return extraction{}
}

// extractVersus handles "<names...> vs|versus <names...>". Each side is split
// on whitespace into independent name tokens; only the resolved subset is
// kept, so more than two tokens per side is fine in principle.
func extractVersus(text string, players []club.Player) (extraction, bool) {
	m := reVersus.FindStringSubmatch(text)
	if m == nil {
		return extraction{}, false
	}
	ext := extraction{
		team1: roster.ResolveTeam(fields(m[1]), players),
		team2: roster.ResolveTeam(fields(m[2]), players),
	}
	return ext, len(ext.team1) > 0 || len(ext.team2) > 0
}

// extractBeat handles "<names...> beat|won [against] <names...>". The side
// named first is the declared winner.
func extractBeat(text string, players []club.Player) (extraction, bool) {
	m := reBeat.FindStringSubmatch(text)
	if m == nil {
		return extraction{}, false
	}
	ext := extraction{
		team1:          roster.ResolveTeam(fields(m[1]), players),
		team2:          roster.ResolveTeam(fields(m[2]), players),
		explicitWinner: true,
	}
	if len(ext.team1) == 0 && len(ext.team2) == 0 {
		return extraction{}, false
	}
	// A declared winner only makes sense if the winning side resolved.
	ext.explicitWinner = len(ext.team1) > 0
	return ext, true
}

// extractNameList is the last resort: every resolvable token goes to team1.
// It covers the "<name> [and <name>] <scores>" phrasings too, because score
// spans are stripped before strategies run.
func extractNameList(text string, players []club.Player) (extraction, bool) {
	ext := extraction{team1: roster.ResolveTeam(fields(text), players)}
	return ext, len(ext.team1) > 0
}
