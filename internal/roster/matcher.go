// Package roster resolves free-text name tokens against the club roster.
//
// The matching cascade runs cheap, precise checks before fuzzy ones:
// case-insensitive exact equality, then prefix/substring containment in either
// direction, then bounded Levenshtein distance. The ordering and the distance
// bound are deliberate; changing either changes which approximate matches are
// accepted.
package roster

import (
	"strings"

	"github.com/mknudsen/courtside/internal/club"
)

// stopWords are tokens that show up between names in spoken results and must
// never be treated as a name themselves.
var stopWords = map[string]struct{}{
	"and": {}, "vs": {}, "versus": {}, "beat": {}, "won": {}, "lost": {},
	"to": {}, "score": {}, "scores": {}, "is": {}, "are": {},
}

// Result is the outcome of a single name lookup.
type Result struct {
	Name     string
	Index    int
	Distance int
	Found    bool
}

// BestMatch resolves input against candidates and returns the best match with
// its edit distance. Candidates are tried in input order at every stage, so
// ties go to the first-encountered candidate. A miss is reported as
// Found=false, never as an error: callers treat it as "token unresolved".
func BestMatch(input string, candidates []string) Result {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" || len(candidates) == 0 {
		return Result{Index: -1}
	}

	// Exact, case-insensitive.
	for i, c := range candidates {
		if strings.EqualFold(in, c) {
			return Result{Name: c, Index: i, Distance: 0, Found: true}
		}
	}

	// Prefix in either direction.
	for i, c := range candidates {
		lc := strings.ToLower(c)
		if strings.HasPrefix(lc, in) || strings.HasPrefix(in, lc) {
			return Result{Name: c, Index: i, Distance: absDiff(len(lc), len(in)), Found: true}
		}
	}

	// Substring in either direction.
	for i, c := range candidates {
		lc := strings.ToLower(c)
		if strings.Contains(lc, in) || strings.Contains(in, lc) {
			return Result{Name: c, Index: i, Distance: absDiff(len(lc), len(in)), Found: true}
		}
	}

	// Bounded edit distance, minimum over all candidates.
	best := Result{Index: -1, Distance: -1}
	for i, c := range candidates {
		d := Levenshtein(in, strings.ToLower(c))
		if best.Index == -1 || d < best.Distance {
			best = Result{Name: c, Index: i, Distance: d}
		}
	}
	// Accept only within min(3, ceil(len/2)); short inputs get tighter bounds.
	threshold := (len(in) + 1) / 2
	if threshold > 3 {
		threshold = 3
	}
	if best.Index >= 0 && best.Distance <= threshold {
		best.Found = true
		return best
	}
	return Result{Index: -1}
}

// ResolvePlayer maps one name token to a roster player, or reports no match.
func ResolvePlayer(token string, players []club.Player) (club.Player, bool) {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	res := BestMatch(token, names)
	if !res.Found {
		return club.Player{}, false
	}
	return players[res.Index], true
}

// ResolveTeam resolves a list of tokens into a team. Stop words are skipped
// and the result is deduplicated by player id, so the same player can never
// occupy two slots on one side. Separator punctuation glued onto a token
// ("john," / "jane&") is trimmed before lookup.
func ResolveTeam(tokens []string, players []club.Player) []club.Player {
	var team []club.Player
	seen := make(map[string]struct{})
	for _, token := range tokens {
		token = strings.Trim(strings.TrimSpace(token), ",.&;:")
		if token == "" {
			continue
		}
		if _, skip := stopWords[strings.ToLower(token)]; skip {
			continue
		}
		player, ok := ResolvePlayer(token, players)
		if !ok {
			continue
		}
		if _, dup := seen[player.ID]; dup {
			continue
		}
		seen[player.ID] = struct{}{}
		team = append(team, player)
	}
	return team
}

// Levenshtein calculates the edit distance between two strings.
func Levenshtein(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
