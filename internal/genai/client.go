// Package genai interprets transcripts with a generative model as an
// alternative to the rule-based parser. The model gets the roster and a
// strict JSON contract; everything it returns is still validated and
// re-resolved against the roster before a match is built.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/roster"
	"github.com/mknudsen/courtside/internal/transcript"
)

const defaultModel = "gemini-1.5-flash"

// APIClient is a Gemini-backed transcript interpreter that implements the
// Client interface.
type APIClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	now        func() time.Time
	BaseURL    string
}

// NewClient creates a new Gemini client.
func NewClient(apiKey string) Client {
	return &APIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		model:      defaultModel,
		now:        time.Now,
		BaseURL:    "https://generativelanguage.googleapis.com",
	}
}

// Ensure APIClient implements the Client interface.
var _ Client = (*APIClient)(nil)

// ParseTranscript asks the model to extract a match from the transcript. Any
// failure along the way (transport, HTTP status, malformed model output)
// returns an error so the caller can fall back to the rule-based parser.
func (c *APIClient) ParseTranscript(ctx context.Context, text string, players []club.Player, authorID string) (*club.Match, error) {
	today := c.now().Format("2006-01-02")

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(text, players, today)}}}},
		GenerationConfig: &generationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from Gemini API", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("model returned no candidates")
	}

	raw := stripFences(genResp.Candidates[0].Content.Parts[0].Text)
	var parsed parsedMatch
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Error("Model returned malformed JSON", "raw", raw)
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	return c.buildMatch(parsed, players, authorID, today), nil
}

func (c *APIClient) buildMatch(parsed parsedMatch, players []club.Player, authorID, today string) *club.Match {
	matchDate := today
	if _, err := time.Parse("2006-01-02", parsed.MatchDate); err == nil {
		matchDate = parsed.MatchDate
	}

	return &club.Match{
		ID:          uuid.NewString(),
		Team1:       resolveNames(parsed.Team1, players),
		Team2:       resolveNames(parsed.Team2, players),
		Team1Scores: parsed.Team1Scores,
		Team2Scores: parsed.Team2Scores,
		Winner:      transcript.DeriveWinner(parsed.Team1Scores, parsed.Team2Scores),
		MatchDate:   matchDate,
		CreatedTs:   c.now().Unix(),
		CreatedBy:   authorID,
	}
}

// resolveNames maps model-returned names onto the roster. Names the roster
// cannot account for become provisional players so the result is still
// reviewable rather than silently dropped.
func resolveNames(names []string, players []club.Player) []club.Player {
	resolved := make([]club.Player, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if p, ok := roster.ResolvePlayer(name, players); ok {
			resolved = append(resolved, p)
			continue
		}
		resolved = append(resolved, club.Player{
			ID:   "temp-" + uuid.NewString(),
			Name: name,
		})
	}
	return resolved
}

// stripFences removes a surrounding markdown code fence, which the model
// emits even when asked for bare JSON.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func buildPrompt(text string, players []club.Player, today string) string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}

	var b strings.Builder
	b.WriteString("You extract badminton match results from voice transcripts.\n")
	b.WriteString("Known players: ")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\nToday's date is ")
	b.WriteString(today)
	b.WriteString(".\n\n")
	b.WriteString("Respond with a single JSON object, no prose, using exactly these keys:\n")
	b.WriteString(`{"team1": [], "team2": [], "team1_scores": [], "team2_scores": [], "match_date": ""}` + "\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Map names to the closest known player name; keep unknown names as heard.\n")
	b.WriteString("- team1_scores[i] and team2_scores[i] are the two sides of set i+1; scores never exceed 30.\n")
	b.WriteString("- match_date is YYYY-MM-DD; resolve \"today\" and \"yesterday\" against today's date.\n")
	b.WriteString("- Omit nothing you heard; leave arrays empty when the transcript has no such data.\n\n")
	b.WriteString("Transcript: ")
	b.WriteString(text)
	return b.String()
}
