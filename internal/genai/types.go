package genai

// generateContent request/response shapes, reduced to the fields we use.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// parsedMatch is the JSON document the model is instructed to produce.
type parsedMatch struct {
	Team1       []string `json:"team1"`
	Team2       []string `json:"team2"`
	Team1Scores []int    `json:"team1_scores"`
	Team2Scores []int    `json:"team2_scores"`
	MatchDate   string   `json:"match_date"`
}
