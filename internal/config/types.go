package config

import "github.com/mknudsen/courtside/internal/leaderboard"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	Gemini        GeminiConfig
	ProjectID     string
	Scoring       leaderboard.Config
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type GeminiConfig struct {
	APIKey string
}
