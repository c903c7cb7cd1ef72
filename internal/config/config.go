package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mknudsen/courtside/internal/leaderboard"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getEnvOr := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}

	getEnvFloat := func(key string, fallback float64) float64 {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Warn("Invalid float value for environment variable, using default", "key", key, "value", value)
			return fallback
		}
		return parsed
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Port: getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		Scoring: leaderboard.Config{
			WinPoints:      getEnvFloat("WIN_POINTS", leaderboard.DefaultConfig.WinPoints),
			DrawPoints:     getEnvFloat("DRAW_POINTS", leaderboard.DefaultConfig.DrawPoints),
			LossPoints:     getEnvFloat("LOSS_POINTS", leaderboard.DefaultConfig.LossPoints),
			BuchholzWeight: getEnvFloat("BUCHHOLZ_WEIGHT", leaderboard.DefaultConfig.BuchholzWeight),
		},
	}
	return cfg
}
