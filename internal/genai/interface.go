package genai

import (
	"context"

	"github.com/mknudsen/courtside/internal/club"
)

// Client defines the interface for the generative transcript interpreter.
// This allows for mock implementations to be used in tests.
type Client interface {
	ParseTranscript(ctx context.Context, transcript string, roster []club.Player, authorID string) (*club.Match, error)
}
