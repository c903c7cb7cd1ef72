package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/leaderboard"
	"github.com/mknudsen/courtside/internal/metrics"
	"github.com/mknudsen/courtside/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendResultNotification(match *club.Match, dryRun bool) error {
	msg := s.formatResultNotification(match)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(stats []leaderboard.PlayerStat, dryRun bool) error {
	msg := s.formatLeaderboard(stats)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(stats []leaderboard.PlayerStat) (any, error) {
	return s.formatLeaderboard(stats), nil
}

// teamName joins the players of one side into a display name.
func teamName(players []club.Player) string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return "Unknown team"
	}
	return strings.Join(names, " & ")
}

// formatResultNotification creates the Slack message for a recorded match using Block Kit.
func (s *Notifier) formatResultNotification(match *club.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏸 Match recorded! 🏸", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Teams
	team1 := teamName(match.Team1)
	team2 := teamName(match.Team2)
	var resultText string
	switch match.Winner {
	case 1:
		resultText = fmt.Sprintf("%s beat %s", team1, team2)
	case 2:
		resultText = fmt.Sprintf("%s beat %s", team2, team1)
	default:
		resultText = fmt.Sprintf("%s vs %s", team1, team2)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	// Set scores
	if len(match.Team1Scores) > 0 {
		sets := make([]string, 0, len(match.Team1Scores))
		for i, t1 := range match.Team1Scores {
			t2 := 0
			if i < len(match.Team2Scores) {
				t2 = match.Team2Scores[i]
			}
			sets = append(sets, fmt.Sprintf("%d-%d", t1, t2))
		}
		scoresText := "Sets: " + strings.Join(sets, ", ")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", scoresText, true, false), nil, nil))
	}

	// Context (match date)
	if match.MatchDate != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject("plain_text", fmt.Sprintf("Played on %s", match.MatchDate), true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(stats []leaderboard.PlayerStat) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(stats) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, stat := range stats {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> Points: %.3f | Win %%: %.2f%% (%d/%d)",
			rank,
			medal,
			stat.Player.Name,
			stat.Points,
			stat.WinPercentage(),
			stat.Won,
			stat.Played,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
