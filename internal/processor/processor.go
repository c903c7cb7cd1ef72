package processor

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/metrics"
	"github.com/mknudsen/courtside/internal/pubsub"
)

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// ProcessMatches fetches matches that need processing and advances them through the state machine.
func (p *Processor) ProcessMatches(dryRun bool) {
	log.Info("Starting match processing...")
	matches, err := p.store.GetMatchesForProcessing()
	if err != nil {
		log.Error("Failed to get matches for processing", "error", err)
		return
	}

	if len(matches) == 0 {
		log.Info("No matches to process.")
		return
	}

	log.Info("Found matches to process", "count", len(matches))
	for _, match := range matches {
		startTime := time.Now()
		p.processMatch(match, dryRun)
		duration := time.Since(startTime).Milliseconds()
		p.metrics.ObserveProcessingDuration(float64(duration))
	}
	log.Info("Match processing finished.")
}

func (p *Processor) processMatch(match *club.Match, dryRun bool) {
	log.Info("Processing match", "matchID", match.ID, "initial_status", match.ProcessingStatus)
	for {
		currentState := match.ProcessingStatus
		log.Debug("Evaluating match state", "matchID", match.ID, "status", currentState)

		switch currentState {
		case club.StatusNew:
			// Ensure all players from the match are in our database. Provisional
			// players stay out of the roster until someone confirms them.
			var playersToUpsert []club.Player
			for _, player := range append(append([]club.Player{}, match.Team1...), match.Team2...) {
				if strings.HasPrefix(player.ID, "temp-") {
					continue
				}
				playersToUpsert = append(playersToUpsert, player)
			}
			if len(playersToUpsert) > 0 {
				if err := p.store.UpsertPlayers(playersToUpsert); err != nil {
					log.Error("Failed to upsert players for match", "error", err, "matchID", match.ID)
				}
			}

			log.Info("Match is new. Sending result notification.", "matchID", match.ID)
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventMatchRecorded, match)
			}
			p.notifier.SendResultNotification(match, dryRun)
			p.updateStatus(match, club.StatusResultNotified, dryRun)

		case club.StatusResultNotified:
			log.Info("Match result has been notified. Announcing leaderboard update.", "matchID", match.ID)
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventLeaderboardUpdated, match)
			}
			p.metrics.IncMatchesProcessed()
			p.updateStatus(match, club.StatusCompleted, dryRun)

		case club.StatusCompleted:
			log.Debug("Match is complete. No further processing needed.", "matchID", match.ID)
			return // End of the line for this match

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", match.ID)
			return // Exit if status is unknown
		}

		// If the status hasn't changed, we're done with this match for now.
		if match.ProcessingStatus == currentState {
			log.Debug("Match state did not change. Finished processing for now.", "matchID", match.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing match", "matchID", match.ID, "final_status", match.ProcessingStatus)
}

func (p *Processor) updateStatus(match *club.Match, newStatus club.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update match status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(match.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", match.ID)
	} else {
		log.Debug("Successfully updated status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
