package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/leaderboard"
	"github.com/mknudsen/courtside/internal/pubsub"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			log.Info("Successfully cleared match from store", "matchID", matchID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetRoster()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			matches []*club.Match
			err     error
		)
		if since := r.URL.Query().Get("since"); since != "" {
			matches, err = s.Store.GetMatchesSince(since)
		} else {
			matches, err = s.Store.GetAllMatches()
		}
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

// RecordMatchHandler persists a confirmed match. The body is a match document;
// a missing id means a new match, a known id means a full-replacement edit.
func (s *Server) RecordMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var match club.Match
		if err := json.NewDecoder(r.Body).Decode(&match); err != nil {
			log.Error("Failed to decode match body", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if len(match.Team1Scores) != len(match.Team2Scores) {
			http.Error(w, "Score lists must be the same length", http.StatusBadRequest)
			return
		}
		if match.ID == "" {
			match.ID = uuid.NewString()
		}

		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would record match", "matchID", match.ID)
		} else {
			if err := s.Store.RecordMatch(&match); err != nil {
				log.Error("Failed to record match", "error", err, "matchID", match.ID)
				http.Error(w, "Failed to record match", http.StatusInternalServerError)
				return
			}
			s.Metrics.IncMatchesRecorded()
			s.pubsub.SendMessage(pubsub.EventNotifyResult, &match)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(match); err != nil {
			log.Error("Failed to encode match to JSON", "error", err)
		}
	}
}

type parseRequest struct {
	Transcript string `json:"transcript"`
	AuthorID   string `json:"author_id"`
	Engine     string `json:"engine"` // "rules" (default) or "genai"
}

// ParseTranscriptHandler turns a transcript into a candidate match without
// persisting it. The caller is expected to confirm and POST it to /record.
func (s *Server) ParseTranscriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req parseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode parse request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		engine := req.Engine
		if engine == "" {
			engine = "rules"
		}

		roster, err := s.Store.GetRoster()
		if err != nil {
			log.Error("Failed to get roster for parsing", "error", err)
			http.Error(w, "Failed to get roster", http.StatusInternalServerError)
			return
		}

		s.Metrics.IncTranscriptParses(engine)
		s.MetricsStore.Increment("parses." + engine)

		var match *club.Match
		switch engine {
		case "rules":
			match = s.Parser.Parse(req.Transcript, roster, req.AuthorID)
		case "genai":
			match, err = s.Genai.ParseTranscript(r.Context(), req.Transcript, roster, req.AuthorID)
			if err != nil {
				log.Error("Generative parse failed", "error", err)
				s.Metrics.IncParseFailures(engine)
				http.Error(w, "Failed to interpret transcript", http.StatusBadGateway)
				return
			}
		default:
			http.Error(w, "Unknown engine", http.StatusBadRequest)
			return
		}

		if match == nil {
			s.Metrics.IncParseFailures(engine)
			http.Error(w, "No match could be extracted from the transcript", http.StatusUnprocessableEntity)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(match); err != nil {
			log.Error("Failed to encode match to JSON", "error", err)
		}
	}
}

type leaderboardEntry struct {
	Rank int `json:"rank"`
	leaderboard.PlayerStat
	WinPercentage float64 `json:"win_percentage"`
}

func (s *Server) leaderboardStats(r *http.Request) ([]leaderboard.PlayerStat, error) {
	var (
		matches []*club.Match
		err     error
	)
	if since := r.URL.Query().Get("since"); since != "" {
		matches, err = s.Store.GetMatchesSince(since)
	} else {
		matches, err = s.Store.GetAllMatches()
	}
	if err != nil {
		return nil, err
	}

	buchholz := r.URL.Query().Get("buchholz") != "false"
	s.Metrics.IncLeaderboardRequests()
	return leaderboard.Aggregate(matches, s.Cfg.Scoring, buchholz), nil
}

// LeaderboardHandler serves the ranked standings. Buchholz is on unless
// buchholz=false; since=YYYY-MM-DD restricts the window.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.leaderboardStats(r)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches for leaderboard", "error", err)
			return
		}

		entries := make([]leaderboardEntry, 0, len(stats))
		for i, stat := range stats {
			entries = append(entries, leaderboardEntry{
				Rank:          i + 1,
				PlayerStat:    stat,
				WinPercentage: stat.WinPercentage(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Error("Failed to encode leaderboard to JSON", "error", err)
		}
	}
}

// UsageStatsHandler serves the durable usage counters.
func (s *Server) UsageStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.MetricsStore.GetAll()
		if err != nil {
			http.Error(w, "Failed to get usage stats", http.StatusInternalServerError)
			log.Error("Failed to get usage stats from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(counters); err != nil {
			log.Error("Failed to encode usage stats to JSON", "error", err)
		}
	}
}

func (s *Server) ProcessMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting match processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessMatches(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match processing completed.")
		log.Info("Match processing finished.")
	}
}

// readPushPayload extracts the raw message bytes from a pub/sub push
// delivery: an outer JSON envelope whose message data is base64-encoded.
// The returned status code accompanies a non-nil error.
func readPushPayload(r *http.Request) ([]byte, int, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read request body: %w", err)
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to unmarshal wrapper JSON: %w", err)
	}

	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return rawData, http.StatusOK, nil
}

// NotifyResultHandler consumes a pub/sub push delivery and sends the result
// notification for the match carried in the message payload.
func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, status, err := readPushPayload(r)
		if err != nil {
			log.Error("Failed to read push payload", "error", err)
			http.Error(w, err.Error(), status)
			return
		}
		isDryRun := isDryRunFromContext(r)
		match := club.Match{}
		if err := s.pubsub.ProcessMessage(rawData, &match); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if err := s.Notifier.SendResultNotification(&match, isDryRun); err != nil {
			log.Error("Failed to notify result", "error", err)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// NotifyLeaderboardHandler consumes a leaderboard-updated push delivery and
// posts the current standings. The triggering match is carried in the payload
// but the standings are always recomputed from the store.
func (s *Server) NotifyLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, status, err := readPushPayload(r)
		if err != nil {
			log.Error("Failed to read push payload", "error", err)
			http.Error(w, err.Error(), status)
			return
		}
		match := club.Match{}
		if err := s.pubsub.ProcessMessage(rawData, &match); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		log.Info("Leaderboard update triggered", "matchID", match.ID)

		stats, err := s.leaderboardStats(r)
		if err != nil {
			log.Error("Failed to get matches for leaderboard", "error", err)
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			return
		}
		if err := s.Notifier.SendLeaderboard(stats, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send leaderboard", "error", err)
			http.Error(w, "Failed to send leaderboard", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.leaderboardStats(r)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches for leaderboard", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(stats)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}
