package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/config"
	"github.com/mknudsen/courtside/internal/database"
	"github.com/mknudsen/courtside/internal/genai"
	"github.com/mknudsen/courtside/internal/leaderboard"
	"github.com/mknudsen/courtside/internal/metrics"
	"github.com/mknudsen/courtside/internal/notifier"
	"github.com/mknudsen/courtside/internal/processor"
	"github.com/mknudsen/courtside/internal/pubsub"
	"github.com/mknudsen/courtside/internal/transcript"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const testSlackSigningSecret = "test-signing-secret"

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, genaiClient genai.Client, n notifier.Notifier, slackSigningSecret string) (*Server, func()) {
	t.Helper()

	// For handlers that use the store, we need a real db connection for now.
	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db)
	cfg := config.Config{
		Slack:   config.SlackConfig{SigningSecret: slackSigningSecret},
		Scoring: leaderboard.DefaultConfig,
	}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	metricsStore := metrics.New(db)
	ps := pubsub.NewMock("TEST")
	proc := processor.New(clubStore, n, metricsSvc, ps)
	parser := transcript.NewParser()

	server := NewServer(clubStore, metricsSvc, metricsStore, metricsHandler, cfg, parser, genaiClient, n, proc, ps)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return server, teardown
}

// mockPubsub extracts the mock pub/sub client wired in by setupTestServer.
func mockPubsub(t *testing.T, s *Server) *pubsub.MockPubSubClient {
	t.Helper()
	mock, ok := s.pubsub.(*pubsub.MockPubSubClient)
	require.True(t, ok, "server was not built with the mock pub/sub client")
	return mock
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := strings.NewReader(form.Encode())
	req, err := http.NewRequest("POST", targetURL, body)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	// Read the request body to generate the signature, then re-set it for the
	// actual handler.
	bodyBytes, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	signature := hex.EncodeToString(h.Sum(nil))

	req.Header.Set("X-Slack-Signature", "v0="+signature)

	return req
}

func addTestRoster(s *Server) {
	s.Store.AddPlayer("p1", "John Doe")
	s.Store.AddPlayer("p2", "Jane Smith")
	s.Store.AddPlayer("p3", "Bob Johnson")
	s.Store.AddPlayer("p4", "Alice Williams")
}

func testMatch(id string, winner int) *club.Match {
	return &club.Match{
		ID:          id,
		Team1:       []club.Player{{ID: "p1", Name: "John Doe"}, {ID: "p2", Name: "Jane Smith"}},
		Team2:       []club.Player{{ID: "p3", Name: "Bob Johnson"}, {ID: "p4", Name: "Alice Williams"}},
		Team1Scores: []int{21, 15, 21},
		Team2Scores: []int{18, 21, 19},
		Winner:      winner,
		MatchDate:   "2024-03-15",
		CreatedTs:   time.Now().Unix(),
		CreatedBy:   "u1",
	}
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
	defer teardown()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestListMembersHandler(t *testing.T) {
	server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
	defer teardown()

	addTestRoster(server)

	req, err := http.NewRequest("GET", "/members", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "John Doe")
	assert.Contains(t, rr.Body.String(), "p2")
}

func TestListMatchesHandler(t *testing.T) {
	server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
	defer teardown()

	m1 := testMatch("m1", 1)
	m1.MatchDate = "2024-01-10"
	m2 := testMatch("m2", 2)
	m2.MatchDate = "2024-03-15"
	require.NoError(t, server.Store.RecordMatch(m1))
	require.NoError(t, server.Store.RecordMatch(m2))

	t.Run("lists all matches", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/matches", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var matches []*club.Match
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &matches))
		assert.Len(t, matches, 2)
	})

	t.Run("filters matches with since", func(t *testing.T) {
		req, err := http.NewRequest("GET", "/matches?since=2024-02-01", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var matches []*club.Match
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &matches))
		require.Len(t, matches, 1)
		assert.Equal(t, "m2", matches[0].ID)
	})
}

func TestRecordMatchHandler(t *testing.T) {
	t.Run("records a match and queues the notification", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		ps := mockPubsub(t, server)

		body, err := json.Marshal(testMatch("", 1))
		require.NoError(t, err)

		req, err := http.NewRequest("POST", "/record", bytes.NewReader(body))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var recorded club.Match
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recorded))
		assert.NotEmpty(t, recorded.ID, "a new match should be assigned an id")

		matches, err := server.Store.GetAllMatches()
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, club.StatusNew, matches[0].ProcessingStatus)

		require.Len(t, ps.SendMessageCalls, 1)
		assert.Equal(t, string(pubsub.EventNotifyResult), ps.SendMessageCalls[0].Topic)
	})

	t.Run("dry run skips persistence", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		ps := mockPubsub(t, server)

		body, err := json.Marshal(testMatch("", 1))
		require.NoError(t, err)

		req, err := http.NewRequest("POST", "/record?dry_run=true", bytes.NewReader(body))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		matches, err := server.Store.GetAllMatches()
		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Empty(t, ps.SendMessageCalls)
	})

	t.Run("rejects mismatched score lists", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()

		match := testMatch("", 1)
		match.Team2Scores = []int{18, 21}
		body, err := json.Marshal(match)
		require.NoError(t, err)

		req, err := http.NewRequest("POST", "/record", bytes.NewReader(body))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()

		req, err := http.NewRequest("POST", "/record", strings.NewReader("{not json"))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()

		req, err := http.NewRequest("GET", "/record", nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestParseTranscriptHandler(t *testing.T) {
	parseBody := func(transcript, engine string) io.Reader {
		body, _ := json.Marshal(map[string]string{
			"transcript": transcript,
			"author_id":  "u1",
			"engine":     engine,
		})
		return bytes.NewReader(body)
	}

	t.Run("rules engine extracts a match", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		addTestRoster(server)

		req, err := http.NewRequest("POST", "/parse", parseBody("John and Jane beat Bob and Alice 21-18 15-21 21-19", ""))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var match club.Match
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &match))
		require.Len(t, match.Team1, 2)
		assert.Equal(t, "p1", match.Team1[0].ID)
		assert.Equal(t, "p2", match.Team1[1].ID)
		assert.Equal(t, []int{21, 15, 21}, match.Team1Scores)
		assert.Equal(t, 1, match.Winner)

		matches, err := server.Store.GetAllMatches()
		require.NoError(t, err)
		assert.Empty(t, matches, "parsing must not persist anything")
	})

	t.Run("unusable transcript yields 422", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()
		addTestRoster(server)

		req, err := http.NewRequest("POST", "/parse", parseBody("we had a great time at practice", "rules"))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("genai engine delegates to the client", func(t *testing.T) {
		mockGenai := genai.NewMockClient()
		mockGenai.ParseTranscriptFunc = func(ctx context.Context, transcript string, roster []club.Player, authorID string) (*club.Match, error) {
			return testMatch("m-genai", 1), nil
		}
		server, teardown := setupTestServer(t, mockGenai, notifier.NewMock(), "")
		defer teardown()
		addTestRoster(server)

		req, err := http.NewRequest("POST", "/parse", parseBody("john beat bob", "genai"))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, mockGenai.ParseTranscriptCalls, 1)
		assert.Equal(t, "john beat bob", mockGenai.ParseTranscriptCalls[0])

		var match club.Match
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &match))
		assert.Equal(t, "m-genai", match.ID)
	})

	t.Run("unknown engine yields 400", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()

		req, err := http.NewRequest("POST", "/parse", parseBody("john beat bob", "oracle"))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLeaderboardHandler(t *testing.T) {
	server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
	defer teardown()
	require.NoError(t, server.Store.RecordMatch(testMatch("m1", 1)))

	req, err := http.NewRequest("GET", "/leaderboard", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var entries []leaderboardEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "p1", entries[0].Player.ID)
	assert.Equal(t, 100.0, entries[0].WinPercentage)
	assert.Equal(t, "p4", entries[3].Player.ID)
}

func TestUsageStatsHandler(t *testing.T) {
	server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
	defer teardown()
	addTestRoster(server)

	for i := 0; i < 2; i++ {
		body, _ := json.Marshal(map[string]string{"transcript": "john beat bob 21-15", "author_id": "u1"})
		req, err := http.NewRequest("POST", "/parse", bytes.NewReader(body))
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	req, err := http.NewRequest("GET", "/stats", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var counters map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counters))
	assert.Equal(t, 2, counters["parses.rules"])
}

func TestClearStoreHandler(t *testing.T) {
	server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
	defer teardown()
	require.NoError(t, server.Store.RecordMatch(testMatch("m1", 1)))
	require.NoError(t, server.Store.RecordMatch(testMatch("m2", 2)))

	req, err := http.NewRequest("GET", "/clear?matchID=m1", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	matches, err := server.Store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m2", matches[0].ID)

	req, err = http.NewRequest("GET", "/clear", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	matches, err = server.Store.GetAllMatches()
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestProcessMatchesHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, teardown := setupTestServer(t, genai.NewMockClient(), mockNotifier, "")
	defer teardown()
	addTestRoster(server)
	require.NoError(t, server.Store.RecordMatch(testMatch("m1", 1)))

	req, err := http.NewRequest("GET", "/process", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	matches, err := server.Store.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, club.StatusCompleted, matches[0].ProcessingStatus)
	assert.Len(t, mockNotifier.SendResultNotificationCalls, 1)
}

// pushEnvelope wraps a match the way a pub/sub push subscription delivers it:
// msgpack payload, base64-encoded, inside the JSON envelope.
func pushEnvelope(t *testing.T, match *club.Match) io.Reader {
	t.Helper()
	payload, err := msgpack.Marshal(match)
	require.NoError(t, err)
	envelope, err := json.Marshal(map[string]any{
		"subscription": "projects/test/subscriptions/notify-result",
		"message": map[string]string{
			"data": base64.StdEncoding.EncodeToString(payload),
		},
	})
	require.NoError(t, err)
	return bytes.NewReader(envelope)
}

func TestNotifyResultHandler(t *testing.T) {
	t.Run("notifies the match from the push payload", func(t *testing.T) {
		mockNotifier := notifier.NewMock()
		server, teardown := setupTestServer(t, genai.NewMockClient(), mockNotifier, "")
		defer teardown()

		req, err := http.NewRequest("POST", "/notify-result", pushEnvelope(t, testMatch("m1", 1)))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
		require.Len(t, mockNotifier.SendResultNotificationCalls, 1)
		assert.Equal(t, "m1", mockNotifier.SendResultNotificationCalls[0].Match.ID)
	})

	t.Run("rejects a malformed envelope", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()

		req, err := http.NewRequest("POST", "/notify-result", strings.NewReader("{not json"))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects invalid base64 data", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()

		body := `{"subscription":"s","message":{"data":"%%%not-base64%%%"}}`
		req, err := http.NewRequest("POST", "/notify-result", strings.NewReader(body))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestNotifyLeaderboardHandler(t *testing.T) {
	t.Run("recomputes and sends the standings", func(t *testing.T) {
		mockNotifier := notifier.NewMock()
		server, teardown := setupTestServer(t, genai.NewMockClient(), mockNotifier, "")
		defer teardown()
		require.NoError(t, server.Store.RecordMatch(testMatch("m1", 1)))

		req, err := http.NewRequest("POST", "/notify-leaderboard", pushEnvelope(t, testMatch("m1", 1)))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
		require.Len(t, mockNotifier.SendLeaderboardCalls, 1)
		stats := mockNotifier.SendLeaderboardCalls[0]
		require.Len(t, stats, 4)
		assert.Equal(t, "p1", stats[0].Player.ID)
	})

	t.Run("rejects a malformed envelope", func(t *testing.T) {
		server, teardown := setupTestServer(t, genai.NewMockClient(), notifier.NewMock(), "")
		defer teardown()

		req, err := http.NewRequest("POST", "/notify-leaderboard", strings.NewReader("{not json"))
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatLeaderboardResponseFunc = func(stats []leaderboard.PlayerStat) (any, error) {
		return slack.Message{}, nil
	}
	server, teardown := setupTestServer(t, genai.NewMockClient(), mockNotifier, testSlackSigningSecret)
	defer teardown()
	require.NoError(t, server.Store.RecordMatch(testMatch("m1", 1)))

	t.Run("responds with the formatted leaderboard", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with missing signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)
		req.Header.Del("X-Slack-Signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with outdated timestamp", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)
		req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
