package http

import (
	"net/http"

	"github.com/mknudsen/courtside/internal/club"
	"github.com/mknudsen/courtside/internal/config"
	"github.com/mknudsen/courtside/internal/genai"
	"github.com/mknudsen/courtside/internal/metrics"
	"github.com/mknudsen/courtside/internal/notifier"
	"github.com/mknudsen/courtside/internal/processor"
	"github.com/mknudsen/courtside/internal/pubsub"
	"github.com/mknudsen/courtside/internal/transcript"
)

type Server struct {
	Store          club.ClubStore
	Metrics        metrics.Metrics
	MetricsStore   metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	Parser         *transcript.Parser
	Genai          genai.Client
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
