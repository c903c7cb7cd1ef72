package processor

import (
	"github.com/mknudsen/courtside/internal/metrics"
	"github.com/mknudsen/courtside/internal/pubsub"
)

// Processor handles the business logic of processing matches.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
}
