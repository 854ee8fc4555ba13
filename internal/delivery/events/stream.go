package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
)

const (
	// StreamName is the JetStream stream for product events
	StreamName = "PRODUCTS"

	// StreamMaxAge bounds how long product events are kept
	StreamMaxAge = 7 * 24 * time.Hour
)

// StreamManager is the part of nats.JetStreamContext used to manage streams
type StreamManager interface {
	StreamInfo(stream string, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
}

// StreamConfig creates the product events stream on demand
type StreamConfig struct {
	js     StreamManager
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js StreamManager, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		logger: log,
	}
}

// productStreamConfig describes the stream: limits retention so several
// consumers can read the same events, persisted to file on a single node.
func productStreamConfig(subject string) *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{subject},
		Retention:   nats.LimitsPolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      StreamMaxAge,
		Discard:     nats.DiscardOld,
		Description: "Product lifecycle events",
	}
}

// EnsureStream creates the products stream for subject unless it exists
func (s *StreamConfig) EnsureStream(subject string) error {
	stream, err := s.js.StreamInfo(StreamName)

	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":  StreamName,
			"subject": subject,
		}).Info("Creating JetStream stream")

		if _, err := s.js.AddStream(productStreamConfig(subject)); err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}

		s.logger.Info("JetStream stream created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
		"bytes":    stream.State.Bytes,
	}).Info("JetStream stream already exists")

	return nil
}
