package messaging

import (
	"codeparity/internal/application/common/slogger"
	"codeparity/internal/config"
	"codeparity/internal/domain/valueobject"
	"codeparity/internal/port/inbound"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// defaultJobTimeout bounds a single comparison when no timeout is configured.
const defaultJobTimeout = 30 * time.Second

// ComparisonRequest is the wire format of a comparison job. ComparisonID is
// caller-assigned and echoed back verbatim so requesters can correlate
// replies.
type ComparisonRequest struct {
	ComparisonID string `json:"comparison_id"`
	Language     string `json:"language"`
	Expected     string `json:"expected"`
	Actual       string `json:"actual"`
}

// ComparisonReply is the wire format of a comparison outcome. Exactly one of
// Result or Error is populated.
type ComparisonReply struct {
	ComparisonID string                        `json:"comparison_id"`
	Result       *valueobject.ComparisonResult `json:"result,omitempty"`
	Error        string                        `json:"error,omitempty"`
}

// ComparisonConsumer serves comparison requests over NATS request/reply.
// Instances in the same queue group share the subject, so requests are
// load-balanced across workers.
type ComparisonConsumer struct {
	workerConfig config.WorkerConfig
	natsConfig   config.NATSConfig
	handler      inbound.ComparisonHandler

	mu      sync.Mutex
	conn    *nats.Conn
	sub     *nats.Subscription
	running bool
}

// NewComparisonConsumer creates a consumer with validated configuration.
func NewComparisonConsumer(
	workerConfig config.WorkerConfig,
	natsConfig config.NATSConfig,
	handler inbound.ComparisonHandler,
) (*ComparisonConsumer, error) {
	if workerConfig.Subject == "" {
		return nil, errors.New("subject cannot be empty")
	}
	if workerConfig.QueueGroup == "" {
		return nil, errors.New("queue group cannot be empty")
	}
	if natsConfig.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("comparison handler cannot be nil")
	}

	return &ComparisonConsumer{
		workerConfig: workerConfig,
		natsConfig:   natsConfig,
		handler:      handler,
	}, nil
}

// Start connects to NATS and subscribes to the comparison subject. It
// returns once the subscription is live; message handling runs on NATS
// callback goroutines until Stop.
func (c *ComparisonConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return errors.New("consumer already running")
	}

	conn, err := nats.Connect(
		c.natsConfig.URL,
		nats.MaxReconnects(c.natsConfig.MaxReconnects),
		nats.ReconnectWait(c.natsConfig.ReconnectWait),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	sub, err := conn.QueueSubscribe(c.workerConfig.Subject, c.workerConfig.QueueGroup, c.handleMessage)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", c.workerConfig.Subject, err)
	}

	c.conn = conn
	c.sub = sub
	c.running = true

	slogger.Info(ctx, "Comparison consumer started", slogger.Fields{
		"subject":     c.workerConfig.Subject,
		"queue_group": c.workerConfig.QueueGroup,
		"nats_url":    c.natsConfig.URL,
	})

	return nil
}

// Stop drains the subscription so in-flight requests finish, then closes
// the connection.
func (c *ComparisonConsumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if err := c.sub.Drain(); err != nil {
		slogger.ErrorWithError(ctx, err, "Failed to drain subscription", nil)
	}
	c.conn.Close()

	c.sub = nil
	c.conn = nil
	c.running = false

	slogger.Info(ctx, "Comparison consumer stopped", nil)
	return nil
}

// IsRunning reports whether the consumer is subscribed.
func (c *ComparisonConsumer) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// handleMessage processes one comparison request and replies with the
// outcome. Malformed requests get an error reply rather than silence so
// requesters never block on their timeout unnecessarily.
func (c *ComparisonConsumer) handleMessage(msg *nats.Msg) {
	timeout := c.workerConfig.JobTimeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var request ComparisonRequest
	if err := json.Unmarshal(msg.Data, &request); err != nil {
		slogger.ErrorWithError(ctx, err, "Failed to decode comparison request", slogger.Fields{
			"subject": msg.Subject,
		})
		c.reply(ctx, msg, ComparisonReply{Error: "malformed comparison request"})
		return
	}

	result, err := c.handler.Compare(ctx, request.Expected, request.Actual, request.Language)
	if err != nil {
		slogger.ErrorWithError(ctx, err, "Comparison request rejected", slogger.Fields{
			"comparison_id": request.ComparisonID,
			"language":      request.Language,
		})
		c.reply(ctx, msg, ComparisonReply{
			ComparisonID: request.ComparisonID,
			Error:        err.Error(),
		})
		return
	}

	c.reply(ctx, msg, ComparisonReply{
		ComparisonID: request.ComparisonID,
		Result:       &result,
	})
}

// reply encodes and sends a reply when the request expects one.
func (c *ComparisonConsumer) reply(ctx context.Context, msg *nats.Msg, reply ComparisonReply) {
	if msg.Reply == "" {
		return
	}

	encoded, err := json.Marshal(reply)
	if err != nil {
		slogger.ErrorWithError(ctx, err, "Failed to encode comparison reply", nil)
		return
	}

	if respondErr := msg.Respond(encoded); respondErr != nil {
		slogger.ErrorWithError(ctx, respondErr, "Failed to send comparison reply", slogger.Fields{
			"reply_subject": msg.Reply,
		})
	}
}
