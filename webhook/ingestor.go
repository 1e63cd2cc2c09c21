package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/ghkit/errors"
	"github.com/kbukum/ghkit/logger"
)

// Webhook headers consumed by the ingestor.
const (
	HeaderSignature256 = "X-Hub-Signature-256"
	HeaderSignature    = "X-Hub-Signature"
	HeaderDelivery     = "X-GitHub-Delivery"
	HeaderEvent        = "X-GitHub-Event"
)

const defaultMaxProcessedDeliveries = 1000

// Config configures the webhook ingestor.
type Config struct {
	// Secret is the shared HMAC secret.
	Secret string `yaml:"secret" mapstructure:"secret" validate:"required"`

	// StrictSignature requires the SHA-256 signature header. When false,
	// a legacy SHA-1 signature is accepted as a fallback. Defaults to true
	// via DefaultConfig.
	StrictSignature bool `yaml:"strict_signature" mapstructure:"strict_signature"`

	// MaxProcessedDeliveries bounds the dedup set. Once exceeded, the
	// oldest half is dropped. Defaults to 1000.
	MaxProcessedDeliveries int `yaml:"max_processed_deliveries" mapstructure:"max_processed_deliveries" validate:"omitempty,min=2"`
}

// DefaultConfig returns a strict-signature configuration.
func DefaultConfig(secret string) Config {
	return Config{
		Secret:                 secret,
		StrictSignature:        true,
		MaxProcessedDeliveries: defaultMaxProcessedDeliveries,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("webhook: secret is required")
	}
	return nil
}

// Ingestor validates and dispatches webhook deliveries. The processed-
// delivery set is owned by the instance; independent ingestors never
// share dedup state.
type Ingestor struct {
	cfg Config
	log *logger.Logger

	mu       sync.Mutex
	handlers map[EventType]Handler
	// processed and order track handled delivery ids; order is insertion
	// order so trimming drops the oldest half.
	processed map[string]struct{}
	order     []string
}

// Option customizes an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the ingestor logger.
func WithLogger(log *logger.Logger) Option {
	return func(in *Ingestor) { in.log = log }
}

// New creates an ingestor.
func New(cfg Config, opts ...Option) (*Ingestor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxProcessedDeliveries < 2 {
		cfg.MaxProcessedDeliveries = defaultMaxProcessedDeliveries
	}

	in := &Ingestor{
		cfg:       cfg,
		log:       logger.Nop(),
		handlers:  make(map[EventType]Handler),
		processed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.log = in.log.WithComponent("webhook")
	return in, nil
}

// On registers the handler for an event type, replacing any previous
// one. Unknown event types are rejected.
func (in *Ingestor) On(eventType EventType, h Handler) error {
	if !knownEventTypes[eventType] {
		return fmt.Errorf("webhook: unknown event type %q", eventType)
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.handlers[eventType] = h
	return nil
}

// Handle validates one delivery and dispatches it to the registered
// handler exactly once. A replayed delivery id returns nil without
// invoking any handler. An event type without a registered handler is
// ignored successfully.
func (in *Ingestor) Handle(ctx context.Context, payload []byte, headers map[string]string) error {
	if len(payload) == 0 {
		return errors.WebhookPayload("empty payload")
	}
	if headers == nil {
		return errors.WebhookPayload("missing headers")
	}

	if err := in.verifySignature(payload, headers); err != nil {
		in.log.Warn("rejected delivery with invalid signature")
		return err
	}

	evt, err := in.parseEvent(payload, headers)
	if err != nil {
		return err
	}

	if _, parseErr := uuid.Parse(evt.DeliveryID); parseErr != nil {
		return errors.WebhookDeliveryID(evt.DeliveryID)
	}

	if in.alreadyProcessed(evt.DeliveryID) {
		// Idempotent replay absorption: not an error.
		in.log.Debug("absorbed duplicate delivery", logger.Fields("delivery_id", evt.DeliveryID))
		return nil
	}

	in.mu.Lock()
	h := in.handlers[evt.Type]
	in.mu.Unlock()
	if h == nil {
		in.log.Debug("ignored event without handler", logger.Fields("event", string(evt.Type)))
		return nil
	}

	if err := h(ctx, evt); err != nil {
		// Leave the delivery unmarked so a re-delivery can succeed.
		return fmt.Errorf("webhook: %s handler for delivery %s: %w", evt.Type, evt.DeliveryID, err)
	}

	in.markProcessed(evt.DeliveryID)
	in.log.Info("processed delivery", logger.Fields(
		"event", string(evt.Type),
		"action", evt.Action,
		"delivery_id", evt.DeliveryID,
	))
	return nil
}

// ProcessedCount returns the size of the dedup set.
func (in *Ingestor) ProcessedCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.processed)
}

// verifySignature computes the expected HMAC over the raw payload and
// compares it in constant time. The SHA-256 header is preferred; the
// legacy SHA-1 header is accepted only when strict mode is off.
func (in *Ingestor) verifySignature(payload []byte, headers map[string]string) error {
	if sig := headerValue(headers, HeaderSignature256); sig != "" {
		return in.checkHMAC(payload, sig, "sha256=", sha256.New)
	}
	if !in.cfg.StrictSignature {
		if sig := headerValue(headers, HeaderSignature); sig != "" {
			return in.checkHMAC(payload, sig, "sha1=", sha1.New)
		}
	}
	return errors.WebhookSignature("missing signature header")
}

func (in *Ingestor) checkHMAC(payload []byte, sig, prefix string, algo func() hash.Hash) error {
	if !strings.HasPrefix(sig, prefix) {
		return errors.WebhookSignature("malformed signature header")
	}

	mac := hmac.New(algo, []byte(in.cfg.Secret))
	mac.Write(payload)
	expected := prefix + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return errors.WebhookSignature("signature mismatch")
	}
	return nil
}

// parseEvent builds the typed event from headers and payload.
func (in *Ingestor) parseEvent(payload []byte, headers map[string]string) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.WebhookPayload("malformed JSON payload").WithCause(err)
	}

	return &Event{
		Type:       EventType(headerValue(headers, HeaderEvent)),
		DeliveryID: headerValue(headers, HeaderDelivery),
		Action:     env.Action,
		Repository: env.Repository,
		Sender:     env.Sender,
		Payload:    json.RawMessage(payload),
	}, nil
}

func (in *Ingestor) alreadyProcessed(deliveryID string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	_, ok := in.processed[deliveryID]
	return ok
}

// markProcessed records a handled delivery and trims the dedup set once
// it outgrows the configured maximum. Trimming drops the oldest half in
// one pass, amortizing the cost instead of evicting per insert.
func (in *Ingestor) markProcessed(deliveryID string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if _, ok := in.processed[deliveryID]; ok {
		return
	}
	in.processed[deliveryID] = struct{}{}
	in.order = append(in.order, deliveryID)

	if len(in.order) > in.cfg.MaxProcessedDeliveries {
		half := len(in.order) / 2
		for _, id := range in.order[:half] {
			delete(in.processed, id)
		}
		in.order = append(in.order[:0:0], in.order[half:]...)
		in.log.Debug("trimmed processed-delivery set", logger.Fields("remaining", len(in.order)))
	}
}

// headerValue looks a header up case-insensitively.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
