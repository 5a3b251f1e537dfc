// Package formevents publishes form lifecycle events to NATS.
package formevents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
	"github.com/fivetwenty-io/crudkit/pkg/form"
)

// DefaultSubjectPrefix is the subject prefix used when none is configured.
const DefaultSubjectPrefix = "crudkit.forms"

// Static errors for err113 compliance.
var (
	ErrPublisherRequired = errors.New("publisher is required")
	ErrURLRequired       = errors.New("NATS URL is required")
)

// Publisher is the subset of *nats.Conn used by NATSObserver.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Payload is the JSON message published for every event.
type Payload struct {
	Resource  string         `json:"resource"`
	Type      form.EventType `json:"type"`
	Operation string         `json:"operation,omitempty"`
	State     form.State     `json:"state"`
	Succeeded bool           `json:"succeeded"`
	Exception bool           `json:"exception"`
	Message   string         `json:"message,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	Error     string         `json:"error,omitempty"`
	Time      time.Time      `json:"time"`
}

// NATSConfig configures Connect.
type NATSConfig struct {
	URL           string
	Name          string
	SubjectPrefix string
	Timeout       time.Duration
	Logger        crudkit.Logger
}

// NATSObserver publishes form events on <prefix>.<resource>.<type>.
type NATSObserver struct {
	publisher Publisher
	conn      *nats.Conn
	prefix    string
	resource  string
	logger    crudkit.Logger
}

// NewNATSObserver creates an observer for resource on an existing publisher.
func NewNATSObserver(publisher Publisher, prefix, resource string, logger crudkit.Logger) (*NATSObserver, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}

	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	if logger == nil {
		logger = crudkit.NopLogger()
	}

	return &NATSObserver{
		publisher: publisher,
		prefix:    strings.TrimSuffix(prefix, "."),
		resource:  resource,
		logger:    logger,
	}, nil
}

// Connect dials NATS and returns an observer that owns the connection.
func Connect(config *NATSConfig, resource string) (*NATSObserver, error) {
	if config == nil || config.URL == "" {
		return nil, ErrURLRequired
	}

	opts := []nats.Option{}

	if config.Name != "" {
		opts = append(opts, nats.Name(config.Name))
	}

	if config.Timeout > 0 {
		opts = append(opts, nats.Timeout(config.Timeout))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	observer, err := NewNATSObserver(conn, config.SubjectPrefix, resource, config.Logger)
	if err != nil {
		conn.Close()

		return nil, err
	}

	observer.conn = conn

	return observer, nil
}

// Subject returns the subject used for eventType.
func (o *NATSObserver) Subject(eventType form.EventType) string {
	return o.prefix + "." + subjectToken(o.resource) + "." + string(eventType)
}

// Notify implements form.Observer. Publish failures are logged and dropped.
func (o *NATSObserver) Notify(_ context.Context, event form.Event) {
	payload := Payload{
		Resource:  o.resource,
		Type:      event.Type,
		Operation: event.Operation,
		State:     event.State,
		Succeeded: event.Succeeded,
		Exception: event.Exception,
		Message:   event.Message,
		Errors:    event.Errors,
		Time:      event.Time,
	}

	if event.Err != nil {
		payload.Error = event.Err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		o.logger.Error("Failed to encode form event", map[string]interface{}{"error": err.Error()})

		return
	}

	subject := o.Subject(event.Type)

	err = o.publisher.Publish(subject, data)
	if err != nil {
		o.logger.Warn("Failed to publish form event", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})

		return
	}

	o.logger.Debug("Published form event", map[string]interface{}{"subject": subject})
}

// Close drains the connection opened by Connect. Observers built on an
// external publisher leave it open.
func (o *NATSObserver) Close() error {
	if o.conn == nil {
		return nil
	}

	err := o.conn.Drain()
	if err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// subjectToken makes resource safe for use as a single subject token.
func subjectToken(resource string) string {
	if resource == "" {
		return "_"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '/':
			return '_'
		default:
			return r
		}
	}, resource)
}
