package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mediation-cms/internal/domain/submissions"
	"mediation-cms/internal/platform/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange                 = "mediation.events"
	RoutingSubmissionCreated = "submission.created"
)

// submissionCreatedEvent es el payload publicado (sin details).
type submissionCreatedEvent struct {
	EventType    string    `json:"eventType"`
	SubmissionID string    `json:"submissionId"`
	ServiceType  string    `json:"serviceType"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Publisher publica en un exchange topic durable.
// mu serializa el uso del channel (no es seguro entre goroutines).
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	log     logger.Logger
}

func NewPublisher(url string, log logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("event publisher ready", map[string]any{"exchange": Exchange})
	return &Publisher{conn: conn, channel: ch, log: log}, nil
}

func (p *Publisher) SubmissionCreated(ctx context.Context, s submissions.Submission) error {
	body, err := json.Marshal(submissionCreatedEvent{
		EventType:    RoutingSubmissionCreated,
		SubmissionID: s.ID,
		ServiceType:  s.ServiceType,
		Email:        s.Submitter.Email,
		FirstName:    s.Submitter.FirstName,
		LastName:     s.Submitter.LastName,
		CreatedAt:    s.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		Exchange,                 // exchange
		RoutingSubmissionCreated, // routing key
		false,                    // mandatory
		false,                    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    s.ID,
			Body:         body,
			Headers: amqp.Table{
				"event_type":   RoutingSubmissionCreated,
				"service_type": s.ServiceType,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Debug("published event", map[string]any{
		"routing_key":   RoutingSubmissionCreated,
		"submission_id": s.ID,
	})
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
