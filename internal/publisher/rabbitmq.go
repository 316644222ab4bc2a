package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"post_browser/internal/domain"
)

// RabbitMQ publishes view events to a direct exchange.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// View events only matter to renderers of the running session, so
	// neither the exchange nor the queue survive a broker restart.
	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if cfg.QueueName != "" {
		if err := bindQueue(ch, cfg); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

func bindQueue(ch *amqp.Channel, cfg Config) error {
	q, err := ch.QueueDeclare(
		cfg.QueueName,
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// ViewMessage is the wire form of a domain.ViewEvent. The visible posts are
// included so a remote renderer can draw without calling the API itself.
type ViewMessage struct {
	Kind        domain.EventKind   `json:"kind"`
	Version     uint64             `json:"version"`
	PageNumber  int                `json:"page_number"`
	TotalPages  int                `json:"total_pages"`
	TotalCount  int                `json:"total_count"`
	SortKey     domain.SortKey     `json:"sort_key"`
	SearchQuery string             `json:"search_query"`
	Status      domain.Status      `json:"status"`
	Empty       domain.EmptyReason `json:"empty,omitempty"`
	Error       string             `json:"error,omitempty"`
	Visible     []domain.Post      `json:"visible"`
	Timestamp   time.Time          `json:"timestamp"`
}

func newViewMessage(event *domain.ViewEvent) ViewMessage {
	snap := event.Snapshot
	msg := ViewMessage{
		Kind:        event.Kind,
		Version:     snap.Version,
		PageNumber:  snap.PageNumber,
		TotalPages:  snap.TotalPages,
		TotalCount:  snap.TotalCount,
		SortKey:     snap.SortKey,
		SearchQuery: snap.SearchQuery,
		Status:      snap.Status,
		Empty:       snap.Empty,
		Visible:     snap.Visible,
		Timestamp:   event.OccurredAt,
	}
	if snap.Err != nil {
		msg.Error = snap.Err.Error()
	}
	if msg.Visible == nil {
		msg.Visible = []domain.Post{}
	}
	return msg
}

func (r *RabbitMQ) Publish(ctx context.Context, event *domain.ViewEvent) error {
	body, err := json.Marshal(newViewMessage(event))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	messageID := uuid.NewString()
	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			MessageId:   messageID,
			Type:        string(event.Kind),
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published view event",
		"message_id", messageID,
		"kind", event.Kind,
		"page", event.Snapshot.PageNumber,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
