package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/frahmantamala/personal-ledger/internal/core/events"
)

const publishTimeout = 5 * time.Second

// channel is the slice of *amqp091.Channel the forwarder needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Message is the JSON body sent for every ledger event.
type Message struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Forwarder republishes bus events on a topic exchange, routed by event type.
type Forwarder struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	logger   *slog.Logger
}

func NewForwarder(url, exchange string, logger *slog.Logger) (*Forwarder, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Forwarder{conn: conn, channel: ch, exchange: exchange, logger: logger}, nil
}

func newForwarderWithChannel(ch channel, exchange string, logger *slog.Logger) *Forwarder {
	return &Forwarder{channel: ch, exchange: exchange, logger: logger}
}

// Attach subscribes the forwarder to every event on bus.
func (f *Forwarder) Attach(bus *events.EventBus) {
	bus.Subscribe(events.AllEvents, f.Handle)
}

// Handle is an events.Handler.
func (f *Forwarder) Handle(ctx context.Context, event events.Event) error {
	body, err := Encode(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = f.channel.PublishWithContext(
		ctx,
		f.exchange,
		event.EventType(),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    event.EventID(),
			Timestamp:    event.OccurredAt(),
			Type:         event.EventType(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	f.logger.DebugContext(ctx, "forwarded event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"exchange", f.exchange)
	return nil
}

func Encode(event events.Event) ([]byte, error) {
	return json.Marshal(Message{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt().UTC(),
		Data:       event.Payload(),
	})
}

func (f *Forwarder) Close() error {
	if f.channel != nil {
		f.channel.Close()
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}

// Healthy reports whether the broker connection is still open.
func (f *Forwarder) Healthy() error {
	if f.conn == nil || f.conn.IsClosed() {
		return errors.New("amqp connection closed")
	}
	return nil
}
