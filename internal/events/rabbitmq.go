package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultExchange = "resumes"

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// RabbitMQPublisher publishes events to a durable topic exchange using the
// event type as routing key.
type RabbitMQPublisher struct {
	exchange    string
	openChannel func() (amqpChannel, error)
	closeConn   func() error
	now         func() time.Time

	mu sync.Mutex
	ch amqpChannel
}

// NewRabbitMQPublisher dials the broker and declares the exchange.
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	open := func() (amqpChannel, error) { return conn.Channel() }
	p, err := newRabbitMQPublisher(open, conn.Close, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func newRabbitMQPublisher(open func() (amqpChannel, error), closeConn func() error, exchange string) (*RabbitMQPublisher, error) {
	if strings.TrimSpace(exchange) == "" {
		exchange = defaultExchange
	}
	p := &RabbitMQPublisher{
		exchange:    exchange,
		openChannel: open,
		closeConn:   closeConn,
		now:         time.Now,
	}
	ch, err := p.channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return p, nil
}

// channel returns the shared channel, reopening it after the broker closed it.
// Callers must hold p.mu or be the constructor.
func (p *RabbitMQPublisher) channel() (amqpChannel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.openChannel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// Publish sends a persistent JSON message routed by event type.
func (p *RabbitMQPublisher) Publish(ctx context.Context, msg ResumeUploaded) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode rabbitmq message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, TypeResumeUploaded, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    msg.ResumeID,
		Timestamp:    p.now().UTC(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn == nil {
		return nil
	}
	return p.closeConn()
}

var _ Publisher = (*RabbitMQPublisher)(nil)
