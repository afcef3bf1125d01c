package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/logging"
)

// DefaultExchange is the fanout exchange feed events are published to.
const DefaultExchange = "whisphaven.feed"

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes events as JSON to a fanout exchange. The event type is
// used as the routing key.
type AMQP struct {
	ch       channel
	conn     *amqp.Connection
	exchange string
	log      *zap.Logger
}

// DialAMQP connects to url and declares the exchange.
func DialAMQP(url, exchange string, log *zap.Logger) (*AMQP, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error establishing connection with rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening channel for rabbitmq: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}
	a := newAMQP(ch, exchange, log)
	a.conn = conn
	a.log.Info("connected to rabbitmq", zap.String("exchange", exchange))
	return a, nil
}

func newAMQP(ch channel, exchange string, log *zap.Logger) *AMQP {
	return &AMQP{ch: ch, exchange: exchange, log: logging.OrNop(log)}
}

func (a *AMQP) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Type:        ev.Type,
		Body:        body,
	}
	if err := a.ch.PublishWithContext(ctx, a.exchange, ev.Type, false, false, msg); err != nil {
		return fmt.Errorf("publishing %s: %w", ev.Type, err)
	}
	return nil
}

func (a *AMQP) Close() error {
	err := a.ch.Close()
	if a.conn != nil {
		if cerr := a.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
