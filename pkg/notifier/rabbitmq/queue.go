package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/taikoxyz/surge-preconf-client/pkg/notifier"
)

const queueName = "preconf-end-of-sequencing"

// RabbitMQ mirrors end-of-sequencing notifications to a durable queue for
// off-box consumers (alerting, external schedulers); it never reads them
// back, so there is no Subscribe/Ack side as there was for the ingestion
// queue it's adapted from.
type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	opts notifier.NewQueueOpts
}

// New dials rabbitmq and declares the notification queue.
func New(opts notifier.NewQueueOpts) (*RabbitMQ, error) {
	slog.Info("dialing rabbitmq connection for end-of-sequencing notifier")

	r := &RabbitMQ{opts: opts}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.DialConfig(
		fmt.Sprintf("amqp://%v:%v@%v:%v/", r.opts.Username, r.opts.Password, r.opts.Host, r.opts.Port),
		amqp.Config{Heartbeat: 1 * time.Second},
	)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}

	r.conn = conn
	r.ch = ch

	slog.Info("connected to rabbitmq", "queue", queueName)
	return nil
}

// Publish mirrors a single end-of-sequencing notification.
func (r *RabbitMQ) Publish(ctx context.Context, n notifier.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return r.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close tears down the channel and connection.
func (r *RabbitMQ) Close() {
	if r.ch != nil {
		if err := r.ch.Close(); err != nil && err != amqp.ErrClosed {
			slog.Error("error closing rabbitmq channel", "error", err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil && err != amqp.ErrClosed {
			slog.Error("error closing rabbitmq connection", "error", err)
		}
	}
	slog.Info("rabbitmq notifier connection closed")
}
