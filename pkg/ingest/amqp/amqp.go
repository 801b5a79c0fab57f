// Package amqp feeds ingestion sessions from a RabbitMQ queue. An
// extraction backend publishes one fact per message; malformed messages
// are acknowledged and dropped so they never wedge the queue.
package amqp

import (
	"context"
	"fmt"
	"io"

	"github.com/rabbitmq/amqp091-go"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/util"
	"github.com/caseboard/backend/pkg/ingest"
	"github.com/caseboard/backend/pkg/logger"
)

const dialRetries = 5

// Source consumes facts from one queue. It implements ingest.EventSource.
type Source struct {
	queue      string
	conn       *amqp091.Connection
	ch         *amqp091.Channel
	deliveries <-chan amqp091.Delivery
}

// Dial connects to the broker named by the RABBITMQ_* environment
// variables and starts consuming queueName. The queue is declared durable
// so facts survive a broker restart while no investigator is connected.
func Dial(queueName string) (*Source, error) {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := util.Retry(dialRetries, func() (*amqp091.Connection, error) {
		return amqp091.Dial(connURL)
	})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}

	deliveries, err := ch.Consume(
		queueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp consume: %w", err)
	}

	return &Source{
		queue:      queueName,
		conn:       conn,
		ch:         ch,
		deliveries: deliveries,
	}, nil
}

// Next blocks for the next well-formed fact. A closed delivery channel
// means the broker connection is gone and the stream has ended.
func (s *Source) Next(ctx context.Context) (*ingest.Fact, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case d, ok := <-s.deliveries:
			if !ok {
				return nil, io.EOF
			}

			fact, err := ingest.DecodeFact(d.Body)
			if err != nil {
				metric.FactsDropped.WithLabelValues("malformed").Inc()
				logger.Warn("[Queue] Dropping malformed fact", "queue", s.queue, "err", err)
				if ackErr := d.Ack(false); ackErr != nil {
					logger.Error("[Queue] Ack failed", "queue", s.queue, "err", ackErr)
				}
				continue
			}

			if err := d.Ack(false); err != nil {
				logger.Error("[Queue] Ack failed", "queue", s.queue, "err", err)
			}
			return fact, nil
		}
	}
}

func (s *Source) Close() error {
	if err := s.ch.Close(); err != nil {
		logger.Debug("[Queue] Channel close failed", "queue", s.queue, "err", err)
	}
	return s.conn.Close()
}
