package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yourname/bloomhealth/internal"
)

// AMQPStore publishes each record to a durable queue instead of storing it.
// Consumers receive the collection in the message type and the id in the
// message id.
type AMQPStore struct {
	queue   string
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	logger  internal.Logger
}

type amqpDocument struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Record     map[string]any `json:"record"`
}

func NewAMQPStore(url, queue string, logger internal.Logger) (*AMQPStore, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Errorf("failed to connect to rabbitmq: %v", err)
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	logger.Infof("connected to rabbitmq, publishing to %s", queue)
	return &AMQPStore{queue: queue, conn: conn, channel: ch, logger: logger}, nil
}

func (q *AMQPStore) Put(ctx context.Context, collection, id string, record map[string]any) error {
	body, err := json.Marshal(amqpDocument{Collection: collection, ID: id, Record: record})
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	err = q.channel.PublishWithContext(ctx,
		"",      // exchange
		q.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    id,
			Type:         collection,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		q.logger.Errorf("failed to publish document: %v", err)
		return err
	}
	return nil
}

func (q *AMQPStore) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.channel.Close(); err != nil {
		q.logger.Warnf("error closing channel: %v", err)
	}
	return q.conn.Close()
}

var _ DocumentStore = (*AMQPStore)(nil)
