package runqueue

import (
	"context"
	"fmt"
	"sync"

	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	StandardQueueName   = "validation_run_queue"
	DeadLetterQueueName = "validation_run_dlq"
)

// RunQueueMessage is the payload stored in RabbitMQ for one pending run.
type RunQueueMessage struct {
	ID          string `json:"id"`
	RunID       string `json:"run_id"`
	FailedCount int    `json:"failed_count"`
}

// Service manages the RabbitMQ queues that feed the validation worker.
type Service struct {
	ch       *amqp.Channel
	log      *zap.Logger
	prefetch int
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

// NewService declares the durable run queues, enables publisher confirms, and
// sets QoS.
func NewService(conn *amqp.Connection, log *zap.Logger, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(StandardQueueName, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(DeadLetterQueueName, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &Service{
		ch:       ch,
		log:      log,
		prefetch: prefetch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

// QueuedItem is a fetched delivery with its decoded payload.
type QueuedItem struct {
	DeliveryTag uint64
	Message     RunQueueMessage
}

// Enqueue publishes a run message to the standard queue and waits for confirm.
func (s *Service) Enqueue(ctx context.Context, message RunQueueMessage) error {
	s.log.Info("RunQueue.Enqueue called",
		zap.String(constvars.LoggingRunIDKey, message.RunID),
	)
	return s.publish(ctx, StandardQueueName, message)
}

// Reenqueue puts a message with a bumped failed count back on the queue tail.
func (s *Service) Reenqueue(ctx context.Context, message RunQueueMessage) error {
	s.log.Info("RunQueue.Reenqueue called",
		zap.String(constvars.LoggingRunIDKey, message.RunID),
		zap.Int(constvars.LoggingFailedCountKey, message.FailedCount),
	)
	return s.publish(ctx, StandardQueueName, message)
}

// EnqueueToDeadQueue parks a message that exceeded the retry threshold.
func (s *Service) EnqueueToDeadQueue(ctx context.Context, message RunQueueMessage) error {
	s.log.Info("RunQueue.EnqueueToDeadQueue called",
		zap.String(constvars.LoggingRunIDKey, message.RunID),
		zap.Int(constvars.LoggingFailedCountKey, message.FailedCount),
	)
	return s.publish(ctx, DeadLetterQueueName, message)
}

// FetchN retrieves up to n messages using basic.get without auto-ack.
func (s *Service) FetchN(ctx context.Context, n int) ([]QueuedItem, error) {
	if n <= 0 {
		n = 1
	}
	items := make([]QueuedItem, 0, n)

	for i := 0; i < n; i++ {
		d, ok, err := s.ch.Get(StandardQueueName, false)
		if err != nil {
			return nil, exceptions.ErrQueueConsume(err)
		}
		if !ok {
			break
		}
		var payload RunQueueMessage
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			// Invalid JSON would loop forever; park it on the DLQ instead.
			_ = d.Ack(false)
			_ = s.publishRaw(ctx, DeadLetterQueueName, d.Body)
			continue
		}
		items = append(items, QueuedItem{DeliveryTag: d.DeliveryTag, Message: payload})
	}

	return items, nil
}

// AckMessage acknowledges a delivery so it leaves the queue.
func (s *Service) AckMessage(ctx context.Context, deliveryTag uint64) error {
	if err := s.ch.Ack(deliveryTag, false); err != nil {
		return exceptions.ErrQueueAck(err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, queue string, message RunQueueMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return s.publishRaw(ctx, queue, body)
}

func (s *Service) publishRaw(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrQueuePublish(err)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrQueuePublish(fmt.Errorf("message not confirmed by broker"))
		}
	case <-ctx.Done():
		return exceptions.ErrQueuePublish(ctx.Err())
	}
	return nil
}
