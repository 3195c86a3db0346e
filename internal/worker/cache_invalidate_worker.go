package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"isu-photo-board/internal/platform/rabbitmq"
)

// CacheInvalidateWorker drains invalidation events off the request path and
// deletes the named cache keys. Losing an event is tolerable; every derived
// key also carries a TTL.
type CacheInvalidateWorker struct {
	conn      *amqp.Connection
	redis     *redisv9.Client
	queueName string
	log       *logrus.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCacheInvalidateWorker(conn *amqp.Connection, redis *redisv9.Client, queueName string, log *logrus.Logger) *CacheInvalidateWorker {
	return &CacheInvalidateWorker{
		conn:      conn,
		redis:     redis,
		queueName: queueName,
		log:       log,
	}
}

func (w *CacheInvalidateWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event rabbitmq.InvalidationEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					w.log.WithError(err).Warn("worker decode invalidation event failed")
					_ = d.Nack(false, false)
					continue
				}

				if len(event.Keys) > 0 {
					if err := w.redis.Del(workerCtx, event.Keys...).Err(); err != nil {
						w.log.WithError(err).WithField("keys", event.Keys).Warn("worker cache delete failed")
						_ = d.Nack(false, true)
						continue
					}
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *CacheInvalidateWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
