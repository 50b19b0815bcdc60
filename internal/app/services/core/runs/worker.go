package runs

import (
	"context"
	"fmt"
	"time"

	"facturation-service/internal/app/config"
	"facturation-service/internal/app/contracts"
	"facturation-service/internal/app/services/shared/runqueue"
	"facturation-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// Worker drains the run queue on a ticker with at-least-once semantics. A
// redis lock keeps concurrent instances from evaluating the same runs.
type Worker struct {
	log     *zap.Logger
	cfg     *config.InternalConfig
	locker  contracts.LockerService
	queue   *runqueue.Service
	usecase contracts.RunUsecase
	stop    chan struct{}
}

func NewWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	queue *runqueue.Service,
	usecase contracts.RunUsecase,
) *Worker {
	return &Worker{
		log:     log,
		cfg:     cfg,
		locker:  lockerSvc,
		queue:   queue,
		usecase: usecase,
		stop:    make(chan struct{}),
	}
}

// Start begins the ticker loop and returns a stop function.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.RunQueue.WorkerIntervalInSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)

	fmt.Println("Validation worker started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-w.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				w.runOnce(ctx, interval)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

func (w *Worker) runOnce(ctx context.Context, interval time.Duration) {
	ttl := interval - time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	acquired, lockVal, err := w.locker.TryLock(ctx, constvars.RedisKeyRunWorkerLock, ttl)
	if err != nil {
		w.log.Info("worker lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Info("worker lock not acquired; another instance is running")
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, constvars.RedisKeyRunWorkerLock, lockVal); err != nil {
			w.log.Error("worker unlock failed", zap.Error(err))
		}
	}()

	max := w.cfg.RunQueue.MaxQueue
	if max <= 0 {
		max = 1
	}
	items, err := w.queue.FetchN(ctx, max)
	if err != nil {
		w.log.Error("queue.FetchN error", zap.Error(err))
		return
	}

	for _, item := range items {
		w.processItem(ctx, item)
	}
}

func (w *Worker) processItem(ctx context.Context, item runqueue.QueuedItem) {
	msg := item.Message
	w.log.Info("worker processing queued run",
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.String(constvars.LoggingRunIDKey, msg.RunID),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
	)

	if err := w.usecase.ProcessRun(ctx, msg.RunID); err != nil {
		w.log.Error("worker run processing failed",
			zap.String(constvars.LoggingMessageIDKey, msg.ID),
			zap.String(constvars.LoggingRunIDKey, msg.RunID),
			zap.Error(err),
		)
		w.requeueOnError(ctx, item, msg)
		return
	}

	if err := w.queue.AckMessage(ctx, item.DeliveryTag); err != nil {
		w.log.Error("ack failed after success",
			zap.String(constvars.LoggingMessageIDKey, msg.ID),
			zap.String(constvars.LoggingRunIDKey, msg.RunID),
			zap.Error(err),
		)
		return
	}
	w.log.Info("worker run processed; message removed from queue",
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.String(constvars.LoggingRunIDKey, msg.RunID),
	)
}

func (w *Worker) requeueOnError(ctx context.Context, item runqueue.QueuedItem, msg runqueue.RunQueueMessage) {
	msg.FailedCount++
	if msg.FailedCount >= w.cfg.RunQueue.ThrottleRetry {
		if err := w.queue.EnqueueToDeadQueue(ctx, msg); err != nil {
			w.log.Error("enqueue to DLQ failed",
				zap.String(constvars.LoggingMessageIDKey, msg.ID),
				zap.String(constvars.LoggingRunIDKey, msg.RunID),
				zap.Error(err),
			)
			return
		}
		_ = w.queue.AckMessage(ctx, item.DeliveryTag)
		w.log.Info("moved run message to DLQ",
			zap.String(constvars.LoggingMessageIDKey, msg.ID),
			zap.String(constvars.LoggingRunIDKey, msg.RunID),
			zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
		)
		return
	}

	if err := w.queue.Reenqueue(ctx, msg); err != nil {
		w.log.Error("reenqueue failed",
			zap.String(constvars.LoggingMessageIDKey, msg.ID),
			zap.String(constvars.LoggingRunIDKey, msg.RunID),
			zap.Error(err),
		)
		return
	}
	_ = w.queue.AckMessage(ctx, item.DeliveryTag)
	w.log.Info("retryable failure; incremented failed count and requeued",
		zap.String(constvars.LoggingMessageIDKey, msg.ID),
		zap.String(constvars.LoggingRunIDKey, msg.RunID),
		zap.Int(constvars.LoggingFailedCountKey, msg.FailedCount),
	)
}
