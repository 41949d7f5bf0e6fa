package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// idleDelay is used between polls of queues returning no message
const idleDelay = 50 * time.Millisecond

// Listener dispatches consumed events to a handler until stopped
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	logger    *zap.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewListener creates a listener
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T]), logger *zap.Logger) *Listener[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener[T]{publisher: publisher, handler: handler, logger: logger}
}

// Start starts consuming in background
func (l *Listener[T]) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for ctx.Err() == nil {
			event, err := l.publisher.Consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				l.logger.Warn("failed to consume event", zap.Error(err))
				l.idle(ctx)
				continue
			}
			if event == nil {
				l.idle(ctx)
				continue
			}
			l.handler(event)
		}
	}()
}

func (l *Listener[T]) idle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(idleDelay):
	}
}

// Stop stops the listener and waits for the consumer to exit
func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}
