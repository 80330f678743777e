package worker

import (
	"context"
	"fmt"
	"log"
	"time"
)

// HandlerFunc processes one event payload. A returned error sends the
// delivery down the dead-letter path, so handlers must be idempotent.
type HandlerFunc func(ctx context.Context, body []byte) error

// Dispatcher routes deliveries to handlers by exact routing key. Unknown
// keys are logged and dropped: producers are free to introduce event types
// this consumer does not know yet.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	timeout  time.Duration
}

func NewDispatcher(handlers map[string]HandlerFunc, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{handlers: handlers, timeout: timeout}
}

// Dispatch runs the handler bound to key under a deadline. A panicking
// handler is contained and reported as an error; it never takes the
// consumer loop down with it.
func (d *Dispatcher) Dispatch(ctx context.Context, key string, body []byte) (err error) {
	h, ok := d.handlers[key]
	if !ok {
		log.Printf("[notify] no handler for %s, dropping", key)
		return nil
	}

	hctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", key, r)
		}
	}()
	return h(hctx, body)
}
