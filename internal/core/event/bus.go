// Package event
package event

import (
	"reflect"
	"sync"

	"browserperf/internal/logger"
)

type Handler func(event any)

type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]Handler
	log      logger.Logger
}

func New(log logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]Handler),
		log:      log,
	}
}

func (b *Bus) Subscribe(event any, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(event)
	b.handlers[t] = append(b.handlers[t], handler)
}

// Publish runs handlers synchronously on the caller's goroutine. A panicking
// handler is logged and skipped.
func (b *Bus) Publish(event any) {
	t := reflect.TypeOf(event)

	b.mu.RLock()
	handlers := b.handlers[t]
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Warn(
						"event handler panic",
						"event", t.String(),
						"panic", r,
					)
				}
			}()
			h(event)
		}()
	}
}
