package domain

import (
	"sync"
	"time"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/go-utils/logger"
)

// EventBus buffers domain events for the broadcaster loop in main.
// Emit never blocks a request: when the buffer is full the event is dropped.
type EventBus struct {
	ch  chan models.ResourceEvent
	log *logger.ZapLogger

	mu     sync.RWMutex
	closed bool
}

func NewEventBus(size int, log *logger.ZapLogger) *EventBus {
	return &EventBus{
		ch:  make(chan models.ResourceEvent, size),
		log: log,
	}
}

func (b *EventBus) Events() <-chan models.ResourceEvent { return b.ch }

func (b *EventBus) Emit(ev models.ResourceEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "event dropped, bus closed",
			Fields:  map[string]any{"type": ev.Type, "id": ev.ID},
		})
		return
	}
	select {
	case b.ch <- ev:
	default:
		b.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "event dropped, bus full",
			Fields:  map[string]any{"type": ev.Type, "id": ev.ID},
		})
	}
}

// Close ends the broadcaster loop. Later Emits are dropped.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
