package infra

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-key sliding window kept in process memory.
// State is lost on restart and not shared between instances; use
// PostgresLimiter when running more than one replica.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type MemoryOption func(*MemoryLimiter)

func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

// NewMemoryLimiter starts a janitor that evicts idle keys every sweep.
// sweep <= 0 disables it. Call Close to stop it.
func NewMemoryLimiter(limit int, window, sweep time.Duration, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(l)
	}

	if sweep > 0 {
		go l.janitor(sweep)
	} else {
		close(l.done)
	}
	return l
}

// prune drops hits older than the window. Caller holds mu.
func (l *MemoryLimiter) prune(key string, now time.Time) []time.Time {
	hits := l.hits[key]
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= l.window {
		i++
	}
	hits = hits[i:]
	if len(hits) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = hits
	return hits
}

func (l *MemoryLimiter) Exceeded(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key, l.now())) >= l.limit, nil
}

func (l *MemoryLimiter) Hit(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.hits[key] = append(l.prune(key, now), now)
	return nil
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	hits := l.prune(key, now)
	if len(hits) >= l.limit {
		return false, nil
	}
	l.hits[key] = append(hits, now)
	return true, nil
}

// Len is the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key := range l.hits {
		l.prune(key, now)
	}
}

func (l *MemoryLimiter) janitor(every time.Duration) {
	defer close(l.done)
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) Close() error {
	l.once.Do(func() { close(l.stop) })
	<-l.done
	return nil
}
