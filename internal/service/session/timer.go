package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// Ticker — то, что таймер дёргает раз в интервал.
// Tick возвращает false, когда отсчёт пора прекратить.
type Ticker interface {
	Tick() bool
}

// Timer управляет обратным отсчётом сессии.
// Источник тиков внедряется: в продакшене это time.Ticker, в тестах — любой канал.
type Timer struct {
	target   Ticker
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTimer создает таймер для target
func NewTimer(target Ticker, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{
		target:   target,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start запускает отсчёт по настоящим часам в отдельной горутине
func (t *Timer) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	runCtx := t.prepare(ctx)
	if runCtx == nil {
		ticker.Stop()
		return
	}

	go func() {
		defer ticker.Stop()
		t.loop(runCtx, ticker.C)
	}()
}

// Run выполняет отсчёт по внешнему источнику тиков и блокируется до его окончания
func (t *Timer) Run(ctx context.Context, ticks <-chan time.Time) {
	runCtx := t.prepare(ctx)
	if runCtx == nil {
		return
	}
	t.loop(runCtx, ticks)
}

// prepare возвращает nil, если таймер уже запускался
func (t *Timer) prepare(ctx context.Context) context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	return runCtx
}

func (t *Timer) loop(ctx context.Context, ticks <-chan time.Time) {
	defer close(t.done)
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
			if !t.target.Tick() {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Stop останавливает отсчёт. Не ждёт выхода из цикла: Stop безопасно вызывать из OnTimeout.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
}

// Done закрывается, когда цикл отсчёта завершился
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// StartTimer запускает обратный отсчёт сессии по настоящим часам.
// Close останавливает его автоматически.
func (c *Controller) StartTimer(ctx context.Context) *Timer {
	c.mu.Lock()
	if c.timer != nil {
		timer := c.timer
		c.mu.Unlock()
		return timer
	}
	timer := NewTimer(c, c.config.TickInterval)
	c.timer = timer
	c.mu.Unlock()

	timer.Start(ctx)
	log.Printf("[Session] Попытка %s: таймер запущен, осталось %d сек.", c.params.AttemptID, c.RemainingSeconds())
	return timer
}
