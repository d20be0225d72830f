// Package notify decouples presence writes from live fan-out: events are
// queued and pushed to the hub by a worker pool so a slow websocket peer
// never blocks the request path.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/schoolops/presence-api/internal/models"
)

// Sink receives the dispatched events, normally the live hub.
type Sink interface {
	Notify(teacherID int64, event models.StudentPresence)
}

// Config tunes the worker pool.
type Config struct {
	Workers    int
	BufferSize int
}

type event struct {
	teacherID int64
	payload   models.StudentPresence
	enqueued  time.Time
}

// Dispatcher is an in-memory presence event queue. It satisfies the
// presence service's Notifier so it can sit between the service and the hub.
type Dispatcher struct {
	sink   Sink
	logger *zap.Logger

	events  chan event
	workers int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewDispatcher builds a dispatcher feeding the given sink.
func NewDispatcher(sink Sink, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sink:    sink,
		logger:  logger,
		events:  make(chan event, cfg.BufferSize),
		workers: cfg.Workers,
	}
}

// Start spins up the workers. Safe to call once.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.started = true
	d.logger.Sugar().Infow("presence dispatcher started", "workers", d.workers)
}

// Stop cancels workers and waits for them to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
	d.logger.Sugar().Infow("presence dispatcher stopped")
}

// Notify queues one presence event. When the buffer is full the event is
// dropped with a warning: live frames are advisory, the ledger in the
// database stays authoritative.
func (d *Dispatcher) Notify(teacherID int64, payload models.StudentPresence) {
	d.mu.Lock()
	started := d.started
	ctx := d.ctx
	d.mu.Unlock()

	if !started {
		// No live channel attached; the write path carries on.
		return
	}

	ev := event{teacherID: teacherID, payload: payload, enqueued: time.Now().UTC()}
	select {
	case <-ctx.Done():
	case d.events <- ev:
	default:
		d.logger.Warn("presence event buffer full, dropping event",
			zap.Int64("teacher_id", teacherID), zap.Int64("student_id", payload.StudentID))
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case ev := <-d.events:
			d.sink.Notify(ev.teacherID, ev.payload)
		}
	}
}
