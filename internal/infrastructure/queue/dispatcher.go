package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
)

// Dispatcher writes session audit events off the request path. Events are
// sharded by session id so each session's trail is written in order.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	repo    ports.SessionEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.SessionAuditor = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.SessionEventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues an event. A full queue drops the event rather than block a
// session transition.
func (d *Dispatcher) Record(e domain.SessionEvent) {
	select {
	case d.workers[d.shardIndex(e.SessionID)] <- e:
	default:
		d.log.Warn().
			Str("session_id", e.SessionID).
			Str("type", string(e.Type)).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a session id deterministically to a worker index.
func (d *Dispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case e := <-ch:
			d.write(ctx, id, e)
		}
	}
}

// drain flushes what is already queued using a context detached from the
// cancelled one.
func (d *Dispatcher) drain(id int, ch <-chan domain.SessionEvent) {
	for {
		select {
		case e := <-ch:
			d.write(context.Background(), id, e)
		default:
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, e domain.SessionEvent) {
	if err := d.repo.InsertEvent(ctx, &e); err != nil {
		d.log.Error().Err(err).
			Str("session_id", e.SessionID).
			Str("type", string(e.Type)).
			Int("worker_id", id).
			Msg("audit event write failed")
	}
}
