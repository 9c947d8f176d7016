package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/courtside/accounts-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Recorder consumes account events drained from the dispatcher.
type Recorder interface {
	Record(ctx context.Context, event ports.AccountEvent) error
}

// Dispatcher routes account events to a fixed set of workers using consistent
// hashing on the username, guaranteeing per-account event ordering.
type Dispatcher struct {
	workers  []chan ports.AccountEvent
	recorder Recorder
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder Recorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.AccountEvent, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AccountEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its username. The
// call never blocks: when the worker's buffer is full (for instance after
// the workers have stopped draining on shutdown) the event is dropped with
// a warning rather than stalling the request goroutine.
func (d *Dispatcher) Enqueue(event ports.AccountEvent) {
	select {
	case d.workers[d.shardIndex(event.Username)] <- event:
	default:
		d.log.Warn().
			Str("username", event.Username).
			Str("kind", event.Kind).
			Msg("account event dropped: worker queue full")
	}
}

// Depth reports the number of events currently buffered across all workers.
func (d *Dispatcher) Depth() int {
	total := 0
	for _, ch := range d.workers {
		total += len(ch)
	}
	return total
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AccountEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.recorder.Record(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("username", event.Username).
					Str("kind", event.Kind).
					Int("worker_id", id).
					Msg("account event recording failed")
			}
		}
	}
}
