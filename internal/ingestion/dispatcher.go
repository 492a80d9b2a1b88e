package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrQueueFull is returned by Submit when the buffer has no room under the
	// reject policy, or stayed full for the whole enqueue timeout under block.
	ErrQueueFull = errors.New("ingestion queue is full")
	// ErrDispatcherClosed is returned by Submit once Close has been called.
	ErrDispatcherClosed = errors.New("ingestion dispatcher is closed")
)

// OverflowPolicy decides what Submit does when the buffer is full.
type OverflowPolicy string

const (
	PolicyReject OverflowPolicy = "reject"
	PolicyBlock  OverflowPolicy = "block"
	PolicyDrop   OverflowPolicy = "drop"
)

// ParseOverflowPolicy validates a configured policy name. Empty means reject.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(s) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyBlock, PolicyDrop:
		return OverflowPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown overflow policy '%s' (reject, block, drop)", s)
	}
}

// Job is one accepted record waiting to be written.
type Job struct {
	IngestID string
	Record   v1.Record
	Source   string
}

type DispatcherOptions struct {
	QueueSize      int
	WorkerCount    int
	Policy         OverflowPolicy
	EnqueueTimeout time.Duration
	WriteTimeout   time.Duration
}

// Dispatcher is a bounded in-process queue drained by a fixed pool of workers
// that write records through the store. Callers are answered as soon as the
// record is buffered; write failures are only logged and counted.
type Dispatcher struct {
	store storage.LogStore
	opts  DispatcherOptions
	jobs  chan Job

	// mu guards closed and the send side of jobs.
	mu     sync.RWMutex
	closed bool

	startOnce sync.Once
	group     errgroup.Group
}

func NewDispatcher(store storage.LogStore, opts DispatcherOptions) *Dispatcher {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1000
	}
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 4
	}
	if opts.Policy == "" {
		opts.Policy = PolicyReject
	}
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Dispatcher{
		store: store,
		opts:  opts,
		jobs:  make(chan Job, opts.QueueSize),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.opts.WorkerCount; i++ {
			worker := i
			d.group.Go(func() error {
				d.run(worker)
				return nil
			})
		}
		slog.Info("[Dispatcher] Started",
			"workers", d.opts.WorkerCount,
			"queue_size", d.opts.QueueSize,
			"overflow_policy", d.opts.Policy)
	})
}

// Submit buffers a job according to the overflow policy. Under the drop
// policy a full buffer discards the job and Submit still returns nil.
func (d *Dispatcher) Submit(ctx context.Context, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	category := string(job.Record.Category())

	select {
	case d.jobs <- job:
		d.accepted(category)
		return nil
	default:
	}

	switch d.opts.Policy {
	case PolicyDrop:
		telemetry.IngestionRejected.WithLabelValues(category, "dropped").Inc()
		slog.Warn("[Dispatcher] Queue full, record dropped",
			"ingest_id", job.IngestID,
			"category", category)
		return nil

	case PolicyBlock:
		timer := time.NewTimer(d.opts.EnqueueTimeout)
		defer timer.Stop()
		select {
		case d.jobs <- job:
			d.accepted(category)
			return nil
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	telemetry.IngestionRejected.WithLabelValues(category, "queue_full").Inc()
	return ErrQueueFull
}

func (d *Dispatcher) accepted(category string) {
	telemetry.RecordsAccepted.WithLabelValues(category).Inc()
	telemetry.IngestionQueueDepth.Set(float64(len(d.jobs)))
}

// Depth reports how many jobs are buffered.
func (d *Dispatcher) Depth() int {
	return len(d.jobs)
}

// Close stops accepting jobs and waits for the workers to drain the buffer.
// It returns ctx.Err() if the buffer could not be drained in time; the
// remaining writes keep running in the background.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	// Workers must exist to drain, even if Start was never called.
	d.Start()

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("[Dispatcher] Drained")
		return nil
	case <-ctx.Done():
		slog.Warn("[Dispatcher] Shutdown timed out before drain", "remaining", len(d.jobs))
		return ctx.Err()
	}
}

func (d *Dispatcher) run(worker int) {
	for job := range d.jobs {
		telemetry.IngestionQueueDepth.Set(float64(len(d.jobs)))
		d.write(worker, job)
	}
}

// write persists one job. Panics are recovered so a bad record cannot take
// a worker down.
func (d *Dispatcher) write(worker int, job Job) {
	category := string(job.Record.Category())

	defer func() {
		if r := recover(); r != nil {
			telemetry.RecordWriteFailures.WithLabelValues(category, job.Source).Inc()
			slog.Error("[Dispatcher] Panic while writing record",
				"worker", worker,
				"ingest_id", job.IngestID,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	// Detached from the request: the caller has already been answered.
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.WriteTimeout)
	defer cancel()

	id, err := d.store.Insert(ctx, job.Record)
	if err != nil {
		telemetry.RecordWriteFailures.WithLabelValues(category, job.Source).Inc()
		slog.Error("[Dispatcher] Failed to write record",
			"worker", worker,
			"ingest_id", job.IngestID,
			"category", category,
			"error", err)
		return
	}

	telemetry.RecordsWritten.WithLabelValues(category, job.Source).Inc()
	slog.Debug("[Dispatcher] Record written",
		"ingest_id", job.IngestID,
		"category", category,
		"id", id)
}
