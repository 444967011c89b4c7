package threadpool

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrInvalidSize is returned by New when the requested worker count is not positive.
	ErrInvalidSize = errors.New("threadpool: size must be greater than zero")

	// ErrPoolClosed is returned by Execute once Shutdown has started.
	ErrPoolClosed = errors.New("threadpool: pool is shut down")

	// ErrNilJob is returned by Execute when called with a nil job.
	ErrNilJob = errors.New("threadpool: nil job")
)

// Job is a unit of deferred work. It is run exactly once by exactly one worker.
type Job func()

// Option configures a ThreadPool.
type Option func(*ThreadPool)

// WithLogger sets the logger used by the pool and its workers.
func WithLogger(logger *slog.Logger) Option {
	return func(p *ThreadPool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors to the pool.
func WithMetrics(metrics *Metrics) Option {
	return func(p *ThreadPool) {
		p.metrics = metrics
	}
}

// ThreadPool owns a fixed set of workers and the submission side of their shared queue.
// The number of workers never changes after New returns.
type ThreadPool struct {
	workers []*worker
	queue   *queue
	logger  *slog.Logger
	metrics *Metrics

	mu         sync.Mutex
	closed     bool
	terminates int
	shutdown   sync.Once
}

// New creates a pool with size workers, each already waiting on the queue.
// A size of zero or less is rejected before any worker is started.
func New(size int, opts ...Option) (*ThreadPool, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	p := &ThreadPool{
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.queue = newQueue(p.metrics)

	p.workers = make([]*worker, 0, size)

	for id := range size {
		p.workers = append(p.workers, newWorker(id, p.queue, p.logger, p.metrics))
	}

	p.logger.Info("Thread pool started", slog.Int("workers", size))

	return p, nil
}

// MustNew is like New but panics on an invalid size.
func MustNew(size int, opts ...Option) *ThreadPool {
	p, err := New(size, opts...)
	if err != nil {
		panic(err)
	}

	return p
}

// Execute hands job to the next idle worker. It never waits for a worker to become free.
// Safe for concurrent use.
func (p *ThreadPool) Execute(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.queue.push(message{kind: newJob, job: job})
	p.metrics.jobSubmitted()

	return nil
}

// Shutdown stops accepting jobs, sends one terminate message per worker and waits for every worker to exit.
// Jobs queued before Shutdown are run first. Calling Shutdown more than once is a no-op.
func (p *ThreadPool) Shutdown() {
	p.shutdown.Do(func() {
		p.mu.Lock()
		p.closed = true

		for range p.workers {
			p.queue.push(message{kind: terminate})
			p.terminates++
		}
		p.mu.Unlock()

		for _, w := range p.workers {
			p.logger.Debug("Shutting down worker", slog.Int("worker", w.id))
			w.join()
		}

		p.logger.Info("Thread pool stopped", slog.Int("workers", len(p.workers)))
	})
}

// Size returns the number of workers fixed at construction.
func (p *ThreadPool) Size() int {
	return len(p.workers)
}

// TerminatesSent returns how many terminate messages Shutdown has enqueued.
func (p *ThreadPool) TerminatesSent() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.terminates
}

// Pending returns the number of queued messages that no worker has claimed yet.
func (p *ThreadPool) Pending() int {
	return p.queue.pending()
}
