package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Queue feeds paths to a fixed set of workers. Each document gets its own
// timeout, detached from the caller's context, so Shutdown can drain work
// that is already queued.
type Queue struct {
	runner   *Runner
	onResult func(FileResult)
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	stats    DirStats

	ch   chan string
	wg   sync.WaitGroup
	once sync.Once

	// stop is closed first on Shutdown and releases blocked Enqueue calls.
	stop     chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan string, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewQueue starts the workers. onResult may be nil.
func (r *Runner) NewQueue(onResult func(FileResult), opts ...Option) *Queue {
	q := &Queue{
		runner:   r,
		onResult: onResult,
		logger:   r.logger,
		workers:  r.cfg.Workers,
		timeout:  3 * time.Minute,
		ch:       make(chan string, 256),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("batch.queue.worker_started", "worker_id", workerID)
				for path := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					fr := q.runner.processOne(ctx, path, q.runner.artifactDir(path), &q.stats)
					cancel()
					q.logger.Info("batch.queue.processed", "worker_id", workerID, "path", path, "error", fr.Err)
					if q.onResult != nil {
						q.onResult(fr)
					}
				}
				q.logger.Debug("batch.queue.worker_stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue waits for room in the queue unless ctx is done or Shutdown starts
// first.
func (q *Queue) Enqueue(ctx context.Context, path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("batch.queue.closed", "path", path)
		return ErrQueueClosed
	}
	select {
	case q.ch <- path:
		return nil
	default:
		q.logger.Warn("batch.queue.full", "path", path)
	}
	select {
	case q.ch <- path:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.stop:
		q.logger.Warn("batch.queue.closed", "path", path)
		return ErrQueueClosed
	}
}

// Shutdown stops accepting paths and waits for queued ones until ctx is done.
func (q *Queue) Shutdown(ctx context.Context) {
	q.stopOnce.Do(func() { close(q.stop) })
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("batch.queue.shutdown_interrupted")
	case <-done:
		q.logger.Info("batch.queue.drained",
			"succeeded", q.stats.Succeeded,
			"no_template", q.stats.NoTemplate,
			"failed", q.stats.Failed,
		)
	}
}
