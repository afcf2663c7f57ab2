// Package messagequeue runs chat work one user at a time so commands from the same user never interleave.
package messagequeue

import (
	"context"
	"errors"
	"sync"

	"github.com/Soypete/star-interview-bot/logging"
	"github.com/Soypete/star-interview-bot/metrics"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("queue closed")

// Job is one unit of work for a user.
type Job func(ctx context.Context)

// Queue keeps a FIFO worker per user. Jobs for one user run in submission
// order; different users run in parallel. A worker exits when its backlog is empty.
type Queue struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *logging.Logger

	mu      sync.Mutex
	workers map[string]*worker
	closed  bool
	wg      sync.WaitGroup
}

type worker struct {
	pending []Job
}

// New creates a queue whose jobs receive a context derived from parent.
func New(parent context.Context, logger *logging.Logger) *Queue {
	if logger == nil {
		logger = logging.Default()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Queue{
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		workers: make(map[string]*worker),
	}
}

// Submit enqueues job for userID and starts a worker if none is running.
func (q *Queue) Submit(userID string, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	if w, ok := q.workers[userID]; ok {
		w.pending = append(w.pending, job)
		return nil
	}

	w := &worker{pending: []Job{job}}
	q.workers[userID] = w
	metrics.UserQueueDepth.Inc()
	q.wg.Add(1)
	go q.run(userID, w)
	return nil
}

func (q *Queue) run(userID string, w *worker) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		if len(w.pending) == 0 {
			delete(q.workers, userID)
			metrics.UserQueueDepth.Dec()
			q.mu.Unlock()
			return
		}
		job := w.pending[0]
		w.pending = w.pending[1:]
		q.mu.Unlock()

		q.execute(userID, job)
	}
}

func (q *Queue) execute(userID string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("recovered from panic in queued job", "userID", userID, "panic", r)
		}
	}()
	job(q.ctx)
}

// Len returns the number of users with a live worker.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.workers)
}

// Close stops accepting jobs, waits for queued jobs to finish and then cancels their context.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	q.logger.Info("user queue shut down")
}
