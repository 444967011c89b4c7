package threadpool

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// worker is a consumer loop bound to one goroutine. done is closed when the loop returns and acts as the join handle.
type worker struct {
	id      int
	queue   *queue
	logger  *slog.Logger
	metrics *Metrics
	done    chan struct{}
}

func newWorker(id int, q *queue, logger *slog.Logger, metrics *Metrics) *worker {
	w := &worker{
		id:      id,
		queue:   q,
		logger:  logger,
		metrics: metrics,
		done:    make(chan struct{}),
	}

	logger.Debug("Creating worker", slog.Int("worker", id))

	go w.loop()

	return w
}

func (w *worker) loop() {
	defer close(w.done)

	for {
		msg := w.queue.pop()

		switch msg.kind {
		case newJob:
			w.logger.Debug("Worker got a job; executing", slog.Int("worker", w.id))
			w.run(msg.job)
		case terminate:
			w.logger.Debug("Worker received terminate signal", slog.Int("worker", w.id))

			return
		}
	}
}

// run executes a single job. A panic inside the job is recovered so the worker stays available for the next message.
func (w *worker) run(job Job) {
	start := time.Now()

	w.metrics.jobStarted()

	defer func() {
		r := recover()

		w.metrics.jobFinished(time.Since(start), r != nil)

		if r != nil {
			w.logger.Error(
				"Job panicked",
				slog.Int("worker", w.id),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	job()
}

// join blocks until the worker goroutine has returned.
func (w *worker) join() {
	<-w.done
}
