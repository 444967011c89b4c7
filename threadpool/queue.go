package threadpool

import "sync"

type messageKind uint8

const (
	newJob messageKind = iota
	terminate
)

// message is a Control Message travelling through the queue. A terminate message carries no job.
type message struct {
	kind messageKind
	job  Job
}

// queue is an unbounded FIFO of control messages shared by every worker of a pool.
// push never blocks; pop blocks until a message is available. Each message is handed to exactly one caller of pop.
// The queued gauge is updated under the same lock as the slice so it always settles on the final length.
type queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	messages []message
	metrics  *Metrics
}

func newQueue(metrics *Metrics) *queue {
	q := &queue{metrics: metrics}
	q.cond = sync.NewCond(&q.mu)

	return q
}

func (q *queue) push(msg message) {
	q.mu.Lock()
	q.messages = append(q.messages, msg)
	q.metrics.setQueued(len(q.messages))
	q.mu.Unlock()

	q.cond.Signal()
}

func (q *queue) pop() message {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.messages) == 0 {
		q.cond.Wait()
	}

	msg := q.messages[0]

	// release the job reference so the closure can be collected once run
	q.messages[0] = message{}
	q.messages = q.messages[1:]
	q.metrics.setQueued(len(q.messages))

	return msg
}

// pending returns the number of messages not yet claimed by a worker.
func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.messages)
}
