package main

import (
	"net"

	"PoolHTTPd/threadpool"
)

// WorkerPool defines the interface the listener uses to hand off accepted connections.
type WorkerPool interface {
	Execute(job threadpool.Job) error
}

var _ WorkerPool = (*threadpool.ThreadPool)(nil)

// connectionJob binds an accepted connection to its handler so it can travel through the pool as a single job.
func connectionJob(conn net.Conn, handler func(net.Conn)) threadpool.Job {
	return func() {
		handler(conn)
	}
}
