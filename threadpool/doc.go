// Package threadpool runs jobs on a fixed number of worker goroutines fed by one shared FIFO queue.
//
// Work and shutdown travel through the same queue: Execute enqueues a job message, Shutdown enqueues
// one terminate message per worker and then waits for all of them to exit. A job that panics is
// recovered and logged; its worker carries on with the next message.
package threadpool
