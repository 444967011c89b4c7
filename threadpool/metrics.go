package threadpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of a pool. A nil *Metrics is valid and records nothing.
type Metrics struct {
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsPanicked  prometheus.Counter
	BusyWorkers   prometheus.Gauge
	Queued        prometheus.Gauge
	JobDuration   prometheus.Histogram
}

// NewMetrics creates the pool collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs accepted by the pool",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that returned normally",
		}),
		JobsPanicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_panicked_total",
			Help:      "Total number of jobs that panicked",
		}),
		BusyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "busy_workers",
			Help:      "Number of workers currently executing a job",
		}),
		Queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "queued_messages",
			Help:      "Number of control messages waiting for a worker",
		}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.JobsSubmitted,
		m.JobsCompleted,
		m.JobsPanicked,
		m.BusyWorkers,
		m.Queued,
		m.JobDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) jobSubmitted() {
	if m == nil {
		return
	}

	m.JobsSubmitted.Inc()
}

func (m *Metrics) setQueued(queued int) {
	if m == nil {
		return
	}

	m.Queued.Set(float64(queued))
}

func (m *Metrics) jobStarted() {
	if m == nil {
		return
	}

	m.BusyWorkers.Inc()
}

func (m *Metrics) jobFinished(d time.Duration, panicked bool) {
	if m == nil {
		return
	}

	m.BusyWorkers.Dec()
	m.JobDuration.Observe(d.Seconds())

	if panicked {
		m.JobsPanicked.Inc()

		return
	}

	m.JobsCompleted.Inc()
}
