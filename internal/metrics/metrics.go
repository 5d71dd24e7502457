// Package metrics holds the Prometheus collectors of the sync pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feesync"

// Job outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeRetry   = "retry"
	OutcomeDropped = "dropped"
)

type Metrics struct {
	registry *prometheus.Registry

	jobs          *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	tasksEnqueued prometheus.Counter
	eventsFetched prometheus.Counter
	eventsDropped *prometheus.CounterVec
	txStored      prometheus.Counter
	cursor        *prometheus.GaugeVec
	head          *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Jobs handled by queue consumers, by queue and outcome.",
		}, []string{"queue", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time spent handling one job.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"queue"}),
		tasksEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_tasks_enqueued_total",
			Help:      "Block ranges handed to the enrichment queue.",
		}),
		eventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_events_fetched_total",
			Help:      "Transfer events kept after page-cap trimming.",
		}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_events_dropped_total",
			Help:      "Transfer events not persisted, by reason.",
		}, []string{"reason"}),
		txStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_stored_total",
			Help:      "Fee records written to the ledger.",
		}),
		cursor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_cursor_block",
			Help:      "Last synchronized block per pool.",
		}, []string{"pool", "chain_id"}),
		head: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_head_block",
			Help:      "Latest chain head observed per pool.",
		}, []string{"pool", "chain_id"}),
	}

	registry.MustRegister(
		m.jobs,
		m.jobDuration,
		m.tasksEnqueued,
		m.eventsFetched,
		m.eventsDropped,
		m.txStored,
		m.cursor,
		m.head,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) JobHandled(queue, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(queue, outcome).Inc()
	m.jobDuration.WithLabelValues(queue).Observe(elapsed.Seconds())
}

func (m *Metrics) TaskEnqueued() {
	if m == nil {
		return
	}
	m.tasksEnqueued.Inc()
}

func (m *Metrics) EventsFetched(n int) {
	if m == nil {
		return
	}
	m.eventsFetched.Add(float64(n))
}

// EventsDropped counts events skipped for reason (no_price, duplicate, invalid).
func (m *Metrics) EventsDropped(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.eventsDropped.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) TransactionsStored(n int) {
	if m == nil {
		return
	}
	m.txStored.Add(float64(n))
}

func (m *Metrics) ObserveCursor(pool string, chainID int64, block uint64) {
	if m == nil {
		return
	}
	m.cursor.WithLabelValues(pool, strconv.FormatInt(chainID, 10)).Set(float64(block))
}

func (m *Metrics) ObserveHead(pool string, chainID int64, block uint64) {
	if m == nil {
		return
	}
	m.head.WithLabelValues(pool, strconv.FormatInt(chainID, 10)).Set(float64(block))
}
