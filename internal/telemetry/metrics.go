package telemetry

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"firehoseproc/api/firehose"
	"firehoseproc/internal/logging"
)

// Metrics implements processor.Observer.
type Metrics struct {
	records       *prometheus.CounterVec
	batches       prometheus.Counter
	batchFailures prometheus.Counter
	batchRecords  prometheus.Histogram
	batchDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firehose_records_total",
			Help: "Records processed, by result tag.",
		}, []string{"result"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firehose_batches_total",
			Help: "Batches processed.",
		}),
		batchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "firehose_batch_failures_total",
			Help: "Batches aborted by a record failure.",
		}),
		batchRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "firehose_batch_records",
			Help:    "Records per batch.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "firehose_batch_duration_seconds",
			Help:    "Wall time spent processing one batch.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.records, m.batches, m.batchFailures, m.batchRecords, m.batchDuration)
	for _, r := range []firehose.Result{firehose.ResultOk, firehose.ResultDropped, firehose.ResultProcessingFailed} {
		m.records.WithLabelValues(string(r))
	}
	return m
}

func (m *Metrics) ObserveRecord(r firehose.Result) {
	m.records.WithLabelValues(string(r)).Inc()
}

func (m *Metrics) ObserveBatch(records int, elapsed time.Duration, err error) {
	m.batches.Inc()
	if err != nil {
		m.batchFailures.Inc()
	}
	m.batchRecords.Observe(float64(records))
	m.batchDuration.Observe(elapsed.Seconds())
}

// Expose serves /metrics for g on port in the background.
func Expose(port int, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("metrics server stopped", "err", err)
		}
	}()
	return srv
}
