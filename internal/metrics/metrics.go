package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Registry struct {
	reg              *prometheus.Registry
	ReportsGenerated *prometheus.CounterVec
	ReportErrors     *prometheus.CounterVec
	OrdersLoaded     prometheus.Counter
	CustomersLoaded  prometheus.Counter
	ReportLatencySec *prometheus.HistogramVec
	LastRunUnix      prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	generated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_reports_generated_total",
	}, []string{"report"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_report_errors_total",
	}, []string{"report"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{Name: "analytics_orders_loaded_total"})
	customers := prometheus.NewCounter(prometheus.CounterOpts{Name: "analytics_customers_loaded_total"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_report_latency_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{Name: "analytics_last_run_timestamp_seconds"})

	r.MustRegister(generated, failed, orders, customers, latency, lastRun)
	return &Registry{
		reg:              r,
		ReportsGenerated: generated,
		ReportErrors:     failed,
		OrdersLoaded:     orders,
		CustomersLoaded:  customers,
		ReportLatencySec: latency,
		LastRunUnix:      lastRun,
	}
}

// Observe records the outcome of one report run started at t.
func (r *Registry) Observe(report string, t *Timer, err error) {
	r.ReportLatencySec.WithLabelValues(report).Observe(t.Duration().Seconds())
	if err != nil {
		r.ReportErrors.WithLabelValues(report).Inc()
		return
	}
	r.ReportsGenerated.WithLabelValues(report).Inc()
	r.LastRunUnix.SetToCurrentTime()
}

// WriteTextfile dumps all metrics in the text exposition format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
