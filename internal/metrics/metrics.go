package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-inventory-backend/internal/model"
	"smart-inventory-backend/internal/store"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
	subscribers  prometheus.Gauge
	published    prometheus.Counter
	dropped      prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_store_operations_total",
			Help: "Store operations by operation and result.",
		}, []string{"op", "result"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stock_store_operation_seconds",
			Help:    "Store operation latency.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"op"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stock_realtime_subscribers",
			Help: "Currently connected realtime viewers.",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stock_realtime_published_total",
			Help: "Events published to realtime viewers.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stock_realtime_dropped_total",
			Help: "Per-viewer deliveries dropped because the viewer buffer was full.",
		}),
	}
	m.registry.MustRegister(m.storeOps, m.storeLatency, m.subscribers, m.published, m.dropped)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SubscribersChanged(n int) { m.subscribers.Set(float64(n)) }
func (m *Metrics) Published()               { m.published.Inc() }
func (m *Metrics) Dropped()                 { m.dropped.Inc() }

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.storeLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.storeOps.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, store.ErrValidation):
		return "invalid"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// InstrumentStore wraps s so every call is counted and timed.
func InstrumentStore(s store.Store, m *Metrics) store.Store {
	return &instrumentedStore{next: s, m: m}
}

type instrumentedStore struct {
	next store.Store
	m    *Metrics
}

func (s *instrumentedStore) RecordLot(ctx context.Context, in store.RecordLotParams) error {
	start := time.Now()
	err := s.next.RecordLot(ctx, in)
	s.m.observe("record_lot", start, err)
	return err
}

func (s *instrumentedStore) AdjustLotQuantity(ctx context.Context, uid string, qty float64, issuedBy string) (float64, error) {
	start := time.Now()
	remain, err := s.next.AdjustLotQuantity(ctx, uid, qty, issuedBy)
	s.m.observe("adjust_lot", start, err)
	return remain, err
}

func (s *instrumentedStore) ListLots(ctx context.Context) ([]model.Lot, error) {
	start := time.Now()
	lots, err := s.next.ListLots(ctx)
	s.m.observe("list_lots", start, err)
	return lots, err
}

func (s *instrumentedStore) AppendHardwareLog(ctx context.Context, uid string, value float64) (model.HardwareLog, error) {
	start := time.Now()
	entry, err := s.next.AppendHardwareLog(ctx, uid, value)
	s.m.observe("append_hardware_log", start, err)
	return entry, err
}

func (s *instrumentedStore) ListHardwareLogs(ctx context.Context, limit int) ([]model.HardwareLog, error) {
	start := time.Now()
	logs, err := s.next.ListHardwareLogs(ctx, limit)
	s.m.observe("list_hardware_logs", start, err)
	return logs, err
}
