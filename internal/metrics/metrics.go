// Package metrics exposes ledger activity and HTTP traffic as prometheus
// collectors fed from the event bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/smartexpense/internal/core/events"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartexpense"

type Collector struct {
	registry *prometheus.Registry

	TransactionsRecorded *prometheus.CounterVec
	TransactionAmount    *prometheus.CounterVec
	AdmissionsRejected   *prometheus.CounterVec
	BudgetUpdates        *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// NewCollector registers every collector on its own registry, together with
// the Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		TransactionsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transaction",
				Name:      "recorded_total",
				Help:      "Total number of transactions recorded",
			},
			[]string{"kind"},
		),
		TransactionAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transaction",
				Name:      "amount_total",
				Help:      "Sum of recorded transaction amounts",
			},
			[]string{"kind"},
		),
		AdmissionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "admissions_rejected_total",
				Help:      "Total number of expenses rejected by the budget evaluator",
			},
			[]string{"reason"},
		),
		BudgetUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "budget",
				Name:      "updates_total",
				Help:      "Total number of budget limits set",
			},
			[]string{"scope"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}
}

// Subscribe feeds the ledger counters from bus events.
func (c *Collector) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeTransactionRecorded, c.onTransactionRecorded)
	bus.Subscribe(events.EventTypeAdmissionRejected, c.onAdmissionRejected)
	bus.Subscribe(events.EventTypeBudgetUpdated, c.onBudgetUpdated)
}

func (c *Collector) onTransactionRecorded(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.TransactionRecordedEvent)
	if !ok {
		return nil
	}
	c.TransactionsRecorded.WithLabelValues(e.Kind).Inc()
	c.TransactionAmount.WithLabelValues(e.Kind).Add(e.Amount.InexactFloat64())
	return nil
}

func (c *Collector) onAdmissionRejected(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AdmissionRejectedEvent)
	if !ok {
		return nil
	}
	c.AdmissionsRejected.WithLabelValues(e.Reason).Inc()
	return nil
}

func (c *Collector) onBudgetUpdated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.BudgetUpdatedEvent)
	if !ok {
		return nil
	}
	scope := "monthly"
	if e.CategoryID != 0 {
		scope = "category"
	}
	c.BudgetUpdates.WithLabelValues(scope).Inc()
	return nil
}

// Middleware records request counts and latency per chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
