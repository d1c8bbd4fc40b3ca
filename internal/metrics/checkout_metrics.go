package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы оформления заказа для метки outcome.
const (
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// CheckoutMetrics содержит метрики оформления заказов.
// Nil-значение допустимо: все методы становятся no-op.
type CheckoutMetrics struct {
	ordersCreated prometheus.Counter
	rejections    *prometheus.CounterVec
	storeFailures *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	orderLines    prometheus.Histogram
	orderAmount   prometheus.Histogram
}

// NewCheckoutMetrics создаёт метрики в DefaultRegisterer.
func NewCheckoutMetrics() *CheckoutMetrics {
	return NewCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCheckoutMetricsWithRegisterer создаёт метрики в заданном реестре (удобно для тестов).
func NewCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	return &CheckoutMetrics{
		ordersCreated: register(registerer, "shop_orders_created_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Total number of orders created successfully",
		})),
		rejections: register(registerer, "shop_order_rejections_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_order_rejections_total",
			Help: "Total number of order requests rejected by business rules",
		}, []string{"reason"})),
		storeFailures: register(registerer, "shop_order_store_failures_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_order_store_failures_total",
			Help: "Total number of store failures while persisting orders",
		}, []string{"stage", "order_recorded"})),
		duration: register(registerer, "shop_checkout_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_checkout_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"outcome"})),
		orderLines: register(registerer, "shop_order_lines", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shop_order_lines",
			Help:    "Number of line items per created order",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		})),
		orderAmount: register(registerer, "shop_order_amount_minor", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shop_order_amount_minor",
			Help:    "Order total in minor currency units",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		})),
	}
}

// RecordOrderCreated фиксирует успешно созданный заказ.
func (m *CheckoutMetrics) RecordOrderCreated(lines int, amountMinor int64) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderLines.Observe(float64(lines))
	m.orderAmount.Observe(float64(amountMinor))
}

// RecordRejection увеличивает счётчик отклонений по причине.
func (m *CheckoutMetrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// RecordStoreFailure увеличивает счётчик ошибок записи по стадии.
func (m *CheckoutMetrics) RecordStoreFailure(stage string, orderRecorded bool) {
	if m == nil {
		return
	}
	recorded := "false"
	if orderRecorded {
		recorded = "true"
	}
	m.storeFailures.WithLabelValues(stage, recorded).Inc()
}

// RecordDuration записывает длительность оформления с исходом.
func (m *CheckoutMetrics) RecordDuration(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}
