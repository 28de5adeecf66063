package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics контейнер prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBPoolOpenConns *prometheus.GaugeVec
	DBPoolIdleConns *prometheus.GaugeVec

	BookingsCreatedTotal    *prometheus.CounterVec
	BookingsRejectedTotal   *prometheus.CounterVec
	SlotQueriesPartialTotal *prometheus.CounterVec
}

// New регистрирует и возвращает метрики сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),

		DBPoolOpenConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Number of open connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBPoolIdleConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Number of idle connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		BookingsCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Total number of successfully created bookings",
			ConstLabels: constLabels,
		}, []string{"recurring"}),

		BookingsRejectedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_rejected_total",
			Help:        "Total number of booking attempts rejected at commit time",
			ConstLabels: constLabels,
		}, []string{"reason"}),

		SlotQueriesPartialTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_queries_partial_total",
			Help:        "Slot queries answered without the external busy source",
			ConstLabels: constLabels,
		}, []string{"source"}),
	}
}

// BookingCreated инкрементирует счетчик успешно созданных бронирований.
// Безопасен при nil-метриках - use case'ы не обязаны их подключать.
func (m *Metrics) BookingCreated(recurring bool) {
	if m == nil {
		return
	}
	label := "false"
	if recurring {
		label = "true"
	}
	m.BookingsCreatedTotal.WithLabelValues(label).Inc()
}

// BookingRejected инкрементирует счетчик отклоненных попыток бронирования
func (m *Metrics) BookingRejected(reason string) {
	if m == nil {
		return
	}
	m.BookingsRejectedTotal.WithLabelValues(reason).Inc()
}

// SlotQueryPartial инкрементирует счетчик запросов слотов, отвеченных
// без внешнего источника занятости
func (m *Metrics) SlotQueryPartial(source string) {
	if m == nil {
		return
	}
	m.SlotQueriesPartialTotal.WithLabelValues(source).Inc()
}
