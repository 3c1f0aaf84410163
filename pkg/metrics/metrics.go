package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	TaskCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_created_count",
			Help: "Total number of tasks created",
		},
		[]string{"scope"}, // scope: personal, project
	)

	TaskListCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_list_count",
			Help: "Total number of filtered task listings served",
		},
		[]string{"filter"},
	)

	ResetCodeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reset_code_count",
			Help: "Total number of password reset code transitions",
		},
		[]string{"event"}, // event: issued, consumed, rejected
	)

	NotificationPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_publish_count",
			Help: "Total number of notification events published",
		},
		[]string{"status"}, // status: success, failed
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func IncrementTaskCreated(scope string) {
	TaskCreatedCount.WithLabelValues(scope).Inc()
}

func IncrementTaskList(filter string) {
	TaskListCount.WithLabelValues(filter).Inc()
}

func IncrementResetCode(event string) {
	ResetCodeCount.WithLabelValues(event).Inc()
}

func IncrementNotificationPublish(status string) {
	NotificationPublishCount.WithLabelValues(status).Inc()
}
