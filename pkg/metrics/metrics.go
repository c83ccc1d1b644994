package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 收件轮询周期延迟（毫秒）
	IntakeCycleLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_cycle_latency_ms",
			Help:    "Inbound mail poll cycle latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 收件消息处理计数
	IntakeMessagesCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_messages_count",
			Help: "Total number of inbound messages seen by the poller",
		},
		[]string{"outcome"}, // outcome: created, skipped_recipient, skipped_sender, duplicate, failed
	)

	// 请求创建计数
	RequestsCreatedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_created_count",
			Help: "Total number of service requests created",
		},
		[]string{"source"}, // source: api, email
	)

	// 通知投递计数
	NotificationsCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_count",
			Help: "Total number of notifications delivered",
		},
		[]string{"channel", "status"}, // status: sent, failed
	)
)

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordIntakeCycleLatency 记录轮询周期延迟
func RecordIntakeCycleLatency(status string, duration time.Duration) {
	IntakeCycleLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementIntakeMessage 增加收件消息计数
func IncrementIntakeMessage(outcome string) {
	IntakeMessagesCount.WithLabelValues(outcome).Inc()
}

// IncrementRequestsCreated 增加请求创建计数
func IncrementRequestsCreated(source string) {
	RequestsCreatedCount.WithLabelValues(source).Inc()
}

// IncrementNotification 增加通知计数
func IncrementNotification(channel, status string) {
	NotificationsCount.WithLabelValues(channel, status).Inc()
}
