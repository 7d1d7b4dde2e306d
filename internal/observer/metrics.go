package observer

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricsEnabled = true

// Webhook and routing metrics
var (
	webhookLabels = []string{"provider", "method"}
	routeLabels   = []string{"provider", "route"}

	WebhooksReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_webhooks_received_total",
			Help: "Total number of provider webhook calls received.",
		},
		webhookLabels,
	)
	MessagesRoutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_messages_routed_total",
			Help: "Total number of inbound messages by the path the router chose (command, analysis, fallback, ignored, failure).",
		},
		routeLabels,
	)
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_commands_total",
			Help: "Total number of interpreted text commands.",
		},
		[]string{"command"},
	)
	MessageHandlingDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meal_bot_message_handling_duration_seconds",
			Help:    "Histogram of end-to-end webhook handling durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		routeLabels,
	)
)

// Analysis metrics
var (
	AnalysisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_analysis_total",
			Help: "Total number of vision analysis attempts labeled by outcome and error type.",
		},
		[]string{"outcome", "error_type"},
	)
	AnalysisDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meal_bot_analysis_duration_seconds",
			Help:    "Histogram of vision model call durations.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~64s
		},
		[]string{"outcome"},
	)
)

// Outbound and persistence metrics
var (
	OutboundSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_outbound_sends_total",
			Help: "Total number of explicit provider API sends labeled by kind (reply, courtesy) and status.",
		},
		[]string{"provider", "kind", "status"},
	)
	MealLogsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_meal_logs_total",
			Help: "Total number of meal log attempts labeled by result (recorded, unknown_user, error).",
		},
		[]string{"result"},
	)
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_events_published_total",
			Help: "Total number of meal events published to NATS labeled by status.",
		},
		[]string{"subject", "status"},
	)
	DatabaseOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meal_bot_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"operation", "entity", "status"},
	)
)

// Background worker pool metrics
var (
	backgroundTasksSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_background_tasks_submitted_total",
			Help: "Total number of tasks submitted to the background worker pool.",
		},
		[]string{"task"},
	)
	backgroundTasksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_bot_background_tasks_processed_total",
			Help: "Total number of background tasks finished, labeled by final status.",
		},
		[]string{"task", "status"},
	)
	backgroundTaskDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meal_bot_background_task_duration_seconds",
			Help:    "Histogram of background task durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)
	backgroundRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meal_bot_background_running_workers",
		Help: "Number of background workers busy with a task.",
	})
)

// InitMetrics turns metric collection on or off. Collectors are registered by promauto either way.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

func IncWebhookReceived(provider, method string) {
	if !metricsEnabled {
		return
	}
	WebhooksReceivedTotal.WithLabelValues(sanitizeLabel(provider), method).Inc()
}

// IncMessageRouted counts one handled message and records how long handling took.
func IncMessageRouted(provider, route string, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	MessagesRoutedTotal.WithLabelValues(sanitizeLabel(provider), route).Inc()
	MessageHandlingDurationSeconds.WithLabelValues(sanitizeLabel(provider), route).Observe(duration.Seconds())
}

func IncCommand(command string) {
	if !metricsEnabled {
		return
	}
	CommandsTotal.WithLabelValues(command).Inc()
}

// ObserveAnalysis records one vision call. A nil err counts as success.
func ObserveAnalysis(duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	outcome, errorType := "success", "none"
	if err != nil {
		outcome, errorType = "failure", SanitizeErrorType(err.Error())
	}
	AnalysisTotal.WithLabelValues(outcome, errorType).Inc()
	AnalysisDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

func IncOutboundSend(provider, kind string, err error) {
	if !metricsEnabled {
		return
	}
	OutboundSendsTotal.WithLabelValues(sanitizeLabel(provider), kind, statusOf(err)).Inc()
}

func IncMealLog(result string) {
	if !metricsEnabled {
		return
	}
	MealLogsTotal.WithLabelValues(result).Inc()
}

func IncEventPublished(subject string, err error) {
	if !metricsEnabled {
		return
	}
	EventsPublishedTotal.WithLabelValues(subject, statusOf(err)).Inc()
}

// ObserveDbOperationDuration records the duration for a database operation.
func ObserveDbOperationDuration(operation, entity string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	DatabaseOperationDurationSeconds.WithLabelValues(operation, entity, statusOf(err)).Observe(duration.Seconds())
}

func IncBackgroundTasksSubmitted(task string) {
	if !metricsEnabled {
		return
	}
	backgroundTasksSubmittedTotal.WithLabelValues(task).Inc()
}

func IncBackgroundTasksProcessed(task, status string) {
	if !metricsEnabled {
		return
	}
	backgroundTasksProcessedTotal.WithLabelValues(task, status).Inc()
}

func ObserveBackgroundTaskDuration(task string, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	backgroundTaskDurationSeconds.WithLabelValues(task).Observe(duration.Seconds())
}

func SetBackgroundRunning(running int) {
	if !metricsEnabled {
		return
	}
	backgroundRunning.Set(float64(running))
}

// SanitizeErrorType maps an error string to a small fixed set of categories to bound label cardinality.
func SanitizeErrorType(errStr string) string {
	if errStr == "" || errStr == "none" {
		return "none"
	}
	errStr = strings.ToLower(errStr)

	switch {
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errStr, "no json object"):
		return "no_json"
	case strings.Contains(errStr, "validation failed"), strings.Contains(errStr, "invalid"), strings.Contains(errStr, "missing"):
		return "validation"
	case strings.Contains(errStr, "unmarshal"), strings.Contains(errStr, "json"), strings.Contains(errStr, "decode"):
		return "unmarshal"
	case strings.Contains(errStr, "status"), strings.Contains(errStr, "api error"):
		return "upstream_status"
	case strings.Contains(errStr, "database"), strings.Contains(errStr, "sql"), strings.Contains(errStr, "constraint"):
		return "database"
	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "no rows"):
		return "not_found"
	case strings.Contains(errStr, "nats"), strings.Contains(errStr, "jetstream"):
		return "nats"
	case strings.Contains(errStr, "connection"), strings.Contains(errStr, "dial"), strings.Contains(errStr, "eof"):
		return "network"
	case strings.Contains(errStr, "panic"):
		return "panic"
	default:
		return "unknown"
	}
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func sanitizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
