package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velobook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "velobook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velobook_bookings_total",
			Help: "Total number of bookings created",
		},
		[]string{"status"},
	)

	BookingConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velobook_booking_conflicts_total",
			Help: "Total number of rejected conflicting booking attempts",
		},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velobook_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	BookingsAutoCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velobook_bookings_auto_completed_total",
			Help: "Total number of bookings completed by the sweep",
		},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velobook_payments_total",
			Help: "Total number of payment attempts",
		},
		[]string{"method", "outcome"},
	)

	RefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velobook_refunds_total",
			Help: "Total number of refund attempts",
		},
		[]string{"outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "velobook_gateway_request_duration_seconds",
			Help:    "Card gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	TokensUsedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velobook_tokens_used_total",
			Help: "Total number of subscription tokens spent on bookings",
		},
	)

	TokensReturnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velobook_tokens_returned_total",
			Help: "Total number of subscription tokens returned on cancellation",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "velobook_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
	)

	SubscriptionRolloversTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velobook_subscription_rollovers_total",
			Help: "Total number of subscription period rollovers",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velobook_notifications_total",
			Help: "Total number of notifications sent",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "velobook_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordPayment(method, outcome string) {
	PaymentsTotal.WithLabelValues(method, outcome).Inc()
}

func RecordRefund(outcome string) {
	RefundsTotal.WithLabelValues(outcome).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}
