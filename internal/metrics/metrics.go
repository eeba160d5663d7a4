package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ProcessedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hackollab_outbox_processed_total", Help: "Total processed outbox events"},
		[]string{"kind"},
	)
	FailedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hackollab_outbox_failed_total", Help: "Total failed outbox event attempts"},
		[]string{"kind"},
	)
	DLQEvents = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackollab_dlq_total", Help: "Total events inserted into DLQ"},
	)
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hackollab_emails_sent_total", Help: "Emails delivered, by event"},
		[]string{"event"},
	)
	AuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackollab_auth_failures_total", Help: "Rejected bearer tokens"},
	)
)

// Register adds the collectors to reg, or to the default registry when reg is nil.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(ProcessedEvents, FailedEvents, DLQEvents, EmailsSent, AuthFailures)
}
