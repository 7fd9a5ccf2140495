package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_requests_submitted_total",
		Help: "Payment requests submitted by users.",
	})
	RequestsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_requests_approved_total",
		Help: "Payment requests approved by the admin.",
	})
	RequestsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_requests_rejected_total",
		Help: "Payment requests rejected by the admin.",
	})
	CreditGrants = promauto.NewCounter(prometheus.CounterOpts{
		Name: "credit_grants_total",
		Help: "Direct credit grants issued via /give.",
	})
)
