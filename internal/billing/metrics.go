package billing

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	outcomeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_outcomes_total",
			Help: "Billing outcomes applied per monthly deduction run",
		},
		[]string{"outcome"},
	)
	failureCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_user_failures_total",
			Help: "Per-user persistence failures isolated during billing runs",
		},
	)
)

func init() {
	prometheus.MustRegister(outcomeCounter)
	prometheus.MustRegister(failureCounter)
}
