package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	appointmentsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clinic_appointments_completed_total",
			Help: "Total number of appointments completed",
		},
	)

	commissionRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_commission_records_total",
			Help: "Total number of commission records produced, by beneficiary type",
		},
		[]string{"beneficiary_type"},
	)

	commissionAmountTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_commission_amount_total",
			Help: "Total commission amount produced, by beneficiary type",
		},
		[]string{"beneficiary_type"},
	)

	completionsBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_completions_blocked_total",
			Help: "Total number of completions blocked by validation, by issue code",
		},
		[]string{"issue"},
	)
)
