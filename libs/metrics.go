package libs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snackshop_orders_created_total",
		Help: "Orders accepted by the order service.",
	})
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snackshop_status_transitions_total",
		Help: "Status writes by target status and outcome.",
	}, []string{"to", "outcome"})
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snackshop_settlements_total",
		Help: "Table settlements by outcome.",
	}, []string{"outcome"})
	FeedErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snackshop_feed_errors_total",
		Help: "Errors delivered by the order subscription.",
	})
	MalformedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snackshop_malformed_record_fields_total",
		Help: "Order record fields replaced with defaults, by field.",
	}, []string{"field"})
	ProjectionOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snackshop_projection_orders",
		Help: "Orders held by the local projection.",
	})
	PrintJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snackshop_print_jobs_total",
		Help: "Print attempts by source and outcome.",
	}, []string{"source", "outcome"})
)
