package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garage_entries_total",
		Help: "Vehicles admitted.",
	})
	exitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garage_exits_total",
		Help: "Vehicles charged and released.",
	})
	revenueCentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garage_revenue_cents_total",
		Help: "Collected amounts in currency minor units.",
	})
	releaseRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garage_space_release_retries_total",
		Help: "Asynchronous space release attempts after a paid exit.",
	})
	auditDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garage_audit_events_dropped_total",
		Help: "Audit events dropped because the queue was full.",
	})
)
