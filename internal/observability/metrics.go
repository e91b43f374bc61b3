// Package observability exposes the prometheus instruments shared across the
// api and worker binaries.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TapIns counts tap-in attempts by outcome ("ok", "unknown_badge",
	// "already_active", "outside_schedule", "store_error").
	TapIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taptrack",
		Name:      "tap_ins_total",
		Help:      "Tap-in attempts by outcome.",
	}, []string{"result"})

	// TapOuts counts tap-out attempts by outcome ("ok", "unknown_badge",
	// "no_active_session", "store_error").
	TapOuts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taptrack",
		Name:      "tap_outs_total",
		Help:      "Tap-out attempts by outcome.",
	}, []string{"result"})

	// ScheduleConflicts counts rejected schedule writes.
	ScheduleConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taptrack",
		Name:      "schedule_conflicts_total",
		Help:      "Schedule writes rejected by the overlap check.",
	})

	// OpenSessions tracks sessions currently without a tap-out, maintained by
	// the worker from the tap event stream.
	OpenSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "taptrack",
		Name:      "open_sessions",
		Help:      "Attendance sessions currently open.",
	})
)

func init() {
	prometheus.MustRegister(TapIns, TapOuts, ScheduleConflicts, OpenSessions)
}
