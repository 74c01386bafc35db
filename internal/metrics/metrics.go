// Package metrics registers the daemon's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "wakeword_"

var (
	// Arms counts successful arm operations.
	Arms = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "arms_total",
		Help: "Successful alarm arm operations",
	})

	// ArmFailures counts arms rejected by the platform service.
	ArmFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "arm_failures_total",
		Help: "Arm operations rejected by the platform service",
	})

	// RingEvents counts ring events consumed from the platform stream.
	RingEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "ring_events_total",
		Help: "Ring events consumed from the platform stream",
	})

	// RingFallback counts ring batches honored via the first-in-batch
	// fallback because no entry carried the slot id.
	RingFallback = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "ring_fallback_total",
		Help: "Ring events honored without an exact slot id match",
	})

	// Dismissals counts gate-approved dismissals.
	Dismissals = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "dismissals_total",
		Help: "Alarms dismissed through the gate",
	})

	// Cancels counts user cancellations, including force-dismiss while
	// ringing.
	Cancels = promauto.NewCounter(prometheus.CounterOpts{
		Name: prefix + "cancels_total",
		Help: "Alarms cancelled by the user",
	})
)
