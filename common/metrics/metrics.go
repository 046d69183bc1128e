// Package metrics holds the prometheus collectors shared by the
// supervisor and cmd/highwayd.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors bundles the era supervisor's prometheus instruments.
type Collectors struct {
	LoadedEras      prometheus.Gauge
	ScheduleEntries prometheus.Gauge
	EventsProcessed *prometheus.CounterVec
}

// New constructs and registers a fresh Collectors set against reg. Passing
// a nil registry is permitted for tests that don't care about exposition.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		LoadedEras: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "highway",
			Subsystem: "supervisor",
			Name:      "loaded_eras",
			Help:      "Number of era runtimes currently loaded in memory.",
		}),
		ScheduleEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "highway",
			Subsystem: "supervisor",
			Name:      "schedule_entries",
			Help:      "Number of live entries in the delayed-action scheduling table.",
		}),
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "highway",
			Subsystem: "supervisor",
			Name:      "events_processed_total",
			Help:      "Number of HighwayEvents replayed by handle_events, by kind.",
		}, []string{"kind"}),
	}

	if reg != nil {
		reg.MustRegister(c.LoadedEras, c.ScheduleEntries, c.EventsProcessed)
	}

	return c
}
