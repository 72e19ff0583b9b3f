package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the workflow-level prometheus collectors. HTTP request
// counting lives in the middleware package; this covers the engine side.
type Metrics struct {
	Transitions   *prometheus.CounterVec
	Notifications *prometheus.CounterVec
}

// New creates and registers the workflow metrics on the given registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guide_workflow_transitions_total",
				Help: "Total workflow operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guide_notifications_total",
				Help: "Total notification dispatches by event and outcome.",
			},
			[]string{"event", "outcome"},
		),
	}

	if err := reg.Register(m.Transitions); err != nil {
		return nil, err
	}
	if err := reg.Register(m.Notifications); err != nil {
		return nil, err
	}
	return m, nil
}

// NewUnregistered creates the collectors without registering them.
// Intended for tests.
func NewUnregistered() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}
