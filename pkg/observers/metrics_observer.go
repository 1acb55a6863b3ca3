package observers

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/hfsm"
)

const (
	namespace = "hfsm"
	subsystem = "machine"
)

// MetricsObserver exports state machine activity as prometheus metrics.
// Every series is labeled with the machine name given at construction.
type MetricsObserver struct {
	hfsm.BaseObserver

	machine string

	enters   *prometheus.CounterVec
	exits    *prometheus.CounterVec
	requests *prometheus.CounterVec
	dropped  prometheus.Counter
	ticks    prometheus.Counter
	active   *prometheus.GaugeVec
}

// NewMetricsObserver creates the metric vectors and registers them with reg
func NewMetricsObserver(reg prometheus.Registerer, machine string) (*MetricsObserver, error) {
	labels := prometheus.Labels{"machine": machine}

	o := &MetricsObserver{
		machine: machine,
		enters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "state_enter_total",
			Help:        "Total number of state entries",
			ConstLabels: labels,
		}, []string{"state"}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "state_exit_total",
			Help:        "Total number of state exits",
			ConstLabels: labels,
		}, []string{"state"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "transition_requests_total",
			Help:        "Total number of transition requests taken into resolution",
			ConstLabels: labels,
		}, []string{"kind", "phase"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "transition_requests_dropped_total",
			Help:        "Total number of transition requests rejected before resolution",
			ConstLabels: labels,
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "ticks_total",
			Help:        "Total number of completed ticks",
			ConstLabels: labels,
		}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "state_active",
			Help:        "Whether a state is part of the active configuration (0=inactive, 1=active)",
			ConstLabels: labels,
		}, []string{"state"}),
	}

	for _, c := range []prometheus.Collector{o.enters, o.exits, o.requests, o.dropped, o.ticks, o.active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnStateEnter records state entry metrics
func (o *MetricsObserver) OnStateEnter(state string) {
	o.enters.WithLabelValues(state).Inc()
	o.active.WithLabelValues(state).Set(1)
}

// OnStateExit records state exit metrics
func (o *MetricsObserver) OnStateExit(state string) {
	o.exits.WithLabelValues(state).Inc()
	o.active.WithLabelValues(state).Set(0)
}

// OnRequest counts a request by kind and phase
func (o *MetricsObserver) OnRequest(req hfsm.Request) {
	o.requests.WithLabelValues(req.Kind.String(), req.Phase.String()).Inc()
}

// OnRequestDropped counts a rejected request
func (o *MetricsObserver) OnRequestDropped(err error) {
	o.dropped.Inc()
}

// OnTickCompleted counts the tick
func (o *MetricsObserver) OnTickCompleted(tick uint64, active []string) {
	o.ticks.Inc()
}

// Machine returns the machine label value
func (o *MetricsObserver) Machine() string {
	return o.machine
}
