package recorder

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports recording counters to prometheus.
// A nil *Metrics is valid and does nothing.
type Metrics struct {
	state    prometheus.Gauge
	sessions *prometheus.CounterVec
	frames   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "screenkit",
			Name:      "state",
			Help:      "Recorder state: 0 idle, 1 recording, 2 paused, 3 stopping.",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screenkit",
			Name:      "sessions_total",
			Help:      "Finished recording sessions by result.",
		}, []string{"result"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "screenkit",
			Name:      "frames_total",
			Help:      "Frames by pipeline stage.",
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.state, m.sessions, m.frames)
	}
	return m
}

func (m *Metrics) setState(s State) {
	if m != nil {
		m.state.Set(float64(s))
	}
}

func (m *Metrics) captured() {
	if m != nil {
		m.frames.WithLabelValues("captured").Inc()
	}
}

func (m *Metrics) encoded() {
	if m != nil {
		m.frames.WithLabelValues("encoded").Inc()
	}
}

func (m *Metrics) dropped(n uint64) {
	if m != nil && n > 0 {
		m.frames.WithLabelValues("dropped").Add(float64(n))
	}
}

func (m *Metrics) finished(r Result) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case r.Err != nil:
		result = "failed"
	case r.Empty:
		result = "empty"
	}
	m.sessions.WithLabelValues(result).Inc()
}
