package recorder

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/screenkit/screenkit/pkg/capture"
	"github.com/screenkit/screenkit/pkg/logger"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	c := New(testOptions(100), capture.NewSynthetic(8, 8), &memOpener{}, logger.Nop(), WithMetrics(m))

	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if v := testutil.ToFloat64(m.state); v != float64(Recording) {
		t.Errorf("state gauge = %v", v)
	}
	waitFor(t, "frames", func() bool { return c.Status().FramesEncoded > 0 })
	res, err := c.Stop()
	if err != nil {
		t.Fatal(err)
	}

	if v := testutil.ToFloat64(m.sessions.WithLabelValues("ok")); v != 1 {
		t.Errorf("ok sessions = %v", v)
	}
	if v := testutil.ToFloat64(m.frames.WithLabelValues("encoded")); v != float64(res.FramesEncoded) {
		t.Errorf("encoded frames = %v, want %v", v, res.FramesEncoded)
	}
	if v := testutil.ToFloat64(m.state); v != float64(Idle) {
		t.Errorf("state gauge = %v", v)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.setState(Recording)
	m.captured()
	m.dropped(3)
	m.finished(Result{})
}
