package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/screenkit/screenkit/pkg/logger"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestMonitoring(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	conf := Config{Port: 0, URLPrefix: "/sk", MetricEnabled: true, StatusEnabled: true}
	m := New(conf, reg, func() any { return map[string]string{"state": "idle"} }, logger.Nop())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = m.Shutdown(context.Background()) }()
	base := "http://" + m.Addr() + "/sk"

	code, body := get(t, base+"/metrics")
	if code != http.StatusOK || !strings.Contains(body, "test_total 1") {
		t.Errorf("metrics: %v %v", code, body)
	}

	code, body = get(t, base+"/status")
	var st map[string]string
	if err := json.Unmarshal([]byte(body), &st); err != nil || code != http.StatusOK || st["state"] != "idle" {
		t.Errorf("status: %v %v %v", code, body, err)
	}

	if code, _ = get(t, base+"/debug/pprof/"); code != http.StatusNotFound {
		t.Errorf("profiling is disabled but served with %v", code)
	}
}
