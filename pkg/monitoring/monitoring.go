// Package monitoring serves metrics, profiles and the recorder status over HTTP.
package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/screenkit/screenkit/pkg/logger"
)

type Config struct {
	Port             int
	URLPrefix        string
	MetricEnabled    bool
	ProfilingEnabled bool
	StatusEnabled    bool
}

type Monitoring struct {
	conf   Config
	server *http.Server
	log    *logger.Logger
	addr   string
}

// New creates new monitoring service.
// The gatherer is used for metrics, the status func for the status endpoint.
func New(conf Config, gatherer prometheus.Gatherer, status func() any, log *logger.Logger) *Monitoring {
	log = log.Module("monitoring")
	h := http.NewServeMux()
	prefix := conf.URLPrefix

	if conf.ProfilingEnabled {
		pp := prefix + "/debug/pprof"
		log.Info().Msgf("Profiling is enabled at %v", pp)
		h.HandleFunc(pp+"/", pprof.Index)
		h.HandleFunc(pp+"/cmdline", pprof.Cmdline)
		h.HandleFunc(pp+"/profile", pprof.Profile)
		h.HandleFunc(pp+"/symbol", pprof.Symbol)
		h.HandleFunc(pp+"/trace", pprof.Trace)
		// named profiles aren't served by the index under a custom prefix
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			h.Handle(pp+"/"+name, pprof.Handler(name))
		}
	}

	if conf.MetricEnabled && gatherer != nil {
		log.Info().Msgf("Prometheus metrics are enabled at %v/metrics", prefix)
		h.Handle(prefix+"/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if conf.StatusEnabled && status != nil {
		log.Info().Msgf("Status is enabled at %v/status", prefix)
		h.HandleFunc(prefix+"/status", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(status()); err != nil {
				log.Warn().Err(err).Msg("status")
			}
		})
	}

	return &Monitoring{
		conf: conf,
		log:  log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", conf.Port),
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start listens the port and serves in the background.
func (m *Monitoring) Start() error {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return err
	}
	m.addr = ln.Addr().String()
	m.log.Info().Msgf("Starting monitoring server at %v", m.addr)
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("monitoring server")
		}
	}()
	return nil
}

func (m *Monitoring) Run() {
	if err := m.Start(); err != nil {
		m.log.Error().Err(err).Msg("Couldn't start monitoring server")
	}
}

// Addr is the listen address after the start.
func (m *Monitoring) Addr() string { return m.addr }

func (m *Monitoring) Shutdown(ctx context.Context) error {
	m.log.Info().Msg("Shutting down monitoring server")
	return m.server.Shutdown(ctx)
}

func (m *Monitoring) String() string {
	return fmt.Sprintf("monitoring::%s:%d", m.conf.URLPrefix, m.conf.Port)
}
