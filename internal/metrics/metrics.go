// Package metrics exposes Prometheus collectors for workflow runs and HTTP requests.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elsayed85/quick-rag/internal/agent"
	"github.com/elsayed85/quick-rag/internal/domain"
)

// Recorder owns a registry and implements agent.Observer.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	rewritesTotal    prometheus.Counter
	retrievals       prometheus.Histogram
	runDuration      *prometheus.HistogramVec
	stepDuration     *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_runs_total",
				Help: "Total number of question answering runs by outcome",
			},
			[]string{"outcome", "route"},
		),
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_transitions_total",
				Help: "Total number of workflow transitions by target state",
			},
			[]string{"state"},
		),
		rewritesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rag_rewrites_total",
			Help: "Total number of query rewrites",
		}),
		retrievals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rag_run_retrievals",
			Help:    "Retrieval attempts per run",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
		}),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "rag_run_duration_seconds",
				Help: "Duration of question answering runs",
			},
			[]string{"outcome"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "rag_step_duration_seconds",
				Help: "Duration of workflow steps by target state",
			},
			[]string{"state"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "rag_http_request_duration_seconds",
				Help: "Duration of HTTP requests",
			},
			[]string{"route"},
		),
	}
	r.registry.MustRegister(
		r.runsTotal,
		r.transitionsTotal,
		r.rewritesTotal,
		r.retrievals,
		r.runDuration,
		r.stepDuration,
		r.requestsTotal,
		r.requestDuration,
	)
	return r
}

// Registry returns the registry the collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) OnTransition(_ *domain.SessionState, _, to agent.State, elapsed time.Duration) {
	r.transitionsTotal.WithLabelValues(to.String()).Inc()
	r.stepDuration.WithLabelValues(to.String()).Observe(elapsed.Seconds())
	if to == agent.StateRewritten {
		r.rewritesTotal.Inc()
	}
}

func (r *Recorder) OnFinish(s *domain.SessionState, err error, elapsed time.Duration) {
	outcome := Outcome(err)
	route := domain.RouteUnknown.String()
	if s != nil {
		route = s.Route.String()
		r.retrievals.Observe(float64(s.Retrievals))
	}
	r.runsTotal.WithLabelValues(outcome, route).Inc()
	r.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(route string, status int, elapsed time.Duration) {
	r.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Outcome classifies a run error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "answered"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrRetrievalUnavailable):
		return "retrieval_unavailable"
	case errors.Is(err, domain.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
