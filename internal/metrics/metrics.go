// Package metrics holds the Prometheus collectors for momu.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "momu"

// Metrics holds all collectors. Pass it to components that record metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Detections      *prometheus.CounterVec
	Playlists       *prometheus.CounterVec
	TokenFetches    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics with reg. A nil reg gets a fresh
// private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Detections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detections_total",
				Help:      "Mood detections by outcome.",
			},
			[]string{"outcome"},
		),
		Playlists: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "playlist_resolutions_total",
				Help:      "Playlist resolutions by outcome.",
			},
			[]string{"outcome"},
		),
		TokenFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_token_fetches_total",
				Help:      "Round-trips to the catalog token endpoint by result code.",
			},
			[]string{"code"},
		),
		gatherer: reg,
	}
}

// ObserveDetection implements ports.PipelineObserver.
func (m *Metrics) ObserveDetection(outcome string) {
	m.Detections.WithLabelValues(outcome).Inc()
}

// ObservePlaylist implements ports.PipelineObserver.
func (m *Metrics) ObservePlaylist(outcome string) {
	m.Playlists.WithLabelValues(outcome).Inc()
}

// ObserveTokenFetch counts one token endpoint round-trip.
func (m *Metrics) ObserveTokenFetch(err error) {
	code := "ok"
	if err != nil {
		code = domain.Code(err)
	}
	m.TokenFetches.WithLabelValues(code).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
