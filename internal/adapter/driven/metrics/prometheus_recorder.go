// Package metrics exporta contadores Prometheus do ciclo de realocação.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
)

// PrometheusRecorder implementa o MetricsRecorder num registry próprio.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	fetchedEntities *prometheus.GaugeVec
	recomputes      *prometheus.CounterVec
	commits         *prometheus.CounterVec
}

// NewPrometheusRecorder cria o recorder e registra os coletores.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ads_realloc",
			Name:      "fetches_total",
			Help:      "Entity and spend fetches by platform and result.",
		}, []string{"platform", "result"}),
		fetchedEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ads_realloc",
			Name:      "fetched_entities",
			Help:      "Entities returned by the last successful fetch.",
		}, []string{"platform"}),
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ads_realloc",
			Name:      "recomputes_total",
			Help:      "Reallocation recomputes by platform and outcome.",
		}, []string{"platform", "outcome"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ads_realloc",
			Name:      "budget_commits_total",
			Help:      "Budget update calls by platform and result.",
		}, []string{"platform", "result"}),
	}

	r.registry.MustRegister(r.fetches, r.fetchedEntities, r.recomputes, r.commits)
	return r
}

var _ repository.MetricsRecorder = (*PrometheusRecorder)(nil)

func (r *PrometheusRecorder) ObserveFetch(platform entity.Platform, entities int, err error) {
	if err != nil {
		r.fetches.WithLabelValues(string(platform), "error").Inc()
		return
	}
	r.fetches.WithLabelValues(string(platform), "ok").Inc()
	r.fetchedEntities.WithLabelValues(string(platform)).Set(float64(entities))
}

func (r *PrometheusRecorder) ObserveRecompute(platform entity.Platform, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	r.recomputes.WithLabelValues(string(platform), outcome).Inc()
}

func (r *PrometheusRecorder) ObserveCommit(platform entity.Platform, succeeded bool) {
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	r.commits.WithLabelValues(string(platform), result).Inc()
}

// Handler expõe o registry no formato de exposição do Prometheus.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
