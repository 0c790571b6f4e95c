package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docserve"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolutions      *prom.CounterVec
	resolveDuration  *prom.HistogramVec
	reloadDuration   *prom.HistogramVec
	generation       prom.Gauge
	entities         prom.Gauge
	posts            prom.Gauge
	broadcasts       prom.Counter
	broadcastClients prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Request path resolutions by intent and outcome",
		}, []string{"intent", "outcome"}),
		resolveDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Duration of request path resolution",
			Buckets:   prom.DefBuckets,
		}, []string{"intent"}),
		reloadDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Duration of metadata reloads",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		generation: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_generation",
			Help:      "Generation of the installed content snapshot",
		}),
		entities: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "content_entities",
			Help:      "Doc entities in the installed snapshot",
		}),
		posts: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "blog_posts",
			Help:      "Blog posts in the installed snapshot",
		}),
		broadcasts: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "livereload_broadcasts_total",
			Help:      "Live reload notifications sent",
		}),
		broadcastClients: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "livereload_clients",
			Help:      "Clients reached by the last live reload notification",
		}),
	}
	reg.MustRegister(pr.resolutions, pr.resolveDuration, pr.reloadDuration, pr.generation,
		pr.entities, pr.posts, pr.broadcasts, pr.broadcastClients)
	return pr
}

func (p *PrometheusRecorder) IncResolution(intent string, outcome Outcome) {
	if p == nil {
		return
	}
	p.resolutions.WithLabelValues(intent, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveResolveDuration(intent string, d time.Duration) {
	if p == nil {
		return
	}
	p.resolveDuration.WithLabelValues(intent).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveReloadDuration(d time.Duration, outcome Outcome) {
	if p == nil {
		return
	}
	p.reloadDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetGeneration(gen uint64) {
	if p == nil {
		return
	}
	p.generation.Set(float64(gen))
}

func (p *PrometheusRecorder) SetContentCounts(entities, posts int) {
	if p == nil {
		return
	}
	p.entities.Set(float64(entities))
	p.posts.Set(float64(posts))
}

func (p *PrometheusRecorder) IncLiveReloadBroadcast(clients int) {
	if p == nil {
		return
	}
	p.broadcasts.Inc()
	p.broadcastClients.Set(float64(clients))
}
