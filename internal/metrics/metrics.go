// Package metrics exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BuildInfo struct {
	Version   string
	Revision  string
	BuildDate string
}

type Provider struct {
	reg *prometheus.Registry

	DatasetsProcessed *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	PointsPerDataset  prometheus.Histogram
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
}

func Init(build BuildInfo) *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bi := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version", "revision", "build_date"},
	)
	reg.MustRegister(bi)
	if build.Version == "" {
		build.Version = "dev"
	}
	bi.WithLabelValues(build.Version, build.Revision, build.BuildDate).Set(1)

	p := &Provider{
		reg: reg,
		DatasetsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datasets_processed_total",
				Help: "Datasets run through the classification pipeline, by outcome.",
			},
			[]string{"outcome"},
		),
		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_duration_seconds",
				Help:    "End-to-end pipeline latency per dataset.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		PointsPerDataset: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dataset_points",
				Help:    "Number of survey points per processed dataset.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "result_cache_hits_total",
				Help: "Result cache hits by tier (memory, redis).",
			},
			[]string{"tier"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "result_cache_misses_total",
				Help: "Result cache misses by tier (memory, redis).",
			},
			[]string{"tier"},
		),
	}
	reg.MustRegister(p.DatasetsProcessed, p.PipelineDuration, p.PointsPerDataset, p.CacheHits, p.CacheMisses)
	return p
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Registerer() prometheus.Registerer { return p.reg }
