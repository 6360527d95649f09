package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "launchmap_analysis_duration_seconds",
			Help:    "Store analysis duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20},
		},
		[]string{"kind"},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchmap_analysis_total",
			Help: "Total store analyses processed",
		},
		[]string{"status"},
	)

	ScrapeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "launchmap_scrape_failures_total",
			Help: "Total storefront scrapes that degraded to defaults",
		},
	)

	QualityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "launchmap_quality_score",
			Help:    "Distribution of computed store quality scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	ForecastRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchmap_forecast_requests_total",
			Help: "Total trend forecast requests",
		},
		[]string{"lead_time"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchmap_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchmap_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchmap_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	QuotaRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "launchmap_quota_rejections_total",
			Help: "Total requests rejected for exceeded plan quota",
		},
	)

	RateLimitRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "launchmap_ratelimit_rejections_total",
			Help: "Total requests rejected by the fixed-window rate limit",
		},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(ScrapeFailures)
	prometheus.MustRegister(QualityScore)
	prometheus.MustRegister(ForecastRequests)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(QuotaRejections)
	prometheus.MustRegister(RateLimitRejections)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
