package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swissjobs_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	UpstreamRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swissjobs_upstream_requests_total",
			Help: "Requests sent to the job portal by method and HTTP status.",
		},
		[]string{"method", "status"},
	)
	UpstreamRetriesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swissjobs_upstream_retries_total",
			Help: "Requests retried after a transport failure.",
		},
	)
	RateLimitedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swissjobs_upstream_rate_limited_total",
			Help: "Responses with HTTP 429.",
		},
	)
	CSRFRefreshCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swissjobs_csrf_refresh_total",
			Help: "CSRF tokens obtained from the portal.",
		},
	)
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swissjobs_search_duration_seconds",
			Help:    "Duration of provider searches in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)
	StoredListingsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swissjobs_listings_stored_total",
			Help: "Listings passed to storage by upsert outcome.",
		},
		[]string{"result"},
	)
	EnrichmentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swissjobs_enrichments_total",
			Help: "AI enrichments by outcome.",
		},
		[]string{"outcome"},
	)
	ScrapeRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swissjobs_scrape_run_duration_seconds",
			Help:    "Duration of each scheduled scrape run in seconds.",
			Buckets: []float64{10, 30, 60, 300, 900, 1800},
		},
	)
)

func StartMetricsServer(addr string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(UpstreamRequestsCounter)
	prometheus.MustRegister(UpstreamRetriesCounter)
	prometheus.MustRegister(RateLimitedCounter)
	prometheus.MustRegister(CSRFRefreshCounter)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(StoredListingsCounter)
	prometheus.MustRegister(EnrichmentCounter)
	prometheus.MustRegister(ScrapeRunDuration)

	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(addr, mux))
	}()
}
