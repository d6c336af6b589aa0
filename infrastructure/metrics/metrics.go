package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records dispatch and publish outcomes for Prometheus scraping.
type Collector struct {
	publishSuccess  *prometheus.CounterVec
	publishFailure  *prometheus.CounterVec
	dispatchPasses  prometheus.Counter
	postsCancelled  prometheus.Counter
	postsRetried    prometheus.Counter
	publishLatency  prometheus.Histogram
	refreshFailures *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		publishSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "publisher_publish_success_total",
			Help: "Successful publishes per platform",
		}, []string{"platform"}),
		publishFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "publisher_publish_failure_total",
			Help: "Failed publish attempts per platform and error kind",
		}, []string{"platform", "kind"}),
		dispatchPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publisher_dispatch_passes_total",
			Help: "Completed dispatch loop passes",
		}),
		postsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publisher_posts_cancelled_total",
			Help: "Posts moved to the cancelled terminal state",
		}),
		postsRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "publisher_posts_retried_total",
			Help: "Posts left scheduled with an incremented retry count",
		}),
		publishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "publisher_publish_latency_seconds",
			Help:    "Latency of a single publish attempt",
			Buckets: prometheus.DefBuckets,
		}),
		refreshFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "publisher_token_refresh_failures_total",
			Help: "Credential refresh failures per platform",
		}, []string{"platform"}),
	}

	reg.MustRegister(
		c.publishSuccess,
		c.publishFailure,
		c.dispatchPasses,
		c.postsCancelled,
		c.postsRetried,
		c.publishLatency,
		c.refreshFailures,
	)
	return c
}

func (c *Collector) RecordPublishSuccess(platform string) {
	c.publishSuccess.WithLabelValues(platform).Inc()
}

func (c *Collector) RecordPublishFailure(platform, kind string) {
	c.publishFailure.WithLabelValues(platform, kind).Inc()
}

func (c *Collector) RecordDispatchPass() { c.dispatchPasses.Inc() }

func (c *Collector) RecordCancelled() { c.postsCancelled.Inc() }

func (c *Collector) RecordRetried() { c.postsRetried.Inc() }

func (c *Collector) RecordPublishLatency(d time.Duration) {
	c.publishLatency.Observe(d.Seconds())
}

func (c *Collector) RecordRefreshFailure(platform string) {
	c.refreshFailures.WithLabelValues(platform).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
