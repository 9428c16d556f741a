// Package metrics exposes Prometheus collectors for the HTTP surface and the
// social graph operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sociomate_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sociomate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sociomate_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	LikeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sociomate_like_toggles_total",
			Help: "Like toggles by resulting action",
		},
		[]string{"action"}, // "like", "unlike"
	)

	FollowToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sociomate_follow_toggles_total",
			Help: "Follow toggles by resulting action",
		},
		[]string{"action"}, // "follow", "unfollow"
	)

	CleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sociomate_upload_cleanup_failures_total",
			Help: "Uploaded files that could not be removed after their owner changed",
		},
	)
)

// Middleware records request count and latency. Unmatched routes are
// grouped under a single label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Action maps a toggle outcome to its label.
func Action(added bool, on, off string) string {
	if added {
		return on
	}
	return off
}
