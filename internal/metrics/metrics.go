package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warbler_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	SignupSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signup_success_total",
		Help: "Total successful signups",
	})

	LoginSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_login_failure_total",
		Help: "Total failed login attempts",
	})

	MessagesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total messages successfully posted",
	})

	LikesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_likes_created_total",
		Help: "Total new like edges",
	})

	FollowsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_follows_created_total",
		Help: "Total new follow edges",
	})

	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_event_publish_failures_total",
		Help: "Domain events that could not be published",
	}, []string{"type"})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_events_processed_total",
		Help: "Domain events handled by the activity worker",
	}, []string{"type", "result"})
)

// Middleware records request duration per matched route. Unmatched requests
// are grouped under "unmatched" to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
