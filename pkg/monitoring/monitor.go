package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdot_quiz_attempts_total",
			Help: "Quiz answers recorded, by correctness",
		},
		[]string{"correct"},
	)

	BadgesUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdot_badges_unlocked_total",
			Help: "Badges unlocked, by tier",
		},
		[]string{"tier"},
	)

	LeaderboardQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdot_leaderboard_queries_total",
			Help: "Leaderboard reads, by time window and cache result",
		},
		[]string{"window", "cache"},
	)

	AIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdot_ai_requests_total",
			Help: "Requests to the text generation provider",
		},
		[]string{"purpose", "outcome"},
	)

	TimerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdot_timer_transitions_total",
			Help: "Study timer phase changes, by phase entered",
		},
		[]string{"phase", "skipped"},
	)

	LectureJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdot_lecture_jobs_total",
			Help: "Lecture processing jobs, by final status",
		},
		[]string{"status"},
	)

	EventConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docdot_event_connections",
			Help: "Open websocket connections on this instance",
		},
	)

	EventsPushed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docdot_events_pushed_total",
			Help: "Events published to connected clients, by type",
		},
		[]string{"type"},
	)

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			QuizAttempts,
			BadgesUnlocked,
			LeaderboardQueries,
			AIRequests,
			TimerTransitions,
			LectureJobs,
			EventConnections,
			EventsPushed,
		)
	})
}

func RecordQuizAttempt(correct bool) {
	QuizAttempts.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

func RecordBadgeUnlocked(tier string) {
	BadgesUnlocked.WithLabelValues(tier).Inc()
}

func RecordLeaderboardQuery(window string, cacheHit bool) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	LeaderboardQueries.WithLabelValues(window, cache).Inc()
}

func RecordAIRequest(purpose, outcome string) {
	AIRequests.WithLabelValues(purpose, outcome).Inc()
}

func RecordTimerTransition(phase string, skipped bool) {
	TimerTransitions.WithLabelValues(phase, strconv.FormatBool(skipped)).Inc()
}

func RecordLectureJob(status string) {
	LectureJobs.WithLabelValues(status).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
