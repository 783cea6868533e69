package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	// HTTPRequestsTotal tracks handled requests by route, method and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hasker_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hasker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"route", "method"},
	)

	// HTTPErrorsTotal tracks error responses by error type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hasker_http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)

	// RateLimitedTotal tracks requests rejected by the rate limiter
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hasker_rate_limited_total",
			Help: "Total requests rejected by the rate limiter",
		},
	)
)

// Forum Metrics
var (
	// VotesTotal tracks cast votes by target kind and outcome (recorded/reversed/already_cast)
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hasker_votes_total",
			Help: "Total votes cast by target and outcome",
		},
		[]string{"target", "outcome"},
	)

	// CorrectAnswerTransitionsTotal tracks best answer toggles by transition
	CorrectAnswerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hasker_correct_answer_transitions_total",
			Help: "Total correct answer state transitions",
		},
		[]string{"transition"},
	)

	// QuestionsCreatedTotal tracks asked questions
	QuestionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hasker_questions_created_total",
			Help: "Total questions asked",
		},
	)

	// AnswersCreatedTotal tracks posted answers
	AnswersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hasker_answers_created_total",
			Help: "Total answers posted",
		},
	)

	// NotificationsTotal tracks new answer notifications by status
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hasker_notifications_total",
			Help: "Total new answer notifications by status",
		},
		[]string{"status"},
	)
)

// Cache Metrics
var (
	// TrendingCacheTotal tracks top trending cache lookups by result (hit/miss/error)
	TrendingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hasker_trending_cache_total",
			Help: "Top trending cache lookups by result",
		},
		[]string{"result"},
	)
)
