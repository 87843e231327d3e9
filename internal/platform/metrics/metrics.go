package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "match_analysis"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests by route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by route", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	MatchesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "matches_created_total", Help: "Total matches registered"},
	)
	MatchAssemblyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "match_assembly_failures_total", Help: "Total match registrations rolled back"},
	)
	ClubResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "club_resolutions_total", Help: "Club insert-or-get outcomes"},
		[]string{"outcome"},
	)
	ProfileResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "player_profile_resolutions_total", Help: "Player profile insert-or-get outcomes"},
		[]string{"outcome"},
	)
)

// Resolution outcomes for ClubResolutions and ProfileResolutions.
const (
	OutcomeExisting = "existing"
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeSkipped  = "skipped"
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequests,
		HTTPDuration,
		MatchesCreated,
		MatchAssemblyFailures,
		ClubResolutions,
		ProfileResolutions,
	)
}
