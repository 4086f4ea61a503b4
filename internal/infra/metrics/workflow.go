package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sessionsTotal,
		phaseTransitionsTotal,
		themeJobsTotal,
		staleMergesTotal,
		uploadCacheRequests,
		sessionsReapedTotal,
	)
}

var (
	sessionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_sessions_total",
			Help: "Total number of studio sessions created.",
		},
	)

	phaseTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_phase_transitions_total",
			Help: "Session phase transitions, labeled by target phase.",
		},
		[]string{"phase"},
	)

	themeJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_theme_jobs_total",
			Help: "Background theme image jobs, labeled by status (completed/failed/dropped).",
		},
		[]string{"status"},
	)

	staleMergesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_stale_merges_total",
			Help: "Background results dropped because a newer analysis run superseded them.",
		},
	)

	uploadCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_upload_cache_requests_total",
			Help: "Upload dedup cache hits and misses.",
		},
		[]string{"result"}, // hit|miss
	)

	sessionsReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_sessions_reaped_total",
			Help: "Idle sessions removed by the reaper.",
		},
	)
)

func IncSession() { sessionsTotal.Inc() }

func IncPhaseTransition(phase string) {
	phaseTransitionsTotal.WithLabelValues(norm(phase)).Inc()
}

func IncThemeJob(status string) {
	themeJobsTotal.WithLabelValues(norm(status)).Inc()
}

func IncStaleMerge() { staleMergesTotal.Inc() }

func IncUploadCache(result string) {
	uploadCacheRequests.WithLabelValues(norm(result)).Inc()
}

func AddSessionsReaped(n int) {
	if n > 0 {
		sessionsReapedTotal.Add(float64(n))
	}
}
