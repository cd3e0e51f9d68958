package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(buildInfo, dbConns, workerJobs) }

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forum_notifier_build_info",
			Help: "Always 1; labels carry the running build.",
		},
		[]string{"version", "commit", "go_version"},
	)

	dbConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forum_notifier_db_pool_connections",
			Help: "Postgres pool connections by state.",
		},
		[]string{"state"}, // total | idle | acquired | max
	)

	workerJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_notifier_worker_jobs_total",
			Help: "Background jobs handled by the worker pool, by outcome.",
		},
		[]string{"status"}, // completed | failed | dropped
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}

// PoolStats is a snapshot of the Postgres pool.
type PoolStats struct {
	Total, Idle, Acquired, Max int32
}

func SetDBPoolStats(s PoolStats) {
	dbConns.WithLabelValues("total").Set(float64(s.Total))
	dbConns.WithLabelValues("idle").Set(float64(s.Idle))
	dbConns.WithLabelValues("acquired").Set(float64(s.Acquired))
	dbConns.WithLabelValues("max").Set(float64(s.Max))
}

func IncWorkerJob(status string) {
	workerJobs.WithLabelValues(norm(status)).Inc()
}
