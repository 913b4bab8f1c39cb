// Package metrics exposes the daemon's Prometheus instrumentation: active
// session count, authentication outcomes, lockouts, and save pipeline
// duration/outcome. Metrics are entirely optional — a nil *Metrics behaves
// as a no-op, matching the nil-receiver-safe pattern the rest of this
// repository uses for optional observability.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector this daemon registers. All methods are
// nil-receiver safe so callers never need to branch on whether metrics are
// enabled.
type Metrics struct {
	sessionsActive  prometheus.Gauge
	authTotal       *prometheus.CounterVec // label: outcome (ok, failed, locked)
	lockoutsTotal   prometheus.Counter
	saveDuration    prometheus.Histogram
	saveTotal       *prometheus.CounterVec // label: outcome (ok, export_failed, import_failed, io_error)
	commandsTotal   *prometheus.CounterVec // label: command
	expiredSessions prometheus.Counter
}

// New registers a fresh set of collectors against reg and returns a
// *Metrics wired to them. Passing a nil *prometheus.Registry is not valid;
// callers that want metrics disabled should keep a nil *Metrics instead of
// calling New.
func New(reg *prometheus.Registry) *Metrics {
	return &Metrics{
		sessionsActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "sessiond_sessions_active",
			Help: "Number of sessions currently tracked in the session table.",
		}),
		authTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sessiond_auth_total",
			Help: "Authentication attempts by outcome.",
		}, []string{"outcome"}),
		lockoutsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "sessiond_lockouts_total",
			Help: "Number of accounts transitioned into the locked state.",
		}),
		saveDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "sessiond_save_duration_seconds",
			Help:    "Duration of the export/merge/import/rename save pipeline.",
			Buckets: prometheus.DefBuckets,
		}),
		saveTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sessiond_save_total",
			Help: "Save pipeline runs by outcome.",
		}, []string{"outcome"}),
		commandsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "sessiond_commands_total",
			Help: "Dispatched wire protocol commands by name.",
		}, []string{"command"}),
		expiredSessions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "sessiond_sessions_expired_total",
			Help: "Sessions removed by the maintenance expiry sweep.",
		}),
	}
}

// Handler returns the promhttp handler for reg, suitable for mounting at
// /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

func (m *Metrics) RecordAuth(outcome string) {
	if m == nil {
		return
	}
	m.authTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLockout() {
	if m == nil {
		return
	}
	m.lockoutsTotal.Inc()
}

func (m *Metrics) RecordSave(outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.saveTotal.WithLabelValues(outcome).Inc()
	m.saveDuration.Observe(durationSeconds)
}

func (m *Metrics) RecordCommand(command string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(command).Inc()
}

func (m *Metrics) RecordExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.expiredSessions.Add(float64(n))
}
