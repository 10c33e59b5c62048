// Package metrics exposes Prometheus counters for the log lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the logs service increments. Construct one per
// process with its own registry so tests can register independently.
type Metrics struct {
	LogsCreated       prometheus.Counter
	LogsRead          prometheus.Counter
	LogsDeleted       prometheus.Counter
	RecordsSwept      prometheus.Counter
	OrphansReconciled prometheus.Counter
}

func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LogsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "savelog_logs_created_total",
			Help: "Log records created.",
		}),
		LogsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "savelog_logs_read_total",
			Help: "Log contents served.",
		}),
		LogsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "savelog_logs_deleted_total",
			Help: "Log records deleted by their owner.",
		}),
		RecordsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "savelog_records_swept_total",
			Help: "Expired records removed by the sweeper.",
		}),
		OrphansReconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "savelog_orphans_reconciled_total",
			Help: "Records dropped because their blob was missing.",
		}),
	}
}
