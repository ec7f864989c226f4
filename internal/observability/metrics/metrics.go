package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const (
	metricPrefix = "billing_"

	resultSuccess  = "success"
	resultError    = "error"
	resultRejected = "rejected"
)

var (
	registerOnce sync.Once

	statementRenderTotal   *prometheus.CounterVec
	statementRenderLatency *prometheus.HistogramVec
	statementAmountTotal   prometheus.Counter
	statementCreditsTotal  prometheus.Counter
	statementExportTotal   *prometheus.CounterVec
	statementExportLatency *prometheus.HistogramVec

	catalogReloadTotal *prometheus.CounterVec
	catalogPlays       prometheus.Gauge
)

// Init registers billing metrics. When db is non-nil, connection pool and
// archive size gauges are registered too.
func Init(db *sql.DB, logger logrus.FieldLogger) {
	registerOnce.Do(func() {
		statementRenderTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_render_total",
				Help: "Total statement render operations by result",
			},
			[]string{"result"},
		)
		statementRenderLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_render_latency_seconds",
				Help:    "Statement render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		statementAmountTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_amount_cents_total",
				Help: "Total amount billed on rendered statements in cents",
			},
		)
		statementCreditsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_volume_credits_total",
				Help: "Total volume credits granted on rendered statements",
			},
		)
		statementExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_export_total",
				Help: "Total statement export operations by format and result",
			},
			[]string{"format", "result"},
		)
		statementExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_export_latency_seconds",
				Help:    "Statement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		catalogReloadTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "catalog_reload_total",
				Help: "Total play catalog reloads by result",
			},
			[]string{"result"},
		)
		catalogPlays = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "catalog_plays",
				Help: "Number of plays in the loaded catalog",
			},
		)

		prometheus.MustRegister(
			statementRenderTotal,
			statementRenderLatency,
			statementAmountTotal,
			statementCreditsTotal,
			statementExportTotal,
			statementExportLatency,
			catalogReloadTotal,
			catalogPlays,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveStatementRender records render latency and result.
func ObserveStatementRender(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if statementRenderTotal != nil {
		statementRenderTotal.WithLabelValues(result).Inc()
	}
	if statementRenderLatency != nil {
		statementRenderLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddStatementTotals accumulates billed cents and granted credits.
func AddStatementTotals(amountCents, credits int64) {
	if statementAmountTotal != nil && amountCents > 0 {
		statementAmountTotal.Add(float64(amountCents))
	}
	if statementCreditsTotal != nil && credits > 0 {
		statementCreditsTotal.Add(float64(credits))
	}
}

// ObserveStatementExport records export latency and result.
func ObserveStatementExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if statementExportTotal != nil {
		statementExportTotal.WithLabelValues(format, result).Inc()
	}
	if statementExportLatency != nil {
		statementExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveCatalogReload records a catalog reload and the resulting catalog size.
func ObserveCatalogReload(result string, plays int) {
	if result == "" {
		result = resultSuccess
	}
	if catalogReloadTotal != nil {
		catalogReloadTotal.WithLabelValues(result).Inc()
	}
	if catalogPlays != nil && result == resultSuccess {
		catalogPlays.Set(float64(plays))
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultRejected = resultRejected
)

func registerDBMetrics(db *sql.DB, logger logrus.FieldLogger) {
	prometheus.MustRegister(collectors.NewDBStatsCollector(db, "billing"))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "statements_archived",
			Help: "Statements stored in the archive",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM billing_statements")
		},
	))
}

func queryCount(db *sql.DB, logger logrus.FieldLogger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.WithError(err).Warn("metrics query failed")
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
