// Package metrics expone las métricas Prometheus del ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal transacciones confirmadas por tipo y estado resultante.
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_total",
		Help: "Total de transacciones de stock confirmadas",
	}, []string{"type", "status"})

	// TransactionsFailedTotal operaciones fallidas por operación y motivo.
	TransactionsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transactions_failed_total",
		Help: "Total de operaciones del ledger que terminaron en error",
	}, []string{"operation", "reason"})

	// RetriesTotal reintentos por colisión de referencia o error transitorio.
	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_retries_total",
		Help: "Total de reintentos internos del ledger",
	}, []string{"operation"})

	// OperationLatency latencia de las operaciones de escritura del ledger.
	OperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_latency_seconds",
		Help:    "Latencia de las operaciones de escritura del ledger",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// EventsPublishFailedTotal eventos que no pudieron publicarse tras el commit.
	EventsPublishFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_events_publish_failed_total",
		Help: "Total de eventos del ledger no publicados",
	})

	// CacheLookupsTotal consultas a la caché de datos de referencia por recurso y resultado (hit|miss|error).
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reference_cache_lookups_total",
		Help: "Consultas a la caché de productos y bodegas",
	}, []string{"resource", "result"})
)
