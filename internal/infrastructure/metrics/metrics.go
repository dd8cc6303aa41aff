// Package metrics registers the service's Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsRecorded counts appended ledger transactions by entity
	// kind and transaction type.
	TransactionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backledger_transactions_recorded_total",
			Help: "Total number of ledger transactions recorded",
		},
		[]string{"entity_kind", "type"},
	)

	// EntitiesCreated counts created customers and parties.
	EntitiesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backledger_entities_created_total",
			Help: "Total number of entities created",
		},
		[]string{"kind"},
	)

	// StatementExports counts CSV statement downloads by variant.
	StatementExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backledger_statement_exports_total",
			Help: "Total number of CSV statements exported",
		},
		[]string{"variant"},
	)

	// ConsistencyFailures counts entities whose stored balance disagreed
	// with the recomputed one.
	ConsistencyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backledger_consistency_failures_total",
			Help: "Total number of balance mismatches found by consistency checks",
		},
	)
)
