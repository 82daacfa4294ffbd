package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "transfers_total",
		Help:      "Spreadsheet imports and exports by kind, mode and result.",
	}, []string{"kind", "mode", "result"})

	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "import_rows_total",
		Help:      "Processed import rows by sheet and outcome.",
	}, []string{"sheet", "outcome"})

	AuditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Name:      "transfer_audit_failures_total",
		Help:      "Transfer log rows that could not be written.",
	})
)

func ObserveTransfer(kind, mode string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	TransfersTotal.WithLabelValues(kind, mode, result).Inc()
}
