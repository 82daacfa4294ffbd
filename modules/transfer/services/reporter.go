package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/metrics"
)

type Entry struct {
	Kind        transferlog.Kind
	Mode        transfer.Mode
	Filename    string
	Count       int
	PerformedBy string
}

// Reporter appends one transfer log row per completed import or export.
// A failed write is logged and never reaches the caller.
type Reporter struct {
	logs transferlog.Repository
}

func NewReporter(logs transferlog.Repository) *Reporter {
	return &Reporter{logs: logs}
}

func (r *Reporter) Report(ctx context.Context, e Entry) {
	if r == nil || r.logs == nil {
		return
	}
	entry := &transferlog.TransferLog{
		Kind:        e.Kind,
		Mode:        string(e.Mode),
		Filename:    e.Filename,
		Count:       e.Count,
		PerformedBy: e.PerformedBy,
	}
	if err := r.logs.Create(ctx, entry); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		composables.UseLogger(ctx).WithError(err).WithFields(logrus.Fields{
			"kind":     e.Kind,
			"mode":     e.Mode,
			"filename": e.Filename,
			"count":    e.Count,
		}).Warn("transfer log not written")
	}
}
