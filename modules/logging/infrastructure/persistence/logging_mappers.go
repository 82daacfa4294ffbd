package persistence

import (
	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/logging/infrastructure/persistence/models"
)

func toDBTransferLog(log *transferlog.TransferLog) *models.TransferLog {
	return &models.TransferLog{
		ID:          log.ID,
		Kind:        string(log.Kind),
		Mode:        log.Mode,
		Filename:    log.Filename,
		Count:       log.Count,
		PerformedBy: log.PerformedBy,
		CreatedAt:   log.CreatedAt,
	}
}

func toDomainTransferLog(row *models.TransferLog) *transferlog.TransferLog {
	return &transferlog.TransferLog{
		ID:          row.ID,
		Kind:        transferlog.Kind(row.Kind),
		Mode:        row.Mode,
		Filename:    row.Filename,
		Count:       row.Count,
		PerformedBy: row.PerformedBy,
		CreatedAt:   row.CreatedAt,
	}
}
