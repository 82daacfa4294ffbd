package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/logging/infrastructure/persistence/models"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/repo"
)

type TransferLogRepository struct{}

func NewTransferLogRepository() transferlog.Repository {
	return &TransferLogRepository{}
}

func (r *TransferLogRepository) List(ctx context.Context, params *transferlog.FindParams) ([]*transferlog.TransferLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildTransferLogFilters(params)
	query := `
		SELECT id, kind, mode, filename, count, performed_by, created_at
		FROM transfer_logs
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
	`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*transferlog.TransferLog, 0)
	for rows.Next() {
		var row models.TransferLog
		if err := rows.Scan(
			&row.ID,
			&row.Kind,
			&row.Mode,
			&row.Filename,
			&row.Count,
			&row.PerformedBy,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainTransferLog(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *TransferLogRepository) Count(ctx context.Context, params *transferlog.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildTransferLogFilters(params)

	var count int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM transfer_logs
		WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TransferLogRepository) Create(ctx context.Context, log *transferlog.TransferLog) error {
	if log == nil {
		return errors.New("transfer log is nil")
	}
	if !log.Kind.Valid() {
		return errors.Wrapf(transferlog.ErrInvalidKind, "%q", log.Kind)
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	row := toDBTransferLog(log)
	if strings.TrimSpace(row.PerformedBy) == "" {
		row.PerformedBy = composables.SystemActor
		log.PerformedBy = row.PerformedBy
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}

	return tx.QueryRow(
		ctx,
		`INSERT INTO transfer_logs (kind, mode, filename, count, performed_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		row.Kind,
		row.Mode,
		row.Filename,
		row.Count,
		row.PerformedBy,
		row.CreatedAt,
	).Scan(&log.ID, &log.CreatedAt)
}

func buildTransferLogFilters(params *transferlog.FindParams) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	if params == nil {
		return where, args
	}
	next := func() int { return len(args) + 1 }

	if params.Kind != "" {
		where = append(where, fmt.Sprintf("kind = $%d", next()))
		args = append(args, string(params.Kind))
	}
	if by := strings.TrimSpace(params.PerformedBy); by != "" {
		where = append(where, fmt.Sprintf("performed_by ILIKE $%d", next()))
		args = append(args, "%"+by+"%")
	}
	if params.From != nil && !params.From.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", next()))
		args = append(args, *params.From)
	}
	if params.To != nil && !params.To.IsZero() {
		where = append(where, fmt.Sprintf("created_at <= $%d", next()))
		args = append(args, *params.To)
	}
	return where, args
}
