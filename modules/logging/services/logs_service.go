package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
)

type LogsService struct {
	repo transferlog.Repository
}

func NewLogsService(repository transferlog.Repository) *LogsService {
	return &LogsService{
		repo: repository,
	}
}

func (s *LogsService) ListTransferLogs(
	ctx context.Context,
	params *transferlog.FindParams,
) ([]*transferlog.TransferLog, int64, error) {
	if params == nil {
		params = &transferlog.FindParams{}
	}

	logs, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return logs, count, nil
}

func (s *LogsService) CreateTransferLog(ctx context.Context, log *transferlog.TransferLog) error {
	if log == nil {
		return errors.New("transfer log payload is required")
	}
	return s.repo.Create(ctx, log)
}
