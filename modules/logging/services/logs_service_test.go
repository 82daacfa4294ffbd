package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
)

type mockTransferLogRepo struct {
	calledList bool
	lastParams *transferlog.FindParams
	created    []*transferlog.TransferLog
}

func (m *mockTransferLogRepo) List(ctx context.Context, params *transferlog.FindParams) ([]*transferlog.TransferLog, error) {
	m.calledList = true
	m.lastParams = params
	return []*transferlog.TransferLog{{ID: 1, Kind: params.Kind}}, nil
}

func (m *mockTransferLogRepo) Count(ctx context.Context, params *transferlog.FindParams) (int64, error) {
	return 1, nil
}

func (m *mockTransferLogRepo) Create(ctx context.Context, log *transferlog.TransferLog) error {
	m.created = append(m.created, log)
	return nil
}

func TestLogsService_ListTransferLogs_DefaultsParams(t *testing.T) {
	repo := &mockTransferLogRepo{}
	svc := NewLogsService(repo)

	logs, total, err := svc.ListTransferLogs(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, repo.calledList)
	require.NotNil(t, repo.lastParams)
	require.Len(t, logs, 1)
	require.Equal(t, int64(1), total)
}

func TestLogsService_CreateTransferLog_RequiresPayload(t *testing.T) {
	repo := &mockTransferLogRepo{}
	svc := NewLogsService(repo)

	require.Error(t, svc.CreateTransferLog(context.Background(), nil))
	require.NoError(t, svc.CreateTransferLog(context.Background(), &transferlog.TransferLog{Kind: transferlog.KindImport}))
	require.Len(t, repo.created, 1)
}
