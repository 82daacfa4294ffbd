package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/pkg/repo/repotest"
)

func TestTransferLogRepository_List_FiltersByKindAndMapsRows(t *testing.T) {
	now := time.Now()
	tx := &repotest.StubTx{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "FROM transfer_logs")
			require.Contains(t, sql, "kind = $1")
			require.Contains(t, sql, "ORDER BY created_at DESC")
			require.Contains(t, sql, "LIMIT 10 OFFSET 5")
			require.Equal(t, []any{"import"}, args)
			return repotest.NewRows(
				[]any{int64(7), "import", "both", "roster.xlsx", 12, "admin", now},
			), nil
		},
	}

	result, err := NewTransferLogRepository().List(tx.Context(context.Background()), &transferlog.FindParams{
		Kind: transferlog.KindImport, Limit: 10, Offset: 5,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, int64(7), result[0].ID)
	require.Equal(t, transferlog.KindImport, result[0].Kind)
	require.Equal(t, "both", result[0].Mode)
	require.Equal(t, 12, result[0].Count)
	require.Equal(t, now, result[0].CreatedAt)
}

func TestTransferLogRepository_Count_WithoutParams(t *testing.T) {
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "transfer_logs")
			require.Empty(t, args)
			return repotest.StubRow{Values: []any{int64(3)}}
		},
	}

	count, err := NewTransferLogRepository().Count(tx.Context(context.Background()), nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestTransferLogRepository_Create_FillsActorAndTimestamp(t *testing.T) {
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO transfer_logs")
			require.Equal(t, "export", args[0])
			require.Equal(t, "members", args[1])
			require.Equal(t, "system", args[4])
			require.IsType(t, time.Time{}, args[5])
			return repotest.StubRow{Values: []any{int64(55), args[5]}}
		},
	}

	entry := &transferlog.TransferLog{Kind: transferlog.KindExport, Mode: "members", Filename: "members_export_2024-01-02.xlsx", Count: 4}
	require.NoError(t, NewTransferLogRepository().Create(tx.Context(context.Background()), entry))
	require.Equal(t, int64(55), entry.ID)
	require.Equal(t, "system", entry.PerformedBy)
	require.NotZero(t, entry.CreatedAt)
}

func TestTransferLogRepository_Create_RejectsUnknownKind(t *testing.T) {
	tx := &repotest.StubTx{}
	err := NewTransferLogRepository().Create(tx.Context(context.Background()), &transferlog.TransferLog{Kind: "delete"})
	require.ErrorIs(t, err, transferlog.ErrInvalidKind)
	require.Empty(t, tx.Calls)
}
