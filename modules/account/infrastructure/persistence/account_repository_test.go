package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/pkg/repo/repotest"
)

func TestAccountRepository_GetPaginated_MapsNullableColumns(t *testing.T) {
	now := time.Now()
	name := "Somchai"
	tx := &repotest.StubTx{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "LEFT JOIN members m")
			require.Contains(t, sql, "ORDER BY u.created_at DESC")
			require.Equal(t, []any{"admin"}, args)
			return repotest.NewRows(
				[]any{int64(1), nil, "", "user", "M1", nil, false, true, now, now, name},
			), nil
		},
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return repotest.StubRow{Values: []any{int64(1)}}
		},
	}

	items, total, err := NewAccountRepository().GetPaginated(tx.Context(context.Background()), &account.FindParams{Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	require.Equal(t, "", items[0].Username)
	require.Equal(t, "M1", items[0].MemberID)
	require.Equal(t, "Somchai", items[0].MemberFullName)
	require.False(t, items[0].HasSecret())
}

func TestAccountRepository_Create_StoresEmptyUsernameAsNull(t *testing.T) {
	now := time.Now()
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO users")
			require.Nil(t, args[0])
			require.Equal(t, "user", args[2])
			require.Equal(t, "M1", *args[3].(*string))
			require.Nil(t, args[4])
			return repotest.StubRow{Values: []any{int64(9), now, now}}
		},
	}

	created, err := NewAccountRepository().Create(tx.Context(context.Background()), account.Pending("M1"))
	require.NoError(t, err)
	require.Equal(t, int64(9), created.ID)
	require.Equal(t, now, created.CreatedAt)
}

func TestAccountRepository_Create_MapsConflicts(t *testing.T) {
	cases := map[string]error{
		"users_username_key":  account.ErrUsernameTaken,
		"users_member_id_key": account.ErrMemberTaken,
	}
	for constraint, want := range cases {
		tx := &repotest.StubTx{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return repotest.StubRow{Err: repotest.UniqueViolation(constraint)}
			},
		}
		_, err := NewAccountRepository().Create(tx.Context(context.Background()), account.Account{Username: "x", MemberID: "M1"})
		require.ErrorIs(t, err, want, constraint)
	}

	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return repotest.StubRow{Err: repotest.ForeignKeyViolation("users_member_id_fkey")}
		},
	}
	_, err := NewAccountRepository().Create(tx.Context(context.Background()), account.Account{MemberID: "M404"})
	require.ErrorIs(t, err, account.ErrMemberMissing)
}

func TestAccountRepository_GetByMemberID_NotFound(t *testing.T) {
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "u.member_id = $1")
			require.Equal(t, []any{"M1"}, args)
			return repotest.StubRow{Err: pgx.ErrNoRows}
		},
	}
	_, err := NewAccountRepository().GetByMemberID(tx.Context(context.Background()), " M1 ")
	require.ErrorIs(t, err, account.ErrNotFound)
}

func TestAccountRepository_Update_NotFound(t *testing.T) {
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "UPDATE users SET")
			return repotest.StubRow{Err: pgx.ErrNoRows}
		},
	}
	_, err := NewAccountRepository().Update(tx.Context(context.Background()), account.Account{ID: 4})
	require.ErrorIs(t, err, account.ErrNotFound)
}
