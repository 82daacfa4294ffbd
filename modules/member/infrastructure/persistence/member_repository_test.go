package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/repo/repotest"
)

func memberRow(id, name string, birthday *time.Time) []any {
	now := time.Now()
	row := []any{id}
	for _, f := range member.ProfileFields {
		switch f {
		case member.FieldFullName:
			row = append(row, name)
		case member.FieldBirthday:
			if birthday == nil {
				row = append(row, nil)
			} else {
				row = append(row, *birthday)
			}
		case member.FieldDistrict:
			row = append(row, "Mueang")
		default:
			row = append(row, "")
		}
	}
	return append(row, now, now)
}

func TestMemberRepository_GetPaginated_FiltersAndMaps(t *testing.T) {
	bday := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
	tx := &repotest.StubTx{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "FROM members")
			require.Contains(t, sql, "ORDER BY full_name ASC, member_id ASC")
			require.Contains(t, sql, "LIMIT 10 OFFSET 20")
			require.Equal(t, []any{"%som%", "Mueang"}, args)
			return repotest.NewRows(memberRow("M1", "Somchai", &bday)), nil
		},
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "COUNT(*)")
			return repotest.StubRow{Values: []any{int64(41)}}
		},
	}
	repo := NewMemberRepository()

	items, total, err := repo.GetPaginated(tx.Context(context.Background()), &member.FindParams{
		Q: " som ", District: "Mueang", Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	require.Equal(t, int64(41), total)
	require.Len(t, items, 1)
	require.Equal(t, "Somchai", items[0].FullName)
	require.Equal(t, "Mueang", items[0].District)
	require.Equal(t, "1990-05-20", items[0].Get(member.FieldBirthday))
}

func TestMemberRepository_GetByID_NotFound(t *testing.T) {
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return repotest.StubRow{Err: pgx.ErrNoRows}
		},
	}
	_, err := NewMemberRepository().GetByID(tx.Context(context.Background()), "M404")
	require.ErrorIs(t, err, member.ErrNotFound)
}

func TestMemberRepository_Create_DuplicateID(t *testing.T) {
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO members")
			require.Len(t, args, len(member.ProfileFields)+1)
			return repotest.StubRow{Err: repotest.UniqueViolation("members_pkey")}
		},
	}
	_, err := NewMemberRepository().Create(tx.Context(context.Background()), member.Member{MemberID: "M1"})
	require.ErrorIs(t, err, member.ErrIDTaken)
}

func TestMemberRepository_Create_PassesNullBirthday(t *testing.T) {
	tx := &repotest.StubTx{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			for i, f := range member.ProfileFields {
				if f == member.FieldBirthday {
					require.Nil(t, args[i+1])
				}
			}
			return repotest.StubRow{Values: memberRow("M1", "Somchai", nil)}
		},
	}
	created, err := NewMemberRepository().Create(tx.Context(context.Background()), member.Member{MemberID: "M1", FullName: "Somchai"})
	require.NoError(t, err)
	require.Nil(t, created.Birthday)
}

func TestMemberRepository_Delete(t *testing.T) {
	ctx := context.Background()

	linked := &repotest.StubTx{ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, repotest.ForeignKeyViolation("users_member_id_fkey")
	}}
	require.ErrorIs(t, NewMemberRepository().Delete(linked.Context(ctx), "M1"), member.ErrHasAccount)

	missing := &repotest.StubTx{ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("DELETE 0"), nil
	}}
	require.ErrorIs(t, NewMemberRepository().Delete(missing.Context(ctx), "M1"), member.ErrNotFound)

	ok := &repotest.StubTx{ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("DELETE 1"), nil
	}}
	require.NoError(t, NewMemberRepository().Delete(ok.Context(ctx), "M1"))
}

func TestMemberRepository_ListWithoutAccount(t *testing.T) {
	tx := &repotest.StubTx{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "LEFT JOIN users u")
			require.Contains(t, sql, "m.full_name")
			return repotest.NewRows(memberRow("M2", "Malee", nil)), nil
		},
	}
	items, err := NewMemberRepository().ListWithoutAccount(tx.Context(context.Background()))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "M2", items[0].MemberID)
}

func TestStatsRepository_CountBy(t *testing.T) {
	tx := &repotest.StubTx{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "COALESCE(district, '')")
			require.Contains(t, sql, "GROUP BY 1")
			require.Empty(t, args)
			return repotest.NewRows([]any{"", int64(2)}, []any{"Mueang", int64(5)}), nil
		},
	}
	groups, err := NewStatsRepository().CountBy(tx.Context(context.Background()), member.FieldDistrict)
	require.NoError(t, err)
	require.Equal(t, []member.GroupCount{{Key: "", Count: 2}, {Key: "Mueang", Count: 5}}, groups)
}

func TestStatsRepository_CountByRejectsOtherColumns(t *testing.T) {
	tx := &repotest.StubTx{}
	_, err := NewStatsRepository().CountBy(tx.Context(context.Background()), member.Field("password_hash; --"))
	require.ErrorIs(t, err, member.ErrUngroupable)
	require.Empty(t, tx.Calls)
}
