package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	memberpersistence "github.com/sanjaithai/backoffice/modules/member/infrastructure/persistence"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/modules/transfer/infrastructure/persistence/models"
	"github.com/sanjaithai/backoffice/pkg/composables"
)

const linkedUserColumns = `u.user_id, u.username, u.password_hash, u.role, u.email,
	u.approved, u.notifications_enabled, u.created_at, u.updated_at`

type TransferRepository struct{}

func NewTransferRepository() transfer.Repository {
	return &TransferRepository{}
}

// ExportRows returns every member matching filter with its account, if any,
// ordered by name.
func (r *TransferRepository) ExportRows(ctx context.Context, filter transfer.Filter) ([]transfer.ExportRow, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildFilter(filter)
	rows, err := tx.Query(ctx, `
		SELECT `+memberpersistence.MemberColumnsAs("m")+`, `+linkedUserColumns+`
		FROM members m
		LEFT JOIN users u ON u.member_id = m.member_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY m.full_name ASC, m.member_id ASC`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select export rows")
	}
	defer rows.Close()

	out := make([]transfer.ExportRow, 0)
	for rows.Next() {
		var (
			m        member.Member
			birthday *time.Time
			u        models.LinkedUser
		)
		dest := memberpersistence.ScanTargets(&m, &birthday)
		dest = append(dest,
			&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Email,
			&u.Approved, &u.NotificationsEnabled, &u.CreatedAt, &u.UpdatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan export row")
		}
		m.Birthday = birthday
		out = append(out, transfer.ExportRow{Member: m, Account: toDomainAccount(m.MemberID, &u)})
	}
	return out, rows.Err()
}

var filterColumns = []string{
	string(member.FieldDistrict),
	string(member.FieldGraduationYear),
	string(member.FieldType),
}

// FilterOptions lists the distinct non-empty values of each filter column.
func (r *TransferRepository) FilterOptions(ctx context.Context) (transfer.FilterOptions, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return transfer.FilterOptions{}, err
	}

	values := make([][]string, len(filterColumns))
	for i, col := range filterColumns {
		rows, err := tx.Query(ctx, fmt.Sprintf(
			`SELECT DISTINCT %[1]s FROM members WHERE %[1]s <> '' ORDER BY %[1]s ASC`, col,
		))
		if err != nil {
			return transfer.FilterOptions{}, errors.Wrapf(err, "distinct %s", col)
		}
		values[i] = make([]string, 0)
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return transfer.FilterOptions{}, errors.Wrapf(err, "scan %s", col)
			}
			values[i] = append(values[i], v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return transfer.FilterOptions{}, err
		}
	}
	return transfer.FilterOptions{
		Districts:   values[0],
		Generations: values[1],
		MemberTypes: values[2],
	}, nil
}

func (r *TransferRepository) CountMembers(ctx context.Context, filter transfer.Filter) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildFilter(filter)
	var count int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM members m WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count members")
	}
	return count, nil
}

func buildFilter(filter transfer.Filter) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	add := func(col, value string) {
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("m.%s = $%d", col, len(args)))
	}
	add(string(member.FieldDistrict), filter.District)
	add(string(member.FieldGraduationYear), filter.Generation)
	add(string(member.FieldType), filter.MemberType)
	return where, args
}
