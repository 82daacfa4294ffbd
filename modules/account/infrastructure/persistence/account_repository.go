package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/account/infrastructure/persistence/models"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/repo"
)

const userColumns = `u.user_id, u.username, u.password_hash, u.role, u.member_id, u.email,
	u.approved, u.notifications_enabled, u.created_at, u.updated_at, m.full_name`

const userFrom = `FROM users u LEFT JOIN members m ON m.member_id = u.member_id`

type AccountRepository struct{}

func NewAccountRepository() account.Repository {
	return &AccountRepository{}
}

func (r *AccountRepository) GetPaginated(ctx context.Context, params *account.FindParams) ([]account.Account, int64, error) {
	if params == nil {
		params = &account.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := buildAccountFilters(params)
	rows, err := tx.Query(ctx, `
		SELECT `+userColumns+` `+userFrom+`
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY u.created_at DESC, u.user_id DESC
		`+repo.FormatLimitOffset(params.Limit, params.Offset),
		args...,
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	out := make([]account.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) `+userFrom+` WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	return out, total, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (account.Account, error) {
	return r.getOne(ctx, "u.user_id = $1", id)
}

func (r *AccountRepository) GetByMemberID(ctx context.Context, memberID string) (account.Account, error) {
	return r.getOne(ctx, "u.member_id = $1", strings.TrimSpace(memberID))
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (account.Account, error) {
	return r.getOne(ctx, "u.username = $1", strings.TrimSpace(username))
}

func (r *AccountRepository) getOne(ctx context.Context, where string, arg any) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, err
	}
	a, err := scanAccount(tx.QueryRow(ctx, `SELECT `+userColumns+` `+userFrom+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a account.Account) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, err
	}
	row := toDBUser(a)
	if row.Role == "" {
		row.Role = account.RoleUser
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, member_id, email, approved, notifications_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING user_id, created_at, updated_at`,
		row.Username,
		row.PasswordHash,
		row.Role,
		row.MemberID,
		row.Email,
		row.Approved,
		row.NotificationsEnabled,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt); err != nil {
		return account.Account{}, mapWriteError(err, "insert user")
	}
	created := toDomainAccount(&row)
	created.MemberFullName = a.MemberFullName
	return created, nil
}

func (r *AccountRepository) Update(ctx context.Context, a account.Account) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, err
	}
	row := toDBUser(a)
	if err := tx.QueryRow(ctx, `
		UPDATE users SET
			username = $2,
			password_hash = $3,
			role = $4,
			member_id = $5,
			email = $6,
			approved = $7,
			notifications_enabled = $8,
			updated_at = now()
		WHERE user_id = $1
		RETURNING created_at, updated_at`,
		row.ID,
		row.Username,
		row.PasswordHash,
		row.Role,
		row.MemberID,
		row.Email,
		row.Approved,
		row.NotificationsEnabled,
	).Scan(&row.CreatedAt, &row.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, mapWriteError(err, "update user")
	}
	updated := toDomainAccount(&row)
	updated.MemberFullName = a.MemberFullName
	return updated, nil
}

func (r *AccountRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE users SET approved = $2, updated_at = now() WHERE user_id = $1`, id, approved)
	if err != nil {
		return errors.Wrap(err, "set approved")
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return count, nil
}

func scanAccount(row pgx.Row) (account.Account, error) {
	var m models.User
	if err := row.Scan(
		&m.ID,
		&m.Username,
		&m.PasswordHash,
		&m.Role,
		&m.MemberID,
		&m.Email,
		&m.Approved,
		&m.NotificationsEnabled,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.MemberFullName,
	); err != nil {
		return account.Account{}, err
	}
	return toDomainAccount(&m), nil
}

func buildAccountFilters(params *account.FindParams) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	if q := strings.TrimSpace(params.Q); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(u.username ILIKE $%d OR u.member_id ILIKE $%d OR m.full_name ILIKE $%d)", n, n, n))
	}
	if role := strings.TrimSpace(params.Role); role != "" {
		args = append(args, role)
		where = append(where, fmt.Sprintf("u.role = $%d", len(args)))
	}
	return where, args
}

func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "member_id"):
			return account.ErrMemberTaken
		case pgErr.Code == "23505":
			return account.ErrUsernameTaken
		case pgErr.Code == "23503":
			return account.ErrMemberMissing
		}
	}
	return errors.Wrap(err, op)
}
