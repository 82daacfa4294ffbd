package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/repo"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MemberColumns is the select list matching scanMember.
var MemberColumns = func() string {
	cols := []string{string(member.FieldMemberID)}
	for _, f := range member.ProfileFields {
		cols = append(cols, string(f))
	}
	return strings.Join(append(cols, "created_at", "updated_at"), ", ")
}()

type MemberRepository struct{}

func NewMemberRepository() member.Repository {
	return &MemberRepository{}
}

func (r *MemberRepository) GetPaginated(ctx context.Context, params *member.FindParams) ([]member.Member, int64, error) {
	if params == nil {
		params = &member.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := buildMemberFilters(params)
	rows, err := tx.Query(ctx, `
		SELECT `+MemberColumns+`
		FROM members
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY full_name ASC, member_id ASC
		`+repo.FormatLimitOffset(params.Limit, params.Offset),
		args...,
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list members")
	}
	defer rows.Close()

	out := make([]member.Member, 0)
	for rows.Next() {
		m, err := ScanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM members WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count members")
	}
	return out, total, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, memberID string) (member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return member.Member{}, err
	}
	m, err := ScanMember(tx.QueryRow(ctx,
		`SELECT `+MemberColumns+` FROM members WHERE member_id = $1`,
		strings.TrimSpace(memberID),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, err
	}
	return m, nil
}

func (r *MemberRepository) Create(ctx context.Context, m member.Member) (member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return member.Member{}, err
	}

	cols := []string{string(member.FieldMemberID)}
	placeholders := []string{"$1"}
	args := []any{m.MemberID}
	for i, f := range member.ProfileFields {
		cols = append(cols, string(f))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, columnValue(&m, f))
	}

	created, err := ScanMember(tx.QueryRow(ctx,
		`INSERT INTO members (`+strings.Join(cols, ", ")+`)
		 VALUES (`+strings.Join(placeholders, ", ")+`)
		 RETURNING `+MemberColumns,
		args...,
	))
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return member.Member{}, member.ErrIDTaken
		}
		return member.Member{}, errors.Wrap(err, "create member")
	}
	return created, nil
}

func (r *MemberRepository) Update(ctx context.Context, m member.Member) (member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return member.Member{}, err
	}

	sets := make([]string, 0, len(member.ProfileFields)+1)
	args := []any{m.MemberID}
	for i, f := range member.ProfileFields {
		sets = append(sets, fmt.Sprintf("%s = $%d", f, i+2))
		args = append(args, columnValue(&m, f))
	}
	sets = append(sets, "updated_at = now()")

	updated, err := ScanMember(tx.QueryRow(ctx,
		`UPDATE members SET `+strings.Join(sets, ", ")+`
		 WHERE member_id = $1
		 RETURNING `+MemberColumns,
		args...,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "update member")
	}
	return updated, nil
}

func (r *MemberRepository) Delete(ctx context.Context, memberID string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM members WHERE member_id = $1`, memberID)
	if err != nil {
		if isPgCode(err, pgForeignKeyViolation) {
			return member.ErrHasAccount
		}
		return errors.Wrap(err, "delete member")
	}
	if tag.RowsAffected() == 0 {
		return member.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) ListWithoutAccount(ctx context.Context) ([]member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+prefixed("m", MemberColumns)+`
		FROM members m
		LEFT JOIN users u ON u.member_id = m.member_id
		WHERE u.id IS NULL
		ORDER BY m.full_name ASC, m.member_id ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "list members without account")
	}
	defer rows.Close()

	out := make([]member.Member, 0)
	for rows.Next() {
		m, err := ScanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ScanMember reads one row selected with MemberColumns.
func ScanMember(row pgx.Row) (member.Member, error) {
	var m member.Member
	var birthday *time.Time
	if err := row.Scan(ScanTargets(&m, &birthday)...); err != nil {
		return member.Member{}, err
	}
	m.Birthday = birthday
	return m, nil
}

// ScanTargets returns the destinations for MemberColumns so callers can
// scan members as part of a wider row. birthday must be copied onto m
// after the scan.
func ScanTargets(m *member.Member, birthday **time.Time) []any {
	dest := []any{&m.MemberID}
	for _, f := range member.ProfileFields {
		if f == member.FieldBirthday {
			dest = append(dest, birthday)
			continue
		}
		dest = append(dest, textTarget(m, f))
	}
	return append(dest, &m.CreatedAt, &m.UpdatedAt)
}

// MemberColumnsAs is MemberColumns qualified with a table alias.
func MemberColumnsAs(alias string) string {
	return prefixed(alias, MemberColumns)
}

func buildMemberFilters(params *member.FindParams) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if q := strings.TrimSpace(params.Q); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(member_id ILIKE $%d OR full_name ILIKE $%d OR nickname ILIKE $%d OR phone ILIKE $%d)", n, n, n, n))
	}
	if v := strings.TrimSpace(params.District); v != "" {
		add("district = $%d", v)
	}
	if v := strings.TrimSpace(params.Generation); v != "" {
		add("graduation_year = $%d", v)
	}
	if v := strings.TrimSpace(params.Type); v != "" {
		add("type = $%d", v)
	}
	return where, args
}

func columnValue(m *member.Member, f member.Field) any {
	if f == member.FieldBirthday {
		if m.Birthday == nil {
			return nil
		}
		return *m.Birthday
	}
	return m.Get(f)
}

func textTarget(m *member.Member, f member.Field) *string {
	switch f {
	case member.FieldPrefix:
		return &m.Prefix
	case member.FieldFullName:
		return &m.FullName
	case member.FieldNickname:
		return &m.Nickname
	case member.FieldIDCard:
		return &m.IDCard
	case member.FieldAge:
		return &m.Age
	case member.FieldGender:
		return &m.Gender
	case member.FieldReligion:
		return &m.Religion
	case member.FieldMedicalConditions:
		return &m.MedicalConditions
	case member.FieldAllergyHistory:
		return &m.AllergyHistory
	case member.FieldAddress:
		return &m.Address
	case member.FieldPhone:
		return &m.Phone
	case member.FieldFacebook:
		return &m.Facebook
	case member.FieldInstagram:
		return &m.Instagram
	case member.FieldLineID:
		return &m.LineID
	case member.FieldSchool:
		return &m.School
	case member.FieldGraduationYear:
		return &m.GraduationYear
	case member.FieldGPA:
		return &m.GPA
	case member.FieldType:
		return &m.Type
	case member.FieldDistrict:
		return &m.District
	case member.FieldStatus:
		return &m.Status
	case member.FieldDepartment:
		return &m.Department
	}
	panic(fmt.Sprintf("member field %q has no column", f))
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

type StatsRepository struct{}

func NewStatsRepository() member.StatsRepository {
	return &StatsRepository{}
}

// CountBy groups the roster by f. Only member.GroupFields are accepted, so
// the column name is never caller text.
func (r *StatsRepository) CountBy(ctx context.Context, f member.Field) ([]member.GroupCount, error) {
	if !member.Groupable(f) {
		return nil, errors.Wrapf(member.ErrUngroupable, "%q", f)
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	col := string(f)
	rows, err := tx.Query(ctx, `
		SELECT COALESCE(`+col+`, '') AS key, COUNT(*)
		FROM members
		GROUP BY 1
		ORDER BY 1`)
	if err != nil {
		return nil, errors.Wrapf(err, "count members by %s", col)
	}
	defer rows.Close()

	out := make([]member.GroupCount, 0)
	for rows.Next() {
		var g member.GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
