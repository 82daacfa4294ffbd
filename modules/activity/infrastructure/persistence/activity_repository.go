package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sanjaithai/backoffice/modules/activity/domain/entities/activity"
	"github.com/sanjaithai/backoffice/pkg/composables"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const activityColumns = `event_id, event_name, event_date, location, points, description, created_at`

type ActivityRepository struct{}

func NewActivityRepository() activity.Repository {
	return &ActivityRepository{}
}

func scanActivity(row pgx.Row) (activity.Activity, error) {
	var a activity.Activity
	err := row.Scan(&a.ID, &a.Name, &a.Date, &a.Location, &a.Points, &a.Description, &a.CreatedAt)
	return a, err
}

func (r *ActivityRepository) List(ctx context.Context) ([]activity.Activity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT `+activityColumns+` FROM event_activities ORDER BY event_date DESC, event_id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list activities")
	}
	defer rows.Close()

	out := make([]activity.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (activity.Activity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return activity.Activity{}, err
	}
	a, err := scanActivity(tx.QueryRow(ctx, `SELECT `+activityColumns+` FROM event_activities WHERE event_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return activity.Activity{}, activity.ErrNotFound
	}
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "get activity")
	}
	return a, nil
}

func (r *ActivityRepository) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return activity.Activity{}, err
	}
	created, err := scanActivity(tx.QueryRow(ctx, `
		INSERT INTO event_activities (event_name, event_date, location, points, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+activityColumns,
		a.Name, a.Date, a.Location, a.Points, a.Description,
	))
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "insert activity")
	}
	return created, nil
}

func (r *ActivityRepository) Update(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return activity.Activity{}, err
	}
	updated, err := scanActivity(tx.QueryRow(ctx, `
		UPDATE event_activities
		SET event_name = $1, event_date = $2, location = $3, points = $4, description = $5
		WHERE event_id = $6
		RETURNING `+activityColumns,
		a.Name, a.Date, a.Location, a.Points, a.Description, a.ID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return activity.Activity{}, activity.ErrNotFound
	}
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "update activity")
	}
	return updated, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM event_activities WHERE event_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete activity")
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrNotFound
	}
	return nil
}

func (r *ActivityRepository) AddApplicant(ctx context.Context, eventID int64, memberID string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO event_applicants (event_id, member_id) VALUES ($1, $2)`,
		eventID, memberID,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return activity.ErrAlreadyRegistered
			case pgForeignKeyViolation:
				return activity.ErrMemberNotFound
			}
		}
		return errors.Wrap(err, "insert applicant")
	}
	return nil
}

func (r *ActivityRepository) IsRegistered(ctx context.Context, eventID int64, memberID string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_applicants WHERE event_id = $1 AND member_id = $2)`,
		eventID, memberID,
	).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check registration")
	}
	return exists, nil
}

func (r *ActivityRepository) AwardPoints(ctx context.Context, eventID int64, memberID string, points int) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO member_points (member_id, event_id, points_awarded) VALUES ($1, $2, $3)`,
		memberID, eventID, points,
	); err != nil {
		return errors.Wrap(err, "award points")
	}
	return nil
}

func (r *ActivityRepository) Participants(ctx context.Context, eventID int64) ([]activity.Participant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT ea.id, m.member_id, m.full_name, m.graduation_year, m.district, m.phone, ea.registered_at
		FROM event_applicants ea
		JOIN members m ON m.member_id = ea.member_id
		WHERE ea.event_id = $1
		ORDER BY ea.registered_at ASC, ea.id ASC`,
		eventID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list participants")
	}
	defer rows.Close()

	out := make([]activity.Participant, 0)
	for rows.Next() {
		var p activity.Participant
		if err := rows.Scan(&p.ApplicantID, &p.MemberID, &p.FullName, &p.GraduationYear, &p.District, &p.Phone, &p.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ActivityRepository) DeleteParticipants(ctx context.Context, eventID int64) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM member_points WHERE event_id = $1`, eventID); err != nil {
		return 0, errors.Wrap(err, "delete points")
	}
	tag, err := tx.Exec(ctx, `DELETE FROM event_applicants WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, errors.Wrap(err, "delete applicants")
	}
	return tag.RowsAffected(), nil
}

func (r *ActivityRepository) DeleteParticipant(ctx context.Context, eventID int64, memberID string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM member_points WHERE event_id = $1 AND member_id = $2`, eventID, memberID,
	); err != nil {
		return errors.Wrap(err, "delete points")
	}
	tag, err := tx.Exec(ctx,
		`DELETE FROM event_applicants WHERE event_id = $1 AND member_id = $2`, eventID, memberID,
	)
	if err != nil {
		return errors.Wrap(err, "delete applicant")
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrParticipantNotFound
	}
	return nil
}

func (r *ActivityRepository) Leaderboard(ctx context.Context) ([]activity.Standing, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT m.member_id, m.full_name, m.nickname,
			COALESCE(SUM(mp.points_awarded), 0) AS total_points,
			COUNT(mp.event_id) AS participated
		FROM members m
		JOIN member_points mp ON mp.member_id = m.member_id
		GROUP BY m.member_id, m.full_name, m.nickname
		ORDER BY total_points DESC, m.full_name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "leaderboard")
	}
	defer rows.Close()

	out := make([]activity.Standing, 0)
	for rows.Next() {
		var s activity.Standing
		if err := rows.Scan(&s.MemberID, &s.FullName, &s.Nickname, &s.TotalPoints, &s.Participated); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ActivityRepository) Awards(ctx context.Context, memberID string) ([]activity.Award, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT ea.event_id, ea.event_name, ea.event_date, mp.points_awarded
		FROM event_activities ea
		JOIN member_points mp ON mp.event_id = ea.event_id
		WHERE mp.member_id = $1
		ORDER BY ea.event_date DESC, ea.event_id DESC`,
		memberID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "member awards")
	}
	defer rows.Close()

	out := make([]activity.Award, 0)
	for rows.Next() {
		var a activity.Award
		if err := rows.Scan(&a.EventID, &a.EventName, &a.EventDate, &a.PointsAwarded); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
