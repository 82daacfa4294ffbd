package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sanjaithai/backoffice/modules/document/domain/entities/document"
	"github.com/sanjaithai/backoffice/pkg/composables"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// documentSelect joins the sender and folds the recipients into one display
// string.
const documentSelect = `
	SELECT d.document_id, d.title, d.file_path, d.file_name, COALESCE(d.member_id, ''),
		COALESCE(m.full_name, '-'), d.description, d.upload_date,
		COALESCE((
			SELECT string_agg(COALESCE(rm.full_name, ru.username, ru.user_id::text), ', ' ORDER BY ru.user_id)
			FROM user_documents ud
			JOIN users ru ON ru.user_id = ud.user_id
			LEFT JOIN members rm ON rm.member_id = ru.member_id
			WHERE ud.document_id = d.document_id
		), '-')
	FROM documents d
	LEFT JOIN members m ON m.member_id = d.member_id`

type DocumentRepository struct{}

func NewDocumentRepository() document.Repository {
	return &DocumentRepository{}
}

func scanDocument(row pgx.Row) (document.Document, error) {
	var d document.Document
	err := row.Scan(&d.ID, &d.Title, &d.FilePath, &d.FileName, &d.MemberID,
		&d.SenderName, &d.Description, &d.UploadedAt, &d.Recipients)
	return d, err
}

func (r *DocumentRepository) query(ctx context.Context, sql string, args ...any) ([]document.Document, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	defer rows.Close()

	out := make([]document.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) get(ctx context.Context, sql string, args ...any) (document.Document, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return document.Document{}, err
	}
	d, err := scanDocument(tx.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return document.Document{}, document.ErrNotFound
	}
	if err != nil {
		return document.Document{}, errors.Wrap(err, "get document")
	}
	return d, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]document.Document, error) {
	return r.query(ctx, documentSelect+` ORDER BY d.upload_date DESC, d.document_id DESC`)
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (document.Document, error) {
	return r.get(ctx, documentSelect+` WHERE d.document_id = $1`, id)
}

func (r *DocumentRepository) Create(ctx context.Context, d document.Document) (document.Document, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return document.Document{}, err
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO documents (title, file_path, file_name, member_id, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING document_id, upload_date`,
		d.Title, d.FilePath, d.FileName, d.MemberID, d.Description,
	).Scan(&d.ID, &d.UploadedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return document.Document{}, document.ErrMemberNotFound
		}
		return document.Document{}, errors.Wrap(err, "insert document")
	}
	return d, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_documents WHERE document_id = $1`, id); err != nil {
		return errors.Wrap(err, "delete recipients")
	}
	tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE document_id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete document")
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) AddRecipients(ctx context.Context, documentID int64, userIDs []int64) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO user_documents (user_id, document_id)
		SELECT DISTINCT unnest($2::bigint[]), $1
		ON CONFLICT DO NOTHING`,
		documentID, userIDs,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolation:
				if pgErr.ConstraintName == "user_documents_document_id_fkey" {
					return 0, document.ErrNotFound
				}
				return 0, document.ErrRecipientNotFound
			case pgUniqueViolation:
				return 0, nil
			}
		}
		return 0, errors.Wrap(err, "insert recipients")
	}
	return tag.RowsAffected(), nil
}

func (r *DocumentRepository) UserAccountIDs(ctx context.Context) ([]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT user_id FROM users WHERE role = 'user' ORDER BY user_id`)
	if err != nil {
		return nil, errors.Wrap(err, "list user accounts")
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) ListForUser(ctx context.Context, userID int64) ([]document.Document, error) {
	return r.query(ctx, documentSelect+`
		JOIN user_documents mine ON mine.document_id = d.document_id AND mine.user_id = $1
		ORDER BY d.upload_date DESC, d.document_id DESC`, userID)
}

func (r *DocumentRepository) GetForUser(ctx context.Context, documentID, userID int64) (document.Document, error) {
	return r.get(ctx, documentSelect+`
		JOIN user_documents mine ON mine.document_id = d.document_id AND mine.user_id = $2
		WHERE d.document_id = $1`, documentID, userID)
}
