package migrations

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/go-faster/errors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

// Files returns the embedded schema files rooted at the migration directory.
func Files() fs.FS {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Up applies all pending migrations using the lib/pq driver.
func Up(ctx context.Context, dsn string) ([]*goose.MigrationResult, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	defer func() { _ = db.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Files())
	if err != nil {
		return nil, errors.Wrap(err, "goose provider")
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return results, errors.Wrap(err, "apply migrations")
	}
	return results, nil
}
