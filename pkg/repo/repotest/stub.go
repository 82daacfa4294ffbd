// Package repotest provides in-memory pgx stand-ins for repository tests.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sanjaithai/backoffice/pkg/constants"
)

// Call records a single statement sent to a StubTx.
type Call struct {
	SQL  string
	Args []any
}

type StubTx struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	Calls []Call
}

// Context returns ctx carrying the stub as the active transaction.
func (s *StubTx) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, constants.TxKey, s)
}

func (s *StubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *StubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	var results pgx.BatchResults
	return results
}

func (s *StubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.Calls = append(s.Calls, Call{SQL: sql, Args: args})
	if s.ExecFunc == nil {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return s.ExecFunc(ctx, sql, args...)
}

func (s *StubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.Calls = append(s.Calls, Call{SQL: sql, Args: args})
	if s.QueryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.QueryFunc(ctx, sql, args...)
}

func (s *StubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.Calls = append(s.Calls, Call{SQL: sql, Args: args})
	if s.QueryRowFunc == nil {
		return StubRow{Err: errors.New("query row not implemented")}
	}
	return s.QueryRowFunc(ctx, sql, args...)
}

// StubRows yields Data one row at a time; values are assigned to scan
// targets by reflection, nil leaving the target at its zero value.
type StubRows struct {
	Data [][]any
	idx  int
	err  error
}

func NewRows(data ...[]any) *StubRows {
	return &StubRows{Data: data}
}

func (r *StubRows) Next() bool {
	if r.idx >= len(r.Data) {
		return false
	}
	r.idx++
	return true
}

func (r *StubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.Data) {
		return errors.New("no current row to scan")
	}
	return assign(r.Data[r.idx-1], dest)
}

func (r *StubRows) Values() ([]any, error) {
	if r.idx == 0 || r.idx > len(r.Data) {
		return nil, errors.New("no current row")
	}
	return r.Data[r.idx-1], nil
}

func (r *StubRows) RawValues() [][]byte                          { return nil }
func (r *StubRows) Err() error                                   { return r.err }
func (r *StubRows) Close()                                       {}
func (r *StubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *StubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *StubRows) Conn() *pgx.Conn                              { return nil }

type StubRow struct {
	Values []any
	Err    error
}

func (r StubRow) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return assign(r.Values, dest)
}

func assign(row []any, dest []any) error {
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		tv := reflect.ValueOf(target)
		if tv.Kind() != reflect.Pointer || tv.IsNil() {
			return fmt.Errorf("scan target %d is %T, want non-nil pointer", i, target)
		}
		elem := tv.Elem()
		if row[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		src := reflect.ValueOf(row[i])
		switch {
		case src.Type().AssignableTo(elem.Type()):
			elem.Set(src)
		case elem.Kind() == reflect.Pointer && src.Type().AssignableTo(elem.Type().Elem()):
			p := reflect.New(elem.Type().Elem())
			p.Elem().Set(src)
			elem.Set(p)
		case isNumber(src.Kind()) && isNumber(elem.Kind()):
			elem.Set(src.Convert(elem.Type()))
		default:
			return fmt.Errorf("cannot scan %T into %T", row[i], target)
		}
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// UniqueViolation mimics the error pgx returns for a unique constraint.
func UniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// ForeignKeyViolation mimics the error pgx returns for a foreign key.
func ForeignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}
