package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/internal/memstore"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/modules/transfer/services"
	"github.com/sanjaithai/backoffice/pkg/secrets"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

type emptyRoster struct{}

func (emptyRoster) ExportRows(ctx context.Context, filter transfer.Filter) ([]transfer.ExportRow, error) {
	return nil, nil
}

func (emptyRoster) FilterOptions(ctx context.Context) (transfer.FilterOptions, error) {
	return transfer.FilterOptions{Districts: []string{"Mueang"}, Generations: []string{}, MemberTypes: []string{}}, nil
}

func (emptyRoster) CountMembers(ctx context.Context, filter transfer.Filter) (int64, error) {
	return 0, nil
}

func useStore(t *testing.T) *memstore.Store {
	t.Helper()
	store := memstore.New()
	prev := openBackend
	openBackend = func(ctx context.Context) (context.Context, *backend, error) {
		return ctx, &backend{
			importer: services.NewImportService(store.MemberRepository(), store.AccountRepository(), secrets.NewBcryptHasher(4), store, nil, false),
			exporter: services.NewExportService(emptyRoster{}, store.AccountRepository(), nil),
			close:    func() {},
		}, nil
	}
	t.Cleanup(func() { openBackend = prev })
	return store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeRoster(t *testing.T) string {
	t.Helper()
	w := spreadsheet.NewWriter()
	defer w.Close()
	require.NoError(t, w.AddSheet(spreadsheet.SheetData{
		Name:   "Members",
		Header: []string{"member_id", "full_name", "district"},
		Rows:   [][]string{{"M1", "Somchai", "Mueang"}, {"", "No id", ""}},
	}))
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, w.SaveAs(path))
	return path
}

func TestImportCommand(t *testing.T) {
	store := useStore(t)
	out, err := run(t, "import", "--file", writeRoster(t), "--type", "members", "--verbose")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var summary importSummary
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &summary))
	require.Equal(t, importSummary{File: "roster.xlsx", Mode: "members", Count: 1, Members: 1, Users: 1, Skipped: 1}, summary)
	require.Len(t, store.Members(), 1)
	accounts := store.Accounts()
	require.Len(t, accounts, 1)
	require.Equal(t, "M1", accounts[0].MemberID)
	require.False(t, accounts[0].Approved)
	require.False(t, accounts[0].HasSecret())
}

func TestImportCommand_ExitCodes(t *testing.T) {
	useStore(t)

	_, err := run(t, "import", "--file", writeRoster(t), "--type", "everything")
	require.Equal(t, exitUsage, exitCode(err))

	_, err = run(t, "import", "--file", filepath.Join(t.TempDir(), "missing.xlsx"), "--type", "members")
	require.Equal(t, exitValidation, exitCode(err))

	junk := filepath.Join(t.TempDir(), "junk.xlsx")
	require.NoError(t, os.WriteFile(junk, []byte("plain text"), 0o600))
	_, err = run(t, "import", "--file", junk, "--type", "members")
	require.Equal(t, exitValidation, exitCode(err))
	require.ErrorIs(t, err, transfer.ErrUnreadableFile)
}

func TestConnectFailureIsDBError(t *testing.T) {
	prev := openBackend
	openBackend = func(ctx context.Context) (context.Context, *backend, error) {
		return ctx, nil, errors.New("connection refused")
	}
	t.Cleanup(func() { openBackend = prev })

	_, err := run(t, "filters")
	require.Equal(t, exitDB, exitCode(err))
}

func TestExportCommand_WritesIntoDirectory(t *testing.T) {
	useStore(t)
	dir := t.TempDir()

	out, err := run(t, "export", "--type", "both", "--output", dir)
	require.NoError(t, err)

	var summary exportSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Equal(t, dir, filepath.Dir(summary.File))
	require.True(t, strings.HasPrefix(filepath.Base(summary.File), "both_export_"))

	wb, err := spreadsheet.Open(summary.File)
	require.NoError(t, err)
	require.Equal(t, []string{"Members", "Users"}, wb.SheetNames())
}

func TestFiltersCommand(t *testing.T) {
	useStore(t)
	out, err := run(t, "filters")
	require.NoError(t, err)
	require.JSONEq(t, `{"districts":["Mueang"],"generations":[],"memberTypes":[]}`, out)
}

func TestExitCode(t *testing.T) {
	require.Equal(t, exitOK, exitCode(nil))
	require.Equal(t, 1, exitCode(errors.New("plain")))
	require.Equal(t, exitDBWrite, exitCode(withCode(exitDBWrite, errors.New("write"))))
}
