package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/internal/memstore"
	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/columns"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

// rosterRepo answers the export queries from a memstore.
type rosterRepo struct {
	store *memstore.Store
	err   error
}

func (r rosterRepo) matches(m member.Member, f transfer.Filter) bool {
	return (f.District == "" || m.District == f.District) &&
		(f.Generation == "" || m.GraduationYear == f.Generation) &&
		(f.MemberType == "" || m.Type == f.MemberType)
}

func (r rosterRepo) ExportRows(ctx context.Context, filter transfer.Filter) ([]transfer.ExportRow, error) {
	if r.err != nil {
		return nil, r.err
	}
	byMember := map[string]account.Account{}
	for _, a := range r.store.Accounts() {
		byMember[a.MemberID] = a
	}
	var out []transfer.ExportRow
	for _, m := range r.store.Members() {
		if !r.matches(m, filter) {
			continue
		}
		row := transfer.ExportRow{Member: m}
		if a, ok := byMember[m.MemberID]; ok {
			row.Account = &a
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Member.FullName < out[j].Member.FullName
	})
	return out, nil
}

func (r rosterRepo) FilterOptions(ctx context.Context) (transfer.FilterOptions, error) {
	return transfer.FilterOptions{Districts: []string{"Bangkok"}}, r.err
}

func (r rosterRepo) CountMembers(ctx context.Context, filter transfer.Filter) (int64, error) {
	var n int64
	for _, m := range r.store.Members() {
		if r.matches(m, filter) {
			n++
		}
	}
	return n, r.err
}

func seedRoster(store *memstore.Store) {
	store.PutMember(member.Member{MemberID: "M1", FullName: "Somchai", District: "Bangkok", Phone: "0812345678"})
	store.PutMember(member.Member{MemberID: "M2", FullName: "Anan", District: "Bangkok"})
	store.PutMember(member.Member{MemberID: "M3", FullName: "Beth", District: "Chiang Mai"})
	store.PutAccount(account.Account{
		Username: "somchai", PasswordHash: "h:x", Role: account.RoleUser, MemberID: "M1",
		Email: "s@example.com", Approved: true, NotificationsEnabled: true,
	})
	store.PutAccount(account.Pending("M2"))
}

func newExportService(store *memstore.Store, logs *logRecorder) *ExportService {
	svc := NewExportService(rosterRepo{store: store}, store.AccountRepository(), NewReporter(logs))
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func openExport(t *testing.T, export transfer.Export) *spreadsheet.Workbook {
	t.Helper()
	path := filepath.Join(t.TempDir(), export.Filename)
	require.NoError(t, os.WriteFile(path, export.Content, 0o600))
	wb, err := spreadsheet.Open(path)
	require.NoError(t, err)
	return wb
}

func TestExport_FilteredByDistrictOrderedByName(t *testing.T) {
	store := memstore.New()
	seedRoster(store)
	logs := &logRecorder{}

	export, err := newExportService(store, logs).Export(context.Background(), transfer.ExportRequest{
		Mode:        transfer.ModeBoth,
		Filter:      transfer.Filter{District: "Bangkok"},
		PerformedBy: "admin",
	})
	require.NoError(t, err)
	require.Equal(t, "both_export_2024-05-01.xlsx", export.Filename)
	require.Equal(t, 2, export.Rows)

	wb := openExport(t, export)
	require.Equal(t, []string{"Members", "Users"}, wb.SheetNames())

	members, _ := wb.Lookup("Members")
	require.Equal(t, columns.Headers(MemberSheetColumns), members.Header)
	require.Len(t, members.Rows, 2)
	require.Equal(t, "M2", members.Rows[0].Value(0))
	require.Equal(t, "M1", members.Rows[1].Value(0))

	users, _ := wb.Lookup("Users")
	require.Equal(t, "ชื่อผู้ใช้", users.Header[5])
	require.Equal(t, "", users.Rows[0].Value(5))
	require.Equal(t, "somchai", users.Rows[1].Value(5))
	require.Equal(t, "h:x", users.Rows[1].Value(6))

	require.Len(t, logs.entries, 1)
	require.Equal(t, transferlog.KindExport, logs.entries[0].Kind)
	require.Equal(t, export.Filename, logs.entries[0].Filename)
	require.Equal(t, 2, logs.entries[0].Count)
}

func TestExport_RoundTripsThroughImport(t *testing.T) {
	source := memstore.New()
	seedRoster(source)

	export, err := newExportService(source, &logRecorder{}).Export(context.Background(), transfer.ExportRequest{Mode: transfer.ModeBoth})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), export.Filename)
	require.NoError(t, os.WriteFile(path, export.Content, 0o600))

	f := newFixture(t, false)
	result, err := f.svc.Import(context.Background(), transfer.ImportRequest{Path: path, Filename: export.Filename, Mode: transfer.ModeBoth})
	require.NoError(t, err)
	require.Equal(t, 3, result.Members)

	for _, want := range source.Members() {
		got := f.member(t, want.MemberID)
		require.Equal(t, want.FullName, got.FullName)
		require.Equal(t, want.District, got.District)
		require.Equal(t, want.Phone, got.Phone)
	}

	claimed := f.account(t, "M1")
	require.Equal(t, "somchai", claimed.Username)
	require.Equal(t, "h:x", claimed.PasswordHash)
	require.Equal(t, "s@example.com", claimed.Email)
	require.True(t, claimed.Approved)
	require.False(t, f.account(t, "M2").HasSecret())

	again, err := f.svc.Import(context.Background(), transfer.ImportRequest{Path: path, Mode: transfer.ModeBoth})
	require.NoError(t, err)
	require.Zero(t, again.Total())
}

func TestExport_MembersModeWritesOneSheet(t *testing.T) {
	store := memstore.New()
	seedRoster(store)

	export, err := newExportService(store, &logRecorder{}).Export(context.Background(), transfer.ExportRequest{Mode: transfer.ModeMembers})
	require.NoError(t, err)
	require.Equal(t, "members_export_2024-05-01.xlsx", export.Filename)
	require.Equal(t, []string{"Members"}, openExport(t, export).SheetNames())
}

func TestExport_Errors(t *testing.T) {
	store := memstore.New()
	logs := &logRecorder{}
	svc := newExportService(store, logs)

	_, err := svc.Export(context.Background(), transfer.ExportRequest{Mode: "everything"})
	require.ErrorIs(t, err, transfer.ErrInvalidMode)

	svc.repo = rosterRepo{store: store, err: errors.New("db down")}
	_, err = svc.Export(context.Background(), transfer.ExportRequest{Mode: transfer.ModeUsers})
	require.ErrorIs(t, err, transfer.ErrExportFailed)
	require.Empty(t, logs.entries)
}

func TestExport_Summary(t *testing.T) {
	store := memstore.New()
	seedRoster(store)
	svc := newExportService(store, &logRecorder{})

	summary, err := svc.Summary(context.Background(), transfer.Filter{District: "Chiang Mai"})
	require.NoError(t, err)
	require.Equal(t, transfer.Summary{Members: 1, Users: 2}, summary)

	opts, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Bangkok"}, opts.Districts)
}
