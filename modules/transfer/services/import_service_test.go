package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/internal/memstore"
	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

// plainHasher keeps hashes readable in assertions.
type plainHasher struct{}

func (plainHasher) Hash(raw string) (string, error) { return "h:" + raw, nil }
func (plainHasher) Compare(hash, raw string) bool   { return hash == "h:"+raw }

type logRecorder struct {
	mu      sync.Mutex
	entries []*transferlog.TransferLog
	err     error
}

func (l *logRecorder) List(ctx context.Context, params *transferlog.FindParams) ([]*transferlog.TransferLog, error) {
	return l.entries, nil
}

func (l *logRecorder) Count(ctx context.Context, params *transferlog.FindParams) (int64, error) {
	return int64(len(l.entries)), nil
}

func (l *logRecorder) Create(ctx context.Context, log *transferlog.TransferLog) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, log)
	return nil
}

type fixture struct {
	store *memstore.Store
	logs  *logRecorder
	svc   *ImportService
}

func newFixture(t *testing.T, allowDerived bool) *fixture {
	t.Helper()
	store := memstore.New()
	logs := &logRecorder{}
	return &fixture{
		store: store,
		logs:  logs,
		svc: NewImportService(
			store.MemberRepository(),
			store.AccountRepository(),
			plainHasher{},
			store,
			NewReporter(logs),
			allowDerived,
		),
	}
}

func (f *fixture) run(t *testing.T, mode transfer.Mode, sheets ...*spreadsheet.Sheet) (transfer.Result, error) {
	t.Helper()
	return f.svc.ImportWorkbook(context.Background(), &spreadsheet.Workbook{Sheets: sheets}, transfer.ImportRequest{
		Filename:    "roster.xlsx",
		Mode:        mode,
		PerformedBy: "admin",
	})
}

func sheet(name string, header []string, rows ...[]string) *spreadsheet.Sheet {
	s := &spreadsheet.Sheet{Name: name, Header: header}
	for i, values := range rows {
		s.Rows = append(s.Rows, spreadsheet.Row{Line: i + 2, Values: values})
	}
	return s
}

func (f *fixture) member(t *testing.T, id string) member.Member {
	t.Helper()
	m, err := f.store.MemberRepository().GetByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

func (f *fixture) account(t *testing.T, memberID string) account.Account {
	t.Helper()
	a, err := f.store.AccountRepository().GetByMemberID(context.Background(), memberID)
	require.NoError(t, err)
	return a
}

func TestImport_SomchaiScenario(t *testing.T) {
	f := newFixture(t, false)

	result, err := f.run(t, transfer.ModeMembers, sheet("Members",
		[]string{"รหัสสมาชิก", "ชื่อ-นามสกุล", "เบอร์โทร"},
		[]string{"M1", "Somchai", ""},
		[]string{"M1", "", "0812345678"},
	))
	require.NoError(t, err)

	m := f.member(t, "M1")
	require.Equal(t, "Somchai", m.FullName)
	require.Equal(t, "0812345678", m.Phone)

	a := f.account(t, "M1")
	require.False(t, a.Approved)
	require.False(t, a.HasSecret())
	require.True(t, a.NotificationsEnabled)

	require.Equal(t, 2, result.Members)
	require.Equal(t, 1, result.Accounts)
	require.Equal(t, 2, result.Total())
	require.Equal(t, transfer.OutcomeInserted, result.Rows[0].Member)
	require.Equal(t, transfer.OutcomeInserted, result.Rows[0].Account)
	require.Equal(t, transfer.OutcomeMerged, result.Rows[1].Member)
	require.Equal(t, transfer.OutcomeUnchanged, result.Rows[1].Account)

	require.Len(t, f.logs.entries, 1)
	require.Equal(t, transferlog.KindImport, f.logs.entries[0].Kind)
	require.Equal(t, "members", f.logs.entries[0].Mode)
	require.Equal(t, 2, f.logs.entries[0].Count)
	require.Equal(t, "admin", f.logs.entries[0].PerformedBy)
}

func TestImport_EmptyMemberIDChangesNothing(t *testing.T) {
	f := newFixture(t, false)

	result, err := f.run(t, transfer.ModeBoth,
		sheet("Members", []string{"member_id", "full_name"}, []string{"  ", "Nobody"}),
		sheet("Users", []string{"member_id", "username", "password", "full_name"}, []string{"", "ghost", "pw", "Ghost"}),
	)
	require.NoError(t, err)
	require.Empty(t, f.store.Members())
	require.Empty(t, f.store.Accounts())
	require.Zero(t, result.Total())
	require.Equal(t, 2, result.Skipped())
	require.Equal(t, transfer.OutcomeSkipped, result.Rows[0].Member)
	require.Equal(t, transfer.OutcomeSkipped, result.Rows[1].Account)
}

func TestImport_FillMissingNeverOverwrites(t *testing.T) {
	f := newFixture(t, false)
	f.store.PutMember(member.Member{MemberID: "M1", FullName: "Somchai", Phone: "0811111111"})

	result, err := f.run(t, transfer.ModeMembers, sheet("Members",
		[]string{"member_id", "full_name", "phone", "district"},
		[]string{"M1", "Somchai Jaidee", "0899999999", "Bangkok"},
	))
	require.NoError(t, err)

	m := f.member(t, "M1")
	require.Equal(t, "Somchai", m.FullName)
	require.Equal(t, "0811111111", m.Phone)
	require.Equal(t, "Bangkok", m.District)
	require.Equal(t, 1, result.Members)
}

func TestImport_EmptyIncomingKeepsStoredValue(t *testing.T) {
	f := newFixture(t, false)
	f.store.PutMember(member.Member{MemberID: "M1", FullName: "Somchai", Phone: "0811111111"})
	f.store.PutAccount(account.Pending("M1"))

	result, err := f.run(t, transfer.ModeMembers, sheet("Members",
		[]string{"member_id", "full_name", "phone"},
		[]string{"M1", "", ""},
	))
	require.NoError(t, err)
	require.Equal(t, "0811111111", f.member(t, "M1").Phone)
	require.Zero(t, result.Members)
	require.Zero(t, result.Accounts)
	require.Equal(t, transfer.OutcomeUnchanged, result.Rows[0].Member)
}

func TestImport_RerunIsIdempotent(t *testing.T) {
	f := newFixture(t, false)
	members := sheet("Members",
		[]string{"member_id", "full_name", "district"},
		[]string{"M1", "Somchai", "Bangkok"},
		[]string{"M2", "Suda", "Chiang Mai"},
	)
	users := sheet("Users",
		[]string{"member_id", "username", "password"},
		[]string{"M1", "somchai", "secret"},
	)

	first, err := f.run(t, transfer.ModeBoth, members, users)
	require.NoError(t, err)
	require.Equal(t, 2, first.Members)
	require.Equal(t, 3, first.Accounts)

	membersBefore, accountsBefore := f.store.Members(), f.store.Accounts()

	second, err := f.run(t, transfer.ModeBoth, members, users)
	require.NoError(t, err)
	require.Zero(t, second.Total())
	require.Equal(t, membersBefore, f.store.Members())
	require.Equal(t, accountsBefore, f.store.Accounts())
	require.Equal(t, transfer.OutcomeAlreadyClaimed, second.Rows[2].Account)
}

func TestImport_RowFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t, false)
	boom := errors.New("connection reset")
	f.store.Fail = func(op, key string) error {
		if op == "member.create" && key == "M3" {
			return boom
		}
		return nil
	}

	_, err := f.run(t, transfer.ModeMembers, sheet("Members",
		[]string{"member_id", "full_name"},
		[]string{"M1", "A"},
		[]string{"M2", "B"},
		[]string{"M3", "C"},
	))
	require.ErrorIs(t, err, transfer.ErrImportFailed)
	require.ErrorIs(t, err, boom)
	require.Empty(t, f.store.Members())
	require.Empty(t, f.store.Accounts())
	require.Zero(t, f.store.Commits)
	require.Empty(t, f.logs.entries)
}

func TestImport_DuplicateUsernameAbortsImport(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.run(t, transfer.ModeUsers, sheet("Users",
		[]string{"member_id", "full_name", "username", "password"},
		[]string{"M1", "A", "same", "x"},
		[]string{"M2", "B", "same", "y"},
	))
	require.ErrorIs(t, err, transfer.ErrImportFailed)
	require.ErrorIs(t, err, account.ErrUsernameTaken)
	require.Empty(t, f.store.Members())
}

func TestImport_ClaimOnce(t *testing.T) {
	f := newFixture(t, false)
	f.store.PutMember(member.Member{MemberID: "M1", FullName: "Somchai"})
	f.store.PutAccount(account.Pending("M1"))

	users := []string{"member_id", "username", "password", "email"}
	result, err := f.run(t, transfer.ModeUsers, sheet("Users", users, []string{"M1", "somchai", "first", "s@example.com"}))
	require.NoError(t, err)
	require.Equal(t, transfer.OutcomeClaimed, result.Rows[0].Account)
	require.Equal(t, 1, result.Total())

	claimed := f.account(t, "M1")
	require.Equal(t, "h:first", claimed.PasswordHash)
	require.Equal(t, "somchai", claimed.Username)
	require.Equal(t, "s@example.com", claimed.Email)
	require.True(t, claimed.Approved)

	result, err = f.run(t, transfer.ModeUsers, sheet("Users", users, []string{"M1", "other", "second", "o@example.com"}))
	require.NoError(t, err)
	require.Equal(t, transfer.OutcomeAlreadyClaimed, result.Rows[0].Account)
	require.Zero(t, result.Total())
	require.Equal(t, claimed, f.account(t, "M1"))
}

func TestImport_UnclaimedWithoutSecretIsLeftAlone(t *testing.T) {
	f := newFixture(t, false)
	f.store.PutMember(member.Member{MemberID: "M1", FullName: "Somchai", IDCard: "1100000000001"})
	pending := f.store.PutAccount(account.Pending("M1"))

	result, err := f.run(t, transfer.ModeUsers, sheet("Users",
		[]string{"member_id", "username"},
		[]string{"M1", "somchai"},
	))
	require.NoError(t, err)
	require.Equal(t, transfer.OutcomeUnchanged, result.Rows[0].Account)
	require.Equal(t, pending.Username, f.account(t, "M1").Username)
	require.Zero(t, result.Derived)
}

func TestImport_UsersModeCreatesMemberAndAccount(t *testing.T) {
	f := newFixture(t, false)

	result, err := f.run(t, transfer.ModeUsers, sheet("Sheet1",
		[]string{"รหัสสมาชิก", "ชื่อ-สกุล", "ชื่อผู้ใช้", "password_hash", "role", "approved"},
		[]string{"M7", "Suda", "suda", "$2a$10$abc", "ADMIN", "0"},
		[]string{"M8", "", "nobody", "pw", "", ""},
	))
	require.NoError(t, err)

	require.Equal(t, "Suda", f.member(t, "M7").FullName)
	a := f.account(t, "M7")
	require.Equal(t, "$2a$10$abc", a.PasswordHash)
	require.Equal(t, account.RoleAdmin, a.Role)
	require.False(t, a.Approved)

	require.Equal(t, transfer.OutcomeSkipped, result.Rows[1].Account)
	require.Len(t, f.store.Members(), 1)
	require.Equal(t, 1, result.Total())
}

func TestImport_MembersSheetAccountNeedsFullName(t *testing.T) {
	f := newFixture(t, false)

	result, err := f.run(t, transfer.ModeMembers, sheet("Members",
		[]string{"member_id", "username", "password", "full_name"},
		[]string{"M9", "ghost", "pw", ""},
		[]string{"M10", "dao", "pw", "Dao"},
	))
	require.NoError(t, err)

	require.Equal(t, transfer.OutcomeInserted, result.Rows[0].Member)
	require.Equal(t, transfer.OutcomeSkipped, result.Rows[0].Account)
	require.Equal(t, "full_name is required to create the account", result.Rows[0].Reason)
	_, err = f.store.AccountRepository().GetByMemberID(context.Background(), "M9")
	require.ErrorIs(t, err, account.ErrNotFound)

	dao := f.account(t, "M10")
	require.Equal(t, "dao", dao.Username)
	require.True(t, dao.HasSecret())
	require.Len(t, f.store.Accounts(), 1)
}

func TestImport_DerivedSecretsNeedBothSwitches(t *testing.T) {
	header := []string{"member_id", "full_name", "username", "id_card"}
	row := []string{"M1", "Somchai", "somchai", "1100000000001"}

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t, true)
		result, err := f.svc.ImportWorkbook(context.Background(),
			&spreadsheet.Workbook{Sheets: []*spreadsheet.Sheet{sheet("Users", header, row)}},
			transfer.ImportRequest{Mode: transfer.ModeUsers, DeriveSecrets: true},
		)
		require.NoError(t, err)
		require.Equal(t, 1, result.Derived)
		a := f.account(t, "M1")
		require.Equal(t, "h:1100000000001", a.PasswordHash)
		require.True(t, a.Approved)
		require.Equal(t, "system", f.logs.entries[0].PerformedBy)
	})

	t.Run("not confirmed", func(t *testing.T) {
		f := newFixture(t, true)
		result, err := f.run(t, transfer.ModeUsers, sheet("Users", header, row))
		require.NoError(t, err)
		require.Zero(t, result.Derived)
		a := f.account(t, "M1")
		require.False(t, a.HasSecret())
		require.False(t, a.Approved)
	})

	t.Run("disabled by configuration", func(t *testing.T) {
		f := newFixture(t, false)
		result, err := f.svc.ImportWorkbook(context.Background(),
			&spreadsheet.Workbook{Sheets: []*spreadsheet.Sheet{sheet("Users", header, row)}},
			transfer.ImportRequest{Mode: transfer.ModeUsers, DeriveSecrets: true},
		)
		require.NoError(t, err)
		require.Zero(t, result.Derived)
		require.False(t, f.account(t, "M1").HasSecret())
	})
}

func TestImport_BothModePicksSheetsByNameThenPosition(t *testing.T) {
	f := newFixture(t, false)

	result, err := f.run(t, transfer.ModeBoth,
		sheet("Users", []string{"member_id", "username", "password"}, []string{"M1", "somchai", "pw"}),
		sheet("Members", []string{"member_id", "full_name"}, []string{"M1", "Somchai"}),
	)
	require.NoError(t, err)
	require.Equal(t, transfer.OutcomeClaimed, result.Rows[1].Account)
	require.Equal(t, "h:pw", f.account(t, "M1").PasswordHash)

	f = newFixture(t, false)
	_, err = f.run(t, transfer.ModeBoth, sheet("Sheet1", []string{"member_id"}, []string{"M1"}))
	require.ErrorIs(t, err, transfer.ErrSheetNotFound)
	require.Zero(t, f.store.Commits)
}

func TestImport_InvalidMode(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.run(t, "all")
	require.ErrorIs(t, err, transfer.ErrInvalidMode)
}

func TestImport_AuditFailureDoesNotFailImport(t *testing.T) {
	f := newFixture(t, false)
	f.logs.err = errors.New("disk full")

	result, err := f.run(t, transfer.ModeMembers, sheet("Members", []string{"member_id", "full_name"}, []string{"M1", "A"}))
	require.NoError(t, err)
	require.Equal(t, 1, result.Total())
	require.Len(t, f.store.Members(), 1)
}

func TestImport_ReadsXLSXFile(t *testing.T) {
	f := newFixture(t, false)
	path := filepath.Join(t.TempDir(), "upload.xlsx")

	w := spreadsheet.NewWriter()
	require.NoError(t, w.AddSheet(spreadsheet.SheetData{
		Name:   "Members",
		Header: []string{"รหัสสมาชิก", "ชื่อ-นามสกุล", "อำเภอ", "วันเกิด"},
		Rows:   [][]string{{"M1", "Somchai", "Bangkok", "1990-04-20"}},
	}))
	require.NoError(t, w.SaveAs(path))
	require.NoError(t, w.Close())

	result, err := f.svc.Import(context.Background(), transfer.ImportRequest{
		Path: path, Filename: "roster.xlsx", Mode: transfer.ModeMembers,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Members)

	m := f.member(t, "M1")
	require.Equal(t, "Bangkok", m.District)
	require.NotNil(t, m.Birthday)
	require.Equal(t, 1990, m.Birthday.Year())
}

func TestImport_UnreadableFile(t *testing.T) {
	f := newFixture(t, false)
	path := filepath.Join(t.TempDir(), "upload.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a spreadsheet"), 0o600))

	_, err := f.svc.Import(context.Background(), transfer.ImportRequest{Path: path, Mode: transfer.ModeMembers})
	require.ErrorIs(t, err, transfer.ErrUnreadableFile)
	require.ErrorIs(t, err, spreadsheet.ErrUnreadable)
}
