package transfer

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
)

var (
	ErrInvalidMode    = errors.New("type must be members, users or both")
	ErrUnreadableFile = errors.New("spreadsheet could not be read")
	ErrSheetNotFound  = errors.New("required sheet not found")
	ErrImportFailed   = errors.New("import failed")
	ErrExportFailed   = errors.New("export failed")
)

// Sheet names written on export and preferred on import.
const (
	MembersSheet = "Members"
	UsersSheet   = "Users"
)

type Mode string

const (
	ModeMembers Mode = "members"
	ModeUsers   Mode = "users"
	ModeBoth    Mode = "both"
)

func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeMembers, ModeUsers, ModeBoth:
		return m, nil
	}
	return "", errors.Wrapf(ErrInvalidMode, "%q", raw)
}

func (m Mode) Members() bool { return m == ModeMembers || m == ModeBoth }
func (m Mode) Users() bool   { return m == ModeUsers || m == ModeBoth }

// Filter narrows exports and summaries. Empty fields match everything.
type Filter struct {
	District   string
	Generation string
	MemberType string
}

type ImportRequest struct {
	Path        string
	Filename    string
	Mode        Mode
	PerformedBy string
	// DeriveSecrets is the operator's confirmation that accounts without a
	// password may get one hashed from the id card number.
	DeriveSecrets bool
}

type Outcome string

const (
	OutcomeInserted       Outcome = "inserted"
	OutcomeMerged         Outcome = "merged"
	OutcomeClaimed        Outcome = "claimed"
	OutcomeUnchanged      Outcome = "unchanged"
	OutcomeAlreadyClaimed Outcome = "already_claimed"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeNone           Outcome = ""
)

// RowOutcome records what one spreadsheet row did.
type RowOutcome struct {
	Sheet    string  `json:"sheet"`
	Line     int     `json:"line"`
	MemberID string  `json:"member_id"`
	Member   Outcome `json:"member,omitempty"`
	Account  Outcome `json:"account,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

type Result struct {
	Mode     Mode
	Members  int
	Accounts int
	// Derived counts accounts whose secret was hashed from the id card.
	Derived int
	Rows    []RowOutcome
}

// Total is the count reported to callers and the audit log.
func (r Result) Total() int {
	switch r.Mode {
	case ModeMembers:
		return r.Members
	case ModeUsers:
		return r.Accounts
	default:
		return r.Members + r.Accounts
	}
}

// Skipped counts rows rejected by the validation gate.
func (r Result) Skipped() int {
	n := 0
	for _, row := range r.Rows {
		if row.Member == OutcomeSkipped || row.Account == OutcomeSkipped {
			n++
		}
	}
	return n
}

type ExportRequest struct {
	Mode        Mode
	Filter      Filter
	PerformedBy string
}

// ExportRow is one member joined with its optional account.
type ExportRow struct {
	Member  member.Member
	Account *account.Account
}

type Export struct {
	Filename string
	Content  []byte
	Rows     int
}

type FilterOptions struct {
	Districts   []string `json:"districts"`
	Generations []string `json:"generations"`
	MemberTypes []string `json:"memberTypes"`
}

type Summary struct {
	Members int64 `json:"members"`
	Users   int64 `json:"users"`
}

// Repository holds the read-only queries used by export and reporting.
type Repository interface {
	ExportRows(ctx context.Context, filter Filter) ([]ExportRow, error)
	FilterOptions(ctx context.Context) (FilterOptions, error)
	CountMembers(ctx context.Context, filter Filter) (int64, error)
}

// ExportFilename follows <mode>_export_<YYYY-MM-DD>.xlsx.
func ExportFilename(mode Mode, at time.Time) string {
	return string(mode) + "_export_" + at.Format(time.DateOnly) + ".xlsx"
}
