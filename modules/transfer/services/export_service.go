package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/columns"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/metrics"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

// MemberSheetColumns is the column order of the Members sheet.
var MemberSheetColumns = func() []columns.Field {
	out := []columns.Field{columns.MemberID}
	for _, f := range member.ProfileFields {
		out = append(out, columns.Field(f))
	}
	return out
}()

// UserSheetColumns is the column order of the Users sheet.
var UserSheetColumns = []columns.Field{
	columns.MemberID,
	columns.FullName,
	columns.District,
	columns.GraduationYear,
	columns.Type,
	columns.Username,
	columns.PasswordHash,
	columns.Role,
	columns.Email,
	columns.Approved,
	columns.NotificationsEnabled,
}

type ExportService struct {
	repo     transfer.Repository
	accounts account.Repository
	reporter *Reporter
	now      func() time.Time
}

func NewExportService(repository transfer.Repository, accounts account.Repository, reporter *Reporter) *ExportService {
	return &ExportService{
		repo:     repository,
		accounts: accounts,
		reporter: reporter,
		now:      time.Now,
	}
}

// Export renders the filtered roster as an .xlsx workbook.
func (s *ExportService) Export(ctx context.Context, req transfer.ExportRequest) (transfer.Export, error) {
	mode, err := transfer.ParseMode(string(req.Mode))
	if err != nil {
		return transfer.Export{}, err
	}
	export, err := s.build(ctx, mode, req.Filter)
	metrics.ObserveTransfer(string(transferlog.KindExport), string(mode), err)
	if err != nil {
		composables.UseLogger(ctx).WithError(err).WithField("mode", mode).Error("export failed")
		return transfer.Export{}, fmt.Errorf("%w: %w", transfer.ErrExportFailed, err)
	}

	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = composables.UseActor(ctx)
	}
	s.reporter.Report(ctx, Entry{
		Kind:        transferlog.KindExport,
		Mode:        mode,
		Filename:    export.Filename,
		Count:       export.Rows,
		PerformedBy: performedBy,
	})
	return export, nil
}

func (s *ExportService) build(ctx context.Context, mode transfer.Mode, filter transfer.Filter) (transfer.Export, error) {
	rows, err := s.repo.ExportRows(ctx, filter)
	if err != nil {
		return transfer.Export{}, err
	}

	w := spreadsheet.NewWriter()
	defer func() { _ = w.Close() }()

	if mode.Members() {
		data := spreadsheet.SheetData{Name: transfer.MembersSheet, Header: columns.Headers(MemberSheetColumns)}
		for _, row := range rows {
			data.Rows = append(data.Rows, memberLine(row.Member))
		}
		if err := w.AddSheet(data); err != nil {
			return transfer.Export{}, err
		}
	}
	if mode.Users() {
		data := spreadsheet.SheetData{Name: transfer.UsersSheet, Header: columns.Headers(UserSheetColumns)}
		for _, row := range rows {
			data.Rows = append(data.Rows, userLine(row))
		}
		if err := w.AddSheet(data); err != nil {
			return transfer.Export{}, err
		}
	}

	content, err := w.Bytes()
	if err != nil {
		return transfer.Export{}, err
	}
	return transfer.Export{
		Filename: transfer.ExportFilename(mode, s.now()),
		Content:  content,
		Rows:     len(rows),
	}, nil
}

func memberLine(m member.Member) []string {
	out := make([]string, len(MemberSheetColumns))
	for i, f := range MemberSheetColumns {
		out[i] = m.Get(member.Field(f))
	}
	return out
}

func userLine(row transfer.ExportRow) []string {
	out := make([]string, len(UserSheetColumns))
	for i, f := range UserSheetColumns {
		switch f {
		case columns.MemberID, columns.FullName, columns.District, columns.GraduationYear, columns.Type:
			out[i] = row.Member.Get(member.Field(f))
		}
	}
	a := row.Account
	if a == nil {
		return out
	}
	for i, f := range UserSheetColumns {
		switch f {
		case columns.Username:
			out[i] = a.Username
		case columns.PasswordHash:
			out[i] = a.PasswordHash
		case columns.Role:
			out[i] = a.Role
		case columns.Email:
			out[i] = a.Email
		case columns.Approved:
			out[i] = strconv.FormatBool(a.Approved)
		case columns.NotificationsEnabled:
			out[i] = strconv.FormatBool(a.NotificationsEnabled)
		}
	}
	return out
}

func (s *ExportService) FilterOptions(ctx context.Context) (transfer.FilterOptions, error) {
	opts, err := s.repo.FilterOptions(ctx)
	if err != nil {
		return transfer.FilterOptions{}, errors.Wrap(err, "filter options")
	}
	return opts, nil
}

// Summary counts members matching filter and all accounts.
func (s *ExportService) Summary(ctx context.Context, filter transfer.Filter) (transfer.Summary, error) {
	members, err := s.repo.CountMembers(ctx, filter)
	if err != nil {
		return transfer.Summary{}, err
	}
	users, err := s.accounts.Count(ctx)
	if err != nil {
		return transfer.Summary{}, err
	}
	return transfer.Summary{Members: members, Users: users}, nil
}
