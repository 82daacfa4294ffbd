package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/columns"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/metrics"
	"github.com/sanjaithai/backoffice/pkg/repo"
	"github.com/sanjaithai/backoffice/pkg/secrets"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

type ImportService struct {
	members  member.Repository
	accounts account.Repository
	hasher   secrets.Hasher
	tx       repo.Transactor
	reporter *Reporter
	// allowDerived is the server side switch for id card derived secrets.
	allowDerived bool
}

func NewImportService(
	members member.Repository,
	accounts account.Repository,
	hasher secrets.Hasher,
	tx repo.Transactor,
	reporter *Reporter,
	allowDerived bool,
) *ImportService {
	return &ImportService{
		members:      members,
		accounts:     accounts,
		hasher:       hasher,
		tx:           tx,
		reporter:     reporter,
		allowDerived: allowDerived,
	}
}

// Import reads the file at req.Path and reconciles it into the store.
func (s *ImportService) Import(ctx context.Context, req transfer.ImportRequest) (transfer.Result, error) {
	if _, err := transfer.ParseMode(string(req.Mode)); err != nil {
		return transfer.Result{}, err
	}
	wb, err := spreadsheet.Open(req.Path)
	if err != nil {
		metrics.ObserveTransfer(string(transferlog.KindImport), string(req.Mode), err)
		return transfer.Result{}, fmt.Errorf("%w: %w", transfer.ErrUnreadableFile, err)
	}
	return s.ImportWorkbook(ctx, wb, req)
}

// ImportWorkbook reconciles an already parsed workbook. The whole workbook
// is applied in one transaction: a failing row rolls back every row.
func (s *ImportService) ImportWorkbook(
	ctx context.Context,
	wb *spreadsheet.Workbook,
	req transfer.ImportRequest,
) (transfer.Result, error) {
	mode, err := transfer.ParseMode(string(req.Mode))
	if err != nil {
		return transfer.Result{}, err
	}
	memberRows, userRows, err := selectSheets(wb, mode)
	if err != nil {
		metrics.ObserveTransfer(string(transferlog.KindImport), string(mode), err)
		return transfer.Result{}, err
	}

	logger := composables.UseLogger(ctx).WithFields(logrus.Fields{
		"filename": req.Filename,
		"mode":     mode,
	})
	r := &importRun{
		svc:    s,
		derive: s.allowDerived && req.DeriveSecrets,
		logger: logger,
	}
	if req.DeriveSecrets && !s.allowDerived {
		logger.Warn("derived secrets requested but disabled by configuration")
	}

	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		r.result = transfer.Result{Mode: mode}
		r.warned = false
		for _, rec := range memberRows {
			if err := r.memberRow(txCtx, rec); err != nil {
				return errors.Wrapf(err, "%s line %d", rec.Sheet, rec.Line)
			}
		}
		for _, rec := range userRows {
			if err := r.userRow(txCtx, rec); err != nil {
				return errors.Wrapf(err, "%s line %d", rec.Sheet, rec.Line)
			}
		}
		return nil
	})
	metrics.ObserveTransfer(string(transferlog.KindImport), string(mode), err)
	if err != nil {
		logger.WithError(err).Error("import rolled back")
		return transfer.Result{}, fmt.Errorf("%w: %w", transfer.ErrImportFailed, err)
	}

	result := r.result
	for _, row := range result.Rows {
		metrics.ImportRowsTotal.WithLabelValues(row.Sheet, string(rowOutcome(row))).Inc()
	}
	logger.WithFields(logrus.Fields{
		"members":  result.Members,
		"accounts": result.Accounts,
		"skipped":  result.Skipped(),
		"derived":  result.Derived,
	}).Info("import committed")

	performedBy := req.PerformedBy
	if performedBy == "" {
		performedBy = composables.UseActor(ctx)
	}
	s.reporter.Report(ctx, Entry{
		Kind:        transferlog.KindImport,
		Mode:        mode,
		Filename:    req.Filename,
		Count:       result.Total(),
		PerformedBy: performedBy,
	})
	return result, nil
}

// selectSheets picks the sheets a mode reads. Members rows come from the
// "Members" sheet or the first one. Users rows come from the "Users" sheet,
// else the second sheet in both mode and the first sheet in users mode.
func selectSheets(wb *spreadsheet.Workbook, mode transfer.Mode) ([]columns.Record, []columns.Record, error) {
	var memberRows, userRows []columns.Record
	if mode.Members() {
		sheet, ok := wb.Lookup(transfer.MembersSheet)
		if !ok {
			sheet, ok = wb.At(0)
		}
		if !ok {
			return nil, nil, errors.Wrap(transfer.ErrSheetNotFound, transfer.MembersSheet)
		}
		memberRows = columns.TranslateSheet(*sheet)
	}
	if mode.Users() {
		sheet, ok := wb.Lookup(transfer.UsersSheet)
		if !ok {
			idx := 0
			if mode == transfer.ModeBoth {
				idx = 1
			}
			sheet, ok = wb.At(idx)
		}
		if !ok {
			return nil, nil, errors.Wrap(transfer.ErrSheetNotFound, transfer.UsersSheet)
		}
		userRows = columns.TranslateSheet(*sheet)
	}
	return memberRows, userRows, nil
}

// rowOutcome picks the label a row is counted under in metrics.
func rowOutcome(row transfer.RowOutcome) transfer.Outcome {
	switch {
	case row.Member == transfer.OutcomeSkipped, row.Account == transfer.OutcomeSkipped:
		return transfer.OutcomeSkipped
	case row.Member == transfer.OutcomeInserted, row.Member == transfer.OutcomeMerged:
		return row.Member
	case row.Account != transfer.OutcomeNone:
		return row.Account
	default:
		return transfer.OutcomeUnchanged
	}
}

// importRun holds the state of one import attempt.
type importRun struct {
	svc    *ImportService
	derive bool
	warned bool
	logger *logrus.Entry
	result transfer.Result
}

func (r *importRun) record(row transfer.RowOutcome) {
	r.result.Rows = append(r.result.Rows, row)
}

func (r *importRun) memberRow(ctx context.Context, rec columns.Record) error {
	row := transfer.RowOutcome{Sheet: rec.Sheet, Line: rec.Line, MemberID: rec.Value(columns.MemberID)}
	if row.MemberID == "" {
		row.Member = transfer.OutcomeSkipped
		row.Reason = "member_id is empty"
		r.record(row)
		return nil
	}

	m, outcome, err := r.upsertMember(ctx, row.MemberID, rec.MemberValues(), nil)
	if err != nil {
		return err
	}
	row.Member = outcome

	if rec.Value(columns.Username) != "" {
		existing, found, err := r.findAccount(ctx, m.MemberID)
		if err != nil {
			return err
		}
		if !found && m.FullName == "" {
			row.Account = transfer.OutcomeSkipped
			row.Reason = "full_name is required to create the account"
			r.record(row)
			return nil
		}
		row.Account, err = r.applyAccount(ctx, rec, m, existing, found)
		if err != nil {
			return err
		}
	} else {
		row.Account, err = r.ensurePending(ctx, m.MemberID)
		if err != nil {
			return err
		}
	}
	r.record(row)
	return nil
}

func (r *importRun) userRow(ctx context.Context, rec columns.Record) error {
	row := transfer.RowOutcome{Sheet: rec.Sheet, Line: rec.Line, MemberID: rec.Value(columns.MemberID)}
	switch {
	case row.MemberID == "":
		row.Account = transfer.OutcomeSkipped
		row.Reason = "member_id is empty"
		r.record(row)
		return nil
	case rec.Value(columns.Username) == "":
		row.Account = transfer.OutcomeSkipped
		row.Reason = "username is empty"
		r.record(row)
		return nil
	}

	stored, err := r.svc.members.GetByID(ctx, row.MemberID)
	memberFound := err == nil
	if err != nil && !errors.Is(err, member.ErrNotFound) {
		return errors.Wrap(err, "get member")
	}

	var existing account.Account
	accountFound := false
	if memberFound {
		existing, accountFound, err = r.findAccount(ctx, row.MemberID)
		if err != nil {
			return err
		}
	}
	if !accountFound && rec.Value(columns.FullName) == "" && stored.FullName == "" {
		row.Account = transfer.OutcomeSkipped
		row.Reason = "full_name is required to create the account"
		r.record(row)
		return nil
	}

	var current *member.Member
	if memberFound {
		current = &stored
	}
	m, outcome, err := r.upsertMember(ctx, row.MemberID, rec.MemberValues(), current)
	if err != nil {
		return err
	}
	row.Member = outcome

	row.Account, err = r.applyAccount(ctx, rec, m, existing, accountFound)
	if err != nil {
		return err
	}
	r.record(row)
	return nil
}

// upsertMember inserts an absent member or fills its empty attributes.
// current, when not nil, is the already loaded stored member.
func (r *importRun) upsertMember(
	ctx context.Context,
	memberID string,
	values member.Values,
	current *member.Member,
) (member.Member, transfer.Outcome, error) {
	if current == nil {
		stored, err := r.svc.members.GetByID(ctx, memberID)
		switch {
		case err == nil:
			current = &stored
		case !errors.Is(err, member.ErrNotFound):
			return member.Member{}, "", errors.Wrap(err, "get member")
		}
	}

	if current == nil {
		m, err := member.New(memberID, values)
		if err != nil {
			return member.Member{}, "", err
		}
		created, err := r.svc.members.Create(ctx, m)
		if err != nil {
			return member.Member{}, "", errors.Wrap(err, "insert member")
		}
		r.result.Members++
		return created, transfer.OutcomeInserted, nil
	}

	m := *current
	if changed := m.MergeMissing(values); len(changed) == 0 {
		return m, transfer.OutcomeUnchanged, nil
	}
	updated, err := r.svc.members.Update(ctx, m)
	if err != nil {
		return member.Member{}, "", errors.Wrap(err, "update member")
	}
	r.result.Members++
	return updated, transfer.OutcomeMerged, nil
}

func (r *importRun) findAccount(ctx context.Context, memberID string) (account.Account, bool, error) {
	a, err := r.svc.accounts.GetByMemberID(ctx, memberID)
	switch {
	case err == nil:
		return a, true, nil
	case errors.Is(err, account.ErrNotFound):
		return account.Account{}, false, nil
	default:
		return account.Account{}, false, errors.Wrap(err, "get account")
	}
}

// ensurePending creates the placeholder account of a member that has none.
func (r *importRun) ensurePending(ctx context.Context, memberID string) (transfer.Outcome, error) {
	_, found, err := r.findAccount(ctx, memberID)
	if err != nil {
		return "", err
	}
	if found {
		return transfer.OutcomeUnchanged, nil
	}
	if _, err := r.svc.accounts.Create(ctx, account.Pending(memberID)); err != nil {
		return "", errors.Wrap(err, "insert pending account")
	}
	r.result.Accounts++
	return transfer.OutcomeInserted, nil
}

// applyAccount creates the member's account or claims an unclaimed one.
// An account whose secret is already set is never touched.
func (r *importRun) applyAccount(
	ctx context.Context,
	rec columns.Record,
	m member.Member,
	existing account.Account,
	found bool,
) (transfer.Outcome, error) {
	if found && existing.HasSecret() {
		return transfer.OutcomeAlreadyClaimed, nil
	}

	secret, err := r.resolveSecret(rec, m)
	if err != nil {
		return "", err
	}

	if !found {
		a := account.Account{
			Username:             rec.Value(columns.Username),
			PasswordHash:         secret,
			Role:                 parseRole(rec.Value(columns.Role), account.RoleUser),
			MemberID:             m.MemberID,
			Email:                rec.Value(columns.Email),
			Approved:             parseFlag(rec, columns.Approved, secret != ""),
			NotificationsEnabled: parseFlag(rec, columns.NotificationsEnabled, true),
		}
		if _, err := r.svc.accounts.Create(ctx, a); err != nil {
			return "", errors.Wrap(err, "insert account")
		}
		r.result.Accounts++
		return transfer.OutcomeInserted, nil
	}

	if secret == "" {
		return transfer.OutcomeUnchanged, nil
	}

	claimed := existing
	claimed.PasswordHash = secret
	claimed.Username = rec.Value(columns.Username)
	claimed.Role = parseRole(rec.Value(columns.Role), existing.Role)
	if email := rec.Value(columns.Email); email != "" {
		claimed.Email = email
	}
	claimed.Approved = parseFlag(rec, columns.Approved, true)
	claimed.NotificationsEnabled = parseFlag(rec, columns.NotificationsEnabled, existing.NotificationsEnabled)
	if _, err := r.svc.accounts.Update(ctx, claimed); err != nil {
		return "", errors.Wrap(err, "claim account")
	}
	r.result.Accounts++
	return transfer.OutcomeClaimed, nil
}

// resolveSecret prefers a ready hash, then a plain password. Hashing the
// id card is the last resort and only when both switches allow it.
func (r *importRun) resolveSecret(rec columns.Record, m member.Member) (string, error) {
	if hash := rec.Value(columns.PasswordHash); hash != "" {
		return hash, nil
	}
	if raw := rec.Value(columns.Password); raw != "" {
		hash, err := r.svc.hasher.Hash(raw)
		if err != nil {
			return "", errors.Wrap(err, "hash password")
		}
		return hash, nil
	}
	if !r.derive {
		return "", nil
	}
	idCard := rec.Value(columns.IDCard)
	if idCard == "" {
		idCard = m.IDCard
	}
	if idCard == "" {
		return "", nil
	}
	hash, err := r.svc.hasher.Hash(idCard)
	if err != nil {
		return "", errors.Wrap(err, "hash id card")
	}
	if !r.warned {
		r.logger.Warn("deriving account passwords from id card numbers")
		r.warned = true
	}
	r.result.Derived++
	return hash, nil
}

func parseRole(raw, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case account.RoleAdmin:
		return account.RoleAdmin
	case account.RoleUser:
		return account.RoleUser
	}
	if fallback == "" {
		return account.RoleUser
	}
	return fallback
}

// parseFlag reads a yes/no cell. Missing or unrecognised values give fallback.
func parseFlag(rec columns.Record, f columns.Field, fallback bool) bool {
	raw := strings.ToLower(rec.Value(f))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "yes", "y", "ใช่", "อนุมัติ", "เปิด":
		return true
	case "no", "n", "ไม่", "ไม่ใช่", "ไม่อนุมัติ", "ปิด":
		return false
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return fallback
}
