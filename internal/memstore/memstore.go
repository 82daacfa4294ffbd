// Package memstore keeps members, accounts and documents in memory with the same
// conflict rules as the PostgreSQL schema. Tests use it in place of pgx.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/document/domain/entities/document"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
)

// FailFunc lets a test inject a write failure; op is e.g. "member.create".
type FailFunc func(op, key string) error

type Store struct {
	mu       sync.Mutex
	members  map[string]member.Member
	accounts map[int64]account.Account
	nextID   int64

	documents  map[int64]document.Document
	recipients map[int64]map[int64]time.Time
	nextDocID  int64

	Fail FailFunc
	// Commits counts transactions that finished without error.
	Commits int
}

func New() *Store {
	return &Store{
		members:  map[string]member.Member{},
		accounts: map[int64]account.Account{},

		documents:  map[int64]document.Document{},
		recipients: map[int64]map[int64]time.Time{},
	}
}

// InTx snapshots the store and restores it when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	members := make(map[string]member.Member, len(s.members))
	for k, v := range s.members {
		members[k] = v
	}
	accounts := make(map[int64]account.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}
	nextID := s.nextID
	docs, recipients, nextDocID := s.snapshotDocuments()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.members, s.accounts, s.nextID = members, accounts, nextID
		s.documents, s.recipients, s.nextDocID = docs, recipients, nextDocID
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.Commits++
	s.mu.Unlock()
	return nil
}

func (s *Store) fail(op, key string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail(op, key)
}

// Members returns a copy of every stored member ordered by member id.
func (s *Store) Members() []member.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]member.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out
}

// Accounts returns a copy of every stored account ordered by id.
func (s *Store) Accounts() []account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) PutMember(m member.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.MemberID] = m
}

func (s *Store) PutAccount(a account.Account) account.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = a
	return a
}

func (s *Store) MemberRepository() member.Repository {
	return &memberRepo{s: s}
}

func (s *Store) AccountRepository() account.Repository {
	return &accountRepo{s: s}
}

func (s *Store) StatsRepository() member.StatsRepository {
	return &memberRepo{s: s}
}

type memberRepo struct {
	s *Store
}

func (r *memberRepo) GetPaginated(ctx context.Context, params *member.FindParams) ([]member.Member, int64, error) {
	if params == nil {
		params = &member.FindParams{}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []member.Member
	for _, m := range r.s.members {
		if q := strings.TrimSpace(params.Q); q != "" &&
			!strings.Contains(m.FullName, q) && !strings.Contains(m.MemberID, q) {
			continue
		}
		if params.District != "" && m.District != params.District {
			continue
		}
		if params.Generation != "" && m.GraduationYear != params.Generation {
			continue
		}
		if params.Type != "" && m.Type != params.Type {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].MemberID < out[j].MemberID
	})
	total := int64(len(out))
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			out = nil
		} else {
			out = out[params.Offset:]
		}
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, total, nil
}

func (r *memberRepo) GetByID(ctx context.Context, memberID string) (member.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[strings.TrimSpace(memberID)]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	return m, nil
}

func (r *memberRepo) Create(ctx context.Context, m member.Member) (member.Member, error) {
	if err := r.s.fail("member.create", m.MemberID); err != nil {
		return member.Member{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[m.MemberID]; ok {
		return member.Member{}, member.ErrIDTaken
	}
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.s.members[m.MemberID] = m
	return m, nil
}

func (r *memberRepo) Update(ctx context.Context, m member.Member) (member.Member, error) {
	if err := r.s.fail("member.update", m.MemberID); err != nil {
		return member.Member{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[m.MemberID]; !ok {
		return member.Member{}, member.ErrNotFound
	}
	m.UpdatedAt = time.Now()
	r.s.members[m.MemberID] = m
	return m, nil
}

func (r *memberRepo) Delete(ctx context.Context, memberID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.MemberID == memberID {
			return member.ErrHasAccount
		}
	}
	if _, ok := r.s.members[memberID]; !ok {
		return member.ErrNotFound
	}
	delete(r.s.members, memberID)
	return nil
}

func (r *memberRepo) ListWithoutAccount(ctx context.Context) ([]member.Member, error) {
	r.s.mu.Lock()
	linked := map[string]bool{}
	for _, a := range r.s.accounts {
		linked[a.MemberID] = true
	}
	r.s.mu.Unlock()

	all, _, err := r.GetPaginated(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]member.Member, 0, len(all))
	for _, m := range all {
		if !linked[m.MemberID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memberRepo) CountBy(ctx context.Context, f member.Field) ([]member.GroupCount, error) {
	if !member.Groupable(f) {
		return nil, member.ErrUngroupable
	}
	r.s.mu.Lock()
	counts := map[string]int64{}
	for _, m := range r.s.members {
		counts[m.Get(f)]++
	}
	r.s.mu.Unlock()

	out := make([]member.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, member.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type accountRepo struct {
	s *Store
}

func (r *accountRepo) GetPaginated(ctx context.Context, params *account.FindParams) ([]account.Account, int64, error) {
	if params == nil {
		params = &account.FindParams{}
	}
	all := r.s.Accounts()
	out := make([]account.Account, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		a := all[i]
		if params.Role != "" && a.Role != params.Role {
			continue
		}
		if q := strings.TrimSpace(params.Q); q != "" && !strings.Contains(a.Username, q) {
			continue
		}
		out = append(out, r.withName(a))
	}
	total := int64(len(out))
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, total, nil
}

func (r *accountRepo) withName(a account.Account) account.Account {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.members[a.MemberID]; ok {
		a.MemberFullName = m.FullName
	}
	return a
}

func (r *accountRepo) find(match func(account.Account) bool) (account.Account, error) {
	r.s.mu.Lock()
	var found *account.Account
	for _, a := range r.s.accounts {
		if match(a) {
			found = &a
			break
		}
	}
	r.s.mu.Unlock()
	if found == nil {
		return account.Account{}, account.ErrNotFound
	}
	return r.withName(*found), nil
}

func (r *accountRepo) GetByID(ctx context.Context, id int64) (account.Account, error) {
	return r.find(func(a account.Account) bool { return a.ID == id })
}

func (r *accountRepo) GetByMemberID(ctx context.Context, memberID string) (account.Account, error) {
	memberID = strings.TrimSpace(memberID)
	return r.find(func(a account.Account) bool { return memberID != "" && a.MemberID == memberID })
}

func (r *accountRepo) GetByUsername(ctx context.Context, username string) (account.Account, error) {
	username = strings.TrimSpace(username)
	return r.find(func(a account.Account) bool { return username != "" && a.Username == username })
}

// check enforces the unique and foreign key constraints of the users table.
func (r *accountRepo) check(a account.Account) error {
	if a.MemberID != "" {
		if _, ok := r.s.members[a.MemberID]; !ok {
			return account.ErrMemberMissing
		}
	}
	for _, other := range r.s.accounts {
		if other.ID == a.ID {
			continue
		}
		if a.Username != "" && other.Username == a.Username {
			return account.ErrUsernameTaken
		}
		if a.MemberID != "" && other.MemberID == a.MemberID {
			return account.ErrMemberTaken
		}
	}
	return nil
}

func (r *accountRepo) Create(ctx context.Context, a account.Account) (account.Account, error) {
	if err := r.s.fail("account.create", a.MemberID); err != nil {
		return account.Account{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = 0
	if err := r.check(a); err != nil {
		return account.Account{}, err
	}
	if a.Role == "" {
		a.Role = account.RoleUser
	}
	r.s.nextID++
	a.ID = r.s.nextID
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.accounts[a.ID] = a
	return a, nil
}

func (r *accountRepo) Update(ctx context.Context, a account.Account) (account.Account, error) {
	if err := r.s.fail("account.update", a.MemberID); err != nil {
		return account.Account{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.accounts[a.ID]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	if err := r.check(a); err != nil {
		return account.Account{}, err
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now()
	r.s.accounts[a.ID] = a
	return a, nil
}

func (r *accountRepo) SetApproved(ctx context.Context, id int64, approved bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	a.Approved = approved
	r.s.accounts[id] = a
	return nil
}

func (r *accountRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return account.ErrNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

func (r *accountRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.accounts)), nil
}
