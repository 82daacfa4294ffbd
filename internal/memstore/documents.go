package memstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/document/domain/entities/document"
)

// snapshotDocuments copies the document tables; the caller holds s.mu.
func (s *Store) snapshotDocuments() (map[int64]document.Document, map[int64]map[int64]time.Time, int64) {
	docs := make(map[int64]document.Document, len(s.documents))
	for k, v := range s.documents {
		docs[k] = v
	}
	recipients := make(map[int64]map[int64]time.Time, len(s.recipients))
	for k, v := range s.recipients {
		set := make(map[int64]time.Time, len(v))
		for u, at := range v {
			set[u] = at
		}
		recipients[k] = set
	}
	return docs, recipients, s.nextDocID
}

func (s *Store) DocumentRepository() document.Repository {
	return &documentRepo{s: s}
}

// Documents returns every stored document ordered by id.
func (s *Store) Documents() []document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]document.Document, 0, len(s.documents))
	for _, d := range s.documents {
		out = append(out, s.decorate(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Recipients returns the account ids a document was sent to.
func (s *Store) Recipients(documentID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipientIDs(documentID)
}

func (s *Store) recipientIDs(documentID int64) []int64 {
	out := make([]int64, 0, len(s.recipients[documentID]))
	for id := range s.recipients[documentID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// decorate fills the joined display fields; the caller holds s.mu.
func (s *Store) decorate(d document.Document) document.Document {
	d.SenderName = "-"
	if m, ok := s.members[d.MemberID]; ok {
		d.SenderName = m.FullName
	}
	names := make([]string, 0)
	for _, id := range s.recipientIDs(d.ID) {
		a := s.accounts[id]
		switch {
		case a.MemberID != "" && s.members[a.MemberID].FullName != "":
			names = append(names, s.members[a.MemberID].FullName)
		case a.Username != "":
			names = append(names, a.Username)
		default:
			names = append(names, strconv.FormatInt(id, 10))
		}
	}
	d.Recipients = "-"
	if len(names) > 0 {
		d.Recipients = strings.Join(names, ", ")
	}
	return d
}

type documentRepo struct {
	s *Store
}

func (r *documentRepo) list(match func(document.Document) bool) []document.Document {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]document.Document, 0)
	for _, d := range r.s.documents {
		if match(d) {
			out = append(out, r.s.decorate(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *documentRepo) List(ctx context.Context) ([]document.Document, error) {
	return r.list(func(document.Document) bool { return true }), nil
}

func (r *documentRepo) GetByID(ctx context.Context, id int64) (document.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[id]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	return r.s.decorate(d), nil
}

func (r *documentRepo) Create(ctx context.Context, d document.Document) (document.Document, error) {
	if err := r.s.fail("document.create", d.MemberID); err != nil {
		return document.Document{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.members[d.MemberID]; !ok {
		return document.Document{}, document.ErrMemberNotFound
	}
	r.s.nextDocID++
	d.ID = r.s.nextDocID
	d.UploadedAt = time.Now()
	r.s.documents[d.ID] = d
	return d, nil
}

func (r *documentRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.recipients, id)
	if _, ok := r.s.documents[id]; !ok {
		return document.ErrNotFound
	}
	delete(r.s.documents, id)
	return nil
}

func (r *documentRepo) AddRecipients(ctx context.Context, documentID int64, userIDs []int64) (int64, error) {
	if err := r.s.fail("document.recipients", strconv.FormatInt(documentID, 10)); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.documents[documentID]; !ok {
		return 0, document.ErrNotFound
	}
	for _, id := range userIDs {
		if _, ok := r.s.accounts[id]; !ok {
			return 0, document.ErrRecipientNotFound
		}
	}
	set := r.s.recipients[documentID]
	if set == nil {
		set = map[int64]time.Time{}
		r.s.recipients[documentID] = set
	}
	var added int64
	now := time.Now()
	for _, id := range userIDs {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = now
		added++
	}
	return added, nil
}

func (r *documentRepo) UserAccountIDs(ctx context.Context) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]int64, 0)
	for id, a := range r.s.accounts {
		if a.Role == account.RoleUser {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *documentRepo) ListForUser(ctx context.Context, userID int64) ([]document.Document, error) {
	return r.list(func(d document.Document) bool {
		_, ok := r.s.recipients[d.ID][userID]
		return ok
	}), nil
}

func (r *documentRepo) GetForUser(ctx context.Context, documentID, userID int64) (document.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[documentID]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	if _, ok := r.s.recipients[documentID][userID]; !ok {
		return document.Document{}, document.ErrNotFound
	}
	return r.s.decorate(d), nil
}
