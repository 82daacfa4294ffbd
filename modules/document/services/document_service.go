package services

import (
	"context"
	"io"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanjaithai/backoffice/modules/document/domain/entities/document"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/repo"
)

type DocumentService struct {
	repo    document.Repository
	members member.Repository
	storage document.Storage
	tx      repo.Transactor
}

func NewDocumentService(repository document.Repository, members member.Repository, storage document.Storage, tx repo.Transactor) *DocumentService {
	return &DocumentService{
		repo:    repository,
		members: members,
		storage: storage,
		tx:      tx,
	}
}

// Upload is a stored document and the number of accounts it reached.
type Upload struct {
	Document   document.Document
	SenderName string
	Recipients int64
}

func (s *DocumentService) List(ctx context.Context) ([]document.Document, error) {
	return s.repo.List(ctx)
}

func (s *DocumentService) ListForUser(ctx context.Context, userID int64) ([]document.Document, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Send stores the file and records the document with its recipients in one
// transaction. Without explicit recipients every account with the user role
// receives it. The stored file is removed again when the transaction fails.
func (s *DocumentService) Send(ctx context.Context, dto *document.UploadDTO, filename string, content io.Reader) (Upload, error) {
	sender, err := s.members.GetByID(ctx, dto.MemberID)
	if errors.Is(err, member.ErrNotFound) {
		return Upload{}, document.ErrMemberNotFound
	}
	if err != nil {
		return Upload{}, err
	}

	stored, err := s.storage.Save(ctx, filename, content)
	if err != nil {
		return Upload{}, err
	}

	var out Upload
	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		created, err := s.repo.Create(txCtx, document.Document{
			Title:       dto.Title,
			FilePath:    stored,
			FileName:    filepath.Base(filename),
			MemberID:    sender.MemberID,
			Description: dto.Description,
		})
		if err != nil {
			return err
		}
		recipients := dto.UserIDs
		if len(recipients) == 0 {
			if recipients, err = s.repo.UserAccountIDs(txCtx); err != nil {
				return err
			}
		}
		var sent int64
		if len(recipients) > 0 {
			if sent, err = s.repo.AddRecipients(txCtx, created.ID, recipients); err != nil {
				return err
			}
		}
		out = Upload{Document: created, SenderName: sender.FullName, Recipients: sent}
		return nil
	})
	if err != nil {
		if rmErr := s.storage.Remove(stored); rmErr != nil {
			composables.UseLogger(ctx).WithError(rmErr).Warn("failed to remove orphaned document file")
		}
		return Upload{}, err
	}
	composables.UseLogger(ctx).WithFields(logrus.Fields{
		"document_id": out.Document.ID,
		"member_id":   sender.MemberID,
		"recipients":  out.Recipients,
	}).Info("document sent")
	return out, nil
}

// Delete removes the document and its recipient links, then the stored
// file once the rows are gone.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	var stored string
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		d, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		stored = d.FilePath
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	if err := s.storage.Remove(stored); err != nil {
		composables.UseLogger(ctx).WithError(err).WithField("document_id", id).Warn("failed to remove document file")
	}
	composables.UseLogger(ctx).WithField("document_id", id).Info("document deleted")
	return nil
}

// Open returns the document and its content. The caller closes the file.
func (s *DocumentService) Open(ctx context.Context, id int64) (document.Document, document.File, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return document.Document{}, nil, err
	}
	return s.open(d)
}

// OpenForUser only returns documents that were sent to userID.
func (s *DocumentService) OpenForUser(ctx context.Context, id, userID int64) (document.Document, document.File, error) {
	d, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return document.Document{}, nil, err
	}
	return s.open(d)
}

func (s *DocumentService) open(d document.Document) (document.Document, document.File, error) {
	f, err := s.storage.Open(d.FilePath)
	if err != nil {
		return document.Document{}, nil, err
	}
	return d, f, nil
}
