package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/repo"
)

type MemberService struct {
	repo member.Repository
	tx   repo.Transactor
}

func NewMemberService(repository member.Repository, tx repo.Transactor) *MemberService {
	return &MemberService{
		repo: repository,
		tx:   tx,
	}
}

func (s *MemberService) GetPaginated(ctx context.Context, params *member.FindParams) ([]member.Member, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *MemberService) GetByID(ctx context.Context, memberID string) (member.Member, error) {
	return s.repo.GetByID(ctx, memberID)
}

func (s *MemberService) Create(ctx context.Context, dto *member.CreateDTO) (member.Member, error) {
	m, err := member.New(dto.MemberID, dto.Values())
	if err != nil {
		return member.Member{}, err
	}
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return member.Member{}, err
	}
	composables.UseLogger(ctx).WithField("member_id", created.MemberID).Info("member created")
	return created, nil
}

func (s *MemberService) Update(ctx context.Context, memberID string, dto *member.UpdateDTO) (member.Member, error) {
	var updated member.Member
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, memberID)
		if err != nil {
			return err
		}
		if err := dto.Apply(&existing); err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return member.Member{}, err
	}
	return updated, nil
}

// UpdateSelf applies a member's own edits to their record.
func (s *MemberService) UpdateSelf(ctx context.Context, memberID string, dto *member.SelfUpdateDTO) (member.Member, error) {
	var updated member.Member
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, memberID)
		if err != nil {
			return err
		}
		if err := dto.Apply(&existing); err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, existing)
		return err
	})
	if err != nil {
		return member.Member{}, err
	}
	composables.UseLogger(ctx).WithField("member_id", updated.MemberID).Info("member updated own record")
	return updated, nil
}

// Delete removes a member. Members still referenced by an account are kept.
func (s *MemberService) Delete(ctx context.Context, memberID string) error {
	if err := s.repo.Delete(ctx, memberID); err != nil {
		if errors.Is(err, member.ErrHasAccount) {
			composables.UseLogger(ctx).WithField("member_id", memberID).Warn("refusing to delete member with account")
		}
		return err
	}
	return nil
}

// ListWithoutAccount returns members that no account links to yet.
func (s *MemberService) ListWithoutAccount(ctx context.Context) ([]member.Member, error) {
	return s.repo.ListWithoutAccount(ctx)
}
