package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/repo"
	"github.com/sanjaithai/backoffice/pkg/secrets"
)

type AccountService struct {
	repo    account.Repository
	members member.Repository
	hasher  secrets.Hasher
	tx      repo.Transactor
}

func NewAccountService(
	repository account.Repository,
	members member.Repository,
	hasher secrets.Hasher,
	tx repo.Transactor,
) *AccountService {
	return &AccountService{
		repo:    repository,
		members: members,
		hasher:  hasher,
		tx:      tx,
	}
}

func (s *AccountService) GetPaginated(ctx context.Context, params *account.FindParams) ([]account.Account, int64, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (account.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an unapproved account for an existing member.
func (s *AccountService) Create(ctx context.Context, dto *account.CreateDTO) (account.Account, error) {
	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return account.Account{}, err
	}

	var created account.Account
	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		m, err := s.members.GetByID(txCtx, dto.MemberID)
		if errors.Is(err, member.ErrNotFound) {
			return account.ErrMemberMissing
		}
		if err != nil {
			return err
		}
		if err := s.ensureUsernameFree(txCtx, dto.Username, 0); err != nil {
			return err
		}
		if _, err := s.repo.GetByMemberID(txCtx, dto.MemberID); err == nil {
			return account.ErrMemberTaken
		} else if !errors.Is(err, account.ErrNotFound) {
			return err
		}

		created, err = s.repo.Create(txCtx, account.Account{
			Username:             dto.Username,
			PasswordHash:         hash,
			Role:                 dto.Role,
			MemberID:             dto.MemberID,
			Email:                dto.Email,
			NotificationsEnabled: true,
			MemberFullName:       m.FullName,
		})
		return err
	})
	if err != nil {
		return account.Account{}, err
	}
	composables.UseLogger(ctx).WithField("user_id", created.ID).Info("user account created")
	return created, nil
}

// Update applies the non-nil fields of dto. Empty username, password and
// role values are ignored.
func (s *AccountService) Update(ctx context.Context, id int64, dto *account.UpdateDTO) (account.Account, error) {
	if dto.Empty() {
		return account.Account{}, account.ErrNothingToUpdate
	}

	var hash string
	if dto.Password != nil && *dto.Password != "" {
		h, err := s.hasher.Hash(*dto.Password)
		if err != nil {
			return account.Account{}, err
		}
		hash = h
	}

	var updated account.Account
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if dto.Username != nil && *dto.Username != "" && *dto.Username != a.Username {
			if err := s.ensureUsernameFree(txCtx, *dto.Username, id); err != nil {
				return err
			}
			a.Username = *dto.Username
		}
		if hash != "" {
			a.PasswordHash = hash
		}
		if dto.Role != nil && *dto.Role != "" {
			a.Role = *dto.Role
		}
		if dto.MemberID != nil && *dto.MemberID != a.MemberID {
			if *dto.MemberID != "" {
				if _, err := s.members.GetByID(txCtx, *dto.MemberID); err != nil {
					if errors.Is(err, member.ErrNotFound) {
						return account.ErrMemberMissing
					}
					return err
				}
			}
			a.MemberID = *dto.MemberID
		}
		if dto.Email != nil {
			a.Email = *dto.Email
		}
		if dto.Approved != nil {
			a.Approved = *dto.Approved
		}
		updated, err = s.repo.Update(txCtx, a)
		return err
	})
	if err != nil {
		return account.Account{}, err
	}
	return updated, nil
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *AccountService) Approve(ctx context.Context, id int64) error {
	return s.repo.SetApproved(ctx, id, true)
}

func (s *AccountService) Reject(ctx context.Context, id int64) error {
	return s.repo.SetApproved(ctx, id, false)
}

// AvailableMembers lists members an account can still be linked to.
func (s *AccountService) AvailableMembers(ctx context.Context) ([]member.Member, error) {
	return s.members.ListWithoutAccount(ctx)
}

// ChangePassword replaces the secret of an account after checking the
// current one. Unclaimed accounts have no current secret and are refused.
func (s *AccountService) ChangePassword(ctx context.Context, id int64, dto *account.PasswordChangeDTO) error {
	hash, err := s.hasher.Hash(dto.NewPassword)
	if err != nil {
		return err
	}
	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !a.HasSecret() || !s.hasher.Compare(a.PasswordHash, dto.CurrentPassword) {
			return account.ErrWrongPassword
		}
		a.PasswordHash = hash
		_, err = s.repo.Update(txCtx, a)
		return err
	})
	if err != nil {
		return err
	}
	composables.UseLogger(ctx).WithField("user_id", id).Info("password changed")
	return nil
}

func (s *AccountService) ChangeEmail(ctx context.Context, id int64, email string) (account.Account, error) {
	return s.modify(ctx, id, func(a *account.Account) { a.Email = email })
}

func (s *AccountService) SetNotifications(ctx context.Context, id int64, enabled bool) (account.Account, error) {
	return s.modify(ctx, id, func(a *account.Account) { a.NotificationsEnabled = enabled })
}

func (s *AccountService) modify(ctx context.Context, id int64, change func(*account.Account)) (account.Account, error) {
	var updated account.Account
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		change(&a)
		updated, err = s.repo.Update(txCtx, a)
		return err
	})
	if err != nil {
		return account.Account{}, err
	}
	return updated, nil
}

func (s *AccountService) ensureUsernameFree(ctx context.Context, username string, self int64) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, account.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return account.ErrUsernameTaken
	}
	return nil
}
