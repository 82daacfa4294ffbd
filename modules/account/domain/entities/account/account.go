package account

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/sanjaithai/backoffice/pkg/composables"
)

var (
	ErrNotFound        = errors.New("user account not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrMemberTaken     = errors.New("member already has an account")
	ErrMemberMissing   = errors.New("member id does not exist")
	ErrNothingToUpdate = errors.New("no fields to update")
	ErrWrongPassword   = errors.New("current password is incorrect")
)

const (
	RoleAdmin = composables.RoleAdmin
	RoleUser  = composables.RoleUser
)

// Account is a login linked to at most one member. An empty PasswordHash
// means the secret is unset and the account can still be claimed.
type Account struct {
	ID                   int64
	Username             string
	PasswordHash         string
	Role                 string
	MemberID             string
	Email                string
	Approved             bool
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Read-only, filled by list queries.
	MemberFullName string
}

func (a Account) HasSecret() bool {
	return a.PasswordHash != ""
}

// Pending is the placeholder account created for a member that has none.
func Pending(memberID string) Account {
	return Account{
		Role:                 RoleUser,
		MemberID:             memberID,
		NotificationsEnabled: true,
	}
}

type FindParams struct {
	Q      string
	Role   string
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Account, int64, error)
	GetByID(ctx context.Context, id int64) (Account, error)
	GetByMemberID(ctx context.Context, memberID string) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	Create(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) (Account, error)
	SetApproved(ctx context.Context, id int64, approved bool) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
