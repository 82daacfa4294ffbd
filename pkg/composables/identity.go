package composables

import (
	"context"
	"strings"

	"github.com/sanjaithai/backoffice/pkg/constants"
)

const (
	SystemActor = "system"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the already-authenticated caller of an operation.
type Identity struct {
	UserID   int64
	Username string
	Role     string
	MemberID string
}

// Label is the performing-identity text recorded in audit rows.
func (i Identity) Label() string {
	if v := strings.TrimSpace(i.Username); v != "" {
		return v
	}
	return SystemActor
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, constants.IdentityKey, identity)
}

func UseIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(constants.IdentityKey).(Identity)
	return identity, ok
}

// UseActor returns the label of the caller, or SystemActor when none is set.
func UseActor(ctx context.Context) string {
	identity, ok := UseIdentity(ctx)
	if !ok {
		return SystemActor
	}
	return identity.Label()
}
