package persistence

import (
	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/transfer/infrastructure/persistence/models"
)

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// toDomainAccount returns nil when the member has no account.
func toDomainAccount(memberID string, row *models.LinkedUser) *account.Account {
	if row.ID == nil {
		return nil
	}
	return &account.Account{
		ID:                   *row.ID,
		Username:             deref(row.Username),
		PasswordHash:         deref(row.PasswordHash),
		Role:                 deref(row.Role),
		MemberID:             memberID,
		Email:                deref(row.Email),
		Approved:             deref(row.Approved),
		NotificationsEnabled: deref(row.NotificationsEnabled),
		CreatedAt:            deref(row.CreatedAt),
		UpdatedAt:            deref(row.UpdatedAt),
	}
}
