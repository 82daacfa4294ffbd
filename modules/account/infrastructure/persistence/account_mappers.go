package persistence

import (
	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/account/infrastructure/persistence/models"
)

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDBUser(a account.Account) models.User {
	return models.User{
		ID:                   a.ID,
		Username:             nullable(a.Username),
		PasswordHash:         a.PasswordHash,
		Role:                 a.Role,
		MemberID:             nullable(a.MemberID),
		Email:                nullable(a.Email),
		Approved:             a.Approved,
		NotificationsEnabled: a.NotificationsEnabled,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func toDomainAccount(row *models.User) account.Account {
	return account.Account{
		ID:                   row.ID,
		Username:             deref(row.Username),
		PasswordHash:         row.PasswordHash,
		Role:                 row.Role,
		MemberID:             deref(row.MemberID),
		Email:                deref(row.Email),
		Approved:             row.Approved,
		NotificationsEnabled: row.NotificationsEnabled,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
		MemberFullName:       deref(row.MemberFullName),
	}
}
