package models

import "time"

// LinkedUser is the optional users side of members LEFT JOIN users.
type LinkedUser struct {
	ID                   *int64
	Username             *string
	PasswordHash         *string
	Role                 *string
	Email                *string
	Approved             *bool
	NotificationsEnabled *bool
	CreatedAt            *time.Time
	UpdatedAt            *time.Time
}
