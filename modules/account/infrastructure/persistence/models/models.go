package models

import "time"

type User struct {
	ID                   int64
	Username             *string
	PasswordHash         string
	Role                 string
	MemberID             *string
	Email                *string
	Approved             bool
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
	MemberFullName       *string
}
