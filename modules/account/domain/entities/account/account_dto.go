package account

import (
	"strings"

	"github.com/sanjaithai/backoffice/pkg/constants"
	"github.com/sanjaithai/backoffice/pkg/serrors"
)

type CreateDTO struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
	MemberID string `json:"member_id" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Username = strings.TrimSpace(d.Username)
	d.MemberID = strings.TrimSpace(d.MemberID)
	d.Email = strings.TrimSpace(d.Email)
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(d))
	return errs, len(errs) == 0
}

// UpdateDTO is a partial update; nil fields are left untouched.
type UpdateDTO struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=64"`
	Password *string `json:"password"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
	MemberID *string `json:"member_id"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Approved *bool   `json:"approved"`
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(d.Username)
	trim(d.MemberID)
	trim(d.Email)
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(d))
	return errs, len(errs) == 0
}

func (d *UpdateDTO) Empty() bool {
	return d.Username == nil && (d.Password == nil || *d.Password == "") && d.Role == nil &&
		d.MemberID == nil && d.Email == nil && d.Approved == nil
}

type PasswordChangeDTO struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

func (d *PasswordChangeDTO) Ok() (serrors.ValidationErrors, bool) {
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(d))
	return errs, len(errs) == 0
}

type EmailChangeDTO struct {
	NewEmail string `json:"newEmail" validate:"required,email"`
}

func (d *EmailChangeDTO) Ok() (serrors.ValidationErrors, bool) {
	d.NewEmail = strings.TrimSpace(d.NewEmail)
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(d))
	return errs, len(errs) == 0
}

type NotificationsDTO struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (d *NotificationsDTO) Ok() (serrors.ValidationErrors, bool) {
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(d))
	return errs, len(errs) == 0
}
