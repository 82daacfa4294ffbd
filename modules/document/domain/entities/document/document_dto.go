package document

import (
	"strings"

	"github.com/sanjaithai/backoffice/pkg/constants"
	"github.com/sanjaithai/backoffice/pkg/serrors"
)

type UploadDTO struct {
	Title       string  `json:"title" validate:"required,max=255"`
	MemberID    string  `json:"memberId" validate:"required,max=64"`
	Description string  `json:"description" validate:"max=2000"`
	UserIDs     []int64 `json:"userIds" validate:"dive,gt=0"`
}

func (d *UploadDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Title = strings.TrimSpace(d.Title)
	d.MemberID = strings.TrimSpace(d.MemberID)
	d.Description = strings.TrimSpace(d.Description)
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(d))
	return errs, len(errs) == 0
}
