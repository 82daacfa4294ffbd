package activity

import (
	"strings"
	"time"

	"github.com/sanjaithai/backoffice/pkg/constants"
	"github.com/sanjaithai/backoffice/pkg/serrors"
)

type SaveDTO struct {
	Name        string `json:"event_name" validate:"required,max=255"`
	Date        string `json:"event_date" validate:"required,datetime=2006-01-02"`
	Location    string `json:"location" validate:"max=255"`
	Points      int    `json:"points" validate:"gte=0"`
	Description string `json:"description"`
}

func (d *SaveDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Name = strings.TrimSpace(d.Name)
	d.Date = strings.TrimSpace(d.Date)
	d.Location = strings.TrimSpace(d.Location)
	d.Description = strings.TrimSpace(d.Description)
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(d))
	return errs, len(errs) == 0
}

// Apply copies the DTO onto a, which keeps its id and creation time.
func (d *SaveDTO) Apply(a *Activity) error {
	date, err := time.Parse(time.DateOnly, d.Date)
	if err != nil {
		return err
	}
	a.Name = d.Name
	a.Date = date
	a.Location = d.Location
	a.Points = d.Points
	a.Description = d.Description
	return nil
}
