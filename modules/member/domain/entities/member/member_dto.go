package member

import (
	"strings"

	"github.com/sanjaithai/backoffice/pkg/constants"
	"github.com/sanjaithai/backoffice/pkg/serrors"
)

// ProfileDTO is the JSON shape of the editable member attributes.
type ProfileDTO struct {
	Prefix            string `json:"prefix"`
	FullName          string `json:"full_name" validate:"required"`
	Nickname          string `json:"nickname"`
	IDCard            string `json:"id_card" validate:"max=32"`
	Birthday          string `json:"birthday"`
	Age               string `json:"age"`
	Gender            string `json:"gender"`
	Religion          string `json:"religion"`
	MedicalConditions string `json:"medical_conditions"`
	AllergyHistory    string `json:"allergy_history"`
	Address           string `json:"address"`
	Phone             string `json:"phone" validate:"max=32"`
	Facebook          string `json:"facebook"`
	Instagram         string `json:"instagram"`
	LineID            string `json:"line_id"`
	School            string `json:"school"`
	GraduationYear    string `json:"graduation_year"`
	GPA               string `json:"gpa"`
	Type              string `json:"type"`
	District          string `json:"district"`
	Status            string `json:"status"`
	Department        string `json:"department"`
}

type CreateDTO struct {
	MemberID string `json:"member_id" validate:"required,max=64"`
	ProfileDTO
}

type UpdateDTO struct {
	ProfileDTO
}

func (d *ProfileDTO) Values() Values {
	return Values{
		FieldPrefix:            d.Prefix,
		FieldFullName:          d.FullName,
		FieldNickname:          d.Nickname,
		FieldIDCard:            d.IDCard,
		FieldBirthday:          d.Birthday,
		FieldAge:               d.Age,
		FieldGender:            d.Gender,
		FieldReligion:          d.Religion,
		FieldMedicalConditions: d.MedicalConditions,
		FieldAllergyHistory:    d.AllergyHistory,
		FieldAddress:           d.Address,
		FieldPhone:             d.Phone,
		FieldFacebook:          d.Facebook,
		FieldInstagram:         d.Instagram,
		FieldLineID:            d.LineID,
		FieldSchool:            d.School,
		FieldGraduationYear:    d.GraduationYear,
		FieldGPA:               d.GPA,
		FieldType:              d.Type,
		FieldDistrict:          d.District,
		FieldStatus:            d.Status,
		FieldDepartment:        d.Department,
	}
}

func (d *ProfileDTO) Normalize() {
	d.FullName = strings.TrimSpace(d.FullName)
	d.IDCard = strings.TrimSpace(d.IDCard)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Birthday = strings.TrimSpace(d.Birthday)
}

func (d *CreateDTO) Normalize() {
	d.MemberID = strings.TrimSpace(d.MemberID)
	d.ProfileDTO.Normalize()
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	return validate(d, d.Birthday)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	return validate(d, d.Birthday)
}

func validate(dto any, birthday string) (serrors.ValidationErrors, bool) {
	errs := serrors.ProcessValidatorErrors(constants.Validate.Struct(dto))
	if birthday != "" {
		if _, ok := ParseBirthday(birthday); !ok {
			errs[string(FieldBirthday)] = "birthday is not a valid date"
		}
	}
	return errs, len(errs) == 0
}

// Apply overwrites every profile attribute of m with the DTO values.
func (d *UpdateDTO) Apply(m *Member) error {
	for f, v := range d.Values() {
		if err := m.Set(f, v); err != nil {
			return err
		}
	}
	return nil
}

// SelfUpdateDTO is what a member may change on their own record. Nil
// fields are left untouched; roster classification stays admin-only.
type SelfUpdateDTO struct {
	Prefix            *string `json:"prefix"`
	Nickname          *string `json:"nickname"`
	Birthday          *string `json:"birthday"`
	Gender            *string `json:"gender"`
	Religion          *string `json:"religion"`
	MedicalConditions *string `json:"medical_conditions"`
	AllergyHistory    *string `json:"allergy_history"`
	Address           *string `json:"address"`
	Phone             *string `json:"phone" validate:"omitempty,max=32"`
	Facebook          *string `json:"facebook"`
	Instagram         *string `json:"instagram"`
	LineID            *string `json:"line_id"`
	School            *string `json:"school"`
}

// Changes returns the provided fields only.
func (d *SelfUpdateDTO) Changes() Values {
	out := Values{}
	set := func(f Field, p *string) {
		if p != nil {
			out[f] = strings.TrimSpace(*p)
		}
	}
	set(FieldPrefix, d.Prefix)
	set(FieldNickname, d.Nickname)
	set(FieldBirthday, d.Birthday)
	set(FieldGender, d.Gender)
	set(FieldReligion, d.Religion)
	set(FieldMedicalConditions, d.MedicalConditions)
	set(FieldAllergyHistory, d.AllergyHistory)
	set(FieldAddress, d.Address)
	set(FieldPhone, d.Phone)
	set(FieldFacebook, d.Facebook)
	set(FieldInstagram, d.Instagram)
	set(FieldLineID, d.LineID)
	set(FieldSchool, d.School)
	return out
}

func (d *SelfUpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	birthday := ""
	if d.Birthday != nil {
		birthday = strings.TrimSpace(*d.Birthday)
	}
	return validate(d, birthday)
}

func (d *SelfUpdateDTO) Apply(m *Member) error {
	changes := d.Changes()
	if len(changes) == 0 {
		return ErrNoChanges
	}
	for f, v := range changes {
		if err := m.Set(f, v); err != nil {
			return err
		}
	}
	return nil
}
