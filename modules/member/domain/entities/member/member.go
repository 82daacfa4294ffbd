package member

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound      = errors.New("member not found")
	ErrIDTaken       = errors.New("member id already exists")
	ErrHasAccount    = errors.New("member is linked to a user account")
	ErrMissingID     = errors.New("member id is required")
	ErrInvalidField  = errors.New("unknown member field")
	ErrInvalidFormat = errors.New("invalid birthday")
	ErrNoChanges     = errors.New("no fields to update")
)

// Field is the canonical name of a member attribute. It doubles as the column name.
type Field string

const (
	FieldMemberID          Field = "member_id"
	FieldPrefix            Field = "prefix"
	FieldFullName          Field = "full_name"
	FieldNickname          Field = "nickname"
	FieldIDCard            Field = "id_card"
	FieldBirthday          Field = "birthday"
	FieldAge               Field = "age"
	FieldGender            Field = "gender"
	FieldReligion          Field = "religion"
	FieldMedicalConditions Field = "medical_conditions"
	FieldAllergyHistory    Field = "allergy_history"
	FieldAddress           Field = "address"
	FieldPhone             Field = "phone"
	FieldFacebook          Field = "facebook"
	FieldInstagram         Field = "instagram"
	FieldLineID            Field = "line_id"
	FieldSchool            Field = "school"
	FieldGraduationYear    Field = "graduation_year"
	FieldGPA               Field = "gpa"
	FieldType              Field = "type"
	FieldDistrict          Field = "district"
	FieldStatus            Field = "status"
	FieldDepartment        Field = "department"
)

// ProfileFields lists every mutable attribute in column order.
var ProfileFields = []Field{
	FieldPrefix, FieldFullName, FieldNickname, FieldIDCard, FieldBirthday,
	FieldAge, FieldGender, FieldReligion, FieldMedicalConditions, FieldAllergyHistory,
	FieldAddress, FieldPhone, FieldFacebook, FieldInstagram, FieldLineID,
	FieldSchool, FieldGraduationYear, FieldGPA, FieldType, FieldDistrict,
	FieldStatus, FieldDepartment,
}

// Member is a roster entry keyed by an externally assigned id.
type Member struct {
	MemberID          string
	Prefix            string
	FullName          string
	Nickname          string
	IDCard            string
	Birthday          *time.Time
	Age               string
	Gender            string
	Religion          string
	MedicalConditions string
	AllergyHistory    string
	Address           string
	Phone             string
	Facebook          string
	Instagram         string
	LineID            string
	School            string
	GraduationYear    string
	GPA               string
	Type              string
	District          string
	Status            string
	Department        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Values carries raw attribute text keyed by field. An absent key means
// "not provided", which is different from an empty value only for callers.
type Values map[Field]string

type FindParams struct {
	Q          string
	District   string
	Generation string
	Type       string
	Limit      int
	Offset     int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Member, int64, error)
	GetByID(ctx context.Context, memberID string) (Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, m Member) (Member, error)
	Delete(ctx context.Context, memberID string) error
	ListWithoutAccount(ctx context.Context) ([]Member, error)
}

func (m *Member) text(f Field) *string {
	switch f {
	case FieldMemberID:
		return &m.MemberID
	case FieldPrefix:
		return &m.Prefix
	case FieldFullName:
		return &m.FullName
	case FieldNickname:
		return &m.Nickname
	case FieldIDCard:
		return &m.IDCard
	case FieldAge:
		return &m.Age
	case FieldGender:
		return &m.Gender
	case FieldReligion:
		return &m.Religion
	case FieldMedicalConditions:
		return &m.MedicalConditions
	case FieldAllergyHistory:
		return &m.AllergyHistory
	case FieldAddress:
		return &m.Address
	case FieldPhone:
		return &m.Phone
	case FieldFacebook:
		return &m.Facebook
	case FieldInstagram:
		return &m.Instagram
	case FieldLineID:
		return &m.LineID
	case FieldSchool:
		return &m.School
	case FieldGraduationYear:
		return &m.GraduationYear
	case FieldGPA:
		return &m.GPA
	case FieldType:
		return &m.Type
	case FieldDistrict:
		return &m.District
	case FieldStatus:
		return &m.Status
	case FieldDepartment:
		return &m.Department
	}
	return nil
}

// Get returns the stored text of f; birthdays are rendered as YYYY-MM-DD.
func (m *Member) Get(f Field) string {
	if f == FieldBirthday {
		if m.Birthday == nil {
			return ""
		}
		return m.Birthday.Format(time.DateOnly)
	}
	if p := m.text(f); p != nil {
		return *p
	}
	return ""
}

// Set overwrites f with the trimmed value.
func (m *Member) Set(f Field, value string) error {
	value = strings.TrimSpace(value)
	if f == FieldBirthday {
		if value == "" {
			m.Birthday = nil
			return nil
		}
		t, ok := ParseBirthday(value)
		if !ok {
			return errors.Wrapf(ErrInvalidFormat, "%q", value)
		}
		m.Birthday = &t
		return nil
	}
	p := m.text(f)
	if p == nil {
		return errors.Wrapf(ErrInvalidField, "%q", f)
	}
	*p = value
	return nil
}

// New builds a member from values. Unparseable birthdays are left empty.
func New(memberID string, values Values) (Member, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return Member{}, ErrMissingID
	}
	m := Member{MemberID: memberID}
	for _, f := range ProfileFields {
		v, ok := values[f]
		if !ok {
			continue
		}
		if err := m.Set(f, v); err != nil && !errors.Is(err, ErrInvalidFormat) {
			return Member{}, err
		}
	}
	return m, nil
}

// MergeMissing fills attributes that are empty on m with non-empty incoming
// values and never touches populated ones. It returns the fields it wrote.
func (m *Member) MergeMissing(values Values) []Field {
	var changed []Field
	for _, f := range ProfileFields {
		incoming := strings.TrimSpace(values[f])
		if incoming == "" || m.Get(f) != "" {
			continue
		}
		if err := m.Set(f, incoming); err != nil {
			continue
		}
		changed = append(changed, f)
	}
	return changed
}
