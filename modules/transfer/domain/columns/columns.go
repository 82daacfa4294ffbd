// Package columns maps spreadsheet header text to canonical field names
// and back to the display labels written on export.
package columns

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

// Field is a canonical column key. Member attributes share member.Field names.
type Field string

const (
	MemberID          = Field(member.FieldMemberID)
	Prefix            = Field(member.FieldPrefix)
	FullName          = Field(member.FieldFullName)
	Nickname          = Field(member.FieldNickname)
	IDCard            = Field(member.FieldIDCard)
	Birthday          = Field(member.FieldBirthday)
	Age               = Field(member.FieldAge)
	Gender            = Field(member.FieldGender)
	Religion          = Field(member.FieldReligion)
	MedicalConditions = Field(member.FieldMedicalConditions)
	AllergyHistory    = Field(member.FieldAllergyHistory)
	Address           = Field(member.FieldAddress)
	Phone             = Field(member.FieldPhone)
	Facebook          = Field(member.FieldFacebook)
	Instagram         = Field(member.FieldInstagram)
	LineID            = Field(member.FieldLineID)
	School            = Field(member.FieldSchool)
	GraduationYear    = Field(member.FieldGraduationYear)
	GPA               = Field(member.FieldGPA)
	Type              = Field(member.FieldType)
	District          = Field(member.FieldDistrict)
	Status            = Field(member.FieldStatus)
	Department        = Field(member.FieldDepartment)

	Username             Field = "username"
	Password             Field = "password"
	PasswordHash         Field = "password_hash"
	Role                 Field = "role"
	Email                Field = "email"
	Approved             Field = "approved"
	NotificationsEnabled Field = "notifications_enabled"
)

type entry struct {
	field   Field
	label   string
	aliases []string
}

var dictionary = []entry{
	{MemberID, "รหัสสมาชิก", []string{"เลขที่", "member id", "memberid"}},
	{Prefix, "คำนำหน้า", []string{"คำนำหน้าชื่อ", "title"}},
	{FullName, "ชื่อ-นามสกุล", []string{"ชื่อ-สกุล", "ชื่อ", "name", "fullname"}},
	{Nickname, "ชื่อเล่น", []string{"nick name"}},
	{IDCard, "เลขบัตรประชาชน", []string{"เลขประจำตัวประชาชน", "national id", "citizen id"}},
	{Birthday, "วันเกิด", []string{"วันเดือนปีเกิด", "date of birth", "dob"}},
	{Age, "อายุ", nil},
	{Gender, "เพศ", []string{"sex"}},
	{Religion, "ศาสนา", nil},
	{MedicalConditions, "โรคประจำตัว", []string{"medical condition"}},
	{AllergyHistory, "ประวัติการแพ้", []string{"ประวัติการแพ้ยา", "allergy", "allergies"}},
	{Address, "ที่อยู่", nil},
	{Phone, "เบอร์โทร", []string{"เบอร์โทรศัพท์", "โทรศัพท์", "phone number", "tel"}},
	{Facebook, "Facebook", []string{"เฟซบุ๊ก"}},
	{Instagram, "Instagram", []string{"ig", "ไอจี"}},
	{LineID, "Line ID", []string{"ไลน์", "line"}},
	{School, "โรงเรียน", nil},
	{GraduationYear, "รุ่น", []string{"generation", "ปีที่จบ", "ปีการศึกษาที่จบ"}},
	{GPA, "เกรดเฉลี่ย", []string{"เกรด"}},
	{Type, "ประเภทสมาชิก", []string{"member_type", "membertype", "ประเภท"}},
	{District, "อำเภอ", []string{"เขต"}},
	{Status, "สถานะ", nil},
	{Department, "หน่วยงาน", []string{"แผนก"}},
	{Username, "ชื่อผู้ใช้", []string{"user name", "login"}},
	{Password, "รหัสผ่าน", nil},
	{PasswordHash, "รหัสผ่านเข้ารหัส", nil},
	{Role, "บทบาท", []string{"สิทธิ์"}},
	{Email, "อีเมล", []string{"e-mail", "อีเมล์"}},
	{Approved, "อนุมัติ", []string{"สถานะอนุมัติ"}},
	{NotificationsEnabled, "รับการแจ้งเตือน", []string{"notifications"}},
}

var (
	index  = map[string]Field{}
	labels = map[Field]string{}
)

func init() {
	for _, e := range dictionary {
		labels[e.field] = e.label
		for _, name := range append([]string{string(e.field), e.label}, e.aliases...) {
			index[normalize(name)] = e.field
		}
	}
}

// normalize folds a header to its lookup key: NFC, lower case ASCII, and no
// spaces, underscores or hyphens.
func normalize(header string) string {
	header = norm.NFC.String(strings.TrimSpace(header))
	var b strings.Builder
	for _, r := range header {
		switch {
		case unicode.IsSpace(r), r == '_', r == '-', r == '\u200b', r == '\ufeff':
			continue
		case r < unicode.MaxASCII:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup resolves header text to its canonical field.
func Lookup(header string) (Field, bool) {
	f, ok := index[normalize(header)]
	return f, ok
}

// Label is the display header written on export. Unknown fields use their key.
func Label(f Field) string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = Label(f)
	}
	return out
}

// Record is one spreadsheet row keyed by canonical field.
type Record struct {
	Sheet  string
	Line   int
	values map[Field]string
}

// Get reports the trimmed cell value and whether the column was present.
func (r Record) Get(f Field) (string, bool) {
	v, ok := r.values[f]
	return v, ok
}

// Value is Get without the presence flag.
func (r Record) Value(f Field) string {
	return r.values[f]
}

func (r Record) Has(f Field) bool {
	_, ok := r.values[f]
	return ok
}

// MemberValues returns the member attributes carried by the row.
func (r Record) MemberValues() member.Values {
	out := member.Values{}
	for _, f := range member.ProfileFields {
		if v, ok := r.values[Field(f)]; ok {
			out[f] = v
		}
	}
	return out
}

// Translate renames recognised headers and drops the rest. When two
// columns resolve to the same field the first non-empty value wins.
func Translate(header, values []string) Record {
	rec := Record{values: map[Field]string{}}
	for i, h := range header {
		f, ok := Lookup(h)
		if !ok {
			continue
		}
		v := ""
		if i < len(values) {
			v = strings.TrimSpace(values[i])
		}
		if prev, seen := rec.values[f]; seen && prev != "" {
			continue
		}
		rec.values[f] = v
	}
	return rec
}

// TranslateSheet translates every data row of sheet.
func TranslateSheet(sheet spreadsheet.Sheet) []Record {
	out := make([]Record, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rec := Translate(sheet.Header, row.Values)
		rec.Sheet = sheet.Name
		rec.Line = row.Line
		out = append(out, rec)
	}
	return out
}
