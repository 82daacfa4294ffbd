package columns

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

func TestLookup_CanonicalLabelAndAliases(t *testing.T) {
	cases := map[string]Field{
		"member_id":         MemberID,
		" Member ID ":       MemberID,
		"รหัสสมาชิก":        MemberID,
		"ชื่อ-นามสกุล":      FullName,
		"ชื่อ - สกุล":       FullName,
		"generation":        GraduationYear,
		"member_type":       Type,
		"ชื่อผู้ใช้":        Username,
		"PASSWORD_HASH":     PasswordHash,
		"Line ID":           LineID,
		"\ufeffรหัสสมาชิก": MemberID,
	}
	for header, want := range cases {
		got, ok := Lookup(header)
		require.True(t, ok, header)
		require.Equal(t, want, got, header)
	}

	_, ok := Lookup("favourite colour")
	require.False(t, ok)
}

func TestTranslate_DropsUnknownAndKeepsAbsent(t *testing.T) {
	rec := Translate(
		[]string{"รหัสสมาชิก", "ชื่อ-นามสกุล", "หมายเหตุ", "เบอร์โทร"},
		[]string{" M1 ", "Somchai", "ignored", ""},
	)

	v, ok := rec.Get(MemberID)
	require.True(t, ok)
	require.Equal(t, "M1", v)

	v, ok = rec.Get(Phone)
	require.True(t, ok)
	require.Equal(t, "", v)

	_, ok = rec.Get(Email)
	require.False(t, ok)

	values := rec.MemberValues()
	require.Equal(t, "Somchai", values[member.FieldFullName])
	require.Contains(t, values, member.FieldPhone)
	require.NotContains(t, values, member.FieldNickname)
}

func TestTranslate_FirstNonEmptyWins(t *testing.T) {
	rec := Translate(
		[]string{"phone", "เบอร์โทร", "เบอร์โทรศัพท์"},
		[]string{"", "0811111111", "0822222222"},
	)
	require.Equal(t, "0811111111", rec.Value(Phone))
}

func TestTranslate_ShortRows(t *testing.T) {
	rec := Translate([]string{"member_id", "full_name"}, []string{"M1"})
	require.Equal(t, "M1", rec.Value(MemberID))
	require.True(t, rec.Has(FullName))
	require.Equal(t, "", rec.Value(FullName))
}

func TestLabelsRoundTrip(t *testing.T) {
	for _, e := range dictionary {
		got, ok := Lookup(Label(e.field))
		require.True(t, ok, e.field)
		require.Equal(t, e.field, got)
	}
	require.Equal(t, "unknown_thing", Label("unknown_thing"))
	require.Equal(t, []string{"รหัสสมาชิก", "อำเภอ"}, Headers([]Field{MemberID, District}))
}

func TestTranslateSheet_CarriesPosition(t *testing.T) {
	sheet := spreadsheet.Sheet{
		Name:   "Members",
		Header: []string{"member_id"},
		Rows:   []spreadsheet.Row{{Line: 2, Values: []string{"M1"}}, {Line: 4, Values: []string{"M2"}}},
	}
	recs := TranslateSheet(sheet)
	require.Len(t, recs, 2)
	require.Equal(t, "Members", recs[1].Sheet)
	require.Equal(t, 4, recs[1].Line)
	require.Equal(t, "M2", recs[1].Value(MemberID))
}
