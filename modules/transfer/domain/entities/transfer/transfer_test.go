package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Both ")
	require.NoError(t, err)
	require.Equal(t, ModeBoth, m)
	require.True(t, m.Members())
	require.True(t, m.Users())

	_, err = ParseMode("everything")
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestResult_TotalDependsOnMode(t *testing.T) {
	r := Result{Members: 2, Accounts: 3}
	r.Mode = ModeMembers
	require.Equal(t, 2, r.Total())
	r.Mode = ModeUsers
	require.Equal(t, 3, r.Total())
	r.Mode = ModeBoth
	require.Equal(t, 5, r.Total())
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	require.Equal(t, "users_export_2024-03-09.xlsx", ExportFilename(ModeUsers, at))
}
