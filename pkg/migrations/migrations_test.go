package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFiles_AreOrderedGooseMigrations(t *testing.T) {
	entries, err := fs.ReadDir(Files(), ".")
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for _, e := range entries {
		b, err := fs.ReadFile(Files(), e.Name())
		require.NoError(t, err)
		body := string(b)
		require.True(t, strings.HasPrefix(body, "-- +goose Up"), e.Name())
		require.Contains(t, body, "-- +goose Down", e.Name())
	}
	require.Equal(t, "00001_members.sql", entries[0].Name())
}

func TestFiles_UsersReferenceMembersOnce(t *testing.T) {
	b, err := fs.ReadFile(Files(), "00002_users.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "member_id             TEXT NULL UNIQUE REFERENCES members (member_id)")
}

func TestFiles_DocumentRecipientsCascade(t *testing.T) {
	b, err := fs.ReadFile(Files(), "00005_documents.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "REFERENCES documents (document_id) ON DELETE CASCADE")
	require.Contains(t, string(b), "PRIMARY KEY (user_id, document_id)")
}
