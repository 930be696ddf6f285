package users

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam-prep/internal/store"
)

const usersJSON = `[
	{"id": 1, "name": "Pedro Santos", "email": "pedro@example.com", "password": "123", "avatar": "PS"},
	{"id": "2", "name": "Ana Pedrosa", "email": "ana@example.com", "password": "abc", "avatar": "AP"},
	{"id": 3, "name": "Maria Silva", "email": "maria@example.com", "password": "123", "avatar": "MS"}
]`

func loadTestDirectory(t *testing.T) *Directory {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(usersJSON), 0o600))

	directory, err := LoadDirectory(path)
	require.NoError(t, err)
	return directory
}

func TestLoadDirectoryAcceptsNumericAndStringIDs(t *testing.T) {
	directory := loadTestDirectory(t)

	require.Equal(t, 3, directory.Len())
	assert.Equal(t, ID("1"), directory.users[0].ID)
	assert.Equal(t, ID("2"), directory.users[1].ID)
}

func TestLoadDirectoryErrors(t *testing.T) {
	_, err := LoadDirectory(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadDirectory(path)
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	directory := loadTestDirectory(t)

	tests := []struct {
		name     string
		login    string
		password string
		wantID   ID
		wantErr  bool
	}{
		{name: "email case-insensitive", login: "PEDRO@example.com", password: "123", wantID: "1"},
		{name: "name substring", login: "silva", password: "123", wantID: "3"},
		{name: "first match in file order", login: "pedro", password: "123", wantID: "1"},
		{name: "password selects among name matches", login: "pedro", password: "abc", wantID: "2"},
		{name: "wrong password", login: "maria@example.com", password: "nope", wantErr: true},
		{name: "unknown login", login: "joao", password: "123", wantErr: true},
		{name: "blank login", login: "  ", password: "123", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := directory.Authenticate(tc.login, tc.password)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Fatalf("Authenticate error = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, user.ID)
		})
	}
}

func TestSessionSignInRestoreSignOut(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	session := NewSession(kv, nil)

	_, ok, err := session.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	user := User{ID: "1", Name: "Pedro Santos", Email: "pedro@example.com", Password: "123", Avatar: "PS"}
	require.NoError(t, session.SignIn(ctx, user))

	raw, err := kv.Get(ctx, "current_user")
	require.NoError(t, err)
	assert.NotContains(t, raw, "password")

	restored, ok, err := session.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.Public(), restored)

	require.NoError(t, session.SignOut(ctx))
	_, ok, err = session.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRestoreCorruptMarker(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, "current_user", "not-json"))

	_, ok, err := NewSession(kv, nil).Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
