package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogoutTransitions(t *testing.T) {
	s := New(NewMemoryStore())
	require.False(t, s.IsAuthenticated())
	require.Equal(t, Anonymous, s.State())

	require.NoError(t, s.Login("access-1", "refresh-1"))
	require.True(t, s.IsAuthenticated())
	require.Equal(t, Authenticated, s.State())
	require.Equal(t, "access-1", s.AccessToken())
	require.Equal(t, "refresh-1", s.RefreshToken())

	require.NoError(t, s.Logout())
	require.False(t, s.IsAuthenticated())
	require.Equal(t, Anonymous, s.State())
	require.Empty(t, s.AccessToken())
	require.Empty(t, s.RefreshToken())
}

func TestLoginRejectsEmptyAccessToken(t *testing.T) {
	store := NewMemoryStore()
	s := New(store)
	err := s.Login("", "refresh")
	require.ErrorIs(t, err, ErrEmptyToken)
	_, ok := store.Get(RefreshTokenKey)
	require.False(t, ok, "nothing should be written on a rejected login")
	require.False(t, s.IsAuthenticated())
}

func TestAuthenticatedFollowsStore(t *testing.T) {
	store := NewMemoryStore()
	s := New(store)

	// A token written by a previous run is picked up.
	require.NoError(t, store.Set(AccessTokenKey, "from-disk"))
	require.True(t, s.IsAuthenticated())

	require.NoError(t, store.Delete(AccessTokenKey))
	require.False(t, s.IsAuthenticated())
}

type failingStore struct {
	*MemoryStore
	failKey string
}

func (f failingStore) Set(key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(key, value)
}

// refreshDeleteFailingStore refuses to delete the refresh token only.
type refreshDeleteFailingStore struct {
	*MemoryStore
}

func (f refreshDeleteFailingStore) Delete(keys ...string) error {
	for _, k := range keys {
		if k == RefreshTokenKey {
			return errors.New("disk full")
		}
	}
	return f.MemoryStore.Delete(keys...)
}

func TestLoginRollsBackOnPartialWrite(t *testing.T) {
	tests := []struct {
		name    string
		store   Store
		refresh string
	}{
		{"refresh write fails", failingStore{MemoryStore: NewMemoryStore(), failKey: RefreshTokenKey}, "refresh"},
		{"stale refresh clear fails", refreshDeleteFailingStore{MemoryStore: NewMemoryStore()}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.store)
			err := s.Login("access", tt.refresh)
			require.Error(t, err)
			require.False(t, s.IsAuthenticated())
			require.Equal(t, Anonymous, s.State())
			_, ok := tt.store.Get(AccessTokenKey)
			require.False(t, ok)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, New(store).Login("tok-a", "tok-r"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	s := New(reopened)
	require.True(t, s.IsAuthenticated())
	require.Equal(t, "tok-a", s.AccessToken())

	require.NoError(t, s.Logout())
	again, err := NewFileStore(path)
	require.NoError(t, err)
	require.False(t, New(again).IsAuthenticated())
}

func TestFileStoreMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	_, ok := store.Get(AccessTokenKey)
	require.False(t, ok)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- just\n- a list\n"), 0o600))
	_, err = NewFileStore(bad)
	require.Error(t, err)
}

func TestClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    7,
		"username":   "admin",
		"exp":        exp.Unix(),
		"token_type": "access",
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	s := New(NewMemoryStore())
	_, ok := s.Claims()
	require.False(t, ok)

	require.NoError(t, s.Login(tok, "r"))
	c, ok := s.Claims()
	require.True(t, ok)
	assert.Equal(t, "7", c.UserID)
	assert.Equal(t, "admin", c.Username)
	assert.True(t, c.ExpiresAt.Equal(exp))
}

func TestClaimsOpaqueToken(t *testing.T) {
	s := New(NewMemoryStore())
	require.NoError(t, s.Login("not-a-jwt", ""))
	_, ok := s.Claims()
	require.False(t, ok)
	require.True(t, s.IsAuthenticated(), "opaque tokens still authenticate")
}
