package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Email: "rec@example.com",
		Role:  "RECRUITER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", "token.json")

	s := NewSession(path)
	require.NoError(t, s.Set("abc.def.ghi", "RECRUITER"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	restored, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", restored.Token())
	assert.Equal(t, "RECRUITER", restored.Role())
	assert.True(t, restored.Authenticated())

	require.NoError(t, restored.Clear())
	assert.False(t, restored.Authenticated())
	assert.Empty(t, restored.Role())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadSessionMissingFile(t *testing.T) {
	s, err := LoadSession(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestLoadSessionCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadSession(path)
	assert.Error(t, err)
}

func TestSessionClaims(t *testing.T) {
	s := NewSession("")

	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrNoToken)

	now := time.Now()
	require.NoError(t, s.Set(signedToken(t, now.Add(time.Hour)), "RECRUITER"))

	claims, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "rec@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(2*time.Hour)))
}

func TestSessionExpiredOpaqueToken(t *testing.T) {
	s := NewSession("")
	require.NoError(t, s.Set("opaque-token", ""))

	assert.False(t, s.Expired(time.Now()))
}

func TestSessionInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	s := NewSession(path)
	require.NoError(t, s.Set("tok", "RECRUITER"))

	calls := 0
	s.OnAuthFailure(func() { calls++ })
	s.Invalidate()

	assert.Equal(t, 1, calls)
	assert.Empty(t, s.Token())
	assert.Empty(t, s.Role())
}

func TestTokenSource(t *testing.T) {
	s := NewSession("")

	_, err := s.TokenSource().Token()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.Set("tok-123", ""))
	tok, err := s.TokenSource().Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "***", Redact("short"))
	assert.Equal(t, "abcdefgh...", Redact("abcdefghijkl"))
}
