package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParse(t *testing.T) {
	s := New("secret", "folio")
	tok, err := s.Sign("cli", ScopeRevalidate, time.Hour)
	require.NoError(t, err)

	claims, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.Subject)
	assert.Equal(t, ScopeRevalidate, claims.Scope)
}

func TestParse_Rejects(t *testing.T) {
	s := New("secret", "folio")

	expired, err := s.Sign("cli", ScopeRevalidate, -time.Minute)
	require.NoError(t, err)
	_, err = s.Parse(expired)
	assert.Error(t, err)

	other, err := New("other", "folio").Sign("cli", ScopeRevalidate, time.Hour)
	require.NoError(t, err)
	_, err = s.Parse(other)
	assert.Error(t, err)

	wrongIssuer, err := New("secret", "elsewhere").Sign("cli", ScopeRevalidate, time.Hour)
	require.NoError(t, err)
	_, err = s.Parse(wrongIssuer)
	assert.Error(t, err)

	_, err = New("", "").Sign("cli", "", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}
