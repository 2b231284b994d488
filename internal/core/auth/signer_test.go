package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Minute, "run-1")

	token, err := s.Token(time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "run-1", sub)
}

func TestSignerExpired(t *testing.T) {
	s := NewSigner("secret", time.Minute, "run-1")

	token, err := s.Token(time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.Error(t, err)
}

func TestNilSigner(t *testing.T) {
	s := NewSigner("", time.Minute, "run-1")
	assert.Nil(t, s)

	token, err := s.Token(time.Now())
	assert.NoError(t, err)
	assert.Empty(t, token)
}
