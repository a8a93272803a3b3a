package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("65f0c0ffee0000000000beef", "uploads/1700000000000-aadhar.png")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	owner, path, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee0000000000beef", owner)
	assert.Equal(t, "uploads/1700000000000-aadhar.png", path)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("owner", "uploads/file.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, _, err = signer.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("owner", "uploads/file.pdf")
	require.NoError(t, err)

	other := NewSignedURLSigner("different", time.Hour)
	_, _, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = signer.Parse("owner.123.abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
