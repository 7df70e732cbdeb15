package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	id := uuid.New()

	raw, exp, err := m.Sign(id, "STUDENT", "Ana")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	got, claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "STUDENT", claims.Role)
	assert.Equal(t, "Ana", claims.Name)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	raw, _, err := NewManager("one", time.Hour).Sign(uuid.New(), "COMPANY", "Acme")
	require.NoError(t, err)

	_, _, err = NewManager("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := m.Sign(uuid.New(), "ADMIN", "root")
	require.NoError(t, err)

	m.now = time.Now
	_, _, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseGarbage(t *testing.T) {
	_, _, err := NewManager("secret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)
}
