package ratelimiter

import (
	"context"
	"testing"
	"time"

	"anoa.com/campusrecruit/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientAlwaysAllows(t *testing.T) {
	l := New(nil)
	ctx := context.Background()
	id := uuid.New()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, id, "create_job", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ttl, err := l.TTL(ctx, id, "create_job")
	require.NoError(t, err)
	assert.Zero(t, ttl)
	assert.NoError(t, l.Clear(ctx, id, "create_job"))
}

func TestKeyFormat(t *testing.T) {
	id := uuid.MustParse("7f0d3c4e-3a51-4b7e-9d59-2f3f0c8b9a11")
	assert.Equal(t, "rate_limit:user:7f0d3c4e-3a51-4b7e-9d59-2f3f0c8b9a11:create_job", key(id, "create_job"))
}

func TestRateLimitErrorMapsTo429(t *testing.T) {
	err := &RateLimitError{Message: "slow down", RetryAfter: 10 * time.Second}
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	assert.Equal(t, 429, apperror.MapErrorToStatus(err))
}
