//go:build integration

package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgidempotency "github.com/alanyang/polybus/internal/adapter/postgres/idempotency"
	"github.com/alanyang/polybus/internal/testutil"
)

func TestIdempotencyRepo_StoreCheck(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgidempotency.New(pool)
	key := "key-" + uuid.NewString()

	_, ok, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Store(ctx, key, []byte(`{"status":202}`), time.Minute))
	require.NoError(t, repo.Store(ctx, key, []byte(`{"status":500}`), time.Minute))

	got, ok, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"status":202}`, string(got), "first response wins while unexpired")
}

func TestIdempotencyRepo_Expired(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgidempotency.New(pool)
	key := "key-" + uuid.NewString()

	require.NoError(t, repo.Store(ctx, key, []byte(`{}`), time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := repo.Check(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := repo.Sweep(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))
}
