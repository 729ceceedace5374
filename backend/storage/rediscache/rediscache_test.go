package rediscache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/backend/lms"
	"learnhub/backend/logger"
	"learnhub/backend/storage/rediscache"
)

func TestSummaryRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := rediscache.Connect(ctx, url, time.Minute, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	key := lms.CourseSummaryKey(uuid.NewString())
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	avg := 4.5
	require.NoError(t, c.Set(ctx, key, lms.Summary{Average: &avg, Count: 2}))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.5, *got.Average)
	assert.Equal(t, 2, got.Count)

	require.NoError(t, c.Set(ctx, key, lms.Summary{}))
	got, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok, "an empty summary is still a hit")
	assert.Nil(t, got.Average)

	require.NoError(t, c.Delete(ctx, key))
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerationBump(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := rediscache.Connect(ctx, url, time.Minute, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	scope := lms.LessonSummaryKey(uuid.NewString())
	gen, err := c.Generation(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, c.Set(ctx, lms.GenerationKey(scope, gen), lms.Summary{Count: 3}))
	require.NoError(t, c.Bump(ctx, scope))

	gen, err = c.Generation(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	_, ok, err := c.Get(ctx, lms.GenerationKey(scope, gen))
	require.NoError(t, err)
	assert.False(t, ok, "a bumped scope starts empty")
}

func TestConnectBadURL(t *testing.T) {
	_, err := rediscache.Connect(context.Background(), "not a url", time.Minute, logger.NewNop())
	assert.Error(t, err)
}
