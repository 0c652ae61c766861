package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"automation-advisor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKeys(t *testing.T) {
	key := models.CacheKey{EntityID: "e1", Kind: models.KindTimeline, Scenario: models.ScenarioBalanced, Provider: "openai"}
	assert.Equal(t, "advisor:cache:timeline:e1:balanced:openai", KeyFor(key))
	assert.Equal(t, "advisor:cache:workflows:e1:any:gemini",
		KeyFor(models.CacheKey{EntityID: "e1", Kind: models.KindWorkflows, Provider: "gemini"}))
	assert.Equal(t, "advisor:cache:timeline:e1", LatestKeyFor("e1", models.KindTimeline))
}

func TestRedisStore_PutAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, time.Hour)

	key := models.CacheKey{EntityID: "e1", Kind: models.KindTimeline, Scenario: models.ScenarioBalanced, Provider: "openai"}
	entry := models.CacheEntry{
		Key:         key,
		Payload:     json.RawMessage(`{"summary":"plan"}`),
		Scenario:    key.Scenario,
		Provider:    key.Provider,
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, entry))

	assert.True(t, mr.Exists(KeyFor(key)))
	assert.True(t, mr.Exists(LatestKeyFor("e1", models.KindTimeline)))
	assert.Equal(t, time.Hour, mr.TTL(KeyFor(key)))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.GeneratedAt, got.GeneratedAt)
	assert.JSONEq(t, `{"summary":"plan"}`, string(got.Payload))

	latest, err := store.GetLatest(ctx, "e1", models.KindTimeline)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.ScenarioBalanced, latest.Scenario)

	mr.FastForward(2 * time.Hour)
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_ReadErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, 0)
	ctx := context.Background()

	mock.ExpectGet("advisor:cache:timeline:e1").RedisNil()
	got, err := store.GetLatest(ctx, "e1", models.KindTimeline)
	assert.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectGet("advisor:cache:timeline:e1").SetErr(errors.New("connection refused"))
	_, err = store.GetLatest(ctx, "e1", models.KindTimeline)
	assert.ErrorContains(t, err, "connection refused")

	mock.ExpectGet("advisor:cache:timeline:e1").SetVal("not json")
	_, err = store.GetLatest(ctx, "e1", models.KindTimeline)
	assert.ErrorContains(t, err, "decode cache entry")

	assert.NoError(t, mock.ExpectationsWereMet())
}
