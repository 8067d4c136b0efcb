package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"libraryhub/internal/http-api/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, cache := range map[string]*CatalogCache{
		"nil cache":  nil,
		"nil client": NewCatalogCache(nil, time.Minute, nil),
	} {
		t.Run(name, func(t *testing.T) {
			books, hit, key := cache.Lookup(ctx, BookFilter{Search: "dune"})
			assert.False(t, hit)
			assert.Nil(t, books)
			assert.Empty(t, key)

			cache.Store(ctx, "k", []models.Book{{ID: 1}})
			assert.NoError(t, cache.Invalidate(ctx))
		})
	}
}

func TestTokenRevocations_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	r := NewTokenRevocations(nil)

	require.NoError(t, r.Revoke(ctx, "jti", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestFilterKey(t *testing.T) {
	a := filterKey(BookFilter{Search: "  Dune ", Category: "Fiction"})
	b := filterKey(BookFilter{Search: "dune", Category: "Fiction"})
	c := filterKey(BookFilter{Search: "dune", Category: "fiction"})

	assert.Equal(t, a, b, "search term is case and space insensitive")
	assert.NotEqual(t, b, c, "category is exact")
	assert.Len(t, a, 40)
}

// redis-backed tests run only when LIBRARYHUB_TEST_REDIS_URL is set
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("LIBRARYHUB_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LIBRARYHUB_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, client.FlushDB(ctx).Err())
	return client
}

func TestCatalogCache_Redis(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	cache := NewCatalogCache(client, time.Minute, nil)
	filter := BookFilter{Search: "gatsby"}

	_, hit, key := cache.Lookup(ctx, filter)
	require.False(t, hit)
	require.NotEmpty(t, key)

	cache.Store(ctx, key, []models.Book{{ID: 3, Title: "The Great Gatsby", AvailabilityStatus: models.StatusAvailable}})

	books, hit, _ := cache.Lookup(ctx, filter)
	require.True(t, hit)
	require.Len(t, books, 1)
	assert.Equal(t, "The Great Gatsby", books[0].Title)

	require.NoError(t, cache.Invalidate(ctx))
	_, hit, newKey := cache.Lookup(ctx, filter)
	assert.False(t, hit)
	assert.NotEqual(t, key, newKey)
}

func TestTokenRevocations_Redis(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	r := NewTokenRevocations(client)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "jti-expired", time.Now().Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "jti-expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	ttl, err := client.TTL(ctx, revokedKey("jti-1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
