package repository

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"libraryhub/internal/http-api/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const catalogVersionKey = "catalog:version"

// CatalogCache is a read-through cache for catalogue searches.
// Entries are keyed by a catalogue version; bumping the version retires
// every cached search at once and lets the old keys expire on their own.
// A nil cache or nil client turns every call into a miss / no-op.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCatalogCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogCache{client: client, ttl: ttl, logger: logger}
}

func (c *CatalogCache) enabled() bool {
	return c != nil && c.client != nil
}

// Lookup returns cached books for the filter. The returned key must be passed
// to Store after a miss so the entry lands under the version that was read.
func (c *CatalogCache) Lookup(ctx context.Context, filter BookFilter) ([]models.Book, bool, string) {
	if !c.enabled() {
		return nil, false, ""
	}

	version, err := c.client.Get(ctx, catalogVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		version = "0"
	} else if err != nil {
		c.logger.Warn("catalog_cache_version_failed", "error", err)
		return nil, false, ""
	}

	key := fmt.Sprintf("catalog:v%s:search:%s", version, filterKey(filter))
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog_cache_get_failed", "key", key, "error", err)
		}
		return nil, false, key
	}

	var books []models.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		c.logger.Warn("catalog_cache_decode_failed", "key", key, "error", err)
		return nil, false, key
	}
	return books, true, key
}

// Store caches a search result under a key obtained from Lookup.
func (c *CatalogCache) Store(ctx context.Context, key string, books []models.Book) {
	if !c.enabled() || key == "" {
		return
	}
	raw, err := json.Marshal(books)
	if err != nil {
		c.logger.Warn("catalog_cache_encode_failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog_cache_set_failed", "key", key, "error", err)
	}
}

// Invalidate retires every cached search.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, catalogVersionKey).Err(); err != nil {
		return fmt.Errorf("bump catalog version: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func filterKey(f BookFilter) string {
	raw := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(f.Search)),
		f.Category,
		string(f.Status),
	}, "\x1f")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
