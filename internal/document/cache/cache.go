// Package cache provides a Redis-backed snapshot cache for document versions.
// Versions are immutable once written, so cached entries never go stale; the
// TTL only bounds memory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"capture-gateway/internal/document/models"
	"capture-gateway/internal/platform/redis"
)

// VersionCache caches raw version channels in Redis. A nil inner client
// disables caching; every lookup is then a miss.
type VersionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *VersionCache {
	return &VersionCache{client: client, ttl: ttl, logger: logger}
}

// cacheEntry is the serialized form stored under doc:{din}:{version}.
type cacheEntry struct {
	DIN        string          `json:"din"`
	UploadID   string          `json:"upload_id,omitempty"`
	Version    int             `json:"version"`
	Payload    json.RawMessage `json:"payload"`
	Exceptions json.RawMessage `json:"exceptions,omitempty"`
	Source     string          `json:"source"`
	CreatedAt  time.Time       `json:"created_at"`
	CreatedBy  string          `json:"created_by,omitempty"`
}

func cacheKey(din string, version int) string {
	return fmt.Sprintf("doc:%s:%d", din, version)
}

// Get returns the cached version, or (nil, false) on miss or any Redis
// failure. Cache trouble never surfaces to callers.
func (c *VersionCache) Get(ctx context.Context, din string, version int) (*models.DocumentVersion, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(din, version)).Bytes()
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logWarn(ctx, "corrupt cache entry", din, version, err)
		return nil, false
	}
	return &models.DocumentVersion{
		DIN:        entry.DIN,
		UploadID:   entry.UploadID,
		Version:    entry.Version,
		Payload:    entry.Payload,
		Exceptions: entry.Exceptions,
		Source:     models.VersionSource(entry.Source),
		CreatedAt:  entry.CreatedAt,
		CreatedBy:  entry.CreatedBy,
	}, true
}

// Set stores a version. Failures are logged and swallowed.
func (c *VersionCache) Set(ctx context.Context, version *models.DocumentVersion) {
	if c == nil || c.client == nil || version == nil {
		return
	}
	body, err := json.Marshal(cacheEntry{
		DIN:        version.DIN,
		UploadID:   version.UploadID,
		Version:    version.Version,
		Payload:    version.Payload,
		Exceptions: version.Exceptions,
		Source:     string(version.Source),
		CreatedAt:  version.CreatedAt,
		CreatedBy:  version.CreatedBy,
	})
	if err != nil {
		c.logWarn(ctx, "marshal cache entry", version.DIN, version.Version, err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(version.DIN, version.Version), body, c.ttl).Err(); err != nil {
		c.logWarn(ctx, "write cache entry", version.DIN, version.Version, err)
	}
}

func (c *VersionCache) logWarn(ctx context.Context, msg, din string, version int, err error) {
	if c.logger == nil {
		return
	}
	c.logger.WarnContext(ctx, msg, "din", din, "version", version, "error", err)
}
