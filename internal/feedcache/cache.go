// Package feedcache stores fully composed feed payloads in redis, keyed by
// device. Entries have no TTL; they live until a write-path event
// invalidates them.
package feedcache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NormalizeKey strips separator characters from a device identifier so the
// cache key is stable regardless of how the caller formats the id.
func NormalizeKey(deviceID string) string {
	return strings.ReplaceAll(deviceID, "-", "")
}

func payloadKey(deviceID string) string {
	return "feed:" + NormalizeKey(deviceID)
}

func genKey(deviceID string) string {
	return payloadKey(deviceID) + ":gen"
}

// NewClient connects to redis and verifies the connection.
func NewClient(addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	log.Info().Str("addr", addr).Msg("connected to redis")
	return rdb, nil
}

// Cache is the device feed cache. Each key carries a generation counter
// bumped on every invalidation; Put refuses to store a payload computed
// against a generation that has since moved on, so a slow recompute can
// never overwrite an invalidation that landed while it ran.
type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Get returns the cached payload for a device, or nil on miss, along with
// the generation observed at read time. Pass the generation back to Put
// after recomputing.
func (c *Cache) Get(ctx context.Context, deviceID string) (map[string]any, uint64, error) {
	gen, err := c.rdb.Get(ctx, genKey(deviceID)).Uint64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	data, err := c.rdb.Get(ctx, payloadKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, 0, err
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		// A corrupt entry is treated as a miss and overwritten.
		log.Warn().Err(err).Str("device_id", deviceID).Msg("dropping unreadable cache entry")
		return nil, gen, nil
	}
	return payload, gen, nil
}

// Put stores a payload computed against the given generation. If the key
// was invalidated since, the write is silently skipped and the next read
// recomputes.
func (c *Cache) Put(ctx context.Context, deviceID string, payload map[string]any, gen uint64) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	gk := genKey(deviceID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, payloadKey(deviceID), data, 0)
			return nil
		})
		return err
	}, gk)
	if errors.Is(err, redis.TxFailedErr) {
		// Invalidated mid-write. The stale payload was not stored.
		return nil
	}
	return err
}

// Invalidate drops the cached payloads for the given devices and bumps
// their generations in one round trip.
func (c *Cache) Invalidate(ctx context.Context, deviceIDs ...string) error {
	if len(deviceIDs) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range deviceIDs {
			pipe.Del(ctx, payloadKey(id))
			pipe.Incr(ctx, genKey(id))
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("devices", len(deviceIDs)).Msg("cache invalidation failed")
	}
	return err
}
