package feedcache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "09eaa9c432bd422682c279f372267bfd",
		NormalizeKey("09eaa9c4-32bd-4226-82c2-79f372267bfd"))
	assert.Equal(t, "abc", NormalizeKey("abc"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "feed:abc123", payloadKey("abc-123"))
	assert.Equal(t, "feed:abc123:gen", genKey("abc-123"))
}

// Exercises the full get/put/invalidate cycle against a live redis.
// Skipped unless REDIS_ADDRESS is set.
func TestCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set")
	}

	rdb, err := NewClient(addr, os.Getenv("REDIS_USERNAME"), os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	defer rdb.Close()

	ctx := context.Background()
	cache := New(rdb)
	const deviceID = "cache-test-device"
	require.NoError(t, cache.Invalidate(ctx, deviceID))

	payload, gen, err := cache.Get(ctx, deviceID)
	require.NoError(t, err)
	assert.Nil(t, payload)

	want := map[string]any{"playlist": []any{}, "bringToFront": false}
	require.NoError(t, cache.Put(ctx, deviceID, want, gen))

	payload, gen2, err := cache.Get(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, want, payload)
	assert.Equal(t, gen, gen2, "generation only moves on invalidation")

	// invalidation drops the payload and bumps the generation
	require.NoError(t, cache.Invalidate(ctx, deviceID))
	payload, gen3, err := cache.Get(ctx, deviceID)
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Greater(t, gen3, gen2)

	// a write carrying the stale generation is refused
	require.NoError(t, cache.Put(ctx, deviceID, want, gen2))
	payload, _, err = cache.Get(ctx, deviceID)
	require.NoError(t, err)
	assert.Nil(t, payload, "stale put must not repopulate the key")
}
