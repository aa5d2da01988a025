package feedcache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	dropped []string
}

func (c *stubCache) Invalidate(_ context.Context, deviceIDs ...string) error {
	c.dropped = append(c.dropped, deviceIDs...)
	return nil
}

type stubLister struct {
	byOwner  map[int][]string
	byGroup  map[int][]string
	byFeed   map[int][]string
	bySeries map[int][]string
	byList   map[int][]string
	err      error
}

func (l *stubLister) ListDeviceIDsByOwner(id int) ([]string, error) {
	return l.byOwner[id], l.err
}

func (l *stubLister) ListDeviceIDsByGroup(id int) ([]string, error) {
	return l.byGroup[id], l.err
}

func (l *stubLister) ListDeviceIDsByContentFeed(id int) ([]string, error) {
	return l.byFeed[id], l.err
}

func (l *stubLister) ListDeviceIDsByPlaylist(id int) ([]string, error) {
	return l.byList[id], l.err
}

func (l *stubLister) ListDeviceIDsByTickerSeries(id int) ([]string, error) {
	return l.bySeries[id], l.err
}

func TestDeviceChanged(t *testing.T) {
	cache := &stubCache{}
	inv := &Invalidator{cache: cache, store: &stubLister{}}

	require.NoError(t, inv.DeviceChanged(context.Background(), "dev-1"))
	assert.Equal(t, []string{"dev-1"}, cache.dropped)
}

func TestGroupRules(t *testing.T) {
	cache := &stubCache{}
	inv := &Invalidator{
		cache: cache,
		store: &stubLister{byGroup: map[int][]string{3: {"dev-1", "dev-2"}}},
	}
	ctx := context.Background()

	require.NoError(t, inv.GroupChanged(ctx, 3))
	assert.Equal(t, []string{"dev-1", "dev-2"}, cache.dropped)

	cache.dropped = nil
	require.NoError(t, inv.ScheduleChanged(ctx, 3))
	assert.Equal(t, []string{"dev-1", "dev-2"}, cache.dropped)

	// an unknown group resolves to no devices and touches nothing
	cache.dropped = nil
	require.NoError(t, inv.GroupChanged(ctx, 99))
	assert.Empty(t, cache.dropped)
}

func TestContentRules(t *testing.T) {
	cache := &stubCache{}
	inv := &Invalidator{
		cache: cache,
		store: &stubLister{
			byFeed:   map[int][]string{5: {"dev-1"}},
			byList:   map[int][]string{7: {"dev-2", "dev-3"}},
			bySeries: map[int][]string{9: {"dev-4"}},
			byOwner:  map[int][]string{1: {"dev-1", "dev-2", "dev-3", "dev-4"}},
		},
	}
	ctx := context.Background()

	require.NoError(t, inv.ContentFeedChanged(ctx, 5))
	assert.Equal(t, []string{"dev-1"}, cache.dropped)

	cache.dropped = nil
	require.NoError(t, inv.PlaylistChanged(ctx, 7))
	assert.Equal(t, []string{"dev-2", "dev-3"}, cache.dropped)

	cache.dropped = nil
	require.NoError(t, inv.TickerSeriesChanged(ctx, 9))
	assert.Equal(t, []string{"dev-4"}, cache.dropped)

	cache.dropped = nil
	require.NoError(t, inv.OwnerChanged(ctx, 1))
	assert.Len(t, cache.dropped, 4)
}

func TestListerErrorPropagates(t *testing.T) {
	cache := &stubCache{}
	inv := &Invalidator{cache: cache, store: &stubLister{err: errors.New("db down")}}

	err := inv.GroupChanged(context.Background(), 3)
	assert.Error(t, err)
	assert.Empty(t, cache.dropped, "nothing is invalidated when the fan-out is unknown")
}
