package feedcache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// DeviceLister resolves a mutated entity to the devices whose cached feed
// it can affect.
type DeviceLister interface {
	ListDeviceIDsByOwner(ownerID int) ([]string, error)
	ListDeviceIDsByGroup(groupID int) ([]string, error)
	ListDeviceIDsByContentFeed(feedID int) ([]string, error)
	ListDeviceIDsByPlaylist(playlistID int) ([]string, error)
	ListDeviceIDsByTickerSeries(seriesID int) ([]string, error)
}

// payloadStore is the slice of Cache the invalidator uses.
type payloadStore interface {
	Invalidate(ctx context.Context, deviceIDs ...string) error
}

// Invalidator fans a write-path event out to the affected cache keys.
// Every admin mutation calls the matching rule before responding, so a
// device poll right after a write never sees a stale payload.
type Invalidator struct {
	cache payloadStore
	store DeviceLister
}

func NewInvalidator(cache *Cache, store DeviceLister) *Invalidator {
	return &Invalidator{cache: cache, store: store}
}

func (inv *Invalidator) drop(ctx context.Context, deviceIDs []string, err error, scope string) error {
	if err != nil {
		log.Error().Err(err).Str("scope", scope).Msg("failed to list devices for invalidation")
		return err
	}
	if len(deviceIDs) == 0 {
		return nil
	}
	log.Info().Str("scope", scope).Int("devices", len(deviceIDs)).Msg("clearing cached feeds")
	return inv.cache.Invalidate(ctx, deviceIDs...)
}

func (inv *Invalidator) DeviceChanged(ctx context.Context, deviceID string) error {
	return inv.cache.Invalidate(ctx, deviceID)
}

func (inv *Invalidator) GroupChanged(ctx context.Context, groupID int) error {
	ids, err := inv.store.ListDeviceIDsByGroup(groupID)
	return inv.drop(ctx, ids, err, "group")
}

// ScheduleChanged covers scheduled content, special content and priority
// message mutations, all of which affect exactly the owning group's devices.
func (inv *Invalidator) ScheduleChanged(ctx context.Context, groupID int) error {
	ids, err := inv.store.ListDeviceIDsByGroup(groupID)
	return inv.drop(ctx, ids, err, "schedule")
}

// ContentFeedChanged conservatively invalidates every device in every group
// that references the feed directly or through a schedule entry.
func (inv *Invalidator) ContentFeedChanged(ctx context.Context, feedID int) error {
	ids, err := inv.store.ListDeviceIDsByContentFeed(feedID)
	return inv.drop(ctx, ids, err, "content_feed")
}

func (inv *Invalidator) PlaylistChanged(ctx context.Context, playlistID int) error {
	ids, err := inv.store.ListDeviceIDsByPlaylist(playlistID)
	return inv.drop(ctx, ids, err, "playlist")
}

func (inv *Invalidator) TickerSeriesChanged(ctx context.Context, seriesID int) error {
	ids, err := inv.store.ListDeviceIDsByTickerSeries(seriesID)
	return inv.drop(ctx, ids, err, "ticker_series")
}

// OwnerChanged is the catch-all for mutations on entities that only carry
// an owner reference, such as assets.
func (inv *Invalidator) OwnerChanged(ctx context.Context, ownerID int) error {
	ids, err := inv.store.ListDeviceIDsByOwner(ownerID)
	return inv.drop(ctx, ids, err, "owner")
}
