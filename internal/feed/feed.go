// Package feed turns a device group's configuration into the payload a
// player renders: resolve which content feed applies right now, assemble
// it into a playlist with tickers and settings, and layer any active
// priority message on top.
package feed

import (
	"errors"
	"time"

	"github.com/signoxe/server/internal/model"
)

// Resolution failures surfaced to the device endpoint as distinct
// user-facing messages.
var (
	// ErrPlaylistNotConfigured means the resolved content feed has no
	// playlist attached.
	ErrPlaylistNotConfigured = errors.New("content feed has no playlist configured")

	// ErrNotConfigured means no content feed could be resolved for the
	// group at all.
	ErrNotConfigured = errors.New("no content feed configured for device group")

	// ErrNoContent means an asset has nothing to show right now. Swallowed
	// at the playlist-item level.
	ErrNoContent = errors.New("no content available for asset")

	// ErrInvalidAsset means an asset is missing the data its type requires.
	// Swallowed at the playlist-item level.
	ErrInvalidAsset = errors.New("asset configuration is invalid")
)

// Store is the read surface the feed pipeline needs. Deactivation of an
// expired priority message is the one write, performed as a side effect
// of reading it.
type Store interface {
	GetSpecialContent(groupID int, date time.Time) (*model.SpecialContent, error)
	GetScheduledContentAt(groupID int, day model.Weekday, at model.TimeOfDay) (*model.ScheduledContent, error)
	GetDefaultScheduledContent(groupID int, day model.Weekday) (*model.ScheduledContent, error)
	GetContentFeedByID(id int) (model.ContentFeed, error)
	ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error)
	GetAssetByID(id int) (model.Asset, error)
	GetFeedSnippetForDate(assetID int, date time.Time) (*model.FeedSnippet, error)
	GetCurrentCalendarEvent(assetID int, at time.Time) (*model.CalendarEvent, error)
	ListTickersBySeries(seriesID int) ([]model.Ticker, error)
	GetPriorityMessage(groupID int) (*model.PriorityMessage, error)
	DeactivatePriorityMessage(groupID int) error
}
