// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/signoxe/server/internal/model"
)

// Write-time validation failures. Handlers map these to field-level 400s.
var (
	ErrScheduleOverlap         = errors.New("two schedules should not intersect")
	ErrDuplicateDefault        = errors.New("a default schedule already exists for this day")
	ErrDuplicateSpecialContent = errors.New("special content already exists for this date")
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string, clientID *int) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// client / tenant functions
	GetClientByID(id int) (model.Client, error)
	GetOrCreateClientSettings(clientID int) (model.ClientSettings, error)
	LatestAppManifest(channelID *int) (model.AppManifest, error)

	// device functions
	GetDeviceByDeviceID(deviceID string) (*model.Device, error)
	GetDeviceByID(id int) (model.Device, error)
	CreateDevice(deviceID string, enabled bool) (model.Device, error)
	ListDevicesByOwner(ownerID int) ([]model.Device, error)
	ListDevicesByGroup(groupID int) ([]model.Device, error)
	UpdateDevicePing(deviceID string, at time.Time) error
	UpdateDevice(id int, name *string, groupID *int, enabled, debugMode *bool) (model.Device, error)
	SetDeviceCommand(id int, command string) error
	ConsumeDeviceCommand(id int) (*string, error)
	UpdateDeviceBuildVersion(deviceID string, buildVersion int, at time.Time) error
	ListDeviceIDsByOwner(ownerID int) ([]string, error)
	ListDeviceIDsByGroup(groupID int) ([]string, error)
	ListDeviceIDsByContentFeed(feedID int) ([]string, error)
	ListDeviceIDsByPlaylist(playlistID int) ([]string, error)
	ListDeviceIDsByTickerSeries(seriesID int) ([]string, error)

	// device group functions
	CreateDeviceGroup(name string, ownerID int, feedID *int, orientation string) (model.DeviceGroup, error)
	GetDeviceGroupByID(id int) (model.DeviceGroup, error)
	ListDeviceGroupsByOwner(ownerID int) ([]model.DeviceGroup, error)
	ListDeviceGroupsByMirror(mirrorID int) ([]model.DeviceGroup, error)
	UpdateDeviceGroup(id int, name *string, feedID *int, displayDateTime *bool, orientation *string, mirrorID *int) (model.DeviceGroup, error)
	DeleteDeviceGroup(id int) error

	// mirror functions
	GetMirrorByMirrorID(mirrorID string) (*model.MirrorServer, error)
	GetMirrorByID(id int) (model.MirrorServer, error)
	CreateMirror(mirrorID, name string) (model.MirrorServer, error)
	UpdateMirrorPing(id int, at time.Time) error

	// asset functions
	CreateAsset(a model.Asset) (model.Asset, error)
	GetAssetByID(id int) (model.Asset, error)
	ListAssetsByOwner(ownerID int) ([]model.Asset, error)
	DeleteAsset(id int) error
	GetFeedSnippetForDate(assetID int, date time.Time) (*model.FeedSnippet, error)
	GetCurrentCalendarEvent(assetID int, at time.Time) (*model.CalendarEvent, error)
	ReplaceCalendarEvents(assetID int, events []model.CalendarEvent) error

	// content feed functions
	CreateContentFeed(title string, playlistID, tickerSeriesID *int, imageDuration, webDuration int, overlayTicker bool) (model.ContentFeed, error)
	GetContentFeedByID(id int) (model.ContentFeed, error)
	UpdateContentFeed(id int, title *string, playlistID, tickerSeriesID *int, imageDuration, webDuration *int, overlayTicker *bool) (model.ContentFeed, error)
	DeleteContentFeed(id int) error
	CloneContentFeed(srcID int, title string) (model.ContentFeed, error)

	// playlist functions
	CreatePlaylist(name string, ownerID int) (model.Playlist, error)
	GetPlaylistByID(id int) (model.Playlist, error)
	ListPlaylistsByOwner(ownerID int) ([]model.Playlist, error)
	ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error)
	GetPlaylistItemByID(id int) (model.PlaylistItem, error)
	AddPlaylistItem(playlistID, assetID int, position, duration *int, expireOn *time.Time) (model.PlaylistItem, error)
	UpdatePlaylistItem(id int, position, duration *int, expireOn *time.Time) (model.PlaylistItem, error)
	DeletePlaylistItem(id int) error

	// ticker functions
	CreateTickerSeries(name string, ownerID int) (model.TickerSeries, error)
	GetTickerSeriesByID(id int) (model.TickerSeries, error)
	ListTickerSeriesByOwner(ownerID int) ([]model.TickerSeries, error)
	ListTickersBySeries(seriesID int) ([]model.Ticker, error)
	GetTickerByID(id int) (model.Ticker, error)
	CreateTicker(t model.Ticker) (model.Ticker, error)
	UpdateTicker(id int, text *string, speed, position *int) (model.Ticker, error)
	DeleteTicker(id int) error

	// schedule functions
	ListScheduledContent(groupID int) ([]model.ScheduledContent, error)
	GetScheduledContentByID(id int) (model.ScheduledContent, error)
	GetScheduledContentAt(groupID int, day model.Weekday, at model.TimeOfDay) (*model.ScheduledContent, error)
	GetDefaultScheduledContent(groupID int, day model.Weekday) (*model.ScheduledContent, error)
	CreateScheduledContent(sc model.ScheduledContent) (model.ScheduledContent, error)
	UpdateScheduledContent(sc model.ScheduledContent) (model.ScheduledContent, error)
	DeleteScheduledContent(id int) error
	EnableScheduling(groupID int) error
	DisableScheduling(groupID int) error

	// special content functions
	GetSpecialContent(groupID int, date time.Time) (*model.SpecialContent, error)
	GetSpecialContentByID(id int) (model.SpecialContent, error)
	ListSpecialContent(groupID int) ([]model.SpecialContent, error)
	CreateSpecialContent(sc model.SpecialContent) (model.SpecialContent, error)
	DeleteSpecialContent(id int) error

	// priority message functions
	GetPriorityMessage(groupID int) (*model.PriorityMessage, error)
	GetOrCreatePriorityMessage(groupID int) (model.PriorityMessage, error)
	ActivatePriorityMessage(groupID, durationMinutes, messageAssetID int, at time.Time) (model.PriorityMessage, error)
	UpdatePriorityMessage(groupID int, durationMinutes, messageAssetID *int) (model.PriorityMessage, error)
	DeactivatePriorityMessage(groupID int) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}
