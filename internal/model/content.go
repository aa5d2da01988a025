package model

import "time"

// AssetType identifies one of the closed set of asset variants.
type AssetType string

const (
	AssetImage    AssetType = "IMAGE"
	AssetVideo    AssetType = "VIDEO"
	AssetWeb      AssetType = "WEB"
	AssetFeed     AssetType = "FEED"
	AssetCalendar AssetType = "CALENDAR"
)

// Asset is a displayable piece of media. The Type field selects which of the
// variant columns are meaningful:
//   - IMAGE/VIDEO: MediaURL + Checksum
//   - WEB: WebURL or WebContent (hosted), checksum derived from content
//   - FEED: content comes from the snippet published for the current date
//   - CALENDAR: content comes from the calendar event covering the current time
type Asset struct {
	ID          int       `db:"id"           json:"id"`
	Name        string    `db:"name"         json:"name"`
	Type        AssetType `db:"type"         json:"type"`
	OwnerID     *int      `db:"owner_id"     json:"owner_id,omitempty"`
	MediaURL    *string   `db:"media_url"    json:"media_url,omitempty"`
	Checksum    *string   `db:"checksum"     json:"checksum,omitempty"`
	WebURL      *string   `db:"web_url"      json:"web_url,omitempty"`
	WebContent  *string   `db:"web_content"  json:"web_content,omitempty"`
	CalendarURL *string   `db:"calendar_url" json:"calendar_url,omitempty"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

// FeedSnippet is one day's content for a FEED asset. Snippets without a date
// are evergreen and used on any day with no dated snippet.
type FeedSnippet struct {
	ID          int        `db:"id"            json:"id"`
	FeedAssetID int        `db:"feed_asset_id" json:"feed_asset_id"`
	Date        *time.Time `db:"date"          json:"date,omitempty"`
	Title       *string    `db:"title"         json:"title,omitempty"`
	URL         string     `db:"url"           json:"url"`
	Checksum    string     `db:"checksum"      json:"checksum"`
	Duration    *int       `db:"duration"      json:"duration,omitempty"`
}

// CalendarEvent is a cached event of a CALENDAR asset. Event rows are
// refreshed out of band by the calendar refresh job.
type CalendarEvent struct {
	ID              int       `db:"id"                json:"id"`
	CalendarAssetID int       `db:"calendar_asset_id" json:"calendar_asset_id"`
	Start           time.Time `db:"start_ts"          json:"start"`
	End             time.Time `db:"end_ts"            json:"end"`
	Title           string    `db:"title"             json:"title"`
	Content         string    `db:"content"           json:"content"`
}

// Playlist is an ordered collection of assets.
type Playlist struct {
	ID      int    `db:"id"       json:"id"`
	Name    string `db:"name"     json:"name"`
	OwnerID *int   `db:"owner_id" json:"owner_id,omitempty"`
}

// PlaylistItem places an asset in a playlist. Duration applies when the asset
// does not supply its own. Items past ExpireOn are excluded from feeds.
type PlaylistItem struct {
	ID         int        `db:"id"          json:"id"`
	PlaylistID int        `db:"playlist_id" json:"playlist_id"`
	AssetID    int        `db:"asset_id"    json:"asset_id"`
	Position   int        `db:"position"    json:"position"`
	Duration   *int       `db:"duration"    json:"duration,omitempty"`
	ExpireOn   *time.Time `db:"expire_on"   json:"expire_on,omitempty"`
}

// Expired reports whether the item should be excluded from feeds at the
// given instant.
func (p PlaylistItem) Expired(at time.Time) bool {
	return p.ExpireOn != nil && !at.Before(*p.ExpireOn)
}

// ContentFeed bundles a playlist, an optional ticker series and display
// settings. It is what a device group resolves to and what devices render.
type ContentFeed struct {
	ID             int    `db:"id"               json:"id"`
	Title          string `db:"title"            json:"title"`
	PlaylistID     *int   `db:"playlist_id"      json:"playlist_id,omitempty"`
	TickerSeriesID *int   `db:"ticker_series_id" json:"ticker_series_id,omitempty"`
	ImageDuration  int    `db:"image_duration"   json:"image_duration"`
	WebDuration    int    `db:"web_duration"     json:"web_duration"`
	OverlayTicker  bool   `db:"overlay_ticker"   json:"overlay_ticker"`
	AutoCreated    bool   `db:"auto_created"     json:"auto_created"`
}

// Settings returns the device settings carried by this feed. displayTicker is
// true whenever a ticker series is attached, even an empty one.
func (c ContentFeed) Settings() map[string]any {
	return map[string]any{
		"imageDuration": c.ImageDuration,
		"webDuration":   c.WebDuration,
		"overlayTicker": c.OverlayTicker,
		"displayTicker": c.TickerSeriesID != nil,
	}
}
