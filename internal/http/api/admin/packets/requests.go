package packets

import "time"

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     *string `json:"name"`
	ClientID *int    `json:"client_id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateCurrentProfileRequest struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name"`
}

type UpdateDeviceRequest struct {
	Name      *string `json:"name"`
	GroupID   *int    `json:"group_id"`
	Enabled   *bool   `json:"enabled"`
	DebugMode *bool   `json:"debug_mode"`
}

type DeviceCommandRequest struct {
	Command string `json:"command" binding:"required"`
}

type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required"`
	FeedID      *int    `json:"feed_id"`
	Orientation *string `json:"orientation"`
}

type UpdateGroupRequest struct {
	Name            *string `json:"name"`
	FeedID          *int    `json:"feed_id"`
	DisplayDateTime *bool   `json:"display_date_time"`
	Orientation     *string `json:"orientation"`
	MirrorID        *int    `json:"mirror_id"`
}

type ActivatePriorityMessageRequest struct {
	DurationMinutes *int `json:"duration_minutes" binding:"required"`
	MessageAssetID  int  `json:"message_asset_id" binding:"required"`
}

type UpdatePriorityMessageRequest struct {
	DurationMinutes *int `json:"duration_minutes"`
	MessageAssetID  *int `json:"message_asset_id"`
}

type ScheduledContentRequest struct {
	Day          string  `json:"day" binding:"required"`
	Default      bool    `json:"default"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	BringToFront bool    `json:"bring_to_front"`
	ContentID    *int    `json:"content_id"`
}

type CreateSpecialContentRequest struct {
	Date      string `json:"date" binding:"required"`
	ContentID *int   `json:"content_id"`
}

type CreateAssetRequest struct {
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	MediaURL    *string `json:"media_url"`
	Checksum    *string `json:"checksum"`
	WebURL      *string `json:"web_url"`
	WebContent  *string `json:"web_content"`
	CalendarURL *string `json:"calendar_url"`
}

type CreateContentFeedRequest struct {
	Title          string `json:"title" binding:"required"`
	PlaylistID     *int   `json:"playlist_id"`
	TickerSeriesID *int   `json:"ticker_series_id"`
	ImageDuration  *int   `json:"image_duration"`
	WebDuration    *int   `json:"web_duration"`
	OverlayTicker  *bool  `json:"overlay_ticker"`
}

type UpdateContentFeedRequest struct {
	Title          *string `json:"title"`
	PlaylistID     *int    `json:"playlist_id"`
	TickerSeriesID *int    `json:"ticker_series_id"`
	ImageDuration  *int    `json:"image_duration"`
	WebDuration    *int    `json:"web_duration"`
	OverlayTicker  *bool   `json:"overlay_ticker"`
}

type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddPlaylistItemRequest struct {
	AssetID  int        `json:"asset_id" binding:"required"`
	Position *int       `json:"position"`
	Duration *int       `json:"duration"`
	ExpireOn *time.Time `json:"expire_on"`
}

type UpdatePlaylistItemRequest struct {
	Position *int       `json:"position"`
	Duration *int       `json:"duration"`
	ExpireOn *time.Time `json:"expire_on"`
}

type CreateTickerSeriesRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTickerRequest struct {
	Text       string   `json:"text" binding:"required"`
	Speed      *int     `json:"speed"`
	FontFamily *string  `json:"font_family"`
	FontSize   *float64 `json:"font_size"`
	Colour     *string  `json:"colour"`
	Outline    *string  `json:"outline"`
	Background *string  `json:"background"`
	Position   *int     `json:"position"`
}

type UpdateTickerRequest struct {
	Text     *string `json:"text"`
	Speed    *int    `json:"speed"`
	Position *int    `json:"position"`
}
