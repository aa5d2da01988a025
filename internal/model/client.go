package model

import "time"

// Client represents a tenant of the service. Devices, groups, assets,
// playlists and ticker series are isolated per client.
type Client struct {
	ID                int       `db:"id"                   json:"id"`
	Name              string    `db:"name"                 json:"name"`
	LogoURL           *string   `db:"logo_url"             json:"logo_url,omitempty"`
	LogoChecksum      *string   `db:"logo_checksum"        json:"logo_checksum,omitempty"`
	DisplayDeviceLogo bool      `db:"display_device_logo"  json:"display_device_logo"`
	UpdateIntervalSec int       `db:"update_interval_sec"  json:"update_interval_sec"`
	AppBuildChannelID *int      `db:"app_build_channel_id" json:"app_build_channel_id,omitempty"`
	CreatedAt         time.Time `db:"created_at"           json:"created_at"`
}

// ClientSettings holds per-client device behaviour settings. Rows are
// created lazily the first time a client's settings are needed.
type ClientSettings struct {
	ID                     int  `db:"id"                       json:"id"`
	ClientID               int  `db:"client_id"                json:"client_id"`
	IdleDetectionEnabled   bool `db:"idle_detection_enabled"   json:"idle_detection_enabled"`
	IdleDetectionThreshold int  `db:"idle_detection_threshold" json:"idle_detection_threshold"`
}

// AppBuildChannel is a distinct update channel for app builds.
type AppBuildChannel struct {
	ID   int    `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}

// AppBuild is a build of the player application that can be pushed to devices.
type AppBuild struct {
	ID          int       `db:"id"           json:"id"`
	VersionCode int       `db:"version_code" json:"version_code"`
	URL         string    `db:"url"          json:"url"`
	Checksum    string    `db:"checksum"     json:"checksum"`
	ChannelID   *int      `db:"channel_id"   json:"channel_id,omitempty"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

// AppManifest is the update manifest included in every device feed.
type AppManifest struct {
	Version   int    `json:"version"`
	UpdateURL string `json:"update_url"`
	Checksum  string `json:"checksum"`
}

// DefaultAppManifest is returned when a build channel has no builds. Devices
// can always act on it safely.
func DefaultAppManifest() AppManifest {
	return AppManifest{Version: 1, UpdateURL: "", Checksum: ""}
}
