package model

import "time"

// Supported device commands. Commands are single-delivery: a device receives
// a pending command exactly once through its feed.
const (
	RebootCommand          = "reboot"
	FreeSpaceCommand       = "free-space"
	ClearMediaCommand      = "clear-media"
	ResetDeviceCommand     = "reset-device"
	SetRealmDevCommand     = "change-realm:dev"
	SetRealmStagingCommand = "change-realm:stage"
	SetRealmLiveCommand    = "change-realm:live"
	ScreenshotCommand      = "screenshot"
	ScreenshotBurstCommand = "screenshot:burst"
)

// Commands lists every command a device understands.
var Commands = []string{
	RebootCommand,
	FreeSpaceCommand,
	ClearMediaCommand,
	ResetDeviceCommand,
	SetRealmDevCommand,
	SetRealmStagingCommand,
	SetRealmLiveCommand,
	ScreenshotCommand,
	ScreenshotBurstCommand,
}

// ValidCommand reports whether cmd is a known device command.
func ValidCommand(cmd string) bool {
	for _, c := range Commands {
		if c == cmd {
			return true
		}
	}
	return false
}

// Device represents a media player connected to the service.
type Device struct {
	ID           int       `db:"id"            json:"id"`
	DeviceID     string    `db:"device_id"     json:"device_id"`
	Name         string    `db:"name"          json:"name"`
	LastPing     time.Time `db:"last_ping"     json:"last_ping"`
	GroupID      *int      `db:"group_id"      json:"group_id,omitempty"`
	DebugMode    bool      `db:"debug_mode"    json:"debug_mode"`
	Enabled      bool      `db:"enabled"       json:"enabled"`
	OwnerID      *int      `db:"owner_id"      json:"owner_id,omitempty"`
	BuildVersion *int      `db:"build_version" json:"build_version,omitempty"`
	Command      *string   `db:"command"       json:"command,omitempty"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// MirrorServer is a local relay that serves feeds to many devices on a site
// network. A mirror aggregates the feeds of every group assigned to it.
type MirrorServer struct {
	ID       int       `db:"id"        json:"id"`
	MirrorID string    `db:"mirror_id" json:"mirror_id"`
	Name     string    `db:"name"      json:"name"`
	Address  *string   `db:"address"   json:"address,omitempty"`
	OwnerID  *int      `db:"owner_id"  json:"owner_id,omitempty"`
	LastPing time.Time `db:"last_ping" json:"last_ping"`
}
