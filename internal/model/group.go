package model

import "time"

// Screen orientations supported by the player.
const (
	OrientationLandscape        = "LANDSCAPE"
	OrientationReverseLandscape = "REVERSE_LANDSCAPE"
	OrientationPortrait         = "PORTRAIT"
	OrientationReversePortrait  = "REVERSE_PORTRAIT"
)

// Orientations lists the valid screen orientations.
var Orientations = []string{
	OrientationLandscape,
	OrientationReverseLandscape,
	OrientationPortrait,
	OrientationReversePortrait,
}

// ValidOrientation reports whether o is a known screen orientation.
func ValidOrientation(o string) bool {
	for _, v := range Orientations {
		if v == o {
			return true
		}
	}
	return false
}

// DeviceGroup is a named collection of devices sharing schedule and content
// configuration. FeedID is the group's fallback content feed, used when no
// schedule entry applies.
type DeviceGroup struct {
	ID              int    `db:"id"                json:"id"`
	Name            string `db:"name"              json:"name"`
	FeedID          *int   `db:"feed_id"           json:"feed_id,omitempty"`
	OwnerID         *int   `db:"owner_id"          json:"owner_id,omitempty"`
	DisplayDateTime bool   `db:"display_date_time" json:"display_date_time"`
	MirrorID        *int   `db:"mirror_id"         json:"mirror_id,omitempty"`
	Orientation     string `db:"orientation"       json:"orientation"`
}

// Valid priority message durations in minutes. Zero means indefinite.
var PriorityDurations = []int{0, 15, 30, 45, 60}

// ValidPriorityDuration reports whether d is an allowed duration.
func ValidPriorityDuration(d int) bool {
	for _, v := range PriorityDurations {
		if v == d {
			return true
		}
	}
	return false
}

// PriorityMessage is a one-to-one interrupt attached to a device group. It is
// created lazily on first interaction and reused across activations; being
// "active" is a time-dependent predicate, not a stored flag.
type PriorityMessage struct {
	ID              int        `db:"id"               json:"id"`
	DeviceGroupID   int        `db:"device_group_id"  json:"device_group_id"`
	ActivatedAt     *time.Time `db:"activated_at"     json:"activated_at,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	MessageAssetID  *int       `db:"message_asset_id" json:"message_asset_id,omitempty"`
}
