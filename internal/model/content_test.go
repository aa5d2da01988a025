package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlaylistItemExpired(t *testing.T) {
	now := time.Now()

	var item PlaylistItem
	assert.False(t, item.Expired(now), "items without expiry never expire")

	past := now.Add(-time.Hour)
	item.ExpireOn = &past
	assert.True(t, item.Expired(now))

	future := now.Add(time.Hour)
	item.ExpireOn = &future
	assert.False(t, item.Expired(now))

	item.ExpireOn = &now
	assert.True(t, item.Expired(now), "expiry instant itself is expired")
}

func TestContentFeedSettings(t *testing.T) {
	cf := ContentFeed{ImageDuration: 10, WebDuration: 30}
	settings := cf.Settings()
	assert.Equal(t, 10, settings["imageDuration"])
	assert.Equal(t, 30, settings["webDuration"])
	assert.Equal(t, false, settings["overlayTicker"])
	assert.Equal(t, false, settings["displayTicker"])

	seriesID := 5
	cf.TickerSeriesID = &seriesID
	cf.OverlayTicker = true
	settings = cf.Settings()
	assert.Equal(t, true, settings["overlayTicker"])
	assert.Equal(t, true, settings["displayTicker"],
		"an attached series enables the ticker even when empty")
}

func TestValidCommand(t *testing.T) {
	assert.True(t, ValidCommand(RebootCommand))
	assert.True(t, ValidCommand(ScreenshotCommand))
	assert.False(t, ValidCommand("rm -rf"))

	// wire values devices already parse
	assert.Equal(t, "change-realm:stage", SetRealmStagingCommand)
	assert.Equal(t, "screenshot:burst", ScreenshotBurstCommand)
}

func TestValidPriorityDuration(t *testing.T) {
	assert.True(t, ValidPriorityDuration(0))
	assert.True(t, ValidPriorityDuration(15))
	assert.False(t, ValidPriorityDuration(20))
}
