package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signoxe/server/internal/model"
)

func imageAsset(id int, url string) model.Asset {
	return model.Asset{ID: id, Type: model.AssetImage, MediaURL: strPtr(url), Checksum: strPtr("abc123")}
}

func TestAssembleNoPlaylist(t *testing.T) {
	s := &stubStore{}
	_, err := Assemble(s, model.ContentFeed{ID: 1}, tuesdayNoon)
	assert.ErrorIs(t, err, ErrPlaylistNotConfigured)
}

func TestAssembleBasicPlaylist(t *testing.T) {
	s := &stubStore{
		items: []model.PlaylistItem{
			{ID: 1, AssetID: 10, Position: 0, Duration: intPtr(5)},
			{ID: 2, AssetID: 11, Position: 1},
		},
		assets: map[int]model.Asset{
			10: imageAsset(10, "https://cdn/one.png"),
			11: {ID: 11, Type: model.AssetVideo, MediaURL: strPtr("https://cdn/clip.mp4"), Checksum: strPtr("def456")},
		},
	}
	cf := model.ContentFeed{ID: 1, PlaylistID: intPtr(7), ImageDuration: 10, WebDuration: 30}

	payload, err := Assemble(s, cf, tuesdayNoon)
	require.NoError(t, err)

	playlist := payload["playlist"].([]map[string]any)
	require.Len(t, playlist, 2)
	assert.Equal(t, "image", playlist[0]["type"])
	assert.Equal(t, "https://cdn/one.png", playlist[0]["url"])
	assert.Equal(t, 5, playlist[0]["duration"], "item duration fills in for assets without their own")
	assert.Equal(t, "video", playlist[1]["type"])
	_, hasDuration := playlist[1]["duration"]
	assert.False(t, hasDuration)

	assert.Empty(t, payload["tickers"])
	settings := payload["settings"].(map[string]any)
	assert.Equal(t, 10, settings["imageDuration"])
	assert.Equal(t, false, settings["displayTicker"])
}

func TestAssembleDurationTypeDefaults(t *testing.T) {
	// With no duration on the asset or the item, images and web content
	// fall back to the feed's per-type defaults. Videos play to their
	// own length and stay open-ended.
	s := &stubStore{
		items: []model.PlaylistItem{
			{ID: 1, AssetID: 10},
			{ID: 2, AssetID: 11},
			{ID: 3, AssetID: 12},
		},
		assets: map[int]model.Asset{
			10: imageAsset(10, "https://cdn/a.png"),
			11: {ID: 11, Type: model.AssetWeb, WebURL: strPtr("https://example.com")},
			12: {ID: 12, Type: model.AssetVideo, MediaURL: strPtr("https://cdn/v.mp4"), Checksum: strPtr("v1")},
		},
	}
	cf := model.ContentFeed{PlaylistID: intPtr(7), ImageDuration: 12, WebDuration: 45}

	payload, err := Assemble(s, cf, tuesdayNoon)
	require.NoError(t, err)

	playlist := payload["playlist"].([]map[string]any)
	require.Len(t, playlist, 3)
	assert.Equal(t, 12, playlist[0]["duration"])
	assert.Equal(t, 45, playlist[1]["duration"])
	_, hasDuration := playlist[2]["duration"]
	assert.False(t, hasDuration)
}

func TestAssembleSkipsExpiredItems(t *testing.T) {
	past := tuesdayNoon.Add(-time.Hour)
	s := &stubStore{
		items: []model.PlaylistItem{
			{ID: 1, AssetID: 10, ExpireOn: &past},
			{ID: 2, AssetID: 11},
		},
		assets: map[int]model.Asset{
			10: imageAsset(10, "https://cdn/old.png"),
			11: imageAsset(11, "https://cdn/current.png"),
		},
	}
	cf := model.ContentFeed{PlaylistID: intPtr(7)}

	payload, err := Assemble(s, cf, tuesdayNoon)
	require.NoError(t, err)

	playlist := payload["playlist"].([]map[string]any)
	require.Len(t, playlist, 1)
	assert.Equal(t, "https://cdn/current.png", playlist[0]["url"])
}

func TestAssembleSkipsBrokenItems(t *testing.T) {
	// An image missing its media and a feed with no snippet today are both
	// swallowed; the remaining item still plays.
	s := &stubStore{
		items: []model.PlaylistItem{
			{ID: 1, AssetID: 10},
			{ID: 2, AssetID: 11},
			{ID: 3, AssetID: 12},
		},
		assets: map[int]model.Asset{
			10: {ID: 10, Type: model.AssetImage},
			11: {ID: 11, Type: model.AssetFeed},
			12: imageAsset(12, "https://cdn/good.png"),
		},
	}
	cf := model.ContentFeed{PlaylistID: intPtr(7)}

	payload, err := Assemble(s, cf, tuesdayNoon)
	require.NoError(t, err)

	playlist := payload["playlist"].([]map[string]any)
	require.Len(t, playlist, 1)
	assert.Equal(t, "https://cdn/good.png", playlist[0]["url"])
}

func TestAssembleFeedAssetUsesSnippet(t *testing.T) {
	s := &stubStore{
		items:  []model.PlaylistItem{{ID: 1, AssetID: 10, Duration: intPtr(15)}},
		assets: map[int]model.Asset{10: {ID: 10, Type: model.AssetFeed}},
		snippet: &model.FeedSnippet{
			FeedAssetID: 10,
			URL:         "https://cdn/snippet.html",
			Checksum:    "feed123",
			Duration:    intPtr(45),
		},
	}
	cf := model.ContentFeed{PlaylistID: intPtr(7)}

	payload, err := Assemble(s, cf, tuesdayNoon)
	require.NoError(t, err)

	playlist := payload["playlist"].([]map[string]any)
	require.Len(t, playlist, 1)
	assert.Equal(t, "web", playlist[0]["type"])
	assert.Equal(t, "https://cdn/snippet.html", playlist[0]["url"])
	assert.Equal(t, 45, playlist[0]["duration"], "snippet duration wins over item duration")
}

func TestAssembleCalendarAsset(t *testing.T) {
	s := &stubStore{
		items: []model.PlaylistItem{{ID: 1, AssetID: 10, Duration: intPtr(20)}},
		assets: map[int]model.Asset{
			10: {ID: 10, Type: model.AssetCalendar, CalendarURL: strPtr("https://cal.example/feed.ics")},
		},
		event: &model.CalendarEvent{Title: "Standup", Content: "Room 4"},
	}
	cf := model.ContentFeed{PlaylistID: intPtr(7)}

	payload, err := Assemble(s, cf, tuesdayNoon)
	require.NoError(t, err)

	playlist := payload["playlist"].([]map[string]any)
	require.Len(t, playlist, 1)
	assert.Equal(t, "calendar", playlist[0]["type"])
	assert.Equal(t, "Standup", playlist[0]["title"])
	assert.Equal(t, 20, playlist[0]["duration"])
	assert.NotEmpty(t, playlist[0]["checksum"])
}

func TestAssembleTickers(t *testing.T) {
	s := &stubStore{
		items:  []model.PlaylistItem{},
		assets: map[int]model.Asset{},
		tickers: []model.Ticker{
			{Text: "first", Speed: model.TickerNormal},
			{Text: "second", Speed: model.TickerFast},
		},
	}
	cf := model.ContentFeed{PlaylistID: intPtr(7), TickerSeriesID: intPtr(3)}

	payload, err := Assemble(s, cf, tuesdayNoon)
	require.NoError(t, err)

	tickers := payload["tickers"].([]map[string]any)
	require.Len(t, tickers, 2)
	assert.Equal(t, "first", tickers[0]["text"])
	assert.Equal(t, model.TickerFast, tickers[1]["speed"])

	settings := payload["settings"].(map[string]any)
	assert.Equal(t, true, settings["displayTicker"])
}

func TestAssetDictWebVariants(t *testing.T) {
	s := &stubStore{}

	hosted := model.Asset{ID: 1, Type: model.AssetWeb, MediaURL: strPtr("https://cdn/rendered.html")}
	dict, err := AssetDict(s, hosted, tuesdayNoon)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/rendered.html", dict["url"])
	assert.NotEmpty(t, dict["checksum"])

	external := model.Asset{ID: 2, Type: model.AssetWeb, WebURL: strPtr("https://example.com")}
	dict, err = AssetDict(s, external, tuesdayNoon)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", dict["url"])

	empty := model.Asset{ID: 3, Type: model.AssetWeb}
	_, err = AssetDict(s, empty, tuesdayNoon)
	assert.ErrorIs(t, err, ErrInvalidAsset)
}

func TestAssetDictCalendarWithoutURL(t *testing.T) {
	s := &stubStore{event: &model.CalendarEvent{Title: "x"}}
	asset := model.Asset{ID: 1, Type: model.AssetCalendar}
	_, err := AssetDict(s, asset, tuesdayNoon)
	assert.ErrorIs(t, err, ErrInvalidAsset)
}

func TestAssetDictNoContent(t *testing.T) {
	s := &stubStore{}

	_, err := AssetDict(s, model.Asset{ID: 1, Type: model.AssetFeed}, tuesdayNoon)
	assert.ErrorIs(t, err, ErrNoContent)

	cal := model.Asset{ID: 2, Type: model.AssetCalendar, CalendarURL: strPtr("https://cal.example/f.ics")}
	_, err = AssetDict(s, cal, tuesdayNoon)
	assert.ErrorIs(t, err, ErrNoContent)
}
