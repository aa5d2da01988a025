package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signoxe/server/internal/http/api"
	"github.com/signoxe/server/internal/model"
	"github.com/signoxe/server/internal/report"
)

const (
	testDeviceID = "09eaa9c4-32bd-4226-82c2-79f372267bfd"
	testMirrorID = "5f2b7c1e-aaaa-4b6e-9c1d-000000000001"
)

type registration struct {
	deviceID string
	enabled  bool
}

// stubStore backs the endpoint tests with in-memory data.
type stubStore struct {
	devices      map[string]*model.Device
	registered   []registration
	pings        map[string]time.Time
	builds       map[string]int
	commands     map[int]*string
	groups       map[int]model.DeviceGroup
	groupDevices map[int][]model.Device
	clients      map[int]model.Client
	mirrors      map[string]*model.MirrorServer
	mirrorsByID  map[int]model.MirrorServer
	mirrorGroups []model.DeviceGroup
	manifest     model.AppManifest

	feeds   map[int]model.ContentFeed
	items   []model.PlaylistItem
	assets  map[int]model.Asset
	tickers []model.Ticker
	special *model.SpecialContent
	timed   *model.ScheduledContent
	def     *model.ScheduledContent
	snippet *model.FeedSnippet
	event   *model.CalendarEvent
	pm      *model.PriorityMessage
}

var _ Store = (*stubStore)(nil)

func (s *stubStore) GetDeviceByDeviceID(deviceID string) (*model.Device, error) {
	return s.devices[deviceID], nil
}

func (s *stubStore) CreateDevice(deviceID string, enabled bool) (model.Device, error) {
	s.registered = append(s.registered, registration{deviceID, enabled})
	return model.Device{ID: 99, DeviceID: deviceID, Enabled: enabled}, nil
}

func (s *stubStore) UpdateDevicePing(deviceID string, at time.Time) error {
	if s.pings == nil {
		s.pings = map[string]time.Time{}
	}
	s.pings[deviceID] = at
	return nil
}

func (s *stubStore) UpdateDeviceBuildVersion(deviceID string, buildVersion int, _ time.Time) error {
	if s.builds == nil {
		s.builds = map[string]int{}
	}
	s.builds[deviceID] = buildVersion
	return nil
}

func (s *stubStore) ConsumeDeviceCommand(id int) (*string, error) {
	cmd := s.commands[id]
	if cmd != nil {
		s.commands[id] = nil
	}
	return cmd, nil
}

func (s *stubStore) ListDevicesByGroup(groupID int) ([]model.Device, error) {
	return s.groupDevices[groupID], nil
}

func (s *stubStore) GetDeviceGroupByID(id int) (model.DeviceGroup, error) {
	g, ok := s.groups[id]
	if !ok {
		return model.DeviceGroup{}, fmt.Errorf("group %d not found", id)
	}
	return g, nil
}

func (s *stubStore) ListDeviceGroupsByMirror(int) ([]model.DeviceGroup, error) {
	return s.mirrorGroups, nil
}

func (s *stubStore) GetMirrorByMirrorID(mirrorID string) (*model.MirrorServer, error) {
	return s.mirrors[mirrorID], nil
}

func (s *stubStore) GetMirrorByID(id int) (model.MirrorServer, error) {
	m, ok := s.mirrorsByID[id]
	if !ok {
		return model.MirrorServer{}, fmt.Errorf("mirror %d not found", id)
	}
	return m, nil
}

func (s *stubStore) CreateMirror(mirrorID, name string) (model.MirrorServer, error) {
	m := model.MirrorServer{ID: 50, MirrorID: mirrorID, Name: name}
	if s.mirrors == nil {
		s.mirrors = map[string]*model.MirrorServer{}
	}
	s.mirrors[mirrorID] = &m
	return m, nil
}

func (s *stubStore) UpdateMirrorPing(int, time.Time) error { return nil }

func (s *stubStore) GetClientByID(id int) (model.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return model.Client{}, fmt.Errorf("client %d not found", id)
	}
	return c, nil
}

func (s *stubStore) GetOrCreateClientSettings(clientID int) (model.ClientSettings, error) {
	return model.ClientSettings{ClientID: clientID, IdleDetectionEnabled: true, IdleDetectionThreshold: 300}, nil
}

func (s *stubStore) LatestAppManifest(*int) (model.AppManifest, error) {
	if s.manifest.Version == 0 {
		return model.DefaultAppManifest(), nil
	}
	return s.manifest, nil
}

func (s *stubStore) GetSpecialContent(int, time.Time) (*model.SpecialContent, error) {
	return s.special, nil
}

func (s *stubStore) GetScheduledContentAt(_ int, _ model.Weekday, at model.TimeOfDay) (*model.ScheduledContent, error) {
	if s.timed != nil && s.timed.Contains(at) {
		return s.timed, nil
	}
	return nil, nil
}

func (s *stubStore) GetDefaultScheduledContent(int, model.Weekday) (*model.ScheduledContent, error) {
	return s.def, nil
}

func (s *stubStore) GetContentFeedByID(id int) (model.ContentFeed, error) {
	cf, ok := s.feeds[id]
	if !ok {
		return model.ContentFeed{}, fmt.Errorf("content feed %d not found", id)
	}
	return cf, nil
}

func (s *stubStore) ListPlaylistItems(int) ([]model.PlaylistItem, error) { return s.items, nil }

func (s *stubStore) GetAssetByID(id int) (model.Asset, error) {
	a, ok := s.assets[id]
	if !ok {
		return model.Asset{}, fmt.Errorf("asset %d not found", id)
	}
	return a, nil
}

func (s *stubStore) GetFeedSnippetForDate(int, time.Time) (*model.FeedSnippet, error) {
	return s.snippet, nil
}

func (s *stubStore) GetCurrentCalendarEvent(int, time.Time) (*model.CalendarEvent, error) {
	return s.event, nil
}

func (s *stubStore) ListTickersBySeries(int) ([]model.Ticker, error) { return s.tickers, nil }

func (s *stubStore) GetPriorityMessage(int) (*model.PriorityMessage, error) { return s.pm, nil }

func (s *stubStore) DeactivatePriorityMessage(int) error {
	if s.pm != nil {
		s.pm.ActivatedAt = nil
	}
	return nil
}

// stubFeedCache records puts and serves whatever was stored.
type stubFeedCache struct {
	payloads map[string]map[string]any
	gens     map[string]uint64
	puts     int
}

func newStubFeedCache() *stubFeedCache {
	return &stubFeedCache{payloads: map[string]map[string]any{}, gens: map[string]uint64{}}
}

func (c *stubFeedCache) Get(_ context.Context, deviceID string) (map[string]any, uint64, error) {
	return c.payloads[deviceID], c.gens[deviceID], nil
}

func (c *stubFeedCache) Put(_ context.Context, deviceID string, payload map[string]any, gen uint64) error {
	c.puts++
	if gen == c.gens[deviceID] {
		c.payloads[deviceID] = payload
	}
	return nil
}

func newDeviceRouter(s *stubStore, c FeedCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/device"}, DeviceModule(s, c, report.NewLogReporter()))
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/mirror"}, MirrorModule(s, report.NewLogReporter()))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

// configuredStore builds a store with one fully configured device: enabled,
// grouped, owned, group fallback feed with a single image playlist item.
func configuredStore() *stubStore {
	return &stubStore{
		devices: map[string]*model.Device{
			testDeviceID: {ID: 1, DeviceID: testDeviceID, Enabled: true, GroupID: intPtr(3), OwnerID: intPtr(7)},
		},
		commands: map[int]*string{},
		groups: map[int]model.DeviceGroup{
			3: {ID: 3, Name: "lobby", FeedID: intPtr(5), OwnerID: intPtr(7), Orientation: model.OrientationLandscape},
		},
		clients: map[int]model.Client{
			7: {ID: 7, Name: "acme", UpdateIntervalSec: 30},
		},
		feeds: map[int]model.ContentFeed{
			5: {ID: 5, Title: "default loop", PlaylistID: intPtr(9), ImageDuration: 10, WebDuration: 30},
		},
		items: []model.PlaylistItem{{ID: 1, PlaylistID: 9, AssetID: 11}},
		assets: map[int]model.Asset{
			11: {ID: 11, Type: model.AssetImage, MediaURL: strPtr("https://cdn/a.png"), Checksum: strPtr("c1")},
		},
		manifest: model.AppManifest{Version: 4, UpdateURL: "https://cdn/app-4.apk", Checksum: "m4"},
	}
}

func TestDeviceFeedCacheHit(t *testing.T) {
	s := configuredStore()
	cache := newStubFeedCache()
	cache.payloads[testDeviceID] = map[string]any{"playlist": []any{}, "command": "reboot"}
	r := newDeviceRouter(s, cache)

	w, body := doJSON(t, r, http.MethodGet, "/api/device/"+testDeviceID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Nil(t, body["command"], "commands never ride a cached payload")
	assert.Contains(t, s.pings, testDeviceID, "cache hits still refresh the ping")
	assert.Zero(t, cache.puts)
}

func TestDeviceFeedInvalidID(t *testing.T) {
	r := newDeviceRouter(configuredStore(), newStubFeedCache())

	w, body := doJSON(t, r, http.MethodGet, "/api/device/not-a-uuid", nil)
	assert.Equal(t, http.StatusOK, w.Code, "device-facing errors are data, not status codes")
	assert.Equal(t, "Invalid device ID.", body["error"])
}

func TestDeviceFeedRegistersUnknown(t *testing.T) {
	s := configuredStore()
	cache := newStubFeedCache()
	r := newDeviceRouter(s, cache)

	unknown := "11111111-2222-4333-8444-555555555555"
	w, body := doJSON(t, r, http.MethodGet, "/api/device/"+unknown, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New device.", body["message"])

	require.Len(t, s.registered, 1)
	assert.Equal(t, unknown, s.registered[0].deviceID)
	assert.False(t, s.registered[0].enabled, "fresh devices wait for an admin to enable them")
	assert.Zero(t, cache.puts, "state responses are never cached")
}

func TestDeviceFeedStateMessages(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*stubStore)
		message string
	}{
		{"disabled", func(s *stubStore) {
			s.devices[testDeviceID].Enabled = false
		}, "Device not enabled."},
		{"no group", func(s *stubStore) {
			s.devices[testDeviceID].GroupID = nil
		}, "Device not configured."},
		{"no owner", func(s *stubStore) {
			s.devices[testDeviceID].OwnerID = nil
		}, "Invalid device configuration."},
		{"group has no feed", func(s *stubStore) {
			g := s.groups[3]
			g.FeedID = nil
			s.groups[3] = g
		}, "Invalid device configuration."},
		{"feed has no playlist", func(s *stubStore) {
			cf := s.feeds[5]
			cf.PlaylistID = nil
			s.feeds[5] = cf
		}, "Playlist not configured."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := configuredStore()
			c.mutate(s)
			cache := newStubFeedCache()
			r := newDeviceRouter(s, cache)

			w, body := doJSON(t, r, http.MethodGet, "/api/device/"+testDeviceID, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, c.message, body["message"])
			assert.Contains(t, s.pings, testDeviceID)
			assert.Zero(t, cache.puts)
		})
	}
}

func TestDeviceFeedFullPayload(t *testing.T) {
	s := configuredStore()
	reboot := model.RebootCommand
	s.commands[1] = &reboot
	cache := newStubFeedCache()
	r := newDeviceRouter(s, cache)

	w, body := doJSON(t, r, http.MethodGet, "/api/device/"+testDeviceID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	playlist := body["playlist"].([]any)
	require.Len(t, playlist, 1)
	item := playlist[0].(map[string]any)
	assert.Equal(t, "image", item["type"])
	assert.Equal(t, "https://cdn/a.png", item["url"])

	settings := body["settings"].(map[string]any)
	assert.Equal(t, false, settings["displayErrorLog"])
	assert.Equal(t, model.OrientationLandscape, settings["orientation"])
	assert.EqualValues(t, 30000, settings["heartbeatInterval"])
	idle := settings["idleDetection"].(map[string]any)
	assert.Equal(t, true, idle["enabled"])
	assert.EqualValues(t, 300, idle["threshold"])

	assert.Equal(t, false, body["bringToFront"])
	assert.Nil(t, body["priorityMessage"])

	updates := body["updates"].(map[string]any)
	assert.EqualValues(t, 4, updates["version"])

	assert.Equal(t, model.RebootCommand, body["command"])
	assert.Nil(t, s.commands[1], "the pending command is consumed by delivery")
	assert.Equal(t, 1, cache.puts)

	// second poll hits the cache and the command does not repeat
	w, body = doJSON(t, r, http.MethodGet, "/api/device/"+testDeviceID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["command"])
	assert.Equal(t, 1, cache.puts)
}

func TestDeviceFeedPriorityMessage(t *testing.T) {
	s := configuredStore()
	activated := time.Now().Add(-5 * time.Minute)
	s.pm = &model.PriorityMessage{
		DeviceGroupID:   3,
		ActivatedAt:     &activated,
		DurationMinutes: intPtr(15),
		MessageAssetID:  intPtr(11),
	}
	r := newDeviceRouter(s, newStubFeedCache())

	w, body := doJSON(t, r, http.MethodGet, "/api/device/"+testDeviceID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, true, body["bringToFront"])
	pm := body["priorityMessage"].(map[string]any)
	assert.Equal(t, "https://cdn/a.png", pm["url"])
}

func TestReportAppBuild(t *testing.T) {
	s := configuredStore()
	r := newDeviceRouter(s, newStubFeedCache())

	w, body := doJSON(t, r, http.MethodPost, "/api/device/"+testDeviceID+"/app_build", map[string]any{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invalid payload.", body["error"])

	unknown := "11111111-2222-4333-8444-555555555555"
	w, body = doJSON(t, r, http.MethodPost, "/api/device/"+unknown+"/app_build", map[string]any{"app_build": 4})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New or invalid device.", body["error"])

	w, body = doJSON(t, r, http.MethodPost, "/api/device/"+testDeviceID+"/app_build", map[string]any{"app_build": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Status updated.", body["message"])
	assert.Equal(t, 4, s.builds[testDeviceID])
}

func TestMirrorFeedRegistersUnknown(t *testing.T) {
	s := configuredStore()
	r := newDeviceRouter(s, newStubFeedCache())

	w, body := doJSON(t, r, http.MethodGet, "/api/mirror/"+testMirrorID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New mirror.", body["message"])
	assert.Equal(t, "Mirror "+testMirrorID[:8], s.mirrors[testMirrorID].Name)
}

func TestMirrorFeedNotEnabled(t *testing.T) {
	s := configuredStore()
	s.mirrors = map[string]*model.MirrorServer{
		testMirrorID: {ID: 50, MirrorID: testMirrorID, Name: "site"},
	}
	r := newDeviceRouter(s, newStubFeedCache())

	w, body := doJSON(t, r, http.MethodGet, "/api/mirror/"+testMirrorID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Device not enabled.", body["message"])
}

func TestMirrorFeedBatch(t *testing.T) {
	s := configuredStore()
	addr := "http://10.0.0.5:8080"
	s.mirrors = map[string]*model.MirrorServer{
		testMirrorID: {ID: 50, MirrorID: testMirrorID, Name: "site", Address: &addr, OwnerID: intPtr(7)},
	}
	s.mirrorGroups = []model.DeviceGroup{s.groups[3]}
	reboot := model.RebootCommand
	s.commands[1] = &reboot
	s.groupDevices = map[int][]model.Device{
		3: {
			{ID: 1, DeviceID: testDeviceID, Enabled: true},
			{ID: 2, DeviceID: "22222222-3333-4444-8555-666666666666", Enabled: false},
		},
	}
	r := newDeviceRouter(s, newStubFeedCache())

	w, body := doJSON(t, r, http.MethodGet, "/api/mirror/"+testMirrorID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	groupFeeds := body["group_feeds"].(map[string]any)
	require.Contains(t, groupFeeds, "3")
	feed3 := groupFeeds["3"].(map[string]any)
	assert.Len(t, feed3["playlist"].([]any), 1)

	deviceFeeds := body["device_feeds"].(map[string]any)
	require.Len(t, deviceFeeds, 2)

	first := deviceFeeds[testDeviceID].(map[string]any)
	assert.EqualValues(t, 3, first["group_id"])
	assert.Equal(t, model.RebootCommand, first["command"])
	assert.Nil(t, s.commands[1], "mirror delivery consumes pending commands")
	firstSettings := first["settings"].(map[string]any)
	assert.Equal(t, model.OrientationLandscape, firstSettings["orientation"])

	second := deviceFeeds["22222222-3333-4444-8555-666666666666"].(map[string]any)
	assert.Nil(t, second["command"])

	settings := body["settings"].(map[string]any)
	assert.Equal(t, addr, settings["backendUrl"])
	assert.EqualValues(t, 30000, settings["heartbeatInterval"])

	updates := body["updates"].(map[string]any)
	assert.EqualValues(t, 4, updates["version"])
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
