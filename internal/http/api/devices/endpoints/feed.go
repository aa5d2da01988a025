// Package endpoints serves the unauthenticated device and mirror feed API.
// Devices poll their feed on an interval; the composed payload is cached
// per device and served from cache until an admin write invalidates it.
package endpoints

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/db"
	"github.com/signoxe/server/internal/feed"
	"github.com/signoxe/server/internal/http/api"
	"github.com/signoxe/server/internal/http/api/devices/packets"
	"github.com/signoxe/server/internal/model"
	"github.com/signoxe/server/internal/report"
)

// Messages devices branch on. Players treat anything without a playlist
// key as a state message.
const (
	msgNewDevice      = "New device."
	msgInvalidID      = "Invalid device ID."
	msgNotEnabled     = "Device not enabled."
	msgNotConfigured  = "Device not configured."
	msgInvalidConfig  = "Invalid device configuration."
	msgNoPlaylist     = "Playlist not configured."
	msgNewMirror      = "New mirror."
	msgStatusUpdated  = "Status updated."
	msgUnknownDevice  = "New or invalid device."
	msgInvalidPayload = "Invalid payload."
)

// Store is the persistence surface the feed endpoints need.
type Store interface {
	feed.Store

	GetDeviceByDeviceID(deviceID string) (*model.Device, error)
	CreateDevice(deviceID string, enabled bool) (model.Device, error)
	UpdateDevicePing(deviceID string, at time.Time) error
	UpdateDeviceBuildVersion(deviceID string, buildVersion int, at time.Time) error
	ConsumeDeviceCommand(id int) (*string, error)
	ListDevicesByGroup(groupID int) ([]model.Device, error)

	GetDeviceGroupByID(id int) (model.DeviceGroup, error)
	ListDeviceGroupsByMirror(mirrorID int) ([]model.DeviceGroup, error)

	GetMirrorByMirrorID(mirrorID string) (*model.MirrorServer, error)
	GetMirrorByID(id int) (model.MirrorServer, error)
	CreateMirror(mirrorID, name string) (model.MirrorServer, error)
	UpdateMirrorPing(id int, at time.Time) error

	GetClientByID(id int) (model.Client, error)
	GetOrCreateClientSettings(clientID int) (model.ClientSettings, error)
	LatestAppManifest(channelID *int) (model.AppManifest, error)
}

var _ Store = (db.Store)(nil)

// FeedCache is the per-device payload cache with its invalidation
// generation counter.
type FeedCache interface {
	Get(ctx context.Context, deviceID string) (map[string]any, uint64, error)
	Put(ctx context.Context, deviceID string, payload map[string]any, gen uint64) error
}

type FeedController struct {
	store    Store
	cache    FeedCache
	reporter report.Reporter
}

func newFeedController(store Store, cache FeedCache, reporter report.Reporter) *FeedController {
	return &FeedController{store: store, cache: cache, reporter: reporter}
}

// DeviceModule mounts the public per-device feed endpoints.
func DeviceModule(store Store, cache FeedCache, reporter report.Reporter) api.Module {
	ctl := newFeedController(store, cache, reporter)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/:device_id", ctl.getDeviceFeed)
		c.PUBLIC_POST("/:device_id/app_build", ctl.reportAppBuild)
	})
}

// MirrorModule mounts the public mirror batch feed endpoint.
func MirrorModule(store Store, reporter report.Reporter) api.Module {
	ctl := newFeedController(store, nil, reporter)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/:mirror_id", ctl.getMirrorFeed)
	})
}

// GET /api/device/:device_id
//
// Terminal outcomes, in order: cached payload (command nulled), invalid id,
// new device, not enabled, not configured, invalid configuration, full feed.
// Errors devices act on are data in a 200 body, never status codes.
func (f *FeedController) getDeviceFeed(ctx *gin.Context) (any, *api.APIError) {
	deviceID := ctx.Param("device_id")
	now := time.Now()

	cached, gen, err := f.cache.Get(ctx.Request.Context(), deviceID)
	if err != nil {
		// Serving without the cache beats not serving at all.
		log.Warn().Err(err).Str("device_id", deviceID).Msg("cache read failed")
	}
	if cached != nil {
		// Commands are single-delivery; only a live computation may carry one.
		cached["command"] = nil
		if err := f.store.UpdateDevicePing(deviceID, now); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update ping"}
		}
		return cached, nil
	}

	if _, err := uuid.Parse(deviceID); err != nil {
		f.reporter.CaptureMessage("invalid device id", map[string]any{"device_id": deviceID})
		return gin.H{"error": msgInvalidID}, nil
	}

	device, err := f.store.GetDeviceByDeviceID(deviceID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load device"}
	}
	if device == nil {
		if _, err := f.store.CreateDevice(deviceID, false); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not register device"}
		}
		f.reporter.CaptureMessage("new device registered", map[string]any{"device_id": deviceID})
		return gin.H{"message": msgNewDevice}, nil
	}

	if err := f.store.UpdateDevicePing(deviceID, now); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update ping"}
	}

	if !device.Enabled {
		return gin.H{"message": msgNotEnabled}, nil
	}
	if device.GroupID == nil {
		return gin.H{"message": msgNotConfigured}, nil
	}
	if device.OwnerID == nil {
		f.reporter.CaptureMessage("device has group but no owner", map[string]any{"device_id": deviceID})
		return gin.H{"message": msgInvalidConfig}, nil
	}

	group, err := f.store.GetDeviceGroupByID(*device.GroupID)
	if err != nil {
		f.reporter.CaptureError(err, map[string]any{"device_id": deviceID, "group_id": *device.GroupID})
		return gin.H{"message": msgInvalidConfig}, nil
	}

	payload, msg, apiErr := f.composeDeviceFeed(*device, group, now)
	if apiErr != nil {
		return nil, apiErr
	}
	if msg != "" {
		return gin.H{"message": msg}, nil
	}

	if err := f.cache.Put(ctx.Request.Context(), deviceID, payload, gen); err != nil {
		log.Warn().Err(err).Str("device_id", deviceID).Msg("cache write failed")
	}
	return payload, nil
}

// composeDeviceFeed runs the full resolution pipeline for one device. A
// non-empty message means a terminal state response instead of a payload.
func (f *FeedController) composeDeviceFeed(device model.Device, group model.DeviceGroup, now time.Time) (map[string]any, string, *api.APIError) {
	payload, msg, apiErr := f.composeGroupFeed(group, now)
	if payload == nil {
		return nil, msg, apiErr
	}

	settings := payload["settings"].(map[string]any)
	settings["displayErrorLog"] = device.DebugMode

	client, err := f.store.GetClientByID(*device.OwnerID)
	if err != nil {
		f.reporter.CaptureError(err, map[string]any{"device_id": device.DeviceID, "owner_id": *device.OwnerID})
		return nil, msgInvalidConfig, nil
	}
	f.mergeClientSettings(settings, client)

	manifest, err := f.store.LatestAppManifest(client.AppBuildChannelID)
	if err != nil {
		return nil, "", &api.APIError{Code: http.StatusInternalServerError, Message: "could not load update manifest"}
	}
	payload["updates"] = manifest

	command, err := f.store.ConsumeDeviceCommand(device.ID)
	if err != nil {
		return nil, "", &api.APIError{Code: http.StatusInternalServerError, Message: "could not consume command"}
	}
	if command != nil {
		payload["command"] = *command
	} else {
		payload["command"] = nil
	}

	return payload, "", nil
}

// composeGroupFeed resolves, assembles and overlays the feed for a group.
func (f *FeedController) composeGroupFeed(group model.DeviceGroup, now time.Time) (map[string]any, string, *api.APIError) {
	cf, err := feed.ResolveContentFeed(f.store, group, now)
	if errors.Is(err, feed.ErrNotConfigured) {
		f.reporter.CaptureMessage("group has no resolvable content feed", map[string]any{"group_id": group.ID})
		return nil, msgInvalidConfig, nil
	}
	if err != nil {
		return nil, "", &api.APIError{Code: http.StatusInternalServerError, Message: "could not resolve content feed"}
	}

	payload, err := feed.Assemble(f.store, cf, now)
	if errors.Is(err, feed.ErrPlaylistNotConfigured) {
		return nil, msgNoPlaylist, nil
	}
	if err != nil {
		return nil, "", &api.APIError{Code: http.StatusInternalServerError, Message: "could not assemble feed"}
	}

	overlay, err := feed.ComputePriorityOverlay(f.store, group, now)
	if err != nil {
		return nil, "", &api.APIError{Code: http.StatusInternalServerError, Message: "could not compute priority overlay"}
	}
	overlay.Merge(payload)

	settings := payload["settings"].(map[string]any)
	settings["displayDateTime"] = group.DisplayDateTime
	settings["orientation"] = group.Orientation

	if group.MirrorID != nil {
		mirror, err := f.store.GetMirrorByID(*group.MirrorID)
		if err == nil && mirror.Address != nil {
			settings["backendUrl"] = *mirror.Address
		}
	}
	return payload, "", nil
}

func (f *FeedController) mergeClientSettings(settings map[string]any, client model.Client) {
	settings["heartbeatInterval"] = client.UpdateIntervalSec * 1000
	settings["displayDeviceLogo"] = client.DisplayDeviceLogo
	if client.LogoURL != nil {
		logo := map[string]any{"url": *client.LogoURL}
		if client.LogoChecksum != nil {
			logo["checksum"] = *client.LogoChecksum
		}
		settings["logo"] = logo
	}

	cs, err := f.store.GetOrCreateClientSettings(client.ID)
	if err != nil {
		log.Warn().Err(err).Int("client_id", client.ID).Msg("could not load client settings")
		return
	}
	settings["idleDetection"] = map[string]any{
		"enabled":   cs.IdleDetectionEnabled,
		"threshold": cs.IdleDetectionThreshold,
	}
}

// POST /api/device/:device_id/app_build
//
// Devices report the build they are running after applying an update.
func (f *FeedController) reportAppBuild(ctx *gin.Context) (any, *api.APIError) {
	deviceID := ctx.Param("device_id")

	var request packets.AppBuildStatusRequest
	if err := ctx.ShouldBindJSON(&request); err != nil || request.AppBuild == nil {
		return gin.H{"error": msgInvalidPayload}, nil
	}

	device, err := f.store.GetDeviceByDeviceID(deviceID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load device"}
	}
	if device == nil {
		return gin.H{"error": msgUnknownDevice}, nil
	}

	if err := f.store.UpdateDeviceBuildVersion(deviceID, *request.AppBuild, time.Now()); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update build version"}
	}
	return gin.H{"message": msgStatusUpdated}, nil
}

// GET /api/mirror/:mirror_id
//
// Mirrors fetch the feeds of every group assigned to them in one response.
// Mirror responses are always recomputed; the per-device cache is not used,
// but command consumption still happens per device.
func (f *FeedController) getMirrorFeed(ctx *gin.Context) (any, *api.APIError) {
	mirrorID := ctx.Param("mirror_id")
	now := time.Now()

	if _, err := uuid.Parse(mirrorID); err != nil {
		f.reporter.CaptureMessage("invalid mirror id", map[string]any{"mirror_id": mirrorID})
		return gin.H{"error": msgInvalidID}, nil
	}

	mirror, err := f.store.GetMirrorByMirrorID(mirrorID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load mirror"}
	}
	if mirror == nil {
		if _, err := f.store.CreateMirror(mirrorID, "Mirror "+mirrorID[:8]); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not register mirror"}
		}
		f.reporter.CaptureMessage("new mirror registered", map[string]any{"mirror_id": mirrorID})
		return gin.H{"message": msgNewMirror}, nil
	}

	if err := f.store.UpdateMirrorPing(mirror.ID, now); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update mirror ping"}
	}

	if mirror.Address == nil {
		return gin.H{"message": msgNotEnabled}, nil
	}

	groups, err := f.store.ListDeviceGroupsByMirror(mirror.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list mirror groups"}
	}

	groupFeeds := map[int]map[string]any{}
	deviceFeeds := map[string]map[string]any{}
	for _, group := range groups {
		payload, msg, apiErr := f.composeGroupFeed(group, now)
		if apiErr != nil {
			return nil, apiErr
		}
		if payload == nil {
			// A misconfigured group must not take down the whole batch.
			log.Warn().Int("group_id", group.ID).Str("state", msg).Msg("group unresolvable in mirror feed")
			groupFeeds[group.ID] = map[string]any{"message": msg}
		} else {
			groupFeeds[group.ID] = payload
		}

		members, err := f.store.ListDevicesByGroup(group.ID)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list group devices"}
		}
		for _, device := range members {
			command, err := f.store.ConsumeDeviceCommand(device.ID)
			if err != nil {
				return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not consume command"}
			}
			entry := map[string]any{
				"group_id": group.ID,
				"command":  nil,
				"settings": map[string]any{
					"displayErrorLog": device.DebugMode,
					"displayDateTime": group.DisplayDateTime,
					"orientation":     group.Orientation,
				},
			}
			if command != nil {
				entry["command"] = *command
			}
			deviceFeeds[device.DeviceID] = entry
		}
	}

	settings := map[string]any{"backendUrl": *mirror.Address}
	updates := model.DefaultAppManifest()
	if mirror.OwnerID != nil {
		client, err := f.store.GetClientByID(*mirror.OwnerID)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load mirror owner"}
		}
		f.mergeClientSettings(settings, client)
		updates, err = f.store.LatestAppManifest(client.AppBuildChannelID)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load update manifest"}
		}
	}

	return map[string]any{
		"device_feeds": deviceFeeds,
		"group_feeds":  groupFeeds,
		"settings":     settings,
		"updates":      updates,
	}, nil
}
