package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/db"
	"github.com/signoxe/server/internal/feedcache"
	"github.com/signoxe/server/internal/http/api"
	"github.com/signoxe/server/internal/http/api/admin/packets"
	"github.com/signoxe/server/internal/model"
)

type DeviceController struct {
	store db.Store
	inv   *feedcache.Invalidator
}

func newDeviceController(store db.Store, inv *feedcache.Invalidator) *DeviceController {
	return &DeviceController{store: store, inv: inv}
}

// DeviceModule mounts all authenticated /devices endpoints.
func DeviceModule(store db.Store, inv *feedcache.Invalidator) api.Module {
	ctl := newDeviceController(store, inv)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/devices", ctl.listDevices)
		c.GET("/devices/:id", ctl.getDevice)
		c.PUT("/devices/:id", ctl.updateDevice)

		// command issuing
		c.POST("/devices/:id/command", ctl.issueCommand)
		c.POST("/devices/:id/screenshot", ctl.requestScreenshot)
		c.POST("/devices/:id/reboot", ctl.requestReboot)
	})
}

// getOwned loads a device and verifies it belongs to the user's tenant.
func (d *DeviceController) getOwned(ctx *gin.Context, user *model.User) (model.Device, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.Device{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.Device{}, apiErr
	}

	device, err := d.store.GetDeviceByID(id)
	if err != nil {
		return model.Device{}, &api.APIError{Code: http.StatusNotFound, Message: "device not found"}
	}
	if device.OwnerID == nil || *device.OwnerID != owner {
		log.Error().Int("device_id", id).Int("user_id", user.ID).Msg("forbidden access to device")
		return model.Device{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return device, nil
}

// GET /api/admin/devices
func (d *DeviceController) listDevices(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	all, err := d.store.ListDevicesByOwner(owner)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}

	out := make([]packets.DeviceResponse, 0, len(all))
	for _, dev := range all {
		out = append(out, deviceResponse(dev))
	}
	return out, nil
}

// GET /api/admin/devices/:id
func (d *DeviceController) getDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	device, apiErr := d.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return deviceResponse(device), nil
}

// PUT /api/admin/devices/:id
func (d *DeviceController) updateDevice(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateDeviceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	// Enabling a fresh device is the one update allowed before it has an
	// owner, so ownership is checked against the target group instead.
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}
	device, err := d.store.GetDeviceByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "device not found"}
	}
	if device.OwnerID != nil && *device.OwnerID != owner {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	if request.GroupID != nil {
		group, err := d.store.GetDeviceGroupByID(*request.GroupID)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "group not found"}
		}
		if group.OwnerID == nil || *group.OwnerID != owner {
			return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
		}
	}

	updated, err := d.store.UpdateDevice(id, request.Name, request.GroupID, request.Enabled, request.DebugMode)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update device"}
	}

	if err := d.inv.DeviceChanged(ctx.Request.Context(), updated.DeviceID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return deviceResponse(updated), nil
}

func (d *DeviceController) issue(ctx *gin.Context, user *model.User, command string) (any, *api.APIError) {
	device, apiErr := d.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := d.store.SetDeviceCommand(device.ID, command); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set command"}
	}
	// The pending command only reaches the device through a live feed
	// computation, so the cached payload must go.
	if err := d.inv.DeviceChanged(ctx.Request.Context(), device.DeviceID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}

	log.Info().Str("device_id", device.DeviceID).Str("command", command).Msg("command queued")
	return gin.H{"status": "command queued"}, nil
}

// POST /api/admin/devices/:id/command
func (d *DeviceController) issueCommand(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.DeviceCommandRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !model.ValidCommand(request.Command) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown command"}
	}
	return d.issue(ctx, user, request.Command)
}

// POST /api/admin/devices/:id/screenshot
func (d *DeviceController) requestScreenshot(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return d.issue(ctx, user, model.ScreenshotCommand)
}

// POST /api/admin/devices/:id/reboot
func (d *DeviceController) requestReboot(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return d.issue(ctx, user, model.RebootCommand)
}

func deviceResponse(dev model.Device) packets.DeviceResponse {
	return packets.DeviceResponse{
		ID:           dev.ID,
		DeviceID:     dev.DeviceID,
		Name:         dev.Name,
		GroupID:      dev.GroupID,
		Enabled:      dev.Enabled,
		DebugMode:    dev.DebugMode,
		BuildVersion: dev.BuildVersion,
		LastPing:     dev.LastPing.Format(time.RFC3339),
		CreatedAt:    dev.CreatedAt.Format(time.RFC3339),
	}
}
