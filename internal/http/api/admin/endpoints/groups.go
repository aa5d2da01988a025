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

type GroupController struct {
	store db.Store
	inv   *feedcache.Invalidator
}

func newGroupController(store db.Store, inv *feedcache.Invalidator) *GroupController {
	return &GroupController{store: store, inv: inv}
}

// GroupModule mounts all authenticated /groups endpoints, including
// scheduling toggles and the priority message of each group.
func GroupModule(store db.Store, inv *feedcache.Invalidator) api.Module {
	ctl := newGroupController(store, inv)
	return api.ModuleFunc(func(c *api.Controller) {
		// CRUD
		c.GET("/groups", ctl.listGroups)
		c.POST("/groups", ctl.createGroup)
		c.GET("/groups/:id", ctl.getGroup)
		c.PUT("/groups/:id", ctl.updateGroup)
		c.DELETE("/groups/:id", ctl.deleteGroup)

		// scheduling toggle
		c.POST("/groups/:id/scheduling/enable", ctl.enableScheduling)
		c.POST("/groups/:id/scheduling/disable", ctl.disableScheduling)

		// priority message
		c.GET("/groups/:id/priority_message", ctl.getPriorityMessage)
		c.POST("/groups/:id/priority_message", ctl.activatePriorityMessage)
		c.PATCH("/groups/:id/priority_message", ctl.updatePriorityMessage)
		c.DELETE("/groups/:id/priority_message", ctl.deactivatePriorityMessage)
	})
}

// getOwned loads a group and verifies it belongs to the user's tenant.
func (g *GroupController) getOwned(ctx *gin.Context, user *model.User) (model.DeviceGroup, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.DeviceGroup{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.DeviceGroup{}, apiErr
	}

	group, err := g.store.GetDeviceGroupByID(id)
	if err != nil {
		return model.DeviceGroup{}, &api.APIError{Code: http.StatusNotFound, Message: "group not found"}
	}
	if group.OwnerID == nil || *group.OwnerID != owner {
		log.Error().Int("group_id", id).Int("user_id", user.ID).Msg("forbidden access to group")
		return model.DeviceGroup{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return group, nil
}

// GET /api/admin/groups
func (g *GroupController) listGroups(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}
	groups, err := g.store.ListDeviceGroupsByOwner(owner)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return groups, nil
}

// POST /api/admin/groups
func (g *GroupController) createGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	orientation := model.OrientationLandscape
	if request.Orientation != nil {
		orientation = *request.Orientation
	}
	group, err := g.store.CreateDeviceGroup(request.Name, owner, request.FeedID, orientation)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return group, nil
}

// GET /api/admin/groups/:id
func (g *GroupController) getGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return group, nil
}

// PUT /api/admin/groups/:id
func (g *GroupController) updateGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateGroupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	updated, err := g.store.UpdateDeviceGroup(group.ID, request.Name, request.FeedID,
		request.DisplayDateTime, request.Orientation, request.MirrorID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := g.inv.GroupChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return updated, nil
}

// DELETE /api/admin/groups/:id
func (g *GroupController) deleteGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	// Invalidate before the rows disappear; afterwards the group's devices
	// can no longer be listed.
	if err := g.inv.GroupChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	if err := g.store.DeleteDeviceGroup(group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete group"}
	}
	return gin.H{"status": "deleted"}, nil
}

// POST /api/admin/groups/:id/scheduling/enable
func (g *GroupController) enableScheduling(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := g.store.EnableScheduling(group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := g.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "scheduling enabled"}, nil
}

// POST /api/admin/groups/:id/scheduling/disable
func (g *GroupController) disableScheduling(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := g.store.DisableScheduling(group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not disable scheduling"}
	}
	if err := g.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "scheduling disabled"}, nil
}

// GET /api/admin/groups/:id/priority_message
func (g *GroupController) getPriorityMessage(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	pm, err := g.store.GetOrCreatePriorityMessage(group.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load priority message"}
	}
	return pm, nil
}

// POST /api/admin/groups/:id/priority_message
func (g *GroupController) activatePriorityMessage(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.ActivatePriorityMessageRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.DurationMinutes == nil || !model.ValidPriorityDuration(*request.DurationMinutes) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid duration"}
	}
	if _, err := g.store.GetAssetByID(request.MessageAssetID); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "message asset not found"}
	}

	// Activation always restamps the clock, even over a running message.
	pm, err := g.store.ActivatePriorityMessage(group.ID, *request.DurationMinutes,
		request.MessageAssetID, time.Now())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not activate priority message"}
	}

	if err := g.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return pm, nil
}

// PATCH /api/admin/groups/:id/priority_message
func (g *GroupController) updatePriorityMessage(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdatePriorityMessageRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.DurationMinutes != nil && !model.ValidPriorityDuration(*request.DurationMinutes) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid duration"}
	}

	if _, err := g.store.GetOrCreatePriorityMessage(group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load priority message"}
	}
	pm, err := g.store.UpdatePriorityMessage(group.ID, request.DurationMinutes, request.MessageAssetID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update priority message"}
	}

	if err := g.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return pm, nil
}

// DELETE /api/admin/groups/:id/priority_message
//
// Deactivates the message rather than deleting the row; the row is reused
// by the next activation.
func (g *GroupController) deactivatePriorityMessage(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.getOwned(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := g.store.DeactivatePriorityMessage(group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not deactivate priority message"}
	}
	if err := g.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "deactivated"}, nil
}
