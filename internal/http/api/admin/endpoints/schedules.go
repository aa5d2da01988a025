package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/signoxe/server/internal/db"
	"github.com/signoxe/server/internal/feedcache"
	"github.com/signoxe/server/internal/http/api"
	"github.com/signoxe/server/internal/http/api/admin/packets"
	"github.com/signoxe/server/internal/model"
)

type ScheduleController struct {
	store db.Store
	inv   *feedcache.Invalidator
}

func newScheduleController(store db.Store, inv *feedcache.Invalidator) *ScheduleController {
	return &ScheduleController{store: store, inv: inv}
}

// ScheduleModule mounts scheduled content and special content endpoints.
func ScheduleModule(store db.Store, inv *feedcache.Invalidator) api.Module {
	ctl := newScheduleController(store, inv)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/groups/:id/schedules", ctl.listSchedules)
		c.POST("/groups/:id/schedules", ctl.createSchedule)
		c.PUT("/schedules/:id", ctl.updateSchedule)
		c.DELETE("/schedules/:id", ctl.deleteSchedule)

		c.GET("/groups/:id/special_content", ctl.listSpecialContent)
		c.POST("/groups/:id/special_content", ctl.createSpecialContent)
		c.DELETE("/special_content/:id", ctl.deleteSpecialContent)
	})
}

// writeError maps write-time validation sentinels to field-level 400s.
func writeError(err error) *api.APIError {
	switch {
	case errors.Is(err, db.ErrScheduleOverlap),
		errors.Is(err, db.ErrDuplicateDefault),
		errors.Is(err, db.ErrDuplicateSpecialContent):
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
}

// ownedGroup verifies the :id group belongs to the user's tenant.
func (s *ScheduleController) ownedGroup(ctx *gin.Context, user *model.User) (model.DeviceGroup, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.DeviceGroup{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.DeviceGroup{}, apiErr
	}
	group, err := s.store.GetDeviceGroupByID(id)
	if err != nil {
		return model.DeviceGroup{}, &api.APIError{Code: http.StatusNotFound, Message: "group not found"}
	}
	if group.OwnerID == nil || *group.OwnerID != owner {
		return model.DeviceGroup{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return group, nil
}

func scheduleFromRequest(request packets.ScheduledContentRequest, groupID int) (model.ScheduledContent, *api.APIError) {
	day := model.Weekday(request.Day)
	if !model.ValidWeekday(day) {
		return model.ScheduledContent{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid day"}
	}

	sc := model.ScheduledContent{
		Day:           day,
		Default:       request.Default,
		BringToFront:  request.BringToFront,
		ContentID:     request.ContentID,
		DeviceGroupID: groupID,
	}
	if request.StartTime != nil {
		t, err := model.ParseTimeOfDay(*request.StartTime)
		if err != nil {
			return model.ScheduledContent{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
		}
		sc.StartTime = &t
	}
	if request.EndTime != nil {
		t, err := model.ParseTimeOfDay(*request.EndTime)
		if err != nil {
			return model.ScheduledContent{}, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
		}
		sc.EndTime = &t
	}
	return sc, nil
}

// GET /api/admin/groups/:id/schedules
func (s *ScheduleController) listSchedules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := s.ownedGroup(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	entries, err := s.store.ListScheduledContent(group.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return entries, nil
}

// POST /api/admin/groups/:id/schedules
func (s *ScheduleController) createSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := s.ownedGroup(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.ScheduledContentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	sc, apiErr := scheduleFromRequest(request, group.ID)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := sc.Validate(); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	created, err := s.store.CreateScheduledContent(sc)
	if err != nil {
		return nil, writeError(err)
	}

	if err := s.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return created, nil
}

// PUT /api/admin/schedules/:id
func (s *ScheduleController) updateSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	existing, err := s.store.GetScheduledContentByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	group, err := s.store.GetDeviceGroupByID(existing.DeviceGroupID)
	if err != nil || group.OwnerID == nil || *group.OwnerID != owner {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	var request packets.ScheduledContentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	sc, apiErr := scheduleFromRequest(request, group.ID)
	if apiErr != nil {
		return nil, apiErr
	}
	sc.ID = existing.ID
	if err := sc.Validate(); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	updated, err := s.store.UpdateScheduledContent(sc)
	if err != nil {
		return nil, writeError(err)
	}

	if err := s.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return updated, nil
}

// DELETE /api/admin/schedules/:id
func (s *ScheduleController) deleteSchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	existing, err := s.store.GetScheduledContentByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	group, err := s.store.GetDeviceGroupByID(existing.DeviceGroupID)
	if err != nil || group.OwnerID == nil || *group.OwnerID != owner {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	if err := s.store.DeleteScheduledContent(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete schedule"}
	}
	if err := s.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "deleted"}, nil
}

// GET /api/admin/groups/:id/special_content
func (s *ScheduleController) listSpecialContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := s.ownedGroup(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	entries, err := s.store.ListSpecialContent(group.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return entries, nil
}

// POST /api/admin/groups/:id/special_content
func (s *ScheduleController) createSpecialContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := s.ownedGroup(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.CreateSpecialContentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	date, err := time.Parse("2006-01-02", request.Date)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid date"}
	}

	created, err := s.store.CreateSpecialContent(model.SpecialContent{
		Date:          date,
		ContentID:     request.ContentID,
		DeviceGroupID: group.ID,
	})
	if err != nil {
		return nil, writeError(err)
	}

	if err := s.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return created, nil
}

// DELETE /api/admin/special_content/:id
func (s *ScheduleController) deleteSpecialContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	existing, err := s.store.GetSpecialContentByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "special content not found"}
	}
	group, err := s.store.GetDeviceGroupByID(existing.DeviceGroupID)
	if err != nil || group.OwnerID == nil || *group.OwnerID != owner {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	if err := s.store.DeleteSpecialContent(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete special content"}
	}
	if err := s.inv.ScheduleChanged(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "deleted"}, nil
}
