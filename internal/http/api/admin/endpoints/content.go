package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/db"
	"github.com/signoxe/server/internal/feedcache"
	"github.com/signoxe/server/internal/http/api"
	"github.com/signoxe/server/internal/http/api/admin/packets"
	"github.com/signoxe/server/internal/model"
	"github.com/signoxe/server/internal/tasks"
)

const (
	defaultImageDuration = 10
	defaultWebDuration   = 30
)

type ContentController struct {
	store db.Store
	inv   *feedcache.Invalidator
	queue tasks.Queue
}

func newContentController(store db.Store, inv *feedcache.Invalidator, queue tasks.Queue) *ContentController {
	return &ContentController{store: store, inv: inv, queue: queue}
}

// ContentModule mounts asset and content feed endpoints.
func ContentModule(store db.Store, inv *feedcache.Invalidator, queue tasks.Queue) api.Module {
	ctl := newContentController(store, inv, queue)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/assets", ctl.listAssets)
		c.POST("/assets", ctl.createAsset)
		c.GET("/assets/:id", ctl.getAsset)
		c.DELETE("/assets/:id", ctl.deleteAsset)
		c.POST("/assets/:id/refresh", ctl.refreshAsset)

		c.POST("/content_feeds", ctl.createContentFeed)
		c.GET("/content_feeds/:id", ctl.getContentFeed)
		c.PUT("/content_feeds/:id", ctl.updateContentFeed)
		c.DELETE("/content_feeds/:id", ctl.deleteContentFeed)
	})
}

// ownedAsset loads an asset and verifies it belongs to the user's tenant.
func (cc *ContentController) ownedAsset(ctx *gin.Context, user *model.User) (model.Asset, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.Asset{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.Asset{}, apiErr
	}
	asset, err := cc.store.GetAssetByID(id)
	if err != nil {
		return model.Asset{}, &api.APIError{Code: http.StatusNotFound, Message: "asset not found"}
	}
	if asset.OwnerID == nil || *asset.OwnerID != owner {
		return model.Asset{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return asset, nil
}

// GET /api/admin/assets
func (cc *ContentController) listAssets(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}
	assets, err := cc.store.ListAssetsByOwner(owner)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return assets, nil
}

// POST /api/admin/assets
func (cc *ContentController) createAsset(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateAssetRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	assetType := model.AssetType(request.Type)
	switch assetType {
	case model.AssetImage, model.AssetVideo:
		if request.MediaURL == nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "media_url is required"}
		}
	case model.AssetWeb:
		if request.WebURL == nil && request.WebContent == nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "web_url or web_content is required"}
		}
	case model.AssetFeed:
	case model.AssetCalendar:
		if request.CalendarURL == nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "calendar_url is required"}
		}
	default:
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown asset type"}
	}

	asset, err := cc.store.CreateAsset(model.Asset{
		Name:        request.Name,
		Type:        assetType,
		OwnerID:     &owner,
		MediaURL:    request.MediaURL,
		Checksum:    request.Checksum,
		WebURL:      request.WebURL,
		WebContent:  request.WebContent,
		CalendarURL: request.CalendarURL,
	})
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create asset"}
	}

	// Post-processing runs out of band; the asset is usable as soon as the
	// workers fill in the blanks.
	switch asset.Type {
	case model.AssetImage, model.AssetVideo:
		cc.queue.EnqueueThumbnail(asset.ID)
		cc.queue.EnqueueMetadataScan(asset.ID)
	case model.AssetCalendar:
		cc.queue.EnqueueCalendarRefresh(asset.ID)
	}

	return asset, nil
}

// GET /api/admin/assets/:id
func (cc *ContentController) getAsset(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	asset, apiErr := cc.ownedAsset(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return asset, nil
}

// DELETE /api/admin/assets/:id
func (cc *ContentController) deleteAsset(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	asset, apiErr := cc.ownedAsset(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := cc.store.DeleteAsset(asset.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete asset"}
	}
	// Assets only carry an owner reference, so the catch-all rule applies.
	if err := cc.inv.OwnerChanged(ctx.Request.Context(), *asset.OwnerID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "deleted"}, nil
}

// POST /api/admin/assets/:id/refresh
//
// Re-enqueues the asset's post-processing. For calendars this refetches the
// event set.
func (cc *ContentController) refreshAsset(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	asset, apiErr := cc.ownedAsset(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	switch asset.Type {
	case model.AssetImage, model.AssetVideo:
		cc.queue.EnqueueThumbnail(asset.ID)
		cc.queue.EnqueueMetadataScan(asset.ID)
	case model.AssetCalendar:
		cc.queue.EnqueueCalendarRefresh(asset.ID)
	default:
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "asset type has no refresh job"}
	}

	log.Info().Int("asset_id", asset.ID).Str("type", string(asset.Type)).Msg("refresh enqueued")
	return gin.H{"status": "refresh enqueued"}, nil
}

// POST /api/admin/content_feeds
func (cc *ContentController) createContentFeed(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateContentFeedRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, apiErr := ownerID(user); apiErr != nil {
		return nil, apiErr
	}

	imageDuration := defaultImageDuration
	if request.ImageDuration != nil {
		imageDuration = *request.ImageDuration
	}
	webDuration := defaultWebDuration
	if request.WebDuration != nil {
		webDuration = *request.WebDuration
	}
	overlayTicker := false
	if request.OverlayTicker != nil {
		overlayTicker = *request.OverlayTicker
	}

	cf, err := cc.store.CreateContentFeed(request.Title, request.PlaylistID,
		request.TickerSeriesID, imageDuration, webDuration, overlayTicker)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create content feed"}
	}
	return cf, nil
}

// GET /api/admin/content_feeds/:id
func (cc *ContentController) getContentFeed(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	cf, err := cc.store.GetContentFeedByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "content feed not found"}
	}
	return cf, nil
}

// PUT /api/admin/content_feeds/:id
func (cc *ContentController) updateContentFeed(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateContentFeedRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	cf, err := cc.store.UpdateContentFeed(id, request.Title, request.PlaylistID,
		request.TickerSeriesID, request.ImageDuration, request.WebDuration, request.OverlayTicker)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update content feed"}
	}

	if err := cc.inv.ContentFeedChanged(ctx.Request.Context(), id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return cf, nil
}

// DELETE /api/admin/content_feeds/:id
func (cc *ContentController) deleteContentFeed(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}

	// Invalidate before the referencing rows cascade away.
	if err := cc.inv.ContentFeedChanged(ctx.Request.Context(), id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	if err := cc.store.DeleteContentFeed(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete content feed"}
	}
	return gin.H{"status": "deleted"}, nil
}
