package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/signoxe/server/internal/db"
	"github.com/signoxe/server/internal/feedcache"
	"github.com/signoxe/server/internal/http/api"
	"github.com/signoxe/server/internal/http/api/admin/packets"
	"github.com/signoxe/server/internal/model"
)

type PlaylistController struct {
	store db.Store
	inv   *feedcache.Invalidator
}

func newPlaylistController(store db.Store, inv *feedcache.Invalidator) *PlaylistController {
	return &PlaylistController{store: store, inv: inv}
}

// PlaylistModule mounts all authenticated /playlists endpoints.
func PlaylistModule(store db.Store, inv *feedcache.Invalidator) api.Module {
	ctl := newPlaylistController(store, inv)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlists", ctl.listPlaylists)
		c.POST("/playlists", ctl.createPlaylist)
		c.GET("/playlists/:id", ctl.getPlaylist)

		c.GET("/playlists/:id/items", ctl.listItems)
		c.POST("/playlists/:id/items", ctl.addItem)
		c.PUT("/playlist_items/:id", ctl.updateItem)
		c.DELETE("/playlist_items/:id", ctl.deleteItem)
	})
}

// ownedPlaylist loads a playlist and verifies it belongs to the user's tenant.
func (p *PlaylistController) ownedPlaylist(ctx *gin.Context, user *model.User) (model.Playlist, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.Playlist{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.Playlist{}, apiErr
	}
	playlist, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return model.Playlist{}, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if playlist.OwnerID == nil || *playlist.OwnerID != owner {
		return model.Playlist{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return playlist, nil
}

// ownedItem loads a playlist item and its playlist, verifying tenant
// ownership through the playlist.
func (p *PlaylistController) ownedItem(ctx *gin.Context, user *model.User) (model.PlaylistItem, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.PlaylistItem{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.PlaylistItem{}, apiErr
	}
	item, err := p.store.GetPlaylistItemByID(id)
	if err != nil {
		return model.PlaylistItem{}, &api.APIError{Code: http.StatusNotFound, Message: "playlist item not found"}
	}
	playlist, err := p.store.GetPlaylistByID(item.PlaylistID)
	if err != nil || playlist.OwnerID == nil || *playlist.OwnerID != owner {
		return model.PlaylistItem{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return item, nil
}

// GET /api/admin/playlists
func (p *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}
	playlists, err := p.store.ListPlaylistsByOwner(owner)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return playlists, nil
}

// POST /api/admin/playlists
func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	playlist, err := p.store.CreatePlaylist(request.Name, owner)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create playlist"}
	}
	return playlist, nil
}

// GET /api/admin/playlists/:id
func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	playlist, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return playlist, nil
}

// GET /api/admin/playlists/:id/items
func (p *PlaylistController) listItems(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	playlist, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	items, err := p.store.ListPlaylistItems(playlist.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return items, nil
}

// POST /api/admin/playlists/:id/items
func (p *PlaylistController) addItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	playlist, apiErr := p.ownedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.AddPlaylistItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := p.store.GetAssetByID(request.AssetID); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "asset not found"}
	}

	item, err := p.store.AddPlaylistItem(playlist.ID, request.AssetID,
		request.Position, request.Duration, request.ExpireOn)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not add playlist item"}
	}

	if err := p.inv.PlaylistChanged(ctx.Request.Context(), playlist.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return item, nil
}

// PUT /api/admin/playlist_items/:id
func (p *PlaylistController) updateItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	item, apiErr := p.ownedItem(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdatePlaylistItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	updated, err := p.store.UpdatePlaylistItem(item.ID, request.Position, request.Duration, request.ExpireOn)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update playlist item"}
	}

	if err := p.inv.PlaylistChanged(ctx.Request.Context(), item.PlaylistID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return updated, nil
}

// DELETE /api/admin/playlist_items/:id
func (p *PlaylistController) deleteItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	item, apiErr := p.ownedItem(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := p.store.DeletePlaylistItem(item.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete playlist item"}
	}
	if err := p.inv.PlaylistChanged(ctx.Request.Context(), item.PlaylistID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "deleted"}, nil
}
