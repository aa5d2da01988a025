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

type TickerController struct {
	store db.Store
	inv   *feedcache.Invalidator
}

func newTickerController(store db.Store, inv *feedcache.Invalidator) *TickerController {
	return &TickerController{store: store, inv: inv}
}

// TickerModule mounts all authenticated ticker series and ticker endpoints.
func TickerModule(store db.Store, inv *feedcache.Invalidator) api.Module {
	ctl := newTickerController(store, inv)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/ticker_series", ctl.listSeries)
		c.POST("/ticker_series", ctl.createSeries)
		c.GET("/ticker_series/:id", ctl.getSeries)

		c.GET("/ticker_series/:id/tickers", ctl.listTickers)
		c.POST("/ticker_series/:id/tickers", ctl.createTicker)
		c.PUT("/tickers/:id", ctl.updateTicker)
		c.DELETE("/tickers/:id", ctl.deleteTicker)
	})
}

// ownedSeries loads a ticker series and verifies tenant ownership.
func (t *TickerController) ownedSeries(ctx *gin.Context, user *model.User) (model.TickerSeries, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.TickerSeries{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.TickerSeries{}, apiErr
	}
	series, err := t.store.GetTickerSeriesByID(id)
	if err != nil {
		return model.TickerSeries{}, &api.APIError{Code: http.StatusNotFound, Message: "ticker series not found"}
	}
	if series.OwnerID == nil || *series.OwnerID != owner {
		return model.TickerSeries{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return series, nil
}

// ownedTicker loads a ticker, verifying ownership through its series.
func (t *TickerController) ownedTicker(ctx *gin.Context, user *model.User) (model.Ticker, *api.APIError) {
	id, apiErr := pathID(ctx, "id")
	if apiErr != nil {
		return model.Ticker{}, apiErr
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return model.Ticker{}, apiErr
	}
	ticker, err := t.store.GetTickerByID(id)
	if err != nil {
		return model.Ticker{}, &api.APIError{Code: http.StatusNotFound, Message: "ticker not found"}
	}
	series, err := t.store.GetTickerSeriesByID(ticker.TickerSeriesID)
	if err != nil || series.OwnerID == nil || *series.OwnerID != owner {
		return model.Ticker{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return ticker, nil
}

// GET /api/admin/ticker_series
func (t *TickerController) listSeries(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}
	series, err := t.store.ListTickerSeriesByOwner(owner)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return series, nil
}

// POST /api/admin/ticker_series
func (t *TickerController) createSeries(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateTickerSeriesRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	owner, apiErr := ownerID(user)
	if apiErr != nil {
		return nil, apiErr
	}

	series, err := t.store.CreateTickerSeries(request.Name, owner)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create ticker series"}
	}
	return series, nil
}

// GET /api/admin/ticker_series/:id
func (t *TickerController) getSeries(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	series, apiErr := t.ownedSeries(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return series, nil
}

// GET /api/admin/ticker_series/:id/tickers
func (t *TickerController) listTickers(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	series, apiErr := t.ownedSeries(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	tickers, err := t.store.ListTickersBySeries(series.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return tickers, nil
}

// POST /api/admin/ticker_series/:id/tickers
func (t *TickerController) createTicker(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	series, apiErr := t.ownedSeries(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.CreateTickerRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	ticker := model.Ticker{
		Text:           request.Text,
		Speed:          model.TickerNormal,
		FontFamily:     "sans-serif",
		FontSize:       2.5,
		Colour:         "#ffffff",
		Outline:        "#000000",
		Background:     "#000000",
		Position:       -1, // append
		TickerSeriesID: series.ID,
	}
	if request.Speed != nil {
		ticker.Speed = *request.Speed
	}
	if request.FontFamily != nil {
		ticker.FontFamily = *request.FontFamily
	}
	if request.FontSize != nil {
		ticker.FontSize = *request.FontSize
	}
	if request.Colour != nil {
		ticker.Colour = *request.Colour
	}
	if request.Outline != nil {
		ticker.Outline = *request.Outline
	}
	if request.Background != nil {
		ticker.Background = *request.Background
	}
	if request.Position != nil {
		ticker.Position = *request.Position
	}

	created, err := t.store.CreateTicker(ticker)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create ticker"}
	}

	if err := t.inv.TickerSeriesChanged(ctx.Request.Context(), series.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return created, nil
}

// PUT /api/admin/tickers/:id
func (t *TickerController) updateTicker(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	ticker, apiErr := t.ownedTicker(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateTickerRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	updated, err := t.store.UpdateTicker(ticker.ID, request.Text, request.Speed, request.Position)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update ticker"}
	}

	if err := t.inv.TickerSeriesChanged(ctx.Request.Context(), ticker.TickerSeriesID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return updated, nil
}

// DELETE /api/admin/tickers/:id
func (t *TickerController) deleteTicker(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	ticker, apiErr := t.ownedTicker(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := t.store.DeleteTicker(ticker.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete ticker"}
	}
	if err := t.inv.TickerSeriesChanged(ctx.Request.Context(), ticker.TickerSeriesID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not invalidate cache"}
	}
	return gin.H{"status": "deleted"}, nil
}
