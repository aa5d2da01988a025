// Package endpoints holds the authenticated admin API. Every mutation
// invalidates the affected device feed caches before responding, so a
// device polling right after a change always sees it.
package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/http/api"
	"github.com/signoxe/server/internal/model"
)

// pathID parses the numeric :id segment of the request path.
func pathID(ctx *gin.Context, name string) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		log.Error().Err(err).Str("id_raw", ctx.Param(name)).Msg("invalid id in request")
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	return id, nil
}

// ownerID returns the tenant the user belongs to. Users without a client
// cannot manage content.
func ownerID(user *model.User) (int, *api.APIError) {
	if user.ClientID == nil {
		return 0, &api.APIError{Code: http.StatusForbidden, Message: "no client assigned"}
	}
	return *user.ClientID, nil
}
