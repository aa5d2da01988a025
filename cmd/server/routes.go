package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/signoxe/server/internal/db"
	"github.com/signoxe/server/internal/feedcache"
	"github.com/signoxe/server/internal/http/api"
	adminapi "github.com/signoxe/server/internal/http/api/admin/endpoints"
	deviceapi "github.com/signoxe/server/internal/http/api/devices/endpoints"
	"github.com/signoxe/server/internal/report"
	"github.com/signoxe/server/internal/tasks"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, cache *feedcache.Cache,
	inv *feedcache.Invalidator, queue tasks.Queue, reporter report.Reporter) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		adminapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		adminapi.AuthSessionModule(env.SecretKey, store),
		adminapi.DeviceModule(store, inv),
		adminapi.GroupModule(store, inv),
		adminapi.ScheduleModule(store, inv),
		adminapi.ContentModule(store, inv, queue),
		adminapi.PlaylistModule(store, inv),
		adminapi.TickerModule(store, inv),
	)

	// Device and mirror feeds are unauthenticated; possession of a valid
	// identifier is the credential.
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/device",
	},
		deviceapi.DeviceModule(store, cache, reporter),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/mirror",
	},
		deviceapi.MirrorModule(store, reporter),
	)
}
