package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/db"
	"github.com/signoxe/server/internal/feedcache"
	"github.com/signoxe/server/internal/report"
	"github.com/signoxe/server/internal/tasks"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := LoadEnvironment()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}

	// run pending migrations
	if env.MigrationsPath != "" {
		if err := db.RunMigrations(env.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("db migrate failed")
		}
	}

	store := db.NewStore()

	rdb, err := feedcache.NewClient(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis init failed")
	}
	cache := feedcache.New(rdb)
	invalidator := feedcache.NewInvalidator(cache, store)

	var queue tasks.Queue
	if env.MQTTBrokerURL != "" {
		queue, err = tasks.NewMQTTQueue(env.MQTTBrokerURL, "signoxe-server")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt init failed")
		}
	} else {
		log.Warn().Msg("MQTT_BROKER_URL not set, asset post-processing disabled")
		queue = tasks.NewNop()
	}

	reporter := report.NewLogReporter()

	r := gin.Default()
	RegisterRoutes(r, env, store, cache, invalidator, queue, reporter)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
