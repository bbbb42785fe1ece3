package main

import (
	"github.com/fazalrahmanedv/quizsync/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.SqliteService{},
		&services.TokenService{},
		&services.NetworkService{},
		&services.ApiService{},

		&services.ImageCacheService{},
		&services.BoltCacheService{},
		&services.MediaService{},

		&services.QuizRepoService{},
		&services.MonitoringService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service container")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service runtime exited")
		return
	}
}
