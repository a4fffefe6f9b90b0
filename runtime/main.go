package main

import (
	"github.com/questforge/progression_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}

	ctx, err := context.NewCtx(
		&services.DbService{},
		&services.RedisService{},
		&services.MinIOService{},
		&services.CatalogService{},
		&services.ProgressionService{},
		&services.ExportService{},
		&services.RateLimitService{},
		&services.MonitoringService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
	}

	if err = ctx.Run(); err != nil {
		log.Fatal().Err(err).Msg("Service runtime stopped")
	}
}
