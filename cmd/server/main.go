package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"airmon.uz/telemetry-service/pkg/common"
	"airmon.uz/telemetry-service/pkg/config"
	"airmon.uz/telemetry-service/pkg/db"
	telemetryHttp "airmon.uz/telemetry-service/pkg/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment (copy .env.example to .env for development)")
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := common.GetLogger()

	dbInstance := db.GetInstance(db.DialectorFromURL(settings.DatabaseURL))

	rs, err := telemetryHttp.NewRestfulServer(settings, dbInstance)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	rs.RateLimiterStore = telemetryHttp.NewRateLimiterStore(
		rate.Limit(settings.AuthRateLimit), settings.AuthRateBurst)
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("environment", string(settings.Environment)),
		zap.String("auth_limiter",
			fmt.Sprintf("{\"rate\": %v, \"burst\": %v}", settings.AuthRateLimit, settings.AuthRateBurst)))

	logger.Info("Starting HTTP server on: " + settings.HTTPHostPort)
	if err := rs.Server.Run(settings.HTTPHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
