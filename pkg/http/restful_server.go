// Package http wires the REST boundary: route setup, middleware and the
// handlers mapping service errors onto status codes.
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"airmon.uz/telemetry-service/pkg/auth"
	"airmon.uz/telemetry-service/pkg/config"
	"airmon.uz/telemetry-service/pkg/crud"
	"airmon.uz/telemetry-service/pkg/db"
	"airmon.uz/telemetry-service/pkg/ingest"
)

type RestfulServer struct {
	Server           *gin.Engine
	Settings         *config.Settings
	Db               *db.DB
	RateLimiterStore *RateLimiterStore

	userCodec *auth.Codec
	ingestSvc *ingest.Service
	strategy  crud.CommitStrategy
}

func NewRestfulServer(settings *config.Settings, dbInstance *db.DB) (*RestfulServer, error) {
	userCodec, err := auth.NewCodec(settings.SecretKey, settings.Algorithm)
	if err != nil {
		return nil, err
	}
	deviceCodec, err := auth.NewCodec(settings.DeviceDataSecretKey, settings.DeviceDataAlgorithm)
	if err != nil {
		return nil, err
	}

	return &RestfulServer{
		Server:    gin.Default(),
		Settings:  settings,
		Db:        dbInstance,
		userCodec: userCodec,
		ingestSvc: ingest.NewService(deviceCodec),
		strategy:  crud.CommitEach(),
	}, nil
}

// session opens the request-scoped transaction; the caller closes it.
func (rs *RestfulServer) session() *crud.Session {
	return crud.NewSession(rs.Db.Conn, rs.strategy)
}

func (rs *RestfulServer) authService(sess *crud.Session) *auth.Service {
	return auth.NewService(
		crud.Users(sess),
		rs.userCodec,
		time.Duration(rs.Settings.AccessTokenExpireMinutes)*time.Minute,
		time.Duration(rs.Settings.RefreshTokenExpireMinutes)*time.Minute,
	)
}

func (rs *RestfulServer) Setup() {
	rs.Server.Use(TrustedHostMiddleware(rs.Settings.TrustedHosts))
	if len(rs.Settings.CORSOrigins) > 0 {
		rs.Server.Use(cors.New(cors.Config{
			AllowOrigins:     rs.Settings.CORSOrigins,
			AllowMethods:     []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "PATCH"},
			AllowHeaders:     []string{"*"},
			AllowCredentials: true,
		}))
	}

	rs.Server.GET("/healthz", rs.HealthCheck)

	v1 := rs.Server.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Use(rs.RateLimitMiddleware())
	{
		authRoutes.POST("/token", rs.Login)
		authRoutes.POST("/token/refresh", rs.RefreshToken)
		authRoutes.GET("/users/me", rs.AuthRequired(), rs.Me)
	}

	v1.POST("/measurements", rs.PostMeasurement)

	protected := v1.Group("")
	protected.Use(rs.AuthRequired())
	{
		protected.GET("/devices", rs.ListDevices)
		protected.GET("/devices/:device_id", rs.GetDevice)
		protected.PATCH("/devices/:device_id", rs.PatchDevice)
		protected.DELETE("/devices/:device_id", rs.DeleteDevice)
		protected.GET("/measurements", rs.ListMeasurements)
	}
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
