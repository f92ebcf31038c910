package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Deijai/clinic-scheduling-backend/internal/auth"
	"github.com/Deijai/clinic-scheduling-backend/internal/booking"
	bookingHttp "github.com/Deijai/clinic-scheduling-backend/internal/booking/http"
	"github.com/Deijai/clinic-scheduling-backend/internal/logger"
)

// Config holds everything the router needs to assemble the HTTP surface.
type Config struct {
	IsProduction   bool
	ProdOrigins    []string
	Logger         zerolog.Logger
	BookingService booking.Service
	JWTManager     *auth.JWTManager
	DBPool         *pgxpool.Pool
	MetricsReg     *prometheus.Registry
}

// NewRouter assembles middleware (logging, recovery, CORS, auth) and
// registers all module routes plus the health and metrics endpoints.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logger.RequestLogger(cfg.Logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && len(cfg.ProdOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.DBPool != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.DBPool.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.MetricsReg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.MetricsReg, promhttp.HandlerOpts{})))
	}

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	v1 := r.Group("/v1")
	{
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}
