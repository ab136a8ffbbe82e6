package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/rmacedo/custeio/internal/auth"
	"github.com/rmacedo/custeio/internal/cache"
	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/http/handlers"
	"github.com/rmacedo/custeio/internal/http/middlewares"
	"github.com/rmacedo/custeio/internal/ingest"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/rmacedo/custeio/internal/repo/postgres"
	syncx "github.com/rmacedo/custeio/internal/sync"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	log *slog.Logger,
	pool *pgxpool.Pool,
	rdb *syncx.RedisClient,
	hub *syncx.Hub,
	prom *observability.Prom,
	registry *prometheus.Registry,
	cfg config.Config,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(otelgin.Middleware("custeio-api"))
	r.Use(prom.GinHandleMiddleware())

	// health probes
	dbPing := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	redisPing := func() error {
		if rdb == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return rdb.Ping(ctx)
	}

	h := handlers.NewHealthHandler(map[string]func() error{
		"db":    dbPing,
		"redis": redisPing,
	})
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)
	requestsRepo := postgres.NewRequestsRepo(pool, prom, usersRepo)
	datasetRepo := postgres.NewDatasetRepo(pool, prom)
	historyRepo := postgres.NewHistoryRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	ingestSvc := ingest.NewService(datasetRepo, rdb)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, refreshRepo, cfg)
	meHandler := handlers.NewMeHandler(usersRepo)
	requestsHandler := handlers.NewRequestsHandler(requestsRepo)
	datasetHandler := handlers.NewDatasetHandler(datasetRepo, cache.New(time.Minute))
	uploadHandler := handlers.NewUploadHandler(ingestSvc, usersRepo, hub, prom)
	streamHandler := handlers.NewStreamHandler(datasetRepo, hub, prom)
	historyHandler := handlers.NewHistoryHandler(historyRepo)
	reportHandler := handlers.NewReportHandler(usersRepo, datasetRepo)

	// brute-force protection on the two public write endpoints
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	signupLimiter := middlewares.NewRateLimiter(5, time.Minute)

	// session
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login",
			middlewares.RequireJSON(),
			loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
			authHandler.Login,
		)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// public sign-up request
	r.POST("/requests",
		middlewares.RequireJSON(),
		signupLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		requestsHandler.Create,
	)

	// any authenticated user
	authed := r.Group("/")
	authed.Use(authMW.RequireAuth())
	{
		authed.GET("/me", meHandler.Me)
		authed.GET("/dataset", datasetHandler.Get)
		authed.GET("/dataset/stream", streamHandler.Stream)
		authed.GET("/report", reportHandler.Export)
	}

	// admin only
	admin := r.Group("/")
	admin.Use(authMW.RequireAuth(), authMW.RequireAdmin())
	{
		admin.POST("/dataset/upload",
			middlewares.MaxBodyBytes(cfg.MaxUploadBytes),
			uploadHandler.Upload,
		)
		admin.GET("/requests", requestsHandler.List)
		admin.POST("/requests/:id/approve", requestsHandler.Approve)
		admin.DELETE("/requests/:id", requestsHandler.Reject)
		admin.GET("/history", historyHandler.List)
	}

	log.Info("router wired",
		"routes", len(r.Routes()),
		"origins", cfg.AllowedOrigins,
	)

	return r
}
