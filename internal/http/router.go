package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/diettrack/internal/cache"
	"github.com/geocoder89/diettrack/internal/config"
	"github.com/geocoder89/diettrack/internal/http/handlers"
	"github.com/geocoder89/diettrack/internal/http/middlewares"
	"github.com/geocoder89/diettrack/internal/observability"
	"github.com/geocoder89/diettrack/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires repositories, handlers and the middleware chain.
// metricsCache and prom may be nil (tests run without them).
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, metricsCache cache.MetricsCache, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("diettrack"))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(prom.Handler()))
	}

	// unauthenticated routes are limited by IP, gated ones by session token
	noop := func(c *gin.Context) { c.Next() }
	limitByIP, limitBySession := gin.HandlerFunc(noop), gin.HandlerFunc(noop)

	if cfg.RateLimitRPS > 0 {
		limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limitByIP = limiter.RateLimiterMiddleware(middlewares.KeyByIP)
		limitBySession = limiter.RateLimiterMiddleware(middlewares.KeyBySessionOrIP)
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	mealsRepo := postgres.NewMealsRepo(pool, prom)

	// handlers
	usersHandler := handlers.NewUsersHandler(usersRepo)
	mealsHandler := handlers.NewMealsHandler(mealsRepo, metricsCache)

	sessionGate := middlewares.NewSessionMiddleware(usersRepo)

	r.POST("/users", limitByIP, usersHandler.Create)
	r.GET("/users", limitByIP, usersHandler.GetCurrent)

	// every meals route sits behind the session gate
	meals := r.Group("/meals", limitBySession, sessionGate.RequireSession())
	meals.POST("", mealsHandler.CreateMeal)
	meals.GET("", mealsHandler.ListMeals)
	meals.GET("/metrics", mealsHandler.GetMetrics)
	meals.GET("/:mealId", mealsHandler.GetMealByID)
	meals.PUT("/:mealId", mealsHandler.UpdateMeal)
	meals.DELETE("/:mealId", mealsHandler.DeleteMeal)

	return r
}
