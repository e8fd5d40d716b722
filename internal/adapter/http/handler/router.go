package handler

import (
	"net/http"

	"palma-lending/internal/adapter/http/middleware"
	redisStore "palma-lending/internal/adapter/storage/redis"
	"palma-lending/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MetricsExporter records request metrics and serves the scrape endpoint.
type MetricsExporter interface {
	middleware.RequestObserver
	Handler() http.Handler
}

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Lending        ports.LendingService
	Journal        ports.EventJournal // nil = event history disabled
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	Idempotency    ports.IdempotencyCache     // nil = Idempotency-Key ignored
	Metrics        MetricsExporter            // nil = no /metrics
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.Use(middleware.MaxBodySize(1 << 20))

	// Deep health check (PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rules[group], deps.Logger)
	}

	idem := func(c *gin.Context) { c.Next() }
	if deps.Idempotency != nil {
		idem = middleware.Idempotency(deps.Idempotency, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	ledger := NewLedgerHandler(deps.Lending)
	v1.POST("/deposits", rl(middleware.GroupOperations), idem, ledger.Deposit)
	v1.POST("/withdrawals", rl(middleware.GroupOperations), idem, ledger.Withdraw)
	v1.POST("/borrows", rl(middleware.GroupOperations), idem, ledger.Borrow)
	v1.POST("/repayments", rl(middleware.GroupOperations), idem, ledger.Repay)
	v1.POST("/liquidations", rl(middleware.GroupLiquidations), idem, ledger.Liquidate)

	accountHandler := NewAccountHandler(deps.Lending, deps.Journal)
	accounts := v1.Group("/accounts/:account", rl(middleware.GroupQueries))
	{
		accounts.GET("", accountHandler.Summary)
		accounts.GET("/assets/:asset", accountHandler.Position)
		if deps.Journal != nil {
			accounts.GET("/events", accountHandler.Events)
		}
	}

	tokenHandler := NewTokenHandler(deps.Lending)
	v1.GET("/tokens", rl(middleware.GroupQueries), tokenHandler.List)

	admin := v1.Group("/admin", middleware.RequireRole(ports.RoleAdmin), rl(middleware.GroupAdmin))
	{
		admin.PUT("/tokens/:asset", tokenHandler.SetAllowed)
	}

	return r
}
