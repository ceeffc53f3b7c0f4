// Package httpapi wires the HTTP transport (Gin) to the chain service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// caller identity, idempotency, rate limiting, CORS and security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Identity resolved once, before anything keyed by user
//   - Deterministic router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/kozoukioden/HatimChainApp/docs"
	"github.com/kozoukioden/HatimChainApp/internal/config"
	"github.com/kozoukioden/HatimChainApp/internal/domain"
	"github.com/kozoukioden/HatimChainApp/internal/http/handlers"
	"github.com/kozoukioden/HatimChainApp/internal/http/middleware"
	"github.com/kozoukioden/HatimChainApp/internal/repo"
	"github.com/kozoukioden/HatimChainApp/internal/services"
)

// chainRepoShim adapts the repository free functions to the
// services.ChainRepo interface expected by the ChainService.
type chainRepoShim struct{}

func (chainRepoShim) CreateChain(ctx context.Context, db *gorm.DB, c *domain.Chain) (*domain.Chain, error) {
	return repo.CreateChain(ctx, db, c)
}

func (chainRepoShim) GetChain(ctx context.Context, db *gorm.DB, id string) (*domain.Chain, error) {
	return repo.GetChain(ctx, db, id)
}

func (chainRepoShim) ListChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error) {
	return repo.ListChains(ctx, db, limit)
}

func (chainRepoShim) RecentChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error) {
	return repo.RecentChains(ctx, db, limit)
}

func (chainRepoShim) ListChainsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Chain, error) {
	return repo.ListChainsByUser(ctx, db, userID, limit)
}

func (chainRepoShim) ListOpenChains(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Chain, error) {
	return repo.ListOpenChains(ctx, db, now)
}

func (chainRepoShim) UpdateChainDocument(ctx context.Context, db *gorm.DB, c *domain.Chain, expected int64) error {
	return repo.UpdateChainDocument(ctx, db, c, expected)
}

func (chainRepoShim) DeleteChain(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteChain(ctx, db, id)
}

// NewChainService builds the chain service over the repo package with the
// limits from cfg. events may be nil.
func NewChainService(db *gorm.DB, cfg config.Config, events services.EventSink) *services.ChainService {
	svc := services.NewChainService(db, chainRepoShim{})
	svc.PageSize = cfg.Chain.PageSize
	svc.OpTimeout = cfg.Chain.OpTimeout
	svc.MaxAttempts = cfg.Chain.MaxAttempts
	svc.Events = events
	return svc
}

var allowHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
	middleware.HeaderUserID, middleware.HeaderUserName, middleware.HeaderIdempotencyKey,
}

var corsMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the chain API under cfg.APIBasePath. events receives
// chain events from the service (nil drops them).
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Identity: bearer token or X-User-ID
//  8. Idempotency validator (needs the user; before the limiter so replays bypass it)
//  9. Rate limiter on writes (per user/IP)
//  10. gzip, CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, events services.EventSink) {
	r.HandleMethodNotAllowed = true
	apiBase := cfg.APIBasePath
	chainsPath := joinPath(apiBase, "/chains")

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB is plenty for a chain spec)
	r.Use(limitBody(64 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Caller identity
	r.Use(middleware.Identity(middleware.IdentityOptions{
		Secret:   cfg.Auth.JWTSecret,
		Required: cfg.Auth.RequireUser,
	}))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == chainsPath {
					return handlers.CreateChainScope
				}
				return c.Request.Method + " " + c.FullPath()
			},
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP; reads are free
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	rl.Skip = middleware.SkipSafeMethods
	r.Use(rl.Handler())

	// 10) Compression, CORS posture and security headers
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "ETag", "Retry-After", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     corsMethods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "ETag", "Retry-After", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = apiBase
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	svc := NewChainService(db, cfg, events)
	h := handlers.New(svc, svc)
	h.IdempotencyTTL = cfg.IdempotencyTTL

	api := groupWithPrefix(r, apiBase)
	{
		// Chains
		api.POST("/chains", h.CreateChain)
		api.GET("/chains", h.ListChains)
		api.GET("/chains/mine", h.ListMyChains)
		api.GET("/chains/search", h.SearchChains)
		api.GET("/chains/recent", h.RecentChains)
		api.GET("/chains/:id", h.GetChain)
		api.DELETE("/chains/:id", h.DeleteChain)
		api.GET("/chains/:id/progress", h.GetProgress)

		// Parts
		api.POST("/chains/:id/parts/:number/claim", h.ClaimPart)
		api.POST("/chains/:id/parts/:number/complete", h.CompletePart)
		api.POST("/chains/:id/parts/:number/force-complete", h.ForceCompletePart)
		api.POST("/chains/:id/parts/:number/release", h.ReleasePart)

		// Users
		api.GET("/users/:id/stats", h.UserStats)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return p
	}
	return prefix + p
}
