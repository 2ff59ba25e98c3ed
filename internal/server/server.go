package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/freightrate/internal/config"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	"github.com/smallbiznis/freightrate/internal/observability"
	obsmiddleware "github.com/smallbiznis/freightrate/internal/observability/logger"
	obstracing "github.com/smallbiznis/freightrate/internal/observability/tracing"
	"github.com/smallbiznis/freightrate/internal/quotedoc"
	"github.com/smallbiznis/freightrate/internal/ratelimit"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, apiMetrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(MetricsMiddleware(apiMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, apiMetrics *telemetry.Metrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, apiMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	ratingSvc   ratingdomain.Service
	quoteSvc    ratequotedomain.Service
	contractSvc contractdomain.Service
	docs        quotedoc.Renderer
	apiMetrics  *telemetry.Metrics
	limiter     quoteLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	RatingSvc   ratingdomain.Service
	QuoteSvc    ratequotedomain.Service
	ContractSvc contractdomain.Service
	Docs        quotedoc.Renderer
	APIMetrics  *telemetry.Metrics      `optional:"true"`
	Limiter     *ratelimit.QuoteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		log:    p.Log.Named("http.server"),

		ratingSvc:   p.RatingSvc,
		quoteSvc:    p.QuoteSvc,
		contractSvc: p.ContractSvc,
		docs:        p.Docs,
		apiMetrics:  p.APIMetrics,
	}
	if p.Limiter.Enabled() {
		svc.limiter = p.Limiter
	}
	svc.registerAPIRoutes()
	svc.registerFallback()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Rating --------
	rating := api.Group("/rating")
	rating.POST("/quote", s.rateLimitQuotes(), s.Quote)
	rating.POST("/commit", s.rateLimitQuotes(), s.Commit)
	rating.GET("/quotes/:requestId", s.GetQuote)
	rating.GET("/quotes/:requestId/pdf", s.GetQuotePDF)

	// -------- Contracts --------
	api.POST("/contracts/versions/:id/publish", s.PublishContractVersion)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
