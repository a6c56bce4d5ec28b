package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/docs"
	"github.com/flexfit/gymdesk/internal/app/api/handlers"
	mw "github.com/flexfit/gymdesk/internal/app/api/middleware"
	"github.com/flexfit/gymdesk/internal/app/service/analytics"
	"github.com/flexfit/gymdesk/internal/app/service/attendance"
	"github.com/flexfit/gymdesk/internal/app/service/auth"
	"github.com/flexfit/gymdesk/internal/app/service/backup"
	"github.com/flexfit/gymdesk/internal/app/service/billing"
	"github.com/flexfit/gymdesk/internal/app/service/enrollment"
	"github.com/flexfit/gymdesk/internal/app/service/lifecycle"
	"github.com/flexfit/gymdesk/internal/app/service/visitor"
	"github.com/flexfit/gymdesk/internal/store"
	cfgpkg "github.com/flexfit/gymdesk/pkg/config"
	metrics "github.com/flexfit/gymdesk/pkg/metrics"
	"github.com/flexfit/gymdesk/pkg/response"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

// Services groups everything the route table needs so registerRoutes keeps a
// manageable signature.
type Services struct {
	fx.In

	Store      store.Store
	Auth       *auth.Service
	Enrollment *enrollment.Service
	Lifecycle  *lifecycle.Service
	Billing    *billing.Service
	Attendance *attendance.Service
	Visitor    *visitor.Service
	Analytics  *analytics.Service
	Backup     *backup.Service
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, svcs Services) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Login lives outside the auth guard; everything else on /api/v1
	// requires a valid token.
	pubV1 := r.Group("/api/v1")
	pubV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.AuthMiddleware(svcs.Auth))

	handlers.RegisterAuthRoutes(pubV1, apiV1, svcs.Auth)
	handlers.RegisterMemberRoutes(apiV1, svcs.Enrollment, svcs.Store)
	handlers.RegisterMembershipRoutes(apiV1, svcs.Lifecycle, svcs.Enrollment, svcs.Store)
	handlers.RegisterPaymentRoutes(apiV1, svcs.Billing)
	handlers.RegisterAttendanceRoutes(apiV1, svcs.Attendance)
	handlers.RegisterVisitorRoutes(apiV1, svcs.Visitor)
	handlers.RegisterAnalyticsRoutes(apiV1, svcs.Analytics, svcs.Store)
	handlers.RegisterBackupRoutes(apiV1, svcs.Backup)
	handlers.RegisterCatalogRoutes(apiV1, svcs.Store)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Msg(response.APIResponseCodeNotFound, "route not found"))
	})
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
