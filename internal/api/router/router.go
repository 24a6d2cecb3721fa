package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"astro-distribusi/backend/config"
	"astro-distribusi/backend/internal/api/handler"
	"astro-distribusi/backend/internal/api/middleware"
	"astro-distribusi/backend/pkg/jwt"
	"astro-distribusi/backend/pkg/metrics"
	"astro-distribusi/backend/pkg/redis"
)

// Deps 路由所需的外部依赖
type Deps struct {
	JWT      *jwt.Manager
	Redis    *redis.Client // 可为 nil
	DB       *gorm.DB      // 可为 nil，仅用于健康检查
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger, d.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查与指标（无需认证）──
	r.GET("/health", healthCheck(d.DB))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(d.JWT, d.Redis, d.Logger))
	{
		features := v1.Group("/features/:feature")
		{
			features.GET("/form", h.Form.VisibleForm)
			features.POST("/sections", h.Template.CreateSection)
			features.GET("/schedule", h.Schedule.GetPeriod)
			features.POST("/schedule", h.Schedule.SavePeriod)
			features.GET("/schedule/calendar.ics", h.Schedule.Calendar)
		}

		sections := v1.Group("/sections")
		{
			sections.PATCH("/:id", h.Template.UpdateSection)
			sections.DELETE("/:id", h.Template.DeleteSection)
			sections.POST("/:id/fields", h.Template.CreateField)
		}

		fields := v1.Group("/fields")
		{
			fields.PATCH("/:id", h.Template.UpdateField)
			fields.DELETE("/:id", h.Template.DeleteField)
		}

		forms := v1.Group("/forms")
		{
			forms.POST("/values",
				middleware.SubmitRateLimit(d.Redis, cfg.Engine.SubmitRateLimit, cfg.Engine.SubmitRateWindow, d.Logger),
				h.Form.SubmitValues)
			forms.GET("/progress", h.Form.Progress)
			forms.GET("/export", middleware.RequireElevated(), h.Form.Export)
		}

		members := v1.Group("/members")
		{
			members.GET("", h.Member.ListMembers)
			members.POST("", h.Member.CreateMember)
			members.PATCH("/:id", h.Member.UpdateMember)
			members.DELETE("/:id", h.Member.DeleteMember)
		}
	}

	return r
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
