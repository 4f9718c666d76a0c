package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-backoffice-api/internal/middleware"
	"github.com/noah-isme/course-backoffice-api/internal/service"
	"github.com/noah-isme/course-backoffice-api/pkg/config"
	"github.com/noah-isme/course-backoffice-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-backoffice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-backoffice-api/pkg/middleware/requestid"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Auth          *service.AuthService
	Metrics       *service.MetricsService
	Students      *StudentHandler
	Catalog       *CatalogHandler
	Distributions *DistributionHandler
	AuthHandler   *AuthHandler
	Monitoring    *MonitoringHandler
}

// NewRouter wires middleware and routes. Monitoring and login stay open;
// everything else sits behind the query token.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	v1 := r.Group("/v1")

	v1.GET("/monitoring/ping", deps.Monitoring.Ping)
	v1.GET("/monitoring/metrics", deps.Monitoring.Metrics)
	v1.POST("/auth/login", deps.AuthHandler.Login)

	protected := v1.Group("")
	protected.Use(middleware.Token(deps.Auth, deps.Config.Debug))
	{
		protected.POST("/students", deps.Students.Enroll)
		protected.POST("/students/expulse", deps.Students.Expulse)
		protected.POST("/students/change-teacher", deps.Students.ChangeTeacher)
		protected.POST("/students/soho/:soho_id/change-vk-id", deps.Students.ChangeVKID)
		protected.POST("/students/soho/:soho_id/grade-teacher", deps.Students.GradeTeacher)
		protected.GET("/students/:id", deps.Students.Get)

		protected.POST("/products/distribute", deps.Distributions.Distribute)
		protected.GET("/distributions/:id", deps.Distributions.Get)
		protected.GET("/distributions/:id/export", deps.Distributions.Export)

		protected.GET("/subjects", deps.Catalog.ListSubjects)
		protected.GET("/subjects/:id", deps.Catalog.GetSubject)
		protected.GET("/products", deps.Catalog.ListProducts)
		protected.GET("/products/:id", deps.Catalog.GetProduct)
		protected.GET("/teacher-products/:id/stats", deps.Catalog.GetTeacherProductStats)
	}

	return r
}
