package app

import (
	"exam_proctor_backend/docs"
	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/middleware"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)
	a.registerAuthenticatedRoutes(router, c, repos, cfg)
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/auth/init-root-admin", c.auth.InitRootAdmin)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerAuthenticatedRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	rg := router.Group("/api")
	rg.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		rg.GET("/profile", c.auth.GetProfile)

		// Taking flow
		rg.GET("/tests/available", c.test.AvailableTests)
		rg.GET("/tests/:id/questions", c.test.StudentQuestions)
		rg.POST("/tests/:id/attempts/start", c.attempt.StartAttempt)

		rg.POST("/attempts/:id/answers", c.attempt.RecordAnswer)
		rg.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
		rg.GET("/attempts/:id/result", c.attempt.GetResult)
		rg.GET("/attempts/:id/answers", c.attempt.GetAnswers)
		rg.GET("/attempts/my", c.attempt.MyAttempts)

		// Proctoring session
		rg.POST("/attempts/:id/session/signals", c.session.IncrementSignal)
		rg.POST("/attempts/:id/session/evidence", c.session.AttachEvidence)
		rg.GET("/attempts/:id/session", c.session.GetReport)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		middleware.RoleMiddleware(model.RoleSuperAdmin, model.RoleAdmin),
	)
	{
		admin.POST("/users", c.user.CreateUser)
		admin.GET("/users", c.user.ListUsers)

		admin.POST("/tests", c.test.CreateTest)
		admin.GET("/tests", c.test.ListTests)
		admin.GET("/tests/:id", c.test.GetTest)
		admin.PUT("/tests/:id", c.test.UpdateTest)
		admin.DELETE("/tests/:id", c.test.DeleteTest)
		admin.POST("/tests/:id/publish", c.test.PublishTest)

		admin.POST("/tests/:id/questions", c.test.AddQuestion)
		admin.GET("/tests/:id/questions", c.test.ListQuestions)
		admin.PUT("/questions/:id", c.test.UpdateQuestion)
		admin.DELETE("/questions/:id", c.test.DeleteQuestion)

		admin.GET("/tests/:id/attempts", c.attempt.TestAttempts)
		admin.GET("/tests/:id/results", c.attempt.TestResults)
	}
}
