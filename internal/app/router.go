package app

import (
	"docdot_backend/docs"
	"docdot_backend/internal/config"
	"docdot_backend/internal/middleware"
	"docdot_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/leaderboard", c.leaderboard.GetLeaderboard)
		public.GET("/categories", c.question.GetCategories)
		public.GET("/questions", c.question.GetQuestions)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.Supabase.JWTSecret, a.services.user))
	{
		registerStudentRoutes(authGroup, c)
	}
}

func registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/users/me", c.user.GetProfile)
	rg.PUT("/users/me", c.user.UpdateProfile)

	// Quiz and stats
	rg.POST("/quiz-attempts", c.quiz.SubmitAttempt)
	rg.GET("/quiz-attempts", c.quiz.RecentAttempts)
	rg.GET("/stats/user", c.stats.GetUserStats)
	rg.GET("/stats/categories", c.stats.GetCategoryStats)
	rg.GET("/stats/daily", c.stats.GetDailyStats)
	rg.GET("/user-rank", c.leaderboard.GetUserRank)

	// Badges
	rg.GET("/badges", c.achievement.GetBadges)
	rg.POST("/badges/check", c.achievement.CheckBadges)
	rg.GET("/notifications", c.achievement.GetNotifications)
	rg.POST("/notifications/mark-read", c.achievement.MarkRead)

	// Study timer
	rg.GET("/timer", c.timer.GetTimer)
	rg.POST("/timer/:action", c.timer.Action)
	rg.DELETE("/timer", c.timer.Discard)

	// AI tutor
	rg.POST("/ai/sessions", c.tutor.CreateSession)
	rg.GET("/ai/sessions", c.tutor.ListSessions)
	rg.GET("/ai/sessions/:id/messages", c.tutor.GetMessages)
	rg.POST("/ai/sessions/:id/messages", c.tutor.Ask)
	rg.POST("/ai/sessions/:id/end", c.tutor.EndSession)

	// Lectures
	rg.POST("/lectures", c.lecture.Upload)
	rg.GET("/lectures", c.lecture.List)
	rg.GET("/lectures/:id", c.lecture.Get)
	rg.GET("/lectures/:id/progress", c.lecture.Progress)
	rg.POST("/lectures/:id/retry", c.lecture.Retry)

	rg.GET("/ws", c.event.Connect)
}
