package routes

import (
	"net/http"
	"time"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/NzamaE/Footprint-Logger-Fullstack/controllers"
	"github.com/NzamaE/Footprint-Logger-Fullstack/middlewares"
	"github.com/NzamaE/Footprint-Logger-Fullstack/observability"
	"github.com/NzamaE/Footprint-Logger-Fullstack/services"
)

// SetupRouter wires every controller against the injected database handle.
func SetupRouter(db *gorm.DB) *gin.Engine {
	authController := controllers.NewAuthController(services.NewAuthService(db))
	userController := controllers.NewUserController(services.NewUserService(db))
	activityController := controllers.NewActivityController(services.NewActivityService(db))
	dashboardController := controllers.NewDashboardController(services.NewAnalyticsService(db))
	insightsController := controllers.NewInsightsController(services.NewInsightsService(db))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger())
	r.Use(middlewares.CORS())
	r.Use(observability.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"message":   "Footprint Logger API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", observability.Handler())

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/activities", activityController.Create)
		api.GET("/activities", activityController.List)
		api.GET("/activities/:id", activityController.Get)
		api.PUT("/activities/:id", activityController.Update)
		api.DELETE("/activities/:id", activityController.Delete)

		api.GET("/dashboard", dashboardController.Dashboard)
		api.GET("/streak", dashboardController.Streak)
		api.GET("/leaderboard", dashboardController.Leaderboard)
		api.GET("/stats", dashboardController.Stats)

		api.GET("/insights/weekly-analysis", insightsController.WeeklyAnalysis)
		api.GET("/insights/trends", insightsController.Trends)
		api.GET("/insights/recommendations", insightsController.Recommendations)
		api.POST("/insights/weekly-goal", insightsController.SetWeeklyGoal)
		api.GET("/insights/weekly-goal-progress", insightsController.WeeklyGoalProgress)

		api.GET("/users/profile", userController.GetProfile)
		api.PUT("/users/profile", userController.UpdateProfile)
	}

	return r
}
