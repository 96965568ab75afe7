package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/SezimOrozobekova/velox-backend/docs"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	perMin := h.RateLimitPerMin
	if perMin <= 0 {
		perMin = 10
	}
	rl := NewRateLimiter(perMin, time.Minute)

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/activate/:uid/:token", h.Activate)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", RateLimit(rl), h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", AuthJWT(h.JWTSecret), h.Me)
	}

	// public leg of the Google flow
	google := r.Group("/api/google/oauth")
	{
		google.GET("/callback", h.OAuthCallback)
		google.POST("/mobile", h.OAuthMobile)
	}

	api := r.Group("/api", AuthJWT(h.JWTSecret))
	{
		api.PATCH("/users/me/time", h.UpdateTime)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", h.CreateCategory)
		api.GET("/categories/:id", h.GetCategory)
		api.PUT("/categories/:id", h.UpdateCategory)
		api.PATCH("/categories/:id", h.UpdateCategory)
		api.DELETE("/categories/:id", h.DeleteCategory)

		api.GET("/tasks", h.ListTasks)
		api.POST("/tasks", h.CreateTask)
		api.GET("/tasks/:id", h.GetTask)
		api.PUT("/tasks/:id", h.UpdateTask)
		api.PATCH("/tasks/:id", h.UpdateTask)
		api.DELETE("/tasks/:id", h.DeleteTask)

		api.POST("/ai/process", RateLimit(rl), h.ProcessText)

		api.GET("/google/oauth/init", h.OAuthInit)
		api.POST("/google/tokens", h.SaveTokens)
	}

	return r
}
