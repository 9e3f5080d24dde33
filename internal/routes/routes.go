package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/the-lucky-clover/agentcy-one/internal/authz"
	"github.com/the-lucky-clover/agentcy-one/internal/handlers"
	"github.com/the-lucky-clover/agentcy-one/internal/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Verify     *handlers.VerifyHandler
	User       *handlers.UserHandler
	Generation *handlers.GenerationHandler
	Project    *handlers.ProjectHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, signer *authz.Signer, limiter *middleware.RateLimiter) *gin.Engine {
	// ---- public
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/verify-email", h.Verify.VerifyEmail)
		auth.POST("/forgot-password", h.Verify.ForgotPassword)
		auth.POST("/reset-password", h.Verify.ResetPassword)
	}

	// ---- protected
	requireAuth := middleware.AuthMiddleware(signer)

	r.POST("/auth/resend-verification", requireAuth, h.Verify.ResendVerification)

	user := r.Group("/user", requireAuth)
	{
		user.GET("/me", h.User.Me)
		user.GET("/usage", h.User.Usage)
		user.GET("/subscription", h.User.Subscription)
	}

	gen := r.Group("/generation", requireAuth)
	{
		gen.POST("/generate", limiter.Handler(), h.Generation.Generate)
		gen.GET("/history", h.Generation.History)
		gen.GET("/:id", h.Generation.Get)
	}

	projects := r.Group("/projects", requireAuth)
	{
		projects.POST("", h.Project.Create)
		projects.GET("", h.Project.List)
		projects.GET("/:id", h.Project.Get)
		projects.PUT("/:id", h.Project.Update)
		projects.DELETE("/:id", h.Project.Delete)
		projects.GET("/:id/deployments", h.Project.Deployments)
	}

	return r
}
