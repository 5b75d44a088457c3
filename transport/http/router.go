package http

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenpulse/anchor/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(auth *service.AuthService, accounts *service.AccountService, sessions *service.SessionService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(auth, accounts, sessions)

	group := router.Group("/auth")
	{
		group.GET("/challenge", handlers.Challenge)
		group.POST("/verify", handlers.Verify)
		group.POST("/register", handlers.Register)
		group.POST("/login", handlers.Login)
		group.POST("/forgot-password", handlers.ForgotPassword)
		group.POST("/reset-password", handlers.ResetPassword)
		group.POST("/refresh", handlers.Refresh)
		group.POST("/logout", handlers.Logout)
	}

	protected := router.Group("/auth")
	protected.Use(AuthMiddleware(sessions))
	{
		protected.POST("/logout-all", handlers.LogoutAll)
		protected.GET("/profile", handlers.Profile)
	}

	return router
}
