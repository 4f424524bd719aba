package routes

import (
	"github.com/gin-gonic/gin"

	handlers "storefront/internal/handlers/shared"
	"storefront/internal/middleware"
)

// SetupAuthRoutes sets up public authentication routes
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	r.POST("/google-auth", authHandler.GoogleAuth)
	r.POST("/google-login", authHandler.GoogleLogin)
	r.GET("/google-login/url", authHandler.GoogleAuthURL)

	r.GET("/verify-email/:token", authHandler.VerifyEmail)
	r.POST("/request-password-reset", authHandler.RequestPasswordReset)
	r.POST("/reset-password/:token", authHandler.ResetPassword)
}

// SetupAccountRoutes sets up the signed-in user's shopping state routes
func SetupAccountRoutes(r *gin.RouterGroup, accountHandler *handlers.AccountHandler, jwtSecret string) {
	account := r.Group("")
	account.Use(middleware.AuthRequired(jwtSecret))
	{
		account.POST("/wishlist", accountHandler.AddToWishlist)
		account.POST("/recently-viewed", accountHandler.AddToRecentlyViewed)
		account.POST("/update-order-history", accountHandler.UpdateOrderHistory)
		account.PUT("/update-address", accountHandler.UpdateAddress)
		account.POST("/profile", accountHandler.GetProfile)
	}
}
