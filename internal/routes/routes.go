package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"loginpage/internal/handlers"
)

// SetupRoutes registers the account API. The bearer gate is installed on the
// engine before this is called, so every route (and 404s) pass through it.
func SetupRoutes(
	r *gin.Engine,
	accountHandler *handlers.AccountHandler,
	healthHandler *handlers.HealthHandler,
	withSwagger bool,
) *gin.Engine {
	r.GET("/", healthHandler.Index)
	r.GET("/healthz", healthHandler.Healthz)

	account := r.Group("/account")
	{
		account.GET("/login", accountHandler.LoginPage)
		account.POST("/login", accountHandler.Login)
		account.GET("/verify-email", accountHandler.VerifyEmail)
		account.POST("/register", accountHandler.Register)
		account.GET("/logout", accountHandler.Logout)
	}

	if withSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}
