package routes

import (
	"github.com/gin-gonic/gin"

	handlers "storefront/internal/handlers/shared"
	"storefront/internal/middleware"
)

// SetupProductRoutes sets up the catalogue routes. Reads are public.
func SetupProductRoutes(r *gin.RouterGroup, productHandler *handlers.ProductHandler, jwtSecret string) {
	products := r.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	admin := r.Group("/products")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("", productHandler.CreateProduct)
		admin.PUT("/:id", productHandler.UpdateProduct)
		admin.DELETE("/:id", productHandler.DeleteProduct)
	}
}
