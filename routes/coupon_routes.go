package routes

import (
	"github.com/gin-gonic/gin"

	handlers "storefront/internal/handlers/shared"
	"storefront/internal/middleware"
)

// SetupCouponRoutes sets up the coupon lifecycle and registry routes
func SetupCouponRoutes(r *gin.RouterGroup, couponHandler *handlers.CouponHandler, jwtSecret string) {
	coupons := r.Group("")
	coupons.Use(middleware.AuthRequired(jwtSecret))
	{
		coupons.POST("/activate-coupon", couponHandler.ActivateCoupon)
		coupons.POST("/validate-coupon", couponHandler.ValidateCoupon)
		coupons.PUT("/update-coupon", couponHandler.UpdateCouponValue)
		coupons.GET("/coupons", couponHandler.GetCouponHistory)
	}

	admin := r.Group("/admin/coupon-codes")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("", couponHandler.CreateCouponCode)
		admin.PATCH("/:code", couponHandler.SetCouponCodeValidity)
	}
}
