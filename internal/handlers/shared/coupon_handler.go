package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/utils"
	"storefront/internal/validators"
)

type CouponHandler struct {
	couponService services.CouponService
}

func NewCouponHandler(couponService services.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

type CouponResponse struct {
	Message string             `json:"message"`
	Coupon  *models.CouponView `json:"coupon"`
}

type CouponValueResponse struct {
	Message        string `json:"message"`
	RemainingValue int64  `json:"remainingValue"`
	IsValid        bool   `json:"isValid"`
}

type CouponCodeResponse struct {
	Message    string             `json:"message"`
	CouponCode *models.CouponCode `json:"couponCode"`
}

// ActivateCoupon redeems a registry code for the authenticated user
func (h *CouponHandler) ActivateCoupon(c *gin.Context) {
	var request validators.ActivateCouponRequest
	if !bindJSON(c, &request, false) {
		return
	}

	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	coupon, err := h.couponService.Activate(c.Request.Context(), userID, request.CouponCode)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, CouponResponse{
		Message: "Coupon activated successfully",
		Coupon: &models.CouponView{
			CouponID: coupon.CouponID,
			Code:     coupon.Code,
			Value:    coupon.Balance,
		},
	})
}

// ValidateCoupon reports the user's spendable coupon. No coupon is a
// successful response with a null payload.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var request validators.ValidateCouponRequest
	if !bindJSON(c, &request, true) {
		return
	}

	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	coupon, err := h.couponService.Validate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if coupon == nil {
		utils.SuccessResponse(c, CouponResponse{Message: utils.ErrNoActiveCoupon})
		return
	}

	activatedAt := coupon.ActivatedAt
	utils.SuccessResponse(c, CouponResponse{
		Message: "Valid coupon found",
		Coupon: &models.CouponView{
			CouponID:    coupon.CouponID,
			Code:        coupon.Code,
			Value:       coupon.Balance,
			ActivatedAt: &activatedAt,
		},
	})
}

// UpdateCouponValue deducts usedValue from the user's valid coupon. The
// Idempotency-Key header wins over the body field.
func (h *CouponHandler) UpdateCouponValue(c *gin.Context) {
	var request validators.UpdateCouponRequest
	if !bindJSON(c, &request, false) {
		return
	}

	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	key := strings.TrimSpace(c.GetHeader(utils.IdempotencyHeader))
	if key == "" {
		key = request.IdempotencyKey
	}

	deduction, err := h.couponService.UpdateValue(c.Request.Context(), &services.UpdateValueRequest{
		UserID:         userID,
		CouponCode:     request.CouponCode,
		CouponID:       request.CouponID,
		UsedValue:      *request.UsedValue,
		IdempotencyKey: key,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if deduction == nil {
		utils.SuccessResponse(c, CouponResponse{Message: utils.ErrNoValidCoupon})
		return
	}

	utils.SuccessResponse(c, CouponValueResponse{
		Message:        "Coupon value updated successfully",
		RemainingValue: deduction.RemainingValue,
		IsValid:        deduction.IsValid,
	})
}

func (h *CouponHandler) GetCouponHistory(c *gin.Context) {
	userID, ok := actingUser(c, "")
	if !ok {
		return
	}

	coupons, err := h.couponService.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"coupons": coupons})
}

// CreateCouponCode adds a code to the registry (admin)
func (h *CouponHandler) CreateCouponCode(c *gin.Context) {
	var request validators.CreateCouponCodeRequest
	if !bindJSON(c, &request, false) {
		return
	}

	valid := true
	if request.IsValid != nil {
		valid = *request.IsValid
	}

	code, err := h.couponService.CreateCode(c.Request.Context(), request.Code, valid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CouponCodeResponse{Message: "Coupon code created", CouponCode: code})
}

// SetCouponCodeValidity enables or retires a registry code (admin)
func (h *CouponHandler) SetCouponCodeValidity(c *gin.Context) {
	var request validators.SetCouponCodeValidityRequest
	if !bindJSON(c, &request, false) {
		return
	}

	code, err := h.couponService.SetCodeValidity(c.Request.Context(), c.Param("code"), *request.IsValid)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, CouponCodeResponse{Message: "Coupon code updated", CouponCode: code})
}
