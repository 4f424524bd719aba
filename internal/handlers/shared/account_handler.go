package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront/internal/services"
	"storefront/internal/utils"
	"storefront/internal/validators"
)

type AccountHandler struct {
	accountService services.AccountService
}

func NewAccountHandler(accountService services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

func (h *AccountHandler) AddToWishlist(c *gin.Context) {
	var request validators.ProductRequest
	if !bindJSON(c, &request, false) {
		return
	}
	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	wishlist, err := h.accountService.AddToWishlist(c.Request.Context(), userID, request.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product added to wishlist.", "wishlist": wishlist})
}

func (h *AccountHandler) AddToRecentlyViewed(c *gin.Context) {
	var request validators.ProductRequest
	if !bindJSON(c, &request, false) {
		return
	}
	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	recent, err := h.accountService.AddToRecentlyViewed(c.Request.Context(), userID, request.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product added to recently viewed.", "recentlyViewed": recent})
}

func (h *AccountHandler) UpdateOrderHistory(c *gin.Context) {
	var request validators.OrderHistoryRequest
	if !bindJSON(c, &request, false) {
		return
	}
	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	history, err := h.accountService.AddToOrderHistory(c.Request.Context(), userID, request.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Order history updated.", "purchaseHistory": history})
}

func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	var request validators.AddressRequest
	if !bindJSON(c, &request, false) {
		return
	}
	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	address, err := h.accountService.UpdateAddress(c.Request.Context(), userID, request.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Address updated.", "address": address})
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	var request validators.ProfileRequest
	if !bindJSON(c, &request, true) {
		return
	}
	userID, ok := actingUser(c, request.UserID)
	if !ok {
		return
	}

	profile, err := h.accountService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"profile": profile})
}
