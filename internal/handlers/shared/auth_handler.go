package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront/internal/services"
	"storefront/internal/utils"
	"storefront/internal/validators"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type TokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var request services.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, TokenResponse{Token: response.Token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request services.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, utils.ErrInvalidCredentials)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, TokenResponse{Token: response.Token})
}

// GoogleAuth signs in with an access token the client obtained from Google
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var request validators.GoogleAuthRequest
	if !bindJSON(c, &request, false) {
		return
	}

	response, err := h.authService.GoogleAuth(c.Request.Context(), request.AccessToken)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// GoogleLogin exchanges an authorization code for a session
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var request validators.GoogleLoginRequest
	if !bindJSON(c, &request, false) {
		return
	}

	response, err := h.authService.GoogleLogin(c.Request.Context(), request.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	state := utils.GenerateRandomString(24)

	url, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url, "state": state})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, utils.MessageBody{Message: "Email verified successfully"})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var request validators.PasswordResetRequest
	if !bindJSON(c, &request, false) {
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), request.Email); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, utils.MessageBody{Message: "If the account exists, a password reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var request validators.ResetPasswordRequest
	if !bindJSON(c, &request, false) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), c.Param("token"), request.Password); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, utils.MessageBody{Message: "Password has been reset successfully"})
}
