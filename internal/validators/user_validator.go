package validators

import "storefront/internal/models"

type GoogleAuthRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

type GoogleLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,password"`
}

// Account requests are validated by the account service so the messages
// stay those the storefront clients already display.

type ProductRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

type OrderHistoryRequest struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId"`
}

type AddressRequest struct {
	UserID  string          `json:"userId"`
	Address *models.Address `json:"address"`
}

type ProfileRequest struct {
	UserID string `json:"userId"`
}
