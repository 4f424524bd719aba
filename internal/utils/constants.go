package utils

import "time"

// Application Constants
const (
	AppName    = "Storefront"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = time.Hour
	JWTSocialTokenTTL = 7 * 24 * time.Hour
	PasswordMinLength = 6
	PasswordMaxLength = 128
	BcryptCost        = 10

	// File Upload
	MaxImageSize       = 5 * 1024 * 1024 // 5MB
	MaxMultipartMemory = 32 << 20
	ProductImageWidth  = 1200

	// Request tracing
	RequestIDHeader   = "X-Request-ID"
	IdempotencyHeader = "Idempotency-Key"
	MaxIdempotencyKey = 128
)

// Error Messages
const (
	ErrInvalidCredentials  = "Invalid credentials"
	ErrUserExists          = "User already exists"
	ErrUserNotFound        = "User not found"
	ErrInvalidToken        = "Invalid token"
	ErrInvalidInput        = "Invalid input"
	ErrInternalServer      = "Server error"
	ErrUnauthorized        = "No token, authorization denied"
	ErrForbidden           = "Access denied"
	ErrProductNotFound     = "Product not found"
	ErrAlreadyInWishlist   = "Product already in wishlist."
	ErrActiveCouponExists  = "You already have an active coupon"
	ErrInvalidCouponCode   = "Invalid or expired coupon code"
	ErrNoActiveCoupon      = "No active coupon found for this user"
	ErrNoValidCoupon       = "No valid coupon found for this user"
	ErrDeductionInProgress = "A deduction with this idempotency key is already in progress"
	ErrIdentityMismatch    = "userId does not match the authenticated user"
)

// Cache Keys
const (
	CacheUserPrefix        = "user:"
	CacheCouponCodePrefix  = "coupon_code:"
	CacheIdempotencyPrefix = "idempotency:"
	CacheLoginAttempts     = "login_attempts:"
)

// Event Types
const (
	EventUserRegistered   = "user_registered"
	EventUserLogin        = "user_login"
	EventGoogleLogin      = "google_login"
	EventPasswordReset    = "password_reset"
	EventEmailVerified    = "email_verified"
	EventCouponActivated  = "coupon_activated"
	EventCouponDeducted   = "coupon_deducted"
	EventCouponExhausted  = "coupon_exhausted"
	EventCouponReplayed   = "coupon_deduction_replayed"
	EventCouponCodeIssued = "coupon_code_issued"
)

// File Types
var (
	AllowedImageTypes = []string{"jpg", "jpeg", "png", "gif", "webp"}
)
