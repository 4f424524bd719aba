package validators

// UserID fields are optional everywhere; when sent they must match the
// authenticated user.

type ActivateCouponRequest struct {
	UserID     string `json:"userId"`
	CouponCode string `json:"couponCode"`
}

type ValidateCouponRequest struct {
	UserID string `json:"userId"`
}

type UpdateCouponRequest struct {
	UserID         string `json:"userId"`
	CouponCode     string `json:"couponCode" validate:"omitempty,max=64"`
	CouponID       string `json:"couponId" validate:"omitempty,max=64"`
	UsedValue      *int64 `json:"usedValue" validate:"required,gte=0"`
	IdempotencyKey string `json:"idempotencyKey" validate:"omitempty,max=128"`
}

type CreateCouponCodeRequest struct {
	Code    string `json:"code" validate:"required,coupon_code"`
	IsValid *bool  `json:"isValid"`
}

type SetCouponCodeValidityRequest struct {
	IsValid *bool `json:"isValid" validate:"required"`
}
