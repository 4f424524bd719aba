package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponCode is a promotional code in the registry. Only codes with IsValid
// set can be activated.
type CouponCode struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code      string             `json:"code" bson:"code"`
	IsValid   bool               `json:"isValid" bson:"is_valid"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Coupon is one activation of a code by a user. Balance is in minor
// currency units and IsValid is true exactly while Balance > 0.
type Coupon struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID      string             `json:"userId" bson:"user_id"`
	CouponID    string             `json:"couponId" bson:"coupon_id"`
	Code        string             `json:"couponCode" bson:"code"`
	Balance     int64              `json:"value" bson:"balance"`
	IsValid     bool               `json:"isValid" bson:"is_valid"`
	ActivatedAt time.Time          `json:"activatedAt" bson:"activated_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Deduction is the outcome of spending against a coupon.
type Deduction struct {
	CouponID       string `json:"couponId"`
	Code           string `json:"couponCode"`
	RemainingValue int64  `json:"remainingValue"`
	IsValid        bool   `json:"isValid"`
}

// CouponView is the public shape of an active coupon.
type CouponView struct {
	CouponID    string     `json:"couponId"`
	Code        string     `json:"couponCode"`
	Value       int64      `json:"value"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
}
