package utils

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate       *validator.Validate
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	couponCodeExpr = regexp.MustCompile(`^[A-Za-z0-9_\-]{3,64}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("coupon_code", validateCouponCode)
	validate.RegisterValidation("password", validatePassword)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateCouponCode(fl validator.FieldLevel) bool {
	return IsValidCouponCode(fl.Field().String())
}

func validatePassword(fl validator.FieldLevel) bool {
	n := len(fl.Field().String())
	return n >= PasswordMinLength && n <= PasswordMaxLength
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func IsValidCouponCode(code string) bool {
	return couponCodeExpr.MatchString(code)
}

// NormalizeCouponCode trims surrounding whitespace. Codes are case sensitive.
func NormalizeCouponCode(code string) string {
	return strings.TrimSpace(code)
}

func IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ValidationMessage turns the first validator error into a client message.
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return ErrInvalidInput
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email address"
	case "password":
		return "Password must be at least 6 characters long"
	case "coupon_code":
		return "Invalid coupon code format"
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	default:
		return "Invalid " + field
	}
}
